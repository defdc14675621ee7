// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mozart

import "fmt"

// A Slot names one operation-graph node's output within a Program.
// Slots are assigned by the external planner; they are opaque,
// non-negative, and unique within a program.
type Slot int

// NoSlot marks an absent Call target: the call runs purely for its
// side effect and its result is discarded.
const NoSlot Slot = -1

// String renders the slot as it appears in program listings.
func (s Slot) String() string {
	return fmt.Sprintf("v%d", int(s))
}

// Values holds a program's input bindings: for each input slot, the
// materialized source value. Values are fixed for the program's
// lifetime and shared read-only across threads.
type Values map[Slot]interface{}

// A Node is a lazily materialized operation output supplied by the
// external graph layer. Split unwraps a slot value through Node
// before partitioning it.
type Node interface {
	// Value returns the node's current value.
	Value() interface{}
}

// A Range is the half-open index range [Start, End) of the overall
// input assigned to one thread: its shard.
type Range struct {
	Start, End int
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
