// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mozart

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/mozartvm/mozart/split"
)

// A Context holds one thread's execution state: for each slot, the
// ordered stack of values produced so far, together with the memoized
// split source that backs repeated Split evaluations. A Context is
// created at thread start and discarded at thread end; it is not safe
// for concurrent use. Keeping the split memo here, rather than on the
// instruction, is what lets a single Program be shared across threads.
type Context struct {
	stacks  map[Slot][]interface{}
	sources map[Slot]*source
}

// A source memoizes, per slot, the splitting strategy revealed by the
// first Split evaluation: the pulled Seq for lazy split types, or
// nothing for eager ones. The exhausted latch keeps exhaustion
// monotonic for the slot regardless of strategy.
type source struct {
	seq       split.Seq
	init      bool
	exhausted bool
}

// NewContext returns an empty execution context.
func NewContext() *Context {
	return &Context{
		stacks:  make(map[Slot][]interface{}),
		sources: make(map[Slot]*source),
	}
}

// Push appends v to the slot's value stack.
func (c *Context) Push(slot Slot, v interface{}) {
	c.stacks[slot] = append(c.stacks[slot], v)
}

// Top returns the most recently pushed value for slot. Reading a slot
// before any value has been produced for it is an error, never an
// implicit default.
func (c *Context) Top(slot Slot) (interface{}, error) {
	stack := c.stacks[slot]
	if len(stack) == 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("%s not yet produced", slot))
	}
	return stack[len(stack)-1], nil
}

// ReplaceTop overwrites the most recently pushed value for slot,
// leaving the stack's depth unchanged. Like Top, it fails on a slot
// with no entries.
func (c *Context) ReplaceTop(slot Slot, v interface{}) error {
	stack := c.stacks[slot]
	if len(stack) == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("%s not yet produced", slot))
	}
	stack[len(stack)-1] = v
	return nil
}

// Depth returns the number of values produced for slot so far.
func (c *Context) Depth(slot Slot) int {
	return len(c.stacks[slot])
}

func (c *Context) source(slot Slot) *source {
	src := c.sources[slot]
	if src == nil {
		src = new(source)
		c.sources[slot] = src
	}
	return src
}
