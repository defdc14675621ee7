// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package split defines the capability contract through which the
// instruction VM partitions, recombines, measures, and transfers
// values. Concrete strategies for particular data kinds (columnar
// collections, arrays, file-backed streams) are supplied externally;
// this package provides the contract itself, the Broadcast strategy
// for constants, and the lazy sequence machinery used by pull-based
// splitting.
package split

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/mozartvm/mozart/backend"
)

// A Type defines how values of one data kind are split into batches,
// recombined from partial results, measured, and transferred across
// backends. Implementations need not be total: a kind that forbids
// partitioning (say, an aggregated scalar or a grouped handle) should
// refuse Split with an Unsupported error. Such refusal always
// indicates a planning bug, an operation matched with an incompatible
// split type, and is never retried.
type Type interface {
	// Split returns the portion of value that lies in the half-open
	// window [start, end). The result may instead be a Seq, in which
	// case successive batches are produced by pulling from it rather
	// than by re-invoking Split. Split returns EOF when the window
	// lies entirely beyond the value's elements.
	Split(start, end int, value interface{}) (interface{}, error)

	// Combine reassembles partial values produced over a full run.
	// The original value the partials were split from is passed when
	// available so that implementations may write results back through
	// it. Combine may return (nil, nil) for kinds whose partials
	// cannot be generically recombined.
	Combine(values []interface{}, original interface{}) (interface{}, error)

	// Elements returns the number of window elements in value. A
	// false report means the value is unbounded or unsliceable and
	// passes through each batch unchanged.
	Elements(value interface{}) (n int, ok bool)

	// To converts value to the representation required by backend b.
	// It is the identity for values that are not of a transferable
	// kind.
	To(value interface{}, b backend.Backend) interface{}
}

// Unsupported returns an error indicating that the split type ty does
// not implement the named operation for the values it governs.
func Unsupported(ty Type, op string) error {
	return errors.E(errors.NotSupported, fmt.Sprintf("split type %T does not support %s", ty, op))
}

// IsUnsupported tells whether err indicates an unsupported split type
// operation.
func IsUnsupported(err error) bool {
	return errors.Is(errors.NotSupported, err)
}

// Broadcast is the degenerate split type for constants: every batch
// receives the full, unmodified value, and splitting never exhausts.
type Broadcast struct{}

// Split implements Type: it returns value unchanged for every window.
func (Broadcast) Split(start, end int, value interface{}) (interface{}, error) {
	return value, nil
}

// Combine implements Type. All partials of a broadcast value are the
// value itself, so the first one is returned.
func (Broadcast) Combine(values []interface{}, original interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}
	return values[0], nil
}

// Elements implements Type. Broadcast values report no count so that
// batch windows are never clamped against them.
func (Broadcast) Elements(value interface{}) (int, bool) {
	return 0, false
}

// To implements Type as the identity.
func (Broadcast) To(value interface{}, b backend.Backend) interface{} {
	return value
}

func (Broadcast) String() string { return "Broadcast" }
