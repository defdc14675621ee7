// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package splittest provides split type strategies over []int values
// and a deterministic local driver, for use in tests of instruction
// programs. The strategies mirror the shapes seen in production split
// types: eager window slicing, lazy chunked pulling, aggregates that
// refuse to split, and transfer-tracking wrappers.
package splittest

import (
	"context"

	"github.com/grailbio/base/must"
	"github.com/grailbio/base/traverse"
	"github.com/mozartvm/mozart"
	"github.com/mozartvm/mozart/backend"
	"github.com/mozartvm/mozart/split"
)

// RangeSplit splits []int values by index, combines partials by
// concatenation, and passes non-slice values through unchanged, as
// with constants.
type RangeSplit struct{}

// Split implements split.Type. A window starting at or past the end
// of the value is exhausted.
func (RangeSplit) Split(start, end int, value interface{}) (interface{}, error) {
	xs, ok := value.([]int)
	if !ok {
		return value, nil
	}
	if start >= len(xs) {
		return nil, split.EOF
	}
	if end > len(xs) {
		end = len(xs)
	}
	return xs[start:end], nil
}

// Combine implements split.Type by concatenation.
func (RangeSplit) Combine(values []interface{}, original interface{}) (interface{}, error) {
	var out []int
	for _, v := range values {
		out = append(out, v.([]int)...)
	}
	return out, nil
}

// Elements implements split.Type.
func (RangeSplit) Elements(value interface{}) (int, bool) {
	xs, ok := value.([]int)
	if !ok {
		return 0, false
	}
	return len(xs), true
}

// To implements split.Type as the identity.
func (RangeSplit) To(value interface{}, b backend.Backend) interface{} {
	return value
}

func (RangeSplit) String() string { return "RangeSplit" }

// ChunkSeqSplit is a lazy strategy over []int values: its first
// (shard-narrowing) split yields a pull-based sequence of ChunkSize
// portions, which the VM then memoizes and drains one batch at a
// time.
type ChunkSeqSplit struct {
	ChunkSize int
}

// Split implements split.Type. A sequence passed back in (the VM
// re-narrows on every evaluation) is returned as is; the batch window
// is driven by pulling.
func (s ChunkSeqSplit) Split(start, end int, value interface{}) (interface{}, error) {
	if seq, ok := value.(split.Seq); ok {
		return seq, nil
	}
	xs, ok := value.([]int)
	if !ok {
		return value, nil
	}
	if end > len(xs) {
		end = len(xs)
	}
	if start > end {
		start = end
	}
	xs = xs[start:end]
	var chunks []interface{}
	for len(xs) > 0 {
		n := s.ChunkSize
		if n > len(xs) {
			n = len(xs)
		}
		chunks = append(chunks, xs[:n])
		xs = xs[n:]
	}
	return split.SliceSeq(chunks...), nil
}

// Combine implements split.Type by concatenation.
func (ChunkSeqSplit) Combine(values []interface{}, original interface{}) (interface{}, error) {
	return RangeSplit{}.Combine(values, original)
}

// Elements implements split.Type: lazily produced values report no
// count.
func (ChunkSeqSplit) Elements(value interface{}) (int, bool) {
	return 0, false
}

// To implements split.Type as the identity.
func (ChunkSeqSplit) To(value interface{}, b backend.Backend) interface{} {
	return value
}

func (ChunkSeqSplit) String() string { return "ChunkSeqSplit" }

// AggSplit models aggregated int values: they cannot be split
// further, and partials combine by summation.
type AggSplit struct{}

// Split implements split.Type by refusing.
func (AggSplit) Split(start, end int, value interface{}) (interface{}, error) {
	return nil, split.Unsupported(AggSplit{}, "split")
}

// Combine implements split.Type by summation.
func (AggSplit) Combine(values []interface{}, original interface{}) (interface{}, error) {
	var sum int
	for _, v := range values {
		sum += v.(int)
	}
	return sum, nil
}

// Elements implements split.Type.
func (AggSplit) Elements(value interface{}) (int, bool) {
	return 0, false
}

// To implements split.Type as the identity.
func (AggSplit) To(value interface{}, b backend.Backend) interface{} {
	return value
}

func (AggSplit) String() string { return "AggSplit" }

// TrackedSplit wraps a split type and records every cross-backend
// transfer requested through it. It is not safe for concurrent use.
type TrackedSplit struct {
	split.Type
	// Transfers holds the destination backend of each To call, in
	// order.
	Transfers []backend.Backend
}

// To implements split.Type, recording the transfer.
func (t *TrackedSplit) To(value interface{}, b backend.Backend) interface{} {
	t.Transfers = append(t.Transfers, b)
	return t.Type.To(value, b)
}

// Run executes program over values locally, splitting the index range
// [0, total) into nshard contiguous shards with one worker and one
// fresh Context per shard, looping each shard over ascending batch
// indices until exhaustion. It returns, for each shard, the per-batch
// values produced for slot, in batch order. Run mirrors how an
// external driver uses the VM and keeps test expectations
// deterministic.
func Run(program *mozart.Program, values mozart.Values, nshard, total int, slot mozart.Slot) ([][]interface{}, error) {
	must.True(nshard > 0, "no shards")
	ctx := context.Background()
	out := make([][]interface{}, nshard)
	size := (total + nshard - 1) / nshard
	err := traverse.Each(nshard, func(shard int) error {
		r := mozart.Range{Start: size * shard, End: size * (shard + 1)}
		if r.End > total {
			r.End = total
		}
		ec := mozart.NewContext()
		for batch := 0; ; batch++ {
			depth := ec.Depth(slot)
			err := program.Evaluate(ctx, shard, r, batch, values, ec)
			if err == split.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			if ec.Depth(slot) > depth {
				v, err := ec.Top(slot)
				if err != nil {
					return err
				}
				out[shard] = append(out[shard], v)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
