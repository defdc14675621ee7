// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mozart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/mozartvm/mozart/backend"
	"github.com/mozartvm/mozart/split"
	"github.com/mozartvm/mozart/splitfunc"
)

// An Instruction is one step of a lowered operation pipeline. The
// closed set of instructions is Split, Merge, Call, and To.
// Instructions are immutable descriptors created by the external
// planner before execution begins; Evaluate runs synchronously to
// completion and is invoked once per ascending batch index by the
// external driver.
//
// Evaluate returns split.EOF when the instruction's slot is exhausted
// for the thread's shard: the driver's signal to end the batch loop.
// Any other non-nil error is fatal to the pipeline; the VM never
// retries.
type Instruction interface {
	// Evaluate runs the instruction for one batch of the shard given
	// by the thread's index range, against the thread's private
	// execution context.
	Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error

	fmt.Stringer
}

// Split produces, for its target slot, the portion of the slot's
// current value belonging to the requested batch, using either eager
// window slicing or lazy pulling, transparently. The strategy is
// revealed by the split type on the first evaluation and memoized in
// the thread's Context.
type Split struct {
	// Target is the slot whose input value is split and that receives
	// each batch portion.
	Target Slot
	// Type is the target's split type.
	Type split.Type
	// Backend is the execution target the split runs against.
	Backend backend.Backend
	// BatchSize is the nominal number of window elements per batch.
	BatchSize int
}

// Evaluate implements Instruction. The nominal batch window is
// [BatchSize*batch, BatchSize*(batch+1)), in offsets relative to the
// thread's shard. The slot's input value is resolved and re-narrowed
// to the shard range on every evaluation (lazily materialized Nodes
// may change underneath), and the window end is clamped to the
// narrowed value's element count when the split type reports one.
func (s *Split) Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error {
	start := s.BatchSize * batch
	end := start + s.BatchSize

	value, ok := values[s.Target]
	if !ok {
		return errors.E(errors.Invalid, fmt.Sprintf("split %s: no input value", s.Target))
	}
	if node, ok := value.(Node); ok {
		value = node.Value()
	}
	value, err := s.Type.Split(shard.Start, shard.End, value)
	if err != nil {
		return err
	}
	if n, ok := s.Type.Elements(value); ok && end > n {
		end = n
	}

	src := ec.source(s.Target)
	if src.exhausted {
		return split.EOF
	}
	var result interface{}
	switch {
	case src.seq != nil:
		result, err = src.seq.Next()
	case !src.init:
		// First evaluation: the split type reveals whether its
		// strategy is lazy.
		src.init = true
		result, err = s.Type.Split(start, end, value)
		if seq, ok := result.(split.Seq); ok && err == nil {
			src.seq = seq
			result, err = seq.Next()
		}
	default:
		result, err = s.Type.Split(start, end, value)
	}
	if err == split.EOF {
		src.exhausted = true
		return split.EOF
	}
	if err != nil {
		return err
	}
	ec.Push(s.Target, result)
	return nil
}

func (s *Split) String() string {
	return fmt.Sprintf("(%s:%d) %s = split %s:%s",
		s.Backend, s.BatchSize, s.Target, s.Target, typeName(s.Type))
}

// Merge marks where a batch-size transition would occur when programs
// are composed. It is a descriptor only: an executable program holds
// a single batch size end to end, so the planner must resolve every
// Merge away before handing a program to the driver.
type Merge struct {
	// Target is the slot whose partials would be merged.
	Target Slot
	// Type is the target's split type.
	Type split.Type
	// Backend is the execution target the merge would run against.
	Backend backend.Backend
	// BatchSize is the batch size in effect after the transition.
	BatchSize int
}

// Evaluate implements Instruction by failing: evaluating a Merge
// means an invalid program mixed batch sizes without a real merge
// step.
func (m *Merge) Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error {
	panic(fmt.Sprintf("merge %s evaluated: a program holds a single batch size", m.Target))
}

func (m *Merge) String() string {
	return fmt.Sprintf("(%s:%d) %s = merge %s:%s",
		m.Backend, m.BatchSize, m.Target, m.Target, typeName(m.Type))
}

// Call invokes a user function with arguments read from the most
// recent per-slot values in the thread's context, pushing the result
// onto the target slot's stack when a target is set.
type Call struct {
	// Target receives the function's result; NoSlot discards it, in
	// which case the call runs purely for its side effect.
	Target Slot
	// Func is the function to invoke.
	Func splitfunc.Func
	// Args names the slots read, in declared order, for the
	// function's positional arguments.
	Args []Slot
	// Kwargs maps keyword argument names to the slots they are read
	// from.
	Kwargs map[string]Slot
	// Type is the split type of the function's result.
	Type split.Type
	// Backend is the execution target the call runs against.
	Backend backend.Backend
	// BatchSize is the batch size of the call's inputs.
	BatchSize int
}

func (c *Call) args(ec *Context) ([]interface{}, error) {
	args := make([]interface{}, len(c.Args))
	for i, slot := range c.Args {
		var err error
		if args[i], err = ec.Top(slot); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (c *Call) kwargs(ec *Context) (splitfunc.Kwargs, error) {
	if len(c.Kwargs) == 0 {
		return nil, nil
	}
	kwargs := make(splitfunc.Kwargs, len(c.Kwargs))
	for name, slot := range c.Kwargs {
		v, err := ec.Top(slot)
		if err != nil {
			return nil, err
		}
		kwargs[name] = v
	}
	return kwargs, nil
}

// Evaluate implements Instruction: it gathers the call's arguments,
// invokes the function, and pushes the result if a target is set. An
// error from the function propagates unmodified; the instruction does
// not catch or retry.
func (c *Call) Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error {
	args, err := c.args(ec)
	if err != nil {
		return err
	}
	kwargs, err := c.kwargs(ec)
	if err != nil {
		return err
	}
	result, err := c.Func.Call(ctx, args, kwargs)
	if err != nil {
		return err
	}
	if c.Target != NoSlot {
		ec.Push(c.Target, result)
	}
	return nil
}

// RemoveTarget converts the call into a side-effect-only call whose
// result is discarded. It is one-way: the planner uses it to prune
// dead outputs without re-planning, and the target cannot be
// restored.
func (c *Call) RemoveTarget() {
	c.Target = NoSlot
}

func (c *Call) String() string {
	arguments := make([]string, 0, len(c.Args)+len(c.Kwargs))
	for _, slot := range c.Args {
		arguments = append(arguments, slot.String())
	}
	names := make([]string, 0, len(c.Kwargs))
	for name := range c.Kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		arguments = append(arguments, fmt.Sprintf("%s=%s", name, c.Kwargs[name]))
	}
	var target string
	if c.Target != NoSlot {
		target = fmt.Sprintf("%s = ", c.Target)
	}
	return fmt.Sprintf("(%s:%d) %scall %s(%s):%s",
		c.Backend, c.BatchSize, target, c.Func.Name(), strings.Join(arguments, ", "), typeName(c.Type))
}

// To converts the target slot's current value to the representation
// required by the destination backend. It is the one instruction that
// overwrites rather than appends: the top of the target's stack is
// replaced in place and the stack's depth is unchanged.
type To struct {
	// Target is the slot whose value is converted.
	Target Slot
	// Type is the target's split type, which supplies the transfer
	// hook.
	Type split.Type
	// Backend is the destination backend.
	Backend backend.Backend
}

// Evaluate implements Instruction.
func (t *To) Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error {
	v, err := ec.Top(t.Target)
	if err != nil {
		return err
	}
	return ec.ReplaceTop(t.Target, t.Type.To(v, t.Backend))
}

func (t *To) String() string {
	return fmt.Sprintf("(%s) %s = to_%s:%s", t.Backend, t.Target, t.Backend, typeName(t.Type))
}

// typeName renders a split type for program listings, preferring its
// Stringer name.
func typeName(ty split.Type) string {
	if s, ok := ty.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", ty)
}
