// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package mozart

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/mozartvm/mozart/split"
	"github.com/mozartvm/mozart/typecheck"
)

// A Program is an ordered sequence of instructions representing one
// single-batch-size segment of a lowered pipeline. Programs are built
// once by the external planner, before any thread runs, and are
// read-only thereafter; all mutable evaluation state lives in each
// thread's Context, so one Program may be evaluated concurrently from
// many threads.
type Program struct {
	instrs    []Instruction
	batchSize int
}

// NewProgram builds a program from the provided instructions,
// validating them as a single executable segment. It is a typecheck
// panic, attributed to the caller, if the program is empty, if its
// instructions disagree on batch size or carry a non-positive one, if
// an instruction names a negative slot, if a Call has no function or
// an argument arity mismatching it, or if an instruction reads a slot
// that no earlier instruction can have produced.
func NewProgram(instrs ...Instruction) *Program {
	if len(instrs) == 0 {
		typecheck.Panic(1, "program: no instructions")
	}
	p := &Program{instrs: instrs}
	produced := make(map[Slot]bool)
	for i, inst := range instrs {
		switch inst := inst.(type) {
		case *Split:
			p.checkBatch(i, inst.BatchSize)
			checkTarget(i, inst.Target)
			checkType(i, inst.Type)
			produced[inst.Target] = true
		case *Merge:
			p.checkBatch(i, inst.BatchSize)
			checkTarget(i, inst.Target)
			checkType(i, inst.Type)
			produced[inst.Target] = true
		case *Call:
			p.checkBatch(i, inst.BatchSize)
			if inst.Func.IsNil() {
				typecheck.Panicf(1, "program: instruction %d: call has no function", i)
			}
			if got, want := len(inst.Args), inst.Func.NumArg(); got != want {
				typecheck.Panicf(1, "program: instruction %d: call %s: %d arguments, function takes %d",
					i, inst.Func.Name(), got, want)
			}
			if len(inst.Kwargs) > 0 && !inst.Func.HasKwargs() {
				typecheck.Panicf(1, "program: instruction %d: call %s: keyword arguments given, function takes none",
					i, inst.Func.Name())
			}
			for _, arg := range inst.Args {
				if !produced[arg] {
					typecheck.Panicf(1, "program: instruction %d: %s read before it is produced", i, arg)
				}
			}
			for name, slot := range inst.Kwargs {
				if !produced[slot] {
					typecheck.Panicf(1, "program: instruction %d: %s (keyword %s) read before it is produced", i, slot, name)
				}
			}
			if inst.Target != NoSlot {
				checkTarget(i, inst.Target)
				produced[inst.Target] = true
			}
		case *To:
			checkType(i, inst.Type)
			if !produced[inst.Target] {
				typecheck.Panicf(1, "program: instruction %d: %s converted before it is produced", i, inst.Target)
			}
		default:
			typecheck.Panicf(1, "program: instruction %d: unknown instruction type %T", i, inst)
		}
	}
	return p
}

func (p *Program) checkBatch(i, size int) {
	if size < 1 {
		typecheck.Panicf(2, "program: instruction %d: batch size %d < 1", i, size)
	}
	if p.batchSize == 0 {
		p.batchSize = size
		return
	}
	if size != p.batchSize {
		typecheck.Panicf(2, "program: instruction %d: batch size %d != %d: a program holds a single batch size",
			i, size, p.batchSize)
	}
}

func checkTarget(i int, slot Slot) {
	if slot < 0 {
		typecheck.Panicf(2, "program: instruction %d: invalid target %s", i, slot)
	}
}

func checkType(i int, ty split.Type) {
	if ty == nil {
		typecheck.Panicf(2, "program: instruction %d: no split type", i)
	}
}

// BatchSize returns the program's uniform batch size.
func (p *Program) BatchSize() int {
	return p.batchSize
}

// Instructions returns the program's instructions in execution order.
// The returned slice must not be modified.
func (p *Program) Instructions() []Instruction {
	return p.instrs
}

// Evaluate runs one pass over the program's instructions, in order,
// for the given batch index. The driver evaluates a shard by calling
// Evaluate with batch indices 0, 1, 2, ... until it returns
// split.EOF, the graceful signal that the shard has no further
// batches. Any other non-nil error aborts the pass.
func (p *Program) Evaluate(ctx context.Context, thread int, shard Range, batch int, values Values, ec *Context) error {
	for _, inst := range p.instrs {
		log.Debug.Printf("thread %d: shard %s: batch %d: %s", thread, shard, batch, inst)
		if err := inst.Evaluate(ctx, thread, shard, batch, values, ec); err != nil {
			return err
		}
	}
	return nil
}

// String renders the program one instruction per line.
func (p *Program) String() string {
	var b strings.Builder
	for _, inst := range p.instrs {
		fmt.Fprintln(&b, inst)
	}
	return b.String()
}
