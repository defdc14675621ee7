// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*
	Package mozart implements a small virtual machine that executes
	linear programs of instructions lowered from a lazy operation
	graph. A program processes one thread's shard of a large input one
	batch at a time: Split instructions carve the next batch out of an
	input slot, Call instructions invoke user functions over the
	current batch values, and To instructions convert values between
	execution backends (e.g., moving a batch to an accelerator and
	back). An external driver assigns each thread a disjoint index
	range, evaluates the program once per ascending batch index against
	the thread's private Context, and stops when a Split reports that
	its slot is exhausted; an external combine step then reassembles
	the per-batch partial results.

	The packages in this module deliberately stop at the instruction
	and execution-protocol layer. The planner that lowers an operation
	graph into a Program, the scheduler that shards inputs and runs
	threads, and the concrete split strategies for any particular data
	kind are all external collaborators: they are expressed through the
	split.Type capability, the Node handle, and the Values map.

	Programs and their instructions are built once, before any thread
	runs, and are read-only thereafter. All per-thread mutable state,
	including the memoized split sources that back lazy splitting,
	lives in each thread's Context, so a single Program may be shared
	freely across threads.
*/
package mozart
