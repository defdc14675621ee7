// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package backend names the execution targets an instruction may run
// against. Every instruction carries a Backend tag; split types use it
// to decide how a value is transferred when a pipeline crosses from
// the host processor to an accelerator.
package backend

import "fmt"

// A Backend identifies an execution target.
type Backend int

const (
	// CPU is the general-purpose host processor.
	CPU Backend = iota
	// GPU is the accelerator.
	GPU

	maxBackend
)

var names = [...]string{
	CPU: "cpu",
	GPU: "gpu",
}

// String returns the backend's stable, lower-case name, as used in
// instruction renderings and diagnostics.
func (b Backend) String() string {
	if b < 0 || b >= maxBackend {
		return fmt.Sprintf("backend(%d)", int(b))
	}
	return names[b]
}
