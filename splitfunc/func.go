// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package splitfunc provides types and code to invoke user-defined
// functions from Call instructions.
package splitfunc

import (
	"context"
	"reflect"
	"runtime"
	"strings"
)

// Nil is a nil Func.
var Nil Func

var (
	typeOfContext = reflect.TypeOf((*context.Context)(nil)).Elem()
	typeOfError   = reflect.TypeOf((*error)(nil)).Elem()
	typeOfKwargs  = reflect.TypeOf(Kwargs(nil))
)

// Kwargs carries a Call instruction's keyword arguments. Go has no
// keyword parameters, so a function that accepts keyword arguments
// opts in by declaring a single trailing parameter of type Kwargs; the
// VM passes the gathered name-to-value mapping through it. Functions
// without such a parameter must not be given keyword argument slots.
type Kwargs map[string]interface{}

// Func represents a user-defined function invoked by a Call
// instruction. It is a shim over reflection that determines, once,
// whether the callee takes a leading context.Context, whether it
// accepts keyword arguments, and whether its final result is an
// error to be propagated.
type Func struct {
	fn          reflect.Value
	contextFunc bool
	kwargsFunc  bool
	errFunc     bool
	narg        int
}

// Of creates a Func from the provided function, along with a bool
// indicating whether fn is a valid function. A valid function is
// non-variadic, takes an optional leading context.Context, any number
// of positional parameters, and an optional trailing Kwargs parameter;
// it returns at most one value besides an optional trailing error.
func Of(fn interface{}) (Func, bool) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func || t.IsVariadic() {
		return Func{}, false
	}
	f := Func{fn: reflect.ValueOf(fn)}
	narg := t.NumIn()
	if narg > 0 && t.In(0) == typeOfContext {
		f.contextFunc = true
		narg--
	}
	if narg > 0 && t.In(t.NumIn()-1) == typeOfKwargs {
		f.kwargsFunc = true
		narg--
	}
	f.narg = narg
	nout := t.NumOut()
	if nout > 0 && t.Out(nout-1) == typeOfError {
		f.errFunc = true
		nout--
	}
	if nout > 1 {
		return Func{}, false
	}
	return f, true
}

// NumArg returns the number of positional arguments the function
// expects, excluding any context.Context and Kwargs parameters.
func (f Func) NumArg() int { return f.narg }

// HasKwargs tells whether the function accepts keyword arguments.
func (f Func) HasKwargs() bool { return f.kwargsFunc }

// Call invokes the function with the provided positional and keyword
// arguments. An error returned by the function propagates unmodified;
// a function with no value result yields a nil value. Nil arguments
// are passed as the parameter type's zero value.
func (f Func) Call(ctx context.Context, args []interface{}, kwargs Kwargs) (interface{}, error) {
	t := f.fn.Type()
	in := make([]reflect.Value, 0, t.NumIn())
	if f.contextFunc {
		in = append(in, reflect.ValueOf(ctx))
	}
	for _, arg := range args {
		if arg == nil {
			in = append(in, reflect.Zero(t.In(len(in))))
		} else {
			in = append(in, reflect.ValueOf(arg))
		}
	}
	if f.kwargsFunc {
		if kwargs == nil {
			kwargs = Kwargs{}
		}
		in = append(in, reflect.ValueOf(kwargs))
	}
	out := f.fn.Call(in)
	var err error
	if f.errFunc {
		if e := out[len(out)-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}

// Name returns the name of the underlying function, without its
// package path, for use in instruction renderings.
func (f Func) Name() string {
	if f.IsNil() {
		return "<nil>"
	}
	name := runtime.FuncForPC(f.fn.Pointer()).Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}

// IsNil returns whether the Func f is nil.
func (f Func) IsNil() bool {
	return f.fn == reflect.Value{}
}
