// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package splitfunc

import (
	"context"
	"testing"

	"github.com/grailbio/base/errors"
)

func double(xs []int) []int {
	ys := make([]int, len(xs))
	for i, x := range xs {
		ys[i] = 2 * x
	}
	return ys
}

func TestOf(t *testing.T) {
	for _, c := range []struct {
		fn     interface{}
		ok     bool
		narg   int
		kwargs bool
	}{
		{double, true, 1, false},
		{func() {}, true, 0, false},
		{func(ctx context.Context, x int) int { return x }, true, 1, false},
		{func(x int, kw Kwargs) int { return x }, true, 1, true},
		{func(ctx context.Context, x, y int, kw Kwargs) (int, error) { return x + y, nil }, true, 2, true},
		{func(x int) (int, int) { return x, x }, false, 0, false},
		{func(xs ...int) {}, false, 0, false},
		{123, false, 0, false},
		{nil, false, 0, false},
	} {
		f, ok := Of(c.fn)
		if got, want := ok, c.ok; got != want {
			t.Errorf("%T: got %v, want %v", c.fn, got, want)
			continue
		}
		if !ok {
			continue
		}
		if got, want := f.NumArg(), c.narg; got != want {
			t.Errorf("%T: got %v, want %v", c.fn, got, want)
		}
		if got, want := f.HasKwargs(), c.kwargs; got != want {
			t.Errorf("%T: got %v, want %v", c.fn, got, want)
		}
	}
}

func TestCall(t *testing.T) {
	ctx := context.Background()
	f, ok := Of(double)
	if !ok {
		t.Fatal("invalid func")
	}
	result, err := f.Call(ctx, []interface{}{[]int{1, 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.([]int)[1], 4; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCallContext(t *testing.T) {
	type key string
	ctx := context.WithValue(context.Background(), key("scale"), 10)
	f, ok := Of(func(ctx context.Context, x int) int {
		return x * ctx.Value(key("scale")).(int)
	})
	if !ok {
		t.Fatal("invalid func")
	}
	result, err := f.Call(ctx, []interface{}{7}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.(int), 70; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCallKwargs(t *testing.T) {
	f, ok := Of(func(x int, kw Kwargs) int {
		return x + kw["offset"].(int)
	})
	if !ok {
		t.Fatal("invalid func")
	}
	result, err := f.Call(context.Background(), []interface{}{1}, Kwargs{"offset": 10})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := result.(int), 11; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCallError(t *testing.T) {
	expect := errors.New("user function failed")
	f, ok := Of(func() (int, error) { return 0, expect })
	if !ok {
		t.Fatal("invalid func")
	}
	// The function's error propagates unmodified.
	if _, err := f.Call(context.Background(), nil, nil); err != expect {
		t.Errorf("got %v, want %v", err, expect)
	}
}

func TestCallNoResult(t *testing.T) {
	var called bool
	f, _ := Of(func() { called = true })
	result, err := f.Call(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Errorf("got %v, want nil", result)
	}
	if !called {
		t.Error("function was not invoked")
	}
}

func TestName(t *testing.T) {
	f, _ := Of(double)
	if got, want := f.Name(), "double"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := Nil.Name(), "<nil>"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIsNil(t *testing.T) {
	if !Nil.IsNil() {
		t.Error("Nil is not nil")
	}
	f, _ := Of(double)
	if f.IsNil() {
		t.Error("valid func reads as nil")
	}
}
