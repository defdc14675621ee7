// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package split

import (
	"reflect"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/grailbio/base/errors"
)

func TestSliceSeq(t *testing.T) {
	const N = 100
	var (
		fz     = fuzz.NewWithSeed(12345)
		values = fuzzValues(fz, N)
		seq    = SliceSeq(values...)
	)
	got, err := Collect(seq)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Error("values do not match")
	}
	// A drained Seq stays drained.
	for i := 0; i < 3; i++ {
		if _, err := seq.Next(); err != EOF {
			t.Errorf("got %v, want EOF", err)
		}
	}
}

func TestMultiSeq(t *testing.T) {
	var (
		fz     = fuzz.NewWithSeed(12345)
		values = fuzzValues(fz, 30)
		seq    = MultiSeq(
			SliceSeq(values[0:10]...),
			EmptySeq{},
			SliceSeq(values[10:20]...),
			SliceSeq(values[20:30]...),
		)
	)
	got, err := Collect(seq)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, values) {
		t.Error("values do not match")
	}
	if _, err := seq.Next(); err != EOF {
		t.Errorf("got %v, want EOF", err)
	}
}

func TestMultiSeqErr(t *testing.T) {
	expect := errors.New("source failed")
	seq := MultiSeq(SliceSeq(1, 2), ErrSeq(expect), SliceSeq(3))
	for i := 0; i < 2; i++ {
		if _, err := seq.Next(); err != nil {
			t.Fatal(err)
		}
	}
	// The error is latched: it is returned on every subsequent pull.
	for i := 0; i < 2; i++ {
		if _, err := seq.Next(); err != expect {
			t.Errorf("got %v, want %v", err, expect)
		}
	}
}

func TestEmptySeq(t *testing.T) {
	if _, err := (EmptySeq{}).Next(); err != EOF {
		t.Errorf("got %v, want EOF", err)
	}
}

func fuzzValues(fz *fuzz.Fuzzer, n int) []interface{} {
	values := make([]interface{}, n)
	for i := range values {
		var s string
		fz.Fuzz(&s)
		values[i] = s
	}
	return values
}
