// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package split

import "github.com/grailbio/base/errors"

// EOF is the error returned by Seq.Next when no more batches are
// available, and by Type.Split when the requested window lies beyond
// the value. EOF is intended as a sentinel: it signals graceful
// exhaustion of a source. If production terminates unexpectedly, a
// different error should be returned.
var EOF = errors.New("EOF")

// A Seq is a stateful, pull-based source of batch values. Split types
// whose strategy cannot random-access a window (e.g., a stream being
// decoded incrementally) return a Seq from Split; the VM then produces
// each subsequent batch by pulling.
type Seq interface {
	// Next returns the next batch value. When no more values are
	// available, Next returns EOF, and every call after that returns
	// EOF again.
	//
	// Next should not be called concurrently.
	Next() (interface{}, error)
}

type sliceSeq struct {
	values []interface{}
}

// SliceSeq returns a Seq that yields each of the provided values in
// order and then EOF.
func SliceSeq(values ...interface{}) Seq {
	return &sliceSeq{values}
}

func (s *sliceSeq) Next() (interface{}, error) {
	if len(s.values) == 0 {
		return nil, EOF
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

type multiSeq struct {
	q   []Seq
	err error
}

// MultiSeq returns a Seq that is the logical concatenation of the
// provided sequences. Once every underlying Seq has returned EOF,
// Next returns EOF, too. Non-EOF errors are returned immediately and
// latched.
func MultiSeq(seqs ...Seq) Seq {
	return &multiSeq{q: seqs}
}

func (m *multiSeq) Next() (interface{}, error) {
	if m.err != nil {
		return nil, m.err
	}
	for len(m.q) > 0 {
		v, err := m.q[0].Next()
		switch {
		case err == EOF:
			m.q = m.q[1:]
		case err != nil:
			m.err = err
			return nil, err
		default:
			return v, nil
		}
	}
	return nil, EOF
}

type errSeq struct{ err error }

// ErrSeq returns a Seq that returns the provided error on every call
// to Next. ErrSeq panics if err is nil.
func ErrSeq(err error) Seq {
	if err == nil {
		panic("nil error")
	}
	return errSeq{err}
}

func (e errSeq) Next() (interface{}, error) {
	return nil, e.err
}

// EmptySeq returns EOF immediately.
type EmptySeq struct{}

// Next implements Seq.
func (EmptySeq) Next() (interface{}, error) {
	return nil, EOF
}

// Collect drains seq and returns its values in order. It is intended
// for recombining partials and for testing; it is not tuned for large
// sequences.
func Collect(seq Seq) ([]interface{}, error) {
	var values []interface{}
	for {
		v, err := seq.Next()
		if err == EOF {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}
