// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"encoding/binary"
	"math"

	"github.com/curioloop/presolve/lp"
)

// dataStack is a byte-addressable LIFO holding the packed values of
// heterogeneous reduction payloads. Values are appended forward and
// read backward through the cursor pos, so the most recent un-popped
// value pops first. The stack stores no type tags: every take must
// mirror the matching put in exact inverse order.
type dataStack struct {
	data []byte
	pos  int
}

func (s *dataStack) putFloat(v float64) {
	s.data = binary.LittleEndian.AppendUint64(s.data, math.Float64bits(v))
}

func (s *dataStack) putInt(v int) {
	s.data = binary.LittleEndian.AppendUint64(s.data, uint64(int64(v)))
}

func (s *dataStack) putByte(v byte) {
	s.data = append(s.data, v)
}

func (s *dataStack) putBool(v bool) {
	if v {
		s.putByte(1)
	} else {
		s.putByte(0)
	}
}

// putNonzeros appends the elements followed by their count, so the
// count pops before the elements.
func (s *dataStack) putNonzeros(nz []lp.Nonzero) {
	for _, e := range nz {
		s.putInt(e.Index)
		s.putFloat(e.Value)
	}
	s.putInt(len(nz))
}

func (s *dataStack) take(n int) []byte {
	if s.pos < n {
		panic("data stack underflow")
	}
	s.pos -= n
	return s.data[s.pos : s.pos+n]
}

func (s *dataStack) takeFloat() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(s.take(8)))
}

func (s *dataStack) takeInt() int {
	return int(int64(binary.LittleEndian.Uint64(s.take(8))))
}

func (s *dataStack) takeByte() byte {
	return s.take(1)[0]
}

func (s *dataStack) takeBool() bool {
	return s.takeByte() != 0
}

// takeNonzeros pops a sequence pushed by putNonzeros into dst,
// preserving the insertion order of the elements.
func (s *dataStack) takeNonzeros(dst *[]lp.Nonzero) {
	n := s.takeInt()
	if cap(*dst) < n {
		*dst = make([]lp.Nonzero, n)
	}
	*dst = (*dst)[:n]
	for i := n - 1; i >= 0; i-- {
		v := s.takeFloat()
		k := s.takeInt()
		(*dst)[i] = lp.Nonzero{Index: k, Value: v}
	}
}

// resetPosition rewinds the read cursor to the top of the stack
// without discarding data, so a replay can be restarted.
func (s *dataStack) resetPosition() {
	s.pos = len(s.data)
}
