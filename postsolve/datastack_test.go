// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/curioloop/presolve/lp"
)

func TestDataStackLIFO(t *testing.T) {
	var s dataStack

	s.putFloat(3.5)
	s.putInt(-7)
	s.putBool(true)
	s.putByte(42)

	s.resetPosition()
	require.Equal(t, byte(42), s.takeByte())
	require.Equal(t, true, s.takeBool())
	require.Equal(t, -7, s.takeInt())
	require.Equal(t, 3.5, s.takeFloat())
	require.Zero(t, s.pos)
}

func TestDataStackReplay(t *testing.T) {
	var s dataStack
	s.putFloat(1.25)
	s.putInt(9)

	for i := 0; i < 2; i++ {
		s.resetPosition()
		require.Equal(t, 9, s.takeInt())
		require.Equal(t, 1.25, s.takeFloat())
	}
}

func TestDataStackNonzeros(t *testing.T) {
	var s dataStack

	nz := []lp.Nonzero{{Index: 4, Value: 0.5}, {Index: 1, Value: -2}, {Index: 9, Value: 3}}
	s.putNonzeros(nz)
	s.putNonzeros(nil)

	s.resetPosition()
	var dst []lp.Nonzero
	s.takeNonzeros(&dst)
	require.Empty(t, dst)
	s.takeNonzeros(&dst)
	require.Equal(t, nz, dst)
	require.Zero(t, s.pos)
}

func TestDataStackNonzerosReuse(t *testing.T) {
	var s dataStack
	s.putNonzeros([]lp.Nonzero{{Index: 1, Value: 1}, {Index: 2, Value: 2}})
	s.putNonzeros([]lp.Nonzero{{Index: 3, Value: 3}})

	s.resetPosition()
	dst := make([]lp.Nonzero, 0, 8)
	s.takeNonzeros(&dst)
	require.Equal(t, []lp.Nonzero{{Index: 3, Value: 3}}, dst)
	s.takeNonzeros(&dst)
	require.Equal(t, []lp.Nonzero{{Index: 1, Value: 1}, {Index: 2, Value: 2}}, dst)
}

func TestDataStackUnderflow(t *testing.T) {
	var s dataStack
	s.putByte(1)
	s.resetPosition()
	s.takeByte()
	require.Panics(t, func() { s.takeFloat() })
}
