// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNonzeros(t *testing.T) {
	src := []Nonzero{{Index: 3, Value: 1.5}, {Index: 0, Value: -2}}

	var got []Nonzero
	Nonzeros(src)(func(i int, v float64) bool {
		got = append(got, Nonzero{Index: i, Value: v})
		return true
	})
	require.Equal(t, src, got)

	// consumers may stop early
	n := 0
	Nonzeros(src)(func(int, float64) bool {
		n++
		return false
	})
	require.Equal(t, 1, n)
}
