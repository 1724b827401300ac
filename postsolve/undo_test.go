// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/presolve/lp"
)

// With an empty record the lift leaves a full-size solution untouched.
func TestUndoIdentity(t *testing.T) {
	var st Stack
	st.InitializeIndexMaps(2, 2)

	sol := &lp.Solution{
		ColValue: []float64{1, 2}, RowValue: []float64{3, 4},
		ColDual: []float64{5, 6}, RowDual: []float64{7, 8},
	}
	basis := &lp.Basis{
		ColStatus: []lp.BasisStatus{lp.BasisBasic, lp.BasisLower},
		RowStatus: []lp.BasisStatus{lp.BasisUpper, lp.BasisBasic},
	}
	want := &lp.Solution{
		ColValue: []float64{1, 2}, RowValue: []float64{3, 4},
		ColDual: []float64{5, 6}, RowDual: []float64{7, 8},
	}

	st.Undo(sol, basis, feastol)
	require.Empty(t, cmp.Diff(want, sol))
	require.Equal(t, lp.BasisUpper, basis.RowStatus[0])

	// a second replay with original-size arrays is rejected silently
	st.CompressIndexMaps([]int{0, Removed}, []int{0, Removed})
	st.Undo(sol, basis, feastol)
	require.Empty(t, cmp.Diff(want, sol))
}

func TestUndoShapeMismatch(t *testing.T) {
	var st Stack
	st.InitializeIndexMaps(1, 3)

	sol := &lp.Solution{ColValue: []float64{1, 2}, RowValue: []float64{3}}
	st.Undo(sol, nil, feastol)
	require.Equal(t, []float64{1, 2}, sol.ColValue)
	require.Equal(t, []float64{3}, sol.RowValue)
}

// The in-place gather moves each reduced slot i to origIndex[i] ≥ i
// without overwriting unread values, and zero-fills the gaps.
func TestExpandLift(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	properties.Property("reverse gather never clobbers", prop.ForAll(
		func(keep []bool) bool {
			var orig []int
			for i, k := range keep {
				if k {
					orig = append(orig, i)
				}
			}
			v := make([]float64, len(orig))
			for i := range v {
				v[i] = float64(orig[i]) + 0.5
			}
			v = expandFloats(v, orig, len(keep))

			for i, k := range keep {
				if k && v[i] != float64(i)+0.5 {
					return false
				}
				if !k && v[i] != 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(20, gen.Bool()),
	))
	properties.TestingRun(t)
}

// Recording R0..R4 and undoing until checkpoint 2 replays only R4, R3
// and R2, and keeps the record length observable.
func TestUndoUntilCheckpoint(t *testing.T) {
	var st Stack
	st.InitializeIndexMaps(6, 0)
	for k := 0; k < 5; k++ {
		st.EqualityRowAddition(0, k+1, 1)
	}
	require.Equal(t, 5, st.NumReductions())

	duals := []float64{2, 10, 20, 30, 40, 50}

	sol := &lp.Solution{
		ColValue: []float64{}, RowValue: make([]float64, 6),
		ColDual: []float64{}, RowDual: append([]float64(nil), duals...),
	}
	basis := &lp.Basis{ColStatus: []lp.BasisStatus{}, RowStatus: make([]lp.BasisStatus, 6)}

	st.UndoUntil(sol, basis, feastol, 2)
	require.Equal(t, 5, st.NumReductions())
	require.Empty(t, cmp.Diff([]float64{2, 10, 20, 28, 38, 48}, sol.RowDual))
	require.Positive(t, st.values.pos)

	// the cursor rewinds, so a full replay can restart from the
	// reduced solution
	sol2 := &lp.Solution{
		ColValue: []float64{}, RowValue: make([]float64, 6),
		ColDual: []float64{}, RowDual: append([]float64(nil), duals...),
	}
	st.Undo(sol2, basis, feastol)
	require.Empty(t, cmp.Diff([]float64{2, 8, 18, 28, 38, 48}, sol2.RowDual))
	require.Zero(t, st.values.pos)
}

// A singleton-row removal followed by a doubleton substitution:
//
//	min x0 + x1 + x2
//	s.t. x0 + x1 = 5, 2·x2 ≤ 6, x ≥ 0, x2 ≤ 10
//
// The lifted point must satisfy A·x = row activities and the lifted
// duals must price every column exactly.
func TestUndoComposition(t *testing.T) {
	var st Stack
	st.InitializeIndexMaps(2, 3)

	// the singleton row tightens x2 to [0,3] and goes away
	st.SingletonRow(1, 2, 2, false, true)
	st.CompressIndexMaps([]int{0, Removed}, []int{0, 1, 2})

	// substitute x1 = 5 - x0 out of the equality row
	st.DoubletonEquation(0, 1, 0, 1, 1, 5,
		0, math.Inf(1), 0, math.Inf(1), 0, 5, 1,
		lp.Nonzeros([]lp.Nonzero{{Index: 0, Value: 1}}))
	st.CompressIndexMaps([]int{Removed}, []int{0, Removed, 1})

	// reduced problem: min x0·0 + x2 over [0,5]×[0,3]
	sol := &lp.Solution{
		ColValue: []float64{0, 0}, RowValue: []float64{},
		ColDual: []float64{0, 1}, RowDual: []float64{},
	}
	basis := &lp.Basis{
		ColStatus: []lp.BasisStatus{lp.BasisLower, lp.BasisLower},
		RowStatus: []lp.BasisStatus{},
	}
	st.Undo(sol, basis, feastol)

	require.True(t, floats.EqualApprox([]float64{0, 5, 0}, sol.ColValue, feastol))
	require.True(t, floats.EqualApprox([]float64{5, 0}, sol.RowValue, feastol))

	// primal feasibility: A·x equals the lifted activities
	a := mat.NewDense(2, 3, []float64{
		1, 1, 0,
		0, 0, 2,
	})
	var ax mat.VecDense
	ax.MulVec(a, mat.NewVecDense(3, sol.ColValue))
	require.True(t, floats.EqualApprox(ax.RawVector().Data, sol.RowValue, feastol))

	// dual feasibility: c - Aᵀy prices every column
	cost := []float64{1, 1, 1}
	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(2, sol.RowDual))
	for j, c := range cost {
		require.InDelta(t, c-aty.AtVec(j), sol.ColDual[j], feastol)
	}

	// the basis stays square: one basic variable per row
	nBasic := 0
	for _, s := range basis.ColStatus {
		if s == lp.BasisBasic {
			nBasic++
		}
	}
	for _, s := range basis.RowStatus {
		if s == lp.BasisBasic {
			nBasic++
		}
	}
	require.Equal(t, 2, nBasic)
}
