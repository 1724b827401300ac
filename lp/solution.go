// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lp holds the solution and basis shapes shared between the
// presolve components and their callers.
//
// A Solution always carries primal values. Dual values are optional:
// postsolve treats a solution as primal-only unless ColDual has the
// same length as ColValue.
package lp

// BasisStatus describes whether a column or row is in the simplex
// basis or at which of its bounds it rests.
type BasisStatus uint8

const (
	// BasisLower variable is nonbasic at its lower bound.
	BasisLower BasisStatus = iota
	// BasisBasic variable is in the basis.
	BasisBasic
	// BasisUpper variable is nonbasic at its upper bound.
	BasisUpper
	// BasisZero free variable is nonbasic at zero.
	BasisZero
	// BasisNonbasic variable is nonbasic without a designated bound.
	BasisNonbasic
)

// Solution is a primal (and optionally dual) point, mutated in place
// by postsolve. Ownership stays with the caller.
type Solution struct {
	ColValue []float64
	RowValue []float64
	ColDual  []float64
	RowDual  []float64
}

// Basis holds the simplex basis statuses matching a Solution.
type Basis struct {
	ColStatus []BasisStatus
	RowStatus []BasisStatus
}

// Nonzero is one entry of a sparse row or column slice.
type Nonzero struct {
	Index int
	Value float64
}

// NonzeroIter produces the nonzeros of a sparse row or column slice as
// (reduced index, coefficient) pairs. The sequence must be finite.
type NonzeroIter func(yield func(index int, value float64) bool)

// Nonzeros adapts a slice to the iterator capability.
func Nonzeros(nz []Nonzero) NonzeroIter {
	return func(yield func(int, float64) bool) {
		for _, e := range nz {
			if !yield(e.Index, e.Value) {
				return
			}
		}
	}
}
