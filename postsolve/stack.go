// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/curioloop/presolve/lp"
)

// Stack is the append-only log of presolve reductions together with
// everything needed to replay them in reverse: the packed value stack
// holding descriptors and side payloads, the maps from the shrinking
// reduced index space to the fixed original space, and two reusable
// scratch buffers amortizing payload copies.
//
// A Stack is exclusively owned by one presolve context and must not be
// shared across goroutines.
type Stack struct {
	values     dataStack
	reductions []reductionType

	origRowIndex []int
	origColIndex []int
	origNumRow   int
	origNumCol   int

	rowValues []lp.Nonzero
	colValues []lp.Nonzero

	stale *bitset.BitSet
}

// NumReductions returns the current record length. The value is usable
// as a checkpoint token for UndoUntil.
func (s *Stack) NumReductions() int { return len(s.reductions) }

// StaleRows returns the set of original-space rows whose activity was
// set to a sentinel of zero during the last replay because their
// coefficients are not recorded (redundant rows). Callers that need
// exact activities must recompute these residuals against the original
// matrix. The set is valid until the next replay.
func (s *Stack) StaleRows() *bitset.BitSet { return s.stale }

// snapshotRow copies a row slice into the row scratch buffer,
// translating column indices to original space.
func (s *Stack) snapshotRow(rowVec lp.NonzeroIter) {
	s.rowValues = s.rowValues[:0]
	rowVec(func(col int, val float64) bool {
		s.rowValues = append(s.rowValues, lp.Nonzero{Index: s.origColIndex[col], Value: val})
		return true
	})
}

// snapshotCol copies a column slice into the column scratch buffer,
// translating row indices to original space.
func (s *Stack) snapshotCol(colVec lp.NonzeroIter) {
	s.colValues = s.colValues[:0]
	colVec(func(row int, val float64) bool {
		s.colValues = append(s.colValues, lp.Nonzero{Index: s.origRowIndex[row], Value: val})
		return true
	})
}

// FreeColSubstitution records the elimination of free column col
// against row, which was active at rhs. rowVec and colVec are the
// row's and column's nonzeros at the moment of the reduction.
func (s *Stack) FreeColSubstitution(row, col int, rhs, colCost float64, rowType RowType,
	rowVec, colVec lp.NonzeroIter) {
	s.snapshotRow(rowVec)
	s.snapshotCol(colVec)

	r := freeColSubstitution{
		rhs:     rhs,
		colCost: colCost,
		row:     s.origRowIndex[row],
		col:     s.origColIndex[col],
		rowType: rowType,
	}
	r.push(&s.values)
	s.values.putNonzeros(s.rowValues)
	s.values.putNonzeros(s.colValues)
	s.reductions = append(s.reductions, kindFreeColSubstitution)
}

// DoubletonEquation records the substitution of colSubst out of the
// two-variable equality row coef·col + coefSubst·colSubst = rhs. The
// old/new bound pairs describe how col's bounds changed through the
// substitution; colVec is colSubst's column at the moment of the
// reduction.
func (s *Stack) DoubletonEquation(row, colSubst, col int, coefSubst, coef, rhs,
	substLower, substUpper, oldLower, oldUpper, newLower, newUpper, substCost float64,
	colVec lp.NonzeroIter) {
	s.snapshotCol(colVec)

	r := doubletonEquation{
		coef:           coef,
		coefSubst:      coefSubst,
		rhs:            rhs,
		substLower:     substLower,
		substUpper:     substUpper,
		substCost:      substCost,
		row:            s.origRowIndex[row],
		colSubst:       s.origColIndex[colSubst],
		col:            s.origColIndex[col],
		lowerTightened: oldLower < newLower,
		upperTightened: oldUpper > newUpper,
	}
	r.push(&s.values)
	s.values.putNonzeros(s.colValues)
	s.reductions = append(s.reductions, kindDoubletonEquation)
}

// EqualityRowAddition records the addition of eqRowScale times the
// equality row addedEqRow to row.
func (s *Stack) EqualityRowAddition(row, addedEqRow int, eqRowScale float64) {
	if eqRowScale == 0 {
		panic("equality row scale must be nonzero")
	}
	r := equalityRowAddition{
		row:        s.origRowIndex[row],
		addedEqRow: s.origRowIndex[addedEqRow],
		eqRowScale: eqRowScale,
	}
	r.push(&s.values)
	s.reductions = append(s.reductions, kindEqualityRowAddition)
}

// SingletonRow records the removal of a row whose single nonzero coef
// sits on col, possibly after tightening one of the column's bounds.
func (s *Stack) SingletonRow(row, col int, coef float64, tightenedColLower, tightenedColUpper bool) {
	r := singletonRow{
		coef:              coef,
		row:               s.origRowIndex[row],
		col:               s.origColIndex[col],
		colLowerTightened: tightenedColLower,
		colUpperTightened: tightenedColUpper,
	}
	r.push(&s.values)
	s.reductions = append(s.reductions, kindSingletonRow)
}

func (s *Stack) fixedCol(col int, fixValue, colCost float64, fixType lp.BasisStatus, colVec lp.NonzeroIter) {
	if math.IsInf(fixValue, 0) || math.IsNaN(fixValue) {
		panic("fixed column value must be finite")
	}
	s.snapshotCol(colVec)

	r := fixedCol{
		fixValue: fixValue,
		colCost:  colCost,
		col:      s.origColIndex[col],
		fixType:  fixType,
	}
	r.push(&s.values)
	s.values.putNonzeros(s.colValues)
	s.reductions = append(s.reductions, kindFixedCol)
}

// FixedColAtLower records the removal of col fixed at its lower bound.
func (s *Stack) FixedColAtLower(col int, fixValue, colCost float64, colVec lp.NonzeroIter) {
	s.fixedCol(col, fixValue, colCost, lp.BasisLower, colVec)
}

// FixedColAtUpper records the removal of col fixed at its upper bound.
func (s *Stack) FixedColAtUpper(col int, fixValue, colCost float64, colVec lp.NonzeroIter) {
	s.fixedCol(col, fixValue, colCost, lp.BasisUpper, colVec)
}

// RemovedFixedCol records the removal of a column whose bounds already
// coincided, which re-enters nonbasic without a designated bound.
func (s *Stack) RemovedFixedCol(col int, fixValue, colCost float64, colVec lp.NonzeroIter) {
	s.fixedCol(col, fixValue, colCost, lp.BasisNonbasic, colVec)
}

// RedundantRow records the removal of a row whose bounds could never
// be violated.
func (s *Stack) RedundantRow(row int) {
	r := redundantRow{row: s.origRowIndex[row]}
	r.push(&s.values)
	s.reductions = append(s.reductions, kindRedundantRow)
}

// ForcingRow records the removal of a row forced at side, which pinned
// every one of its columns to a bound. rowVec is the row's nonzeros at
// the moment of the reduction.
func (s *Stack) ForcingRow(row int, rowVec lp.NonzeroIter, side float64, rowType RowType) {
	s.snapshotRow(rowVec)

	r := forcingRow{
		side:    side,
		row:     s.origRowIndex[row],
		rowType: rowType,
	}
	r.push(&s.values)
	s.values.putNonzeros(s.rowValues)
	s.reductions = append(s.reductions, kindForcingRow)
}

// DuplicateRow records the removal of row, a scalar multiple of the
// surviving duplicateRow. The tightened flags say whether the
// survivor's lower/upper bound was tightened by the removed row's
// scale-adjusted bound.
func (s *Stack) DuplicateRow(row int, rowUpperTightened, rowLowerTightened bool,
	survivorRow int, duplicateRowScale float64) {
	r := duplicateRow{
		duplicateRowScale: duplicateRowScale,
		duplicateRow:      s.origRowIndex[survivorRow],
		row:               s.origRowIndex[row],
		rowLowerTightened: rowLowerTightened,
		rowUpperTightened: rowUpperTightened,
	}
	r.push(&s.values)
	s.reductions = append(s.reductions, kindDuplicateRow)
}

// DuplicateColumn records the merge of duplicateCol into col, the
// merged column representing col + colScale·duplicateCol.
func (s *Stack) DuplicateColumn(colScale, colLower, colUpper, duplicateColLower, duplicateColUpper float64,
	col, duplicateCol int, colIntegral, duplicateColIntegral bool) {
	if colScale == 0 {
		panic("duplicate column scale must be nonzero")
	}
	r := duplicateColumn{
		colScale:             colScale,
		colLower:             colLower,
		colUpper:             colUpper,
		duplicateColLower:    duplicateColLower,
		duplicateColUpper:    duplicateColUpper,
		col:                  s.origColIndex[col],
		duplicateCol:         s.origColIndex[duplicateCol],
		colIntegral:          colIntegral,
		duplicateColIntegral: duplicateColIntegral,
	}
	r.push(&s.values)
	s.reductions = append(s.reductions, kindDuplicateColumn)
}
