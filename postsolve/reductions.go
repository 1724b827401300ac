// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"math"

	"github.com/curioloop/presolve/lp"
)

// Each reduction kind is a slim descriptor holding original-space
// indices and a handful of scalars. Variable-length side data (the
// row/column nonzeros at the moment of the reduction) lives on the
// value stack, never in the descriptor. The push and pop codecs must
// mirror each other exactly: pop reads the fields in the reverse of
// the order push wrote them.
//
// Dual convention throughout: colDual = colCost - Σ rowDual·a, with
// rowDual ≥ 0 at a row's lower side and ≤ 0 at its upper side.

// rowSideStatus is the basis status of a row reinstated nonbasic at
// its active side.
func rowSideStatus(t RowType) lp.BasisStatus {
	switch t {
	case RowGeq:
		return lp.BasisLower
	case RowLeq:
		return lp.BasisUpper
	}
	return lp.BasisNonbasic
}

// boundStatus classifies a value against a bound pair, ties toward
// the lower bound.
func boundStatus(v, lower, upper, feastol float64) lp.BasisStatus {
	switch {
	case math.Abs(v-lower) <= feastol:
		return lp.BasisLower
	case math.Abs(v-upper) <= feastol:
		return lp.BasisUpper
	}
	return lp.BasisBasic
}

// freeColSubstitution undoes the elimination of a free column against
// one of its rows.
type freeColSubstitution struct {
	rhs     float64
	colCost float64
	row     int
	col     int
	rowType RowType
}

func (r *freeColSubstitution) push(s *dataStack) {
	s.putFloat(r.rhs)
	s.putFloat(r.colCost)
	s.putInt(r.row)
	s.putInt(r.col)
	s.putByte(byte(r.rowType))
}

func (r *freeColSubstitution) pop(s *dataStack) {
	r.rowType = RowType(s.takeByte())
	r.col = s.takeInt()
	r.row = s.takeInt()
	r.colCost = s.takeFloat()
	r.rhs = s.takeFloat()
}

func (r *freeColSubstitution) undo(rowValues, colValues []lp.Nonzero, sol *lp.Solution, basis *lp.Basis, dual bool) {
	// the free column takes whatever value satisfies the row at its side
	sum, colCoef := zero, zero
	for _, nz := range rowValues {
		if nz.Index == r.col {
			colCoef = nz.Value
		} else {
			sum += nz.Value * sol.ColValue[nz.Index]
		}
	}
	sol.ColValue[r.col] = (r.rhs - sum) / colCoef
	sol.RowValue[r.row] = r.rhs

	if !dual {
		return
	}

	// a free column must have zero reduced cost, the row dual absorbs
	// the residual of the column's stationarity
	d, rowCoef := r.colCost, zero
	for _, nz := range colValues {
		if nz.Index == r.row {
			rowCoef = nz.Value
		} else {
			d -= sol.RowDual[nz.Index] * nz.Value
		}
	}
	sol.RowDual[r.row] = d / rowCoef
	sol.ColDual[r.col] = 0
	basis.ColStatus[r.col] = lp.BasisBasic
	basis.RowStatus[r.row] = rowSideStatus(r.rowType)
}

// doubletonEquation undoes the substitution of one variable of a
// two-variable equality row.
type doubletonEquation struct {
	coef           float64
	coefSubst      float64
	rhs            float64
	substLower     float64
	substUpper     float64
	substCost      float64
	row            int
	colSubst       int
	col            int
	lowerTightened bool
	upperTightened bool
}

func (r *doubletonEquation) push(s *dataStack) {
	s.putFloat(r.coef)
	s.putFloat(r.coefSubst)
	s.putFloat(r.rhs)
	s.putFloat(r.substLower)
	s.putFloat(r.substUpper)
	s.putFloat(r.substCost)
	s.putInt(r.row)
	s.putInt(r.colSubst)
	s.putInt(r.col)
	s.putBool(r.lowerTightened)
	s.putBool(r.upperTightened)
}

func (r *doubletonEquation) pop(s *dataStack) {
	r.upperTightened = s.takeBool()
	r.lowerTightened = s.takeBool()
	r.col = s.takeInt()
	r.colSubst = s.takeInt()
	r.row = s.takeInt()
	r.substCost = s.takeFloat()
	r.substUpper = s.takeFloat()
	r.substLower = s.takeFloat()
	r.rhs = s.takeFloat()
	r.coefSubst = s.takeFloat()
	r.coef = s.takeFloat()
}

func (r *doubletonEquation) undo(colValues []lp.Nonzero, sol *lp.Solution, basis *lp.Basis, dual bool, feastol float64) {
	substVal := (r.rhs - r.coef*sol.ColValue[r.col]) / r.coefSubst
	sol.ColValue[r.colSubst] = substVal
	sol.RowValue[r.row] = r.rhs

	if !dual {
		return
	}

	// row dual from the substituted column's stationarity, its
	// other-row contributions come from the column payload
	rowDual := r.substCost
	for _, nz := range colValues {
		if nz.Index != r.row {
			rowDual -= sol.RowDual[nz.Index] * nz.Value
		}
	}
	rowDual /= r.coefSubst

	substStatus := boundStatus(substVal, r.substLower, r.substUpper, feastol)

	colStatus := basis.ColStatus[r.col]
	tightened := (r.lowerTightened && colStatus == lp.BasisLower) ||
		(r.upperTightened && colStatus == lp.BasisUpper)

	if tightened && substStatus != lp.BasisBasic && r.coef != 0 {
		// the kept column rests on a bound introduced by this
		// reduction, shift the row dual so the kept column can enter
		// the basis while the substituted column lands on its own bound
		redCost := sol.ColDual[r.col]
		rowDual += redCost / r.coef
		basis.ColStatus[r.col] = lp.BasisBasic
		sol.ColDual[r.col] = 0
		sol.ColDual[r.colSubst] = -r.coefSubst / r.coef * redCost
		basis.ColStatus[r.colSubst] = substStatus
	} else {
		sol.ColDual[r.colSubst] = 0
		basis.ColStatus[r.colSubst] = lp.BasisBasic
	}

	sol.RowDual[r.row] = rowDual
	basis.RowStatus[r.row] = rowSideStatus(RowEq)
}

// equalityRowAddition undoes the addition of a multiple of an equality
// row to another row. Primal activities are untouched.
type equalityRowAddition struct {
	row        int
	addedEqRow int
	eqRowScale float64
}

func (r *equalityRowAddition) push(s *dataStack) {
	s.putInt(r.row)
	s.putInt(r.addedEqRow)
	s.putFloat(r.eqRowScale)
}

func (r *equalityRowAddition) pop(s *dataStack) {
	r.eqRowScale = s.takeFloat()
	r.addedEqRow = s.takeInt()
	r.row = s.takeInt()
}

func (r *equalityRowAddition) undo(sol *lp.Solution, basis *lp.Basis, dual bool) {
	if dual {
		sol.RowDual[r.addedEqRow] -= r.eqRowScale * sol.RowDual[r.row]
	}
}

// singletonRow undoes the removal of a row with a single nonzero that
// may have tightened a bound of its column.
type singletonRow struct {
	coef              float64
	row               int
	col               int
	colLowerTightened bool
	colUpperTightened bool
}

func (r *singletonRow) push(s *dataStack) {
	s.putFloat(r.coef)
	s.putInt(r.row)
	s.putInt(r.col)
	s.putBool(r.colLowerTightened)
	s.putBool(r.colUpperTightened)
}

func (r *singletonRow) pop(s *dataStack) {
	r.colUpperTightened = s.takeBool()
	r.colLowerTightened = s.takeBool()
	r.col = s.takeInt()
	r.row = s.takeInt()
	r.coef = s.takeFloat()
}

func (r *singletonRow) undo(sol *lp.Solution, basis *lp.Basis, dual bool) {
	sol.RowValue[r.row] = r.coef * sol.ColValue[r.col]

	if !dual {
		return
	}

	transfer := false
	switch basis.ColStatus[r.col] {
	case lp.BasisLower:
		transfer = r.colLowerTightened
	case lp.BasisUpper:
		transfer = r.colUpperTightened
	}

	if transfer {
		// the column rests on a bound introduced by this row, move the
		// dual onto the row and let the column enter the basis
		atUpper := (basis.ColStatus[r.col] == lp.BasisUpper) == (r.coef > 0)
		sol.RowDual[r.row] = sol.ColDual[r.col] / r.coef
		sol.ColDual[r.col] = 0
		basis.ColStatus[r.col] = lp.BasisBasic
		if atUpper {
			basis.RowStatus[r.row] = lp.BasisUpper
		} else {
			basis.RowStatus[r.row] = lp.BasisLower
		}
	} else {
		sol.RowDual[r.row] = 0
		basis.RowStatus[r.row] = lp.BasisBasic
	}
}

// fixedCol undoes the removal of a column fixed at a bound (or fixed
// as nonbasic at equal bounds).
type fixedCol struct {
	fixValue float64
	colCost  float64
	col      int
	fixType  lp.BasisStatus
}

func (r *fixedCol) push(s *dataStack) {
	s.putFloat(r.fixValue)
	s.putFloat(r.colCost)
	s.putInt(r.col)
	s.putByte(byte(r.fixType))
}

func (r *fixedCol) pop(s *dataStack) {
	r.fixType = lp.BasisStatus(s.takeByte())
	r.col = s.takeInt()
	r.colCost = s.takeFloat()
	r.fixValue = s.takeFloat()
}

func (r *fixedCol) undo(colValues []lp.Nonzero, sol *lp.Solution, basis *lp.Basis, dual bool) {
	sol.ColValue[r.col] = r.fixValue

	if !dual {
		return
	}

	d := r.colCost
	for _, nz := range colValues {
		d -= sol.RowDual[nz.Index] * nz.Value
	}
	sol.ColDual[r.col] = d
	basis.ColStatus[r.col] = r.fixType
}

// redundantRow undoes the removal of a row whose bounds could never be
// violated. The row's coefficients are not stored: its activity is set
// to a sentinel of zero and the row is reported through
// Stack.StaleRows for the caller to recompute.
type redundantRow struct {
	row int
}

func (r *redundantRow) push(s *dataStack) {
	s.putInt(r.row)
}

func (r *redundantRow) pop(s *dataStack) {
	r.row = s.takeInt()
}

func (r *redundantRow) undo(sol *lp.Solution, basis *lp.Basis, dual bool) {
	sol.RowValue[r.row] = 0
	if dual {
		sol.RowDual[r.row] = 0
		basis.RowStatus[r.row] = lp.BasisBasic
	}
}

// forcingRow undoes the removal of a row whose side forced every one
// of its columns to a bound.
type forcingRow struct {
	side    float64
	row     int
	rowType RowType
}

func (r *forcingRow) push(s *dataStack) {
	s.putFloat(r.side)
	s.putInt(r.row)
	s.putByte(byte(r.rowType))
}

func (r *forcingRow) pop(s *dataStack) {
	r.rowType = RowType(s.takeByte())
	r.row = s.takeInt()
	r.side = s.takeFloat()
}

func (r *forcingRow) undo(rowValues []lp.Nonzero, sol *lp.Solution, basis *lp.Basis, dual bool) {
	sol.RowValue[r.row] = r.side

	if !dual {
		return
	}

	// ratio test over the pinned columns. Every column pinned by the
	// row constrains the row dual from the same side, so the dual is
	// the extreme ratio and the column attaining it enters the basis
	// with exactly zero reduced cost.
	maxAt, minAt := -1, -1
	maxRatio, minRatio := zero, zero
	for i, nz := range rowValues {
		if nz.Value == 0 {
			continue
		}
		ratio := sol.ColDual[nz.Index] / nz.Value
		if ratio > maxRatio {
			maxRatio, maxAt = ratio, i
		}
		if ratio < minRatio {
			minRatio, minAt = ratio, i
		}
	}

	best, rowDual := -1, zero
	switch {
	case r.rowType != RowLeq && maxAt >= 0:
		best, rowDual = maxAt, maxRatio
	case r.rowType != RowGeq && minAt >= 0:
		best, rowDual = minAt, minRatio
	}

	if best == -1 {
		// zero dual keeps every pinned column feasible, the row
		// enters the basis itself
		sol.RowDual[r.row] = 0
		basis.RowStatus[r.row] = lp.BasisBasic
		return
	}

	sol.RowDual[r.row] = rowDual
	for _, nz := range rowValues {
		sol.ColDual[nz.Index] -= rowDual * nz.Value
	}
	enter := rowValues[best].Index
	sol.ColDual[enter] = 0
	basis.ColStatus[enter] = lp.BasisBasic
	basis.RowStatus[r.row] = rowSideStatus(r.rowType)
}

// duplicateRow undoes the removal of a row that was a scalar multiple
// of a surviving row. row is the removed duplicate, duplicateRow the
// survivor, and the removed row satisfied a_row = scale·a_duplicateRow.
// The tightened flags describe the survivor's merged bounds.
type duplicateRow struct {
	duplicateRowScale float64
	duplicateRow      int
	row               int
	rowLowerTightened bool
	rowUpperTightened bool
}

func (r *duplicateRow) push(s *dataStack) {
	s.putFloat(r.duplicateRowScale)
	s.putInt(r.duplicateRow)
	s.putInt(r.row)
	s.putBool(r.rowLowerTightened)
	s.putBool(r.rowUpperTightened)
}

func (r *duplicateRow) pop(s *dataStack) {
	r.rowUpperTightened = s.takeBool()
	r.rowLowerTightened = s.takeBool()
	r.row = s.takeInt()
	r.duplicateRow = s.takeInt()
	r.duplicateRowScale = s.takeFloat()
}

func (r *duplicateRow) undo(sol *lp.Solution, basis *lp.Basis, dual bool) {
	sol.RowValue[r.row] = r.duplicateRowScale * sol.RowValue[r.duplicateRow]

	if !dual {
		return
	}

	yd := sol.RowDual[r.duplicateRow]
	status := basis.RowStatus[r.duplicateRow]
	atLower := status == lp.BasisLower || (status != lp.BasisBasic && status != lp.BasisUpper && yd > 0)
	atUpper := status == lp.BasisUpper || (status != lp.BasisBasic && status != lp.BasisLower && yd < 0)

	if (atLower && r.rowLowerTightened) || (atUpper && r.rowUpperTightened) {
		// the survivor's active side came from the removed duplicate,
		// the dual weight belongs to the removed row
		sol.RowDual[r.row] = yd / r.duplicateRowScale
		sol.RowDual[r.duplicateRow] = 0
		basis.RowStatus[r.duplicateRow] = lp.BasisBasic
		if atLower == (r.duplicateRowScale > 0) {
			basis.RowStatus[r.row] = lp.BasisLower
		} else {
			basis.RowStatus[r.row] = lp.BasisUpper
		}
	} else {
		sol.RowDual[r.row] = 0
		basis.RowStatus[r.row] = lp.BasisBasic
	}
}

// duplicateColumn undoes the merge of a column that was a scalar
// multiple of another. The reduced problem kept a single merged column
// in col's slot representing col + colScale·duplicateCol.
type duplicateColumn struct {
	colScale             float64
	colLower             float64
	colUpper             float64
	duplicateColLower    float64
	duplicateColUpper    float64
	col                  int
	duplicateCol         int
	colIntegral          bool
	duplicateColIntegral bool
}

func (r *duplicateColumn) push(s *dataStack) {
	s.putFloat(r.colScale)
	s.putFloat(r.colLower)
	s.putFloat(r.colUpper)
	s.putFloat(r.duplicateColLower)
	s.putFloat(r.duplicateColUpper)
	s.putInt(r.col)
	s.putInt(r.duplicateCol)
	s.putBool(r.colIntegral)
	s.putBool(r.duplicateColIntegral)
}

func (r *duplicateColumn) pop(s *dataStack) {
	r.duplicateColIntegral = s.takeBool()
	r.colIntegral = s.takeBool()
	r.duplicateCol = s.takeInt()
	r.col = s.takeInt()
	r.duplicateColUpper = s.takeFloat()
	r.duplicateColLower = s.takeFloat()
	r.colUpper = s.takeFloat()
	r.colLower = s.takeFloat()
	r.colScale = s.takeFloat()
}

func (r *duplicateColumn) undo(sol *lp.Solution, basis *lp.Basis, dual bool, feastol float64) {
	v := sol.ColValue[r.col]
	s := r.colScale

	integral := func(x float64) bool {
		return math.Abs(x-math.Round(x)) <= feastol
	}
	clamp := func(x, lower, upper float64) float64 {
		return math.Min(math.Max(x, lower), upper)
	}

	var colVal, dupVal float64
	var colSt, dupSt lp.BasisStatus
	split := false

	// try the duplicate at each of its bounds first, upper before
	// lower, taking the first that leaves col feasible, so the split
	// is deterministic
	for _, c := range [2]struct {
		bound  float64
		status lp.BasisStatus
	}{{r.duplicateColUpper, lp.BasisUpper}, {r.duplicateColLower, lp.BasisLower}} {
		if math.IsInf(c.bound, 0) {
			continue
		}
		x := v - s*c.bound
		if x < r.colLower-feastol || x > r.colUpper+feastol {
			continue
		}
		if r.colIntegral && !integral(x) {
			continue
		}
		dupVal, dupSt = c.bound, c.status
		colVal, colSt = clamp(x, r.colLower, r.colUpper), lp.BasisBasic
		split = true
		break
	}

	if !split {
		for _, c := range [2]struct {
			bound  float64
			status lp.BasisStatus
		}{{r.colUpper, lp.BasisUpper}, {r.colLower, lp.BasisLower}} {
			if math.IsInf(c.bound, 0) {
				continue
			}
			y := (v - c.bound) / s
			if y < r.duplicateColLower-feastol || y > r.duplicateColUpper+feastol {
				continue
			}
			if r.duplicateColIntegral && !integral(y) {
				continue
			}
			colVal, colSt = c.bound, c.status
			dupVal, dupSt = clamp(y, r.duplicateColLower, r.duplicateColUpper), lp.BasisBasic
			split = true
			break
		}
	}

	if !split {
		// no bound admits a feasible partner, keep col inside its own
		// bounds and hand the remainder to the duplicate
		colVal = clamp(v, r.colLower, r.colUpper)
		dupVal = clamp((v-colVal)/s, r.duplicateColLower, r.duplicateColUpper)
		colSt = boundStatus(colVal, r.colLower, r.colUpper, feastol)
		dupSt = lp.BasisBasic
	}

	sol.ColValue[r.col] = colVal
	sol.ColValue[r.duplicateCol] = dupVal

	if !dual {
		return
	}

	// both columns share the merged reduced cost up to the scale,
	// row duals are unchanged by the split
	merged := basis.ColStatus[r.col]
	sol.ColDual[r.duplicateCol] = s * sol.ColDual[r.col]

	if merged == lp.BasisBasic {
		basis.ColStatus[r.col] = colSt
		basis.ColStatus[r.duplicateCol] = dupSt
	} else {
		// the merged column was nonbasic, neither part may enter the
		// basis: both land on a bound of their own
		basis.ColStatus[r.col] = boundStatus(colVal, r.colLower, r.colUpper, feastol)
		basis.ColStatus[r.duplicateCol] = boundStatus(dupVal, r.duplicateColLower, r.duplicateColUpper, feastol)
	}
}
