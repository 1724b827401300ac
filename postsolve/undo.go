// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/curioloop/presolve/logger"
	"github.com/curioloop/presolve/lp"
)

// expandFloats lifts a reduced-space vector into original-space size
// in place. Processing from the top index downward is safe because
// orig[i] ≥ i: no source value is overwritten before it is read. Slots
// no reduced index maps to are zeroed so undo rules reading the dual
// of a not-yet-restored row see zero.
func expandFloats(v []float64, orig []int, size int) []float64 {
	if cap(v) < size {
		nv := make([]float64, size)
		copy(nv, v)
		v = nv
	} else {
		v = v[:size]
	}
	j := len(orig) - 1
	for k := size - 1; k >= 0; k-- {
		if j >= 0 && orig[j] == k {
			v[k] = v[j]
			j--
		} else {
			v[k] = 0
		}
	}
	return v
}

func expandStatus(v []lp.BasisStatus, orig []int, size int) []lp.BasisStatus {
	if cap(v) < size {
		nv := make([]lp.BasisStatus, size)
		copy(nv, v)
		v = nv
	} else {
		v = v[:size]
	}
	j := len(orig) - 1
	for k := size - 1; k >= 0; k-- {
		if j >= 0 && orig[j] == k {
			v[k] = v[j]
			j--
		} else {
			v[k] = lp.BasisNonbasic
		}
	}
	return v
}

// prepare guards the replay against a solution from the wrong
// checkpoint, detects dual postsolve, expands every array to the
// original index space and rewinds the value-stack cursor.
func (s *Stack) prepare(sol *lp.Solution, basis *lp.Basis) (dual, ok bool) {
	if len(sol.ColValue) != len(s.origColIndex) || len(sol.RowValue) != len(s.origRowIndex) {
		log := logger.Logger()
		log.Debug().
			Int("cols", len(sol.ColValue)).Int("reducedCols", len(s.origColIndex)).
			Int("rows", len(sol.RowValue)).Int("reducedRows", len(s.origRowIndex)).
			Msg("discarding postsolve: solution does not match reduced dimensions")
		return false, false
	}

	dual = len(sol.ColDual) == len(sol.ColValue)

	sol.ColValue = expandFloats(sol.ColValue, s.origColIndex, s.origNumCol)
	sol.RowValue = expandFloats(sol.RowValue, s.origRowIndex, s.origNumRow)

	if dual {
		sol.ColDual = expandFloats(sol.ColDual, s.origColIndex, s.origNumCol)
		sol.RowDual = expandFloats(sol.RowDual, s.origRowIndex, s.origNumRow)
		basis.ColStatus = expandStatus(basis.ColStatus, s.origColIndex, s.origNumCol)
		basis.RowStatus = expandStatus(basis.RowStatus, s.origRowIndex, s.origNumRow)
	}

	if s.stale == nil {
		s.stale = bitset.New(uint(s.origNumRow))
	} else {
		s.stale.ClearAll()
	}

	s.values.resetPosition()
	return dual, true
}

// Undo lifts the solution and basis into the original index space and
// replays every recorded reduction in reverse. The record keeps its
// tags, so a later replay may restart from any earlier checkpoint.
func (s *Stack) Undo(sol *lp.Solution, basis *lp.Basis, feastol float64) {
	s.replay(sol, basis, feastol, 0)
}

// UndoUntil replays only the reductions recorded at or after the given
// checkpoint, restoring the solution to that earlier state.
func (s *Stack) UndoUntil(sol *lp.Solution, basis *lp.Basis, feastol float64, numReductions int) {
	s.replay(sol, basis, feastol, numReductions)
}

func (s *Stack) replay(sol *lp.Solution, basis *lp.Basis, feastol float64, until int) {
	dual, ok := s.prepare(sol, basis)
	if !ok {
		return
	}

	log := logger.Logger()
	log.Debug().
		Int("reductions", len(s.reductions)-until).Bool("dual", dual).
		Int("rows", s.origNumRow).Int("cols", s.origNumCol).
		Msg("postsolve replay")

	// payloads pop in the exact inverse of the push order
	for i := len(s.reductions) - 1; i >= until; i-- {
		switch s.reductions[i] {
		case kindFreeColSubstitution:
			var r freeColSubstitution
			s.values.takeNonzeros(&s.colValues)
			s.values.takeNonzeros(&s.rowValues)
			r.pop(&s.values)
			r.undo(s.rowValues, s.colValues, sol, basis, dual)

		case kindDoubletonEquation:
			var r doubletonEquation
			s.values.takeNonzeros(&s.colValues)
			r.pop(&s.values)
			r.undo(s.colValues, sol, basis, dual, feastol)

		case kindEqualityRowAddition:
			var r equalityRowAddition
			r.pop(&s.values)
			r.undo(sol, basis, dual)

		case kindSingletonRow:
			var r singletonRow
			r.pop(&s.values)
			r.undo(sol, basis, dual)

		case kindFixedCol:
			var r fixedCol
			s.values.takeNonzeros(&s.colValues)
			r.pop(&s.values)
			r.undo(s.colValues, sol, basis, dual)

		case kindRedundantRow:
			var r redundantRow
			r.pop(&s.values)
			r.undo(sol, basis, dual)
			s.stale.Set(uint(r.row))

		case kindForcingRow:
			var r forcingRow
			s.values.takeNonzeros(&s.rowValues)
			r.pop(&s.values)
			r.undo(s.rowValues, sol, basis, dual)

		case kindDuplicateRow:
			var r duplicateRow
			r.pop(&s.values)
			r.undo(sol, basis, dual)

		case kindDuplicateColumn:
			var r duplicateColumn
			r.pop(&s.values)
			r.undo(sol, basis, dual, feastol)
		}
	}
}
