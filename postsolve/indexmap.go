// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package postsolve

import "github.com/curioloop/presolve/logger"

// InitializeIndexMaps fills both index maps with the identity and
// records the original problem dimensions. Must be called once before
// any reduction is recorded.
func (s *Stack) InitializeIndexMaps(numRow, numCol int) {
	s.origNumRow, s.origNumCol = numRow, numCol

	s.origRowIndex = grow(s.origRowIndex, numRow)
	for i := range s.origRowIndex {
		s.origRowIndex[i] = i
	}

	s.origColIndex = grow(s.origColIndex, numCol)
	for i := range s.origColIndex {
		s.origColIndex[i] = i
	}
}

// CompressIndexMaps drops the map entries of removed rows and columns.
// newRowIndex and newColIndex must have the current reduced dimensions;
// an entry of Removed marks a deleted row/column, any other entry gives
// the new reduced index of a survivor. Survivors keep their
// original-space targets.
func (s *Stack) CompressIndexMaps(newRowIndex, newColIndex []int) {
	if len(newRowIndex) != len(s.origRowIndex) || len(newColIndex) != len(s.origColIndex) {
		panic("compression index size not match reduced dimensions")
	}

	// new index never exceeds the old one, forward writes are safe
	numRow := 0
	for i, k := range newRowIndex {
		if k == Removed {
			continue
		}
		s.origRowIndex[k] = s.origRowIndex[i]
		numRow = k + 1
	}
	s.origRowIndex = s.origRowIndex[:numRow]

	numCol := 0
	for i, k := range newColIndex {
		if k == Removed {
			continue
		}
		s.origColIndex[k] = s.origColIndex[i]
		numCol = k + 1
	}
	s.origColIndex = s.origColIndex[:numCol]

	log := logger.Logger()
	log.Trace().
		Int("rows", numRow).Int("cols", numCol).
		Msg("compressed postsolve index maps")
}

// OrigRowIndex returns the original-space index of reduced row i.
func (s *Stack) OrigRowIndex(i int) int { return s.origRowIndex[i] }

// OrigColIndex returns the original-space index of reduced column i.
func (s *Stack) OrigColIndex(i int) int { return s.origColIndex[i] }

func grow(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}
