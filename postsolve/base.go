// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package postsolve records the reductions applied by an LP/MIP
// presolver and lifts a reduced primal/dual solution and basis back
// into the original index space by replaying the record in reverse.
package postsolve

const zero = 0.0

// Removed marks a dropped row or column in the replacement index
// sequences passed to CompressIndexMaps.
const Removed = -1

// RowType classifies the constraint row a reduction acted on.
type RowType uint8

const (
	// RowGeq row with a finite lower side.
	RowGeq RowType = iota
	// RowLeq row with a finite upper side.
	RowLeq
	// RowEq equality row.
	RowEq
)

// reductionType discriminates the entries of the reduction record.
type reductionType uint8

const (
	kindFreeColSubstitution reductionType = iota
	kindDoubletonEquation
	kindEqualityRowAddition
	kindSingletonRow
	kindFixedCol
	kindRedundantRow
	kindForcingRow
	kindDuplicateRow
	kindDuplicateColumn
)
