// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import (
	"fmt"
	"sort"
)

// IndexRow is a single row a DefinitionIndex has touched this delta: a
// pure addition (IsAdd) needs an AddX EncLog row plus a Default row; a
// pure update of a pre-existing row needs only the Default row.
type IndexRow[K comparable] struct {
	Def   K
	Row   RowID
	IsAdd bool
}

// DefinitionIndex is the per-table store for entities with stable
// identity across generations: types, methods, fields, events,
// properties. It also serves, with lookthrough/resolve left nil, as the
// simpler parameter/generic-parameter index that never looks through to
// a previous generation.
type DefinitionIndex[K comparable] struct {
	table      int
	firstRowID RowID

	added map[K]RowID
	isAdd map[K]bool
	byRow map[RowID]K
	rows  []IndexRow[K]

	// lookthrough resolves def to a row ID assigned in a previous delta
	// (baseline.Additions[table]). nil for parameter/generic-param
	// indices, which never look through.
	lookthrough func(K) (RowID, bool)
	// resolve consults the definition map for symbols present since
	// generation 0. Hits are memoized in memo.
	resolve func(K) (RowID, bool)
	memo    map[K]RowID

	frozen bool
}

// NewDefinitionIndex constructs an index seeded with the baseline's
// current row count for table: firstRowID is baselineRows+1.
func NewDefinitionIndex[K comparable](table int, firstRowID RowID, lookthrough, resolve func(K) (RowID, bool)) *DefinitionIndex[K] {
	return &DefinitionIndex[K]{
		table:       table,
		firstRowID:  firstRowID,
		added:       make(map[K]RowID),
		isAdd:       make(map[K]bool),
		byRow:       make(map[RowID]K),
		lookthrough: lookthrough,
		resolve:     resolve,
		memo:        make(map[K]RowID),
	}
}

// TryGet resolves def to a row ID, in order: added in this delta, added
// in a previous delta (lookthrough), or resolvable via the definition
// map (resolve), memoizing a definition-map hit for O(1) subsequent
// lookups.
func (idx *DefinitionIndex[K]) TryGet(def K) (RowID, bool) {
	if row, ok := idx.added[def]; ok {
		return row, true
	}
	if row, ok := idx.memo[def]; ok {
		return row, true
	}
	if idx.lookthrough != nil {
		if row, ok := idx.lookthrough(def); ok {
			return row, true
		}
	}
	if idx.resolve != nil {
		if row, ok := idx.resolve(def); ok {
			idx.memo[def] = row
			return row, true
		}
	}
	return 0, false
}

// Add assigns def the next free row ID in this delta. Panics with an
// InvariantViolation if the index is already frozen.
func (idx *DefinitionIndex[K]) Add(def K) RowID {
	if idx.frozen {
		panic(invariant(ErrFrozen, "DefinitionIndex.Add"))
	}
	row := idx.firstRowID + RowID(len(idx.added))
	idx.added[def] = row
	idx.isAdd[def] = true
	idx.byRow[row] = def
	idx.rows = append(idx.rows, IndexRow[K]{Def: def, Row: row, IsAdd: true})
	return row
}

// AddUpdated records that a pre-existing def changed in this delta. Its
// row ID is not reassigned; only the EncLog-visible rows list gains an
// entry so a Default row is emitted for it. def must already be
// resolvable (through lookthrough or the definition map), or this is an
// invariant violation.
func (idx *DefinitionIndex[K]) AddUpdated(def K) RowID {
	if idx.frozen {
		panic(invariant(ErrFrozen, "DefinitionIndex.AddUpdated"))
	}
	row, ok := idx.TryGet(def)
	if !ok {
		panic(invariant(ErrNotFound, "DefinitionIndex.AddUpdated: definition has no prior row"))
	}
	idx.isAdd[def] = false
	idx.byRow[row] = def
	idx.rows = append(idx.rows, IndexRow[K]{Def: def, Row: row, IsAdd: false})
	return row
}

// Get is the reverse lookup used when emitting rows in ID order.
func (idx *DefinitionIndex[K]) Get(row RowID) (K, bool) {
	def, ok := idx.byRow[row]
	return def, ok
}

// IsAddedNotChanged distinguishes adds (need an AddX EncLog row) from
// pure updates (need only a Default row).
func (idx *DefinitionIndex[K]) IsAddedNotChanged(def K) bool {
	return idx.isAdd[def]
}

// AddedCount is the number of rows newly assigned in this delta, the
// delta size of a definition table. Updates do not grow the table, so
// this is len(added), not len(Rows()).
func (idx *DefinitionIndex[K]) AddedCount() int { return len(idx.added) }

// NextRowID returns the row ID the next Add call would assign.
func (idx *DefinitionIndex[K]) NextRowID() RowID { return idx.firstRowID + RowID(len(idx.added)) }

// Freeze sorts Rows by assigned row ID, asserts that the rows added this
// delta form the contiguous range [firstRowID, firstRowID+len(added)),
// and forbids further mutation. Idempotent.
func (idx *DefinitionIndex[K]) Freeze() {
	if idx.frozen {
		return
	}
	sort.Slice(idx.rows, func(i, j int) bool { return idx.rows[i].Row < idx.rows[j].Row })
	next := idx.firstRowID
	for _, r := range idx.rows {
		if !r.IsAdd {
			continue
		}
		if r.Row != next {
			panic(invariant(ErrNonContiguousRowIDs,
				fmt.Sprintf("%s row %d, want %d", MetadataTableName(idx.table), r.Row, next)))
		}
		next++
	}
	idx.frozen = true
}

// Rows exposes the rows touched this delta (additions and updates of
// pre-existing rows), sorted ascending by row ID. Calling Rows freezes
// the index.
func (idx *DefinitionIndex[K]) Rows() []IndexRow[K] {
	idx.Freeze()
	return idx.rows
}
