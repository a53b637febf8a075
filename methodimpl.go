// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// MethodImplIndex backs the MethodImpl table, keyed by
// (methodDefRow, occurrence): occurrence starts at 1 and increments
// while the key collides, so a method with N already-emitted
// MethodImpl rows (across all prior generations) receives its next as
// occurrence N+1.
type MethodImplIndex struct {
	firstRowID RowID
	added      map[MethodImplKey]RowID
	order      []MethodImplKey
	addedCount map[RowID]int // methodRow -> occurrences added this delta

	// baselineOccurrences returns how many MethodImpl rows methodRow
	// already has from earlier generations.
	baselineOccurrences func(methodRow RowID) int

	frozen bool
}

// NewMethodImplIndex constructs a MethodImpl index seeded with the
// baseline's current row count and its per-method occurrence counts.
func NewMethodImplIndex(firstRowID RowID, baselineOccurrences func(RowID) int) *MethodImplIndex {
	return &MethodImplIndex{
		firstRowID:          firstRowID,
		added:               make(map[MethodImplKey]RowID),
		addedCount:          make(map[RowID]int),
		baselineOccurrences: baselineOccurrences,
	}
}

// NextOccurrence returns the occurrence number the next Add(methodRow)
// call would assign.
func (idx *MethodImplIndex) NextOccurrence(methodRow RowID) int {
	base := 0
	if idx.baselineOccurrences != nil {
		base = idx.baselineOccurrences(methodRow)
	}
	return base + idx.addedCount[methodRow] + 1
}

// Add assigns methodRow's next MethodImpl occurrence a new row in this
// delta, returning both the row ID and the occurrence number.
func (idx *MethodImplIndex) Add(methodRow RowID) (row RowID, occurrence int) {
	if idx.frozen {
		panic(invariant(ErrFrozen, "MethodImplIndex.Add"))
	}
	occurrence = idx.NextOccurrence(methodRow)
	key := MethodImplKey{Method: methodRow, Occurrence: occurrence}
	row = idx.firstRowID + RowID(len(idx.order))
	idx.added[key] = row
	idx.order = append(idx.order, key)
	idx.addedCount[methodRow]++
	return row, occurrence
}

// AddedCount is the number of MethodImpl rows newly assigned this delta.
func (idx *MethodImplIndex) AddedCount() int { return len(idx.added) }

// AddedEntries returns the (key, row) pairs assigned this delta, for the
// baseline merger to fold into the next generation's MethodImpls map.
func (idx *MethodImplIndex) AddedEntries() map[MethodImplKey]RowID {
	return idx.added
}

// Freeze forbids further mutation. Idempotent.
func (idx *MethodImplIndex) Freeze() { idx.frozen = true }

// Rows returns the MethodImpl rows added this delta, in row-ID order.
// Calling Rows freezes the index.
func (idx *MethodImplIndex) Rows() []RowID {
	idx.Freeze()
	rows := make([]RowID, len(idx.order))
	for i, key := range idx.order {
		rows[i] = idx.added[key]
	}
	return rows
}
