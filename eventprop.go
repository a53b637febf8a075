// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// OwnerMapRow is a single EventMap or PropertyMap row: Parent is the
// owning TypeDef row, Map is this map's own row, and FirstChild is the
// first Event/Property row owned through it (set the first time a child
// is noted).
type OwnerMapRow struct {
	Parent     RowID
	Map        RowID
	FirstChild RowID
}

// OwnerMapIndex backs EventMap/PropertyMap: keyed by the owning TypeDef
// row, `add` is called at most once per type, the first time the delta
// touches an event or property on it.
type OwnerMapIndex struct {
	firstRowID RowID
	added      map[RowID]RowID // TypeDef row -> map row
	order      []RowID         // TypeDef rows, in the order first touched
	firstChild map[RowID]RowID // map row -> first child row
	childOwner map[RowID]RowID // child row (Event/Property) -> owning map row, every child

	// lookthrough consults the baseline's typeToEventMap/typeToPropertyMap
	// (already carrying forward every earlier generation's entries via
	// MergeBaseline) for a map row that exists from a previous generation.
	lookthrough func(RowID) (RowID, bool)

	frozen bool
}

// NewOwnerMapIndex constructs an EventMap/PropertyMap index seeded with
// the baseline's current row count.
func NewOwnerMapIndex(firstRowID RowID, lookthrough func(RowID) (RowID, bool)) *OwnerMapIndex {
	return &OwnerMapIndex{
		firstRowID:  firstRowID,
		added:       make(map[RowID]RowID),
		firstChild:  make(map[RowID]RowID),
		childOwner:  make(map[RowID]RowID),
		lookthrough: lookthrough,
	}
}

// EnsurePresent returns the map row for typeRow, adding a new one if
// typeRow has no map row yet in this delta or any previous generation.
// created is true only when a new row was assigned this delta.
func (idx *OwnerMapIndex) EnsurePresent(typeRow RowID) (mapRow RowID, created bool) {
	if idx.frozen {
		panic(invariant(ErrFrozen, "OwnerMapIndex.EnsurePresent"))
	}
	if row, ok := idx.added[typeRow]; ok {
		return row, false
	}
	if idx.lookthrough != nil {
		if row, ok := idx.lookthrough(typeRow); ok {
			return row, false
		}
	}
	row := idx.firstRowID + RowID(len(idx.order))
	idx.added[typeRow] = row
	idx.order = append(idx.order, typeRow)
	return row, true
}

// NoteChild records childRow as a row owned through mapRow, fixing
// FirstChild the first time it is called for a given mapRow, and always
// recording mapRow as childRow's owner (the EncLog structured Event/
// Property pass needs the owner for every touched child, not only the
// first).
func (idx *OwnerMapIndex) NoteChild(mapRow, childRow RowID) {
	if idx.frozen {
		panic(invariant(ErrFrozen, "OwnerMapIndex.NoteChild"))
	}
	if _, ok := idx.firstChild[mapRow]; !ok {
		idx.firstChild[mapRow] = childRow
	}
	idx.childOwner[childRow] = mapRow
}

// Owner returns the map row childRow was last recorded against.
func (idx *OwnerMapIndex) Owner(childRow RowID) (RowID, bool) {
	row, ok := idx.childOwner[childRow]
	return row, ok
}

// AddedCount is the number of map rows newly assigned this delta.
func (idx *OwnerMapIndex) AddedCount() int { return len(idx.added) }

// Freeze forbids further mutation. Idempotent.
func (idx *OwnerMapIndex) Freeze() { idx.frozen = true }

// Rows returns the map rows added this delta, in row-ID order. Calling
// Rows freezes the index.
func (idx *OwnerMapIndex) Rows() []OwnerMapRow {
	idx.Freeze()
	rows := make([]OwnerMapRow, len(idx.order))
	for i, typeRow := range idx.order {
		mapRow := idx.added[typeRow]
		rows[i] = OwnerMapRow{Parent: typeRow, Map: mapRow, FirstChild: idx.firstChild[mapRow]}
	}
	return rows
}
