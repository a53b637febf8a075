// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// ReferenceIndex is a content-addressed store for heap-style or
// structural references: AssemblyRef, ModuleRef, TypeRef, TypeSpec,
// MemberRef, MethodSpec, StandAloneSig. Equality is
// per-kind: nominal for Assembly/Module references, structural for
// MemberRef/MethodSpec/TypeSpec — callers express that by choosing K
// (e.g. a plain string key for nominal identity, a struct of the
// structural fields for content identity).
type ReferenceIndex[K comparable] struct {
	firstRowID RowID
	byKey      map[K]RowID
	order      []K
	frozen     bool
}

// NewReferenceIndex constructs a reference index seeded with the
// baseline's current row count for the table: firstRowID is
// baselineRows+1.
func NewReferenceIndex[K comparable](firstRowID RowID) *ReferenceIndex[K] {
	return &ReferenceIndex[K]{
		firstRowID: firstRowID,
		byKey:      make(map[K]RowID),
	}
}

// GetOrAdd returns the row ID for key, assigning the next free row ID
// the first time key is seen. Because the map lookup always precedes
// assignment, value-equal inputs can never receive two different row
// IDs.
func (idx *ReferenceIndex[K]) GetOrAdd(key K) RowID {
	if idx.frozen {
		panic(invariant(ErrFrozen, "ReferenceIndex.GetOrAdd"))
	}
	if row, ok := idx.byKey[key]; ok {
		return row
	}
	row := idx.firstRowID + RowID(len(idx.order))
	idx.byKey[key] = row
	idx.order = append(idx.order, key)
	return row
}

// Count is the number of distinct values added this delta — deltaSizes[T]
// for a reference table.
func (idx *ReferenceIndex[K]) Count() int { return len(idx.order) }

// NextRowID returns the row ID the next GetOrAdd call would assign for a
// previously-unseen key.
func (idx *ReferenceIndex[K]) NextRowID() RowID { return idx.firstRowID + RowID(len(idx.order)) }

// Freeze forbids further mutation. Idempotent.
func (idx *ReferenceIndex[K]) Freeze() { idx.frozen = true }

// Values returns the distinct values added this delta, in row-ID order
// (the order they were first seen — reference-index rows are always
// contiguous additions, so insertion order and row-ID order coincide).
// Calling Values freezes the index.
func (idx *ReferenceIndex[K]) Values() []K {
	idx.Freeze()
	return idx.order
}
