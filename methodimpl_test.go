// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestMethodImplIndexOccurrenceNumbering(t *testing.T) {
	idx := NewMethodImplIndex(1, nil)

	row1, occ1 := idx.Add(7)
	row2, occ2 := idx.Add(7)
	row3, occ3 := idx.Add(8)

	if occ1 != 1 || occ2 != 2 || occ3 != 1 {
		t.Fatalf("occurrences = %d, %d, %d; want 1, 2, 1", occ1, occ2, occ3)
	}
	if row1 == row2 || row2 == row3 || row1 == row3 {
		t.Fatalf("every Add must assign a distinct row: got %d, %d, %d", row1, row2, row3)
	}
}

func TestMethodImplIndexBaselineOccurrencesOffsetNumbering(t *testing.T) {
	baseline := func(methodRow RowID) int {
		if methodRow == 7 {
			return 3
		}
		return 0
	}
	idx := NewMethodImplIndex(1, baseline)

	_, occ := idx.Add(7)
	if occ != 4 {
		t.Fatalf("occurrence with 3 prior-generation rows = %d, want 4", occ)
	}
}

func TestMethodImplIndexAddedEntriesRoundTrip(t *testing.T) {
	idx := NewMethodImplIndex(1, nil)
	row, occ := idx.Add(7)

	entries := idx.AddedEntries()
	got, ok := entries[MethodImplKey{Method: 7, Occurrence: occ}]
	if !ok || got != row {
		t.Fatalf("AddedEntries()[{7,%d}] = %d, %v; want %d, true", occ, got, ok, row)
	}
}

func TestMethodImplIndexRowsFreezes(t *testing.T) {
	idx := NewMethodImplIndex(1, nil)
	idx.Add(7)
	idx.Rows()

	defer func() {
		if recover() == nil {
			t.Fatalf("Add after Rows (which freezes) should panic")
		}
	}()
	idx.Add(8)
}
