// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestOwnerMapIndexEnsurePresentAddsOncePerType(t *testing.T) {
	idx := NewOwnerMapIndex(1, nil)

	row1, created1 := idx.EnsurePresent(10)
	if !created1 || row1 != 1 {
		t.Fatalf("first EnsurePresent = %d, %v; want 1, true", row1, created1)
	}
	row2, created2 := idx.EnsurePresent(10)
	if created2 || row2 != row1 {
		t.Fatalf("second EnsurePresent for the same type = %d, %v; want %d, false", row2, created2, row1)
	}
	row3, created3 := idx.EnsurePresent(20)
	if !created3 || row3 == row1 {
		t.Fatalf("EnsurePresent for a different type = %d, %v; want a fresh row", row3, created3)
	}
}

func TestOwnerMapIndexLookthroughSkipsNewRow(t *testing.T) {
	lookthrough := func(typeRow RowID) (RowID, bool) {
		if typeRow == 10 {
			return 999, true
		}
		return 0, false
	}
	idx := NewOwnerMapIndex(1, lookthrough)

	row, created := idx.EnsurePresent(10)
	if created || row != 999 {
		t.Fatalf("EnsurePresent with a lookthrough hit = %d, %v; want 999, false", row, created)
	}
	if idx.AddedCount() != 0 {
		t.Fatalf("a lookthrough hit must not count as an addition: AddedCount = %d", idx.AddedCount())
	}
}

func TestOwnerMapIndexNoteChildTracksFirstAndEveryOwner(t *testing.T) {
	idx := NewOwnerMapIndex(1, nil)
	mapRow, _ := idx.EnsurePresent(10)

	idx.NoteChild(mapRow, 501)
	idx.NoteChild(mapRow, 502)

	owner, ok := idx.Owner(501)
	if !ok || owner != mapRow {
		t.Fatalf("Owner(501) = %d, %v; want %d, true", owner, ok, mapRow)
	}
	owner, ok = idx.Owner(502)
	if !ok || owner != mapRow {
		t.Fatalf("Owner(502) = %d, %v; want %d, true", owner, ok, mapRow)
	}

	rows := idx.Rows()
	if len(rows) != 1 || rows[0].FirstChild != 501 {
		t.Fatalf("Rows() FirstChild = %v; want the first child noted (501)", rows)
	}
}

func TestOwnerMapIndexFrozenRejectsWrites(t *testing.T) {
	idx := NewOwnerMapIndex(1, nil)
	mapRow, _ := idx.EnsurePresent(10)
	idx.Rows() // freezes

	defer func() {
		if recover() == nil {
			t.Fatalf("NoteChild after freeze should panic")
		}
	}()
	idx.NoteChild(mapRow, 5)
}
