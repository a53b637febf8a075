// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestReferenceIndexDedupesByValue(t *testing.T) {
	idx := NewReferenceIndex[any](1)

	first := idx.GetOrAdd("System.String")
	second := idx.GetOrAdd("System.String")
	if first != second {
		t.Fatalf("two equal keys got different rows: %d vs %d", first, second)
	}
	other := idx.GetOrAdd("System.Int32")
	if other == first {
		t.Fatalf("distinct keys collapsed onto the same row")
	}
	if idx.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", idx.Count())
	}
}

func TestReferenceIndexRowsContiguousFromFirstRowID(t *testing.T) {
	idx := NewReferenceIndex[any](100)
	a := idx.GetOrAdd("a")
	b := idx.GetOrAdd("b")
	c := idx.GetOrAdd("c")

	if a != 100 || b != 101 || c != 102 {
		t.Fatalf("rows = %d, %d, %d; want 100, 101, 102", a, b, c)
	}
	values := idx.Values()
	if len(values) != 3 || values[0] != "a" || values[1] != "b" || values[2] != "c" {
		t.Fatalf("Values() = %v; want [a b c] in insertion order", values)
	}
}

func TestReferenceIndexFrozenRejectsWrites(t *testing.T) {
	idx := NewReferenceIndex[any](1)
	idx.GetOrAdd("x")
	idx.Freeze()

	defer func() {
		if recover() == nil {
			t.Fatalf("GetOrAdd after Freeze should panic")
		}
	}()
	idx.GetOrAdd("y")
}

func TestReferenceIndexNextRowID(t *testing.T) {
	idx := NewReferenceIndex[any](50)
	if idx.NextRowID() != 50 {
		t.Fatalf("NextRowID on an empty index = %d, want 50", idx.NextRowID())
	}
	idx.GetOrAdd("a")
	if idx.NextRowID() != 51 {
		t.Fatalf("NextRowID after one add = %d, want 51", idx.NextRowID())
	}
}
