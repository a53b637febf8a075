// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestCodedIndexPack(t *testing.T) {
	tests := []struct {
		ci    codedIndex
		table int
		row   RowID
		want  uint32
	}{
		{idxTypeDefOrRef, TypeDef, 1, 1<<2 | 0},
		{idxTypeDefOrRef, TypeRef, 1, 1<<2 | 1},
		{idxTypeDefOrRef, TypeSpec, 3, 3<<2 | 2},
		{idxMemberRefParent, ModuleRef, 2, 2<<3 | 2},
		{idxMemberRefParent, TypeSpec, 5, 5<<3 | 4},
		{idxResolutionScope, AssemblyRef, 7, 7<<2 | 2},
		{idxMethodDefOrRef, MemberRef, 9, 9<<1 | 1},
	}
	for _, tt := range tests {
		if got := tt.ci.pack(tt.table, tt.row); got != tt.want {
			t.Fatalf("pack(%s, %d) = %#x, want %#x", MetadataTableName(tt.table), tt.row, got, tt.want)
		}
	}
}

func TestCodedIndexTagForRejectsForeignTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("tagFor with a table outside the coded set should panic")
		}
	}()
	idxTypeDefOrRef.tagFor(Method)
}
