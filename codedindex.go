// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// A codedIndex names the set of tables a coded index (ECMA-335 §II.24.2.6)
// may point into, and the number of tag bits used to distinguish which
// table a given value points to. The same tables that size a coded index
// read off disk also pick the right tag when packing a reference's owning
// table into a coded token (e.g. HasCustomAttribute, MemberRefParent).
type codedIndex struct {
	tagBits uint8
	tables  []int
}

var (
	idxTypeDefOrRef        = codedIndex{tagBits: 2, tables: []int{TypeDef, TypeRef, TypeSpec}}
	idxHasConstant         = codedIndex{tagBits: 2, tables: []int{Field, Param, Property}}
	idxHasCustomAttribute  = codedIndex{tagBits: 5, tables: []int{Method, Field, TypeRef, TypeDef, Param, InterfaceImpl, MemberRef, Module, DeclSecurity, Property, Event, StandAloneSig, ModuleRef, TypeSpec, Assembly, AssemblyRef, FileMD, ExportedType, ManifestResource, GenericParam, GenericParamConstraint, MethodSpec}}
	idxHasFieldMarshal     = codedIndex{tagBits: 1, tables: []int{Field, Param}}
	idxHasDeclSecurity     = codedIndex{tagBits: 2, tables: []int{TypeDef, Method, Assembly}}
	idxMemberRefParent     = codedIndex{tagBits: 3, tables: []int{TypeDef, TypeRef, ModuleRef, Method, TypeSpec}}
	idxHasSemantics        = codedIndex{tagBits: 1, tables: []int{Event, Property}}
	idxMethodDefOrRef      = codedIndex{tagBits: 1, tables: []int{Method, MemberRef}}
	idxMemberForwarded     = codedIndex{tagBits: 1, tables: []int{Field, Method}}
	idxImplementation      = codedIndex{tagBits: 2, tables: []int{FileMD, AssemblyRef, ExportedType}}
	idxCustomAttributeType = codedIndex{tagBits: 3, tables: []int{-1, -1, Method, MemberRef, -1}} // -1: tag value left unused
	idxResolutionScope     = codedIndex{tagBits: 2, tables: []int{Module, ModuleRef, AssemblyRef, TypeRef}}
	idxTypeOrMethodDef     = codedIndex{tagBits: 1, tables: []int{TypeDef, Method}}
)

// tagFor returns the tag bits identifying table within ci, and asserts
// table is one ci actually covers — a table outside the coded set is an
// invariant violation, never a silently wrong token.
func (ci codedIndex) tagFor(table int) uint32 {
	for i, t := range ci.tables {
		if t == table {
			return uint32(i)
		}
	}
	panic(invariantf("table %s is not a member of this coded index", MetadataTableName(table)))
}

// pack produces the coded-index value for a row in table, per
// ECMA-335 §II.24.2.6: (row << tagBits) | tag.
func (ci codedIndex) pack(table int, row RowID) uint32 {
	return uint32(row)<<ci.tagBits | ci.tagFor(table)
}
