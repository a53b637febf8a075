// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// Metadata table codes, per ECMA-335 §II.22. ENCLog and ENCMap are only
// ever populated by an EnC delta; a full emit leaves them empty.
const (
	Module  = 0x00
	TypeRef = 0x01
	TypeDef = 0x02

	FieldPtr  = 0x03
	Field     = 0x04
	MethodPtr = 0x05
	Method    = 0x06
	ParamPtr  = 0x07
	Param     = 0x08

	InterfaceImpl = 0x09
	MemberRef     = 0x0A
	Constant      = 0x0B

	CustomAttribute = 0x0C
	FieldMarshal    = 0x0D
	DeclSecurity    = 0x0E
	ClassLayout     = 0x0F
	FieldLayout     = 0x10
	StandAloneSig   = 0x11

	EventMap    = 0x12
	EventPtr    = 0x13
	Event       = 0x14
	PropertyMap = 0x15
	PropertyPtr = 0x16
	Property    = 0x17

	MethodSemantics = 0x18
	MethodImpl      = 0x19
	ModuleRef       = 0x1A
	TypeSpec        = 0x1B
	ImplMap         = 0x1C
	FieldRVA        = 0x1D

	ENCLog = 0x1E
	ENCMap = 0x1F

	Assembly             = 0x20
	AssemblyProcessor    = 0x21
	AssemblyOS           = 0x22
	AssemblyRef          = 0x23
	AssemblyRefProcessor = 0x24
	AssemblyRefOS        = 0x25

	FileMD           = 0x26
	ExportedType     = 0x27
	ManifestResource = 0x28
	NestedClass      = 0x29

	GenericParam           = 0x2A
	MethodSpec             = 0x2B
	GenericParamConstraint = 0x2C
)

// MetadataTableName returns the ECMA-335 name of a table code, or "" if
// the code is unknown.
func MetadataTableName(table int) string {
	names := map[int]string{
		Module:                 "Module",
		TypeRef:                "TypeRef",
		TypeDef:                "TypeDef",
		FieldPtr:               "FieldPtr",
		Field:                  "Field",
		MethodPtr:              "MethodPtr",
		Method:                 "MethodDef",
		ParamPtr:               "ParamPtr",
		Param:                  "Param",
		InterfaceImpl:          "InterfaceImpl",
		MemberRef:              "MemberRef",
		Constant:               "Constant",
		CustomAttribute:        "CustomAttribute",
		FieldMarshal:           "FieldMarshal",
		DeclSecurity:           "DeclSecurity",
		ClassLayout:            "ClassLayout",
		FieldLayout:            "FieldLayout",
		StandAloneSig:          "StandAloneSig",
		EventMap:               "EventMap",
		EventPtr:               "EventPtr",
		Event:                  "Event",
		PropertyMap:            "PropertyMap",
		PropertyPtr:            "PropertyPtr",
		Property:               "Property",
		MethodSemantics:        "MethodSemantics",
		MethodImpl:             "MethodImpl",
		ModuleRef:              "ModuleRef",
		TypeSpec:               "TypeSpec",
		ImplMap:                "ImplMap",
		FieldRVA:               "FieldRVA",
		ENCLog:                 "EncLog",
		ENCMap:                 "EncMap",
		Assembly:               "Assembly",
		AssemblyProcessor:      "AssemblyProcessor",
		AssemblyOS:             "AssemblyOS",
		AssemblyRef:            "AssemblyRef",
		AssemblyRefProcessor:   "AssemblyRefProcessor",
		AssemblyRefOS:          "AssemblyRefOS",
		FileMD:                 "File",
		ExportedType:           "ExportedType",
		ManifestResource:       "ManifestResource",
		NestedClass:            "NestedClass",
		GenericParam:           "GenericParam",
		MethodSpec:             "MethodSpec",
		GenericParamConstraint: "GenericParamConstraint",
	}
	return names[table]
}

// RowID is a 1-based row index within a single metadata table.
type RowID uint32

// Token packs an 8-bit table code with a 24-bit row ID, per ECMA-335
// §II.22.2. A Token of 0 denotes "no token".
type Token uint32

// TokenOf packs a table code and row ID into a Token.
func TokenOf(table int, row RowID) Token {
	return Token(uint32(table)<<24 | uint32(row))
}

// Table returns the table code packed into t.
func (t Token) Table() int { return int(t >> 24) }

// Row returns the row ID packed into t.
func (t Token) Row() RowID { return RowID(t & 0x00FFFFFF) }
