// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "encoding/binary"

// EncFuncCode is the operation an EncLog row records against its Token,
// per ECMA-335's EnC log semantics.
type EncFuncCode int

const (
	EncDefault EncFuncCode = iota
	EncAddMethod
	EncAddField
	EncAddParameter
	EncAddProperty
	EncAddEvent
)

func (f EncFuncCode) String() string {
	switch f {
	case EncDefault:
		return "Default"
	case EncAddMethod:
		return "AddMethod"
	case EncAddField:
		return "AddField"
	case EncAddParameter:
		return "AddParameter"
	case EncAddProperty:
		return "AddProperty"
	case EncAddEvent:
		return "AddEvent"
	default:
		return "Unknown"
	}
}

// EncLogRow is a single row of the EncLog table.
type EncLogRow struct {
	Token    Token
	FuncCode EncFuncCode
}

// SatelliteTableSizes carries the per-delta row counts for tables the
// delta writer never indexes directly — their rows are produced by the
// base metadata writer straight from the definitions already indexed
// here. The EncLog/EncMap builders only need each table's previous
// size (from the baseline) and how many rows this delta added.
type SatelliteTableSizes struct {
	Constant        uint32
	CustomAttribute uint32
	DeclSecurity    uint32
	ClassLayout     uint32
	FieldLayout     uint32
	MethodSemantics uint32
	ImplMap         uint32
	FieldRva        uint32
	NestedClass     uint32
	InterfaceImpl   uint32

	GenericParamConstraint uint32
}

// EncLogInputs gathers every index and auxiliary list the orchestrator
// populated, in the shape the canonical EncLog ordering needs.
type EncLogInputs struct {
	AssemblyRefs   *ReferenceIndex[any]
	ModuleRefs     *ReferenceIndex[any]
	MemberRefs     *ReferenceIndex[any]
	MethodSpecs    *ReferenceIndex[any]
	TypeRefs       *ReferenceIndex[any]
	TypeSpecs      *ReferenceIndex[any]
	StandAloneSigs *ReferenceIndex[any]

	Types      *DefinitionIndex[TypeDefinition]
	Events     *DefinitionIndex[EventDefinition]
	Fields     *DefinitionIndex[FieldDefinition]
	Methods    *DefinitionIndex[MethodDefinition]
	Properties *DefinitionIndex[PropertyDefinition]

	EventMap    *OwnerMapIndex
	PropertyMap *OwnerMapIndex

	MethodOwner map[MethodDefinition]RowID
	FieldOwner  map[FieldDefinition]RowID

	Params       *DefinitionIndex[ParamDefinition]
	MethodParams []MethodParamPair

	MethodImpls *MethodImplIndex

	GenericParams *DefinitionIndex[GenericParamDefinition]

	Baseline   *Baseline
	Satellites SatelliteTableSizes
}

// referenceTableRange returns the contiguous [firstRow, firstRow+count)
// range a frozen reference index added this delta.
func referenceTableRange(idx *ReferenceIndex[any]) (first RowID, count int) {
	count = idx.Count()
	first = idx.NextRowID() - RowID(count)
	return first, count
}

func appendLinearDefaultRange(rows []EncLogRow, table int, previousSize uint32, deltaSize uint32) []EncLogRow {
	for i := uint32(1); i <= deltaSize; i++ {
		rows = append(rows, EncLogRow{Token: TokenOf(table, RowID(previousSize+i)), FuncCode: EncDefault})
	}
	return rows
}

func appendReferenceDefaultRange(rows []EncLogRow, table int, idx *ReferenceIndex[any]) []EncLogRow {
	first, count := referenceTableRange(idx)
	for i := 0; i < count; i++ {
		rows = append(rows, EncLogRow{Token: TokenOf(table, first+RowID(i)), FuncCode: EncDefault})
	}
	return rows
}

// BuildEncLog emits the EncLog table in the canonical dependency-
// respecting order: AssemblyRef, ModuleRef, MemberRef, MethodSpec, TypeRef,
// TypeSpec, StandAloneSig, TypeDef, EventMap, PropertyMap, the
// structured Event/Field/Method/Property passes, the Parameters pass,
// then linear Default ranges for every remaining table.
func BuildEncLog(in EncLogInputs) ([]EncLogRow, error) {
	if in.Satellites.FieldRva != 0 {
		return nil, invariant(ErrFieldRvaTouched, "EncLog: delta touches FieldRva")
	}

	var rows []EncLogRow

	rows = appendReferenceDefaultRange(rows, AssemblyRef, in.AssemblyRefs)
	rows = appendReferenceDefaultRange(rows, ModuleRef, in.ModuleRefs)
	rows = appendReferenceDefaultRange(rows, MemberRef, in.MemberRefs)
	rows = appendReferenceDefaultRange(rows, MethodSpec, in.MethodSpecs)
	rows = appendReferenceDefaultRange(rows, TypeRef, in.TypeRefs)
	rows = appendReferenceDefaultRange(rows, TypeSpec, in.TypeSpecs)
	rows = appendReferenceDefaultRange(rows, StandAloneSig, in.StandAloneSigs)

	for _, r := range in.Types.Rows() {
		rows = append(rows, EncLogRow{Token: TokenOf(TypeDef, r.Row), FuncCode: EncDefault})
	}

	for _, r := range in.EventMap.Rows() {
		rows = append(rows, EncLogRow{Token: TokenOf(EventMap, r.Map), FuncCode: EncDefault})
	}
	for _, r := range in.PropertyMap.Rows() {
		rows = append(rows, EncLogRow{Token: TokenOf(PropertyMap, r.Map), FuncCode: EncDefault})
	}

	var err error
	rows, err = appendEventPass(rows, in)
	if err != nil {
		return nil, err
	}
	rows, err = appendFieldPass(rows, in)
	if err != nil {
		return nil, err
	}
	rows, err = appendMethodPass(rows, in)
	if err != nil {
		return nil, err
	}
	rows, err = appendPropertyPass(rows, in)
	if err != nil {
		return nil, err
	}

	for _, pair := range in.MethodParams {
		methodRow, ok := in.Methods.TryGet(pair.Method)
		if !ok {
			return nil, invariant(ErrNotFound, "EncLog: parameter's owning method has no row")
		}
		paramRow, ok := in.Params.TryGet(pair.Param)
		if !ok {
			return nil, invariant(ErrNotFound, "EncLog: added parameter has no row")
		}
		rows = append(rows, EncLogRow{Token: TokenOf(Method, methodRow), FuncCode: EncAddParameter})
		rows = append(rows, EncLogRow{Token: TokenOf(Param, paramRow), FuncCode: EncDefault})
	}

	s := in.Satellites
	baseSizes := in.Baseline.TableSizes
	rows = appendLinearDefaultRange(rows, Constant, baseSizes[Constant], s.Constant)
	rows = appendLinearDefaultRange(rows, CustomAttribute, baseSizes[CustomAttribute], s.CustomAttribute)
	rows = appendLinearDefaultRange(rows, DeclSecurity, baseSizes[DeclSecurity], s.DeclSecurity)
	rows = appendLinearDefaultRange(rows, ClassLayout, baseSizes[ClassLayout], s.ClassLayout)
	rows = appendLinearDefaultRange(rows, FieldLayout, baseSizes[FieldLayout], s.FieldLayout)
	rows = appendLinearDefaultRange(rows, MethodSemantics, baseSizes[MethodSemantics], s.MethodSemantics)
	rows = appendLinearDefaultRange(rows, MethodImpl, baseSizes[MethodImpl], uint32(in.MethodImpls.AddedCount()))
	rows = appendLinearDefaultRange(rows, ImplMap, baseSizes[ImplMap], s.ImplMap)
	rows = appendLinearDefaultRange(rows, FieldRVA, baseSizes[FieldRVA], s.FieldRva)
	rows = appendLinearDefaultRange(rows, NestedClass, baseSizes[NestedClass], s.NestedClass)
	rows = appendLinearDefaultRange(rows, GenericParam, baseSizes[GenericParam], uint32(in.GenericParams.AddedCount()))
	rows = appendLinearDefaultRange(rows, InterfaceImpl, baseSizes[InterfaceImpl], s.InterfaceImpl)
	rows = appendLinearDefaultRange(rows, GenericParamConstraint, baseSizes[GenericParamConstraint], s.GenericParamConstraint)

	return rows, nil
}

func appendEventPass(rows []EncLogRow, in EncLogInputs) ([]EncLogRow, error) {
	for _, r := range in.Events.Rows() {
		if r.IsAdd {
			mapRow, ok := in.EventMap.Owner(r.Row)
			if !ok {
				return nil, invariant(ErrNotFound, "EncLog: added event has no EventMap owner")
			}
			rows = append(rows, EncLogRow{Token: TokenOf(EventMap, mapRow), FuncCode: EncAddEvent})
		}
		rows = append(rows, EncLogRow{Token: TokenOf(Event, r.Row), FuncCode: EncDefault})
	}
	return rows, nil
}

func appendFieldPass(rows []EncLogRow, in EncLogInputs) ([]EncLogRow, error) {
	for _, r := range in.Fields.Rows() {
		if r.IsAdd {
			typeRow, ok := in.FieldOwner[r.Def]
			if !ok {
				return nil, invariant(ErrNotFound, "EncLog: added field has no owner TypeDef")
			}
			rows = append(rows, EncLogRow{Token: TokenOf(TypeDef, typeRow), FuncCode: EncAddField})
		}
		rows = append(rows, EncLogRow{Token: TokenOf(Field, r.Row), FuncCode: EncDefault})
	}
	return rows, nil
}

func appendMethodPass(rows []EncLogRow, in EncLogInputs) ([]EncLogRow, error) {
	for _, r := range in.Methods.Rows() {
		if r.IsAdd {
			typeRow, ok := in.MethodOwner[r.Def]
			if !ok {
				return nil, invariant(ErrNotFound, "EncLog: added method has no owner TypeDef")
			}
			rows = append(rows, EncLogRow{Token: TokenOf(TypeDef, typeRow), FuncCode: EncAddMethod})
		}
		rows = append(rows, EncLogRow{Token: TokenOf(Method, r.Row), FuncCode: EncDefault})
	}
	return rows, nil
}

func appendPropertyPass(rows []EncLogRow, in EncLogInputs) ([]EncLogRow, error) {
	for _, r := range in.Properties.Rows() {
		if r.IsAdd {
			mapRow, ok := in.PropertyMap.Owner(r.Row)
			if !ok {
				return nil, invariant(ErrNotFound, "EncLog: added property has no PropertyMap owner")
			}
			rows = append(rows, EncLogRow{Token: TokenOf(PropertyMap, mapRow), FuncCode: EncAddProperty})
		}
		rows = append(rows, EncLogRow{Token: TokenOf(Property, r.Row), FuncCode: EncDefault})
	}
	return rows, nil
}

// encLogRowSize is the on-disk width of one EncLog row: a 4-byte Token
// followed by a 4-byte FuncCode, both little-endian (ECMA-335 §II.22.13
// lays the EncLog table out as two 4-byte columns).
const encLogRowSize = 8

// EncodeEncLog serializes rows into the #~ stream's EncLog table bytes.
func EncodeEncLog(rows []EncLogRow) []byte {
	out := make([]byte, len(rows)*encLogRowSize)
	for i, r := range rows {
		binary.LittleEndian.PutUint32(out[i*encLogRowSize:], uint32(r.Token))
		binary.LittleEndian.PutUint32(out[i*encLogRowSize+4:], uint32(r.FuncCode))
	}
	return out
}

// DecodeEncLog parses raw EncLog table bytes back into rows.
func DecodeEncLog(data []byte) ([]EncLogRow, error) {
	if len(data)%encLogRowSize != 0 {
		return nil, invariantf("EncLog: %d bytes is not a multiple of the %d-byte row size", len(data), encLogRowSize)
	}
	rows := make([]EncLogRow, len(data)/encLogRowSize)
	for i := range rows {
		off := i * encLogRowSize
		rows[i] = EncLogRow{
			Token:    Token(binary.LittleEndian.Uint32(data[off:])),
			FuncCode: EncFuncCode(binary.LittleEndian.Uint32(data[off+4:])),
		}
	}
	return rows, nil
}
