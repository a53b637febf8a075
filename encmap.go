// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// BuildEncMap emits the EncMap table: every token touched by this delta,
// sorted strictly ascending, with no duplicates. It unions the
// reference/satellite tables' linear [previousSize+1,
// previousSize+deltaSize] ranges with the actual row IDs present in each
// definition table's Rows() (which may interleave old and new IDs for
// updated-in-place rows).
func BuildEncMap(in EncLogInputs) ([]Token, error) {
	if in.Satellites.FieldRva != 0 {
		return nil, invariant(ErrFieldRvaTouched, "EncMap: delta touches FieldRva")
	}

	var tokens []Token
	seen := make(map[Token]bool)

	add := func(t Token) error {
		if seen[t] {
			return invariant(ErrEncMapDuplicate, fmt.Sprintf("token %08x", uint32(t)))
		}
		seen[t] = true
		tokens = append(tokens, t)
		return nil
	}

	addReferenceRange := func(table int, idx *ReferenceIndex[any]) error {
		first, count := referenceTableRange(idx)
		for i := 0; i < count; i++ {
			if err := add(TokenOf(table, first+RowID(i))); err != nil {
				return err
			}
		}
		return nil
	}

	addLinearRange := func(table int, previousSize, deltaSize uint32) error {
		for i := uint32(1); i <= deltaSize; i++ {
			if err := add(TokenOf(table, RowID(previousSize+i))); err != nil {
				return err
			}
		}
		return nil
	}

	refRanges := []struct {
		table int
		idx   *ReferenceIndex[any]
	}{
		{AssemblyRef, in.AssemblyRefs},
		{ModuleRef, in.ModuleRefs},
		{MemberRef, in.MemberRefs},
		{MethodSpec, in.MethodSpecs},
		{TypeRef, in.TypeRefs},
		{TypeSpec, in.TypeSpecs},
		{StandAloneSig, in.StandAloneSigs},
	}
	for _, r := range refRanges {
		if err := addReferenceRange(r.table, r.idx); err != nil {
			return nil, err
		}
	}

	for _, r := range in.Types.Rows() {
		if err := add(TokenOf(TypeDef, r.Row)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.EventMap.Rows() {
		if err := add(TokenOf(EventMap, r.Map)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.PropertyMap.Rows() {
		if err := add(TokenOf(PropertyMap, r.Map)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.Events.Rows() {
		if err := add(TokenOf(Event, r.Row)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.Fields.Rows() {
		if err := add(TokenOf(Field, r.Row)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.Methods.Rows() {
		if err := add(TokenOf(Method, r.Row)); err != nil {
			return nil, err
		}
	}
	for _, r := range in.Properties.Rows() {
		if err := add(TokenOf(Property, r.Row)); err != nil {
			return nil, err
		}
	}
	for _, pair := range in.MethodParams {
		paramRow, ok := in.Params.TryGet(pair.Param)
		if !ok {
			return nil, invariant(ErrNotFound, "EncMap: added parameter has no row")
		}
		if err := add(TokenOf(Param, paramRow)); err != nil {
			return nil, err
		}
	}

	s := in.Satellites
	baseSizes := in.Baseline.TableSizes
	linearRanges := []struct {
		table        int
		previousSize uint32
		deltaSize    uint32
	}{
		{Constant, baseSizes[Constant], s.Constant},
		{CustomAttribute, baseSizes[CustomAttribute], s.CustomAttribute},
		{DeclSecurity, baseSizes[DeclSecurity], s.DeclSecurity},
		{ClassLayout, baseSizes[ClassLayout], s.ClassLayout},
		{FieldLayout, baseSizes[FieldLayout], s.FieldLayout},
		{MethodSemantics, baseSizes[MethodSemantics], s.MethodSemantics},
		{MethodImpl, baseSizes[MethodImpl], uint32(in.MethodImpls.AddedCount())},
		{ImplMap, baseSizes[ImplMap], s.ImplMap},
		{NestedClass, baseSizes[NestedClass], s.NestedClass},
		{GenericParam, baseSizes[GenericParam], uint32(in.GenericParams.AddedCount())},
		{InterfaceImpl, baseSizes[InterfaceImpl], s.InterfaceImpl},
		{GenericParamConstraint, baseSizes[GenericParamConstraint], s.GenericParamConstraint},
	}
	for _, r := range linearRanges {
		if err := addLinearRange(r.table, r.previousSize, r.deltaSize); err != nil {
			return nil, err
		}
	}

	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens, nil
}

// encMapRowSize is the on-disk width of one EncMap row: a single 4-byte
// Token column (ECMA-335 §II.22.14).
const encMapRowSize = 4

// EncodeEncMap serializes tokens into the #~ stream's EncMap table bytes.
func EncodeEncMap(tokens []Token) []byte {
	out := make([]byte, len(tokens)*encMapRowSize)
	for i, t := range tokens {
		binary.LittleEndian.PutUint32(out[i*encMapRowSize:], uint32(t))
	}
	return out
}

// DecodeEncMap parses raw EncMap table bytes back into tokens.
func DecodeEncMap(data []byte) ([]Token, error) {
	if len(data)%encMapRowSize != 0 {
		return nil, invariantf("EncMap: %d bytes is not a multiple of the %d-byte row size", len(data), encMapRowSize)
	}
	tokens := make([]Token, len(data)/encMapRowSize)
	for i := range tokens {
		tokens[i] = Token(binary.LittleEndian.Uint32(data[i*encMapRowSize:]))
	}
	return tokens, nil
}
