// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

// emptyEncLogInputs builds an EncLogInputs with every index present but
// empty, against a baseline with zero table sizes. Tests mutate the
// returned indices before calling BuildEncLog/BuildEncMap.
func emptyEncLogInputs() EncLogInputs {
	return EncLogInputs{
		AssemblyRefs:   NewReferenceIndex[any](1),
		ModuleRefs:     NewReferenceIndex[any](1),
		MemberRefs:     NewReferenceIndex[any](1),
		MethodSpecs:    NewReferenceIndex[any](1),
		TypeRefs:       NewReferenceIndex[any](1),
		TypeSpecs:      NewReferenceIndex[any](1),
		StandAloneSigs: NewReferenceIndex[any](1),

		Types:      NewDefinitionIndex[TypeDefinition](TypeDef, 1, nil, nil),
		Events:     NewDefinitionIndex[EventDefinition](Event, 1, nil, nil),
		Fields:     NewDefinitionIndex[FieldDefinition](Field, 1, nil, nil),
		Methods:    NewDefinitionIndex[MethodDefinition](Method, 1, nil, nil),
		Properties: NewDefinitionIndex[PropertyDefinition](Property, 1, nil, nil),

		EventMap:    NewOwnerMapIndex(1, nil),
		PropertyMap: NewOwnerMapIndex(1, nil),

		MethodOwner: make(map[MethodDefinition]RowID),
		FieldOwner:  make(map[FieldDefinition]RowID),

		Params:      NewDefinitionIndex[ParamDefinition](Param, 1, nil, nil),
		MethodImpls: NewMethodImplIndex(1, nil),

		GenericParams: NewDefinitionIndex[GenericParamDefinition](GenericParam, 1, nil, nil),

		Baseline: NewBaseline(GUID{}, map[int]uint32{}, 0, 0, 0, 0),
	}
}

func TestBuildEncLogEmptyDeltaProducesNoRows(t *testing.T) {
	rows, err := BuildEncLog(emptyEncLogInputs())
	if err != nil {
		t.Fatalf("BuildEncLog: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("an empty delta must produce no EncLog rows, got %v", rows)
	}
}

func TestBuildEncMapEmptyDeltaProducesNoTokens(t *testing.T) {
	tokens, err := BuildEncMap(emptyEncLogInputs())
	if err != nil {
		t.Fatalf("BuildEncMap: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("an empty delta must produce no EncMap tokens, got %v", tokens)
	}
}

func TestBuildEncLogAddedMethodEmitsAddMethodThenDefault(t *testing.T) {
	in := emptyEncLogInputs()
	existingType := &testType{}
	in.Types.lookthrough = func(def TypeDefinition) (RowID, bool) {
		if def == existingType {
			return 1, true
		}
		return 0, false
	}
	in.Types.AddUpdated(existingType)

	method := &testMethod{}
	methodRow := in.Methods.Add(method)
	in.MethodOwner[method] = 1

	rows, err := BuildEncLog(in)
	if err != nil {
		t.Fatalf("BuildEncLog: %v", err)
	}

	want := []EncLogRow{
		{Token: TokenOf(TypeDef, 1), FuncCode: EncDefault},
		{Token: TokenOf(TypeDef, 1), FuncCode: EncAddMethod},
		{Token: TokenOf(Method, methodRow), FuncCode: EncDefault},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestBuildEncLogUpdatedMethodEmitsOnlyDefault(t *testing.T) {
	in := emptyEncLogInputs()
	method := &testMethod{}
	in.Methods.lookthrough = func(def MethodDefinition) (RowID, bool) {
		if def == method {
			return 9, true
		}
		return 0, false
	}
	in.Methods.AddUpdated(method)

	rows, err := BuildEncLog(in)
	if err != nil {
		t.Fatalf("BuildEncLog: %v", err)
	}
	if len(rows) != 1 || rows[0] != (EncLogRow{Token: TokenOf(Method, 9), FuncCode: EncDefault}) {
		t.Fatalf("rows = %v, want a single Default row for method 9", rows)
	}
}

func TestBuildEncLogParametersPassOrdersAddThenDefault(t *testing.T) {
	in := emptyEncLogInputs()
	method := &testMethod{}
	methodRow := in.Methods.Add(method)
	in.MethodOwner[method] = 1 // owning TypeDef row, required for any added method

	param := &testParam{}
	paramRow := in.Params.Add(param)
	in.MethodParams = []MethodParamPair{{Method: method, Param: param}}

	rows, err := BuildEncLog(in)
	if err != nil {
		t.Fatalf("BuildEncLog: %v", err)
	}

	var sawAddParam bool
	for i, r := range rows {
		if r.Token == TokenOf(Method, methodRow) && r.FuncCode == EncAddParameter {
			sawAddParam = true
			if i+1 >= len(rows) || rows[i+1] != (EncLogRow{Token: TokenOf(Param, paramRow), FuncCode: EncDefault}) {
				t.Fatalf("AddParameter row at %d must be immediately followed by the param's Default row: %v", i, rows)
			}
		}
	}
	if !sawAddParam {
		t.Fatalf("rows = %v; expected an AddParameter row", rows)
	}
}

func TestBuildEncLogAddedEventEmitsMapRowThenAddEvent(t *testing.T) {
	in := emptyEncLogInputs()

	mapRow, created := in.EventMap.EnsurePresent(4)
	if !created || mapRow != 1 {
		t.Fatalf("EnsurePresent(4) = %d, %v; want 1, true", mapRow, created)
	}
	event := &testEvent{}
	eventRow := in.Events.Add(event)
	in.EventMap.NoteChild(mapRow, eventRow)

	rows, err := BuildEncLog(in)
	if err != nil {
		t.Fatalf("BuildEncLog: %v", err)
	}

	want := []EncLogRow{
		{Token: TokenOf(EventMap, mapRow), FuncCode: EncDefault},
		{Token: TokenOf(EventMap, mapRow), FuncCode: EncAddEvent},
		{Token: TokenOf(Event, eventRow), FuncCode: EncDefault},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestBuildEncLogRejectsTouchedFieldRva(t *testing.T) {
	in := emptyEncLogInputs()
	in.Satellites.FieldRva = 1

	if _, err := BuildEncLog(in); err == nil {
		t.Fatalf("BuildEncLog must reject a delta that touches FieldRva")
	}
	if _, err := BuildEncMap(in); err == nil {
		t.Fatalf("BuildEncMap must reject a delta that touches FieldRva")
	}
}

func TestEncodeDecodeEncLogRoundTrip(t *testing.T) {
	rows := []EncLogRow{
		{Token: TokenOf(TypeDef, 1), FuncCode: EncDefault},
		{Token: TokenOf(Method, 5), FuncCode: EncAddMethod},
	}
	data := EncodeEncLog(rows)
	if len(data) != len(rows)*encLogRowSize {
		t.Fatalf("encoded length = %d, want %d", len(data), len(rows)*encLogRowSize)
	}
	decoded, err := DecodeEncLog(data)
	if err != nil {
		t.Fatalf("DecodeEncLog: %v", err)
	}
	if len(decoded) != len(rows) {
		t.Fatalf("decoded = %v, want %v", decoded, rows)
	}
	for i := range rows {
		if decoded[i] != rows[i] {
			t.Fatalf("decoded[%d] = %v, want %v", i, decoded[i], rows[i])
		}
	}
}

func TestDecodeEncLogRejectsTruncatedInput(t *testing.T) {
	if _, err := DecodeEncLog([]byte{1, 2, 3}); err == nil {
		t.Fatalf("DecodeEncLog must reject a length that is not a multiple of the row size")
	}
}
