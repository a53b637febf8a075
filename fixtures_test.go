// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// Minimal, concrete test doubles for the capability interfaces module.go
// declares. Identity is by pointer, matching the "two TypeDefinition
// values describe the same type iff they are `==`-equal" contract.

type testType struct {
	name       string
	generics   []GenericParamDefinition
	events     []EventDefinition
	fields     []FieldDefinition
	methods    []MethodDefinition
	properties []PropertyDefinition
	nested     []TypeDefinition
	overrides  []MethodImplOverride
}

func (t *testType) GenericParameters() []GenericParamDefinition { return t.generics }
func (t *testType) Events() []EventDefinition                   { return t.events }
func (t *testType) Fields() []FieldDefinition                   { return t.fields }
func (t *testType) Methods() []MethodDefinition                 { return t.methods }
func (t *testType) Properties() []PropertyDefinition            { return t.properties }
func (t *testType) NestedTypes() []TypeDefinition               { return t.nested }
func (t *testType) ExplicitOverrides() []MethodImplOverride     { return t.overrides }

type testMethod struct {
	name     string
	params   []ParamDefinition
	generics []GenericParamDefinition
	body     MethodBody
	implicit bool
	ordinal  int
}

func (m *testMethod) Parameters() []ParamDefinition               { return m.params }
func (m *testMethod) GenericParameters() []GenericParamDefinition { return m.generics }
func (m *testMethod) Body() MethodBody                            { return m.body }
func (m *testMethod) IsImplicit() bool                            { return m.implicit }
func (m *testMethod) Ordinal() int                                { return m.ordinal }
func (m *testMethod) Name() string                                { return m.name }

type testField struct{ name string }

func (f *testField) fieldDefinitionMarker() {}
func (f *testField) Name() string           { return f.name }

type testEvent struct{ name string }

func (e *testEvent) eventDefinitionMarker() {}
func (e *testEvent) Name() string           { return e.name }

type testProperty struct{ name string }

func (p *testProperty) propertyDefinitionMarker() {}
func (p *testProperty) Name() string              { return p.name }

type testParam struct{ name string }

func (p *testParam) paramDefinitionMarker() {}
func (p *testParam) Name() string           { return p.name }

type testGenericParam struct{ name string }

func (g *testGenericParam) genericParamDefinitionMarker() {}

type testMethodBody struct {
	locals     []LocalDef
	references []Reference
	seqPoints  bool
}

func (b *testMethodBody) Locals() []LocalDef      { return b.locals }
func (b *testMethodBody) References() []Reference { return b.references }
func (b *testMethodBody) HasSequencePoints() bool { return b.seqPoints }

// testSignatureType writes a fixed byte sequence, so two instances with
// the same Bytes value produce identical signature bytes.
type testSignatureType struct {
	Bytes []byte
}

func (s *testSignatureType) WriteTo(b *BlobBuilder) int {
	start := b.Len()
	b.WriteBytes(s.Bytes)
	return b.Len() - start
}

// testOracle is a hand-populated SymbolChanges double: tests set
// Kinds[def] directly rather than diffing anything.
type testOracle struct {
	Kinds    map[Symbol]ChangeKind
	TopLevel []TypeDefinition
}

func newTestOracle() *testOracle {
	return &testOracle{Kinds: make(map[Symbol]ChangeKind)}
}

func (o *testOracle) Classify(def Symbol) ChangeKind {
	return o.Kinds[def]
}

func (o *testOracle) IsAdded(def Symbol) bool {
	return o.Kinds[def] == Added
}

func (o *testOracle) TopLevelTypesWithChanges() []TypeDefinition {
	return o.TopLevel
}

// testDefinitionMap resolves nothing by default; tests that need
// generation-0 symbols to resolve populate the embedded maps.
type testDefinitionMap struct {
	types      map[TypeDefinition]RowID
	methods    map[MethodDefinition]RowID
	fields     map[FieldDefinition]RowID
	events     map[EventDefinition]RowID
	properties map[PropertyDefinition]RowID
}

func newTestDefinitionMap() *testDefinitionMap {
	return &testDefinitionMap{
		types:      make(map[TypeDefinition]RowID),
		methods:    make(map[MethodDefinition]RowID),
		fields:     make(map[FieldDefinition]RowID),
		events:     make(map[EventDefinition]RowID),
		properties: make(map[PropertyDefinition]RowID),
	}
}

func (m *testDefinitionMap) TryGetTypeHandle(def TypeDefinition) (RowID, bool) {
	row, ok := m.types[def]
	return row, ok
}
func (m *testDefinitionMap) TryGetMethodHandle(def MethodDefinition) (RowID, bool) {
	row, ok := m.methods[def]
	return row, ok
}
func (m *testDefinitionMap) TryGetFieldHandle(def FieldDefinition) (RowID, bool) {
	row, ok := m.fields[def]
	return row, ok
}
func (m *testDefinitionMap) TryGetEventHandle(def EventDefinition) (RowID, bool) {
	row, ok := m.events[def]
	return row, ok
}
func (m *testDefinitionMap) TryGetPropertyHandle(def PropertyDefinition) (RowID, bool) {
	row, ok := m.properties[def]
	return row, ok
}
