// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// This file declares the capability surfaces the delta writer consumes
// but never implements. Parsing source, binding
// symbols, lowering IL, and synthesizing closures/iterators/async state
// machines are all out of scope; a module builder supplies already-lowered
// definitions through these narrow interfaces.

// TypeDefinition is a top-level or nested type the module builder exposes
// to the delta writer. Identity is by reference: two TypeDefinition
// values describe the same type iff they are `==`-equal, so callers
// should hand out a single instance per type across a delta.
type TypeDefinition interface {
	GenericParameters() []GenericParamDefinition
	Events() []EventDefinition
	Fields() []FieldDefinition
	Methods() []MethodDefinition
	Properties() []PropertyDefinition
	NestedTypes() []TypeDefinition
	ExplicitOverrides() []MethodImplOverride
}

// MethodDefinition is a method, constructor, or accessor.
type MethodDefinition interface {
	// Parameters returns the method's parameters in emission order. The
	// return parameter is included only when it carries custom
	// attributes.
	Parameters() []ParamDefinition
	GenericParameters() []GenericParamDefinition
	// Body returns the method's lowered body, or nil for an abstract,
	// extern, or otherwise bodiless method.
	Body() MethodBody
	// IsImplicit reports whether this method was synthesized by the
	// compiler without a corresponding source declaration (e.g. a
	// default constructor). Implicit methods never get a
	// MethodDebugInfo entry.
	IsImplicit() bool
	// Ordinal is the stable per-assembly method ordinal the emitter
	// assigns, preserved into MethodDebugId.
	Ordinal() int
}

// FieldDefinition, EventDefinition, PropertyDefinition, ParamDefinition,
// and GenericParamDefinition are opaque beyond the identity the indices
// need; the module builder is responsible for everything about their
// shape that the base metadata writer serializes.
type FieldDefinition interface{ fieldDefinitionMarker() }
type EventDefinition interface{ eventDefinitionMarker() }
type PropertyDefinition interface{ propertyDefinitionMarker() }
type ParamDefinition interface{ paramDefinitionMarker() }
type GenericParamDefinition interface{ genericParamDefinitionMarker() }

// MethodImplOverride is an explicit interface implementation owned by a
// type: `method` is the implementing MethodDefinition, declared to
// override `declaration` (typically an interface method).
type MethodImplOverride struct {
	Method      MethodDefinition
	Declaration MethodDefinition
}

// MethodBody is a lowered method body: locals plus every reference that
// must resolve through a reference index. IL encoding, sequence points,
// and exception handlers are the base writer's concern, not the delta
// writer's.
type MethodBody interface {
	Locals() []LocalDef
	References() []Reference
	HasSequencePoints() bool
}

// ReferenceKind classifies a Reference by which reference index it
// resolves through.
type ReferenceKind int

const (
	RefAssembly ReferenceKind = iota
	RefModule
	RefMember
	RefType
	RefTypeSpec
	RefMethodSpec
	RefStandAloneSig
)

// Reference is a single use of a cross-table reference inside a method
// body or signature. Value is the content-addressed key the matching
// reference index dedups on (see refindex.go); Target, when non-nil, is
// the definition being referenced — used only for the
// ReferenceToAddedMember diagnostic sweep.
type Reference struct {
	Kind   ReferenceKind
	Value  any
	Target Symbol
}

// Symbol is the minimal identity surface the change oracle classifies.
// Any of TypeDefinition, MethodDefinition, FieldDefinition,
// EventDefinition, PropertyDefinition, ParamDefinition, or
// GenericParamDefinition satisfies it trivially, since Go satisfies
// empty interfaces structurally; Symbol exists to name the concept at
// call sites.
type Symbol = any

// LocalDef is a single local variable slot in a method body.
type LocalDef struct {
	// Slot is nil for an unnamed temporary.
	Slot *SlotInfo
	Type SignatureType
	// Constraints are custom modifiers (modopt/modreq) applied to the
	// local's type.
	Constraints []CustomModifier
	// CachedSignature is the signature blob byte range carried over from
	// a previous generation, or nil if this local's signature has not
	// yet been serialized.
	CachedSignature []byte
}

// SlotInfo names a long-lived local slot for the EnC engine and debugger.
type SlotInfo struct {
	Kind         SynthesizedLocalKind
	Ordinal      int
	SyntaxOffset int
}

// CustomModifier is an opaque modopt/modreq applied to a local's type.
type CustomModifier struct {
	Type     SignatureType
	Required bool
}

// SignatureType is a type ready to be encoded by the (out of scope)
// general signature serializer.
type SignatureType interface {
	// WriteTo appends this type's encoding to b and returns the number
	// of bytes written.
	WriteTo(b *BlobBuilder) int
}

// BlobBuilder accumulates bytes for a single blob-heap entry.
type BlobBuilder struct {
	buf []byte
}

// WriteByte appends a single byte.
func (b *BlobBuilder) WriteByte(c byte) { b.buf = append(b.buf, c) }

// WriteBytes appends p verbatim.
func (b *BlobBuilder) WriteBytes(p []byte) { b.buf = append(b.buf, p...) }

// WriteCompressedUint appends v using the ECMA-335 §II.23.2 compressed
// unsigned integer encoding.
func (b *BlobBuilder) WriteCompressedUint(v uint32) {
	switch {
	case v <= 0x7F:
		b.WriteByte(byte(v))
	case v <= 0x3FFF:
		b.WriteByte(byte(v>>8) | 0x80)
		b.WriteByte(byte(v))
	default:
		b.WriteByte(byte(v>>24) | 0xC0)
		b.WriteByte(byte(v >> 16))
		b.WriteByte(byte(v >> 8))
		b.WriteByte(byte(v))
	}
}

// Bytes returns the accumulated blob contents.
func (b *BlobBuilder) Bytes() []byte { return b.buf }

// Len returns the number of bytes accumulated so far.
func (b *BlobBuilder) Len() int { return len(b.buf) }

// ModuleBuilder supplies per-method debug descriptors produced by
// lowering (lambdas, closures, state machines) that the delta writer
// folds into MethodDebugInfo without interpreting.
type ModuleBuilder interface {
	LambdaDebugInfo(m MethodDefinition) []LambdaDebugInfo
	ClosureDebugInfo(m MethodDefinition) []ClosureDebugInfo
	StateMachineInfo(m MethodDefinition) (StateMachineDebugInfo, bool)
}

// LambdaDebugInfo and ClosureDebugInfo are opaque debug descriptors
// carried through unchanged; their internal shape is the module
// builder's concern.
type LambdaDebugInfo struct {
	SyntaxOffset   int
	ClosureOrdinal int
}

type ClosureDebugInfo struct {
	SyntaxOffset int
}

// StateMachineDebugInfo describes an iterator/async method's hoisted
// state for the debugger.
type StateMachineDebugInfo struct {
	TypeName          string
	HoistedLocalSlots []SlotInfo
	AwaiterSlots      []int
}

// DefinitionMap resolves symbols that existed since generation 0 to
// their metadata handles.
type DefinitionMap interface {
	TryGetTypeHandle(def TypeDefinition) (RowID, bool)
	TryGetMethodHandle(def MethodDefinition) (RowID, bool)
	TryGetFieldHandle(def FieldDefinition) (RowID, bool)
	TryGetEventHandle(def EventDefinition) (RowID, bool)
	TryGetPropertyHandle(def PropertyDefinition) (RowID, bool)
}
