// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "context"

// DeltaMetadataWriterConfig holds the options a delta emission recognizes.
type DeltaMetadataWriterConfig struct {
	DebugInformation DebugInformationKind
	// AssemblyName names the assembly being updated; it identifies the
	// referring assembly in reference-to-added-member diagnostics.
	AssemblyName string
	// CompressMetadataStream is fixed off for deltas. EmitDelta never
	// reads it; setting it has no effect.
	CompressMetadataStream bool
}

// DeltaMetadataWriter orchestrates one delta emission: one instance is
// used by one driver from start to finish, then discarded.
type DeltaMetadataWriter struct {
	baseline *Baseline
	oracle   SymbolChanges
	defMap   DefinitionMap
	module   ModuleBuilder
	sink     DiagnosticSink
	cfg      DeltaMetadataWriterConfig
}

// NewDeltaMetadataWriter wires a writer against a frozen baseline, a
// ready-made change oracle, a definition map, a module builder, and a
// diagnostics sink.
func NewDeltaMetadataWriter(baseline *Baseline, oracle SymbolChanges, defMap DefinitionMap, module ModuleBuilder, sink DiagnosticSink, cfg DeltaMetadataWriterConfig) *DeltaMetadataWriter {
	return &DeltaMetadataWriter{
		baseline: baseline,
		oracle:   oracle,
		defMap:   defMap,
		module:   module,
		sink:     sink,
		cfg:      cfg,
	}
}

// DeltaResult is everything EmitDelta produces, minus the actual row
// bytes, which the base metadata writer (an
// external collaborator) serializes from the indices this writer
// populates.
type DeltaResult struct {
	EncLog []EncLogRow
	EncMap []Token

	NextBaseline *Baseline

	// ChangedMethodsWithSequencePoints is the set of MethodDef rows whose
	// bodies changed this delta and retained sequence points — the
	// debugger will attempt to remap these.
	ChangedMethodsWithSequencePoints []RowID
}

// EmitDelta runs the fixed pipeline: create indices, visit references
// (change driver + reference visitor together, per top-
// level type), serialize local-variable signatures, compute delta table
// sizes, build EncLog, build EncMap, then merge the baseline. ctx is
// polled between top-level types and between phases; on
// cancellation no NextBaseline is produced and ErrCancelled is returned.
func (w *DeltaMetadataWriter) EmitDelta(ctx context.Context, encID GUID, satellites SatelliteTableSizes) (*DeltaResult, error) {
	b := w.baseline

	types := NewDefinitionIndex[TypeDefinition](TypeDef, RowID(b.TableSizes[TypeDef]+1),
		lookthroughFor[TypeDefinition](b, TypeDef), w.defMap.TryGetTypeHandle)
	methods := NewDefinitionIndex[MethodDefinition](Method, RowID(b.TableSizes[Method]+1),
		lookthroughFor[MethodDefinition](b, Method), w.defMap.TryGetMethodHandle)
	fields := NewDefinitionIndex[FieldDefinition](Field, RowID(b.TableSizes[Field]+1),
		lookthroughFor[FieldDefinition](b, Field), w.defMap.TryGetFieldHandle)
	events := NewDefinitionIndex[EventDefinition](Event, RowID(b.TableSizes[Event]+1),
		lookthroughFor[EventDefinition](b, Event), w.defMap.TryGetEventHandle)
	properties := NewDefinitionIndex[PropertyDefinition](Property, RowID(b.TableSizes[Property]+1),
		lookthroughFor[PropertyDefinition](b, Property), w.defMap.TryGetPropertyHandle)
	params := NewDefinitionIndex[ParamDefinition](Param, RowID(b.TableSizes[Param]+1), nil, nil)
	genericParams := NewDefinitionIndex[GenericParamDefinition](GenericParam, RowID(b.TableSizes[GenericParam]+1), nil, nil)

	eventMap := NewOwnerMapIndex(RowID(b.TableSizes[EventMap]+1), func(typeRow RowID) (RowID, bool) {
		row, ok := b.TypeToEventMap[typeRow]
		return row, ok
	})
	propertyMap := NewOwnerMapIndex(RowID(b.TableSizes[PropertyMap]+1), func(typeRow RowID) (RowID, bool) {
		row, ok := b.TypeToPropertyMap[typeRow]
		return row, ok
	})
	methodImpls := NewMethodImplIndex(RowID(b.TableSizes[MethodImpl]+1), func(methodRow RowID) int {
		count := 0
		for k := range b.MethodImpls {
			if k.Method == methodRow && k.Occurrence > count {
				count = k.Occurrence
			}
		}
		return count
	})

	assemblyRefs := NewReferenceIndex[any](RowID(b.TableSizes[AssemblyRef] + 1))
	moduleRefs := NewReferenceIndex[any](RowID(b.TableSizes[ModuleRef] + 1))
	typeRefs := NewReferenceIndex[any](RowID(b.TableSizes[TypeRef] + 1))
	typeSpecs := NewReferenceIndex[any](RowID(b.TableSizes[TypeSpec] + 1))
	memberRefs := NewReferenceIndex[any](RowID(b.TableSizes[MemberRef] + 1))
	methodSpecs := NewReferenceIndex[any](RowID(b.TableSizes[MethodSpec] + 1))
	standAloneSigs := NewReferenceIndex[any](RowID(b.TableSizes[StandAloneSig] + 1))

	driver := NewChangeDriver(w.oracle, types, methods, fields, events, properties, params, genericParams, eventMap, propertyMap, methodImpls)
	refVisitor := NewReferenceVisitor(w.oracle, w.sink, assemblyRefs, moduleRefs, typeRefs, typeSpecs, memberRefs, methodSpecs, standAloneSigs)

	for _, t := range w.oracle.TopLevelTypesWithChanges() {
		if err := ctx.Err(); err != nil {
			return nil, invariant(ErrCancelled, err.Error())
		}
		if err := driver.VisitTopLevelType(t); err != nil {
			return nil, err
		}
		refVisitor.VisitTopLevelType(t)
	}

	if err := ctx.Err(); err != nil {
		return nil, invariant(ErrCancelled, err.Error())
	}
	refVisitor.Freeze()
	refVisitor.ReportAddedMemberReferences(w.cfg.AssemblyName, symbolName)

	if err := ctx.Err(); err != nil {
		return nil, invariant(ErrCancelled, err.Error())
	}

	blobs := NewBlobHeap(b.BlobHeapLength)
	methodDebugInfo := make(map[RowID]MethodDebugInfo)
	var changedWithSequencePoints []RowID
	for _, r := range methods.Rows() {
		if err := ctx.Err(); err != nil {
			return nil, invariant(ErrCancelled, err.Error())
		}
		m := r.Def
		body := m.Body()
		if body == nil {
			continue
		}
		serialized := SerializeLocalVariablesSignature(body.Locals(), blobs, standAloneSigs)
		if m.IsImplicit() {
			continue
		}
		info := MethodDebugInfo{
			DebugID:             MethodDebugId{MethodOrdinal: m.Ordinal(), Generation: b.Ordinal + 1},
			LocalSignatureToken: serialized.SignatureToken,
			LocalSlots:          serialized.Locals,
			LambdaDebugInfo:     w.module.LambdaDebugInfo(m),
			ClosureDebugInfo:    w.module.ClosureDebugInfo(m),
		}
		if sm, ok := w.module.StateMachineInfo(m); ok {
			info.StateMachineTypeName = sm.TypeName
			info.StateMachineHoistedLocalSlots = sm.HoistedLocalSlots
			info.StateMachineAwaiterSlots = sm.AwaiterSlots
		}
		methodDebugInfo[r.Row] = info
		// Newly added methods have no earlier body to remap from; only
		// edited bodies go to the debugger's remap set.
		if !r.IsAdd && body.HasSequencePoints() {
			changedWithSequencePoints = append(changedWithSequencePoints, r.Row)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, invariant(ErrCancelled, err.Error())
	}
	standAloneSigs.Freeze()

	encLogIn := EncLogInputs{
		AssemblyRefs: assemblyRefs, ModuleRefs: moduleRefs, MemberRefs: memberRefs,
		MethodSpecs: methodSpecs, TypeRefs: typeRefs, TypeSpecs: typeSpecs, StandAloneSigs: standAloneSigs,
		Types: types, Events: events, Fields: fields, Methods: methods, Properties: properties,
		EventMap: eventMap, PropertyMap: propertyMap,
		MethodOwner: driver.MethodOwner, FieldOwner: driver.FieldOwner,
		Params: params, MethodParams: driver.MethodParams,
		MethodImpls: methodImpls, GenericParams: genericParams,
		Baseline: b, Satellites: satellites,
	}

	encLog, err := BuildEncLog(encLogIn)
	if err != nil {
		return nil, err
	}
	encMap, err := BuildEncMap(encLogIn)
	if err != nil {
		return nil, err
	}

	strings := NewStringHeap(b.StringsHeapLength)
	us := NewUSHeap(b.USHeapLength)
	guids := NewGUIDHeap(b.GUIDHeapLength)

	anonTypeMap, synthMembers := moduleBuilderCarryForward(w.module)

	nextBaseline := MergeBaseline(b, encID, MergeResult{
		Types: types, Methods: methods, Fields: fields, Events: events, Properties: properties,
		EventMap: eventMap, PropertyMap: propertyMap, MethodImpls: methodImpls,
		Heaps:              HeapDeltas{Strings: strings, US: us, Blob: blobs, GUID: guids},
		Satellites:         satellites,
		MethodDebugInfo:    methodDebugInfo,
		AnonymousTypeMap:   anonTypeMap,
		SynthesizedMembers: synthMembers,
	})

	return &DeltaResult{
		EncLog:                           encLog,
		EncMap:                           encMap,
		NextBaseline:                     nextBaseline,
		ChangedMethodsWithSequencePoints: changedWithSequencePoints,
	}, nil
}

// lookthroughFor builds a DefinitionIndex lookthrough closure over
// baseline.Additions[table].
func lookthroughFor[K comparable](b *Baseline, table int) func(K) (RowID, bool) {
	return func(def K) (RowID, bool) {
		row, ok := b.Additions[table][def]
		return row, ok
	}
}

// symbolName resolves a diagnostic's member name through an optional
// Name() method on the symbol, returning "" for a symbol without one.
// EmitDelta always uses it; there is no option to pass another resolver.
func symbolName(s Symbol) string {
	if named, ok := s.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}

// moduleCarriesAnonymousTypeMap is an optional capability a module
// builder may implement to expose the anonymous-type and synthesized-
// member maps generation 0 produced. Module builders
// that don't track these simply don't implement it.
type moduleCarriesAnonymousTypeMap interface {
	AnonymousTypeMap() any
	SynthesizedMembers() any
}

func moduleBuilderCarryForward(m ModuleBuilder) (anonymousTypeMap, synthesizedMembers any) {
	if carrier, ok := m.(moduleCarriesAnonymousTypeMap); ok {
		return carrier.AnonymousTypeMap(), carrier.SynthesizedMembers()
	}
	return nil, nil
}
