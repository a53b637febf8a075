// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// HeapDeltas carries this delta's aligned contribution to each heap
// stream, for MergeBaseline to extend the baseline's running lengths.
type HeapDeltas struct {
	Strings *StringHeap
	US      *USHeap
	Blob    *BlobHeap
	GUID    *GUIDHeap
}

// MergeResult bundles everything MergeBaseline needs beyond the previous
// baseline and this delta's fresh GUID.
type MergeResult struct {
	Types      *DefinitionIndex[TypeDefinition]
	Methods    *DefinitionIndex[MethodDefinition]
	Fields     *DefinitionIndex[FieldDefinition]
	Events     *DefinitionIndex[EventDefinition]
	Properties *DefinitionIndex[PropertyDefinition]

	EventMap    *OwnerMapIndex
	PropertyMap *OwnerMapIndex
	MethodImpls *MethodImplIndex

	Heaps HeapDeltas

	Satellites SatelliteTableSizes

	// MethodDebugInfo holds this delta's per-method debug record, keyed
	// by the MethodDef row it was emitted for.
	MethodDebugInfo map[RowID]MethodDebugInfo

	// AnonymousTypeMap and SynthesizedMembers come from the current
	// module builder only when this delta advances generation 0;
	// MergeBaseline carries the previous baseline's values forward
	// otherwise.
	AnonymousTypeMap   any
	SynthesizedMembers any
}

// MergeBaseline produces the next EmitBaseline from prev, this delta's
// fresh encId, and everything the orchestrator populated. It never
// mutates prev: every field is recomputed into a new
// Baseline value, so merge is associative over the commutative monoid of
// per-table additions maps.
func MergeBaseline(prev *Baseline, encID GUID, r MergeResult) *Baseline {
	next := &Baseline{
		Ordinal:   prev.Ordinal + 1,
		EncID:     encID,
		EncBaseID: prev.EncID,

		TableSizes: make(map[int]uint32, len(prev.TableSizes)),

		StringsHeapLength: prev.StringsHeapLength + r.Heaps.Strings.Len(),
		USHeapLength:      prev.USHeapLength + r.Heaps.US.AlignedLen(),
		BlobHeapLength:    prev.BlobHeapLength + r.Heaps.Blob.AlignedLen(),
		GUIDHeapLength:    prev.GUIDHeapLength + r.Heaps.GUID.Len(),

		Additions: make(map[int]map[Symbol]RowID, len(prev.Additions)),

		TypeToEventMap:    mergeOwnerMap(prev.TypeToEventMap, r.EventMap),
		TypeToPropertyMap: mergeOwnerMap(prev.TypeToPropertyMap, r.PropertyMap),
		MethodImpls:       mergeMethodImpls(prev.MethodImpls, r.MethodImpls),

		AddedOrChangedMethods: mergeMethodDebugInfo(prev.AddedOrChangedMethods, r.MethodDebugInfo),
	}

	for table, size := range prev.TableSizes {
		next.TableSizes[table] = size
	}
	next.TableSizes[TypeDef] += uint32(r.Types.AddedCount())
	next.TableSizes[Method] += uint32(r.Methods.AddedCount())
	next.TableSizes[Field] += uint32(r.Fields.AddedCount())
	next.TableSizes[Event] += uint32(r.Events.AddedCount())
	next.TableSizes[Property] += uint32(r.Properties.AddedCount())
	next.TableSizes[EventMap] += uint32(r.EventMap.AddedCount())
	next.TableSizes[PropertyMap] += uint32(r.PropertyMap.AddedCount())
	next.TableSizes[MethodImpl] += uint32(r.MethodImpls.AddedCount())

	s := r.Satellites
	next.TableSizes[Constant] += s.Constant
	next.TableSizes[CustomAttribute] += s.CustomAttribute
	next.TableSizes[DeclSecurity] += s.DeclSecurity
	next.TableSizes[ClassLayout] += s.ClassLayout
	next.TableSizes[FieldLayout] += s.FieldLayout
	next.TableSizes[MethodSemantics] += s.MethodSemantics
	next.TableSizes[ImplMap] += s.ImplMap
	next.TableSizes[FieldRVA] += s.FieldRva
	next.TableSizes[NestedClass] += s.NestedClass
	next.TableSizes[InterfaceImpl] += s.InterfaceImpl
	next.TableSizes[GenericParamConstraint] += s.GenericParamConstraint

	next.Additions[TypeDef] = mergeAdditions(prev.Additions[TypeDef], r.Types)
	next.Additions[Method] = mergeAdditions(prev.Additions[Method], r.Methods)
	next.Additions[Field] = mergeAdditions(prev.Additions[Field], r.Fields)
	next.Additions[Event] = mergeAdditions(prev.Additions[Event], r.Events)
	next.Additions[Property] = mergeAdditions(prev.Additions[Property], r.Properties)

	if prev.Ordinal == 0 {
		next.AnonymousTypeMap = r.AnonymousTypeMap
		next.SynthesizedMembers = r.SynthesizedMembers
	} else {
		next.AnonymousTypeMap = prev.AnonymousTypeMap
		next.SynthesizedMembers = prev.SynthesizedMembers
	}

	return next
}

// mergeAdditions extends prevAdditions with this delta's newly added
// rows. Symbol identity is by reference (module.go), so a definition
// from a previous generation is never re-added here — this is purely
// concatenation of two disjoint maps, which is why baseline merge is
// associative.
func mergeAdditions[K comparable](prevAdditions map[Symbol]RowID, idx *DefinitionIndex[K]) map[Symbol]RowID {
	merged := make(map[Symbol]RowID, len(prevAdditions))
	for k, v := range prevAdditions {
		merged[k] = v
	}
	for _, r := range idx.Rows() {
		if r.IsAdd {
			merged[r.Def] = r.Row
		}
	}
	return merged
}

func mergeOwnerMap(prevMap map[RowID]RowID, idx *OwnerMapIndex) map[RowID]RowID {
	merged := make(map[RowID]RowID, len(prevMap))
	for k, v := range prevMap {
		merged[k] = v
	}
	for _, r := range idx.Rows() {
		merged[r.Parent] = r.Map
	}
	return merged
}

func mergeMethodImpls(prevImpls map[MethodImplKey]RowID, idx *MethodImplIndex) map[MethodImplKey]RowID {
	merged := make(map[MethodImplKey]RowID, len(prevImpls)+idx.AddedCount())
	for k, v := range prevImpls {
		merged[k] = v
	}
	for k, v := range idx.AddedEntries() {
		merged[k] = v
	}
	return merged
}

func mergeMethodDebugInfo(prevInfo map[RowID]MethodDebugInfo, thisDelta map[RowID]MethodDebugInfo) map[RowID]MethodDebugInfo {
	merged := make(map[RowID]MethodDebugInfo, len(prevInfo)+len(thisDelta))
	for k, v := range prevInfo {
		merged[k] = v
	}
	for k, v := range thisDelta {
		merged[k] = v
	}
	return merged
}
