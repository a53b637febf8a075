// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "fmt"

// GUID is a 16-byte globally unique identifier, used for EncId/EncBaseId.
// The delta writer never generates one itself — freshness is the caller's
// responsibility, keeping EmitDelta itself deterministic.
type GUID [16]byte

func (g GUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", g[0:4], g[4:6], g[6:8], g[8:10], g[10:16])
}

// MethodDebugId stably identifies a method body across generations, so
// the debugger can correlate successive edits of the same method.
type MethodDebugId struct {
	MethodOrdinal int
	Generation    int
}

// MethodDebugInfo is the per-method debug record accumulated across
// generations, keyed by MethodDef row in Baseline.AddedOrChangedMethods.
type MethodDebugInfo struct {
	DebugID MethodDebugId

	// LocalSignatureToken is the StandAloneSig token of the method's
	// local-variable signature, or 0 for a body with no locals.
	LocalSignatureToken Token

	LocalSlots []EncLocalInfo

	LambdaDebugInfo  []LambdaDebugInfo
	ClosureDebugInfo []ClosureDebugInfo

	// StateMachineTypeName is empty for a method that is not an
	// iterator/async lowering.
	StateMachineTypeName          string
	StateMachineHoistedLocalSlots []SlotInfo
	StateMachineAwaiterSlots      []int
}

// EncLocalInfo records, per local slot, what the debugger needs to map
// IL offsets across generations.
type EncLocalInfo struct {
	// Slot is nil for a temporary: signature only, no identity to track.
	Slot        *SlotInfo
	Type        SignatureType
	Constraints []CustomModifier
	Signature   []byte
}

// MethodImplKey identifies a single MethodImpl row by the implementing
// method and a 1-based occurrence counter distinguishing multiple
// explicit overrides by the same method.
type MethodImplKey struct {
	Method     RowID
	Occurrence int
}

// Baseline is the immutable record of everything required to continue
// numbering in the next delta. It is produced once by generation 0's
// full emit, or by a previous call to EmitDelta, and is
// never mutated in place — MergeBaseline always returns a new value.
type Baseline struct {
	Ordinal   int
	EncID     GUID
	EncBaseID GUID

	// TableSizes holds, for every metadata table, the row count present
	// after the previous generation.
	TableSizes map[int]uint32

	// Heap stream lengths in bytes, after the previous generation.
	StringsHeapLength uint32
	USHeapLength      uint32
	BlobHeapLength    uint32
	GUIDHeapLength    uint32

	// Additions maps, per definition table (TypeDef, Method, Field,
	// Event, Property), symbol identity to the row ID assigned in some
	// prior generation.
	Additions map[int]map[Symbol]RowID

	TypeToEventMap    map[RowID]RowID
	TypeToPropertyMap map[RowID]RowID
	MethodImpls       map[MethodImplKey]RowID

	AddedOrChangedMethods map[RowID]MethodDebugInfo

	AnonymousTypeMap   any
	SynthesizedMembers any
}

// NewBaseline returns the baseline for generation 0: no prior additions,
// table sizes and heap lengths as supplied by the full (non-delta) emit.
func NewBaseline(encID GUID, tableSizes map[int]uint32, stringsLen, usLen, blobLen, guidLen uint32) *Baseline {
	additions := make(map[int]map[Symbol]RowID, 5)
	for _, t := range []int{TypeDef, Method, Field, Event, Property} {
		additions[t] = make(map[Symbol]RowID)
	}
	return &Baseline{
		Ordinal:               0,
		EncID:                 encID,
		TableSizes:            tableSizes,
		StringsHeapLength:     stringsLen,
		USHeapLength:          usLen,
		BlobHeapLength:        blobLen,
		GUIDHeapLength:        guidLen,
		Additions:             additions,
		TypeToEventMap:        map[RowID]RowID{},
		TypeToPropertyMap:     map[RowID]RowID{},
		MethodImpls:           map[MethodImplKey]RowID{},
		AddedOrChangedMethods: map[RowID]MethodDebugInfo{},
	}
}
