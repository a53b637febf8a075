// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "fmt"

// MethodParamPair is a (method, parameter) pair added this delta,
// recorded in accumulation order. EncLog emits the AddParameter/Default
// pairs in exactly this sequence.
type MethodParamPair struct {
	Method MethodDefinition
	Param  ParamDefinition
}

// MethodImplCandidate is an explicit override the change driver found
// whose implementing method already has a known row.
type MethodImplCandidate struct {
	Owner  TypeDefinition
	Method MethodDefinition
}

// ChangeDriver walks the module's top-level types as filtered by the
// change oracle, dispatching Added/Updated/ContainsChanges handling and
// populating every definition index.
type ChangeDriver struct {
	oracle SymbolChanges

	Types         *DefinitionIndex[TypeDefinition]
	Methods       *DefinitionIndex[MethodDefinition]
	Fields        *DefinitionIndex[FieldDefinition]
	Events        *DefinitionIndex[EventDefinition]
	Properties    *DefinitionIndex[PropertyDefinition]
	Params        *DefinitionIndex[ParamDefinition]
	GenericParams *DefinitionIndex[GenericParamDefinition]
	EventMap      *OwnerMapIndex
	PropertyMap   *OwnerMapIndex
	MethodImpls   *MethodImplIndex

	// MethodParams preserves the order parameters were added this delta.
	MethodParams []MethodParamPair

	// MethodOwner and FieldOwner record the owning TypeDef row for every
	// method/field touched this delta, so the EncLog structured pass
	// can emit the AddMethod/AddField row's owner token.
	MethodOwner map[MethodDefinition]RowID
	FieldOwner  map[FieldDefinition]RowID
}

// NewChangeDriver wires a ChangeDriver against the indices the
// orchestrator constructed from the baseline (writer.go).
func NewChangeDriver(
	oracle SymbolChanges,
	types *DefinitionIndex[TypeDefinition],
	methods *DefinitionIndex[MethodDefinition],
	fields *DefinitionIndex[FieldDefinition],
	events *DefinitionIndex[EventDefinition],
	properties *DefinitionIndex[PropertyDefinition],
	params *DefinitionIndex[ParamDefinition],
	genericParams *DefinitionIndex[GenericParamDefinition],
	eventMap *OwnerMapIndex,
	propertyMap *OwnerMapIndex,
	methodImpls *MethodImplIndex,
) *ChangeDriver {
	return &ChangeDriver{
		oracle:        oracle,
		Types:         types,
		Methods:       methods,
		Fields:        fields,
		Events:        events,
		Properties:    properties,
		Params:        params,
		GenericParams: genericParams,
		EventMap:      eventMap,
		PropertyMap:   propertyMap,
		MethodImpls:   methodImpls,
		MethodOwner:   make(map[MethodDefinition]RowID),
		FieldOwner:    make(map[FieldDefinition]RowID),
	}
}

// VisitTopLevelType processes one top-level type, as enumerated by
// oracle.TopLevelTypesWithChanges.
func (d *ChangeDriver) VisitTopLevelType(t TypeDefinition) error {
	return d.visitType(t, nil)
}

func (d *ChangeDriver) visitType(t TypeDefinition, outerGenericParams []GenericParamDefinition) error {
	switch kind := d.oracle.Classify(t); kind {
	case Added:
		d.Types.Add(t)
		// Consolidated generic parameters: outer params first, then T's own.
		for _, gp := range outerGenericParams {
			d.GenericParams.Add(gp)
		}
		for _, gp := range t.GenericParameters() {
			d.GenericParams.Add(gp)
		}
		return d.visitMembers(t, outerGenericParams)
	case Updated:
		d.Types.AddUpdated(t)
		return d.visitMembers(t, outerGenericParams)
	case ContainsChanges:
		return d.visitMembers(t, outerGenericParams)
	case None:
		return nil
	default:
		return &InvariantViolation{Err: ErrUnexpectedChangeKind, Context: fmt.Sprintf("type change kind %v", kind)}
	}
}

func (d *ChangeDriver) visitMembers(t TypeDefinition, outerGenericParams []GenericParamDefinition) error {
	for _, e := range t.Events() {
		kind := d.oracle.Classify(e)
		if kind != None {
			typeRow, ok := d.Types.TryGet(t)
			if !ok {
				return &InvariantViolation{Err: ErrNotFound, Context: "event owner type has no row"}
			}
			mapRow, _ := d.EventMap.EnsurePresent(typeRow)
			res, err := addMemberIfNecessary(d.oracle, d.Events, e)
			if err != nil {
				return err
			}
			if res != memberSkipped {
				if childRow, ok := d.Events.TryGet(e); ok {
					d.EventMap.NoteChild(mapRow, childRow)
				}
			}
		}
	}

	for _, f := range t.Fields() {
		res, err := addMemberIfNecessary(d.oracle, d.Fields, f)
		if err != nil {
			return err
		}
		if res != memberSkipped {
			if typeRow, ok := d.Types.TryGet(t); ok {
				d.FieldOwner[f] = typeRow
			}
		}
	}

	for _, m := range t.Methods() {
		res, err := addMemberIfNecessary(d.oracle, d.Methods, m)
		if err != nil {
			return err
		}
		if res != memberSkipped {
			if typeRow, ok := d.Types.TryGet(t); ok {
				d.MethodOwner[m] = typeRow
			}
		}
		if res == memberAdded {
			for _, p := range m.Parameters() {
				d.Params.Add(p)
				d.MethodParams = append(d.MethodParams, MethodParamPair{Method: m, Param: p})
			}
			for _, gp := range m.GenericParameters() {
				d.GenericParams.Add(gp)
			}
		}
	}

	for _, p := range t.Properties() {
		kind := d.oracle.Classify(p)
		if kind != None {
			typeRow, ok := d.Types.TryGet(t)
			if !ok {
				return &InvariantViolation{Err: ErrNotFound, Context: "property owner type has no row"}
			}
			mapRow, _ := d.PropertyMap.EnsurePresent(typeRow)
			res, err := addMemberIfNecessary(d.oracle, d.Properties, p)
			if err != nil {
				return err
			}
			if res != memberSkipped {
				if childRow, ok := d.Properties.TryGet(p); ok {
					d.PropertyMap.NoteChild(mapRow, childRow)
				}
			}
		}
	}

	consolidated := append(append([]GenericParamDefinition{}, outerGenericParams...), t.GenericParameters()...)
	for _, nt := range t.NestedTypes() {
		if err := d.visitType(nt, consolidated); err != nil {
			return err
		}
	}

	for _, ov := range t.ExplicitOverrides() {
		methodRow, ok := d.Methods.TryGet(ov.Method)
		if !ok {
			// The implementing method's row is not known: it was
			// neither added nor updated this delta and resolves through
			// neither the baseline nor the definition map; nothing to
			// record this delta.
			continue
		}
		d.MethodImpls.Add(methodRow)
	}

	return nil
}

type memberResult int

const (
	memberSkipped memberResult = iota
	memberAdded
	memberUpdated
)

// addMemberIfNecessary applies the oracle's classification of def to idx:
// Added calls idx.Add, Updated calls idx.AddUpdated,
// and ContainsChanges/None do nothing (ContainsChanges is only
// meaningful for nested types, which the caller recurses into itself).
func addMemberIfNecessary[K comparable](oracle SymbolChanges, idx *DefinitionIndex[K], def K) (memberResult, error) {
	switch kind := oracle.Classify(def); kind {
	case Added:
		idx.Add(def)
		return memberAdded, nil
	case Updated:
		idx.AddUpdated(def)
		return memberUpdated, nil
	case ContainsChanges, None:
		return memberSkipped, nil
	default:
		return memberSkipped, &InvariantViolation{Err: ErrUnexpectedChangeKind, Context: fmt.Sprintf("member change kind %v", kind)}
	}
}
