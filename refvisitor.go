// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

// ReferenceSource is implemented by a SignatureType that can itself carry
// further references (e.g. a constructed generic type referencing its
// type arguments). The reference visitor only consults it for locals
// whose signature has not already been cached from a previous
// generation — see the note at visitLocal below.
type ReferenceSource interface {
	References() []Reference
}

// DiagnosticSink receives diagnostics the reference visitor's sweep
// produces.
type DiagnosticSink interface {
	Report(d ReferenceToAddedMember)
}

// CollectingDiagnosticSink is a DiagnosticSink that simply accumulates
// every diagnostic reported, for callers (and tests) that want to
// inspect them after the fact.
type CollectingDiagnosticSink struct {
	Diagnostics []ReferenceToAddedMember
}

func (s *CollectingDiagnosticSink) Report(d ReferenceToAddedMember) {
	s.Diagnostics = append(s.Diagnostics, d)
}

// ReferenceVisitor is a structural traversal pruned by the change
// oracle: it populates every reference index and, once frozen, sweeps
// for references to newly-added members.
type ReferenceVisitor struct {
	oracle SymbolChanges
	sink   DiagnosticSink

	AssemblyRefs   *ReferenceIndex[any]
	ModuleRefs     *ReferenceIndex[any]
	TypeRefs       *ReferenceIndex[any]
	TypeSpecs      *ReferenceIndex[any]
	MemberRefs     *ReferenceIndex[any]
	MethodSpecs    *ReferenceIndex[any]
	StandAloneSigs *ReferenceIndex[any]

	seenTargets []Reference // every reference with a non-nil Target, for the post-freeze sweep
}

// NewReferenceVisitor wires a ReferenceVisitor against the reference
// indices the orchestrator constructed from the baseline.
func NewReferenceVisitor(
	oracle SymbolChanges,
	sink DiagnosticSink,
	assemblyRefs, moduleRefs, typeRefs, typeSpecs, memberRefs, methodSpecs, standAloneSigs *ReferenceIndex[any],
) *ReferenceVisitor {
	return &ReferenceVisitor{
		oracle:         oracle,
		sink:           sink,
		AssemblyRefs:   assemblyRefs,
		ModuleRefs:     moduleRefs,
		TypeRefs:       typeRefs,
		TypeSpecs:      typeSpecs,
		MemberRefs:     memberRefs,
		MethodSpecs:    methodSpecs,
		StandAloneSigs: standAloneSigs,
	}
}

// VisitTopLevelType walks one top-level type, skipping subtrees the
// oracle classifies None.
func (v *ReferenceVisitor) VisitTopLevelType(t TypeDefinition) {
	if v.oracle.Classify(t) == None {
		return
	}
	v.visitMembers(t)
}

func (v *ReferenceVisitor) visitMembers(t TypeDefinition) {
	for _, m := range t.Methods() {
		if v.oracle.Classify(m) == None {
			continue
		}
		v.visitMethod(m)
	}
	for _, ov := range t.ExplicitOverrides() {
		// Older MethodImpl rows persist by reference in the baseline;
		// only a newly-added implementing method needs its declaration
		// reference (re-)recorded.
		if v.oracle.Classify(ov.Method) != Added {
			continue
		}
		ref := Reference{Kind: RefMember, Value: ov.Declaration, Target: ov.Declaration}
		v.visitReference(ref)
	}
	for _, nt := range t.NestedTypes() {
		v.VisitTopLevelType(nt)
	}
}

func (v *ReferenceVisitor) visitMethod(m MethodDefinition) {
	body := m.Body()
	if body == nil {
		return
	}
	for _, ref := range body.References() {
		v.visitReference(ref)
	}
	for _, local := range body.Locals() {
		v.visitLocal(local)
	}
}

// visitLocal: a local whose signature was already serialized in a prior
// generation is taken as-is. The visitor never recurses into its type
// graph looking for further references, even if the type would
// otherwise expose some via ReferenceSource.
func (v *ReferenceVisitor) visitLocal(local LocalDef) {
	if local.CachedSignature != nil {
		return
	}
	if src, ok := local.Type.(ReferenceSource); ok {
		for _, ref := range src.References() {
			v.visitReference(ref)
		}
	}
}

func (v *ReferenceVisitor) visitReference(ref Reference) {
	switch ref.Kind {
	case RefAssembly:
		v.AssemblyRefs.GetOrAdd(ref.Value)
	case RefModule:
		v.ModuleRefs.GetOrAdd(ref.Value)
	case RefType:
		v.TypeRefs.GetOrAdd(ref.Value)
	case RefTypeSpec:
		v.TypeSpecs.GetOrAdd(ref.Value)
	case RefMember:
		v.MemberRefs.GetOrAdd(ref.Value)
	case RefMethodSpec:
		v.MethodSpecs.GetOrAdd(ref.Value)
	case RefStandAloneSig:
		v.StandAloneSigs.GetOrAdd(ref.Value)
	}
	if ref.Target != nil {
		v.seenTargets = append(v.seenTargets, ref)
	}
}

// Freeze freezes the reference indices this visitor populated, except
// StandAloneSigs: serializing local-variable signatures still adds
// StandAloneSig rows after the visit, so that index stays open until the
// orchestrator has serialized every method body. All seven must be
// frozen before EncLog/EncMap emission reads them.
func (v *ReferenceVisitor) Freeze() {
	v.AssemblyRefs.Freeze()
	v.ModuleRefs.Freeze()
	v.TypeRefs.Freeze()
	v.TypeSpecs.Freeze()
	v.MemberRefs.Freeze()
	v.MethodSpecs.Freeze()
}

// ReportAddedMemberReferences performs the post-freeze sweep: every
// collected reference whose Target the oracle classifies as Added is
// reported to the sink as a ReferenceToAddedMember diagnostic.
// assemblyName identifies the referring assembly in the diagnostic.
func (v *ReferenceVisitor) ReportAddedMemberReferences(assemblyName string, nameOf func(Symbol) string) {
	for _, ref := range v.seenTargets {
		if v.oracle.IsAdded(ref.Target) {
			v.sink.Report(ReferenceToAddedMember{
				MemberName:   nameOf(ref.Target),
				AssemblyName: assemblyName,
			})
		}
	}
}
