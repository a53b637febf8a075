// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrFrozen is the error an index panics with, wrapped in an
	// InvariantViolation, when a mutation is attempted after it has been
	// frozen.
	ErrFrozen = errors.New("cil: index is frozen, no further writes allowed")

	// ErrNotFound is wrapped in the InvariantViolation raised when a
	// definition that must already have a row cannot be resolved (e.g.
	// AddUpdated on a definition TryGet does not find, or an EncLog owner
	// with no row). TryGet itself reports a miss as false, not as an error.
	ErrNotFound = errors.New("cil: definition not found in index, baseline, or definition map")

	// ErrEncMapDuplicate is returned when the EncMap builder would emit
	// the same token twice.
	ErrEncMapDuplicate = errors.New("cil: duplicate token in EncMap")

	// ErrNonContiguousRowIDs is the error DefinitionIndex.Freeze panics
	// with, wrapped in an InvariantViolation, when the added-row IDs do not
	// form a contiguous range starting at firstRowID.
	ErrNonContiguousRowIDs = errors.New("cil: added row IDs are not contiguous")

	// ErrUnexpectedChangeKind is returned when a change oracle reports a
	// ChangeKind outside {Added, Updated, ContainsChanges, None}.
	ErrUnexpectedChangeKind = errors.New("cil: change oracle returned an unexpected change kind")

	// ErrCancelled is returned when the caller's context is cancelled
	// during delta emission. No EmitBaseline is produced on this path.
	ErrCancelled = errors.New("cil: delta emission was cancelled")

	// ErrFieldRvaTouched is returned when a delta touches the FieldRva
	// table. Fields with an explicit RVA back a private implementation
	// detail class that is never edited, so this is asserted rather than
	// silently relied upon.
	ErrFieldRvaTouched = errors.New("cil: delta touches FieldRva, which is assumed to never change across generations")
)

// InvariantViolation reports a violation of one of the structural
// invariants an index or builder is required to uphold. It
// is always a programming error in the caller or in this package, never
// a recoverable condition.
type InvariantViolation struct {
	Err     error
	Context string
}

func (e *InvariantViolation) Error() string {
	if e.Context == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Context)
}

func (e *InvariantViolation) Unwrap() error { return e.Err }

func invariant(err error, context string) *InvariantViolation {
	return &InvariantViolation{Err: err, Context: context}
}

func invariantf(format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Err: fmt.Errorf(format, args...)}
}

// ReferenceToAddedMember is the diagnostic recorded when a visited
// reference targets a symbol the change oracle classifies as newly added
// in this delta. It is informational at emission time
// but typically fatal for the caller, since the runtime cannot resolve
// such a reference until the delta itself has been applied.
type ReferenceToAddedMember struct {
	// MemberName is the simple name of the referenced symbol.
	MemberName string
	// AssemblyName is the name of the assembly containing the reference.
	AssemblyName string
}

func (d ReferenceToAddedMember) Error() string {
	return fmt.Sprintf("reference to added member %q in assembly %q", d.MemberName, d.AssemblyName)
}
