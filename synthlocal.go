// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import (
	"fmt"
	"strconv"
	"strings"
)

// SynthesizedLocalKind enumerates the semantic role of a compiler-
// generated local. The integer values for the long-lived kinds are part
// of the on-disk contract with the debugger and EnC engine and must be
// preserved bit-for-bit once shipped.
type SynthesizedLocalKind int

const (
	// SynthesizedLocalTemp is an unnamed temporary: never long-lived,
	// never named, not part of the wire contract.
	SynthesizedLocalTemp SynthesizedLocalKind = iota

	SynthesizedLocalLock
	SynthesizedLocalUsing
	SynthesizedLocalConditionalBranchDiscriminator
	SynthesizedLocalForEachEnumerator
	SynthesizedLocalForEachArray
	SynthesizedLocalForEachArrayIndex0
	SynthesizedLocalForEachArrayIndex1
	SynthesizedLocalForEachArrayIndex2
	SynthesizedLocalForEachArrayIndex3
	SynthesizedLocalForEachArrayLimit0
	SynthesizedLocalForEachArrayLimit1
	SynthesizedLocalForEachArrayLimit2
	SynthesizedLocalForEachArrayLimit3
	SynthesizedLocalFixedString

	SynthesizedLocalLockTaken
	SynthesizedLocalUsingPatternDisposable
	SynthesizedLocalInterpolatedStringHandler
	SynthesizedLocalSwitchCaseDiscriminator
	SynthesizedLocalAsyncMethodReturnValue
	SynthesizedLocalStateMachineCachedState
	SynthesizedLocalExceptionFilterAwaitHoistedExceptionLocal

	// SynthesizedLocalLambdaDisplayClass and SynthesizedLocalCachedDelegate
	// are the two kinds the debugger depends on even in release builds.
	SynthesizedLocalLambdaDisplayClass
	SynthesizedLocalCachedDelegate
)

// synthesizedLocalNamePrefix is the fixed prefix every synthesized-local
// name starts with.
const synthesizedLocalNamePrefix = "CS$"

// IsLongLived reports whether a local of this kind persists across basic
// blocks and therefore needs a stable slot identity for EnC remapping.
// Only SynthesizedLocalTemp is not long-lived.
func (k SynthesizedLocalKind) IsLongLived() bool {
	return k != SynthesizedLocalTemp
}

// RequiresNameInReleaseBuilds reports whether the debugger depends on
// this kind's name even when DebugInformation is None.
func (k SynthesizedLocalKind) RequiresNameInReleaseBuilds() bool {
	return k == SynthesizedLocalLambdaDisplayClass || k == SynthesizedLocalCachedDelegate
}

// ShouldName reports whether a local of this kind should be named given
// the configured debug-information level. Temporaries are never named;
// other long-lived kinds are named in Full/PdbOnly builds, and the two
// debugger-critical kinds are named even when debugInfo is None.
func (k SynthesizedLocalKind) ShouldName(debugInfo DebugInformationKind) bool {
	if !k.IsLongLived() {
		return false
	}
	if debugInfo != DebugInformationNone {
		return true
	}
	return k.RequiresNameInReleaseBuilds()
}

// EncodeSynthesizedLocalName produces the debug name for a long-lived
// local slot: prefix, the kind's wire ordinal, "$", and a 4-digit
// zero-padded uniqueID. It returns ok=false for
// SynthesizedLocalTemp, which is never named, and for a uniqueID outside
// 0-9999, which does not fit in 4 digits.
func EncodeSynthesizedLocalName(kind SynthesizedLocalKind, uniqueID int) (name string, ok bool) {
	if !kind.IsLongLived() || uniqueID < 0 || uniqueID > 9999 {
		return "", false
	}
	return fmt.Sprintf("%s%d$%04d", synthesizedLocalNamePrefix, int(kind), uniqueID), true
}

// DecodeSynthesizedLocalName recovers (kind, uniqueID) from a name
// produced by EncodeSynthesizedLocalName. Names that do not start with
// the fixed prefix, or whose unique-id segment is not exactly 4 digits,
// are rejected.
func DecodeSynthesizedLocalName(name string) (kind SynthesizedLocalKind, uniqueID int, ok bool) {
	rest, found := strings.CutPrefix(name, synthesizedLocalNamePrefix)
	if !found {
		return 0, 0, false
	}
	dollar := strings.IndexByte(rest, '$')
	if dollar < 0 {
		return 0, 0, false
	}
	kindPart, idPart := rest[:dollar], rest[dollar+1:]
	if len(idPart) != 4 {
		return 0, 0, false
	}
	for _, c := range idPart {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	kindVal, err := strconv.Atoi(kindPart)
	if err != nil {
		return 0, 0, false
	}
	idVal, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, 0, false
	}
	k := SynthesizedLocalKind(kindVal)
	if !k.IsLongLived() {
		return 0, 0, false
	}
	return k, idVal, true
}

// DebugInformationKind controls which synthesized locals receive names.
type DebugInformationKind int

const (
	DebugInformationFull DebugInformationKind = iota
	DebugInformationPdbOnly
	DebugInformationNone
)
