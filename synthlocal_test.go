// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestEncodeDecodeSynthesizedLocalNameRoundTrip(t *testing.T) {
	name, ok := EncodeSynthesizedLocalName(SynthesizedLocalLock, 7)
	if !ok {
		t.Fatalf("EncodeSynthesizedLocalName(Lock, 7) returned ok=false")
	}
	if name != "CS$1$0007" {
		t.Fatalf("name = %q, want CS$1$0007", name)
	}

	kind, id, ok := DecodeSynthesizedLocalName(name)
	if !ok || kind != SynthesizedLocalLock || id != 7 {
		t.Fatalf("decode(%q) = %v, %d, %v; want SynthesizedLocalLock, 7, true", name, kind, id, ok)
	}
}

func TestEncodeSynthesizedLocalNameRejectsTemp(t *testing.T) {
	if _, ok := EncodeSynthesizedLocalName(SynthesizedLocalTemp, 1); ok {
		t.Fatalf("an unnamed temporary must never be encoded")
	}
}

func TestDecodeSynthesizedLocalNameRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"NotOurs",
		"CS$1",        // no $
		"CS$1$7",      // unique id not 4 digits
		"CS$abc$0007", // kind not numeric
		"CS$0$0007",   // kind 0 is SynthesizedLocalTemp, never a valid encoded name
	}
	for _, c := range cases {
		if _, _, ok := DecodeSynthesizedLocalName(c); ok {
			t.Fatalf("DecodeSynthesizedLocalName(%q) unexpectedly succeeded", c)
		}
	}
}

func TestSynthesizedLocalKindShouldName(t *testing.T) {
	if SynthesizedLocalTemp.ShouldName(DebugInformationFull) {
		t.Fatalf("a temporary is never named, regardless of debug level")
	}
	if !SynthesizedLocalLock.ShouldName(DebugInformationFull) {
		t.Fatalf("a long-lived local should be named under Full debug info")
	}
	if SynthesizedLocalLock.ShouldName(DebugInformationNone) {
		t.Fatalf("an ordinary long-lived local should not be named with debug info off")
	}
	if !SynthesizedLocalLambdaDisplayClass.ShouldName(DebugInformationNone) {
		t.Fatalf("the lambda display class must be named even with debug info off")
	}
	if !SynthesizedLocalCachedDelegate.ShouldName(DebugInformationNone) {
		t.Fatalf("the cached delegate must be named even with debug info off")
	}
}
