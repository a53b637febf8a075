// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "testing"

func TestBuildEncMapSortedAscendingNoDuplicates(t *testing.T) {
	in := emptyEncLogInputs()

	existingType := &testType{}
	in.Types.lookthrough = func(def TypeDefinition) (RowID, bool) {
		if def == existingType {
			return 1, true
		}
		return 0, false
	}
	in.Types.AddUpdated(existingType)

	method := &testMethod{}
	in.Methods.Add(method)
	in.MethodOwner[method] = 1

	in.AssemblyRefs.GetOrAdd("mscorlib")
	in.AssemblyRefs.GetOrAdd("System.Core")

	tokens, err := BuildEncMap(in)
	if err != nil {
		t.Fatalf("BuildEncMap: %v", err)
	}

	seen := make(map[Token]bool)
	for i, tok := range tokens {
		if seen[tok] {
			t.Fatalf("token %08x appears more than once", uint32(tok))
		}
		seen[tok] = true
		if i > 0 && tokens[i-1] >= tok {
			t.Fatalf("tokens not strictly ascending at %d: %v", i, tokens)
		}
	}

	wantTypeDef := TokenOf(TypeDef, 1)
	foundTypeDef := false
	for _, tok := range tokens {
		if tok == wantTypeDef {
			foundTypeDef = true
		}
	}
	if !foundTypeDef {
		t.Fatalf("tokens = %v; expected the updated type's token %08x", tokens, uint32(wantTypeDef))
	}
}

func TestBuildEncMapRejectsTouchedFieldRva(t *testing.T) {
	in := emptyEncLogInputs()
	in.Satellites.FieldRva = 2

	if _, err := BuildEncMap(in); err == nil {
		t.Fatalf("BuildEncMap must reject a delta that touches FieldRva")
	}
}

func TestEncodeDecodeEncMapRoundTrip(t *testing.T) {
	tokens := []Token{TokenOf(TypeDef, 1), TokenOf(Method, 2), TokenOf(Field, 3)}
	data := EncodeEncMap(tokens)
	if len(data) != len(tokens)*encMapRowSize {
		t.Fatalf("encoded length = %d, want %d", len(data), len(tokens)*encMapRowSize)
	}
	decoded, err := DecodeEncMap(data)
	if err != nil {
		t.Fatalf("DecodeEncMap: %v", err)
	}
	if len(decoded) != len(tokens) {
		t.Fatalf("decoded = %v, want %v", decoded, tokens)
	}
	for i := range tokens {
		if decoded[i] != tokens[i] {
			t.Fatalf("decoded[%d] = %08x, want %08x", i, uint32(decoded[i]), uint32(tokens[i]))
		}
	}
}

func TestDecodeEncMapRejectsTruncatedInput(t *testing.T) {
	if _, err := DecodeEncMap([]byte{1, 2, 3}); err == nil {
		t.Fatalf("DecodeEncMap must reject a length that is not a multiple of the row size")
	}
}
