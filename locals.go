// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import "sync"

// localSigBuilderPool recycles BlobBuilders across method bodies in a
// single delta so serializing thousands of local-variable signatures
// does not thrash the allocator.
var localSigBuilderPool = sync.Pool{
	New: func() any { return new(BlobBuilder) },
}

func acquireLocalSigBuilder() *BlobBuilder {
	b := localSigBuilderPool.Get().(*BlobBuilder)
	b.buf = b.buf[:0]
	return b
}

func releaseLocalSigBuilder(b *BlobBuilder) {
	localSigBuilderPool.Put(b)
}

// localSigBlobTag is the leading byte ECMA-335 §II.23.2.6 fixes for a
// LOCAL_SIG blob.
const localSigBlobTag = 0x07

// SerializedLocals is the result of serializing one method body's locals:
// the StandAloneSig token to record against the method (zero if the body
// has no locals), and the per-slot debug records to fold into
// MethodDebugInfo.
type SerializedLocals struct {
	SignatureToken Token
	Locals         []EncLocalInfo
}

// SerializeLocalVariablesSignature builds the LOCAL_SIG blob for
// locals, interns it into blobs, assigns or
// reuses a StandAloneSig row through standAloneSigs, and returns the
// per-slot EncLocalInfo records. An empty locals slice produces a zero
// SerializedLocals with no table rows touched.
func SerializeLocalVariablesSignature(locals []LocalDef, blobs *BlobHeap, standAloneSigs *ReferenceIndex[any]) SerializedLocals {
	if len(locals) == 0 {
		return SerializedLocals{}
	}

	buf := acquireLocalSigBuilder()
	defer releaseLocalSigBuilder(buf)

	buf.WriteByte(localSigBlobTag)
	buf.WriteCompressedUint(uint32(len(locals)))

	infos := make([]EncLocalInfo, len(locals))
	for i := range locals {
		local := &locals[i]
		var sig []byte
		if local.CachedSignature != nil {
			// Reuse the prior generation's bytes verbatim rather than
			// re-serializing the type.
			sig = local.CachedSignature
			buf.WriteBytes(sig)
		} else {
			start := buf.Len()
			for _, mod := range local.Constraints {
				writeCustomModifier(buf, mod)
			}
			local.Type.WriteTo(buf)
			// Copy before the pool recycles buf's backing array out from
			// under us.
			sig = append([]byte(nil), buf.Bytes()[start:]...)
			local.CachedSignature = sig
		}
		infos[i] = EncLocalInfo{
			Slot:        local.Slot,
			Type:        local.Type,
			Constraints: local.Constraints,
			Signature:   sig,
		}
	}

	blobs.Intern(buf.Bytes())
	row := standAloneSigs.GetOrAdd(string(buf.Bytes()))

	return SerializedLocals{
		SignatureToken: TokenOf(StandAloneSig, row),
		Locals:         infos,
	}
}

// writeCustomModifier appends a modopt/modreq prefix for mod ahead of the
// type it modifies (ECMA-335 §II.23.2.7).
func writeCustomModifier(b *BlobBuilder, mod CustomModifier) {
	if mod.Required {
		b.WriteByte(0x1F) // ELEMENT_TYPE_CMOD_REQD
	} else {
		b.WriteByte(0x20) // ELEMENT_TYPE_CMOD_OPT
	}
	mod.Type.WriteTo(b)
}
