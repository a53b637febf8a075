// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package cil

import (
	"golang.org/x/text/encoding/unicode"
)

// align4 rounds n up to the next multiple of 4. #Blob and #US pad to
// 4-byte alignment; #Strings does not; #GUID is aligned by construction
// since every entry is 16 bytes.
func align4(n uint32) uint32 {
	return (n + 3) &^ 3
}

// StringHeap accumulates this delta's additions to #Strings. Entries are
// UTF-8, nul-terminated, unaligned.
type StringHeap struct {
	base uint32
	buf  []byte
	seen map[string]uint32
}

// NewStringHeap seeds a heap whose new offsets continue right after the
// baseline's existing #Strings length.
func NewStringHeap(base uint32) *StringHeap {
	return &StringHeap{base: base, seen: make(map[string]uint32)}
}

// Intern returns the absolute heap offset for s, appending it (plus a
// nul terminator) the first time it is seen.
func (h *StringHeap) Intern(s string) uint32 {
	if off, ok := h.seen[s]; ok {
		return off
	}
	off := h.base + uint32(len(h.buf))
	h.buf = append(h.buf, s...)
	h.buf = append(h.buf, 0)
	h.seen[s] = off
	return off
}

// Len is the number of bytes this delta added (unaligned).
func (h *StringHeap) Len() uint32 { return uint32(len(h.buf)) }

// Bytes returns the raw bytes added this delta.
func (h *StringHeap) Bytes() []byte { return h.buf }

// BlobHeap accumulates this delta's additions to #Blob. Content-
// addressed: identical byte sequences (local-variable signatures,
// custom-attribute blobs, ...) share one offset.
type BlobHeap struct {
	base uint32
	buf  []byte
	seen map[string]uint32
}

func NewBlobHeap(base uint32) *BlobHeap {
	return &BlobHeap{base: base, seen: make(map[string]uint32)}
}

// Intern returns the absolute heap offset for data, appending it (length-
// prefixed per ECMA-335 §II.24.2.4) the first time it is seen.
func (h *BlobHeap) Intern(data []byte) uint32 {
	key := string(data)
	if off, ok := h.seen[key]; ok {
		return off
	}
	off := h.base + uint32(len(h.buf))
	var prefix BlobBuilder
	prefix.WriteCompressedUint(uint32(len(data)))
	h.buf = append(h.buf, prefix.Bytes()...)
	h.buf = append(h.buf, data...)
	h.seen[key] = off
	return off
}

// Len is the number of bytes this delta added (unaligned).
func (h *BlobHeap) Len() uint32 { return uint32(len(h.buf)) }

// AlignedLen is Len padded to the next 4-byte boundary.
func (h *BlobHeap) AlignedLen() uint32 { return align4(h.Len()) }

// Bytes returns the raw bytes added this delta, padded to AlignedLen.
func (h *BlobHeap) Bytes() []byte {
	out := make([]byte, align4(uint32(len(h.buf))))
	copy(out, h.buf)
	return out
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// hasUserStringSpecialChar reports whether s requires the #US heap's
// trailing marker byte to be 1 rather than 0 (ECMA-335 §II.24.2.4): any
// character above 0x7E, a control character in 0x01-0x08 or 0x0E-0x1F,
// an apostrophe (0x27), or a hyphen (0x2D) forces the marker.
func hasUserStringSpecialChar(s string) bool {
	for _, r := range s {
		if r > 0x7E {
			return true
		}
		switch {
		case r >= 0x01 && r <= 0x08, r >= 0x0E && r <= 0x1F, r == 0x27, r == 0x2D:
			return true
		}
	}
	return false
}

// USHeap accumulates this delta's additions to #US (user strings).
// Entries are UTF-16LE, length-prefixed, with a trailing marker byte.
type USHeap struct {
	base uint32
	buf  []byte
	seen map[string]uint32
}

func NewUSHeap(base uint32) *USHeap {
	return &USHeap{base: base, seen: make(map[string]uint32)}
}

// Intern returns the absolute heap offset for s, encoding it as UTF-16LE
// plus the trailing marker byte the first time it is seen.
func (h *USHeap) Intern(s string) (uint32, error) {
	if off, ok := h.seen[s]; ok {
		return off, nil
	}
	encoded, err := utf16LE.NewEncoder().String(s)
	if err != nil {
		return 0, err
	}
	marker := byte(0)
	if hasUserStringSpecialChar(s) {
		marker = 1
	}
	off := h.base + uint32(len(h.buf))
	var prefix BlobBuilder
	prefix.WriteCompressedUint(uint32(len(encoded) + 1))
	h.buf = append(h.buf, prefix.Bytes()...)
	h.buf = append(h.buf, encoded...)
	h.buf = append(h.buf, marker)
	h.seen[s] = off
	return off, nil
}

// Len is the number of bytes this delta added (unaligned).
func (h *USHeap) Len() uint32 { return uint32(len(h.buf)) }

// AlignedLen is Len padded to the next 4-byte boundary.
func (h *USHeap) AlignedLen() uint32 { return align4(h.Len()) }

// Bytes returns the raw bytes added this delta, padded to AlignedLen.
func (h *USHeap) Bytes() []byte {
	out := make([]byte, align4(uint32(len(h.buf))))
	copy(out, h.buf)
	return out
}

// GUIDHeap accumulates this delta's additions to #GUID. Every entry is
// exactly 16 bytes, so the heap is always aligned by construction.
type GUIDHeap struct {
	baseCount uint32
	guids     []GUID
	seen      map[GUID]uint32
}

func NewGUIDHeap(baseLengthBytes uint32) *GUIDHeap {
	return &GUIDHeap{baseCount: baseLengthBytes / 16, seen: make(map[GUID]uint32)}
}

// Intern returns the 1-based #GUID heap index for g.
func (h *GUIDHeap) Intern(g GUID) uint32 {
	if idx, ok := h.seen[g]; ok {
		return idx
	}
	idx := h.baseCount + uint32(len(h.guids)) + 1
	h.guids = append(h.guids, g)
	h.seen[g] = idx
	return idx
}

// Len is the number of bytes this delta added.
func (h *GUIDHeap) Len() uint32 { return uint32(len(h.guids)) * 16 }

// Bytes returns the raw bytes added this delta.
func (h *GUIDHeap) Bytes() []byte {
	out := make([]byte, 0, len(h.guids)*16)
	for _, g := range h.guids {
		out = append(out, g[:]...)
	}
	return out
}
