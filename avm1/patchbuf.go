// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"encoding/binary"
	"fmt"
)

// patchableBuffer is an append-only byte buffer that can reserve fixed
// width holes to be patched once the value is known. Holes are linear
// resources: each must be patched exactly once before complete is
// called.
type patchableBuffer struct {
	buf   []byte
	holes int
}

func newPatchableBuffer() *patchableBuffer {
	return &patchableBuffer{}
}

// Write implements io.Writer. Writing to the buffer never fails.
func (b *patchableBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Len returns the current length of the buffer in bytes.
func (b *patchableBuffer) Len() int {
	return len(b.buf)
}

// complete returns the accumulated bytes. It panics while any hole is
// outstanding: an unpatched hole is an encoder bug.
func (b *patchableBuffer) complete() []byte {
	if b.holes != 0 {
		panic(fmt.Errorf("avm1: buffer completed with %d unpatched hole(s)", b.holes))
	}
	return b.buf
}

// holeLeU16 reserves two bytes for a little-endian u16 written later.
func (b *patchableBuffer) holeLeU16() *holeU16 {
	h := &holeU16{buf: b, start: len(b.buf)}
	b.buf = append(b.buf, 0, 0)
	b.holes++
	return h
}

// holeLeI16 reserves two bytes for a little-endian i16 written later.
func (b *patchableBuffer) holeLeI16() *holeI16 {
	h := &holeI16{buf: b, start: len(b.buf)}
	b.buf = append(b.buf, 0, 0)
	b.holes++
	return h
}

type holeU16 struct {
	buf     *patchableBuffer
	start   int
	patched bool
}

// patch fills the hole. It panics when called twice: a hole is handed
// to exactly one patch call.
func (h *holeU16) patch(v uint16) {
	if h.patched {
		panic(fmt.Errorf("avm1: hole at offset %d patched twice", h.start))
	}
	binary.LittleEndian.PutUint16(h.buf.buf[h.start:], v)
	h.buf.holes--
	h.patched = true
}

type holeI16 struct {
	buf     *patchableBuffer
	start   int
	patched bool
}

func (h *holeI16) patch(v int16) {
	if h.patched {
		panic(fmt.Errorf("avm1: hole at offset %d patched twice", h.start))
	}
	binary.LittleEndian.PutUint16(h.buf.buf[h.start:], uint16(v))
	h.buf.holes--
	h.patched = true
}
