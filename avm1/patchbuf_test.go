// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"bytes"
	"testing"
)

func TestPatchableBufferPatch(t *testing.T) {
	b := newPatchableBuffer()
	if _, err := b.Write([]byte{0xaa}); err != nil {
		t.Fatal(err)
	}
	hole := b.holeLeU16()
	if _, err := b.Write([]byte{0xbb, 0xcc}); err != nil {
		t.Fatal(err)
	}
	if b.Len() != 5 {
		t.Fatalf("unexpected length. got=%d, want=5", b.Len())
	}
	hole.patch(0x0201)
	got := b.complete()
	want := []byte{0xaa, 0x01, 0x02, 0xbb, 0xcc}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected bytes. got=% x, want=% x", got, want)
	}
}

func TestPatchableBufferI16Hole(t *testing.T) {
	b := newPatchableBuffer()
	hole := b.holeLeI16()
	hole.patch(-5)
	got := b.complete()
	want := []byte{0xfb, 0xff}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected bytes. got=% x, want=% x", got, want)
	}
}

func TestPatchableBufferUnpatchedHolePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("complete with an unpatched hole should panic")
		}
	}()
	b := newPatchableBuffer()
	b.holeLeU16()
	b.complete()
}

func TestPatchableBufferDoublePatchPanics(t *testing.T) {
	b := newPatchableBuffer()
	hole := b.holeLeU16()
	hole.patch(1)
	defer func() {
		if recover() == nil {
			t.Fatal("patching a hole twice should panic")
		}
	}()
	hole.patch(2)
}
