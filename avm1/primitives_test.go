// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"bytes"
	"testing"
)

func TestWriteAvm1F64(t *testing.T) {
	// The standard little-endian bytes of 1.0 are
	// 00 00 00 00 00 00 f0 3f; AVM1 swaps the two 32-bit halves.
	var buf bytes.Buffer
	if err := writeAvm1F64(&buf, 1.0); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x00, 0xf0, 0x3f, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected bytes. got=% x, want=% x", buf.Bytes(), want)
	}
}

func TestWriteCString(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCString(&buf, "abc"); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x61, 0x62, 0x63, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected bytes. got=% x, want=% x", buf.Bytes(), want)
	}
}

func TestWriteLeI32(t *testing.T) {
	var buf bytes.Buffer
	if err := writeLeI32(&buf, -2); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xfe, 0xff, 0xff, 0xff}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("unexpected bytes. got=% x, want=% x", buf.Bytes(), want)
	}
}

func TestOffsetDeltaI16(t *testing.T) {
	for _, tc := range []struct {
		source, target int
		want           int16
		ok             bool
	}{
		{5, 5, 0, true},
		{5, 0, -5, true},
		{0, 32767, 32767, true},
		{0, 32768, 0, false},
		{32768, 0, -32768, true},
		{32769, 0, 0, false},
	} {
		got, ok := offsetDeltaI16(tc.source, tc.target)
		if ok != tc.ok || got != tc.want {
			t.Errorf("offsetDeltaI16(%d, %d) = (%d, %v), want (%d, %v)",
				tc.source, tc.target, got, ok, tc.want, tc.ok)
		}
	}
}
