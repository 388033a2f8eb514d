// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"encoding/binary"
	"io"
	"math"
)

// writeU8 writes a single byte to w.
func writeU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// writeLeU16 writes an unsigned 16-bit integer to w in little-endian
// byte order.
func writeLeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// writeLeI16 writes a signed 16-bit integer to w in little-endian byte
// order.
func writeLeI16(w io.Writer, v int16) error {
	return writeLeU16(w, uint16(v))
}

// writeLeI32 writes a signed 32-bit integer to w in little-endian byte
// order.
func writeLeI32(w io.Writer, v int32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	_, err := w.Write(b[:])
	return err
}

// writeLeF32 writes an IEEE 754 single precision float to w in
// little-endian byte order.
func writeLeF32(w io.Writer, v float32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	_, err := w.Write(b[:])
	return err
}

// writeAvm1F64 writes an IEEE 754 double precision float in the AVM1
// encoding: little-endian, with the two 32-bit halves swapped.
func writeAvm1F64(w io.Writer, v float64) error {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], math.Float64bits(v))
	b := [8]byte{le[4], le[5], le[6], le[7], le[0], le[1], le[2], le[3]}
	_, err := w.Write(b[:])
	return err
}

// writeCString writes the UTF-8 bytes of s followed by a NUL byte. The
// string must not contain an embedded NUL.
func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	return writeU8(w, 0)
}
