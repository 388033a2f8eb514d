// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"fmt"
)

// OffsetOutOfReachError is returned when a branch target cannot be
// reached with a signed 16-bit displacement.
type OffsetOutOfReachError struct {
	// Source is the reference point of the branch: the byte right after
	// the offset field.
	Source int
	// Target is the byte offset of the branch target.
	Target int
}

func (e OffsetOutOfReachError) Error() string {
	return fmt.Sprintf("avm1: branch target at offset %d out of reach from offset %d", e.Target, e.Source)
}

// UnknownLabelError is returned when a flow references a label that no
// block of the enclosing function body defines.
type UnknownLabelError Label

func (e UnknownLabelError) Error() string {
	return fmt.Sprintf("avm1: jump to unknown label %q", string(e))
}

// SizeOverflowError is returned when a length or count does not fit in
// the 16-bit field the format provides for it.
type SizeOverflowError struct {
	What string
	Size int
}

func (e SizeOverflowError) Error() string {
	return fmt.Sprintf("avm1: %s size %d overflows u16", e.What, e.Size)
}
