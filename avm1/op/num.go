// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Add          = newOp(0x0a, "Add")
	Subtract     = newOp(0x0b, "Subtract")
	Multiply     = newOp(0x0c, "Multiply")
	Divide       = newOp(0x0d, "Divide")
	Equals       = newOp(0x0e, "Equals")
	Less         = newOp(0x0f, "Less")
	And          = newOp(0x10, "And")
	Or           = newOp(0x11, "Or")
	Not          = newOp(0x12, "Not")
	ToInteger    = newOp(0x18, "ToInteger")
	RandomNumber = newOp(0x30, "RandomNumber")
	Modulo       = newOp(0x3f, "Modulo")
	Add2         = newOp(0x47, "Add2")
	Less2        = newOp(0x48, "Less2")
	Equals2      = newOp(0x49, "Equals2")
	ToNumber     = newOp(0x4a, "ToNumber")
	Increment    = newOp(0x50, "Increment")
	Decrement    = newOp(0x51, "Decrement")
	BitAnd       = newOp(0x60, "BitAnd")
	BitOr        = newOp(0x61, "BitOr")
	BitXor       = newOp(0x62, "BitXor")
	BitLShift    = newOp(0x63, "BitLShift")
	BitRShift    = newOp(0x64, "BitRShift")
	BitURShift   = newOp(0x65, "BitURShift")
	StrictEquals = newOp(0x66, "StrictEquals")
	Greater      = newOp(0x67, "Greater")
)
