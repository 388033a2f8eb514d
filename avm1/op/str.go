// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	StringEquals    = newOp(0x13, "StringEquals")
	StringLength    = newOp(0x14, "StringLength")
	StringExtract   = newOp(0x15, "StringExtract")
	StringAdd       = newOp(0x21, "StringAdd")
	StringLess      = newOp(0x29, "StringLess")
	MbStringLength  = newOp(0x31, "MbStringLength")
	CharToAscii     = newOp(0x32, "CharToAscii")
	AsciiToChar     = newOp(0x33, "AsciiToChar")
	MbStringExtract = newOp(0x35, "MbStringExtract")
	MbCharToAscii   = newOp(0x36, "MbCharToAscii")
	MbAsciiToChar   = newOp(0x37, "MbAsciiToChar")
	ToString        = newOp(0x4b, "ToString")
	StringGreater   = newOp(0x68, "StringGreater")
)
