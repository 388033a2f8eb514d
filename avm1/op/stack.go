// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Pop           = newOp(0x17, "Pop")
	Trace         = newOp(0x26, "Trace")
	GetTime       = newOp(0x34, "GetTime")
	PushDuplicate = newOp(0x4c, "PushDuplicate")
	StackSwap     = newOp(0x4d, "StackSwap")

	StoreRegister = newOp(0x87, "StoreRegister")
	ConstantPool  = newOp(0x88, "ConstantPool")
	StrictMode    = newOp(0x89, "StrictMode")
	Push          = newOp(0x96, "Push")
)
