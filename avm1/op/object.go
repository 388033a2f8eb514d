// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	GetVariable  = newOp(0x1c, "GetVariable")
	SetVariable  = newOp(0x1d, "SetVariable")
	GetProperty  = newOp(0x22, "GetProperty")
	SetProperty  = newOp(0x23, "SetProperty")
	CloneSprite  = newOp(0x24, "CloneSprite")
	RemoveSprite = newOp(0x25, "RemoveSprite")
	StartDrag    = newOp(0x27, "StartDrag")
	EndDrag      = newOp(0x28, "EndDrag")
	CastOp       = newOp(0x2b, "CastOp")
	ImplementsOp = newOp(0x2c, "ImplementsOp")
	Delete       = newOp(0x3a, "Delete")
	Delete2      = newOp(0x3b, "Delete2")
	DefineLocal  = newOp(0x3c, "DefineLocal")
	CallFunction = newOp(0x3d, "CallFunction")
	NewObject    = newOp(0x40, "NewObject")
	DefineLocal2 = newOp(0x41, "DefineLocal2")
	InitArray    = newOp(0x42, "InitArray")
	InitObject   = newOp(0x43, "InitObject")
	TypeOf       = newOp(0x44, "TypeOf")
	TargetPath   = newOp(0x45, "TargetPath")
	Enumerate    = newOp(0x46, "Enumerate")
	GetMember    = newOp(0x4e, "GetMember")
	SetMember    = newOp(0x4f, "SetMember")
	CallMethod   = newOp(0x52, "CallMethod")
	NewMethod    = newOp(0x53, "NewMethod")
	InstanceOf   = newOp(0x54, "InstanceOf")
	Enumerate2   = newOp(0x55, "Enumerate2")
	Extends      = newOp(0x69, "Extends")

	DefineFunction2 = newOp(0x8e, "DefineFunction2")
	DefineFunction  = newOp(0x9b, "DefineFunction")
)
