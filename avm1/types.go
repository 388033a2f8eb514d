// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package avm1 provides a data model for AVM1 programs represented as
// control-flow graphs, and an encoder producing the flat AVM1 byte
// stream used by the SWF container format.
package avm1

import (
	"fmt"
)

// PushValue is a typed value pushed by a Push action. On the wire each
// value is prefixed with a one-byte type tag.
type PushValue interface {
	isPushValue()
}

// PushString is a null-terminated string value (tag 0).
type PushString string

// PushFloat32 is an IEEE 754 single precision value (tag 1).
type PushFloat32 float32

// PushNull is the null value (tag 2).
type PushNull struct{}

// PushUndefined is the undefined value (tag 3).
type PushUndefined struct{}

// PushRegister refers to a register by number (tag 4).
type PushRegister uint8

// PushBoolean is a boolean value (tag 5).
type PushBoolean bool

// PushFloat64 is a double precision value (tag 6). AVM1 stores doubles
// with their two 32-bit halves swapped.
type PushFloat64 float64

// PushSint32 is a signed 32-bit integer value (tag 7).
type PushSint32 int32

// PushConstant refers to a constant pool entry by index. Indices that
// fit in a u8 use tag 8, larger ones use tag 9.
type PushConstant uint16

func (PushString) isPushValue()    {}
func (PushFloat32) isPushValue()   {}
func (PushNull) isPushValue()      {}
func (PushUndefined) isPushValue() {}
func (PushRegister) isPushValue()  {}
func (PushBoolean) isPushValue()   {}
func (PushFloat64) isPushValue()   {}
func (PushSint32) isPushValue()    {}
func (PushConstant) isPushValue()  {}

// CatchTarget designates where a Try action stores the caught value:
// either a register or a named variable.
type CatchTarget interface {
	isCatchTarget()
}

// CatchRegister stores the caught value in a register.
type CatchRegister uint8

// CatchVariable stores the caught value in a named variable.
type CatchVariable string

func (CatchRegister) isCatchTarget() {}
func (CatchVariable) isCatchTarget() {}

// GetURL2Method is the HTTP method selector of a GetUrl2 action.
type GetURL2Method uint8

const (
	MethodNone GetURL2Method = 0
	MethodGet  GetURL2Method = 1
	MethodPost GetURL2Method = 2
)

var getURL2MethodStrMap = map[GetURL2Method]string{
	MethodNone: "None",
	MethodGet:  "Get",
	MethodPost: "Post",
}

func (m GetURL2Method) String() string {
	str, ok := getURL2MethodStrMap[m]
	if !ok {
		str = fmt.Sprintf("<unknown method %d>", uint8(m))
	}
	return str
}

// FunctionFlags is the 16-bit flag set of a DefineFunction2 action.
type FunctionFlags uint16

const (
	FlagPreloadThis FunctionFlags = 1 << iota
	FlagSuppressThis
	FlagPreloadArguments
	FlagSuppressArguments
	FlagPreloadSuper
	FlagSuppressSuper
	FlagPreloadRoot
	FlagPreloadParent
	FlagPreloadGlobal
)

// RegisterParam is a DefineFunction2 parameter: a name, preloaded into a
// register (0 means no preload).
type RegisterParam struct {
	Register uint8
	Name     string
}
