// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"fmt"
)

// Action is a single AVM1 action. Straight-line actions appear in the
// action list of a Block; the CFG encoder writes the branches of flows
// itself, and the If and Jump values serve raw encoding and
// disassembly.
type Action interface {
	isAction()
}

// Basic is an action identified by its opcode alone, with no operands.
// Long-form opcodes without operands (such as Call) still carry a zero
// body length on the wire.
type Basic struct {
	Code byte
}

// Push pushes a sequence of typed values on the stack.
type Push struct {
	Values []PushValue
}

// ConstantPool declares the string constants referenced by
// PushConstant values.
type ConstantPool struct {
	Pool []string
}

// GetURL loads a URL into a target window or sprite.
type GetURL struct {
	URL    string
	Target string
}

// GetURL2 is the stack-based variant of GetURL.
type GetURL2 struct {
	Method        GetURL2Method
	LoadVariables bool
	LoadTarget    bool
}

// GotoFrame jumps the main timeline to a frame number.
type GotoFrame struct {
	Frame uint16
}

// GotoFrame2 is the stack-based variant of GotoFrame. The scene bias is
// only present on the wire when non-zero.
type GotoFrame2 struct {
	Play      bool
	SceneBias uint16
}

// GotoLabel jumps the main timeline to a named frame.
type GotoLabel struct {
	Label string
}

// If is a conditional branch with a raw byte offset, measured from the
// byte following the offset field.
type If struct {
	Offset int16
}

// Jump is an unconditional branch with a raw byte offset, measured from
// the byte following the offset field.
type Jump struct {
	Offset int16
}

// SetTarget switches the action context to a named sprite.
type SetTarget struct {
	TargetName string
}

// StoreRegister stores the top of the stack in a register.
type StoreRegister struct {
	Register uint8
}

// StrictMode toggles strict mode.
type StrictMode struct {
	IsStrict bool
}

// TryCatch is the catch clause of a raw Try action.
type TryCatch struct {
	Target CatchTarget
	Size   uint16
}

// Try is the raw form of a try/catch/finally construct: the header with
// its three block sizes. The protected blocks follow the action on the
// wire.
type Try struct {
	TrySize uint16
	Catch   *TryCatch
	// Finally is the finally block size, nil when there is no finally
	// clause. A present empty clause encodes as a non-nil zero.
	Finally *uint16
}

// WaitForFrame skips the following actions while a frame is loading.
type WaitForFrame struct {
	Frame uint16
	Skip  uint8
}

// WaitForFrame2 is the stack-based variant of WaitForFrame.
type WaitForFrame2 struct {
	Skip uint8
}

// With is the raw form of a with construct: the header with the body
// size. The body follows the action on the wire.
type With struct {
	Size uint16
}

// DefineFunctionHeader is the raw form of DefineFunction: the function
// body bytes follow the action on the wire, BodySize bytes long.
type DefineFunctionHeader struct {
	Name       string
	Parameters []string
	BodySize   uint16
}

// DefineFunction2Header is the raw form of DefineFunction2.
type DefineFunction2Header struct {
	Name          string
	RegisterCount uint8
	Flags         FunctionFlags
	Parameters    []RegisterParam
	BodySize      uint16
}

// DefineFunction declares a function whose body is itself a CFG. The
// encoder emits the body into a fresh buffer to learn its size before
// writing the header.
type DefineFunction struct {
	Name       string
	Parameters []string
	Body       Cfg
}

// DefineFunction2 declares a function with register preloading, with a
// CFG body.
type DefineFunction2 struct {
	Name          string
	RegisterCount uint8
	Flags         FunctionFlags
	Parameters    []RegisterParam
	Body          Cfg
}

// Raw emits an arbitrary opcode with a verbatim body. Opcodes below the
// long action form must not carry data.
type Raw struct {
	Code byte
	Data []byte
}

// ActionCode returns the opcode an action encodes to.
func ActionCode(a Action) byte {
	switch a := a.(type) {
	case Basic:
		return a.Code
	case Push:
		return 0x96
	case ConstantPool:
		return 0x88
	case GetURL:
		return 0x83
	case GetURL2:
		return 0x9a
	case GotoFrame:
		return 0x81
	case GotoFrame2:
		return 0x9f
	case GotoLabel:
		return 0x8c
	case If:
		return 0x9d
	case Jump:
		return 0x99
	case SetTarget:
		return 0x8b
	case StoreRegister:
		return 0x87
	case StrictMode:
		return 0x89
	case Try:
		return 0x8f
	case WaitForFrame:
		return 0x8a
	case WaitForFrame2:
		return 0x8d
	case With:
		return 0x94
	case DefineFunctionHeader, DefineFunction:
		return 0x9b
	case DefineFunction2Header, DefineFunction2:
		return 0x8e
	case Raw:
		return a.Code
	default:
		panic(fmt.Errorf("avm1: unknown action type %T", a))
	}
}

func (Basic) isAction()                 {}
func (Push) isAction()                  {}
func (ConstantPool) isAction()          {}
func (GetURL) isAction()                {}
func (GetURL2) isAction()               {}
func (GotoFrame) isAction()             {}
func (GotoFrame2) isAction()            {}
func (GotoLabel) isAction()             {}
func (If) isAction()                    {}
func (Jump) isAction()                  {}
func (SetTarget) isAction()             {}
func (StoreRegister) isAction()         {}
func (StrictMode) isAction()            {}
func (Try) isAction()                   {}
func (WaitForFrame) isAction()          {}
func (WaitForFrame2) isAction()         {}
func (With) isAction()                  {}
func (DefineFunctionHeader) isAction()  {}
func (DefineFunction2Header) isAction() {}
func (DefineFunction) isAction()        {}
func (DefineFunction2) isAction()       {}
func (Raw) isAction()                   {}
