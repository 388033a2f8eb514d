// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package op defines the opcodes of the AVM1 action format, along with
// their names.
package op

import (
	"fmt"
)

// Op describes an AVM1 action opcode.
type Op struct {
	Code byte
	Name string
}

// LongActionThreshold is the first opcode of the long action form. Actions
// with a code at or above it carry a little-endian u16 body length after
// the opcode byte; actions below it consist of the opcode byte alone.
const LongActionThreshold byte = 0x80

var (
	ops        [256]Op
	registered [256]bool
)

// newOp registers an opcode in the table and returns its code so that the
// package-level variables can double as code constants.
func newOp(code byte, name string) byte {
	if registered[code] {
		panic(fmt.Errorf("op: opcode %#x is already registered as %q", code, ops[code].Name))
	}
	ops[code] = Op{Code: code, Name: name}
	registered[code] = true
	return code
}

// New returns the Op for the given opcode. It returns an
// InvalidOpcodeError when the code does not name a known AVM1 action.
func New(code byte) (Op, error) {
	if !registered[code] {
		return Op{}, InvalidOpcodeError(code)
	}
	return ops[code], nil
}

// ByName returns the Op with the given name. It returns an
// InvalidActionNameError when no opcode goes by that name.
func ByName(name string) (Op, error) {
	o, ok := byName[name]
	if !ok {
		return Op{}, InvalidActionNameError(name)
	}
	return o, nil
}

var byName map[string]Op

func init() {
	byName = make(map[string]Op, 256)
	for i := range ops {
		if registered[i] {
			byName[ops[i].Name] = ops[i]
		}
	}
}

// IsValid reports whether the Op names a known opcode.
func (o Op) IsValid() bool {
	return o.Name != ""
}

// HasBody reports whether the opcode uses the long action form, i.e.
// whether it is followed by a body length on the wire.
func (o Op) HasBody() bool {
	return o.Code >= LongActionThreshold
}

func (o Op) String() string {
	return o.Name
}

// InvalidOpcodeError is returned when looking up a code that does not
// correspond to any AVM1 action.
type InvalidOpcodeError byte

func (e InvalidOpcodeError) Error() string {
	return fmt.Sprintf("op: invalid opcode %#x", byte(e))
}

// InvalidActionNameError is returned when looking up an unknown action
// name.
type InvalidActionNameError string

func (e InvalidActionNameError) Error() string {
	return fmt.Sprintf("op: invalid action name %q", string(e))
}
