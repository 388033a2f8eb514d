// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm provides functions for disassembling AVM1 bytecode,
// including the reconstruction of a control-flow graph from a flat
// action stream.
package disasm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/open-flash/avm1-emitter/avm1"
	"github.com/open-flash/avm1-emitter/avm1/op"
)

// Instr is one decoded action together with the byte offset of its
// opcode in the input stream.
type Instr struct {
	Offset int
	Action avm1.Action
}

// Disassemble decodes a flat action stream. Nested scopes (function
// bodies, try/with blocks) are not re-structured: their actions appear
// inline, in stream order.
func Disassemble(code []byte) ([]Instr, error) {
	d := &decoder{code: code}
	var out []Instr
	for d.remaining() > 0 {
		offset := d.pos
		a, err := d.action()
		if err != nil {
			return out, err
		}
		logger.Printf("decoded %T at %#x", a, offset)
		out = append(out, Instr{Offset: offset, Action: a})
	}
	return out, nil
}

// TruncatedActionError is returned when the input ends in the middle
// of an action.
type TruncatedActionError int

func (e TruncatedActionError) Error() string {
	return fmt.Sprintf("disasm: truncated action at offset %d", int(e))
}

// UnknownPushValueTypeError is returned for a push value tag outside
// the format's tag set.
type UnknownPushValueTypeError uint8

func (e UnknownPushValueTypeError) Error() string {
	return fmt.Sprintf("disasm: unknown push value type %#x", uint8(e))
}

// decoder reads primitive values from a byte slice, tracking its
// position.
type decoder struct {
	code []byte
	pos  int
}

func (d *decoder) remaining() int {
	return len(d.code) - d.pos
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, TruncatedActionError(d.pos)
	}
	b := d.code[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) leU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) leI16() (int16, error) {
	v, err := d.leU16()
	return int16(v), err
}

func (d *decoder) leI32() (int32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (d *decoder) leF32() (float32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// avm1F64 reads a double stored little-endian with its two 32-bit
// halves swapped.
func (d *decoder) avm1F64() (float64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	hi := binary.LittleEndian.Uint32(b[0:4])
	lo := binary.LittleEndian.Uint32(b[4:8])
	return math.Float64frombits(uint64(hi)<<32 | uint64(lo)), nil
}

func (d *decoder) cString() (string, error) {
	start := d.pos
	for d.pos < len(d.code) {
		if d.code[d.pos] == 0 {
			s := string(d.code[start:d.pos])
			d.pos++
			return s, nil
		}
		d.pos++
	}
	return "", TruncatedActionError(start)
}

// action decodes one action at the current position. Long actions with
// no operand layout of their own decode to Basic when their body is
// empty and to Raw otherwise; a Push body with an invalid value tag
// decodes to Raw so that deliberately malformed streams survive a
// dump.
func (d *decoder) action() (avm1.Action, error) {
	code, err := d.u8()
	if err != nil {
		return nil, err
	}
	o, err := op.New(code)
	if err != nil {
		return nil, err
	}
	if !o.HasBody() {
		return avm1.Basic{Code: code}, nil
	}
	length, err := d.leU16()
	if err != nil {
		return nil, err
	}
	body, err := d.take(int(length))
	if err != nil {
		return nil, err
	}
	return decodeLongAction(code, body)
}

func decodeLongAction(code byte, body []byte) (avm1.Action, error) {
	bd := &decoder{code: body}
	switch code {
	case op.Push:
		var values []avm1.PushValue
		for bd.remaining() > 0 {
			v, err := bd.pushValue()
			if err != nil {
				return avm1.Raw{Code: code, Data: body}, nil
			}
			values = append(values, v)
		}
		return avm1.Push{Values: values}, nil
	case op.ConstantPool:
		count, err := bd.leU16()
		if err != nil {
			return nil, err
		}
		pool := make([]string, 0, count)
		for i := 0; i < int(count); i++ {
			s, err := bd.cString()
			if err != nil {
				return nil, err
			}
			pool = append(pool, s)
		}
		return avm1.ConstantPool{Pool: pool}, nil
	case op.GetURL:
		url, err := bd.cString()
		if err != nil {
			return nil, err
		}
		target, err := bd.cString()
		if err != nil {
			return nil, err
		}
		return avm1.GetURL{URL: url, Target: target}, nil
	case op.GetURL2:
		flags, err := bd.u8()
		if err != nil {
			return nil, err
		}
		return avm1.GetURL2{
			Method:        avm1.GetURL2Method(flags >> 6),
			LoadVariables: flags&(1<<0) != 0,
			LoadTarget:    flags&(1<<1) != 0,
		}, nil
	case op.GotoFrame:
		frame, err := bd.leU16()
		if err != nil {
			return nil, err
		}
		return avm1.GotoFrame{Frame: frame}, nil
	case op.GotoFrame2:
		flags, err := bd.u8()
		if err != nil {
			return nil, err
		}
		a := avm1.GotoFrame2{Play: flags&(1<<0) != 0}
		if flags&(1<<1) != 0 {
			if a.SceneBias, err = bd.leU16(); err != nil {
				return nil, err
			}
		}
		return a, nil
	case op.GotoLabel:
		label, err := bd.cString()
		if err != nil {
			return nil, err
		}
		return avm1.GotoLabel{Label: label}, nil
	case op.If:
		offset, err := bd.leI16()
		if err != nil {
			return nil, err
		}
		return avm1.If{Offset: offset}, nil
	case op.Jump:
		offset, err := bd.leI16()
		if err != nil {
			return nil, err
		}
		return avm1.Jump{Offset: offset}, nil
	case op.SetTarget:
		name, err := bd.cString()
		if err != nil {
			return nil, err
		}
		return avm1.SetTarget{TargetName: name}, nil
	case op.StoreRegister:
		register, err := bd.u8()
		if err != nil {
			return nil, err
		}
		return avm1.StoreRegister{Register: register}, nil
	case op.StrictMode:
		v, err := bd.u8()
		if err != nil {
			return nil, err
		}
		return avm1.StrictMode{IsStrict: v != 0}, nil
	case op.Try:
		return bd.tryHeader()
	case op.WaitForFrame:
		frame, err := bd.leU16()
		if err != nil {
			return nil, err
		}
		skip, err := bd.u8()
		if err != nil {
			return nil, err
		}
		return avm1.WaitForFrame{Frame: frame, Skip: skip}, nil
	case op.WaitForFrame2:
		skip, err := bd.u8()
		if err != nil {
			return nil, err
		}
		return avm1.WaitForFrame2{Skip: skip}, nil
	case op.With:
		size, err := bd.leU16()
		if err != nil {
			return nil, err
		}
		return avm1.With{Size: size}, nil
	case op.DefineFunction:
		return bd.defineFunctionHeader()
	case op.DefineFunction2:
		return bd.defineFunction2Header()
	default:
		if len(body) == 0 {
			return avm1.Basic{Code: code}, nil
		}
		return avm1.Raw{Code: code, Data: body}, nil
	}
}

func (d *decoder) pushValue() (avm1.PushValue, error) {
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		s, err := d.cString()
		if err != nil {
			return nil, err
		}
		return avm1.PushString(s), nil
	case 1:
		v, err := d.leF32()
		if err != nil {
			return nil, err
		}
		return avm1.PushFloat32(v), nil
	case 2:
		return avm1.PushNull{}, nil
	case 3:
		return avm1.PushUndefined{}, nil
	case 4:
		v, err := d.u8()
		if err != nil {
			return nil, err
		}
		return avm1.PushRegister(v), nil
	case 5:
		v, err := d.u8()
		if err != nil {
			return nil, err
		}
		return avm1.PushBoolean(v != 0), nil
	case 6:
		v, err := d.avm1F64()
		if err != nil {
			return nil, err
		}
		return avm1.PushFloat64(v), nil
	case 7:
		v, err := d.leI32()
		if err != nil {
			return nil, err
		}
		return avm1.PushSint32(v), nil
	case 8:
		v, err := d.u8()
		if err != nil {
			return nil, err
		}
		return avm1.PushConstant(v), nil
	case 9:
		v, err := d.leU16()
		if err != nil {
			return nil, err
		}
		return avm1.PushConstant(v), nil
	default:
		return nil, UnknownPushValueTypeError(tag)
	}
}

func (d *decoder) tryHeader() (avm1.Action, error) {
	flags, err := d.u8()
	if err != nil {
		return nil, err
	}
	hasCatch := flags&(1<<0) != 0
	hasFinally := flags&(1<<1) != 0
	catchInRegister := flags&(1<<2) != 0

	trySize, err := d.leU16()
	if err != nil {
		return nil, err
	}
	catchSize, err := d.leU16()
	if err != nil {
		return nil, err
	}
	finallySize, err := d.leU16()
	if err != nil {
		return nil, err
	}

	a := avm1.Try{TrySize: trySize}
	if hasFinally {
		a.Finally = &finallySize
	}
	if hasCatch {
		var target avm1.CatchTarget
		if catchInRegister {
			register, err := d.u8()
			if err != nil {
				return nil, err
			}
			target = avm1.CatchRegister(register)
		} else {
			name, err := d.cString()
			if err != nil {
				return nil, err
			}
			target = avm1.CatchVariable(name)
		}
		a.Catch = &avm1.TryCatch{Target: target, Size: catchSize}
	} else if d.remaining() > 0 {
		// Catch target placeholder byte.
		if _, err := d.u8(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (d *decoder) defineFunctionHeader() (avm1.Action, error) {
	name, err := d.cString()
	if err != nil {
		return nil, err
	}
	count, err := d.leU16()
	if err != nil {
		return nil, err
	}
	var parameters []string
	for i := 0; i < int(count); i++ {
		p, err := d.cString()
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, p)
	}
	bodySize, err := d.leU16()
	if err != nil {
		return nil, err
	}
	return avm1.DefineFunctionHeader{Name: name, Parameters: parameters, BodySize: bodySize}, nil
}

func (d *decoder) defineFunction2Header() (avm1.Action, error) {
	name, err := d.cString()
	if err != nil {
		return nil, err
	}
	count, err := d.leU16()
	if err != nil {
		return nil, err
	}
	registerCount, err := d.u8()
	if err != nil {
		return nil, err
	}
	flags, err := d.leU16()
	if err != nil {
		return nil, err
	}
	var parameters []avm1.RegisterParam
	for i := 0; i < int(count); i++ {
		register, err := d.u8()
		if err != nil {
			return nil, err
		}
		pname, err := d.cString()
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, avm1.RegisterParam{Register: register, Name: pname})
	}
	bodySize, err := d.leU16()
	if err != nil {
		return nil, err
	}
	return avm1.DefineFunction2Header{
		Name:          name,
		RegisterCount: registerCount,
		Flags:         avm1.FunctionFlags(flags),
		Parameters:    parameters,
		BodySize:      bodySize,
	}, nil
}
