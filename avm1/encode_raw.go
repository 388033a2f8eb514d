// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"fmt"
	"io"
	"math"

	"github.com/open-flash/avm1-emitter/avm1/op"
)

// EmitRawAction encodes a single action, without any framing around it.
// DefineFunction and DefineFunction2 actions with CFG bodies are
// encoded together with their body bytes.
func EmitRawAction(a Action) ([]byte, error) {
	b := newPatchableBuffer()
	if err := writeRawAction(b, a); err != nil {
		return nil, err
	}
	return b.complete(), nil
}

// writeLongAction writes the opcode byte of a long-form action, then
// its body, backpatching the body length through a hole. The body never
// needs to know its own size in advance.
func writeLongAction(b *patchableBuffer, code byte, body func(io.Writer) error) error {
	if code < op.LongActionThreshold {
		panic(fmt.Errorf("avm1: action %#x cannot carry a body", code))
	}
	if err := writeU8(b, code); err != nil {
		return err
	}
	hole := b.holeLeU16()
	start := b.Len()
	if err := body(b); err != nil {
		return err
	}
	size := b.Len() - start
	if size > math.MaxUint16 {
		return SizeOverflowError{What: "action body", Size: size}
	}
	hole.patch(uint16(size))
	return nil
}

func writeRawAction(b *patchableBuffer, act Action) error {
	switch a := act.(type) {
	case Basic:
		if err := writeU8(b, a.Code); err != nil {
			return err
		}
		if a.Code >= op.LongActionThreshold {
			return writeLeU16(b, 0)
		}
		return nil
	case Push:
		return writeLongAction(b, op.Push, func(w io.Writer) error {
			return writeRawPush(w, a)
		})
	case ConstantPool:
		return writeLongAction(b, op.ConstantPool, func(w io.Writer) error {
			return writeRawConstantPool(w, a)
		})
	case GetURL:
		return writeLongAction(b, op.GetURL, func(w io.Writer) error {
			if err := writeCString(w, a.URL); err != nil {
				return err
			}
			return writeCString(w, a.Target)
		})
	case GetURL2:
		return writeLongAction(b, op.GetURL2, func(w io.Writer) error {
			return writeRawGetURL2(w, a)
		})
	case GotoFrame:
		return writeLongAction(b, op.GotoFrame, func(w io.Writer) error {
			return writeLeU16(w, a.Frame)
		})
	case GotoFrame2:
		return writeLongAction(b, op.GotoFrame2, func(w io.Writer) error {
			return writeRawGotoFrame2(w, a)
		})
	case GotoLabel:
		return writeLongAction(b, op.GotoLabel, func(w io.Writer) error {
			return writeCString(w, a.Label)
		})
	case If:
		return writeLongAction(b, op.If, func(w io.Writer) error {
			return writeLeI16(w, a.Offset)
		})
	case Jump:
		return writeLongAction(b, op.Jump, func(w io.Writer) error {
			return writeLeI16(w, a.Offset)
		})
	case SetTarget:
		return writeLongAction(b, op.SetTarget, func(w io.Writer) error {
			return writeCString(w, a.TargetName)
		})
	case StoreRegister:
		return writeLongAction(b, op.StoreRegister, func(w io.Writer) error {
			return writeU8(w, a.Register)
		})
	case StrictMode:
		return writeLongAction(b, op.StrictMode, func(w io.Writer) error {
			return writeBool(w, a.IsStrict)
		})
	case Try:
		return writeLongAction(b, op.Try, func(w io.Writer) error {
			return writeRawTry(w, a)
		})
	case WaitForFrame:
		return writeLongAction(b, op.WaitForFrame, func(w io.Writer) error {
			if err := writeLeU16(w, a.Frame); err != nil {
				return err
			}
			return writeU8(w, a.Skip)
		})
	case WaitForFrame2:
		return writeLongAction(b, op.WaitForFrame2, func(w io.Writer) error {
			return writeU8(w, a.Skip)
		})
	case With:
		return writeLongAction(b, op.With, func(w io.Writer) error {
			return writeLeU16(w, a.Size)
		})
	case DefineFunctionHeader:
		return writeLongAction(b, op.DefineFunction, func(w io.Writer) error {
			return writeRawDefineFunction(w, a)
		})
	case DefineFunction2Header:
		return writeLongAction(b, op.DefineFunction2, func(w io.Writer) error {
			return writeRawDefineFunction2(w, a)
		})
	case DefineFunction:
		return writeDefineFunction(b, a)
	case DefineFunction2:
		return writeDefineFunction2(b, a)
	case Raw:
		return writeRawEscape(b, a)
	default:
		panic(fmt.Errorf("avm1: unknown action type %T", act))
	}
}

func writeBool(w io.Writer, v bool) error {
	if v {
		return writeU8(w, 1)
	}
	return writeU8(w, 0)
}

func writeRawPush(w io.Writer, a Push) error {
	for _, v := range a.Values {
		if err := writePushValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func writePushValue(w io.Writer, v PushValue) error {
	switch v := v.(type) {
	case PushString:
		if err := writeU8(w, 0); err != nil {
			return err
		}
		return writeCString(w, string(v))
	case PushFloat32:
		if err := writeU8(w, 1); err != nil {
			return err
		}
		return writeLeF32(w, float32(v))
	case PushNull:
		return writeU8(w, 2)
	case PushUndefined:
		return writeU8(w, 3)
	case PushRegister:
		if err := writeU8(w, 4); err != nil {
			return err
		}
		return writeU8(w, uint8(v))
	case PushBoolean:
		if err := writeU8(w, 5); err != nil {
			return err
		}
		return writeBool(w, bool(v))
	case PushFloat64:
		if err := writeU8(w, 6); err != nil {
			return err
		}
		return writeAvm1F64(w, float64(v))
	case PushSint32:
		if err := writeU8(w, 7); err != nil {
			return err
		}
		return writeLeI32(w, int32(v))
	case PushConstant:
		if v <= math.MaxUint8 {
			if err := writeU8(w, 8); err != nil {
				return err
			}
			return writeU8(w, uint8(v))
		}
		if err := writeU8(w, 9); err != nil {
			return err
		}
		return writeLeU16(w, uint16(v))
	default:
		panic(fmt.Errorf("avm1: unknown push value type %T", v))
	}
}

func writeRawConstantPool(w io.Writer, a ConstantPool) error {
	if len(a.Pool) > math.MaxUint16 {
		return SizeOverflowError{What: "constant pool", Size: len(a.Pool)}
	}
	if err := writeLeU16(w, uint16(len(a.Pool))); err != nil {
		return err
	}
	for _, constant := range a.Pool {
		if err := writeCString(w, constant); err != nil {
			return err
		}
	}
	return nil
}

func writeRawGetURL2(w io.Writer, a GetURL2) error {
	var flags uint8
	if a.LoadVariables {
		flags |= 1 << 0
	}
	if a.LoadTarget {
		flags |= 1 << 1
	}
	// Bits [2, 5] are always zero.
	flags |= uint8(a.Method) << 6
	return writeU8(w, flags)
}

func writeRawGotoFrame2(w io.Writer, a GotoFrame2) error {
	hasSceneBias := a.SceneBias != 0
	var flags uint8
	if a.Play {
		flags |= 1 << 0
	}
	if hasSceneBias {
		flags |= 1 << 1
	}
	// Bits [2, 7] are always zero.
	if err := writeU8(w, flags); err != nil {
		return err
	}
	if hasSceneBias {
		return writeLeU16(w, a.SceneBias)
	}
	return nil
}

func writeRawDefineFunction(w io.Writer, a DefineFunctionHeader) error {
	if err := writeCString(w, a.Name); err != nil {
		return err
	}
	if len(a.Parameters) > math.MaxUint16 {
		return SizeOverflowError{What: "parameter count", Size: len(a.Parameters)}
	}
	if err := writeLeU16(w, uint16(len(a.Parameters))); err != nil {
		return err
	}
	for _, parameter := range a.Parameters {
		if err := writeCString(w, parameter); err != nil {
			return err
		}
	}
	return writeLeU16(w, a.BodySize)
}

func writeRawDefineFunction2(w io.Writer, a DefineFunction2Header) error {
	if err := writeCString(w, a.Name); err != nil {
		return err
	}
	if len(a.Parameters) > math.MaxUint16 {
		return SizeOverflowError{What: "parameter count", Size: len(a.Parameters)}
	}
	if err := writeLeU16(w, uint16(len(a.Parameters))); err != nil {
		return err
	}
	if err := writeU8(w, a.RegisterCount); err != nil {
		return err
	}
	if err := writeLeU16(w, uint16(a.Flags)); err != nil {
		return err
	}
	for _, parameter := range a.Parameters {
		if err := writeU8(w, parameter.Register); err != nil {
			return err
		}
		if err := writeCString(w, parameter.Name); err != nil {
			return err
		}
	}
	return writeLeU16(w, a.BodySize)
}

// writeRawTry writes the Try header body: a flag byte, the three block
// sizes, and the catch target (a single NUL byte when there is no
// catch clause).
func writeRawTry(w io.Writer, a Try) error {
	var catchTarget CatchTarget
	if a.Catch != nil {
		catchTarget = a.Catch.Target
	}
	if err := writeU8(w, tryFlags(catchTarget, a.Finally != nil)); err != nil {
		return err
	}
	if err := writeLeU16(w, a.TrySize); err != nil {
		return err
	}
	var catchSize uint16
	if a.Catch != nil {
		catchSize = a.Catch.Size
	}
	if err := writeLeU16(w, catchSize); err != nil {
		return err
	}
	var finallySize uint16
	if a.Finally != nil {
		finallySize = *a.Finally
	}
	if err := writeLeU16(w, finallySize); err != nil {
		return err
	}
	if a.Catch == nil {
		return writeU8(w, 0)
	}
	return writeCatchTarget(w, a.Catch.Target)
}

// tryFlags packs the Try flag byte. A nil catchTarget means there is
// no catch clause.
func tryFlags(catchTarget CatchTarget, hasFinally bool) uint8 {
	var flags uint8
	if catchTarget != nil {
		flags |= 1 << 0
	}
	if hasFinally {
		flags |= 1 << 1
	}
	if _, ok := catchTarget.(CatchRegister); ok {
		flags |= 1 << 2
	}
	// Bits [3, 7] are always zero.
	return flags
}

func writeCatchTarget(w io.Writer, target CatchTarget) error {
	switch t := target.(type) {
	case CatchRegister:
		return writeU8(w, uint8(t))
	case CatchVariable:
		return writeCString(w, string(t))
	default:
		panic(fmt.Errorf("avm1: unknown catch target type %T", target))
	}
}

func writeRawEscape(b *patchableBuffer, a Raw) error {
	if err := writeU8(b, a.Code); err != nil {
		return err
	}
	if a.Code < op.LongActionThreshold {
		if len(a.Data) != 0 {
			panic(fmt.Errorf("avm1: action %#x cannot carry a body", a.Code))
		}
		return nil
	}
	if len(a.Data) > math.MaxUint16 {
		return SizeOverflowError{What: "action body", Size: len(a.Data)}
	}
	if err := writeLeU16(b, uint16(len(a.Data))); err != nil {
		return err
	}
	_, err := b.Write(a.Data)
	return err
}
