// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/open-flash/avm1-emitter/avm1"
	"github.com/open-flash/avm1-emitter/avm1/op"
	"github.com/open-flash/avm1-emitter/disasm"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		want []avm1.Action
	}{
		{
			"push-trace-end",
			[]byte{0x96, 0x02, 0x00, 0x05, 0x01, 0x26, 0x00},
			[]avm1.Action{
				avm1.Push{Values: []avm1.PushValue{avm1.PushBoolean(true)}},
				avm1.Basic{Code: op.Trace},
				avm1.Basic{Code: op.End},
			},
		},
		{
			// The function body bytes follow the header and decode as
			// plain stream actions.
			"define-function",
			[]byte{0x9b, 0x06, 0x00, 0x66, 0x00, 0x00, 0x00, 0x01, 0x00, 0x3e, 0x00},
			[]avm1.Action{
				avm1.DefineFunctionHeader{Name: "f", BodySize: 1},
				avm1.Basic{Code: op.Return},
				avm1.Basic{Code: op.End},
			},
		},
		{
			"goto-frame2-scene-bias",
			[]byte{0x9f, 0x03, 0x00, 0x03, 0x02, 0x00},
			[]avm1.Action{
				avm1.GotoFrame2{Play: true, SceneBias: 2},
			},
		},
		{
			"try-header-no-catch",
			[]byte{0x8f, 0x08, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x06},
			[]avm1.Action{
				avm1.Try{TrySize: 1},
				avm1.Basic{Code: op.Play},
			},
		},
		{
			"long-empty-body",
			[]byte{0x9e, 0x00, 0x00},
			[]avm1.Action{
				avm1.Basic{Code: op.Call},
			},
		},
		{
			// An invalid push value tag keeps the body opaque.
			"malformed-push",
			[]byte{0x96, 0x01, 0x00, 0xff},
			[]avm1.Action{
				avm1.Raw{Code: op.Push, Data: []byte{0xff}},
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			instrs, err := disasm.Disassemble(tc.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(instrs) != len(tc.want) {
				t.Fatalf("unexpected action count. got=%d, want=%d", len(instrs), len(tc.want))
			}
			for i, instr := range instrs {
				if !reflect.DeepEqual(instr.Action, tc.want[i]) {
					t.Errorf("action %d: got=%#v, want=%#v", i, instr.Action, tc.want[i])
				}
			}

			// Re-emitting each decoded action in stream order must
			// reproduce the input bytes.
			var reemitted []byte
			for _, instr := range instrs {
				raw, err := avm1.EmitRawAction(instr.Action)
				if err != nil {
					t.Fatalf("re-emit: unexpected error: %v", err)
				}
				reemitted = append(reemitted, raw...)
			}
			if !bytes.Equal(reemitted, tc.code) {
				t.Fatalf("re-emitted bytes differ.\ngot = % x\nwant= % x", reemitted, tc.code)
			}
		})
	}
}

func TestDisassembleInvalidOpcode(t *testing.T) {
	_, err := disasm.Disassemble([]byte{0x01})
	var opErr op.InvalidOpcodeError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected InvalidOpcodeError, got %v", err)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	_, err := disasm.Disassemble([]byte{0x96, 0x05, 0x00, 0x01})
	var truncErr disasm.TruncatedActionError
	if !errors.As(err, &truncErr) {
		t.Fatalf("expected TruncatedActionError, got %v", err)
	}
}

func TestToCfgReturn(t *testing.T) {
	cfg, err := disasm.ToCfg([]byte{0x3e, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Blocks) != 1 {
		t.Fatalf("unexpected block count. got=%d, want=1", len(cfg.Blocks))
	}
	if _, ok := cfg.Blocks[0].Flow.(avm1.ReturnFlow); !ok {
		t.Fatalf("unexpected flow: %#v", cfg.Blocks[0].Flow)
	}
}

func TestToCfgEndOnly(t *testing.T) {
	cfg, err := disasm.ToCfg([]byte{0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Blocks) != 1 {
		t.Fatalf("unexpected block count. got=%d, want=1", len(cfg.Blocks))
	}
	flow, ok := cfg.Blocks[0].Flow.(avm1.SimpleFlow)
	if !ok || flow.Next != nil {
		t.Fatalf("unexpected flow: %#v", cfg.Blocks[0].Flow)
	}
}

func TestToCfgSelfLoop(t *testing.T) {
	cfg, err := disasm.ToCfg([]byte{0x99, 0x02, 0x00, 0xfb, 0xff, 0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Blocks) != 1 {
		t.Fatalf("unexpected block count. got=%d, want=1", len(cfg.Blocks))
	}
	flow, ok := cfg.Blocks[0].Flow.(avm1.SimpleFlow)
	if !ok || flow.Next == nil || *flow.Next != cfg.Blocks[0].Label {
		t.Fatalf("unexpected flow: %#v", cfg.Blocks[0].Flow)
	}
}

func TestToCfgMissingEnd(t *testing.T) {
	_, err := disasm.ToCfg([]byte{0x3e})
	var endErr disasm.MissingEndError
	if !errors.As(err, &endErr) {
		t.Fatalf("expected MissingEndError, got %v", err)
	}
}
