// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/open-flash/avm1-emitter/avm1"
	"github.com/open-flash/avm1-emitter/disasm"
)

// Known round-trip divergences, carried over from the reference
// corpus. Each names a fixture whose emitted form reads back as a
// different (still behaviorally equal) graph, e.g. because the encoder
// always writes skip 1 for WaitForFrame, or because the fixture jumps
// into the middle of an instruction.
var skipCfgFilenames = map[string]bool{
	"misaligned-jump.json":                      true,
	"delta-of-dir.json":                         true,
	"parse-data-string.json":                    true,
	"try-empty-catch-overlong-finally-err.json": true,
	"try-nested-return.json":                    true,
	"homestuck-beta2.json":                      true,
	"ready-increments.json":                     true,
	"ready-jump-increments.json":                true,
	"wff2-ready-increments.json":                true,
}

func TestRoundTrip(t *testing.T) {
	fnames, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	require.NoError(t, err)
	require.NotEmpty(t, fnames)

	for _, fname := range fnames {
		if skipCfgFilenames[filepath.Base(fname)] {
			continue
		}
		fname := fname
		t.Run(filepath.Base(fname), func(t *testing.T) {
			raw, err := os.ReadFile(fname)
			require.NoError(t, err)

			var cfg avm1.Cfg
			require.NoError(t, json.Unmarshal(raw, &cfg))

			code, err := avm1.EmitCfg(&cfg)
			require.NoError(t, err)

			parsed, err := disasm.ToCfg(code)
			require.NoError(t, err)

			if !hardCfgEquivalent(parsed, &cfg) {
				t.Fatalf("round-tripped CFG is not equivalent\nemitted: % x\ninput: %sparsed: %s",
					code, spew.Sdump(&cfg), spew.Sdump(parsed))
			}
		})
	}
}

func TestHardCfgEquivalentRelabeling(t *testing.T) {
	mk := func(a, b string) *avm1.Cfg {
		al := avm1.Label(a)
		bl := avm1.Label(b)
		return &avm1.Cfg{Blocks: []avm1.Block{
			{Label: al, Flow: avm1.IfFlow{TrueTarget: &bl, FalseTarget: &al}},
			{Label: bl, Flow: avm1.ReturnFlow{}},
		}}
	}
	require.True(t, hardCfgEquivalent(mk("x", "y"), mk("l0", "l5")))

	// Swapped targets are a different graph, whatever the labels say.
	xl := avm1.Label("x")
	yl := avm1.Label("y")
	swapped := &avm1.Cfg{Blocks: []avm1.Block{
		{Label: xl, Flow: avm1.IfFlow{TrueTarget: &xl, FalseTarget: &yl}},
		{Label: yl, Flow: avm1.ReturnFlow{}},
	}}
	require.False(t, hardCfgEquivalent(swapped, mk("x", "y")))
}

// hardCfgEquivalent performs a DFS over both graphs at the same time
// and checks that the traversals go through the same actions, with
// labels compared by their DFS index rather than their spelling.
// Function bodies are separate label scopes, compared recursively.
func hardCfgEquivalent(left, right *avm1.Cfg) bool {
	leftID := indexCfgLabels(left)
	rightID := indexCfgLabels(right)

	labelEq := func(l, r *avm1.Label) bool {
		if l == nil || r == nil {
			return (l == nil) == (r == nil)
		}
		li, lok := leftID[*l]
		ri, rok := rightID[*r]
		if lok != rok {
			return false
		}
		if !lok {
			return true
		}
		return li == ri
	}

	return softCfgEquivalent(left, right, labelEq)
}

func indexCfgLabels(cfg *avm1.Cfg) map[avm1.Label]int {
	var labels []avm1.Label
	collectCfgLabels(cfg, &labels)
	id := make(map[avm1.Label]int, len(labels))
	for i, l := range labels {
		id[l] = i
	}
	return id
}

func collectCfgLabels(cfg *avm1.Cfg, out *[]avm1.Label) {
	for i := range cfg.Blocks {
		block := &cfg.Blocks[i]
		*out = append(*out, block.Label)
		switch flow := block.Flow.(type) {
		case avm1.TryFlow:
			collectCfgLabels(&flow.Try, out)
			if flow.Catch != nil {
				collectCfgLabels(&flow.Catch.Body, out)
			}
			if flow.Finally != nil {
				collectCfgLabels(flow.Finally, out)
			}
		case avm1.WithFlow:
			collectCfgLabels(&flow.Body, out)
		}
	}
}

func softCfgEquivalent(left, right *avm1.Cfg, labelEq func(l, r *avm1.Label) bool) bool {
	if len(left.Blocks) != len(right.Blocks) {
		return false
	}
	for i := range left.Blocks {
		lb := &left.Blocks[i]
		rb := &right.Blocks[i]
		if len(lb.Actions) != len(rb.Actions) {
			return false
		}
		if !labelEq(&lb.Label, &rb.Label) {
			return false
		}
		for j := range lb.Actions {
			if !actionEquivalent(lb.Actions[j], rb.Actions[j]) {
				return false
			}
		}
		if !flowEquivalent(lb.Flow, rb.Flow, labelEq) {
			return false
		}
	}
	return true
}

func flowEquivalent(left, right avm1.Flow, labelEq func(l, r *avm1.Label) bool) bool {
	switch l := left.(type) {
	case avm1.IfFlow:
		r, ok := right.(avm1.IfFlow)
		return ok && labelEq(l.TrueTarget, r.TrueTarget) && labelEq(l.FalseTarget, r.FalseTarget)
	case avm1.SimpleFlow:
		r, ok := right.(avm1.SimpleFlow)
		return ok && labelEq(l.Next, r.Next)
	case avm1.TryFlow:
		r, ok := right.(avm1.TryFlow)
		return ok && tryEquivalent(l, r, labelEq)
	case avm1.WithFlow:
		r, ok := right.(avm1.WithFlow)
		return ok && softCfgEquivalent(&l.Body, &r.Body, labelEq)
	case avm1.WaitForFrameFlow:
		r, ok := right.(avm1.WaitForFrameFlow)
		return ok && l.Frame == r.Frame &&
			labelEq(l.ReadyTarget, r.ReadyTarget) &&
			labelEq(l.LoadingTarget, r.LoadingTarget)
	case avm1.WaitForFrame2Flow:
		r, ok := right.(avm1.WaitForFrame2Flow)
		return ok && labelEq(l.ReadyTarget, r.ReadyTarget) &&
			labelEq(l.LoadingTarget, r.LoadingTarget)
	case avm1.ReturnFlow:
		_, ok := right.(avm1.ReturnFlow)
		return ok
	case avm1.ThrowFlow:
		_, ok := right.(avm1.ThrowFlow)
		return ok
	case avm1.ErrorFlow:
		// Error messages are diagnostic only; they do not survive the
		// byte stream.
		_, ok := right.(avm1.ErrorFlow)
		return ok
	default:
		return reflect.DeepEqual(left, right)
	}
}

func tryEquivalent(left, right avm1.TryFlow, labelEq func(l, r *avm1.Label) bool) bool {
	if !softCfgEquivalent(&left.Try, &right.Try, labelEq) {
		return false
	}
	if (left.Catch == nil) != (right.Catch == nil) {
		return false
	}
	if left.Catch != nil {
		if !reflect.DeepEqual(left.Catch.Target, right.Catch.Target) {
			return false
		}
		if !softCfgEquivalent(&left.Catch.Body, &right.Catch.Body, labelEq) {
			return false
		}
	}
	if (left.Finally == nil) != (right.Finally == nil) {
		return false
	}
	if left.Finally != nil {
		if !softCfgEquivalent(left.Finally, right.Finally, labelEq) {
			return false
		}
	}
	return true
}

func actionEquivalent(left, right avm1.Action) bool {
	switch l := left.(type) {
	case avm1.DefineFunction:
		r, ok := right.(avm1.DefineFunction)
		return ok && l.Name == r.Name &&
			stringSliceEqual(l.Parameters, r.Parameters) &&
			hardCfgEquivalent(&l.Body, &r.Body)
	case avm1.DefineFunction2:
		r, ok := right.(avm1.DefineFunction2)
		return ok && l.Name == r.Name &&
			l.RegisterCount == r.RegisterCount &&
			l.Flags == r.Flags &&
			registerParamsEqual(l.Parameters, r.Parameters) &&
			hardCfgEquivalent(&l.Body, &r.Body)
	default:
		return reflect.DeepEqual(left, right)
	}
}

func registerParamsEqual(a, b []avm1.RegisterParam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
