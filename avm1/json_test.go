// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-flash/avm1-emitter/avm1"
)

const branchDoc = `{
  "blocks": [
    {
      "label": "entry",
      "actions": [
        {"action": "Push", "values": [{"type": "Boolean", "value": true}]}
      ],
      "flow": {"kind": "If", "true_target": "yes", "false_target": "no"}
    },
    {
      "label": "no",
      "actions": [{"action": "Trace"}],
      "flow": {"kind": "Simple", "next": "done"}
    },
    {
      "label": "yes",
      "actions": [{"action": "Trace"}],
      "flow": {"kind": "Simple", "next": "done"}
    },
    {
      "label": "done",
      "actions": [],
      "flow": {"kind": "Return"}
    }
  ]
}`

func TestUnmarshalCfg(t *testing.T) {
	var cfg avm1.Cfg
	require.NoError(t, json.Unmarshal([]byte(branchDoc), &cfg))
	require.Len(t, cfg.Blocks, 4)

	require.Equal(t, avm1.Label("entry"), cfg.Blocks[0].Label)
	require.IsType(t, avm1.IfFlow{}, cfg.Blocks[0].Flow)
	ifFlow := cfg.Blocks[0].Flow.(avm1.IfFlow)
	require.NotNil(t, ifFlow.TrueTarget)
	require.Equal(t, avm1.Label("yes"), *ifFlow.TrueTarget)

	require.Len(t, cfg.Blocks[0].Actions, 1)
	push := cfg.Blocks[0].Actions[0].(avm1.Push)
	require.Equal(t, []avm1.PushValue{avm1.PushBoolean(true)}, push.Values)

	require.IsType(t, avm1.ReturnFlow{}, cfg.Blocks[3].Flow)

	_, err := avm1.EmitCfg(&cfg)
	require.NoError(t, err)
}

func TestUnmarshalCfgNestedScopes(t *testing.T) {
	doc := `{
	  "blocks": [
	    {
	      "label": "a",
	      "actions": [
	        {"action": "DefineFunction", "name": "f", "parameters": ["x"],
	         "body": {"blocks": [{"label": "fb", "actions": [], "flow": {"kind": "Return"}}]}}
	      ],
	      "flow": {
	        "kind": "Try",
	        "try": {"blocks": [{"label": "t0", "actions": [], "flow": {"kind": "Simple", "next": "c0"}}]},
	        "catch": {
	          "target": {"variable": "e"},
	          "body": {"blocks": [{"label": "c0", "actions": [], "flow": {"kind": "Simple", "next": null}}]}
	        }
	      }
	    }
	  ]
	}`
	var cfg avm1.Cfg
	require.NoError(t, json.Unmarshal([]byte(doc), &cfg))
	require.Len(t, cfg.Blocks, 1)

	fn := cfg.Blocks[0].Actions[0].(avm1.DefineFunction)
	require.Equal(t, "f", fn.Name)
	require.Equal(t, []string{"x"}, fn.Parameters)
	require.Len(t, fn.Body.Blocks, 1)

	tryFlow := cfg.Blocks[0].Flow.(avm1.TryFlow)
	require.NotNil(t, tryFlow.Catch)
	require.Equal(t, avm1.CatchVariable("e"), tryFlow.Catch.Target)
	require.Nil(t, tryFlow.Finally)

	_, err := avm1.EmitCfg(&cfg)
	require.NoError(t, err)
}

func TestUnmarshalCfgUnknownAction(t *testing.T) {
	doc := `{"blocks": [{"label": "a", "actions": [{"action": "Bogus"}], "flow": {"kind": "Return"}}]}`
	var cfg avm1.Cfg
	err := json.Unmarshal([]byte(doc), &cfg)
	require.Error(t, err)
}

func TestUnmarshalCfgUnknownFlow(t *testing.T) {
	doc := `{"blocks": [{"label": "a", "actions": [], "flow": {"kind": "Bogus"}}]}`
	var cfg avm1.Cfg
	err := json.Unmarshal([]byte(doc), &cfg)
	require.Error(t, err)
}
