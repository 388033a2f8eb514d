// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"encoding/json"
	"fmt"

	"github.com/open-flash/avm1-emitter/avm1/op"
)

// The JSON shape of a Cfg mirrors the data model: blocks carry a label,
// an action list and a flow. Unions are discriminated by an "action" or
// "kind" field. Only decoding is provided; the encoder consumes CFGs,
// it does not produce them.

// InvalidCfgJSONError is returned when a CFG document does not match
// the expected shape.
type InvalidCfgJSONError struct {
	Reason string
}

func (e InvalidCfgJSONError) Error() string {
	return fmt.Sprintf("avm1: invalid CFG document: %s", e.Reason)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw struct {
		Label   *Label            `json:"label"`
		Actions []json.RawMessage `json:"actions"`
		Flow    json.RawMessage   `json:"flow"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Label == nil {
		return InvalidCfgJSONError{Reason: "block without label"}
	}
	if len(raw.Flow) == 0 {
		return InvalidCfgJSONError{Reason: fmt.Sprintf("block %q without flow", *raw.Label)}
	}
	b.Label = *raw.Label
	b.Actions = nil
	for _, m := range raw.Actions {
		a, err := unmarshalAction(m)
		if err != nil {
			return err
		}
		b.Actions = append(b.Actions, a)
	}
	flow, err := unmarshalFlow(raw.Flow)
	if err != nil {
		return err
	}
	b.Flow = flow
	return nil
}

func unmarshalAction(data []byte) (Action, error) {
	var disc struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, err
	}

	switch disc.Action {
	case "Push":
		var raw struct {
			Values []json.RawMessage `json:"values"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		a := Push{}
		for _, m := range raw.Values {
			v, err := unmarshalPushValue(m)
			if err != nil {
				return nil, err
			}
			a.Values = append(a.Values, v)
		}
		return a, nil
	case "ConstantPool":
		var a struct {
			Pool []string `json:"pool"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return ConstantPool{Pool: a.Pool}, nil
	case "GetUrl":
		var a struct {
			URL    string `json:"url"`
			Target string `json:"target"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return GetURL{URL: a.URL, Target: a.Target}, nil
	case "GetUrl2":
		var a struct {
			Method        string `json:"method"`
			LoadVariables bool   `json:"load_variables"`
			LoadTarget    bool   `json:"load_target"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		method, err := parseGetURL2Method(a.Method)
		if err != nil {
			return nil, err
		}
		return GetURL2{Method: method, LoadVariables: a.LoadVariables, LoadTarget: a.LoadTarget}, nil
	case "GotoFrame":
		var a struct {
			Frame uint16 `json:"frame"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return GotoFrame{Frame: a.Frame}, nil
	case "GotoFrame2":
		var a struct {
			Play      bool   `json:"play"`
			SceneBias uint16 `json:"scene_bias"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return GotoFrame2{Play: a.Play, SceneBias: a.SceneBias}, nil
	case "GotoLabel":
		var a struct {
			Label string `json:"label"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return GotoLabel{Label: a.Label}, nil
	case "SetTarget":
		var a struct {
			TargetName string `json:"target_name"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return SetTarget{TargetName: a.TargetName}, nil
	case "StoreRegister":
		var a struct {
			Register uint8 `json:"register"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return StoreRegister{Register: a.Register}, nil
	case "StrictMode":
		var a struct {
			IsStrict bool `json:"is_strict"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return StrictMode{IsStrict: a.IsStrict}, nil
	case "DefineFunction":
		var a struct {
			Name       string   `json:"name"`
			Parameters []string `json:"parameters"`
			Body       Cfg      `json:"body"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return DefineFunction{Name: a.Name, Parameters: a.Parameters, Body: a.Body}, nil
	case "DefineFunction2":
		var a struct {
			Name          string          `json:"name"`
			RegisterCount uint8           `json:"register_count"`
			Flags         uint16          `json:"flags"`
			Parameters    []RegisterParam `json:"parameters"`
			Body          Cfg             `json:"body"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return DefineFunction2{
			Name:          a.Name,
			RegisterCount: a.RegisterCount,
			Flags:         FunctionFlags(a.Flags),
			Parameters:    a.Parameters,
			Body:          a.Body,
		}, nil
	case "Raw":
		var a struct {
			Code uint8  `json:"code"`
			Data []byte `json:"data"`
		}
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, err
		}
		return Raw{Code: a.Code, Data: a.Data}, nil
	default:
		o, err := op.ByName(disc.Action)
		if err != nil {
			return nil, InvalidCfgJSONError{Reason: fmt.Sprintf("unknown action %q", disc.Action)}
		}
		return Basic{Code: o.Code}, nil
	}
}

func parseGetURL2Method(s string) (GetURL2Method, error) {
	switch s {
	case "", "None":
		return MethodNone, nil
	case "Get":
		return MethodGet, nil
	case "Post":
		return MethodPost, nil
	default:
		return MethodNone, InvalidCfgJSONError{Reason: fmt.Sprintf("unknown GetUrl2 method %q", s)}
	}
}

func unmarshalPushValue(data []byte) (PushValue, error) {
	var disc struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, err
	}
	switch disc.Type {
	case "String":
		var v string
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushString(v), nil
	case "Float32":
		var v float32
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushFloat32(v), nil
	case "Null":
		return PushNull{}, nil
	case "Undefined":
		return PushUndefined{}, nil
	case "Register":
		var v uint8
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushRegister(v), nil
	case "Boolean":
		var v bool
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushBoolean(v), nil
	case "Float64":
		var v float64
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushFloat64(v), nil
	case "Sint32":
		var v int32
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushSint32(v), nil
	case "Constant":
		var v uint16
		if err := json.Unmarshal(disc.Value, &v); err != nil {
			return nil, err
		}
		return PushConstant(v), nil
	default:
		return nil, InvalidCfgJSONError{Reason: fmt.Sprintf("unknown push value type %q", disc.Type)}
	}
}

func unmarshalFlow(data []byte) (Flow, error) {
	var disc struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return nil, err
	}
	switch disc.Kind {
	case "Simple":
		var f struct {
			Next *Label `json:"next"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return SimpleFlow{Next: f.Next}, nil
	case "If":
		var f struct {
			TrueTarget  *Label `json:"true_target"`
			FalseTarget *Label `json:"false_target"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return IfFlow{TrueTarget: f.TrueTarget, FalseTarget: f.FalseTarget}, nil
	case "Return":
		return ReturnFlow{}, nil
	case "Throw":
		return ThrowFlow{}, nil
	case "Error":
		var f struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return ErrorFlow{Message: f.Message}, nil
	case "Try":
		var f struct {
			Try   Cfg `json:"try"`
			Catch *struct {
				Target json.RawMessage `json:"target"`
				Body   Cfg             `json:"body"`
			} `json:"catch"`
			Finally *Cfg `json:"finally"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		flow := TryFlow{Try: f.Try, Finally: f.Finally}
		if f.Catch != nil {
			target, err := unmarshalCatchTarget(f.Catch.Target)
			if err != nil {
				return nil, err
			}
			flow.Catch = &CatchClause{Target: target, Body: f.Catch.Body}
		}
		return flow, nil
	case "With":
		var f struct {
			Body Cfg `json:"body"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return WithFlow{Body: f.Body}, nil
	case "WaitForFrame":
		var f struct {
			Frame         uint16 `json:"frame"`
			ReadyTarget   *Label `json:"ready_target"`
			LoadingTarget *Label `json:"loading_target"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return WaitForFrameFlow{Frame: f.Frame, ReadyTarget: f.ReadyTarget, LoadingTarget: f.LoadingTarget}, nil
	case "WaitForFrame2":
		var f struct {
			ReadyTarget   *Label `json:"ready_target"`
			LoadingTarget *Label `json:"loading_target"`
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return WaitForFrame2Flow{ReadyTarget: f.ReadyTarget, LoadingTarget: f.LoadingTarget}, nil
	default:
		return nil, InvalidCfgJSONError{Reason: fmt.Sprintf("unknown flow kind %q", disc.Kind)}
	}
}

func unmarshalCatchTarget(data []byte) (CatchTarget, error) {
	var raw struct {
		Register *uint8  `json:"register"`
		Variable *string `json:"variable"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch {
	case raw.Register != nil && raw.Variable == nil:
		return CatchRegister(*raw.Register), nil
	case raw.Variable != nil && raw.Register == nil:
		return CatchVariable(*raw.Variable), nil
	default:
		return nil, InvalidCfgJSONError{Reason: "catch target must set exactly one of register, variable"}
	}
}
