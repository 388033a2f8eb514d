// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"fmt"

	"github.com/open-flash/avm1-emitter/avm1"
	"github.com/open-flash/avm1-emitter/avm1/op"
)

// ToCfg rebuilds a control-flow graph from a flat top-level action
// stream. Block labels are synthesized from byte offsets; two streams
// of the same shape produce graphs that match under a relational
// comparison of labels, not byte-for-byte label equality.
func ToCfg(code []byte) (*avm1.Cfg, error) {
	return parseScope(code, true)
}

// MissingEndError is returned when a top-level stream does not end
// with an End action.
type MissingEndError struct{}

func (MissingEndError) Error() string {
	return "disasm: top-level action stream does not end with End"
}

// parseScope parses one function body or top-level program: the unit
// within which branch offsets are absolute. A top-level stream carries
// a trailing End sentinel; function bodies end where their size says.
func parseScope(code []byte, topLevel bool) (*avm1.Cfg, error) {
	end := len(code)
	if topLevel {
		if end == 0 || code[end-1] != op.End {
			return nil, MissingEndError{}
		}
		end--
	}
	s := &scope{code: code, noneTarget: end, leaders: make(map[int]bool)}
	items, err := s.scan(0, end)
	if err != nil {
		return nil, err
	}
	blocks, err := s.buildRange(items, nil)
	if err != nil {
		return nil, err
	}
	return &avm1.Cfg{Blocks: blocks}, nil
}

// scope tracks the state of one function-body parse: branch targets
// are collected over the whole body before blocks are built, so that
// jumps crossing try/with boundaries split the right blocks.
type scope struct {
	code       []byte
	noneTarget int
	leaders    map[int]bool
	synth      int
}

// item is one structural element of a scanned range: a straight-line
// action, a branch, or a whole nested construct.
type item interface {
	span() (start, end int)
}

type actionItem struct {
	start, end int
	action     avm1.Action
}

type branchItem struct {
	start, end  int
	conditional bool
	target      int
}

type endItem struct {
	start, end int
}

type errorItem struct {
	start, end int
}

type tryItem struct {
	start, end   int
	catchTarget  avm1.CatchTarget // nil when there is no catch clause
	hasFinally   bool
	tryItems     []item
	catchItems   []item
	finallyItems []item
}

type withItem struct {
	start, end int
	bodyItems  []item
}

type waitItem struct {
	start, end     int
	frame          uint16
	stackBased     bool
	ready, loading int
}

func (it actionItem) span() (int, int) { return it.start, it.end }
func (it branchItem) span() (int, int) { return it.start, it.end }
func (it endItem) span() (int, int)    { return it.start, it.end }
func (it errorItem) span() (int, int)  { return it.start, it.end }
func (it tryItem) span() (int, int)    { return it.start, it.end }
func (it withItem) span() (int, int)   { return it.start, it.end }
func (it waitItem) span() (int, int)   { return it.start, it.end }

// scan decodes the range [start, end) into items, descending into
// nested constructs and recording every branch target as a leader.
func (s *scope) scan(start, end int) ([]item, error) {
	d := &decoder{code: s.code[:end], pos: start}
	var items []item
	for d.pos < end {
		off := d.pos
		a, err := d.action()
		if err != nil {
			return nil, err
		}
		aEnd := d.pos

		switch v := a.(type) {
		case avm1.If:
			target := aEnd + int(v.Offset)
			s.leaders[target] = true
			items = append(items, branchItem{start: off, end: aEnd, conditional: true, target: target})
		case avm1.Jump:
			target := aEnd + int(v.Offset)
			s.leaders[target] = true
			items = append(items, branchItem{start: off, end: aEnd, target: target})
		case avm1.Basic:
			if v.Code == op.End {
				items = append(items, endItem{start: off, end: aEnd})
			} else {
				items = append(items, actionItem{start: off, end: aEnd, action: a})
			}
		case avm1.Raw:
			if v.Code == op.Push && len(v.Data) == 1 && v.Data[0] == 0xff {
				items = append(items, errorItem{start: off, end: aEnd})
			} else {
				items = append(items, actionItem{start: off, end: aEnd, action: a})
			}
		case avm1.DefineFunctionHeader:
			bodyEnd := aEnd + int(v.BodySize)
			if bodyEnd > end {
				return nil, TruncatedActionError(off)
			}
			body, err := parseScope(s.code[aEnd:bodyEnd], false)
			if err != nil {
				return nil, err
			}
			action := avm1.DefineFunction{Name: v.Name, Parameters: v.Parameters, Body: *body}
			items = append(items, actionItem{start: off, end: bodyEnd, action: action})
			d.pos = bodyEnd
		case avm1.DefineFunction2Header:
			bodyEnd := aEnd + int(v.BodySize)
			if bodyEnd > end {
				return nil, TruncatedActionError(off)
			}
			body, err := parseScope(s.code[aEnd:bodyEnd], false)
			if err != nil {
				return nil, err
			}
			action := avm1.DefineFunction2{
				Name:          v.Name,
				RegisterCount: v.RegisterCount,
				Flags:         v.Flags,
				Parameters:    v.Parameters,
				Body:          *body,
			}
			items = append(items, actionItem{start: off, end: bodyEnd, action: action})
			d.pos = bodyEnd
		case avm1.Try:
			it, err := s.scanTry(v, off, aEnd, end)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
			d.pos = it.end
		case avm1.With:
			bodyEnd := aEnd + int(v.Size)
			if bodyEnd > end {
				return nil, TruncatedActionError(off)
			}
			bodyItems, err := s.scan(aEnd, bodyEnd)
			if err != nil {
				return nil, err
			}
			items = append(items, withItem{start: off, end: bodyEnd, bodyItems: bodyItems})
			d.pos = bodyEnd
		case avm1.WaitForFrame:
			if ready, loading, ok := s.foldWaitJumps(d, v.Skip); ok {
				items = append(items, waitItem{start: off, end: d.pos, frame: v.Frame, ready: ready, loading: loading})
			} else {
				items = append(items, actionItem{start: off, end: aEnd, action: a})
			}
		case avm1.WaitForFrame2:
			if ready, loading, ok := s.foldWaitJumps(d, v.Skip); ok {
				items = append(items, waitItem{start: off, end: d.pos, stackBased: true, ready: ready, loading: loading})
			} else {
				items = append(items, actionItem{start: off, end: aEnd, action: a})
			}
		default:
			items = append(items, actionItem{start: off, end: aEnd, action: a})
		}
	}
	return items, nil
}

// scanTry reads the three block extents following a Try header and
// scans each one.
func (s *scope) scanTry(v avm1.Try, start, headerEnd, rangeEnd int) (tryItem, error) {
	tryEnd := headerEnd + int(v.TrySize)
	catchEnd := tryEnd
	if v.Catch != nil {
		catchEnd += int(v.Catch.Size)
	}
	finallyEnd := catchEnd
	if v.Finally != nil {
		finallyEnd += int(*v.Finally)
	}
	if finallyEnd > rangeEnd {
		return tryItem{}, TruncatedActionError(start)
	}

	it := tryItem{start: start, end: finallyEnd, hasFinally: v.Finally != nil}
	var err error
	if it.tryItems, err = s.scan(headerEnd, tryEnd); err != nil {
		return tryItem{}, err
	}
	if v.Catch != nil {
		it.catchTarget = v.Catch.Target
		if it.catchItems, err = s.scan(tryEnd, catchEnd); err != nil {
			return tryItem{}, err
		}
	}
	if v.Finally != nil {
		if it.finallyItems, err = s.scan(catchEnd, finallyEnd); err != nil {
			return tryItem{}, err
		}
	}
	return it, nil
}

// foldWaitJumps matches the two-jump sequence the encoder emits after
// a WaitForFrame with skip 1. On a match the decoder is left past the
// second jump; otherwise its position is unchanged.
func (s *scope) foldWaitJumps(d *decoder, skip uint8) (ready, loading int, ok bool) {
	if skip != 1 {
		return 0, 0, false
	}
	saved := d.pos
	a1, err := d.action()
	if err == nil {
		if j1, isJump := a1.(avm1.Jump); isJump {
			ready = d.pos + int(j1.Offset)
			a2, err := d.action()
			if err == nil {
				if j2, isJump := a2.(avm1.Jump); isJump {
					loading = d.pos + int(j2.Offset)
					s.leaders[ready] = true
					s.leaders[loading] = true
					return ready, loading, true
				}
			}
		}
	}
	d.pos = saved
	return 0, 0, false
}

func (s *scope) label(off int) avm1.Label {
	return avm1.Label(fmt.Sprintf("l%d", off))
}

// synthLabel names a block that occupies no bytes, such as the body of
// an empty catch clause.
func (s *scope) synthLabel() avm1.Label {
	s.synth++
	return avm1.Label(fmt.Sprintf("s%d", s.synth))
}

// targetLabel maps a branch target offset to an optional label: the
// end-of-stream sentinel maps to nil.
func (s *scope) targetLabel(off int) *avm1.Label {
	if off == s.noneTarget {
		return nil
	}
	return labelPtr(s.label(off))
}

func labelPtr(l avm1.Label) *avm1.Label {
	return &l
}

func copyLabel(l *avm1.Label) *avm1.Label {
	if l == nil {
		return nil
	}
	v := *l
	return &v
}

// buildRange turns the items of one range into basic blocks. The range
// falls through to fallthroughLabel; blocks are split at every leader
// so that branch targets always name a block start.
func (s *scope) buildRange(items []item, fallthroughLabel *avm1.Label) ([]avm1.Block, error) {
	if len(items) == 0 {
		return []avm1.Block{{Label: s.synthLabel(), Flow: avm1.SimpleFlow{Next: copyLabel(fallthroughLabel)}}}, nil
	}

	var blocks []avm1.Block
	var cur *avm1.Block
	curStart := -1
	open := func(off int) {
		cur = &avm1.Block{Label: s.label(off)}
		curStart = off
	}
	closeWith := func(f avm1.Flow) {
		cur.Flow = f
		blocks = append(blocks, *cur)
		cur = nil
	}

	for i := 0; i < len(items); i++ {
		it := items[i]
		start, _ := it.span()
		if cur == nil {
			open(start)
		} else if s.leaders[start] && start != curStart {
			closeWith(avm1.SimpleFlow{Next: labelPtr(s.label(start))})
			open(start)
		}

		// afterLabel is where control goes past this item: the next
		// item of the range, or the range's own fall-through.
		afterLabel := func() *avm1.Label {
			if i+1 < len(items) {
				ns, _ := items[i+1].span()
				return labelPtr(s.label(ns))
			}
			return copyLabel(fallthroughLabel)
		}

		switch v := it.(type) {
		case actionItem:
			if basic, isBasic := v.action.(avm1.Basic); isBasic {
				switch basic.Code {
				case op.Return:
					closeWith(avm1.ReturnFlow{})
					continue
				case op.Throw:
					closeWith(avm1.ThrowFlow{})
					continue
				}
			}
			cur.Actions = append(cur.Actions, v.action)
		case branchItem:
			if !v.conditional {
				closeWith(avm1.SimpleFlow{Next: s.targetLabel(v.target)})
				continue
			}
			trueTarget := s.targetLabel(v.target)
			var falseTarget *avm1.Label
			if i+1 >= len(items) {
				falseTarget = copyLabel(fallthroughLabel)
			} else {
				next := items[i+1]
				ns, _ := next.span()
				if s.leaders[ns] {
					falseTarget = labelPtr(s.label(ns))
				} else {
					switch n := next.(type) {
					case endItem:
						// If followed by End: the false edge ends the
						// program.
						falseTarget = nil
						i++
					case branchItem:
						if !n.conditional {
							// If followed by Jump: the jump is the
							// lowered false edge.
							falseTarget = s.targetLabel(n.target)
							i++
						} else {
							falseTarget = labelPtr(s.label(ns))
						}
					default:
						falseTarget = labelPtr(s.label(ns))
					}
				}
			}
			closeWith(avm1.IfFlow{TrueTarget: trueTarget, FalseTarget: falseTarget})
		case endItem:
			closeWith(avm1.SimpleFlow{})
		case errorItem:
			closeWith(avm1.ErrorFlow{})
		case tryItem:
			finallyNext := afterLabel()
			catchNext := finallyNext
			var finallyCfg *avm1.Cfg
			if v.hasFinally {
				fb, err := s.buildRange(v.finallyItems, finallyNext)
				if err != nil {
					return nil, err
				}
				finallyCfg = &avm1.Cfg{Blocks: fb}
				catchNext = labelPtr(fb[0].Label)
			}
			tryNext := catchNext
			var catchClause *avm1.CatchClause
			if v.catchTarget != nil {
				cb, err := s.buildRange(v.catchItems, catchNext)
				if err != nil {
					return nil, err
				}
				catchClause = &avm1.CatchClause{Target: v.catchTarget, Body: avm1.Cfg{Blocks: cb}}
				tryNext = labelPtr(cb[0].Label)
			}
			tb, err := s.buildRange(v.tryItems, tryNext)
			if err != nil {
				return nil, err
			}
			closeWith(avm1.TryFlow{Try: avm1.Cfg{Blocks: tb}, Catch: catchClause, Finally: finallyCfg})
		case withItem:
			bb, err := s.buildRange(v.bodyItems, afterLabel())
			if err != nil {
				return nil, err
			}
			closeWith(avm1.WithFlow{Body: avm1.Cfg{Blocks: bb}})
		case waitItem:
			if v.stackBased {
				closeWith(avm1.WaitForFrame2Flow{
					ReadyTarget:   s.targetLabel(v.ready),
					LoadingTarget: s.targetLabel(v.loading),
				})
			} else {
				closeWith(avm1.WaitForFrameFlow{
					Frame:         v.frame,
					ReadyTarget:   s.targetLabel(v.ready),
					LoadingTarget: s.targetLabel(v.loading),
				})
			}
		}
	}

	if cur != nil {
		closeWith(avm1.SimpleFlow{Next: copyLabel(fallthroughLabel)})
	}
	return blocks, nil
}
