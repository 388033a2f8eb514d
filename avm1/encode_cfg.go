// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package avm1

import (
	"fmt"
	"math"

	"github.com/open-flash/avm1-emitter/avm1/op"
)

// EmitCfg encodes a whole program. The blocks are laid out in Cfg
// order, inter-block transfers are lowered to position-relative
// branches, and a trailing End marks the end of the stream.
func EmitCfg(cfg *Cfg) ([]byte, error) {
	b := newPatchableBuffer()
	if err := writeHardCfg(b, cfg, true); err != nil {
		return nil, err
	}
	return b.complete(), nil
}

// writeInfo accumulates the label table and the pending branch holes of
// the innermost enclosing function body. Branch offsets are absolute
// within one function body, so sub-scopes created by Try and With merge
// into their enclosing writeInfo; function bodies get a fresh one.
type writeInfo struct {
	// blocks maps a label to the offset of the block's first byte.
	blocks map[Label]int
	// jumps maps the offset of a branch's 2-byte offset field to its
	// unpatched hole and target. A nil target is the end-of-stream
	// sentinel.
	jumps map[int]jumpSite
}

type jumpSite struct {
	hole   *holeI16
	target *Label
}

func newWriteInfo() *writeInfo {
	return &writeInfo{
		blocks: make(map[Label]int),
		jumps:  make(map[int]jumpSite),
	}
}

// writeHardCfg emits a self-contained function body or top-level
// program: all branches are resolved before it returns.
func writeHardCfg(b *patchableBuffer, cfg *Cfg, appendEndAction bool) error {
	wi := newWriteInfo()
	if err := writeSoftCfg(b, wi, cfg, nil); err != nil {
		return err
	}
	endOffset := b.Len()
	if appendEndAction {
		if err := writeRawAction(b, Basic{Code: op.End}); err != nil {
			return err
		}
	}

	for offset, site := range wi.jumps {
		targetOffset := endOffset
		if site.target != nil {
			t, ok := wi.blocks[*site.target]
			if !ok {
				return UnknownLabelError(*site.target)
			}
			targetOffset = t
		}
		// The branch displacement is measured from the byte right after
		// the 2-byte offset field.
		source := offset + 2
		delta, ok := offsetDeltaI16(source, targetOffset)
		if !ok {
			return OffsetOutOfReachError{Source: source, Target: targetOffset}
		}
		logger.Printf("patching branch at %#x: target %#x, delta %d", offset, targetOffset, delta)
		site.hole.patch(delta)
	}
	return nil
}

// offsetDeltaI16 returns the signed 16-bit displacement x such that
// source + x == target, and whether the displacement is representable.
func offsetDeltaI16(source, target int) (int16, bool) {
	delta := target - source
	if delta < math.MinInt16 || delta > math.MaxInt16 {
		return 0, false
	}
	return int16(delta), true
}

// writeSoftCfg emits the blocks of a sub-CFG in order. fallthroughNext
// is the label the last block falls through to, nil when falling off
// the emitted range ends the program.
func writeSoftCfg(b *patchableBuffer, wi *writeInfo, cfg *Cfg, fallthroughNext *Label) error {
	for i := range cfg.Blocks {
		next := fallthroughNext
		if i+1 < len(cfg.Blocks) {
			next = &cfg.Blocks[i+1].Label
		}
		if err := writeBlock(b, wi, &cfg.Blocks[i], next); err != nil {
			return err
		}
	}
	return nil
}

func writeBlock(b *patchableBuffer, wi *writeInfo, block *Block, fallthroughNext *Label) error {
	wi.blocks[block.Label] = b.Len()

	for _, action := range block.Actions {
		if err := writeRawAction(b, action); err != nil {
			return err
		}
	}

	switch flow := block.Flow.(type) {
	case SimpleFlow:
		if !labelEq(fallthroughNext, flow.Next) {
			if flow.Next != nil {
				if err := writeJumpHole(b, wi, flow.Next); err != nil {
					return err
				}
			} else if err := writeRawAction(b, Basic{Code: op.End}); err != nil {
				return err
			}
		}
		return nil
	case IfFlow:
		if err := writeIfHole(b, wi, flow.TrueTarget); err != nil {
			return err
		}
		if !labelEq(fallthroughNext, flow.FalseTarget) {
			if flow.FalseTarget != nil {
				if err := writeJumpHole(b, wi, flow.FalseTarget); err != nil {
					return err
				}
			} else if err := writeRawAction(b, Basic{Code: op.End}); err != nil {
				return err
			}
		}
		return nil
	case ReturnFlow:
		return writeRawAction(b, Basic{Code: op.Return})
	case ThrowFlow:
		return writeRawAction(b, Basic{Code: op.Throw})
	case ErrorFlow:
		return writeError(b)
	case TryFlow:
		return writeTry(b, wi, flow, fallthroughNext)
	case WithFlow:
		return writeWith(b, wi, flow, fallthroughNext)
	case WaitForFrameFlow:
		if err := writeRawAction(b, WaitForFrame{Frame: flow.Frame, Skip: 1}); err != nil {
			return err
		}
		if err := writeJumpHole(b, wi, flow.ReadyTarget); err != nil {
			return err
		}
		return writeJumpHole(b, wi, flow.LoadingTarget)
	case WaitForFrame2Flow:
		if err := writeRawAction(b, WaitForFrame2{Skip: 1}); err != nil {
			return err
		}
		if err := writeJumpHole(b, wi, flow.ReadyTarget); err != nil {
			return err
		}
		return writeJumpHole(b, wi, flow.LoadingTarget)
	default:
		panic(fmt.Errorf("avm1: unknown flow type %T", block.Flow))
	}
}

// writeError emits a deliberately malformed Push: a 1-byte body holding
// an invalid value tag. Reaching it fails at runtime, preserving the
// fact that the producer marked this point faulty.
func writeError(b *patchableBuffer) error {
	_, err := b.Write([]byte{0x96, 0x01, 0x00, 0xff})
	return err
}

// writeIfHole emits a conditional branch whose offset field is a hole,
// recorded in wi against the target label.
func writeIfHole(b *patchableBuffer, wi *writeInfo, target *Label) error {
	return writeBranchHole(b, wi, op.If, target)
}

// writeJumpHole emits an unconditional branch whose offset field is a
// hole, recorded in wi against the target label.
func writeJumpHole(b *patchableBuffer, wi *writeInfo, target *Label) error {
	return writeBranchHole(b, wi, op.Jump, target)
}

func writeBranchHole(b *patchableBuffer, wi *writeInfo, code byte, target *Label) error {
	if err := writeU8(b, code); err != nil {
		return err
	}
	if err := writeLeU16(b, 2); err != nil {
		return err
	}
	offset := b.Len()
	wi.jumps[offset] = jumpSite{hole: b.holeLeI16(), target: target}
	return nil
}

// writeDefineFunction emits a function body into a fresh buffer to
// learn its size, then the header, then the body bytes. The body is
// self-contained: its branches resolve before it is appended.
func writeDefineFunction(b *patchableBuffer, a DefineFunction) error {
	body := newPatchableBuffer()
	if err := writeHardCfg(body, &a.Body, false); err != nil {
		return err
	}
	bodyBytes := body.complete()
	if len(bodyBytes) > math.MaxUint16 {
		return SizeOverflowError{What: "function body", Size: len(bodyBytes)}
	}
	err := writeRawAction(b, DefineFunctionHeader{
		Name:       a.Name,
		Parameters: a.Parameters,
		BodySize:   uint16(len(bodyBytes)),
	})
	if err != nil {
		return err
	}
	_, err = b.Write(bodyBytes)
	return err
}

func writeDefineFunction2(b *patchableBuffer, a DefineFunction2) error {
	body := newPatchableBuffer()
	if err := writeHardCfg(body, &a.Body, false); err != nil {
		return err
	}
	bodyBytes := body.complete()
	if len(bodyBytes) > math.MaxUint16 {
		return SizeOverflowError{What: "function body", Size: len(bodyBytes)}
	}
	err := writeRawAction(b, DefineFunction2Header{
		Name:          a.Name,
		RegisterCount: a.RegisterCount,
		Flags:         a.Flags,
		Parameters:    a.Parameters,
		BodySize:      uint16(len(bodyBytes)),
	})
	if err != nil {
		return err
	}
	_, err = b.Write(bodyBytes)
	return err
}

// writeTry emits a try/catch/finally construct inline. The header sizes
// are holes patched from the measured extents of the three sub-CFGs.
func writeTry(b *patchableBuffer, wi *writeInfo, flow TryFlow, fallthroughNext *Label) error {
	if err := writeU8(b, op.Try); err != nil {
		return err
	}
	headerHole := b.holeLeU16()
	headerStart := b.Len()

	var catchTarget CatchTarget
	if flow.Catch != nil {
		catchTarget = flow.Catch.Target
	}
	if err := writeU8(b, tryFlags(catchTarget, flow.Finally != nil)); err != nil {
		return err
	}

	trySizeHole := b.holeLeU16()
	catchSizeHole := b.holeLeU16()
	finallySizeHole := b.holeLeU16()

	if flow.Catch != nil {
		if err := writeCatchTarget(b, flow.Catch.Target); err != nil {
			return err
		}
	} else if err := writeU8(b, 0); err != nil {
		return err
	}
	headerEnd := b.Len()
	headerHole.patch(uint16(headerEnd - headerStart))

	// The try body falls through to the start of the catch body, the
	// catch body to the start of the finally body, and the finally body
	// to the block following the whole construct.
	finallyNext := fallthroughNext
	catchNext := finallyNext
	if flow.Finally != nil {
		catchNext = &flow.Finally.Blocks[0].Label
	}
	tryNext := catchNext
	if flow.Catch != nil {
		tryNext = &flow.Catch.Body.Blocks[0].Label
	}

	if err := writeSoftCfg(b, wi, &flow.Try, tryNext); err != nil {
		return err
	}
	tryEnd := b.Len()
	trySize := tryEnd - headerEnd
	if trySize > math.MaxUint16 {
		return SizeOverflowError{What: "try block", Size: trySize}
	}
	trySizeHole.patch(uint16(trySize))

	if flow.Catch != nil {
		if err := writeSoftCfg(b, wi, &flow.Catch.Body, catchNext); err != nil {
			return err
		}
	}
	catchEnd := b.Len()
	catchSize := catchEnd - tryEnd
	if catchSize > math.MaxUint16 {
		return SizeOverflowError{What: "catch block", Size: catchSize}
	}
	catchSizeHole.patch(uint16(catchSize))

	if flow.Finally != nil {
		if err := writeSoftCfg(b, wi, flow.Finally, finallyNext); err != nil {
			return err
		}
	}
	finallyEnd := b.Len()
	finallySize := finallyEnd - catchEnd
	if finallySize > math.MaxUint16 {
		return SizeOverflowError{What: "finally block", Size: finallySize}
	}
	finallySizeHole.patch(uint16(finallySize))

	return nil
}

// writeWith emits a with construct inline: the With action declares
// only its 2-byte size field, the body follows it.
func writeWith(b *patchableBuffer, wi *writeInfo, flow WithFlow, fallthroughNext *Label) error {
	if err := writeU8(b, op.With); err != nil {
		return err
	}
	if err := writeLeU16(b, 2); err != nil {
		return err
	}
	sizeHole := b.holeLeU16()
	bodyStart := b.Len()
	if err := writeSoftCfg(b, wi, &flow.Body, fallthroughNext); err != nil {
		return err
	}
	bodySize := b.Len() - bodyStart
	if bodySize > math.MaxUint16 {
		return SizeOverflowError{What: "with body", Size: bodySize}
	}
	sizeHole.patch(uint16(bodySize))
	return nil
}
