// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	End           = newOp(0x00, "End")
	NextFrame     = newOp(0x04, "NextFrame")
	PrevFrame     = newOp(0x05, "PrevFrame")
	Play          = newOp(0x06, "Play")
	Stop          = newOp(0x07, "Stop")
	ToggleQuality = newOp(0x08, "ToggleQuality")
	StopSounds    = newOp(0x09, "StopSounds")
	SetTarget2    = newOp(0x20, "SetTarget2")
	Throw         = newOp(0x2a, "Throw")
	FsCommand2    = newOp(0x2d, "FsCommand2")
	Return        = newOp(0x3e, "Return")

	GotoFrame     = newOp(0x81, "GotoFrame")
	GetURL        = newOp(0x83, "GetUrl")
	WaitForFrame  = newOp(0x8a, "WaitForFrame")
	SetTarget     = newOp(0x8b, "SetTarget")
	GotoLabel     = newOp(0x8c, "GotoLabel")
	WaitForFrame2 = newOp(0x8d, "WaitForFrame2")
	Try           = newOp(0x8f, "Try")
	With          = newOp(0x94, "With")
	Jump          = newOp(0x99, "Jump")
	GetURL2       = newOp(0x9a, "GetUrl2")
	If            = newOp(0x9d, "If")
	Call          = newOp(0x9e, "Call")
	GotoFrame2    = newOp(0x9f, "GotoFrame2")
)
