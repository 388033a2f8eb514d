// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command avm1-dump prints the actions of AVM1 byte streams.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
	mmap "github.com/edsrzf/mmap-go"

	"github.com/open-flash/avm1-emitter/avm1"
	"github.com/open-flash/avm1-emitter/avm1/op"
	"github.com/open-flash/avm1-emitter/disasm"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: avm1-dump [options] file1.avm1 [file2.avm1 [...]]

ex:
 $> avm1-dump -d ./file1.avm1

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagDis     = flag.Bool("d", false, "disassemble the action stream")
	flagDetails = flag.Bool("x", false, "show full action details")
)

func main() {
	log.SetPrefix("avm1-dump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if !*flagDis && !*flagDetails {
		flag.Usage()
		flag.PrintDefaults()
		log.Printf("At least one of -d or -x must be given")
		os.Exit(1)
	}

	avm1.SetDebugMode(*flagVerbose)
	disasm.SetDebugMode(*flagVerbose)

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Printf("\n")
		}
		process(fname)
	}
}

func process(fname string) {
	f, err := os.Open(fname)
	if err != nil {
		log.Fatalf("could not open %q: %v", fname, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		log.Fatalf("could not mmap %q: %v", fname, err)
	}
	defer m.Unmap()

	instrs, err := disasm.Disassemble(m)
	if err != nil {
		log.Fatalf("could not disassemble %q: %v", fname, err)
	}

	fmt.Printf("%s: %d actions\n", fname, len(instrs))
	for _, instr := range instrs {
		if *flagDis {
			fmt.Printf("%#06x: %s\n", instr.Offset, actionName(instr.Action))
		}
		if *flagDetails {
			spew.Dump(instr.Action)
		}
	}
}

func actionName(a avm1.Action) string {
	o, err := op.New(avm1.ActionCode(a))
	if err != nil {
		return fmt.Sprintf("<unknown action %#x>", avm1.ActionCode(a))
	}
	return o.Name
}
