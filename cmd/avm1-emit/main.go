// Copyright 2020 The Open Flash Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command avm1-emit reads a control-flow graph from a JSON document
// and writes the emitted AVM1 byte stream.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/open-flash/avm1-emitter/avm1"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: avm1-emit [options] cfg.json

ex:
 $> avm1-emit -o main.avm1 ./cfg.json

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagOut     = flag.String("o", "", "output file (default: input with .avm1 extension)")
)

func main() {
	log.SetPrefix("avm1-emit: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	avm1.SetDebugMode(*flagVerbose)

	fname := flag.Arg(0)
	raw, err := os.ReadFile(fname)
	if err != nil {
		log.Fatalf("could not read %q: %v", fname, err)
	}

	var cfg avm1.Cfg
	if err := json.Unmarshal(raw, &cfg); err != nil {
		log.Fatalf("could not parse %q: %v", fname, err)
	}

	out, err := avm1.EmitCfg(&cfg)
	if err != nil {
		log.Fatalf("could not emit %q: %v", fname, err)
	}

	oname := *flagOut
	if oname == "" {
		oname = strings.TrimSuffix(fname, ".json") + ".avm1"
	}
	if err := os.WriteFile(oname, out, 0o644); err != nil {
		log.Fatalf("could not write %q: %v", oname, err)
	}
	fmt.Printf("%s: wrote %d bytes\n", oname, len(out))
}
