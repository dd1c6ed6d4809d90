// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/ezrec/asm68k/asm"
	"github.com/ezrec/asm68k/diag"
)

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]int32

func (d defines) String() string {
	return fmt.Sprint(map[string]int32(d))
}

func (d defines) Set(text string) error {
	name, value, found := strings.Cut(text, "=")
	if !found {
		value = "1"
	}
	n, err := strconv.ParseInt(value, 0, 64)
	if err != nil {
		return err
	}
	d[name] = int32(n)
	return nil
}

func main() {
	var listing string
	var object string
	var verbose bool

	opts := asm.Options{}
	predefined := defines{}

	flag.StringVar(&listing, "l", "", ".L68 listing file to write")
	flag.StringVar(&object, "o", "", ".S68 S-record file to write")
	flag.BoolVar(&opts.List, "list", true, "List source lines")
	flag.BoolVar(&opts.CEX, "cex", false, "Continue long object code in the listing")
	flag.BoolVar(&opts.SEX, "sex", false, "List structured code expansions")
	flag.BoolVar(&opts.MEX, "mex", false, "List macro expansions")
	flag.BoolVar(&opts.CRE, "cre", false, "Append the symbol table to the listing")
	flag.BoolVar(&opts.Bitfield, "bitfield", false, "Accept 68020 bit field instructions")
	flag.IntVar(&opts.TabSize, "tab", asm.TAB_SIZE, "Listing tab size")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(predefined, "D", "Predefine NAME=VALUE")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: Expected one source file, got: %v", os.Args[0], flag.Args())
	}
	source := flag.Arg(0)
	opts.Verbose = verbose

	run := asm.NewRun(opts)
	for name, value := range predefined {
		run.Predefine(name, value)
	}

	_, err := run.AssembleFile(source, listing, object)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "%v: %d errors, %d warnings\n", source, run.Errors(), run.Warnings())
	} else {
		for _, line := range run.Diagnostics {
			fmt.Fprintf(os.Stderr, "%v:%d: %v: %v\n", source, line.LineNo, diag.SeverityOf(line.Err), line.Err)
		}
	}

	if run.Errors() > 0 {
		os.Exit(1)
	}
}
