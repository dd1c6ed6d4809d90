package asm

import (
	"bufio"
	"io"
	"log"
	"path"
	"strings"

	"github.com/ezrec/asm68k/diag"
)

// INCLUDE_LIMIT bounds the nesting of included files.
const INCLUDE_LIMIT = 16

// readLines splits a source into lines, without their line ends.
func readLines(in io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	err = scanner.Err()
	return
}

// includeName is the file named by the text after INCLUDE, either quoted
// or up to the first blank.
func includeName(raw string) (name string, err error) {
	if chars, _, ok := quoted(raw); ok {
		name = string(chars)
	} else {
		end := strings.IndexAny(raw, " \t")
		if end < 0 {
			end = len(raw)
		}
		name = raw[:end]
	}
	if len(name) == 0 {
		err = diag.ErrInvalidArg
	}
	return
}

// includePath resolves name against the directory of the including file.
func includePath(from string, name string) string {
	return path.Join(path.Dir(from), strings.ReplaceAll(name, "\\", "/"))
}

// readInclude reads an included file from run.Files.
func (run *Run) readInclude(name string) (lines []string, err error) {
	if run.Files == nil {
		return nil, diag.ErrIncludeFile
	}
	in, err := run.Files.Open(name)
	if err != nil {
		if run.Verbose {
			log.Printf("%v: %v", name, err)
		}
		return nil, diag.ErrIncludeFile
	}
	defer in.Close()

	lines, err = readLines(in)
	if err != nil {
		if run.Verbose {
			log.Printf("%v: %v", name, err)
		}
		return nil, diag.ErrIncludeFile
	}
	return
}

// INCLUDE file
func (run *Run) dirInclude(op *operation) (err error) {
	ctx := &run.ctx

	err = run.define(op.Label, ctx.Loc)

	// The argument keeps the case it was written in.
	raw := op.Args
	if len(raw) <= len(ctx.text) {
		raw = ctx.text[len(ctx.text)-len(raw):]
	}
	name, nerr := includeName(raw)
	if nerr != nil {
		return diag.Worst(err, nerr)
	}
	if run.includeDepth >= INCLUDE_LIMIT {
		return diag.Worst(err, diag.ErrIncludeNesting)
	}
	name = includePath(run.file, name)
	lines, rerr := run.readInclude(name)
	if rerr != nil {
		return diag.Worst(err, rerr)
	}

	run.listAhead()
	text, ident, file := ctx.text, ctx.ident, run.file
	run.includeDepth++
	run.file = name
	for _, line := range lines {
		run.processLine(line)
		if ctx.End {
			break
		}
	}
	run.includeDepth--
	ctx.text, ctx.ident, run.file = text, ident, file
	ctx.skipList, ctx.listed, ctx.printCond = true, true, false

	return
}
