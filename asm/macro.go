package asm

import (
	"fmt"
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

// Macro is a recorded macro body.
type Macro struct {
	Name   string
	LineNo int      // Line of the MACRO directive.
	Lines  []string // Body, as written.
}

// label MACRO
func (run *Run) macroDefine(op *operation) (err error) {
	ctx := &run.ctx

	// The body is consumed up to ENDM even when the definition fails.
	mac := &Macro{Name: op.Label, LineNo: ctx.LineNo}
	run.macro = mac

	if run.macroDepth > 0 {
		return diag.ErrMacroNesting
	}
	if len(op.Label) == 0 {
		return diag.ErrLabelRequired
	}
	err = run.Symbols.DefineMacro(op.Label, ctx.Pass2, ctx.LineNo)
	if err == nil && !ctx.Pass2 {
		run.macros[op.Label] = mac
	}
	return
}

// prescan collects the macro bodies of a source, and of the files it
// includes, before the first pass so a macro can be called above its
// definition. The first definition of a name wins.
func (run *Run) prescan(lines []string, file string, depth int) {
	var mac *Macro
	for n, text := range lines {
		if len(text) > LINE_LIMIT {
			continue
		}
		toks, err := Tokenize(run.unlabel(strcap(text)), ", \t\n")
		if err != nil {
			continue
		}
		word := mnemonic(toks.Text(1))
		switch {
		case mac != nil && word == "ENDM":
			mac = nil
		case mac != nil && word == "MACRO":
		case mac != nil:
			mac.Lines = append(mac.Lines, text)
		case word == "MACRO":
			name := strings.TrimSuffix(toks.Text(0), ":")
			mac = &Macro{Name: name, LineNo: n + 1}
			if _, defined := run.macros[name]; !defined && len(name) > 0 {
				run.macros[name] = mac
			}
		case word == "INCLUDE" && depth < INCLUDE_LIMIT:
			at := strings.Index(strcap(text), "INCLUDE")
			name, err := includeName(skipSpace(text[at+len("INCLUDE"):]))
			if err != nil {
				continue
			}
			name = includePath(file, name)
			if body, err := run.readInclude(name); err == nil {
				run.prescan(body, name, depth+1)
			}
		}
	}
}

// record adds a line to the macro being defined, until ENDM.
func (run *Run) record(text string) (err error) {
	if len(text) > LINE_LIMIT {
		return diag.ErrLineTooLong
	}
	toks, err := Tokenize(run.unlabel(strcap(text)), ", \t\n")
	if err != nil {
		return
	}
	switch mnemonic(toks.Text(1)) {
	case "ENDM":
		run.macro = nil
		return
	case "MACRO":
		return diag.ErrMacroNesting
	}
	if !run.ctx.Pass2 {
		run.macro.Lines = append(run.macro.Lines, text)
	}
	return
}

// substitute replaces the parameters of a macro body line.
func substitute(line string, size isa.Size, args []string, unique string) string {
	var out strings.Builder
	for n := 0; n < len(line); n++ {
		c := line[n]
		if c != '\\' || n+1 == len(line) {
			out.WriteByte(c)
			continue
		}
		next := line[n+1]
		switch {
		case next == '0':
			out.WriteString(size.String())
		case next >= '1' && next <= '9':
			if arg := int(next - '1'); arg < len(args) {
				out.WriteString(args[arg])
			}
		case next == '@':
			out.WriteString(unique)
		default:
			out.WriteByte(c)
			continue
		}
		n++
	}
	return out.String()
}

// expand assembles a macro call.
func (run *Run) expand(mac *Macro, op *operation) (err error) {
	ctx := &run.ctx

	err = run.define(op.Label, ctx.Loc)
	if mac == nil {
		return diag.Worst(err, diag.ErrInvOpcode)
	}
	if run.macroDepth >= NEST_LIMIT {
		return diag.Worst(err, diag.ErrNestTooDeep)
	}

	ctx.unique++
	unique := fmt.Sprintf("_%03d", ctx.unique)
	args := splitArgs(op.Args)

	run.listAhead()
	run.macroDepth++
	for _, line := range mac.Lines {
		err = diag.Worst(err, run.nested(substitute(line, op.Size, args, unique), "m", ctx.opts.MEX))
		if ctx.End {
			break
		}
	}
	run.macroDepth--
	ctx.skipList = true

	return
}
