package asm

import (
	"fmt"
	"log"
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

// processLine assembles one source line.
func (run *Run) processLine(text string) {
	ctx := &run.ctx

	ctx.LineNo++
	ctx.skipList = false
	if run.Verbose {
		log.Printf("%v: %v", ctx.LineNo, text)
	}

	if run.macro != nil {
		saved := ctx.text
		ctx.text = text
		ctx.listed = false
		ctx.printCond = false
		run.begin()
		run.report(run.record(text))
		ctx.text = saved
		return
	}

	run.assemble(text)
}

// assemble assembles a source or generated line, and lists it.
func (run *Run) assemble(text string) {
	ctx := &run.ctx

	saved, savedCond := ctx.text, ctx.printCond
	ctx.text = text
	ctx.listed = false
	ctx.printCond = false
	run.begin()

	run.report(run.process(text))

	ctx.text, ctx.printCond = saved, savedCond
}

// process dispatches a line to conditional assembly or code generation.
func (run *Run) process(text string) (err error) {
	ctx := &run.ctx

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v: %w", r, diag.ErrException)
		}
	}()

	if len(text) > LINE_LIMIT {
		return diag.ErrLineTooLong
	}
	if isComment(text) || len(strings.TrimSpace(text)) == 0 {
		return
	}

	line := run.unlabel(strcap(text))
	toks, err := Tokenize(line, ", \t\n")
	if err != nil {
		return
	}

	if ok, cerr := run.conditional(toks); ok {
		return cerr
	}
	if ctx.Skip {
		return
	}

	return run.createCode(line)
}

// begin starts the listing of the current line.
func (run *Run) begin() {
	ctx := &run.ctx
	run.listing.Begin(ctx.Loc, ctx.offset, ctx.text, ctx.ident)
}

// listAhead lists the current line before the lines it generates.
func (run *Run) listAhead() {
	ctx := &run.ctx
	if ctx.Pass2 && ctx.list && !ctx.skipList && !ctx.listed {
		run.listing.Line(ctx.text, ctx.ident)
		ctx.listed = true
	}
	ctx.skipList = true
}

// count classifies a second pass diagnostic.
func (run *Run) count(err error) {
	ctx := &run.ctx
	if diag.IsError(err) {
		ctx.Errors++
	} else {
		ctx.Warnings++
	}
	run.Diagnostics = append(run.Diagnostics, diag.ErrLine{
		LineNo: ctx.LineNo,
		Line:   ctx.text,
		Err:    err,
	})
}

// report lists the current line with its diagnostic. The first pass
// reports nothing.
func (run *Run) report(err error) {
	ctx := &run.ctx
	if !ctx.Pass2 {
		return
	}

	switch {
	case ctx.printCond && !ctx.skipList:
		run.listing.Cond(ctx.Skip)
		run.listing.Line(ctx.text, ctx.ident)
	case ctx.listed:
	case ctx.list && !ctx.Skip && !ctx.skipList, diag.IsError(err):
		run.listing.Line(ctx.text, ctx.ident)
	}
	ctx.listed = true

	if err != nil {
		run.count(err)
		run.listing.Error(ctx.LineNo, err)
	}
}

// note reports a diagnostic that belongs to no line.
func (run *Run) note(err error) {
	ctx := &run.ctx
	if !ctx.Pass2 {
		return
	}
	run.count(err)
	run.listing.Error(ctx.LineNo, err)
}

// Loc is the location counter.
func (run *Run) Loc() int32 {
	return run.ctx.Loc
}

// Pass2 reports whether the second pass is running.
func (run *Run) Pass2() bool {
	return run.ctx.Pass2
}

// Lookup resolves a symbol in an expression, recording the reference on
// the second pass. Macro names are not values.
func (run *Run) Lookup(name string) (value int32, backRef bool, ok bool) {
	ctx := &run.ctx

	lineno := 0
	if ctx.Pass2 {
		lineno = ctx.LineNo
	}
	sym, ok := run.Symbols.Lookup(name, lineno)
	if !ok || sym.Macro() {
		return 0, false, false
	}
	return sym.Value, sym.BackRef(), true
}

// Emit writes object code at the location counter, and advances it.
// Nothing is written in an OFFSET section or on the first pass.
func (run *Run) Emit(size isa.Size, value uint32) {
	ctx := &run.ctx

	bytes := size.Bytes()
	if ctx.Pass2 && !ctx.offset {
		if ctx.list {
			run.listing.Object(value, size)
		}
		if run.srec != nil {
			data := make([]byte, bytes)
			for n := range data {
				data[n] = byte(value >> (8 * (bytes - 1 - n)))
			}
			if err := run.srec.Write(uint32(ctx.Loc), data...); err != nil && run.ioErr == nil {
				run.ioErr = err
			}
		}
	}
	ctx.Loc += int32(bytes)
}

// assembleStc assembles a line generated by a structured statement.
func (run *Run) assembleStc(text string) error {
	ctx := &run.ctx

	if run.synthetic != nil {
		run.synthetic(ctx.Pass2, text)
	}
	show := ctx.opts.SEX && !(run.macroDepth > 0 && !ctx.opts.MEX)
	return run.nested(text, "s", show)
}

// nested assembles a generated line, tagged in the listing by tag and
// hidden unless show is set.
func (run *Run) nested(text string, tag string, show bool) error {
	ctx := &run.ctx

	if run.depth >= NEST_LIMIT {
		return diag.ErrNestTooDeep
	}
	run.depth++
	ident, skipList, listed := ctx.ident, ctx.skipList, ctx.listed
	ctx.ident += tag
	ctx.skipList = !show

	run.assemble(text)

	ctx.ident, ctx.skipList, ctx.listed = ident, skipList, listed
	run.depth--
	return nil
}
