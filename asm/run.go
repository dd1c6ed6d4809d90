// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/expr"
	"github.com/ezrec/asm68k/internal"
	"github.com/ezrec/asm68k/srec"
	"github.com/ezrec/asm68k/symbol"
	"github.com/ezrec/asm68k/translate"
)

var f = translate.From

// NEST_LIMIT bounds the nesting of generated lines and macro calls.
const NEST_LIMIT = 32

// Status is the outcome of AssembleFile.
type Status int

const (
	STATUS_NORMAL = Status(0) // Assembled, possibly with diagnostics.
	STATUS_SEVERE = Status(1) // A file could not be opened or created.
)

// Options control an assembly. OPT changes the options for the rest of
// a pass.
type Options struct {
	List     bool // Write a listing.
	CEX      bool // Continue long object code on following listing lines.
	SEX      bool // List generated structured code.
	MEX      bool // List macro expansions.
	CRE      bool // Append a symbol table to the listing.
	Bitfield bool // Accept the 68020 bit field instructions.
	TabSize  int  // Listing tab stop interval.
	Verbose  bool // Log each pass and line.
}

// ErrOpen reports a file AssembleFile could not open or create.
type ErrOpen struct {
	Path string
	Err  error
}

func (err *ErrOpen) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrOpen) Unwrap() error {
	return err.Err
}

// Run is a single assembly of one source.
type Run struct {
	Options
	Name        string    // Source name, written to the object header.
	Listing     io.Writer // Listing destination, or nil.
	Object      io.Writer // S-record destination, or nil.
	Symbols     *symbol.Table
	Files       fs.FS          // Source of INCLUDE files.
	Diagnostics []diag.ErrLine // Diagnostics of the second pass.

	ctx        Context
	eval       *expr.Evaluator
	control    internal.Stack[uint32] // Open structured statement labels.
	loopReg    internal.Stack[int]    // DBLOOP registers.
	deferred   internal.Stack[string] // Lines FOR leaves to ENDF.
	macros     map[string]*Macro
	macro      *Macro // Macro being recorded.
	listing    *Listing
	srec       *srec.Writer
	depth      int // Generated line nesting.
	macroDepth int // Macro call nesting.
	ioErr      error

	includeDepth int    // INCLUDE nesting.
	file         string // File being included, or "".

	// synthetic observes each generated line.
	synthetic func(pass2 bool, text string)
}

// NewRun returns a run with an empty symbol table.
func NewRun(opts Options) (run *Run) {
	run = &Run{
		Options: opts,
		Name:    "asm68k",
		Symbols: symbol.NewTable(),
		Files:   os.DirFS("."),
		macros:  map[string]*Macro{},
	}
	run.eval = &expr.Evaluator{Scope: run}
	run.listing = NewListing(opts.TabSize)
	return
}

// Predefine seeds a symbol before the first pass.
func (run *Run) Predefine(name string, value int32) {
	run.Symbols.Predefine(strings.ToUpper(name), value)
}

// Errors is the error count of the last pass.
func (run *Run) Errors() int {
	return run.ctx.Errors
}

// Warnings is the warning count of the last pass.
func (run *Run) Warnings() int {
	return run.ctx.Warnings
}

// Context returns the state at the end of the last pass.
func (run *Run) Context() Context {
	return run.ctx
}

func (run *Run) reset(pass2 bool) {
	run.ctx.reset(pass2, run.Options)
	run.control.Reset()
	run.loopReg.Reset()
	run.deferred.Reset()
	run.macro = nil
	run.depth = 0
	run.macroDepth = 0
	run.includeDepth = 0
	run.file = ""
	run.listing = NewListing(run.TabSize)
	run.listing.CEX = run.CEX

	if pass2 {
		run.Symbols.NextPass()
		run.Diagnostics = nil
		if run.Object != nil {
			run.srec = srec.NewWriter(run.Object, run.Name)
		}
	}
}

// finish reports what the pass left open.
func (run *Run) finish() {
	ctx := &run.ctx

	if run.macro != nil {
		run.note(diag.ErrMacroUnclosed)
		run.macro = nil
	}
	if !run.control.Empty() {
		run.note(diag.ErrStructUnclosed)
	}
	if !ctx.End {
		run.note(diag.ErrEndMissing)
	}
}

// Assemble reads a source and runs both passes over it, writing the
// listing and the object code when their writers are set. Diagnostics
// are counted and collected, not returned; the error is an I/O failure.
func (run *Run) Assemble(in io.Reader) (err error) {
	lines, err := readLines(in)
	if err != nil {
		return
	}

	run.prescan(lines, "", 0)
	for pass := range 2 {
		run.reset(pass == 1)
		if run.Verbose {
			log.Printf("%v: pass %d", run.Name, pass+1)
		}
		for _, line := range lines {
			run.processLine(line)
			if run.ctx.End {
				break
			}
		}
		run.finish()
	}

	ctx := &run.ctx
	if run.Listing != nil {
		symbols := run.Symbols.All()
		if !ctx.opts.CRE {
			symbols = nil
		}
		run.listing.Finish(ctx.Errors, ctx.Warnings, symbols)
		err = errors.Join(err, run.listing.Flush(run.Listing, ctx.Start))
	}
	if run.srec != nil {
		err = errors.Join(err, run.srec.Close(uint32(ctx.Start)))
	}
	err = errors.Join(err, run.ioErr)

	return
}

// AssembleFile assembles sourcePath, writing the listing to listingPath
// and the S-records to workPath. An empty path skips that output. INCLUDE
// files are found relative to the directory of sourcePath.
func (run *Run) AssembleFile(sourcePath, listingPath, workPath string) (status Status, err error) {
	in, err := os.Open(sourcePath)
	if err != nil {
		return STATUS_SEVERE, &ErrOpen{Path: sourcePath, Err: err}
	}
	defer in.Close()

	var outputs []*os.File
	defer func() {
		for _, out := range outputs {
			err = errors.Join(err, out.Close())
		}
	}()

	create := func(path string) (w *bufio.Writer, err error) {
		out, err := os.Create(path)
		if err != nil {
			return nil, &ErrOpen{Path: path, Err: err}
		}
		outputs = append(outputs, out)
		return bufio.NewWriter(out), nil
	}

	var lst, obj *bufio.Writer
	if len(listingPath) > 0 {
		if lst, err = create(listingPath); err != nil {
			return STATUS_SEVERE, err
		}
		run.Listing = lst
	}
	if len(workPath) > 0 {
		if obj, err = create(workPath); err != nil {
			return STATUS_SEVERE, err
		}
		run.Object = obj
	}
	run.Name = sourcePath
	run.Files = os.DirFS(filepath.Dir(sourcePath))

	err = run.Assemble(in)
	if lst != nil {
		err = errors.Join(err, lst.Flush())
	}
	if obj != nil {
		err = errors.Join(err, obj.Flush())
	}
	return
}

// AssembleFile assembles one file with a new Run.
func AssembleFile(sourcePath, listingPath, workPath string, opts Options) (Status, error) {
	return NewRun(opts).AssembleFile(sourcePath, listingPath, workPath)
}
