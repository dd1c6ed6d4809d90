package asm

import (
	"fmt"
)

// Kind is the structured statement that generated a label. It is kept in
// the top four bits of the label number.
type Kind uint32

const (
	KIND_IF     = Kind(0x0)
	KIND_WHILE  = Kind(0x1)
	KIND_FOR    = Kind(0x2)
	KIND_REPEAT = Kind(0x3)
	KIND_DBLOOP = Kind(0x4)

	KIND_COUNT = 5
)

const kindShift = 28

// kindOf recovers the statement kind of a label number.
func kindOf(label uint32) Kind {
	return Kind(label >> kindShift)
}

// labelName is the symbol of a generated label.
func labelName(label uint32) string {
	return fmt.Sprintf("_%08X", label)
}

// SECTION_COUNT is the number of SECTION location counters.
const SECTION_COUNT = 16

// Context is the assembler state of a single pass. A Run resets it at the
// start of every pass.
type Context struct {
	Loc        int32                // Location counter.
	SectionLoc [SECTION_COUNT]int32 // Saved location counter of each section.
	Section    int                  // Current section.
	Pass2      bool                 // Second pass.
	End        bool                 // END directive seen.
	Start      int32                // Starting address given to END.
	Skip       bool                 // Skipping lines by conditional assembly.
	NestLevel  int                  // Conditionals opened while skipping.
	LineNo     int                  // Source line number.
	Errors     int                  // Errors reported in this pass.
	Warnings   int                  // Warnings reported in this pass.

	labels [KIND_COUNT]uint32 // Next label number of each kind.
	opts   Options            // Options, as changed by OPT.
	list   bool               // LIST or NOLIST.
	offset bool               // In an OFFSET section.
	unique int                // Macro call counter for \@.

	text      string // Line being assembled.
	ident     string // Listing tag of generated lines.
	skipList  bool   // Line already listed, or hidden.
	listed    bool   // Line already listed.
	printCond bool   // List the conditional result.
}

func (ctx *Context) reset(pass2 bool, opts Options) {
	*ctx = Context{
		Pass2: pass2,
		opts:  opts,
		list:  opts.List,
	}
	for kind := range ctx.labels {
		ctx.labels[kind] = uint32(kind) << kindShift
	}
}
