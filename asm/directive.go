package asm

import (
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

// operation is a line handed to a directive or a macro call.
type operation struct {
	Name  string   // Upper case mnemonic.
	Size  isa.Size // Size suffix, or SIZE_NONE.
	Label string   // Label of the line, or "".
	Args  string   // Text after the mnemonic.
	Text  string   // Upper cased line.
}

type handler func(run *Run, op *operation) error

var directives map[string]handler

func init() {
	directives = map[string]handler{
		"ORG":     (*Run).dirOrg,
		"END":     (*Run).dirEnd,
		"EQU":     (*Run).dirEqu,
		"SET":     (*Run).dirSet,
		"DC":      (*Run).dirDc,
		"DS":      (*Run).dirDs,
		"DCB":     (*Run).dirDcb,
		"EVEN":    (*Run).dirEven,
		"OPT":     (*Run).dirOpt,
		"SECTION": (*Run).dirSection,
		"OFFSET":  (*Run).dirOffset,
		"LIST":    (*Run).dirList,
		"NOLIST":  (*Run).dirNolist,
		"MACRO":   (*Run).macroDefine,
		"ENDM":    (*Run).dirEndm,
		"INCLUDE": (*Run).dirInclude,
	}

	for _, name := range []string{
		"IF", "ELSE", "ENDI",
		"WHILE", "ENDW",
		"REPEAT", "UNTIL",
		"FOR", "ENDF",
		"DBLOOP", "UNLESS",
	} {
		directives[name] = (*Run).structure
	}
}

// value evaluates a directive argument. Whitespace may follow it.
func (run *Run) value(text string) (value int32, backRef bool, err error) {
	value, backRef, rest, err := run.eval.Eval(text)
	if err == nil && len(rest) > 0 && !isSpace(rest[0]) {
		err = diag.ErrSyntax
	}
	return
}

// known evaluates an argument that must not refer forward.
func (run *Run) known(text string) (value int32, err error) {
	value, backRef, err := run.value(text)
	if err == nil && !backRef {
		err = diag.ErrInvForwardRef
	}
	return
}

// align moves the location counter to a word boundary for sizes other
// than byte.
func (run *Run) align(size isa.Size) {
	ctx := &run.ctx
	if size != isa.SIZE_BYTE && ctx.Loc&1 != 0 {
		ctx.Loc++
		run.begin()
	}
}

// dataSize is the size of a data directive, word by default.
func dataSize(size isa.Size) (isa.Size, error) {
	switch size {
	case isa.SIZE_NONE:
		return isa.SIZE_WORD, nil
	case isa.SIZE_SHORT:
		return isa.SIZE_WORD, diag.ErrInvSizeCode
	}
	return size, nil
}

// ORG address
func (run *Run) dirOrg(op *operation) (err error) {
	ctx := &run.ctx

	value, err := run.known(op.Args)
	if err != nil {
		return
	}
	ctx.offset = false
	ctx.Loc = value
	run.begin()
	return run.define(op.Label, ctx.Loc)
}

// END [start]
func (run *Run) dirEnd(op *operation) (err error) {
	ctx := &run.ctx

	err = run.define(op.Label, ctx.Loc)
	ctx.End = true
	if len(op.Args) == 0 || op.Args[0] == ';' || op.Args[0] == '*' {
		return
	}
	start, _, verr := run.value(op.Args)
	if verr != nil {
		return diag.Worst(err, verr)
	}
	ctx.Start = start
	return
}

// equate binds the label to the argument value.
func (run *Run) equate(op *operation, permanent bool) (err error) {
	ctx := &run.ctx

	if len(op.Label) == 0 {
		return diag.ErrLabelRequired
	}
	value, _, err := run.value(op.Args)
	if err != nil {
		return
	}
	run.listing.Begin(value, true, ctx.text, ctx.ident)
	return run.Symbols.Define(op.Label, value, ctx.Pass2, permanent, ctx.LineNo)
}

// label EQU value
func (run *Run) dirEqu(op *operation) error {
	return run.equate(op, true)
}

// label SET value
func (run *Run) dirSet(op *operation) error {
	return run.equate(op, false)
}

// quoted returns the characters of a string constant at the start of
// text, with "''" standing for a quote. ok is false when the constant is
// followed by an operator, making it part of an expression.
func quoted(text string) (chars []byte, rest string, ok bool) {
	if len(text) == 0 || text[0] != '\'' {
		return
	}
	n := 1
	for n < len(text) {
		if text[n] == '\'' {
			if n+1 < len(text) && text[n+1] == '\'' {
				chars = append(chars, '\'')
				n += 2
				continue
			}
			break
		}
		chars = append(chars, text[n])
		n++
	}
	if n >= len(text) {
		// Unterminated.
		return nil, "", false
	}
	rest = text[n+1:]
	if len(rest) > 0 && rest[0] != ',' && !isSpace(rest[0]) {
		return nil, "", false
	}
	return chars, rest, true
}

// DC.size value[,value...]
func (run *Run) dirDc(op *operation) (err error) {
	ctx := &run.ctx

	size, err := dataSize(op.Size)
	run.align(size)
	err = diag.Worst(err, run.define(op.Label, ctx.Loc))

	args := op.Args
	for {
		if chars, rest, ok := quoted(args); ok {
			for _, c := range chars {
				run.Emit(isa.SIZE_BYTE, uint32(c))
			}
			for pad := len(chars); pad%size.Bytes() != 0; pad++ {
				run.Emit(isa.SIZE_BYTE, 0)
			}
			args = rest
		} else {
			value, _, rest, verr := run.eval.Eval(args)
			if verr != nil {
				value = 0
				err = diag.Worst(err, verr)
			}
			switch {
			case size == isa.SIZE_BYTE && (value < -128 || value > 255):
				err = diag.Worst(err, diag.ErrNumberTooBig)
			case size == isa.SIZE_WORD && (value < -32768 || value > 65535):
				err = diag.Worst(err, diag.ErrNumberTooBig)
			}
			run.Emit(size, uint32(value))
			args = rest
		}

		if !strings.HasPrefix(args, ",") {
			break
		}
		args = args[1:]
	}

	if len(args) > 0 && !isSpace(args[0]) {
		err = diag.Worst(err, diag.ErrSyntax)
	}
	return
}

// DS.size count
func (run *Run) dirDs(op *operation) (err error) {
	ctx := &run.ctx

	size, err := dataSize(op.Size)
	count, kerr := run.known(op.Args)
	if kerr != nil {
		return diag.Worst(err, kerr)
	}
	if count < 0 {
		return diag.Worst(err, diag.ErrInvalidArg)
	}
	run.align(size)
	err = diag.Worst(err, run.define(op.Label, ctx.Loc))
	ctx.Loc += count * int32(size.Bytes())
	return
}

// DCB.size count,value
func (run *Run) dirDcb(op *operation) (err error) {
	ctx := &run.ctx

	size, err := dataSize(op.Size)
	count, backRef, rest, verr := run.eval.Eval(op.Args)
	if verr != nil {
		return diag.Worst(err, verr)
	}
	if !backRef {
		return diag.Worst(err, diag.ErrInvForwardRef)
	}
	if count < 0 {
		return diag.Worst(err, diag.ErrInvalidArg)
	}
	if !strings.HasPrefix(rest, ",") {
		return diag.Worst(err, diag.ErrCommaExpected)
	}
	value, _, verr := run.value(rest[1:])
	err = diag.Worst(err, verr)

	run.align(size)
	err = diag.Worst(err, run.define(op.Label, ctx.Loc))
	for range count {
		run.Emit(size, uint32(value))
	}
	return
}

// EVEN
func (run *Run) dirEven(op *operation) error {
	run.align(isa.SIZE_WORD)
	return run.define(op.Label, run.ctx.Loc)
}

// OPT option[,option...]
func (run *Run) dirOpt(op *operation) (err error) {
	ctx := &run.ctx

	args, _, _ := strings.Cut(op.Args, " ")
	args, _, _ = strings.Cut(args, "\t")
	for _, name := range strings.Split(args, ",") {
		on := true
		if strings.HasPrefix(name, "NO") {
			on = false
			name = name[2:]
		}
		switch name {
		case "CEX":
			ctx.opts.CEX = on
			run.listing.CEX = on
		case "SEX":
			ctx.opts.SEX = on
		case "MEX":
			ctx.opts.MEX = on
		case "CRE":
			ctx.opts.CRE = on
		case "BITFIELD":
			ctx.opts.Bitfield = on
		default:
			err = diag.ErrInvalidArg
		}
	}
	return
}

// SECTION number
func (run *Run) dirSection(op *operation) (err error) {
	ctx := &run.ctx

	section, err := run.known(op.Args)
	if err != nil {
		return
	}
	if section < 0 || section >= SECTION_COUNT {
		return diag.ErrInvalidArg
	}
	if !ctx.offset {
		ctx.SectionLoc[ctx.Section] = ctx.Loc
	}
	ctx.offset = false
	ctx.Section = int(section)
	ctx.Loc = ctx.SectionLoc[section]
	run.begin()
	return run.define(op.Label, ctx.Loc)
}

// OFFSET address
func (run *Run) dirOffset(op *operation) (err error) {
	ctx := &run.ctx

	value, err := run.known(op.Args)
	if err != nil {
		return
	}
	if !ctx.offset {
		ctx.SectionLoc[ctx.Section] = ctx.Loc
	}
	ctx.offset = true
	ctx.Loc = value
	run.begin()
	return run.define(op.Label, ctx.Loc)
}

// LIST
func (run *Run) dirList(op *operation) error {
	run.ctx.list = run.List
	return run.define(op.Label, run.ctx.Loc)
}

// NOLIST
func (run *Run) dirNolist(op *operation) error {
	run.ctx.list = false
	return run.define(op.Label, run.ctx.Loc)
}

// ENDM outside of a macro definition.
func (run *Run) dirEndm(op *operation) error {
	return diag.ErrNoMacro
}

// splitArgs splits the arguments of a macro call at commas. Commas inside
// quotes or parentheses do not split, and whitespace outside them ends
// the arguments.
func splitArgs(text string) (args []string) {
	start := 0
	depth := 0
	quote := false
	n := 0
	for ; n < len(text); n++ {
		c := text[n]
		if quote {
			if c == '\'' {
				quote = false
			}
			continue
		}
		switch {
		case c == '\'':
			quote = true
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ',' && depth == 0:
			args = append(args, text[start:n])
			start = n + 1
		case isSpace(c) && depth == 0:
			args = append(args, text[start:n])
			return
		}
	}
	if n > start || len(args) > 0 {
		args = append(args, text[start:n])
	}
	return
}
