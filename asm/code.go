package asm

import (
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
	"github.com/ezrec/asm68k/operand"
)

func isLabelStart(c byte) bool {
	return isAlpha(c) || c == '.' || c == '_'
}

// define binds a label to a value. An empty label is ignored.
func (run *Run) define(label string, value int32) error {
	if len(label) == 0 {
		return nil
	}
	return run.Symbols.Define(label, value, run.ctx.Pass2, true, run.ctx.LineNo)
}

// splitLabel separates the label of a line from its operation. A label
// starts in column 0, or ends in ':'.
func splitLabel(line string) (label string, rest string, err error) {
	rest = skipSpace(line)
	column0 := len(rest) == len(line)
	if len(rest) == 0 {
		return
	}
	if !isLabelStart(rest[0]) {
		if column0 {
			err = diag.ErrIllegalSymbol
		}
		return
	}

	end := 1
	for end < len(rest) && isLabelChar(rest[end]) {
		end++
	}
	switch {
	case end < len(rest) && rest[end] == ':':
		label = rest[:end]
		rest = rest[end+1:]
	case column0 && (end == len(rest) || isSpace(rest[end])):
		label = rest[:end]
		rest = rest[end:]
	case column0:
		err = diag.ErrIllegalSymbol
		return
	default:
		return
	}
	if len(label) >= SIGCHARS {
		err = diag.ErrLabelTooLong
	}
	rest = skipSpace(rest)
	return
}

// createCode assembles one upper cased source line.
func (run *Run) createCode(line string) (err error) {
	ctx := &run.ctx

	label, rest, err := splitLabel(line)
	if diag.Fatal(err) {
		return
	}
	if len(rest) == 0 || rest[0] == ';' || rest[0] == '*' {
		err = diag.Worst(err, run.define(label, ctx.Loc))
		return
	}

	ent, size, rest, lerr := run.instLookup(rest)
	err = diag.Worst(err, lerr)
	if diag.Fatal(lerr) && lerr != diag.ErrInvSizeCode {
		err = diag.Worst(err, run.define(label, ctx.Loc))
		return
	}

	op := &operation{
		Name:  ent.name,
		Size:  size,
		Label: label,
		Args:  skipSpace(rest),
		Text:  line,
	}

	switch {
	case ent.inst != nil:
		if ctx.Loc&1 != 0 {
			ctx.Loc++
			run.begin()
		}
		err = diag.Worst(err, run.define(label, ctx.Loc))
		err = diag.Worst(err, run.encode(ent.inst, size, op.Args))
	case ent.dir != nil:
		err = diag.Worst(err, ent.dir(run, op))
	default:
		err = diag.Worst(err, run.expand(ent.macro, op))
	}
	return
}

// encode parses the operands of an instruction and emits the first
// flavor that accepts them.
func (run *Run) encode(inst *isa.Instruction, size isa.Size, text string) (err error) {
	var (
		src, dst     *operand.Descriptor
		field        uint16
		fieldDone    bool
		afterSource  string
		parsedSource bool
		parsedDest   bool
	)

	for n := range inst.Flavors {
		fl := &inst.Flavors[n]

		if fl.Source != operand.MODE_NONE {
			if !parsedSource {
				op, rest, perr := operand.Parse(text, run.eval)
				if perr != nil {
					return perr
				}
				src = &op
				if fl.Bitfield && !strings.HasPrefix(rest, ",") {
					field, rest, err = run.fieldParse(rest)
					if diag.Fatal(err) {
						return
					}
					fieldDone = true
				}
				afterSource = rest
				parsedSource = true
			}
			if !fl.Source.Has(src.Mode) {
				continue
			}
		}

		switch {
		case fl.Source == operand.MODE_NONE:
		case fl.Dest == operand.MODE_NONE:
			if strings.HasPrefix(afterSource, ",") {
				continue
			}
			if len(afterSource) > 0 && !isSpace(afterSource[0]) {
				return diag.Worst(err, diag.ErrSyntax)
			}
		default:
			if !parsedDest {
				if !strings.HasPrefix(afterSource, ",") {
					return diag.Worst(err, diag.ErrCommaExpected)
				}
				op, rest, perr := operand.Parse(afterSource[1:], run.eval)
				if perr != nil {
					return diag.Worst(err, perr)
				}
				dst = &op
				if fl.Bitfield && !fieldDone {
					if !strings.HasPrefix(rest, "{") {
						return diag.Worst(err, diag.ErrBadBitfield)
					}
					var ferr error
					field, rest, ferr = run.fieldParse(rest)
					err = diag.Worst(err, ferr)
					if diag.Fatal(ferr) {
						return
					}
					fieldDone = true
				}
				if len(rest) > 0 && !isSpace(rest[0]) {
					return diag.Worst(err, diag.ErrSyntax)
				}
				parsedDest = true
			}
			if !fl.Dest.Has(dst.Mode) {
				continue
			}
		}

		ops := &isa.Operands{Source: src, Field: field}
		if fl.Dest != operand.MODE_NONE {
			ops.Dest = dst
		}
		mask, merr := fl.Mask(size)
		err = diag.Worst(err, merr)
		err = diag.Worst(err, fl.Encode(run, mask, size, ops))
		return
	}

	return diag.Worst(err, diag.ErrInvAddrMode)
}
