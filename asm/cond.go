package asm

import (
	"github.com/ezrec/asm68k/diag"
)

// ifTests are the numeric conditionals. Each reports whether the guarded
// lines are assembled for a value.
var ifTests = map[string](func(value int32) bool){
	"IFEQ": func(value int32) bool { return value == 0 },
	"IFNE": func(value int32) bool { return value != 0 },
	"IFLT": func(value int32) bool { return value < 0 },
	"IFLE": func(value int32) bool { return value <= 0 },
	"IFGT": func(value int32) bool { return value > 0 },
	"IFGE": func(value int32) bool { return value >= 0 },
}

// isConditional reports whether name is a conditional assembly directive.
func isConditional(name string) bool {
	_, ok := ifTests[name]
	return ok || name == "IFC" || name == "IFNC" || name == "ENDC"
}

// conditional runs a conditional assembly directive. ok is false when the
// line is not one.
func (run *Run) conditional(toks Tokens) (ok bool, err error) {
	ctx := &run.ctx

	name := toks.Text(1)
	if !isConditional(name) {
		return
	}
	ok = true

	if toks.At(0).Present {
		err = diag.ErrLabelError
	}

	if name == "ENDC" {
		if ctx.NestLevel > 0 {
			ctx.NestLevel--
		}
		if ctx.NestLevel == 0 {
			ctx.Skip = false
		} else {
			ctx.printCond = false
		}
		return
	}

	if ctx.Skip {
		ctx.NestLevel++
		return
	}

	ctx.printCond = true

	var include bool
	switch name {
	case "IFC":
		include = toks.Text(2) == toks.Text(3)
	case "IFNC":
		if !toks.At(3).Present {
			err = diag.Worst(err, diag.ErrInvalidArg)
			return
		}
		include = toks.Text(2) != toks.Text(3)
	default:
		if !toks.At(2).Present {
			err = diag.Worst(err, diag.ErrInvalidArg)
			return
		}
		value, _, evalErr := run.eval.Value(toks.Text(2))
		if evalErr != nil {
			err = diag.Worst(err, evalErr)
			return
		}
		include = ifTests[name](value)
	}

	if !include {
		ctx.Skip = true
		ctx.NestLevel++
	}

	return
}
