package asm

import (
	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

// SIGCHARS is the number of significant characters in a name.
const SIGCHARS = 32

// entry is the meaning of a mnemonic. Exactly one of inst, dir and
// macro is set.
type entry struct {
	name  string
	inst  *isa.Instruction
	dir   handler
	macro *Macro
}

// reserved reports whether word names an instruction, a directive or a
// conditional. Macro names are not reserved, so "NAME MACRO" in column 0
// still defines NAME.
func (run *Run) reserved(word string) bool {
	if _, ok := isa.Lookup(word); ok {
		return true
	}
	if _, ok := directives[word]; ok {
		return true
	}
	return isConditional(word)
}

// instLookup reads the mnemonic and size suffix at the start of text, and
// finds what it names. rest is the text after the suffix.
func (run *Run) instLookup(text string) (ent entry, size isa.Size, rest string, err error) {
	ctx := &run.ctx

	if len(text) == 0 {
		err = diag.ErrInvOpcode
		return
	}
	end := 1
	for end < len(text) && (isAlnum(text[end]) || text[end] == '_') {
		end++
	}
	name := text[:end]
	if len(name) > SIGCHARS {
		name = name[:SIGCHARS]
	}
	rest = text[end:]
	ent.name = name

	if len(rest) > 0 && rest[0] == '.' {
		if len(rest) > 2 && !isSpace(rest[2]) {
			err = diag.ErrSyntax
			return
		}
		if len(rest) == 1 || isSpace(rest[1]) {
			size = isa.SIZE_WORD
			rest = rest[1:]
		} else {
			var ok bool
			size, ok = isa.SizeOf(rest[1])
			if !ok {
				err = diag.ErrInvSizeCode
			}
			rest = rest[2:]
		}
	} else if len(rest) > 0 && !isSpace(rest[0]) {
		err = diag.ErrSyntax
		return
	}

	if inst, ok := isa.Lookup(name); ok {
		if inst.Bitfield() && !ctx.opts.Bitfield {
			err = diag.Worst(err, diag.ErrInvOpcode)
			return
		}
		ent.inst = inst
		return
	}

	if dir, ok := directives[name]; ok {
		ent.dir = dir
		return
	}

	sym, ok := run.Symbols.Lookup(name, 0)
	if ok && sym.Macro() {
		ent.macro = run.macros[name]
		if ctx.Pass2 && !sym.BackRef() {
			err = diag.Worst(err, diag.ErrForwardRef)
		}
		return
	}
	if mac, found := run.macros[name]; !ok && found {
		// Defined later in the source.
		ent.macro = mac
		if ctx.Pass2 {
			err = diag.Worst(err, diag.ErrForwardRef)
		}
		return
	}

	err = diag.Worst(err, diag.ErrInvOpcode)
	return
}
