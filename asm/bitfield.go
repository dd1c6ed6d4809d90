package asm

import (
	"strings"

	"github.com/ezrec/asm68k/diag"
)

// dataRegister reads a Dn that ends a bit field part.
func dataRegister(text string) (reg int, ok bool) {
	if len(text) < 3 || text[0] != 'D' || text[1] < '0' || text[1] > '7' {
		return
	}
	if text[2] != ':' && text[2] != '}' && !isSpace(text[2]) {
		return
	}
	return int(text[1] - '0'), true
}

// fieldPart reads the offset or width of a bit field, a data register or
// an immediate value within lo..hi. Blanks around the part are skipped.
func (run *Run) fieldPart(text string, lo, hi int32) (reg int, isReg bool, value int32, rest string, err error) {
	text = skipSpace(text)
	if reg, isReg = dataRegister(text); isReg {
		rest = skipSpace(text[2:])
		return
	}

	text = skipSpace(strings.TrimPrefix(text, "#"))
	value, backRef, rest, eerr := run.eval.Eval(text)
	rest = skipSpace(rest)
	if eerr != nil {
		err = diag.ErrBadBitfield
		return
	}
	if !backRef {
		err = diag.ErrInvForwardRef
	}
	if value < lo || value > hi {
		err = diag.ErrBadBitfield
	}
	return
}

// fieldParse reads a {offset:width} bit field. The offset is either Dn,
// which sets bit 11 with the register in bits 8..6, or 0..31 in bits
// 10..6. The width is either Dn, which sets bit 5 with the register in
// bits 2..0, or 1..32 in bits 4..0 with 32 written as 0.
func (run *Run) fieldParse(text string) (field uint16, rest string, err error) {
	if !strings.HasPrefix(text, "{") {
		err = diag.ErrBadBitfield
		return
	}

	reg, isReg, value, rest, perr := run.fieldPart(text[1:], 0, 31)
	err = perr
	if perr == diag.ErrBadBitfield {
		return
	}
	if isReg {
		field |= 0x0800 | uint16(reg)<<6
	} else {
		field |= uint16(value) << 6
	}

	if !strings.HasPrefix(rest, ":") {
		err = diag.ErrBadBitfield
		return
	}

	reg, isReg, value, rest, perr = run.fieldPart(rest[1:], 1, 32)
	err = diag.Worst(err, perr)
	if perr == diag.ErrBadBitfield {
		return
	}
	if isReg {
		field |= 0x0020 | uint16(reg)
	} else {
		field |= uint16(value) & 0x1f
	}

	if !strings.HasPrefix(rest, "}") {
		err = diag.ErrBadBitfield
		return
	}
	rest = rest[1:]
	return
}
