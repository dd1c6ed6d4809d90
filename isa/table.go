package isa

import (
	op "github.com/ezrec/asm68k/operand"
)

const (
	bwl = SIZE_BYTE | SIZE_WORD | SIZE_LONG
	wl  = SIZE_WORD | SIZE_LONG
)

// sized is a flavor with a distinct opcode per size.
func sized(src, dst op.Mode, sizes Size, b, w, l uint16, enc Encoder) Flavor {
	return Flavor{Source: src, Dest: dst, Sizes: sizes, Byte: b, Word: w, Long: l, Encode: enc}
}

// fixed is a flavor with one opcode for its sizes.
func fixed(src, dst op.Mode, sizes Size, mask uint16, enc Encoder) Flavor {
	return sized(src, dst, sizes, mask, mask, mask, enc)
}

// bitfield is a 68020 bit field flavor.
func bitfield(src, dst op.Mode, mask uint16, enc Encoder) Flavor {
	fl := fixed(src, dst, SIZE_NONE, mask, enc)
	fl.Bitfield = true
	return fl
}

// Condition codes of Bcc and DBcc, by name.
var Conditions = map[string]uint16{
	"T":  0x0,
	"F":  0x1,
	"HI": 0x2,
	"LS": 0x3,
	"CC": 0x4,
	"HS": 0x4,
	"CS": 0x5,
	"LO": 0x5,
	"NE": 0x6,
	"EQ": 0x7,
	"VC": 0x8,
	"VS": 0x9,
	"PL": 0xa,
	"MI": 0xb,
	"GE": 0xc,
	"LT": 0xd,
	"GT": 0xe,
	"LE": 0xf,
}

var instructions = map[string]*Instruction{}

func define(name string, flavors ...Flavor) {
	instructions[name] = &Instruction{Name: name, Flavors: flavors}
}

// arith defines ADD, SUB and friends. base is the opcode of <ea>,Dn,
// imm the opcode of the immediate form and quickMask of the quick form.
func arith(name string, base uint16, imm uint16, quickMask uint16) {
	ea2dn := sized(op.MODE_ALL, op.MODE_DN, bwl, base, base|0x0040, base|0x0080, encodeToReg)
	dn2ea := sized(op.MODE_DN, op.MODE_MEM_ALT, bwl, base|0x0100, base|0x0140, base|0x0180, encodeFromReg)
	ea2an := sized(op.MODE_ALL, op.MODE_AN, wl, 0, base|0x00c0, base|0x01c0, encodeToReg)
	imm2ea := sized(op.MODE_IMMEDIATE, op.MODE_DATA_ALT, bwl, imm, imm|0x0040, imm|0x0080, encodeImmediate)
	addQ := sized(op.MODE_IMMEDIATE, op.MODE_ALTERABLE, bwl, quickMask, quickMask|0x0040, quickMask|0x0080, encodeQuick)

	define(name, ea2dn, dn2ea, ea2an, imm2ea)
	define(name+"A", ea2an)
	define(name+"I", imm2ea)
	define(name+"Q", addQ)
}

// logic defines AND and OR.
func logic(name string, base uint16, imm uint16) {
	ea2dn := sized(op.MODE_DATA, op.MODE_DN, bwl, base, base|0x0040, base|0x0080, encodeToReg)
	dn2ea := sized(op.MODE_DN, op.MODE_MEM_ALT, bwl, base|0x0100, base|0x0140, base|0x0180, encodeFromReg)
	imm2ea := sized(op.MODE_IMMEDIATE, op.MODE_DATA_ALT, bwl, imm, imm|0x0040, imm|0x0080, encodeImmediate)

	define(name, ea2dn, dn2ea, imm2ea)
	define(name+"I", imm2ea)
}

// shift defines a shift or rotate. reg is the opcode of the register
// form, mem the opcode of the memory form.
func shift(name string, reg uint16, mem uint16) {
	define(name,
		fixed(op.MODE_MEM_ALT, op.MODE_NONE, SIZE_WORD, mem, encodeSingle),
		sized(op.MODE_IMMEDIATE, op.MODE_DN, bwl, reg, reg|0x0040, reg|0x0080, encodeShiftQuick),
		sized(op.MODE_DN, op.MODE_DN, bwl, reg|0x0020, reg|0x0060, reg|0x00a0, encodeShiftReg),
	)
}

// single defines CLR, NEG, NOT and TST.
func single(name string, base uint16) {
	define(name, sized(op.MODE_DATA_ALT, op.MODE_NONE, bwl, base, base|0x0040, base|0x0080, encodeSingle))
}

func init() {
	moveA := sized(op.MODE_ALL, op.MODE_AN, wl, 0, 0x3000, 0x2000, encodeMove)
	define("MOVE",
		sized(op.MODE_ALL, op.MODE_DATA_ALT, bwl, 0x1000, 0x3000, 0x2000, encodeMove),
		moveA,
	)
	define("MOVEA", moveA)
	define("MOVEQ", fixed(op.MODE_IMMEDIATE, op.MODE_DN, SIZE_LONG, 0x7000, encodeMoveq))

	arith("ADD", 0xd000, 0x0600, 0x5000)
	arith("SUB", 0x9000, 0x0400, 0x5100)

	cmpA := sized(op.MODE_ALL, op.MODE_AN, wl, 0, 0xb0c0, 0xb1c0, encodeToReg)
	cmpI := sized(op.MODE_IMMEDIATE, op.MODE_DATA_ALT, bwl, 0x0c00, 0x0c40, 0x0c80, encodeImmediate)
	cmpM := sized(op.MODE_AN_POST, op.MODE_AN_POST, bwl, 0xb108, 0xb148, 0xb188, encodeCmpm)
	define("CMP",
		sized(op.MODE_ALL, op.MODE_DN, bwl, 0xb000, 0xb040, 0xb080, encodeToReg),
		cmpA,
		cmpI,
		cmpM,
	)
	define("CMPA", cmpA)
	define("CMPI", cmpI)
	define("CMPM", cmpM)

	logic("AND", 0xc000, 0x0200)
	logic("OR", 0x8000, 0x0000)

	eorI := sized(op.MODE_IMMEDIATE, op.MODE_DATA_ALT, bwl, 0x0a00, 0x0a40, 0x0a80, encodeImmediate)
	define("EOR",
		sized(op.MODE_DN, op.MODE_DATA_ALT, bwl, 0xb100, 0xb140, 0xb180, encodeFromReg),
		eorI,
	)
	define("EORI", eorI)

	define("MULS", fixed(op.MODE_DATA, op.MODE_DN, SIZE_WORD, 0xc1c0, encodeToReg))
	define("MULU", fixed(op.MODE_DATA, op.MODE_DN, SIZE_WORD, 0xc0c0, encodeToReg))
	define("DIVS", fixed(op.MODE_DATA, op.MODE_DN, SIZE_WORD, 0x81c0, encodeToReg))
	define("DIVU", fixed(op.MODE_DATA, op.MODE_DN, SIZE_WORD, 0x80c0, encodeToReg))

	single("CLR", 0x4200)
	single("NEG", 0x4400)
	single("NOT", 0x4600)
	single("TST", 0x4a00)

	define("EXT", sized(op.MODE_DN, op.MODE_NONE, wl, 0, 0x4880, 0x48c0, encodeRegister))
	define("SWAP", fixed(op.MODE_DN, op.MODE_NONE, SIZE_WORD, 0x4840, encodeRegister))

	define("LEA", fixed(op.MODE_CONTROL, op.MODE_AN, SIZE_LONG, 0x41c0, encodeToReg))
	define("PEA", fixed(op.MODE_CONTROL, op.MODE_NONE, SIZE_LONG, 0x4840, encodeSingle))
	define("JMP", fixed(op.MODE_CONTROL, op.MODE_NONE, SIZE_NONE, 0x4ec0, encodeSingle))
	define("JSR", fixed(op.MODE_CONTROL, op.MODE_NONE, SIZE_NONE, 0x4e80, encodeSingle))
	define("TRAP", fixed(op.MODE_IMMEDIATE, op.MODE_NONE, SIZE_NONE, 0x4e40, encodeTrap))

	define("NOP", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0x4e71, encodeInherent))
	define("RTS", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0x4e75, encodeInherent))
	define("RTE", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0x4e73, encodeInherent))
	define("RESET", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0x4e70, encodeInherent))
	define("ILLEGAL", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0x4afc, encodeInherent))
	define("SIMHALT", fixed(op.MODE_NONE, op.MODE_NONE, SIZE_NONE, 0xffff, encodeSimhalt))

	label := op.MODE_ABS_SHORT | op.MODE_ABS_LONG
	for cc, code := range Conditions {
		mask := 0x6000 | code<<8
		branch := fixed(label, op.MODE_NONE, SIZE_SHORT|bwl, mask, encodeBranch)
		switch cc {
		case "T":
			define("BRA", branch)
		case "F":
			define("BSR", branch)
		default:
			define("B"+cc, branch)
		}
		define("DB"+cc, fixed(op.MODE_DN, label, SIZE_WORD, 0x50c8|code<<8, encodeDbcc))
	}
	instructions["DBRA"] = &Instruction{Name: "DBRA", Flavors: instructions["DBF"].Flavors}

	shift("ASL", 0xe100, 0xe1c0)
	shift("ASR", 0xe000, 0xe0c0)
	shift("LSL", 0xe108, 0xe3c0)
	shift("LSR", 0xe008, 0xe2c0)
	shift("ROXL", 0xe110, 0xe5c0)
	shift("ROXR", 0xe010, 0xe4c0)
	shift("ROL", 0xe118, 0xe7c0)
	shift("ROR", 0xe018, 0xe6c0)

	field := op.MODE_DN | op.MODE_CONTROL
	fieldAlt := op.MODE_DN | op.MODE_CONTROL_ALT
	define("BFTST", bitfield(field, op.MODE_NONE, 0xe8c0, encodeBitfield))
	define("BFCHG", bitfield(fieldAlt, op.MODE_NONE, 0xeac0, encodeBitfield))
	define("BFCLR", bitfield(fieldAlt, op.MODE_NONE, 0xecc0, encodeBitfield))
	define("BFSET", bitfield(fieldAlt, op.MODE_NONE, 0xeec0, encodeBitfield))
	define("BFEXTU", bitfield(field, op.MODE_DN, 0xe9c0, encodeBitfieldTo))
	define("BFEXTS", bitfield(field, op.MODE_DN, 0xebc0, encodeBitfieldTo))
	define("BFFFO", bitfield(field, op.MODE_DN, 0xedc0, encodeBitfieldTo))
	define("BFINS", bitfield(op.MODE_DN, fieldAlt, 0xefc0, encodeBitfieldFrom))
}
