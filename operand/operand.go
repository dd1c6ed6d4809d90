// Package operand parses 68000 effective address operands.
package operand

import (
	"strings"

	"github.com/ezrec/asm68k/diag"
)

// Mode is a set of addressing modes.
type Mode uint16

const (
	MODE_DN        = Mode(1 << iota) // Dn
	MODE_AN                          // An
	MODE_AN_IND                      // (An)
	MODE_AN_POST                     // (An)+
	MODE_AN_PRE                      // -(An)
	MODE_AN_DISP                     // d16(An)
	MODE_AN_INDEX                    // d8(An,Xn)
	MODE_ABS_SHORT                   // abs.W
	MODE_ABS_LONG                    // abs.L
	MODE_PC_DISP                     // d16(PC)
	MODE_PC_INDEX                    // d8(PC,Xn)
	MODE_IMMEDIATE                   // #imm
	MODE_NONE      = Mode(0)
)

// Addressing mode categories.
const (
	MODE_ALL         = Mode(1<<12 - 1)
	MODE_DATA        = MODE_ALL &^ MODE_AN
	MODE_MEMORY      = MODE_ALL &^ (MODE_DN | MODE_AN)
	MODE_CONTROL     = MODE_AN_IND | MODE_AN_DISP | MODE_AN_INDEX | MODE_ABS_SHORT | MODE_ABS_LONG | MODE_PC_DISP | MODE_PC_INDEX
	MODE_ALTERABLE   = MODE_ALL &^ (MODE_PC_DISP | MODE_PC_INDEX | MODE_IMMEDIATE)
	MODE_DATA_ALT    = MODE_DATA & MODE_ALTERABLE
	MODE_MEM_ALT     = MODE_MEMORY & MODE_ALTERABLE
	MODE_CONTROL_ALT = MODE_CONTROL & MODE_ALTERABLE
)

// Has reports whether any mode of sub is in mode.
func (mode Mode) Has(sub Mode) bool {
	return mode&sub != 0
}

var modeName = map[Mode]string{
	MODE_DN:        "Dn",
	MODE_AN:        "An",
	MODE_AN_IND:    "(An)",
	MODE_AN_POST:   "(An)+",
	MODE_AN_PRE:    "-(An)",
	MODE_AN_DISP:   "d16(An)",
	MODE_AN_INDEX:  "d8(An,Xn)",
	MODE_ABS_SHORT: "abs.W",
	MODE_ABS_LONG:  "abs.L",
	MODE_PC_DISP:   "d16(PC)",
	MODE_PC_INDEX:  "d8(PC,Xn)",
	MODE_IMMEDIATE: "#imm",
}

func (mode Mode) String() string {
	name, ok := modeName[mode]
	if ok {
		return name
	}
	names := []string{}
	for bit := MODE_DN; bit <= MODE_IMMEDIATE; bit <<= 1 {
		if mode&bit != 0 {
			names = append(names, modeName[bit])
		}
	}
	return strings.Join(names, "|")
}

// Evaluator evaluates the expression at the start of a string.
type Evaluator interface {
	Eval(text string) (value int32, backRef bool, rest string, err error)
}

// Descriptor is a parsed operand.
type Descriptor struct {
	Mode      Mode
	Reg       int   // Register number, 0..7.
	Value     int32 // Displacement, address, PC target or immediate.
	BackRef   bool  // Value uses only back references.
	Index     int   // Index register, 0..7 for Dn and 8..15 for An.
	IndexLong bool  // Index register is Xn.L.
	NoBase    bool  // PC form written without a displacement.
	Text      string
}

// EA returns the six bit mode and register field of the operand.
func (op *Descriptor) EA() uint16 {
	switch op.Mode {
	case MODE_DN:
		return 0<<3 | uint16(op.Reg)
	case MODE_AN:
		return 1<<3 | uint16(op.Reg)
	case MODE_AN_IND:
		return 2<<3 | uint16(op.Reg)
	case MODE_AN_POST:
		return 3<<3 | uint16(op.Reg)
	case MODE_AN_PRE:
		return 4<<3 | uint16(op.Reg)
	case MODE_AN_DISP:
		return 5<<3 | uint16(op.Reg)
	case MODE_AN_INDEX:
		return 6<<3 | uint16(op.Reg)
	case MODE_ABS_SHORT:
		return 7<<3 | 0
	case MODE_ABS_LONG:
		return 7<<3 | 1
	case MODE_PC_DISP:
		return 7<<3 | 2
	case MODE_PC_INDEX:
		return 7<<3 | 3
	case MODE_IMMEDIATE:
		return 7<<3 | 4
	}
	return 0
}

// Words returns the extension words of the operand. The size (1, 2 or 4
// bytes) applies to immediates, and ext is the address of the first
// extension word, used by the PC relative modes. The words are always
// returned, even with a range error, so the instruction length is stable.
func (op *Descriptor) Words(size int, ext int32) (words []uint16, err error) {
	switch op.Mode {
	case MODE_AN_DISP:
		if op.Value < -0x8000 || op.Value > 0x7fff {
			err = diag.ErrInvDisp
		}
		words = []uint16{uint16(op.Value)}
	case MODE_AN_INDEX:
		words = []uint16{op.brief(op.Value)}
		if op.Value < -0x80 || op.Value > 0x7f {
			err = diag.ErrInvDisp
		}
	case MODE_ABS_SHORT:
		if op.Value < -0x8000 || op.Value > 0x7fff {
			err = diag.ErrNumberTooBig
		}
		words = []uint16{uint16(op.Value)}
	case MODE_ABS_LONG:
		words = []uint16{uint16(op.Value >> 16), uint16(op.Value)}
	case MODE_PC_DISP:
		disp := op.Value - ext
		if op.NoBase {
			disp = op.Value
		}
		if disp < -0x8000 || disp > 0x7fff {
			err = diag.ErrInvDisp
		}
		words = []uint16{uint16(disp)}
	case MODE_PC_INDEX:
		disp := op.Value - ext
		if op.NoBase {
			disp = op.Value
		}
		words = []uint16{op.brief(disp)}
		if disp < -0x80 || disp > 0x7f {
			err = diag.ErrInvDisp
		}
	case MODE_IMMEDIATE:
		switch size {
		case 1:
			if op.Value < -0x80 || op.Value > 0xff {
				err = diag.ErrNumberTooBig
			}
			words = []uint16{uint16(op.Value) & 0xff}
		case 4:
			words = []uint16{uint16(op.Value >> 16), uint16(op.Value)}
		default:
			if op.Value < -0x8000 || op.Value > 0xffff {
				err = diag.ErrNumberTooBig
			}
			words = []uint16{uint16(op.Value)}
		}
	}
	return
}

// brief is the brief format index extension word.
func (op *Descriptor) brief(disp int32) uint16 {
	word := uint16(op.Index) << 12
	if op.IndexLong {
		word |= 1 << 11
	}
	return word | (uint16(disp) & 0xff)
}

// Size returns the number of bytes of extension words for an operand
// size of 1, 2 or 4 bytes.
func (op *Descriptor) Size(size int) int32 {
	switch op.Mode {
	case MODE_AN_DISP, MODE_AN_INDEX, MODE_ABS_SHORT, MODE_PC_DISP, MODE_PC_INDEX:
		return 2
	case MODE_ABS_LONG:
		return 4
	case MODE_IMMEDIATE:
		if size == 4 {
			return 4
		}
		return 2
	}
	return 0
}

func isIdentChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '$'
}

// register matches a register name at the start of text. The name must
// not continue as a symbol.
func register(text string) (reg int, addr bool, pc bool, width int, ok bool) {
	if len(text) < 2 {
		return
	}
	name := strings.ToUpper(text[:2])
	switch {
	case name[0] == 'D' && name[1] >= '0' && name[1] <= '7':
		reg = int(name[1] - '0')
	case name[0] == 'A' && name[1] >= '0' && name[1] <= '7':
		reg = int(name[1] - '0')
		addr = true
	case name == "SP":
		reg = 7
		addr = true
	case name == "PC":
		pc = true
	default:
		return
	}
	if len(text) > 2 && isIdentChar(text[2]) {
		return 0, false, false, 0, false
	}
	return reg, addr, pc, 2, true
}

// sizeSuffix matches a .W or .L suffix.
func sizeSuffix(text string) (long bool, width int, ok bool) {
	if len(text) < 2 || text[0] != '.' {
		return
	}
	if len(text) > 2 && isIdentChar(text[2]) {
		return
	}
	switch text[1] {
	case 'W', 'w':
		return false, 2, true
	case 'L', 'l':
		return true, 2, true
	}
	return
}

// index parses ",Xn[.W|.L])" after a base register.
func (op *Descriptor) index(text string) (rest string, err error) {
	if len(text) == 0 || text[0] != ',' {
		err = diag.ErrSyntax
		return
	}
	reg, addr, pc, width, ok := register(text[1:])
	if !ok || pc {
		err = diag.ErrInvAddrMode
		return
	}
	op.Index = reg
	if addr {
		op.Index += 8
	}
	rest = text[1+width:]
	if long, width, ok := sizeSuffix(rest); ok {
		op.IndexLong = long
		rest = rest[width:]
	}
	if len(rest) == 0 || rest[0] != ')' {
		err = diag.ErrSyntax
		return
	}
	rest = rest[1:]
	return
}

// base parses "(An)", "(An,Xn)", "(PC)" or "(PC,Xn)" following a
// displacement.
func (op *Descriptor) base(text string) (rest string, err error) {
	reg, addr, pc, width, ok := register(text[1:])
	if !ok || !(addr || pc) {
		err = diag.ErrInvAddrMode
		return
	}
	op.Reg = reg
	rest = text[1+width:]
	if len(rest) == 0 {
		err = diag.ErrSyntax
		return
	}
	switch rest[0] {
	case ')':
		rest = rest[1:]
		if pc {
			op.Mode = MODE_PC_DISP
		} else {
			op.Mode = MODE_AN_DISP
		}
	case ',':
		rest, err = op.index(rest)
		if pc {
			op.Mode = MODE_PC_INDEX
		} else {
			op.Mode = MODE_AN_INDEX
		}
	default:
		err = diag.ErrSyntax
	}
	return
}

// Parse parses the operand at the start of text and returns the text
// following it. Registers must be in upper case.
func Parse(text string, ev Evaluator) (op Descriptor, rest string, err error) {
	defer func() {
		if err == nil {
			op.Text = text[:len(text)-len(rest)]
		}
	}()

	if len(text) == 0 {
		err = diag.ErrSyntax
		return
	}

	if text[0] == '#' {
		op.Mode = MODE_IMMEDIATE
		op.Value, op.BackRef, rest, err = ev.Eval(text[1:])
		return
	}

	op.BackRef = true

	if reg, addr, pc, width, ok := register(text); ok && !pc {
		op.Reg = reg
		op.Mode = MODE_DN
		if addr {
			op.Mode = MODE_AN
		}
		rest = text[width:]
		return
	}

	if strings.HasPrefix(text, "-(") {
		reg, addr, _, width, ok := register(text[2:])
		if ok && addr && len(text) > 2+width && text[2+width] == ')' {
			op.Mode = MODE_AN_PRE
			op.Reg = reg
			rest = text[3+width:]
			return
		}
	}

	if text[0] == '(' {
		reg, addr, pc, width, ok := register(text[1:])
		if ok && (addr || pc) {
			rest = text[1+width:]
			op.Reg = reg
			switch {
			case strings.HasPrefix(rest, ")+") && addr:
				op.Mode = MODE_AN_POST
				rest = rest[2:]
			case strings.HasPrefix(rest, ")"):
				op.Mode = MODE_AN_IND
				if pc {
					op.Mode = MODE_PC_DISP
					op.NoBase = true
				}
				rest = rest[1:]
			case strings.HasPrefix(rest, ","):
				op.Mode = MODE_AN_INDEX
				if pc {
					op.Mode = MODE_PC_INDEX
					op.NoBase = true
				}
				rest, err = op.index(rest)
			default:
				err = diag.ErrSyntax
			}
			return
		}
		if ok {
			err = diag.ErrInvAddrMode
			return
		}
	}

	op.Value, op.BackRef, rest, err = ev.Eval(text)
	if err != nil {
		return
	}

	if len(rest) > 0 && rest[0] == '(' {
		rest, err = op.base(rest)
		return
	}

	if long, width, ok := sizeSuffix(rest); ok {
		rest = rest[width:]
		op.Mode = MODE_ABS_SHORT
		if long {
			op.Mode = MODE_ABS_LONG
		}
		return
	}

	// Absolute addresses are short only when they are known to fit, so
	// both passes choose the same size.
	op.Mode = MODE_ABS_LONG
	if op.BackRef && op.Value >= -0x8000 && op.Value <= 0x7fff {
		op.Mode = MODE_ABS_SHORT
	}

	return
}
