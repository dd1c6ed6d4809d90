// Package isa is the 68000 instruction table.
//
// Every instruction is an ordered list of flavors. A flavor names the
// addressing modes it accepts for each operand, the operand sizes it
// allows, a base opcode for each size and the encoder that emits the
// machine code. The first flavor that accepts the parsed operands wins.
package isa

import (
	"iter"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/internal"
	"github.com/ezrec/asm68k/operand"
)

// Size is an operand size, or a set of sizes.
type Size int

const (
	SIZE_NONE  = Size(0)
	SIZE_BYTE  = Size(1)
	SIZE_WORD  = Size(2)
	SIZE_LONG  = Size(4)
	SIZE_SHORT = Size(8) // Short branch, the same as a byte.
)

// Bytes is the number of bytes of an operand of the size. No size
// defaults to a word.
func (size Size) Bytes() int {
	switch size {
	case SIZE_BYTE, SIZE_SHORT:
		return 1
	case SIZE_LONG:
		return 4
	}
	return 2
}

func (size Size) String() string {
	switch size {
	case SIZE_NONE:
		return ""
	case SIZE_BYTE:
		return "B"
	case SIZE_WORD:
		return "W"
	case SIZE_LONG:
		return "L"
	case SIZE_SHORT:
		return "S"
	}
	return "?"
}

// SizeOf returns the size for a suffix letter.
func SizeOf(letter byte) (size Size, ok bool) {
	switch letter {
	case 'B':
		return SIZE_BYTE, true
	case 'W':
		return SIZE_WORD, true
	case 'L':
		return SIZE_LONG, true
	case 'S':
		return SIZE_SHORT, true
	}
	return SIZE_NONE, false
}

// Emitter receives the generated machine code.
type Emitter interface {
	// Loc is the address of the next emitted byte.
	Loc() int32
	// Emit appends a byte, word or long and advances the location.
	Emit(size Size, value uint32)
}

// Operands are the parsed operands of one instruction.
type Operands struct {
	Source *operand.Descriptor
	Dest   *operand.Descriptor
	Field  uint16 // Offset and width bits of a bit field.
}

// Encoder emits an instruction. It always emits the full instruction,
// even when it also returns a diagnostic, so the location counter
// advances by the same amount on both passes.
type Encoder func(em Emitter, mask uint16, size Size, ops *Operands) error

// Flavor is one legal operand combination of an instruction.
type Flavor struct {
	Source   operand.Mode // Accepted source modes, or MODE_NONE.
	Dest     operand.Mode // Accepted destination modes, or MODE_NONE.
	Sizes    Size         // Legal explicit sizes.
	Byte     uint16       // Opcode for byte or short size.
	Word     uint16       // Opcode for word size, and no size.
	Long     uint16       // Opcode for long size.
	Bitfield bool         // Takes a {offset:width} field.
	Encode   Encoder
}

// Mask returns the opcode mask for a size. A size the flavor does not
// allow is an ErrInvSizeCode, with the word opcode.
func (fl *Flavor) Mask(size Size) (mask uint16, err error) {
	if size == SIZE_NONE {
		mask = fl.Word
		return
	}
	if fl.Sizes&size == 0 {
		mask = fl.Word
		err = diag.ErrInvSizeCode
		return
	}
	switch size {
	case SIZE_BYTE, SIZE_SHORT:
		mask = fl.Byte
	case SIZE_WORD:
		mask = fl.Word
	default:
		mask = fl.Long
	}
	return
}

func accepts(modes operand.Mode, op *operand.Descriptor) bool {
	if op == nil {
		return modes == operand.MODE_NONE
	}
	return modes.Has(op.Mode)
}

// Matches reports whether the flavor accepts the operands. A missing
// operand is nil.
func (fl *Flavor) Matches(src, dst *operand.Descriptor) bool {
	return accepts(fl.Source, src) && accepts(fl.Dest, dst)
}

// Instruction is an instruction table entry.
type Instruction struct {
	Name    string
	Flavors []Flavor
}

// Operands reports whether the instruction takes any operands.
func (inst *Instruction) Operands() bool {
	for _, fl := range inst.Flavors {
		if fl.Source != operand.MODE_NONE {
			return true
		}
	}
	return false
}

// Bitfield reports whether every flavor is a bit field flavor.
func (inst *Instruction) Bitfield() bool {
	for _, fl := range inst.Flavors {
		if !fl.Bitfield {
			return false
		}
	}
	return len(inst.Flavors) > 0
}

// Lookup finds an instruction by upper case mnemonic.
func Lookup(name string) (inst *Instruction, ok bool) {
	inst, ok = instructions[name]
	return
}

// Names yields every mnemonic in sorted order.
func Names() iter.Seq[string] {
	return internal.SortedKeys(instructions)
}
