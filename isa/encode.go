package isa

import (
	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/operand"
)

// emitWords emits the extension words of an operand.
func emitWords(em Emitter, op *operand.Descriptor, size Size) (err error) {
	words, err := op.Words(size.Bytes(), em.Loc())
	if len(words) == 2 {
		em.Emit(SIZE_LONG, uint32(words[0])<<16|uint32(words[1]))
		return
	}
	for _, word := range words {
		em.Emit(SIZE_WORD, uint32(word))
	}
	return
}

// regField places an EA in the destination field of a MOVE.
func regField(ea uint16) uint16 {
	return (ea&7)<<9 | (ea>>3)<<6
}

// encodeInherent emits an instruction without operands.
func encodeInherent(em Emitter, mask uint16, size Size, ops *Operands) error {
	em.Emit(SIZE_WORD, uint32(mask))
	return nil
}

// encodeSimhalt emits the simulator halt trap.
func encodeSimhalt(em Emitter, mask uint16, size Size, ops *Operands) error {
	em.Emit(SIZE_WORD, uint32(mask))
	em.Emit(SIZE_WORD, uint32(mask))
	return nil
}

// encodeMove emits MOVE and MOVEA: <ea>,<ea>.
func encodeMove(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	src, dst := ops.Source, ops.Dest
	if size == SIZE_BYTE && src.Mode == operand.MODE_AN {
		err = diag.ErrInvSizeCode
	}
	em.Emit(SIZE_WORD, uint32(mask|regField(dst.EA())|src.EA()))
	err = diag.Worst(err, emitWords(em, src, size))
	err = diag.Worst(err, emitWords(em, dst, size))
	return
}

// encodeMoveq emits MOVEQ #<data>,Dn.
func encodeMoveq(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	value := ops.Source.Value
	if value < -128 || value > 127 {
		err = diag.ErrInvMoveqConst
	}
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Dest.Reg)<<9|uint16(value)&0xff))
	return
}

// encodeToReg emits <ea>,Rn, with the register in bits 11-9.
func encodeToReg(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	src := ops.Source
	if size == SIZE_BYTE && src.Mode == operand.MODE_AN {
		err = diag.ErrInvSizeCode
	}
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Dest.Reg)<<9|src.EA()))
	err = diag.Worst(err, emitWords(em, src, size))
	return
}

// encodeFromReg emits Dn,<ea>, with the register in bits 11-9.
func encodeFromReg(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	dst := ops.Dest
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Source.Reg)<<9|dst.EA()))
	err = emitWords(em, dst, size)
	return
}

// encodeImmediate emits #<data>,<ea>.
func encodeImmediate(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	dst := ops.Dest
	em.Emit(SIZE_WORD, uint32(mask|dst.EA()))
	err = emitWords(em, ops.Source, size)
	err = diag.Worst(err, emitWords(em, dst, size))
	return
}

// quick checks a 1 to 8 count and encodes 8 as 0.
func quick(value int32) (bits uint16, err error) {
	if value < 1 || value > 8 {
		err = diag.ErrInvQuickConst
	}
	bits = uint16(value&7) << 9
	return
}

// encodeQuick emits ADDQ and SUBQ: #<1-8>,<ea>.
func encodeQuick(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	dst := ops.Dest
	bits, err := quick(ops.Source.Value)
	if size == SIZE_BYTE && dst.Mode == operand.MODE_AN {
		err = diag.Worst(err, diag.ErrInvSizeCode)
	}
	em.Emit(SIZE_WORD, uint32(mask|bits|dst.EA()))
	err = diag.Worst(err, emitWords(em, dst, size))
	return
}

// encodeCmpm emits CMPM (Ay)+,(Ax)+.
func encodeCmpm(em Emitter, mask uint16, size Size, ops *Operands) error {
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Dest.Reg)<<9|uint16(ops.Source.Reg)))
	return nil
}

// encodeSingle emits a single <ea> operand instruction.
func encodeSingle(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	src := ops.Source
	em.Emit(SIZE_WORD, uint32(mask|src.EA()))
	err = emitWords(em, src, size)
	return
}

// encodeRegister emits a single Dn operand instruction.
func encodeRegister(em Emitter, mask uint16, size Size, ops *Operands) error {
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Source.Reg)))
	return nil
}

// encodeTrap emits TRAP #<vector>.
func encodeTrap(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	value := ops.Source.Value
	if value < 0 || value > 15 {
		err = diag.ErrInvVectorNum
	}
	em.Emit(SIZE_WORD, uint32(mask|uint16(value)&0xf))
	return
}

// encodeBranch emits Bcc, BRA and BSR. Without a size the short form is
// used only for a back reference in range, so a forward branch is the
// same size on both passes.
func encodeBranch(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	disp := ops.Source.Value - (em.Loc() + 2)
	short := disp >= -128 && disp <= 127 && disp != 0 && disp != -1

	if size == SIZE_NONE {
		size = SIZE_WORD
		if ops.Source.BackRef && short {
			size = SIZE_SHORT
		}
	}

	switch size {
	case SIZE_BYTE, SIZE_SHORT:
		if !short {
			err = diag.ErrInvBranchDisp
		}
		em.Emit(SIZE_WORD, uint32(mask|uint16(disp)&0xff))
	case SIZE_LONG:
		em.Emit(SIZE_WORD, uint32(mask|0xff))
		em.Emit(SIZE_LONG, uint32(disp))
	default:
		if disp < -0x8000 || disp > 0x7fff {
			err = diag.ErrInvBranchDisp
		}
		em.Emit(SIZE_WORD, uint32(mask))
		em.Emit(SIZE_WORD, uint32(uint16(disp)))
	}
	return
}

// encodeDbcc emits DBcc Dn,<label>.
func encodeDbcc(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	disp := ops.Dest.Value - (em.Loc() + 2)
	if disp < -0x8000 || disp > 0x7fff {
		err = diag.ErrInvBranchDisp
	}
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Source.Reg)))
	em.Emit(SIZE_WORD, uint32(uint16(disp)))
	return
}

// encodeShiftQuick emits a shift or rotate #<1-8>,Dn.
func encodeShiftQuick(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	bits, err := quick(ops.Source.Value)
	em.Emit(SIZE_WORD, uint32(mask|bits|uint16(ops.Dest.Reg)))
	return
}

// encodeShiftReg emits a shift or rotate Dx,Dy.
func encodeShiftReg(em Emitter, mask uint16, size Size, ops *Operands) error {
	em.Emit(SIZE_WORD, uint32(mask|uint16(ops.Source.Reg)<<9|uint16(ops.Dest.Reg)))
	return nil
}

// encodeBitfield emits <ea>{offset:width}.
func encodeBitfield(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	src := ops.Source
	em.Emit(SIZE_WORD, uint32(mask|src.EA()))
	em.Emit(SIZE_WORD, uint32(ops.Field))
	err = emitWords(em, src, size)
	return
}

// encodeBitfieldTo emits <ea>{offset:width},Dn.
func encodeBitfieldTo(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	src := ops.Source
	em.Emit(SIZE_WORD, uint32(mask|src.EA()))
	em.Emit(SIZE_WORD, uint32(uint16(ops.Dest.Reg)<<12|ops.Field))
	err = emitWords(em, src, size)
	return
}

// encodeBitfieldFrom emits Dn,<ea>{offset:width}.
func encodeBitfieldFrom(em Emitter, mask uint16, size Size, ops *Operands) (err error) {
	dst := ops.Dest
	em.Emit(SIZE_WORD, uint32(mask|dst.EA()))
	em.Emit(SIZE_WORD, uint32(uint16(ops.Source.Reg)<<12|ops.Field))
	err = emitWords(em, dst, size)
	return
}
