package isa

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/expr"
	"github.com/ezrec/asm68k/operand"
)

// testEmitter records the emitted code as hex groups.
type testEmitter struct {
	loc   int32
	code  []string
	scope map[string]int32
}

func (te *testEmitter) Loc() int32 {
	return te.loc
}

func (te *testEmitter) Emit(size Size, value uint32) {
	switch size {
	case SIZE_BYTE:
		te.code = append(te.code, fmt.Sprintf("%02X", value&0xff))
	case SIZE_LONG:
		te.code = append(te.code, fmt.Sprintf("%08X", value))
	default:
		te.code = append(te.code, fmt.Sprintf("%04X", value&0xffff))
	}
	te.loc += int32(size.Bytes())
}

func (te *testEmitter) Lookup(name string) (value int32, backRef bool, ok bool) {
	value, ok = te.scope[name]
	return value, ok, ok
}

func (te *testEmitter) Pass2() bool {
	return false
}

// assemble encodes one instruction at loc.
func assemble(loc int32, line string) (code string, err error) {
	te := &testEmitter{loc: loc, scope: map[string]int32{"BACK": 0x1000, "NEAR": 0x1010, "FAR": 0x3000}}
	ev := &expr.Evaluator{Scope: te}

	name, args, _ := strings.Cut(line, " ")
	size := SIZE_NONE
	if mnemonic, suffix, ok := strings.Cut(name, "."); ok {
		name = mnemonic
		size, _ = SizeOf(suffix[0])
	}

	inst, ok := Lookup(name)
	if !ok {
		err = diag.ErrInvOpcode
		return
	}

	ops := &Operands{}
	if len(args) > 0 {
		var src, dst operand.Descriptor
		var rest string
		src, rest, err = operand.Parse(args, ev)
		if err != nil {
			return
		}
		ops.Source = &src
		if strings.HasPrefix(rest, ",") {
			dst, _, err = operand.Parse(rest[1:], ev)
			if err != nil {
				return
			}
			ops.Dest = &dst
		}
	}

	for _, fl := range inst.Flavors {
		if !fl.Matches(ops.Source, ops.Dest) {
			continue
		}
		var mask uint16
		mask, err = fl.Mask(size)
		if err != nil {
			return
		}
		err = fl.Encode(te, mask, size, ops)
		code = strings.Join(te.code, " ")
		return
	}

	err = diag.ErrInvAddrMode
	return
}

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code string
	}){
		{"NOP", "4E71"},
		{"RTS", "4E75"},
		{"SIMHALT", "FFFF FFFF"},
		{"MOVE.W D0,D1", "3200"},
		{"MOVE.B (A0)+,-(A1)", "1318"},
		{"MOVE.L #$12345678,D3", "263C 12345678"},
		{"MOVE.W D0,A1", "3240"},
		{"MOVEA.L A0,A1", "2248"},
		{"MOVE.W 4(A0),$400", "31E8 0004 0400"},
		{"MOVEQ #-1,D2", "74FF"},
		{"ADD.W #1,D0", "D07C 0001"},
		{"ADD.L D1,(A2)", "D392"},
		{"ADD.W D0,A0", "D0C0"},
		{"ADD.W #1,(A0)", "0650 0001"},
		{"ADDQ.L #8,D7", "5087"},
		{"SUBQ.W #1,A0", "5348"},
		{"SUB.B D1,D2", "9401"},
		{"CMP.W D1,D0", "B041"},
		{"CMP.L A0,A1", "B3C8"},
		{"CMP.B #3,(A0)", "0C10 0003"},
		{"CMPM.W (A0)+,(A1)+", "B348"},
		{"AND.W D1,D0", "C041"},
		{"OR.L D0,(A1)", "8191"},
		{"ORI.B #$0F,D0", "0000 000F"},
		{"EOR.W D1,D0", "B340"},
		{"EOR.W #1,D0", "0A40 0001"},
		{"MULU D1,D0", "C0C1"},
		{"DIVS #3,D1", "83FC 0003"},
		{"CLR.L D0", "4280"},
		{"TST.B (A0)", "4A10"},
		{"EXT.L D1", "48C1"},
		{"SWAP D2", "4842"},
		{"LEA 8(A0),A1", "43E8 0008"},
		{"PEA (A0)", "4850"},
		{"JSR BACK", "4EB8 1000"},
		{"JMP (A0)", "4ED0"},
		{"TRAP #15", "4E4F"},
		{"ASL.W #2,D0", "E540"},
		{"LSR.L D1,D2", "E2AA"},
		{"ROL (A0)", "E7D0"},
	}

	for _, entry := range table {
		code, err := assemble(0x1000, entry.line)
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.code, code, entry.line)
	}
}

func TestEncode_Branch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		loc  int32
		line string
		code string
		err  error
	}){
		// Back references in range are short.
		{0x1004, "BRA BACK", "60FA", nil},
		{0x1004, "BNE BACK", "66FA", nil},
		// Forward references are always a word.
		{0x1000, "BEQ AHEAD", "6700 EFFE", nil},
		{0x1000, "BSR.S NEAR", "610E", nil},
		{0x1000, "BSR.W NEAR", "6100 000E", nil},
		{0x1000, "BRA.L FAR", "60FF 00001FFE", nil},
		{0x1000, "BRA FAR", "6000 1FFE", nil},
		{0x1000, "BRA.S FAR", "60FE", diag.ErrInvBranchDisp},
		{0x1000, "BRA.S NEAR", "600E", nil},
		{0x0fe0, "DBRA D1,BACK", "51C9 001E", nil},
		{0x1004, "DBEQ D0,BACK", "57C8 FFFA", nil},
	}

	for _, entry := range table {
		code, err := assemble(entry.loc, entry.line)
		if entry.err == nil {
			assert.NoError(err, entry.line)
		} else {
			assert.ErrorIs(err, entry.err, entry.line)
		}
		assert.Equal(entry.code, code, entry.line)
	}
}

func TestEncode_Diagnostics(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code string
		err  error
	}){
		{"ADDQ.W #9,D0", "5240", diag.ErrInvQuickConst},
		{"MOVEQ #200,D0", "70C8", diag.ErrInvMoveqConst},
		{"TRAP #16", "4E40", diag.ErrInvVectorNum},
		{"MOVE.B A0,D0", "1008", diag.ErrInvSizeCode},
	}

	for _, entry := range table {
		code, err := assemble(0x1000, entry.line)
		assert.ErrorIs(err, entry.err, entry.line)
		assert.Equal(entry.code, code, entry.line)
	}

	_, err := assemble(0x1000, "NOP.W")
	assert.ErrorIs(err, diag.ErrInvSizeCode)

	_, err = assemble(0x1000, "LEA D0,A0")
	assert.ErrorIs(err, diag.ErrInvAddrMode)

	_, err = assemble(0x1000, "SWAP.L D0")
	assert.ErrorIs(err, diag.ErrInvSizeCode)
}

func TestEncode_Bitfield(t *testing.T) {
	assert := assert.New(t)

	te := &testEmitter{loc: 0x1000}
	src := operand.Descriptor{Mode: operand.MODE_AN_IND, Reg: 1}
	dst := operand.Descriptor{Mode: operand.MODE_DN, Reg: 3}

	inst, ok := Lookup("BFEXTU")
	assert.True(ok)
	assert.True(inst.Bitfield())
	fl := inst.Flavors[0]
	assert.True(fl.Matches(&src, &dst))
	// Offset 4, width 8
	err := fl.Encode(te, fl.Word, SIZE_NONE, &Operands{Source: &src, Dest: &dst, Field: 4<<6 | 8})
	assert.NoError(err)
	assert.Equal([]string{"E9D1", "3108"}, te.code)

	te = &testEmitter{loc: 0x1000}
	inst, _ = Lookup("BFINS")
	fl = inst.Flavors[0]
	assert.True(fl.Matches(&dst, &src))
	err = fl.Encode(te, fl.Word, SIZE_NONE, &Operands{Source: &dst, Dest: &src, Field: 0x0800 | 2<<6 | 0x0020 | 4})
	assert.NoError(err)
	assert.Equal([]string{"EFD1", "38A4"}, te.code)
}

func TestLookup(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"BRA", "BSR", "BHS", "BCC", "DBRA", "DBT", "DBF", "BFFFO", "ROXL"} {
		_, ok := Lookup(name)
		assert.True(ok, name)
	}
	_, ok := Lookup("BT")
	assert.False(ok)

	inst, _ := Lookup("NOP")
	assert.False(inst.Operands())
	assert.False(inst.Bitfield())
	inst, _ = Lookup("ADD")
	assert.True(inst.Operands())

	names := []string{}
	for name := range Names() {
		names = append(names, name)
	}
	assert.Contains(names, "MOVE")
	assert.IsIncreasing(names)
}

func TestSize(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(1, SIZE_SHORT.Bytes())
	assert.Equal(2, SIZE_NONE.Bytes())
	assert.Equal(4, SIZE_LONG.Bytes())
	assert.Equal("L", SIZE_LONG.String())

	size, ok := SizeOf('S')
	assert.True(ok)
	assert.Equal(SIZE_SHORT, size)
	_, ok = SizeOf('Q')
	assert.False(ok)
}
