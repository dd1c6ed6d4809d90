package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

var xchgMacro = []string{
	"XCHG MACRO",
	" MOVE.\\0 \\1,D7",
	" MOVE.\\0 \\2,\\1",
	" MOVE.\\0 D7,\\2",
	" ENDM",
}

func TestMacro(t *testing.T) {
	assert := assert.New(t)

	res := assemble(t, Options{}, append(xchgMacro,
		"HERE XCHG.W D0,D1",
		"AFTER NOP",
		" END",
	)...)
	assert.Equal(0, res.run.Errors())
	assert.Equal([]byte{0x3e, 0x00, 0x30, 0x01, 0x32, 0x07, 0x4e, 0x71}, res.bytes(0, 8))
	for name, value := range map[string]int32{"HERE": 0, "AFTER": 6} {
		sym, _ := res.run.Symbols.Lookup(name, 0)
		assert.Equal(value, sym.Value, name)
	}
}

func TestMacro_InstructionName(t *testing.T) {
	assert := assert.New(t)

	// The definition keeps its label, but a call finds the instruction.
	res := assemble(t, Options{},
		"SWAP MACRO",
		" NOP",
		" ENDM",
		" SWAP D0",
		" END",
	)
	assert.Equal(0, res.run.Errors())
	sym, ok := res.run.Symbols.Lookup("SWAP", 0)
	assert.True(ok)
	assert.True(sym.Macro())
	assert.Equal([]byte{0x48, 0x40}, res.bytes(0, 2))
	assert.Equal(int32(2), res.run.Context().Loc)
}

func TestMacro_Forward(t *testing.T) {
	assert := assert.New(t)

	res := assemble(t, Options{},
		" TWO",
		"AFTER NOP",
		"TWO MACRO",
		" NOP",
		" NOP",
		" ENDM",
		" END",
	)
	assert.Equal(0, res.run.Errors())
	assert.Equal(1, res.run.Warnings())
	assert.True(res.has(diag.ErrForwardRef))
	assert.False(res.has(diag.ErrPhaseError))
	sym, _ := res.run.Symbols.Lookup("AFTER", 0)
	assert.Equal(int32(4), sym.Value)
	assert.Equal([]byte{0x4e, 0x71, 0x4e, 0x71, 0x4e, 0x71}, res.bytes(0, 6))
}

func TestMacro_Unique(t *testing.T) {
	assert := assert.New(t)

	res := assemble(t, Options{},
		"SPIN MACRO",
		"L\\@ NOP",
		" BRA L\\@",
		" ENDM",
		" SPIN",
		" SPIN",
		" END",
	)
	assert.Equal(0, res.run.Errors())
	for name, value := range map[string]int32{"L_001": 0, "L_002": 4} {
		sym, ok := res.run.Symbols.Lookup(name, 0)
		assert.True(ok, name)
		assert.Equal(value, sym.Value, name)
	}
	assert.Equal([]byte{0x4e, 0x71, 0x60, 0xfc}, res.bytes(4, 4))
}

func TestMacro_Listing(t *testing.T) {
	assert := assert.New(t)

	lines := append(xchgMacro, " XCHG.L D2,D3", " END")

	res := assemble(t, Options{List: true}, lines...)
	assert.Contains(res.listing, "XCHG.L D2,D3")
	assert.NotContains(res.listing, "MOVE.L D2,D7")

	res = assemble(t, Options{List: true, MEX: true}, lines...)
	assert.Contains(res.listing, "MOVE.L D2,D7")
	assert.Contains(res.listing, "m ")
}

func TestMacro_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		lines []string
		code  diag.Code
	}){
		{[]string{" ENDM"}, diag.ErrNoMacro},
		{[]string{" MACRO", " NOP", " ENDM"}, diag.ErrLabelRequired},
		{[]string{"OUTER MACRO", "INNER MACRO", " ENDM"}, diag.ErrMacroNesting},
		{[]string{"LOOP MACRO", " LOOP", " ENDM", " LOOP"}, diag.ErrNestTooDeep},
		{[]string{"TWICE MACRO", " ENDM", "TWICE MACRO", " ENDM"}, diag.ErrMultipleDefs},
		{[]string{"VALUE EQU 1", "VALUE MACRO", " ENDM"}, diag.ErrMultipleDefs},
		{[]string{" LATER", "LATER MACRO", " NOP", " ENDM"}, diag.ErrForwardRef},
	}

	for _, entry := range table {
		res := assemble(t, Options{}, append(entry.lines, " END")...)
		assert.True(res.has(entry.code), entry.lines)
	}

	res := assemble(t, Options{}, "OPEN MACRO", " NOP", " END")
	assert.True(res.has(diag.ErrMacroUnclosed))
}

func TestSubstitute(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		size     isa.Size
		args     []string
		expected string
	}){
		{" MOVE.\\0 \\1,\\2", isa.SIZE_LONG, []string{"D0", "D1"}, " MOVE.L D0,D1"},
		{" CLR \\3", isa.SIZE_NONE, []string{"D0"}, " CLR "},
		{"X\\@ NOP", isa.SIZE_NONE, nil, "X_007 NOP"},
		{" DC.B '\\'", isa.SIZE_NONE, nil, " DC.B '\\'"},
		{" DC.B \\x", isa.SIZE_NONE, nil, " DC.B \\x"},
	}

	for _, entry := range table {
		assert.Equal(entry.expected, substitute(entry.line, entry.size, entry.args, "_007"), entry.line)
	}
}
