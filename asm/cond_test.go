package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/asm68k/diag"
)

func TestConditional(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		test string
		loc  int32
	}){
		{" IFEQ 1", 2},
		{" IFEQ 0", 4},
		{" IFNE 0", 2},
		{" IFNE 1", 4},
		{" IFLT -1", 4},
		{" IFLT 0", 2},
		{" IFLE 0", 4},
		{" IFGT 0", 2},
		{" IFGT 5", 4},
		{" IFGE 0", 4},
		{" IFGE -2", 2},
		{" IFC ABC,ABC", 4},
		{" IFC ABC,ABD", 2},
		{" IFNC ABC,ABD", 4},
		{" IFNC '',''", 2},
		{"IFEQ 1", 2},
	}

	for _, entry := range table {
		res := assemble(t, Options{List: true},
			entry.test,
			" MOVE.W D0,D1",
			" ENDC",
			" NOP",
			" END",
		)
		assert.Equal(0, res.run.Errors(), entry.test)
		assert.Equal(entry.loc, res.run.Context().Loc, entry.test)
	}
}

func TestConditional_Nested(t *testing.T) {
	assert := assert.New(t)

	res := assemble(t, Options{List: true},
		" IFEQ 1",
		" IFEQ 0",
		" NOP",
		" ENDC",
		" NOP",
		" ENDC",
		" RTS",
		" END",
	)
	assert.Equal(0, res.run.Errors())
	assert.Equal(int32(2), res.run.Context().Loc)
	assert.Equal([]byte{0x4e, 0x75}, res.bytes(0, 2))
	assert.Contains(res.listing, "FALSE")

	res = assemble(t, Options{List: true},
		" IFEQ 0",
		" IFNE 0",
		" NOP",
		" ENDC",
		" NOP",
		" ENDC",
		" END",
	)
	assert.Equal(int32(2), res.run.Context().Loc)
	assert.Contains(res.listing, "TRUE")
	assert.Contains(res.listing, "FALSE")
}

func TestConditional_Errors(t *testing.T) {
	assert := assert.New(t)

	res := assemble(t, Options{},
		" IFNC X",
		" ENDC",
		" END",
	)
	assert.True(res.has(diag.ErrInvalidArg))

	res = assemble(t, Options{},
		" IFEQ",
		" ENDC",
		" END",
	)
	assert.True(res.has(diag.ErrInvalidArg))

	res = assemble(t, Options{},
		"HERE: IFEQ 0",
		" NOP",
		" ENDC",
		" END",
	)
	assert.True(res.has(diag.ErrLabelError))
	assert.Equal(int32(2), res.run.Context().Loc)

	res = assemble(t, Options{},
		" IFEQ UNKNOWN",
		" NOP",
		" ENDC",
		" END",
	)
	assert.True(res.has(diag.ErrUndefined))
	assert.Equal(int32(2), res.run.Context().Loc)
}
