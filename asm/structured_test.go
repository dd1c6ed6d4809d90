package asm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/asm68k/diag"
)

// generated assembles lines and returns the second pass structured code.
func generated(t *testing.T, lines ...string) (gen []string, res *result) {
	run := NewRun(Options{List: true})
	run.synthetic = func(pass2 bool, text string) {
		if pass2 {
			gen = append(gen, text)
		}
	}
	res = assembleRun(t, run, append(lines, " END")...)
	return
}

func TestStructure(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name     string
		lines    []string
		expected []string
	}){
		{"if",
			[]string{" IF D0 <EQ> #1 THEN", " NOP", " ENDI"},
			[]string{"\tCMP.W\t#1,D0", "\tBNE\t_00000000", "_00000000"},
		},
		{"if-else",
			[]string{" IF.L D0 <EQ> #1 THEN.S", " NOP", " ELSE", " RTS", " ENDI"},
			[]string{
				"\tCMP.L\t#1,D0", "\tBNE.S\t_00000000",
				"\tBRA\t_00000001", "_00000000",
				"_00000001",
			},
		},
		{"if-or",
			[]string{" IF D0 <EQ> #1 OR D1 <NE> #2 THEN", " NOP", " ENDI"},
			[]string{
				"\tCMP.W\t#1,D0", "\tBEQ.S\t_00000000",
				"\tCMP.W\t#2,D1", "\tBEQ\t_00000001",
				"_00000000",
				"_00000001",
			},
		},
		{"if-and",
			[]string{" IF D0 <EQ> #1 AND D1 <NE> #2 THEN", " NOP", " ENDI"},
			[]string{
				"\tCMP.W\t#1,D0", "\tBNE\t_00000000",
				"\tCMP.W\t#2,D1", "\tBEQ\t_00000000",
				"_00000000",
			},
		},
		{"if-cc",
			[]string{" TST.W D0", " IF <MI> THEN", " NEG.W D0", " ENDI"},
			[]string{"\tBPL\t_00000000", "_00000000"},
		},
		{"if-register",
			[]string{" IF D0 <GT> (A0) THEN", " NOP", " ENDI"},
			[]string{"\tCMP.W\t(A0),D0", "\tBLE\t_00000000", "_00000000"},
		},
		{"if-register-second",
			[]string{" IF (A0) <GT> D0 THEN", " NOP", " ENDI"},
			[]string{"\tCMP.W\t(A0),D0", "\tBGE\t_00000000", "_00000000"},
		},
		{"while",
			[]string{" WHILE D0 <GT> #0 DO", " SUBQ.W #1,D0", " ENDW"},
			[]string{
				"_10000000",
				"\tCMP.W\t#0,D0", "\tBLE\t_10000001",
				"\tBRA\t_10000000", "_10000001",
			},
		},
		{"while-forever",
			[]string{" WHILE <T> DO", " NOP", " ENDW"},
			[]string{"_10000000", "\tBRA\t_10000000", "_10000001"},
		},
		{"repeat",
			[]string{" REPEAT", " ADDQ.W #1,D0", " UNTIL D0 <EQ> #5"},
			[]string{"_30000000", "\tCMP.W\t#5,D0", "\tBNE\t_30000000"},
		},
		{"repeat-or",
			[]string{" REPEAT", " ADDQ.W #1,D0", " UNTIL D0 <EQ> #5 OR D1 <EQ> #0 DO.S"},
			[]string{
				"_30000000",
				"\tCMP.W\t#5,D0", "\tBEQ.S\t_30000001",
				"\tCMP.W\t#0,D1", "\tBNE.S\t_30000000",
				"_30000001",
			},
		},
		{"for",
			[]string{" FOR D0 = #1 TO #10 DO", " NOP", " ENDF"},
			[]string{
				"\tMOVE.W\t#1,D0", "\tBRA\t_20000001", "_20000000",
				"\tADD.W\t#1,D0", "_20000001", "\tCMP.W\t#10,D0", "\tBLE\t_20000000",
			},
		},
		{"for-downto",
			[]string{" FOR.L D1 = D1 DOWNTO #0 BY #2 DO.S", " NOP", " ENDF"},
			[]string{
				"\tBRA.S\t_20000001", "_20000000",
				"\tSUB.L\t#2,D1", "_20000001", "\tCMP.L\t#0,D1", "\tBGE.S\t_20000000",
			},
		},
		{"dbloop",
			[]string{" DBLOOP D1 = #3", " NOP", " UNLESS"},
			[]string{"\tMOVE\t#3,D1", "_40000000", "\tDBRA\tD1,_40000000"},
		},
		{"dbloop-false",
			[]string{" DBLOOP D1 = D1", " NOP", " UNLESS <F>"},
			[]string{"_40000000", "\tDBRA\tD1,_40000000"},
		},
		{"dbloop-unless",
			[]string{" DBLOOP D2 = #3", " NOP", " UNLESS D0 <EQ> #0"},
			[]string{"\tMOVE\t#3,D2", "_40000000", "\tCMP.W\t#0,D0", "\tDBNE\tD2,_40000000"},
		},
	}

	for _, entry := range table {
		gen, _ := generated(t, entry.lines...)
		assert.Equal(entry.expected, gen, entry.name)
	}
}

func TestStructure_Code(t *testing.T) {
	assert := assert.New(t)

	_, res := generated(t,
		" IF D0 <EQ> #1 THEN.S",
		" NOP",
		" ENDI",
		" RTS",
	)
	assert.Equal(0, res.run.Errors())
	// CMP.W #1,D0 ; BNE.S over the NOP ; NOP ; RTS
	assert.Equal([]byte{0xb0, 0x7c, 0x00, 0x01, 0x66, 0x02, 0x4e, 0x71, 0x4e, 0x75}, res.bytes(0, 10))

	_, res = generated(t,
		" DBLOOP D1 = #3",
		" NOP",
		" UNLESS",
	)
	assert.Equal(0, res.run.Errors())
	// MOVE.W #3,D1 ; NOP ; DBRA D1,*-2
	assert.Equal([]byte{0x32, 0x3c, 0x00, 0x03, 0x4e, 0x71, 0x51, 0xc9, 0xff, 0xfc}, res.bytes(0, 10))

	_, res = generated(t,
		" FOR D0 = #1 TO #3 DO.S",
		" NOP",
		" ENDF",
	)
	assert.Equal(0, res.run.Errors())
}

func TestStructure_Listing(t *testing.T) {
	assert := assert.New(t)

	_, res := generated(t,
		" IF D0 <EQ> #1 THEN",
		" NOP",
		" ENDI",
	)
	assert.Contains(res.listing, "IF D0 <EQ> #1 THEN")
	assert.NotContains(res.listing, "CMP.W")

	run := NewRun(Options{List: true, SEX: true})
	res = assembleRun(t, run,
		" IF D0 <EQ> #1 THEN",
		" NOP",
		" ENDI",
		" END",
	)
	assert.Contains(res.listing, "s         CMP.W   #1,D0")
	require.Equal(t, 1, strings.Count(res.listing, "IF D0 <EQ> #1 THEN"))
}

func TestStructure_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		lines []string
		code  diag.Code
	}){
		{[]string{" ENDI"}, diag.ErrNoIf},
		{[]string{" ELSE"}, diag.ErrNoIf},
		{[]string{" ENDW"}, diag.ErrNoWhile},
		{[]string{" IF <EQ> THEN", " ENDW"}, diag.ErrNoWhile},
		{[]string{" UNTIL <EQ>"}, diag.ErrNoRepeat},
		{[]string{" ENDF"}, diag.ErrNoFor},
		{[]string{" UNLESS"}, diag.ErrNoDbloop},
		{[]string{" WHILE <T> DO", " ENDF"}, diag.ErrNoFor},
		{[]string{" IF D0 <EQ> #1", " ENDI"}, diag.ErrThenExpected},
		{[]string{" WHILE D0 <EQ> #1", " ENDW"}, diag.ErrDoExpected},
		{[]string{" FOR D0 = #1 TO #2", " ENDF"}, diag.ErrDoExpected},
		{[]string{" FOR D0 #1 TO #2 DO", " ENDF"}, diag.ErrSyntax},
		{[]string{" DBLOOP A0 = #1", " UNLESS"}, diag.ErrSyntax},
		{[]string{" IF (A0) <EQ> (A1) THEN", " ENDI"}, diag.ErrSyntax},
		{[]string{" IF <EQ> THEN"}, diag.ErrStructUnclosed},
	}

	for _, entry := range table {
		_, res := generated(t, entry.lines...)
		assert.True(res.has(entry.code), entry.lines)
	}

	// A closer without its statement generates nothing.
	gen, _ := generated(t, " ENDW")
	assert.Empty(gen)

	_, res := generated(t, " IF D0 <EQ> D1 THEN", " ENDI")
	assert.Equal(0, res.run.Errors())

	// A mismatched UNLESS still consumes its loop register.
	_, res = generated(t,
		" DBLOOP D1 = D1",
		" IF <EQ> THEN",
		" UNLESS",
		" DBLOOP D2 = D2",
		" UNLESS",
	)
	assert.True(res.has(diag.ErrNoDbloop))
	assert.Equal(0, res.run.loopReg.Len())

	// Only one diagnostic for any number of open statements.
	_, res = generated(t, " IF <EQ> THEN", " REPEAT", " WHILE <T> DO")
	count := 0
	for _, line := range res.run.Diagnostics {
		if line.Err == diag.ErrStructUnclosed {
			count++
		}
	}
	assert.Equal(1, count)
}
