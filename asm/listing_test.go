package asm

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
)

func listed(l *Listing) string {
	buf := &bytes.Buffer{}
	l.Flush(buf, 0)
	_, body, _ := strings.Cut(buf.String(), "\n\n")
	return body
}

func TestListing_Line(t *testing.T) {
	assert := assert.New(t)

	l := NewListing(TAB_SIZE)
	l.Begin(0x1000, false, "\tNOP", "")
	l.Object(0x4e71, isa.SIZE_WORD)
	l.Line("\tNOP", "")

	l.Begin(0x1002, false, "\tNOP", "s")
	l.Line("\tNOP", "s")

	l.Begin(0x20, true, "SIZE EQU $20", "")
	l.Line("SIZE EQU $20", "")

	expected := []string{
		fmt.Sprintf("%-32s", "00001000  4E71 ") + "     1          NOP",
		fmt.Sprintf("%-32s", "00001002  ") + "     2s         NOP",
		fmt.Sprintf("%-32s", "00000020= ") + "     3  SIZE EQU $20",
		"",
	}
	assert.Equal(strings.Join(expected, "\n"), listed(l))
}

func TestListing_Object(t *testing.T) {
	assert := assert.New(t)

	l := NewListing(TAB_SIZE)
	l.Begin(0, false, " DC.L 1,2,3,4", "")
	for n := range 4 {
		l.Object(uint32(n+1), isa.SIZE_LONG)
	}
	l.Line(" DC.L 1,2,3,4", "")
	assert.Equal(fmt.Sprintf("%-32s", "00000000  00000001 00000002 ...")+"     1   DC.L 1,2,3,4\n", listed(l))

	l = NewListing(TAB_SIZE)
	l.CEX = true
	l.Begin(0, false, " DC.L 1,2,3,4", "")
	for n := range 4 {
		l.Object(uint32(n+1), isa.SIZE_LONG)
	}
	l.Line(" DC.L 1,2,3,4", "")
	expected := []string{
		fmt.Sprintf("%-32s", "00000000  00000001 00000002 ") + "     1   DC.L 1,2,3,4",
		fmt.Sprintf("%-32s", "          00000003 00000004 "),
		"",
	}
	assert.Equal(strings.Join(expected, "\n"), listed(l))

	l = NewListing(TAB_SIZE)
	l.Begin(0, false, " DC.B 1,2", "")
	l.Object(1, isa.SIZE_BYTE)
	l.Object(2, isa.SIZE_BYTE)
	l.Line(" DC.B 1,2", "")
	assert.True(strings.HasPrefix(listed(l), "00000000  01 02 "))
}

func TestListing_Cond(t *testing.T) {
	assert := assert.New(t)

	l := NewListing(TAB_SIZE)
	l.Begin(0, false, " IFEQ 1", "")
	l.Cond(true)
	l.Line(" IFEQ 1", "")
	l.Begin(0, false, " IFEQ 0", "")
	l.Cond(false)
	l.Line(" IFEQ 0", "")

	lines := strings.Split(listed(l), "\n")
	assert.Equal("00000000                 FALSE", strings.TrimRight(lines[0][:32], " "))
	assert.Equal("00000000                 TRUE", strings.TrimRight(lines[1][:32], " "))
}

func TestListing_Finish(t *testing.T) {
	assert := assert.New(t)

	l := NewListing(TAB_SIZE)
	l.Finish(0, 0, nil)
	assert.Equal("\nNo errors detected\nNo warnings generated\n", listed(l))

	l = NewListing(TAB_SIZE)
	l.Finish(1, 2, nil)
	assert.Equal("\n1 error detected\n2 warnings generated\n", listed(l))

	l = NewListing(TAB_SIZE)
	l.Error(3, diag.ErrSyntax)
	l.Error(4, diag.ErrEndMissing)
	assert.Equal("Line 3 ERROR: Invalid syntax\nLine 4 WARNING: END directive missing, starting address not set\n", listed(l))

	buf := &bytes.Buffer{}
	assert.NoError(l.Flush(buf, 0x400))
	assert.True(strings.HasPrefix(buf.String(), "00000400 Starting Address\nAssembler used: "+TITLE+"\n"))
}

func TestListing_Expand(t *testing.T) {
	assert := assert.New(t)

	l := NewListing(4)
	assert.Equal("A   B", l.expand("A\tB"))
	assert.Equal("    X", l.expand("\tX"))
	assert.Len(l.expand(strings.Repeat("Z", 300)), TEXT_LIMIT)
}
