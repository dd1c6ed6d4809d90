package asm

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/isa"
	"github.com/ezrec/asm68k/symbol"
)

const (
	TITLE        = "asm68k 68000 assembler" // Listing header identification.
	OBJECT_WIDTH = 32                       // Width of the address and object field.
	OBJECT_START = 10                       // Column of the first object byte.
	TAB_SIZE     = 8                        // Default tab stop interval.
	TEXT_LIMIT   = 247                      // Longest listed source text.
)

// Listing accumulates the listing file of the second pass.
type Listing struct {
	CEX     bool // Continue long object code on following lines.
	TabSize int

	body         bytes.Buffer
	field        []byte
	elided       bool
	continuation bool
	text         string
	ident        string
	lineNo       int
}

// NewListing returns an empty listing.
func NewListing(tabSize int) *Listing {
	if tabSize <= 0 {
		tabSize = TAB_SIZE
	}
	return &Listing{
		TabSize: tabSize,
		lineNo:  1,
	}
}

// Begin starts the object field of a source line at loc. An equal field
// shows a symbol value or an offset rather than a code address.
func (l *Listing) Begin(loc int32, equal bool, text string, ident string) {
	format := "%08X  "
	if equal {
		format = "%08X= "
	}
	l.field = fmt.Appendf(l.field[:0], format, uint32(loc))
	l.elided = false
	l.continuation = false
	l.text = text
	l.ident = ident
}

// Object adds a byte, word or long of object code to the field.
func (l *Listing) Object(value uint32, size isa.Size) {
	if l.elided {
		return
	}

	var hex string
	switch size.Bytes() {
	case 1:
		hex = fmt.Sprintf("%02X ", uint8(value))
	case 2:
		hex = fmt.Sprintf("%04X ", uint16(value))
	default:
		hex = fmt.Sprintf("%08X ", value)
	}

	if len(l.field)+len(hex) > OBJECT_WIDTH-1 {
		if !l.CEX {
			at := 28
			if size == isa.SIZE_WORD {
				at = 26
			}
			if at < len(l.field) {
				l.field = l.field[:at]
			}
			l.field = append(l.field, "..."...)
			l.elided = true
			return
		}
		l.Line(l.text, l.ident)
		l.field = append(l.field[:0], strings.Repeat(" ", OBJECT_START)...)
		l.continuation = true
	}
	l.field = append(l.field, hex...)
}

// Cond shows the result of a conditional assembly test.
func (l *Listing) Cond(skip bool) {
	result := "TRUE "
	if skip {
		result = "FALSE "
	}
	if len(l.field) > OBJECT_START {
		l.field = l.field[:OBJECT_START]
	}
	l.field = append(l.field, strings.Repeat(" ", 15)...)
	l.field = append(l.field, result...)
}

// expand replaces tabs by spaces to the next tab stop.
func (l *Listing) expand(text string) string {
	var out strings.Builder
	for n := 0; n < len(text) && out.Len() < TEXT_LIMIT; n++ {
		if text[n] == '\t' {
			out.WriteByte(' ')
			for out.Len()%l.TabSize != 0 {
				out.WriteByte(' ')
			}
			continue
		}
		out.WriteByte(text[n])
	}
	line := out.String()
	if len(line) > TEXT_LIMIT {
		line = line[:TEXT_LIMIT]
	}
	return line
}

// Line writes the object field and the source line. The lines following
// continued object code show only the object field.
func (l *Listing) Line(text string, ident string) {
	fmt.Fprintf(&l.body, "%-32.32s", l.field)
	switch {
	case l.continuation:
		l.body.WriteString("\n")
	case len(ident) > 0:
		fmt.Fprintf(&l.body, "%6d%s %s\n", l.lineNo, ident, l.expand(text))
	default:
		fmt.Fprintf(&l.body, "%6d  %s\n", l.lineNo, l.expand(text))
	}
	l.lineNo++
}

// Error writes a diagnostic under the line that caused it.
func (l *Listing) Error(lineNo int, err error) {
	fmt.Fprintf(&l.body, "Line %d %v: %v\n", lineNo, diag.SeverityOf(err), err)
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

// Finish writes the summary, and the symbol table when symbols is not
// nil.
func (l *Listing) Finish(errors int, warnings int, symbols iter.Seq[*symbol.Symbol]) {
	l.body.WriteString("\n")
	if errors == 0 {
		l.body.WriteString("No errors detected\n")
	} else {
		fmt.Fprintf(&l.body, "%d error%s detected\n", errors, plural(errors))
	}
	if warnings == 0 {
		l.body.WriteString("No warnings generated\n")
	} else {
		fmt.Fprintf(&l.body, "%d warning%s generated\n", warnings, plural(warnings))
	}

	if symbols == nil {
		return
	}

	l.body.WriteString("\n\nSYMBOL TABLE INFORMATION\n")
	l.body.WriteString("Symbol-name                     Value\n")
	l.body.WriteString("-------------------------       ----------------------\n")
	for sym := range symbols {
		if sym.Macro() {
			fmt.Fprintf(&l.body, "%-32s%-10s%d\n", sym.Name, "MACRO", sym.LineNo)
			continue
		}
		fmt.Fprintf(&l.body, "%-32s%08X  %d", sym.Name, uint32(sym.Value), sym.LineNo)
		for _, ref := range sym.Refs {
			fmt.Fprintf(&l.body, " %d", ref)
		}
		l.body.WriteString("\n")
	}
}

// Flush writes the header, with the starting address, and the body to w.
func (l *Listing) Flush(w io.Writer, start int32) (err error) {
	_, err = fmt.Fprintf(w, "%08X Starting Address\nAssembler used: %s\n\n", uint32(start), TITLE)
	if err != nil {
		return
	}
	_, err = w.Write(l.body.Bytes())
	return
}
