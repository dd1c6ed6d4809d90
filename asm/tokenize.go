package asm

import (
	"strings"

	"github.com/ezrec/asm68k/diag"
)

const (
	LINE_LIMIT  = 255 // Longest source line.
	TOKEN_LIMIT = 128 // Most tokens in a line, label slot included.
	TOKEN_BYTES = 512 // Most token text in a line.
)

// Token is one field of a line.
type Token struct {
	Text    string
	Present bool
}

// Tokens are the fields of a line. Slot 0 is the label, and is absent
// for an indented line.
type Tokens []Token

// At returns the token in slot n. Slots past the end are absent.
func (toks Tokens) At(n int) Token {
	if n < 0 || n >= len(toks) {
		return Token{}
	}
	return toks[n]
}

// Text returns the text of slot n, or "" for an absent slot.
func (toks Tokens) Text(n int) string {
	return toks.At(n).Text
}

// From returns the tokens from slot n on.
func (toks Tokens) From(n int) Tokens {
	if n >= len(toks) {
		return nil
	}
	return toks[n:]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

// isLabelChar reports whether c may follow the first character of a label.
func isLabelChar(c byte) bool {
	return isAlnum(c) || c == '.' || c == '_' || c == '$'
}

func skipSpace(text string) string {
	return strings.TrimLeft(text, " \t\n\r\v\f")
}

// isComment reports whether a line holds only a comment.
func isComment(line string) bool {
	line = skipSpace(line)
	return strings.HasPrefix(line, "*") || strings.HasPrefix(line, ";")
}

// Tokenize splits a line at the delimiter characters. Delimiters inside
// parentheses or single quotes do not split. When '.' is a delimiter it
// also starts the following token, so "IF.B" is "IF" and ".B". A token
// written as "''" is present but empty.
func Tokenize(line string, delimiters string) (toks Tokens, err error) {
	dotDelimiter := strings.IndexByte(delimiters, '.') >= 0
	isDelimiter := func(c byte) bool {
		return strings.IndexByte(delimiters, c) >= 0
	}

	rest := skipSpace(line)
	if strings.HasPrefix(rest, "*") || strings.HasPrefix(rest, ";") {
		return
	}
	if len(rest) != len(line) {
		toks = append(toks, Token{})
	}

	size := 0
	quoted := false
	p := len(line) - len(rest)
	for p < len(line) {
		if len(toks) >= TOKEN_LIMIT {
			err = diag.ErrLineTooLong
			return
		}
		for p < len(line) && isSpace(line[p]) {
			p++
		}

		empty := false
		if strings.HasPrefix(line[p:], "''") {
			empty = true
			p += 2
		}
		start := p
		if dotDelimiter && p < len(line) && line[p] == '.' {
			p++
		}
		depth := 0
		for p < len(line) && (!isDelimiter(line[p]) || depth > 0 || quoted) {
			switch line[p] {
			case '\'':
				quoted = !quoted
			case '(':
				depth++
			case ')':
				depth--
			}
			p++
		}

		text := strings.TrimSpace(line[start:p])
		if empty {
			text = ""
		}
		size += len(text) + 1
		if size > TOKEN_BYTES {
			err = diag.ErrLineTooLong
			return
		}
		toks = append(toks, Token{Text: text, Present: true})

		if p < len(line) && (!dotDelimiter || line[p] != '.') {
			p++
		}
		for p < len(line) && isSpace(line[p]) {
			p++
		}
	}

	return
}

// strcap upper cases a line, except inside single quotes.
func strcap(line string) string {
	buf := []byte(line)
	upper := true
	for n, c := range buf {
		if upper && c >= 'a' && c <= 'z' {
			buf[n] = c - 'a' + 'A'
		}
		if c == '\'' {
			upper = !upper
		}
	}
	return string(buf)
}

// mnemonic is a token without its size suffix.
func mnemonic(text string) string {
	name, _, _ := strings.Cut(text, ".")
	return name
}

// definers are the directives that name their label.
var definers = map[string]bool{
	"MACRO": true,
	"EQU":   true,
	"SET":   true,
}

// unlabel indents a line that starts in column 0 with a reserved word, so
// that word is not taken for a label. A word ending in ':' is always a
// label, and so is a word followed by MACRO, EQU or SET.
func (run *Run) unlabel(line string) string {
	if len(line) == 0 || isSpace(line[0]) {
		return line
	}
	end := 0
	for end < len(line) && isLabelChar(line[end]) {
		end++
	}
	if end < len(line) && line[end] == ':' {
		return line
	}
	if !run.reserved(mnemonic(line[:end])) {
		return line
	}
	next := skipSpace(line[end:])
	word := 0
	for word < len(next) && isLabelChar(next[word]) {
		word++
	}
	if definers[mnemonic(next[:word])] {
		return line
	}
	return " " + line
}
