// Package expr evaluates assembler expressions.
//
// An expression is scanned in assembler syntax ($hex, %binary, @octal,
// 'c' character constants, * for the location counter, ! for OR) and
// rewritten into an equivalent Starlark expression whose symbols are
// predeclared values. Starlark then does the arithmetic. Division
// truncates toward zero.
package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/translate"
)

var f = translate.From

// ErrParseExpression reports an expression starlark could not evaluate.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}

func (err ErrParseExpression) Unwrap() error {
	return diag.ErrSyntax
}

// Scope resolves the names an expression can see.
type Scope interface {
	// Lookup returns a symbol's value and whether it was defined earlier
	// in the current pass.
	Lookup(name string) (value int32, backRef bool, ok bool)
	// Loc is the location counter, the value of '*'.
	Loc() int32
	// Pass2 is true during the second pass.
	Pass2() bool
}

// Evaluator evaluates expressions against a scope.
type Evaluator struct {
	Scope Scope
}

var mask32 = big.NewInt(0xffffffff)

var errDivByZero = errors.New("division by zero")

// word is an expression operand. It behaves as a starlark int, except
// that its division truncates toward zero.
type word struct {
	starlark.Int
}

func asInt(v starlark.Value) (i starlark.Int, ok bool) {
	switch v := v.(type) {
	case word:
		return v.Int, true
	case starlark.Int:
		return v, true
	}
	return
}

// Binary implements starlark.HasBinary.
func (w word) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	other, ok := asInt(y)
	if !ok {
		return nil, nil
	}
	a, b := w.Int, other
	if side == starlark.Right {
		a, b = b, a
	}
	if op == syntax.SLASHSLASH {
		if b.Sign() == 0 {
			return nil, errDivByZero
		}
		return word{starlark.MakeBigInt(new(big.Int).Quo(a.BigInt(), b.BigInt()))}, nil
	}
	z, err := starlark.Binary(op, a, b)
	if err != nil {
		return nil, err
	}
	i, ok := z.(starlark.Int)
	if !ok {
		return nil, nil
	}
	return word{i}, nil
}

// Unary implements starlark.HasUnary.
func (w word) Unary(op syntax.Token) (starlark.Value, error) {
	z, err := starlark.Unary(op, w.Int)
	if err != nil {
		return nil, err
	}
	i, ok := z.(starlark.Int)
	if !ok {
		return nil, nil
	}
	return word{i}, nil
}

// scanner accumulates the rewritten expression.
type scanner struct {
	text    string
	pos     int
	depth   int
	src     strings.Builder
	env     starlark.StringDict
	backRef bool
}

func (sc *scanner) emit(str string) {
	sc.src.WriteString(str)
	sc.src.WriteByte(' ')
}

// bind emits an operand as a predeclared word.
func (sc *scanner) bind(value *big.Int) {
	key := fmt.Sprintf("v%d", len(sc.env))
	sc.env[key] = word{starlark.MakeBigInt(value)}
	sc.emit(key)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// digitValue returns the value of a hexadecimal digit, or 99.
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	}
	return 99
}

func isAlpha(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

// Eval evaluates the longest expression at the start of text. It returns
// the value truncated to 32 bits, whether every symbol it used was a back
// reference, and the text following the expression.
func (ev *Evaluator) Eval(text string) (value int32, backRef bool, rest string, err error) {
	sc := &scanner{text: text, env: starlark.StringDict{}, backRef: true}

	err = ev.scan(sc)
	rest = text[sc.pos:]
	if err != nil {
		return
	}

	value, err = evaluate(sc.src.String(), sc.env)
	backRef = sc.backRef
	return
}

// Value evaluates text, which must be a single complete expression.
func (ev *Evaluator) Value(text string) (value int32, backRef bool, err error) {
	value, backRef, rest, err := ev.Eval(text)
	if err == nil && len(strings.TrimSpace(rest)) != 0 {
		err = diag.ErrSyntax
	}
	return
}

func (ev *Evaluator) scan(sc *scanner) (err error) {
	expect := true

	for sc.pos < len(sc.text) {
		c := sc.text[sc.pos]

		// Whitespace ends an expression unless it is parenthesized.
		if c == ' ' || c == '\t' {
			if sc.depth == 0 {
				break
			}
			sc.pos++
			continue
		}

		if expect {
			switch {
			case c == '-' || c == '+' || c == '~':
				sc.emit(string(c))
				sc.pos++
				continue
			case c == '(':
				sc.emit("(")
				sc.depth++
				sc.pos++
				continue
			case isDigit(c):
				err = sc.number(10, sc.pos)
			case c == '$':
				err = sc.number(16, sc.pos+1)
			case c == '%':
				err = sc.number(2, sc.pos+1)
			case c == '@':
				err = sc.number(8, sc.pos+1)
			case c == '\'':
				err = sc.character()
			case c == '*':
				sc.bind(big.NewInt(int64(ev.Scope.Loc())))
				sc.pos++
			case isIdentStart(c):
				err = ev.symbol(sc)
			default:
				err = diag.ErrSyntax
			}
			if err != nil {
				return
			}
			expect = false
			continue
		}

		op := ""
		width := 1
		switch c {
		case ')':
			if sc.depth == 0 {
				return sc.finish(expect)
			}
			sc.depth--
			sc.emit(")")
			sc.pos++
			continue
		case '+', '-', '*', '&', '|', '^':
			op = string(c)
		case '!':
			op = "|"
		case '/':
			op = "//"
		case '<', '>':
			if sc.pos+1 < len(sc.text) && sc.text[sc.pos+1] == c {
				op = string(c) + string(c)
				width = 2
			}
		}
		if len(op) == 0 {
			break
		}
		sc.emit(op)
		sc.pos += width
		expect = true
	}

	return sc.finish(expect)
}

func (sc *scanner) finish(expect bool) error {
	if expect || sc.depth != 0 {
		return diag.ErrSyntax
	}
	return nil
}

// number scans digits of the given base starting at start.
func (sc *scanner) number(base int, start int) (err error) {
	end := start
	for end < len(sc.text) && digitValue(sc.text[end]) < base {
		end++
	}
	if end == start {
		return diag.ErrSyntax
	}
	digits := sc.text[start:end]
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return diag.ErrSyntax
	}
	sc.bind(value)
	sc.pos = end
	return
}

// character scans a quoted constant of up to four characters.
func (sc *scanner) character() (err error) {
	var value uint32
	count := 0
	pos := sc.pos + 1
	for {
		if pos >= len(sc.text) {
			return diag.ErrSyntax
		}
		c := sc.text[pos]
		if c == '\'' {
			if pos+1 < len(sc.text) && sc.text[pos+1] == '\'' {
				pos++
			} else {
				pos++
				break
			}
		}
		count++
		if count > 4 {
			return diag.ErrSyntax
		}
		value = (value << 8) | uint32(c)
		pos++
	}
	sc.bind(new(big.Int).SetUint64(uint64(value)))
	sc.pos = pos
	return
}

// symbol scans a name and binds its value into the environment.
func (ev *Evaluator) symbol(sc *scanner) (err error) {
	end := sc.pos
	for end < len(sc.text) && isIdentChar(sc.text[end]) {
		end++
	}
	name := sc.text[sc.pos:end]
	sc.pos = end

	value, backRef, ok := ev.Scope.Lookup(name)
	if !ok {
		if ev.Scope.Pass2() {
			return diag.ErrUndefined
		}
		value = 0
		backRef = false
	}
	if !backRef {
		sc.backRef = false
	}

	sc.bind(big.NewInt(int64(value)))
	return
}

// evaluate runs the rewritten expression through starlark.
func evaluate(expr string, env starlark.StringDict) (value int32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, env)
	if err != nil {
		if strings.Contains(err.Error(), "by zero") {
			err = diag.ErrDivByZero
		} else {
			err = ErrParseExpression(expr)
		}
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := asInt(st_rc)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	low := new(big.Int).And(st_int.BigInt(), mask32)
	value = int32(uint32(low.Uint64()))
	return
}
