package asm

import (
	"fmt"
	"strings"

	"github.com/ezrec/asm68k/diag"
)

// LAST_TOKEN is the last slot searched for THEN or DO.
const LAST_TOKEN = 11

// after finds keyword from slot 3 on, and returns the token following it.
func (toks Tokens) after(keyword string) (next string, ok bool) {
	for n := 3; n <= LAST_TOKEN; n++ {
		if toks.Text(n) == keyword {
			return toks.Text(n + 1), true
		}
	}
	return "", false
}

// joined returns the slot of a second condition joined to the one at
// slot n, and whether it is joined by OR. sub is 0 without one.
func (toks Tokens) joined(n int) (sub int, or bool) {
	switch {
	case toks.Text(n+1) == "OR":
		return n + 2, true
	case toks.Text(n+3) == "OR":
		return n + 4, true
	case toks.Text(n+1) == "AND":
		return n + 2, false
	case toks.Text(n+3) == "AND":
		return n + 4, false
	}
	return 0, false
}

// isRegister reports whether text starts with a data or address register.
func isRegister(text string) bool {
	return len(text) >= 2 && (text[0] == 'D' || text[0] == 'A') && text[1] >= '0' && text[1] <= '7'
}

// isPostIncrement reports whether text is (An)+ or (SP)+.
func isPostIncrement(text string) bool {
	return len(text) >= 5 && text[0] == '(' && text[3] == ')' && text[4] == '+'
}

// sizeSuffix checks a .B, .W or .L token.
func sizeSuffix(text string) (size string, err error) {
	if len(text) < 2 {
		err = diag.ErrSyntax
		return
	}
	switch text[1] {
	case 'B', 'W', 'L':
		size = text[:2]
	default:
		err = diag.ErrSyntax
	}
	return
}

// extentSuffix converts a .S or .L token into a branch size and tab.
func extentSuffix(text string) (extent string, err error) {
	extent = "\t"
	if !strings.HasPrefix(text, ".") {
		return
	}
	switch {
	case strings.HasPrefix(text, ".S"):
		extent = ".S\t"
	case strings.HasPrefix(text, ".L"):
		extent = ".L\t"
	default:
		err = diag.ErrSyntax
	}
	return
}

// compare builds the CMP line of a condition, "" for a bare <cc>. It
// returns the condition and the branch table category.
func compare(toks Tokens) (line string, cc string, category int, err error) {
	n := 0
	size := ".W"
	if strings.HasPrefix(toks.Text(0), ".") {
		size, err = sizeSuffix(toks.Text(0))
		if err != nil {
			return
		}
		n++
	}

	cmp := "\tCMP" + size + "\t"
	op1, op2 := toks.Text(n), toks.Text(n+2)
	cc = toks.Text(n + 1)
	switch {
	case strings.HasPrefix(op1, "<"):
		cc = op1
		category = IF_CC
	case strings.HasPrefix(op1, "#"):
		line = cmp + op1 + "," + op2
		category = IM_EA
	case strings.HasPrefix(op2, "#"):
		line = cmp + op2 + "," + op1
		category = EA_IM
	case isRegister(op1):
		line = cmp + op2 + "," + op1
		category = RN_EA
	case isRegister(op2):
		line = cmp + op1 + "," + op2
		category = EA_RN
	case isPostIncrement(op1):
		line = cmp + op1 + "," + op2
		category = RN_EA
	default:
		err = diag.ErrSyntax
	}
	return
}

// compareBranch emits the test of one condition and a branch to label.
// last is the suffix of THEN or DO. A condition followed by OR branches
// when it holds, with a short branch.
func (run *Run) compareBranch(toks Tokens, last string, label string) (err error) {
	n := 0
	if strings.HasPrefix(toks.Text(0), ".") {
		n = 1
	}

	cmp, cc, category, err := compare(toks)
	if err != nil {
		return
	}
	extent, err := extentSuffix(last)
	if err != nil {
		return
	}
	or := toks.Text(n+1) == "OR" || toks.Text(n+3) == "OR"
	if or {
		extent = ".S\t"
	}

	if cmp != "" {
		err = run.assembleStc(cmp)
	}
	err = diag.Worst(err, run.assembleStc("\t"+resolveBranch(cc, category, or)+extent+label))
	return
}

// condition emits the tests of an IF or WHILE statement, which branch to
// the returned label when the statement condition fails.
func (run *Run) condition(toks Tokens, n int, kind Kind, last string) (label uint32, err error) {
	ctx := &run.ctx

	label = ctx.labels[kind]
	err = run.compareBranch(toks.From(2), last, labelName(label))

	sub, or := toks.joined(n)
	if sub == 0 {
		return
	}
	if or {
		body := label
		ctx.labels[kind]++
		label = ctx.labels[kind]
		err = diag.Worst(err, run.compareBranch(toks.From(sub), last, labelName(label)))
		err = diag.Worst(err, run.assembleStc(labelName(body)))
	} else {
		err = diag.Worst(err, run.compareBranch(toks.From(sub), last, labelName(label)))
	}
	return
}

// push opens a structured statement.
func (run *Run) push(label uint32) error {
	if !run.control.Push(label) {
		return diag.ErrNestTooDeep
	}
	return nil
}

// pop closes a structured statement of the given kind.
func (run *Run) pop(kind Kind, mismatch diag.Code) (label uint32, err error) {
	label, ok := run.control.Pop()
	if !ok || kindOf(label) != kind {
		err = mismatch
	}
	return
}

// structure lowers a structured statement into compare and branch lines.
func (run *Run) structure(op *operation) (err error) {
	ctx := &run.ctx

	err = run.define(op.Label, ctx.Loc)
	run.listAhead()
	defer func() { ctx.skipList = true }()

	toks, tokErr := Tokenize(op.Text, ". \t\n")
	if tokErr != nil {
		err = diag.Worst(err, tokErr)
		return
	}
	n := 2
	if strings.HasPrefix(toks.Text(2), ".") {
		n = 3
	}

	var serr error
	switch op.Name {
	case "IF":
		serr = run.structIf(toks, n)
	case "ELSE":
		serr = run.structElse(toks)
	case "ENDI":
		serr = run.structEndi()
	case "WHILE":
		serr = run.structWhile(toks, n)
	case "ENDW":
		serr = run.structEndw()
	case "REPEAT":
		serr = run.structRepeat()
	case "UNTIL":
		serr = run.structUntil(toks, n)
	case "FOR":
		serr = run.structFor(toks, n)
	case "ENDF":
		serr = run.structEndf()
	case "DBLOOP":
		serr = run.structDbloop(toks)
	case "UNLESS":
		serr = run.structUnless(toks, n)
	}
	err = diag.Worst(err, serr)
	return
}

// IF[.size] cond [AND|OR cond] THEN[.extent]
func (run *Run) structIf(toks Tokens, n int) (err error) {
	ctx := &run.ctx

	last, ok := toks.after("THEN")
	if !ok {
		err = diag.ErrThenExpected
	}
	label, cerr := run.condition(toks, n, KIND_IF, last)
	err = diag.Worst(err, cerr)
	err = diag.Worst(err, run.push(label))
	ctx.labels[KIND_IF]++
	return
}

// ELSE[.extent]
func (run *Run) structElse(toks Tokens) (err error) {
	ctx := &run.ctx

	label, err := run.pop(KIND_IF, diag.ErrNoIf)
	if err != nil {
		return
	}
	extent, err := extentSuffix(toks.Text(2))

	next := ctx.labels[KIND_IF]
	err = diag.Worst(err, run.assembleStc("\tBRA"+extent+labelName(next)))
	err = diag.Worst(err, run.push(next))
	ctx.labels[KIND_IF]++
	err = diag.Worst(err, run.assembleStc(labelName(label)))
	return
}

// ENDI
func (run *Run) structEndi() (err error) {
	label, err := run.pop(KIND_IF, diag.ErrNoIf)
	if err != nil {
		return
	}
	return run.assembleStc(labelName(label))
}

// WHILE[.size] cond [AND|OR cond] DO[.extent], or WHILE <T> DO
func (run *Run) structWhile(toks Tokens, n int) (err error) {
	ctx := &run.ctx

	top := ctx.labels[KIND_WHILE]
	err = run.assembleStc(labelName(top))
	err = diag.Worst(err, run.push(top))
	ctx.labels[KIND_WHILE]++

	label := ctx.labels[KIND_WHILE]
	last, ok := toks.after("DO")
	if !ok {
		err = diag.Worst(err, diag.ErrDoExpected)
	}
	if toks.Text(n) != "<T>" {
		var cerr error
		label, cerr = run.condition(toks, n, KIND_WHILE, last)
		err = diag.Worst(err, cerr)
	}
	err = diag.Worst(err, run.push(label))
	ctx.labels[KIND_WHILE]++
	return
}

// ENDW
func (run *Run) structEndw() (err error) {
	test, err := run.pop(KIND_WHILE, diag.ErrNoWhile)
	if err != nil {
		return
	}
	top, err := run.pop(KIND_WHILE, diag.ErrNoWhile)
	if err != nil {
		return
	}
	err = run.assembleStc("\tBRA\t" + labelName(top))
	err = diag.Worst(err, run.assembleStc(labelName(test)))
	return
}

// REPEAT
func (run *Run) structRepeat() (err error) {
	ctx := &run.ctx

	top := ctx.labels[KIND_REPEAT]
	err = run.assembleStc(labelName(top))
	err = diag.Worst(err, run.push(top))
	ctx.labels[KIND_REPEAT]++
	return
}

// UNTIL[.size] cond [AND|OR cond] [DO[.extent]]
func (run *Run) structUntil(toks Tokens, n int) (err error) {
	ctx := &run.ctx

	top, err := run.pop(KIND_REPEAT, diag.ErrNoRepeat)
	if err != nil {
		return
	}
	last, _ := toks.after("DO")

	sub, or := toks.joined(n)
	if sub != 0 && or {
		// Either condition leaves the loop.
		exit := ctx.labels[KIND_REPEAT]
		err = run.compareBranch(toks.From(2), last, labelName(exit))
		err = diag.Worst(err, run.compareBranch(toks.From(sub), last, labelName(top)))
		err = diag.Worst(err, run.assembleStc(labelName(exit)))
		ctx.labels[KIND_REPEAT]++
		return
	}

	err = run.compareBranch(toks.From(2), last, labelName(top))
	if sub != 0 {
		err = diag.Worst(err, run.compareBranch(toks.From(sub), last, labelName(top)))
	}
	return
}

// FOR[.size] op1 = op2 TO|DOWNTO op3 [BY op4] DO[.extent]
func (run *Run) structFor(toks Tokens, n int) (err error) {
	ctx := &run.ctx

	size := ".W"
	if n == 3 {
		size, err = sizeSuffix(toks.Text(2))
		if err != nil {
			return
		}
	}
	last, ok := toks.after("DO")
	if !ok {
		err = diag.ErrDoExpected
	}
	extent, xerr := extentSuffix(last)
	err = diag.Worst(err, xerr)

	op1, op2, op3 := toks.Text(n), toks.Text(n+2), toks.Text(n+4)
	if toks.Text(n+1) != "=" {
		err = diag.Worst(err, diag.ErrSyntax)
		return
	}
	branch, step := "BLE", "ADD"
	switch toks.Text(n + 3) {
	case "TO":
	case "DOWNTO":
		branch, step = "BGE", "SUB"
	default:
		err = diag.Worst(err, diag.ErrSyntax)
		return
	}
	by := "#1"
	if toks.Text(n+5) == "BY" {
		by = toks.Text(n + 6)
	}

	if op1 != op2 {
		err = diag.Worst(err, run.assembleStc("\tMOVE"+size+"\t"+op2+","+op1))
	}
	entry := ctx.labels[KIND_FOR]
	ctx.labels[KIND_FOR]++
	test := ctx.labels[KIND_FOR]
	err = diag.Worst(err, run.assembleStc("\tBRA"+extent+labelName(test)))
	err = diag.Worst(err, run.push(test))
	err = diag.Worst(err, run.assembleStc(labelName(entry)))

	for _, line := range []string{
		"\t" + branch + extent + labelName(entry),
		"\tCMP" + size + "\t" + op3 + "," + op1,
		"\t" + step + size + "\t" + by + "," + op1,
	} {
		if !run.deferred.Push(line) {
			err = diag.Worst(err, diag.ErrNestTooDeep)
		}
	}
	ctx.labels[KIND_FOR]++
	return
}

// ENDF
func (run *Run) structEndf() (err error) {
	test, err := run.pop(KIND_FOR, diag.ErrNoFor)
	if err != nil {
		return
	}

	step, _ := run.deferred.Pop()
	cmp, _ := run.deferred.Pop()
	branch, _ := run.deferred.Pop()

	err = run.assembleStc(step)
	err = diag.Worst(err, run.assembleStc(labelName(test)))
	err = diag.Worst(err, run.assembleStc(cmp))
	err = diag.Worst(err, run.assembleStc(branch))
	return
}

// DBLOOP Dn = op
func (run *Run) structDbloop(toks Tokens) (err error) {
	ctx := &run.ctx

	reg := toks.Text(2)
	if len(reg) != 2 || !isRegister(reg) || reg[0] != 'D' || toks.Text(3) != "=" {
		return diag.ErrSyntax
	}
	if !run.loopReg.Push(int(reg[1] - '0')) {
		return diag.ErrNestTooDeep
	}
	if count := toks.Text(4); count != reg {
		err = run.assembleStc("\tMOVE\t" + count + "," + reg)
	}

	top := ctx.labels[KIND_DBLOOP]
	err = diag.Worst(err, run.assembleStc(labelName(top)))
	err = diag.Worst(err, run.push(top))
	ctx.labels[KIND_DBLOOP]++
	return
}

// UNLESS, UNLESS <F> or UNLESS[.size] cond
func (run *Run) structUnless(toks Tokens, n int) (err error) {
	top, err := run.pop(KIND_DBLOOP, diag.ErrNoDbloop)
	reg, ok := run.loopReg.Pop()
	if err != nil {
		return
	}
	if !ok {
		return diag.ErrNoDbloop
	}
	target := fmt.Sprintf("\tD%d,%s", reg, labelName(top))

	if !toks.At(2).Present || toks.Text(n) == "<F>" {
		return run.assembleStc("\tDBRA" + target)
	}

	cmp, cc, category, err := compare(toks.From(2))
	if err != nil {
		return
	}
	if cmp != "" {
		err = run.assembleStc(cmp)
	}
	err = diag.Worst(err, run.assembleStc("\tD"+resolveBranch(cc, category, false)+target))
	return
}
