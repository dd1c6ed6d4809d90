// Package diag defines the assembler diagnostics and their severities.
//
// Every diagnostic is a Code. A Code is an error, so callers return it,
// wrap it and test for it with the errors package. Severity
// classification lives only here: SeverityOf decides how bad any error
// is, including errors that never came from this package.
package diag

import (
	"errors"

	"github.com/ezrec/asm68k/translate"
)

var f = translate.From

// Severity orders diagnostics from harmless to fatal.
type Severity int

const (
	SEVERITY_OK        = Severity(0)
	SEVERITY_WARNING   = Severity(1)
	SEVERITY_MINOR     = Severity(2)
	SEVERITY_SEVERE    = Severity(3)
	SEVERITY_EXCEPTION = Severity(4)
)

// String returns the listing label for the severity.
func (sev Severity) String() string {
	switch sev {
	case SEVERITY_OK:
		return "OK"
	case SEVERITY_WARNING:
		return "WARNING"
	case SEVERITY_EXCEPTION:
		return "EXCEPTION"
	default:
		return "ERROR"
	}
}

// Code is a single assembler diagnostic.
type Code int

const (
	// Warnings
	ErrEndMissing = Code(iota + 1)
	ErrForwardRef
	ErrNumberTooBig

	// Minor errors
	ErrInvQuickConst
	ErrInvVectorNum
	ErrInvMoveqConst

	// Severe errors
	ErrSyntax
	ErrInvOpcode
	ErrInvSizeCode
	ErrCommaExpected
	ErrIllegalSymbol
	ErrLabelTooLong
	ErrLabelError
	ErrLabelRequired
	ErrInvalidArg
	ErrBadBitfield
	ErrInvForwardRef
	ErrInvAddrMode
	ErrUndefined
	ErrMultipleDefs
	ErrPhaseError
	ErrDivByZero
	ErrInvBranchDisp
	ErrInvDisp
	ErrLineTooLong
	ErrNestTooDeep
	ErrNoIf
	ErrNoWhile
	ErrNoRepeat
	ErrNoFor
	ErrNoDbloop
	ErrThenExpected
	ErrDoExpected
	ErrStructUnclosed
	ErrMacroNesting
	ErrNoMacro
	ErrMacroUnclosed
	ErrIncludeFile
	ErrIncludeNesting

	// Internal failure
	ErrException
)

type codeInfo struct {
	severity Severity
	message  string
}

var codes = map[Code]codeInfo{
	ErrEndMissing:   {SEVERITY_WARNING, "END directive missing, starting address not set"},
	ErrForwardRef:   {SEVERITY_WARNING, "Forward reference"},
	ErrNumberTooBig: {SEVERITY_WARNING, "Number too large"},

	ErrInvQuickConst: {SEVERITY_MINOR, "Quick immediate data range must be 1 to 8"},
	ErrInvVectorNum:  {SEVERITY_MINOR, "Invalid vector number"},
	ErrInvMoveqConst: {SEVERITY_MINOR, "MOVEQ instruction constant out of range"},

	ErrSyntax:         {SEVERITY_SEVERE, "Invalid syntax"},
	ErrInvOpcode:      {SEVERITY_SEVERE, "Invalid opcode"},
	ErrInvSizeCode:    {SEVERITY_SEVERE, "Invalid size code"},
	ErrCommaExpected:  {SEVERITY_SEVERE, "Comma expected"},
	ErrIllegalSymbol:  {SEVERITY_SEVERE, "Illegal symbol"},
	ErrLabelTooLong:   {SEVERITY_SEVERE, "Label too long"},
	ErrLabelError:     {SEVERITY_SEVERE, "Label not allowed"},
	ErrLabelRequired:  {SEVERITY_SEVERE, "Label required"},
	ErrInvalidArg:     {SEVERITY_SEVERE, "Invalid argument"},
	ErrBadBitfield:    {SEVERITY_SEVERE, "Invalid bit field"},
	ErrInvForwardRef:  {SEVERITY_SEVERE, "Forward reference not allowed"},
	ErrInvAddrMode:    {SEVERITY_SEVERE, "Invalid addressing mode"},
	ErrUndefined:      {SEVERITY_SEVERE, "Undefined symbol"},
	ErrMultipleDefs:   {SEVERITY_SEVERE, "Symbol defined more than once"},
	ErrPhaseError:     {SEVERITY_SEVERE, "Symbol value differs between passes"},
	ErrDivByZero:      {SEVERITY_SEVERE, "Division by zero"},
	ErrInvBranchDisp:  {SEVERITY_SEVERE, "Branch out of range"},
	ErrInvDisp:        {SEVERITY_SEVERE, "Displacement out of range"},
	ErrLineTooLong:    {SEVERITY_SEVERE, "Line too long"},
	ErrNestTooDeep:    {SEVERITY_SEVERE, "Nesting too deep"},
	ErrNoIf:           {SEVERITY_SEVERE, "ELSE or ENDI without IF"},
	ErrNoWhile:        {SEVERITY_SEVERE, "ENDW without WHILE"},
	ErrNoRepeat:       {SEVERITY_SEVERE, "UNTIL without REPEAT"},
	ErrNoFor:          {SEVERITY_SEVERE, "ENDF without FOR"},
	ErrNoDbloop:       {SEVERITY_SEVERE, "UNLESS without DBLOOP"},
	ErrThenExpected:   {SEVERITY_SEVERE, "THEN expected"},
	ErrDoExpected:     {SEVERITY_SEVERE, "DO expected"},
	ErrStructUnclosed: {SEVERITY_SEVERE, "Structured statement not closed"},
	ErrMacroNesting:   {SEVERITY_SEVERE, "MACRO definition inside MACRO"},
	ErrNoMacro:        {SEVERITY_SEVERE, "ENDM without MACRO"},
	ErrMacroUnclosed:  {SEVERITY_SEVERE, "MACRO without ENDM"},
	ErrIncludeFile:    {SEVERITY_SEVERE, "Include file not found"},
	ErrIncludeNesting: {SEVERITY_SEVERE, "Include files nested too deep"},

	ErrException: {SEVERITY_EXCEPTION, "An exception occurred"},
}

func (code Code) Error() string {
	info, ok := codes[code]
	if !ok {
		return f("diagnostic %d", int(code))
	}
	return f(info.message)
}

// Severity returns the fixed severity of the code.
func (code Code) Severity() Severity {
	info, ok := codes[code]
	if !ok {
		return SEVERITY_EXCEPTION
	}
	return info.severity
}

// SeverityOf classifies any error. A nil error is OK, an error wrapping a
// Code has that code's severity, and anything else is an exception.
func SeverityOf(err error) Severity {
	if err == nil {
		return SEVERITY_OK
	}
	var code Code
	if errors.As(err, &code) {
		return code.Severity()
	}
	return SEVERITY_EXCEPTION
}

// Worst returns the more severe of two diagnostics, preferring the first
// on a tie.
func Worst(a, b error) error {
	if SeverityOf(b) > SeverityOf(a) {
		return b
	}
	return a
}

// Fatal reports whether err stops processing of the current line.
func Fatal(err error) bool {
	return SeverityOf(err) >= SEVERITY_SEVERE
}

// IsError reports whether err is counted as an error rather than a warning.
func IsError(err error) bool {
	return SeverityOf(err) >= SEVERITY_MINOR
}

// ErrLine locates a diagnostic in the source.
type ErrLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrLine) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrLine) Unwrap() error {
	return err.Err
}
