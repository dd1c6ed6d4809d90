// Package asm implements a two pass 68000 assembler.
//
// A Run reads the whole source, then assembles it twice. The first pass
// only assigns addresses to symbols; the second pass repeats the work with
// every forward reference resolved, reports the diagnostics, and writes the
// listing and the S-record object code.
//
// Every source line goes through the same entry point. Comments and blank
// lines are listed and otherwise ignored. The conditional assembly
// directives (IFC, IFNC, IFEQ, IFNE, IFLT, IFLE, IFGT, IFGE and ENDC) are
// evaluated first and may put the pass into a skipping state. Any other
// line is dispatched on its mnemonic to the instruction table, to a
// directive, or to a macro.
//
// The structured statements (IF/ELSE/ENDI, WHILE/ENDW, REPEAT/UNTIL,
// FOR/ENDF and DBLOOP/UNLESS) are lowered into CMP and branch lines that
// are fed back into the line entry point, so they are checked and encoded
// exactly like hand written code.
package asm
