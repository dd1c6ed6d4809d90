package asm

import (
	"strings"
)

// Operand order categories of a structured comparison. The category is
// the column of the branch table; the OR form of a category is the next
// column.
const (
	IF_CC = 1 // <cc>, the flags are already set.
	RN_EA = 1 // Rn <cc> ea, compared with CMP ea,Rn.
	EA_IM = 1 // ea <cc> #n, compared with CMP #n,ea.
	EA_RN = 3 // ea <cc> Rn, compared with CMP ea,Rn.
	IM_EA = 3 // #n <cc> ea, compared with CMP #n,ea.
)

// relation is a condition code with its negation and its mirror, the
// condition that holds when the compared operands are swapped.
type relation struct {
	not    string
	mirror string
}

var relations = map[string]relation{
	"GT": {"LE", "LT"},
	"GE": {"LT", "LE"},
	"LT": {"GE", "GT"},
	"LE": {"GT", "GE"},
	"EQ": {"NE", "EQ"},
	"NE": {"EQ", "NE"},
	"HI": {"LS", "LO"},
	"HS": {"LO", "LS"},
	"CC": {"LO", "LS"},
	"LO": {"HS", "HI"},
	"CS": {"HS", "HI"},
	"LS": {"HI", "HS"},
	"MI": {"PL", "MI"},
	"PL": {"MI", "PL"},
	"VC": {"VS", "VC"},
	"VS": {"VC", "VS"},
}

// resolveBranch returns the branch mnemonic for a "<cc>" condition. The
// plain columns branch when the condition fails, around the guarded
// code. The OR columns branch when it holds. An unknown condition is
// "B??", which no instruction matches.
//
//	column  1 (IF_CC)  2 (OR)  3 (EA_RN)         4 (OR)
//	branch  not cc     cc      not mirror(cc)    mirror(cc)
func resolveBranch(cc string, category int, or bool) string {
	cc = strings.ToUpper(cc)
	if !strings.HasPrefix(cc, "<") || !strings.HasSuffix(cc, ">") {
		return "B??"
	}
	name := cc[1 : len(cc)-1]
	rel, ok := relations[name]
	if !ok {
		return "B??"
	}

	column := category
	if or {
		column++
	}
	switch column {
	case 1:
		return "B" + rel.not
	case 2:
		return "B" + name
	case 3:
		return "B" + relations[rel.mirror].not
	}
	return "B" + rel.mirror
}
