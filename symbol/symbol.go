// Package symbol implements the assembler symbol table.
package symbol

import (
	"iter"
	"slices"

	"github.com/ezrec/asm68k/diag"
	"github.com/ezrec/asm68k/internal"
)

// Flags describe how a symbol was defined.
type Flags int

const (
	FLAG_BACKREF   = Flags(1 << 0) // Defined earlier in the current pass.
	FLAG_REDEFINE  = Flags(1 << 1) // SET symbol, may be redefined.
	FLAG_MACRO     = Flags(1 << 2) // Names a macro.
	FLAG_MULTIPLE  = Flags(1 << 3) // Permanent symbol defined twice in pass 1.
	FLAG_PREDEFINE = Flags(1 << 4) // Seeded before pass 1.
)

// Symbol is one table entry.
type Symbol struct {
	Name   string
	Value  int32 // Current value.
	First  int32 // Value assigned during pass 1.
	Flags  Flags
	LineNo int   // Definition line.
	Refs   []int // Lines referring to the symbol (pass 2).

	definedPass int // Last pass (1 or 2) that defined the symbol.
}

// BackRef reports whether the symbol was defined earlier in this pass.
func (sym *Symbol) BackRef() bool {
	return sym.Flags&FLAG_BACKREF != 0
}

// Macro reports whether the symbol names a macro.
func (sym *Symbol) Macro() bool {
	return sym.Flags&FLAG_MACRO != 0
}

// Table maps symbol names to their definitions.
type Table struct {
	symbols map[string]*Symbol
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{symbols: make(map[string]*Symbol, 64)}
}

// Define binds name to value. Permanent symbols (labels, EQU) may be
// defined only once per pass and must keep their pass 1 value on pass 2.
func (tab *Table) Define(name string, value int32, pass2 bool, permanent bool, lineno int) (err error) {
	pass := 1
	if pass2 {
		pass = 2
	}

	sym, ok := tab.symbols[name]
	if ok && sym.Macro() {
		err = diag.ErrMultipleDefs
		return
	}
	if !ok {
		sym = &Symbol{Name: name}
		if !permanent {
			sym.Flags |= FLAG_REDEFINE
		}
		tab.symbols[name] = sym
	} else if sym.definedPass == pass && sym.Flags&(FLAG_REDEFINE|FLAG_PREDEFINE) == 0 {
		// Second definition within the same pass.
		if !pass2 {
			sym.Flags |= FLAG_MULTIPLE
			return
		}
		err = diag.ErrMultipleDefs
		return
	} else if permanent && sym.Flags&FLAG_REDEFINE != 0 {
		err = diag.ErrMultipleDefs
		return
	}

	if pass2 && permanent && sym.Flags&FLAG_MULTIPLE != 0 {
		err = diag.ErrMultipleDefs
	}

	if pass2 && permanent && sym.definedPass == 1 && sym.First != value && err == nil {
		err = diag.ErrPhaseError
	}

	if !pass2 {
		sym.First = value
	}
	sym.Value = value
	sym.LineNo = lineno
	sym.definedPass = pass
	sym.Flags |= FLAG_BACKREF
	sym.Flags &^= FLAG_PREDEFINE

	return
}

// Predefine seeds a redefinable symbol that survives pass boundaries.
func (tab *Table) Predefine(name string, value int32) {
	tab.symbols[name] = &Symbol{
		Name:  name,
		Value: value,
		First: value,
		Flags: FLAG_REDEFINE | FLAG_BACKREF | FLAG_PREDEFINE,
	}
}

// DefineMacro marks name as a macro. Macros are defined once in pass 1
// and are back references only after their definition in each pass.
func (tab *Table) DefineMacro(name string, pass2 bool, lineno int) (err error) {
	sym, ok := tab.symbols[name]
	if ok && !sym.Macro() {
		err = diag.ErrMultipleDefs
		return
	}
	pass := 1
	if pass2 {
		pass = 2
	}
	if !ok {
		sym = &Symbol{Name: name, Flags: FLAG_MACRO}
		tab.symbols[name] = sym
	} else if sym.definedPass == pass {
		err = diag.ErrMultipleDefs
		return
	}
	sym.LineNo = lineno
	sym.definedPass = pass
	sym.Flags |= FLAG_BACKREF
	return
}

// Lookup finds a symbol, recording a reference from lineno when lineno
// is positive.
func (tab *Table) Lookup(name string, lineno int) (sym *Symbol, ok bool) {
	sym, ok = tab.symbols[name]
	if ok && lineno > 0 && !slices.Contains(sym.Refs, lineno) {
		sym.Refs = append(sym.Refs, lineno)
	}
	return
}

// NextPass clears the back reference state before a new pass.
func (tab *Table) NextPass() {
	for _, sym := range tab.symbols {
		if sym.Flags&FLAG_PREDEFINE != 0 {
			continue
		}
		sym.Flags &^= FLAG_BACKREF
		sym.Refs = sym.Refs[:0]
	}
}

// Clear removes every symbol.
func (tab *Table) Clear() {
	clear(tab.symbols)
}

// Len returns the number of symbols.
func (tab *Table) Len() int {
	return len(tab.symbols)
}

// All yields the symbols sorted by name.
func (tab *Table) All() iter.Seq[*Symbol] {
	return func(yield func(*Symbol) bool) {
		for name := range internal.SortedKeys(tab.symbols) {
			if !yield(tab.symbols[name]) {
				return
			}
		}
	}
}
