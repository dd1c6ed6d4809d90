package symbol

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/asm68k/diag"
)

func TestTable_Define(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.Define("LOOP", 0x400, false, true, 1))

	sym, ok := tab.Lookup("LOOP", 0)
	assert.True(ok)
	assert.Equal(int32(0x400), sym.Value)
	assert.Equal(int32(0x400), sym.First)
	assert.True(sym.BackRef())

	tab.NextPass()
	sym, _ = tab.Lookup("LOOP", 0)
	assert.False(sym.BackRef())

	assert.NoError(tab.Define("LOOP", 0x400, true, true, 1))
	assert.True(sym.BackRef())
}

func TestTable_Define_Multiple(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.Define("TWICE", 1, false, true, 1))
	// Pass 1 never reports.
	assert.NoError(tab.Define("TWICE", 2, false, true, 2))

	tab.NextPass()
	assert.ErrorIs(tab.Define("TWICE", 1, true, true, 1), diag.ErrMultipleDefs)
	assert.ErrorIs(tab.Define("TWICE", 2, true, true, 2), diag.ErrMultipleDefs)
}

func TestTable_Define_Phase(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.Define("SHIFTY", 0x10, false, true, 1))
	tab.NextPass()
	assert.ErrorIs(tab.Define("SHIFTY", 0x12, true, true, 1), diag.ErrPhaseError)
}

func TestTable_Define_Set(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.Define("COUNT", 1, false, false, 1))
	assert.NoError(tab.Define("COUNT", 2, false, false, 2))
	sym, _ := tab.Lookup("COUNT", 0)
	assert.Equal(int32(2), sym.Value)

	// A SET symbol can not become a label.
	assert.ErrorIs(tab.Define("COUNT", 3, false, true, 3), diag.ErrMultipleDefs)
}

func TestTable_Predefine(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	tab.Predefine("DEBUG", 1)
	tab.NextPass()

	sym, ok := tab.Lookup("DEBUG", 0)
	assert.True(ok)
	assert.True(sym.BackRef())
	assert.Equal(int32(1), sym.Value)
}

func TestTable_Macro(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.DefineMacro("PUSH", false, 3))
	assert.ErrorIs(tab.DefineMacro("PUSH", false, 9), diag.ErrMultipleDefs)

	tab.NextPass()
	sym, ok := tab.Lookup("PUSH", 0)
	assert.True(ok)
	assert.True(sym.Macro())
	assert.False(sym.BackRef())

	assert.NoError(tab.DefineMacro("PUSH", true, 3))
	assert.True(sym.BackRef())

	assert.ErrorIs(tab.Define("PUSH", 0, true, true, 4), diag.ErrMultipleDefs)
}

func TestTable_Refs(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	assert.NoError(tab.Define("ALPHA", 0, false, true, 1))
	tab.Lookup("ALPHA", 4)
	tab.Lookup("ALPHA", 4)
	tab.Lookup("ALPHA", 7)

	sym, _ := tab.Lookup("ALPHA", 0)
	assert.Equal([]int{4, 7}, sym.Refs)

	tab.NextPass()
	assert.Empty(sym.Refs)
}

func TestTable_All(t *testing.T) {
	assert := assert.New(t)

	tab := NewTable()
	tab.Define("ZETA", 0, false, true, 1)
	tab.Define("ALPHA", 0, false, true, 2)
	tab.Define("MU", 0, false, true, 3)

	var names []string
	for sym := range tab.All() {
		names = append(names, sym.Name)
	}
	assert.Equal([]string{"ALPHA", "MU", "ZETA"}, names)
	assert.True(slices.IsSorted(names))
	assert.Equal(3, tab.Len())

	tab.Clear()
	assert.Equal(0, tab.Len())
}
