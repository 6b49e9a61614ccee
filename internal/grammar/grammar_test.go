package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AddProduction_setsStartFromFirst(t *testing.T) {
	g := New()
	g.AddProduction("s", []SymbolRef{Term("a")}, nil)
	g.AddProduction("b", []SymbolRef{Term("x")}, nil)

	assert.Equal(t, "s", g.Start)
}

func Test_DesugarOptional_sharedAcrossUses(t *testing.T) {
	g := New()
	name1 := g.DesugarOptional(NonTerm("stmt"))
	name2 := g.DesugarOptional(NonTerm("stmt"))

	assert.Equal(t, name1, name2)
	assert.Equal(t, "stmt?", name1)
	require.Len(t, g.ProductionsFor("stmt?"), 2)

	var bodyLens []int
	for _, p := range g.ProductionsFor("stmt?") {
		bodyLens = append(bodyLens, len(p.Body))
	}
	assert.ElementsMatch(t, []int{1, 0}, bodyLens)
}

func Test_DesugarList_rightRecursive(t *testing.T) {
	g := New()
	name := g.DesugarList(Term("LINE"))

	assert.Equal(t, "LINE*", name)
	prods := g.ProductionsFor("LINE*")
	require.Len(t, prods, 2)

	info := g.NonTerminals[name]
	require.NotNil(t, info)
	assert.Equal(t, KindList, info.Kind)
}

func Test_Validate_rejectsUndefinedNonTerminal(t *testing.T) {
	g := New()
	g.AddProduction("s", []SymbolRef{NonTerm("missing")}, nil)

	err := g.Validate(nil)
	assert.Error(t, err)
}

func Test_Validate_rejectsUndefinedTerminal(t *testing.T) {
	g := New()
	g.AddProduction("s", []SymbolRef{Term("TOK")}, nil)

	err := g.Validate(map[string]bool{"OTHER": true})
	assert.Error(t, err)
}

func Test_Validate_emptyGrammarFails(t *testing.T) {
	g := New()
	assert.Error(t, g.Validate(nil))
}

func Test_IsNullable(t *testing.T) {
	g := New()
	g.AddProduction("a", []SymbolRef{Term("x")}, nil)
	g.AddProduction("a", []SymbolRef{}, nil)

	assert.True(t, g.IsNullable("a"))
	assert.False(t, g.IsNullable("nonexistent"))
}
