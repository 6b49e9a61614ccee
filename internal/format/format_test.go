package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/pattern"
	"github.com/srhickma/padd/internal/ptree"
)

func term(kind, lexeme string) *ptree.Node {
	return ptree.NewTerminal(cdfa.Token{Kind: kind, Lexeme: lexeme})
}

func Test_Format_defaultConcatenation(t *testing.T) {
	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("B")}, nil)

	root := ptree.NewProduction("s", 0, []*ptree.Node{term("A", "a"), term("B", "b")})

	out, err := Format(g, root)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)
}

func Test_Format_explicitPattern(t *testing.T) {
	pat, err := pattern.Compile(`{0} + {1}`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("B")}, pat)

	root := ptree.NewProduction("s", 0, []*ptree.Node{term("A", "x"), term("B", "y")})

	out, err := Format(g, root)
	require.NoError(t, err)
	assert.Equal(t, "x + y", out)
}

func Test_Format_implicitIndexEquivalence(t *testing.T) {
	explicit, err := pattern.Compile(`{0}-{1}`)
	require.NoError(t, err)
	implicit, err := pattern.Compile(`{}-{}`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("B")}, explicit)
	g.AddProduction("t", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("B")}, implicit)

	rootExplicit := ptree.NewProduction("s", 0, []*ptree.Node{term("A", "1"), term("B", "2")})
	rootImplicit := ptree.NewProduction("t", 1, []*ptree.Node{term("A", "1"), term("B", "2")})

	outExplicit, err := Format(g, rootExplicit)
	require.NoError(t, err)
	outImplicit, err := Format(g, rootImplicit)
	require.NoError(t, err)

	assert.Equal(t, outExplicit, outImplicit)
	assert.Equal(t, "1-2", outExplicit)
}

// Test_Format_scopeIsolation exercises spec.md §4.4's scope-isolation
// property: an assignment made while rendering one capture must not leak
// into a sibling capture of the same pattern, even when both captures
// render a child that reads the same variable.
func Test_Format_scopeIsolation(t *testing.T) {
	inner, err := pattern.Compile(`[v]`)
	require.NoError(t, err)

	outer, err := pattern.Compile(`{0;v=one}|{1;v=two}`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("leaf", []grammar.SymbolRef{grammar.Term("X")}, inner)
	g.AddProduction("s", []grammar.SymbolRef{grammar.NonTerm("leaf"), grammar.NonTerm("leaf")}, outer)

	child0 := ptree.NewProduction("leaf", 0, []*ptree.Node{term("X", "ignored0")})
	child1 := ptree.NewProduction("leaf", 0, []*ptree.Node{term("X", "ignored1")})
	root := ptree.NewProduction("s", 1, []*ptree.Node{child0, child1})

	out, err := Format(g, root)
	require.NoError(t, err)
	assert.Equal(t, "one|two", out)
}

// Test_Format_scopeInheritedThroughList checks that a scope binding made by
// an ancestor capture is visible to descendants reached through an
// intervening List node (spec.md §4.4: scope is inherited parent to child,
// copy-on-write, across every node kind).
func Test_Format_scopeInheritedThroughList(t *testing.T) {
	leafPat, err := pattern.Compile(`[tag]`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("leaf", []grammar.SymbolRef{grammar.Term("X")}, leafPat)
	g.AddProduction("wrap", []grammar.SymbolRef{grammar.NonTerm("leaf*")}, nil)

	elem := ptree.NewProduction("leaf", 0, []*ptree.Node{term("X", "unused")})
	list := ptree.NewList("leaf", []*ptree.Node{elem})

	outerPat, err := pattern.Compile(`{0;tag=hi}`)
	require.NoError(t, err)
	g2 := grammar.New()
	g2.AddProduction("leaf", []grammar.SymbolRef{grammar.Term("X")}, leafPat)
	g2.AddProduction("wrap", []grammar.SymbolRef{grammar.NonTerm("leaf*")}, outerPat)

	root := ptree.NewProduction("wrap", 1, []*ptree.Node{list})

	out, err := Format(g2, root)
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func Test_Format_injectionPrefixAndSuffix(t *testing.T) {
	bracketPat, err := pattern.Compile(`<{}>`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("B")}, nil)

	a := term("A", "a")
	a.Injections = append(a.Injections, ptree.Injected{
		Token:  cdfa.Token{Kind: "WS", Lexeme: "_"},
		Prefix: false, // rendered after "a"
	})
	b := term("B", "b")
	b.Injections = append(b.Injections, ptree.Injected{
		Token:   cdfa.Token{Kind: "COMMENT", Lexeme: "rem"},
		Pattern: bracketPat,
		Prefix:  true, // rendered before "b"
	})

	root := ptree.NewProduction("s", 0, []*ptree.Node{a, b})

	out, err := Format(g, root)
	require.NoError(t, err)
	assert.Equal(t, "a_<rem>b", out)
}

func Test_Format_captureIndexOutOfRangeErrors(t *testing.T) {
	pat, err := pattern.Compile(`{5}`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A")}, pat)

	root := ptree.NewProduction("s", 0, []*ptree.Node{term("A", "a")})

	_, err = Format(g, root)
	assert.Error(t, err)
}
