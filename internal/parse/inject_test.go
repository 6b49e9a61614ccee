package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/pattern"
)

func tok(kind, lexeme string, offset int) cdfa.Token {
	return cdfa.Token{Kind: kind, Lexeme: lexeme, Offset: offset}
}

// Test_Run_injectLeftAttachesToLeftNeighbor exercises the worked injection
// example: a left-affinity inject rule over "abc" (A B C) with B
// inject-only attaches to A's leaf as a suffix.
func Test_Run_injectLeftAttachesToLeftNeighbor(t *testing.T) {
	pat, err := pattern.Compile(`<{}>`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("C")}, nil)

	tokens := []cdfa.Token{tok("A", "a", 0), tok("B", "b", 1), tok("C", "c", 2)}
	injectMap := map[string]InjectRule{"B": {Affinity: Left, Pattern: pat}}

	tree, err := Run(g, "s", tokens, nil, injectMap)
	require.NoError(t, err)

	leaves := tree.Leaves()
	require.Len(t, leaves, 2)
	aLeaf, cLeaf := leaves[0], leaves[1]

	require.Len(t, aLeaf.Injections, 1)
	assert.False(t, aLeaf.Injections[0].Prefix, "left-affinity attach to a left neighbor should render as a suffix")
	assert.Equal(t, "b", aLeaf.Injections[0].Token.Lexeme)
	assert.Empty(t, cLeaf.Injections)
}

// Test_Run_injectFallsBackToOppositeNeighbor checks that an injectable
// token whose preferred-affinity neighbor isn't captured by its parent
// pattern falls back to the opposite neighbor instead of being dropped,
// and that the rendered prefix/suffix direction follows the neighbor it
// actually attached to, not the originally declared affinity.
func Test_Run_injectFallsBackToOppositeNeighbor(t *testing.T) {
	pat, err := pattern.Compile(`<{}>`)
	require.NoError(t, err)

	onlySecond, err := pattern.Compile(`{1}`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("C")}, onlySecond)

	tokens := []cdfa.Token{tok("A", "a", 0), tok("B", "b", 1), tok("C", "c", 2)}
	// Left affinity prefers A, but only C is captured by the pattern
	// above, so the injection must fall back to C.
	injectMap := map[string]InjectRule{"B": {Affinity: Left, Pattern: pat}}

	tree, err := Run(g, "s", tokens, nil, injectMap)
	require.NoError(t, err)

	leaves := tree.Leaves()
	require.Len(t, leaves, 2)
	cLeaf := leaves[1]

	require.Len(t, cLeaf.Injections, 1)
	assert.True(t, cLeaf.Injections[0].Prefix, "falling back to a right neighbor renders the injection as a prefix")
}

// Test_Run_injectDroppedWhenNeitherNeighborCaptured confirms an injectable
// token is simply omitted -- not an error -- when neither neighbor is
// captured by its parent's pattern.
func Test_Run_injectDroppedWhenNeitherNeighborCaptured(t *testing.T) {
	pat, err := pattern.Compile(`<{}>`)
	require.NoError(t, err)

	noCaptures, err := pattern.Compile(`literal`)
	require.NoError(t, err)

	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("C")}, noCaptures)

	tokens := []cdfa.Token{tok("A", "a", 0), tok("B", "b", 1), tok("C", "c", 2)}
	injectMap := map[string]InjectRule{"B": {Affinity: Left, Pattern: pat}}

	tree, err := Run(g, "s", tokens, nil, injectMap)
	require.NoError(t, err)

	for _, leaf := range tree.Leaves() {
		assert.Empty(t, leaf.Injections)
	}
}

// Test_Run_ignoreDropsUnmatchedToken confirms a regular (not
// injectable) token declared ignorable can be dropped when the grammar
// never expects it, rather than failing the parse.
func Test_Run_ignoreDropsUnmatchedToken(t *testing.T) {
	g := grammar.New()
	g.AddProduction("s", []grammar.SymbolRef{grammar.Term("A"), grammar.Term("C")}, nil)

	tokens := []cdfa.Token{tok("A", "a", 0), tok("WS", " ", 1), tok("C", "c", 2)}
	ignore := map[string]bool{"WS": true}

	tree, err := Run(g, "s", tokens, ignore, nil)
	require.NoError(t, err)

	leaves := tree.Leaves()
	require.Len(t, leaves, 2)
	assert.Equal(t, "a", leaves[0].Token.Lexeme)
	assert.Equal(t, "c", leaves[1].Token.Lexeme)
}
