package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/format"
	"github.com/srhickma/padd/internal/parse"
)

func compileAndRun(t *testing.T, src, input string) string {
	t.Helper()
	c, err := Compile(src)
	require.NoError(t, err)

	tokens, err := cdfa.Lex(c.CDFA, c.Alphabet, input)
	require.NoError(t, err)

	tree, err := parse.Run(c.Grammar, c.Start, tokens, c.Ignore, c.Inject)
	require.NoError(t, err)

	out, err := format.Format(c.Grammar, tree)
	require.NoError(t, err)
	return out
}

// Test_Compile_separatorPattern exercises a production-level default
// pattern shared by several alternatives, with one alternative supplying
// its own explicit pattern instead.
func Test_Compile_separatorPattern(t *testing.T) {
	src := "" +
		"alphabet 'ab'\n" +
		"cdfa {\n" +
		"  start 'a' -> ^A 'b' -> ^B;\n" +
		"}\n" +
		"grammar {\n" +
		"  s `{} {}` | s A | s B | `SEPARATED:`;\n" +
		"}\n"

	out := compileAndRun(t, src, "abbaba")
	assert.Equal(t, "SEPARATED: a b b a b a", out)
}

// Test_Compile_injectionLeftAffinity exercises an inject-only token
// rendered against its captured left neighbor.
func Test_Compile_injectionLeftAffinity(t *testing.T) {
	src := "" +
		"alphabet 'abc'\n" +
		"cdfa {\n" +
		"  start 'a' -> ^A 'b' -> ^B 'c' -> ^C;\n" +
		"}\n" +
		"grammar {\n" +
		"  s | A C `{} {}`;\n" +
		"}\n" +
		"inject left B `<{}>`\n"

	out := compileAndRun(t, src, "abc")
	assert.Equal(t, "a<b> c", out)
}

// Test_Compile_ignoreStripsTrailingWhitespace builds a small line-oriented
// CDFA (self-looping word/space states) and checks that a declared-ignore
// SPACE token is dropped rather than reproduced, stripping trailing
// whitespace from the output.
func Test_Compile_ignoreStripsTrailingWhitespace(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  start ' ' -> space '\\n' -> ^NEWLINE 'a'-'z' -> word;\n" +
		"  space ^SPACE ' ' -> space;\n" +
		"  word ^WORD 'a'-'z' -> word;\n" +
		"}\n" +
		"grammar {\n" +
		"  file | {line};\n" +
		"  line | WORD NEWLINE;\n" +
		"}\n" +
		"ignore SPACE\n"

	out := compileAndRun(t, src, "abc  \ndef\n")
	assert.Equal(t, "abc\ndef\n", out)
}

// Test_Compile_ignoreDoesNotPreventExplicitConsumption checks that an
// ignorable token is still consumed as a normal grammar terminal when a
// production explicitly expects it, rather than always being dropped.
func Test_Compile_ignoreDoesNotPreventExplicitConsumption(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  start 'A' -> ^A 'B' -> ^B 'C' -> ^C;\n" +
		"}\n" +
		"grammar {\n" +
		"  s | A s B `{} {} {}` | C;\n" +
		"}\n" +
		"ignore C\n"

	out := compileAndRun(t, src, "ACB")
	assert.Equal(t, "A C B", out)
}

func Test_Compile_stateCoalescence(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  s1 | s2 'a' -> ^A;\n" +
		"  s1 'b' -> ^B;\n" +
		"}\n" +
		"grammar {\n" +
		"  g | A;\n" +
		"  g | B;\n" +
		"}\n"

	c, err := Compile(src)
	require.NoError(t, err)

	assert.Equal(t, "s1", c.CDFA.Start)
	require.Len(t, c.CDFA.States["s1"].Transitions, 2)
	require.Len(t, c.CDFA.States["s2"].Transitions, 1)
}

func Test_Compile_acceptorSugarCollapsesIdenticalExpansions(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  x 'a' -> ^TOK;\n" +
		"  y 'b' -> ^TOK;\n" +
		"}\n" +
		"grammar {\n" +
		"  g | TOK;\n" +
		"}\n"

	c, err := Compile(src)
	require.NoError(t, err)

	destX := c.CDFA.States["x"].Transitions[0].Dest
	destY := c.CDFA.States["y"].Transitions[0].Dest
	assert.Equal(t, destX, destY, "identical ^TOK expansions should collapse to one shared state")
	assert.Equal(t, "TOK", c.CDFA.States[destX].Accept.Kind)
}

func Test_Compile_acceptorSugarDisambiguatesNameCollision(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  TOK 'x' -> y;\n" +
		"  y 'a' -> ^TOK;\n" +
		"}\n" +
		"grammar {\n" +
		"  g | TOK;\n" +
		"}\n"

	c, err := Compile(src)
	require.NoError(t, err)

	dest := c.CDFA.States["y"].Transitions[0].Dest
	assert.NotEqual(t, "TOK", dest, "the literal state named TOK must not be clobbered by the synthesized accept state")
	require.Contains(t, c.CDFA.States, dest)
	assert.Equal(t, "TOK", c.CDFA.States[dest].Accept.Kind)
}

func Test_Compile_duplicateAlphabetIsAnError(t *testing.T) {
	src := "alphabet 'a'\nalphabet 'b'\n"
	_, err := Compile(src)
	assert.Error(t, err)
}

func Test_Compile_ignoreAndInjectConflictIsAnError(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  start 'a' -> ^A;\n" +
		"}\n" +
		"grammar {\n" +
		"  g | A;\n" +
		"}\n" +
		"ignore A\n" +
		"inject left A `<{}>`\n"

	_, err := Compile(src)
	assert.Error(t, err)
}

func Test_Compile_captureIndexOutOfRangeIsAnError(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  start 'a' -> ^A;\n" +
		"}\n" +
		"grammar {\n" +
		"  g `{5}` | A;\n" +
		"}\n"

	_, err := Compile(src)
	assert.Error(t, err)
}

func Test_Compile_undefinedTerminalReferenceIsAnError(t *testing.T) {
	src := "" +
		"cdfa {\n" +
		"  start 'a' -> ^A;\n" +
		"}\n" +
		"grammar {\n" +
		"  g | B;\n" +
		"}\n"

	_, err := Compile(src)
	assert.Error(t, err)
}
