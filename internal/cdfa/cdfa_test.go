package cdfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildABTest builds a small CDFA for the longest-match tests: 'a' leads
// from start to x, and a second 'a' leads from x to y; x and y carry state
// acceptors X and Y. (A simple 'a' and a chain "aa" cannot share one
// state: Validate requires a state's simple/chain matchers to be
// prefix-free.)
func buildABTest(t *testing.T) *CDFA {
	t.Helper()
	c := New()
	c.Start = "start"
	c.AddState(StateDef{
		Name: "start",
		Transitions: []Transition{
			{Matcher: Simple('a'), Dest: "x", Consume: ConsumeAll},
		},
	})
	c.AddState(StateDef{
		Name:   "x",
		Accept: &Acceptor{Kind: "X"},
		Transitions: []Transition{
			{Matcher: Simple('a'), Dest: "y", Consume: ConsumeAll},
		},
	})
	c.AddState(StateDef{Name: "y", Accept: &Acceptor{Kind: "Y"}})
	return c
}

func Test_Validate_ok(t *testing.T) {
	c := buildABTest(t)
	require.NoError(t, c.Validate(nil))
}

func Test_Validate_prefixCollision(t *testing.T) {
	c := New()
	c.Start = "s"
	c.AddState(StateDef{
		Name: "s",
		Transitions: []Transition{
			{Matcher: Chain("int"), Dest: "s", Consume: ConsumeAll},
			{Matcher: Chain("in"), Dest: "s", Consume: ConsumeAll},
		},
	})

	err := c.Validate(nil)
	assert.Error(t, err)
}

func Test_Validate_overlappingRanges(t *testing.T) {
	c := New()
	c.Start = "s"
	c.AddState(StateDef{
		Name: "s",
		Transitions: []Transition{
			{Matcher: Range('a', 'm'), Dest: "s", Consume: ConsumeAll},
			{Matcher: Range('k', 'z'), Dest: "s", Consume: ConsumeAll},
		},
	})

	assert.Error(t, c.Validate(nil))
}

func Test_Validate_duplicateDefault(t *testing.T) {
	c := New()
	c.Start = "s"
	c.AddState(StateDef{
		Name: "s",
		Transitions: []Transition{
			{Matcher: Default(), Dest: "s", Consume: ConsumeAll},
			{Matcher: Default(), Dest: "s", Consume: ConsumeAll},
		},
	})

	assert.Error(t, c.Validate(nil))
}

func Test_Validate_unknownDestination(t *testing.T) {
	c := New()
	c.Start = "s"
	c.AddState(StateDef{
		Name: "s",
		Transitions: []Transition{
			{Matcher: Simple('a'), Dest: "nowhere", Consume: ConsumeAll},
		},
	})

	assert.Error(t, c.Validate(nil))
}

func Test_Lex_longestMatchWins(t *testing.T) {
	c := buildABTest(t)
	require.NoError(t, c.Validate(nil))

	toks, err := Lex(c, nil, "aa")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "Y", toks[0].Kind)
	assert.Equal(t, "aa", toks[0].Lexeme)
}

func Test_Lex_alphabetViolation(t *testing.T) {
	c := buildABTest(t)
	alpha := NewAlphabet("a")

	_, err := Lex(c, alpha, "ab")
	assert.Error(t, err)
}

func Test_Lex_silentAcceptProducesNoToken(t *testing.T) {
	c := New()
	c.Start = "start"
	c.AddState(StateDef{
		Name: "start",
		Transitions: []Transition{
			{Matcher: Simple(' '), Dest: "ws", Consume: ConsumeAll},
			{Matcher: Simple('x'), Dest: "xacc", Consume: ConsumeAll},
		},
	})
	c.AddState(StateDef{Name: "ws", Accept: &Acceptor{Silent: true}})
	c.AddState(StateDef{Name: "xacc", Accept: &Acceptor{Kind: "X"}})

	toks, err := Lex(c, nil, " x x")
	require.NoError(t, err)

	var kinds []string
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.Equal(t, []string{"X", "X"}, kinds)
}

func Test_Lex_noTransitionFails(t *testing.T) {
	c := buildABTest(t)

	_, err := Lex(c, nil, "ab")
	assert.Error(t, err)
}

func Test_Lex_consumeNoneLoopDetected(t *testing.T) {
	c := New()
	c.Start = "s1"
	c.AddState(StateDef{
		Name: "s1",
		Transitions: []Transition{
			{Matcher: Default(), Dest: "s2", Consume: ConsumeNone},
		},
	})
	c.AddState(StateDef{
		Name: "s2",
		Transitions: []Transition{
			{Matcher: Default(), Dest: "s1", Consume: ConsumeNone},
		},
	})

	_, err := Lex(c, nil, "a")
	assert.Error(t, err)
}
