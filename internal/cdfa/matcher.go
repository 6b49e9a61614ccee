package cdfa

// MatcherKind is the tag of a Matcher's sum-type variant. Kept as a small,
// fixed enum rather than an open interface hierarchy so the lexer's hot
// inner loop can dispatch on it directly.
type MatcherKind int

const (
	// MatcherSimple matches exactly one codepoint.
	MatcherSimple MatcherKind = iota
	// MatcherChain matches a non-empty literal string, as a prefix of the
	// remaining input.
	MatcherChain
	// MatcherRange matches any codepoint in an inclusive [Lo, Hi] range.
	MatcherRange
	// MatcherDefault matches any single codepoint not otherwise matched by
	// a more specific matcher in the same state.
	MatcherDefault
)

// Matcher is one arm of the tagged union described in spec.md §3: Simple,
// Chain, Range, or Default.
type Matcher struct {
	Kind MatcherKind

	// Simple: the single rune to match.
	Simple rune

	// Chain: the literal string to match as a prefix.
	Chain string

	// Range: inclusive bounds.
	RangeLo rune
	RangeHi rune
}

// Simple returns a Matcher that matches exactly the rune r.
func Simple(r rune) Matcher { return Matcher{Kind: MatcherSimple, Simple: r} }

// Chain returns a Matcher that matches the literal string s as a prefix of
// the remaining input. s must be non-empty.
func Chain(s string) Matcher { return Matcher{Kind: MatcherChain, Chain: s} }

// Range returns a Matcher that matches any rune in [lo, hi].
func Range(lo, hi rune) Matcher { return Matcher{Kind: MatcherRange, RangeLo: lo, RangeHi: hi} }

// Default returns the catch-all Matcher for a state.
func Default() Matcher { return Matcher{Kind: MatcherDefault} }

// key returns the trie key for simple/chain matchers; only valid for those
// two kinds.
func (m Matcher) key() string {
	if m.Kind == MatcherSimple {
		return string(m.Simple)
	}
	return m.Chain
}

// matchLen returns how many runes of in (given as a slice for O(1) indexing)
// this matcher consumes starting at position pos, and whether it matched at
// all. For MatcherChain the length is the rune-count of the chain text.
func (m Matcher) matchLen(in []rune, pos int) (int, bool) {
	switch m.Kind {
	case MatcherSimple:
		if pos < len(in) && in[pos] == m.Simple {
			return 1, true
		}
	case MatcherChain:
		chainRunes := []rune(m.Chain)
		if pos+len(chainRunes) > len(in) {
			return 0, false
		}
		for i, r := range chainRunes {
			if in[pos+i] != r {
				return 0, false
			}
		}
		return len(chainRunes), true
	case MatcherRange:
		if pos < len(in) && in[pos] >= m.RangeLo && in[pos] <= m.RangeHi {
			return 1, true
		}
	case MatcherDefault:
		if pos < len(in) {
			return 1, true
		}
	}
	return 0, false
}
