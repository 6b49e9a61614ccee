package cdfa

import (
	"github.com/srhickma/padd/internal/padderr"
)

// Token is a lexeme read from source text together with its kind and the
// byte offset at which it began. Silent-accepted spans never produce a
// Token (see spec.md §3).
type Token struct {
	Kind   string
	Lexeme string
	Offset int
}

// maxConsumeNoneSteps bounds how many ConsumeNone transitions the lexer may
// take at a single cursor position before it gives up. spec.md §4.2 flags
// this as a known hazard ("ConsumeNone transitions can form unbounded
// loops") without pinning an exact bound; 4096 is generous for any
// hand-written spec while still catching a genuine infinite loop quickly.
const maxConsumeNoneSteps = 4096

// candidate is a point during a single lexer "run" where a token could be
// committed: the state acceptor or transition acceptor fired here.
type candidate struct {
	accept    Acceptor
	endPos    int // rune position after the candidate's match
	nextState string
}

// Lex runs the CDFA over input and returns the resulting token stream. It
// implements the greedy-longest-match algorithm of spec.md §4.2.
func Lex(c *CDFA, alphabet *Alphabet, input string) ([]Token, error) {
	runes := []rune(input)
	byteOffsets := runeByteOffsets(input, runes)

	stateTries := buildStateTries(c)

	var tokens []Token
	pos := 0
	state := c.Start

	for pos < len(runes) {
		if alphabet != nil && !alphabet.Contains(runes[pos]) {
			return nil, padderr.NewAt(padderr.LexError, byteOffsets[pos], "character %q is outside the declared alphabet", string(runes[pos]))
		}

		runStart := pos
		runState := state
		var best *candidate
		consumeNoneSteps := 0

		for {
			def, ok := c.States[runState]
			if !ok {
				break
			}

			if def.Accept != nil {
				best = &candidate{accept: *def.Accept, endPos: pos, nextState: acceptorNextState(c, *def.Accept)}
			}

			if alphabet != nil && pos < len(runes) && !alphabet.Contains(runes[pos]) {
				return nil, padderr.NewAt(padderr.LexError, byteOffsets[pos], "character %q is outside the declared alphabet", string(runes[pos]))
			}

			idx, length, matched := selectTransition(def, stateTries[runState], runes, pos)
			if !matched {
				break
			}
			tr := def.Transitions[idx]

			if tr.Consume == ConsumeAll {
				pos += length
			} else {
				consumeNoneSteps++
				if consumeNoneSteps > maxConsumeNoneSteps {
					return nil, padderr.NewAt(padderr.LexError, byteOffsets[runStart], "consume-none loop detected starting at this position")
				}
			}

			if tr.Accept != nil {
				best = &candidate{accept: *tr.Accept, endPos: pos, nextState: acceptorNextState(c, *tr.Accept)}
			}

			runState = tr.Dest
		}

		if best == nil {
			offendingChar := ""
			if runStart < len(runes) {
				offendingChar = string(runes[runStart])
			}
			return nil, padderr.NewAt(padderr.LexError, byteOffsets[runStart], "no transition matches %q", offendingChar)
		}

		if !best.accept.Silent {
			lexeme := string(runes[runStart:best.endPos])
			tokens = append(tokens, Token{
				Kind:   best.accept.Kind,
				Lexeme: lexeme,
				Offset: byteOffsets[runStart],
			})
		}

		pos = best.endPos
		state = best.nextState
	}

	return tokens, nil
}

// buildStateTries precomputes the prefix-free trie of simple/chain
// matchers for every state once, so the lexer's hot loop never rebuilds
// one per step.
func buildStateTries(c *CDFA) map[string]*trie {
	tries := make(map[string]*trie, len(c.States))
	for name, def := range c.States {
		t := newTrie()
		for i, tr := range def.Transitions {
			if tr.Matcher.Kind == MatcherSimple || tr.Matcher.Kind == MatcherChain {
				// insert errors are impossible here: the CDFA was
				// validated to be prefix-free before the lexer ever runs.
				_ = t.insert(tr.Matcher.key(), i)
			}
		}
		tries[name] = t
	}
	return tries
}

// selectTransition finds the highest-precedence transition of def that
// fires at position pos: simple/chain (via the state's prefix-free trie)
// beats range, which beats default.
func selectTransition(def *StateDef, t *trie, runes []rune, pos int) (idx int, length int, ok bool) {
	if t != nil {
		if i, l, m := t.longestMatch(runes, pos); m {
			return i, l, true
		}
	}

	for i, tr := range def.Transitions {
		if tr.Matcher.Kind == MatcherRange {
			if l, m := tr.Matcher.matchLen(runes, pos); m {
				return i, l, true
			}
		}
	}

	for i, tr := range def.Transitions {
		if tr.Matcher.Kind == MatcherDefault {
			if l, m := tr.Matcher.matchLen(runes, pos); m {
				return i, l, true
			}
		}
	}

	return 0, 0, false
}

func acceptorNextState(c *CDFA, a Acceptor) string {
	if a.Dest != "" {
		return a.Dest
	}
	return c.Start
}

// runeByteOffsets returns, for each rune index i (and one past the end),
// the byte offset into the original string that rune starts at.
func runeByteOffsets(s string, runes []rune) []int {
	offsets := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		offsets[i] = b
		b += len(string(r))
	}
	offsets[len(runes)] = len(s)
	return offsets
}
