// Package cdfa implements the Compressed Deterministic Finite Automaton
// data model and lexer described in spec.md §3 and §4.2: a DFA generalized
// with chain (string-prefix) matchers, range matchers, default matchers,
// and consume-none transitions. Styled after the teacher's own
// internal/ictiobus/automaton package (map[string]State, a Copy method,
// string-keyed states) but specialized to the CDFA's matcher/acceptor
// vocabulary instead of LR item sets.
package cdfa

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"
)

// ConsumeMode says whether a transition advances the scan cursor.
type ConsumeMode int

const (
	ConsumeAll ConsumeMode = iota
	ConsumeNone
)

// Acceptor designates that arrival at a state (or a transition) produces a
// token of Kind, optionally moving to Dest as the next run's start state
// instead of the CDFA's declared start. Silent acceptors consume input but
// emit no token (Kind is ignored when Silent is true).
type Acceptor struct {
	Kind   string
	Dest   string // "" means: return to the CDFA's default start state
	Silent bool
}

// Transition is one outbound edge of a state.
type Transition struct {
	Matcher Matcher
	Dest    string
	Consume ConsumeMode
	Accept  *Acceptor // inline transition acceptor, nil if none
}

// StateDef is everything associated with one CDFA state.
type StateDef struct {
	Name        string
	Accept      *Acceptor // state acceptor, nil if none
	Transitions []Transition
}

// Copy returns a deep copy of the StateDef.
func (s StateDef) Copy() StateDef {
	cp := StateDef{Name: s.Name}
	if s.Accept != nil {
		a := *s.Accept
		cp.Accept = &a
	}
	cp.Transitions = make([]Transition, len(s.Transitions))
	copy(cp.Transitions, s.Transitions)
	return cp
}

// CDFA is the compiled automaton: a mapping from state name to StateDef
// plus the single designated start state.
type CDFA struct {
	Start  string
	States map[string]*StateDef
}

// New returns an empty CDFA with no states.
func New() *CDFA {
	return &CDFA{States: make(map[string]*StateDef)}
}

// AddState inserts or replaces the definition for name. State coalescence
// (multiple `name` headers unioning their transitions, per spec.md §4.1)
// is the spec compiler's job, performed before AddState is called once per
// final, merged definition.
func (c *CDFA) AddState(def StateDef) {
	c.States[def.Name] = &def
}

// Copy returns a deep copy of the CDFA.
func (c *CDFA) Copy() *CDFA {
	cp := New()
	cp.Start = c.Start
	for name, def := range c.States {
		d := def.Copy()
		cp.States[name] = &d
	}
	return cp
}

// Alphabet is an optional restriction on the codepoints a CDFA's matchers
// (and the input it lexes) may use. A nil *Alphabet accepts everything.
type Alphabet struct {
	allowed map[rune]bool
}

// NewAlphabet builds an Alphabet from the declared character set.
func NewAlphabet(chars string) *Alphabet {
	a := &Alphabet{allowed: make(map[rune]bool)}
	for _, r := range chars {
		a.allowed[r] = true
	}
	return a
}

// Contains reports whether r is in the alphabet. A nil Alphabet contains
// everything.
func (a *Alphabet) Contains(r rune) bool {
	if a == nil {
		return true
	}
	return a.allowed[r]
}

// Validate checks the invariants from spec.md §3/§4.1:
//   - within each state, simple+chain matchers form a prefix-free trie
//   - ranges are pairwise disjoint within a state
//   - at most one default matcher per state
//   - every transition destination names a known state
//   - if alphabet is non-nil, every literal matcher stays inside it
//
// Returns nil if the CDFA is well-formed, else the first violation found
// (states are checked in a stable, sorted order so error messages are
// deterministic).
func (c *CDFA) Validate(alphabet *Alphabet) error {
	if c.Start == "" {
		return fmt.Errorf("cdfa: no start state designated")
	}
	if _, ok := c.States[c.Start]; !ok {
		return fmt.Errorf("cdfa: start state %q is not defined", c.Start)
	}

	names := make([]string, 0, len(c.States))
	for name := range c.States {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := c.States[name]
		t := newTrie()
		rangesSeen := make([][2]rune, 0)
		defaultsSeen := 0

		for i, tr := range def.Transitions {
			if _, ok := c.States[tr.Dest]; !ok {
				return fmt.Errorf("cdfa: state %q has a transition to undefined state %q", name, tr.Dest)
			}
			if tr.Accept != nil && tr.Accept.Dest != "" {
				if _, ok := c.States[tr.Accept.Dest]; !ok {
					return fmt.Errorf("cdfa: state %q has an acceptor destination to undefined state %q", name, tr.Accept.Dest)
				}
			}

			switch tr.Matcher.Kind {
			case MatcherSimple:
				if alphabet != nil && !alphabet.Contains(tr.Matcher.Simple) {
					return fmt.Errorf("cdfa: state %q matcher %q uses character outside the declared alphabet", name, string(tr.Matcher.Simple))
				}
				if err := t.insert(tr.Matcher.key(), i); err != nil {
					return fmt.Errorf("cdfa: state %q: %w", name, err)
				}
			case MatcherChain:
				if alphabet != nil {
					for _, r := range tr.Matcher.Chain {
						if !alphabet.Contains(r) {
							return fmt.Errorf("cdfa: state %q matcher %q uses character outside the declared alphabet", name, tr.Matcher.Chain)
						}
					}
				}
				if err := t.insert(tr.Matcher.key(), i); err != nil {
					return fmt.Errorf("cdfa: state %q: %w", name, err)
				}
			case MatcherRange:
				if alphabet != nil && (!alphabet.Contains(tr.Matcher.RangeLo) || !alphabet.Contains(tr.Matcher.RangeHi)) {
					return fmt.Errorf("cdfa: state %q range matcher uses bounds outside the declared alphabet", name)
				}
				for _, seen := range rangesSeen {
					if tr.Matcher.RangeLo <= seen[1] && seen[0] <= tr.Matcher.RangeHi {
						return fmt.Errorf("cdfa: state %q has overlapping range matchers", name)
					}
				}
				rangesSeen = append(rangesSeen, [2]rune{tr.Matcher.RangeLo, tr.Matcher.RangeHi})
			case MatcherDefault:
				defaultsSeen++
				if defaultsSeen > 1 {
					return fmt.Errorf("cdfa: state %q declares more than one default matcher", name)
				}
			}
		}
	}

	return nil
}

// Dump renders a human-readable listing of every state, its acceptor, and
// its transitions, as a table. Grounded on the teacher's own
// internal/ictiobus/parse/slr.go table-dump method, which uses the same
// rosed.Edit(...).InsertTableOpts(...) idiom for parser-table diagnostics.
func (c *CDFA) Dump() string {
	names := make([]string, 0, len(c.States))
	for name := range c.States {
		names = append(names, name)
	}
	sort.Strings(names)

	data := [][]string{{"STATE", "ACCEPT", "MATCHER", "DEST", "CONSUME"}}
	for _, name := range names {
		def := c.States[name]
		stateAccept := "-"
		if def.Accept != nil {
			stateAccept = acceptorLabel(*def.Accept)
		}
		if len(def.Transitions) == 0 {
			data = append(data, []string{name, stateAccept, "-", "-", "-"})
			continue
		}
		for i, tr := range def.Transitions {
			label := name
			accLabel := stateAccept
			if i > 0 {
				label = ""
				accLabel = ""
			}
			consume := "all"
			if tr.Consume == ConsumeNone {
				consume = "none"
			}
			if tr.Accept != nil {
				consume += " -> " + acceptorLabel(*tr.Accept)
			}
			data = append(data, []string{label, accLabel, matcherLabel(tr.Matcher), tr.Dest, consume})
		}
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 20, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func acceptorLabel(a Acceptor) string {
	if a.Silent {
		return "^_"
	}
	if a.Dest != "" {
		return fmt.Sprintf("^%s -> %s", a.Kind, a.Dest)
	}
	return "^" + a.Kind
}

func matcherLabel(m Matcher) string {
	switch m.Kind {
	case MatcherSimple:
		return fmt.Sprintf("%q", string(m.Simple))
	case MatcherChain:
		return fmt.Sprintf("%q", m.Chain)
	case MatcherRange:
		return fmt.Sprintf("[%q-%q]", string(m.RangeLo), string(m.RangeHi))
	default:
		return "*"
	}
}
