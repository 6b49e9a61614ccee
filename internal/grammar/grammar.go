// Package grammar holds the context-free grammar data model of spec.md §3:
// productions over terminal/non-terminal references, with optional-wrapper
// and inline-list desugaring performed by the spec compiler before a
// Grammar is considered final. Styled after the teacher's own
// internal/ictiobus/grammar package (head/body productions keyed by LHS,
// a Validate-before-use discipline) but generalized past tunascript's
// fixed grammar to an arbitrary spec-declared one.
package grammar

import (
	"fmt"

	"github.com/srhickma/padd/internal/pattern"
)

// RefKind tags a SymbolRef as pointing at a terminal or a non-terminal.
type RefKind int

const (
	RefTerminal RefKind = iota
	RefNonTerminal
)

// SymbolRef is one element of a production's right-hand side.
type SymbolRef struct {
	Kind RefKind
	Name string
}

func Term(name string) SymbolRef    { return SymbolRef{Kind: RefTerminal, Name: name} }
func NonTerm(name string) SymbolRef { return SymbolRef{Kind: RefNonTerminal, Name: name} }

// NonTerminalKind classifies an auto-generated non-terminal, distinguishing
// ordinary grammar non-terminals from the ones the spec compiler
// synthesizes for `[X]` and `{X}` sugar (spec.md §4.1).
type NonTerminalKind int

const (
	// KindOrdinary is a non-terminal declared directly by the grammar.
	KindOrdinary NonTerminalKind = iota
	// KindOptional is the auto non-terminal for a `[X]` wrapper: productions
	// `X? -> X` and `X? -> epsilon`, both weight 0.
	KindOptional
	// KindList is the auto non-terminal for a `{X}` inline list: a
	// right-recursive pair of productions that the parser must flatten
	// into a single ordered child sequence rather than a recursive chain.
	KindList
)

// NonTerminalInfo records what a non-terminal is and, for synthesized
// ones, which symbol it wraps.
type NonTerminalInfo struct {
	Name    string
	Kind    NonTerminalKind
	Element SymbolRef // meaningful only for KindOptional/KindList
}

// Production is one CFG rule: Head -> Body, with an optional formatting
// Pattern. Nil Pattern means "use the default concatenation pattern"
// (spec.md §4.4).
type Production struct {
	ID      int
	Head    string
	Body    []SymbolRef
	Pattern *pattern.Pattern
	// Weight is the fixed weight contribution of choosing this production
	// itself, independent of token weights; only synthesized epsilon/pass-
	// through productions use a nonzero-relevant value, and per spec.md
	// §4.1 that value is always 0. Kept as a field (rather than hardcoded)
	// so a future grammar extension has somewhere to put a non-zero cost.
	Weight int
}

// Grammar is a compiled CFG: every production, indexed both by declaration
// order (ID) and by head symbol, plus the start non-terminal and the
// registry of non-terminal metadata needed to desugar optionals/lists.
type Grammar struct {
	Start        string
	Productions  []*Production
	byHead       map[string][]*Production
	NonTerminals map[string]*NonTerminalInfo
	Terminals    map[string]bool
}

// New returns an empty, writable Grammar.
func New() *Grammar {
	return &Grammar{
		byHead:       make(map[string][]*Production),
		NonTerminals: make(map[string]*NonTerminalInfo),
		Terminals:    make(map[string]bool),
	}
}

// AddProduction appends a production, assigning it the next ID and
// registering its head/body symbols. The first production added becomes
// the start production's non-terminal if Start is still unset, per
// spec.md §3 ("The starting non-terminal is the LHS of the first
// production in the first grammar region").
func (g *Grammar) AddProduction(head string, body []SymbolRef, pat *pattern.Pattern) *Production {
	p := &Production{ID: len(g.Productions), Head: head, Body: body, Pattern: pat}
	g.Productions = append(g.Productions, p)
	g.byHead[head] = append(g.byHead[head], p)

	if _, ok := g.NonTerminals[head]; !ok {
		g.NonTerminals[head] = &NonTerminalInfo{Name: head, Kind: KindOrdinary}
	}
	if g.Start == "" {
		g.Start = head
	}

	for _, ref := range body {
		if ref.Kind == RefTerminal {
			g.Terminals[ref.Name] = true
		}
	}

	return p
}

// ProductionsFor returns every production with the given head, in
// declaration order.
func (g *Grammar) ProductionsFor(head string) []*Production {
	return g.byHead[head]
}

// RegisterNonTerminal records metadata for a synthesized non-terminal
// (optional wrapper or inline list). It is idempotent: re-registering the
// same name/kind/element is a no-op.
func (g *Grammar) RegisterNonTerminal(info NonTerminalInfo) {
	g.NonTerminals[info.Name] = &info
}

// OptionalName returns the auto non-terminal name for `[X]` where X has
// symbol name elementName, e.g. "stmt?".
func OptionalName(elementName string) string {
	return elementName + "?"
}

// ListName returns the auto non-terminal name for `{X}`, e.g. "stmt*".
func ListName(elementName string) string {
	return elementName + "*"
}

// DesugarOptional ensures the auto non-terminal for `[elem]` exists,
// registering its two weight-0 productions (X? -> X, X? -> epsilon) the
// first time it is requested for a given element, and returns its name.
// Multiple uses of `[X]` across a spec share the single resulting
// non-terminal (spec.md §4.1: "desugar to a single auto-generated nullable
// non-terminal shared across all uses").
func (g *Grammar) DesugarOptional(elem SymbolRef) string {
	name := OptionalName(elem.Name)
	if _, exists := g.NonTerminals[name]; exists {
		return name
	}
	g.RegisterNonTerminal(NonTerminalInfo{Name: name, Kind: KindOptional, Element: elem})
	g.byHead[name] = nil // ensure head is known even before AddProduction registers it
	g.AddProduction(name, []SymbolRef{elem}, nil)
	g.AddProduction(name, []SymbolRef{}, nil)
	return name
}

// DesugarList ensures the auto non-terminal for `{elem}` exists,
// registering its right-recursive pair of productions, and returns its
// name. The parser recognizes KindList non-terminals and materializes
// their matches as a flat child sequence rather than a recursive chain
// (spec.md §4.1).
func (g *Grammar) DesugarList(elem SymbolRef) string {
	name := ListName(elem.Name)
	if _, exists := g.NonTerminals[name]; exists {
		return name
	}
	g.RegisterNonTerminal(NonTerminalInfo{Name: name, Kind: KindList, Element: elem})
	g.AddProduction(name, []SymbolRef{elem, NonTerm(name)}, nil)
	g.AddProduction(name, []SymbolRef{}, nil)
	return name
}

// IsNullable reports whether a non-terminal has a zero-length production.
// The Earley parser does not call it; its closure handles epsilon
// productions through zero-length completions.
func (g *Grammar) IsNullable(head string) bool {
	for _, p := range g.byHead[head] {
		if len(p.Body) == 0 {
			return true
		}
	}
	return false
}

// Validate checks that the grammar has at least one production and that
// every symbol referenced in a body is defined: terminals must appear in
// Terminals (registered via AddProduction, or pre-declared by the spec
// compiler from the CDFA's acceptor kinds), non-terminals must have an
// entry in NonTerminals with at least one production (or be a synthesized
// optional/list, which always has productions by construction).
func (g *Grammar) Validate(knownTerminals map[string]bool) error {
	if len(g.Productions) == 0 {
		return fmt.Errorf("grammar: no productions declared")
	}

	for _, p := range g.Productions {
		for _, ref := range p.Body {
			switch ref.Kind {
			case RefTerminal:
				if knownTerminals != nil && !knownTerminals[ref.Name] {
					return fmt.Errorf("grammar: production %q references undefined terminal %q", p.Head, ref.Name)
				}
			case RefNonTerminal:
				if _, ok := g.NonTerminals[ref.Name]; !ok {
					return fmt.Errorf("grammar: production %q references undefined non-terminal %q", p.Head, ref.Name)
				}
			}
		}
	}

	return nil
}
