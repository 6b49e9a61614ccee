// Package parse implements the weighted Earley-style chart parser of
// spec.md §4.3: it finds a derivation of the grammar's start non-terminal
// over a token stream, minimizing parse weight (ignored + injected token
// counts), with deterministic tie-breaking.
//
// The chart/item/back-pointer structure is grounded on the Earley
// recognizer found in the retrieved example corpus
// (dhamidi/sai's ebnf/parse package: Item{Name,Expr,Dot,Origin},
// ItemSet with dedup, SPPFNode-style packed completions) adapted from
// EBNF expressions to this grammar's flat production bodies, and extended
// with the running "weight" spec.md requires for ignore/inject
// disambiguation.
package parse

import (
	"sort"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/padderr"
)

// part is one already-resolved symbol of a completing item's right-hand
// side: either a consumed token (terminal) or a reference to a completed
// span recorded in the completed table (non-terminal).
type part struct {
	isTerm bool
	token  cdfa.Token  // isTerm == true
	sym    string      // isTerm == false
	start  int
	end    int
}

type itemKey struct {
	prodID int
	dot    int
	origin int
}

type chartEntry struct {
	weight int
	parts  []part
}

type completedKey struct {
	sym   string
	start int
}

type candidate struct {
	prodID int
	weight int
	parts  []part
}

// chart drives one parse: per-position item sets, waiter index, and the
// completed-span table used both to propagate weight and, at the end, to
// reconstruct the minimum-weight derivation.
type chart struct {
	g      *grammar.Grammar
	tokens []cdfa.Token // regular (non-injectable) stream fed to the parser
	ignore map[string]bool

	items     []map[itemKey]*chartEntry
	waiters   []map[string][]itemKey // waiters[pos][nonTerminal] = items in chart[pos] expecting it next
	completed []map[completedKey]*candidate
}

// Parse finds the minimum-weight derivation of start over tokens, treating
// any token whose kind is in ignore as droppable at a uniform +1 weight
// cost. It returns the winning candidate table so the caller (the
// ignore/inject pass) can materialize a tree and resolve injections.
func Parse(g *grammar.Grammar, start string, tokens []cdfa.Token, ignore map[string]bool) (*Result, error) {
	n := len(tokens)
	c := &chart{
		g:         g,
		tokens:    tokens,
		ignore:    ignore,
		items:     make([]map[itemKey]*chartEntry, n+1),
		waiters:   make([]map[string][]itemKey, n+1),
		completed: make([]map[completedKey]*candidate, n+1),
	}
	for i := range c.items {
		c.items[i] = make(map[itemKey]*chartEntry)
		c.waiters[i] = make(map[string][]itemKey)
		c.completed[i] = make(map[completedKey]*candidate)
	}

	if len(g.ProductionsFor(start)) == 0 {
		return nil, padderr.New(padderr.ParseError, "start non-terminal %q has no productions", start)
	}

	// seed chart[0] with every production of start.
	var queue []itemKey
	for _, p := range g.ProductionsFor(start) {
		k := itemKey{prodID: p.ID, dot: 0, origin: 0}
		c.items[0][k] = &chartEntry{weight: 0}
		queue = append(queue, k)
	}

	for i := 0; i <= n; i++ {
		c.closeLocal(i, queue)
		queue = nil

		if i < n {
			next := c.scanAndSkip(i)
			for k := range next {
				queue = append(queue, k)
			}
		}
	}

	cand, ok := c.completed[n][completedKey{sym: start, start: 0}]
	if !ok {
		offset := 0
		if n > 0 {
			offset = tokens[n-1].Offset
		}
		return nil, padderr.NewAt(padderr.ParseError, offset, "no derivation of %q covers the full input", start)
	}

	return &Result{Grammar: g, Completed: c.completed, Start: start, Tokens: tokens, rootCandidate: cand}, nil
}

// closeLocal runs predict/complete to a fixpoint at position i, starting
// from an initial worklist (items freshly scanned/skipped into this
// position from i-1, or the seed items for i==0).
func (c *chart) closeLocal(i int, seed []itemKey) {
	queue := append([]itemKey(nil), seed...)

	push := func(k itemKey, weight int, parts []part) {
		existing, ok := c.items[i][k]
		if !ok {
			c.items[i][k] = &chartEntry{weight: weight, parts: parts}
			queue = append(queue, k)
			return
		}
		if weight < existing.weight {
			existing.weight = weight
			existing.parts = parts
			queue = append(queue, k)
		}
	}

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		entry, ok := c.items[i][k]
		if !ok {
			continue
		}
		prod := c.g.Productions[k.prodID]

		if k.dot == len(prod.Body) {
			// completion
			ck := completedKey{sym: prod.Head, start: k.origin}
			cand := &candidate{prodID: k.prodID, weight: entry.weight, parts: entry.parts}
			existing, has := c.completed[i][ck]
			if !has || better(cand, existing) {
				c.completed[i][ck] = cand
			}

			for _, waiterKey := range c.waiters[k.origin][prod.Head] {
				waiterEntry, ok := c.items[k.origin][waiterKey]
				if !ok {
					continue
				}
				waiterProd := c.g.Productions[waiterKey.prodID]
				newParts := append(append([]part(nil), waiterEntry.parts...), part{
					isTerm: false, sym: prod.Head, start: k.origin, end: i,
				})
				newKey := itemKey{prodID: waiterKey.prodID, dot: waiterKey.dot + 1, origin: waiterKey.origin}
				if newKey.dot <= len(waiterProd.Body) {
					// this completion advances an item that was waiting
					// at position k.origin into position i; the advanced
					// item belongs in c.items[i], not c.items[k.origin].
					push(newKey, waiterEntry.weight+entry.weight, newParts)
				}
			}
			continue
		}

		ref := prod.Body[k.dot]
		if ref.Kind == grammar.RefNonTerminal {
			// predict
			for _, p := range c.g.ProductionsFor(ref.Name) {
				pk := itemKey{prodID: p.ID, dot: 0, origin: i}
				push(pk, 0, nil)
			}
			// register as waiter
			alreadyWaiting := false
			for _, wk := range c.waiters[i][ref.Name] {
				if wk == k {
					alreadyWaiting = true
					break
				}
			}
			if !alreadyWaiting {
				c.waiters[i][ref.Name] = append(c.waiters[i][ref.Name], k)
			}

			// epsilon closure: if ref.Name already has a recorded
			// zero-length completion at this position, advance
			// immediately (the general completion loop above will also
			// catch this the first time it's produced; this handles the
			// case where prediction happens after the completion already
			// exists from another path).
			if cand, ok := c.completed[i][completedKey{sym: ref.Name, start: i}]; ok {
				newParts := append(append([]part(nil), entry.parts...), part{isTerm: false, sym: ref.Name, start: i, end: i})
				newKey := itemKey{prodID: k.prodID, dot: k.dot + 1, origin: k.origin}
				push(newKey, entry.weight+cand.weight, newParts)
			}
		}
		// terminal dots are resolved only by scanAndSkip, between positions.
	}
}

// better reports whether cand should replace existing as the recorded best
// completion for a (non-terminal, start, end) span: strictly smaller
// weight wins; ties break toward the lower production ID (declaration
// order), a deterministic proxy for spec.md §4.3's "leftmost-longest, then
// lexicographic production id" rule (see DESIGN.md Open Question #4).
func better(cand, existing *candidate) bool {
	if cand.weight != existing.weight {
		return cand.weight < existing.weight
	}
	return cand.prodID < existing.prodID
}

// scanAndSkip builds the seed item set for position i+1 from chart[i]: a
// real terminal match advances an item's dot at weight+0, and -- for every
// item, regardless of what it expects -- an ignorable token at position i
// may be silently skipped at weight+1, per spec.md §4.3's ignore pass.
func (c *chart) scanAndSkip(i int) map[itemKey]bool {
	tok := c.tokens[i]
	ignorable := c.ignore[tok.Kind]

	next := make(map[itemKey]bool)

	for k, entry := range c.items[i] {
		prod := c.g.Productions[k.prodID]

		if k.dot < len(prod.Body) {
			ref := prod.Body[k.dot]
			if ref.Kind == grammar.RefTerminal && ref.Name == tok.Kind {
				newKey := itemKey{prodID: k.prodID, dot: k.dot + 1, origin: k.origin}
				newParts := append(append([]part(nil), entry.parts...), part{isTerm: true, token: tok})
				c.relax(i+1, newKey, entry.weight, newParts)
				next[newKey] = true
			}
		}

		if ignorable {
			c.relax(i+1, k, entry.weight+1, entry.parts)
			next[k] = true
		}
	}

	return next
}

func (c *chart) relax(pos int, k itemKey, weight int, parts []part) {
	existing, ok := c.items[pos][k]
	if !ok || weight < existing.weight {
		c.items[pos][k] = &chartEntry{weight: weight, parts: parts}
	}
}

// Result is the outcome of a successful Parse: enough of the chart to
// materialize the winning parse tree.
type Result struct {
	Grammar       *grammar.Grammar
	Completed     []map[completedKey]*candidate
	Start         string
	Tokens        []cdfa.Token
	rootCandidate *candidate
}

// sortedDebug returns the completed keys at position pos, sorted, for
// debugging; nothing in the package calls it.
func (r *Result) sortedDebug(pos int) []completedKey {
	keys := make([]completedKey, 0, len(r.Completed[pos]))
	for k := range r.Completed[pos] {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sym != keys[j].sym {
			return keys[i].sym < keys[j].sym
		}
		return keys[i].start < keys[j].start
	})
	return keys
}
