package parse

import (
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/padderr"
	"github.com/srhickma/padd/internal/ptree"
)

// BuildTree reconstructs the single minimum-weight parse tree the chart
// recognized, transparently unwrapping the synthesized optional ([X]) and
// inline-list ({X}) non-terminals into the flat tree shape spec.md §4.1
// describes: an optional slot becomes either the wrapped node itself or an
// empty list placeholder, and a list slot becomes one ptree.List node
// whose children are the flattened elements (never a recursive chain).
func (r *Result) BuildTree() (*ptree.Node, error) {
	root, err := r.buildForRef(grammar.NonTerm(r.Start), part{isTerm: false, sym: r.Start, start: 0, end: len(r.Tokens)})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func (r *Result) lookup(sym string, start, end int) (*candidate, error) {
	cand, ok := r.Completed[end][completedKey{sym: sym, start: start}]
	if !ok {
		return nil, padderr.New(padderr.ParseError, "internal: no completion recorded for %q spanning [%d,%d)", sym, start, end)
	}
	return cand, nil
}

// buildForRef realizes exactly one child node for a single symbol
// reference (terminal or non-terminal) given the chart's resolved part for
// it.
func (r *Result) buildForRef(ref grammar.SymbolRef, p part) (*ptree.Node, error) {
	if p.isTerm {
		return ptree.NewTerminal(p.token), nil
	}

	info := r.Grammar.NonTerminals[p.sym]
	if info == nil {
		return nil, padderr.New(padderr.ParseError, "internal: unknown non-terminal %q", p.sym)
	}

	switch info.Kind {
	case grammar.KindOptional:
		cand, err := r.lookup(p.sym, p.start, p.end)
		if err != nil {
			return nil, err
		}
		prod := r.Grammar.Productions[cand.prodID]
		if len(prod.Body) == 0 {
			return ptree.NewList(info.Element.Name, nil), nil
		}
		return r.buildForRef(info.Element, cand.parts[0])

	case grammar.KindList:
		elems, err := r.buildListElements(p.sym, p.start, p.end)
		if err != nil {
			return nil, err
		}
		return ptree.NewList(info.Element.Name, elems), nil

	default:
		cand, err := r.lookup(p.sym, p.start, p.end)
		if err != nil {
			return nil, err
		}
		prod := r.Grammar.Productions[cand.prodID]
		children := make([]*ptree.Node, len(prod.Body))
		for i, bodyRef := range prod.Body {
			child, err := r.buildForRef(bodyRef, cand.parts[i])
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		return ptree.NewProduction(p.sym, cand.prodID, children), nil
	}
}

// buildListElements flattens the right-recursive chain of a `{X}`
// non-terminal's match into a single ordered slice of element nodes.
func (r *Result) buildListElements(sym string, start, end int) ([]*ptree.Node, error) {
	cand, err := r.lookup(sym, start, end)
	if err != nil {
		return nil, err
	}
	prod := r.Grammar.Productions[cand.prodID]
	if len(prod.Body) == 0 {
		return nil, nil
	}

	info := r.Grammar.NonTerminals[sym]
	first, err := r.buildForRef(info.Element, cand.parts[0])
	if err != nil {
		return nil, err
	}

	tailPart := cand.parts[1]
	rest, err := r.buildListElements(tailPart.sym, tailPart.start, tailPart.end)
	if err != nil {
		return nil, err
	}

	return append([]*ptree.Node{first}, rest...), nil
}
