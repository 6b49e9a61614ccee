// Package format implements the pattern-driven tree formatter of spec.md
// §4.4: a recursive walk over a parse tree that evaluates each node's
// compiled Pattern against a per-node variable scope, realizing injected
// tokens at the leaf they attached to along the way. Styled on the
// teacher's own internal/ictiobus/translation package (a SDTS-like
// attribute evaluator walking a ptree.ParseTree bottom-up with a
// string-keyed scope per node) but simplified from arbitrary semantic
// actions down to this spec's single "render text" attribute.
package format

import (
	"strings"

	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/padderr"
	"github.com/srhickma/padd/internal/pattern"
	"github.com/srhickma/padd/internal/ptree"
)

// scope is the variable scope threaded through rendering: a copy-on-write
// mapping of pattern variables to their current string values, inherited
// parent-to-child (spec.md §4.4). Only a capture segment's own assignment
// clause mutates it, and only for the clone used to format that one
// captured child -- siblings and later segments of the same pattern see
// the scope unchanged (spec.md §4.4 "scope isolation").
type scope map[string]string

func (s scope) clone() scope {
	next := make(scope, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

func (s scope) with(k, v string) scope {
	next := s.clone()
	next[k] = v
	return next
}

// Format renders root to its final formatted text, using g to look up
// each Production node's pattern.
func Format(g *grammar.Grammar, root *ptree.Node) (string, error) {
	var sb strings.Builder
	if err := render(&sb, g, root, scope{}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// render writes node's formatted text -- including any tokens injected
// onto it -- to sb, under the inherited scope s.
func render(sb *strings.Builder, g *grammar.Grammar, node *ptree.Node, s scope) error {
	switch node.Kind {
	case ptree.Terminal:
		if err := writeInjections(sb, node, s, true); err != nil {
			return err
		}
		sb.WriteString(node.Token.Lexeme)
		return writeInjections(sb, node, s, false)

	case ptree.List:
		// inline list formatting: ordered concatenation of elements under
		// the current scope (spec.md §4.4).
		for _, child := range node.Children {
			if err := render(sb, g, child, s); err != nil {
				return err
			}
		}
		return nil

	default:
		prod := g.Productions[node.ProdID]
		if prod.Pattern == nil {
			// default pattern: in-order concatenation, no scope changes.
			for _, child := range node.Children {
				if err := render(sb, g, child, s); err != nil {
					return err
				}
			}
			return nil
		}
		return renderPattern(sb, g, prod.Pattern, node, s)
	}
}

// renderPattern evaluates pat's segments against node's children in
// order, under scope s. Each capture segment clones s fresh (never from a
// sibling capture's clone) before applying its own assignments, so
// assignments never leak to later segments or to siblings (spec.md §4.4).
func renderPattern(sb *strings.Builder, g *grammar.Grammar, pat *pattern.Pattern, node *ptree.Node, s scope) error {
	counter := 0
	for _, seg := range pat.Segments {
		switch seg.Kind {
		case pattern.SegFiller:
			sb.WriteString(seg.Filler)

		case pattern.SegSubstitution:
			sb.WriteString(s[seg.Var])

		case pattern.SegCapture:
			idx := counter
			if seg.Index != nil {
				idx = *seg.Index
			}
			counter++

			if idx < 0 || idx >= len(node.Children) {
				return padderr.New(padderr.FormatError, "capture index %d out of range for %q (%d children)", idx, node.Symbol, len(node.Children))
			}
			child := node.Children[idx]

			childScope := s.clone()
			for _, a := range seg.Assigns {
				var valSb strings.Builder
				if err := renderFillerSubstitution(&valSb, a.Value, childScope); err != nil {
					return err
				}
				childScope = childScope.with(a.Var, valSb.String())
			}

			if err := render(sb, g, child, childScope); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderFillerSubstitution evaluates a pattern restricted to filler and
// substitution segments only: a capture assignment's value (spec.md §3
// disallows nested captures there) and an injection rule's pattern around
// its single implicit capture slot.
func renderFillerSubstitution(sb *strings.Builder, pat *pattern.Pattern, s scope) error {
	for _, seg := range pat.Segments {
		switch seg.Kind {
		case pattern.SegFiller:
			sb.WriteString(seg.Filler)
		case pattern.SegSubstitution:
			sb.WriteString(s[seg.Var])
		}
	}
	return nil
}

// writeInjections renders the subset of node's attached injections that
// belong on the requested side (Prefix==true before the leaf's lexeme,
// false after), each against the leaf's own scope at the point it was
// captured (spec.md §4.3 step 3, §4.4 "injection realization"). An
// injection pattern's capture segment has no real child to index; it
// always yields the injected token's own lexeme.
func writeInjections(sb *strings.Builder, node *ptree.Node, s scope, prefix bool) error {
	for _, inj := range node.Injections {
		if inj.Prefix != prefix {
			continue
		}
		if inj.Pattern == nil {
			sb.WriteString(inj.Token.Lexeme)
			continue
		}
		for _, seg := range inj.Pattern.Segments {
			switch seg.Kind {
			case pattern.SegFiller:
				sb.WriteString(seg.Filler)
			case pattern.SegSubstitution:
				sb.WriteString(s[seg.Var])
			case pattern.SegCapture:
				sb.WriteString(inj.Token.Lexeme)
			}
		}
	}
	return nil
}
