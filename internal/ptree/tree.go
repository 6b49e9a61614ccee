// Package ptree defines the parse-tree node shared between the weighted
// parser and the tree formatter, arena-owned by the parser and transferred
// read-only to the formatter (spec.md §3). Styled on the teacher's own
// internal/ictiobus/types.ParseTree (same box-drawing leveledStr pretty
// printer, generalized past its fixed Terminal/non-terminal split to also
// carry the synthetic List node kind this spec's inline-list flattening
// needs).
package ptree

import (
	"fmt"
	"strings"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/pattern"
)

// Kind tags a Node's variant.
type Kind int

const (
	// Terminal is a leaf produced by a single lexer token.
	Terminal Kind = iota
	// Production is an interior node for one application of a grammar
	// production.
	Production
	// List is a synthetic grouping node introduced by `{X}` inline-list
	// flattening: its Children are the list's elements, in order, with no
	// recursive chain structure exposed to the formatter.
	List
)

// Injected is an injectable token attached to a Terminal leaf by the
// parser's ignore/inject pass (spec.md §4.3 step 3), rendered at format
// time against that leaf's own variable scope (spec.md §4.4).
type Injected struct {
	Token   cdfa.Token
	Pattern *pattern.Pattern // the inject rule's rendering pattern; implicit single capture slot yields Token.Lexeme
	Prefix  bool             // true: render before the leaf's text (right affinity was resolved here); false: after
}

// Node is one parse-tree node.
type Node struct {
	Kind Kind

	// Symbol is the terminal kind (Terminal), production head non-terminal
	// (Production), or element symbol name (List).
	Symbol string

	// ProdID identifies which production of Symbol's head this node used;
	// -1 for Terminal and List nodes.
	ProdID int

	// Token is populated only for Terminal nodes.
	Token cdfa.Token

	// Injections attached to this leaf, in attachment order. Only
	// meaningful for Terminal nodes.
	Injections []Injected

	Children []*Node
}

// NewTerminal returns a leaf node for tok.
func NewTerminal(tok cdfa.Token) *Node {
	return &Node{Kind: Terminal, Symbol: tok.Kind, ProdID: -1, Token: tok}
}

// NewProduction returns an interior node for one use of production prodID
// of non-terminal head.
func NewProduction(head string, prodID int, children []*Node) *Node {
	return &Node{Kind: Production, Symbol: head, ProdID: prodID, Children: children}
}

// NewList returns a synthetic flattening node over an inline list's
// elements.
func NewList(elementSymbol string, children []*Node) *Node {
	return &Node{Kind: List, Symbol: elementSymbol, ProdID: -1, Children: children}
}

// String renders the tree as a box-drawn, line-comparable representation.
func (n *Node) String() string {
	return n.leveledStr("", "")
}

// Pretty is an alias of String, named to match the engine's diagnostic
// surface (CompiledSpec.Dump(), ParseTree.Pretty()).
func (n *Node) Pretty() string {
	return n.String()
}

func (n *Node) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder
	sb.WriteString(firstPrefix)

	switch n.Kind {
	case Terminal:
		sb.WriteString(fmt.Sprintf("(TERM %s %q)", n.Symbol, n.Token.Lexeme))
	case List:
		sb.WriteString(fmt.Sprintf("( *%s )", n.Symbol))
	default:
		sb.WriteString(fmt.Sprintf("( %s )", n.Symbol))
	}

	for i, child := range n.Children {
		sb.WriteRune('\n')
		var childFirst, childCont string
		if i+1 < len(n.Children) {
			childFirst = contPrefix + "  |--: "
			childCont = contPrefix + "  |     "
		} else {
			childFirst = contPrefix + `  \--: `
			childCont = contPrefix + "        "
		}
		sb.WriteString(child.leveledStr(childFirst, childCont))
	}

	return sb.String()
}

// Walk visits n and every descendant, depth-first, left to right --
// matching the formatter's traversal order (spec.md §5).
func (n *Node) Walk(visit func(*Node)) {
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}

// Leaves returns every Terminal node reachable from n, in left-to-right
// (source) order.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(node *Node) {
		if node.Kind == Terminal {
			out = append(out, node)
		}
	})
	return out
}
