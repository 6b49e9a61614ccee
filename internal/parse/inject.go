package parse

import (
	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/pattern"
	"github.com/srhickma/padd/internal/ptree"
)

// Affinity is which neighboring token an injected token prefers to attach
// to (spec.md §3, §4.3).
type Affinity int

const (
	Left Affinity = iota
	Right
)

// InjectRule is one entry of the compiled inject map: the neighbor an
// injected token of a given kind prefers, and the pattern used to render
// it at format time.
type InjectRule struct {
	Affinity Affinity
	Pattern  *pattern.Pattern
}

// Run executes the full ignore/inject pipeline of spec.md §4.3: partition
// the lexed stream into regular and injectable tokens, parse the regular
// stream with the weighted Earley chart, materialize the minimum-weight
// tree, then re-attach injectable tokens to their resolved affinity
// neighbor.
func Run(g *grammar.Grammar, start string, allTokens []cdfa.Token, ignoreSet map[string]bool, injectMap map[string]InjectRule) (*ptree.Node, error) {
	isInjectable := func(kind string) bool {
		_, in := injectMap[kind]
		return in && !g.Terminals[kind]
	}

	var regular []cdfa.Token
	for _, t := range allTokens {
		if !isInjectable(t.Kind) {
			regular = append(regular, t)
		}
	}

	result, err := Parse(g, start, regular, ignoreSet)
	if err != nil {
		return nil, err
	}

	tree, err := result.BuildTree()
	if err != nil {
		return nil, err
	}

	attachInjections(tree, g, allTokens, injectMap, isInjectable)

	return tree, nil
}

// attachInjections implements spec.md §4.3 step 3: for each injectable
// token, find its affinity neighbor's leaf among the tokens that survived
// into the tree; attach there if that leaf is captured by its immediate
// enclosing pattern, else try the opposite neighbor, else drop it.
func attachInjections(tree *ptree.Node, g *grammar.Grammar, allTokens []cdfa.Token, injectMap map[string]InjectRule, isInjectable func(string) bool) {
	captured := markCaptured(tree, g)

	leafByOffset := make(map[int]*ptree.Node)
	for _, leaf := range tree.Leaves() {
		leafByOffset[leaf.Token.Offset] = leaf
	}

	leafAt := func(tokenIdx int) *ptree.Node {
		if tokenIdx < 0 || tokenIdx >= len(allTokens) {
			return nil
		}
		return leafByOffset[allTokens[tokenIdx].Offset]
	}

	for idx, tok := range allTokens {
		if !isInjectable(tok.Kind) {
			continue
		}
		rule := injectMap[tok.Kind]

		var left, right *ptree.Node
		for i := idx - 1; i >= 0; i-- {
			if isInjectable(allTokens[i].Kind) {
				continue
			}
			left = leafAt(i)
			break
		}
		for i := idx + 1; i < len(allTokens); i++ {
			if isInjectable(allTokens[i].Kind) {
				continue
			}
			right = leafAt(i)
			break
		}

		var preferred, fallback *ptree.Node
		preferredIsLeft := rule.Affinity == Left
		if preferredIsLeft {
			preferred, fallback = left, right
		} else {
			preferred, fallback = right, left
		}

		switch {
		case preferred != nil && captured[preferred]:
			attach(preferred, tok, rule.Pattern, preferredIsLeft)
		case fallback != nil && captured[fallback]:
			attach(fallback, tok, rule.Pattern, !preferredIsLeft)
		default:
			// dropped: still contributes +1 to total parse weight, but
			// that weight does not affect derivation selection (spec.md
			// §4.3) and is not tracked further since every derivation
			// pays it uniformly.
		}
	}
}

func attach(leaf *ptree.Node, tok cdfa.Token, pat *pattern.Pattern, attachedLeft bool) {
	leaf.Injections = append(leaf.Injections, ptree.Injected{
		Token:   tok,
		Pattern: pat,
		Prefix:  !attachedLeft,
	})
}

// markCaptured walks the tree, returning the set of nodes that are
// captured by their immediate parent's pattern: every element of a List
// node (inline-list formatting always includes every element), and every
// child index a Production node's pattern captures (explicit captures, or
// every child under the default concatenation pattern).
func markCaptured(root *ptree.Node, g *grammar.Grammar) map[*ptree.Node]bool {
	captured := make(map[*ptree.Node]bool)

	var walk func(n *ptree.Node)
	walk = func(n *ptree.Node) {
		switch n.Kind {
		case ptree.List:
			for _, c := range n.Children {
				captured[c] = true
			}
		case ptree.Production:
			prod := g.Productions[n.ProdID]
			var set map[int]bool
			if prod.Pattern != nil {
				set = prod.Pattern.CapturedSet()
			} else {
				set = pattern.DefaultCapturedSet(len(n.Children))
			}
			for i, c := range n.Children {
				if set[i] {
					captured[c] = true
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	return captured
}
