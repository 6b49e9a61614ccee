package cdfa

import "fmt"

// trieNode is one node of the prefix trie built over a state's simple/chain
// matchers. It exists purely to validate the prefix-free invariant (spec.md
// §3: "the set of simple+chain matchers is stored as a trie and must be
// prefix-free") and to do the fast longest-match lookup the lexer needs.
type trieNode struct {
	children map[rune]*trieNode
	// terminal is set when a matcher's key ends exactly at this node.
	terminal bool
	index    int // index into the owning state's transition list
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// trie indexes a state's simple/chain transitions by their literal key,
// rejecting prefix collisions at insert time.
type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

// insert adds key (belonging to transition index idx) to the trie. Returns
// an error if key is a proper prefix of an existing key, or an existing key
// is a proper prefix of key, or key is already present.
func (t *trie) insert(key string, idx int) error {
	runes := []rune(key)
	node := t.root

	for i, r := range runes {
		if node.terminal {
			return fmt.Errorf("matcher %q is a proper prefix of an existing matcher", string(runes[:i]))
		}
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode()
			node.children[r] = child
		}
		node = child
	}

	if node.terminal {
		return fmt.Errorf("duplicate matcher %q", key)
	}
	if len(node.children) > 0 {
		return fmt.Errorf("matcher %q is a proper prefix of an existing matcher", key)
	}

	node.terminal = true
	node.index = idx
	return nil
}

// longestMatch finds the transition index whose key matches the longest
// prefix of in starting at pos. Because the trie is prefix-free there is at
// most one terminal reachable by walking from the root, so "longest" and
// "only" coincide.
func (t *trie) longestMatch(in []rune, pos int) (idx int, length int, ok bool) {
	node := t.root
	i := 0
	for pos+i < len(in) {
		child, has := node.children[in[pos+i]]
		if !has {
			break
		}
		node = child
		i++
		if node.terminal {
			return node.index, i, true
		}
	}
	return 0, 0, false
}
