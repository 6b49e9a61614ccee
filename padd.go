// Package padd is the engine API described in spec.md §6: compile a
// specification once into a CompiledSpec, then format any number of
// input texts against it, safely from multiple goroutines at once.
package padd

import (
	"github.com/google/uuid"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/format"
	"github.com/srhickma/padd/internal/parse"
	"github.com/srhickma/padd/internal/spec"
)

// CompiledSpec is an immutable, concurrency-safe compiled specification:
// every formatting job sharing one CompiledSpec allocates its own chart,
// tree arena, and scope stack, and mutates none of this struct's fields
// (spec.md §5).
type CompiledSpec struct {
	// Revision uniquely identifies this compiled artifact, so a host
	// process (e.g. an on-disk cache keyed by spec text hash) can tell two
	// compilations of the same source apart across restarts.
	Revision uuid.UUID

	compiled *spec.Compiled
}

// CompileSpec parses and validates specification source text, returning
// an immutable CompiledSpec ready to format any number of inputs.
func CompileSpec(specText string) (*CompiledSpec, error) {
	c, err := spec.Compile(specText)
	if err != nil {
		return nil, err
	}
	return &CompiledSpec{Revision: uuid.New(), compiled: c}, nil
}

// Format lexes, parses, and reformats input against cs. startOverride, if
// non-empty, replaces the grammar's default start non-terminal for this
// call only (e.g. to format a sub-region of a larger grammar).
func Format(cs *CompiledSpec, input string, startOverride string) (string, error) {
	start := cs.compiled.Start
	if startOverride != "" {
		start = startOverride
	}

	tokens, err := cdfa.Lex(cs.compiled.CDFA, cs.compiled.Alphabet, input)
	if err != nil {
		return "", err
	}

	tree, err := parse.Run(cs.compiled.Grammar, start, tokens, cs.compiled.Ignore, cs.compiled.Inject)
	if err != nil {
		return "", err
	}

	return format.Format(cs.compiled.Grammar, tree)
}

// Dump renders a human-readable listing of the compiled CDFA, for
// diagnosing a misbehaving specification.
func (cs *CompiledSpec) Dump() string {
	return cs.compiled.CDFA.Dump()
}
