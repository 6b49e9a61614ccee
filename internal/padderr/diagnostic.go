// Package padderr defines the structured Diagnostic error type returned by
// every stage of the engine: spec compilation, lexing, parsing, and
// formatting. It follows the same shape as the teacher's interpreterError
// (internal/tqerrors): an unexported struct implementing error, constructed
// through package-level constructors, with a human-oriented rendering
// distinct from Error().
package padderr

import "fmt"

// Kind identifies which stage and failure mode produced a Diagnostic.
type Kind string

const (
	SpecSyntaxError   Kind = "SpecSyntaxError"
	SpecSemanticError Kind = "SpecSemanticError"
	LexError          Kind = "LexError"
	ParseError        Kind = "ParseError"
	FormatError       Kind = "FormatError"
)

// Diagnostic is a structured failure from any engine stage. Offset is a
// byte offset into the text the failing stage was operating on (spec text
// for Spec* kinds, input text for Lex/Parse/Format kinds); it is -1 when
// not applicable.
type Diagnostic struct {
	kind    Kind
	message string
	offset  int
	wrap    error
}

// New returns a Diagnostic with no source offset.
func New(kind Kind, format string, a ...interface{}) *Diagnostic {
	return &Diagnostic{kind: kind, message: fmt.Sprintf(format, a...), offset: -1}
}

// NewAt returns a Diagnostic citing a specific byte offset.
func NewAt(kind Kind, offset int, format string, a ...interface{}) *Diagnostic {
	return &Diagnostic{kind: kind, message: fmt.Sprintf(format, a...), offset: offset}
}

// Wrap returns a Diagnostic that wraps an underlying error, preserving
// Unwrap() semantics.
func Wrap(kind Kind, wrapped error, format string, a ...interface{}) *Diagnostic {
	return &Diagnostic{kind: kind, message: fmt.Sprintf(format, a...), offset: -1, wrap: wrapped}
}

// Kind returns the Diagnostic's kind.
func (d *Diagnostic) Kind() Kind { return d.kind }

// Offset returns the byte offset the Diagnostic cites, or -1 if none.
func (d *Diagnostic) Offset() int { return d.offset }

// Error implements error.
func (d *Diagnostic) Error() string {
	if d.offset >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", d.kind, d.offset, d.message)
	}
	return fmt.Sprintf("%s: %s", d.kind, d.message)
}

// FullMessage renders a diagnostic the way it should be shown to a human
// operator -- currently identical to Error(), kept distinct so callers that
// want to decorate human output (e.g. with source context) have a single
// well-known seam to override, matching icterrors.SyntaxError's
// FullMessage().
func (d *Diagnostic) FullMessage() string {
	return d.Error()
}

// Unwrap gives the error that the Diagnostic wraps, if any.
func (d *Diagnostic) Unwrap() error {
	return d.wrap
}
