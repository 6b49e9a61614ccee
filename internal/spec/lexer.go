// Package spec hand-rolls a recursive-descent compiler for the
// specification language of spec.md §4.1/§6: alphabet/cdfa/grammar
// regions plus top-level ignore/inject statements, compiled into the
// cdfa.CDFA, grammar.Grammar, and parse.InjectRule artifacts the rest of
// the engine runs on. spec.md §9 explicitly allows hand-rolling this
// instead of bootstrapping the spec language through the engine itself
// ("both approaches satisfy the contract, but hand-roll is simpler") --
// the approach taken here.
package spec

import (
	"fmt"
	"strings"

	"github.com/srhickma/padd/internal/padderr"
)

// tokKind tags one lexical token of the specification language.
type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tQuoted   // 'chars' -- alphabet strings, single-char/range matcher bounds
	tDQuoted  // "chars" -- chain matchers
	tPattern  // `pattern source` -- production/injection patterns
	tArrow    // ->
	tDArrow   // ->>
	tPipe     // |
	tCaret    // ^
	tLBrace   // {
	tRBrace   // }
	tLBracket // [
	tRBracket // ]
	tSemi     // ;
	tMinus    // - (range separator)
)

type token struct {
	kind   tokKind
	text   string // decoded content for tQuoted/tDQuoted/tPattern/tIdent
	offset int
}

// lexer tokenizes specification source text, decoding quoted/backtick
// literal escapes eagerly so the parser only ever sees clean strings.
type lexer struct {
	runes []rune
	bytes []int // byte offset of each rune, plus one trailing entry
	pos   int
}

func newLexer(src string) *lexer {
	runes := []rune(src)
	bytes := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		bytes[i] = b
		b += len(string(r))
	}
	bytes[len(runes)] = len(src)
	return &lexer{runes: runes, bytes: bytes}
}

func (l *lexer) offset() int {
	if l.pos >= len(l.bytes) {
		return l.bytes[len(l.bytes)-1]
	}
	return l.bytes[l.pos]
}

func (l *lexer) peekRune() (rune, bool) {
	if l.pos >= len(l.runes) {
		return 0, false
	}
	return l.runes[l.pos], true
}

func (l *lexer) skipTrivia() {
	for {
		r, ok := l.peekRune()
		if !ok {
			return
		}
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			l.pos++
		case r == '#':
			for {
				r, ok := l.peekRune()
				if !ok || r == '\n' {
					break
				}
				l.pos++
			}
		default:
			return
		}
	}
}

// next returns the next token of the specification source.
func (l *lexer) next() (token, error) {
	l.skipTrivia()
	startOffset := l.offset()

	r, ok := l.peekRune()
	if !ok {
		return token{kind: tEOF, offset: startOffset}, nil
	}

	switch {
	case r == '-':
		l.pos++
		if r2, ok := l.peekRune(); ok && r2 == '>' {
			l.pos++
			if r3, ok := l.peekRune(); ok && r3 == '>' {
				l.pos++
				return token{kind: tDArrow, offset: startOffset}, nil
			}
			return token{kind: tArrow, offset: startOffset}, nil
		}
		return token{kind: tMinus, offset: startOffset}, nil
	case r == '|':
		l.pos++
		return token{kind: tPipe, offset: startOffset}, nil
	case r == '^':
		l.pos++
		return token{kind: tCaret, offset: startOffset}, nil
	case r == '{':
		l.pos++
		return token{kind: tLBrace, offset: startOffset}, nil
	case r == '}':
		l.pos++
		return token{kind: tRBrace, offset: startOffset}, nil
	case r == '[':
		l.pos++
		return token{kind: tLBracket, offset: startOffset}, nil
	case r == ']':
		l.pos++
		return token{kind: tRBracket, offset: startOffset}, nil
	case r == ';':
		l.pos++
		return token{kind: tSemi, offset: startOffset}, nil
	case r == '\'':
		return l.lexDelimited('\'', tQuoted, startOffset, true)
	case r == '"':
		return l.lexDelimited('"', tDQuoted, startOffset, false)
	case r == '`':
		return l.lexDelimited('`', tPattern, startOffset, false)
	case isIdentStart(r):
		return l.lexIdent(startOffset), nil
	default:
		return token{}, padderr.NewAt(padderr.SpecSyntaxError, startOffset, "unexpected character %q", string(r))
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func (l *lexer) lexIdent(startOffset int) token {
	var sb strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok || !isIdentCont(r) {
			break
		}
		sb.WriteRune(r)
		l.pos++
	}
	return token{kind: tIdent, text: sb.String(), offset: startOffset}
}

// lexDelimited reads a delimiter-bounded literal, decoding \n \t \r \\ and
// (when decodeQuoteEscape is set, for single-quoted literals) \' escapes.
func (l *lexer) lexDelimited(delim rune, kind tokKind, startOffset int, decodeQuoteEscape bool) (token, error) {
	l.pos++ // consume opening delimiter
	var sb strings.Builder
	for {
		r, ok := l.peekRune()
		if !ok {
			return token{}, padderr.NewAt(padderr.SpecSyntaxError, startOffset, "unterminated literal starting here")
		}
		if r == '\\' {
			l.pos++
			r2, ok := l.peekRune()
			if !ok {
				return token{}, padderr.NewAt(padderr.SpecSyntaxError, startOffset, "unterminated escape in literal")
			}
			switch r2 {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '\'':
				if decodeQuoteEscape {
					sb.WriteByte('\'')
				} else {
					sb.WriteRune(r2)
				}
			default:
				sb.WriteRune(r2)
			}
			l.pos++
			continue
		}
		if r == delim {
			l.pos++
			return token{kind: kind, text: sb.String(), offset: startOffset}, nil
		}
		sb.WriteRune(r)
		l.pos++
	}
}

func (t token) String() string {
	switch t.kind {
	case tEOF:
		return "<eof>"
	case tIdent:
		return fmt.Sprintf("identifier %q", t.text)
	case tQuoted:
		return fmt.Sprintf("'%s'", t.text)
	case tDQuoted:
		return fmt.Sprintf("%q", t.text)
	case tPattern:
		return fmt.Sprintf("`%s`", t.text)
	case tArrow:
		return "'->'"
	case tDArrow:
		return "'->>'"
	case tPipe:
		return "'|'"
	case tCaret:
		return "'^'"
	case tLBrace:
		return "'{'"
	case tRBrace:
		return "'}'"
	case tLBracket:
		return "'['"
	case tRBracket:
		return "']'"
	case tSemi:
		return "';'"
	case tMinus:
		return "'-'"
	default:
		return "?"
	}
}
