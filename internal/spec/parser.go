package spec

import (
	"github.com/srhickma/padd/internal/padderr"
)

// parser is a one-token-lookahead recursive-descent parser over the
// specification language's token stream.
type parser struct {
	lx   *lexer
	tok  token
	peek *token // buffered lookahead, when non-nil
}

func newParser(src string) (*parser, error) {
	p := &parser{lx: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	if p.peek != nil {
		p.tok = *p.peek
		p.peek = nil
		return nil
	}
	t, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(k tokKind, what string) (token, error) {
	if p.tok.kind != k {
		return token{}, padderr.NewAt(padderr.SpecSyntaxError, p.tok.offset, "expected %s, found %s", what, p.tok.String())
	}
	t := p.tok
	err := p.advance()
	return t, err
}

func (p *parser) expectKeyword(kw string) error {
	if p.tok.kind != tIdent || p.tok.text != kw {
		return padderr.NewAt(padderr.SpecSyntaxError, p.tok.offset, "expected keyword %q, found %s", kw, p.tok.String())
	}
	return p.advance()
}

func (p *parser) atKeyword(kw string) bool {
	return p.tok.kind == tIdent && p.tok.text == kw
}

// parseSpec parses the entire specification source into a raw AST.
func parseSpec(src string) (*specAST, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	ast := &specAST{}

	for p.tok.kind != tEOF {
		switch {
		case p.atKeyword("alphabet"):
			off := p.tok.offset
			if err := p.advance(); err != nil {
				return nil, err
			}
			lit, err := p.expect(tQuoted, "a quoted alphabet string")
			if err != nil {
				return nil, err
			}
			if ast.alphabet != nil {
				return nil, padderr.NewAt(padderr.SpecSemanticError, off, "alphabet declared more than once")
			}
			s := lit.text
			ast.alphabet = &s
			ast.alphabetOff = off

		case p.atKeyword("cdfa"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			states, err := p.parseCDFABlock()
			if err != nil {
				return nil, err
			}
			ast.cdfaStates = append(ast.cdfaStates, states...)

		case p.atKeyword("grammar"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			prods, err := p.parseGrammarBlock()
			if err != nil {
				return nil, err
			}
			ast.productions = append(ast.productions, prods...)

		case p.atKeyword("ignore"):
			off := p.tok.offset
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(tIdent, "a terminal name")
			if err != nil {
				return nil, err
			}
			ast.ignore = append(ast.ignore, name.text)
			ast.ignoreOff = append(ast.ignoreOff, off)

		case p.atKeyword("inject"):
			off := p.tok.offset
			if err := p.advance(); err != nil {
				return nil, err
			}
			var left bool
			switch {
			case p.atKeyword("left"):
				left = true
			case p.atKeyword("right"):
				left = false
			default:
				return nil, padderr.NewAt(padderr.SpecSyntaxError, p.tok.offset, "expected 'left' or 'right', found %s", p.tok.String())
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(tIdent, "a terminal name")
			if err != nil {
				return nil, err
			}
			pat, err := p.expect(tPattern, "a backtick-delimited pattern")
			if err != nil {
				return nil, err
			}
			ast.inject = append(ast.inject, injectLit{tokenKind: name.text, left: left, patternSrc: pat.text, offset: off})

		default:
			return nil, padderr.NewAt(padderr.SpecSyntaxError, p.tok.offset, "expected a region keyword (alphabet/cdfa/grammar/ignore/inject), found %s", p.tok.String())
		}
	}

	return ast, nil
}

// parseCDFABlock parses `{ state-def... }` into raw state literals.
func (p *parser) parseCDFABlock() ([]stateLit, error) {
	if _, err := p.expect(tLBrace, "'{' opening a cdfa block"); err != nil {
		return nil, err
	}

	var states []stateLit
	for p.tok.kind != tRBrace {
		s, err := p.parseStateDef()
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	if _, err := p.expect(tRBrace, "'}' closing a cdfa block"); err != nil {
		return nil, err
	}
	return states, nil
}

// parseStateDef parses one `name [| name...] [^accept] transitions... ;`.
func (p *parser) parseStateDef() (stateLit, error) {
	off := p.tok.offset
	s := stateLit{offset: off}

	for {
		name, err := p.expect(tIdent, "a state name")
		if err != nil {
			return stateLit{}, err
		}
		s.names = append(s.names, name.text)
		if p.tok.kind != tPipe {
			break
		}
		if err := p.advance(); err != nil {
			return stateLit{}, err
		}
	}

	if p.tok.kind == tCaret {
		acc, err := p.parseAcceptorSugar()
		if err != nil {
			return stateLit{}, err
		}
		s.accept = &acc
	}

	for p.tok.kind != tSemi {
		tr, err := p.parseTransition()
		if err != nil {
			return stateLit{}, err
		}
		s.transitions = append(s.transitions, tr)
	}
	if err := p.advance(); err != nil { // consume ';'
		return stateLit{}, err
	}

	return s, nil
}

// parseAcceptorSugar parses `^TOKEN [-> dest]` or `^_` (silent).
func (p *parser) parseAcceptorSugar() (destLit, error) {
	off := p.tok.offset
	if err := p.advance(); err != nil { // consume '^'
		return destLit{}, err
	}
	name, err := p.expect(tIdent, "a token kind or '_' after '^'")
	if err != nil {
		return destLit{}, err
	}
	d := destLit{isAcceptor: true, tokenKind: name.text, silent: name.text == "_", offset: off}
	if p.tok.kind == tArrow {
		if err := p.advance(); err != nil {
			return destLit{}, err
		}
		dest, err := p.expect(tIdent, "a destination state name after '->'")
		if err != nil {
			return destLit{}, err
		}
		d.dest = dest.text
	}
	return d, nil
}

// parseTransition parses `matcher [| matcher]... (->|->>) dest`.
func (p *parser) parseTransition() (transitionLit, error) {
	var tr transitionLit

	for {
		m, err := p.parseMatcher()
		if err != nil {
			return transitionLit{}, err
		}
		tr.matchers = append(tr.matchers, m)
		if p.tok.kind != tPipe {
			break
		}
		if err := p.advance(); err != nil {
			return transitionLit{}, err
		}
	}

	switch p.tok.kind {
	case tArrow:
		tr.consumeAll = true
	case tDArrow:
		tr.consumeAll = false
	default:
		return transitionLit{}, padderr.NewAt(padderr.SpecSyntaxError, p.tok.offset, "expected '->' or '->>', found %s", p.tok.String())
	}
	if err := p.advance(); err != nil {
		return transitionLit{}, err
	}

	if p.tok.kind == tCaret {
		d, err := p.parseAcceptorSugar()
		if err != nil {
			return transitionLit{}, err
		}
		tr.dest = d
	} else {
		name, err := p.expect(tIdent, "a destination state name")
		if err != nil {
			return transitionLit{}, err
		}
		tr.dest = destLit{isAcceptor: false, stateName: name.text, offset: name.offset}
	}

	return tr, nil
}

// parseMatcher parses one matcher literal: 'c', 'lo'-'hi', "chain", or the
// bare identifier `_` for a default matcher.
func (p *parser) parseMatcher() (matcherLit, error) {
	off := p.tok.offset
	switch p.tok.kind {
	case tQuoted:
		lo := []rune(p.tok.text)
		if len(lo) != 1 {
			return matcherLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "a single-quoted matcher must be exactly one character")
		}
		if err := p.advance(); err != nil {
			return matcherLit{}, err
		}
		if p.tok.kind == tMinus {
			if err := p.advance(); err != nil {
				return matcherLit{}, err
			}
			hiTok, err := p.expect(tQuoted, "the upper bound of a range matcher")
			if err != nil {
				return matcherLit{}, err
			}
			hi := []rune(hiTok.text)
			if len(hi) != 1 {
				return matcherLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "a single-quoted matcher must be exactly one character")
			}
			return matcherLit{kind: litRange, lo: lo[0], hi: hi[0], offset: off}, nil
		}
		return matcherLit{kind: litSimple, simple: lo[0], offset: off}, nil

	case tDQuoted:
		text := p.tok.text
		if err := p.advance(); err != nil {
			return matcherLit{}, err
		}
		return matcherLit{kind: litChain, chain: text, offset: off}, nil

	case tIdent:
		if p.tok.text != "_" {
			return matcherLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "expected a matcher literal, found %s", p.tok.String())
		}
		if err := p.advance(); err != nil {
			return matcherLit{}, err
		}
		return matcherLit{kind: litDefault, offset: off}, nil

	default:
		return matcherLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "expected a matcher literal, found %s", p.tok.String())
	}
}

// parseGrammarBlock parses `{ production... }`.
func (p *parser) parseGrammarBlock() ([]productionLit, error) {
	if _, err := p.expect(tLBrace, "'{' opening a grammar block"); err != nil {
		return nil, err
	}

	var prods []productionLit
	for p.tok.kind != tRBrace {
		prod, err := p.parseProduction()
		if err != nil {
			return nil, err
		}
		prods = append(prods, prod)
	}
	if _, err := p.expect(tRBrace, "'}' closing a grammar block"); err != nil {
		return nil, err
	}
	return prods, nil
}

// parseProduction parses `LHS [\`default\`] (| rhs [\`pat\`])+ ;`.
func (p *parser) parseProduction() (productionLit, error) {
	off := p.tok.offset
	lhs, err := p.expect(tIdent, "a non-terminal name")
	if err != nil {
		return productionLit{}, err
	}
	prod := productionLit{lhs: lhs.text, offset: off}

	if p.tok.kind == tPattern {
		s := p.tok.text
		prod.defaultPat = &s
		if err := p.advance(); err != nil {
			return productionLit{}, err
		}
	}

	for p.tok.kind == tPipe {
		altOff := p.tok.offset
		if err := p.advance(); err != nil {
			return productionLit{}, err
		}
		alt := altLit{offset: altOff}
		for p.tok.kind == tIdent || p.tok.kind == tLBracket || p.tok.kind == tLBrace {
			sym, err := p.parseSymbolRef()
			if err != nil {
				return productionLit{}, err
			}
			alt.rhs = append(alt.rhs, sym)
		}
		if p.tok.kind == tPattern {
			s := p.tok.text
			alt.patternSrc = &s
			if err := p.advance(); err != nil {
				return productionLit{}, err
			}
		}
		prod.alts = append(prod.alts, alt)
	}

	if len(prod.alts) == 0 {
		return productionLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "production %q declares no alternatives", lhs.text)
	}

	if _, err := p.expect(tSemi, "';' terminating a production"); err != nil {
		return productionLit{}, err
	}

	return prod, nil
}

// parseSymbolRef parses one RHS symbol: a plain name, `[X]`, or `{X}`.
func (p *parser) parseSymbolRef() (symbolLit, error) {
	off := p.tok.offset
	switch p.tok.kind {
	case tIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return symbolLit{}, err
		}
		return symbolLit{kind: symPlain, name: name, offset: off}, nil

	case tLBracket:
		if err := p.advance(); err != nil {
			return symbolLit{}, err
		}
		name, err := p.expect(tIdent, "a symbol name inside '[...]'")
		if err != nil {
			return symbolLit{}, err
		}
		if _, err := p.expect(tRBracket, "']' closing an optional symbol"); err != nil {
			return symbolLit{}, err
		}
		return symbolLit{kind: symOptional, name: name.text, offset: off}, nil

	case tLBrace:
		if err := p.advance(); err != nil {
			return symbolLit{}, err
		}
		name, err := p.expect(tIdent, "a symbol name inside '{...}'")
		if err != nil {
			return symbolLit{}, err
		}
		if _, err := p.expect(tRBrace, "'}' closing an inline list symbol"); err != nil {
			return symbolLit{}, err
		}
		return symbolLit{kind: symList, name: name.text, offset: off}, nil

	default:
		return symbolLit{}, padderr.NewAt(padderr.SpecSyntaxError, off, "expected a symbol reference, found %s", p.tok.String())
	}
}
