package spec

import (
	"fmt"
	"unicode"

	"github.com/srhickma/padd/internal/cdfa"
	"github.com/srhickma/padd/internal/grammar"
	"github.com/srhickma/padd/internal/padderr"
	"github.com/srhickma/padd/internal/parse"
	"github.com/srhickma/padd/internal/pattern"
	"github.com/srhickma/padd/internal/symbols"
)

// Compiled is the full bundle a formatting job needs: everything the spec
// compiler (this package) produces from specification source text, ready
// to hand to the lexer/parser/formatter. It carries no mutable state
// after Compile returns and so may be shared read-only across any number
// of concurrent formatting jobs (spec.md §5).
type Compiled struct {
	CDFA      *cdfa.CDFA
	Alphabet  *cdfa.Alphabet
	Grammar   *grammar.Grammar
	Ignore    map[string]bool
	Inject    map[string]parse.InjectRule
	Start     string
	Namespace *symbols.Namespaces
}

// Compile parses and semantically validates specification source text
// into a Compiled bundle, per spec.md §4.1.
func Compile(src string) (*Compiled, error) {
	ast, err := parseSpec(src)
	if err != nil {
		return nil, err
	}

	ns := symbols.NewNamespaces()

	var alphabet *cdfa.Alphabet
	if ast.alphabet != nil {
		alphabet = cdfa.NewAlphabet(*ast.alphabet)
	}

	c, tokenKinds, err := compileCDFA(ast.cdfaStates, alphabet, ns)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(alphabet); err != nil {
		return nil, padderr.Wrap(padderr.SpecSemanticError, err, "invalid cdfa")
	}

	g, err := compileGrammar(ast.productions, ns)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(tokenKinds); err != nil {
		return nil, padderr.Wrap(padderr.SpecSemanticError, err, "invalid grammar")
	}

	ignore, inject, err := compileIgnoreInject(ast, ns)
	if err != nil {
		return nil, err
	}

	ns.Freeze()

	return &Compiled{
		CDFA:      c,
		Alphabet:  alphabet,
		Grammar:   g,
		Ignore:    ignore,
		Inject:    inject,
		Start:     g.Start,
		Namespace: ns,
	}, nil
}

// isTerminalName applies the naming convention that distinguishes a
// terminal reference from a non-terminal one in the grammar region: a
// capitalized leading rune names a terminal kind (LBRACKET, A, B, ...),
// anything else a non-terminal (s, b, expr, ...) -- the same convention
// the worked examples in spec.md §8 use throughout.
func isTerminalName(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

// compileCDFA coalesces raw state literals (by name union, per spec.md
// §4.1 "state coalescence") and expands `^TOKEN` destination sugar into
// shared auto-accept states, collapsing identical expansions.
func compileCDFA(states []stateLit, alphabet *cdfa.Alphabet, ns *symbols.Namespaces) (*cdfa.CDFA, map[string]bool, error) {
	c := cdfa.New()
	if len(states) == 0 {
		return nil, nil, padderr.New(padderr.SpecSemanticError, "no cdfa states declared")
	}

	defs := make(map[string]*cdfa.StateDef)
	order := make([]string, 0, len(states))
	tokenKinds := make(map[string]bool)

	ensure := func(name string) *cdfa.StateDef {
		if d, ok := defs[name]; ok {
			return d
		}
		d := &cdfa.StateDef{Name: name}
		defs[name] = d
		order = append(order, name)
		ns.States.Intern(name)
		return d
	}

	autoNames := make(map[string]string) // dedup key -> synthesized state name
	autoCounters := make(map[string]int) // base name -> next disambiguating suffix

	userNames := make(map[string]bool) // every state name the spec declares, wherever it appears
	for _, s := range states {
		for _, name := range s.names {
			userNames[name] = true
		}
	}

	resolveAcceptorDest := func(d destLit) (string, error) {
		key := fmt.Sprintf("%s\x00%s\x00%v", d.tokenKind, d.dest, d.silent)
		if name, ok := autoNames[key]; ok {
			return name, nil
		}

		base := d.tokenKind
		name := base
		for {
			if _, taken := defs[name]; !taken && !userNames[name] {
				break
			}
			// a state with this name already exists (or is declared later
			// in the spec) and is NOT an identical accept-sugar expansion
			// (that case was handled by the key lookup above): disambiguate.
			autoCounters[base]++
			name = fmt.Sprintf("%s#%d", base, autoCounters[base])
		}

		acc := &cdfa.Acceptor{Kind: d.tokenKind, Dest: d.dest, Silent: d.silent}
		c.AddState(cdfa.StateDef{Name: name, Accept: acc})
		defs[name] = c.States[name]
		order = append(order, name)
		ns.States.Intern(name)
		if !d.silent {
			ns.Terminals.Intern(d.tokenKind)
			tokenKinds[d.tokenKind] = true
		}
		autoNames[key] = name
		return name, nil
	}

	for _, s := range states {
		var acc *cdfa.Acceptor
		if s.accept != nil {
			acc = &cdfa.Acceptor{Kind: s.accept.tokenKind, Dest: s.accept.dest, Silent: s.accept.silent}
			if !s.accept.silent {
				ns.Terminals.Intern(s.accept.tokenKind)
				tokenKinds[s.accept.tokenKind] = true
			}
		}

		var trs []cdfa.Transition
		for _, t := range s.transitions {
			destName := t.dest.stateName
			if t.dest.isAcceptor {
				var err error
				destName, err = resolveAcceptorDest(t.dest)
				if err != nil {
					return nil, nil, err
				}
			}
			mode := cdfa.ConsumeAll
			if !t.consumeAll {
				mode = cdfa.ConsumeNone
			}
			for _, m := range t.matchers {
				trs = append(trs, cdfa.Transition{
					Matcher: compileMatcher(m),
					Dest:    destName,
					Consume: mode,
				})
			}
		}

		for _, name := range s.names {
			d := ensure(name)
			if acc != nil {
				if d.Accept != nil && *d.Accept != *acc {
					return nil, nil, padderr.NewAt(padderr.SpecSemanticError, s.offset, "state %q declares conflicting acceptors across coalesced definitions", name)
				}
				d.Accept = acc
			}
			d.Transitions = append(d.Transitions, trs...)
		}
	}

	// The start state is whichever name the spec's first state declaration
	// leads with, never an auto-synthesized `^TOKEN` accept state -- those
	// can land in `order` earlier than the user's own first name, since a
	// state's transitions (and any acceptor sugar they expand to) compile
	// before that state's own name is interned.
	c.Start = states[0].names[0]
	for _, name := range order {
		c.States[name] = defs[name]
	}

	return c, tokenKinds, nil
}

func compileMatcher(m matcherLit) cdfa.Matcher {
	switch m.kind {
	case litSimple:
		return cdfa.Matcher{Kind: cdfa.MatcherSimple, Simple: m.simple}
	case litChain:
		return cdfa.Matcher{Kind: cdfa.MatcherChain, Chain: m.chain}
	case litRange:
		return cdfa.Matcher{Kind: cdfa.MatcherRange, RangeLo: m.lo, RangeHi: m.hi}
	default:
		return cdfa.Matcher{Kind: cdfa.MatcherDefault}
	}
}

// compileGrammar builds a grammar.Grammar from raw production literals,
// desugaring `[X]`/`{X}` references and compiling each alternative's
// pattern (falling back to the production's shared default pattern, then
// to the engine's own default concatenation pattern).
func compileGrammar(prods []productionLit, ns *symbols.Namespaces) (*grammar.Grammar, error) {
	g := grammar.New()
	if len(prods) == 0 {
		return nil, padderr.New(padderr.SpecSemanticError, "grammar declares no productions")
	}
	// The start non-terminal is the first production's LHS; set it before
	// any `[X]`/`{X}` desugaring adds a synthesized production ahead of it.
	g.Start = prods[0].lhs

	for _, prod := range prods {
		ns.NonTerminals.Intern(prod.lhs)

		var defaultPat *pattern.Pattern
		if prod.defaultPat != nil {
			p, err := pattern.Compile(*prod.defaultPat)
			if err != nil {
				return nil, padderr.NewAt(padderr.SpecSemanticError, prod.offset, "production %q: %v", prod.lhs, err)
			}
			defaultPat = p
		}

		for _, alt := range prod.alts {
			body := make([]grammar.SymbolRef, 0, len(alt.rhs))
			for _, sym := range alt.rhs {
				ref := refForName(sym.name)
				switch sym.kind {
				case symOptional:
					name := g.DesugarOptional(ref)
					body = append(body, grammar.NonTerm(name))
				case symList:
					name := g.DesugarList(ref)
					body = append(body, grammar.NonTerm(name))
				default:
					if ref.Kind == grammar.RefNonTerminal {
						ns.NonTerminals.Intern(ref.Name)
					} else {
						ns.Terminals.Intern(ref.Name)
					}
					body = append(body, ref)
				}
			}

			pat := defaultPat
			if alt.patternSrc != nil {
				p, err := pattern.Compile(*alt.patternSrc)
				if err != nil {
					return nil, padderr.NewAt(padderr.SpecSemanticError, alt.offset, "production %q: %v", prod.lhs, err)
				}
				pat = p
			}
			if pat != nil {
				if max := pat.MaxIndex(); max >= 0 && max >= len(body) {
					return nil, padderr.NewAt(padderr.SpecSemanticError, alt.offset, "production %q: pattern captures child index %d, but this alternative has only %d symbols", prod.lhs, max, len(body))
				}
				for _, idx := range pat.ResolveIndices() {
					if idx < 0 {
						return nil, padderr.NewAt(padderr.SpecSemanticError, alt.offset, "production %q: pattern captures a negative child index", prod.lhs)
					}
				}
			}

			g.AddProduction(prod.lhs, body, pat)
		}
	}

	return g, nil
}

func refForName(name string) grammar.SymbolRef {
	if isTerminalName(name) {
		return grammar.Term(name)
	}
	return grammar.NonTerm(name)
}

// compileIgnoreInject validates and compiles the top-level ignore/inject
// statements: a token kind may not be declared ignore and inject both,
// nor declared inject twice (spec.md §4.1).
func compileIgnoreInject(ast *specAST, ns *symbols.Namespaces) (map[string]bool, map[string]parse.InjectRule, error) {
	ignore := make(map[string]bool, len(ast.ignore))
	for _, kind := range ast.ignore {
		ignore[kind] = true
		ns.Terminals.Intern(kind)
	}

	inject := make(map[string]parse.InjectRule, len(ast.inject))
	for _, inj := range ast.inject {
		if _, dup := inject[inj.tokenKind]; dup {
			return nil, nil, padderr.NewAt(padderr.SpecSemanticError, inj.offset, "token %q is declared in inject more than once", inj.tokenKind)
		}
		if ignore[inj.tokenKind] {
			return nil, nil, padderr.NewAt(padderr.SpecSemanticError, inj.offset, "token %q is declared in both ignore and inject", inj.tokenKind)
		}
		pat, err := pattern.Compile(inj.patternSrc)
		if err != nil {
			return nil, nil, padderr.NewAt(padderr.SpecSemanticError, inj.offset, "inject %q: %v", inj.tokenKind, err)
		}
		affinity := parse.Right
		if inj.left {
			affinity = parse.Left
		}
		inject[inj.tokenKind] = parse.InjectRule{Affinity: affinity, Pattern: pat}
		ns.Terminals.Intern(inj.tokenKind)
	}

	return ignore, inject, nil
}
