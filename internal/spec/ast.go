package spec

// The AST types below are the parser's direct output: an unresolved,
// uncoalesced mirror of the specification text, close enough to the
// source grammar (spec.md §6) that the semantic compiler in compile.go
// can do all of its real work -- state coalescence, acceptor-sugar
// expansion, optional/list desugaring, ignore/inject validation --
// against a few flat slices instead of re-deriving structure from tokens.

// matcherLit is one matcher literal as written in a CDFA transition:
// exactly one of its fields is meaningful, selected by kind.
type matcherLit struct {
	kind    matcherLitKind
	simple  rune
	chain   string
	lo, hi  rune
	offset  int
}

type matcherLitKind int

const (
	litSimple matcherLitKind = iota
	litChain
	litRange
	litDefault
)

// destLit is a transition or state-acceptor destination: either a plain
// state name, or `^TOKEN [-> dest]` acceptor sugar.
type destLit struct {
	isAcceptor bool
	stateName  string // isAcceptor == false
	tokenKind  string // isAcceptor == true
	dest       string // isAcceptor == true; "" means "no explicit dest"
	silent     bool   // isAcceptor == true && tokenKind == "_"
	offset     int
}

// transitionLit is one `matcher [| matcher]... (-> | ->>) dest` clause.
type transitionLit struct {
	matchers   []matcherLit
	consumeAll bool
	dest       destLit
}

// stateLit is one raw state definition: possibly naming several state
// names at once (`S1 | S2`), to be coalesced/unioned at compile time.
type stateLit struct {
	names       []string
	accept      *destLit // state acceptor, if `^...` appears right after the name list
	transitions []transitionLit
	offset      int
}

// symbolLit is one symbol reference inside a production's RHS.
type symbolLit struct {
	kind   symbolLitKind
	name   string // terminal/non-terminal name this wraps
	offset int
}

type symbolLitKind int

const (
	symPlain    symbolLitKind = iota // terminal or non-terminal, by naming convention
	symOptional                      // [X]
	symList                          // {X}
)

// altLit is one production alternative: an ordered RHS plus optional
// pattern source.
type altLit struct {
	rhs        []symbolLit
	patternSrc *string
	offset     int
}

// productionLit is one `LHS [\`default\`] (| rhs [\`pat\`])+ ;` group.
type productionLit struct {
	lhs        string
	defaultPat *string
	alts       []altLit
	offset     int
}

// injectLit is one top-level `inject (left|right) TOK \`pattern\`` stmt.
type injectLit struct {
	tokenKind  string
	left       bool
	patternSrc string
	offset     int
}

// specAST is the parser's full output: every region, in declaration
// order where that matters (first CDFA/grammar region fixes the start
// state/non-terminal).
type specAST struct {
	alphabet    *string
	alphabetOff int

	cdfaStates []stateLit

	productions []productionLit

	ignore    []string // token kind, in declaration order
	ignoreOff []int

	inject []injectLit
}
