package parse

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dhamidi/checkshapes/ebnflex"
	"golang.org/x/exp/ebnf"
)

// symbol is one element on the right-hand side of a compiled rule.
// Terminal symbols are named by token kind.
type symbol struct {
	name     string
	terminal bool
}

// rule is a single BNF alternative: lhs → rhs.
type rule struct {
	lhs string
	rhs []symbol
}

// Terminal describes a token kind the grammar can consume.
type Terminal struct {
	Name    string // token kind
	Literal string // the fixed string matched, empty for pattern terminals
}

// IsLiteral reports whether the terminal always matches one fixed string.
func (t Terminal) IsLiteral() bool {
	return t.Literal != ""
}

// Grammar is an EBNF grammar compiled for Earley parsing from a start production.
//
// Upper-case productions are syntactic and become CST nodes. Lower-case productions are
// lexical and are matched by the lexer. Groups, options and repetitions inside syntactic
// productions are compiled to helper rules whose children are spliced into the enclosing
// node.
type Grammar struct {
	source      ebnf.Grammar
	start       string
	rules       []rule
	byLHS       map[string][]int
	nullable    map[string]bool
	transparent map[string]bool
	tokens      []string
	literals    []string
	anchored    []string
	helpers     int
}

// GrammarOption configures grammar compilation.
type GrammarOption func(*Grammar)

// Anchored marks lexical productions that only match at the start of a line.
func Anchored(names ...string) GrammarOption {
	return func(g *Grammar) {
		g.anchored = append(g.anchored, names...)
	}
}

// Compile verifies g from start and compiles it for parsing.
func Compile(g ebnf.Grammar, start string, opts ...GrammarOption) (*Grammar, error) {
	if err := ebnf.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	if ebnflex.IsLexical(start) {
		return nil, fmt.Errorf("start production %q is lexical", start)
	}

	c := &Grammar{
		source:      g,
		start:       start,
		byLHS:       make(map[string][]int),
		nullable:    make(map[string]bool),
		transparent: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, name := range c.Productions() {
		alts, err := c.expand(name, g[name].Expr)
		if err != nil {
			return nil, err
		}
		for _, alt := range alts {
			c.addRule(name, alt)
		}
	}

	for _, name := range c.anchored {
		if !c.isToken(name) {
			return nil, fmt.Errorf("anchored production %q is not a token of the grammar", name)
		}
	}

	ebnflex.SortByDeclaration(g, c.tokens)
	c.computeNullable()
	return c, nil
}

// Load reads and compiles a grammar.
func Load(filename string, src io.Reader, start string, opts ...GrammarOption) (*Grammar, error) {
	g, err := ebnf.Parse(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return Compile(g, start, opts...)
}

// MustLoad is like Load but panics on error. It is meant for grammars embedded in the binary.
func MustLoad(filename, src, start string, opts ...GrammarOption) *Grammar {
	g, err := Load(filename, strings.NewReader(src), start, opts...)
	if err != nil {
		panic(fmt.Sprintf("parse: grammar %s: %v", filename, err))
	}
	return g
}

// Start returns the start production.
func (g *Grammar) Start() string {
	return g.start
}

// Productions returns the syntactic productions in declaration order.
func (g *Grammar) Productions() []string {
	var names []string
	for name := range g.source {
		if !ebnflex.IsLexical(name) {
			names = append(names, name)
		}
	}
	ebnflex.SortByDeclaration(g.source, names)
	return names
}

// Terminals returns every terminal the parser can consume, sorted by name.
func (g *Grammar) Terminals() []Terminal {
	var terminals []Terminal
	for _, lit := range g.literals {
		terminals = append(terminals, Terminal{Name: ebnflex.LiteralKind(lit), Literal: lit})
	}
	for _, name := range g.tokens {
		t := Terminal{Name: name}
		if tok, ok := g.source[name].Expr.(*ebnf.Token); ok {
			t.Literal = tok.String
		}
		terminals = append(terminals, t)
	}
	sort.Slice(terminals, func(i, j int) bool {
		return terminals[i].Name < terminals[j].Name
	})
	return terminals
}

// LexerOptions returns the options that tokenize input for this grammar.
func (g *Grammar) LexerOptions() []ebnflex.Option {
	return []ebnflex.Option{
		ebnflex.WithTokens(g.tokens...),
		ebnflex.WithLiterals(g.literals...),
		ebnflex.WithAnchored(g.anchored...),
	}
}

// Parse tokenizes and parses input.
func (g *Grammar) Parse(input string) (*Node, error) {
	lexer := ebnflex.NewLexer(g.source, []byte(input), "", g.LexerOptions()...)
	tokens, err := lexer.Tokenize()
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	node, err := ParseTokens(g, tokens)
	if err != nil {
		if u, ok := err.(*UnexpectedInputError); ok {
			u.Input = input
		}
		return nil, err
	}
	return node, nil
}

func (g *Grammar) addRule(lhs string, rhs []symbol) {
	g.byLHS[lhs] = append(g.byLHS[lhs], len(g.rules))
	g.rules = append(g.rules, rule{lhs: lhs, rhs: rhs})
}

func (g *Grammar) isToken(name string) bool {
	for _, tok := range g.tokens {
		if tok == name {
			return true
		}
	}
	return false
}

func (g *Grammar) addToken(name string) {
	if !g.isToken(name) {
		g.tokens = append(g.tokens, name)
	}
}

func (g *Grammar) addLiteral(lit string) {
	for _, l := range g.literals {
		if l == lit {
			return
		}
	}
	g.literals = append(g.literals, lit)
}

// expand returns the alternatives of expr as symbol sequences.
func (g *Grammar) expand(ctx string, expr ebnf.Expression) ([][]symbol, error) {
	switch e := expr.(type) {
	case nil:
		return [][]symbol{{}}, nil

	case ebnf.Alternative:
		var alts [][]symbol
		for _, alt := range e {
			sub, err := g.expand(ctx, alt)
			if err != nil {
				return nil, err
			}
			alts = append(alts, sub...)
		}
		return alts, nil

	case ebnf.Sequence:
		seq := make([]symbol, 0, len(e))
		for _, item := range e {
			sym, err := g.symbol(ctx, item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, sym)
		}
		return [][]symbol{seq}, nil

	default:
		sym, err := g.symbol(ctx, e)
		if err != nil {
			return nil, err
		}
		return [][]symbol{{sym}}, nil
	}
}

type helperKind int

const (
	helperGroup helperKind = iota
	helperOption
	helperRepetition
)

// symbol compiles a single expression to a symbol, introducing helper rules as needed.
func (g *Grammar) symbol(ctx string, expr ebnf.Expression) (symbol, error) {
	switch e := expr.(type) {
	case *ebnf.Name:
		if ebnflex.IsLexical(e.String) {
			g.addToken(e.String)
			return symbol{name: e.String, terminal: true}, nil
		}
		return symbol{name: e.String}, nil

	case *ebnf.Token:
		g.addLiteral(e.String)
		return symbol{name: ebnflex.LiteralKind(e.String), terminal: true}, nil

	case *ebnf.Group:
		return g.helper(ctx, e.Body, helperGroup)

	case *ebnf.Option:
		return g.helper(ctx, e.Body, helperOption)

	case *ebnf.Repetition:
		return g.helper(ctx, e.Body, helperRepetition)

	case ebnf.Sequence, ebnf.Alternative:
		return g.helper(ctx, e, helperGroup)
	}
	return symbol{}, fmt.Errorf("%s: %T is not allowed in a syntactic production", ctx, expr)
}

func (g *Grammar) helper(ctx string, body ebnf.Expression, kind helperKind) (symbol, error) {
	g.helpers++
	name := fmt.Sprintf("%s#%d", ctx, g.helpers)
	g.transparent[name] = true

	alts, err := g.expand(ctx, body)
	if err != nil {
		return symbol{}, err
	}

	self := symbol{name: name}
	switch kind {
	case helperGroup:
		for _, alt := range alts {
			g.addRule(name, alt)
		}
	case helperOption:
		g.addRule(name, nil)
		for _, alt := range alts {
			g.addRule(name, alt)
		}
	case helperRepetition:
		g.addRule(name, nil)
		for _, alt := range alts {
			g.addRule(name, append([]symbol{self}, alt...))
		}
	}
	return self, nil
}

// computeNullable finds every non-terminal that derives the empty string.
func (g *Grammar) computeNullable() {
	for changed := true; changed; {
		changed = false
		for _, r := range g.rules {
			if g.nullable[r.lhs] {
				continue
			}
			empty := true
			for _, sym := range r.rhs {
				if sym.terminal || !g.nullable[sym.name] {
					empty = false
					break
				}
			}
			if empty {
				g.nullable[r.lhs] = true
				changed = true
			}
		}
	}
}
