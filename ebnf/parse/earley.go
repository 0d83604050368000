package parse

import (
	"fmt"
	"sort"

	"github.com/dhamidi/checkshapes/ebnflex"
)

// Item represents an Earley item: a rule with a dot position and origin.
type Item struct {
	Rule   int // Index of the compiled rule
	Dot    int // Number of right-hand side symbols already matched
	Origin int // Chart position where this item started
}

// ItemSet is a set of Earley items at a particular chart position.
type ItemSet struct {
	items   []Item
	itemSet map[Item]bool // for deduplication
}

func newItemSet() *ItemSet {
	return &ItemSet{
		items:   make([]Item, 0),
		itemSet: make(map[Item]bool),
	}
}

// Add inserts item unless it is already present and reports whether it was added.
func (s *ItemSet) Add(item Item) bool {
	if s.itemSet[item] {
		return false
	}
	s.itemSet[item] = true
	s.items = append(s.items, item)
	return true
}

// Has reports whether item is in the set.
func (s *ItemSet) Has(item Item) bool {
	return s.itemSet[item]
}

// Items returns the items in insertion order.
func (s *ItemSet) Items() []Item {
	return s.items
}

// extent identifies a non-terminal derivation over a token range.
type extent struct {
	name       string
	start, end int
}

// EarleyParser implements Earley parsing for compiled EBNF grammars.
// Nullable and left-recursive rules are supported. When the input is ambiguous the
// first matching rule, in grammar order, is used to build the tree.
type EarleyParser struct {
	grammar   *Grammar
	tokens    []ebnflex.Token
	skipKinds map[string]bool

	chart    []*ItemSet
	filtered []ebnflex.Token // tokens after filtering trivia and EOF
	eof      ebnflex.Position
	building map[extent]bool
}

// NewEarleyParser creates a new Earley parser.
func NewEarleyParser(g *Grammar, tokens []ebnflex.Token) *EarleyParser {
	return &EarleyParser{
		grammar:   g,
		tokens:    tokens,
		skipKinds: map[string]bool{ebnflex.KindWhiteSpace: true},
	}
}

// SetSkipKinds sets which token kinds to skip.
func (p *EarleyParser) SetSkipKinds(kinds ...string) {
	p.skipKinds = make(map[string]bool)
	for _, k := range kinds {
		p.skipKinds[k] = true
	}
}

// Chart returns the item sets computed by the last call to Parse.
func (p *EarleyParser) Chart() []*ItemSet {
	return p.chart
}

// Parse recognizes the token stream and builds the concrete syntax tree.
func (p *EarleyParser) Parse() (*Node, error) {
	start := p.grammar.start
	if len(p.grammar.byLHS[start]) == 0 {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}

	p.filter()

	n := len(p.filtered)
	p.chart = make([]*ItemSet, n+1)
	for i := range p.chart {
		p.chart[i] = newItemSet()
	}

	for _, r := range p.grammar.byLHS[start] {
		p.chart[0].Add(Item{Rule: r, Origin: 0})
	}

	for i := 0; i <= n; i++ {
		// items may be added during iteration
		for j := 0; j < len(p.chart[i].items); j++ {
			item := p.chart[i].items[j]
			rhs := p.grammar.rules[item.Rule].rhs

			if item.Dot == len(rhs) {
				p.complete(i, item)
				continue
			}

			next := rhs[item.Dot]
			if next.terminal {
				p.scan(i, item, next)
			} else {
				p.predict(i, item, next)
			}
		}
	}

	if !p.completed(start, 0, n) {
		return nil, p.unexpected()
	}

	p.building = make(map[extent]bool)
	return p.node(start, 0, n), nil
}

// filter drops trivia tokens and remembers where the input ends.
func (p *EarleyParser) filter() {
	p.filtered = make([]ebnflex.Token, 0, len(p.tokens))
	p.eof = ebnflex.Position{Line: 1, Column: 1}
	for _, tok := range p.tokens {
		p.eof = tok.End()
		if tok.Kind == ebnflex.KindEOF {
			p.eof = tok.Position
			continue
		}
		if !p.skipKinds[tok.Kind] {
			p.filtered = append(p.filtered, tok)
		}
	}
}

// predict adds items for the rules of a non-terminal.
func (p *EarleyParser) predict(pos int, item Item, next symbol) {
	for _, r := range p.grammar.byLHS[next.name] {
		p.chart[pos].Add(Item{Rule: r, Origin: pos})
	}
	// A nullable non-terminal may complete without consuming input.
	if p.grammar.nullable[next.name] {
		p.chart[pos].Add(Item{Rule: item.Rule, Dot: item.Dot + 1, Origin: item.Origin})
	}
}

// scan handles terminal matching.
func (p *EarleyParser) scan(pos int, item Item, next symbol) {
	if pos >= len(p.filtered) {
		return
	}
	if p.filtered[pos].Kind == next.name {
		p.chart[pos+1].Add(Item{Rule: item.Rule, Dot: item.Dot + 1, Origin: item.Origin})
	}
}

// complete advances the items at the origin that were waiting for the completed rule.
func (p *EarleyParser) complete(pos int, done Item) {
	lhs := p.grammar.rules[done.Rule].lhs
	waiting := p.chart[done.Origin]
	for k := 0; k < len(waiting.items); k++ {
		item := waiting.items[k]
		rhs := p.grammar.rules[item.Rule].rhs
		if item.Dot < len(rhs) && !rhs[item.Dot].terminal && rhs[item.Dot].name == lhs {
			p.chart[pos].Add(Item{Rule: item.Rule, Dot: item.Dot + 1, Origin: item.Origin})
		}
	}
}

// completed reports whether name derives filtered[start:end].
func (p *EarleyParser) completed(name string, start, end int) bool {
	for _, r := range p.grammar.byLHS[name] {
		if p.chart[end].Has(Item{Rule: r, Dot: len(p.grammar.rules[r].rhs), Origin: start}) {
			return true
		}
	}
	return false
}

// unexpected builds the error for the furthest position the parser reached.
func (p *EarleyParser) unexpected() error {
	k := len(p.chart) - 1
	for k > 0 && len(p.chart[k].items) == 0 {
		k--
	}

	seen := make(map[string]bool)
	var expected []string
	for _, item := range p.chart[k].items {
		rhs := p.grammar.rules[item.Rule].rhs
		if item.Dot < len(rhs) && rhs[item.Dot].terminal && !seen[rhs[item.Dot].name] {
			seen[rhs[item.Dot].name] = true
			expected = append(expected, rhs[item.Dot].name)
		}
	}
	sort.Strings(expected)

	err := &UnexpectedInputError{Expected: expected, Position: p.eof}
	if k < len(p.filtered) {
		tok := p.filtered[k]
		err.Token = &tok
		err.Position = tok.Position
	}
	return err
}

// node builds the CST node for name over filtered[start:end].
func (p *EarleyParser) node(name string, start, end int) *Node {
	node := NewNonTerminal(name)
	node.Children = append(node.Children, p.children(name, start, end)...)
	node.Span = p.span(start, end)
	return node
}

// span returns the source span of filtered[start:end]. An empty range sits at the end of
// the preceding token.
func (p *EarleyParser) span(start, end int) Span {
	if start < end {
		return Span{Start: p.filtered[start].Position, End: p.filtered[end-1].End()}
	}
	pos := ebnflex.Position{Line: 1, Column: 1}
	if start > 0 {
		pos = p.filtered[start-1].End()
	}
	return Span{Start: pos, End: pos}
}

// children returns the child nodes of the first rule of name that derives filtered[start:end].
// Children of helper rules are spliced in place.
func (p *EarleyParser) children(name string, start, end int) []*Node {
	key := extent{name: name, start: start, end: end}
	p.building[key] = true
	defer delete(p.building, key)

	for _, r := range p.grammar.byLHS[name] {
		dot := len(p.grammar.rules[r].rhs)
		if !p.chart[end].Has(Item{Rule: r, Dot: dot, Origin: start}) {
			continue
		}
		if kids, ok := p.derive(r, dot, start, end); ok {
			return kids
		}
	}
	return nil
}

// derive reconstructs the children for the first dot symbols of rule r spanning
// filtered[origin:end], working right to left.
func (p *EarleyParser) derive(r, dot, origin, end int) ([]*Node, bool) {
	if dot == 0 {
		return nil, origin == end
	}

	sym := p.grammar.rules[r].rhs[dot-1]
	prefix := Item{Rule: r, Dot: dot - 1, Origin: origin}

	if sym.terminal {
		k := end - 1
		if k < origin || p.filtered[k].Kind != sym.name || !p.chart[k].Has(prefix) {
			return nil, false
		}
		kids, ok := p.derive(r, dot-1, origin, k)
		if !ok {
			return nil, false
		}
		return append(kids, NewTerminal(p.filtered[k])), true
	}

	lo, hi := origin, end
	if dot == 1 {
		// Items with the dot at zero only exist at their origin.
		hi = origin
	}
	for k := lo; k <= hi; k++ {
		if !p.chart[k].Has(prefix) || !p.completed(sym.name, k, end) {
			continue
		}
		if p.building[extent{name: sym.name, start: k, end: end}] {
			continue
		}
		kids, ok := p.derive(r, dot-1, origin, k)
		if !ok {
			continue
		}
		if p.grammar.transparent[sym.name] {
			return append(kids, p.children(sym.name, k, end)...), true
		}
		return append(kids, p.node(sym.name, k, end)), true
	}
	return nil, false
}

// ParseTokens is a convenience function to parse tokens with a grammar using Earley parsing.
func ParseTokens(g *Grammar, tokens []ebnflex.Token) (*Node, error) {
	parser := NewEarleyParser(g, tokens)
	return parser.Parse()
}
