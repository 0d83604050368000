// Package ebnflex provides lexical scanning based on EBNF grammars.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Token kinds produced by the lexer itself rather than by a grammar production.
const (
	KindEOF        = "EOF"
	KindError      = "ERROR"
	KindWhiteSpace = "WhiteSpace"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position reached after reading text starting at p.
func (p Position) Advance(text string) Position {
	for _, r := range text {
		p.Offset += utf8.RuneLen(r)
		if r == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	return p
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// End returns the position just past the token.
func (t Token) End() Position {
	return t.Position.Advance(t.Literal)
}

// LiteralKind returns the token kind used for a literal terminal.
func LiteralKind(literal string) string {
	return strconv.Quote(literal)
}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithTokens sets the lexical productions emitted as tokens, in priority order.
// Without it every lexical production of the grammar is a token.
func WithTokens(names ...string) Option {
	return func(l *Lexer) {
		l.tokens = append([]string(nil), names...)
	}
}

// WithLiterals adds fixed strings that are emitted as tokens of kind LiteralKind(s).
func WithLiterals(literals ...string) Option {
	return func(l *Lexer) {
		l.literals = append(l.literals, literals...)
	}
}

// WithAnchored restricts the named productions to match only at the start of a line.
func WithAnchored(names ...string) Option {
	return func(l *Lexer) {
		for _, name := range names {
			l.anchored[name] = true
		}
	}
}

// Lexer tokenizes input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	input    []byte
	filename string
	pos      int
	line     int
	column   int
	tokens   []string
	literals []string
	anchored map[string]bool
	memo     map[memoKey]int  // memoization cache: key -> match length (-1 = no match)
	visiting map[memoKey]bool // cycle detection
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string, opts ...Option) *Lexer {
	l := &Lexer{
		grammar:  grammar,
		input:    input,
		filename: filename,
		pos:      0,
		line:     1,
		column:   1,
		anchored: make(map[string]bool),
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.tokens == nil {
		l.tokens = LexicalProductions(grammar)
	}
	return l
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// IsLexical reports whether name denotes a lexical production.
// Following the ebnf package, lexical productions start with a lower-case letter.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// LexicalProductions returns the lexical productions of grammar in declaration order.
func LexicalProductions(grammar ebnf.Grammar) []string {
	var names []string
	for name, prod := range grammar {
		if prod.Expr != nil && IsLexical(name) {
			names = append(names, name)
		}
	}
	SortByDeclaration(grammar, names)
	return names
}

// SortByDeclaration sorts production names by their position in the grammar source.
func SortByDeclaration(grammar ebnf.Grammar, names []string) {
	sort.Slice(names, func(i, j int) bool {
		pi, pj := grammar[names[i]].Pos(), grammar[names[j]].Pos()
		if pi.Offset != pj.Offset {
			return pi.Offset < pj.Offset
		}
		return names[i] < names[j]
	})
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	ch, size := utf8.DecodeRune(l.input[l.pos:])
	l.pos += size
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

// advanceBytes advances past n bytes of input.
func (l *Lexer) advanceBytes(n int) {
	end := l.pos + n
	for l.pos < end {
		l.advance()
	}
}

// NextToken returns the next token from the input.
// Whitespace runs are returned as a single WhiteSpace token. Otherwise every literal and
// token production is tried and the longest match wins; on ties literals win over
// productions, and earlier productions win over later ones.
func (l *Lexer) NextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Kind: KindEOF, Position: l.Position()}, io.EOF
	}

	startPos := l.Position()
	startOffset := l.pos

	if n := l.matchSpace(startOffset); n > 0 {
		l.advanceBytes(n)
		return Token{
			Kind:     KindWhiteSpace,
			Literal:  string(l.input[startOffset : startOffset+n]),
			Position: startPos,
		}, nil
	}

	// Clear memoization cache for each new token (positions change)
	l.memo = make(map[memoKey]int)

	var bestKind string
	var bestLen int

	for _, literal := range l.literals {
		if n := l.tryMatchToken(literal, startOffset); n > bestLen {
			bestLen = n
			bestKind = LiteralKind(literal)
		}
	}

	for _, name := range l.tokens {
		if l.anchored[name] && !l.atLineStart(startOffset) {
			continue
		}
		l.visiting = make(map[memoKey]bool)
		if n := l.tryMatchName(name, startOffset); n > bestLen {
			bestLen = n
			bestKind = name
		}
	}

	if bestLen == 0 {
		// No match - emit single character as error token
		l.advance()
		return Token{
			Kind:     KindError,
			Literal:  string(l.input[startOffset:l.pos]),
			Position: startPos,
		}, nil
	}

	l.advanceBytes(bestLen)

	return Token{
		Kind:     bestKind,
		Literal:  string(l.input[startOffset : startOffset+bestLen]),
		Position: startPos,
	}, nil
}

// matchSpace returns the length of the whitespace run at offset.
func (l *Lexer) matchSpace(offset int) int {
	n := 0
	for offset+n < len(l.input) {
		ch, size := utf8.DecodeRune(l.input[offset+n:])
		if !unicode.IsSpace(ch) {
			break
		}
		n += size
	}
	return n
}

// atLineStart reports whether only blanks separate offset from the start of its line.
func (l *Lexer) atLineStart(offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch l.input[i] {
		case '\n', '\r':
			return true
		case ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or 0 if no match.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case *ebnf.Token:
		return l.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		pos := offset
		for _, item := range e {
			n := l.tryMatch(item, pos)
			if n == 0 && !l.nullable(item) {
				return 0
			}
			total += n
			pos += n
		}
		return total

	case ebnf.Alternative:
		best := 0
		for _, alt := range e {
			n := l.tryMatch(alt, offset)
			if n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		pos := offset
		for {
			n := l.tryMatch(e.Body, pos)
			if n == 0 {
				break
			}
			total += n
			pos += n
		}
		return total

	case *ebnf.Option:
		// Option always succeeds (returns 0 if body doesn't match)
		return l.tryMatch(e.Body, offset)

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)

	default:
		return 0
	}
}

// nullable reports whether expr can succeed without consuming input.
func (l *Lexer) nullable(expr ebnf.Expression) bool {
	switch e := expr.(type) {
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case *ebnf.Group:
		return l.nullable(e.Body)
	case ebnf.Sequence:
		for _, item := range e {
			if !l.nullable(item) {
				return false
			}
		}
		return true
	case ebnf.Alternative:
		for _, alt := range e {
			if l.nullable(alt) {
				return true
			}
		}
	}
	return false
}

// tryMatchName matches a named production with memoization and cycle detection.
func (l *Lexer) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		if result == -1 {
			return 0
		}
		return result
	}

	// A production already being matched at this offset is left recursion; fail it.
	if l.visiting[key] {
		return 0
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return 0
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr, offset)
	delete(l.visiting, key)

	if result == 0 {
		l.memo[key] = -1
	} else {
		l.memo[key] = result
	}

	return result
}

// tryMatchToken matches a literal string token.
func (l *Lexer) tryMatchToken(token string, offset int) int {
	if token == "" || offset+len(token) > len(l.input) {
		return 0
	}
	if string(l.input[offset:offset+len(token)]) == token {
		return len(token)
	}
	return 0
}

// tryMatchRange matches a single character in a range (e.g., "a" … "z").
func (l *Lexer) tryMatchRange(begin, end string, offset int) int {
	if offset >= len(l.input) {
		return 0
	}
	if utf8.RuneCountInString(begin) != 1 || utf8.RuneCountInString(end) != 1 {
		return 0
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	ch, size := utf8.DecodeRune(l.input[offset:])
	if ch == utf8.RuneError && size <= 1 {
		return 0
	}
	if ch >= lo && ch <= hi {
		return size
	}
	return 0
}

// Tokenize reads all tokens from input. The last token is always EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Describe renders a token for error messages.
func Describe(tok Token) string {
	switch tok.Kind {
	case KindEOF:
		return "end of input"
	case KindWhiteSpace:
		return "whitespace"
	}
	return strconv.Quote(tok.Literal)
}
