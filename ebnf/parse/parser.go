package parse

import (
	"fmt"
	"io"

	"github.com/dhamidi/checkshapes/ebnflex"
	"golang.org/x/exp/ebnf"
)

// Parser wraps an EarleyParser together with the grammar it was created for.
type Parser struct {
	*EarleyParser
}

// NewParser creates a parser for tokens produced by the grammar's lexer.
func NewParser(g *Grammar, tokens []ebnflex.Token) *Parser {
	return &Parser{EarleyParser: NewEarleyParser(g, tokens)}
}

// ParseFile parses input read from r with a grammar loaded from grammarFile.
func ParseFile(grammarFile string, grammar io.Reader, start string, input []byte, filename string) (*Node, error) {
	g, err := ebnf.Parse(grammarFile, grammar)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	compiled, err := Compile(g, start)
	if err != nil {
		return nil, err
	}

	lexer := ebnflex.NewLexer(g, input, filename, compiled.LexerOptions()...)
	tokens, err := lexer.Tokenize()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	node, err := NewParser(compiled, tokens).Parse()
	if err != nil {
		if u, ok := err.(*UnexpectedInputError); ok {
			u.Input = string(input)
		}
		return nil, err
	}
	return node, nil
}
