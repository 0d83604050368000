package shapes

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/checkshapes/ebnf/parse"
)

// ParseError describes where and why input did not match a grammar.
type ParseError struct {
	Input    string   // The text that failed to parse
	Offset   int      // Byte offset of the first unparseable token
	Line     int      // 1-based line of Offset
	Column   int      // 1-based column of Offset, in characters
	Found    string   // The offending token, empty at end of input
	Expected []string // Descriptions of the terminals acceptable at Offset
	Reason   string   // Set instead of Expected when the input matched but was rejected
	Err      error    // The underlying engine error, if any
}

func newParseError(input string, err *parse.UnexpectedInputError, terminals TerminalDescriptions) ParseError {
	pe := ParseError{
		Input:    input,
		Offset:   err.Position.Offset,
		Line:     err.Position.Line,
		Column:   err.Position.Column,
		Expected: terminals.Describe(err.Expected),
		Err:      err,
	}
	if err.Token != nil {
		pe.Found = err.Token.Literal
	}
	return pe
}

func newTokenError(input string, tok *parse.Node, reason string, err error) ParseError {
	return ParseError{
		Input:  input,
		Offset: tok.Span.Start.Offset,
		Line:   tok.Span.Start.Line,
		Column: tok.Span.Start.Column,
		Found:  tok.Text(),
		Reason: reason,
		Err:    err,
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) describe() string {
	found := "end of input"
	if e.Found != "" {
		found = fmt.Sprintf("%q", e.Found)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "unexpected %s at line %d, column %d", found, e.Line, e.Column)
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	} else if len(e.Expected) > 0 {
		sb.WriteString("; expected one of: ")
		sb.WriteString(strings.Join(e.Expected, ", "))
	}
	return sb.String()
}

// Excerpt returns the input line containing the failure with a caret under it.
func (e *ParseError) Excerpt() string {
	offset := min(max(e.Offset, 0), len(e.Input))
	start := strings.LastIndexAny(e.Input[:offset], "\r\n") + 1
	end := len(e.Input)
	if i := strings.IndexAny(e.Input[offset:], "\r\n"); i >= 0 {
		end = offset + i
	}
	caret := strings.Repeat(" ", utf8.RuneCountInString(e.Input[start:offset])) + "^"
	return e.Input[start:end] + "\n" + caret
}

// SpecificationParseError is returned when an argument specification is malformed.
type SpecificationParseError struct {
	ParseError
}

func (e *SpecificationParseError) Error() string {
	return fmt.Sprintf("cannot parse argument specification %q: %s", e.Input, e.describe())
}

// DocstringParseError is returned when a docstring does not follow the docstring grammar.
type DocstringParseError struct {
	ParseError
}

func (e *DocstringParseError) Error() string {
	return "cannot parse docstring: " + e.describe()
}

// inconsistent panics for tree shapes the grammar cannot produce.
func inconsistent(n *parse.Node, format string, args ...any) {
	panic(fmt.Sprintf("checkshapes: %s node at %s: %s", n.Kind, n.Span.Start, fmt.Sprintf(format, args...)))
}

// unhandled panics for node kinds without a handler.
func unhandled(n *parse.Node) {
	panic(fmt.Sprintf("checkshapes: no handler for %s node at %s", n.Kind, n.Span.Start))
}

// tokenOfKind returns the child token of the given kind, which the grammar guarantees.
func tokenOfKind(n *parse.Node, kind string) *parse.Node {
	tok := n.TokenOfKind(kind)
	if tok == nil {
		inconsistent(n, "missing %s token", kind)
	}
	return tok
}

// onlyTree returns the single non-terminal child of n.
func onlyTree(n *parse.Node) *parse.Node {
	trees := n.Trees()
	if len(trees) != 1 {
		inconsistent(n, "expected 1 subtree, got %d", len(trees))
	}
	return trees[0]
}
