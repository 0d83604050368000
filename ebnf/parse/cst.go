// Package parse provides parsing based on EBNF grammars, producing concrete syntax trees.
package parse

import "github.com/dhamidi/checkshapes/ebnflex"

// Span represents a range in source code.
type Span struct {
	Start ebnflex.Position
	End   ebnflex.Position
}

// Node represents a node in the concrete syntax tree.
// Leaf nodes have a non-nil Token; interior nodes have Children.
type Node struct {
	Kind     string         // Production name or token kind
	Children []*Node        // Child nodes (nil for terminals)
	Token    *ebnflex.Token // The token (non-nil for terminals)
	Span     Span           // Source span covering this node
}

// IsTerminal returns true if this is a leaf node (token).
func (n *Node) IsTerminal() bool {
	return n.Token != nil
}

// Text returns the source text of this node.
// For terminals, returns the token literal.
// For non-terminals, returns empty string (caller should use span to extract text).
func (n *Node) Text() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Source returns the slice of input covered by the node's span.
func (n *Node) Source(input string) string {
	return input[n.Span.Start.Offset:n.Span.End.Offset]
}

// Tokens returns the terminal children of n.
func (n *Node) Tokens() []*Node {
	var tokens []*Node
	for _, child := range n.Children {
		if child.IsTerminal() {
			tokens = append(tokens, child)
		}
	}
	return tokens
}

// Trees returns the non-terminal children of n.
func (n *Node) Trees() []*Node {
	var trees []*Node
	for _, child := range n.Children {
		if !child.IsTerminal() {
			trees = append(trees, child)
		}
	}
	return trees
}

// TokenOfKind returns the first terminal child of the given kind, or nil.
func (n *Node) TokenOfKind(kind string) *Node {
	for _, child := range n.Children {
		if child.IsTerminal() && child.Kind == kind {
			return child
		}
	}
	return nil
}

// NewTerminal creates a terminal node from a token.
func NewTerminal(tok ebnflex.Token) *Node {
	return &Node{
		Kind:  tok.Kind,
		Token: &tok,
		Span: Span{
			Start: tok.Position,
			End:   tok.End(),
		},
	}
}

// NewNonTerminal creates a non-terminal node.
func NewNonTerminal(kind string) *Node {
	return &Node{
		Kind:     kind,
		Children: make([]*Node, 0),
	}
}
