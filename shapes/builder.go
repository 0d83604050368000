package shapes

import (
	"strconv"

	"github.com/dhamidi/checkshapes/ebnf/parse"
)

// specBuilder turns an ArgumentSpec tree into an ArgumentSpec.
//
// Node kinds are dispatched with a closed switch per handler; a kind the grammar can
// produce but no handler knows panics. The only user-facing failure is an integer that
// does not fit an int, which is recorded in err.
type specBuilder struct {
	input string
	err   error
}

func buildArgumentSpec(tree *parse.Node, input string) (ArgumentSpec, error) {
	b := &specBuilder{input: input}
	spec := b.argumentSpec(tree)
	if b.err != nil {
		return ArgumentSpec{}, b.err
	}
	return spec, nil
}

func (b *specBuilder) argumentSpec(n *parse.Node) ArgumentSpec {
	if n.Kind != kindArgumentSpec {
		unhandled(n)
	}
	trees := n.Trees()
	if len(trees) != 3 {
		inconsistent(n, "expected 3 subtrees, got %d", len(trees))
	}
	root := b.argumentName(trees[0])
	ref := b.argumentRefs(trees[1], root)
	shape := b.shapeSpec(trees[2])
	return ArgumentSpec{ArgumentRef: ref, Shape: shape}
}

func (b *specBuilder) argumentName(n *parse.Node) ArgumentRef {
	if n.Kind != kindArgumentName {
		unhandled(n)
	}
	return RootArgumentRef{Name: tokenOfKind(n, "cname").Text()}
}

func (b *specBuilder) argumentRefs(n *parse.Node, result ArgumentRef) ArgumentRef {
	if n.Kind != kindArgumentRefs {
		unhandled(n)
	}
	for _, child := range n.Trees() {
		result = b.argumentRef(child, result)
	}
	return result
}

func (b *specBuilder) argumentRef(n *parse.Node, source ArgumentRef) ArgumentRef {
	switch n.Kind {
	case kindArgumentRef:
		return b.argumentRef(onlyTree(n), source)

	case kindArgumentRefAttribute:
		return AttributeArgumentRef{Source: source, Name: tokenOfKind(n, "cname").Text()}

	case kindArgumentRefIndex:
		tok := n.TokenOfKind("int")
		if tok == nil {
			tok = tokenOfKind(n, "negativeInt")
		}
		return IndexArgumentRef{Source: source, Index: b.atoi(tok, tok.Text())}
	}
	unhandled(n)
	return nil
}

func (b *specBuilder) shapeSpec(n *parse.Node) ShapeSpec {
	if n.Kind != kindShapeSpec {
		unhandled(n)
	}
	return ShapeSpec{Dims: b.dimensionSpecs(onlyTree(n))}
}

func (b *specBuilder) dimensionSpecs(n *parse.Node) []DimensionSpec {
	if n.Kind != kindDimensionSpecs {
		unhandled(n)
	}
	trees := n.Trees()
	dims := make([]DimensionSpec, 0, len(trees))
	for _, child := range trees {
		dims = append(dims, b.dimensionSpec(child))
	}
	return dims
}

func (b *specBuilder) dimensionSpec(n *parse.Node) DimensionSpec {
	switch n.Kind {
	case kindDimensionSpec, kindVariableRankDimensionSpec:
		return b.dimensionSpec(onlyTree(n))

	case kindDimensionSpecConstant:
		tok := tokenOfKind(n, "int")
		return ConstantDimension(b.atoi(tok, tok.Text()))

	case kindDimensionSpecVariable:
		return VariableDimension(tokenOfKind(n, "cname").Text())

	case kindDimensionSpecAnonymous:
		return AnonymousDimension()

	case kindDimensionSpecVariableRank:
		tokens := n.Tokens()
		if len(tokens) != 2 {
			inconsistent(n, "expected 2 tokens, got %d", len(tokens))
		}
		// Either "*" name or name "...".
		name := tokens[1].Text()
		if tokens[0].Text() != "*" {
			if tokens[1].Text() != "..." {
				inconsistent(n, "neither %q nor %q is a variable-rank marker", tokens[0].Text(), tokens[1].Text())
			}
			name = tokens[0].Text()
		}
		return VariableRankDimension(name)

	case kindDimensionSpecAnonymousVariableRank:
		return AnonymousVariableRankDimension()
	}
	unhandled(n)
	return DimensionSpec{}
}

// atoi converts an integer token, recording an error when it does not fit an int.
func (b *specBuilder) atoi(tok *parse.Node, text string) int {
	i, err := strconv.Atoi(text)
	if err != nil {
		if b.err == nil {
			b.err = &SpecificationParseError{newTokenError(b.input, tok, "integer out of range", err)}
		}
		return 0
	}
	return i
}
