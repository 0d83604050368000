// Package shapes parses tensor shape specifications and documents them in docstrings.
//
// A specification names an argument, optionally followed by attribute and index
// accesses, and the shape that value must have:
//
//	x: [batch..., n, 3]
//	model.weights[0]: [n, m]
//	return: [*batch, .]
//
// Dimensions are integer constants, variable names, "." for an anonymous dimension, and
// "name...", "*name" or "..." for a run of zero or more dimensions.
//
// Both the specification language and the docstring layout are defined by EBNF grammars
// embedded in the package; see GrammarSource.
package shapes
