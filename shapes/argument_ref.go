package shapes

import "strconv"

// ResultToken is the argument name that refers to a function's return value.
const ResultToken = "return"

// ArgumentRef identifies the value a shape constraint applies to: a root argument,
// possibly followed by attribute and index hops.
type ArgumentRef interface {
	// RootArgumentName returns the name of the root argument of the chain.
	RootArgumentName() string
	// String returns the display form, e.g. "x.y[0]".
	String() string

	isArgumentRef()
}

// RootArgumentRef refers to a top-level argument, or to the result when Name is ResultToken.
type RootArgumentRef struct {
	Name string
}

func (r RootArgumentRef) RootArgumentName() string { return r.Name }
func (r RootArgumentRef) String() string           { return r.Name }
func (RootArgumentRef) isArgumentRef()             {}

// AttributeArgumentRef refers to attribute Name of Source.
type AttributeArgumentRef struct {
	Source ArgumentRef
	Name   string
}

func (r AttributeArgumentRef) RootArgumentName() string { return r.Source.RootArgumentName() }
func (r AttributeArgumentRef) String() string           { return r.Source.String() + "." + r.Name }
func (AttributeArgumentRef) isArgumentRef()             {}

// IndexArgumentRef refers to element Index of Source. Negative indices count from the end.
type IndexArgumentRef struct {
	Source ArgumentRef
	Index  int
}

func (r IndexArgumentRef) RootArgumentName() string { return r.Source.RootArgumentName() }
func (r IndexArgumentRef) String() string {
	return r.Source.String() + "[" + strconv.Itoa(r.Index) + "]"
}
func (IndexArgumentRef) isArgumentRef() {}
