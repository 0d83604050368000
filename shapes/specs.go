package shapes

import (
	"strconv"
	"strings"
)

// DimensionSpec constrains one axis of a shape, or zero or more axes when VariableRank
// is set. At most one of Constant and VariableName is set; neither means the dimension
// is anonymous. VariableRank is never combined with a constant.
type DimensionSpec struct {
	Constant     *int
	VariableName string
	VariableRank bool
}

// ConstantDimension matches an axis of exactly size n.
func ConstantDimension(n int) DimensionSpec {
	return DimensionSpec{Constant: &n}
}

// VariableDimension binds the size of one axis to name.
func VariableDimension(name string) DimensionSpec {
	return DimensionSpec{VariableName: name}
}

// AnonymousDimension matches any single axis.
func AnonymousDimension() DimensionSpec {
	return DimensionSpec{}
}

// VariableRankDimension binds zero or more axes to name.
func VariableRankDimension(name string) DimensionSpec {
	return DimensionSpec{VariableName: name, VariableRank: true}
}

// AnonymousVariableRankDimension matches zero or more axes.
func AnonymousVariableRankDimension() DimensionSpec {
	return DimensionSpec{VariableRank: true}
}

// IsAnonymous reports whether the dimension has neither a constant nor a name.
func (d DimensionSpec) IsAnonymous() bool {
	return d.Constant == nil && d.VariableName == ""
}

func (d DimensionSpec) String() string {
	switch {
	case d.Constant != nil:
		return strconv.Itoa(*d.Constant)
	case d.IsAnonymous() && d.VariableRank:
		return "..."
	case d.IsAnonymous():
		return "."
	case d.VariableRank:
		return d.VariableName + "..."
	default:
		return d.VariableName
	}
}

// ShapeSpec is the ordered list of dimension constraints, from the first axis onward.
// At most one dimension has VariableRank set.
type ShapeSpec struct {
	Dims []DimensionSpec
}

func (s ShapeSpec) String() string {
	dims := make([]string, len(s.Dims))
	for i, dim := range s.Dims {
		dims[i] = dim.String()
	}
	return "[" + strings.Join(dims, ", ") + "]"
}

// ArgumentSpec is a parsed shape specification: which value, and what shape it must have.
type ArgumentSpec struct {
	ArgumentRef ArgumentRef
	Shape       ShapeSpec
}

// String returns the canonical specification, e.g. "x.y[0]: [batch..., 3]".
func (s ArgumentSpec) String() string {
	if s.ArgumentRef == nil {
		return "<nil>"
	}
	return s.ArgumentRef.String() + ": " + s.Shape.String()
}

// clone returns a copy of s that shares no memory with it.
func (s ArgumentSpec) clone() ArgumentSpec {
	dims := make([]DimensionSpec, len(s.Shape.Dims))
	for i, dim := range s.Shape.Dims {
		if dim.Constant != nil {
			n := *dim.Constant
			dim.Constant = &n
		}
		dims[i] = dim
	}
	s.Shape = ShapeSpec{Dims: dims}
	return s
}
