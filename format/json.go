package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/checkshapes/shapes"
)

type JSONEncoder struct {
	w     io.Writer
	specs []shapes.ArgumentSpec
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(specs []shapes.ArgumentSpec) error {
	e.specs = specs
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := make([]jsonSpec, len(e.specs))
	for i, spec := range e.specs {
		data[i] = buildSpecData(spec)
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonSpec struct {
	Spec     string    `json:"spec"`
	Argument string    `json:"argument"`
	Root     string    `json:"root"`
	Path     []jsonHop `json:"path,omitempty"`
	Shape    []jsonDim `json:"shape"`
}

// jsonHop is one attribute or index access after the root argument.
type jsonHop struct {
	Attribute string `json:"attribute,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

type jsonDim struct {
	Kind  string `json:"kind"`
	Name  string `json:"name,omitempty"`
	Value *int   `json:"value,omitempty"`
}

func buildSpecData(spec shapes.ArgumentSpec) jsonSpec {
	data := jsonSpec{
		Spec:     spec.String(),
		Argument: spec.ArgumentRef.String(),
		Root:     spec.ArgumentRef.RootArgumentName(),
		Path:     buildPath(spec.ArgumentRef),
		Shape:    make([]jsonDim, len(spec.Shape.Dims)),
	}
	for i, dim := range spec.Shape.Dims {
		data.Shape[i] = jsonDim{Kind: dimensionKind(dim), Name: dim.VariableName, Value: dim.Constant}
	}
	return data
}

func buildPath(ref shapes.ArgumentRef) []jsonHop {
	switch r := ref.(type) {
	case shapes.AttributeArgumentRef:
		return append(buildPath(r.Source), jsonHop{Attribute: r.Name})
	case shapes.IndexArgumentRef:
		index := r.Index
		return append(buildPath(r.Source), jsonHop{Index: &index})
	}
	return nil
}

func dimensionKind(dim shapes.DimensionSpec) string {
	switch {
	case dim.Constant != nil:
		return "constant"
	case dim.IsAnonymous() && dim.VariableRank:
		return "anonymous-variable-rank"
	case dim.IsAnonymous():
		return "anonymous"
	case dim.VariableRank:
		return "variable-rank"
	default:
		return "variable"
	}
}
