package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/checkshapes/shapes"
)

// LineEncoder writes one tab-separated line per specification: the canonical form, the
// root argument and the Sphinx rendering.
type LineEncoder struct {
	w     io.Writer
	specs []shapes.ArgumentSpec
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(specs []shapes.ArgumentSpec) error {
	e.specs = specs
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, spec := range e.specs {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n",
			spec.String(),
			spec.ArgumentRef.RootArgumentName(),
			shapes.SphinxLine(spec))
	}
	return []byte(sb.String()), nil
}
