// Package format encodes parsed argument specifications and syntax trees for output.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/checkshapes/shapes"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(specs []shapes.ArgumentSpec) error
}

// Names accepted by NewEncoder.
const (
	Text = "text"
	JSON = "json"
)

func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case Text:
		return NewLineEncoder(w), nil
	case JSON:
		return NewJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}
