package parse

import (
	"fmt"
	"strings"

	"github.com/dhamidi/checkshapes/ebnflex"
)

// UnexpectedInputError reports the first token the grammar could not accept.
type UnexpectedInputError struct {
	Input    string           // The parsed input, when known
	Position ebnflex.Position // Where parsing failed
	Token    *ebnflex.Token   // The offending token, nil at end of input
	Expected []string         // Terminal names acceptable at Position, sorted
}

func (e *UnexpectedInputError) Error() string {
	found := "end of input"
	if e.Token != nil {
		found = ebnflex.Describe(*e.Token)
	}
	msg := fmt.Sprintf("parse error at %s: unexpected %s", e.Position, found)
	if len(e.Expected) > 0 {
		msg += ", expected one of: " + strings.Join(e.Expected, ", ")
	}
	return msg
}

// AtEOF reports whether parsing failed because the input ended too early.
func (e *UnexpectedInputError) AtEOF() bool {
	return e.Token == nil
}
