package shapes

import (
	"fmt"
	"sync"
)

// DocstringFormat selects how docstrings are rewritten.
type DocstringFormat string

const (
	// DocstringFormatNone leaves docstrings untouched.
	DocstringFormatNone DocstringFormat = "none"
	// DocstringFormatSphinx inserts shape bullets into Sphinx info fields.
	DocstringFormatSphinx DocstringFormat = "sphinx"
)

// DocstringFormats lists the supported formats.
var DocstringFormats = []DocstringFormat{DocstringFormatNone, DocstringFormatSphinx}

var (
	configMu          sync.RWMutex
	rewriteDocstrings = DocstringFormatSphinx
)

// RewriteDocstrings returns the process-wide docstring format.
func RewriteDocstrings() DocstringFormat {
	configMu.RLock()
	defer configMu.RUnlock()
	return rewriteDocstrings
}

// SetRewriteDocstrings sets the process-wide docstring format and returns the previous one.
func SetRewriteDocstrings(format DocstringFormat) DocstringFormat {
	configMu.Lock()
	defer configMu.Unlock()
	previous := rewriteDocstrings
	rewriteDocstrings = format
	return previous
}

// ParseDocstringFormat converts user input to a DocstringFormat.
// The empty string means DocstringFormatNone.
func ParseDocstringFormat(s string) (DocstringFormat, error) {
	if s == "" {
		return DocstringFormatNone, nil
	}
	for _, f := range DocstringFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown docstring format %q (expected one of %v)", s, DocstringFormats)
}
