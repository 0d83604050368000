package lsp

import (
	"errors"
	"strings"
	"unicode/utf16"

	"github.com/dhamidi/checkshapes/shapes"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticSource = "checkshapes"

// specLine is one argument specification in a .shapes document.
type specLine struct {
	line int // 0-based
	text string
}

// specLines returns the lines of text that hold a specification, skipping blank lines and
// lines whose first non-blank character is '#'.
func specLines(text string) []specLine {
	var result []specLine
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		result = append(result, specLine{line: i, text: line})
	}
	return result
}

// Diagnose parses every specification in a .shapes document and reports one diagnostic
// per line that fails to parse.
func Diagnose(p *shapes.Parser, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for _, sl := range specLines(text) {
		_, err := p.ParseArgumentSpec(sl.text)
		if err == nil {
			continue
		}
		diagnostics = append(diagnostics, diagnostic(sl, err))
	}
	return diagnostics
}

func diagnostic(sl specLine, err error) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := diagnosticSource
	d := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(sl.line)},
			End:   protocol.Position{Line: protocol.UInteger(sl.line), Character: character(sl.text, len(sl.text))},
		},
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	}

	var spe *shapes.SpecificationParseError
	if !errors.As(err, &spe) {
		return d
	}
	start := character(sl.text, spe.Offset)
	d.Range.Start.Character = start
	d.Range.End.Character = start + character(spe.Found, len(spe.Found))
	switch {
	case spe.Reason != "":
		d.Message = spe.Reason
	case len(spe.Expected) > 0:
		d.Message = "expected one of: " + strings.Join(spe.Expected, ", ")
	}
	return d
}

// character converts a byte offset into text to an LSP character offset (UTF-16 code units).
func character(text string, offset int) protocol.UInteger {
	offset = min(max(offset, 0), len(text))
	return protocol.UInteger(len(utf16.Encode([]rune(text[:offset]))))
}

// HoverText returns the Sphinx rendering of the specification on line, if it parses.
func HoverText(p *shapes.Parser, text string, line int) (string, bool) {
	for _, sl := range specLines(text) {
		if sl.line != line {
			continue
		}
		spec, err := p.ParseArgumentSpec(sl.text)
		if err != nil {
			return "", false
		}
		return shapes.SphinxLine(spec), true
	}
	return "", false
}
