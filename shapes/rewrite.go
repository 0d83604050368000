package shapes

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/checkshapes/ebnf/parse"
)

// SphinxLine renders spec as a Sphinx bullet, e.g. "* **x** has shape [*batch*..., 3].".
func SphinxLine(spec ArgumentSpec) string {
	var sb strings.Builder
	sb.WriteString("* **")
	sb.WriteString(spec.ArgumentRef.String())
	sb.WriteString("** has shape [")
	sb.WriteString(SphinxShape(spec.Shape))
	sb.WriteString("].")
	return sb.String()
}

// SphinxShape renders the dimensions of shape, separated by commas.
func SphinxShape(shape ShapeSpec) string {
	dims := make([]string, len(shape.Dims))
	for i, dim := range shape.Dims {
		switch {
		case dim.Constant != nil:
			dims[i] = strconv.Itoa(*dim.Constant)
		case dim.IsAnonymous() && dim.VariableRank:
			dims[i] = "..."
		case dim.IsAnonymous():
			dims[i] = "."
		case dim.VariableRank:
			dims[i] = "*" + dim.VariableName + "*..."
		default:
			dims[i] = "*" + dim.VariableName + "*"
		}
	}
	return strings.Join(dims, ", ")
}

// sphinxSpecLines groups the rendered specs by root argument name, sorted within a group.
func sphinxSpecLines(specs []ArgumentSpec) map[string][]string {
	result := make(map[string][]string)
	for _, spec := range specs {
		name := spec.ArgumentRef.RootArgumentName()
		result[name] = append(result[name], SphinxLine(spec))
	}
	for _, lines := range result {
		sort.Strings(lines)
	}
	return result
}

// sphinxRewriter inserts shape bullets into the info fields of a Sphinx docstring.
//
// Output is assembled left to right: everything in source before the cursor has been
// written, everything after it is still pending. Inserting lines for a field writes the
// source up to the field's documentation, the new lines, and the documentation itself, then
// moves the cursor past it. The rest of the source is copied verbatim.
type sphinxRewriter struct {
	source    string
	specLines map[string][]string
	indent    int
	hasIndent bool
}

func newSphinxRewriter(source string, specs []ArgumentSpec) *sphinxRewriter {
	indent, ok := guessIndent(source)
	return &sphinxRewriter{
		source:    source,
		specLines: sphinxSpecLines(specs),
		indent:    indent,
		hasIndent: ok,
	}
}

func (r *sphinxRewriter) rewrite(tree *parse.Node) string {
	if tree.Kind != kindDocstring {
		unhandled(tree)
	}
	trees := tree.Trees()
	if len(trees) != 2 || trees[0].Kind != kindDocs {
		inconsistent(tree, "expected docs followed by info fields")
	}

	var out strings.Builder
	pos := r.infoFields(trees[1], &out, 0)
	out.WriteString(r.source[pos:])
	return out.String()
}

func (r *sphinxRewriter) infoFields(n *parse.Node, out *strings.Builder, pos int) int {
	if n.Kind != kindInfoFields {
		unhandled(n)
	}
	for _, child := range n.Trees() {
		pos = r.infoField(child, out, pos)
	}
	return pos
}

func (r *sphinxRewriter) infoField(n *parse.Node, out *strings.Builder, pos int) int {
	switch n.Kind {
	case kindInfoField:
		return r.infoField(onlyTree(n), out, pos)

	case kindInfoFieldParam:
		trees := n.Trees()
		if len(trees) != 2 {
			inconsistent(n, "expected arguments and docs, got %d subtrees", len(trees))
		}
		if lines := r.specLines[r.infoFieldArgs(trees[0])]; len(lines) > 0 {
			pos = r.insertSpecLines(out, pos, lines, trees[1])
		}
		return pos

	case kindInfoFieldReturns:
		if lines := r.specLines[ResultToken]; len(lines) > 0 {
			pos = r.insertSpecLines(out, pos, lines, onlyTree(n))
		}
		return pos

	case kindInfoFieldOther:
		return pos
	}
	unhandled(n)
	return pos
}

// infoFieldArgs returns the argument name of a field: its last word, if any.
func (r *sphinxRewriter) infoFieldArgs(n *parse.Node) string {
	if n.Kind != kindInfoFieldArgs {
		unhandled(n)
	}
	tokens := n.Tokens()
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1].Text()
}

// insertSpecLines writes the source from pos up to docs, the spec lines, and docs itself.
// It returns the new cursor.
func (r *sphinxRewriter) insertSpecLines(out *strings.Builder, pos int, specLines []string, docs *parse.Node) int {
	if docs.Kind != kindDocs {
		unhandled(docs)
	}
	start, end := docs.Span.Start.Offset, docs.Span.End.Offset

	leading := strings.TrimRightFunc(r.source[pos:start], unicode.IsSpace)
	docsStart := pos + len(leading)
	docsText := r.source[docsStart:end]
	trailing := strings.TrimLeftFunc(docsText, unicode.IsSpace)

	indent, ok := guessIndent(docsText)
	if !ok {
		indent = 4
		if r.hasIndent {
			indent += r.indent
		}
	}
	indentStr := "\n" + strings.Repeat(" ", indent)

	out.WriteString(leading)
	for _, line := range specLines {
		out.WriteString(indentStr)
		out.WriteString(line)
	}
	if trailing != "" {
		out.WriteString("\n")
		out.WriteString(indentStr)
		out.WriteString(trailing)
	}
	return end
}

// guessIndent infers the indentation of a docstring: the smallest indentation of any
// non-blank line but the first, after expanding tabs. It reports false if there is no
// such line.
func guessIndent(docstring string) (int, bool) {
	lines := splitLines(expandTabs(docstring, 8))
	indent, found := 0, false
	for i, line := range lines {
		if i == 0 {
			continue
		}
		stripped := strings.TrimLeftFunc(line, unicode.IsSpace)
		if stripped == "" {
			continue
		}
		lineIndent := utf8.RuneCountInString(line) - utf8.RuneCountInString(stripped)
		if !found || lineIndent < indent {
			indent, found = lineIndent, true
		}
	}
	return indent, found
}

// expandTabs replaces each tab with spaces up to the next multiple of tabSize.
func expandTabs(s string, tabSize int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	column := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := tabSize - column%tabSize
			sb.WriteString(strings.Repeat(" ", n))
			column += n
		case '\n', '\r':
			sb.WriteRune(r)
			column = 0
		default:
			sb.WriteRune(r)
			column++
		}
	}
	return sb.String()
}

// splitLines splits s at "\n", "\r\n" and "\r". A trailing line break does not start a
// new line.
func splitLines(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexAny(s, "\r\n")
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i])
		if s[i] == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			i++
		}
		s = s[i+1:]
	}
	return lines
}
