package shapes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dhamidi/checkshapes/ebnf/parse"
)

// TerminalDescriptions maps the terminals of a grammar to human-readable descriptions.
type TerminalDescriptions map[string]string

// NewTerminalDescriptions describes every terminal of g. Literal terminals are described
// by their quoted literal; pattern terminals take their description from patterns, which
// must contain exactly the pattern terminals of g.
func NewTerminalDescriptions(g *parse.Grammar, patterns map[string]string) (TerminalDescriptions, error) {
	unused := make(map[string]bool, len(patterns))
	for name := range patterns {
		unused[name] = true
	}

	var missing []string
	result := make(TerminalDescriptions)
	for _, t := range g.Terminals() {
		if t.IsLiteral() {
			result[t.Name] = strconv.Quote(t.Literal)
			continue
		}
		description, ok := patterns[t.Name]
		if !ok {
			missing = append(missing, t.Name)
			continue
		}
		delete(unused, t.Name)
		result[t.Name] = description
	}

	var problems []string
	if len(unused) > 0 {
		names := make([]string, 0, len(unused))
		for name := range unused {
			names = append(names, name)
		}
		sort.Strings(names)
		problems = append(problems, "redundant descriptions for "+strings.Join(names, ", "))
	}
	if len(missing) > 0 {
		problems = append(problems, "no description for "+strings.Join(missing, ", "))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("terminal descriptions for %s: %s", g.Start(), strings.Join(problems, "; "))
	}
	return result, nil
}

// Describe returns the descriptions of the named terminals, in order.
func (d TerminalDescriptions) Describe(names []string) []string {
	descriptions := make([]string, len(names))
	for i, name := range names {
		if description, ok := d[name]; ok {
			descriptions[i] = description
		} else {
			descriptions[i] = name
		}
	}
	return descriptions
}
