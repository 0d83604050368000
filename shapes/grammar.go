package shapes

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/dhamidi/checkshapes/ebnf/parse"
)

//go:embed grammars/argument_spec.ebnf
var argumentSpecSource string

//go:embed grammars/docstring.ebnf
var docstringSource string

// Node kinds of the argument specification grammar.
const (
	kindArgumentSpec                       = "ArgumentSpec"
	kindArgumentName                       = "ArgumentName"
	kindArgumentRefs                       = "ArgumentRefs"
	kindArgumentRef                        = "ArgumentRef"
	kindArgumentRefAttribute               = "ArgumentRefAttribute"
	kindArgumentRefIndex                   = "ArgumentRefIndex"
	kindShapeSpec                          = "ShapeSpec"
	kindDimensionSpecs                     = "DimensionSpecs"
	kindDimensionSpec                      = "DimensionSpec"
	kindVariableRankDimensionSpec          = "VariableRankDimensionSpec"
	kindDimensionSpecConstant              = "DimensionSpecConstant"
	kindDimensionSpecVariable              = "DimensionSpecVariable"
	kindDimensionSpecAnonymous             = "DimensionSpecAnonymous"
	kindDimensionSpecVariableRank          = "DimensionSpecVariableRank"
	kindDimensionSpecAnonymousVariableRank = "DimensionSpecAnonymousVariableRank"
)

// Node kinds of the docstring grammar.
const (
	kindDocstring        = "Docstring"
	kindDocs             = "Docs"
	kindInfoFields       = "InfoFields"
	kindInfoField        = "InfoField"
	kindInfoFieldParam   = "InfoFieldParam"
	kindInfoFieldReturns = "InfoFieldReturns"
	kindInfoFieldOther   = "InfoFieldOther"
	kindInfoFieldArgs    = "InfoFieldArgs"
)

// The builder and the rewriter handle exactly these kinds.
var (
	argumentSpecKinds = []string{
		kindArgumentSpec, kindArgumentName, kindArgumentRefs, kindArgumentRef,
		kindArgumentRefAttribute, kindArgumentRefIndex, kindShapeSpec, kindDimensionSpecs,
		kindDimensionSpec, kindVariableRankDimensionSpec, kindDimensionSpecConstant, kindDimensionSpecVariable,
		kindDimensionSpecAnonymous, kindDimensionSpecVariableRank,
		kindDimensionSpecAnonymousVariableRank,
	}
	docstringKinds = []string{
		kindDocstring, kindDocs, kindInfoFields, kindInfoField, kindInfoFieldParam,
		kindInfoFieldReturns, kindInfoFieldOther, kindInfoFieldArgs,
	}
)

var argumentSpecTerminalPatterns = map[string]string{
	"cname":       "variable name",
	"int":         "integer",
	"negativeInt": "negative integer",
}

var docstringTerminalPatterns = map[string]string{
	"any":            "any text",
	"cname":          "variable name",
	"infoFieldOther": "Sphinx info field",
	"returns":        "Sphinx `return` field",
}

// grammars holds the compiled grammars and their terminal descriptions.
type grammars struct {
	argumentSpec          *parse.Grammar
	argumentSpecTerminals TerminalDescriptions
	docstring             *parse.Grammar
	docstringTerminals    TerminalDescriptions
}

// loadGrammars compiles the embedded grammars once. Any inconsistency between the grammars,
// the node handlers and the terminal descriptions panics before the first parse.
var loadGrammars = sync.OnceValue(func() *grammars {
	g := &grammars{
		argumentSpec: parse.MustLoad("argument_spec.ebnf", argumentSpecSource, kindArgumentSpec),
		docstring: parse.MustLoad("docstring.ebnf", docstringSource, kindDocstring,
			parse.Anchored("param", "returns", "infoFieldOther")),
	}
	mustHandleKinds(g.argumentSpec, argumentSpecKinds)
	mustHandleKinds(g.docstring, docstringKinds)
	g.argumentSpecTerminals = mustDescribeTerminals(g.argumentSpec, argumentSpecTerminalPatterns)
	g.docstringTerminals = mustDescribeTerminals(g.docstring, docstringTerminalPatterns)
	return g
})

func mustHandleKinds(g *parse.Grammar, handled []string) {
	if err := checkKinds(g.Productions(), handled); err != nil {
		panic(fmt.Sprintf("checkshapes: grammar %s: %v", g.Start(), err))
	}
}

// checkKinds reports productions without a handler and handlers without a production.
func checkKinds(productions, handled []string) error {
	want := make(map[string]bool, len(handled))
	for _, kind := range handled {
		want[kind] = true
	}
	var missing []string
	for _, name := range productions {
		if !want[name] {
			missing = append(missing, name)
		}
		delete(want, name)
	}
	var extra []string
	for kind := range want {
		extra = append(extra, kind)
	}
	sort.Strings(extra)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("unhandled productions %v, handlers without production %v", missing, extra)
	}
	return nil
}

func mustDescribeTerminals(g *parse.Grammar, patterns map[string]string) TerminalDescriptions {
	descriptions, err := NewTerminalDescriptions(g, patterns)
	if err != nil {
		panic("checkshapes: " + err.Error())
	}
	return descriptions
}

// Grammar names accepted by GrammarSource.
const (
	GrammarArgumentSpec = "argument-spec"
	GrammarDocstring    = "docstring"
)

// GrammarSource returns the EBNF source of an embedded grammar.
func GrammarSource(name string) (string, bool) {
	switch name {
	case GrammarArgumentSpec:
		return argumentSpecSource, true
	case GrammarDocstring:
		return docstringSource, true
	}
	return "", false
}
