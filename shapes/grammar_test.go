package shapes

import (
	"strings"
	"testing"
)

func TestGrammarsHandleEveryProduction(t *testing.T) {
	g := loadGrammars()
	if err := checkKinds(g.argumentSpec.Productions(), argumentSpecKinds); err != nil {
		t.Errorf("argument spec: %v", err)
	}
	if err := checkKinds(g.docstring.Productions(), docstringKinds); err != nil {
		t.Errorf("docstring: %v", err)
	}
}

func TestCheckKinds(t *testing.T) {
	err := checkKinds([]string{"A", "B"}, []string{"A", "C"})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"[B]", "[C]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestGrammarSource(t *testing.T) {
	for _, name := range []string{GrammarArgumentSpec, GrammarDocstring} {
		src, ok := GrammarSource(name)
		if !ok || src == "" {
			t.Errorf("GrammarSource(%q) is missing", name)
		}
	}
	if _, ok := GrammarSource("java"); ok {
		t.Error("GrammarSource accepted an unknown grammar")
	}
}
