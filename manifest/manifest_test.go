package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/checkshapes/shapes"
)

const example = `
docstring_format: sphinx
functions:
  - name: predict
    specs:
      - "x: [batch..., n]"
      - "return: [batch..., 1]"
    docstring: |
      Predict.

      :param x: Inputs.
      :returns: Predictions.
  - name: reset
    specs: []
`

func TestApply(t *testing.T) {
	m, err := Parse([]byte(example))
	if err != nil {
		t.Fatal(err)
	}
	results, err := m.Apply(shapes.NewParser(m.Options()...))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	want := "Predict.\n\n:param x:\n    * **x** has shape [*batch*..., *n*].\n\n    Inputs.\n" +
		":returns:\n    * **return** has shape [*batch*..., 1].\n\n    Predictions.\n"
	if got := results[0].Docstring; got == nil || *got != want {
		t.Errorf("predict docstring = %v, want %q", got, want)
	}
	if results[1].Docstring != nil {
		t.Errorf("reset docstring = %q, want none", *results[1].Docstring)
	}
}

func TestApplyNamesFailingFunction(t *testing.T) {
	m, err := Parse([]byte(`
functions:
  - name: broken
    specs: ["x: [n"]
`))
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Apply(shapes.NewParser())
	if err == nil || !strings.HasPrefix(err.Error(), "broken: ") {
		t.Fatalf("error = %v, want it to name the function", err)
	}
	var spe *shapes.SpecificationParseError
	if !errors.As(err, &spe) {
		t.Errorf("error does not wrap SpecificationParseError: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "functions:\n  - specs: []\n", "name is required"},
		{"duplicate", "functions:\n  - name: f\n  - name: f\n", "duplicate function"},
		{"bad format", "docstring_format: rst\nfunctions: []\n", "docstring_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shapes.yaml")
	if err := os.WriteFile(path, []byte(example), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Functions) != 2 || m.Functions[0].Name != "predict" {
		t.Errorf("functions = %+v", m.Functions)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
