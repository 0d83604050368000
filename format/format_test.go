package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/checkshapes/ebnf/parse"
	"github.com/dhamidi/checkshapes/shapes"
	"github.com/google/go-cmp/cmp"
)

func parseSpecs(t *testing.T, texts ...string) []shapes.ArgumentSpec {
	t.Helper()
	specs, err := shapes.NewParser().ParseArgumentSpecs(texts...)
	if err != nil {
		t.Fatal(err)
	}
	return specs
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(parseSpecs(t, "x.y[1]: [n, 3]", "return: [...]")); err != nil {
		t.Fatal(err)
	}
	want := "x.y[1]: [n, 3]\tx\t* **x.y[1]** has shape [*n*, 3].\n" +
		"return: [...]\treturn\t* **return** has shape [...].\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(parseSpecs(t, "x.y[-1]: [3, n, ., b...]", "z: [...]")); err != nil {
		t.Fatal(err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", buf.String(), err)
	}
	want := []map[string]any{{
		"spec":     "x.y[-1]: [3, n, ., b...]",
		"argument": "x.y[-1]",
		"root":     "x",
		"path": []any{
			map[string]any{"attribute": "y"},
			map[string]any{"index": -1.0},
		},
		"shape": []any{
			map[string]any{"kind": "constant", "value": 3.0},
			map[string]any{"kind": "variable", "name": "n"},
			map[string]any{"kind": "anonymous"},
			map[string]any{"kind": "variable-rank", "name": "b"},
		},
	}, {
		"spec":     "z: [...]",
		"argument": "z",
		"root":     "z",
		"shape": []any{
			map[string]any{"kind": "anonymous-variable-rank"},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestNewEncoder(t *testing.T) {
	if _, err := NewEncoder(Text, nil); err != nil {
		t.Error(err)
	}
	if _, err := NewEncoder(JSON, nil); err != nil {
		t.Error(err)
	}
	if _, err := NewEncoder("yaml", nil); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestCSTJSONEncoder(t *testing.T) {
	g, err := parse.Load("list.ebnf", strings.NewReader(`
		List = { name } .
		name = "a" … "z" { "a" … "z" } .
	`), "List")
	if err != nil {
		t.Fatal(err)
	}
	tree, err := g.Parse("ab c")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := NewCSTJSONEncoder(&buf).Encode(tree); err != nil {
		t.Fatal(err)
	}
	var got cstJSONNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %s: %v", buf.String(), err)
	}
	if got.Kind != "List" || len(got.Children) != 2 {
		t.Fatalf("got %s with %d children", got.Kind, len(got.Children))
	}
	second := got.Children[1]
	if second.Token == nil || *second.Token != "c" || second.Span.Start.Offset != 3 {
		t.Errorf("second child = %+v", second)
	}
}
