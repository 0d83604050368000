package shapes

import (
	"fmt"
	"testing"

	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestParserCachesArgumentSpecs(t *testing.T) {
	cache := NewCache()
	p := NewParser(WithCache(cache))

	first, err := p.ParseArgumentSpec("x: [n, 3]")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.ParseArgumentSpec("x: [n, 3]")
	if err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Errorf("cached spec %s differs from %s", second, first)
	}

	// Keys are the exact text, so equivalent spellings are cached separately.
	if _, err := p.ParseArgumentSpec("x:[n,3]"); err != nil {
		t.Fatal(err)
	}
	if specs, docs := cache.Len(); specs != 2 || docs != 0 {
		t.Errorf("cache has %d specs and %d docstrings, want 2 and 0", specs, docs)
	}

	// Failures are not cached.
	if _, err := p.ParseArgumentSpec("x: ["); err == nil {
		t.Fatal("expected an error")
	}
	if specs, _ := cache.Len(); specs != 2 {
		t.Errorf("cache has %d specs after a failure, want 2", specs)
	}
}

func TestParserCachedSpecsAreNotShared(t *testing.T) {
	p := NewParser()

	for range 3 {
		spec, err := p.ParseArgumentSpec("a: [3, n]")
		if err != nil {
			t.Fatal(err)
		}
		if got := spec.String(); got != "a: [3, n]" {
			t.Fatalf("spec = %s, want a: [3, n]", got)
		}
		*spec.Shape.Dims[0].Constant = 99
		spec.Shape.Dims[1].VariableName = "zzz"
	}
}

func TestParserSharedCache(t *testing.T) {
	cache := NewCache()
	a := NewParser(WithCache(cache))
	b := NewParser(WithCache(cache))
	if a.Cache() != b.Cache() {
		t.Fatal("parsers do not share the cache")
	}
	if _, err := a.ParseArgumentSpec("y: [.]"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Cache().argumentSpec("y: [.]"); !ok {
		t.Error("spec parsed by one parser is not visible to the other")
	}
}

func TestParserCachesDocstrings(t *testing.T) {
	cache := NewCache()
	p := NewParser(WithCache(cache), WithDocstringFormat(DocstringFormatSphinx))
	x := mustParseSpecs(t, p, "x: [3]")
	y := mustParseSpecs(t, p, "x: [4]")

	doc := "Doc.\n\n:param x: foo"
	for range 2 {
		if _, err := p.RewriteDocstring(doc, x); err != nil {
			t.Fatal(err)
		}
	}
	got, err := p.RewriteDocstring(doc, y)
	if err != nil {
		t.Fatal(err)
	}
	if want := "Doc.\n\n:param x:\n    * **x** has shape [4].\n\n    foo"; got != want {
		t.Errorf("rewrite with other specs = %q, want %q", got, want)
	}
	if _, docs := cache.Len(); docs != 2 {
		t.Errorf("cache has %d docstrings, want 2", docs)
	}
}

func TestParseAndRewriteDocstringNil(t *testing.T) {
	p := NewParser(WithDocstringFormat(DocstringFormatSphinx))
	got, err := p.ParseAndRewriteDocstring(nil, nil)
	if err != nil || got != nil {
		t.Errorf("ParseAndRewriteDocstring(nil) = %v, %v; want nil, nil", got, err)
	}
}

func TestParseAndRewriteDocstringNone(t *testing.T) {
	p := NewParser(WithDocstringFormat(DocstringFormatNone))
	specs := mustParseSpecs(t, p, "x: [3]")

	// Not even parsed: malformed docstrings pass through.
	doc := ":param x\n"
	got, err := p.ParseAndRewriteDocstring(&doc, specs)
	if err != nil {
		t.Fatal(err)
	}
	if got != &doc {
		t.Errorf("expected the input pointer back")
	}
	if _, docs := p.Cache().Len(); docs != 0 {
		t.Errorf("cache has %d docstrings, want 0", docs)
	}
}

func TestParseAndRewriteDocstringFollowsGlobalFormat(t *testing.T) {
	previous := SetRewriteDocstrings(DocstringFormatNone)
	defer SetRewriteDocstrings(previous)

	p := NewParser()
	specs := mustParseSpecs(t, p, "x: [3]")
	doc := ":param x: foo"

	got, err := p.RewriteDocstring(doc, specs)
	if err != nil {
		t.Fatal(err)
	}
	if got != doc {
		t.Errorf("format none rewrote the docstring: %q", got)
	}

	SetRewriteDocstrings(DocstringFormatSphinx)
	got, err = p.RewriteDocstring(doc, specs)
	if err != nil {
		t.Fatal(err)
	}
	if got == doc {
		t.Error("format sphinx left the docstring unchanged")
	}
}

func TestParseAndRewriteDocstringUnsupportedFormat(t *testing.T) {
	p := NewParser(WithDocstringFormat("markdown"))
	doc := "Doc."

	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unsupported format")
		}
	}()
	p.ParseAndRewriteDocstring(&doc, nil)
}

func TestDefaultParser(t *testing.T) {
	if DefaultParser() != DefaultParser() {
		t.Fatal("DefaultParser is not a singleton")
	}
	spec, err := ParseArgumentSpec("return: [batch..., 1]")
	if err != nil {
		t.Fatal(err)
	}
	if spec.ArgumentRef.RootArgumentName() != ResultToken {
		t.Errorf("root = %q, want %q", spec.ArgumentRef.RootArgumentName(), ResultToken)
	}
	if got, err := ParseAndRewriteDocstring(nil, []ArgumentSpec{spec}); got != nil || err != nil {
		t.Errorf("ParseAndRewriteDocstring(nil) = %v, %v", got, err)
	}
}

func TestParserConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewParser(WithDocstringFormat(DocstringFormatSphinx))

	var g errgroup.Group
	for i := range 32 {
		g.Go(func() error {
			text := fmt.Sprintf("x%d: [n, %d]", i%4, i%3)
			spec, err := p.ParseArgumentSpec(text)
			if err != nil {
				return err
			}
			doc := fmt.Sprintf("Doc.\n\n:param x%d: value", i%4)
			_, err = p.RewriteDocstring(doc, []ArgumentSpec{spec})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if specs, _ := p.Cache().Len(); specs != 12 {
		t.Errorf("cache has %d specs, want 12", specs)
	}
}
