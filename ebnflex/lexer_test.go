package ebnflex

import (
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"
)

func mustParseGrammar(t *testing.T, src string) ebnf.Grammar {
	t.Helper()
	g, err := ebnf.Parse("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	return g
}

func tokenize(t *testing.T, g ebnf.Grammar, input string, opts ...Option) []Token {
	t.Helper()
	tokens, err := NewLexer(g, []byte(input), "test", opts...).Tokenize()
	if err != nil {
		t.Fatalf("tokenize %q: %v", input, err)
	}
	return tokens
}

const identifiers = `
	cname = letter { letter | digit } .
	int = digit { digit } .
	letter = "a" … "z" | "A" … "Z" | "_" .
	digit = "0" … "9" .
`

func TestLexerLongestMatch(t *testing.T) {
	g := mustParseGrammar(t, identifiers)
	tokens := tokenize(t, g, "abc 12 x1", WithTokens("cname", "int"))

	want := []struct {
		kind, literal string
	}{
		{"cname", "abc"},
		{KindWhiteSpace, " "},
		{"int", "12"},
		{KindWhiteSpace, " "},
		{"cname", "x1"},
		{KindEOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Literal != w.literal {
			t.Errorf("token %d = %s %q, want %s %q", i, tokens[i].Kind, tokens[i].Literal, w.kind, w.literal)
		}
	}
}

func TestLexerDefaultTokensAreDeclarationOrdered(t *testing.T) {
	g := mustParseGrammar(t, identifiers)
	tokens := tokenize(t, g, "a")

	// cname and letter both match one character; cname is declared first.
	if tokens[0].Kind != "cname" {
		t.Errorf("Kind = %q, want %q", tokens[0].Kind, "cname")
	}
}

func TestLexerLiterals(t *testing.T) {
	g := mustParseGrammar(t, identifiers)
	tokens := tokenize(t, g, "n...,.", WithTokens("cname"), WithLiterals(".", "...", ","))

	want := []string{"cname", `"..."`, `","`, `"."`, KindEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d kind = %s, want %s", i, tokens[i].Kind, kind)
		}
	}
}

func TestLexerAnchored(t *testing.T) {
	g := mustParseGrammar(t, `
		param = ":param" .
		field = ":" cname .
		cname = letter { letter } .
		letter = "a" … "z" .
	`)
	opts := []Option{
		WithTokens("param", "field", "cname"),
		WithLiterals(":"),
		WithAnchored("param", "field"),
	}
	tokens := tokenize(t, g, "x :param\n  :param :y\n:other", opts...)

	var kinds []string
	for _, tok := range tokens {
		if tok.Kind != KindWhiteSpace {
			kinds = append(kinds, tok.Kind)
		}
	}
	want := []string{
		"cname", `":"`, "cname", // mid-line ":param" is not a field
		"param", `":"`, "cname",
		"field",
		KindEOF,
	}
	if strings.Join(kinds, " ") != strings.Join(want, " ") {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
}

func TestLexerErrorToken(t *testing.T) {
	g := mustParseGrammar(t, identifiers)
	tokens := tokenize(t, g, "a€b", WithTokens("cname"))

	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4: %v", len(tokens), tokens)
	}
	if tokens[1].Kind != KindError || tokens[1].Literal != "€" {
		t.Errorf("token 1 = %s %q, want %s %q", tokens[1].Kind, tokens[1].Literal, KindError, "€")
	}
	if tokens[2].Position.Offset != 4 {
		t.Errorf("offset after error = %d, want 4", tokens[2].Position.Offset)
	}
}

func TestLexerPositions(t *testing.T) {
	g := mustParseGrammar(t, identifiers)
	tokens := tokenize(t, g, "ab\n  cd", WithTokens("cname"))

	cd := tokens[2]
	if cd.Literal != "cd" {
		t.Fatalf("token 2 = %v, want cd", cd)
	}
	want := Position{Filename: "test", Offset: 5, Line: 2, Column: 3}
	if cd.Position != want {
		t.Errorf("Position = %+v, want %+v", cd.Position, want)
	}
	if end := cd.End(); end.Offset != 7 || end.Column != 5 {
		t.Errorf("End = %+v, want offset 7 column 5", end)
	}
	if got := cd.Position.String(); got != "test:2:3" {
		t.Errorf("String = %q, want %q", got, "test:2:3")
	}
}

func TestPositionAdvance(t *testing.T) {
	start := Position{Line: 1, Column: 1}
	got := start.Advance("é\nab")
	want := Position{Offset: 5, Line: 2, Column: 3}
	if got != want {
		t.Errorf("Advance = %+v, want %+v", got, want)
	}
}

func TestIsLexical(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"cname", true},
		{"int", true},
		{"ArgumentSpec", false},
		{"Docs", false},
	}
	for _, tt := range tests {
		if got := IsLexical(tt.name); got != tt.want {
			t.Errorf("IsLexical(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: KindEOF}, "end of input"},
		{Token{Kind: KindWhiteSpace, Literal: "  "}, "whitespace"},
		{Token{Kind: "cname", Literal: "x"}, `"x"`},
	}
	for _, tt := range tests {
		if got := Describe(tt.tok); got != tt.want {
			t.Errorf("Describe(%v) = %q, want %q", tt.tok, got, tt.want)
		}
	}
}
