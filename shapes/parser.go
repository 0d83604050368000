package shapes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dhamidi/checkshapes/ebnf/parse"
	"github.com/tliron/commonlog"
)

// Parser parses argument specifications and rewrites docstrings.
// A Parser is safe for concurrent use.
type Parser struct {
	grammars *grammars
	cache    *Cache
	format   func() DocstringFormat
	log      commonlog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithCache makes the parser share c. Without it the parser gets a cache of its own.
func WithCache(c *Cache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// WithDocstringFormat fixes the docstring format. Without it the parser follows
// RewriteDocstrings.
func WithDocstringFormat(f DocstringFormat) Option {
	return func(p *Parser) {
		p.format = func() DocstringFormat { return f }
	}
}

// WithLogger sets the logger for cache and parse events.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// NewParser returns a parser. The embedded grammars are compiled on first use.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		grammars: loadGrammars(),
		format:   RewriteDocstrings,
		log:      commonlog.GetLogger("checkshapes.parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = NewCache()
	}
	return p
}

// Cache returns the cache used by p.
func (p *Parser) Cache() *Cache {
	return p.cache
}

// ParseArgumentSpec parses text such as "x.features[-1]: [batch..., 3]".
// Malformed text yields a *SpecificationParseError.
func (p *Parser) ParseArgumentSpec(text string) (ArgumentSpec, error) {
	if spec, ok := p.cache.argumentSpec(text); ok {
		return spec, nil
	}

	tree, err := p.grammars.argumentSpec.Parse(text)
	if err != nil {
		var u *parse.UnexpectedInputError
		if errors.As(err, &u) {
			return ArgumentSpec{}, &SpecificationParseError{newParseError(text, u, p.grammars.argumentSpecTerminals)}
		}
		return ArgumentSpec{}, fmt.Errorf("parse argument specification %q: %w", text, err)
	}

	spec, err := buildArgumentSpec(tree, text)
	if err != nil {
		return ArgumentSpec{}, err
	}
	p.log.Debugf("parsed argument specification %q as %s", text, spec)
	p.cache.putArgumentSpec(text, spec)
	return spec, nil
}

// ParseArgumentSpecs parses every text, stopping at the first error.
func (p *Parser) ParseArgumentSpecs(texts ...string) ([]ArgumentSpec, error) {
	specs := make([]ArgumentSpec, 0, len(texts))
	for _, text := range texts {
		spec, err := p.ParseArgumentSpec(text)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParseAndRewriteDocstring documents specs in doc according to the docstring format.
//
// A nil doc stays nil, and the format DocstringFormatNone returns doc unchanged. With
// DocstringFormatSphinx the shape of every specified argument is listed under its
// ":param" field and the shape of the result under ":returns". A doc that does not follow
// the docstring grammar yields a *DocstringParseError. Any other format panics.
func (p *Parser) ParseAndRewriteDocstring(doc *string, specs []ArgumentSpec) (*string, error) {
	if doc == nil {
		return nil, nil
	}

	switch format := p.format(); format {
	case DocstringFormatNone:
		return doc, nil
	case DocstringFormatSphinx:
		rewritten, err := p.rewriteSphinx(*doc, specs)
		if err != nil {
			return nil, err
		}
		return &rewritten, nil
	default:
		panic(fmt.Sprintf("checkshapes: unsupported docstring format %q", format))
	}
}

// RewriteDocstring is ParseAndRewriteDocstring for a docstring that is always present.
func (p *Parser) RewriteDocstring(doc string, specs []ArgumentSpec) (string, error) {
	rewritten, err := p.ParseAndRewriteDocstring(&doc, specs)
	if err != nil {
		return "", err
	}
	return *rewritten, nil
}

func (p *Parser) rewriteSphinx(doc string, specs []ArgumentSpec) (string, error) {
	key := newDocstringKey(doc, specs)
	if rewritten, ok := p.cache.docstring(key); ok {
		return rewritten, nil
	}

	tree, err := p.grammars.docstring.Parse(doc)
	if err != nil {
		var u *parse.UnexpectedInputError
		if errors.As(err, &u) {
			return "", &DocstringParseError{newParseError(doc, u, p.grammars.docstringTerminals)}
		}
		return "", fmt.Errorf("parse docstring: %w", err)
	}

	rewritten := newSphinxRewriter(doc, specs).rewrite(tree)
	p.log.Debugf("rewrote docstring for %d specifications", len(specs))
	p.cache.putDocstring(key, rewritten)
	return rewritten, nil
}

var defaultParser = sync.OnceValue(func() *Parser {
	return NewParser()
})

// DefaultParser returns the process-wide parser. It follows RewriteDocstrings and shares
// one cache across the process.
func DefaultParser() *Parser {
	return defaultParser()
}

// ParseArgumentSpec parses text with the default parser.
func ParseArgumentSpec(text string) (ArgumentSpec, error) {
	return DefaultParser().ParseArgumentSpec(text)
}

// ParseAndRewriteDocstring rewrites doc with the default parser.
func ParseAndRewriteDocstring(doc *string, specs []ArgumentSpec) (*string, error) {
	return DefaultParser().ParseAndRewriteDocstring(doc, specs)
}
