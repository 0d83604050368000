package shapes

import (
	"strings"
	"sync"
)

type docstringKey struct {
	docstring string
	specs     string
}

func newDocstringKey(docstring string, specs []ArgumentSpec) docstringKey {
	canonical := make([]string, len(specs))
	for i, spec := range specs {
		canonical[i] = spec.String()
	}
	// Specs never contain a newline, so the join is unambiguous.
	return docstringKey{docstring: docstring, specs: strings.Join(canonical, "\n")}
}

// Cache memoizes parsed argument specifications and rewritten docstrings.
// It is safe for concurrent use and never evicts entries.
type Cache struct {
	mu            sync.Mutex
	argumentSpecs map[string]ArgumentSpec
	docstrings    map[docstringKey]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		argumentSpecs: make(map[string]ArgumentSpec),
		docstrings:    make(map[docstringKey]string),
	}
}

func (c *Cache) argumentSpec(text string) (ArgumentSpec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	spec, ok := c.argumentSpecs[text]
	if !ok {
		return ArgumentSpec{}, false
	}
	return spec.clone(), true
}

func (c *Cache) putArgumentSpec(text string, spec ArgumentSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.argumentSpecs[text] = spec.clone()
}

func (c *Cache) docstring(key docstringKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docstrings[key]
	return doc, ok
}

func (c *Cache) putDocstring(key docstringKey, doc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docstrings[key] = doc
}

// Len returns the number of cached argument specifications and docstrings.
func (c *Cache) Len() (argumentSpecs, docstrings int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.argumentSpecs), len(c.docstrings)
}
