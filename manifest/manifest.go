// Package manifest loads YAML files that describe functions, their shape specifications and
// their docstrings, and rewrites the docstrings in bulk.
package manifest

import (
	"fmt"
	"os"

	"github.com/dhamidi/checkshapes/shapes"
	"gopkg.in/yaml.v3"
)

// Manifest lists the functions to document.
type Manifest struct {
	// DocstringFormat overrides the process-wide format when set.
	DocstringFormat string     `yaml:"docstring_format,omitempty"`
	Functions       []Function `yaml:"functions"`
}

// Function is one decorated function: its specifications in declaration order and its
// docstring, which may be absent.
type Function struct {
	Name      string   `yaml:"name"`
	Specs     []string `yaml:"specs"`
	Docstring *string  `yaml:"docstring,omitempty"`
}

// Result is the outcome for one function.
type Result struct {
	Name      string
	Specs     []shapes.ArgumentSpec
	Docstring *string
}

// Parse decodes a manifest and validates it.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFromFile reads and parses the manifest at path.
func LoadFromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

// Validate checks that every function is named, names are unique, and the format is known.
func (m *Manifest) Validate() error {
	if m.DocstringFormat != "" {
		if _, err := shapes.ParseDocstringFormat(m.DocstringFormat); err != nil {
			return fmt.Errorf("docstring_format: %w", err)
		}
	}
	seen := make(map[string]bool, len(m.Functions))
	for i, fn := range m.Functions {
		if fn.Name == "" {
			return fmt.Errorf("functions[%d]: name is required", i)
		}
		if seen[fn.Name] {
			return fmt.Errorf("functions[%d]: duplicate function %q", i, fn.Name)
		}
		seen[fn.Name] = true
	}
	return nil
}

// Options returns the parser options the manifest asks for.
func (m *Manifest) Options() []shapes.Option {
	if m.DocstringFormat == "" {
		return nil
	}
	format, _ := shapes.ParseDocstringFormat(m.DocstringFormat)
	return []shapes.Option{shapes.WithDocstringFormat(format)}
}

// Apply parses the specifications of every function and rewrites its docstring with p.
// Errors name the function they occurred in.
func (m *Manifest) Apply(p *shapes.Parser) ([]Result, error) {
	results := make([]Result, 0, len(m.Functions))
	for _, fn := range m.Functions {
		specs, err := p.ParseArgumentSpecs(fn.Specs...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name, err)
		}
		doc, err := p.ParseAndRewriteDocstring(fn.Docstring, specs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name, err)
		}
		results = append(results, Result{Name: fn.Name, Specs: specs, Docstring: doc})
	}
	return results, nil
}
