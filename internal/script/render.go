// Package script renders the KWin script fragments a directive
// pipeline compiles into.
package script

import (
	"fmt"
	"strings"
	"text/template"
)

// Bindings is one flat rendering context. Contexts are extended by
// copying, never mutated: every step layers its own keys over the
// shared session bindings without touching them.
type Bindings map[string]any

// With returns a copy of b with key set to value.
func (b Bindings) With(key string, value any) Bindings {
	next := make(Bindings, len(b)+1)
	for k, v := range b {
		next[k] = v
	}
	next[key] = value
	return next
}

// Renderer renders named fragments from the closed catalog. Rendering
// is strict: a fragment referencing a key absent from the bindings is
// an error. That always means a compiler/catalog mismatch, not bad
// user input.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the full fragment catalog.
func NewRenderer() (*Renderer, error) {
	root := template.New("kwin").Option("missingkey=error")
	for name, text := range catalog() {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("parse fragment %s: %w", name, err)
		}
	}
	return &Renderer{tmpl: root}, nil
}

// Render renders the named fragment against b.
func (r *Renderer) Render(name string, b Bindings) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("no fragment %q in catalog", name)
	}
	var buf strings.Builder
	if err := t.Execute(&buf, map[string]any(b)); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
