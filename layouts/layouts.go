// Package layouts holds the components content documents render into,
// keyed by their registry location.
package layouts

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark/ast"

	"github.com/dheerajdev/folio/content"
)

// Func builds a layout around children from the resolved front matter
// and the table of contents.
type Func func(frontMatter map[string]any, tableOfContents []content.TOCEntry, children templ.Component) templ.Component

// Registry maps layout locations to layout components.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]Func)}
}

// Default returns a registry with the Post and Project layouts.
func Default() *Registry {
	r := NewRegistry()
	r.Register(content.LayoutPost, Post)
	r.Register(content.LayoutProject, Project)
	return r
}

// Register installs fn for the layout name, replacing any previous one.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	r.layouts[content.LayoutLocation(name)] = fn
	r.mu.Unlock()
}

// Lookup returns the layout registered at location.
func (r *Registry) Lookup(location string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.layouts[location]
	r.mu.RUnlock()
	return fn, ok
}

// Wrap composes children into the layout a decorated tree refers to.
// Undecorated trees render children unchanged.
func (r *Registry) Wrap(tree ast.Node, children templ.Component) (templ.Component, error) {
	imp, exp := content.Layout(tree)
	if imp == nil {
		return children, nil
	}
	fn, ok := r.Lookup(imp.Location)
	if !ok {
		return nil, fmt.Errorf("layout %q is not registered", imp.Location)
	}
	return fn(exp.FrontMatter, exp.TableOfContents, children), nil
}

// htmlWriter writes markup and stops at the first error.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
}

func str(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func strs(props map[string]any, key string) []string {
	switch v := props[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
