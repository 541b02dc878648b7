package tplparser

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds named, parsed templates. Templates are parsed when they are
// registered, so a registered name always resolves to a valid template.
// Registering a name twice is rejected; entries are never overwritten.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
	}
}

// Register parses source and stores it under name.
func (r *Registry) Register(name, source string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}
	tmpl, err := Parse(name, source)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTemplate, name)
	}
	r.templates[name] = tmpl
	return nil
}

// Resolve returns the parsed template registered under name.
func (r *Registry) Resolve(name string) (*Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return tmpl, nil
}

// Render resolves name and executes it against ctx.
func (r *Registry) Render(name string, ctx Context) (string, error) {
	tmpl, err := r.Resolve(name)
	if err != nil {
		return "", err
	}
	return tmpl.Execute(ctx)
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
