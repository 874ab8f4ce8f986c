// Package mockengine holds the named mock engines a dispatcher can use to
// turn rule fixtures into mock data.
//
// Two capability shapes exist. Most engines implement Engine and receive the
// fixture matching the dispatcher state. The schema engine implements
// SpecMocker and receives the whole rule. Callers choose the entry point by
// engine name, never by probing capabilities.
package mockengine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/getmockd/modelproxy/pkg/template"
)

// Built-in engine names.
const (
	TemplateEngineName = "template"
	SchemaEngineName   = "schema"
)

// ErrUnknownEngine is returned by Lookup for unregistered names.
var ErrUnknownEngine = errors.New("unknown mock engine")

// Engine generates mock data from one fixture.
type Engine interface {
	Generate(spec any) (any, error)
}

// SpecMocker generates mock data from a whole rule specification.
type SpecMocker interface {
	SpecToMock(spec any) (any, error)
}

// Set maps engine names to engines. It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	engines map[string]any
}

// NewSet returns a set holding the built-in template and schema engines.
func NewSet() *Set {
	tmpl := template.New()
	return &Set{engines: map[string]any{
		TemplateEngineName: tmpl,
		SchemaEngineName:   NewSchemaEngine(tmpl),
	}}
}

// Register adds or replaces the engine stored under name. engine must
// implement Engine or SpecMocker.
func (s *Set) Register(name string, engine any) error {
	if name == "" {
		return errors.New("mock engine name is required")
	}
	switch engine.(type) {
	case Engine, SpecMocker:
	default:
		return fmt.Errorf("mock engine %q implements neither Generate nor SpecToMock", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engines[name] = engine
	return nil
}

// Lookup returns the engine registered under the exact name.
func (s *Set) Lookup(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	engine, ok := s.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return engine, nil
}

// Names returns the registered engine names, sorted.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
