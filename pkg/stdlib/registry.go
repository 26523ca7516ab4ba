// Package stdlib provides the whispy builtin function table.
package stdlib

import (
	"sort"

	"github.com/thomasrohde/whispy/pkg/evaluator"
	"github.com/thomasrohde/whispy/pkg/value"
)

// Registry holds registered builtin functions.
type Registry struct {
	fns map[string]*value.Builtin
}

// NewRegistry creates a new empty builtin registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*value.Builtin),
	}
}

// Register adds a builtin to the registry.
func (r *Registry) Register(fn *value.Builtin) {
	r.fns[fn.Name] = fn
}

// Get retrieves a builtin by name.
func (r *Registry) Get(name string) *value.Builtin {
	return r.fns[name]
}

// Names returns the registered builtin names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Omni builds the shared builtin table from the registry plus every
// operator.
func (r *Registry) Omni() *value.Omni {
	omni := value.NewOmni()
	for name, fn := range r.fns {
		omni.Define(name, fn)
	}
	evaluator.RegisterOperators(omni)
	return omni
}

// NewOmni returns a builtin table with the default builtins and operators.
func NewOmni() *value.Omni {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.Omni()
}
