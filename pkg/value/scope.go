package value

import (
	"sort"

	"github.com/thomasrohde/whispy/pkg/diagnostics"
)

// Omni is the shared builtin table consulted last by every lookup. It is
// filled once at startup and only read afterwards.
type Omni struct {
	table map[Symbol]Value
}

// NewOmni creates an empty builtin table.
func NewOmni() *Omni {
	return &Omni{table: make(map[Symbol]Value)}
}

// Define registers a builtin under name. Call it only while setting up the
// table, before any scope shares it.
func (o *Omni) Define(name string, v Value) {
	o.table[Symbol{Name: name}] = v
}

// Get returns the builtin bound to sym.
func (o *Omni) Get(sym Symbol) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.table[sym]
	return v, ok
}

// Names returns the registered names, sorted.
func (o *Omni) Names() []string {
	names := make([]string, 0, len(o.table))
	for sym := range o.table {
		names = append(names, sym.Name)
	}
	sort.Strings(names)
	return names
}

// Scope maps symbols to values. A call scope also carries the closure of the
// function being called, searched after its own bindings and before its
// parent.
type Scope struct {
	locals  map[Symbol]Value
	parent  *Scope
	closure *Scope
	omni    *Omni
}

// NewScope creates a root scope backed by omni.
func NewScope(omni *Omni) *Scope {
	return &Scope{locals: make(map[Symbol]Value), omni: omni}
}

// NewCallScope creates a child scope searched after its own locals: first
// closure, then the parent chain. Function calls pass a nil parent and the
// function's defining scope as closure.
func NewCallScope(parent, closure *Scope) *Scope {
	s := &Scope{locals: make(map[Symbol]Value), parent: parent, closure: closure}
	switch {
	case parent != nil:
		s.omni = parent.omni
	case closure != nil:
		s.omni = closure.omni
	}
	return s
}

// Parent returns the enclosing scope, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Closure returns the captured scope of a call scope, or nil.
func (s *Scope) Closure() *Scope { return s.closure }

// Omni returns the builtin table shared by this scope.
func (s *Scope) Omni() *Omni { return s.omni }

// Local returns a binding of s itself, ignoring every enclosing scope.
func (s *Scope) Local(sym Symbol) (Value, bool) {
	v, ok := s.locals[sym]
	return v, ok
}

// LocalNames returns the names bound directly in s, sorted.
func (s *Scope) LocalNames() []string {
	names := make([]string, 0, len(s.locals))
	for sym := range s.locals {
		names = append(names, sym.Name)
	}
	sort.Strings(names)
	return names
}

// find checks the locals of s, then its closure chain, then repeats for
// each ancestor.
func find(s *Scope, sym Symbol) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.locals[sym]; ok {
			return v, true
		}
		if cur.closure != nil {
			if v, ok := find(cur.closure, sym); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// Lookup resolves sym: local bindings, closure, the parent chain and finally
// the builtin table. A miss is an *diagnostics.UnboundSymbolError.
func Lookup(s *Scope, sym Symbol) (Value, error) {
	if v, ok := find(s, sym); ok {
		return v, nil
	}
	if v, ok := s.omni.Get(sym); ok {
		return v, nil
	}
	return nil, &diagnostics.UnboundSymbolError{Name: sym.Name}
}

// Bind writes into the local bindings of s. Enclosing scopes are never
// modified; a binding with the same name there is shadowed.
func Bind(s *Scope, sym Symbol, v Value) {
	s.locals[sym] = v
}
