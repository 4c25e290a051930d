// Package symtab implements the lexically-scoped symbol table used by
// the semantic analyzer: a stack of variable scopes plus flat,
// process-wide routine and type namespaces, following the re-design
// note that a scope stack should be a vector of maps with a free-list
// for popped scopes rather than the source's linked map chain.
package symtab

import "github.com/egorTorshin/IU-Compilers-Construction/compiler/tp"

type (
	// Routine describes a declared routine's signature.
	Routine struct {
		Name       string
		Params     []tp.Type
		ReturnType tp.Type // tp.Void for a procedure
	}

	scope map[string]tp.Type

	// Table is the symbol table for one analysis pass: a scope stack of
	// variables, a flat routine namespace and a flat type namespace.
	Table struct {
		scopes []scope
		free   []scope // popped scopes, recycled to avoid reallocation

		routines map[string]Routine
		types    map[string]tp.Type
	}
)

// New returns a table preloaded with the built-in type names and a
// single global scope.
func New() *Table {
	t := &Table{
		routines: make(map[string]Routine),
		types: map[string]tp.Type{
			tp.IntegerName: tp.Integer,
			tp.RealName:    tp.RealT,
			tp.BooleanName: tp.Boolean,
			tp.StringName:  tp.String,
			tp.VoidName:    tp.Void,
		},
	}

	t.PushScope()

	return t
}

// PushScope enters a new, empty variable scope.
func (t *Table) PushScope() {
	var s scope

	if n := len(t.free); n > 0 {
		s, t.free = t.free[n-1], t.free[:n-1]
		for k := range s {
			delete(s, k)
		}
	} else {
		s = make(scope)
	}

	t.scopes = append(t.scopes, s)
}

// PopScope leaves the innermost variable scope, recycling its map.
func (t *Table) PopScope() {
	n := len(t.scopes)
	if n == 0 {
		return
	}

	s := t.scopes[n-1]
	t.scopes = t.scopes[:n-1]
	t.free = append(t.free, s)
}

// Depth returns the current scope nesting depth.
func (t *Table) Depth() int { return len(t.scopes) }

// DeclareVar adds name to the innermost scope. It returns false if name
// is already declared in that same scope (shadowing an outer scope's
// name is allowed; redeclaring within one scope is not).
func (t *Table) DeclareVar(name string, typ tp.Type) bool {
	s := t.scopes[len(t.scopes)-1]

	if _, ok := s[name]; ok {
		return false
	}

	s[name] = typ

	return true
}

// LookupVar searches scopes from innermost to outermost.
func (t *Table) LookupVar(name string) (tp.Type, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if typ, ok := t.scopes[i][name]; ok {
			return typ, true
		}
	}

	return nil, false
}

// DeclareRoutine registers a routine in the flat, process-wide routine
// namespace. Returns false if the name is already taken.
func (t *Table) DeclareRoutine(r Routine) bool {
	if _, ok := t.routines[r.Name]; ok {
		return false
	}

	t.routines[r.Name] = r

	return true
}

// LookupRoutine finds a previously hoisted routine.
func (t *Table) LookupRoutine(name string) (Routine, bool) {
	r, ok := t.routines[name]
	return r, ok
}

// DeclareType registers a user type, rejecting duplicates and names that
// collide with a built-in.
func (t *Table) DeclareType(name string, typ tp.Type) bool {
	if _, ok := t.types[name]; ok {
		return false
	}

	t.types[name] = typ

	return true
}

// LookupType resolves a type name, built-in or user-declared.
func (t *Table) LookupType(name string) (tp.Type, bool) {
	typ, ok := t.types[name]
	return typ, ok
}

// Routines returns a snapshot of every hoisted routine signature, for
// tooling (the visualization reporter) that needs to enumerate them
// after analysis has finished.
func (t *Table) Routines() map[string]Routine {
	out := make(map[string]Routine, len(t.routines))
	for k, v := range t.routines {
		out[k] = v
	}

	return out
}

// IsBuiltinType reports whether name is one of the preloaded built-ins.
func IsBuiltinType(name string) bool {
	switch name {
	case tp.IntegerName, tp.RealName, tp.BooleanName, tp.StringName, tp.VoidName:
		return true
	default:
		return false
	}
}
