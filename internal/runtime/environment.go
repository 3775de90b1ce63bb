// Package runtime implements spec.md §3/§4.4's environment records, call
// stack, and the single Runtime handle that owns the heap, environment
// tree, microtask queue, and prototype registry (spec.md §9: "there is
// no ambient singleton").
//
// Environment is grounded on the teacher's
// internal/interp/runtime/environment.go (a parent-chained symbol table
// with Get/Set/Define/Has/Range), generalized from a single
// case-insensitive Value store to an ordered name -> Binding store that
// tracks ECMAScript binding kinds and temporal-dead-zone state.
package runtime

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/value"
)

// BindingKind enumerates the declaration forms spec.md §3 lists for an
// environment Binding.
type BindingKind int

const (
	BindingVar BindingKind = iota
	BindingLet
	BindingConst
	BindingFunction
	BindingClass
	BindingUsing
	BindingAwaitUsing
)

// Binding is one entry of an Environment's ordered name table.
type Binding struct {
	Value       value.Value
	Kind        BindingKind
	Initialized bool // false until the TDZ is cleared (let/const/class)
	Mutable     bool
}

// Environment is a lexical scope: an ordered binding table plus a parent
// reference. Function bodies, blocks, catch clauses, and `with` all
// install a fresh Environment enclosed by the scope active at that
// point, mirroring the teacher's NewEnclosedEnvironment.
type Environment struct {
	names   []string
	table   map[string]*Binding
	parent  *Environment

	// This/NewTarget are inherited down the chain the way the teacher's
	// call frames thread `this`; HasThis distinguishes "this environment
	// defines its own this-binding" (function/program scope) from "defer
	// to parent" (block/arrow scope — arrows never have HasThis set).
	thisVal    value.Value
	hasThis    bool
	newTarget  value.Value
	hasNewTarget bool

	// homeObject backs `super` resolution inside a method/getter/setter:
	// the object the method was installed on, so `super.prop` looks up
	// starting at homeObject's prototype rather than `this`'s prototype
	// (spec.md §4.5's method/home-object binding; arrows inherit, same as
	// this/new.target).
	homeObject    value.Value
	hasHomeObject bool

	// WithTarget, when set, makes this a `with` scope: property lookups
	// on the target object shadow ordinary bindings (non-strict only,
	// per spec.md §4.4).
	WithTarget value.Value
	IsWith     bool
}

// NewGlobalEnvironment creates a root-level environment with no parent,
// used for the program's global scope.
func NewGlobalEnvironment() *Environment {
	return &Environment{
		table:   make(map[string]*Binding),
		hasThis: true,
	}
}

// NewEnclosedEnvironment creates a scope nested inside outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{
		table:  make(map[string]*Binding),
		parent: outer,
	}
}

// Parent returns the enclosing environment, or nil at the root.
func (e *Environment) Parent() *Environment { return e.parent }

// Declare introduces name in this environment's own scope with the
// given kind. var/function bindings are Initialized immediately
// (undefined until assigned); let/const/class start uninitialized
// (TDZ) until SetInitialized is called by the declaration's evaluator
// step.
func (e *Environment) Declare(name string, kind BindingKind) {
	init := kind == BindingVar || kind == BindingFunction
	mutable := kind != BindingConst
	e.table[name] = &Binding{Value: value.Undef, Kind: kind, Initialized: init, Mutable: mutable}
	e.names = append(e.names, name)
}

// DeclareWithValue is Declare followed by an immediate initialize,
// for forms (function declarations, catch parameters, for-of loop
// bindings) whose value is known at declaration time.
func (e *Environment) DeclareWithValue(name string, kind BindingKind, v value.Value) {
	e.Declare(name, kind)
	e.table[name].Value = v
	e.table[name].Initialized = true
}

// GetLocalBinding returns the Binding record for name in this
// environment's own scope only.
func (e *Environment) GetLocalBinding(name string) (*Binding, bool) {
	b, ok := e.table[name]
	return b, ok
}

// Resolve walks the parent chain looking for name, returning the
// Binding that owns it and the Environment it lives in.
func (e *Environment) Resolve(name string) (*Binding, *Environment, bool) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.table[name]; ok {
			return b, env, true
		}
	}
	return nil, nil, false
}

// Get reads name's current value, enforcing the temporal dead zone: a
// let/const/class binding that has not yet been initialized produces a
// ReferenceError (spec.md §3 invariant) rather than undefined.
func (e *Environment) Get(name string) (value.Value, error) {
	b, _, ok := e.Resolve(name)
	if !ok {
		return value.Undef, errors.NewReferenceErrorf(nil, errors.ErrMsgUndefinedVariable, name)
	}
	if !b.Initialized {
		return value.Undef, errors.NewReferenceErrorf(nil, errors.ErrMsgTDZAccess, name)
	}
	return b.Value, nil
}

// Has reports whether name is bound anywhere in the chain (ignoring
// TDZ — used by `typeof` on an unresolved identifier, which must not
// throw).
func (e *Environment) Has(name string) bool {
	_, _, ok := e.Resolve(name)
	return ok
}

// Set assigns name's value, walking the chain to the owning scope. A
// const binding refuses reassignment once initialized (TypeError, per
// spec.md §3/§8); assigning an unresolved name in strict mode is the
// caller's responsibility to reject (spec.md §4.4's strict-mode rule),
// so Set itself creates a global var for a non-strict undeclared
// assignment only when the caller explicitly opts in via DefineGlobal.
func (e *Environment) Set(name string, v value.Value) error {
	b, _, ok := e.Resolve(name)
	if !ok {
		return errors.NewReferenceErrorf(nil, errors.ErrMsgUndefinedVariable, name)
	}
	if !b.Initialized {
		return errors.NewReferenceErrorf(nil, errors.ErrMsgTDZAccess, name)
	}
	if !b.Mutable {
		return errors.NewTypeError(nil, errors.ErrMsgCannotAssignConst)
	}
	b.Value = v
	return nil
}

// SetInitialized clears the TDZ flag and assigns v, used by let/const/
// class declaration evaluation once the initializer has run.
func (e *Environment) SetInitialized(name string, v value.Value) {
	if b, ok := e.table[name]; ok {
		b.Value = v
		b.Initialized = true
	}
}

// DefineGlobal creates (or overwrites) a var-kind binding directly in
// this environment, used for sloppy-mode implicit globals and for
// `var`/function hoisting into function/global scope.
func (e *Environment) DefineGlobal(name string, v value.Value) {
	if b, ok := e.table[name]; ok {
		b.Value = v
		b.Initialized = true
		return
	}
	e.table[name] = &Binding{Value: v, Kind: BindingVar, Initialized: true, Mutable: true}
	e.names = append(e.names, name)
}

// Range iterates this environment's own bindings in declaration order.
func (e *Environment) Range(f func(name string, b *Binding) bool) {
	for _, n := range e.names {
		if b, ok := e.table[n]; ok {
			if !f(n, b) {
				return
			}
		}
	}
}

// SetThis installs a this-binding owned by this environment (function/
// global scope; arrow functions never call this and instead inherit
// ThisValue from their defining environment).
func (e *Environment) SetThis(v value.Value) {
	e.thisVal = v
	e.hasThis = true
}

// ThisValue resolves `this` by walking up to the nearest environment
// that owns a this-binding (an arrow's enclosing scope, ultimately).
func (e *Environment) ThisValue() value.Value {
	for env := e; env != nil; env = env.parent {
		if env.hasThis {
			return env.thisVal
		}
	}
	return value.Undef
}

// SetHomeObject installs the home object a method/getter/setter
// environment resolves `super` against.
func (e *Environment) SetHomeObject(v value.Value) {
	e.homeObject = v
	e.hasHomeObject = true
}

// HomeObject resolves the nearest enclosing home object, the same
// arrow-transparent walk ThisValue uses; ok is false if no enclosing
// scope ever set one (super used outside any method).
func (e *Environment) HomeObject() (value.Value, bool) {
	for env := e; env != nil; env = env.parent {
		if env.hasHomeObject {
			return env.homeObject, true
		}
	}
	return value.Undef, false
}

// SetNewTarget installs a new.target value owned by this environment.
func (e *Environment) SetNewTarget(v value.Value) {
	e.newTarget = v
	e.hasNewTarget = true
}

// NewTarget resolves new.target the same way ThisValue resolves this:
// arrows inherit from their defining scope.
func (e *Environment) NewTarget() value.Value {
	for env := e; env != nil; env = env.parent {
		if env.hasNewTarget {
			return env.newTarget
		}
	}
	return value.Undef
}
