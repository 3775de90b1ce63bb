package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// evalClassDeclaration binds the class to its name in env and returns
// no value, mirroring evalVariableDeclaration/FunctionDeclaration's
// statement-level binding (a ClassExpression instead produces the
// value directly, via evalClass below).
func (ev *Evaluator) evalClassDeclaration(n *ast.ClassDeclaration, env *runtime.Environment) (value.Value, error) {
	ctor, err := ev.evalClass(n, env)
	if err != nil {
		return nil, err
	}
	if n.Name != nil {
		env.SetInitialized(n.Name.Name, ctor)
	}
	return nil, nil
}

// evalClass builds a class's constructor function object: the extends
// clause wires both the static prototype chain (constructor -> super
// constructor) and the instance prototype chain (.prototype ->
// super.prototype), per spec.md §4.6. Methods/getters/setters install
// onto .prototype (or the constructor itself for static members) with
// their home object set for `super` resolution; instance fields are
// stashed as *ast.ClassMember on the constructor's FunctionSlot.Fields
// for Construct (call.go) to run per-instance; static fields and static
// blocks run immediately, in declaration order, against the
// constructor object itself.
func (ev *Evaluator) evalClass(n *ast.ClassDeclaration, env *runtime.Environment) (value.Value, error) {
	classEnv := runtime.NewEnclosedEnvironment(env)

	var superCtor value.Value
	objProto, hasObjProto := ev.RT.Prototypes["Object"]
	protoRef := objProto
	hasProtoRef := hasObjProto

	if n.SuperClass != nil {
		sc, err := ev.evalExpression(n.SuperClass, classEnv)
		if err != nil {
			return nil, err
		}
		superCtor = sc
		if sco, ok := sc.(value.Object); ok {
			spv, err := ev.RT.Heap.Get(sco.Ref, heap.StringKey("prototype"), sc, ev)
			if err != nil {
				return nil, err
			}
			if spo, ok := spv.(value.Object); ok {
				protoRef, hasProtoRef = spo.Ref, true
			}
		}
	}

	protoID := ev.RT.Heap.NewPlainObject(protoRef, hasProtoRef, "Object")

	var ctorFn *ast.ClassMember
	var instanceFields []*ast.ClassMember
	for _, m := range n.Members {
		if m.Kind == ast.ClassField && !m.Static {
			instanceFields = append(instanceFields, m)
			continue
		}
		if m.Kind == ast.ClassMethod && !m.Static && !m.Computed {
			if id, ok := m.Key.(*ast.Identifier); ok && id.Name == "constructor" {
				ctorFn = m
			}
		}
	}

	var ctorRef heap.Ref
	if ctorFn != nil {
		ref, err := ev.makeFunction(&ctorFn.Function.FunctionSignature, nil, classEnv, heap.FunctionUser)
		if err != nil {
			return nil, err
		}
		ctorRef = ref
	} else {
		ctorRef = ev.makeDefaultConstructor(classEnv, n.SuperClass != nil)
	}

	co, ok := ev.RT.Heap.Deref(ctorRef)
	if !ok {
		return nil, errors.NewInternalError("class constructor allocation failed")
	}
	fs, ok := co.Slot.(*heap.FunctionSlot)
	if !ok {
		return nil, errors.NewInternalError("class constructor has no function slot")
	}
	fs.Kind = heap.FunctionClassConstructor
	fs.Fields = instanceFields
	if n.Name != nil {
		fs.Name = n.Name.Name
	}

	if sco, ok := superCtor.(value.Object); ok {
		co.HasProto, co.Proto = true, sco.Ref
	}

	ev.RT.Heap.DefineOwnProperty(protoID, heap.StringKey("constructor"), heap.DataDescriptor(value.Object{Ref: ctorRef}, true, false, true))
	ev.RT.Heap.DefineOwnProperty(ctorRef, heap.StringKey("prototype"), heap.DataDescriptor(value.Object{Ref: protoID}, false, false, false))

	ctorVal := value.Object{Ref: ctorRef}
	if n.Name != nil {
		classEnv.Declare(n.Name.Name, runtime.BindingConst)
		classEnv.SetInitialized(n.Name.Name, ctorVal)
	}

	for _, m := range n.Members {
		switch m.Kind {
		case ast.ClassMethod:
			if !m.Static {
				if id, ok := m.Key.(*ast.Identifier); ok && id.Name == "constructor" && !m.Computed {
					continue
				}
			}
			if err := ev.installMethod(m, ctorRef, protoID, classEnv); err != nil {
				return nil, err
			}
		case ast.ClassGetter, ast.ClassSetter:
			if err := ev.installAccessor(m, ctorRef, protoID, classEnv); err != nil {
				return nil, err
			}
		case ast.ClassField:
			if m.Static {
				if err := ev.runStaticField(m, ctorVal, classEnv); err != nil {
					return nil, err
				}
			}
		case ast.ClassStaticBlock:
			if err := ev.runStaticBlock(m, ctorVal, classEnv); err != nil {
				return nil, err
			}
		}
	}

	return ctorVal, nil
}

func (ev *Evaluator) makeDefaultConstructor(env *runtime.Environment, hasSuper bool) heap.Ref {
	var body []ast.Statement
	if hasSuper {
		body = []ast.Statement{
			&ast.ExpressionStatement{Expression: &ast.CallExpression{
				Callee:   &ast.SuperExpression{},
				Arguments: []ast.Expression{&ast.SpreadElement{Argument: &ast.Identifier{Name: "arguments"}}},
			}},
		}
	}
	sig := &ast.FunctionSignature{Body: body}
	ref, _ := ev.makeFunction(sig, nil, env, heap.FunctionUser)
	return ref
}

func (ev *Evaluator) installMethod(m *ast.ClassMember, ctorRef, protoID heap.Ref, env *runtime.Environment) error {
	target := protoID
	if m.Static {
		target = ctorRef
	}
	fnRef, err := ev.makeFunction(&m.Function.FunctionSignature, nil, env, heap.FunctionUser)
	if err != nil {
		return err
	}
	ev.setHomeObject(fnRef, target)
	if m.Private {
		return ev.definePrivateMethod(target, privateName(m.Key), value.Object{Ref: fnRef}, false, false)
	}
	key, err := ev.propertyKey(m.Key, m.Computed, env)
	if err != nil {
		return err
	}
	ev.RT.Heap.DefineOwnProperty(target, key, heap.DataDescriptor(value.Object{Ref: fnRef}, true, false, true))
	return nil
}

func (ev *Evaluator) installAccessor(m *ast.ClassMember, ctorRef, protoID heap.Ref, env *runtime.Environment) error {
	target := protoID
	if m.Static {
		target = ctorRef
	}
	fnRef, err := ev.makeFunction(&m.Function.FunctionSignature, nil, env, heap.FunctionUser)
	if err != nil {
		return err
	}
	ev.setHomeObject(fnRef, target)
	isGet := m.Kind == ast.ClassGetter
	fnVal := value.Object{Ref: fnRef}
	if m.Private {
		return ev.definePrivateMethod(target, privateName(m.Key), fnVal, true, isGet)
	}
	key, err := ev.propertyKey(m.Key, m.Computed, env)
	if err != nil {
		return err
	}
	o, ok := ev.RT.Heap.Deref(target)
	if !ok {
		return errors.NewInternalError("class accessor target missing")
	}
	d, has := o.Props().Get(key)
	if !has || !d.IsAccessor {
		d = heap.AccessorDescriptor(value.Undef, value.Undef, false, true)
	}
	if isGet {
		d.Get = fnVal
	} else {
		d.Set = fnVal
	}
	ev.RT.Heap.DefineOwnProperty(target, key, d)
	return nil
}

func (ev *Evaluator) runStaticField(m *ast.ClassMember, ctorVal value.Value, env *runtime.Environment) error {
	fieldEnv := runtime.NewEnclosedEnvironment(env)
	fieldEnv.SetThis(ctorVal)
	var v value.Value = value.Undef
	if m.FieldInit != nil {
		fv, err := ev.evalExpression(m.FieldInit, fieldEnv)
		if err != nil {
			return err
		}
		v = fv
	}
	ctorObj := ctorVal.(value.Object)
	if m.Private {
		return ev.definePrivateField(ctorObj.Ref, privateName(m.Key), v)
	}
	key, err := ev.propertyKey(m.Key, m.Computed, fieldEnv)
	if err != nil {
		return err
	}
	ev.RT.Heap.DefineOwnProperty(ctorObj.Ref, key, heap.DataDescriptor(v, true, true, true))
	return nil
}

func (ev *Evaluator) runStaticBlock(m *ast.ClassMember, ctorVal value.Value, env *runtime.Environment) error {
	blockEnv := runtime.NewEnclosedEnvironment(env)
	blockEnv.SetThis(ctorVal)
	ev.hoist(m.StaticBody, blockEnv, false)
	_, err := ev.evalStatements(m.StaticBody, blockEnv)
	return err
}

func privateName(key ast.Expression) string {
	if pid, ok := key.(*ast.PrivateIdentifier); ok {
		return pid.Name
	}
	return ""
}

func (ev *Evaluator) definePrivateField(target heap.Ref, name string, v value.Value) error {
	o, ok := ev.RT.Heap.Deref(target)
	if !ok {
		return errors.NewInternalError("private field target missing")
	}
	if o.Private == nil {
		o.Private = map[string]*heap.PrivateEntry{}
	}
	o.Private[name] = &heap.PrivateEntry{Value: v}
	return nil
}

func (ev *Evaluator) definePrivateMethod(target heap.Ref, name string, v value.Value, accessor, isGet bool) error {
	o, ok := ev.RT.Heap.Deref(target)
	if !ok {
		return errors.NewInternalError("private method target missing")
	}
	if o.Private == nil {
		o.Private = map[string]*heap.PrivateEntry{}
	}
	entry, has := o.Private[name]
	if !has {
		entry = &heap.PrivateEntry{}
	}
	if accessor {
		entry.IsAccessor = true
		if isGet {
			entry.Get = v
		} else {
			entry.Set = v
		}
	} else {
		entry.IsMethod = true
		entry.Value = v
	}
	o.Private[name] = entry
	return nil
}

// getPrivateMember resolves `obj.#name`, walking the instance then its
// prototype chain (private methods/accessors live on the class the way
// the corresponding class body declared them, not copied per instance).
func (ev *Evaluator) getPrivateMember(v value.Value, name string, this value.Value) (value.Value, error) {
	obj, ok := v.(value.Object)
	if !ok {
		return nil, errors.NewTypeErrorf(nil, errors.ErrMsgNotAnObject, kindName(v))
	}
	id := obj.Ref
	visited := map[heap.Ref]bool{}
	for {
		o, ok := ev.RT.Heap.Deref(id)
		if !ok || visited[id] {
			break
		}
		visited[id] = true
		if entry, has := o.Private[name]; has {
			if entry.IsAccessor {
				if !ev.isCallable(entry.Get) {
					return nil, errors.NewTypeErrorf(nil, "'#%s' was defined without a getter", name)
				}
				return ev.Call(entry.Get, this, nil)
			}
			return entry.Value, nil
		}
		if !o.HasProto {
			break
		}
		id = o.Proto
	}
	return nil, errors.NewTypeErrorf(nil, "cannot read private member #%s from an object whose class did not declare it", name)
}

// setPrivateMember resolves `obj.#name = v`; private fields are stored
// directly on the instance (not the prototype chain), matching how
// definePrivateField installs them during field-initialization.
func (ev *Evaluator) setPrivateMember(v value.Value, name string, newVal value.Value, this value.Value) error {
	obj, ok := v.(value.Object)
	if !ok {
		return errors.NewTypeErrorf(nil, errors.ErrMsgNotAnObject, kindName(v))
	}
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return errors.NewInternalError("private member target missing")
	}
	if entry, has := o.Private[name]; has {
		if entry.IsAccessor {
			if !ev.isCallable(entry.Set) {
				return errors.NewTypeErrorf(nil, "'#%s' was defined without a setter", name)
			}
			_, err := ev.Call(entry.Set, this, []value.Value{newVal})
			return err
		}
		entry.Value = newVal
		return nil
	}
	id := o.Proto
	visited := map[heap.Ref]bool{obj.Ref: true}
	for o.HasProto {
		if visited[id] {
			break
		}
		visited[id] = true
		next, ok := ev.RT.Heap.Deref(id)
		if !ok {
			break
		}
		if entry, has := next.Private[name]; has {
			if entry.IsAccessor {
				if !ev.isCallable(entry.Set) {
					return errors.NewTypeErrorf(nil, "'#%s' was defined without a setter", name)
				}
				_, err := ev.Call(entry.Set, this, []value.Value{newVal})
				return err
			}
			return errors.NewTypeErrorf(nil, "'#%s' is a read-only private field", name)
		}
		o = next
		id = next.Proto
	}
	if o.Private == nil {
		o.Private = map[string]*heap.PrivateEntry{}
	}
	o.Private[name] = &heap.PrivateEntry{Value: newVal}
	return nil
}

// superctorKey names the hidden per-call environment binding Construct
// (call.go) installs pointing at the super constructor, so evalSuperCall
// can find `super(...)`'s target without threading an extra parameter
// through every evalStatement/evalExpression call.
const superctorKey = "@@superctor"

// evalSuperCall implements `super(...)` inside a derived class
// constructor: it runs the super constructor's body against the
// already-allocated `this` instance rather than allocating a fresh one,
// per spec.md §4.6's derived-constructor semantics.
func (ev *Evaluator) evalSuperCall(n *ast.CallExpression, env *runtime.Environment) (value.Value, error) {
	sv, err := env.Get(superctorKey)
	if err != nil {
		return nil, errors.NewSyntaxError(nil, "'super' keyword is unexpected outside a derived class constructor")
	}
	superCtor, ok := sv.(value.Object)
	if !ok {
		return nil, errors.NewSyntaxError(nil, "'super' keyword is unexpected outside a derived class constructor")
	}
	args, err := ev.evalCallArgs(n.Arguments, env)
	if err != nil {
		return nil, err
	}
	this := env.ThisValue()

	o, ok := ev.RT.Heap.Deref(superCtor.Ref)
	if !ok {
		return nil, errors.NewInternalError("super constructor missing")
	}
	fs, ok := o.Slot.(*heap.FunctionSlot)
	if !ok {
		return nil, errors.NewInternalError("super constructor has no function slot")
	}
	closure, _ := fs.Closure.(*Closure)
	if closure != nil && closure.Native != nil {
		_, err := closure.Native(ev.RT, this, args)
		return value.Undef, err
	}
	if closure == nil {
		return value.Undef, nil
	}

	if fields, ok := fs.Fields.([]*ast.ClassMember); ok {
		if err := ev.runFieldInits(fields, this, closure); err != nil {
			return nil, err
		}
	}

	fnEnv := runtime.NewEnclosedEnvironment(closure.Env)
	fnEnv.SetThis(this)
	fnEnv.SetNewTarget(env.NewTarget())
	fnEnv.DeclareWithValue("arguments", runtime.BindingVar, ev.makeArgumentsObject(args))
	if home, ok := ev.funcHomeObject(superCtor); ok {
		fnEnv.SetHomeObject(home)
	}
	if o.HasProto {
		if _, hasSuperObj := ev.RT.Heap.Deref(o.Proto); hasSuperObj {
			fnEnv.Declare(superctorKey, runtime.BindingLet)
			fnEnv.SetInitialized(superctorKey, value.Object{Ref: o.Proto})
		}
	}
	if err := ev.bindParams(closure.Params, args, fnEnv); err != nil {
		return nil, err
	}
	ev.hoist(closure.Body, fnEnv, true)
	for _, stmt := range closure.Body {
		_, err := ev.evalStatement(stmt, fnEnv)
		if err != nil {
			if cs, ok := asControlSignal(err); ok && cs.kind == sigReturn {
				return value.Undef, nil
			}
			return nil, err
		}
	}
	return value.Undef, nil
}
