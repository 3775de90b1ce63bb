package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// getProperty reads a string-keyed property off any value, coercing
// primitives to their wrapper prototype the way spec.md §4.3's Get
// abstract operation does ("a.length" on a string, "n.toFixed()" on a
// number) — without ever allocating a wrapper object, by resolving
// straight through to the matching installed prototype.
func (ev *Evaluator) getProperty(v value.Value, key string) (value.Value, error) {
	switch t := v.(type) {
	case value.Object:
		return ev.RT.Heap.Get(t.Ref, heap.StringKey(key), v, ev)
	case value.String:
		if key == "length" {
			return value.Number(float64(len([]rune(string(t))))), nil
		}
		if idx, ok := parseIndex(key); ok {
			runes := []rune(string(t))
			if idx >= 0 && idx < len(runes) {
				return value.String(string(runes[idx])), nil
			}
			return value.Undef, nil
		}
		if proto, ok := ev.RT.Prototypes["String"]; ok {
			return ev.RT.Heap.Get(proto, heap.StringKey(key), v, ev)
		}
		return value.Undef, nil
	case value.Number, value.BigInt, value.Boolean:
		tag := protoTagFor(t)
		if proto, ok := ev.RT.Prototypes[tag]; ok {
			return ev.RT.Heap.Get(proto, heap.StringKey(key), v, ev)
		}
		return value.Undef, nil
	case value.Undefined, value.Null:
		return value.Undef, errors.NewTypeErrorf(nil, errors.ErrMsgNotAnObject, "undefined")
	default:
		return value.Undef, nil
	}
}

func protoTagFor(v value.Value) string {
	switch v.(type) {
	case value.Number:
		return "Number"
	case value.BigInt:
		return "BigInt"
	case value.Boolean:
		return "Boolean"
	default:
		return "Object"
	}
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// getPropertyKeyed resolves a Key (rather than a plain string), used by
// computed member access where the key may be a Symbol.
func (ev *Evaluator) getPropertyKeyed(v value.Value, key heap.Key) (value.Value, error) {
	obj, ok := v.(value.Object)
	if !ok {
		if key.IsSymbol() {
			return value.Undef, nil
		}
		return ev.getProperty(v, key.String())
	}
	return ev.RT.Heap.Get(obj.Ref, key, v, ev)
}

func (ev *Evaluator) setPropertyKeyed(v value.Value, key heap.Key, val value.Value) error {
	obj, ok := v.(value.Object)
	if !ok {
		return errors.NewTypeErrorf(nil, errors.ErrMsgNotAnObject, value.KindObject.String())
	}
	_, err := ev.RT.Heap.Set(obj.Ref, key, val, obj.Ref, ev)
	return err
}

// propertyKeyString evaluates a Property/ObjectPatternProperty key
// expression to its string form (computed keys are evaluated; plain
// Identifier/Literal keys use their literal text directly).
func (ev *Evaluator) propertyKeyString(key ast.Expression, computed bool, env *runtime.Environment) (string, error) {
	if !computed {
		switch k := key.(type) {
		case *ast.Identifier:
			return k.Name, nil
		case *ast.Literal:
			return literalKeyString(k), nil
		}
	}
	v, err := ev.evalExpression(key, env)
	if err != nil {
		return "", err
	}
	return ev.toPropertyKeyString(v)
}

func (ev *Evaluator) toPropertyKeyString(v value.Value) (string, error) {
	if sv, ok := v.(value.SymbolValue); ok {
		return "@@" + sv.Sym.Description, nil
	}
	s, ok := value.ToStringPrimitive(v)
	if !ok {
		prim, err := value.ToPrimitive(v, value.StringHint, ev.objectToPrimitive)
		if err != nil {
			return "", err
		}
		s, _ = value.ToStringPrimitive(prim)
	}
	return s, nil
}

// propertyKey evaluates a key expression into a heap.Key, preserving
// Symbol identity instead of stringifying it (used by member-expression
// computed access, where `obj[Symbol.iterator]` must not collapse to a
// string key).
func (ev *Evaluator) propertyKey(key ast.Expression, computed bool, env *runtime.Environment) (heap.Key, error) {
	if !computed {
		switch k := key.(type) {
		case *ast.Identifier:
			return heap.StringKey(k.Name), nil
		case *ast.PrivateIdentifier:
			return heap.StringKey(k.Name), nil
		case *ast.Literal:
			return heap.StringKey(literalKeyString(k)), nil
		}
	}
	v, err := ev.evalExpression(key, env)
	if err != nil {
		return heap.Key{}, err
	}
	if sv, ok := v.(value.SymbolValue); ok {
		return heap.SymbolKey(sv.Sym), nil
	}
	s, err := ev.toPropertyKeyString(v)
	if err != nil {
		return heap.Key{}, err
	}
	return heap.StringKey(s), nil
}

func literalKeyString(l *ast.Literal) string {
	switch l.Kind {
	case ast.LiteralString:
		return l.Str
	case ast.LiteralNumber:
		return value.FormatNumber(l.Number)
	default:
		return l.Raw
	}
}

// objectToPrimitive implements value.ObjectPrimitiveConverter: it
// consults Symbol.toPrimitive, falling back to valueOf/toString in the
// order hint dictates (spec.md §4.1's OrdinaryToPrimitive).
func (ev *Evaluator) objectToPrimitive(obj value.Object, hint value.PrimitiveHint) (value.Value, error) {
	toPrim, err := ev.RT.Heap.Get(obj.Ref, heap.SymbolKey(heap.SymToPrimitive), obj, ev)
	if err == nil && ev.isCallable(toPrim) {
		hintStr := "default"
		switch hint {
		case value.StringHint:
			hintStr = "string"
		case value.NumberHint:
			hintStr = "number"
		}
		return ev.Call(toPrim, obj, []value.Value{value.String(hintStr)})
	}
	methods := []string{"valueOf", "toString"}
	if hint == value.StringHint {
		methods = []string{"toString", "valueOf"}
	}
	for _, name := range methods {
		fn, err := ev.RT.Heap.Get(obj.Ref, heap.StringKey(name), obj, ev)
		if err != nil {
			return value.Undef, err
		}
		if !ev.isCallable(fn) {
			continue
		}
		res, err := ev.Call(fn, obj, nil)
		if err != nil {
			return value.Undef, err
		}
		if _, isObj := res.(value.Object); !isObj {
			return res, nil
		}
	}
	return value.Undef, errors.NewTypeErrorf(nil, errors.ErrMsgCannotConvertToPrim, obj.Kind().String())
}

func (ev *Evaluator) newArrayValue(elems []value.Value) value.Value {
	proto, hasProto := ev.RT.Prototypes["Array"]
	id := ev.RT.Heap.NewArray(proto, hasProto, elems)
	return value.Object{Ref: id}
}

func (ev *Evaluator) newPlainObject() value.Value {
	proto, hasProto := ev.RT.Prototypes["Object"]
	id := ev.RT.Heap.NewPlainObject(proto, hasProto, "Object")
	return value.Object{Ref: id}
}

// evalArrayLiteral builds a heap array, expanding SpreadElement entries
// via iterate and leaving elided positions (nil Expression) as holes.
func (ev *Evaluator) evalArrayLiteral(n *ast.ArrayLiteral, env *runtime.Environment) (value.Value, error) {
	var elems []value.Value
	for _, e := range n.Elements {
		if e == nil {
			elems = append(elems, nil)
			continue
		}
		if spread, ok := e.(*ast.SpreadElement); ok {
			sv, err := ev.evalExpression(spread.Argument, env)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterate(sv)
			if err != nil {
				return nil, err
			}
			elems = append(elems, items...)
			continue
		}
		v, err := ev.evalExpression(e, env)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return ev.newArrayValue(elems), nil
}

// evalObjectLiteral builds a plain object, handling shorthand, computed
// keys, getter/setter accessors, methods (home-object bound for
// super-inside-object-literal-method support), and spread.
func (ev *Evaluator) evalObjectLiteral(n *ast.ObjectLiteral, env *runtime.Environment) (value.Value, error) {
	result := ev.newPlainObject()
	obj := result.(value.Object)

	for _, prop := range n.Properties {
		if prop.Kind == ast.PropertySpread {
			sv, err := ev.evalExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
			ev.spreadOwnEnumerable(sv, obj.Ref)
			continue
		}
		key, err := ev.propertyKey(prop.Key, prop.Computed, env)
		if err != nil {
			return nil, err
		}
		switch prop.Kind {
		case ast.PropertyGetter, ast.PropertySetter:
			fnExpr := prop.Value.(*ast.FunctionExpression)
			fnRef, err := ev.makeFunction(&fnExpr.FunctionSignature, fnExpr.Name, env, heap.FunctionUser)
			if err != nil {
				return nil, err
			}
			ev.setHomeObject(fnRef, obj.Ref)
			existing, _ := ev.RT.Heap.Deref(obj.Ref)
			d, has := existing.Props().Get(key)
			if !has || !d.IsAccessor {
				d = heap.AccessorDescriptor(value.Undef, value.Undef, true, true)
			}
			fnVal := value.Object{Ref: fnRef}
			if prop.Kind == ast.PropertyGetter {
				d.Get = fnVal
			} else {
				d.Set = fnVal
			}
			ev.RT.Heap.DefineOwnProperty(obj.Ref, key, d)
		case ast.PropertyMethod:
			fnExpr := prop.Value.(*ast.FunctionExpression)
			fnRef, err := ev.makeFunction(&fnExpr.FunctionSignature, fnExpr.Name, env, heap.FunctionUser)
			if err != nil {
				return nil, err
			}
			ev.setHomeObject(fnRef, obj.Ref)
			ev.RT.Heap.DefineOwnProperty(obj.Ref, key, heap.DataDescriptor(value.Object{Ref: fnRef}, true, true, true))
		default:
			v, err := ev.evalExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
			ev.RT.Heap.DefineOwnProperty(obj.Ref, key, heap.DataDescriptor(v, true, true, true))
		}
	}
	return result, nil
}

func (ev *Evaluator) spreadOwnEnumerable(v value.Value, dest heap.Ref) {
	obj, ok := v.(value.Object)
	if !ok {
		return
	}
	src, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return
	}
	src.Props().Range(func(k heap.Key, d heap.Descriptor) bool {
		if !d.Enumerable {
			return true
		}
		val := d.Value
		if d.IsAccessor {
			val, _ = ev.RT.Heap.Get(obj.Ref, k, v, ev)
		}
		ev.RT.Heap.DefineOwnProperty(dest, k, heap.DataDescriptor(val, true, true, true))
		return true
	})
}

func (ev *Evaluator) setHomeObject(fnRef, homeRef heap.Ref) {
	o, ok := ev.RT.Heap.Deref(fnRef)
	if !ok {
		return
	}
	fs, ok := o.Slot.(*heap.FunctionSlot)
	if !ok {
		return
	}
	fs.HomeObject = homeRef
	fs.HasHomeObject = true
}

// assignMember implements plain `obj.prop = v` / `obj[k] = v` assignment.
// `super.prop = v` is handled first, as a Set starting at the home
// object's prototype with the current `this` as receiver.
func (ev *Evaluator) assignMember(m *ast.MemberExpression, v value.Value, env *runtime.Environment) error {
	if _, isSuper := m.Object.(*ast.SuperExpression); isSuper {
		this := env.ThisValue()
		home, hasHome := env.HomeObject()
		if !hasHome {
			return errors.NewTypeError(nil, errors.ErrMsgSuperOutsideMethod)
		}
		proto, hasProto := ev.protoOf(home)
		if !hasProto {
			return errors.NewTypeError(nil, errors.ErrMsgSuperOutsideMethod)
		}
		key, err := ev.propertyKey(m.Property, m.Computed, env)
		if err != nil {
			return err
		}
		thisObj, _ := this.(value.Object)
		_, err = ev.RT.Heap.Set(proto, key, v, thisObj.Ref, ev)
		return err
	}
	ov, err := ev.evalExpression(m.Object, env)
	if err != nil {
		return err
	}
	if pid, ok := m.Property.(*ast.PrivateIdentifier); ok {
		return ev.setPrivateMember(ov, pid.Name, v, ov)
	}
	key, err := ev.propertyKey(m.Property, m.Computed, env)
	if err != nil {
		return err
	}
	return ev.setPropertyKeyed(ov, key, v)
}

func (ev *Evaluator) protoOf(v value.Value) (heap.Ref, bool) {
	obj, ok := v.(value.Object)
	if !ok {
		return 0, false
	}
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok || !o.HasProto {
		return 0, false
	}
	return o.Proto, true
}
