package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// bindPattern destructures v against pat, either declaring fresh
// bindings in env (declare=true, kind meaningful) or assigning into
// existing bindings/member targets (declare=false, used by plain `=`
// assignment and for-in/of loop heads without a declaration).
func (ev *Evaluator) bindPattern(pat ast.Pattern, v value.Value, env *runtime.Environment, kind runtime.BindingKind, declare bool) error {
	switch p := pat.(type) {
	case *ast.Identifier:
		if declare {
			env.DeclareWithValue(p.Name, kind, v)
			return nil
		}
		return ev.assignName(p.Name, v, env)

	case *ast.AssignmentPattern:
		if isUndefined(v) {
			dv, err := ev.evalExpression(p.Default, env)
			if err != nil {
				return err
			}
			v = dv
		}
		return ev.bindPattern(p.Target, v, env, kind, declare)

	case *ast.ArrayPattern:
		elems, err := ev.iterate(v)
		if err != nil {
			return err
		}
		for i, sub := range p.Elements {
			if sub == nil {
				continue
			}
			if rest, ok := sub.(*ast.RestElement); ok {
				tail := []value.Value{}
				if i < len(elems) {
					tail = append(tail, elems[i:]...)
				}
				restArr := ev.newArrayValue(tail)
				if err := ev.bindPattern(rest.Target, restArr, env, kind, declare); err != nil {
					return err
				}
				break
			}
			var item value.Value = value.Undef
			if i < len(elems) && elems[i] != nil {
				item = elems[i]
			}
			if err := ev.bindPattern(sub, item, env, kind, declare); err != nil {
				return err
			}
		}
		return nil

	case *ast.ObjectPattern:
		used := map[string]bool{}
		for _, prop := range p.Properties {
			key, err := ev.propertyKeyString(prop.Key, prop.Computed, env)
			if err != nil {
				return err
			}
			pv, err := ev.getProperty(v, key)
			if err != nil {
				return err
			}
			used[key] = true
			if err := ev.bindPattern(prop.Value, pv, env, kind, declare); err != nil {
				return err
			}
		}
		if p.Rest != nil {
			rest := ev.restOwnEnumerable(v, used)
			if declare {
				env.DeclareWithValue(p.Rest.Name, kind, rest)
			} else if err := ev.assignName(p.Rest.Name, rest, env); err != nil {
				return err
			}
		}
		return nil

	case *ast.RestElement:
		return ev.bindPattern(p.Target, v, env, kind, declare)

	case *ast.MemberExpression:
		if declare {
			return errors.NewSyntaxError(nil, "invalid destructuring target")
		}
		return ev.assignMember(p, v, env)

	default:
		return errors.NewSyntaxError(nil, "unsupported binding pattern")
	}
}

func isUndefined(v value.Value) bool {
	_, ok := v.(value.Undefined)
	return ok
}

// assignName writes to an already-declared binding, falling back to an
// implicit sloppy-mode global the way the teacher's top-level Define
// does for an unresolved identifier outside strict mode.
func (ev *Evaluator) assignName(name string, v value.Value, env *runtime.Environment) error {
	if env.Has(name) {
		return env.Set(name, v)
	}
	env.DefineGlobal(name, v)
	return nil
}

// iterate eagerly collects every element an iterable/array-like value
// produces. This is a deliberate simplification: destructuring against an infinite generator would hang,
// which real engines avoid by pulling lazily one binding at a time, but
// every pattern form here is finite in practice (array literals,
// argument lists, Map/Set contents).
func (ev *Evaluator) iterate(v value.Value) ([]value.Value, error) {
	obj, ok := v.(value.Object)
	if !ok {
		return nil, errors.NewTypeErrorf(nil, errors.ErrMsgNotIterable, value.KindObject.String())
	}
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return nil, errors.NewTypeErrorf(nil, errors.ErrMsgNotIterable, value.KindObject.String())
	}
	if as, isArr := o.Slot.(*heap.ArraySlot); isArr {
		out := make([]value.Value, len(as.Elements))
		for i, e := range as.Elements {
			if e == nil {
				out[i] = value.Undef
			} else {
				out[i] = e
			}
		}
		return out, nil
	}
	if cs, isColl := o.Slot.(*heap.CollectionSlot); isColl {
		out := make([]value.Value, 0, len(cs.Entries))
		for _, e := range cs.Entries {
			if e == nil || e.Key == nil {
				continue
			}
			if cs.IsSet {
				out = append(out, e.Key)
			} else {
				out = append(out, ev.newArrayValue([]value.Value{e.Key, e.Value}))
			}
		}
		return out, nil
	}
	iterFn, err := ev.RT.Heap.Get(obj.Ref, heap.SymbolKey(heap.SymIterator), v, ev)
	if err != nil {
		return nil, err
	}
	if !ev.isCallable(iterFn) {
		return nil, errors.NewTypeErrorf(nil, errors.ErrMsgNotIterable, value.KindObject.String())
	}
	iterObj, err := ev.Call(iterFn, v, nil)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for {
		nextFn, err := ev.getProperty(iterObj, "next")
		if err != nil {
			return nil, err
		}
		res, err := ev.Call(nextFn, iterObj, nil)
		if err != nil {
			return nil, err
		}
		done, err := ev.getProperty(res, "done")
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(done) {
			return out, nil
		}
		val, err := ev.getProperty(res, "value")
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
}

// restOwnEnumerable builds the plain object backing an object pattern's
// `...rest`: every own enumerable string-keyed property of v not named
// in used.
func (ev *Evaluator) restOwnEnumerable(v value.Value, used map[string]bool) value.Value {
	proto, hasProto := ev.RT.Prototypes["Object"]
	id := ev.RT.Heap.NewPlainObject(proto, hasProto, "Object")
	obj, ok := v.(value.Object)
	if !ok {
		return value.Object{Ref: id}
	}
	src, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return value.Object{Ref: id}
	}
	src.Props().Range(func(k heap.Key, d heap.Descriptor) bool {
		if k.IsSymbol() || !d.Enumerable || used[k.String()] {
			return true
		}
		val := d.Value
		if d.IsAccessor {
			val, _ = ev.RT.Heap.Get(obj.Ref, k, v, ev)
		}
		ev.RT.Heap.DefineOwnProperty(id, k, heap.DataDescriptor(val, true, true, true))
		return true
	})
	return value.Object{Ref: id}
}
