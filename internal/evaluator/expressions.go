package evaluator

import (
	"math/big"

	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/generator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// evalExpression dispatches one expression node to its value, the
// counterpart of evalStatement (statements.go). Reference-sensitive
// forms (typeof/delete on a member expression, assignment, update)
// resolve their operand specially rather than going through the
// ordinary evaluate-then-use path.
func (ev *Evaluator) evalExpression(e ast.Expression, env *runtime.Environment) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return ev.evalLiteral(n)

	case *ast.Identifier:
		return env.Get(n.Name)

	case *ast.ThisExpression:
		return env.ThisValue(), nil

	case *ast.NewTargetExpression:
		return env.NewTarget(), nil

	case *ast.ImportMetaExpression:
		return ev.newPlainObject(), nil

	case *ast.SuperExpression:
		return value.Undef, errors.NewSyntaxError(nil, "'super' keyword is only valid inside a method or constructor")

	case *ast.TemplateLiteral:
		return ev.evalTemplateLiteral(n, env)

	case *ast.TaggedTemplateExpression:
		return ev.evalTaggedTemplate(n, env)

	case *ast.SequenceExpression:
		var last value.Value = value.Undef
		for _, ex := range n.Expressions {
			v, err := ev.evalExpression(ex, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(n, env)

	case *ast.ObjectLiteral:
		return ev.evalObjectLiteral(n, env)

	case *ast.FunctionExpression:
		fnRef, err := ev.makeFunction(&n.FunctionSignature, n.Name, env, heap.FunctionUser)
		if err != nil {
			return nil, err
		}
		return value.Object{Ref: fnRef}, nil

	case *ast.ArrowFunctionExpression:
		fnRef, err := ev.makeFunction(&n.FunctionSignature, nil, env, heap.FunctionArrow)
		if err != nil {
			return nil, err
		}
		return value.Object{Ref: fnRef}, nil

	case *ast.ClassExpression:
		return ev.evalClass(&n.ClassDeclaration, env)

	case *ast.UnaryExpression:
		return ev.evalUnaryExpr(n, env)

	case *ast.UpdateExpression:
		return ev.evalUpdateExpr(n, env)

	case *ast.BinaryExpression:
		lv, err := ev.evalExpression(n.Left, env)
		if err != nil {
			return nil, err
		}
		rv, err := ev.evalExpression(n.Right, env)
		if err != nil {
			return nil, err
		}
		return ev.evalBinary(n.Operator, lv, rv)

	case *ast.LogicalExpression:
		return ev.evalLogical(n, env)

	case *ast.ConditionalExpression:
		tv, err := ev.evalExpression(n.Test, env)
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(tv) {
			return ev.evalExpression(n.Consequent, env)
		}
		return ev.evalExpression(n.Alternate, env)

	case *ast.AssignmentExpression:
		return ev.evalAssignment(n, env)

	case *ast.MemberExpression:
		v, _, err := ev.evalMember(n, env)
		return v, err

	case *ast.CallExpression:
		return ev.evalCall(n, env)

	case *ast.NewExpression:
		return ev.evalNew(n, env)

	case *ast.ImportExpression:
		return value.Undef, errors.NewSyntaxError(nil, "dynamic import requires a host module resolver")

	case *ast.YieldExpression:
		return ev.evalYield(n, env)

	case *ast.AwaitExpression:
		return ev.evalAwait(n, env)

	default:
		return nil, errors.NewInternalErrorf("evaluator: unhandled expression type %T", e)
	}
}

func (ev *Evaluator) evalLiteral(n *ast.Literal) (value.Value, error) {
	switch n.Kind {
	case ast.LiteralUndefined:
		return value.Undef, nil
	case ast.LiteralNull:
		return value.Nul, nil
	case ast.LiteralBoolean:
		return value.Boolean(n.Bool), nil
	case ast.LiteralNumber:
		return value.Number(n.Number), nil
	case ast.LiteralBigInt:
		bi, ok := new(big.Int).SetString(n.BigInt, 10)
		if !ok {
			return nil, errors.NewSyntaxError(nil, "invalid BigInt literal")
		}
		return value.BigInt{V: bi}, nil
	case ast.LiteralString:
		return value.String(n.Str), nil
	default:
		return value.Undef, nil
	}
}

func (ev *Evaluator) evalTemplateLiteral(n *ast.TemplateLiteral, env *runtime.Environment) (value.Value, error) {
	out := n.Quasis[0]
	for i, ex := range n.Expressions {
		v, err := ev.evalExpression(ex, env)
		if err != nil {
			return nil, err
		}
		p, err := value.ToPrimitive(v, value.StringHint, ev.objectToPrimitive)
		if err != nil {
			return nil, err
		}
		s, _ := value.ToStringPrimitive(p)
		out += s
		if i+1 < len(n.Quasis) {
			out += n.Quasis[i+1]
		}
	}
	return value.String(out), nil
}

// evalTaggedTemplate builds the strings/raw arrays tag`...`
// passes as its first argument, per spec.md §4.1's template-tag call
// convention, then calls tag with that array followed by the
// substitution values.
func (ev *Evaluator) evalTaggedTemplate(n *ast.TaggedTemplateExpression, env *runtime.Environment) (value.Value, error) {
	strs := make([]value.Value, len(n.Quasi.Quasis))
	raws := make([]value.Value, len(n.Quasi.Quasis))
	for i, q := range n.Quasi.Quasis {
		strs[i] = value.String(q)
		raws[i] = value.String(q)
	}
	stringsArr := ev.newArrayValue(strs)
	rawArr := ev.newArrayValue(raws)
	if so, ok := stringsArr.(value.Object); ok {
		ev.RT.Heap.DefineOwnProperty(so.Ref, heap.StringKey("raw"), heap.DataDescriptor(rawArr, false, false, false))
	}
	args := []value.Value{stringsArr}
	for _, ex := range n.Quasi.Expressions {
		v, err := ev.evalExpression(ex, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	tagFn, this, err := ev.evalCallee(n.Tag, env)
	if err != nil {
		return nil, err
	}
	return ev.Call(tagFn, this, args)
}

func (ev *Evaluator) evalUnaryExpr(n *ast.UnaryExpression, env *runtime.Environment) (value.Value, error) {
	switch n.Operator {
	case ast.OpTypeof:
		if id, ok := n.Argument.(*ast.Identifier); ok {
			if !env.Has(id.Name) {
				return value.String("undefined"), nil
			}
		}
		v, err := ev.evalExpression(n.Argument, env)
		if err != nil {
			if _, isThrow := asThrow(err); isThrow {
				return nil, err
			}
			return value.String("undefined"), nil
		}
		if ev.isCallable(v) {
			return value.String("function"), nil
		}
		return value.String(typeofString(v)), nil

	case ast.OpVoid:
		if _, err := ev.evalExpression(n.Argument, env); err != nil {
			return nil, err
		}
		return value.Undef, nil

	case ast.OpDelete:
		return ev.evalDelete(n.Argument, env)

	default:
		v, err := ev.evalExpression(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return ev.evalUnary(string(n.Operator), v)
	}
}

func (ev *Evaluator) evalDelete(target ast.Expression, env *runtime.Environment) (value.Value, error) {
	m, ok := target.(*ast.MemberExpression)
	if !ok {
		return value.Boolean(true), nil
	}
	if _, isSuper := m.Object.(*ast.SuperExpression); isSuper {
		return value.Boolean(false), nil
	}
	ov, err := ev.evalExpression(m.Object, env)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(value.Object)
	if !ok {
		return value.Boolean(true), nil
	}
	key, err := ev.propertyKey(m.Property, m.Computed, env)
	if err != nil {
		return nil, err
	}
	return value.Boolean(ev.RT.Heap.Delete(obj.Ref, key)), nil
}

func (ev *Evaluator) evalUpdateExpr(n *ast.UpdateExpression, env *runtime.Environment) (value.Value, error) {
	old, err := ev.evalExpression(n.Argument, env)
	if err != nil {
		return nil, err
	}
	var next value.Value
	if b, ok := old.(value.BigInt); ok {
		delta := big.NewInt(1)
		if n.Operator == "--" {
			delta = big.NewInt(-1)
		}
		next = value.BigInt{V: new(big.Int).Add(b.V, delta)}
		old = b
	} else {
		p, err := value.ToPrimitive(old, value.NumberHint, ev.objectToPrimitive)
		if err != nil {
			return nil, err
		}
		on, _ := value.ToNumber(p)
		old = value.Number(on)
		if n.Operator == "++" {
			next = value.Number(on + 1)
		} else {
			next = value.Number(on - 1)
		}
	}
	if err := ev.assignTo(n.Argument, next, env); err != nil {
		return nil, err
	}
	if n.Prefix {
		return next, nil
	}
	return old, nil
}

func (ev *Evaluator) evalLogical(n *ast.LogicalExpression, env *runtime.Environment) (value.Value, error) {
	lv, err := ev.evalExpression(n.Left, env)
	if err != nil {
		return nil, err
	}
	switch n.Operator {
	case "&&":
		if !value.ToBoolean(lv) {
			return lv, nil
		}
		return ev.evalExpression(n.Right, env)
	case "||":
		if value.ToBoolean(lv) {
			return lv, nil
		}
		return ev.evalExpression(n.Right, env)
	case "??":
		if _, isUndef := lv.(value.Undefined); isUndef {
			return ev.evalExpression(n.Right, env)
		}
		if _, isNull := lv.(value.Null); isNull {
			return ev.evalExpression(n.Right, env)
		}
		return lv, nil
	default:
		return nil, errors.NewInternalErrorf("unknown logical operator %q", n.Operator)
	}
}

// evalAssignment handles `=` and every compound/logical-assignment
// operator, reading the current value only when the operator needs it
// (the logical-assignment forms must not evaluate/write when they
// short-circuit, per spec.md §4.1).
func (ev *Evaluator) evalAssignment(n *ast.AssignmentExpression, env *runtime.Environment) (value.Value, error) {
	if n.Operator == "=" {
		v, err := ev.evalExpression(n.Value, env)
		if err != nil {
			return nil, err
		}
		if pat, ok := n.Target.(ast.Pattern); ok {
			if _, isID := pat.(*ast.Identifier); !isID {
				if _, isMember := pat.(*ast.MemberExpression); !isMember {
					if err := ev.bindPattern(pat, v, env, runtime.BindingVar, false); err != nil {
						return nil, err
					}
					return v, nil
				}
			}
		}
		if err := ev.assignTo(n.Target.(ast.Expression), v, env); err != nil {
			return nil, err
		}
		return v, nil
	}

	target := n.Target.(ast.Expression)
	cur, err := ev.evalExpression(target, env)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case "&&=":
		if !value.ToBoolean(cur) {
			return cur, nil
		}
	case "||=":
		if value.ToBoolean(cur) {
			return cur, nil
		}
	case "??=":
		_, isUndef := cur.(value.Undefined)
		_, isNull := cur.(value.Null)
		if !isUndef && !isNull {
			return cur, nil
		}
	}

	rv, err := ev.evalExpression(n.Value, env)
	if err != nil {
		return nil, err
	}

	var result value.Value
	switch n.Operator {
	case "&&=", "||=", "??=":
		result = rv
	default:
		op := n.Operator[:len(n.Operator)-1] // "+=" -> "+"
		result, err = ev.evalBinary(op, cur, rv)
		if err != nil {
			return nil, err
		}
	}
	if err := ev.assignTo(target, result, env); err != nil {
		return nil, err
	}
	return result, nil
}

// assignTo writes v to an Identifier or MemberExpression target, the
// shared tail of plain assignment and ++/--/compound-assignment.
func (ev *Evaluator) assignTo(target ast.Expression, v value.Value, env *runtime.Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return ev.assignName(t.Name, v, env)
	case *ast.MemberExpression:
		return ev.assignMember(t, v, env)
	default:
		return errors.NewReferenceError(nil, errors.ErrMsgInvalidLHS)
	}
}

// evalMember reads a member expression's value, also returning the
// object it was read from (its "this" for a following call, i.e.
// `obj.method()` must call method with this=obj). Optional chaining
// (`?.`) short-circuits to undefined without reading Property at all
// when the object side is null/undefined.
func (ev *Evaluator) evalMember(m *ast.MemberExpression, env *runtime.Environment) (value.Value, value.Value, error) {
	if _, isSuper := m.Object.(*ast.SuperExpression); isSuper {
		this := env.ThisValue()
		home, hasHome := env.HomeObject()
		if !hasHome {
			return nil, nil, errors.NewTypeError(nil, errors.ErrMsgSuperOutsideMethod)
		}
		proto, hasProto := ev.protoOf(home)
		if !hasProto {
			return value.Undef, this, nil
		}
		key, err := ev.propertyKey(m.Property, m.Computed, env)
		if err != nil {
			return nil, nil, err
		}
		v, err := ev.RT.Heap.Get(proto, key, this, ev)
		return v, this, err
	}

	ov, err := ev.evalExpression(m.Object, env)
	if err != nil {
		return nil, nil, err
	}
	if m.Optional && isNullish(ov) {
		return value.Undef, value.Undef, nil
	}
	if pid, ok := m.Property.(*ast.PrivateIdentifier); ok {
		v, err := ev.getPrivateMember(ov, pid.Name, ov)
		return v, ov, err
	}
	key, err := ev.propertyKey(m.Property, m.Computed, env)
	if err != nil {
		return nil, nil, err
	}
	v, err := ev.getPropertyKeyed(ov, key)
	return v, ov, err
}

func isNullish(v value.Value) bool {
	switch v.(type) {
	case value.Undefined, value.Null:
		return true
	default:
		return false
	}
}

// evalCallee resolves a call's callee expression, returning the
// function value and the `this` it must be invoked with (the object a
// member-expression callee was read through; undefined otherwise).
func (ev *Evaluator) evalCallee(callee ast.Expression, env *runtime.Environment) (value.Value, value.Value, error) {
	if m, ok := callee.(*ast.MemberExpression); ok {
		return ev.evalMember(m, env)
	}
	v, err := ev.evalExpression(callee, env)
	return v, value.Undef, err
}

func (ev *Evaluator) evalCallArgs(args []ast.Expression, env *runtime.Environment) ([]value.Value, error) {
	var out []value.Value
	for _, a := range args {
		if spread, ok := a.(*ast.SpreadElement); ok {
			sv, err := ev.evalExpression(spread.Argument, env)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterate(sv)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			continue
		}
		v, err := ev.evalExpression(a, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (ev *Evaluator) evalCall(n *ast.CallExpression, env *runtime.Environment) (value.Value, error) {
	if _, isSuper := n.Callee.(*ast.SuperExpression); isSuper {
		return ev.evalSuperCall(n, env)
	}
	if m, ok := n.Callee.(*ast.MemberExpression); ok && m.Optional {
		ov, err := ev.evalExpression(m.Object, env)
		if err != nil {
			return nil, err
		}
		if isNullish(ov) {
			return value.Undef, nil
		}
	}
	fn, this, err := ev.evalCallee(n.Callee, env)
	if err != nil {
		return nil, err
	}
	if n.Optional && isNullish(fn) {
		return value.Undef, nil
	}
	args, err := ev.evalCallArgs(n.Arguments, env)
	if err != nil {
		return nil, err
	}
	if !ev.isCallable(fn) {
		return nil, ev.notCallable(fn)
	}
	return ev.Call(fn, this, args)
}

func (ev *Evaluator) evalNew(n *ast.NewExpression, env *runtime.Environment) (value.Value, error) {
	callee, err := ev.evalExpression(n.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalCallArgs(n.Arguments, env)
	if err != nil {
		return nil, err
	}
	return ev.Construct(callee, args)
}

func (ev *Evaluator) evalYield(n *ast.YieldExpression, env *runtime.Environment) (value.Value, error) {
	yv, err := env.Get(yielderKey)
	if err != nil {
		return nil, errors.NewSyntaxError(nil, "'yield' is only valid inside a generator function")
	}
	yh, ok := yv.(yielderHandle)
	if !ok {
		return nil, errors.NewSyntaxError(nil, "'yield' is only valid inside a generator function")
	}

	if n.Delegate {
		return ev.evalYieldDelegate(n, env, yh)
	}

	var arg value.Value = value.Undef
	if n.Argument != nil {
		av, err := ev.evalExpression(n.Argument, env)
		if err != nil {
			return nil, err
		}
		arg = av
	}
	resumed, err := yh.y.Yield(arg)
	return ev.translateYieldSignal(resumed, err)
}

// evalYieldDelegate implements `yield* expr`: repeatedly pull from the
// delegated iterable, forwarding each value out through this
// generator's own Yield. A throw or return received while suspended is
// raised at this point of the outer generator body (translateYieldSignal);
// the delegate's own throw/return methods are not called.
func (ev *Evaluator) evalYieldDelegate(n *ast.YieldExpression, env *runtime.Environment, yh yielderHandle) (value.Value, error) {
	sv, err := ev.evalExpression(n.Argument, env)
	if err != nil {
		return nil, err
	}
	iterFn, err := ev.getPropertyKeyed(sv, heap.SymbolKey(heap.SymIterator))
	if err != nil {
		return nil, err
	}
	if !ev.isCallable(iterFn) {
		return nil, errors.NewTypeErrorf(nil, errors.ErrMsgNotIterable, sv.Kind().String())
	}
	iterObj, err := ev.Call(iterFn, sv, nil)
	if err != nil {
		return nil, err
	}

	var sendVal value.Value = value.Undef
	for {
		nextFn, err := ev.getProperty(iterObj, "next")
		if err != nil {
			return nil, err
		}
		res, err := ev.Call(nextFn, iterObj, []value.Value{sendVal})
		if err != nil {
			return nil, err
		}
		done, err := ev.getProperty(res, "done")
		if err != nil {
			return nil, err
		}
		val, err := ev.getProperty(res, "value")
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(done) {
			return val, nil
		}
		resumed, yerr := yh.y.Yield(val)
		v, err := ev.translateYieldSignal(resumed, yerr)
		if err != nil {
			return nil, err
		}
		sendVal = v
	}
}

// translateYieldSignal converts a *generator.ThrownSignal/*ReturnSignal
// raised at Yield's resume point into this package's own completion
// types, so ordinary try/finally unwinding inside the generator body
// runs exactly as it would for a real throw/return.
func (ev *Evaluator) translateYieldSignal(resumed value.Value, err error) (value.Value, error) {
	if err == nil {
		return resumed, nil
	}
	if ts, ok := err.(*generator.ThrownSignal); ok {
		return nil, NewThrow(ts.Reason)
	}
	if rs, ok := err.(*generator.ReturnSignal); ok {
		return nil, returnSignal(rs.Value)
	}
	return nil, err
}

// evalAwait implements `await expr` by yielding the awaited value out
// through the hidden awaiter binding callAsync installed (async.go),
// suspending this coroutine until the driver resumes it with the
// settled value or raises the rejection at this point.
func (ev *Evaluator) evalAwait(n *ast.AwaitExpression, env *runtime.Environment) (value.Value, error) {
	av, err := env.Get(awaiterKey)
	if err != nil {
		return nil, errors.NewSyntaxError(nil, "'await' is only valid inside an async function")
	}
	ah, ok := av.(awaiterHandle)
	if !ok {
		return nil, errors.NewSyntaxError(nil, "'await' is only valid inside an async function")
	}
	v, err := ev.evalExpression(n.Argument, env)
	if err != nil {
		return nil, err
	}
	resumed, yerr := ah.y.Yield(v)
	if yerr != nil {
		if ts, ok := yerr.(*generator.ThrownSignal); ok {
			return nil, NewThrow(ts.Reason)
		}
		return nil, yerr
	}
	return resumed, nil
}
