package evaluator

import (
	"math"
	"math/big"
	"strings"

	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/value"
)

// evalBinary implements spec.md §4.1's arithmetic/relational/bitwise
// operators, including the `+` string-concatenation special case and
// BigInt arithmetic (mixing BigInt with Number is a TypeError, per
// spec, rather than silently widening).
func (ev *Evaluator) evalBinary(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "+":
		return ev.evalAdd(l, r)
	case "-", "*", "/", "%", "**":
		return ev.evalArith(op, l, r)
	case "==":
		b, err := value.AbstractEquals(l, r, ev.objectToPrimitive)
		return value.Boolean(b), err
	case "!=":
		b, err := value.AbstractEquals(l, r, ev.objectToPrimitive)
		return value.Boolean(!b), err
	case "===":
		return value.Boolean(value.StrictEquals(l, r)), nil
	case "!==":
		return value.Boolean(!value.StrictEquals(l, r)), nil
	case "<", ">", "<=", ">=":
		return ev.evalRelational(op, l, r)
	case "&", "|", "^", "<<", ">>", ">>>":
		return ev.evalBitwise(op, l, r)
	case "instanceof":
		return ev.evalInstanceof(l, r)
	case "in":
		return ev.evalIn(l, r)
	default:
		return value.Undef, errors.NewInternalErrorf("unknown binary operator %q", op)
	}
}

func (ev *Evaluator) evalAdd(l, r value.Value) (value.Value, error) {
	lp, err := value.ToPrimitive(l, value.DefaultHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	rp, err := value.ToPrimitive(r, value.DefaultHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	if isStringLike(lp) || isStringLike(rp) {
		ls, _ := value.ToStringPrimitive(lp)
		rs, _ := value.ToStringPrimitive(rp)
		return value.String(ls + rs), nil
	}
	if lb, ok := lp.(value.BigInt); ok {
		rb, ok := rp.(value.BigInt)
		if !ok {
			return value.Undef, errors.NewTypeError(nil, "cannot mix BigInt and other types")
		}
		return value.BigInt{V: new(big.Int).Add(lb.V, rb.V)}, nil
	}
	ln, _ := value.ToNumber(lp)
	rn, _ := value.ToNumber(rp)
	return value.Number(ln + rn), nil
}

func isStringLike(v value.Value) bool {
	_, ok := v.(value.String)
	return ok
}

func (ev *Evaluator) evalArith(op string, l, r value.Value) (value.Value, error) {
	lp, err := value.ToPrimitive(l, value.NumberHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	rp, err := value.ToPrimitive(r, value.NumberHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	if lb, ok := lp.(value.BigInt); ok {
		rb, ok := rp.(value.BigInt)
		if !ok {
			return value.Undef, errors.NewTypeError(nil, "cannot mix BigInt and other types")
		}
		return bigIntArith(op, lb, rb)
	}
	ln, _ := value.ToNumber(lp)
	rn, _ := value.ToNumber(rp)
	switch op {
	case "-":
		return value.Number(ln - rn), nil
	case "*":
		return value.Number(ln * rn), nil
	case "/":
		return value.Number(ln / rn), nil
	case "%":
		return value.Number(math.Mod(ln, rn)), nil
	case "**":
		return value.Number(math.Pow(ln, rn)), nil
	default:
		return value.Undef, errors.NewInternalErrorf("unknown arithmetic operator %q", op)
	}
}

func bigIntArith(op string, l, r value.BigInt) (value.Value, error) {
	z := new(big.Int)
	switch op {
	case "-":
		z.Sub(l.V, r.V)
	case "*":
		z.Mul(l.V, r.V)
	case "/":
		if r.V.Sign() == 0 {
			return value.Undef, errors.NewRangeError(nil, "Division by zero")
		}
		z.Quo(l.V, r.V)
	case "%":
		if r.V.Sign() == 0 {
			return value.Undef, errors.NewRangeError(nil, "Division by zero")
		}
		z.Rem(l.V, r.V)
	case "**":
		z.Exp(l.V, r.V, nil)
	default:
		return value.Undef, errors.NewInternalErrorf("unknown BigInt operator %q", op)
	}
	return value.BigInt{V: z}, nil
}

func (ev *Evaluator) evalRelational(op string, l, r value.Value) (value.Value, error) {
	lp, err := value.ToPrimitive(l, value.NumberHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	rp, err := value.ToPrimitive(r, value.NumberHint, ev.objectToPrimitive)
	if err != nil {
		return value.Undef, err
	}
	if ls, lok := lp.(value.String); lok {
		if rs, rok := rp.(value.String); rok {
			c := strings.Compare(string(ls), string(rs))
			return value.Boolean(compareOp(op, c)), nil
		}
	}
	ln, _ := value.ToNumber(lp)
	rn, _ := value.ToNumber(rp)
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return value.Boolean(false), nil
	}
	switch op {
	case "<":
		return value.Boolean(ln < rn), nil
	case ">":
		return value.Boolean(ln > rn), nil
	case "<=":
		return value.Boolean(ln <= rn), nil
	default:
		return value.Boolean(ln >= rn), nil
	}
}

func compareOp(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	default:
		return c >= 0
	}
}

func (ev *Evaluator) evalBitwise(op string, l, r value.Value) (value.Value, error) {
	if lb, ok := l.(value.BigInt); ok {
		rb, ok := r.(value.BigInt)
		if !ok {
			return value.Undef, errors.NewTypeError(nil, "cannot mix BigInt and other types")
		}
		return bigIntBitwise(op, lb, rb)
	}
	ln, _ := value.ToNumber(l)
	rn, _ := value.ToNumber(r)
	li := toInt32(ln)
	ri := toInt32(rn)
	switch op {
	case "&":
		return value.Number(float64(li & ri)), nil
	case "|":
		return value.Number(float64(li | ri)), nil
	case "^":
		return value.Number(float64(li ^ ri)), nil
	case "<<":
		return value.Number(float64(li << (uint32(ri) & 31))), nil
	case ">>":
		return value.Number(float64(li >> (uint32(ri) & 31))), nil
	case ">>>":
		return value.Number(float64(uint32(li) >> (uint32(ri) & 31))), nil
	default:
		return value.Undef, errors.NewInternalErrorf("unknown bitwise operator %q", op)
	}
}

func bigIntBitwise(op string, l, r value.BigInt) (value.Value, error) {
	z := new(big.Int)
	switch op {
	case "&":
		z.And(l.V, r.V)
	case "|":
		z.Or(l.V, r.V)
	case "^":
		z.Xor(l.V, r.V)
	case "<<":
		z.Lsh(l.V, uint(r.V.Int64()))
	case ">>":
		z.Rsh(l.V, uint(r.V.Int64()))
	default:
		return value.Undef, errors.NewTypeError(nil, "BigInts have no unsigned right shift")
	}
	return value.BigInt{V: z}, nil
}

func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(f)))
}

func (ev *Evaluator) evalInstanceof(l, r value.Value) (value.Value, error) {
	ctor, ok := r.(value.Object)
	if !ok || !ev.isCallable(r) {
		return value.Undef, errors.NewTypeError(nil, "Right-hand side of 'instanceof' is not callable")
	}
	protoVal, err := ev.RT.Heap.Get(ctor.Ref, heap.StringKey("prototype"), r, ev)
	if err != nil {
		return value.Undef, err
	}
	proto, ok := protoVal.(value.Object)
	if !ok {
		return value.Boolean(false), nil
	}
	obj, ok := l.(value.Object)
	if !ok {
		return value.Boolean(false), nil
	}
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return value.Boolean(false), nil
	}
	visited := map[heap.Ref]bool{}
	for o.HasProto {
		if visited[o.Proto] {
			break
		}
		visited[o.Proto] = true
		if o.Proto == proto.Ref {
			return value.Boolean(true), nil
		}
		next, ok := ev.RT.Heap.Deref(o.Proto)
		if !ok {
			break
		}
		o = next
	}
	return value.Boolean(false), nil
}

func (ev *Evaluator) evalIn(l, r value.Value) (value.Value, error) {
	obj, ok := r.(value.Object)
	if !ok {
		return value.Undef, errors.NewTypeErrorf(nil, errors.ErrMsgNotAnObject, kindName(r))
	}
	key, err := ev.toPropertyKeyString(l)
	if err != nil {
		return value.Undef, err
	}
	return value.Boolean(ev.RT.Heap.Has(obj.Ref, heap.StringKey(key))), nil
}

// evalUnary implements prefix unary operators, with typeof/delete
// handled reference-sensitively by the caller (expressions.go) since
// they must not evaluate their operand as an ordinary rvalue.
func (ev *Evaluator) evalUnary(op string, v value.Value) (value.Value, error) {
	switch op {
	case "+":
		p, err := value.ToPrimitive(v, value.NumberHint, ev.objectToPrimitive)
		if err != nil {
			return value.Undef, err
		}
		n, _ := value.ToNumber(p)
		return value.Number(n), nil
	case "-":
		if b, ok := v.(value.BigInt); ok {
			return value.BigInt{V: new(big.Int).Neg(b.V)}, nil
		}
		p, err := value.ToPrimitive(v, value.NumberHint, ev.objectToPrimitive)
		if err != nil {
			return value.Undef, err
		}
		n, _ := value.ToNumber(p)
		return value.Number(-n), nil
	case "!":
		return value.Boolean(!value.ToBoolean(v)), nil
	case "~":
		if b, ok := v.(value.BigInt); ok {
			return value.BigInt{V: new(big.Int).Not(b.V)}, nil
		}
		n, _ := value.ToNumber(v)
		return value.Number(float64(^toInt32(n))), nil
	default:
		return value.Undef, errors.NewInternalErrorf("unknown unary operator %q", op)
	}
}

func typeofString(v value.Value) string {
	switch v.(type) {
	case value.Undefined, nil:
		return "undefined"
	case value.Null:
		return "object"
	case value.Boolean:
		return "boolean"
	case value.Number:
		return "number"
	case value.BigInt:
		return "bigint"
	case value.String:
		return "string"
	case value.SymbolValue:
		return "symbol"
	default:
		return "object"
	}
}
