package value

import (
	"math"
	"strconv"
	"strings"
)

// ToBoolean implements spec.md §4.1's ToBoolean: Undefined/Null/false/0/
// −0/NaN/"" convert to false; every object converts to true.
func ToBoolean(v Value) bool {
	switch t := v.(type) {
	case Undefined:
		return false
	case Null:
		return false
	case Boolean:
		return bool(t)
	case Number:
		f := float64(t)
		return f != 0 && !math.IsNaN(f)
	case BigInt:
		return t.V.Sign() != 0
	case String:
		return len(t) != 0
	case SymbolValue:
		return true
	case Object:
		return true
	default:
		return true
	}
}

// ToNumberFromString applies the JS numeric grammar: leading/trailing
// whitespace is tolerated, 0x/0o/0b prefixes select a radix, and the
// literal "Infinity"/"-Infinity"/"+Infinity" is recognized. An empty
// (after trimming) string converts to 0. Anything else that fails to
// parse converts to NaN.
func ToNumberFromString(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	neg := false
	rest := t
	switch {
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	case strings.HasPrefix(rest, "-"):
		neg = true
		rest = rest[1:]
	}
	switch rest {
	case "Infinity":
		if neg {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}
	lower := strings.ToLower(rest)
	var radix int
	switch {
	case strings.HasPrefix(lower, "0x"):
		radix = 16
	case strings.HasPrefix(lower, "0o"):
		radix = 8
	case strings.HasPrefix(lower, "0b"):
		radix = 2
	}
	if radix != 0 {
		digits := rest[2:]
		if digits == "" {
			return math.NaN()
		}
		iv, err := strconv.ParseUint(digits, radix, 64)
		if err != nil {
			return math.NaN()
		}
		f := float64(iv)
		if neg {
			f = -f
		}
		return f
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// PrimitiveHint selects which coercion ToPrimitive prefers first.
type PrimitiveHint int

const (
	DefaultHint PrimitiveHint = iota
	NumberHint
	StringHint
)

// ObjectPrimitiveConverter lets the heap/evaluator supply the
// @@toPrimitive / valueOf / toString dance without this package
// depending on the heap (which would create an import cycle). The
// evaluator installs one converter per runtime.
type ObjectPrimitiveConverter func(obj Object, hint PrimitiveHint) (Value, error)

// ToPrimitive converts v to a primitive, consulting conv for Object
// values. Non-object values are returned unchanged, per spec.
func ToPrimitive(v Value, hint PrimitiveHint, conv ObjectPrimitiveConverter) (Value, error) {
	obj, ok := v.(Object)
	if !ok {
		return v, nil
	}
	if conv == nil {
		return String("[object Object]"), nil
	}
	return conv(obj, hint)
}

// ToNumber implements spec.md §4.1's ToNumber for primitives. Object
// conversion requires ToPrimitive first (callers needing that should
// call ToPrimitive then ToNumber on the result); BigInt->Number is
// rejected, matching spec (TypeError is the caller's responsibility to
// raise when this returns ok=false).
func ToNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Undefined:
		return math.NaN(), true
	case Null:
		return 0, true
	case Boolean:
		if t {
			return 1, true
		}
		return 0, true
	case Number:
		return float64(t), true
	case String:
		return ToNumberFromString(string(t)), true
	case BigInt:
		return 0, false
	default:
		return 0, false
	}
}

// ToStringPrimitive implements ToString for primitive values (mirrors
// ToNumber's primitive-only contract; Object conversion goes through
// ToPrimitive with StringHint first).
func ToStringPrimitive(v Value) (string, bool) {
	switch t := v.(type) {
	case Undefined:
		return "undefined", true
	case Null:
		return "null", true
	case Boolean:
		if t {
			return "true", true
		}
		return "false", true
	case Number:
		return FormatNumber(float64(t)), true
	case String:
		return string(t), true
	case BigInt:
		return t.V.String(), true
	default:
		return "", false
	}
}

// FormatNumber renders a float64 the way Number.prototype.toString()
// does for the default radix: NaN, ±Infinity, and the shortest
// round-tripping decimal form otherwise, with −0 printing as "0" (only
// SameValue distinguishes −0 from +0; ToString does not).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	if a := math.Abs(f); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	// Go writes "1e-07"/"1e+21"; JS drops the exponent's leading zeros.
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// SameValue implements the SameValue algorithm: NaN equals NaN, and +0
// is distinguished from −0.
func SameValue(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Undefined, Null:
		return true
	case Boolean:
		return av == b.(Boolean)
	case Number:
		bv := b.(Number)
		if math.IsNaN(float64(av)) && math.IsNaN(float64(bv)) {
			return true
		}
		if av == 0 && bv == 0 {
			return math.Signbit(float64(av)) == math.Signbit(float64(bv))
		}
		return av == bv
	case BigInt:
		return av.V.Cmp(b.(BigInt).V) == 0
	case String:
		return av == b.(String)
	case SymbolValue:
		return av.Sym == b.(SymbolValue).Sym
	case Object:
		return av.Ref == b.(Object).Ref
	default:
		return false
	}
}

// SameValueZero is SameValue except +0 and −0 compare equal (used by
// Array.prototype.includes, Map/Set key comparison).
func SameValueZero(a, b Value) bool {
	if an, ok := a.(Number); ok {
		if bn, ok := b.(Number); ok {
			if math.IsNaN(float64(an)) && math.IsNaN(float64(bn)) {
				return true
			}
			return an == bn
		}
	}
	return SameValue(a, b)
}
