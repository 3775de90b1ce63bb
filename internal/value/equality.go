package value

import (
	"math"
	"math/big"
	"strings"
)

// StrictEquals implements `===`: compares kind first, then value. NaN is
// never strictly equal to itself (unlike SameValue); +0 === −0.
func StrictEquals(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Undefined, Null:
		return true
	case Boolean:
		return av == b.(Boolean)
	case Number:
		return av == b.(Number)
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

// AbstractEquals implements `==`'s coercion ladder. conv resolves
// Object->primitive when one side is an object and the other is a
// primitive; it may be nil only when neither operand is an Object.
func AbstractEquals(a, b Value, conv ObjectPrimitiveConverter) (bool, error) {
	if a.Kind() == b.Kind() {
		return StrictEquals(a, b), nil
	}

	// null == undefined, and neither equals anything else via coercion.
	_, aNull := a.(Null)
	_, aUndef := a.(Undefined)
	_, bNull := b.(Null)
	_, bUndef := b.(Undefined)
	if (aNull || aUndef) && (bNull || bUndef) {
		return true, nil
	}
	if aNull || aUndef || bNull || bUndef {
		return false, nil
	}

	// Number <-> String: coerce the string to a number.
	if an, ok := a.(Number); ok {
		if bs, ok := b.(String); ok {
			return float64(an) == ToNumberFromString(string(bs)), nil
		}
	}
	if as, ok := a.(String); ok {
		if bn, ok := b.(Number); ok {
			return ToNumberFromString(string(as)) == float64(bn), nil
		}
	}

	// BigInt <-> String.
	if abi, ok := a.(BigInt); ok {
		if bs, ok := b.(String); ok {
			bi, ok := parseBigIntString(string(bs))
			return ok && abi.V.Cmp(bi) == 0, nil
		}
	}
	if as, ok := a.(String); ok {
		if bbi, ok := b.(BigInt); ok {
			ai, ok := parseBigIntString(string(as))
			return ok && ai.Cmp(bbi.V) == 0, nil
		}
	}

	// BigInt <-> Number: compare mathematically (excluding NaN/Infinity).
	if abi, ok := a.(BigInt); ok {
		if bn, ok := b.(Number); ok {
			return bigIntEqualsNumber(abi, bn), nil
		}
	}
	if an, ok := a.(Number); ok {
		if bbi, ok := b.(BigInt); ok {
			return bigIntEqualsNumber(bbi, an), nil
		}
	}

	// Boolean coerces to Number on either side, then the ladder retries.
	if ab, ok := a.(Boolean); ok {
		return AbstractEquals(boolToNumber(ab), b, conv)
	}
	if bb, ok := b.(Boolean); ok {
		return AbstractEquals(a, boolToNumber(bb), conv)
	}

	// Object <-> primitive: convert the object via ToPrimitive and retry.
	if ao, ok := a.(Object); ok {
		if !isObjectKind(b) {
			prim, err := ToPrimitive(ao, DefaultHint, conv)
			if err != nil {
				return false, err
			}
			return AbstractEquals(prim, b, conv)
		}
	}
	if bo, ok := b.(Object); ok {
		if !isObjectKind(a) {
			prim, err := ToPrimitive(bo, DefaultHint, conv)
			if err != nil {
				return false, err
			}
			return AbstractEquals(a, prim, conv)
		}
	}

	return false, nil
}

func isObjectKind(v Value) bool {
	_, ok := v.(Object)
	return ok
}

func boolToNumber(b Boolean) Number {
	if b {
		return 1
	}
	return 0
}

func bigIntEqualsNumber(bi BigInt, n Number) bool {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	if f != math.Trunc(f) {
		return false
	}
	bf := new(big.Float).SetInt(bi.V)
	nf := big.NewFloat(f)
	return bf.Cmp(nf) == 0
}

// parseBigIntString parses a decimal BigInt literal the way the BigInt()
// constructor would from a string (used by == coercion against strings).
func parseBigIntString(s string) (*big.Int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), true
	}
	i, ok := new(big.Int).SetString(s, 0)
	return i, ok
}
