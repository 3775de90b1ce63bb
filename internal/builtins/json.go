package builtins

import (
	"math"
	"strings"

	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// installJSON installs the global JSON object: parse/stringify backed
// by tidwall/gjson and tidwall/sjson (no allocation into a Go
// map[string]interface{} intermediate — values are read and written a
// property at a time, the way the teacher's JSON connector
// (internal/interp/builtins/json.go, grounded on
// internal/bytecode/vm_builtins_json.go in the wider pack) streams
// through a document rather than round-tripping a generic tree), plus a
// prettyPrint convenience wrapping tidwall/pretty.
//
// Replacer/reviver callback parameters are accepted (so call sites
// matching the global signature do not throw an arity error) but not
// invoked — only the array-of-keys replacer form is honored. See
// DESIGN.md for the scope decision.
func installJSON(ev *evaluator.Evaluator) {
	objProto, hasObjProto := ev.RT.Prototypes["Object"]
	jsonID := ev.RT.Heap.NewPlainObject(objProto, hasObjProto, "JSON")
	defineMethod(ev, jsonID, "parse", 1, jsonParse)
	defineMethod(ev, jsonID, "stringify", 3, jsonStringify(ev))
	defineMethod(ev, jsonID, "prettyPrint", 1, jsonPrettyPrint)
	ev.RT.Global.DefineGlobal("JSON", value.Object{Ref: jsonID})
}

// jsonParse implements JSON.parse(text): gjson.Parse walks the document
// once; jsonToValue mirrors its Result tree into heap values.
func jsonParse(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	text, _ := value.ToStringPrimitive(arg(args, 0))
	if !gjson.Valid(text) {
		return value.Undef, typeErrorf("JSON.parse: invalid JSON")
	}
	return jsonToValue(rt, gjson.Parse(text)), nil
}

func jsonToValue(rt *runtime.Runtime, r gjson.Result) value.Value {
	switch r.Type {
	case gjson.Null:
		return value.Nul
	case gjson.False:
		return value.Boolean(false)
	case gjson.True:
		return value.Boolean(true)
	case gjson.Number:
		return value.Number(r.Num)
	case gjson.String:
		return value.String(r.Str)
	}
	if r.IsArray() {
		var elems []value.Value
		for _, item := range r.Array() {
			elems = append(elems, jsonToValue(rt, item))
		}
		proto, hasProto := rt.Prototypes["Array"]
		id := rt.Heap.NewArray(proto, hasProto, elems)
		return value.Object{Ref: id}
	}
	if r.IsObject() {
		proto, hasProto := rt.Prototypes["Object"]
		id := rt.Heap.NewPlainObject(proto, hasProto, "Object")
		r.ForEach(func(k, v gjson.Result) bool {
			rt.Heap.DefineOwnProperty(id, heap.StringKey(k.Str), heap.DataDescriptor(jsonToValue(rt, v), true, true, true))
			return true
		})
		return value.Object{Ref: id}
	}
	return value.Nul
}

// jsonStringify implements JSON.stringify(value, replacer, space).
func jsonStringify(ev *evaluator.Evaluator) evaluator.NativeFunc {
	return func(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
		var keyFilter map[string]bool
		if arr, ok := arg(args, 1).(value.Object); ok {
			if o, ok := rt.Heap.Deref(arr.Ref); ok {
				if slot, ok := o.Slot.(*heap.ArraySlot); ok {
					keyFilter = make(map[string]bool, len(slot.Elements))
					for _, el := range slot.Elements {
						if s, ok := el.(value.String); ok {
							keyFilter[string(s)] = true
						}
					}
				}
			}
		}
		indent := jsonIndent(arg(args, 2))

		raw, ok, err := encodeJSONValue(ev, arg(args, 0), keyFilter)
		if err != nil {
			return value.Undef, err
		}
		if !ok {
			return value.Undef, nil
		}
		if indent == "" {
			return value.String(raw), nil
		}
		opts := *pretty.DefaultOptions
		opts.Indent = indent
		return value.String(strings.TrimRight(string(pretty.PrettyOptions([]byte(raw), &opts)), "\n")), nil
	}
}

func jsonIndent(space value.Value) string {
	switch s := space.(type) {
	case value.Number:
		n := int(s)
		if n <= 0 {
			return ""
		}
		if n > 10 {
			n = 10
		}
		return strings.Repeat(" ", n)
	case value.String:
		if len(s) > 10 {
			return string(s)[:10]
		}
		return string(s)
	default:
		return ""
	}
}

// encodeJSONValue returns the raw JSON text for v (ok=false when v must
// be omitted entirely: undefined, a function, or a symbol, per
// JSON.stringify's own abstract operation).
func encodeJSONValue(ev *evaluator.Evaluator, v value.Value, keyFilter map[string]bool) (string, bool, error) {
	if v == nil {
		return "null", true, nil
	}
	switch t := v.(type) {
	case value.Undefined:
		return "", false, nil
	case value.Null:
		return "null", true, nil
	case value.Boolean:
		if t {
			return "true", true, nil
		}
		return "false", true, nil
	case value.Number:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "null", true, nil
		}
		return value.FormatNumber(f), true, nil
	case value.BigInt:
		return "", false, typeErrorf("JSON.stringify: cannot serialize BigInt")
	case value.String:
		doc, err := sjson.Set("{}", "v", string(t))
		if err != nil {
			return "", false, err
		}
		return gjson.Get(doc, "v").Raw, true, nil
	case value.SymbolValue:
		return "", false, nil
	case value.Object:
		return encodeJSONObject(ev, t, keyFilter)
	default:
		return "", false, nil
	}
}

func encodeJSONObject(ev *evaluator.Evaluator, obj value.Object, keyFilter map[string]bool) (string, bool, error) {
	o, ok := ev.RT.Heap.Deref(obj.Ref)
	if !ok {
		return "null", true, nil
	}
	if _, isFn := o.Slot.(*heap.FunctionSlot); isFn {
		return "", false, nil
	}

	if toJSON, err := ev.RT.Heap.Get(obj.Ref, heap.StringKey("toJSON"), obj, ev); err == nil {
		if fo, ok := toJSON.(value.Object); ok {
			if fd, ok := ev.RT.Heap.Deref(fo.Ref); ok {
				if _, ok := fd.Slot.(*heap.FunctionSlot); ok {
					replaced, err := ev.Invoke(toJSON, obj, []value.Value{value.String("")})
					if err != nil {
						return "", false, err
					}
					return encodeJSONValue(ev, replaced, keyFilter)
				}
			}
		}
	}

	if arrSlot, ok := o.Slot.(*heap.ArraySlot); ok {
		doc := "[]"
		for _, el := range arrSlot.Elements {
			raw, ok, err := encodeJSONValue(ev, el, keyFilter)
			if err != nil {
				return "", false, err
			}
			if !ok {
				raw = "null"
			}
			var serr error
			doc, serr = sjson.SetRaw(doc, "-1", raw)
			if serr != nil {
				return "", false, serr
			}
		}
		return doc, true, nil
	}

	doc := "{}"
	var rangeErr error
	o.Props().Range(func(k heap.Key, d heap.Descriptor) bool {
		if k.IsSymbol() || !d.Enumerable {
			return true
		}
		if keyFilter != nil && !keyFilter[k.String()] {
			return true
		}
		propVal, err := ev.RT.Heap.Get(obj.Ref, k, obj, ev)
		if err != nil {
			rangeErr = err
			return false
		}
		raw, ok, err := encodeJSONValue(ev, propVal, keyFilter)
		if err != nil {
			rangeErr = err
			return false
		}
		if !ok {
			return true
		}
		doc, err = sjson.SetRaw(doc, jsonPathEscape(k.String()), raw)
		if err != nil {
			rangeErr = err
			return false
		}
		return true
	})
	if rangeErr != nil {
		return "", false, rangeErr
	}
	return doc, true, nil
}

var jsonPathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`)

func jsonPathEscape(key string) string { return jsonPathEscaper.Replace(key) }

// jsonPrettyPrint re-indents an already-serialized JSON string using
// tidwall/pretty's default style.
func jsonPrettyPrint(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	text, _ := value.ToStringPrimitive(arg(args, 0))
	if !gjson.Valid(text) {
		return value.Undef, typeErrorf("JSON.prettyPrint: invalid JSON")
	}
	return value.String(strings.TrimRight(string(pretty.Pretty([]byte(text))), "\n")), nil
}
