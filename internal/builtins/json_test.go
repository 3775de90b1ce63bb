package builtins

import (
	"testing"

	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/value"
)

func newTestEvaluator() *evaluator.Evaluator {
	ev := evaluator.New()
	Install(ev)
	return ev
}

func globalFunc(t *testing.T, ev *evaluator.Evaluator, globalName, methodName string) value.Value {
	t.Helper()
	g, err := ev.RT.Global.Get(globalName)
	if err != nil {
		t.Fatalf("global %s not defined: %v", globalName, err)
	}
	obj, ok := g.(value.Object)
	if !ok {
		t.Fatalf("global %s is not an object", globalName)
	}
	fn, err := ev.RT.Heap.Get(obj.Ref, heap.StringKey(methodName), g, ev)
	if err != nil {
		t.Fatalf("%s.%s not defined: %v", globalName, methodName, err)
	}
	return fn
}

func TestJSONStringifyPrimitives(t *testing.T) {
	ev := newTestEvaluator()
	stringify := globalFunc(t, ev, "JSON", "stringify")

	cases := []struct {
		name string
		in   value.Value
		want string
	}{
		{"string", value.String("hi"), `"hi"`},
		{"number", value.Number(42), `42`},
		{"true", value.Boolean(true), `true`},
		{"null", value.Nul, `null`},
		{"undefined omitted", value.Undef, ``},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ev.Invoke(stringify, value.Undef, []value.Value{c.in})
			if err != nil {
				t.Fatalf("stringify error: %v", err)
			}
			s, _ := value.ToStringPrimitive(got)
			if c.want == "" {
				if _, ok := got.(value.Undefined); !ok {
					t.Fatalf("expected undefined result, got %v", got)
				}
				return
			}
			if s != c.want {
				t.Fatalf("stringify(%v) = %q, want %q", c.in, s, c.want)
			}
		})
	}
}

func TestJSONRoundTripObject(t *testing.T) {
	ev := newTestEvaluator()
	stringify := globalFunc(t, ev, "JSON", "stringify")
	parse := globalFunc(t, ev, "JSON", "parse")

	objProto, hasProto := ev.RT.Prototypes["Object"]
	objID := ev.RT.Heap.NewPlainObject(objProto, hasProto, "Object")
	ev.RT.Heap.DefineOwnProperty(objID, heap.StringKey("name"), heap.DataDescriptor(value.String("jsrun"), true, true, true))
	ev.RT.Heap.DefineOwnProperty(objID, heap.StringKey("count"), heap.DataDescriptor(value.Number(3), true, true, true))
	obj := value.Object{Ref: objID}

	encoded, err := ev.Invoke(stringify, value.Undef, []value.Value{obj})
	if err != nil {
		t.Fatalf("stringify error: %v", err)
	}

	decoded, err := ev.Invoke(parse, value.Undef, []value.Value{encoded})
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	decodedObj, ok := decoded.(value.Object)
	if !ok {
		t.Fatalf("parse did not return an object: %v", decoded)
	}
	name, err := ev.RT.Heap.Get(decodedObj.Ref, heap.StringKey("name"), decoded, ev)
	if err != nil {
		t.Fatalf("missing name property: %v", err)
	}
	if s, _ := value.ToStringPrimitive(name); s != "jsrun" {
		t.Fatalf("round-tripped name = %q, want %q", s, "jsrun")
	}
}

func TestJSONParseRejectsInvalidInput(t *testing.T) {
	ev := newTestEvaluator()
	parse := globalFunc(t, ev, "JSON", "parse")
	if _, err := ev.Invoke(parse, value.Undef, []value.Value{value.String("{not json")}); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
}

func TestJSONStringifyWithIndent(t *testing.T) {
	ev := newTestEvaluator()
	stringify := globalFunc(t, ev, "JSON", "stringify")

	objProto, hasProto := ev.RT.Prototypes["Object"]
	objID := ev.RT.Heap.NewPlainObject(objProto, hasProto, "Object")
	ev.RT.Heap.DefineOwnProperty(objID, heap.StringKey("a"), heap.DataDescriptor(value.Number(1), true, true, true))

	got, err := ev.Invoke(stringify, value.Undef, []value.Value{value.Object{Ref: objID}, value.Undef, value.Number(2)})
	if err != nil {
		t.Fatalf("stringify error: %v", err)
	}
	s, _ := value.ToStringPrimitive(got)
	if s == `{"a":1}` {
		t.Fatalf("expected indented output, got compact form %q", s)
	}
}
