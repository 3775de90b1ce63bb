package builtins

import (
	"testing"

	"github.com/cwbudde/go-ecma/internal/value"
)

func TestStringLocaleCompare(t *testing.T) {
	ev := newTestEvaluator()
	cases := []struct {
		name   string
		a, b   string
		locale string
		want   int
	}{
		{"equal", "apple", "apple", "", 0},
		{"less", "apple", "banana", "", -1},
		{"greater", "banana", "apple", "", 1},
		{"explicit locale", "café", "cafe", "fr", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			args := []value.Value{value.String(c.b)}
			if c.locale != "" {
				args = append(args, value.String(c.locale))
			}
			got, err := stringLocaleCompare(ev.RT, value.String(c.a), args)
			if err != nil {
				t.Fatalf("localeCompare error: %v", err)
			}
			n, ok := got.(value.Number)
			if !ok {
				t.Fatalf("localeCompare did not return a number: %v", got)
			}
			switch {
			case c.want == 0 && n != 0:
				t.Fatalf("localeCompare(%q, %q) = %v, want 0", c.a, c.b, n)
			case c.want < 0 && n >= 0:
				t.Fatalf("localeCompare(%q, %q) = %v, want negative", c.a, c.b, n)
			case c.want > 0 && n <= 0:
				t.Fatalf("localeCompare(%q, %q) = %v, want positive", c.a, c.b, n)
			}
		})
	}
}

func TestStringNormalize(t *testing.T) {
	ev := newTestEvaluator()
	// "café" decomposed (e + combining acute) should fold to the
	// precomposed form under NFC.
	decomposed := "café"
	got, err := stringNormalize(ev.RT, value.String(decomposed), []value.Value{value.String("NFC")})
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	s, _ := value.ToStringPrimitive(got)
	if s != "café" {
		t.Fatalf("normalize(NFC) = %q, want %q", s, "café")
	}
}

func TestStringNormalizeRejectsUnknownForm(t *testing.T) {
	ev := newTestEvaluator()
	if _, err := stringNormalize(ev.RT, value.String("x"), []value.Value{value.String("NFZ")}); err == nil {
		t.Fatal("expected an error for an unknown normalization form")
	}
}
