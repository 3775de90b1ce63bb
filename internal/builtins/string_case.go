package builtins

import (
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// installStringCase adds String.prototype.localeCompare and
// String.prototype.normalize, grounded on the teacher's
// CompareLocaleStr (internal/interp/builtins/strings_compare.go,
// internal/bytecode/vm_builtins_string.go): golang.org/x/text/collate
// for locale-aware ordering, golang.org/x/text/unicode/norm for the
// four Unicode normalization forms.
func installStringCase(ev *evaluator.Evaluator) {
	proto, hasProto := ev.RT.Prototypes["String"]
	if !hasProto {
		return
	}
	defineMethod(ev, proto, "localeCompare", 1, stringLocaleCompare)
	defineMethod(ev, proto, "normalize", 0, stringNormalize)
}

func stringThis(this value.Value) (string, error) {
	switch t := this.(type) {
	case value.String:
		return string(t), nil
	default:
		s, ok := value.ToStringPrimitive(this)
		if !ok {
			return "", typeErrorf("String.prototype method called on non-string")
		}
		return s, nil
	}
}

// stringLocaleCompare implements String.prototype.localeCompare(that,
// locale), following the teacher's CompareLocaleStr signature: an
// explicit BCP-47 locale tag (defaulting to English on a missing or
// unparsable tag, exactly as the teacher does) rather than the full
// Intl.Collator options bag.
func stringLocaleCompare(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	s, err := stringThis(this)
	if err != nil {
		return value.Undef, err
	}
	other, _ := value.ToStringPrimitive(arg(args, 0))

	localeTag := language.English
	if localeArg, ok := arg(args, 1).(value.String); ok && localeArg != "" {
		if tag, err := language.Parse(string(localeArg)); err == nil {
			localeTag = tag
		}
	}
	col := collate.New(localeTag)
	return value.Number(float64(col.CompareString(s, other))), nil
}

// stringNormalize implements String.prototype.normalize(form), form
// one of "NFC" (default), "NFD", "NFKC", "NFKD".
func stringNormalize(rt *runtime.Runtime, this value.Value, args []value.Value) (value.Value, error) {
	s, err := stringThis(this)
	if err != nil {
		return value.Undef, err
	}
	form := "NFC"
	if formArg, ok := arg(args, 0).(value.String); ok && formArg != "" {
		form = string(formArg)
	}
	var f norm.Form
	switch form {
	case "NFC":
		f = norm.NFC
	case "NFD":
		f = norm.NFD
	case "NFKC":
		f = norm.NFKC
	case "NFKD":
		f = norm.NFKD
	default:
		return value.Undef, typeErrorf("String.prototype.normalize: invalid normalization form %q", form)
	}
	return value.String(f.String(s)), nil
}
