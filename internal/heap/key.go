package heap

import "github.com/cwbudde/go-ecma/internal/value"

// Key is a property key: either a string or a symbol identity. Object
// property maps are keyed on Key so that symbol-keyed properties never
// collide with string-keyed ones.
type Key struct {
	str string
	sym *value.Symbol
}

// StringKey builds a string-keyed Key.
func StringKey(s string) Key { return Key{str: s} }

// SymbolKey builds a symbol-keyed Key.
func SymbolKey(s *value.Symbol) Key { return Key{sym: s} }

// IsSymbol reports whether the key is symbol-keyed.
func (k Key) IsSymbol() bool { return k.sym != nil }

// String returns the string form (only meaningful when !IsSymbol()).
func (k Key) String() string { return k.str }

// Symbol returns the symbol form (only meaningful when IsSymbol()).
func (k Key) Symbol() *value.Symbol { return k.sym }

// KeyFromValue converts a property-access Value (a String or
// SymbolValue) into a Key. ok is false for any other value kind.
func KeyFromValue(v value.Value) (Key, bool) {
	switch t := v.(type) {
	case value.String:
		return StringKey(string(t)), true
	case value.SymbolValue:
		return SymbolKey(t.Sym), true
	default:
		return Key{}, false
	}
}

// Well-known symbol-keyed property names, package-level and shared by
// every heap.
var (
	SymIterator      = value.NewSymbol("Symbol.iterator")
	SymAsyncIterator = value.NewSymbol("Symbol.asyncIterator")
	SymToPrimitive   = value.NewSymbol("Symbol.toPrimitive")
	SymHasInstance   = value.NewSymbol("Symbol.hasInstance")
	SymToStringTag   = value.NewSymbol("Symbol.toStringTag")
	SymDispose       = value.NewSymbol("Symbol.dispose")
	SymAsyncDispose  = value.NewSymbol("Symbol.asyncDispose")
)
