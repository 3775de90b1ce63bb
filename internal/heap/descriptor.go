package heap

import "github.com/cwbudde/go-ecma/internal/value"

// Descriptor is a property descriptor (spec.md §3): either a data
// descriptor (Value/Writable populated) or an accessor descriptor
// (Get/Set populated). The two are distinguished structurally by which
// fields carry a value, following the teacher's union-by-presence
// pattern used for PropertyDescriptor-like metadata.
type Descriptor struct {
	Value        value.Value
	Get          value.Value // a callable Object, or nil
	Set          value.Value // a callable Object, or nil
	Writable     bool
	Enumerable   bool
	Configurable bool
	IsAccessor   bool
}

// DataDescriptor builds a data property descriptor.
func DataDescriptor(v value.Value, writable, enumerable, configurable bool) Descriptor {
	return Descriptor{Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable}
}

// AccessorDescriptor builds an accessor property descriptor. get/set may
// be nil (value.Undef) when only one of the pair is defined.
func AccessorDescriptor(get, set value.Value, enumerable, configurable bool) Descriptor {
	return Descriptor{Get: get, Set: set, Enumerable: enumerable, Configurable: configurable, IsAccessor: true}
}
