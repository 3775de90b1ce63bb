package heap

import (
	"github.com/cwbudde/go-ecma/internal/value"
)

// Invoker calls a callable Value with the given `this` and arguments and
// returns its result or an error. The evaluator supplies this so that
// property machinery can invoke accessor getters/setters and proxy traps
// without the heap package depending on the evaluator (which would
// create an import cycle: evaluator -> heap -> evaluator).
type Invoker interface {
	Invoke(callee value.Value, this value.Value, args []value.Value) (value.Value, error)
	// ProxyTrap looks up and, if present, invokes the named trap on a
	// Proxy's handler; ok is false when the handler has no such trap
	// (the caller should then forward to Target).
	ProxyTrap(handler Ref, trap string, args []value.Value) (result value.Value, ok bool, err error)
}

// Get implements spec.md §4.3's Get: walk the object and its prototype
// chain; return a data descriptor's value, invoke an accessor's getter
// with receiver as `this`, or return Undefined if no descriptor is
// found anywhere in the chain.
func (h *Heap) Get(start Ref, key Key, receiver value.Value, inv Invoker) (value.Value, error) {
	id := start
	visited := map[Ref]bool{}
	for {
		if visited[id] {
			return value.Undef, nil
		}
		visited[id] = true
		obj, ok := h.Deref(id)
		if !ok {
			return value.Undef, nil
		}
		if ps, isProxy := obj.Slot.(*ProxySlot); isProxy {
			return h.proxyGet(ps, key, receiver, inv)
		}
		if d, ok := obj.props.Get(key); ok {
			if d.IsAccessor {
				if d.Get == nil || d.Get.Kind() == value.KindUndefined {
					return value.Undef, nil
				}
				return inv.Invoke(d.Get, receiver, nil)
			}
			return d.Value, nil
		}
		if as, isArr := obj.Slot.(*ArraySlot); isArr && !key.IsSymbol() {
			if v, ok := arrayIndexGet(as, key.String()); ok {
				return v, nil
			}
		}
		if !obj.HasProto {
			return value.Undef, nil
		}
		id = obj.Proto
	}
}

func arrayIndexGet(as *ArraySlot, key string) (value.Value, bool) {
	if key == "length" {
		return value.Number(float64(len(as.Elements))), true
	}
	idx, ok := parseArrayIndex(key)
	if !ok || idx >= len(as.Elements) {
		return value.Undef, false
	}
	v := as.Elements[idx]
	if v == nil {
		return value.Undef, false
	}
	return v, true
}

func parseArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	return n, true
}

// Set implements spec.md §4.3's Set: walk the chain to find an existing
// descriptor. An accessor's setter is invoked; a data descriptor found on
// a prototype with Writable=false is refused; otherwise a descriptor is
// created or updated on the receiver object itself.
func (h *Heap) Set(start Ref, key Key, v value.Value, receiver Ref, inv Invoker) (bool, error) {
	recv, ok := h.Deref(receiver)
	if !ok {
		return false, nil
	}
	if ps, isProxy := recv.Slot.(*ProxySlot); isProxy {
		return h.proxySet(ps, key, v, receiver, inv)
	}

	id := start
	visited := map[Ref]bool{}
	for {
		if visited[id] {
			break
		}
		visited[id] = true
		obj, ok := h.Deref(id)
		if !ok {
			break
		}
		if d, ok := obj.props.Get(key); ok {
			if d.IsAccessor {
				if d.Set == nil || d.Set.Kind() == value.KindUndefined {
					return false, nil
				}
				_, err := inv.Invoke(d.Set, value.Object{Ref: receiver}, []value.Value{v})
				return err == nil, err
			}
			if !d.Writable && id != receiver {
				return false, nil
			}
			if id == receiver {
				d.Value = v
				obj.props.Set(key, d)
				return true, nil
			}
			break
		}
		if as, isArr := obj.Slot.(*ArraySlot); isArr && !key.IsSymbol() && id == receiver {
			if setArrayIndex(as, key.String(), v) {
				return true, nil
			}
		}
		if !obj.HasProto {
			break
		}
		id = obj.Proto
	}

	if !recv.Extensible {
		return false, nil
	}
	if as, isArr := recv.Slot.(*ArraySlot); isArr && !key.IsSymbol() {
		if setArrayIndex(as, key.String(), v) {
			return true, nil
		}
	}
	recv.props.Set(key, DataDescriptor(v, true, true, true))
	return true, nil
}

func setArrayIndex(as *ArraySlot, key string, v value.Value) bool {
	if key == "length" {
		n, ok := value.ToNumber(v)
		if !ok || n < 0 {
			return false
		}
		newLen := int(n)
		if newLen < len(as.Elements) {
			as.Elements = as.Elements[:newLen]
		} else {
			for len(as.Elements) < newLen {
				as.Elements = append(as.Elements, nil)
			}
		}
		return true
	}
	idx, ok := parseArrayIndex(key)
	if !ok {
		return false
	}
	for len(as.Elements) <= idx {
		as.Elements = append(as.Elements, nil)
	}
	as.Elements[idx] = v
	return true
}

// Has implements spec.md §4.3's Has: a chain walk; any descriptor hit
// (own or inherited) answers true.
func (h *Heap) Has(start Ref, key Key) bool {
	id := start
	visited := map[Ref]bool{}
	for {
		if visited[id] {
			return false
		}
		visited[id] = true
		obj, ok := h.Deref(id)
		if !ok {
			return false
		}
		if obj.props.Has(key) {
			return true
		}
		if as, isArr := obj.Slot.(*ArraySlot); isArr && !key.IsSymbol() {
			if key.String() == "length" {
				return true
			}
			if idx, ok := parseArrayIndex(key.String()); ok && idx < len(as.Elements) && as.Elements[idx] != nil {
				return true
			}
		}
		if !obj.HasProto {
			return false
		}
		id = obj.Proto
	}
}

// Delete implements spec.md §4.3's Delete: a configurable data or
// accessor property is removed and true is returned; a non-configurable
// property is refused (the caller decides whether to return false or
// throw TypeError, per strict mode).
func (h *Heap) Delete(id Ref, key Key) bool {
	obj, ok := h.Deref(id)
	if !ok {
		return true
	}
	d, ok := obj.props.Get(key)
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	obj.props.Delete(key)
	return true
}

// DefineOwnProperty installs d directly on id's own property map,
// bypassing the prototype chain (used by Object.defineProperty and by
// class-field/method installation). It enforces non-extensible /
// sealed / frozen refusal for *new* keys; redefining an existing
// configurable key is always permitted.
func (h *Heap) DefineOwnProperty(id Ref, key Key, d Descriptor) bool {
	obj, ok := h.Deref(id)
	if !ok {
		return false
	}
	if existing, has := obj.props.Get(key); has {
		if !existing.Configurable {
			if existing.IsAccessor != d.IsAccessor {
				return false
			}
			if !existing.IsAccessor && !existing.Writable && d.Writable {
				return false
			}
		}
		obj.props.Set(key, d)
		return true
	}
	if !obj.Extensible {
		return false
	}
	obj.props.Set(key, d)
	return true
}
