package heap

import "github.com/cwbudde/go-ecma/internal/value"

// proxyGet dispatches the `get` trap, falling back to Target when the
// handler has no such trap (spec.md §4.3).
func (h *Heap) proxyGet(p *ProxySlot, key Key, receiver value.Value, inv Invoker) (value.Value, error) {
	args := []value.Value{value.Object{Ref: p.Target}, keyToValue(key), receiver}
	if res, ok, err := inv.ProxyTrap(p.Handler, "get", args); ok || err != nil {
		return res, err
	}
	return h.Get(p.Target, key, receiver, inv)
}

// proxySet dispatches the `set` trap, falling back to Target.
func (h *Heap) proxySet(p *ProxySlot, key Key, v value.Value, receiver Ref, inv Invoker) (bool, error) {
	args := []value.Value{value.Object{Ref: p.Target}, keyToValue(key), v, value.Object{Ref: receiver}}
	if res, ok, err := inv.ProxyTrap(p.Handler, "set", args); ok || err != nil {
		return value.ToBoolean(res), err
	}
	return h.Set(p.Target, key, v, p.Target, inv)
}

// ProxyHas dispatches the `has` trap, falling back to Target.
func (h *Heap) ProxyHas(p *ProxySlot, key Key, inv Invoker) (bool, error) {
	args := []value.Value{value.Object{Ref: p.Target}, keyToValue(key)}
	if res, ok, err := inv.ProxyTrap(p.Handler, "has", args); ok || err != nil {
		return value.ToBoolean(res), err
	}
	return h.Has(p.Target, key), nil
}

// ProxyDeleteProperty dispatches the `deleteProperty` trap, falling back
// to Target.
func (h *Heap) ProxyDeleteProperty(p *ProxySlot, key Key, inv Invoker) (bool, error) {
	args := []value.Value{value.Object{Ref: p.Target}, keyToValue(key)}
	if res, ok, err := inv.ProxyTrap(p.Handler, "deleteProperty", args); ok || err != nil {
		return value.ToBoolean(res), err
	}
	return h.Delete(p.Target, key), nil
}

func keyToValue(k Key) value.Value {
	if k.IsSymbol() {
		return value.SymbolValue{Sym: k.Symbol()}
	}
	return value.String(k.String())
}

// IsProxy reports whether id is a Proxy instance and returns its slot.
func (h *Heap) IsProxy(id Ref) (*ProxySlot, bool) {
	obj, ok := h.Deref(id)
	if !ok {
		return nil, false
	}
	ps, ok := obj.Slot.(*ProxySlot)
	return ps, ok
}

// NewProxy allocates a Proxy instance wrapping target/handler.
func (h *Heap) NewProxy(target, handler Ref) Ref {
	o := &Object{
		Class:      "Proxy",
		Extensible: true,
		props:      NewPropertyMap(),
		Slot:       &ProxySlot{Target: target, Handler: handler},
	}
	return h.Allocate(o)
}
