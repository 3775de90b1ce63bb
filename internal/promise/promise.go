package promise

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/value"
)

// Controller drives the promise state machine over a heap: creating
// Promise instances, settling them, attaching reactions, and scheduling
// their firing onto a shared microtask Queue. It is the promise.rs
// fulfill_promise/reject_promise/promise_then trio re-homed onto this
// module's heap.Heap + Invoker abstraction.
type Controller struct {
	H     *heap.Heap
	Inv   heap.Invoker
	Q     *Queue
	Proto heap.Ref // Promise.prototype, installed by the runtime/builtins at startup

	// OnUnhandledRejection, if set, is invoked for a promise rejected
	// while it has no reject reactions: the rejection queues a microtask
	// that calls it if the promise is still unhandled when that microtask
	// runs (spec.md §7's unhandled-rejection channel). The
	// runtime wires this to its UnhandledRejections reporting.
	OnUnhandledRejection func(promiseID heap.Ref, reason value.Value)
}

// NewPromise allocates a fresh Pending promise object.
func (c *Controller) NewPromise() heap.Ref {
	id := c.H.NewPlainObject(c.Proto, true, "Promise")
	c.H.MustDeref(id).Slot = &heap.PromiseSlot{State: heap.PromisePending}
	return id
}

// IsPromise reports whether id is a Promise instance, returning its
// slot.
func (c *Controller) IsPromise(id heap.Ref) (*heap.PromiseSlot, bool) {
	obj, ok := c.H.Deref(id)
	if !ok {
		return nil, false
	}
	ps, ok := obj.Slot.(*heap.PromiseSlot)
	return ps, ok
}

func (c *Controller) promiseSlot(id heap.Ref) *heap.PromiseSlot {
	obj, ok := c.H.Deref(id)
	if !ok {
		return nil
	}
	ps, _ := obj.Slot.(*heap.PromiseSlot)
	return ps
}

// IsCallable reports whether v is a heap object whose Slot is a
// FunctionSlot (the evaluator installs every callable — native or
// user — this way).
func IsCallable(h *heap.Heap, v value.Value) bool {
	obj, ok := v.(value.Object)
	if !ok {
		return false
	}
	o, ok := h.Deref(obj.Ref)
	if !ok {
		return false
	}
	_, ok = o.Slot.(*heap.FunctionSlot)
	return ok
}

// Resolve settles id Fulfilled with v, unless v is itself a thenable —
// in which case assimilation is scheduled as a microtask (spec.md §4.7:
// "if v is a thenable, schedule a microtask that invokes its then").
// Resolution is idempotent: only the first Resolve/Reject call on a
// Pending promise has effect.
func (c *Controller) Resolve(id heap.Ref, v value.Value) {
	ps := c.promiseSlot(id)
	if ps == nil || ps.State != heap.PromisePending {
		return
	}
	if obj, ok := v.(value.Object); ok {
		if obj.Ref == id {
			c.reject(id, ps, errorValue(errors.NewTypeError(nil, errors.ErrMsgResolveSelf)))
			return
		}
		thenFn, err := c.H.Get(obj.Ref, heap.StringKey("then"), v, c.Inv)
		if err == nil && IsCallable(c.H, thenFn) {
			c.Q.Enqueue(func() {
				_, callErr := c.Inv.Invoke(thenFn, v, []value.Value{c.resolveFunc(id), c.rejectFunc(id)})
				if callErr != nil {
					c.Reject(id, errorValue(callErr))
				}
			})
			return
		}
	}
	c.fulfill(id, ps, v)
}

// Reject settles id Rejected with reason, unless already settled.
func (c *Controller) Reject(id heap.Ref, reason value.Value) {
	ps := c.promiseSlot(id)
	if ps == nil || ps.State != heap.PromisePending {
		return
	}
	c.reject(id, ps, reason)
}

func (c *Controller) fulfill(id heap.Ref, ps *heap.PromiseSlot, v value.Value) {
	ps.State = heap.PromiseFulfilled
	ps.Result = v
	reactions := ps.Fulfill
	ps.Fulfill, ps.Reject = nil, nil
	c.trigger(reactions, v, true)
}

func (c *Controller) reject(id heap.Ref, ps *heap.PromiseSlot, reason value.Value) {
	ps.State = heap.PromiseRejected
	ps.Result = reason
	reactions := ps.Reject
	ps.Fulfill, ps.Reject = nil, nil
	wasHandled := ps.Handled
	c.trigger(reactions, reason, false)
	if !wasHandled && len(reactions) == 0 && c.OnUnhandledRejection != nil {
		c.Q.Enqueue(func() {
			if !ps.Handled {
				c.OnUnhandledRejection(id, reason)
			}
		})
	}
}

func (c *Controller) trigger(reactions []heap.PromiseReaction, arg value.Value, fulfilled bool) {
	for _, r := range reactions {
		r := r
		c.Q.Enqueue(func() {
			handler := r.OnFulfilled
			if !fulfilled {
				handler = r.OnRejected
			}
			res, called, err := c.invokeHandler(handler, []value.Value{arg})
			if !called {
				if fulfilled {
					c.Resolve(r.Derived, arg)
				} else {
					c.Reject(r.Derived, arg)
				}
				return
			}
			if err != nil {
				c.Reject(r.Derived, errorValue(err))
				return
			}
			c.Resolve(r.Derived, res)
		})
	}
}

// invokeHandler calls handler with args if it is callable (a
// NativeCallback/NativeResolver/NativeRejecter internal marker, or a
// real heap function dispatched through Inv), returning called=false
// when handler is not callable at all (spec.md §4.7: a non-callable
// reaction handler means the reaction is a pass-through of its
// argument).
func (c *Controller) invokeHandler(handler value.Value, args []value.Value) (result value.Value, called bool, err error) {
	switch h := handler.(type) {
	case NativeCallback:
		res, err := h(args)
		return res, true, err
	case NativeResolver:
		c.Resolve(h.ID, arg0(args))
		return value.Undef, true, nil
	case NativeRejecter:
		c.Reject(h.ID, arg0(args))
		return value.Undef, true, nil
	default:
		if !IsCallable(c.H, handler) {
			return value.Undef, false, nil
		}
		res, err := c.Inv.Invoke(handler, value.Undef, args)
		return res, true, err
	}
}

// Then implements Promise.prototype.then: returns a new derived
// promise, appending a reaction if id is still Pending or scheduling
// immediate firing as a microtask if already settled.
func (c *Controller) Then(id heap.Ref, onFulfilled, onRejected value.Value) (heap.Ref, error) {
	ps := c.promiseSlot(id)
	if ps == nil {
		return 0, errors.NewTypeError(nil, "Promise.prototype.then called on non-promise")
	}
	derived := c.NewPromise()
	reaction := heap.PromiseReaction{OnFulfilled: onFulfilled, OnRejected: onRejected, Derived: derived}
	ps.Handled = true
	switch ps.State {
	case heap.PromisePending:
		ps.Fulfill = append(ps.Fulfill, reaction)
		ps.Reject = append(ps.Reject, reaction)
	case heap.PromiseFulfilled:
		c.trigger([]heap.PromiseReaction{reaction}, ps.Result, true)
	case heap.PromiseRejected:
		c.trigger([]heap.PromiseReaction{reaction}, ps.Result, false)
	}
	return derived, nil
}

// ResolveValue wraps v in a settled (or assimilating) promise the way
// Promise.resolve(v) does: an existing promise is returned as-is.
func (c *Controller) ResolveValue(v value.Value) heap.Ref {
	if obj, ok := v.(value.Object); ok {
		if _, isP := c.IsPromise(obj.Ref); isP {
			return obj.Ref
		}
	}
	id := c.NewPromise()
	c.Resolve(id, v)
	return id
}

// resolveFunc/rejectFunc build the pair of idempotent resolving
// functions handed to a Promise executor or a thenable's `then`. They
// are represented as plain Go closures wrapped in value.Value via the
// evaluator's native-function installation — Controller only needs
// Invoker.Invoke to be able to call *some* callable, so here we return
// a lightweight native marker the evaluator package's own Invoke
// recognizes directly (internal/evaluator/evaluator.go's type switch on
// promise.NativeResolver/NativeRejecter) without going through
// internal/builtins at all — there is no Promise global wired there yet
// (see DESIGN.md).
func (c *Controller) resolveFunc(id heap.Ref) value.Value {
	return NativeResolver{Ctrl: c, ID: id}
}

func (c *Controller) rejectFunc(id heap.Ref) value.Value {
	return NativeRejecter{Ctrl: c, ID: id}
}

// NativeResolver and NativeRejecter are not ordinary heap objects; they
// are recognized directly by Controller/the evaluator's Invoke
// implementation as the resolve/reject pair of a promise executor, so
// that constructing them never needs an extra heap allocation or
// function-slot. The evaluator's Invoke must special-case these two
// types before falling through to ordinary callable dispatch.
type NativeResolver struct {
	Ctrl *Controller
	ID   heap.Ref
}

func (NativeResolver) Kind() value.Kind { return value.KindObject }

type NativeRejecter struct {
	Ctrl *Controller
	ID   heap.Ref
}

func (NativeRejecter) Kind() value.Kind { return value.KindObject }

func errorValue(err error) value.Value {
	if ie, ok := err.(*errors.InterpreterError); ok {
		return value.String(ie.Error())
	}
	return value.String(err.Error())
}
