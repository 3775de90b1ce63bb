package promise

import (
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/value"
)

// All implements Promise.all: fulfills with the array of settled values
// once every input settles, or rejects with the first rejection reason
// (spec.md §4.7), grounded on promise.rs's promise_all.
func (c *Controller) All(items []value.Value, newArray func([]value.Value) heap.Ref) heap.Ref {
	result := c.NewPromise()
	n := len(items)
	if n == 0 {
		c.Resolve(result, value.Object{Ref: newArray(nil)})
		return result
	}
	values := make([]value.Value, n)
	remaining := n
	done := false
	for i, item := range items {
		i := i
		pid := c.ResolveValue(item)
		c.Then(pid, NativeCallback(func(args []value.Value) (value.Value, error) {
			if done {
				return value.Undef, nil
			}
			values[i] = arg0(args)
			remaining--
			if remaining == 0 {
				done = true
				c.Resolve(result, value.Object{Ref: newArray(values)})
			}
			return value.Undef, nil
		}), NativeCallback(func(args []value.Value) (value.Value, error) {
			if !done {
				done = true
				c.Reject(result, arg0(args))
			}
			return value.Undef, nil
		}))
	}
	return result
}

// AllSettled implements Promise.allSettled: fulfills with an array of
// {status,value|reason} records once every input settles — never
// itself rejects.
func (c *Controller) AllSettled(items []value.Value, newArray func([]value.Value) heap.Ref, newRecord func(fulfilled bool, v value.Value) value.Value) heap.Ref {
	result := c.NewPromise()
	n := len(items)
	if n == 0 {
		c.Resolve(result, value.Object{Ref: newArray(nil)})
		return result
	}
	values := make([]value.Value, n)
	remaining := n
	for i, item := range items {
		i := i
		pid := c.ResolveValue(item)
		c.Then(pid, NativeCallback(func(args []value.Value) (value.Value, error) {
			values[i] = newRecord(true, arg0(args))
			remaining--
			if remaining == 0 {
				c.Resolve(result, value.Object{Ref: newArray(values)})
			}
			return value.Undef, nil
		}), NativeCallback(func(args []value.Value) (value.Value, error) {
			values[i] = newRecord(false, arg0(args))
			remaining--
			if remaining == 0 {
				c.Resolve(result, value.Object{Ref: newArray(values)})
			}
			return value.Undef, nil
		}))
	}
	return result
}

// Race implements Promise.race: settles with whichever input settles
// first.
func (c *Controller) Race(items []value.Value) heap.Ref {
	result := c.NewPromise()
	done := false
	for _, item := range items {
		pid := c.ResolveValue(item)
		c.Then(pid, NativeCallback(func(args []value.Value) (value.Value, error) {
			if !done {
				done = true
				c.Resolve(result, arg0(args))
			}
			return value.Undef, nil
		}), NativeCallback(func(args []value.Value) (value.Value, error) {
			if !done {
				done = true
				c.Reject(result, arg0(args))
			}
			return value.Undef, nil
		}))
	}
	return result
}

// Any implements Promise.any: fulfills with the first to fulfill;
// rejects with an AggregateError carrying every reason, in order, if
// all reject.
func (c *Controller) Any(items []value.Value, newAggregateError func(reasons []value.Value) value.Value) heap.Ref {
	result := c.NewPromise()
	n := len(items)
	if n == 0 {
		c.Reject(result, newAggregateError(nil))
		return result
	}
	reasons := make([]value.Value, n)
	remaining := n
	done := false
	for i, item := range items {
		i := i
		pid := c.ResolveValue(item)
		c.Then(pid, NativeCallback(func(args []value.Value) (value.Value, error) {
			if !done {
				done = true
				c.Resolve(result, arg0(args))
			}
			return value.Undef, nil
		}), NativeCallback(func(args []value.Value) (value.Value, error) {
			reasons[i] = arg0(args)
			remaining--
			if remaining == 0 && !done {
				done = true
				c.Reject(result, newAggregateError(reasons))
			}
			return value.Undef, nil
		}))
	}
	return result
}

// WithResolvers implements Promise.withResolvers: returns the promise
// alongside its own resolve/reject pair (the evaluator wraps these into
// a plain object with `promise`/`resolve`/`reject` properties).
func (c *Controller) WithResolvers() (promiseID heap.Ref, resolve, reject value.Value) {
	id := c.NewPromise()
	return id, c.resolveFunc(id), c.rejectFunc(id)
}

// Try implements Promise.try: invokes fn synchronously; its normal
// return or thrown value becomes the result promise's settlement.
func (c *Controller) Try(fn value.Value, args []value.Value) heap.Ref {
	result := c.NewPromise()
	res, err := c.Inv.Invoke(fn, value.Undef, args)
	if err != nil {
		c.Reject(result, errorValue(err))
		return result
	}
	c.Resolve(result, res)
	return result
}

func arg0(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Undef
	}
	return args[0]
}

// NativeCallback wraps a Go closure as a value.Value the evaluator's
// Invoke implementation recognizes and calls directly, the same way it
// recognizes NativeResolver/NativeRejecter — used for combinator-internal
// reaction handlers that never need to be observable as a real Function
// object to user code.
type NativeCallback func(args []value.Value) (value.Value, error)

func (NativeCallback) Kind() value.Kind { return value.KindObject }
