package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

// disposeUsingBindings implements spec.md §8's scope-exit invariant for
// `using`/`await using` declarations: every such binding in env's own
// scope (not its ancestors — a nested block's resources are not the
// enclosing scope's business) has its @@dispose/@@asyncDispose method
// invoked exactly once, in reverse declaration order, regardless of how
// the scope is exiting.
//
// bodyErr is whatever completion the scope produced (nil, a thrown
// error, or a return/break/continue controlSignal); it is folded
// together with any disposer errors per spec.md §7's suppressed-error
// chain and returned as the scope's final completion.
func (ev *Evaluator) disposeUsingBindings(env *runtime.Environment, bodyErr error) error {
	type resource struct {
		value value.Value
		async bool
	}
	var resources []resource
	env.Range(func(name string, b *runtime.Binding) bool {
		if !b.Initialized {
			return true
		}
		switch b.Kind {
		case runtime.BindingUsing:
			resources = append(resources, resource{b.Value, false})
		case runtime.BindingAwaitUsing:
			resources = append(resources, resource{b.Value, true})
		}
		return true
	})
	if len(resources) == 0 {
		return bodyErr
	}

	result := bodyErr
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		obj, ok := r.value.(value.Object)
		if !ok {
			// null/undefined (or any other non-object) resources are
			// skipped.
			continue
		}
		key := heap.SymbolKey(heap.SymDispose)
		if r.async {
			key = heap.SymbolKey(heap.SymAsyncDispose)
		}
		method, err := ev.RT.Heap.Get(obj.Ref, key, r.value, ev)
		if err != nil || !ev.isCallable(method) {
			continue
		}
		if _, disposeErr := ev.Invoke(method, r.value, nil); disposeErr != nil {
			result = ev.chainDisposerError(result, disposeErr)
		}
	}
	return result
}

// chainDisposerError folds a disposer's thrown error into the scope's
// pending completion. A pending return/break/continue is superseded
// outright by the throw; a pending throw instead becomes the new
// error's `cause`, mirroring the suppressed-error chain explicit
// resource management requires (spec.md §7).
func (ev *Evaluator) chainDisposerError(prior error, disposeErr error) error {
	next := ev.throwFromErr(disposeErr)
	if prior == nil {
		return next
	}
	if _, isSignal := asControlSignal(prior); isSignal {
		return next
	}
	priorThrow := ev.throwFromErr(prior)
	if obj, ok := next.Value.(value.Object); ok {
		ev.RT.Heap.DefineOwnProperty(obj.Ref, heap.StringKey("cause"), heap.DataDescriptor(priorThrow.Value, true, false, true))
	}
	return next
}
