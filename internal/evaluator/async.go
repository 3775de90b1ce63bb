package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/generator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/promise"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
)

// awaiterKey names the hidden per-call environment binding carrying the
// active generator.Yielder an async function body suspends on at each
// `await`, mirroring yielderKey's role for plain generators.
const awaiterKey = "@@awaiter"

type awaiterHandle struct{ y *generator.Yielder }

func (awaiterHandle) Kind() value.Kind { return value.KindUndefined }

// callAsync implements spec.md §4.7's async-function-to-promise
// desugaring: the body runs as a generator.Generator that parks at every
// `await` (evalAwaitExpression yields the awaited value out through the
// hidden awaiter binding), and this driver settles the returned promise
// by resuming the generator each time the awaited value's promise
// settles — all inside the shared microtask queue, so ordering matches
// a real engine's. The result promise is returned immediately; the
// caller never blocks.
func (ev *Evaluator) callAsync(c *Closure, this value.Value, args []value.Value) (value.Value, error) {
	resultID := ev.RT.Promise.NewPromise()

	body := func(y *generator.Yielder) (value.Value, error) {
		fnEnv := runtime.NewEnclosedEnvironment(c.Env)
		if !c.IsArrow {
			fnEnv.SetThis(this)
			fnEnv.SetNewTarget(value.Undef)
			fnEnv.DeclareWithValue("arguments", runtime.BindingVar, ev.makeArgumentsObject(args))
		}
		fnEnv.Declare(awaiterKey, runtime.BindingLet)
		fnEnv.SetInitialized(awaiterKey, awaiterHandle{y: y})
		if err := ev.bindParams(c.Params, args, fnEnv); err != nil {
			return value.Undef, err
		}
		if c.ExpressionBody != nil {
			return ev.evalExpression(c.ExpressionBody, fnEnv)
		}
		ev.hoist(c.Body, fnEnv, true)
		for _, stmt := range c.Body {
			_, err := ev.evalStatement(stmt, fnEnv)
			if err != nil {
				if cs, ok := asControlSignal(err); ok && cs.kind == sigReturn {
					return cs.value, nil
				}
				return value.Undef, err
			}
		}
		return value.Undef, nil
	}

	gen := generator.New(body)
	ev.resumeAsync(gen, resultID, gen.Next(value.Undef))
	return value.Object{Ref: resultID}, nil
}

// resumeAsync handles one generator.Result: a Done result settles the
// result promise (fulfilled with the return value, or rejected if the
// body threw); a not-Done result is the value passed to `await`, which
// gets wrapped as a promise and chained so settling it resumes gen with
// the awaited value (or throws the rejection back in at the await
// point), recursing back into resumeAsync for the next step.
func (ev *Evaluator) resumeAsync(gen *generator.Generator, resultID heap.Ref, res generator.Result) {
	if res.Done {
		if res.Err != nil {
			ev.RT.Promise.Reject(resultID, ev.throwFromErr(res.Err).Value)
			return
		}
		ev.RT.Promise.Resolve(resultID, res.Value)
		return
	}

	awaitedID := ev.RT.Promise.ResolveValue(res.Value)
	ev.RT.Promise.Then(awaitedID,
		promise.NativeCallback(func(args []value.Value) (value.Value, error) {
			ev.resumeAsync(gen, resultID, gen.Next(arg(args, 0)))
			return value.Undef, nil
		}),
		promise.NativeCallback(func(args []value.Value) (value.Value, error) {
			ev.resumeAsync(gen, resultID, gen.Throw(arg(args, 0)))
			return value.Undef, nil
		}),
	)
}
