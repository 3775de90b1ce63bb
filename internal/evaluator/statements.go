package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/errors"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// evalStatement dispatches one statement node, returning its completion
// value (meaningful only for ExpressionStatement, used by RunProgram's
// "last evaluated value" host convention) and/or an error carrying one
// of this package's sentinel completions (see completion.go).
func (ev *Evaluator) evalStatement(s ast.Statement, env *runtime.Environment) (value.Value, error) {
	switch n := s.(type) {
	case *ast.ExpressionStatement:
		return ev.evalExpression(n.Expression, env)

	case *ast.EmptyStatement, *ast.DebuggerStatement:
		return nil, nil

	case *ast.BlockStatement:
		blockEnv := runtime.NewEnclosedEnvironment(env)
		ev.hoist(n.Statements, blockEnv, false)
		v, err := ev.evalStatements(n.Statements, blockEnv)
		return v, ev.disposeUsingBindings(blockEnv, err)

	case *ast.VariableDeclaration:
		return nil, ev.evalVariableDeclaration(n, env)

	case *ast.FunctionDeclaration:
		return nil, nil // already bound by hoist

	case *ast.ClassDeclaration:
		return ev.evalClassDeclaration(n, env)

	case *ast.IfStatement:
		t, err := ev.evalExpression(n.Test, env)
		if err != nil {
			return nil, err
		}
		if value.ToBoolean(t) {
			return ev.evalStatement(n.Consequent, env)
		}
		if n.Alternate != nil {
			return ev.evalStatement(n.Alternate, env)
		}
		return nil, nil

	case *ast.WhileStatement:
		return nil, ev.evalWhile(n, env)

	case *ast.DoWhileStatement:
		return nil, ev.evalDoWhile(n, env)

	case *ast.ForStatement:
		return nil, ev.evalFor(n, env)

	case *ast.ForInStatement:
		return nil, ev.evalForIn(n, env)

	case *ast.ForOfStatement:
		return nil, ev.evalForOf(n, env)

	case *ast.SwitchStatement:
		return nil, ev.evalSwitch(n, env)

	case *ast.ReturnStatement:
		var v value.Value = value.Undef
		if n.Argument != nil {
			rv, err := ev.evalExpression(n.Argument, env)
			if err != nil {
				return nil, err
			}
			v = rv
		}
		return nil, returnSignal(v)

	case *ast.BreakStatement:
		return nil, breakSignal(n.Label)

	case *ast.ContinueStatement:
		return nil, continueSignal(n.Label)

	case *ast.ThrowStatement:
		v, err := ev.evalExpression(n.Argument, env)
		if err != nil {
			return nil, err
		}
		return nil, NewThrow(v)

	case *ast.TryStatement:
		return nil, ev.evalTry(n, env)

	case *ast.LabeledStatement:
		return nil, ev.evalLabeled(n, env)

	case *ast.WithStatement:
		return nil, ev.evalWith(n, env)

	case *ast.ImportDeclaration, *ast.ExportDeclaration:
		return nil, errors.NewSyntaxError(nil, "module import/export requires a host module resolver")

	default:
		return nil, errors.NewInternalErrorf("evaluator: unhandled statement type %T", s)
	}
}

func (ev *Evaluator) evalStatements(stmts []ast.Statement, env *runtime.Environment) (value.Value, error) {
	var last value.Value
	for _, s := range stmts {
		v, err := ev.evalStatement(s, env)
		if err != nil {
			return nil, err
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

func (ev *Evaluator) evalVariableDeclaration(n *ast.VariableDeclaration, env *runtime.Environment) error {
	kind := runtime.BindingVar
	switch n.Kind {
	case ast.DeclLet:
		kind = runtime.BindingLet
	case ast.DeclConst:
		kind = runtime.BindingConst
	case ast.DeclUsing:
		kind = runtime.BindingUsing
	case ast.DeclAwaitUsing:
		kind = runtime.BindingAwaitUsing
	}
	for _, d := range n.Declarations {
		var v value.Value = value.Undef
		if d.Init != nil {
			rv, err := ev.evalExpression(d.Init, env)
			if err != nil {
				return err
			}
			v = rv
		}
		if n.Kind == ast.DeclVar {
			if err := ev.bindPattern(d.Target, v, env, kind, false); err != nil {
				return err
			}
			continue
		}
		if id, ok := d.Target.(*ast.Identifier); ok {
			env.SetInitialized(id.Name, v)
			continue
		}
		if err := ev.bindPattern(d.Target, v, env, kind, true); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) evalWhile(n *ast.WhileStatement, env *runtime.Environment) error {
	for {
		t, err := ev.evalExpression(n.Test, env)
		if err != nil {
			return err
		}
		if !value.ToBoolean(t) {
			return nil
		}
		if _, err := ev.evalStatement(n.Body, env); err != nil {
			brk, cont, rerr := ev.handleLoopSignal(err, n.Label)
			if rerr != nil {
				return rerr
			}
			if brk {
				return nil
			}
			_ = cont
		}
	}
}

func (ev *Evaluator) evalDoWhile(n *ast.DoWhileStatement, env *runtime.Environment) error {
	for {
		if _, err := ev.evalStatement(n.Body, env); err != nil {
			brk, _, rerr := ev.handleLoopSignal(err, n.Label)
			if rerr != nil {
				return rerr
			}
			if brk {
				return nil
			}
		}
		t, err := ev.evalExpression(n.Test, env)
		if err != nil {
			return err
		}
		if !value.ToBoolean(t) {
			return nil
		}
	}
}

func (ev *Evaluator) evalFor(n *ast.ForStatement, env *runtime.Environment) error {
	loopEnv := runtime.NewEnclosedEnvironment(env)
	if n.Init != nil {
		switch init := n.Init.(type) {
		case *ast.VariableDeclaration:
			ev.hoist([]ast.Statement{init}, loopEnv, false)
			if err := ev.evalVariableDeclaration(init, loopEnv); err != nil {
				return err
			}
		case ast.Expression:
			if _, err := ev.evalExpression(init, loopEnv); err != nil {
				return err
			}
		}
	}
	for {
		if n.Test != nil {
			t, err := ev.evalExpression(n.Test, loopEnv)
			if err != nil {
				return err
			}
			if !value.ToBoolean(t) {
				return nil
			}
		}
		iterEnv := runtime.NewEnclosedEnvironment(loopEnv.Parent())
		copyBindings(loopEnv, iterEnv)
		if _, err := ev.evalStatement(n.Body, iterEnv); err != nil {
			brk, _, rerr := ev.handleLoopSignal(err, n.Label)
			if rerr != nil {
				return rerr
			}
			if brk {
				return nil
			}
		}
		copyBindingsBack(iterEnv, loopEnv)
		if n.Update != nil {
			if _, err := ev.evalExpression(n.Update, loopEnv); err != nil {
				return err
			}
		}
	}
}

// copyBindings/copyBindingsBack give each `for` iteration its own copy
// of the loop-head's let-bound names, implementing the per-iteration
// binding spec.md §4.4 requires so a closure captured inside the body
// sees that iteration's value rather than the final one.
func copyBindings(from, to *runtime.Environment) {
	from.Range(func(name string, b *runtime.Binding) bool {
		to.DeclareWithValue(name, b.Kind, b.Value)
		return true
	})
}

func copyBindingsBack(from, to *runtime.Environment) {
	from.Range(func(name string, b *runtime.Binding) bool {
		if tb, ok := to.GetLocalBinding(name); ok {
			tb.Value = b.Value
		}
		return true
	})
}

func (ev *Evaluator) evalForIn(n *ast.ForInStatement, env *runtime.Environment) error {
	rv, err := ev.evalExpression(n.Right, env)
	if err != nil {
		return err
	}
	keys := ev.enumerableKeys(rv)
	for _, k := range keys {
		iterEnv := runtime.NewEnclosedEnvironment(env)
		if err := ev.bindForHead(n.Left, value.String(k), iterEnv); err != nil {
			return err
		}
		if _, err := ev.evalStatement(n.Body, iterEnv); err != nil {
			brk, _, rerr := ev.handleLoopSignal(err, n.Label)
			if rerr != nil {
				return rerr
			}
			if brk {
				return nil
			}
		}
	}
	return nil
}

func (ev *Evaluator) evalForOf(n *ast.ForOfStatement, env *runtime.Environment) error {
	rv, err := ev.evalExpression(n.Right, env)
	if err != nil {
		return err
	}
	items, err := ev.iterate(rv)
	if err != nil {
		return err
	}
	for _, item := range items {
		iterEnv := runtime.NewEnclosedEnvironment(env)
		if err := ev.bindForHead(n.Left, item, iterEnv); err != nil {
			return err
		}
		if _, err := ev.evalStatement(n.Body, iterEnv); err != nil {
			brk, _, rerr := ev.handleLoopSignal(err, n.Label)
			if rerr != nil {
				return rerr
			}
			if brk {
				return nil
			}
		}
	}
	return nil
}

func (ev *Evaluator) bindForHead(left ast.Node, v value.Value, env *runtime.Environment) error {
	if vd, ok := left.(*ast.VariableDeclaration); ok {
		kind := runtime.BindingLet
		switch vd.Kind {
		case ast.DeclVar:
			kind = runtime.BindingVar
		case ast.DeclConst:
			kind = runtime.BindingConst
		}
		return ev.bindPattern(vd.Declarations[0].Target, v, env, kind, true)
	}
	if pat, ok := left.(ast.Pattern); ok {
		return ev.bindPattern(pat, v, env, runtime.BindingVar, false)
	}
	return errors.NewSyntaxError(nil, "invalid for-in/of left-hand side")
}

// enumerableKeys walks the prototype chain collecting own+inherited
// enumerable string keys, in the shadowing-aware order for-in requires:
// each name is yielded once, at the depth closest to the object.
func (ev *Evaluator) enumerableKeys(v value.Value) []string {
	obj, ok := v.(value.Object)
	if !ok {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	visited := map[heap.Ref]bool{}
	id := obj.Ref
	for {
		o, ok := ev.RT.Heap.Deref(id)
		if !ok || visited[id] {
			break
		}
		visited[id] = true
		if as, isArr := o.Slot.(*heap.ArraySlot); isArr {
			for i, e := range as.Elements {
				k := value.FormatNumber(float64(i))
				if e != nil && !seen[k] {
					seen[k] = true
					out = append(out, k)
				}
			}
		}
		o.Props().Range(func(k heap.Key, d heap.Descriptor) bool {
			if !k.IsSymbol() && d.Enumerable && !seen[k.String()] {
				seen[k.String()] = true
				out = append(out, k.String())
			}
			return true
		})
		if !o.HasProto {
			break
		}
		id = o.Proto
	}
	return out
}

func (ev *Evaluator) evalSwitch(n *ast.SwitchStatement, env *runtime.Environment) error {
	dv, err := ev.evalExpression(n.Discriminant, env)
	if err != nil {
		return err
	}
	switchEnv := runtime.NewEnclosedEnvironment(env)
	matched := -1
	for i, c := range n.Cases {
		if c.Test == nil {
			continue
		}
		tv, err := ev.evalExpression(c.Test, switchEnv)
		if err != nil {
			return err
		}
		if value.StrictEquals(dv, tv) {
			matched = i
			break
		}
	}
	if matched == -1 {
		for i, c := range n.Cases {
			if c.Test == nil {
				matched = i
				break
			}
		}
	}
	if matched == -1 {
		return nil
	}
	for i := matched; i < len(n.Cases); i++ {
		for _, st := range n.Cases[i].Consequent {
			if _, err := ev.evalStatement(st, switchEnv); err != nil {
				if cs, ok := asControlSignal(err); ok && cs.kind == sigBreak && (cs.label == "" || cs.label == n.Label) {
					return nil
				}
				return err
			}
		}
	}
	return nil
}

func (ev *Evaluator) evalTry(n *ast.TryStatement, env *runtime.Environment) error {
	blockEnv := runtime.NewEnclosedEnvironment(env)
	ev.hoist(n.Block.Statements, blockEnv, false)
	_, err := ev.evalStatements(n.Block.Statements, blockEnv)

	if tc, ok := asThrow(err); ok && n.Handler != nil {
		catchEnv := runtime.NewEnclosedEnvironment(env)
		if n.Handler.Param != nil {
			if bindErr := ev.bindPattern(n.Handler.Param, tc.Value, catchEnv, runtime.BindingLet, true); bindErr != nil {
				err = bindErr
			} else {
				ev.hoist(n.Handler.Body.Statements, catchEnv, false)
				_, err = ev.evalStatements(n.Handler.Body.Statements, catchEnv)
			}
		} else {
			ev.hoist(n.Handler.Body.Statements, catchEnv, false)
			_, err = ev.evalStatements(n.Handler.Body.Statements, catchEnv)
		}
	}

	if n.Finally != nil {
		finallyEnv := runtime.NewEnclosedEnvironment(env)
		ev.hoist(n.Finally.Statements, finallyEnv, false)
		_, ferr := ev.evalStatements(n.Finally.Statements, finallyEnv)
		if ferr != nil {
			return ferr // finally's completion overrides try/catch's, per spec.md §4.4
		}
	}
	return err
}

func (ev *Evaluator) evalLabeled(n *ast.LabeledStatement, env *runtime.Environment) error {
	_, err := ev.evalStatement(n.Body, env)
	if cs, ok := asControlSignal(err); ok && cs.kind == sigBreak && cs.label == n.Label {
		return nil
	}
	return err
}

func (ev *Evaluator) evalWith(n *ast.WithStatement, env *runtime.Environment) error {
	ov, err := ev.evalExpression(n.Object, env)
	if err != nil {
		return err
	}
	withEnv := runtime.NewEnclosedEnvironment(env)
	withEnv.WithTarget = ov
	withEnv.IsWith = true
	_, err = ev.evalStatement(n.Body, withEnv)
	return err
}

// handleLoopSignal classifies a statement error into (isBreakForThisLoop,
// isContinueForThisLoop, errToPropagate). A continue simply lets the
// loop proceed to its next iteration; a break for this loop's own label
// (or unlabeled) stops it; anything else (a differently-labeled
// break/continue, a throw, a return) propagates untouched.
func (ev *Evaluator) handleLoopSignal(err error, label string) (brk bool, cont bool, propagate error) {
	cs, ok := asControlSignal(err)
	if !ok {
		return false, false, err
	}
	switch cs.kind {
	case sigBreak:
		if cs.label == "" || cs.label == label {
			return true, false, nil
		}
		return false, false, err
	case sigContinue:
		if cs.label == "" || cs.label == label {
			return false, true, nil
		}
		return false, false, err
	default:
		return false, false, err
	}
}
