package evaluator

import (
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// hoist implements spec.md §4.4's declaration-instantiation pass: `var`
// and function declarations are bound (as undefined/the function value
// respectively) across the *entire* function/program body before any
// statement runs, while let/const/class bindings are pre-declared in
// the TDZ so an out-of-order reference is a ReferenceError rather than
// an undefined read. topLevel distinguishes a function/program body
// (var hoists all the way to this scope) from a nested block (var
// hoisting in a block still targets the enclosing function scope, so
// hoistVar recurses into nested statements but hoistLexical does not).
func (ev *Evaluator) hoist(stmts []ast.Statement, env *runtime.Environment, topLevel bool) {
	if topLevel {
		for _, s := range stmts {
			ev.hoistVar(s, env)
		}
	}
	for _, s := range stmts {
		ev.hoistLexicalAndFunctions(s, env)
	}
}

func (ev *Evaluator) hoistVar(s ast.Statement, env *runtime.Environment) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Kind != ast.DeclVar {
			return
		}
		for _, d := range n.Declarations {
			declareVarPattern(d.Target, env)
		}
	case *ast.BlockStatement:
		for _, st := range n.Statements {
			ev.hoistVar(st, env)
		}
	case *ast.IfStatement:
		ev.hoistVar(n.Consequent, env)
		if n.Alternate != nil {
			ev.hoistVar(n.Alternate, env)
		}
	case *ast.WhileStatement:
		ev.hoistVar(n.Body, env)
	case *ast.DoWhileStatement:
		ev.hoistVar(n.Body, env)
	case *ast.ForStatement:
		if vd, ok := n.Init.(*ast.VariableDeclaration); ok {
			ev.hoistVar(vd, env)
		}
		ev.hoistVar(n.Body, env)
	case *ast.ForInStatement:
		if vd, ok := n.Left.(*ast.VariableDeclaration); ok {
			ev.hoistVar(vd, env)
		}
		ev.hoistVar(n.Body, env)
	case *ast.ForOfStatement:
		if vd, ok := n.Left.(*ast.VariableDeclaration); ok {
			ev.hoistVar(vd, env)
		}
		ev.hoistVar(n.Body, env)
	case *ast.TryStatement:
		ev.hoistVar(n.Block, env)
		if n.Handler != nil {
			ev.hoistVar(n.Handler.Body, env)
		}
		if n.Finally != nil {
			ev.hoistVar(n.Finally, env)
		}
	case *ast.LabeledStatement:
		ev.hoistVar(n.Body, env)
	case *ast.SwitchStatement:
		for _, c := range n.Cases {
			for _, st := range c.Consequent {
				ev.hoistVar(st, env)
			}
		}
	case *ast.WithStatement:
		ev.hoistVar(n.Body, env)
	}
}

func declareVarPattern(p ast.Pattern, env *runtime.Environment) {
	switch t := p.(type) {
	case *ast.Identifier:
		if _, ok := env.GetLocalBinding(t.Name); !ok {
			env.Declare(t.Name, runtime.BindingVar)
		}
	case *ast.ArrayPattern:
		for _, e := range t.Elements {
			if e != nil {
				declareVarPattern(e, env)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			declareVarPattern(prop.Value, env)
		}
		if t.Rest != nil {
			declareVarPattern(t.Rest, env)
		}
	case *ast.AssignmentPattern:
		declareVarPattern(t.Target, env)
	case *ast.RestElement:
		declareVarPattern(t.Target, env)
	}
}

// hoistLexicalAndFunctions declares (but, for let/const/class, does not
// initialize) top-level let/const/class bindings and eagerly binds
// function declarations to their closure value, matching the order real
// engines guarantee: a function declared later in the same block is
// already callable from code above it.
func (ev *Evaluator) hoistLexicalAndFunctions(s ast.Statement, env *runtime.Environment) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Kind == ast.DeclVar {
			return
		}
		kind := runtime.BindingLet
		switch n.Kind {
		case ast.DeclConst:
			kind = runtime.BindingConst
		case ast.DeclUsing:
			kind = runtime.BindingUsing
		case ast.DeclAwaitUsing:
			kind = runtime.BindingAwaitUsing
		}
		for _, d := range n.Declarations {
			declareLexicalPattern(d.Target, env, kind)
		}
	case *ast.FunctionDeclaration:
		fnRef, err := ev.makeFunction(&n.FunctionSignature, n.Name, env, heap.FunctionUser)
		if err != nil {
			return
		}
		if _, ok := env.GetLocalBinding(n.Name.Name); !ok {
			env.Declare(n.Name.Name, runtime.BindingFunction)
		}
		env.SetInitialized(n.Name.Name, value.Object{Ref: fnRef})
	case *ast.ClassDeclaration:
		if n.Name != nil {
			env.Declare(n.Name.Name, runtime.BindingClass)
		}
	}
}

func declareLexicalPattern(p ast.Pattern, env *runtime.Environment, kind runtime.BindingKind) {
	switch t := p.(type) {
	case *ast.Identifier:
		env.Declare(t.Name, kind)
	case *ast.ArrayPattern:
		for _, e := range t.Elements {
			if e != nil {
				declareLexicalPattern(e, env, kind)
			}
		}
	case *ast.ObjectPattern:
		for _, prop := range t.Properties {
			declareLexicalPattern(prop.Value, env, kind)
		}
		if t.Rest != nil {
			declareLexicalPattern(t.Rest, env, kind)
		}
	case *ast.AssignmentPattern:
		declareLexicalPattern(t.Target, env, kind)
	case *ast.RestElement:
		declareLexicalPattern(t.Target, env, kind)
	}
}
