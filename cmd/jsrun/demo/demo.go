// Package demo builds hand-written *ast.Program values for cmd/jsrun to
// execute. There is no lexer or parser in this repo (pkg/ast's own doc
// comment: nodes are built directly by a host and handed to the
// evaluator) so the run subcommand cannot read arbitrary .js source
// files; it selects one of these named, Go-literal programs instead.
package demo

import (
	"github.com/cwbudde/go-ecma/pkg/ast"
)

// Named lists every demo program jsrun's --demo flag accepts.
var Named = map[string]func() *ast.Program{
	"hello":      Hello,
	"json":       JSON,
	"disposable": Disposable,
}

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func str(s string) *ast.Literal { return &ast.Literal{Kind: ast.LiteralString, Str: s} }

func num(n float64) *ast.Literal { return &ast.Literal{Kind: ast.LiteralNumber, Number: n} }

func member(obj ast.Expression, prop string) *ast.MemberExpression {
	return &ast.MemberExpression{Object: obj, Property: ident(prop)}
}

func call(callee ast.Expression, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Callee: callee, Arguments: args}
}

func exprStmt(e ast.Expression) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Expression: e}
}

func letDecl(name string, init ast.Expression) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{
		Kind: ast.DeclLet,
		Declarations: []*ast.VariableDeclarator{
			{Target: ident(name), Init: init},
		},
	}
}

// Hello builds `let greeting = "Hello, " + "jsrun!"; greeting;` — the
// smallest program that exercises string concatenation and a global
// binding lookup.
func Hello() *ast.Program {
	return &ast.Program{
		Statements: []ast.Statement{
			letDecl("greeting", &ast.BinaryExpression{
				Operator: "+",
				Left:     str("Hello, "),
				Right:    str("jsrun!"),
			}),
			exprStmt(ident("greeting")),
		},
	}
}

// JSON builds a round trip through the JSON global wired by
// internal/builtins: JSON.stringify an object literal, then JSON.parse
// the result and read a property back off it.
func JSON() *ast.Program {
	obj := &ast.ObjectLiteral{
		Properties: []*ast.Property{
			{Key: ident("name"), Value: str("jsrun")},
			{Key: ident("version"), Value: num(1)},
		},
	}
	return &ast.Program{
		Statements: []ast.Statement{
			letDecl("encoded", call(member(ident("JSON"), "stringify"), obj)),
			letDecl("decoded", call(member(ident("JSON"), "parse"), ident("encoded"))),
			exprStmt(member(ident("decoded"), "name")),
		},
	}
}

// Disposable builds a DisposableStack demo: a plain resource object
// (with no Symbol.dispose method of its own, so `use` registers no
// disposer for it) is passed to `use`, the stack is disposed, and the
// program's value is `stack.disposed`, exercising internal/builtins'
// disposable.go end to end.
func Disposable() *ast.Program {
	resource := &ast.ObjectLiteral{
		Properties: []*ast.Property{
			{
				Key: ident("label"),
				Value: str("connection"),
			},
		},
	}
	return &ast.Program{
		Statements: []ast.Statement{
			letDecl("stack", &ast.NewExpression{Callee: ident("DisposableStack")}),
			letDecl("resource", resource),
			exprStmt(call(member(ident("stack"), "use"), ident("resource"))),
			exprStmt(call(member(ident("stack"), "dispose"))),
			exprStmt(member(ident("stack"), "disposed")),
		},
	}
}
