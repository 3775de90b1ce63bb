package ast

import (
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// FunctionSignature is the parameter/body/flag shape shared by function
// declarations, function expressions, methods, and arrow functions.
type FunctionSignature struct {
	Params      []Pattern // may include *AssignmentPattern defaults and a trailing *RestElement
	Body        []Statement
	// ExpressionBody holds a concise arrow body (`() => expr`); nil for a
	// block body, in which case Body is used.
	ExpressionBody Expression
	Async       bool
	Generator   bool
	Strict      bool
	// Source is the raw source text for Function.prototype.toString.
	Source string
}

// FunctionDeclaration hoists a named function into its enclosing scope.
type FunctionDeclaration struct {
	Position token.Position
	Name     *Identifier
	FunctionSignature
}

func (f *FunctionDeclaration) statementNode()      {}
func (f *FunctionDeclaration) TokenLiteral() string { return "function" }
func (f *FunctionDeclaration) Pos() token.Position  { return f.Position }
func (f *FunctionDeclaration) String() string       { return "function " + f.Name.String() + "(...)" }

// FunctionExpression is a (possibly anonymous) function literal.
type FunctionExpression struct {
	Position token.Position
	Name     *Identifier // nil for anonymous
	FunctionSignature
}

func (f *FunctionExpression) expressionNode()      {}
func (f *FunctionExpression) TokenLiteral() string { return "function" }
func (f *FunctionExpression) Pos() token.Position  { return f.Position }
func (f *FunctionExpression) String() string {
	name := ""
	if f.Name != nil {
		name = " " + f.Name.String()
	}
	return "function" + name + "(...)"
}

// ArrowFunctionExpression is `(params) => body`. Arrows never have their
// own `this`, `arguments`, `super`, or new.target: the evaluator's
// closure capture carries the defining environment's values through.
type ArrowFunctionExpression struct {
	Position token.Position
	FunctionSignature
}

func (a *ArrowFunctionExpression) expressionNode()      {}
func (a *ArrowFunctionExpression) TokenLiteral() string { return "=>" }
func (a *ArrowFunctionExpression) Pos() token.Position  { return a.Position }
func (a *ArrowFunctionExpression) String() string       { return "(...) => ..." }

// paramString renders a signature's parameter list, for String().
func (f FunctionSignature) paramString() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
