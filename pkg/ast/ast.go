// Package ast defines the Abstract Syntax Tree node types consumed by the
// evaluator. The package does not include a lexer or parser: nodes are
// built directly by a host (a parser, a transpiler, or hand-written test
// fixtures) and handed to the evaluator as a *Program.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// TokenLiteral returns the literal text associated with the node's
	// leading token, used mainly for diagnostics.
	TokenLiteral() string

	// String renders the node for debugging and test fixtures.
	String() string

	// Pos returns the node's source position.
	Pos() token.Position
}

// Expression is any node that produces a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without itself producing
// a value.
type Statement interface {
	Node
	statementNode()
}

// Pattern is any node usable as a binding target: identifiers, array and
// object patterns (with rest and defaults), and assignment patterns.
type Pattern interface {
	Node
	patternNode()
}

// SourceType distinguishes the two program forms the host may submit.
type SourceType int

const (
	// Script is a classic, non-module top-level program.
	Script SourceType = iota
	// Module is a program containing import/export declarations.
	Module
)

// Program is the AST root handed to the evaluator's RunProgram entry point.
type Program struct {
	Statements []Statement
	Type       SourceType
	// Directive is set when the program begins with a "use strict"
	// directive prologue.
	Directive bool
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

func (p *Program) Pos() token.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Position{Line: 1, Column: 1}
}

// Identifier names a binding, either as an expression (read) or as a
// pattern (binding target).
type Identifier struct {
	Position token.Position
	Name     string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) patternNode()         {}
func (i *Identifier) TokenLiteral() string { return i.Name }
func (i *Identifier) String() string       { return i.Name }
func (i *Identifier) Pos() token.Position  { return i.Position }

// PrivateIdentifier names a private field or method ("#name").
type PrivateIdentifier struct {
	Position token.Position
	Name     string
}

func (p *PrivateIdentifier) expressionNode()      {}
func (p *PrivateIdentifier) TokenLiteral() string { return "#" + p.Name }
func (p *PrivateIdentifier) String() string        { return "#" + p.Name }
func (p *PrivateIdentifier) Pos() token.Position   { return p.Position }

// ThisExpression is the `this` keyword.
type ThisExpression struct {
	Position token.Position
}

func (t *ThisExpression) expressionNode()      {}
func (t *ThisExpression) TokenLiteral() string { return "this" }
func (t *ThisExpression) String() string       { return "this" }
func (t *ThisExpression) Pos() token.Position  { return t.Position }

// SuperExpression is the `super` keyword, legal only as the target of a
// member access (super.prop) or a call (super(...)).
type SuperExpression struct {
	Position token.Position
}

func (s *SuperExpression) expressionNode()      {}
func (s *SuperExpression) TokenLiteral() string { return "super" }
func (s *SuperExpression) String() string       { return "super" }
func (s *SuperExpression) Pos() token.Position  { return s.Position }

// NewTargetExpression is `new.target`.
type NewTargetExpression struct {
	Position token.Position
}

func (n *NewTargetExpression) expressionNode()      {}
func (n *NewTargetExpression) TokenLiteral() string { return "new.target" }
func (n *NewTargetExpression) String() string       { return "new.target" }
func (n *NewTargetExpression) Pos() token.Position  { return n.Position }

// ImportMetaExpression is `import.meta`.
type ImportMetaExpression struct {
	Position token.Position
}

func (n *ImportMetaExpression) expressionNode()      {}
func (n *ImportMetaExpression) TokenLiteral() string { return "import.meta" }
func (n *ImportMetaExpression) String() string       { return "import.meta" }
func (n *ImportMetaExpression) Pos() token.Position  { return n.Position }

// LiteralKind tags the primitive kind of a Literal node.
type LiteralKind int

const (
	LiteralUndefined LiteralKind = iota
	LiteralNull
	LiteralBoolean
	LiteralNumber
	LiteralBigInt
	LiteralString
)

// Literal is a primitive literal: undefined, null, a boolean, a number,
// a BigInt, or a string.
type Literal struct {
	Position token.Position
	Kind     LiteralKind
	Bool     bool
	Number   float64
	BigInt   string // decimal digits, sign-less; parser validates
	Str      string
	Raw      string
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Raw }
func (l *Literal) Pos() token.Position  { return l.Position }
func (l *Literal) String() string {
	switch l.Kind {
	case LiteralString:
		return "\"" + l.Str + "\""
	default:
		if l.Raw != "" {
			return l.Raw
		}
		return l.TokenLiteral()
	}
}

// TemplateLiteral is a template string with interleaved quasis and
// substitution expressions: quasis has len(Expressions)+1 entries.
type TemplateLiteral struct {
	Position    token.Position
	Quasis      []string
	Expressions []Expression
}

func (t *TemplateLiteral) expressionNode()      {}
func (t *TemplateLiteral) TokenLiteral() string { return "`template`" }
func (t *TemplateLiteral) Pos() token.Position  { return t.Position }
func (t *TemplateLiteral) String() string {
	var out bytes.Buffer
	out.WriteByte('`')
	for i, q := range t.Quasis {
		out.WriteString(q)
		if i < len(t.Expressions) {
			out.WriteString("${")
			out.WriteString(t.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteByte('`')
	return out.String()
}

// TaggedTemplateExpression is tag`template`.
type TaggedTemplateExpression struct {
	Position token.Position
	Tag      Expression
	Quasi    *TemplateLiteral
}

func (t *TaggedTemplateExpression) expressionNode()      {}
func (t *TaggedTemplateExpression) TokenLiteral() string { return "tagged-template" }
func (t *TaggedTemplateExpression) Pos() token.Position  { return t.Position }
func (t *TaggedTemplateExpression) String() string {
	return t.Tag.String() + t.Quasi.String()
}

// SequenceExpression is the comma operator: (a, b, c).
type SequenceExpression struct {
	Position    token.Position
	Expressions []Expression
}

func (s *SequenceExpression) expressionNode()      {}
func (s *SequenceExpression) TokenLiteral() string { return "," }
func (s *SequenceExpression) Pos() token.Position  { return s.Position }
func (s *SequenceExpression) String() string {
	parts := make([]string, len(s.Expressions))
	for i, e := range s.Expressions {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
