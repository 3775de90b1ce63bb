package ast

import (
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// UnaryOperator enumerates prefix unary operators, including the
// reference-sensitive ones (typeof, delete) that the evaluator must
// dispatch specially.
type UnaryOperator string

const (
	OpTypeof UnaryOperator = "typeof"
	OpVoid   UnaryOperator = "void"
	OpDelete UnaryOperator = "delete"
	OpPlus   UnaryOperator = "+"
	OpMinus  UnaryOperator = "-"
	OpNot    UnaryOperator = "!"
	OpBitNot UnaryOperator = "~"
)

// UnaryExpression is a prefix unary operation.
type UnaryExpression struct {
	Position token.Position
	Operator UnaryOperator
	Argument Expression
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return string(u.Operator) }
func (u *UnaryExpression) Pos() token.Position  { return u.Position }
func (u *UnaryExpression) String() string       { return string(u.Operator) + u.Argument.String() }

// UpdateExpression is ++ or -- in prefix or postfix position.
type UpdateExpression struct {
	Position token.Position
	Operator string // "++" or "--"
	Argument Expression
	Prefix   bool
}

func (u *UpdateExpression) expressionNode()      {}
func (u *UpdateExpression) TokenLiteral() string { return u.Operator }
func (u *UpdateExpression) Pos() token.Position  { return u.Position }
func (u *UpdateExpression) String() string {
	if u.Prefix {
		return u.Operator + u.Argument.String()
	}
	return u.Argument.String() + u.Operator
}

// BinaryExpression covers arithmetic, bitwise, comparison, `in`, and
// `instanceof` operators.
type BinaryExpression struct {
	Position token.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Operator }
func (b *BinaryExpression) Pos() token.Position  { return b.Position }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// LogicalExpression is &&, ||, or ??, which short-circuit and therefore
// are evaluated distinctly from BinaryExpression.
type LogicalExpression struct {
	Position token.Position
	Operator string
	Left     Expression
	Right    Expression
}

func (l *LogicalExpression) expressionNode()      {}
func (l *LogicalExpression) TokenLiteral() string { return l.Operator }
func (l *LogicalExpression) Pos() token.Position  { return l.Position }
func (l *LogicalExpression) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}

// ConditionalExpression is the ternary operator.
type ConditionalExpression struct {
	Position   token.Position
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

func (c *ConditionalExpression) expressionNode()      {}
func (c *ConditionalExpression) TokenLiteral() string { return "?:" }
func (c *ConditionalExpression) Pos() token.Position  { return c.Position }
func (c *ConditionalExpression) String() string {
	return "(" + c.Test.String() + " ? " + c.Consequent.String() + " : " + c.Alternate.String() + ")"
}

// AssignmentExpression covers `=` and the compound/logical-assignment
// operators (+=, ??=, etc.). Target is either an Identifier, a
// MemberExpression, or a destructuring Pattern (array/object).
type AssignmentExpression struct {
	Position token.Position
	Operator string // "=", "+=", "&&=", ...
	Target   Node    // Expression (identifier/member) or Pattern
	Value    Expression
}

func (a *AssignmentExpression) expressionNode()      {}
func (a *AssignmentExpression) TokenLiteral() string { return a.Operator }
func (a *AssignmentExpression) Pos() token.Position  { return a.Position }
func (a *AssignmentExpression) String() string {
	return a.Target.String() + " " + a.Operator + " " + a.Value.String()
}

// MemberExpression is dot access, computed (bracket) access, or private
// field access, any of which may be optionally-chained (`?.`).
type MemberExpression struct {
	Position token.Position
	Object   Expression // may be *SuperExpression
	Property Expression // Identifier for dot/private access, any Expression for computed
	Computed bool
	Private  bool
	Optional bool
}

func (m *MemberExpression) expressionNode()      {}
func (m *MemberExpression) patternNode()         {}
func (m *MemberExpression) TokenLiteral() string { return "." }
func (m *MemberExpression) Pos() token.Position  { return m.Position }
func (m *MemberExpression) String() string {
	op := "."
	if m.Optional {
		op = "?."
	}
	if m.Computed {
		return m.Object.String() + (map[bool]string{true: "?.[", false: "["}[m.Optional]) + m.Property.String() + "]"
	}
	return m.Object.String() + op + m.Property.String()
}

// SpreadElement represents `...expr` inside call arguments or array/object
// literals.
type SpreadElement struct {
	Position  token.Position
	Argument  Expression
}

func (s *SpreadElement) expressionNode()      {}
func (s *SpreadElement) TokenLiteral() string { return "..." }
func (s *SpreadElement) Pos() token.Position  { return s.Position }
func (s *SpreadElement) String() string       { return "..." + s.Argument.String() }

// CallExpression is a function call, optionally chained and with
// possibly-spread arguments. Callee may be *SuperExpression for
// super(...) calls.
type CallExpression struct {
	Position  token.Position
	Callee    Expression
	Arguments []Expression
	Optional  bool
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return "(" }
func (c *CallExpression) Pos() token.Position  { return c.Position }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	op := "("
	if c.Optional {
		op = "?.("
	}
	return c.Callee.String() + op + strings.Join(parts, ", ") + ")"
}

// NewExpression is `new Callee(args)`.
type NewExpression struct {
	Position  token.Position
	Callee    Expression
	Arguments []Expression
}

func (n *NewExpression) expressionNode()      {}
func (n *NewExpression) TokenLiteral() string { return "new" }
func (n *NewExpression) Pos() token.Position  { return n.Position }
func (n *NewExpression) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return "new " + n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}

// ImportExpression is a dynamic `import(specifier)` call.
type ImportExpression struct {
	Position token.Position
	Source   Expression
}

func (i *ImportExpression) expressionNode()      {}
func (i *ImportExpression) TokenLiteral() string { return "import" }
func (i *ImportExpression) Pos() token.Position  { return i.Position }
func (i *ImportExpression) String() string       { return "import(" + i.Source.String() + ")" }

// YieldExpression is `yield expr` or `yield* expr`.
type YieldExpression struct {
	Position token.Position
	Argument Expression // may be nil
	Delegate bool
}

func (y *YieldExpression) expressionNode()      {}
func (y *YieldExpression) TokenLiteral() string { return "yield" }
func (y *YieldExpression) Pos() token.Position  { return y.Position }
func (y *YieldExpression) String() string {
	star := ""
	if y.Delegate {
		star = "*"
	}
	if y.Argument == nil {
		return "yield" + star
	}
	return "yield" + star + " " + y.Argument.String()
}

// AwaitExpression is `await expr`.
type AwaitExpression struct {
	Position token.Position
	Argument Expression
}

func (a *AwaitExpression) expressionNode()      {}
func (a *AwaitExpression) TokenLiteral() string { return "await" }
func (a *AwaitExpression) Pos() token.Position  { return a.Position }
func (a *AwaitExpression) String() string       { return "await " + a.Argument.String() }

// ArrayLiteral is `[...]`; each Elements entry is an Expression, a
// *SpreadElement, or nil to represent a hole.
type ArrayLiteral struct {
	Position token.Position
	Elements []Expression // nil entries are holes
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return "[" }
func (a *ArrayLiteral) Pos() token.Position  { return a.Position }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e == nil {
			parts[i] = ""
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// PropertyKind distinguishes data, getter, setter, and method entries in
// an object literal.
type PropertyKind int

const (
	PropertyData PropertyKind = iota
	PropertyGetter
	PropertySetter
	PropertyMethod
	PropertySpread
)

// Property is one entry of an ObjectLiteral.
type Property struct {
	Position token.Position
	Kind     PropertyKind
	Key      Expression // Identifier, Literal, or any Expression when Computed
	Computed bool
	Shorthand bool
	Value    Expression // the value/method; for Spread, the spread argument
}

// ObjectLiteral is `{ ...props }`.
type ObjectLiteral struct {
	Position   token.Position
	Properties []*Property
}

func (o *ObjectLiteral) expressionNode()      {}
func (o *ObjectLiteral) TokenLiteral() string { return "{" }
func (o *ObjectLiteral) Pos() token.Position  { return o.Position }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		if p.Kind == PropertySpread {
			parts[i] = "..." + p.Value.String()
			continue
		}
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
