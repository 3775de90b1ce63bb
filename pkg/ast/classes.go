package ast

import "github.com/cwbudde/go-ecma/pkg/token"

// ClassMemberKind distinguishes the member forms a class body may
// contain.
type ClassMemberKind int

const (
	ClassMethod ClassMemberKind = iota
	ClassGetter
	ClassSetter
	ClassField
	ClassStaticBlock
)

// ClassMember is one entry of a ClassBody: a method, accessor, field, or
// static initialization block.
type ClassMember struct {
	Position  token.Position
	Kind      ClassMemberKind
	Key       Expression // Identifier, *PrivateIdentifier, or computed Expression
	Computed  bool
	Private   bool
	Static    bool
	// Function holds the method/getter/setter signature; nil for
	// ClassField and ClassStaticBlock.
	Function *FunctionExpression
	// FieldInit is the field's initializer expression, evaluated in a
	// fresh environment with `this` bound to the new instance; nil means
	// the field initializes to undefined.
	FieldInit Expression
	// StaticBody holds the statements of a `static { ... }` block.
	StaticBody []Statement
}

// ClassDeclaration is `class Name [extends Super] { members }`. As an
// expression form (anonymous class expressions), the same struct is
// wrapped by ClassExpression below.
type ClassDeclaration struct {
	Position   token.Position
	Name       *Identifier // nil for an unnamed default-export class
	SuperClass Expression  // nil if no `extends`
	Members    []*ClassMember
}

func (c *ClassDeclaration) statementNode()      {}
func (c *ClassDeclaration) TokenLiteral() string { return "class" }
func (c *ClassDeclaration) Pos() token.Position  { return c.Position }
func (c *ClassDeclaration) String() string {
	name := "<anonymous>"
	if c.Name != nil {
		name = c.Name.String()
	}
	return "class " + name + " { ... }"
}

// ClassExpression is a class literal used as an expression.
type ClassExpression struct {
	ClassDeclaration
}

func (c *ClassExpression) expressionNode() {}
