package ast

import (
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// BlockStatement groups statements into a lexical scope.
type BlockStatement struct {
	Position   token.Position
	Statements []Statement
}

func (b *BlockStatement) statementNode()      {}
func (b *BlockStatement) TokenLiteral() string { return "{" }
func (b *BlockStatement) Pos() token.Position  { return b.Position }
func (b *BlockStatement) String() string {
	var out strings.Builder
	out.WriteByte('{')
	for _, s := range b.Statements {
		out.WriteString(s.String())
	}
	out.WriteByte('}')
	return out.String()
}

// ExpressionStatement wraps an expression evaluated for its side effect.
type ExpressionStatement struct {
	Position   token.Position
	Expression Expression
}

func (e *ExpressionStatement) statementNode()      {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Expression.TokenLiteral() }
func (e *ExpressionStatement) Pos() token.Position  { return e.Position }
func (e *ExpressionStatement) String() string       { return e.Expression.String() + ";" }

// EmptyStatement is a bare `;`.
type EmptyStatement struct {
	Position token.Position
}

func (e *EmptyStatement) statementNode()      {}
func (e *EmptyStatement) TokenLiteral() string { return ";" }
func (e *EmptyStatement) Pos() token.Position  { return e.Position }
func (e *EmptyStatement) String() string       { return ";" }

// DebuggerStatement is the `debugger;` statement (a no-op for this
// runtime; retained so hosts with a debugger can hook it).
type DebuggerStatement struct {
	Position token.Position
}

func (d *DebuggerStatement) statementNode()      {}
func (d *DebuggerStatement) TokenLiteral() string { return "debugger" }
func (d *DebuggerStatement) Pos() token.Position  { return d.Position }
func (d *DebuggerStatement) String() string       { return "debugger;" }

// IfStatement is `if (test) consequent [else alternate]`.
type IfStatement struct {
	Position   token.Position
	Test       Expression
	Consequent Statement
	Alternate  Statement // nil if absent
}

func (i *IfStatement) statementNode()      {}
func (i *IfStatement) TokenLiteral() string { return "if" }
func (i *IfStatement) Pos() token.Position  { return i.Position }
func (i *IfStatement) String() string {
	s := "if (" + i.Test.String() + ") " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	Position token.Position
	Test     Expression
	Body     Statement
	Label    string
}

func (w *WhileStatement) statementNode()      {}
func (w *WhileStatement) TokenLiteral() string { return "while" }
func (w *WhileStatement) Pos() token.Position  { return w.Position }
func (w *WhileStatement) String() string       { return "while (" + w.Test.String() + ") " + w.Body.String() }

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	Position token.Position
	Body     Statement
	Test     Expression
	Label    string
}

func (d *DoWhileStatement) statementNode()      {}
func (d *DoWhileStatement) TokenLiteral() string { return "do" }
func (d *DoWhileStatement) Pos() token.Position  { return d.Position }
func (d *DoWhileStatement) String() string {
	return "do " + d.Body.String() + " while (" + d.Test.String() + ");"
}

// ForStatement is the classic C-style for loop; any of Init/Test/Update
// may be nil.
type ForStatement struct {
	Position token.Position
	Init     Node // *VariableDeclaration or Expression, or nil
	Test     Expression
	Update   Expression
	Body     Statement
	Label    string
}

func (f *ForStatement) statementNode()      {}
func (f *ForStatement) TokenLiteral() string { return "for" }
func (f *ForStatement) Pos() token.Position  { return f.Position }
func (f *ForStatement) String() string       { return "for (...) " + f.Body.String() }

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	Position token.Position
	Left     Node // *VariableDeclaration (single declarator) or assignment target
	Right    Expression
	Body     Statement
	Label    string
}

func (f *ForInStatement) statementNode()      {}
func (f *ForInStatement) TokenLiteral() string { return "for-in" }
func (f *ForInStatement) Pos() token.Position  { return f.Position }
func (f *ForInStatement) String() string       { return "for (... in ...) " + f.Body.String() }

// ForOfStatement is `for [await] (left of right) body`.
type ForOfStatement struct {
	Position token.Position
	Left     Node
	Right    Expression
	Body     Statement
	Await    bool
	Label    string
}

func (f *ForOfStatement) statementNode()      {}
func (f *ForOfStatement) TokenLiteral() string { return "for-of" }
func (f *ForOfStatement) Pos() token.Position  { return f.Position }
func (f *ForOfStatement) String() string       { return "for (... of ...) " + f.Body.String() }

// SwitchCase is one `case test:`/`default:` arm.
type SwitchCase struct {
	Position   token.Position
	Test       Expression // nil for `default`
	Consequent []Statement
}

// SwitchStatement is `switch (discriminant) { cases }`.
type SwitchStatement struct {
	Position      token.Position
	Discriminant  Expression
	Cases         []*SwitchCase
	Label         string
}

func (s *SwitchStatement) statementNode()      {}
func (s *SwitchStatement) TokenLiteral() string { return "switch" }
func (s *SwitchStatement) Pos() token.Position  { return s.Position }
func (s *SwitchStatement) String() string       { return "switch (" + s.Discriminant.String() + ") {...}" }

// ReturnStatement unwinds to the enclosing function frame.
type ReturnStatement struct {
	Position token.Position
	Argument Expression // nil for bare `return;`
}

func (r *ReturnStatement) statementNode()      {}
func (r *ReturnStatement) TokenLiteral() string { return "return" }
func (r *ReturnStatement) Pos() token.Position  { return r.Position }
func (r *ReturnStatement) String() string {
	if r.Argument == nil {
		return "return;"
	}
	return "return " + r.Argument.String() + ";"
}

// BreakStatement unwinds to the nearest matching loop/switch/label.
type BreakStatement struct {
	Position token.Position
	Label    string // "" if unlabeled
}

func (b *BreakStatement) statementNode()      {}
func (b *BreakStatement) TokenLiteral() string { return "break" }
func (b *BreakStatement) Pos() token.Position  { return b.Position }
func (b *BreakStatement) String() string {
	if b.Label == "" {
		return "break;"
	}
	return "break " + b.Label + ";"
}

// ContinueStatement unwinds to the nearest matching loop/label.
type ContinueStatement struct {
	Position token.Position
	Label    string
}

func (c *ContinueStatement) statementNode()      {}
func (c *ContinueStatement) TokenLiteral() string { return "continue" }
func (c *ContinueStatement) Pos() token.Position  { return c.Position }
func (c *ContinueStatement) String() string {
	if c.Label == "" {
		return "continue;"
	}
	return "continue " + c.Label + ";"
}

// ThrowStatement raises a value as a Throw completion.
type ThrowStatement struct {
	Position token.Position
	Argument Expression
}

func (t *ThrowStatement) statementNode()      {}
func (t *ThrowStatement) TokenLiteral() string { return "throw" }
func (t *ThrowStatement) Pos() token.Position  { return t.Position }
func (t *ThrowStatement) String() string       { return "throw " + t.Argument.String() + ";" }

// CatchClause binds the thrown value (optionally destructured) for a
// try's catch block.
type CatchClause struct {
	Position token.Position
	Param    Pattern // nil for parameter-less `catch {}`
	Body     *BlockStatement
}

// TryStatement is `try {} [catch (e) {}] [finally {}]`.
type TryStatement struct {
	Position token.Position
	Block    *BlockStatement
	Handler  *CatchClause // nil if no catch
	Finally  *BlockStatement // nil if no finally
}

func (t *TryStatement) statementNode()      {}
func (t *TryStatement) TokenLiteral() string { return "try" }
func (t *TryStatement) Pos() token.Position  { return t.Position }
func (t *TryStatement) String() string       { return "try " + t.Block.String() + " ..." }

// LabeledStatement attaches a label to a statement for break/continue
// targeting.
type LabeledStatement struct {
	Position token.Position
	Label    string
	Body     Statement
}

func (l *LabeledStatement) statementNode()      {}
func (l *LabeledStatement) TokenLiteral() string { return l.Label }
func (l *LabeledStatement) Pos() token.Position  { return l.Position }
func (l *LabeledStatement) String() string       { return l.Label + ": " + l.Body.String() }

// WithStatement is the legacy, non-strict-only `with (obj) body`.
type WithStatement struct {
	Position token.Position
	Object   Expression
	Body     Statement
}

func (w *WithStatement) statementNode()      {}
func (w *WithStatement) TokenLiteral() string { return "with" }
func (w *WithStatement) Pos() token.Position  { return w.Position }
func (w *WithStatement) String() string       { return "with (" + w.Object.String() + ") " + w.Body.String() }
