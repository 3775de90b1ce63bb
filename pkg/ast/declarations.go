package ast

import (
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// DeclarationKind enumerates the binding forms a VariableDeclaration may
// introduce.
type DeclarationKind string

const (
	DeclVar        DeclarationKind = "var"
	DeclLet        DeclarationKind = "let"
	DeclConst      DeclarationKind = "const"
	DeclUsing      DeclarationKind = "using"
	DeclAwaitUsing DeclarationKind = "await using"
)

// VariableDeclarator is one `pattern [= init]` entry of a declaration.
type VariableDeclarator struct {
	Position token.Position
	Target   Pattern
	Init     Expression // nil if no initializer
}

// VariableDeclaration is `var|let|const|using|await using decl, ...;`.
type VariableDeclaration struct {
	Position     token.Position
	Kind         DeclarationKind
	Declarations []*VariableDeclarator
}

func (v *VariableDeclaration) statementNode()      {}
func (v *VariableDeclaration) TokenLiteral() string { return string(v.Kind) }
func (v *VariableDeclaration) Pos() token.Position  { return v.Position }
func (v *VariableDeclaration) String() string {
	parts := make([]string, len(v.Declarations))
	for i, d := range v.Declarations {
		if d.Init != nil {
			parts[i] = d.Target.String() + " = " + d.Init.String()
		} else {
			parts[i] = d.Target.String()
		}
	}
	return string(v.Kind) + " " + strings.Join(parts, ", ") + ";"
}

// ImportSpecifier binds one imported name (ImportedName "" for default
// or namespace imports, Local always set).
type ImportSpecifier struct {
	ImportedName string
	Local        *Identifier
	Namespace    bool
	Default      bool
}

// ImportDeclaration is an `import` statement. The evaluator does not
// resolve module specifiers; evaluating one raises a SyntaxError.
type ImportDeclaration struct {
	Position    token.Position
	Specifiers  []*ImportSpecifier
	Source      string
}

func (i *ImportDeclaration) statementNode()      {}
func (i *ImportDeclaration) TokenLiteral() string { return "import" }
func (i *ImportDeclaration) Pos() token.Position  { return i.Position }
func (i *ImportDeclaration) String() string       { return "import ... from \"" + i.Source + "\";" }

// ExportSpecifier renames a local binding on export.
type ExportSpecifier struct {
	Local    *Identifier
	Exported string
}

// ExportDeclaration covers `export decl`, `export { a, b }`, `export
// default expr`, and re-exports (`export ... from "mod"`).
type ExportDeclaration struct {
	Position    token.Position
	Declaration Statement // non-nil for `export <decl>`
	Specifiers  []*ExportSpecifier
	Default     Expression // non-nil for `export default`
	Source      string     // non-empty for re-exports
}

func (e *ExportDeclaration) statementNode()      {}
func (e *ExportDeclaration) TokenLiteral() string { return "export" }
func (e *ExportDeclaration) Pos() token.Position  { return e.Position }
func (e *ExportDeclaration) String() string       { return "export ...;" }
