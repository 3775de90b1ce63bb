// Package token provides source position information shared by the AST
// and the error catalog.
package token

import "fmt"

// Position identifies a location in source text. Line and Column are
// 1-based; Offset is the 0-based byte offset from the start of the file.
type Position struct {
	Line   int
	Column int
	Offset int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.Offset == 0
}
