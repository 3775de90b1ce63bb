package ast

import (
	"strings"

	"github.com/cwbudde/go-ecma/pkg/token"
)

// AssignmentPattern is a binding target with a default: `x = expr`.
type AssignmentPattern struct {
	Position token.Position
	Target   Pattern
	Default  Expression
}

func (a *AssignmentPattern) patternNode()         {}
func (a *AssignmentPattern) expressionNode()      {}
func (a *AssignmentPattern) TokenLiteral() string { return "=" }
func (a *AssignmentPattern) Pos() token.Position  { return a.Position }
func (a *AssignmentPattern) String() string       { return a.Target.String() + " = " + a.Default.String() }

// RestElement is `...target` inside an array or object pattern, or in a
// parameter list.
type RestElement struct {
	Position token.Position
	Target   Pattern
}

func (r *RestElement) patternNode()         {}
func (r *RestElement) expressionNode()      {}
func (r *RestElement) TokenLiteral() string { return "..." }
func (r *RestElement) Pos() token.Position  { return r.Position }
func (r *RestElement) String() string       { return "..." + r.Target.String() }

// ArrayPattern destructures an iterable; Elements entries are nil for
// elided positions (holes), and the final entry may be a *RestElement.
type ArrayPattern struct {
	Position token.Position
	Elements []Pattern
}

func (a *ArrayPattern) patternNode()         {}
func (a *ArrayPattern) expressionNode()      {}
func (a *ArrayPattern) TokenLiteral() string { return "[" }
func (a *ArrayPattern) Pos() token.Position  { return a.Position }
func (a *ArrayPattern) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e == nil {
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectPatternProperty is one binding of an ObjectPattern.
type ObjectPatternProperty struct {
	Position  token.Position
	Key       Expression // Identifier or computed Expression
	Computed  bool
	Value     Pattern // binding target (may be AssignmentPattern for defaults)
	Shorthand bool
}

// ObjectPattern destructures an object; Rest, if non-nil, is the plain
// identifier receiving the remaining own enumerable properties.
type ObjectPattern struct {
	Position   token.Position
	Properties []*ObjectPatternProperty
	Rest       *Identifier
}

func (o *ObjectPattern) patternNode()         {}
func (o *ObjectPattern) expressionNode()      {}
func (o *ObjectPattern) TokenLiteral() string { return "{" }
func (o *ObjectPattern) Pos() token.Position  { return o.Position }
func (o *ObjectPattern) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	if o.Rest != nil {
		parts = append(parts, "..."+o.Rest.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
