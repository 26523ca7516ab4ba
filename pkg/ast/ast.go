// Package ast defines the whispy abstract syntax tree.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	Offset    int    `json:"offset"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// To returns a span running from the start of s to the end of end.
func (s Span) To(end Span) Span {
	return Span{
		File:      s.File,
		Offset:    s.Offset,
		StartLine: s.StartLine,
		StartCol:  s.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// Container is a node holding an ordered sequence of child nodes.
type Container interface {
	Node
	Nodes() []Node
	// Alike returns a new container of the same variant and span holding children.
	Alike(children []Node) Container
}

// Atom is a runtime value wrapped by a Literal. It is satisfied by value.Value;
// the interface lives here so the tree does not depend on the runtime.
type Atom interface {
	TypeName() string
}

// Role identifies which special form a Keyword marker heads.
type Role int

const (
	RoleAssign Role = iota
	RoleCondition
	RoleLambda
)

func (r Role) String() string {
	switch r {
	case RoleAssign:
		return "assign"
	case RoleCondition:
		return "condition"
	case RoleLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// --- Containers ---

// Root is the top-level sequence of expressions of a source text.
type Root struct {
	Span     Span
	Children []Node
}

func (n *Root) Kind() string   { return "Root" }
func (n *Root) NodeSpan() Span { return n.Span }
func (n *Root) Nodes() []Node  { return n.Children }
func (n *Root) Alike(children []Node) Container {
	return &Root{Span: n.Span, Children: children}
}

// Apply is a function application: the first child is the callee, the rest
// are argument expressions.
type Apply struct {
	Span     Span
	Children []Node
}

func (n *Apply) Kind() string   { return "Apply" }
func (n *Apply) NodeSpan() Span { return n.Span }
func (n *Apply) Nodes() []Node  { return n.Children }
func (n *Apply) Alike(children []Node) Container {
	return &Apply{Span: n.Span, Children: children}
}

// Callee returns the first child, or nil for the empty application.
func (n *Apply) Callee() Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// Args returns the argument expressions.
func (n *Apply) Args() []Node {
	if len(n.Children) == 0 {
		return nil
	}
	return n.Children[1:]
}

// Assign binds a variable (Symbol target) or defines a function (Apply target
// of the form (name param...)). Well-formed assignments have two children.
type Assign struct {
	Span     Span
	Keyword  string
	Children []Node
}

func (n *Assign) Kind() string   { return "Assign" }
func (n *Assign) NodeSpan() Span { return n.Span }
func (n *Assign) Nodes() []Node  { return n.Children }
func (n *Assign) Alike(children []Node) Container {
	return &Assign{Span: n.Span, Keyword: n.Keyword, Children: children}
}

// Target returns the binding target, or nil when missing.
func (n *Assign) Target() Node {
	if len(n.Children) < 1 {
		return nil
	}
	return n.Children[0]
}

// Value returns the value expression, or nil when missing.
func (n *Assign) Value() Node {
	if len(n.Children) < 2 {
		return nil
	}
	return n.Children[1]
}

// Condition holds (predicate result) clauses evaluated in order.
type Condition struct {
	Span     Span
	Keyword  string
	Children []Node
}

func (n *Condition) Kind() string   { return "Condition" }
func (n *Condition) NodeSpan() Span { return n.Span }
func (n *Condition) Nodes() []Node  { return n.Children }
func (n *Condition) Alike(children []Node) Container {
	return &Condition{Span: n.Span, Keyword: n.Keyword, Children: children}
}

// Lambda is an anonymous function: a parameter list and a body.
type Lambda struct {
	Span     Span
	Children []Node
}

func (n *Lambda) Kind() string   { return "Lambda" }
func (n *Lambda) NodeSpan() Span { return n.Span }
func (n *Lambda) Nodes() []Node  { return n.Children }
func (n *Lambda) Alike(children []Node) Container {
	return &Lambda{Span: n.Span, Children: children}
}

// Params returns the parameter list node, or nil when missing.
func (n *Lambda) Params() Node {
	if len(n.Children) < 1 {
		return nil
	}
	return n.Children[0]
}

// Body returns the body expression, or nil when missing.
func (n *Lambda) Body() Node {
	if len(n.Children) < 2 {
		return nil
	}
	return n.Children[1]
}

// --- Leaves ---

// Symbol is a name resolved against a scope.
type Symbol struct {
	Span Span
	Name string
}

func (n *Symbol) Kind() string   { return "Symbol" }
func (n *Symbol) NodeSpan() Span { return n.Span }

// Literal wraps exactly one runtime value (Int, Float, Bool or String).
type Literal struct {
	Span  Span
	Value Atom
}

func (n *Literal) Kind() string   { return "Literal" }
func (n *Literal) NodeSpan() Span { return n.Span }

// Operator wraps one of the operator symbols (+ - * / = ...).
type Operator struct {
	Span Span
	Op   string
}

func (n *Operator) Kind() string   { return "Operator" }
func (n *Operator) NodeSpan() Span { return n.Span }

// QuoteShorthand is the ' sugar. The builder rewrites it away.
type QuoteShorthand struct {
	Span Span
}

func (n *QuoteShorthand) Kind() string   { return "QuoteShorthand" }
func (n *QuoteShorthand) NodeSpan() Span { return n.Span }

// Keyword marks the head of a special form (def, cond, lambda ...) before
// the builder pulls it up into its dedicated node.
type Keyword struct {
	Span Span
	Word string
	Role Role
}

func (n *Keyword) Kind() string   { return "Keyword" }
func (n *Keyword) NodeSpan() Span { return n.Span }

// IsLeaf reports whether n has no child nodes.
func IsLeaf(n Node) bool {
	c, ok := n.(Container)
	return !ok || len(c.Nodes()) == 0
}

// Walk calls fn for n and, while fn returns true, for every descendant in
// depth-first order.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Nodes() {
			Walk(child, fn)
		}
	}
}
