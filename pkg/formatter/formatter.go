// Package formatter prints a whispy AST back as canonical source.
package formatter

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/lexer"
	"github.com/thomasrohde/whispy/pkg/parser"
	"github.com/thomasrohde/whispy/pkg/value"
)

const indent = "  "

// MaxWidth is the column limit past which a form breaks its arguments onto
// separate lines.
const MaxWidth = 80

// Format pretty-prints a whispy AST back to source code, one top-level form
// per line.
func Format(root *ast.Root) string {
	if len(root.Children) == 0 {
		return ""
	}
	lines := make([]string, len(root.Children))
	for i, n := range root.Children {
		lines[i] = formatNode(n, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments reports whether source contains a ; comment outside string
// literals. Formatting drops comments.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch source[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return true
			}
		}
	}
	return false
}

func formatNode(n ast.Node, depth int) string {
	switch node := n.(type) {
	case *ast.Literal:
		return formatLiteral(node.Value)
	case *ast.Symbol:
		return node.Name
	case *ast.Operator:
		return node.Op
	case *ast.Keyword:
		return node.Word
	case *ast.QuoteShorthand:
		return "'"
	case *ast.Apply:
		if sym, ok := node.Callee().(*ast.Symbol); ok && sym.Name == parser.QuoteName && len(node.Children) == 2 {
			return "'" + formatNode(node.Children[1], depth)
		}
		return formatList("", node.Children, depth)
	case *ast.Assign:
		return formatList(node.Keyword, node.Children, depth)
	case *ast.Condition:
		return formatList(node.Keyword, node.Children, depth)
	case *ast.Lambda:
		return formatList("lambda", node.Children, depth)
	case ast.Container:
		return formatList("", node.Nodes(), depth)
	}
	return ""
}

func formatLiteral(a ast.Atom) string {
	switch v := a.(type) {
	case value.String:
		return `"` + lexer.Escape(v.Value) + `"`
	case value.Float:
		return formatFloatLiteral(v.Value)
	case value.Value:
		return v.String()
	}
	return ""
}

// formatFloatLiteral prints a float in the digits.digits form the lexer
// accepts, never in scientific notation.
func formatFloatLiteral(f float64) string {
	raw := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(raw, ".") {
		raw += ".0"
	}
	return raw
}

// formatList prints (head child...). When the flat form is too wide or a
// child spans lines, the head and first element stay on the opening line
// and every further element goes on its own indented line.
func formatList(head string, children []ast.Node, depth int) string {
	parts := make([]string, 0, len(children)+1)
	if head != "" {
		parts = append(parts, head)
	}
	for _, c := range children {
		parts = append(parts, formatNode(c, depth+1))
	}

	flat := "(" + strings.Join(parts, " ") + ")"
	fits := depth*len(indent)+runewidth.StringWidth(flat) <= MaxWidth
	if (fits && !strings.Contains(flat, "\n")) || len(parts) <= 2 {
		return flat
	}

	pad := strings.Repeat(indent, depth+1)
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(parts[0])
	sb.WriteString(" ")
	sb.WriteString(parts[1])
	for _, p := range parts[2:] {
		sb.WriteString("\n")
		sb.WriteString(pad)
		sb.WriteString(p)
	}
	sb.WriteString(")")
	return sb.String()
}
