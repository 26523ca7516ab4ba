package stdlib

import (
	"github.com/thomasrohde/whispy/pkg/ast"
	"github.com/thomasrohde/whispy/pkg/value"
)

// (quote x) returns x unevaluated: symbols stay symbols, lists become
// lists of quoted elements.
func builtinQuote(_ *value.Call, nodes []ast.Node) (value.Value, error) {
	if len(nodes) != 1 {
		return nil, evalErr("quote takes exactly one argument, got %d", len(nodes))
	}
	return Quote(nodes[0])
}

// Quote converts a node into the data it denotes.
func Quote(n ast.Node) (value.Value, error) {
	switch node := n.(type) {
	case *ast.Symbol:
		return value.NewSymbol(node.Name), nil
	case *ast.Operator:
		return value.NewSymbol(node.Op), nil
	case *ast.Keyword:
		return value.NewSymbol(node.Word), nil
	case *ast.Literal:
		if v, ok := node.Value.(value.Value); ok {
			return v, nil
		}
	case *ast.Apply:
		return quoteList(nil, node.Children)
	case *ast.Assign:
		return quoteList(&ast.Symbol{Name: node.Keyword}, node.Children)
	case *ast.Condition:
		return quoteList(&ast.Symbol{Name: node.Keyword}, node.Children)
	case *ast.Lambda:
		return quoteList(&ast.Symbol{Name: "lambda"}, node.Children)
	}
	return nil, evalErr("cannot quote a %s form", n.Kind())
}

// quoteList quotes children into a list, led by head when a special form
// was pulled up out of its keyword.
func quoteList(head ast.Node, children []ast.Node) (value.Value, error) {
	nodes := children
	if head != nil {
		nodes = append([]ast.Node{head}, children...)
	}
	items := make([]value.Value, len(nodes))
	for i, c := range nodes {
		v, err := Quote(c)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return value.NewList(items), nil
}

// (list x...) → list
func builtinList(_ *value.Call, args []value.Value) (value.Value, error) {
	items := make([]value.Value, len(args))
	copy(items, args)
	return value.NewList(items), nil
}

func listArg(name string, args []value.Value) (value.List, error) {
	if len(args) != 1 {
		return value.List{}, evalErr("%s takes exactly one argument, got %d", name, len(args))
	}
	l, ok := args[0].(value.List)
	if !ok {
		return value.List{}, evalErr("%s: expected a list, got %s", name, args[0].TypeName())
	}
	return l, nil
}

// (car list) → first element
func builtinCar(_ *value.Call, args []value.Value) (value.Value, error) {
	l, err := listArg("car", args)
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, evalErr("car: empty list")
	}
	return l.Items[0], nil
}

// (cdr list) → list without its first element
func builtinCdr(_ *value.Call, args []value.Value) (value.Value, error) {
	l, err := listArg("cdr", args)
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, evalErr("cdr: empty list")
	}
	rest := make([]value.Value, len(l.Items)-1)
	copy(rest, l.Items[1:])
	return value.NewList(rest), nil
}

// (cons x list) → list with x prepended
func builtinCons(_ *value.Call, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, evalErr("cons takes exactly two arguments, got %d", len(args))
	}
	l, ok := args[1].(value.List)
	if !ok {
		return nil, evalErr("cons: expected a list, got %s", args[1].TypeName())
	}
	items := make([]value.Value, 0, len(l.Items)+1)
	items = append(items, args[0])
	items = append(items, l.Items...)
	return value.NewList(items), nil
}

// (len x) → length of a list or string
func builtinLen(_ *value.Call, args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, evalErr("len takes exactly one argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case value.List:
		return value.NewInt(int64(len(v.Items))), nil
	case value.String:
		return value.NewInt(int64(len([]rune(v.Value)))), nil
	}
	return nil, evalErr("len: expected a list or string, got %s", args[0].TypeName())
}
