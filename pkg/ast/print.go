package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a node tree as indented text, one node per line.
func Print(node Node) string {
	var p printer
	p.node(node, 0)
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) line(depth int, format string, args ...any) {
	p.b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) body(label string, stmts []Statement, depth int) {
	p.line(depth, "%s:", label)
	for _, stmt := range stmts {
		p.node(stmt, depth+1)
	}
}

func (p *printer) node(node Node, depth int) {
	switch n := node.(type) {
	case nil:
		p.line(depth, "<nil>")
	case *Module:
		p.line(depth, "Module")
		for _, stmt := range n.Body {
			p.node(stmt, depth+1)
		}
	case *BooleanLiteral:
		p.line(depth, "Boolean %t", n.Value)
	case *IntegerLiteral:
		p.line(depth, "Integer %d", n.Value)
	case *FloatLiteral:
		p.line(depth, "Float %s", strconv.FormatFloat(float64(n.Value), 'g', -1, 32))
	case *StringLiteral:
		p.line(depth, "Str %q", n.Value)
	case *NoneLiteral:
		p.line(depth, "None")
	case *ErrorExpr:
		p.line(depth, "Error")
	case *ListLiteral:
		p.line(depth, "List")
		for _, elem := range n.Elements {
			p.node(elem, depth+1)
		}
	case *Variable:
		p.line(depth, "Variable %s", n.Name)
	case *BinaryOp:
		p.line(depth, "BinaryOp %s", n.Op.Name())
		p.node(n.Left, depth+1)
		p.node(n.Right, depth+1)
	case *UnaryOp:
		p.line(depth, "UnaryOp %s", n.Op.Name())
		p.node(n.Operand, depth+1)
	case *FunctionCall:
		p.line(depth, "FunctionCall")
		p.node(n.Callee, depth+1)
		for _, arg := range n.Arguments {
			p.node(arg, depth+1)
		}
	case *ItemSubscription:
		p.line(depth, "ItemSubscription")
		p.node(n.Target, depth+1)
		p.node(n.Index, depth+1)
	case *AttrAccess:
		p.line(depth, "AttrAccess .%s", n.Attribute)
		p.node(n.Target, depth+1)
	case *FunctionExpr:
		p.line(depth, "Function %s(%s)", n.Name, strings.Join(n.Params, ", "))
		p.body("body", n.Body, depth+1)
	case *ExpressionStatement:
		p.line(depth, "Expression")
		p.node(n.Expression, depth+1)
	case *IfStatement:
		p.line(depth, "If")
		p.node(n.Condition, depth+1)
		p.body("then", n.Then, depth+1)
		if len(n.Else) > 0 {
			p.body("else", n.Else, depth+1)
		}
	case *FunctionStatement:
		p.line(depth, "Function %s(%s)", n.Name, strings.Join(n.Params, ", "))
		p.body("body", n.Body, depth+1)
	case *Assignment:
		p.line(depth, "Assignment %s", n.Name)
		p.node(n.Value, depth+1)
	case *ReturnStatement:
		p.line(depth, "Return")
		p.node(n.Value, depth+1)
	case *WhileLoop:
		p.line(depth, "While")
		p.node(n.Condition, depth+1)
		p.body("body", n.Body, depth+1)
	case *ForLoop:
		p.line(depth, "For %s", n.Variable)
		p.node(n.Iterable, depth+1)
		p.body("body", n.Body, depth+1)
	case *ImportStatement:
		parts := make([]string, 0, len(n.Names))
		for _, name := range n.Names {
			if name.Alias != "" {
				parts = append(parts, name.Name+" as "+name.Alias)
			} else {
				parts = append(parts, name.Name)
			}
		}
		p.line(depth, "Import %s", strings.Join(parts, ", "))
	case *TryStatement:
		p.line(depth, "Try")
		p.body("body", n.Body, depth+1)
		for _, clause := range n.Catches {
			p.node(clause, depth+1)
		}
	case *Catch:
		label := "Catch"
		if clause := n.Variable; clause != "" {
			label += " " + clause
		}
		p.line(depth, "%s", label)
		if n.Filter != nil {
			p.line(depth+1, "filter:")
			p.node(n.Filter, depth+2)
		}
		p.body("body", n.Body, depth+1)
	default:
		p.line(depth, "%s", node.NodeType())
	}
}
