package interpreter

import (
	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.BooleanLiteral:
		return runtime.BoolValue{Val: e.Value}, nil
	case *ast.IntegerLiteral:
		return runtime.IntegerValue{Val: e.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.NoneLiteral:
		return runtime.NoneValue{}, nil
	case *ast.ListLiteral:
		elements := make([]runtime.Value, 0, len(e.Elements))
		for _, elemExpr := range e.Elements {
			val, err := i.evaluateExpression(elemExpr, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return runtime.NewList(elements), nil
	case *ast.Variable:
		return i.lookupName(e.Name, env)
	case *ast.BinaryOp:
		return i.evaluateBinaryOp(e, env)
	case *ast.UnaryOp:
		operand, err := i.evaluateExpression(e.Operand, env)
		if err != nil {
			return nil, err
		}
		return applyUnary(e.Op, operand)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(e, env)
	case *ast.ItemSubscription:
		target, err := i.evaluateExpression(e.Target, env)
		if err != nil {
			return nil, err
		}
		index, err := i.evaluateExpression(e.Index, env)
		if err != nil {
			return nil, err
		}
		return subscript(target, index)
	case *ast.AttrAccess:
		target, err := i.evaluateExpression(e.Target, env)
		if err != nil {
			return nil, err
		}
		return i.resolveAttribute(target, e.Attribute, env)
	case *ast.FunctionExpr:
		return i.makeFunctionExpr(e, env), nil
	case *ast.ErrorExpr:
		return nil, NewError(KindInvariantViolation, "evaluated an Error node left by the parser")
	case nil:
		return nil, NewError(KindInvariantViolation, "nil expression")
	default:
		return nil, NewError(KindInvariantViolation, "unsupported expression type %s", expr.NodeType())
	}
}

// lookupName walks the scope chain, then falls back to the native registry.
func (i *Interpreter) lookupName(name string, env *runtime.Environment) (runtime.Value, error) {
	if val, ok := env.Lookup(name); ok {
		return val, nil
	}
	if fn, ok := i.natives[name]; ok {
		return fn, nil
	}
	return nil, NewError(KindNameError, "name '%s' is not defined", name)
}

func (i *Interpreter) evaluateBinaryOp(e *ast.BinaryOp, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpAnd:
		if !runtime.Truthy(left) {
			return runtime.BoolValue{Val: false}, nil
		}
		right, err := i.evaluateExpression(e.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	case ast.OpOr:
		if runtime.Truthy(left) {
			return runtime.BoolValue{Val: true}, nil
		}
		right, err := i.evaluateExpression(e.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	}
	right, err := i.evaluateExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	return applyBinary(e.Op, left, right)
}

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.callValue(callee, args, env)
}

// makeFunctionExpr builds the closure for a function literal. A named literal
// sees its own name through an intermediate frame so it can recurse without
// binding the name in the enclosing scope.
func (i *Interpreter) makeFunctionExpr(e *ast.FunctionExpr, env *runtime.Environment) *runtime.FunctionValue {
	if e.Name == "" {
		return &runtime.FunctionValue{Params: e.Params, Body: e.Body, Closure: env}
	}
	scope := env.Extend()
	fn := &runtime.FunctionValue{Name: e.Name, Params: e.Params, Body: e.Body, Closure: scope}
	scope.Define(e.Name, fn)
	return fn
}
