package interpreter

import (
	"errors"
	"fmt"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

// execBody runs statements in order in env. The first abrupt completion stops
// the body and is handed back to the caller.
func (i *Interpreter) execBody(body []ast.Statement, env *runtime.Environment) completion {
	var last runtime.Value = runtime.NoneValue{}
	for _, stmt := range body {
		if err := i.interrupted(); err != nil {
			return i.raised(err)
		}
		result := i.execStatement(stmt, env)
		if result.abrupt() {
			return result
		}
		last = result.value
	}
	return normal(last)
}

func (i *Interpreter) execStatement(stmt ast.Statement, env *runtime.Environment) completion {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		val, err := i.evaluateExpression(s.Expression, env)
		if err != nil {
			return i.raised(err)
		}
		return normal(val)
	case *ast.Assignment:
		val, err := i.evaluateExpression(s.Value, env)
		if err != nil {
			return i.raised(err)
		}
		env.Set(s.Name, val)
		return normal(nil)
	case *ast.IfStatement:
		return i.execIf(s, env)
	case *ast.WhileLoop:
		return i.execWhile(s, env)
	case *ast.ForLoop:
		return i.execFor(s, env)
	case *ast.FunctionStatement:
		fn := &runtime.FunctionValue{Name: s.Name, Params: s.Params, Body: s.Body, Closure: env}
		env.Define(s.Name, fn)
		return normal(nil)
	case *ast.ReturnStatement:
		var val runtime.Value = runtime.NoneValue{}
		if s.Value != nil {
			var err error
			val, err = i.evaluateExpression(s.Value, env)
			if err != nil {
				return i.raised(err)
			}
		}
		return returning(val)
	case *ast.ImportStatement:
		return i.execImport(s, env)
	case *ast.TryStatement:
		return i.execTry(s, env)
	case nil:
		return i.raised(NewError(KindInvariantViolation, "nil statement"))
	default:
		return i.raised(NewError(KindInvariantViolation, "unsupported statement type %s", stmt.NodeType()))
	}
}

func (i *Interpreter) execIf(s *ast.IfStatement, env *runtime.Environment) completion {
	cond, err := i.evaluateExpression(s.Condition, env)
	if err != nil {
		return i.raised(err)
	}
	if runtime.Truthy(cond) {
		return i.execBody(s.Then, env)
	}
	if len(s.Else) > 0 {
		return i.execBody(s.Else, env)
	}
	return normal(nil)
}

func (i *Interpreter) execWhile(s *ast.WhileLoop, env *runtime.Environment) completion {
	for {
		if err := i.interrupted(); err != nil {
			return i.raised(err)
		}
		cond, err := i.evaluateExpression(s.Condition, env)
		if err != nil {
			return i.raised(err)
		}
		if !runtime.Truthy(cond) {
			return normal(nil)
		}
		result := i.execBody(s.Body, env.Extend())
		if result.abrupt() {
			return result
		}
	}
}

func (i *Interpreter) execFor(s *ast.ForLoop, env *runtime.Environment) completion {
	iterable, err := i.evaluateExpression(s.Iterable, env)
	if err != nil {
		return i.raised(err)
	}
	list, ok := iterable.(*runtime.ListValue)
	if !ok {
		return i.raised(typeError("for loop expects a List, got %s", runtime.TypeName(iterable)))
	}
	// Iterate over the elements present when the loop starts so a body that
	// appends to the list still terminates.
	elements := append([]runtime.Value(nil), list.Elements...)
	for _, elem := range elements {
		iterEnv := env.Extend()
		iterEnv.Define(s.Variable, elem)
		result := i.execBody(s.Body, iterEnv)
		if result.abrupt() {
			return result
		}
	}
	return normal(nil)
}

func (i *Interpreter) execImport(s *ast.ImportStatement, env *runtime.Environment) completion {
	for _, name := range s.Names {
		if i.imports == nil {
			return i.raised(NewError(KindImportError, "cannot import %q: no import resolver configured", name.Name))
		}
		val, err := i.imports.ResolveImport(i.context(), name.Name)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) && !rerr.Kind.Catchable() {
				return i.raised(rerr)
			}
			return i.raised(&RuntimeError{
				Kind:    KindImportError,
				Message: fmt.Sprintf("cannot import %q: %v", name.Name, err),
				cause:   err,
			})
		}
		if val == nil {
			val = runtime.NoneValue{}
		}
		i.logger.Debug("import resolved", "name", name.Name, "bound", name.BoundName(), "kind", runtime.TypeName(val))
		env.Define(name.BoundName(), val)
	}
	return normal(nil)
}

func (i *Interpreter) execTry(s *ast.TryStatement, env *runtime.Environment) completion {
	result := i.execBody(s.Body, env.Extend())
	if result.kind != completionRaised || !result.err.Kind.Catchable() {
		return result
	}
	for _, clause := range s.Catches {
		handlerEnv := env.Extend()
		if clause.Variable != "" {
			handlerEnv.Define(clause.Variable, result.err.ErrorValue())
		}
		matched, err := i.catchMatches(clause, result.err, handlerEnv)
		if err != nil {
			return i.raised(err)
		}
		if matched {
			i.logger.Debug("error caught", "kind", result.err.Kind.String())
			return i.execBody(clause.Body, handlerEnv)
		}
	}
	return result
}

// catchMatches decides whether clause handles rerr. A bare name that is an
// error kind (and not a binding) matches by kind; any other filter is
// evaluated with the catch variable in scope.
func (i *Interpreter) catchMatches(clause *ast.Catch, rerr *RuntimeError, env *runtime.Environment) (bool, error) {
	if clause.Filter == nil {
		return true, nil
	}
	if ident, ok := clause.Filter.(*ast.Variable); ok && !env.Has(ident.Name) {
		if kind, ok := ParseErrorKind(ident.Name); ok {
			return kindMatches(kind, rerr.Kind), nil
		}
	}
	val, err := i.evaluateExpression(clause.Filter, env)
	if err != nil {
		return false, err
	}
	return filterValueMatches(val, rerr), nil
}

func filterValueMatches(val runtime.Value, rerr *RuntimeError) bool {
	return filterMatches(val, rerr, nil)
}

func filterMatches(val runtime.Value, rerr *RuntimeError, seen map[*runtime.ListValue]bool) bool {
	switch v := val.(type) {
	case runtime.StringValue:
		kind, ok := ParseErrorKind(v.Val)
		return ok && kindMatches(kind, rerr.Kind)
	case *runtime.ListValue:
		if seen[v] {
			return false
		}
		if seen == nil {
			seen = make(map[*runtime.ListValue]bool)
		}
		seen[v] = true
		for _, elem := range v.Elements {
			if filterMatches(elem, rerr, seen) {
				return true
			}
		}
		return false
	case runtime.ErrorValue:
		return v.ErrorKind == rerr.Kind.String()
	default:
		return runtime.Truthy(val)
	}
}

// kindMatches treats the generic Error kind as matching every catchable error.
func kindMatches(filter, raised ErrorKind) bool {
	return filter == KindError || filter == raised
}
