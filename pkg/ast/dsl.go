package ast

// Literal helpers.

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Int(value int32) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float32) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func List(elements ...Expression) *ListLiteral {
	return NewListLiteral(elements)
}

func None() *NoneLiteral {
	return NewNoneLiteral()
}

func ID(name string) *Variable {
	return NewVariable(name)
}

// Expression helpers.

func Bin(left Expression, op Opcode, right Expression) *BinaryOp {
	return NewBinaryOp(left, op, right)
}

func Un(op Opcode, operand Expression) *UnaryOp {
	return NewUnaryOp(op, operand)
}

func Call(callee string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(callee), args)
}

func CallExpr(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func Index(target, index Expression) *ItemSubscription {
	return NewItemSubscription(target, index)
}

func Attr(target Expression, name string) *AttrAccess {
	return NewAttrAccess(target, name)
}

func Lambda(params []string, body ...Statement) *FunctionExpr {
	return NewFunctionExpr("", params, body)
}

// Statement helpers.

func Block(stmts ...Statement) []Statement {
	return stmts
}

func Expr(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(name, value)
}

func Ret(value Expression) *ReturnStatement {
	return NewReturnStatement(value)
}

func If(condition Expression, then []Statement, elseBody []Statement) *IfStatement {
	return NewIfStatement(condition, then, elseBody)
}

func While(condition Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(condition, body)
}

func For(variable string, iterable Expression, body ...Statement) *ForLoop {
	return NewForLoop(variable, iterable, body)
}

func Fn(name string, params []string, body ...Statement) *FunctionStatement {
	return NewFunctionStatement(name, params, body)
}

func Import(names ...*Name) *ImportStatement {
	return NewImportStatement(names)
}

func Try(body []Statement, catches ...*Catch) *TryStatement {
	return NewTryStatement(body, catches)
}

func CatchAll(variable string, body ...Statement) *Catch {
	return NewCatch(variable, nil, body)
}

func CatchKind(variable, kind string, body ...Statement) *Catch {
	return NewCatch(variable, ID(kind), body)
}

func Program(stmts ...Statement) *Module {
	return NewModule(stmts)
}
