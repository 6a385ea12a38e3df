package ast

import "strings"

type NodeType string

const (
	NodeBoolean             NodeType = "Boolean"
	NodeInteger             NodeType = "Integer"
	NodeFloat               NodeType = "Float"
	NodeStr                 NodeType = "Str"
	NodeList                NodeType = "List"
	NodeVariable            NodeType = "Variable"
	NodeBinaryOp            NodeType = "BinaryOp"
	NodeUnaryOp             NodeType = "UnaryOp"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeItemSubscription    NodeType = "ItemSubscription"
	NodeAttrAccess          NodeType = "AttrAccess"
	NodeFunctionExpr        NodeType = "FunctionExpr"
	NodeError               NodeType = "Error"
	NodeNone                NodeType = "None"
	NodeExpressionStatement NodeType = "ExpressionStatement"
	NodeIf                  NodeType = "If"
	NodeFunctionStatement   NodeType = "FunctionStatement"
	NodeAssignment          NodeType = "Assignment"
	NodeReturn              NodeType = "Return"
	NodeWhile               NodeType = "While"
	NodeFor                 NodeType = "For"
	NodeImport              NodeType = "Import"
	NodeTry                 NodeType = "Try"
	NodeName                NodeType = "Name"
	NodeCatch               NodeType = "Catch"
	NodeModule              NodeType = "Module"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Literals

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBoolean), Value: value}
}

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int32 `json:"value"`
}

func NewIntegerLiteral(value int32) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeInteger), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker

	Value float32 `json:"value"`
}

func NewFloatLiteral(value float32) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloat), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStr), Value: value}
}

type ListLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{nodeImpl: newNodeImpl(NodeList), Elements: elements}
}

type NoneLiteral struct {
	nodeImpl
	expressionMarker
}

func NewNoneLiteral() *NoneLiteral {
	return &NoneLiteral{nodeImpl: newNodeImpl(NodeNone)}
}

// Expressions

type Variable struct {
	nodeImpl
	expressionMarker

	Name string `json:"name"`
}

func NewVariable(name string) *Variable {
	return &Variable{nodeImpl: newNodeImpl(NodeVariable), Name: name}
}

type BinaryOp struct {
	nodeImpl
	expressionMarker

	Left  Expression `json:"left"`
	Op    Opcode     `json:"op"`
	Right Expression `json:"right"`
}

func NewBinaryOp(left Expression, op Opcode, right Expression) *BinaryOp {
	return &BinaryOp{nodeImpl: newNodeImpl(NodeBinaryOp), Left: left, Op: op, Right: right}
}

type UnaryOp struct {
	nodeImpl
	expressionMarker

	Op      Opcode     `json:"op"`
	Operand Expression `json:"operand"`
}

func NewUnaryOp(op Opcode, operand Expression) *UnaryOp {
	return &UnaryOp{nodeImpl: newNodeImpl(NodeUnaryOp), Op: op, Operand: operand}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type ItemSubscription struct {
	nodeImpl
	expressionMarker

	Target Expression `json:"target"`
	Index  Expression `json:"index"`
}

func NewItemSubscription(target, index Expression) *ItemSubscription {
	return &ItemSubscription{nodeImpl: newNodeImpl(NodeItemSubscription), Target: target, Index: index}
}

type AttrAccess struct {
	nodeImpl
	expressionMarker

	Target    Expression `json:"target"`
	Attribute string     `json:"attribute"`
}

func NewAttrAccess(target Expression, attribute string) *AttrAccess {
	return &AttrAccess{nodeImpl: newNodeImpl(NodeAttrAccess), Target: target, Attribute: attribute}
}

// FunctionExpr is a function literal in expression position. Name may be empty.
type FunctionExpr struct {
	nodeImpl
	expressionMarker

	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionExpr(name string, params []string, body []Statement) *FunctionExpr {
	return &FunctionExpr{nodeImpl: newNodeImpl(NodeFunctionExpr), Name: name, Params: params, Body: body}
}

// ErrorExpr marks a region the parser could not recover. It never evaluates.
type ErrorExpr struct {
	nodeImpl
	expressionMarker
}

func NewErrorExpr() *ErrorExpr {
	return &ErrorExpr{nodeImpl: newNodeImpl(NodeError)}
}

// Statements

type ExpressionStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
}

func NewExpressionStatement(expr Expression) *ExpressionStatement {
	return &ExpressionStatement{nodeImpl: newNodeImpl(NodeExpressionStatement), Expression: expr}
}

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Then      []Statement `json:"then"`
	Else      []Statement `json:"else,omitempty"`
}

func NewIfStatement(condition Expression, then []Statement, elseBody []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIf), Condition: condition, Then: then, Else: elseBody}
}

type FunctionStatement struct {
	nodeImpl
	statementMarker

	Name   string      `json:"name"`
	Params []string    `json:"params"`
	Body   []Statement `json:"body"`
}

func NewFunctionStatement(name string, params []string, body []Statement) *FunctionStatement {
	return &FunctionStatement{nodeImpl: newNodeImpl(NodeFunctionStatement), Name: name, Params: params, Body: body}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Name  string     `json:"name"`
	Value Expression `json:"value"`
}

func NewAssignment(name string, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Name: name, Value: value}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewReturnStatement(value Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturn), Value: value}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileLoop(condition Expression, body []Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhile), Condition: condition, Body: body}
}

type ForLoop struct {
	nodeImpl
	statementMarker

	Variable string      `json:"variable"`
	Iterable Expression  `json:"iterable"`
	Body     []Statement `json:"body"`
}

func NewForLoop(variable string, iterable Expression, body []Statement) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeFor), Variable: variable, Iterable: iterable, Body: body}
}

// Name is an imported identifier, optionally re-bound under Alias.
type Name struct {
	nodeImpl

	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

func NewName(name string) *Name {
	return &Name{nodeImpl: newNodeImpl(NodeName), Name: name}
}

func NewAlias(name, alias string) *Name {
	return &Name{nodeImpl: newNodeImpl(NodeName), Name: name, Alias: alias}
}

// BoundName is the identifier the import introduces into scope. For a dotted
// path without an alias it is the last segment.
func (n *Name) BoundName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name[strings.LastIndex(n.Name, ".")+1:]
}

type ImportStatement struct {
	nodeImpl
	statementMarker

	Names []*Name `json:"names"`
}

func NewImportStatement(names []*Name) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImport), Names: names}
}

type Catch struct {
	nodeImpl

	Variable string      `json:"variable,omitempty"`
	Filter   Expression  `json:"filter,omitempty"`
	Body     []Statement `json:"body"`
}

func NewCatch(variable string, filter Expression, body []Statement) *Catch {
	return &Catch{nodeImpl: newNodeImpl(NodeCatch), Variable: variable, Filter: filter, Body: body}
}

type TryStatement struct {
	nodeImpl
	statementMarker

	Body    []Statement `json:"body"`
	Catches []*Catch    `json:"catches"`
}

func NewTryStatement(body []Statement, catches []*Catch) *TryStatement {
	return &TryStatement{nodeImpl: newNodeImpl(NodeTry), Body: body, Catches: catches}
}

// Module

type Module struct {
	nodeImpl

	Body []Statement `json:"body"`
}

func NewModule(body []Statement) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Body: body}
}
