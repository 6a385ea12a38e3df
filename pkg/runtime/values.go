package runtime

import (
	"context"

	"quill/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindBool Kind = iota
	KindInteger
	KindFloat
	KindString
	KindList
	KindFunction
	KindNativeFunction
	KindNone
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "Str"
	case KindList:
		return "List"
	case KindFunction:
		return "Closure"
	case KindNativeFunction:
		return "Native"
	case KindNone:
		return "None"
	case KindError:
		return "Error"
	default:
		return "unknown"
	}
}

// Value is implemented by every runtime value.
type Value interface {
	Kind() Kind
}

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

type IntegerValue struct {
	Val int32
}

func (IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float32
}

func (FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

// ListValue is mutable and shared by reference.
type ListValue struct {
	Elements []Value
}

func (*ListValue) Kind() Kind { return KindList }

func NewList(elements []Value) *ListValue {
	if elements == nil {
		elements = []Value{}
	}
	return &ListValue{Elements: elements}
}

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

// FunctionValue is a closure: parameters and body plus the frame that was
// active where it was defined. The frame is shared, not copied.
type FunctionValue struct {
	Name    string
	Params  []string
	Body    []ast.Statement
	Closure *Environment
}

func (*FunctionValue) Kind() Kind { return KindFunction }

// Invoker calls back into the evaluator from native code.
type Invoker interface {
	CallFunction(fn Value, args []Value) (Value, error)
}

type NativeCallContext struct {
	Context context.Context
	Env     *Environment
	Invoker Invoker
}

type NativeFunc func(ctx *NativeCallContext, args []Value) (Value, error)

// NativeFunctionValue is a host-implemented callable. Arity -1 accepts any
// number of arguments.
type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// ErrorValue is what a catch clause binds: the kind name, the message, and
// an optional payload.
type ErrorValue struct {
	ErrorKind string
	Message   string
	Payload   Value
}

func (ErrorValue) Kind() Kind { return KindError }
