package interpreter

import "quill/interpreter-go/pkg/runtime"

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturning
	completionRaised
)

func (k completionKind) String() string {
	switch k {
	case completionNormal:
		return "normal"
	case completionReturning:
		return "returning"
	case completionRaised:
		return "raised"
	}
	return "unknown"
}

// completion is the outcome of executing a statement or a body. A returning
// completion unwinds to the nearest function call; a raised one unwinds to the
// nearest matching catch or to the top of the module.
type completion struct {
	kind  completionKind
	value runtime.Value
	err   *RuntimeError
}

func normal(value runtime.Value) completion {
	if value == nil {
		value = runtime.NoneValue{}
	}
	return completion{kind: completionNormal, value: value}
}

func returning(value runtime.Value) completion {
	if value == nil {
		value = runtime.NoneValue{}
	}
	return completion{kind: completionReturning, value: value}
}

func (i *Interpreter) raised(err error) completion {
	rerr := i.asRuntimeError(err)
	return completion{kind: completionRaised, value: rerr.ErrorValue(), err: rerr}
}

func (c completion) abrupt() bool {
	return c.kind != completionNormal
}
