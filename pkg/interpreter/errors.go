package interpreter

import (
	"errors"
	"fmt"
	"strings"

	"quill/interpreter-go/pkg/runtime"
)

// ErrorKind classifies runtime errors.
type ErrorKind int

const (
	KindError ErrorKind = iota
	KindTypeError
	KindNameError
	KindArityError
	KindIndexError
	KindAttributeError
	KindArithmeticError
	KindImportError
	KindInvariantViolation
	KindStackOverflow
	KindInterrupted
)

var errorKindNames = [...]string{
	KindError:              "Error",
	KindTypeError:          "TypeError",
	KindNameError:          "NameError",
	KindArityError:         "ArityError",
	KindIndexError:         "IndexError",
	KindAttributeError:     "AttributeError",
	KindArithmeticError:    "ArithmeticError",
	KindImportError:        "ImportError",
	KindInvariantViolation: "InvariantViolation",
	KindStackOverflow:      "StackOverflow",
	KindInterrupted:        "Interrupted",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Catchable is false for kinds that signal a defect upstream of the program
// or a host interrupt.
func (k ErrorKind) Catchable() bool {
	return k != KindInvariantViolation && k != KindInterrupted
}

// ParseErrorKind maps a kind name ("IndexError") back to its ErrorKind.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for i, candidate := range errorKindNames {
		if candidate == name {
			return ErrorKind(i), true
		}
	}
	return 0, false
}

const maxTraceFrames = 20

// RuntimeError is a raised error travelling up the evaluator. Value is the
// payload a catch clause can inspect (None when absent).
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Value   runtime.Value
	Trace   []string
	cause   error
}

func (e *RuntimeError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *RuntimeError) Unwrap() error {
	return e.cause
}

// Is matches another *RuntimeError with the same kind, so callers can write
// errors.Is(err, &RuntimeError{Kind: KindIndexError}).
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// ErrorValue is the value bound by `catch e`.
func (e *RuntimeError) ErrorValue() runtime.ErrorValue {
	payload := e.Value
	if payload == nil {
		payload = runtime.NoneValue{}
	}
	return runtime.ErrorValue{ErrorKind: e.Kind.String(), Message: e.Message, Payload: payload}
}

// Traceback renders the error followed by the call frames that were active
// when it was raised, innermost first.
func (e *RuntimeError) Traceback() string {
	var b strings.Builder
	b.WriteString(e.Error())
	for idx, frame := range e.Trace {
		if idx == maxTraceFrames {
			fmt.Fprintf(&b, "\n  ... %d more", len(e.Trace)-maxTraceFrames)
			break
		}
		b.WriteString("\n  in ")
		b.WriteString(frame)
	}
	return b.String()
}

// NewError builds a RuntimeError without a trace. Natives return these to
// raise a specific kind.
func NewError(kind ErrorKind, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) a RuntimeError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Kind == kind
}

func typeError(format string, args ...any) *RuntimeError {
	return NewError(KindTypeError, format, args...)
}

func arithmeticError(format string, args ...any) *RuntimeError {
	return NewError(KindArithmeticError, format, args...)
}

func overflowError(op string) *RuntimeError {
	return arithmeticError("integer overflow in %s", op)
}

func divisionByZeroError() *RuntimeError {
	return arithmeticError("division by zero")
}

func indexError(index, length int) *RuntimeError {
	return NewError(KindIndexError, "index %d out of bounds for length %d", index, length)
}

// asRuntimeError converts any error surfacing from evaluation (including host
// errors returned by natives) into a RuntimeError and records the call stack.
func (i *Interpreter) asRuntimeError(err error) *RuntimeError {
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		rerr = &RuntimeError{Kind: KindError, Message: err.Error(), cause: err}
	}
	if rerr.Trace == nil {
		rerr.Trace = i.snapshotCallStack()
	}
	return rerr
}

// FromErrorValue reverses ErrorValue so a caught error can be re-raised
// unchanged by native code.
func FromErrorValue(val runtime.ErrorValue) *RuntimeError {
	kind, ok := ParseErrorKind(val.ErrorKind)
	if !ok {
		kind = KindError
	}
	return &RuntimeError{Kind: kind, Message: val.Message, Value: val.Payload}
}
