// Package stdlib provides the host natives and member lookups available to
// every program run by the quill CLI.
package stdlib

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/runtime"
)

type config struct {
	stdout io.Writer
}

// MaxRangeLength is the longest list range() builds.
const MaxRangeLength = 1 << 24

type Option func(*config)

// WithStdout redirects print output (os.Stdout by default).
func WithStdout(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.stdout = w
		}
	}
}

// Install registers the builtin natives on interp and makes Attributes its
// member resolver.
func Install(interp *interpreter.Interpreter, opts ...Option) {
	cfg := config{stdout: os.Stdout}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, fn := range Natives(cfg.stdout) {
		interp.RegisterNative(fn)
	}
	interp.SetAttributeResolver(Attributes)
}

// Natives returns the builtin functions, with print writing to stdout.
func Natives(stdout io.Writer) []runtime.NativeFunctionValue {
	printFn := runtime.NativeFunctionValue{
		Name:  "print",
		Arity: -1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			parts := make([]string, 0, len(args))
			for _, arg := range args {
				parts = append(parts, runtime.Format(arg))
			}
			if _, err := fmt.Fprintln(stdout, strings.Join(parts, " ")); err != nil {
				return nil, fmt.Errorf("print: %w", err)
			}
			return runtime.NoneValue{}, nil
		},
	}

	lenFn := runtime.NativeFunctionValue{
		Name:  "len",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			switch v := args[0].(type) {
			case runtime.StringValue:
				return lengthValue(utf8.RuneCountInString(v.Val))
			case *runtime.ListValue:
				return lengthValue(len(v.Elements))
			default:
				return nil, interpreter.NewError(interpreter.KindTypeError, "len() argument must be Str or List, not %s", runtime.TypeName(v))
			}
		},
	}

	strFn := runtime.NativeFunctionValue{
		Name:  "str",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: runtime.Format(args[0])}, nil
		},
	}

	typeFn := runtime.NativeFunctionValue{
		Name:  "type",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: runtime.TypeName(args[0])}, nil
		},
	}

	appendFn := runtime.NativeFunctionValue{
		Name:  "append",
		Arity: 2,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			list, ok := args[0].(*runtime.ListValue)
			if !ok {
				return nil, interpreter.NewError(interpreter.KindTypeError, "append() expects a List, not %s", runtime.TypeName(args[0]))
			}
			list.Elements = append(list.Elements, args[1])
			return list, nil
		},
	}

	rangeFn := runtime.NativeFunctionValue{
		Name:  "range",
		Arity: -1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			var start, stop int32
			switch len(args) {
			case 1:
				n, err := integerArg("range", args[0])
				if err != nil {
					return nil, err
				}
				stop = n
			case 2:
				a, err := integerArg("range", args[0])
				if err != nil {
					return nil, err
				}
				b, err := integerArg("range", args[1])
				if err != nil {
					return nil, err
				}
				start, stop = a, b
			default:
				return nil, interpreter.NewError(interpreter.KindArityError, "range() takes 1 or 2 arguments but %d were given", len(args))
			}
			if stop <= start {
				return runtime.NewList(nil), nil
			}
			size := int64(stop) - int64(start)
			if size > MaxRangeLength {
				return nil, interpreter.NewError(interpreter.KindArithmeticError, "range of %d elements exceeds the limit of %d", size, MaxRangeLength)
			}
			elements := make([]runtime.Value, 0, size)
			for n := int64(start); n < int64(stop); n++ {
				elements = append(elements, runtime.IntegerValue{Val: int32(n)})
			}
			return runtime.NewList(elements), nil
		},
	}

	raiseFn := runtime.NativeFunctionValue{
		Name:  "raise",
		Arity: -1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return nil, raiseError(args)
		},
	}

	assertFn := runtime.NativeFunctionValue{
		Name:  "assert",
		Arity: -1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, interpreter.NewError(interpreter.KindArityError, "assert() takes 1 or 2 arguments but %d were given", len(args))
			}
			if runtime.Truthy(args[0]) {
				return runtime.NoneValue{}, nil
			}
			if len(args) == 2 {
				return nil, interpreter.NewError(interpreter.KindError, "assertion failed: %s", runtime.Format(args[1]))
			}
			return nil, interpreter.NewError(interpreter.KindError, "assertion failed")
		},
	}

	return []runtime.NativeFunctionValue{
		printFn,
		lenFn,
		strFn,
		{Name: "int", Arity: 1, Impl: toInteger},
		{Name: "float", Arity: 1, Impl: toFloat},
		typeFn,
		appendFn,
		rangeFn,
		raiseFn,
		assertFn,
	}
}

func toInteger(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.IntegerValue:
		return v, nil
	case runtime.FloatValue:
		f := math.Trunc(float64(v.Val))
		if math.IsNaN(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, interpreter.NewError(interpreter.KindArithmeticError, "cannot convert %s to Integer", runtime.FormatFloat(v.Val))
		}
		return runtime.IntegerValue{Val: int32(f)}, nil
	case runtime.BoolValue:
		if v.Val {
			return runtime.IntegerValue{Val: 1}, nil
		}
		return runtime.IntegerValue{Val: 0}, nil
	case runtime.StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Val), 10, 32)
		if err != nil {
			return nil, interpreter.NewError(interpreter.KindTypeError, "invalid Integer literal %q", v.Val)
		}
		return runtime.IntegerValue{Val: int32(n)}, nil
	default:
		return nil, interpreter.NewError(interpreter.KindTypeError, "int() argument must be numeric or Str, not %s", runtime.TypeName(v))
	}
}

func toFloat(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
	switch v := args[0].(type) {
	case runtime.FloatValue:
		return v, nil
	case runtime.IntegerValue:
		return runtime.FloatValue{Val: float32(v.Val)}, nil
	case runtime.BoolValue:
		if v.Val {
			return runtime.FloatValue{Val: 1}, nil
		}
		return runtime.FloatValue{Val: 0}, nil
	case runtime.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Val), 32)
		if err != nil {
			return nil, interpreter.NewError(interpreter.KindTypeError, "invalid Float literal %q", v.Val)
		}
		return runtime.FloatValue{Val: float32(f)}, nil
	default:
		return nil, interpreter.NewError(interpreter.KindTypeError, "float() argument must be numeric or Str, not %s", runtime.TypeName(v))
	}
}

// raiseError implements raise(message), raise(error), and
// raise(kind, message, value?).
func raiseError(args []runtime.Value) error {
	switch len(args) {
	case 1:
		switch v := args[0].(type) {
		case runtime.ErrorValue:
			return interpreter.FromErrorValue(v)
		default:
			return interpreter.NewError(interpreter.KindError, "%s", runtime.Format(v))
		}
	case 2, 3:
		name, ok := args[0].(runtime.StringValue)
		if !ok {
			return interpreter.NewError(interpreter.KindTypeError, "raise() kind must be Str, not %s", runtime.TypeName(args[0]))
		}
		kind, ok := interpreter.ParseErrorKind(name.Val)
		if !ok {
			return interpreter.NewError(interpreter.KindTypeError, "unknown error kind '%s'", name.Val)
		}
		if !kind.Catchable() {
			return interpreter.NewError(interpreter.KindTypeError, "%s cannot be raised by a program", kind)
		}
		rerr := interpreter.NewError(kind, "%s", runtime.Format(args[1]))
		if len(args) == 3 {
			rerr.Value = args[2]
		}
		return rerr
	default:
		return interpreter.NewError(interpreter.KindArityError, "raise() takes 1 to 3 arguments but %d were given", len(args))
	}
}

func integerArg(fn string, val runtime.Value) (int32, error) {
	n, ok := val.(runtime.IntegerValue)
	if !ok {
		return 0, interpreter.NewError(interpreter.KindTypeError, "%s() expects Integer arguments, not %s", fn, runtime.TypeName(val))
	}
	return n.Val, nil
}

func lengthValue(n int) (runtime.Value, error) {
	if n > math.MaxInt32 {
		return nil, interpreter.NewError(interpreter.KindArithmeticError, "length %d exceeds Integer range", n)
	}
	return runtime.IntegerValue{Val: int32(n)}, nil
}
