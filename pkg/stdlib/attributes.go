package stdlib

import (
	"strings"
	"unicode/utf8"

	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/runtime"
)

// Attributes resolves members on Str and List values. Methods come back as
// natives bound to their receiver.
var Attributes interpreter.AttributeResolver = interpreter.AttributeResolverFunc(resolveAttribute)

func resolveAttribute(_ *runtime.NativeCallContext, target runtime.Value, name string) (runtime.Value, bool, error) {
	switch v := target.(type) {
	case runtime.StringValue:
		return stringMember(v, name)
	case *runtime.ListValue:
		return listMember(v, name)
	}
	return nil, false, nil
}

func stringMember(s runtime.StringValue, name string) (runtime.Value, bool, error) {
	switch name {
	case "length":
		val, err := lengthValue(utf8.RuneCountInString(s.Val))
		return val, err == nil, err
	case "upper":
		return bound("Str.upper", 0, func(_ []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: strings.ToUpper(s.Val)}, nil
		}), true, nil
	case "lower":
		return bound("Str.lower", 0, func(_ []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: strings.ToLower(s.Val)}, nil
		}), true, nil
	case "split":
		return bound("Str.split", -1, func(args []runtime.Value) (runtime.Value, error) {
			var parts []string
			switch len(args) {
			case 0:
				parts = strings.Fields(s.Val)
			case 1:
				sep, ok := args[0].(runtime.StringValue)
				if !ok {
					return nil, interpreter.NewError(interpreter.KindTypeError, "split() separator must be Str, not %s", runtime.TypeName(args[0]))
				}
				parts = strings.Split(s.Val, sep.Val)
			default:
				return nil, interpreter.NewError(interpreter.KindArityError, "split() takes 0 or 1 arguments but %d were given", len(args))
			}
			elements := make([]runtime.Value, len(parts))
			for idx, part := range parts {
				elements[idx] = runtime.StringValue{Val: part}
			}
			return runtime.NewList(elements), nil
		}), true, nil
	}
	return nil, false, nil
}

func listMember(list *runtime.ListValue, name string) (runtime.Value, bool, error) {
	switch name {
	case "length":
		val, err := lengthValue(len(list.Elements))
		return val, err == nil, err
	case "push":
		return bound("List.push", 1, func(args []runtime.Value) (runtime.Value, error) {
			list.Elements = append(list.Elements, args[0])
			return runtime.NoneValue{}, nil
		}), true, nil
	case "pop":
		return bound("List.pop", 0, func(_ []runtime.Value) (runtime.Value, error) {
			n := len(list.Elements)
			if n == 0 {
				return nil, interpreter.NewError(interpreter.KindIndexError, "pop from empty list")
			}
			last := list.Elements[n-1]
			list.Elements = list.Elements[:n-1]
			return last, nil
		}), true, nil
	}
	return nil, false, nil
}

func bound(name string, arity int, impl func(args []runtime.Value) (runtime.Value, error)) runtime.NativeFunctionValue {
	return runtime.NativeFunctionValue{
		Name:  name,
		Arity: arity,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return impl(args)
		},
	}
}
