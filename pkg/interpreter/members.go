package interpreter

import (
	"quill/interpreter-go/pkg/runtime"
)

func subscript(target, index runtime.Value) (runtime.Value, error) {
	switch t := target.(type) {
	case *runtime.ListValue:
		idx, err := integerIndex(index, "list")
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(t.Elements) {
			return nil, indexError(idx, len(t.Elements))
		}
		return t.Elements[idx], nil
	case runtime.StringValue:
		idx, err := integerIndex(index, "string")
		if err != nil {
			return nil, err
		}
		runes := []rune(t.Val)
		if idx < 0 || idx >= len(runes) {
			return nil, indexError(idx, len(runes))
		}
		return runtime.StringValue{Val: string(runes[idx])}, nil
	default:
		return nil, typeError("%s value is not subscriptable", runtime.TypeName(target))
	}
}

func integerIndex(index runtime.Value, what string) (int, error) {
	iv, ok := index.(runtime.IntegerValue)
	if !ok {
		return 0, typeError("%s indices must be Integer, not %s", what, runtime.TypeName(index))
	}
	return int(iv.Val), nil
}

// resolveAttribute answers the members every error value carries and defers
// everything else to the configured AttributeResolver.
func (i *Interpreter) resolveAttribute(target runtime.Value, name string, env *runtime.Environment) (runtime.Value, error) {
	if errVal, ok := target.(runtime.ErrorValue); ok {
		switch name {
		case "kind":
			return runtime.StringValue{Val: errVal.ErrorKind}, nil
		case "message":
			return runtime.StringValue{Val: errVal.Message}, nil
		case "value":
			if errVal.Payload == nil {
				return runtime.NoneValue{}, nil
			}
			return errVal.Payload, nil
		}
	}
	if i.attributes != nil {
		val, ok, err := i.attributes.ResolveAttribute(i.nativeContext(env), target, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return val, nil
		}
	}
	return nil, NewError(KindAttributeError, "%s value has no attribute '%s'", runtime.TypeName(target), name)
}
