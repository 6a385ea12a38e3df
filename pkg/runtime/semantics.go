package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Truthy reports how a value behaves as a condition.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case BoolValue:
		return val.Val
	case IntegerValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return val != nil && len(val.Elements) > 0
	case NoneValue, nil:
		return false
	default:
		return true
	}
}

// Equal compares two values. Integer and Float compare numerically after
// widening; any other mix of kinds is unequal. Lists compare element-wise,
// closures by identity, natives by name. A pair of lists already being
// compared further up counts as equal, so self-referential lists terminate.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type listPair struct {
	left, right *ListValue
}

func equal(a, b Value, active map[listPair]struct{}) bool {
	switch left := a.(type) {
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	case IntegerValue:
		switch right := b.(type) {
		case IntegerValue:
			return left.Val == right.Val
		case FloatValue:
			return float32(left.Val) == right.Val
		}
		return false
	case FloatValue:
		switch right := b.(type) {
		case FloatValue:
			return left.Val == right.Val
		case IntegerValue:
			return left.Val == float32(right.Val)
		}
		return false
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	case *ListValue:
		right, ok := b.(*ListValue)
		if !ok {
			return false
		}
		if left == right {
			return true
		}
		if len(left.Elements) != len(right.Elements) {
			return false
		}
		pair := listPair{left, right}
		if _, ok := active[pair]; ok {
			return true
		}
		if active == nil {
			active = make(map[listPair]struct{})
		}
		active[pair] = struct{}{}
		defer delete(active, pair)
		for i := range left.Elements {
			if !equal(left.Elements[i], right.Elements[i], active) {
				return false
			}
		}
		return true
	case NoneValue:
		_, ok := b.(NoneValue)
		return ok
	case *FunctionValue:
		right, ok := b.(*FunctionValue)
		return ok && left == right
	case NativeFunctionValue:
		right, ok := b.(NativeFunctionValue)
		return ok && left.Name == right.Name
	case ErrorValue:
		right, ok := b.(ErrorValue)
		return ok && left.ErrorKind == right.ErrorKind && left.Message == right.Message
	}
	return false
}

// TypeName is the user-facing name of a value's kind.
func TypeName(v Value) string {
	if v == nil {
		return KindNone.String()
	}
	return v.Kind().String()
}

// Format renders a value the way print shows it. Strings nested inside lists
// are quoted; a list that contains itself prints the inner occurrence as [...].
func Format(v Value) string {
	var b strings.Builder
	format(&b, v, false, nil)
	return b.String()
}

func format(b *strings.Builder, v Value, nested bool, active map[*ListValue]struct{}) {
	switch val := v.(type) {
	case BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case IntegerValue:
		b.WriteString(strconv.FormatInt(int64(val.Val), 10))
	case FloatValue:
		b.WriteString(FormatFloat(val.Val))
	case StringValue:
		if nested {
			b.WriteString(strconv.Quote(val.Val))
		} else {
			b.WriteString(val.Val)
		}
	case *ListValue:
		if _, ok := active[val]; ok {
			b.WriteString("[...]")
			return
		}
		if active == nil {
			active = make(map[*ListValue]struct{})
		}
		active[val] = struct{}{}
		b.WriteByte('[')
		for i, elem := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, elem, true, active)
		}
		b.WriteByte(']')
		delete(active, val)
	case NoneValue, nil:
		b.WriteString("None")
	case *FunctionValue:
		name := val.Name
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(b, "<function %s>", name)
	case NativeFunctionValue:
		fmt.Fprintf(b, "<native %s>", val.Name)
	case ErrorValue:
		fmt.Fprintf(b, "%s: %s", val.ErrorKind, val.Message)
	default:
		fmt.Fprintf(b, "<%s>", TypeName(v))
	}
}

// FormatFloat prints a float32 with the shortest representation that round
// trips, always keeping a decimal point so it reads as a Float.
func FormatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
