package interpreter

import (
	"math"
	"strings"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

// applyBinary implements every binary opcode except the short-circuiting
// And/Or, which the evaluator handles before both operands exist.
func applyBinary(op ast.Opcode, left, right runtime.Value) (runtime.Value, error) {
	switch {
	case op == ast.OpEq:
		return runtime.BoolValue{Val: runtime.Equal(left, right)}, nil
	case op == ast.OpNotEq:
		return runtime.BoolValue{Val: !runtime.Equal(left, right)}, nil
	case op.IsComparison():
		return compareValues(op, left, right)
	case op.IsLogical():
		return applyLogical(op, left, right)
	}

	switch l := left.(type) {
	case runtime.IntegerValue:
		switch r := right.(type) {
		case runtime.IntegerValue:
			return integerArithmetic(op, l.Val, r.Val)
		case runtime.FloatValue:
			return floatArithmetic(op, float32(l.Val), r.Val)
		}
	case runtime.FloatValue:
		switch r := right.(type) {
		case runtime.IntegerValue:
			return floatArithmetic(op, l.Val, float32(r.Val))
		case runtime.FloatValue:
			return floatArithmetic(op, l.Val, r.Val)
		}
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok && op == ast.OpAdd {
			return runtime.StringValue{Val: l.Val + r.Val}, nil
		}
	case *runtime.ListValue:
		if r, ok := right.(*runtime.ListValue); ok && op == ast.OpAdd {
			elements := make([]runtime.Value, 0, len(l.Elements)+len(r.Elements))
			elements = append(elements, l.Elements...)
			elements = append(elements, r.Elements...)
			return runtime.NewList(elements), nil
		}
	}
	return nil, typeError("unsupported operand types for %s: %s and %s", op, runtime.TypeName(left), runtime.TypeName(right))
}

// applyLogical is the eager form of and/or, for callers that already hold
// both operands.
func applyLogical(op ast.Opcode, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OpAnd:
		return runtime.BoolValue{Val: runtime.Truthy(left) && runtime.Truthy(right)}, nil
	case ast.OpOr:
		return runtime.BoolValue{Val: runtime.Truthy(left) || runtime.Truthy(right)}, nil
	}
	return nil, typeError("%s is not a binary operator", op.Name())
}

func integerArithmetic(op ast.Opcode, a, b int32) (runtime.Value, error) {
	var result int64
	switch op {
	case ast.OpAdd:
		result = int64(a) + int64(b)
	case ast.OpSub:
		result = int64(a) - int64(b)
	case ast.OpMul:
		result = int64(a) * int64(b)
	case ast.OpDiv:
		if b == 0 {
			return nil, divisionByZeroError()
		}
		// Go truncates toward zero; MinInt32 / -1 is caught by the range check.
		result = int64(a) / int64(b)
	case ast.OpMod:
		if b == 0 {
			return nil, arithmeticError("modulo by zero")
		}
		result = int64(a) % int64(b)
	case ast.OpPow:
		return integerPow(a, b)
	default:
		return nil, typeError("unsupported operand types for %s: Integer and Integer", op)
	}
	if result < math.MinInt32 || result > math.MaxInt32 {
		return nil, overflowError(op.Name())
	}
	return runtime.IntegerValue{Val: int32(result)}, nil
}

func integerPow(base, exp int32) (runtime.Value, error) {
	if exp < 0 {
		return nil, arithmeticError("negative exponent %d for Integer power", exp)
	}
	result := int64(1)
	b := int64(base)
	for e := exp; e > 0; e >>= 1 {
		if e&1 == 1 {
			result *= b
			if result < math.MinInt32 || result > math.MaxInt32 {
				return nil, overflowError("Pow")
			}
		}
		if e > 1 {
			b *= b
			if b > math.MaxInt32 {
				return nil, overflowError("Pow")
			}
		}
	}
	return runtime.IntegerValue{Val: int32(result)}, nil
}

func floatArithmetic(op ast.Opcode, a, b float32) (runtime.Value, error) {
	switch op {
	case ast.OpAdd:
		return runtime.FloatValue{Val: a + b}, nil
	case ast.OpSub:
		return runtime.FloatValue{Val: a - b}, nil
	case ast.OpMul:
		return runtime.FloatValue{Val: a * b}, nil
	case ast.OpDiv:
		if b == 0 {
			return nil, divisionByZeroError()
		}
		return runtime.FloatValue{Val: a / b}, nil
	case ast.OpMod:
		if b == 0 {
			return nil, arithmeticError("modulo by zero")
		}
		return runtime.FloatValue{Val: float32(math.Mod(float64(a), float64(b)))}, nil
	case ast.OpPow:
		if a == 0 && b < 0 {
			return nil, divisionByZeroError()
		}
		result := math.Pow(float64(a), float64(b))
		if math.IsNaN(result) && !math.IsNaN(float64(a)) && !math.IsNaN(float64(b)) {
			return nil, arithmeticError("invalid power %s ** %s", runtime.FormatFloat(a), runtime.FormatFloat(b))
		}
		return runtime.FloatValue{Val: float32(result)}, nil
	}
	return nil, typeError("unsupported operand types for %s: Float and Float", op)
}

func compareValues(op ast.Opcode, left, right runtime.Value) (runtime.Value, error) {
	var cmp int
	switch l := left.(type) {
	case runtime.IntegerValue:
		switch r := right.(type) {
		case runtime.IntegerValue:
			cmp = compareOrdered(l.Val, r.Val)
		case runtime.FloatValue:
			return compareFloats(op, float32(l.Val), r.Val), nil
		default:
			return nil, comparisonError(op, left, right)
		}
	case runtime.FloatValue:
		switch r := right.(type) {
		case runtime.IntegerValue:
			return compareFloats(op, l.Val, float32(r.Val)), nil
		case runtime.FloatValue:
			return compareFloats(op, l.Val, r.Val), nil
		default:
			return nil, comparisonError(op, left, right)
		}
	case runtime.StringValue:
		r, ok := right.(runtime.StringValue)
		if !ok {
			return nil, comparisonError(op, left, right)
		}
		cmp = strings.Compare(l.Val, r.Val)
	default:
		return nil, comparisonError(op, left, right)
	}
	return orderingResult(op, cmp), nil
}

// compareFloats runs after widening; every ordering against NaN is false.
func compareFloats(op ast.Opcode, a, b float32) runtime.Value {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return runtime.BoolValue{Val: false}
	}
	return orderingResult(op, compareOrdered(a, b))
}

func orderingResult(op ast.Opcode, cmp int) runtime.Value {
	var result bool
	switch op {
	case ast.OpLt:
		result = cmp < 0
	case ast.OpLtE:
		result = cmp <= 0
	case ast.OpGt:
		result = cmp > 0
	case ast.OpGtE:
		result = cmp >= 0
	}
	return runtime.BoolValue{Val: result}
}

func compareOrdered[T int32 | float32](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func comparisonError(op ast.Opcode, left, right runtime.Value) error {
	return typeError("'%s' not supported between %s and %s", op, runtime.TypeName(left), runtime.TypeName(right))
}

func applyUnary(op ast.Opcode, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case ast.OpNot:
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	case ast.OpSub:
		switch v := operand.(type) {
		case runtime.IntegerValue:
			if v.Val == math.MinInt32 {
				return nil, overflowError("negation")
			}
			return runtime.IntegerValue{Val: -v.Val}, nil
		case runtime.FloatValue:
			return runtime.FloatValue{Val: -v.Val}, nil
		}
	case ast.OpAdd:
		switch operand.(type) {
		case runtime.IntegerValue, runtime.FloatValue:
			return operand, nil
		}
	default:
		return nil, typeError("%s is not a unary operator", op.Name())
	}
	return nil, typeError("bad operand type for unary %s: %s", op, runtime.TypeName(operand))
}
