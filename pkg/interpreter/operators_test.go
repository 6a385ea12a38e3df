package interpreter

import (
	"math"
	"testing"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

func TestApplyBinary(t *testing.T) {
	i := func(v int32) runtime.Value { return runtime.IntegerValue{Val: v} }
	f := func(v float32) runtime.Value { return runtime.FloatValue{Val: v} }
	s := func(v string) runtime.Value { return runtime.StringValue{Val: v} }
	b := func(v bool) runtime.Value { return runtime.BoolValue{Val: v} }
	list := func(vals ...runtime.Value) runtime.Value { return runtime.NewList(vals) }
	nan := float32(math.NaN())

	cases := []struct {
		name        string
		op          ast.Opcode
		left, right runtime.Value
		want        runtime.Value
		errKind     ErrorKind
	}{
		{"int add", ast.OpAdd, i(2), i(3), i(5), 0},
		{"int div truncates", ast.OpDiv, i(7), i(-2), i(-3), 0},
		{"int mod sign of dividend", ast.OpMod, i(-7), i(3), i(-1), 0},
		{"int div by zero", ast.OpDiv, i(1), i(0), nil, KindArithmeticError},
		{"int mod by zero", ast.OpMod, i(1), i(0), nil, KindArithmeticError},
		{"min int div -1", ast.OpDiv, i(math.MinInt32), i(-1), nil, KindArithmeticError},
		{"int add overflow", ast.OpAdd, i(math.MaxInt32), i(1), nil, KindArithmeticError},
		{"int mul overflow", ast.OpMul, i(65536), i(65536), nil, KindArithmeticError},
		{"int pow", ast.OpPow, i(-3), i(3), i(-27), 0},
		{"int pow zero zero", ast.OpPow, i(0), i(0), i(1), 0},
		{"int pow negative exponent", ast.OpPow, i(2), i(-1), nil, KindArithmeticError},
		{"int pow at the limit", ast.OpPow, i(-2), i(31), i(math.MinInt32), 0},
		{"mixed widens", ast.OpMul, i(2), f(1.5), f(3), 0},
		{"float div", ast.OpDiv, f(1), i(4), f(0.25), 0},
		{"float div by zero", ast.OpDiv, f(1), f(0), nil, KindArithmeticError},
		{"float pow", ast.OpPow, f(4), f(0.5), f(2), 0},
		{"float invalid pow", ast.OpPow, f(-8), f(0.5), nil, KindArithmeticError},
		{"string concat", ast.OpAdd, s("foo"), s("bar"), s("foobar"), 0},
		{"string minus float", ast.OpSub, s("str"), f(36.2), nil, KindTypeError},
		{"string plus int", ast.OpAdd, s("n="), i(1), nil, KindTypeError},
		{"string times int", ast.OpMul, s("ab"), i(2), nil, KindTypeError},
		{"list concat", ast.OpAdd, list(i(1)), list(s("x")), list(i(1), s("x")), 0},
		{"list plus scalar", ast.OpAdd, list(i(1)), i(2), nil, KindTypeError},
		{"bool arithmetic", ast.OpAdd, b(true), i(1), nil, KindTypeError},
		{"none arithmetic", ast.OpSub, runtime.NoneValue{}, runtime.NoneValue{}, nil, KindTypeError},
		{"eq across numeric kinds", ast.OpEq, i(2), f(2), b(true), 0},
		{"eq incompatible kinds", ast.OpEq, s("1"), i(1), b(false), 0},
		{"not eq", ast.OpNotEq, list(i(1)), list(i(2)), b(true), 0},
		{"lt mixed", ast.OpLt, i(1), f(1.5), b(true), 0},
		{"gte ints", ast.OpGtE, i(3), i(3), b(true), 0},
		{"lt strings", ast.OpLt, s("apple"), s("banana"), b(true), 0},
		{"lt incompatible", ast.OpLt, s("a"), i(1), nil, KindTypeError},
		{"lt lists", ast.OpLt, list(), list(), nil, KindTypeError},
		{"lte int nan", ast.OpLtE, i(1), f(nan), b(false), 0},
		{"gte int nan", ast.OpGtE, i(1), f(nan), b(false), 0},
		{"gte nan int", ast.OpGtE, f(nan), i(1), b(false), 0},
		{"lte float nan", ast.OpLtE, f(1), f(nan), b(false), 0},
		{"and eager", ast.OpAnd, i(1), s(""), b(false), 0},
		{"or eager", ast.OpOr, runtime.NoneValue{}, list(i(0)), b(true), 0},
		{"not is unary only", ast.OpNot, b(true), b(false), nil, KindTypeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := applyBinary(tc.op, tc.left, tc.right)
			if tc.want == nil {
				if !IsKind(err, tc.errKind) {
					t.Fatalf("expected %s, got value=%v err=%v", tc.errKind, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != tc.want.Kind() || !runtime.Equal(got, tc.want) {
				t.Fatalf("got %s %s, want %s %s", runtime.TypeName(got), runtime.Format(got), runtime.TypeName(tc.want), runtime.Format(tc.want))
			}
		})
	}
}

func TestListConcatLeavesOperandsUntouched(t *testing.T) {
	left := runtime.NewList([]runtime.Value{runtime.IntegerValue{Val: 1}})
	right := runtime.NewList([]runtime.Value{runtime.IntegerValue{Val: 2}})
	got, err := applyBinary(ast.OpAdd, left, right)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == runtime.Value(left) || len(left.Elements) != 1 || len(right.Elements) != 1 {
		t.Fatalf("operands were modified: left=%s right=%s", runtime.Format(left), runtime.Format(right))
	}
}

func TestDivisionReconstructsDividend(t *testing.T) {
	pairs := [][2]int32{{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {0, 5}, {math.MaxInt32, 3}, {math.MinInt32, 7}}
	for _, pair := range pairs {
		a, b := runtime.IntegerValue{Val: pair[0]}, runtime.IntegerValue{Val: pair[1]}
		quot, err := applyBinary(ast.OpDiv, a, b)
		if err != nil {
			t.Fatalf("%d / %d: %v", pair[0], pair[1], err)
		}
		prod, err := applyBinary(ast.OpMul, quot, b)
		if err != nil {
			t.Fatalf("(%d / %d) * %d: %v", pair[0], pair[1], pair[1], err)
		}
		rem, err := applyBinary(ast.OpMod, a, b)
		if err != nil {
			t.Fatalf("%d %% %d: %v", pair[0], pair[1], err)
		}
		sum, err := applyBinary(ast.OpAdd, prod, rem)
		if err != nil {
			t.Fatalf("reconstruct %d: %v", pair[0], err)
		}
		if sum != runtime.Value(a) {
			t.Fatalf("(%d/%d)*%d + %d%%%d = %s", pair[0], pair[1], pair[1], pair[0], pair[1], runtime.Format(sum))
		}
	}
}

func TestApplyUnary(t *testing.T) {
	cases := []struct {
		name    string
		op      ast.Opcode
		operand runtime.Value
		want    runtime.Value
		errKind ErrorKind
	}{
		{"negate int", ast.OpSub, runtime.IntegerValue{Val: 4}, runtime.IntegerValue{Val: -4}, 0},
		{"negate float", ast.OpSub, runtime.FloatValue{Val: 1.5}, runtime.FloatValue{Val: -1.5}, 0},
		{"negate min int", ast.OpSub, runtime.IntegerValue{Val: math.MinInt32}, nil, KindArithmeticError},
		{"negate string", ast.OpSub, runtime.StringValue{Val: "Hello world!"}, nil, KindTypeError},
		{"negate bool", ast.OpSub, runtime.BoolValue{Val: true}, nil, KindTypeError},
		{"plus int", ast.OpAdd, runtime.IntegerValue{Val: 4}, runtime.IntegerValue{Val: 4}, 0},
		{"plus string", ast.OpAdd, runtime.StringValue{Val: "Hello world!"}, nil, KindTypeError},
		{"plus bool", ast.OpAdd, runtime.BoolValue{Val: false}, nil, KindTypeError},
		{"not list", ast.OpNot, runtime.NewList(nil), runtime.BoolValue{Val: true}, 0},
		{"mul is binary only", ast.OpMul, runtime.IntegerValue{Val: 1}, nil, KindTypeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := applyUnary(tc.op, tc.operand)
			if tc.want == nil {
				if !IsKind(err, tc.errKind) {
					t.Fatalf("expected %s, got value=%v err=%v", tc.errKind, got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}
