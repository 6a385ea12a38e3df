package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintRendersNestedStatements(t *testing.T) {
	module := Program(
		If(Int(4),
			Block(
				Expr(ID("abcde")),
				Expr(Bin(Str("str"), OpSub, Flt(36.2))),
			),
			nil,
		),
		Fn("myfun", []string{"a", "b"},
			Expr(Call("print", Un(OpAdd, Index(Attr(Str("Hello world!"), "myattr"), Int(1))))),
		),
	)
	want := `Module
  If
    Integer 4
    then:
      Expression
        Variable abcde
      Expression
        BinaryOp Sub
          Str "str"
          Float 36.2
  Function myfun(a, b)
    body:
      Expression
        FunctionCall
          Variable print
          UnaryOp Add
            ItemSubscription
              AttrAccess .myattr
                Str "Hello world!"
              Integer 1
`
	if diff := cmp.Diff(want, Print(module)); diff != "" {
		t.Fatalf("Print mismatch (-want +got):\n%s", diff)
	}
}
