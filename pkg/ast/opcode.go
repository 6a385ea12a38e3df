package ast

import "fmt"

// Opcode names an operator. The arithmetic set (Mul, Div, Add, Sub, Pow) is
// what the grammar produces today; Mod, the comparisons and the logical
// connectives extend it so conditions can be expressed directly.
type Opcode string

const (
	OpMul Opcode = "*"
	OpDiv Opcode = "/"
	OpAdd Opcode = "+"
	OpSub Opcode = "-"
	OpPow Opcode = "**"
	OpMod Opcode = "%"

	OpEq    Opcode = "=="
	OpNotEq Opcode = "!="
	OpLt    Opcode = "<"
	OpLtE   Opcode = "<="
	OpGt    Opcode = ">"
	OpGtE   Opcode = ">="

	OpAnd Opcode = "and"
	OpOr  Opcode = "or"
	OpNot Opcode = "not"
)

var opcodeNames = map[Opcode]string{
	OpMul:   "Mul",
	OpDiv:   "Div",
	OpAdd:   "Add",
	OpSub:   "Sub",
	OpPow:   "Pow",
	OpMod:   "Mod",
	OpEq:    "Eq",
	OpNotEq: "NotEq",
	OpLt:    "Lt",
	OpLtE:   "LtE",
	OpGt:    "Gt",
	OpGtE:   "GtE",
	OpAnd:   "And",
	OpOr:    "Or",
	OpNot:   "Not",
}

// Name returns the descriptive opcode name ("Add", "Pow", ...).
func (op Opcode) Name() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return string(op)
}

func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// IsComparison reports whether op yields a Boolean from an ordering or equality test.
func (op Opcode) IsComparison() bool {
	switch op {
	case OpEq, OpNotEq, OpLt, OpLtE, OpGt, OpGtE:
		return true
	}
	return false
}

func (op Opcode) IsLogical() bool {
	return op == OpAnd || op == OpOr || op == OpNot
}

// ParseOpcode accepts either the symbol ("+") or the descriptive name ("Add").
func ParseOpcode(raw string) (Opcode, error) {
	if op := Opcode(raw); op.Valid() {
		return op, nil
	}
	for op, name := range opcodeNames {
		if name == raw {
			return op, nil
		}
	}
	return "", fmt.Errorf("unknown opcode %q", raw)
}
