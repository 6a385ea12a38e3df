package ast

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// DecodeModule reads a JSON-encoded module produced by the parser.
func DecodeModule(r io.Reader) (*Module, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	return DecodeModuleMap(raw)
}

// DecodeModuleMap decodes an already-unmarshalled module object. Numbers may be
// json.Number or float64.
func DecodeModuleMap(raw map[string]any) (*Module, error) {
	if raw == nil {
		return nil, fmt.Errorf("module node is nil")
	}
	if typ, _ := raw["type"].(string); typ != string(NodeModule) {
		return nil, fmt.Errorf("module: expected type %q, got %q", NodeModule, typ)
	}
	body, err := decodeBody(raw["body"], "module.body")
	if err != nil {
		return nil, err
	}
	return NewModule(body), nil
}

func decodeBody(raw any, path string) ([]Statement, error) {
	if raw == nil {
		return []Statement{}, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected statement list, got %T", path, raw)
	}
	body := make([]Statement, 0, len(items))
	for i, item := range items {
		stmt, err := decodeStatement(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	return body, nil
}

func decodeStatement(raw any, path string) (Statement, error) {
	node, typ, err := nodeObject(raw, path)
	if err != nil {
		return nil, err
	}
	switch NodeType(typ) {
	case NodeExpressionStatement:
		expr, err := decodeExpression(node["expression"], path+".expression")
		if err != nil {
			return nil, err
		}
		return NewExpressionStatement(expr), nil
	case NodeIf:
		cond, err := decodeExpression(node["condition"], path+".condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeBody(node["then"], path+".then")
		if err != nil {
			return nil, err
		}
		var elseBody []Statement
		if rawElse, ok := node["else"]; ok && rawElse != nil {
			elseBody, err = decodeBody(rawElse, path+".else")
			if err != nil {
				return nil, err
			}
		}
		return NewIfStatement(cond, then, elseBody), nil
	case NodeFunctionStatement:
		name, params, body, err := decodeFunctionParts(node, path, true)
		if err != nil {
			return nil, err
		}
		return NewFunctionStatement(name, params, body), nil
	case NodeAssignment:
		name, err := stringField(node, "name", path, true)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(node["value"], path+".value")
		if err != nil {
			return nil, err
		}
		return NewAssignment(name, value), nil
	case NodeReturn:
		value, err := decodeExpression(node["value"], path+".value")
		if err != nil {
			return nil, err
		}
		return NewReturnStatement(value), nil
	case NodeWhile:
		cond, err := decodeExpression(node["condition"], path+".condition")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(node["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return NewWhileLoop(cond, body), nil
	case NodeFor:
		variable, err := stringField(node, "variable", path, true)
		if err != nil {
			return nil, err
		}
		iterable, err := decodeExpression(node["iterable"], path+".iterable")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(node["body"], path+".body")
		if err != nil {
			return nil, err
		}
		return NewForLoop(variable, iterable, body), nil
	case NodeImport:
		items, _ := node["names"].([]any)
		names := make([]*Name, 0, len(items))
		for i, item := range items {
			itemPath := fmt.Sprintf("%s.names[%d]", path, i)
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: expected object, got %T", itemPath, item)
			}
			name, err := stringField(obj, "name", itemPath, true)
			if err != nil {
				return nil, err
			}
			alias, err := stringField(obj, "alias", itemPath, false)
			if err != nil {
				return nil, err
			}
			names = append(names, NewAlias(name, alias))
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%s: import requires at least one name", path)
		}
		return NewImportStatement(names), nil
	case NodeTry:
		body, err := decodeBody(node["body"], path+".body")
		if err != nil {
			return nil, err
		}
		items, _ := node["catches"].([]any)
		catches := make([]*Catch, 0, len(items))
		for i, item := range items {
			clause, err := decodeCatch(item, fmt.Sprintf("%s.catches[%d]", path, i))
			if err != nil {
				return nil, err
			}
			catches = append(catches, clause)
		}
		return NewTryStatement(body, catches), nil
	}
	return nil, fmt.Errorf("%s: unsupported statement type %q", path, typ)
}

func decodeCatch(raw any, path string) (*Catch, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected object, got %T", path, raw)
	}
	variable, err := stringField(node, "variable", path, false)
	if err != nil {
		return nil, err
	}
	var filter Expression
	if rawFilter, ok := node["filter"]; ok && rawFilter != nil {
		filter, err = decodeExpression(rawFilter, path+".filter")
		if err != nil {
			return nil, err
		}
	}
	body, err := decodeBody(node["body"], path+".body")
	if err != nil {
		return nil, err
	}
	return NewCatch(variable, filter, body), nil
}

func decodeExpression(raw any, path string) (Expression, error) {
	node, typ, err := nodeObject(raw, path)
	if err != nil {
		return nil, err
	}
	switch NodeType(typ) {
	case NodeBoolean:
		value, ok := node["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("%s: boolean value must be true or false", path)
		}
		return NewBooleanLiteral(value), nil
	case NodeInteger:
		value, err := integerValue(node["value"], path)
		if err != nil {
			return nil, err
		}
		return NewIntegerLiteral(value), nil
	case NodeFloat:
		value, err := floatValue(node["value"], path)
		if err != nil {
			return nil, err
		}
		return NewFloatLiteral(value), nil
	case NodeStr:
		value, ok := node["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%s: string value must be a string", path)
		}
		return NewStringLiteral(value), nil
	case NodeList:
		items, _ := node["elements"].([]any)
		elements := make([]Expression, 0, len(items))
		for i, item := range items {
			elem, err := decodeExpression(item, fmt.Sprintf("%s.elements[%d]", path, i))
			if err != nil {
				return nil, err
			}
			elements = append(elements, elem)
		}
		return NewListLiteral(elements), nil
	case NodeNone:
		return NewNoneLiteral(), nil
	case NodeError:
		return NewErrorExpr(), nil
	case NodeVariable:
		name, err := stringField(node, "name", path, true)
		if err != nil {
			return nil, err
		}
		return NewVariable(name), nil
	case NodeBinaryOp:
		op, err := opcodeField(node, path)
		if err != nil {
			return nil, err
		}
		left, err := decodeExpression(node["left"], path+".left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(node["right"], path+".right")
		if err != nil {
			return nil, err
		}
		return NewBinaryOp(left, op, right), nil
	case NodeUnaryOp:
		op, err := opcodeField(node, path)
		if err != nil {
			return nil, err
		}
		operand, err := decodeExpression(node["operand"], path+".operand")
		if err != nil {
			return nil, err
		}
		return NewUnaryOp(op, operand), nil
	case NodeFunctionCall:
		callee, err := decodeExpression(node["callee"], path+".callee")
		if err != nil {
			return nil, err
		}
		items, _ := node["arguments"].([]any)
		args := make([]Expression, 0, len(items))
		for i, item := range items {
			arg, err := decodeExpression(item, fmt.Sprintf("%s.arguments[%d]", path, i))
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return NewFunctionCall(callee, args), nil
	case NodeItemSubscription:
		target, err := decodeExpression(node["target"], path+".target")
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(node["index"], path+".index")
		if err != nil {
			return nil, err
		}
		return NewItemSubscription(target, index), nil
	case NodeAttrAccess:
		target, err := decodeExpression(node["target"], path+".target")
		if err != nil {
			return nil, err
		}
		attr, err := stringField(node, "attribute", path, true)
		if err != nil {
			return nil, err
		}
		return NewAttrAccess(target, attr), nil
	case NodeFunctionExpr, "Function":
		name, params, body, err := decodeFunctionParts(node, path, false)
		if err != nil {
			return nil, err
		}
		return NewFunctionExpr(name, params, body), nil
	}
	return nil, fmt.Errorf("%s: unsupported expression type %q", path, typ)
}

func decodeFunctionParts(node map[string]any, path string, nameRequired bool) (string, []string, []Statement, error) {
	name, err := stringField(node, "name", path, nameRequired)
	if err != nil {
		return "", nil, nil, err
	}
	rawParams, _ := node["params"].([]any)
	params := make([]string, 0, len(rawParams))
	seen := make(map[string]struct{}, len(rawParams))
	for i, raw := range rawParams {
		param, ok := raw.(string)
		if !ok || param == "" {
			return "", nil, nil, fmt.Errorf("%s.params[%d]: parameter must be a non-empty string", path, i)
		}
		if _, dup := seen[param]; dup {
			return "", nil, nil, fmt.Errorf("%s.params[%d]: duplicate parameter %q", path, i, param)
		}
		seen[param] = struct{}{}
		params = append(params, param)
	}
	body, err := decodeBody(node["body"], path+".body")
	if err != nil {
		return "", nil, nil, err
	}
	return name, params, body, nil
}

func nodeObject(raw any, path string) (map[string]any, string, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		if raw == nil {
			return nil, "", fmt.Errorf("%s: missing node", path)
		}
		return nil, "", fmt.Errorf("%s: expected node object, got %T", path, raw)
	}
	typ, _ := node["type"].(string)
	if typ == "" {
		return nil, "", fmt.Errorf("%s: node missing type", path)
	}
	return node, typ, nil
}

func stringField(node map[string]any, key, path string, required bool) (string, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%s: missing %s", path, key)
		}
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: expected string, got %T", path, key, raw)
	}
	if required && value == "" {
		return "", fmt.Errorf("%s.%s: must not be empty", path, key)
	}
	return value, nil
}

func opcodeField(node map[string]any, path string) (Opcode, error) {
	raw, _ := node["op"].(string)
	op, err := ParseOpcode(raw)
	if err != nil {
		return "", fmt.Errorf("%s.op: %w", path, err)
	}
	return op, nil
}

func integerValue(raw any, path string) (int32, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s: integer literal %s out of range for i32", path, v)
		}
		return int32(n), nil
	case float64:
		if v != float64(int32(v)) {
			return 0, fmt.Errorf("%s: integer literal %v out of range for i32", path, v)
		}
		return int32(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer literal %q", path, v)
		}
		return int32(n), nil
	}
	return 0, fmt.Errorf("%s: integer value must be a number, got %T", path, raw)
}

func floatValue(raw any, path string) (float32, error) {
	switch v := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 32)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid float literal %s", path, v)
		}
		return float32(f), nil
	case float64:
		return float32(v), nil
	}
	return 0, fmt.Errorf("%s: float value must be a number, got %T", path, raw)
}
