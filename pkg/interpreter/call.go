package interpreter

import (
	"quill/interpreter-go/pkg/runtime"
)

// CallFunction invokes a closure or native with already-evaluated arguments.
// Natives use it (through runtime.Invoker) to call back into the program.
func (i *Interpreter) CallFunction(fn runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return i.callValue(fn, args, i.global)
}

func (i *Interpreter) callValue(callee runtime.Value, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.callClosure(fn, args)
	case runtime.NativeFunctionValue:
		return i.callNative(fn, args, env)
	default:
		return nil, typeError("%s value is not callable", runtime.TypeName(callee))
	}
}

func (i *Interpreter) callClosure(fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	if len(args) != len(fn.Params) {
		return nil, NewError(KindArityError, "%s() takes %d arguments but %d were given", name, len(fn.Params), len(args))
	}
	if err := i.pushFrame(name); err != nil {
		return nil, err
	}
	defer i.popFrame()

	callEnv := fn.Closure.Extend()
	for idx, param := range fn.Params {
		callEnv.Define(param, args[idx])
	}
	result := i.execBody(fn.Body, callEnv)
	switch result.kind {
	case completionRaised:
		return nil, result.err
	case completionReturning:
		return result.value, nil
	default:
		return runtime.NoneValue{}, nil
	}
}

func (i *Interpreter) callNative(fn runtime.NativeFunctionValue, args []runtime.Value, env *runtime.Environment) (runtime.Value, error) {
	if fn.Arity >= 0 && len(args) != fn.Arity {
		return nil, NewError(KindArityError, "%s() takes %d arguments but %d were given", fn.Name, fn.Arity, len(args))
	}
	if fn.Impl == nil {
		return nil, NewError(KindInvariantViolation, "native %s has no implementation", fn.Name)
	}
	if err := i.pushFrame(fn.Name); err != nil {
		return nil, err
	}
	defer i.popFrame()

	val, err := fn.Impl(i.nativeContext(env), args)
	if err != nil {
		return nil, i.asRuntimeError(err)
	}
	if val == nil {
		val = runtime.NoneValue{}
	}
	return val, nil
}

func (i *Interpreter) pushFrame(name string) error {
	if len(i.callStack) >= i.maxCallDepth {
		return NewError(KindStackOverflow, "maximum call depth of %d exceeded", i.maxCallDepth)
	}
	i.callStack = append(i.callStack, name)
	return nil
}

func (i *Interpreter) popFrame() {
	if len(i.callStack) > 0 {
		i.callStack = i.callStack[:len(i.callStack)-1]
	}
}

// snapshotCallStack returns the active frames innermost first.
func (i *Interpreter) snapshotCallStack() []string {
	trace := make([]string, 0, len(i.callStack))
	for idx := len(i.callStack) - 1; idx >= 0; idx-- {
		trace = append(trace, i.callStack[idx])
	}
	return trace
}

func (i *Interpreter) callDepth() int {
	return len(i.callStack)
}
