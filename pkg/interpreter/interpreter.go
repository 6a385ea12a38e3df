package interpreter

import (
	"context"
	"log/slog"
	"os"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested function calls before StackOverflow.
const DefaultMaxCallDepth = 1000

// ImportResolver maps an imported name to the value it binds.
type ImportResolver interface {
	ResolveImport(ctx context.Context, name string) (runtime.Value, error)
}

type ImportResolverFunc func(ctx context.Context, name string) (runtime.Value, error)

func (f ImportResolverFunc) ResolveImport(ctx context.Context, name string) (runtime.Value, error) {
	return f(ctx, name)
}

// AttributeResolver looks up a named member on a value. ok is false when the
// member does not exist.
type AttributeResolver interface {
	ResolveAttribute(ctx *runtime.NativeCallContext, target runtime.Value, name string) (value runtime.Value, ok bool, err error)
}

type AttributeResolverFunc func(ctx *runtime.NativeCallContext, target runtime.Value, name string) (runtime.Value, bool, error)

func (f AttributeResolverFunc) ResolveAttribute(ctx *runtime.NativeCallContext, target runtime.Value, name string) (runtime.Value, bool, error) {
	return f(ctx, target, name)
}

// Interpreter evaluates modules against a root environment. It is not safe for
// concurrent use; run independent programs on independent interpreters.
type Interpreter struct {
	global       *runtime.Environment
	natives      map[string]runtime.NativeFunctionValue
	imports      ImportResolver
	attributes   AttributeResolver
	logger       *slog.Logger
	maxCallDepth int

	ctx       context.Context
	callStack []string
}

type Option func(*Interpreter)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

func WithImportResolver(resolver ImportResolver) Option {
	return func(i *Interpreter) {
		i.imports = resolver
	}
}

func WithAttributeResolver(resolver AttributeResolver) Option {
	return func(i *Interpreter) {
		i.attributes = resolver
	}
}

func WithNatives(natives ...runtime.NativeFunctionValue) Option {
	return func(i *Interpreter) {
		for _, fn := range natives {
			i.natives[fn.Name] = fn
		}
	}
}

// New returns an interpreter with an empty root environment.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global:       runtime.NewEnvironment(nil),
		natives:      make(map[string]runtime.NativeFunctionValue),
		maxCallDepth: DefaultMaxCallDepth,
		ctx:          context.Background(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return i
}

// GlobalEnvironment returns the root frame. Bindings defined here before
// evaluation are visible to the whole program.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// RegisterNative adds fn to the registry consulted when a name is not bound
// anywhere in the environment chain.
func (i *Interpreter) RegisterNative(fn runtime.NativeFunctionValue) {
	i.natives[fn.Name] = fn
	i.logger.Debug("native registered", "name", fn.Name, "arity", fn.Arity)
}

// SetAttributeResolver replaces the member lookup collaborator.
func (i *Interpreter) SetAttributeResolver(resolver AttributeResolver) {
	i.attributes = resolver
}

// EvaluateModule runs module to completion in the root environment. The result
// is the value of the last statement executed (None when it produced none).
// An unhandled error is returned as a *RuntimeError.
func (i *Interpreter) EvaluateModule(module *ast.Module) (runtime.Value, *runtime.Environment, error) {
	return i.EvaluateModuleContext(context.Background(), module)
}

// EvaluateModuleContext is EvaluateModule with cancellation checked between
// statements. A cancelled context surfaces as an uncatchable Interrupted error.
func (i *Interpreter) EvaluateModuleContext(ctx context.Context, module *ast.Module) (runtime.Value, *runtime.Environment, error) {
	if module == nil {
		return nil, i.global, NewError(KindInvariantViolation, "nil module")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	prev := i.ctx
	i.ctx = ctx
	defer func() { i.ctx = prev }()

	i.logger.Debug("module evaluation started", "statements", len(module.Body))
	result := i.execBody(module.Body, i.global)
	switch result.kind {
	case completionRaised:
		i.logger.Debug("module evaluation failed", "kind", result.err.Kind.String(), "message", result.err.Message)
		return nil, i.global, result.err
	case completionReturning:
		i.logger.Debug("module returned early")
	default:
		i.logger.Debug("module evaluation finished")
	}
	return result.value, i.global, nil
}

func (i *Interpreter) context() context.Context {
	if i.ctx == nil {
		return context.Background()
	}
	return i.ctx
}

func (i *Interpreter) interrupted() error {
	if err := i.context().Err(); err != nil {
		return &RuntimeError{Kind: KindInterrupted, Message: err.Error(), cause: err}
	}
	return nil
}

func (i *Interpreter) nativeContext(env *runtime.Environment) *runtime.NativeCallContext {
	if env == nil {
		env = i.global
	}
	return &runtime.NativeCallContext{Context: i.context(), Env: env, Invoker: i}
}
