package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/runtime"
	"quill/interpreter-go/pkg/stdlib"
)

// ModuleExt is the file extension of JSON-encoded modules.
const ModuleExt = ".json"

// Loader finds modules on its search paths and resolves imports for the
// interpreters it configures. Each imported module is evaluated once, in its
// own interpreter, and its root frame is cached.
type Loader struct {
	SearchPaths []string

	logger       *slog.Logger
	stdout       io.Writer
	maxCallDepth int

	mu       sync.Mutex
	provided map[string]runtime.Value
	modules  map[string]*runtime.Environment
	loading  map[string]bool
}

type LoaderOption func(*Loader)

func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLoaderStdout sets where print writes for interpreters created by the
// loader.
func WithLoaderStdout(w io.Writer) LoaderOption {
	return func(l *Loader) {
		if w != nil {
			l.stdout = w
		}
	}
}

func WithLoaderMaxCallDepth(depth int) LoaderOption {
	return func(l *Loader) {
		l.maxCallDepth = depth
	}
}

func NewLoader(searchPaths []string, opts ...LoaderOption) *Loader {
	l := &Loader{
		SearchPaths: append([]string(nil), searchPaths...),
		logger:      defaultLogger(),
		stdout:      os.Stdout,
		provided:    make(map[string]runtime.Value),
		modules:     make(map[string]*runtime.Environment),
		loading:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewInterpreter returns an interpreter with the builtin natives installed and
// imports routed through l.
func (l *Loader) NewInterpreter() *interpreter.Interpreter {
	interp := interpreter.New(
		interpreter.WithLogger(l.logger),
		interpreter.WithMaxCallDepth(l.maxCallDepth),
		interpreter.WithImportResolver(l),
	)
	stdlib.Install(interp, stdlib.WithStdout(l.stdout))
	return interp
}

// Provide registers a host value under an import name. Provided values win
// over modules on disk.
func (l *Loader) Provide(name string, value runtime.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.provided[name] = value
}

// LoadModule decodes the JSON module at path.
func LoadModule(path string) (*ast.Module, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	module, err := ast.DecodeModule(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return module, nil
}

// ResolveImport implements interpreter.ImportResolver. A dotted name
// `a.b.c` binds member c of module a/b.json.
func (l *Loader) ResolveImport(ctx context.Context, name string) (runtime.Value, error) {
	l.mu.Lock()
	if val, ok := l.provided[name]; ok {
		l.mu.Unlock()
		return val, nil
	}
	l.mu.Unlock()

	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return nil, fmt.Errorf("expected module.member, got %q", name)
	}
	modulePath, member := name[:idx], name[idx+1:]
	env, err := l.loadModule(ctx, modulePath)
	if err != nil {
		return nil, err
	}
	val, err := env.Get(member)
	if err != nil {
		return nil, fmt.Errorf("module %s has no member %q", modulePath, member)
	}
	return val, nil
}

// Resolve is ResolveImport under the name used by hosts.
func (l *Loader) Resolve(ctx context.Context, name string) (runtime.Value, error) {
	return l.ResolveImport(ctx, name)
}

func (l *Loader) loadModule(ctx context.Context, modulePath string) (*runtime.Environment, error) {
	l.mu.Lock()
	if env, ok := l.modules[modulePath]; ok {
		l.mu.Unlock()
		return env, nil
	}
	if l.loading[modulePath] {
		l.mu.Unlock()
		return nil, fmt.Errorf("import cycle through module %s", modulePath)
	}
	l.loading[modulePath] = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.loading, modulePath)
		l.mu.Unlock()
	}()

	file, err := l.findModule(modulePath)
	if err != nil {
		return nil, err
	}
	module, err := LoadModule(file)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("module loading", "module", modulePath, "file", file)
	_, env, err := l.NewInterpreter().EvaluateModuleContext(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", modulePath, err)
	}

	l.mu.Lock()
	l.modules[modulePath] = env
	l.mu.Unlock()
	l.logger.Debug("module loaded", "module", modulePath, "bindings", len(env.Keys()))
	return env, nil
}

func (l *Loader) findModule(modulePath string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(modulePath, ".", "/")) + ModuleExt
	for _, dir := range l.SearchPaths {
		candidate := filepath.Join(dir, rel)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("module %s not found in search paths %v", modulePath, l.SearchPaths)
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
