package driver

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"

	"quill/interpreter-go/pkg/runtime"
)

// RunOptions configures RunPrograms.
type RunOptions struct {
	// SearchPaths are consulted for imports after the entry's own directory.
	SearchPaths  []string
	MaxCallDepth int
	// Concurrency bounds how many programs evaluate at once (NumCPU when zero).
	Concurrency int
	Logger      *slog.Logger
}

// Result is the outcome of one program. Err holds decode failures and
// unhandled runtime errors; Stdout holds whatever the program printed.
type Result struct {
	Entry  string
	Value  runtime.Value
	Stdout string
	Err    error
}

// RunPrograms evaluates each entry in its own interpreter. Results are
// returned in the order of entries. The returned error is non-nil only when
// ctx ends before every program finished.
func RunPrograms(ctx context.Context, entries []string, opts RunOptions) ([]Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = goruntime.NumCPU()
	}

	results := make([]Result, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, entry := range entries {
		idx, entry := idx, entry
		g.Go(func() error {
			results[idx] = runProgram(gctx, entry, opts, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func runProgram(ctx context.Context, entry string, opts RunOptions, logger *slog.Logger) Result {
	result := Result{Entry: entry}
	module, err := LoadModule(entry)
	if err != nil {
		result.Err = err
		return result
	}

	var stdout bytes.Buffer
	searchPaths := append([]string{filepath.Dir(entry)}, opts.SearchPaths...)
	loader := NewLoader(searchPaths,
		WithLoaderLogger(logger),
		WithLoaderStdout(&stdout),
		WithLoaderMaxCallDepth(opts.MaxCallDepth),
	)
	logger.Debug("program started", "entry", entry)
	value, _, err := loader.NewInterpreter().EvaluateModuleContext(ctx, module)
	result.Value = value
	result.Stdout = stdout.String()
	result.Err = err
	logger.Debug("program finished", "entry", entry, "failed", err != nil)
	return result
}
