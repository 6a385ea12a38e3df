package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"quill/interpreter-go/pkg/driver"
	"quill/interpreter-go/pkg/interpreter"
)

type runOptions struct {
	maxDepth int
	files    []string
}

func parseRunArgs(args []string) (runOptions, error) {
	var opts runOptions
	for idx := 0; idx < len(args); idx++ {
		arg := args[idx]
		switch {
		case arg == "--max-depth":
			if idx+1 >= len(args) {
				return opts, errors.New("--max-depth requires a value")
			}
			idx++
			depth, err := parseDepth(args[idx])
			if err != nil {
				return opts, err
			}
			opts.maxDepth = depth
		case strings.HasPrefix(arg, "--max-depth="):
			depth, err := parseDepth(strings.TrimPrefix(arg, "--max-depth="))
			if err != nil {
				return opts, err
			}
			opts.maxDepth = depth
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag %s", arg)
		default:
			opts.files = append(opts.files, arg)
		}
	}
	return opts, nil
}

func parseDepth(value string) (int, error) {
	depth, err := strconv.Atoi(value)
	if err != nil || depth <= 0 {
		return 0, fmt.Errorf("--max-depth must be a positive integer (got %q)", value)
	}
	return depth, nil
}

func runPrograms(args []string, logger *slog.Logger) int {
	opts, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	manifest, err := loadManifestFrom(".")
	if err != nil && !errors.Is(err, driver.ErrManifestNotFound) {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	var searchPaths []string
	if manifest != nil {
		if err := manifest.CheckRequires(cliToolVersion); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		paths, err := manifestSearchPaths(manifest)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		searchPaths = paths
		if opts.maxDepth == 0 {
			opts.maxDepth = manifest.Limits.MaxCallDepth
		}
	}

	entries := opts.files
	if len(entries) == 0 {
		if manifest == nil {
			fmt.Fprintf(os.Stderr, "no file given and no %s found\n", driver.ManifestFile)
			return 1
		}
		entry, err := manifest.EntryPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		entries = []string{entry}
	}
	for idx, entry := range entries {
		if abs, err := filepath.Abs(entry); err == nil {
			entries[idx] = abs
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := driver.RunPrograms(ctx, entries, driver.RunOptions{
		SearchPaths:  searchPaths,
		MaxCallDepth: opts.maxDepth,
		Logger:       logger,
	})
	status := 0
	for _, res := range results {
		fmt.Fprint(os.Stdout, res.Stdout)
		if res.Err == nil {
			continue
		}
		status = 1
		var rerr *interpreter.RuntimeError
		if errors.As(res.Err, &rerr) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", displayEntry(res.Entry), rerr.Traceback())
		} else {
			fmt.Fprintf(os.Stderr, "%s: %v\n", displayEntry(res.Entry), res.Err)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "run aborted: %v\n", err)
		return 1
	}
	return status
}

// manifestSearchPaths combines the project's own search paths with those of
// its installed dependencies.
func manifestSearchPaths(manifest *driver.Manifest) ([]string, error) {
	paths := manifest.ModuleSearchPaths()
	lock, err := loadLockfileForManifest(manifest)
	if err != nil || lock == nil {
		return paths, err
	}
	cacheDir, err := driver.ResolveHome()
	if err != nil {
		return nil, err
	}
	deps, err := driver.LockedSearchPaths(lock, cacheDir)
	if err != nil {
		return nil, err
	}
	return append(paths, deps...), nil
}

func displayEntry(entry string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, entry); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return entry
}
