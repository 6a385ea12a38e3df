package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const cliToolVersion = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}
	logger := newLogger(os.Getenv("QUILL_LOG"))

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintf(os.Stdout, "quill %s\n", cliToolVersion)
		return 0
	case "run":
		return runPrograms(args[1:], logger)
	case "dump":
		return runDump(args[1:])
	case "deps":
		return runDeps(args[1:], logger)
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage()
			return 1
		}
		return runPrograms(args, logger)
	}
}

// newLogger maps QUILL_LOG (debug, info, warn, error) to a JSON logger on
// stderr. Anything else keeps the default error level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	default:
		lvl = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
