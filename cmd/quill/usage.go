package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  quill run [--max-depth N] [file.json ...]")
	fmt.Fprintln(os.Stderr, "  quill <file.json>")
	fmt.Fprintln(os.Stderr, "  quill dump <file.json>")
	fmt.Fprintln(os.Stderr, "  quill deps install")
	fmt.Fprintln(os.Stderr, "  quill --version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "With no file, run uses the entry declared in quill.yml.")
	fmt.Fprintln(os.Stderr, "QUILL_LOG sets the log level (debug, info, warn, error); QUILL_HOME sets the package cache.")
}
