package main

import (
	"fmt"
	"os"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/driver"
)

func runDump(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "quill dump requires exactly one file")
		return 1
	}
	module, err := driver.LoadModule(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load module: %v\n", err)
		return 1
	}
	fmt.Fprint(os.Stdout, ast.Print(module))
	return 0
}
