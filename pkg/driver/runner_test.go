package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"quill/interpreter-go/pkg/ast"
	"quill/interpreter-go/pkg/interpreter"
	"quill/interpreter-go/pkg/runtime"
)

func TestRunProgramsKeepsOrderAndIsolation(t *testing.T) {
	root := t.TempDir()
	shared := filepath.Join(root, "shared")
	writeModule(t, filepath.Join(shared, "counter.json"), ast.Program(
		ast.Assign("hits", ast.List()),
		ast.Fn("hit", nil,
			ast.Expr(ast.Call("append", ast.ID("hits"), ast.Int(1))),
			ast.Ret(ast.Call("len", ast.ID("hits"))),
		),
	))

	var entries []string
	for _, name := range []string{"a", "b", "c", "d"} {
		entry := filepath.Join(root, name+".json")
		writeModule(t, entry, ast.Program(
			ast.Import(ast.NewName("counter.hit")),
			ast.Expr(ast.Call("hit")),
			ast.Expr(ast.Call("print", ast.Str(name), ast.Call("hit"))),
			ast.Expr(ast.Str(name)),
		))
		entries = append(entries, entry)
	}
	failing := filepath.Join(root, "fail.json")
	writeModule(t, failing, ast.Program(ast.Expr(ast.ID("abcde"))))
	entries = append(entries, failing, filepath.Join(root, "absent.json"))

	results, err := RunPrograms(context.Background(), entries, RunOptions{
		SearchPaths: []string{shared},
		Concurrency: 2,
		Logger:      quietLogger(),
	})
	if err != nil {
		t.Fatalf("RunPrograms: %v", err)
	}
	if len(results) != len(entries) {
		t.Fatalf("got %d results for %d entries", len(results), len(entries))
	}
	for idx, name := range []string{"a", "b", "c", "d"} {
		res := results[idx]
		if res.Entry != entries[idx] || res.Err != nil {
			t.Fatalf("result %d: entry=%s err=%v", idx, res.Entry, res.Err)
		}
		if got := runtime.Format(res.Value); got != name {
			t.Fatalf("result %d value = %s, want %s", idx, got, name)
		}
		if diff := cmp.Diff(name+" 2\n", res.Stdout); diff != "" {
			t.Fatalf("result %d stdout mismatch (-want +got):\n%s", idx, diff)
		}
	}
	if !interpreter.IsKind(results[4].Err, interpreter.KindNameError) {
		t.Fatalf("expected NameError, got %v", results[4].Err)
	}
	if !errors.Is(results[5].Err, os.ErrNotExist) {
		t.Fatalf("expected missing file error, got %v", results[5].Err)
	}
}

func TestRunProgramsAppliesCallDepth(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "deep.json")
	writeModule(t, entry, ast.Program(
		ast.Fn("down", []string{"n"},
			ast.If(ast.Bin(ast.ID("n"), ast.OpEq, ast.Int(0)), ast.Block(ast.Ret(ast.Int(0))), nil),
			ast.Ret(ast.Call("down", ast.Bin(ast.ID("n"), ast.OpSub, ast.Int(1)))),
		),
		ast.Expr(ast.Call("down", ast.Int(30))),
	))
	results, err := RunPrograms(context.Background(), []string{entry}, RunOptions{MaxCallDepth: 10, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("RunPrograms: %v", err)
	}
	if !interpreter.IsKind(results[0].Err, interpreter.KindStackOverflow) {
		t.Fatalf("expected StackOverflow, got %v", results[0].Err)
	}
}

func TestRunProgramsCancelled(t *testing.T) {
	entry := filepath.Join(t.TempDir(), "loop.json")
	writeModule(t, entry, ast.Program(ast.While(ast.Bool(true), ast.Expr(ast.None()))))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := RunPrograms(ctx, []string{entry}, RunOptions{Logger: quietLogger()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !interpreter.IsKind(results[0].Err, interpreter.KindInterrupted) {
		t.Fatalf("expected Interrupted, got %v", results[0].Err)
	}
}
