package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvironmentSetUpdatesOuterBinding(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("count", IntegerValue{Val: 1})
	child := root.Extend()

	child.Set("count", IntegerValue{Val: 2})

	if len(child.Keys()) != 0 {
		t.Fatalf("reassignment should not shadow the outer binding: %v", child.Keys())
	}
	got, err := root.Get("count")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != (IntegerValue{Val: 2}) {
		t.Fatalf("count = %#v, want 2", got)
	}
}

func TestEnvironmentSetBindsNewNameInInnermostFrame(t *testing.T) {
	root := NewEnvironment(nil)
	child := root.Extend()
	child.Set("fresh", StringValue{Val: "x"})

	if root.Has("fresh") {
		t.Fatalf("new binding leaked into the parent frame")
	}
	if diff := cmp.Diff([]string{"fresh"}, child.Keys()); diff != "" {
		t.Fatalf("child keys mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentGetReportsUndefined(t *testing.T) {
	env := NewEnvironment(nil)
	if _, err := env.Get("missing"); err == nil {
		t.Fatalf("expected error for undefined variable")
	}
	if env.AssignExisting("missing", NoneValue{}) {
		t.Fatalf("expected AssignExisting to fail for undefined variable")
	}
}

func TestEnvironmentDefineShadows(t *testing.T) {
	root := NewEnvironment(nil)
	root.Define("x", IntegerValue{Val: 1})
	child := root.Extend()
	child.Define("x", IntegerValue{Val: 5})

	inner, _ := child.Get("x")
	outer, _ := root.Get("x")
	if inner != (IntegerValue{Val: 5}) || outer != (IntegerValue{Val: 1}) {
		t.Fatalf("shadowing broken: inner=%#v outer=%#v", inner, outer)
	}
}
