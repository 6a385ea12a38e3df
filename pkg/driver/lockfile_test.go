package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFile)
	lock := NewLockfile("my-app", " quill 0.1.0 ")
	lock.Packages = []*LockedPackage{
		{Name: "zeta", Version: "v1.0.0@abc", Source: "git+https://example.com/zeta.git", Commit: "abc", Checksum: "sha256:01"},
		nil,
		{Name: "alpha", Version: "0.0.0-dev", Source: "path:/tmp/alpha", Dependencies: []string{"zeta", "beta"}},
	}
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	if !strings.Contains(string(data), "root: my_app\n") || !strings.Contains(string(data), "  - name: alpha\n") {
		t.Fatalf("unexpected lockfile contents:\n%s", data)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	want := &Lockfile{
		Path:      path,
		Root:      "my_app",
		Generated: lock.Generated,
		Tool:      "quill 0.1.0",
		Packages: []*LockedPackage{
			{Name: "alpha", Version: "0.0.0-dev", Source: "path:/tmp/alpha", Dependencies: []string{"beta", "zeta"}},
			{Name: "zeta", Version: "v1.0.0@abc", Source: "git+https://example.com/zeta.git", Commit: "abc", Checksum: "sha256:01"},
		},
	}
	if diff := cmp.Diff(want, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("lockfile mismatch (-want +got):\n%s", diff)
	}
	if pkg := loaded.Package("zeta"); pkg == nil || pkg.Commit != "abc" {
		t.Fatalf("Package(zeta) = %#v", pkg)
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	_, err := LoadLockfile(filepath.Join(t.TempDir(), LockFile))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFile)
	writeFile(t, path, `
root: app
registry: main
packages: []
`)
	if _, err := LoadLockfile(path); err == nil || !strings.Contains(err.Error(), "registry") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
