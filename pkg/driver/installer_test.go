package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInstallerPathDependencies(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, ManifestFile), `
name: app
version: 0.1.0
dependencies:
  geometry: ../geometry
`)
	writeFile(t, filepath.Join(root, "geometry", ManifestFile), `
name: geometry
version: 0.2.0
search_paths: [src]
dependencies:
  numbers:
    path: ../numbers
`)
	writeFile(t, filepath.Join(root, "geometry", "src", "shapes.json"), `{"type":"Module","body":[]}`)
	writeFile(t, filepath.Join(root, "numbers", "consts.json"), `{"type":"Module","body":[]}`)

	manifest, err := LoadManifest(filepath.Join(appDir, ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := NewLockfile(manifest.Name, "test")
	installer := NewInstaller(manifest, filepath.Join(root, "cache"), WithInstallerLogger(quietLogger()))

	changed, logs, err := installer.Install(context.Background(), lock)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !changed {
		t.Fatalf("expected lockfile change for new dependencies")
	}
	wantLogs := []string{
		"linked geometry 0.2.0 (" + filepath.Join(root, "geometry") + ")",
		"linked numbers 0.0.0-dev (" + filepath.Join(root, "numbers") + ")",
	}
	if diff := cmp.Diff(wantLogs, logs); diff != "" {
		t.Fatalf("logs mismatch (-want +got):\n%s", diff)
	}

	geometry := lock.Package("geometry")
	if geometry == nil || geometry.Source != "path:"+filepath.Join(root, "geometry") {
		t.Fatalf("geometry entry unexpected: %#v", geometry)
	}
	if diff := cmp.Diff([]string{"numbers"}, geometry.Dependencies); diff != "" {
		t.Fatalf("geometry dependencies mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(geometry.Checksum, "sha256:") {
		t.Fatalf("geometry checksum = %q", geometry.Checksum)
	}

	wantPaths := []string{
		filepath.Join(root, "geometry"),
		filepath.Join(root, "geometry", "src"),
		filepath.Join(root, "numbers"),
	}
	if diff := cmp.Diff(wantPaths, installer.SearchPaths()); diff != "" {
		t.Fatalf("search paths mismatch (-want +got):\n%s", diff)
	}
	locked, err := LockedSearchPaths(lock, filepath.Join(root, "cache"))
	if err != nil {
		t.Fatalf("LockedSearchPaths: %v", err)
	}
	if diff := cmp.Diff(wantPaths, locked); diff != "" {
		t.Fatalf("locked search paths mismatch (-want +got):\n%s", diff)
	}

	changed, _, err = installer.Install(context.Background(), lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed {
		t.Fatalf("expected second install to leave the lockfile unchanged")
	}
}

func TestInstallerDetectsCycles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", ManifestFile), `
name: app
dependencies:
  a: ../a
`)
	writeFile(t, filepath.Join(root, "a", ManifestFile), `
name: a
dependencies:
  b: ../b
`)
	writeFile(t, filepath.Join(root, "b", ManifestFile), `
name: b
dependencies:
  a: ../a
`)
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(root, "cache"), WithInstallerLogger(quietLogger()))
	_, _, err = installer.Install(context.Background(), NewLockfile("app", "test"))
	if err == nil || !strings.Contains(err.Error(), "dependency cycle detected at a") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestInstallerMissingPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestFile), `
name: app
dependencies:
  ghost: ./ghost
`)
	manifest, err := LoadManifest(filepath.Join(root, ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(root, "cache"), WithInstallerLogger(quietLogger()))
	if _, _, err := installer.Install(context.Background(), NewLockfile("app", "test")); err == nil || !strings.Contains(err.Error(), `dependency "ghost"`) {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestInstallerGitDependencies(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, ManifestFile), `
name: gitpkg
version: 0.4.0
`)
	writeFile(t, filepath.Join(repoDir, "util.json"), `{"type":"Module","body":[]}`)
	repo, first := initGitRepo(t, repoDir)
	tagHead(t, repo, "v0.4.0")

	createBranch(t, repo, "next")
	writeFile(t, filepath.Join(repoDir, "extra.json"), `{"type":"Module","body":[]}`)
	second := commitAll(t, repo, repoDir, "extra")

	cases := []struct {
		name        string
		pin         string
		wantVersion string
		wantCommit  string
		wantExtra   bool
	}{
		{"rev", "rev: " + first, first, first, false},
		{"tag", "tag: v0.4.0", "v0.4.0@" + first, first, false},
		{"branch", "branch: next", "next@" + second, second, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appDir := filepath.Join(root, "app-"+tc.name)
			writeFile(t, filepath.Join(appDir, ManifestFile), `
name: app
dependencies:
  gitpkg:
    git: `+repoDir+`
    `+tc.pin+`
`)
			manifest, err := LoadManifest(filepath.Join(appDir, ManifestFile))
			if err != nil {
				t.Fatalf("LoadManifest: %v", err)
			}
			cacheDir := filepath.Join(root, "cache-"+tc.name)
			installer := NewInstaller(manifest, cacheDir, WithInstallerLogger(quietLogger()))
			lock := NewLockfile(manifest.Name, "test")
			changed, logs, err := installer.Install(context.Background(), lock)
			if err != nil {
				t.Fatalf("Install: %v", err)
			}
			if !changed || len(logs) != 1 {
				t.Fatalf("changed=%v logs=%v", changed, logs)
			}
			pkg := lock.Package("gitpkg")
			if pkg == nil {
				t.Fatalf("missing gitpkg entry: %#v", lock.Packages)
			}
			if pkg.Version != tc.wantVersion || pkg.Commit != tc.wantCommit {
				t.Fatalf("version=%q commit=%q, want %q %q", pkg.Version, pkg.Commit, tc.wantVersion, tc.wantCommit)
			}
			if pkg.Source != "git+"+repoDir {
				t.Fatalf("source = %q", pkg.Source)
			}
			dir := PackageDir(cacheDir, "gitpkg", pkg.Version)
			if _, err := os.Stat(filepath.Join(dir, "util.json")); err != nil {
				t.Fatalf("expected checkout at %s: %v", dir, err)
			}
			_, err = os.Stat(filepath.Join(dir, "extra.json"))
			if hasExtra := err == nil; hasExtra != tc.wantExtra {
				t.Fatalf("extra.json present=%v, want %v", hasExtra, tc.wantExtra)
			}

			paths, err := LockedSearchPaths(lock, cacheDir)
			if err != nil {
				t.Fatalf("LockedSearchPaths: %v", err)
			}
			if diff := cmp.Diff([]string{dir}, paths); diff != "" {
				t.Fatalf("search paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInstallerGitUnknownTag(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "util.json"), `{"type":"Module","body":[]}`)
	initGitRepo(t, repoDir)

	writeFile(t, filepath.Join(root, "app", ManifestFile), `
name: app
dependencies:
  gitpkg:
    git: `+repoDir+`
    tag: v9.9.9
`)
	manifest, err := LoadManifest(filepath.Join(root, "app", ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	installer := NewInstaller(manifest, filepath.Join(root, "cache"), WithInstallerLogger(quietLogger()))
	_, _, err = installer.Install(context.Background(), NewLockfile("app", "test"))
	if err == nil || !strings.Contains(err.Error(), "resolve revision v9.9.9") {
		t.Fatalf("expected revision error, got %v", err)
	}
}

func TestCachedRevision(t *testing.T) {
	baseDir := t.TempDir()
	full := "0123456789abcdef0123456789abcdef01234567"
	other := "fedcba9876543210fedcba9876543210fedcba98"
	for _, dir := range []string{full, "0123abc_" + full, "main_" + other, "git-fetch-123"} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	cases := []struct {
		rev         string
		wantVersion string
		wantCommit  string
		wantOK      bool
	}{
		{rev: full, wantVersion: full, wantCommit: full, wantOK: true},
		{rev: "0123abc", wantVersion: "0123abc@" + full, wantCommit: full, wantOK: true},
		{rev: "0123ab"},
		{rev: "main"},
		{rev: other},
	}
	for _, tc := range cases {
		version, commit, ok := cachedRevision(baseDir, tc.rev)
		if ok != tc.wantOK || version != tc.wantVersion || commit != tc.wantCommit {
			t.Fatalf("cachedRevision(%q) = %q %q %v, want %q %q %v", tc.rev, version, commit, ok, tc.wantVersion, tc.wantCommit, tc.wantOK)
		}
	}
}

func TestInstallerReusesCachedRevision(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "util.json"), `{"type":"Module","body":[]}`)
	_, first := initGitRepo(t, repoDir)
	cacheDir := filepath.Join(root, "cache")

	install := func(url string) (*LockedPackage, error) {
		appDir := t.TempDir()
		writeFile(t, filepath.Join(appDir, ManifestFile), `
name: app
dependencies:
  gitpkg:
    git: `+url+`
    rev: `+first+`
`)
		manifest, err := LoadManifest(filepath.Join(appDir, ManifestFile))
		if err != nil {
			t.Fatalf("LoadManifest: %v", err)
		}
		lock := NewLockfile(manifest.Name, "test")
		installer := NewInstaller(manifest, cacheDir, WithInstallerLogger(quietLogger()))
		if _, _, err := installer.Install(context.Background(), lock); err != nil {
			return nil, err
		}
		return lock.Package("gitpkg"), nil
	}

	pkg, err := install(repoDir)
	if err != nil {
		t.Fatalf("first install: %v", err)
	}
	// The second URL does not exist, so this only succeeds without a clone.
	cached, err := install(filepath.Join(root, "gone"))
	if err != nil {
		t.Fatalf("cached install: %v", err)
	}
	if cached.Version != pkg.Version || cached.Commit != first || cached.Checksum != pkg.Checksum {
		t.Fatalf("cached package %#v differs from %#v", cached, pkg)
	}
}
