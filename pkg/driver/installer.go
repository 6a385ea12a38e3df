package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type resolvedPackage struct {
	pkg      *LockedPackage
	manifest *Manifest
	root     string
}

// Installer resolves a manifest's dependencies (transitively) into the
// cache and records them in a lockfile.
type Installer struct {
	manifest     *Manifest
	manifestRoot string
	cacheDir     string
	logger       *slog.Logger
	git          *gitFetcher

	logs      []string
	resolved  map[string]*resolvedPackage
	resolving map[string]bool
}

type InstallerOption func(*Installer)

func WithInstallerLogger(logger *slog.Logger) InstallerOption {
	return func(d *Installer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewInstaller(manifest *Manifest, cacheDir string, opts ...InstallerOption) *Installer {
	d := &Installer{
		manifest: manifest,
		cacheDir: cacheDir,
		logger:   defaultLogger(),
	}
	if manifest != nil {
		d.manifestRoot = manifest.Root()
	}
	for _, opt := range opts {
		opt(d)
	}
	d.git = &gitFetcher{cacheDir: cacheDir, logger: d.logger}
	return d
}

// Install resolves every dependency and replaces lock.Packages with the
// result. It reports whether the lockfile contents changed, along with
// human-readable progress lines.
func (d *Installer) Install(ctx context.Context, lock *Lockfile) (bool, []string, error) {
	d.logs = []string{}
	d.resolved = make(map[string]*resolvedPackage)
	d.resolving = make(map[string]bool)
	if d.manifest == nil {
		return false, d.logs, nil
	}
	if lock == nil {
		return false, d.logs, errors.New("install: nil lockfile")
	}

	for _, name := range sortedDependencyNames(d.manifest.Dependencies) {
		spec := *d.manifest.Dependencies[name]
		if _, err := d.installDependency(ctx, name, &spec, d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*LockedPackage, 0, len(d.resolved))
	for _, res := range d.resolved {
		desired = append(desired, res.pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	existing := make(map[string]*LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			existing[pkg.Name] = pkg
		}
	}
	changed := len(desired) != len(existing)
	for _, pkg := range desired {
		if current, ok := existing[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}
	lock.Packages = desired
	d.logger.Info("dependencies resolved", "packages", len(desired), "changed", changed)
	return changed, d.logs, nil
}

// SearchPaths lists the module directories of every package resolved by the
// last Install, in package-name order.
func (d *Installer) SearchPaths() []string {
	names := make([]string, 0, len(d.resolved))
	for name := range d.resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	var paths []string
	for _, name := range names {
		paths = append(paths, packageSearchPaths(d.resolved[name].root, d.resolved[name].manifest)...)
	}
	return paths
}

func (d *Installer) installDependency(ctx context.Context, name string, spec *DependencySpec, base string) (*resolvedPackage, error) {
	alias := sanitizeName(name)
	if res, ok := d.resolved[alias]; ok {
		return res, nil
	}
	if d.resolving[alias] {
		return nil, fmt.Errorf("dependency cycle detected at %s", alias)
	}
	d.resolving[alias] = true
	defer delete(d.resolving, alias)

	var (
		res *resolvedPackage
		err error
	)
	switch {
	case spec.Path != "":
		res, err = d.resolvePathDependency(alias, spec, base)
	case spec.Git != "":
		res, err = d.resolveGitDependency(ctx, alias, spec)
	default:
		err = fmt.Errorf("dependency %q: must specify git or path", name)
	}
	if err != nil {
		return nil, err
	}

	if res.manifest != nil {
		for _, childName := range sortedDependencyNames(res.manifest.Dependencies) {
			childSpec := *res.manifest.Dependencies[childName]
			child, err := d.installDependency(ctx, childName, &childSpec, res.root)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", alias, err)
			}
			res.pkg.Dependencies = append(res.pkg.Dependencies, child.pkg.Name)
		}
		sort.Strings(res.pkg.Dependencies)
	}
	d.resolved[alias] = res
	return res, nil
}

func (d *Installer) resolvePathDependency(name string, spec *DependencySpec, base string) (*resolvedPackage, error) {
	pathSpec := spec.Path
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(base, filepath.FromSlash(pathSpec))
	}
	abs, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	depManifest, err := loadOptionalManifest(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := "0.0.0-dev"
	if depManifest != nil && depManifest.Version != "" {
		version = depManifest.Version
	}
	checksum, err := dirChecksum(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: checksum %s: %w", name, abs, err)
	}

	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", name, version, d.displayPath(abs)))
	d.logger.Debug("path dependency linked", "name", name, "dir", abs)
	return &resolvedPackage{
		pkg: &LockedPackage{
			Name:     name,
			Version:  version,
			Source:   "path:" + abs,
			Checksum: checksum,
		},
		manifest: depManifest,
		root:     abs,
	}, nil
}

func (d *Installer) resolveGitDependency(ctx context.Context, name string, spec *DependencySpec) (*resolvedPackage, error) {
	pkg, dir, err := d.git.Fetch(ctx, name, spec)
	if err != nil {
		return nil, err
	}
	depManifest, err := loadOptionalManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("fetched %s %s (%s)", name, pkg.Version, pkg.Commit))
	return &resolvedPackage{pkg: pkg, manifest: depManifest, root: dir}, nil
}

func (d *Installer) displayPath(path string) string {
	if d.manifestRoot != "" {
		if rel, err := filepath.Rel(d.manifestRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return path
}

// LockedSearchPaths rebuilds the module search paths recorded by a previous
// install without touching the network.
func LockedSearchPaths(lock *Lockfile, cacheDir string) ([]string, error) {
	if lock == nil {
		return nil, nil
	}
	var paths []string
	for _, pkg := range lock.Packages {
		var dir string
		switch {
		case strings.HasPrefix(pkg.Source, "path:"):
			dir = strings.TrimPrefix(pkg.Source, "path:")
		case strings.HasPrefix(pkg.Source, "git+"):
			dir = PackageDir(cacheDir, pkg.Name, pkg.Version)
		default:
			return nil, fmt.Errorf("lockfile: package %s has unsupported source %q", pkg.Name, pkg.Source)
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("lockfile: package %s not installed at %s; run `quill deps install`", pkg.Name, dir)
		}
		depManifest, err := loadOptionalManifest(dir)
		if err != nil {
			return nil, fmt.Errorf("lockfile: package %s: %w", pkg.Name, err)
		}
		paths = append(paths, packageSearchPaths(dir, depManifest)...)
	}
	return paths, nil
}

func packageSearchPaths(root string, manifest *Manifest) []string {
	if manifest == nil {
		return []string{root}
	}
	return manifest.ModuleSearchPaths()
}

func loadOptionalManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return LoadManifest(path)
}

func sortedDependencyNames(deps map[string]*DependencySpec) []string {
	names := make([]string, 0, len(deps))
	for name, spec := range deps {
		if spec != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
