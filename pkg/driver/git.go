package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

type gitFetcher struct {
	cacheDir string
	logger   *slog.Logger
}

// Fetch clones spec.Git into the cache and checks out the pinned revision.
// The returned directory holds the checked-out tree.
func (g *gitFetcher) Fetch(ctx context.Context, name string, spec *DependencySpec) (*LockedPackage, string, error) {
	if spec.Git == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}
	baseDir := filepath.Join(g.cacheDir, "pkg", "src", sanitizeName(name))
	version, commit, err := g.ensureCheckout(ctx, baseDir, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	checkoutDir := filepath.Join(baseDir, sanitizePathSegment(version))
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, checkoutDir, err)
	}
	return &LockedPackage{
		Name:     sanitizeName(name),
		Version:  version,
		Source:   "git+" + spec.Git,
		Commit:   commit,
		Checksum: checksum,
	}, checkoutDir, nil
}

func (g *gitFetcher) ensureCheckout(ctx context.Context, baseDir string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	revisions, descriptor, err := gitRevisionsFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if spec.Rev != "" {
		if version, commit, ok := cachedRevision(baseDir, spec.Rev); ok {
			g.logger.Debug("git checkout cached", "dir", filepath.Join(baseDir, sanitizePathSegment(version)))
			return version, commit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	g.logger.Debug("git clone", "url", spec.Git, "dir", tmpDir)
	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: spec.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	var hash *plumbing.Hash
	for _, revision := range revisions {
		hash, err = repo.ResolveRevision(revision)
		if err == nil {
			break
		}
	}
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	g.logger.Debug("git checkout ready", "dir", targetDir, "commit", hash.String())
	return version, hash.String(), nil
}

// cachedRevision finds an earlier checkout of a commit rev. A full hash is
// stored under its own name, an abbreviated one as rev@<hash>. Other revs
// can move, so they are never served from the cache.
func cachedRevision(baseDir, rev string) (string, string, bool) {
	if plumbing.IsHash(rev) {
		if _, err := os.Stat(filepath.Join(baseDir, rev)); err == nil {
			return rev, rev, true
		}
		return "", "", false
	}
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", "", false
	}
	prefix := sanitizePathSegment(rev) + "_"
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		commit := strings.TrimPrefix(entry.Name(), prefix)
		if plumbing.IsHash(commit) && strings.HasPrefix(commit, rev) {
			return gitPinnedVersion(rev, commit), commit, true
		}
	}
	return "", "", false
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionsFromSpec lists the revisions to try in order. Only the default
// branch gets a local head after a clone, so branches fall back to the remote
// tracking ref.
func gitRevisionsFromSpec(spec *DependencySpec) ([]plumbing.Revision, string, error) {
	switch {
	case spec.Rev != "":
		return []plumbing.Revision{plumbing.Revision(spec.Rev)}, spec.Rev, nil
	case spec.Tag != "":
		return []plumbing.Revision{plumbing.Revision("refs/tags/" + spec.Tag)}, spec.Tag, nil
	case spec.Branch != "":
		return []plumbing.Revision{
			plumbing.Revision("refs/heads/" + spec.Branch),
			plumbing.Revision("refs/remotes/origin/" + spec.Branch),
		}, spec.Branch, nil
	}
	return nil, "", errors.New("git dependencies require rev, tag, or branch")
}
