// Package git provisions isolated work directories (git worktrees) for squad agents.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotWorktree is returned when the workdir path exists but is not the top level of a git
// worktree, e.g. a leftover plain directory inside the main checkout.
var ErrNotWorktree = errors.New("path exists but is not a git worktree")

// WorkdirOptions selects the branch checked out in an isolated workdir and the commit a new
// branch starts from. Base defaults to HEAD.
type WorkdirOptions struct {
	Branch string
	Base   string
}

// Workdir is a provisioned isolated work directory.
type Workdir struct {
	Path   string
	Branch string
	IsNew  bool
}

// Provisioner creates worktrees with the git CLI. The zero value is ready to use.
type Provisioner struct{}

func (Provisioner) CreateIsolatedWorkdir(ctx context.Context, rootDir, baseDir, name string, opts WorkdirOptions) (Workdir, error) {
	return CreateIsolatedWorkdir(ctx, rootDir, baseDir, name, opts)
}

// WorkdirPath returns where the workdir called name lives: baseDir/name, with a relative baseDir
// taken relative to rootDir.
func WorkdirPath(rootDir, baseDir, name string) string {
	if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(rootDir, baseDir)
	}
	return filepath.Join(baseDir, name)
}

// CreateIsolatedWorkdir adds a worktree of the repository at rootDir under baseDir/name with
// opts.Branch checked out, creating the branch from opts.Base when it does not exist yet.
// An existing worktree at that path is reused and reported with IsNew=false.
func CreateIsolatedWorkdir(ctx context.Context, rootDir, baseDir, name string, opts WorkdirOptions) (Workdir, error) {
	if rootDir == "" || name == "" {
		return Workdir{}, errors.New("root dir and workdir name required")
	}
	branch := opts.Branch
	if branch == "" {
		branch = name
	}
	base := opts.Base
	if base == "" {
		base = "HEAD"
	}
	path := WorkdirPath(rootDir, baseDir, name)

	if _, err := os.Stat(path); err == nil {
		// git resolves a plain directory to the enclosing checkout, so require path to be the top level.
		top, err := run(ctx, path, "rev-parse", "--show-toplevel")
		if err != nil {
			return Workdir{}, fmt.Errorf("%w: %s: %v", ErrNotWorktree, path, err)
		}
		if !samePath(top, path) {
			return Workdir{}, fmt.Errorf("%w: %s belongs to %s", ErrNotWorktree, path, top)
		}
		current, err := run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
		if err != nil {
			return Workdir{}, err
		}
		return Workdir{Path: path, Branch: current, IsNew: false}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Workdir{}, err
	}

	args := []string{"worktree", "add", "-b", branch, path, base}
	if branchExists(ctx, rootDir, branch) {
		args = []string{"worktree", "add", path, branch}
	}
	if _, err := run(ctx, rootDir, args...); err != nil {
		return Workdir{}, err
	}
	return Workdir{Path: path, Branch: branch, IsNew: true}, nil
}

// RemoveIsolatedWorkdir removes the worktree at path. Missing paths are a no-op. The branch is kept.
func RemoveIsolatedWorkdir(ctx context.Context, rootDir, path string, force bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := run(ctx, rootDir, args...)
	return err
}

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(ctx context.Context, dir string) (string, error) {
	return run(ctx, dir, "rev-parse", "--show-toplevel")
}

func samePath(a, b string) bool {
	return resolve(a) == resolve(b)
}

func resolve(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

func branchExists(ctx context.Context, rootDir, branch string) bool {
	_, err := run(ctx, rootDir, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args[:min(2, len(args))], " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}
