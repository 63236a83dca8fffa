// Package git provides a RepoFetcher implementation that shells out to the
// git binary for shallow clones.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

// Compile-time interface verification.
var _ docdex.RepoFetcher = (*Fetcher)(nil)

// Fetcher implements docdex.RepoFetcher by running `git clone` into a
// temporary directory. Clones are shallow (depth 1) since only the working
// tree at the branch head is needed.
type Fetcher struct {
	// Timeout bounds a single checkout. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration
}

// NewFetcher creates a Fetcher with the given checkout timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{Timeout: timeout}
}

// Checkout clones repoURL at branch into a temporary directory and returns
// the path holding subdir's content. The cleanup removes the clone.
func (f *Fetcher) Checkout(ctx context.Context, repoURL, branch, subdir string) (string, func(), error) {
	if repoURL == "" {
		return "", nil, docdex.Errorf(docdex.EINVALID, "repository URL required")
	}
	if branch == "" {
		branch = "main"
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	tmp, err := os.MkdirTemp("", "docdex-checkout-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(tmp) }

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", "--single-branch",
		"--branch", branch, repoURL, tmp)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Never prompt for credentials; fail instead.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	if err := cmd.Run(); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return "", nil, docdex.Errorf(docdex.EUNAVAILABLE,
				"checkout of %s timed out or was canceled", repoURL)
		}
		return "", nil, classifyCloneError(repoURL, branch, stderr.String())
	}

	dir := tmp
	if subdir != "" {
		dir = filepath.Join(tmp, filepath.FromSlash(subdir))
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			cleanup()
			return "", nil, docdex.Errorf(docdex.ENOTFOUND,
				"subdirectory %q not found in %s at branch %s", subdir, repoURL, branch)
		}
	}

	return dir, cleanup, nil
}

// classifyCloneError maps git's stderr to a distinguishable error code:
// unknown ref (EINVALID) vs network/auth failure (EUNAVAILABLE).
func classifyCloneError(repoURL, branch, stderr string) error {
	msg := strings.ToLower(stderr)

	switch {
	case strings.Contains(msg, "remote branch") && strings.Contains(msg, "not found"),
		strings.Contains(msg, "couldn't find remote ref"):
		return docdex.Errorf(docdex.EINVALID, "branch %q not found in %s", branch, repoURL)

	case strings.Contains(msg, "authentication failed"),
		strings.Contains(msg, "could not read username"),
		strings.Contains(msg, "permission denied"):
		return docdex.Errorf(docdex.EUNAVAILABLE, "authentication failed for %s", repoURL)

	case strings.Contains(msg, "could not resolve host"),
		strings.Contains(msg, "unable to access"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "operation timed out"):
		return docdex.Errorf(docdex.EUNAVAILABLE, "network error cloning %s", repoURL)

	case strings.Contains(msg, "repository") && strings.Contains(msg, "not found"):
		return docdex.Errorf(docdex.EUNAVAILABLE, "repository %s not found or not accessible", repoURL)
	}

	return docdex.Errorf(docdex.EUNAVAILABLE, "git clone of %s failed: %s", repoURL, strings.TrimSpace(stderr))
}
