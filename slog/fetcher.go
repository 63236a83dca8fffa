package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/docdex/docdex"
)

// Ensure RepoFetcher implements docdex.RepoFetcher.
var _ docdex.RepoFetcher = (*RepoFetcher)(nil)

// RepoFetcher wraps a RepoFetcher with logging of checkout attempts.
type RepoFetcher struct {
	next   docdex.RepoFetcher
	logger *slog.Logger
}

// NewRepoFetcher creates a logging RepoFetcher decorator.
func NewRepoFetcher(next docdex.RepoFetcher, logger *slog.Logger) *RepoFetcher {
	return &RepoFetcher{next: next, logger: logger}
}

// Checkout delegates to the wrapped fetcher, logging the outcome.
func (f *RepoFetcher) Checkout(ctx context.Context, repoURL, branch, subdir string) (string, func(), error) {
	begin := time.Now()
	dir, cleanup, err := f.next.Checkout(ctx, repoURL, branch, subdir)
	f.logger.Info("checkout",
		"repo", repoURL,
		"branch", branch,
		"subdir", subdir,
		"duration", time.Since(begin),
		"error", err,
	)
	return dir, cleanup, err
}
