package mock

import (
	"context"

	"github.com/docdex/docdex"
)

var _ docdex.RepoFetcher = (*RepoFetcher)(nil)

// RepoFetcher is a mock implementation of docdex.RepoFetcher.
type RepoFetcher struct {
	CheckoutFn func(ctx context.Context, repoURL, branch, subdir string) (string, func(), error)
}

func (f *RepoFetcher) Checkout(ctx context.Context, repoURL, branch, subdir string) (string, func(), error) {
	return f.CheckoutFn(ctx, repoURL, branch, subdir)
}
