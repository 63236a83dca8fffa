package docdex

import "context"

// RepoFetcher obtains a checked-out working tree for a documentation source.
// Implementations hide clone/checkout mechanics; callers only see a local
// directory.
type RepoFetcher interface {
	// Checkout clones repoURL at branch and returns the local directory
	// holding subdir's content (the repository root when subdir is empty).
	// The returned cleanup releases the checkout and is safe to call once.
	//
	// Failures are distinguishable by code: EINVALID for an unknown branch
	// or ref, ENOTFOUND for a missing subdir, EUNAVAILABLE for network or
	// auth errors. The context controls timeout and cancellation.
	Checkout(ctx context.Context, repoURL, branch, subdir string) (dir string, cleanup func(), err error)
}
