package main

import (
	"fmt"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ingest"
)

// Run executes the update command.
func (c *UpdateCmd) Run(deps *Dependencies) error {
	progress := func(event ingest.ProgressEvent) {
		switch event.Type {
		case ingest.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d markdown files\n", event.Total)
		case ingest.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %v\n", event.Path, event.Err)
		}
	}

	result, err := deps.Syncer.Update(deps.Ctx, ingest.UpdateOptions{
		Name:    c.Name,
		RepoURL: c.RepoURL,
		Subdir:  c.Subdir,
		Branch:  c.Branch,
	}, progress)
	if err != nil && result == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	counts := result.Counts()
	fmt.Fprintf(deps.Stdout, "Updated %q: %d added, %d updated, %d skipped, %d removed, %d failed\n",
		c.Name,
		counts[ingest.StatusAdded], counts[ingest.StatusUpdated], counts[ingest.StatusSkipped],
		counts[ingest.StatusRemoved], counts[ingest.StatusFailed])

	return err
}
