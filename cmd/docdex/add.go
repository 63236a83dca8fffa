package main

import (
	"fmt"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ingest"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	progress := func(event ingest.ProgressEvent) {
		switch event.Type {
		case ingest.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d markdown files\n", event.Total)
		case ingest.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, event.Path)
		}
	}

	result, err := deps.Syncer.Add(deps.Ctx, ingest.AddOptions{
		Name:    c.Name,
		RepoURL: c.RepoURL,
		Subdir:  c.Subdir,
		Branch:  c.Branch,
	}, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	var chunks int
	for _, f := range result.Files {
		chunks += f.Chunks
	}
	fmt.Fprintf(deps.Stdout, "Added documentation %q (%d files, %d chunks)\n",
		c.Name, len(result.Files), chunks)
	return nil
}
