package main

import (
	"fmt"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ingest"
)

// Run executes the remove command.
func (c *RemoveCmd) Run(deps *Dependencies) error {
	syncer := &ingest.Syncer{Documentations: deps.Documentations}
	if err := syncer.Remove(deps.Ctx, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Removed documentation %q\n", c.Name)
	return nil
}
