package main

import (
	"fmt"

	"github.com/docdex/docdex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	docs, err := deps.Documentations.FindDocumentations(deps.Ctx, docdex.DocumentationFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documentation sources found. Use 'docdex add' to create one.")
		return nil
	}

	for _, d := range docs {
		files, err := deps.Files.FindFiles(deps.Ctx, docdex.FileFilter{DocumentationID: &d.ID})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}
		chunks, err := deps.Chunks.FindChunks(deps.Ctx, docdex.ChunkFilter{DocumentationID: &d.ID})
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
			return err
		}

		ref := d.Branch
		if d.Subdir != "" {
			ref += "/" + d.Subdir
		}
		fmt.Fprintf(deps.Stdout, "%s  %s (%s)  %d files, %d chunks\n",
			d.Name, d.RepoURL, ref, len(files), len(chunks))
	}

	return nil
}
