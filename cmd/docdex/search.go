package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ingest"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Retriever.Retrieve(deps.Ctx, c.Prompt, ingest.RetrieveOptions{
		K:             c.K,
		Documentation: c.Doc,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results.")
		return nil
	}

	for i, r := range results {
		header := r.Metadata.Path
		if len(r.Metadata.Breadcrumb) > 0 {
			header += " · " + strings.Join(r.Metadata.Breadcrumb, " > ")
		}
		fmt.Fprintf(deps.Stdout, "%d. [%s] %s (distance %.4f)\n", i+1, r.Metadata.Documentation, header, r.Distance)
		fmt.Fprintln(deps.Stdout, indent(r.Content, "   "))
	}

	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
