package main

import (
	"context"
	"io"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/ingest"
	"github.com/docdex/docdex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx            context.Context
	Stdout         io.Writer
	Stderr         io.Writer
	Config         docdex.Config
	DB             *sqlite.DB
	Documentations docdex.DocumentationService
	Files          docdex.FileService
	Chunks         docdex.ChunkService
	Syncer         *ingest.Syncer
	Retriever      *ingest.Retriever
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Add    AddCmd    `cmd:"" help:"Add and index a documentation source"`
	Update UpdateCmd `cmd:"" help:"Re-sync a documentation source against its repository"`
	Remove RemoveCmd `cmd:"" help:"Remove a documentation source and its index"`
	List   ListCmd   `cmd:"" help:"List tracked documentation sources"`
	Search SearchCmd `cmd:"" help:"Semantic search over indexed documentation"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Name    string `arg:"" help:"Documentation name"`
	RepoURL string `arg:"" help:"Git repository URL"`
	Subdir  string `short:"d" help:"Only index markdown under this subdirectory"`
	Branch  string `short:"b" default:"main" help:"Branch to check out"`
}

// UpdateCmd is the "update" subcommand.
type UpdateCmd struct {
	Name    string  `arg:"" help:"Documentation name"`
	RepoURL *string `help:"Change the repository URL"`
	Subdir  *string `help:"Change the subdirectory filter"`
	Branch  *string `help:"Change the branch"`
}

// RemoveCmd is the "remove" subcommand.
type RemoveCmd struct {
	Name string `arg:"" help:"Documentation name"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Prompt string `arg:"" help:"Natural language query"`
	K      int    `short:"k" default:"5" help:"Number of results"`
	Doc    string `short:"n" help:"Restrict search to one documentation by name"`
	JSON   bool   `help:"Emit results as JSON"`
}
