package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/docdex/docdex"
	"github.com/docdex/docdex/gemini"
	"github.com/docdex/docdex/git"
	"github.com/docdex/docdex/ingest"
	"github.com/docdex/docdex/ollama"
	logwrap "github.com/docdex/docdex/slog"
	"github.com/docdex/docdex/sqlite"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Process configuration. Set before calling Run().
	Config docdex.Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	DocumentationService docdex.DocumentationService
	FileService          docdex.FileService
	ChunkService         docdex.ChunkService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	cfg := docdex.DefaultConfig()
	cfg.DBPath = defaultDBPath()
	return &Main{Config: cfg}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docdex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docdex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := m.Config.Validate(); err != nil {
		return err
	}

	level := stdlog.LevelInfo
	if cli.Verbose {
		level = stdlog.LevelDebug
	}
	logger := stdlog.New(stdlog.NewTextHandler(stderr, &stdlog.HandlerOptions{Level: level}))

	// Open database
	m.DB = sqlite.NewDB(m.Config.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOCDEX_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.Config.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	m.DocumentationService = sqlite.NewDocumentationService(m.DB)
	m.FileService = sqlite.NewFileService(m.DB, m.Config.EmbedDimension)
	m.ChunkService = sqlite.NewChunkService(m.DB)
	deps.Config = m.Config
	deps.DB = m.DB
	deps.Documentations = m.DocumentationService
	deps.Files = m.FileService
	deps.Chunks = m.ChunkService

	// Sync and search need an embedding backend; list and remove don't.
	if cmd == "add" || cmd == "update" || cmd == "search" {
		embedder, counter, err := m.buildBackend(ctx)
		if err != nil {
			return err
		}
		embedder = logwrap.NewEmbedder(embedder, logger)

		deps.Retriever = &ingest.Retriever{
			Documentations: m.DocumentationService,
			Chunks:         m.ChunkService,
			Embedder:       embedder,
		}
		deps.Syncer = &ingest.Syncer{
			Documentations: m.DocumentationService,
			Files:          m.FileService,
			Fetcher:        logwrap.NewRepoFetcher(git.NewFetcher(m.Config.CheckoutTimeout), logger),
			Embedder:       embedder,
			Chunker:        docdex.NewChunker(counter, m.Config.TokenLimit),
			Concurrency:    m.Config.Concurrency,
		}
	}

	return kongCtx.Run(deps)
}

// buildBackend selects the embedding backend: Gemini when GEMINI_API_KEY is
// set, otherwise a local Ollama server.
func (m *Main) buildBackend(ctx context.Context) (docdex.Embedder, docdex.TokenCounter, error) {
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		embedder, err := gemini.NewEmbedder(client, geminiEmbedModel, m.Config.EmbedDimension, gemini.Options{
			RetryDelays: m.Config.RetryDelays,
		})
		if err != nil {
			return nil, nil, err
		}
		counter, err := gemini.NewTokenCounter(geminiTokenizerModel)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create token counter: %w", err)
		}
		return embedder, counter, nil
	}

	embedder, err := ollama.NewEmbedder(m.Config.EmbedModel, m.Config.EmbedDimension, ollama.Options{
		BaseURL:           os.Getenv("DOCDEX_OLLAMA_URL"),
		Timeout:           m.Config.EmbedTimeout,
		RetryDelays:       m.Config.RetryDelays,
		RequestsPerSecond: m.Config.EmbedRequestsPerSecond,
	})
	if err != nil {
		return nil, nil, err
	}
	return embedder, ollama.NewTokenCounter(), nil
}

// geminiEmbedModel is used when GEMINI_API_KEY selects the Gemini backend.
const geminiEmbedModel = "gemini-embedding-001"

// geminiTokenizerModel must be a model the local tokenizer supports.
const geminiTokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("DOCDEX_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "docdex.db"
	}
	dir := filepath.Join(home, ".docdex")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "docdex.db")
}
