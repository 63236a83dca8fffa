// Package ingest provides documentation synchronization orchestration.
// It coordinates repository checkout, markdown chunking, embedding, and
// diff-based reconciliation against the corpus store.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/docdex/docdex"
	"golang.org/x/sync/errgroup"
)

// FileStatus describes what a sync did with one file.
type FileStatus string

// FileStatus values.
const (
	StatusAdded   FileStatus = "added"   // new path, ingested
	StatusUpdated FileStatus = "updated" // hash changed, re-ingested
	StatusSkipped FileStatus = "skipped" // hash unchanged, untouched
	StatusRemoved FileStatus = "removed" // gone upstream, deleted
	StatusFailed  FileStatus = "failed"  // ingest error, left untouched
)

// FileReport is the per-file outcome of a sync operation.
type FileReport struct {
	Path   string
	Status FileStatus
	Chunks int
	Err    error
}

// Result holds the outcome of a sync operation, ordered by path.
type Result struct {
	Documentation *docdex.Documentation
	Files         []FileReport
}

// Counts returns the number of files per status.
func (r *Result) Counts() map[FileStatus]int {
	counts := make(map[FileStatus]int)
	for _, f := range r.Files {
		counts[f.Status]++
	}
	return counts
}

// ProgressEvent reports progress during a sync operation.
type ProgressEvent struct {
	Type      ProgressType
	Path      string
	Completed int
	Total     int
	Err       error
}

// ProgressType indicates the type of progress event.
type ProgressType int

// ProgressType values.
const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressSkipped
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting sync progress.
type ProgressFunc func(event ProgressEvent)

// Syncer orchestrates add, update, and remove of documentation sources.
// Files are processed in parallel across a bounded worker pool; the chunk
// sequence within a single file is always produced sequentially, so chunk
// positions are deterministic regardless of scheduling.
//
// Syncer assumes single-writer semantics per documentation: no two sync
// operations run concurrently against the same name.
type Syncer struct {
	Documentations docdex.DocumentationService
	Files          docdex.FileService
	Fetcher        docdex.RepoFetcher
	Embedder       docdex.Embedder
	Chunker        *docdex.Chunker
	Concurrency    int
}

// AddOptions configures Add.
type AddOptions struct {
	Name    string
	RepoURL string
	Subdir  string
	Branch  string
}

// Add registers a new documentation source and ingests every markdown file
// under its checkout. The whole operation is all-or-nothing: any file
// failing aborts the add and rolls the documentation back, so no partially
// indexed documentation is left behind.
func (s *Syncer) Add(ctx context.Context, opts AddOptions, progress ProgressFunc) (*Result, error) {
	if opts.Name == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "documentation name required")
	}

	if _, err := s.Documentations.FindDocumentationByName(ctx, opts.Name); err == nil {
		return nil, docdex.Errorf(docdex.ECONFLICT, "documentation %q already exists", opts.Name)
	} else if docdex.ErrorCode(err) != docdex.ENOTFOUND {
		return nil, err
	}

	dir, cleanup, err := s.Fetcher.Checkout(ctx, opts.RepoURL, opts.Branch, opts.Subdir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	doc := &docdex.Documentation{
		Name:    opts.Name,
		RepoURL: opts.RepoURL,
		Subdir:  opts.Subdir,
		Branch:  opts.Branch,
	}
	if err := s.Documentations.CreateDocumentation(ctx, doc); err != nil {
		return nil, err
	}

	paths, err := MarkdownFiles(dir)
	if err != nil {
		_ = s.Documentations.DeleteDocumentation(ctx, doc.ID)
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "add %s: enumerating files: %v", opts.Name, err)
	}

	notify(progress, ProgressEvent{Type: ProgressStarted, Total: len(paths)})

	result := &Result{Documentation: doc}
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, path := range paths {
		g.Go(func() error {
			ingested, err := s.ingestFile(gctx, doc, dir, path)
			if err != nil {
				// Fatal to the whole add; the error names the file.
				return err
			}

			mu.Lock()
			completed++
			result.Files = append(result.Files, *ingested)
			notify(progress, ProgressEvent{Type: ProgressCompleted, Path: path, Completed: completed, Total: len(paths)})
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Roll back so no orphan documentation with partial files remains.
		// Per-file transactions guarantee each committed file is complete;
		// the cascade removes them all.
		_ = s.Documentations.DeleteDocumentation(ctx, doc.ID)
		return nil, err
	}

	sortReports(result.Files)
	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: len(paths), Total: len(paths)})
	return result, nil
}

// UpdateOptions configures Update. Nil fields leave the stored documentation
// unchanged.
type UpdateOptions struct {
	Name    string
	RepoURL *string
	Subdir  *string
	Branch  *string
}

// Update re-syncs an existing documentation source against its repository.
// Unchanged files (matching content hash) are skipped without re-chunking or
// re-embedding; changed files are deleted and re-ingested; files gone
// upstream are removed. Reconciliation is file-granular: one file's failure
// does not stop the others, but the operation reports an error if any file
// failed. Failed files are left untouched.
func (s *Syncer) Update(ctx context.Context, opts UpdateOptions, progress ProgressFunc) (*Result, error) {
	if opts.Name == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "documentation name required")
	}

	doc, err := s.Documentations.FindDocumentationByName(ctx, opts.Name)
	if err != nil {
		return nil, err
	}

	if opts.RepoURL != nil || opts.Subdir != nil || opts.Branch != nil {
		doc, err = s.Documentations.UpdateDocumentation(ctx, doc.ID, docdex.DocumentationUpdate{
			RepoURL: opts.RepoURL,
			Subdir:  opts.Subdir,
			Branch:  opts.Branch,
		})
		if err != nil {
			return nil, err
		}
	}

	dir, cleanup, err := s.Fetcher.Checkout(ctx, doc.RepoURL, doc.Branch, doc.Subdir)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	existing, err := s.Files.FindFiles(ctx, docdex.FileFilter{DocumentationID: &doc.ID})
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*docdex.File, len(existing))
	for _, f := range existing {
		byPath[f.Path] = f
	}

	paths, err := MarkdownFiles(dir)
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "update %s: enumerating files: %v", opts.Name, err)
	}

	notify(progress, ProgressEvent{Type: ProgressStarted, Total: len(paths)})

	result := &Result{Documentation: doc}
	seen := make(map[string]bool, len(paths))
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for _, path := range paths {
		seen[path] = true
		prior := byPath[path]
		g.Go(func() error {
			report, err := s.reconcileFile(gctx, doc, dir, path, prior)
			if err != nil {
				report = &FileReport{Path: path, Status: StatusFailed, Err: err}
			}

			mu.Lock()
			completed++
			result.Files = append(result.Files, *report)
			event := ProgressEvent{Path: path, Completed: completed, Total: len(paths), Err: report.Err}
			switch report.Status {
			case StatusSkipped:
				event.Type = ProgressSkipped
			case StatusFailed:
				event.Type = ProgressFailed
			default:
				event.Type = ProgressCompleted
			}
			notify(progress, event)
			mu.Unlock()

			// Failures are collected per file, never fatal mid-update.
			return nil
		})
	}
	_ = g.Wait()

	// Files no longer present upstream are deleted, cascading their chunks.
	for _, f := range existing {
		if seen[f.Path] {
			continue
		}
		report := FileReport{Path: f.Path, Status: StatusRemoved}
		if err := s.Files.DeleteFile(ctx, f.ID); err != nil {
			report.Status = StatusFailed
			report.Err = err
		}
		result.Files = append(result.Files, report)
	}

	sortReports(result.Files)
	notify(progress, ProgressEvent{Type: ProgressFinished, Completed: len(paths), Total: len(paths)})

	var failed int
	for _, f := range result.Files {
		if f.Status == StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return result, docdex.Errorf(docdex.EUNAVAILABLE, "update %s: %d file(s) failed", opts.Name, failed)
	}
	return result, nil
}

// Remove deletes a documentation source with all files and chunks.
// Removing a name that does not exist is a no-op.
func (s *Syncer) Remove(ctx context.Context, name string) error {
	doc, err := s.Documentations.FindDocumentationByName(ctx, name)
	if docdex.ErrorCode(err) == docdex.ENOTFOUND {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Documentations.DeleteDocumentation(ctx, doc.ID)
}

// reconcileFile decides what to do with one on-disk file during Update:
// skip when the stored hash matches, otherwise replace or add.
func (s *Syncer) reconcileFile(ctx context.Context, doc *docdex.Documentation, dir, path string, prior *docdex.File) (*FileReport, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "update %s: reading %s: %v", doc.Name, path, err)
	}

	hash := docdex.HashContent(data)
	if prior != nil && prior.Hash == hash {
		return &FileReport{Path: path, Status: StatusSkipped}, nil
	}

	report, err := s.ingestBytes(ctx, doc, path, data, hash, true)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		report.Status = StatusUpdated
	}
	return report, nil
}

// ingestFile reads, chunks, embeds, and persists one file. Used by Add where
// every path is known to be new.
func (s *Syncer) ingestFile(ctx context.Context, doc *docdex.Documentation, dir, path string) (*FileReport, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
	if err != nil {
		return nil, docdex.Errorf(docdex.EUNAVAILABLE, "add %s: reading %s: %v", doc.Name, path, err)
	}
	return s.ingestBytes(ctx, doc, path, data, docdex.HashContent(data), false)
}

// ingestBytes runs the file ingest procedure: chunk, embed, and persist the
// file with its chunk set in one transaction.
func (s *Syncer) ingestBytes(ctx context.Context, doc *docdex.Documentation, path string, data []byte, hash string, replace bool) (*FileReport, error) {
	drafts, err := s.Chunker.Chunk(ctx, string(data), doc.Name, path)
	if err != nil {
		return nil, docdex.Errorf(docdex.ErrorCode(err), "sync %s: chunking %s: %s", doc.Name, path, docdex.ErrorMessage(err))
	}

	chunks := make([]*docdex.Chunk, len(drafts))
	if len(drafts) > 0 {
		inputs := make([]string, len(drafts))
		for i, draft := range drafts {
			inputs[i] = docdex.EmbeddingInput(draft.Metadata, draft.Content)
		}

		vectors, err := s.Embedder.EmbedBatch(ctx, inputs)
		if err != nil {
			return nil, docdex.Errorf(docdex.ErrorCode(err), "sync %s: embedding %s: %s", doc.Name, path, docdex.ErrorMessage(err))
		}

		for i, draft := range drafts {
			chunks[i] = &docdex.Chunk{
				Position:  i,
				Metadata:  draft.Metadata,
				Content:   draft.Content,
				Embedding: vectors[i],
			}
		}
	}

	file := &docdex.File{
		DocumentationID: doc.ID,
		Path:            path,
		Hash:            hash,
	}

	if replace {
		err = s.Files.ReplaceFileWithChunks(ctx, file, chunks)
	} else {
		err = s.Files.CreateFileWithChunks(ctx, file, chunks)
	}
	if err != nil {
		return nil, docdex.Errorf(docdex.ErrorCode(err), "sync %s: storing %s: %s", doc.Name, path, docdex.ErrorMessage(err))
	}

	return &FileReport{Path: path, Status: StatusAdded, Chunks: len(chunks)}, nil
}

func (s *Syncer) concurrency() int {
	if s.Concurrency <= 0 {
		return 8
	}
	return s.Concurrency
}

func notify(progress ProgressFunc, event ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}

func sortReports(reports []FileReport) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Path < reports[j].Path
	})
}
