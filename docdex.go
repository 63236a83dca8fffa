// Package docdex maintains a local, versionable corpus of library and
// framework documentation and answers semantic queries against it. Markdown
// files are fetched from git repositories, split into bounded
// context-preserving chunks, embedded, and stored in SQLite for
// nearest-neighbor retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, ollama/, git/).
package docdex
