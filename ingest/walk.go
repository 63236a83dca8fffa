package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// MarkdownFiles returns the relative slash-separated paths of all markdown
// files under dir, recursively, in lexicographic order. Dotted directories
// (.git and friends) are skipped. The walk is a pure function of the
// directory contents, so independent passes over the same checkout see the
// same sequence.
func MarkdownFiles(dir string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}
