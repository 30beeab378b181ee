package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/askdocs/server/internal/chunker"
	"codeberg.org/askdocs/server/internal/logger"
	"github.com/bmatcuk/doublestar/v4"
)

type Options struct {
	// extensions without the dot, e.g. "md", "go"
	Extensions []string
	// glob patterns matched against slash-separated relative dir paths and dir names
	IgnoreDirs []string
}

// walker over a document tree
type Walker struct {
	root    string
	include []string
	ignore  []string
}

func NewWalker(root string, opts Options) *Walker {
	include := make([]string, 0, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
		if ext == "" {
			continue
		}
		include = append(include, "**/*."+ext)
	}

	return &Walker{
		root:    root,
		include: include,
		ignore:  opts.IgnoreDirs,
	}
}

// lists matching files under root, sorted by path
func (w *Walker) Files() ([]string, error) {
	var paths []string

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && w.ignored(rel, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.included(rel) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", w.root, err)
	}

	return paths, nil
}

// reads every matching file. unreadable files are logged and reported,
// the rest are still returned.
func (w *Walker) Documents() ([]chunker.Document, []error) {
	paths, err := w.Files()
	if err != nil {
		return nil, []error{err}
	}

	var docs []chunker.Document
	var errs []error

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("failed to read file",
				"path", path,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}

		docs = append(docs, chunker.Document{
			Path:    path,
			Content: string(content),
		})
	}

	return docs, errs
}

func (w *Walker) included(rel string) bool {
	for _, pattern := range w.include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}

	return false
}

func (w *Walker) ignored(rel, name string) bool {
	for _, pattern := range w.ignore {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}

		if matched, _ := doublestar.Match(pattern, name); matched {
			return true
		}
	}

	return false
}
