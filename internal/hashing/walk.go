package hashing

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/quickdash/quickdash/internal/manifest"
)

// ErrSymlinkLoop marks a followed symlink that points back at one of its
// own ancestors
var ErrSymlinkLoop = errors.New("symlink loop detected")

// TraversalError describes a subtree that was skipped during enumeration
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("skipping %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// candidate is a regular file waiting to be hashed
type candidate struct {
	path string
	name string
	ino  uint64
}

// walker enumerates a tree the way the manifest sees it: ignored files
// become sentinel entries, ignored directories are pruned and every other
// regular file becomes a candidate
type walker struct {
	root     string
	maxDepth int // levels below root that are visited, -1 for all
	follow   bool
	ignored  map[string]struct{}
	sentinel string
	logger   *slog.Logger

	skipped    manifest.Manifest
	candidates []candidate
	errs       []*TraversalError
}

func (w *walker) run() {
	var ancestors []fileID
	if id, ok := statID(w.root); ok {
		ancestors = append(ancestors, id)
	}
	w.walkDir(w.root, 0, ancestors)
}

func (w *walker) walkDir(dir string, depth int, ancestors []fileID) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.report(dir, err)
		// ReadDir still returns whatever it read before failing
	}

	childDepth := depth + 1
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		name, err := manifest.RelativeName(w.root, path)
		if err != nil {
			w.report(path, err)
			continue
		}
		_, isIgnored := w.ignored[name]

		mode := entry.Type()
		if mode&fs.ModeSymlink != 0 {
			if !w.follow {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				w.report(path, err)
				continue
			}
			mode = info.Mode().Type()
		}

		switch {
		case mode.IsRegular():
			if isIgnored {
				w.skipped[name] = w.sentinel
				continue
			}
			c := candidate{path: path, name: name}
			if id, ok := statID(path); ok {
				c.ino = id.inode()
			}
			w.candidates = append(w.candidates, c)

		case mode.IsDir():
			if isIgnored {
				w.logger.Debug("pruning ignored directory", "path", name)
				continue
			}
			if w.maxDepth >= 0 && childDepth >= w.maxDepth {
				continue
			}

			next := ancestors
			if id, ok := statID(path); ok {
				if containsID(ancestors, id) {
					w.report(path, ErrSymlinkLoop)
					continue
				}
				next = append(ancestors, id)
			}
			w.walkDir(path, childDepth, next)
		}
	}
}

func (w *walker) report(path string, err error) {
	name, relErr := manifest.RelativeName(w.root, path)
	if relErr != nil {
		name = path
	}
	terr := &TraversalError{Path: name, Err: err}
	w.errs = append(w.errs, terr)
	w.logger.Warn("traversal error", "path", name, "error", err)
}

func containsID(ids []fileID, id fileID) bool {
	for _, a := range ids {
		if a == id {
			return true
		}
	}
	return false
}
