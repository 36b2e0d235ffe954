package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteTree creates the files in contents below root. Keys are slash
// separated relative paths; parent directories are created as needed.
func WriteTree(t testing.TB, root string, contents map[string]string) {
	t.Helper()

	for rel, data := range contents {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create parent of %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

// Symlink creates link pointing at target, skipping the test where the
// platform or filesystem does not allow it
func Symlink(t testing.TB, target, link string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
}

// NewTree returns a fresh temporary directory populated with contents
func NewTree(t testing.TB, contents map[string]string) string {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, contents)
	return root
}
