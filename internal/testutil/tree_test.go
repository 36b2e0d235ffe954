package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewTree(t *testing.T) {
	root := NewTree(t, map[string]string{
		"a.txt":         "a",
		"dir/sub/b.txt": "b",
	})

	data, err := os.ReadFile(filepath.Join(root, "dir", "sub", "b.txt"))
	if err != nil {
		t.Fatalf("expected nested file to exist: %v", err)
	}
	if string(data) != "b" {
		t.Errorf("expected content b, got %q", data)
	}
}

func TestSymlink(t *testing.T) {
	root := NewTree(t, map[string]string{"target.txt": "x"})
	link := filepath.Join(root, "links", "link.txt")

	Symlink(t, filepath.Join(root, "target.txt"), link)

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("expected %s to be a symlink", link)
	}
}
