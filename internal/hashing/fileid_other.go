//go:build !unix

package hashing

import "path/filepath"

// fileID falls back to the fully resolved path where inode numbers are not
// exposed
type fileID struct {
	path string
}

// inode is always zero here, which leaves candidates in discovery order
func (id fileID) inode() uint64 {
	return 0
}

func statID(path string) (fileID, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fileID{}, false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return fileID{}, false
	}
	return fileID{path: abs}, true
}
