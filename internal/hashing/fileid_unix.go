//go:build unix

package hashing

import "golang.org/x/sys/unix"

// fileID identifies a file independently of the path used to reach it
type fileID struct {
	dev uint64
	ino uint64
}

func (id fileID) inode() uint64 {
	return id.ino
}

// statID follows symlinks, so a linked directory resolves to its target
func statID(path string) (fileID, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileID{}, false
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
