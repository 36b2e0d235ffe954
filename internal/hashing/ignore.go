package hashing

import (
	"path"
	"path/filepath"
	"strings"
)

// normalize converts an ignore entry to the form manifest keys take:
// forward slashes, no leading "./", no trailing slash
func normalize(p string) string {
	p = filepath.ToSlash(p)
	p = strings.ReplaceAll(p, `\`, "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
