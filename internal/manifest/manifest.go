package manifest

import (
	"path/filepath"
	"sort"
	"strings"
)

// Manifest maps slash-separated paths relative to the hashed root to their
// uppercase hex digest
type Manifest map[string]string

// Sentinel returns the placeholder digest recorded for ignored paths. It has
// the same width as a real digest so every value in a manifest shares one
// length.
func Sentinel(hexLen int) string {
	return strings.Repeat("-", hexLen)
}

// IsSentinel reports whether value is the ignored placeholder
func IsSentinel(value string) bool {
	return value != "" && strings.Trim(value, "-") == ""
}

// Keys returns the manifest paths in lexicographic order
func (m Manifest) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HexLen returns the digest length of the first entry in path order, or 0
// for an empty manifest
func (m Manifest) HexLen() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[m.Keys()[0]])
}

// SetSelf records the manifest's own file under key as ignored
func (m Manifest) SetSelf(key string, hexLen int) {
	m[key] = Sentinel(hexLen)
}

// Merge copies every entry of other into m
func (m Manifest) Merge(other Manifest) {
	for k, v := range other {
		m[k] = v
	}
}

// RelativeName returns target relative to root with forward slashes
func RelativeName(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/"), nil
}

// SelfKey returns the key a manifest written to path uses for itself. Inside
// root it is the relative path, otherwise the file's base name.
func SelfKey(root, path string) string {
	rel, err := RelativeName(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return filepath.Base(path)
	}
	return rel
}
