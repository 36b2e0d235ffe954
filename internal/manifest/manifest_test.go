package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinel(t *testing.T) {
	assert.Equal(t, "--------", Sentinel(8))
	assert.Len(t, Sentinel(128), 128)
	assert.True(t, IsSentinel(Sentinel(64)))
	assert.False(t, IsSentinel("AB--"))
	assert.False(t, IsSentinel(""))
}

func TestKeysSorted(t *testing.T) {
	m := Manifest{"b/c": "1", "a": "2", "b": "3", "B": "4"}
	assert.Equal(t, []string{"B", "a", "b", "b/c"}, m.Keys())
}

func TestHexLen(t *testing.T) {
	assert.Equal(t, 0, Manifest{}.HexLen())
	assert.Equal(t, 4, Manifest{"a": "ABCD", "b": "----"}.HexLen())
}

func TestMerge(t *testing.T) {
	m := Manifest{"skip": "----"}
	m.Merge(Manifest{"a": "ABCD"})
	assert.Equal(t, Manifest{"skip": "----", "a": "ABCD"}, m)
}

func TestSelfKey(t *testing.T) {
	root := filepath.FromSlash("/data/tree")

	assert.Equal(t, "tree.hash", SelfKey(root, filepath.FromSlash("/data/tree/tree.hash")))
	assert.Equal(t, "sub/out.hash", SelfKey(root, filepath.FromSlash("/data/tree/sub/out.hash")))
	assert.Equal(t, "tree.hash", SelfKey(root, filepath.FromSlash("/data/tree.hash")))
}

func TestRelativeName(t *testing.T) {
	name, err := RelativeName(filepath.FromSlash("/usr"), filepath.FromSlash("/usr/bin/quickdash"))
	assert.NoError(t, err)
	assert.Equal(t, "bin/quickdash", name)
}
