package compare

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdash/quickdash/internal/manifest"
)

func hex64(c byte) string {
	return strings.Repeat(string(c), 64)
}

func TestCompare_AddedRemovedMatches(t *testing.T) {
	current := manifest.Manifest{"a.txt": hex64('A'), "b.txt": hex64('B')}
	loaded := manifest.Manifest{"a.txt": hex64('A'), "c.txt": hex64('C')}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Equal(t, []Change{
		{Kind: Added, Path: "b.txt"},
		{Kind: Removed, Path: "c.txt"},
	}, changes)
	assert.Equal(t, []Comparison{{Kind: Matches, Path: "a.txt"}}, comparisons)
}

func TestCompare_Differs(t *testing.T) {
	current := manifest.Manifest{"a.txt": hex64('1'), "b.txt": hex64('B')}
	loaded := manifest.Manifest{"a.txt": hex64('0'), "b.txt": hex64('B')}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Empty(t, changes)
	assert.Equal(t, []Comparison{
		{Kind: Differs, Path: "a.txt", Was: hex64('0'), New: hex64('1')},
		{Kind: Matches, Path: "b.txt"},
	}, comparisons)
	assert.Equal(t, 1, Differences(changes, comparisons))
}

func TestCompare_SameManifest(t *testing.T) {
	m := manifest.Manifest{
		"a":         hex64('A'),
		"b":         hex64('B'),
		"skip":      manifest.Sentinel(64),
		"tree.hash": manifest.Sentinel(64),
	}
	clone := manifest.Manifest{}
	clone.Merge(m)

	changes, comparisons, err := Compare("tree.hash", m, clone)
	require.NoError(t, err)

	assert.Equal(t, []Change{{Kind: Ignored, Path: "skip"}}, changes)
	assert.Equal(t, []Comparison{
		{Kind: Matches, Path: "a"},
		{Kind: Matches, Path: "b"},
	}, comparisons)
	assert.Zero(t, Differences(changes, comparisons))
}

func TestCompare_IgnoredInLoadedOnly(t *testing.T) {
	current := manifest.Manifest{"a.txt": hex64('A')}
	loaded := manifest.Manifest{"a.txt": hex64('A'), "skip.txt": manifest.Sentinel(64)}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Equal(t, []Change{{Kind: Ignored, Path: "skip.txt"}}, changes)
	assert.Equal(t, []Comparison{{Kind: Matches, Path: "a.txt"}}, comparisons)
}

func TestCompare_IgnoredInCurrentOnly(t *testing.T) {
	current := manifest.Manifest{"a.txt": hex64('A'), "skip.txt": manifest.Sentinel(64)}
	loaded := manifest.Manifest{"a.txt": hex64('A')}

	changes, _, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)
	assert.Equal(t, []Change{{Kind: Ignored, Path: "skip.txt"}}, changes)
}

func TestCompare_IgnoredOnOneSideHashedOnOther(t *testing.T) {
	current := manifest.Manifest{"x": manifest.Sentinel(64), "y": hex64('Y')}
	loaded := manifest.Manifest{"x": hex64('X'), "y": manifest.Sentinel(64)}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Equal(t, []Change{
		{Kind: Ignored, Path: "x"},
		{Kind: Ignored, Path: "y"},
	}, changes)
	assert.Empty(t, comparisons)
}

func TestCompare_StripsSelfEntry(t *testing.T) {
	current := manifest.Manifest{"a": hex64('A'), "tree.hash": hex64('F')}
	loaded := manifest.Manifest{"a": hex64('A'), "tree.hash": manifest.Sentinel(64)}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Empty(t, changes)
	assert.Equal(t, []Comparison{{Kind: Matches, Path: "a"}}, comparisons)
}

func TestCompare_HashLengthDiffers(t *testing.T) {
	current := manifest.Manifest{"a": strings.Repeat("A", 64)}
	loaded := manifest.Manifest{"a": strings.Repeat("A", 128)}

	_, _, err := Compare("tree.hash", current, loaded)
	require.Error(t, err)

	var lenErr *HashLengthError
	require.True(t, errors.As(err, &lenErr))
	assert.Equal(t, 128, lenErr.Previous)
	assert.Equal(t, 64, lenErr.Current)
}

func TestCompare_EmptyManifests(t *testing.T) {
	t.Run("current empty", func(t *testing.T) {
		loaded := manifest.Manifest{"a": hex64('A'), "skip": manifest.Sentinel(64)}

		changes, comparisons, err := Compare("tree.hash", manifest.Manifest{}, loaded)
		require.NoError(t, err)
		assert.Equal(t, []Change{
			{Kind: Removed, Path: "a"},
			{Kind: Ignored, Path: "skip"},
		}, changes)
		assert.Empty(t, comparisons)
	})

	t.Run("loaded empty", func(t *testing.T) {
		current := manifest.Manifest{"a": strings.Repeat("A", 8)}

		changes, comparisons, err := Compare("tree.hash", current, manifest.Manifest{})
		require.NoError(t, err)
		assert.Equal(t, []Change{{Kind: Added, Path: "a"}}, changes)
		assert.Empty(t, comparisons)
	})

	t.Run("both empty", func(t *testing.T) {
		changes, comparisons, err := Compare("tree.hash", manifest.Manifest{}, manifest.Manifest{})
		require.NoError(t, err)
		assert.Empty(t, changes)
		assert.Empty(t, comparisons)
	})
}

func TestCompare_Ordering(t *testing.T) {
	current := manifest.Manifest{
		"z-new":    hex64('1'),
		"a-new":    hex64('2'),
		"m-skip":   manifest.Sentinel(64),
		"shared":   hex64('3'),
		"b-shared": hex64('4'),
	}
	loaded := manifest.Manifest{
		"y-gone":   hex64('5'),
		"c-gone":   hex64('6'),
		"m-skip":   hex64('7'),
		"shared":   hex64('3'),
		"b-shared": hex64('0'),
	}

	changes, comparisons, err := Compare("tree.hash", current, loaded)
	require.NoError(t, err)

	assert.Equal(t, []Change{
		{Kind: Added, Path: "a-new"},
		{Kind: Added, Path: "z-new"},
		{Kind: Removed, Path: "c-gone"},
		{Kind: Removed, Path: "y-gone"},
		{Kind: Ignored, Path: "m-skip"},
	}, changes)
	assert.Equal(t, []Comparison{
		{Kind: Differs, Path: "b-shared", Was: hex64('0'), New: hex64('4')},
		{Kind: Matches, Path: "shared"},
	}, comparisons)
	assert.Equal(t, 5, Differences(changes, comparisons))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "ignored", Ignored.String())
	assert.Equal(t, "matches", Matches.String())
	assert.Equal(t, "differs", Differs.String())
}
