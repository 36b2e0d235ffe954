package compare

import (
	"fmt"

	"github.com/quickdash/quickdash/internal/manifest"
)

// ChangeKind classifies a structural difference between two manifests
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Ignored
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Ignored:
		return "ignored"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is a path present on only one side, or ignored on either side
type Change struct {
	Kind ChangeKind
	Path string
}

// ComparisonKind classifies the content check of a path tracked on both sides
type ComparisonKind int

const (
	Matches ComparisonKind = iota
	Differs
)

func (k ComparisonKind) String() string {
	switch k {
	case Matches:
		return "matches"
	case Differs:
		return "differs"
	}
	return fmt.Sprintf("ComparisonKind(%d)", int(k))
}

// Comparison is the digest check of one shared path. Was and New are only
// set for Differs.
type Comparison struct {
	Kind ComparisonKind
	Path string
	Was  string
	New  string
}

// HashLengthError means the manifests were produced by different algorithms
type HashLengthError struct {
	Previous int
	Current  int
}

func (e *HashLengthError) Error() string {
	return fmt.Sprintf("hash lengths differ: saved manifest has %d characters, current has %d", e.Previous, e.Current)
}

// Compare reconciles the freshly computed current manifest against loaded,
// the one read from disk. selfKey is the manifest file's own entry and is
// excluded from both sides. Both maps are consumed.
//
// Changes list added and removed paths (current order, then loaded order)
// followed by ignored paths. Comparisons follow path order.
func Compare(selfKey string, current, loaded manifest.Manifest) ([]Change, []Comparison, error) {
	currentLen := current.HexLen()
	loadedLen := loaded.HexLen()

	// an empty side carries no length; fall back to the other one
	hexLen := currentLen
	switch {
	case currentLen == 0:
		hexLen = loadedLen
	case loadedLen != 0 && currentLen != loadedLen:
		return nil, nil, &HashLengthError{Previous: loadedLen, Current: currentLen}
	}
	sentinel := manifest.Sentinel(hexLen)

	delete(current, selfKey)
	delete(loaded, selfKey)

	var changes []Change

	// structural added/removed; sentinel entries are left for the ignored pass
	for _, key := range current.Keys() {
		if _, ok := loaded[key]; !ok && current[key] != sentinel {
			changes = append(changes, Change{Kind: Added, Path: key})
			delete(current, key)
		}
	}
	for _, key := range loaded.Keys() {
		if _, ok := current[key]; !ok && loaded[key] != sentinel {
			changes = append(changes, Change{Kind: Removed, Path: key})
			delete(loaded, key)
		}
	}

	// ignored on either side, reported once
	changes = append(changes, dropIgnored(sentinel, current, loaded)...)
	changes = append(changes, dropIgnored(sentinel, loaded, current)...)

	if err := sameKeys(current, loaded); err != nil {
		panic(err)
	}

	comparisons := make([]Comparison, 0, len(loaded))
	for _, key := range loaded.Keys() {
		was, now := loaded[key], current[key]
		if was == now {
			comparisons = append(comparisons, Comparison{Kind: Matches, Path: key})
		} else {
			comparisons = append(comparisons, Comparison{Kind: Differs, Path: key, Was: was, New: now})
		}
	}

	return changes, comparisons, nil
}

// dropIgnored removes every key of side whose value is the sentinel from
// both maps
func dropIgnored(sentinel string, side, other manifest.Manifest) []Change {
	var changes []Change
	for _, key := range side.Keys() {
		if side[key] == sentinel {
			changes = append(changes, Change{Kind: Ignored, Path: key})
			delete(side, key)
			delete(other, key)
		}
	}
	return changes
}

func sameKeys(a, b manifest.Manifest) error {
	if len(a) != len(b) {
		return fmt.Errorf("compare: key sets diverged (%d vs %d entries)", len(a), len(b))
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			return fmt.Errorf("compare: key %q missing from saved manifest", key)
		}
	}
	return nil
}

// Differences counts the entries that make a verification fail: added,
// removed and differing paths
func Differences(changes []Change, comparisons []Comparison) int {
	n := 0
	for _, c := range changes {
		if c.Kind != Ignored {
			n++
		}
	}
	for _, c := range comparisons {
		if c.Kind == Differs {
			n++
		}
	}
	return n
}
