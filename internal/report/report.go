package report

import (
	"fmt"
	"io"

	"github.com/quickdash/quickdash/internal/compare"
)

// Options tune the rendered output
type Options struct {
	// Quiet omits lines for files that match
	Quiet bool
}

// Write renders the outcome of a verification to out and returns the number
// of differences found (added, removed and differing files)
func Write(out io.Writer, changes []compare.Change, comparisons []compare.Comparison, opts Options) (int, error) {
	for _, c := range changes {
		if _, err := fmt.Fprintf(out, "File %s: %q\n", c.Kind, c.Path); err != nil {
			return 0, err
		}
	}

	if len(changes) > 0 && len(comparisons) > 0 {
		if _, err := fmt.Fprintln(out); err != nil {
			return 0, err
		}
	}

	for _, c := range comparisons {
		var err error
		switch c.Kind {
		case compare.Matches:
			if opts.Quiet {
				continue
			}
			_, err = fmt.Fprintf(out, "File %q matches\n", c.Path)
		case compare.Differs:
			_, err = fmt.Fprintf(out, "File %q doesn't match\n  Was: %s\n  Is : %s\n", c.Path, c.Was, c.New)
		}
		if err != nil {
			return 0, err
		}
	}

	return compare.Differences(changes, comparisons), nil
}
