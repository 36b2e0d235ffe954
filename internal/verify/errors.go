package verify

import (
	"errors"
	"fmt"

	"github.com/quickdash/quickdash/internal/compare"
	"github.com/quickdash/quickdash/internal/config"
	"github.com/quickdash/quickdash/internal/digest"
	"github.com/quickdash/quickdash/internal/manifest"
)

// Process exit codes
const (
	ExitOK          = 0
	ExitOptionError = 1
	ExitHashLength  = 2
	ExitParseError  = 3
	exitDifferBase  = 3
	exitCodeCeiling = 255
)

// FilesDifferError reports how many files were added, removed or changed
type FilesDifferError struct {
	Count int
}

func (e *FilesDifferError) Error() string {
	if e.Count == 1 {
		return "1 file differs"
	}
	return fmt.Sprintf("%d files differ", e.Count)
}

// ExitCode maps the result of a run to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		optErr    *config.OptionError
		algErr    *digest.UnknownAlgorithmError
		lenErr    *compare.HashLengthError
		parseErr  *manifest.ParseError
		differErr *FilesDifferError
	)

	switch {
	case errors.As(err, &optErr), errors.As(err, &algErr):
		return ExitOptionError
	case errors.As(err, &lenErr):
		return ExitHashLength
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.As(err, &differErr):
		return min(exitDifferBase+differErr.Count, exitCodeCeiling)
	}
	return ExitOptionError
}
