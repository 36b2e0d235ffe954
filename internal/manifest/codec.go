package manifest

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// digest, two or more blanks, path
	digestFirst = regexp.MustCompile(`^([[:xdigit:]-]+)\s{2,}(.+?)$`)
	// path, blanks, digest
	pathFirst = regexp.MustCompile(`^(.+?)\t*\s+([[:xdigit:]-]+)$`)
)

// ParseError lists every line of a manifest that matched neither layout
type ParseError struct {
	Name  string
	Lines []int
}

func (e *ParseError) Error() string {
	lines := make([]string, len(e.Lines))
	for i, n := range e.Lines {
		lines[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("failed to parse %s: malformed line(s) %s", e.Name, strings.Join(lines, ", "))
}

// Encode writes one "DIGEST  PATH" line per entry in path order
func Encode(w io.Writer, m Manifest) error {
	bw := bufio.NewWriter(w)
	for _, key := range m.Keys() {
		if _, err := fmt.Fprintf(bw, "%s  %s\n", m[key], key); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Write serializes m to path after recording the manifest's own entry under
// key. The file is written to a temporary sibling and renamed into place.
func Write(path, key string, hexLen int, m Manifest) error {
	m.SetSelf(key, hexLen)

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".quickdash-tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // cleanup on error

	if err := Encode(tmpFile, m); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	if err := tmpFile.Chmod(0644); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}

	return nil
}

// Decode parses manifest lines from r. Lines that match neither layout are
// reported to diag and parsing continues; if any line failed the returned
// error is a *ParseError naming all of them. name labels diagnostics.
func Decode(r io.Reader, name string, diag *slog.Logger) (Manifest, error) {
	m := make(Manifest)
	var failed []int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		path, sum, ok := parseLine(line)
		if !ok {
			failed = append(failed, lineNo)
			if diag != nil {
				diag.Error(fmt.Sprintf("%s:%d: line doesn't match accepted pattern", name, lineNo))
			}
			continue
		}
		m[path] = sum
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if len(failed) > 0 {
		return nil, &ParseError{Name: name, Lines: failed}
	}
	return m, nil
}

// Read loads the manifest stored at path
func Read(path string, diag *slog.Logger) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return Decode(f, filepath.Base(path), diag)
}

func parseLine(line string) (path, sum string, ok bool) {
	if line == "" {
		return "", "", false
	}
	if m := digestFirst.FindStringSubmatch(line); m != nil {
		return m[2], strings.ToUpper(m[1]), true
	}
	if m := pathFirst.FindStringSubmatch(line); m != nil {
		return m[1], strings.ToUpper(m[2]), true
	}
	return "", "", false
}
