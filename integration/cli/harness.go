//go:build integration

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const defaultTimeout = 2 * time.Minute

// Harness builds the quickdash binary once and runs it against scratch trees
type Harness struct {
	t      *testing.T
	binary string
}

// NewHarness compiles cmd/quickdash into a temporary directory
func NewHarness(ctx context.Context, t *testing.T) *Harness {
	t.Helper()

	projectRoot, err := findProjectRoot()
	if err != nil {
		t.Fatalf("get project root: %v", err)
	}

	binary := filepath.Join(t.TempDir(), "quickdash")
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}

	t.Logf("Building %s", binary)
	cmd := exec.CommandContext(ctx, "go", "build", "-o", binary, "./cmd/quickdash")
	cmd.Dir = projectRoot
	cmd.Stdout = &testWriter{t: t, prefix: "[build] "}
	cmd.Stderr = &testWriter{t: t, prefix: "[build] "}
	if err := cmd.Run(); err != nil {
		t.Fatalf("go build failed: %v", err)
	}

	return &Harness{t: t, binary: binary}
}

// Run executes quickdash with args and returns its output and exit code.
// The config lookup is pointed at an empty directory so a developer's own
// defaults do not leak in.
func (h *Harness) Run(ctx context.Context, args ...string) (string, string, int) {
	h.t.Helper()

	cmd := exec.CommandContext(ctx, h.binary, args...)
	cmd.Env = append(os.Environ(), "XDG_CONFIG_HOME="+h.t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			h.t.Fatalf("exec failed: %v", err)
		}
	}

	return stdout.String(), stderr.String(), exitCode
}

// MustRun executes quickdash and fails the test if it returns non-zero
func (h *Harness) MustRun(ctx context.Context, args ...string) string {
	h.t.Helper()
	stdout, stderr, exitCode := h.Run(ctx, args...)
	if exitCode != 0 {
		h.t.Fatalf("command failed with exit code %d\nstdout: %s\nstderr: %s\nargs: %v",
			exitCode, stdout, stderr, args)
	}
	return stdout
}

// testWriter wraps test logging for command output
type testWriter struct {
	t      *testing.T
	prefix string
}

func (w *testWriter) Write(p []byte) (n int, err error) {
	lines := strings.Split(string(p), "\n")
	for _, line := range lines {
		if line != "" {
			w.t.Log(w.prefix + line)
		}
	}
	return len(p), nil
}

var _ io.Writer = (*testWriter)(nil)

// findProjectRoot walks up the directory tree from the current file to find go.mod
func findProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get caller information")
	}

	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
