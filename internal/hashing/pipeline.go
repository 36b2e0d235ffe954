package hashing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quickdash/quickdash/internal/digest"
	"github.com/quickdash/quickdash/internal/manifest"
)

// Unbounded disables the recursion depth limit
const Unbounded = -1

// MaxWorkers caps the hashing pool size
const MaxWorkers = 255

// Progress receives hashing progress. All calls come from a single
// goroutine.
type Progress interface {
	Start(total int)
	Advance(path string)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)      {}
func (nopProgress) Advance(string) {}
func (nopProgress) Finish()        {}

// Pipeline hashes a directory tree into a manifest
type Pipeline struct {
	Algorithm digest.Algorithm
	// Depth limits recursion: 0 visits only the root's immediate children,
	// Unbounded visits everything
	Depth          int
	FollowSymlinks bool
	// Workers is the number of files hashed concurrently; see ResolveWorkers
	Workers int
	// Ignored holds slash-separated paths relative to the root
	Ignored  map[string]struct{}
	Logger   *slog.Logger
	Progress Progress
}

// ResolveWorkers turns a configured worker count into a pool size: zero or
// less means one worker per logical CPU and anything above MaxWorkers is
// capped
func ResolveWorkers(n int) int {
	switch {
	case n <= 0:
		return runtime.NumCPU()
	case n > MaxWorkers:
		return MaxWorkers
	}
	return n
}

// NewIgnoreSet normalizes paths into the set form Pipeline expects
func NewIgnoreSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		set[normalize(p)] = struct{}{}
	}
	return set
}

// Create enumerates root and hashes every reachable, non-ignored regular
// file. Traversal problems are logged and the affected subtree skipped; a
// file that cannot be read fails the whole run.
func (p *Pipeline) Create(ctx context.Context, root string) (manifest.Manifest, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	progress := p.Progress
	if progress == nil {
		progress = nopProgress{}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	maxDepth := Unbounded
	if p.Depth >= 0 {
		maxDepth = p.Depth + 1
	}

	w := &walker{
		root:     root,
		maxDepth: maxDepth,
		follow:   p.FollowSymlinks,
		ignored:  p.Ignored,
		sentinel: manifest.Sentinel(p.Algorithm.HexLen()),
		logger:   logger,
		skipped:  make(manifest.Manifest),
	}

	start := time.Now()
	w.run()
	logger.Info("discovered files",
		"candidates", len(w.candidates),
		"ignored", len(w.skipped),
		"errors", len(w.errs))

	optimizeOrder(w.candidates)

	workers := ResolveWorkers(p.Workers)
	hashed, err := hashAll(ctx, p.Algorithm, workers, w.candidates, progress)
	if err != nil {
		return nil, err
	}

	result := w.skipped
	result.Merge(hashed)

	logger.Info("hashing complete",
		"files", len(hashed),
		"workers", workers,
		"algorithm", p.Algorithm.String(),
		"duration", time.Since(start))

	return result, nil
}

// optimizeOrder sorts candidates by inode so rotational disks read them in
// roughly on-disk order. It only affects scheduling.
func optimizeOrder(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ino < candidates[j].ino
	})
}

type hashResult struct {
	name string
	sum  string
}

// hashAll runs a fixed pool of workers over candidates. Results are merged
// by the calling goroutine only.
func hashAll(ctx context.Context, alg digest.Algorithm, workers int, candidates []candidate, progress Progress) (manifest.Manifest, error) {
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan candidate)
	results := make(chan hashResult, workers)

	g.Go(func() error {
		defer close(jobs)
		for _, c := range candidates {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for c := range jobs {
				sum, err := digest.File(alg, c.path)
				if err != nil {
					return fmt.Errorf("failed to hash %s: %w", c.name, err)
				}
				select {
				case results <- hashResult{name: c.name, sum: sum}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(results)
	}()

	hashed := make(manifest.Manifest, len(candidates))
	progress.Start(len(candidates))
	for r := range results {
		hashed[r.name] = r.sum
		progress.Advance(r.name)
	}
	progress.Finish()

	if err := <-done; err != nil {
		return nil, err
	}
	return hashed, nil
}
