package verify

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/quickdash/quickdash/internal/compare"
	"github.com/quickdash/quickdash/internal/config"
	"github.com/quickdash/quickdash/internal/hashing"
	"github.com/quickdash/quickdash/internal/manifest"
	"github.com/quickdash/quickdash/internal/report"
)

// Engine runs one create or verify pass over a directory
type Engine struct {
	opts     *config.Options
	logger   *slog.Logger
	progress hashing.Progress
	out      io.Writer
}

// NewEngine creates a new engine. opts must already be resolved.
func NewEngine(opts *config.Options, logger *slog.Logger, progress hashing.Progress, out io.Writer) *Engine {
	return &Engine{
		opts:     opts,
		logger:   logger,
		progress: progress,
		out:      out,
	}
}

// Run executes the configured mode
func (e *Engine) Run(ctx context.Context) error {
	selfKey := e.opts.ManifestKey()

	e.logger.Info("starting",
		"mode", e.opts.Mode,
		"dir", e.opts.Dir,
		"file", e.opts.File,
		"algorithm", e.opts.Algorithm.String(),
		"depth", e.opts.Depth)

	// Hash the tree, treating the manifest itself as ignored
	current, err := e.hash(ctx, selfKey)
	if err != nil {
		return err
	}

	if e.opts.Mode == config.ModeCreate {
		return e.create(selfKey, current)
	}
	return e.verify(selfKey, current)
}

func (e *Engine) hash(ctx context.Context, selfKey string) (manifest.Manifest, error) {
	ignored := hashing.NewIgnoreSet(e.opts.Ignored)
	ignored[selfKey] = struct{}{}

	p := &hashing.Pipeline{
		Algorithm:      e.opts.Algorithm,
		Depth:          e.opts.Depth,
		FollowSymlinks: e.opts.FollowSymlinks,
		Workers:        e.opts.Jobs,
		Ignored:        ignored,
		Logger:         e.logger,
		Progress:       e.progress,
	}

	current, err := p.Create(ctx, e.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to hash directory: %w", err)
	}
	return current, nil
}

func (e *Engine) create(selfKey string, current manifest.Manifest) error {
	if err := manifest.Write(e.opts.File, selfKey, e.opts.Algorithm.HexLen(), current); err != nil {
		return err
	}
	e.logger.Info("manifest written", "file", e.opts.File, "entries", len(current))
	return nil
}

func (e *Engine) verify(selfKey string, current manifest.Manifest) error {
	loaded, err := manifest.Read(e.opts.File, e.logger)
	if err != nil {
		return err
	}
	e.logger.Debug("manifest loaded", "file", e.opts.File, "entries", len(loaded))

	changes, comparisons, err := compare.Compare(selfKey, current, loaded)
	if err != nil {
		return err
	}

	n, err := report.Write(e.out, changes, comparisons, report.Options{Quiet: e.opts.Quiet})
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	e.logger.Info("verification complete",
		"compared", len(comparisons),
		"differences", n)

	if n > 0 {
		return &FilesDifferError{Count: n}
	}
	return nil
}
