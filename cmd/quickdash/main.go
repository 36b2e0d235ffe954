package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quickdash/quickdash/internal/config"
	"github.com/quickdash/quickdash/internal/digest"
	"github.com/quickdash/quickdash/internal/progress"
	"github.com/quickdash/quickdash/internal/verify"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Run flags
	algorithm        = digest.Default
	createMode       bool
	verifyMode       bool
	depth            int
	recursive        bool
	manifestFile     string
	force            bool
	followSymlinks   bool
	noFollowSymlinks bool
	ignored          []string
	jobs             int
	quiet            bool
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		var differ *verify.FilesDifferError
		if !errors.As(err, &differ) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(verify.ExitCode(err))
}

var rootCmd = &cobra.Command{
	Use:   "quickdash [DIRECTORY]",
	Short: "Create and verify hash manifests of directory trees",
	Long: `quickdash hashes every file below DIRECTORY with a selectable algorithm and
either records the result in a manifest file or compares the tree against a
previously written one.

The exit status is 0 when everything matches, 1 for invalid options, 2 when the
manifest was written with a different digest length, 3 when the manifest
cannot be parsed and 3+N when N files were added, removed or changed.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List supported hash algorithms",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, alg := range digest.Algorithms() {
			_, _ = fmt.Fprintf(out, "%-10s %3d\n", alg, alg.HexLen())
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "quickdash %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/quickdash/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Run flags
	flags := rootCmd.Flags()
	flags.VarP(&algorithm, "algorithm", "a", "hash algorithm (see 'quickdash algorithms')")
	flags.BoolVarP(&createMode, "create", "c", false, "create a manifest for DIRECTORY")
	flags.BoolVarP(&verifyMode, "verify", "v", false, "verify DIRECTORY against its manifest (default)")
	flags.IntVarP(&depth, "depth", "d", 0, "max recursion depth, -1 for infinite")
	flags.BoolVarP(&recursive, "recursive", "r", false, "recurse without a depth limit")
	flags.StringVarP(&manifestFile, "file", "f", "", "manifest file (default is DIRECTORY/<name>.hash)")
	flags.BoolVar(&force, "force", false, "overwrite an existing manifest in create mode")
	flags.BoolVar(&followSymlinks, "follow-symlinks", true, "follow symbolic links")
	flags.BoolVar(&noFollowSymlinks, "no-follow-symlinks", false, "do not follow symbolic links")
	flags.StringSliceVarP(&ignored, "ignore", "i", nil, "relative paths to ignore")
	flags.IntVarP(&jobs, "jobs", "j", 0, "files hashed in parallel, 0 for one per CPU")
	flags.BoolVarP(&quiet, "quiet", "q", false, "no progress bar and no lines for matching files")

	rootCmd.MarkFlagsMutuallyExclusive("create", "verify")
	rootCmd.MarkFlagsMutuallyExclusive("depth", "recursive")
	rootCmd.MarkFlagsMutuallyExclusive("follow-symlinks", "no-follow-symlinks")

	// Add commands
	rootCmd.AddCommand(algorithmsCmd)
	rootCmd.AddCommand(versionCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	// Setup logger
	logger := setupLogger()

	// Load configuration
	defaults, err := loadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := buildOptions(cmd, args, defaults)
	if err != nil {
		return err
	}
	if err := opts.Resolve(); err != nil {
		return err
	}

	engine := verify.NewEngine(opts, logger, progress.ForTerminal(os.Stderr, opts.Quiet), cmd.OutOrStdout())
	if err := engine.Run(ctx); err != nil {
		logger.Debug("run finished with error", "error", err)
		return err
	}

	return nil
}

// buildOptions layers explicitly set flags over the config file defaults
func buildOptions(cmd *cobra.Command, args []string, defaults *config.Defaults) (*config.Options, error) {
	opts, err := config.NewOptions(defaults)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if len(args) > 0 {
		opts.Dir = args[0]
	}
	if flags.Changed("algorithm") {
		opts.Algorithm = algorithm
	}
	if createMode {
		opts.Mode = config.ModeCreate
	}
	switch {
	case recursive:
		opts.Depth = -1
	case flags.Changed("depth"):
		opts.Depth = depth
	}
	opts.File = manifestFile
	opts.Force = force
	switch {
	case noFollowSymlinks:
		opts.FollowSymlinks = false
	case flags.Changed("follow-symlinks"):
		opts.FollowSymlinks = followSymlinks
	}
	opts.Ignored = append(opts.Ignored, ignored...)
	if flags.Changed("jobs") {
		opts.Jobs = jobs
	}
	if quiet {
		opts.Quiet = true
	}

	return opts, nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	// Create handler based on format; stdout carries the report
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func loadConfig(logger *slog.Logger) (*config.Defaults, error) {
	// An explicitly named file must exist
	if cfgFile != "" {
		logger.Info("loading configuration", "path", cfgFile)
		return config.Load(cfgFile)
	}

	configPath, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}

	logger.Debug("loading configuration", "path", configPath)

	defaults, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"algorithm", defaults.Algorithm,
		"ignore", defaults.Ignore)

	return defaults, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
