package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quickdash/quickdash/internal/digest"
	"github.com/quickdash/quickdash/internal/hashing"
	"github.com/quickdash/quickdash/internal/manifest"
)

// Mode selects between writing a manifest and checking against one
type Mode string

const (
	ModeVerify Mode = "verify"
	ModeCreate Mode = "create"
)

// ManifestExt is appended to the directory name to form the default
// manifest file name
const ManifestExt = ".hash"

// Defaults holds the values a config file may preset. Pointer fields
// distinguish "unset" from the zero value.
type Defaults struct {
	Algorithm      string   `yaml:"algorithm"`
	Depth          *int     `yaml:"depth"`
	Jobs           *int     `yaml:"jobs"`
	FollowSymlinks *bool    `yaml:"follow_symlinks"`
	Ignore         []string `yaml:"ignore"`
	Quiet          bool     `yaml:"quiet"`
}

// OptionError reports invalid or conflicting options
type OptionError struct {
	Msg string
}

func (e *OptionError) Error() string {
	return e.Msg
}

func optionErrorf(format string, args ...any) error {
	return &OptionError{Msg: fmt.Sprintf(format, args...)}
}

// Load reads and parses a defaults file
func Load(path string) (*Defaults, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	d.expandEnv()

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &d, nil
}

// LoadOptional behaves like Load but treats a missing file as empty defaults
func LoadOptional(path string) (*Defaults, error) {
	d, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Defaults{}, nil
	}
	return d, err
}

// DefaultPath returns $XDG_CONFIG_HOME/quickdash/config.yaml, falling back
// to ~/.config
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quickdash", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "quickdash", "config.yaml"), nil
}

// expandEnv expands environment variables in all string fields
func (d *Defaults) expandEnv() {
	d.Algorithm = os.ExpandEnv(d.Algorithm)
	for i, p := range d.Ignore {
		d.Ignore[i] = os.ExpandEnv(p)
	}
}

// Validate checks the defaults for errors
func (d *Defaults) Validate() error {
	if d.Algorithm != "" {
		if _, err := digest.Parse(d.Algorithm); err != nil {
			return err
		}
	}
	if d.Jobs != nil && *d.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative: %d", *d.Jobs)
	}
	return nil
}

// Options is the fully resolved configuration of one run
type Options struct {
	Dir            string
	Algorithm      digest.Algorithm
	Mode           Mode
	Depth          int
	File           string
	FollowSymlinks bool
	Ignored        []string
	Jobs           int
	Force          bool
	Quiet          bool
}

// NewOptions returns the built-in defaults overlaid with d
func NewOptions(d *Defaults) (*Options, error) {
	o := &Options{
		Dir:            ".",
		Algorithm:      digest.Default,
		Mode:           ModeVerify,
		Depth:          0,
		FollowSymlinks: true,
	}
	if d == nil {
		return o, nil
	}

	if d.Algorithm != "" {
		alg, err := digest.Parse(d.Algorithm)
		if err != nil {
			return nil, err
		}
		o.Algorithm = alg
	}
	if d.Depth != nil {
		o.Depth = *d.Depth
	}
	if d.Jobs != nil {
		o.Jobs = *d.Jobs
	}
	if d.FollowSymlinks != nil {
		o.FollowSymlinks = *d.FollowSymlinks
	}
	o.Ignored = append(o.Ignored, d.Ignore...)
	o.Quiet = d.Quiet

	return o, nil
}

// Resolve canonicalizes paths and checks the options against the
// filesystem. Every failure is an *OptionError.
func (o *Options) Resolve() error {
	switch o.Mode {
	case ModeVerify, ModeCreate:
	default:
		return optionErrorf("invalid mode: %s", o.Mode)
	}

	if !o.Algorithm.Valid() {
		return optionErrorf("invalid algorithm: %v", o.Algorithm)
	}

	if o.Depth < 0 {
		o.Depth = hashing.Unbounded
	}

	if o.Jobs < 0 {
		return optionErrorf("number of jobs cannot be negative: %d", o.Jobs)
	}

	dir, err := canonical(o.Dir)
	if err != nil {
		return optionErrorf("directory: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return optionErrorf("directory: %v", err)
	}
	if !info.IsDir() {
		return optionErrorf("DIRECTORY cannot be a file: %s", o.Dir)
	}
	o.Dir = dir

	if o.File == "" {
		o.File = filepath.Join(dir, defaultManifestName(dir))
	} else {
		file, err := filepath.Abs(o.File)
		if err != nil {
			return optionErrorf("file: %v", err)
		}
		parent, err := canonical(filepath.Dir(file))
		if err != nil {
			return optionErrorf("file: %v", err)
		}
		o.File = filepath.Join(parent, filepath.Base(file))
	}

	info, err = os.Stat(o.File)
	exists := err == nil
	if exists && info.IsDir() {
		return optionErrorf("file exists and is a directory: %s", o.File)
	}

	switch {
	case o.Mode == ModeCreate && exists && !o.Force:
		return optionErrorf("the output file %s exists and was not overridden to prevent data loss; pass --force to overwrite it", o.File)
	case o.Mode == ModeVerify && !exists:
		return optionErrorf("unable to find hash list file %q; did you mean to create it with -c?", filepath.Base(o.File))
	}

	return nil
}

// ManifestKey is the entry under which the manifest records itself
func (o *Options) ManifestKey() string {
	return manifest.SelfKey(o.Dir, o.File)
}

// defaultManifestName names the manifest after the directory it describes
func defaultManifestName(dir string) string {
	base := filepath.Base(dir)
	if base == string(filepath.Separator) || base == "." || base == filepath.VolumeName(dir)+string(filepath.Separator) {
		base = "root"
	}
	return base + ManifestExt
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
