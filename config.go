// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"regexp"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config holds all configuration options for listing and extraction.
// Options are adjusted in option pattern style via [NewConfig].
type Config struct {
	// createDestination decides if the destination root is created when
	// it does not exist
	createDestination bool

	// customCreateDirMode is the file mode for created directories
	// (respecting umask)
	customCreateDirMode fs.FileMode

	// customFileMode is the file mode for extracted files (respecting
	// umask)
	customFileMode fs.FileMode

	// filter restricts listing and extraction to files whose
	// archive-relative path fully matches the expression
	filter *regexp.Regexp

	// logger stream for extraction
	logger logger

	// overwrite decides if existing destination files are truncated
	overwrite bool

	// progressWriter receives one line per extracted file; nil disables
	// progress output
	progressWriter io.Writer

	// target is the filesystem abstraction extraction writes through
	target Target

	// telemetryHook is a function to consume telemetry data after a
	// finished extraction
	telemetryHook TelemetryHook

	// workers is the number of extraction workers; 0 derives a default
	// from the available hardware parallelism
	workers int
}

// CreateDestination returns true if the destination root directory
// should be created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories.
// (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomFileMode returns the file mode for extracted files. (respecting
// umask)
func (c *Config) CustomFileMode() fs.FileMode {
	return c.customFileMode
}

// Filter returns the compiled filter expression, or nil if no filter is
// set.
func (c *Config) Filter() *regexp.Regexp {
	return c.filter
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// Overwrite returns true if existing destination files are truncated.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// ProgressWriter returns the sink for per-file progress lines, or nil
// if progress output is disabled.
func (c *Config) ProgressWriter() io.Writer {
	return c.progressWriter
}

// Target returns the filesystem abstraction extraction writes through.
func (c *Config) Target() Target {
	return c.target
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, td *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

// Workers returns the configured number of extraction workers. Zero
// means a concurrency-derived default.
func (c *Config) Workers() int {
	return c.workers
}

const (
	defaultCreateDestination   = true  // create destination root if missing
	defaultCustomCreateDirMode = 0755  // default directory permissions rwxr-xr-x
	defaultCustomFileMode      = 0644  // default file permissions rw-r--r--
	defaultOverwrite           = true  // truncate existing destination files
	defaultWorkers             = 0     // derive from hardware parallelism
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, td *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		createDestination:   defaultCreateDestination,
		customCreateDirMode: defaultCustomCreateDirMode,
		customFileMode:      defaultCustomFileMode,
		logger:              defaultLogger,
		overwrite:           defaultOverwrite,
		target:              NewTargetDisk(),
		telemetryHook:       defaultTelemetryHook,
		workers:             defaultWorkers,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// CompileFilter compiles pattern into a whole-string matching expression
// for use with [WithFilter]. An invalid pattern is reported as a
// [UsageError].
func CompileFilter(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("invalid filter pattern %q: %v", pattern, err)}
	}
	return re, nil
}

// WithCreateDestination options pattern function to create the
// destination root directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode
// for created directories. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomFileMode options pattern function to set the file mode for
// extracted files. (respecting umask)
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customFileMode = mode
	}
}

// WithFilter options pattern function to restrict listing and
// extraction to files whose archive-relative path fully matches filter.
// Use [CompileFilter] to build a whole-string matching expression from
// a plain pattern.
func WithFilter(filter *regexp.Regexp) ConfigOption {
	return func(c *Config) {
		c.filter = filter
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithOverwrite options pattern function to specify if existing files
// in the destination should be truncated.
func WithOverwrite(enable bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = enable
	}
}

// WithProgressWriter options pattern function to set the sink for
// per-file progress lines. Lines are serialized so that concurrent
// workers never interleave output mid-line.
func WithProgressWriter(w io.Writer) ConfigOption {
	return func(c *Config) {
		c.progressWriter = w
	}
}

// WithTarget options pattern function to set the filesystem abstraction
// extraction writes through.
func WithTarget(t Target) ConfigOption {
	return func(c *Config) {
		c.target = t
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook],
// which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}

// WithWorkers options pattern function to set the number of extraction
// workers. Zero derives the count from the available hardware
// parallelism.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.workers = n
	}
}
