// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"

	pack "github.com/m2tools/go-pack"
)

// CLI are the cli parameters for the gopack binary
type CLI struct {
	Extract   ExtractCmd       `cmd:"" help:"Extract files from pack archives."`
	List      ListCmd          `cmd:"" help:"List files in pack archives."`
	Telemetry bool             `short:"M" optional:"" default:"false" help:"Print telemetry to log after extraction."`
	Verbose   bool             `short:"v" optional:"" help:"Verbose logging."`
	Version   kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// ListCmd lists the contents of one or more pack archives.
type ListCmd struct {
	Filter string   `optional:"" help:"Regex for files to list (matched against the whole archive-relative path)."`
	Long   bool     `short:"l" optional:"" help:"Show uncompressed file sizes."`
	Packs  []string `arg:"" name:"pack" help:"Pack files to list." type:"existingfile"`
}

// ExtractCmd extracts the contents of one or more pack archives.
type ExtractCmd struct {
	Dest     string   `optional:"" default:"." help:"Output directory, created if missing." type:"path"`
	Filter   string   `optional:"" help:"Regex for files to extract (matched against the whole archive-relative path)."`
	Parallel int      `optional:"" help:"Number of extraction workers. Defaults to the number of CPUs plus one."`
	Packs    []string `arg:"" name:"pack" help:"Pack files to extract." type:"existingfile"`
}

// env carries the process-wide state into the subcommand Run methods.
type env struct {
	logger    *slog.Logger
	telemetry bool
}

// Run lists matching files of every archive, one `<archive>: <path>`
// line per file.
func (c *ListCmd) Run(e *env) error {
	cfg, err := commonConfig(e, c.Filter)
	if err != nil {
		return err
	}

	for _, path := range c.Packs {
		a, err := pack.Open(path)
		if err != nil {
			return err
		}

		for _, f := range a.Files() {
			if cfg.Filter() != nil && !cfg.Filter().MatchString(f.Path()) {
				continue
			}
			if c.Long {
				fmt.Printf("%s: %8s  %s\n", a.Name(), humanize.Bytes(uint64(f.Size())), f.Path())
			} else {
				fmt.Printf("%s: %s\n", a.Name(), f.Path())
			}
		}

		a.Close()
	}

	return nil
}

// Run extracts matching files of every archive below the destination
// root. Archives are processed strictly sequentially, files within one
// archive in parallel.
func (c *ExtractCmd) Run(e *env) error {
	ctx := context.Background()

	cfg, err := commonConfig(e, c.Filter,
		pack.WithProgressWriter(os.Stdout),
		pack.WithWorkers(c.Parallel),
	)
	if err != nil {
		return err
	}

	for _, path := range c.Packs {
		a, err := pack.Open(path)
		if err != nil {
			return err
		}

		err = a.Extract(ctx, c.Dest, cfg)
		a.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// commonConfig builds the library configuration shared by the
// subcommands.
func commonConfig(e *env, filter string, opts ...pack.ConfigOption) (*pack.Config, error) {
	if filter != "" {
		re, err := pack.CompileFilter(filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pack.WithFilter(re))
	}

	opts = append(opts, pack.WithLogger(e.logger))

	if e.telemetry {
		opts = append(opts, pack.WithTelemetryHook(func(ctx context.Context, td *pack.TelemetryData) {
			e.logger.Info("extraction finished", "telemetry", td)
		}))
	}

	return pack.NewConfig(opts...), nil
}

// Run is the entrypoint into gopack as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("gopack"),
		kong.Description("Total War: Medieval II pack archive tool"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	// check for verbose output
	logLevel := slog.LevelWarn
	if cli.Verbose {
		logLevel = slog.LevelDebug
	}

	// setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := kctx.Run(&env{logger: logger, telemetry: cli.Telemetry}); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
