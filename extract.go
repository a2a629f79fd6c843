// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// now is a function pointer that returns time.Now to the caller.
var now = time.Now

// Extract writes every file of the archive that matches the configured
// filter below the destination root dst, preserving the archive's
// relative paths. Files are partitioned statically across the
// configured number of workers: worker k processes the files at indices
// k, k+N, k+2N and so on. The first error aborts the whole run; within
// one file, chunks are always written strictly in archive order.
func (a *Archive) Extract(ctx context.Context, dst string, cfg *Config) error {
	if cfg == nil {
		cfg = NewConfig()
	}

	// prepare telemetry data collection and emit
	td := &TelemetryData{ArchiveName: a.name, InputSize: int64(len(a.data))}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	t := cfg.Target()

	// make sure the destination root exists
	if cfg.CreateDestination() {
		if err := t.CreateDir(dst, cfg.CustomCreateDirMode()); err != nil {
			return countError(td, fmt.Errorf("cannot create destination: %w", err))
		}
	} else if _, err := t.Lstat(dst); err != nil {
		return countError(td, fmt.Errorf("destination does not exist: %w", err))
	}

	workers := cfg.Workers()
	if workers <= 0 {
		workers = runtime.NumCPU() + 1
	}

	cfg.Logger().Info("start extraction", "archive", a.name, "files", len(a.files), "workers", workers)

	progress := &progressSink{w: cfg.ProgressWriter()}
	filter := cfg.Filter()
	files := a.files

	g, ctx := errgroup.WithContext(ctx)
	for k := 0; k < workers; k++ {
		k := k
		g.Go(func() error {
			for i := k; i < len(files); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}

				f := &files[i]
				if filter != nil && !filter.MatchString(f.path) {
					atomic.AddInt64(&td.PatternMismatches, 1)
					continue
				}

				if err := a.extractFile(f, dst, t, cfg, progress, td); err != nil {
					return countError(td, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		td.LastExtractionError = err
		return err
	}
	return nil
}

// extractFile writes one file below dst: it resolves and normalizes the
// output path, makes sure the parent directories exist, streams the
// file's chunks through the decompressor and closes the output. A file
// whose write failed is never counted as extracted.
func (a *Archive) extractFile(f *File, dst string, t Target, cfg *Config, progress *progressSink, td *TelemetryData) error {
	// archive paths use forward slashes, convert to the platform
	parts := strings.Split(f.path, "/")
	outPath := filepath.Join(dst, filepath.Join(parts...))

	// the joined path must stay below the destination root
	if rel, err := filepath.Rel(dst, outPath); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return &FormatError{Name: a.name, Msg: fmt.Sprintf("%s: path escapes the destination root", f.path)}
	}

	progress.line("%s => %s", a.name, outPath)
	cfg.Logger().Debug("extract", "name", f.path)

	if err := t.CreateDir(filepath.Dir(outPath), cfg.CustomCreateDirMode()); err != nil {
		return fmt.Errorf("%s: %s: %w", a.name, f.path, err)
	}

	out, err := t.CreateFile(outPath, cfg.CustomFileMode(), cfg.Overwrite())
	if err != nil {
		return fmt.Errorf("%s: %s: %w", a.name, f.path, err)
	}

	stats, werr := a.writeFile(out, f)
	cerr := out.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return fmt.Errorf("%s: failed to close %s: %w", a.name, outPath, cerr)
	}

	atomic.AddInt64(&td.ExtractedFiles, 1)
	atomic.AddInt64(&td.ExtractionSize, stats.written)
	atomic.AddInt64(&td.ChunksCompressed, stats.compressed)
	atomic.AddInt64(&td.ChunksRaw, stats.raw)
	return nil
}

// progressSink serializes per-file progress lines so that concurrent
// workers never tear a line. A nil writer disables output.
type progressSink struct {
	mu sync.Mutex
	w  io.Writer
}

// line writes one formatted progress line.
func (s *progressSink) line(format string, args ...interface{}) {
	if s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format+"\n", args...)
}

// captureExtractionDuration captures the duration of the extraction.
func captureExtractionDuration(td *TelemetryData, start time.Time) {
	stop := now()
	td.ExtractionDuration = stop.Sub(start)
}

// countError increases the error counter and passes err through.
func countError(td *TelemetryData, err error) error {
	atomic.AddInt64(&td.ExtractionErrors, 1)
	return err
}

var (
	_ Target = (*TargetDisk)(nil)
	_ Target = (*TargetMemory)(nil)
)
