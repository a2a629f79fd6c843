// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"bytes"
	"fmt"
	"io"

	lzo "github.com/rasky/go-lzo"
)

// fileStats collects per-file extraction counters that are merged into
// the run's telemetry after the file is written.
type fileStats struct {
	written    int64
	compressed int64
	raw        int64
}

// chunkCompressed reports whether a chunk is stored LZO-compressed. A
// chunk is compressed if its on-disk length is below the fixed chunk
// bound and it does not, by its on-disk length alone, exactly fill the
// remaining space of the file. A final chunk whose on-disk length
// equals the remaining bytes is always stored raw, whatever its size.
func chunkCompressed(c Chunk, written, total uint32) bool {
	return c.size < maxChunkSize && written+c.size != total
}

// writeFile reconstructs the original bytes of f and writes them to w
// in chunk order. Raw chunks are copied verbatim, compressed chunks are
// run through the LZO1X decoder. Any decompression failure is fatal for
// the file and reported as a [CodecError].
func (a *Archive) writeFile(w io.Writer, f *File) (fileStats, error) {
	var stats fileStats

	written := uint32(0)
	for i, chunk := range f.chunks {
		raw := a.chunkBytes(chunk)

		if chunkCompressed(chunk, written, f.size) {
			out, err := lzo.Decompress1X(bytes.NewReader(raw), len(raw), 0)
			if err != nil {
				return stats, &CodecError{Name: a.name, Path: f.path, Chunk: i, Err: err}
			}
			if len(out) > maxChunkSize {
				return stats, &CodecError{
					Name:  a.name,
					Path:  f.path,
					Chunk: i,
					Err:   fmt.Errorf("decompressed chunk of %d bytes exceeds the %d byte chunk bound", len(out), maxChunkSize),
				}
			}
			if _, err := w.Write(out); err != nil {
				return stats, fmt.Errorf("%s: failed to write %s: %w", a.name, f.path, err)
			}
			written += uint32(len(out))
			stats.written += int64(len(out))
			stats.compressed++
			continue
		}

		if _, err := w.Write(raw); err != nil {
			return stats, fmt.Errorf("%s: failed to write %s: %w", a.name, f.path, err)
		}
		written += chunk.size
		stats.written += int64(len(raw))
		stats.raw++
	}

	return stats, nil
}
