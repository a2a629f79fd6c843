// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"fmt"
	"path/filepath"
)

// Archive is the parsed, immutable in-memory representation of one pack
// container file. It owns the backing byte buffer; every [File] and
// [Chunk] derived from it holds offsets into that buffer and is only
// valid until [Archive.Close] is called.
type Archive struct {
	// path is the filesystem path the archive was opened from, empty
	// for archives parsed from memory
	path string

	// name identifies the archive in listings, progress lines and errors
	name string

	// data is the raw archive bytes, read-only and shared across workers
	data []byte

	// unmap releases the byte buffer, nil for in-memory archives
	unmap func() error

	// files are the decoded file records in archive order
	files []File
}

// File is one logical entry of an archive: an archive-relative output
// path, the declared uncompressed size and the ordered chunk views that
// reconstruct the file byte for byte.
type File struct {
	path   string
	size   uint32
	chunks []Chunk
}

// Chunk is a non-owning view into the archive's raw bytes describing one
// compressed-or-raw unit of a file's data stream.
type Chunk struct {
	offset uint32
	size   uint32
}

// Open maps the pack file at path into memory and decodes its index.
// The returned archive keeps the mapping alive until Close is called.
func Open(path string) (*Archive, error) {
	data, unmap, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	a := &Archive{
		path:  path,
		name:  filepath.Base(path),
		data:  data,
		unmap: unmap,
	}

	// decode header, tables and file records
	if err := a.parse(); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// NewArchive decodes a pack image that is already held in memory. The
// caller must not modify data for the lifetime of the archive.
func NewArchive(name string, data []byte) (*Archive, error) {
	a := &Archive{
		name: name,
		data: data,
	}
	if err := a.parse(); err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases the backing byte buffer. Files and chunks obtained from
// the archive must not be used afterwards. Close is idempotent.
func (a *Archive) Close() error {
	if a.unmap == nil {
		a.data = nil
		return nil
	}
	unmap := a.unmap
	a.unmap = nil
	a.data = nil
	return unmap()
}

// Path returns the filesystem path the archive was opened from.
func (a *Archive) Path() string {
	return a.path
}

// Name returns the archive name used in listings and progress output.
func (a *Archive) Name() string {
	return a.name
}

// Files returns the decoded file records in archive order.
func (a *Archive) Files() []File {
	return a.files
}

// Path returns the archive-relative path of the file. The path uses
// forward slashes regardless of platform.
func (f *File) Path() string {
	return f.path
}

// Size returns the declared uncompressed size of the file.
func (f *File) Size() uint32 {
	return f.size
}

// Chunks returns the file's chunk descriptors in reconstruction order.
func (f *File) Chunks() []Chunk {
	return f.chunks
}

// Size returns the on-disk (compressed or raw) length of the chunk.
func (c Chunk) Size() uint32 {
	return c.size
}

// chunkBytes returns the chunk's raw on-disk bytes as a view into the
// archive buffer.
func (a *Archive) chunkBytes(c Chunk) []byte {
	return a.data[c.offset : c.offset+c.size]
}
