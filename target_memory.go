// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// TargetMemory is an in-memory [Target] implementation. It stores every
// created file and directory in a map keyed by path and is safe for
// concurrent use. Its main purpose is testing extraction without
// touching the local filesystem.
type TargetMemory struct {
	entries sync.Map // map[string]*memoryEntry
}

// memoryEntry is one file or directory in a TargetMemory.
type memoryEntry struct {
	info memoryFileInfo
	data []byte
}

// NewTargetMemory creates a new in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// CreateDir records a directory entry for path and all its parents. An
// already existing directory is not an error.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	path = filepath.ToSlash(filepath.Clean(path))
	for dir := path; dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if entry, ok := m.entries.Load(dir); ok {
			if !entry.(*memoryEntry).info.IsDir() {
				return fmt.Errorf("path exists and is not a directory: %s", dir)
			}
			continue
		}
		m.entries.Store(dir, &memoryEntry{
			info: memoryFileInfo{
				name:    filepath.Base(dir),
				mode:    mode.Perm() | fs.ModeDir,
				modTime: time.Now(),
			},
		})
	}
	return nil
}

// CreateFile returns a writer whose content is stored under path when
// it is closed.
func (m *TargetMemory) CreateFile(path string, mode fs.FileMode, overwrite bool) (io.WriteCloser, error) {
	path = filepath.ToSlash(filepath.Clean(path))
	if !overwrite {
		if _, ok := m.entries.Load(path); ok {
			return nil, fmt.Errorf("file already exists: %s", path)
		}
	}
	return &memoryFile{target: m, path: path, mode: mode}, nil
}

// Lstat returns the FileInfo for the named entry.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	path = filepath.ToSlash(filepath.Clean(path))
	entry, ok := m.entries.Load(path)
	if !ok {
		return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
	}
	return &entry.(*memoryEntry).info, nil
}

// Stat returns the FileInfo for the named entry. TargetMemory stores no
// symlinks, so Stat and Lstat are equivalent.
func (m *TargetMemory) Stat(path string) (fs.FileInfo, error) {
	return m.Lstat(path)
}

// Bytes returns the stored content of the named file.
func (m *TargetMemory) Bytes(path string) ([]byte, bool) {
	path = filepath.ToSlash(filepath.Clean(path))
	entry, ok := m.entries.Load(path)
	if !ok || entry.(*memoryEntry).info.IsDir() {
		return nil, false
	}
	return entry.(*memoryEntry).data, true
}

// Paths returns the sorted paths of all stored files, directories
// excluded.
func (m *TargetMemory) Paths() []string {
	var paths []string
	m.entries.Range(func(key, value any) bool {
		if !value.(*memoryEntry).info.IsDir() {
			paths = append(paths, key.(string))
		}
		return true
	})
	sort.Strings(paths)
	return paths
}

// memoryFile buffers writes until Close stores the entry in the target.
type memoryFile struct {
	target *TargetMemory
	path   string
	mode   fs.FileMode
	buf    bytes.Buffer
	closed bool
}

// Write implements io.Writer.
func (f *memoryFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, fs.ErrClosed
	}
	return f.buf.Write(p)
}

// Close stores the buffered content in the target.
func (f *memoryFile) Close() error {
	if f.closed {
		return fs.ErrClosed
	}
	f.closed = true
	f.target.entries.Store(f.path, &memoryEntry{
		info: memoryFileInfo{
			name:    filepath.Base(f.path),
			size:    int64(f.buf.Len()),
			mode:    f.mode.Perm(),
			modTime: time.Now(),
		},
		data: f.buf.Bytes(),
	})
	return nil
}

// memoryFileInfo implements fs.FileInfo for in-memory entries.
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

func (fi *memoryFileInfo) Name() string       { return fi.name }
func (fi *memoryFileInfo) Size() int64        { return fi.size }
func (fi *memoryFileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi *memoryFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memoryFileInfo) IsDir() bool        { return fi.mode&fs.ModeDir != 0 }
func (fi *memoryFileInfo) Sys() any           { return nil }
