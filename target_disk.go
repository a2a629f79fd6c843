// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// TargetDisk writes extracted contents to the local filesystem.
type TargetDisk struct{}

// NewTargetDisk creates a new TargetDisk.
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates a directory at the specified path with the specified
// mode, including missing parents. An already existing directory is not
// an error.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// CreateFile creates (or, with overwrite, truncates) a file at the
// specified path and returns a writer for its content.
func (d *TargetDisk) CreateFile(path string, mode fs.FileMode, overwrite bool) (io.WriteCloser, error) {
	if !overwrite {
		if _, err := os.Lstat(path); err == nil {
			return nil, fmt.Errorf("file already exists: %s", path)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return f, nil
}

// Lstat returns the FileInfo structure describing the named file.
func (d *TargetDisk) Lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// Stat returns the FileInfo structure describing the named file.
func (d *TargetDisk) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}
