// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"io"
	"io/fs"
)

// Target specifies all functions that are needed to write extracted
// archive contents to a destination.
type Target interface {
	// CreateFile creates a file at the specified path and returns a
	// writer for its content. If the file already exists and overwrite
	// is false, an error is returned; with overwrite the file is
	// truncated. The mode parameter is the file mode set on creation.
	// The caller must close the returned writer.
	CreateFile(path string, mode fs.FileMode, overwrite bool) (io.WriteCloser, error)

	// CreateDir creates a directory at the specified path with the
	// specified mode, including missing parents. If the directory
	// already exists, nothing is done and no error is returned, so
	// concurrent creation of overlapping parents is safe.
	CreateDir(path string, mode fs.FileMode) error

	// Lstat see docs for os.Lstat.
	Lstat(path string) (fs.FileInfo, error)

	// Stat see docs for os.Stat.
	Stat(path string) (fs.FileInfo, error)
}
