// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import "fmt"

// FormatError reports a structural problem with a pack archive, such as
// a wrong magic number, an unsupported format version or a table entry
// that contradicts the rest of the archive.
type FormatError struct {
	// Name is the name of the offending archive
	Name string

	// Msg describes the problem
	Msg string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Name, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Msg)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// CodecError reports a failed chunk decompression. It names the archive,
// the file inside the archive and the index of the chunk that could not
// be decompressed.
type CodecError struct {
	// Name is the name of the offending archive
	Name string

	// Path is the archive-relative path of the file
	Path string

	// Chunk is the index of the chunk within the file
	Chunk int

	// Err is the underlying decompression error
	Err error
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	return fmt.Sprintf("%s: %s: failed to decompress chunk #%d: %v", e.Name, e.Path, e.Chunk, e.Err)
}

// Unwrap returns the underlying error.
func (e *CodecError) Unwrap() error {
	return e.Err
}

// UsageError reports invalid caller input, such as a filter pattern that
// is not a valid regular expression.
type UsageError struct {
	// Msg describes the problem
	Msg string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.Msg
}
