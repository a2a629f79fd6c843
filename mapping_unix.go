// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package pack

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps the file at path read-only into memory and returns the
// mapped bytes together with a function that releases the mapping.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	// mmap rejects empty files, the parser rejects them a step later
	if stat.Size() == 0 {
		return nil, func() error { return nil }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	return data, func() error { return unix.Munmap(data) }, nil
}
