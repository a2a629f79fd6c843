// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package pack

import "os"

// mapFile reads the file at path into memory on platforms without mmap
// support. The returned release function is a no-op.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
