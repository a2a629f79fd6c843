// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

/*
Package pack reads Total War: Medieval II pack archives.

A pack archive bundles many files into one container. Each file's
content is split into chunks of at most 64 KiB that are individually
LZO1X-compressed, or stored raw when compression would not help. The
package decodes the container header and tables into an immutable
[Archive] backed by a memory-mapped byte buffer and extracts files in
parallel:

	a, err := pack.Open("data_0.pack")
	if err != nil {
		// handle error
	}
	defer a.Close()

	for _, f := range a.Files() {
		fmt.Println(f.Path(), f.Size())
	}

	cfg := pack.NewConfig(pack.WithProgressWriter(os.Stdout))
	if err := a.Extract(context.Background(), "out", cfg); err != nil {
		// handle error
	}

Archives are read-only; building or modifying packs is out of scope.
*/
package pack
