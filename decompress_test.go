// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"bytes"
	"errors"
	"testing"
)

func TestChunkCompressed(t *testing.T) {
	cases := []struct {
		name    string
		size    uint32
		written uint32
		total   uint32
		want    bool
	}{
		{name: "full chunk is raw", size: maxChunkSize, written: 0, total: 200000, want: false},
		{name: "small mid-file chunk is compressed", size: 1000, written: 0, total: 200000, want: true},
		{name: "exactly completing chunk is raw", size: 10, written: 90, total: 100, want: false},
		{name: "nearly completing chunk is compressed", size: 10, written: 89, total: 100, want: true},
		{name: "single raw chunk file", size: 100, written: 0, total: 100, want: false},
		{name: "single compressed chunk file", size: 99, written: 0, total: 100, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Chunk{size: tc.size}
			if got := chunkCompressed(c, tc.written, tc.total); got != tc.want {
				t.Errorf("chunkCompressed(size=%d, written=%d, total=%d): expected %v, got %v",
					tc.size, tc.written, tc.total, got, tc.want)
			}
		})
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	chunks := []testChunk{
		{data: bytes.Repeat([]byte("lorem ipsum "), 400), compress: true},
		{data: bytes.Repeat([]byte{0x42}, 2048), compress: true},
		{data: []byte("trailing raw bytes.")},
	}
	var want []byte
	for _, c := range chunks {
		want = append(want, c.data...)
	}

	data, _ := buildPack(t, []testFile{{path: "doc/readme.txt", chunks: chunks}})
	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var buf bytes.Buffer
	f := &a.Files()[0]
	stats, err := a.writeFile(&buf, f)
	if err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}

	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("reconstructed bytes differ: expected %d bytes, got %d", len(want), buf.Len())
	}
	if stats.written != int64(len(want)) {
		t.Errorf("expected %d written bytes, got %d", len(want), stats.written)
	}
	if stats.compressed != 2 || stats.raw != 1 {
		t.Errorf("expected 2 compressed and 1 raw chunk, got %d/%d", stats.compressed, stats.raw)
	}
	if uint32(buf.Len()) != f.Size() {
		t.Errorf("declared size %d does not match reconstructed %d", f.Size(), buf.Len())
	}
}

// A final chunk whose on-disk length exactly equals the remaining bytes
// must be copied raw, even if it looks compressible and is well below
// the chunk bound.
func TestWriteFileExactFinalChunkIsRaw(t *testing.T) {
	chunks := []testChunk{
		{data: bytes.Repeat([]byte{'a'}, 90), compress: true},
		{data: bytes.Repeat([]byte{'a'}, 10)}, // raw, exactly completes the file
	}

	data, _ := buildPack(t, []testFile{{path: "boundary.bin", chunks: chunks}})
	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var buf bytes.Buffer
	stats, err := a.writeFile(&buf, &a.Files()[0])
	if err != nil {
		t.Fatalf("writeFile failed: %v", err)
	}

	if stats.raw != 1 {
		t.Fatalf("expected the final chunk to be treated as raw, got %d raw chunks", stats.raw)
	}
	if !bytes.Equal(buf.Bytes(), bytes.Repeat([]byte{'a'}, 100)) {
		t.Fatal("reconstructed bytes differ")
	}
}

// A compressed chunk must never inflate past the fixed chunk bound; a
// stream that does marks a corrupt archive and must not be written.
func TestWriteFileOversizeChunk(t *testing.T) {
	data, _ := buildPack(t, []testFile{{path: "huge.bin", chunks: []testChunk{
		{data: bytes.Repeat([]byte{'h'}, 100000), compress: true},
	}}})
	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var buf bytes.Buffer
	_, err = a.writeFile(&buf, &a.Files()[0])

	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CodecError for oversize chunk, got %v", err)
	}
	if buf.Len() > maxChunkSize {
		t.Errorf("oversize chunk was written: %d bytes", buf.Len())
	}
}

func TestWriteFileCorruptChunk(t *testing.T) {
	data, _ := buildPack(t, []testFile{{path: "broken.bin", chunks: []testChunk{{data: bytes.Repeat([]byte{'z'}, 100), compress: true}}}})
	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// garble the compressed payload
	f := &a.Files()[0]
	c := f.Chunks()[0]
	for i := c.offset; i < c.offset+c.size; i++ {
		a.data[i] = 0xff
	}

	var buf bytes.Buffer
	_, err = a.writeFile(&buf, f)

	var ce *CodecError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CodecError, got %v", err)
	}
	if ce.Path != "broken.bin" {
		t.Errorf("expected error to name broken.bin, got %q", ce.Path)
	}
}
