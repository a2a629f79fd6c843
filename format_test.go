// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"encoding/binary"
	"errors"
	"testing"

	lzo "github.com/rasky/go-lzo"
)

// testChunk is one chunk of a synthetic archive. data holds the
// uncompressed content; with compress the chunk is stored through the
// LZO1X compressor, otherwise verbatim. Raw chunks must either be
// exactly maxChunkSize long or exactly complete their file, matching
// how real packs are laid out.
type testChunk struct {
	data     []byte
	compress bool
}

// testFile is one file of a synthetic archive.
type testFile struct {
	path   string
	chunks []testChunk
}

// buildPack assembles a minimal valid pack image from files. It returns
// the image and the offset of each file record, so that tests can patch
// individual record fields.
func buildPack(t *testing.T, files []testFile) (data []byte, recordOffsets []int) {
	t.Helper()

	// encode chunk payloads in global layout order
	var payload []byte
	var chunkSizes []uint32
	firstChunk := make([]int, len(files))
	dataOffsets := make([]uint32, len(files)) // relative, fixed up below
	packedSizes := make([]uint32, len(files))
	for i, f := range files {
		firstChunk[i] = len(chunkSizes)
		dataOffsets[i] = uint32(len(payload))
		for _, c := range f.chunks {
			onDisk := c.data
			if c.compress {
				onDisk = lzo.Compress1X(c.data)
			}
			if len(onDisk) > maxChunkSize {
				t.Fatalf("test chunk of %d bytes exceeds chunk bound", len(onDisk))
			}
			payload = append(payload, onDisk...)
			chunkSizes = append(chunkSizes, uint32(len(onDisk)))
			packedSizes[i] += uint32(len(onDisk))
		}
	}

	// record section size determines where the payload starts
	recordsLen := 0
	for _, f := range files {
		n := 16 + len(f.path) + 1
		if rem := n % 4; rem != 0 {
			n += 4 - rem
		}
		recordsLen += n
	}
	dataStart := 20 + 4*len(files) + 4*len(chunkSizes) + recordsLen

	u32 := func(v uint32) {
		data = binary.LittleEndian.AppendUint32(data, v)
	}

	u32(packMagic)
	u32(packVersion)
	u32(uint32(len(files)))
	u32(uint32(recordsLen))
	u32(uint32(len(chunkSizes)))

	// legacy per-file offset table
	for i := range files {
		u32(uint32(dataStart) + dataOffsets[i])
	}
	for _, s := range chunkSizes {
		u32(s)
	}

	for i, f := range files {
		recordOffsets = append(recordOffsets, len(data))

		total := uint32(0)
		for _, c := range f.chunks {
			total += uint32(len(c.data))
		}

		u32(uint32(dataStart) + dataOffsets[i])
		u32(uint32(firstChunk[i]))
		u32(total)
		u32(packedSizes[i])
		data = append(data, f.path...)
		data = append(data, 0)
		for len(data)%4 != 0 {
			data = append(data, 0xcc) // padding bytes have no defined value
		}
	}

	data = append(data, payload...)
	return data, recordOffsets
}

// repeat returns n copies of b.
func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestParseListsFiles(t *testing.T) {
	files := []testFile{
		{path: "a.txt", chunks: []testChunk{{data: []byte("hello pack")}}},
		{path: "b/c.txt", chunks: []testChunk{
			{data: repeat('x', 5000), compress: true},
			{data: repeat('y', 123)},
		}},
		{path: "d.bin", chunks: []testChunk{{data: repeat(0x7f, 321), compress: true}, {data: []byte{1, 2, 3}}}},
	}
	data, _ := buildPack(t, files)

	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if got := len(a.Files()); got != len(files) {
		t.Fatalf("expected %d files, got %d", len(files), got)
	}

	for i, f := range a.Files() {
		if f.Path() != files[i].path {
			t.Errorf("file %d: expected path %q, got %q", i, files[i].path, f.Path())
		}

		wantSize := uint32(0)
		for _, c := range files[i].chunks {
			wantSize += uint32(len(c.data))
		}
		if f.Size() != wantSize {
			t.Errorf("file %d: expected size %d, got %d", i, wantSize, f.Size())
		}

		if len(f.Chunks()) != len(files[i].chunks) {
			t.Errorf("file %d: expected %d chunks, got %d", i, len(files[i].chunks), len(f.Chunks()))
		}
	}
}

func TestParseChunkSizesMatchOnDiskTotal(t *testing.T) {
	files := []testFile{
		{path: "one", chunks: []testChunk{{data: repeat('a', 4096), compress: true}, {data: repeat('b', 100)}}},
		{path: "two", chunks: []testChunk{{data: repeat('c', 17)}}},
	}
	data, recs := buildPack(t, files)

	a, err := NewArchive("test.pack", data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	for i, f := range a.Files() {
		var sum uint32
		for _, c := range f.Chunks() {
			sum += c.Size()
		}
		// the chunk list must cover the record's on-disk bytes exactly
		want := binary.LittleEndian.Uint32(data[recs[i]+12:])
		if sum != want {
			t.Errorf("%s: chunk sizes sum to %d, record declares %d on-disk bytes", f.Path(), sum, want)
		}
		if len(f.Chunks()) != len(files[i].chunks) {
			t.Errorf("%s: expected %d chunks, got %d", f.Path(), len(files[i].chunks), len(f.Chunks()))
		}
	}
}

func TestParseBadMagic(t *testing.T) {
	data, _ := buildPack(t, []testFile{{path: "a", chunks: []testChunk{{data: []byte("x")}}}})
	data[0] = 'Z'

	_, err := NewArchive("bad.pack", data)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestParseBadVersion(t *testing.T) {
	data, _ := buildPack(t, []testFile{{path: "a", chunks: []testChunk{{data: []byte("x")}}}})
	binary.LittleEndian.PutUint32(data[4:], 0x00040000)

	_, err := NewArchive("bad.pack", data)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestParseTruncated(t *testing.T) {
	data, _ := buildPack(t, []testFile{{path: "a", chunks: []testChunk{{data: []byte("x")}}}})

	for _, cut := range []int{0, 3, 7, 12, 19, len(data) / 2} {
		if _, err := NewArchive("cut.pack", data[:cut]); err == nil {
			t.Errorf("expected error for archive truncated to %d bytes", cut)
		}
	}
}

func TestParseChunkAccumulationMismatch(t *testing.T) {
	data, recs := buildPack(t, []testFile{
		{path: "a", chunks: []testChunk{{data: repeat('a', 100)}}},
	})

	// declare an on-disk size that no prefix of chunk sizes can reach
	binary.LittleEndian.PutUint32(data[recs[0]+12:], 99)

	_, err := NewArchive("bad.pack", data)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestParseChunkIndexOutsideTable(t *testing.T) {
	data, recs := buildPack(t, []testFile{
		{path: "a", chunks: []testChunk{{data: repeat('a', 100)}}},
	})

	// point the record past the end of the chunk table
	binary.LittleEndian.PutUint32(data[recs[0]+4:], 42)

	_, err := NewArchive("bad.pack", data)
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}
