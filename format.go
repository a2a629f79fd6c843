// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import "fmt"

const (
	// packMagic is the four byte signature "PACK" read as a
	// little-endian 32-bit word.
	packMagic = 0x4b434150

	// packVersion is the only supported format version.
	packVersion = 0x00030000

	// maxChunkSize is the fixed upper bound on a chunk's length. A
	// chunk stored at exactly this length is never compressed.
	maxChunkSize = 64 << 10
)

// parse decodes the archive header, the offset and size tables and the
// file records into a.files. The layout is, in order: magic, version,
// file count, file table size, chunk count, one 32-bit data offset per
// file (legacy table), one 32-bit on-disk size per chunk, then the file
// records. Each record repeats the file's data offset, names its first
// chunk in the global chunk table, declares the uncompressed and
// on-disk totals and carries a zero-terminated path padded to the next
// 4-byte boundary.
func (a *Archive) parse() error {
	r := newByteReader(a.data)

	magic, err := r.u32()
	if err != nil {
		return &FormatError{Name: a.name, Msg: "not a pack file", Err: err}
	}
	if magic != packMagic {
		return &FormatError{Name: a.name, Msg: "not a pack file"}
	}

	version, err := r.u32()
	if err != nil {
		return &FormatError{Name: a.name, Msg: "truncated header", Err: err}
	}
	if version != packVersion {
		return &FormatError{Name: a.name, Msg: fmt.Sprintf("unsupported pack version 0x%x", version)}
	}

	numFiles, err := r.u32()
	if err != nil {
		return &FormatError{Name: a.name, Msg: "truncated header", Err: err}
	}

	// the file table size is informational and not needed for decoding
	if _, err := r.u32(); err != nil {
		return &FormatError{Name: a.name, Msg: "truncated header", Err: err}
	}

	numChunks, err := r.u32()
	if err != nil {
		return &FormatError{Name: a.name, Msg: "truncated header", Err: err}
	}

	// the legacy per-file offset table duplicates the data offset that
	// every file record carries. It is consumed to keep the cursor in
	// step but the per-record value is authoritative.
	if int(numFiles) > r.remaining()/4 {
		return &FormatError{Name: a.name, Msg: "truncated file offset table"}
	}
	r.skip(int(numFiles) * 4)

	if int(numChunks) > r.remaining()/4 {
		return &FormatError{Name: a.name, Msg: "truncated chunk size table"}
	}
	chunkSizes := make([]uint32, numChunks)
	for i := range chunkSizes {
		chunkSizes[i], _ = r.u32()
	}

	files := make([]File, 0, numFiles)
	for i := uint32(0); i < numFiles; i++ {
		dataOffset, err := r.u32()
		if err != nil {
			return &FormatError{Name: a.name, Msg: "truncated file record", Err: err}
		}
		firstChunk, err := r.u32()
		if err != nil {
			return &FormatError{Name: a.name, Msg: "truncated file record", Err: err}
		}
		size, err := r.u32()
		if err != nil {
			return &FormatError{Name: a.name, Msg: "truncated file record", Err: err}
		}
		packedSize, err := r.u32()
		if err != nil {
			return &FormatError{Name: a.name, Msg: "truncated file record", Err: err}
		}
		path, err := r.cstring()
		if err != nil {
			return &FormatError{Name: a.name, Msg: "truncated file record", Err: err}
		}
		r.align(4)

		chunks, err := a.buildChunkList(path, chunkSizes, dataOffset, firstChunk, packedSize)
		if err != nil {
			return err
		}

		files = append(files, File{
			path:   path,
			size:   size,
			chunks: chunks,
		})
	}

	a.files = files
	return nil
}

// buildChunkList reconstructs the chunk views of one file. Starting at
// the file's data offset and first chunk index it takes consecutive
// entries from the global chunk size table until their accumulated
// length reaches the file's on-disk total. An on-disk total that is not
// exactly representable as such a prefix sum marks a corrupt archive.
func (a *Archive) buildChunkList(path string, chunkSizes []uint32, dataOffset, firstChunk, packedSize uint32) ([]Chunk, error) {
	var chunks []Chunk

	offset := dataOffset
	index := firstChunk
	for accumulated := uint32(0); accumulated < packedSize; {
		if index >= uint32(len(chunkSizes)) {
			return nil, &FormatError{Name: a.name, Msg: fmt.Sprintf("%s: chunk index %d outside chunk table", path, index)}
		}
		size := chunkSizes[index]
		if size == 0 {
			return nil, &FormatError{Name: a.name, Msg: fmt.Sprintf("%s: zero-length chunk %d", path, index)}
		}
		if accumulated+size > packedSize {
			return nil, &FormatError{Name: a.name, Msg: fmt.Sprintf("%s: chunk sizes do not add up to on-disk size %d", path, packedSize)}
		}
		if int64(offset)+int64(size) > int64(len(a.data)) {
			return nil, &FormatError{Name: a.name, Msg: fmt.Sprintf("%s: chunk %d extends past end of archive", path, index)}
		}

		chunks = append(chunks, Chunk{offset: offset, size: size})
		accumulated += size
		offset += size
		index++
	}

	return chunks, nil
}
