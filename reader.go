// Copyright (c) the go-pack authors
// SPDX-License-Identifier: MPL-2.0

package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// byteReader is a sequential little-endian reader over a byte buffer.
// It only moves its read position; the underlying bytes are never
// modified.
type byteReader struct {
	data []byte
	pos  int
}

// newByteReader creates a byteReader over data with the position at the
// start of the buffer.
func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// u8 reads a single byte and advances the position.
func (r *byteReader) u8() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, fmt.Errorf("read of 1 byte at offset %d exceeds buffer of %d bytes", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// u32 reads a little-endian 32-bit value and advances the position.
func (r *byteReader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("read of 4 bytes at offset %d exceeds buffer of %d bytes", r.pos, len(r.data))
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// cstring reads bytes up to and including a zero terminator and returns
// the bytes before the terminator as a string. The position is advanced
// past the terminator.
func (r *byteReader) cstring() (string, error) {
	i := bytes.IndexByte(r.data[r.pos:], 0)
	if i < 0 {
		return "", fmt.Errorf("unterminated string at offset %d", r.pos)
	}
	s := string(r.data[r.pos : r.pos+i])
	r.pos += i + 1
	return s, nil
}

// align advances the position to the next multiple of boundary. The
// skipped filler bytes are not interpreted.
func (r *byteReader) align(boundary int) {
	if rem := r.pos % boundary; rem != 0 {
		r.pos += boundary - rem
	}
}

// seek repositions the reader to the absolute offset pos.
func (r *byteReader) seek(pos int) {
	r.pos = pos
}

// skip advances the position by n bytes.
func (r *byteReader) skip(n int) {
	r.pos += n
}

// remaining returns the number of unread bytes.
func (r *byteReader) remaining() int {
	if r.pos > len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}
