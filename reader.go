// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import (
	"bytes"
	"encoding/binary"
)

// fits reports whether a region of length size starting at offset lies
// entirely within a slice of length end. All arithmetic is carried out in
// uint64 so that attacker-controlled 32-bit offsets and lengths can never
// wrap the check, and the comparison never mixes signed and unsigned
// operands.
func fits(offset, size uint64, end uint64) bool {
	total := offset + size
	if total < offset {
		// overflowed even in 64 bits; reject.
		return false
	}
	return total <= end
}

// reader is a bounds-checked view into a byte slice. Every method fails
// closed and touches nothing outside data: the bytesAt and read* methods
// return ErrOutOfBounds on an out-of-range access, ncmpEqual reports false,
// and cStringAt stops at the end of the slice.
type reader struct {
	data []byte
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) size() uint64 {
	return uint64(len(r.data))
}

// bytesAt returns a bounds-checked sub-slice. The returned slice aliases
// r.data; callers must not retain it past the backing buffer's lifetime.
func (r *reader) bytesAt(offset, length uint64) ([]byte, error) {
	if !fits(offset, length, r.size()) {
		return nil, ErrOutOfBounds
	}
	return r.data[offset : offset+length], nil
}

// readStruct decodes a fixed-size little-endian structure at offset into v.
func (r *reader) readStruct(offset uint64, v interface{}) error {
	size := uint64(binary.Size(v))
	buf, err := r.bytesAt(offset, size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(buf), binary.LittleEndian, v)
}

func (r *reader) readUint16(offset uint64) (uint16, error) {
	b, err := r.bytesAt(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) readUint32(offset uint64) (uint32, error) {
	b, err := r.bytesAt(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64(offset uint64) (uint64, error) {
	b, err := r.bytesAt(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ncmpEqual reproduces the C strncmp/strncasecmp(a, b, n) == 0 test, where
// a is the n bytes of r.data starting at offset and b is target. It is not
// a string-equality check: when n is smaller than len(target) a match only
// requires the first n bytes to agree, so a value truncated by a short
// buffer can appear equal to a longer target it is merely a prefix of.
// Conversely when n exceeds len(target) a match additionally requires the
// byte right after the prefix to be NUL, the usual C-string terminator.
func (r *reader) ncmpEqual(offset uint64, target string, n uint64, fold bool) bool {
	if !fits(offset, n, r.size()) {
		return false
	}
	tn := uint64(len(target))
	limit := n
	if tn < limit {
		limit = tn
	}
	for i := uint64(0); i < limit; i++ {
		a := r.data[offset+i]
		b := target[i]
		if fold {
			a = asciiLower(a)
			b = asciiLower(b)
		}
		if a != b {
			return false
		}
	}
	if tn < n {
		return r.data[offset+tn] == 0
	}
	return true
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// cStringAt returns the NUL-terminated ASCII string starting at offset,
// bounded by maxLen bytes (not counting the terminator) or the end of the
// buffer, whichever comes first. It never reads past either limit.
func (r *reader) cStringAt(offset uint64, maxLen uint64) (string, error) {
	if offset > r.size() {
		return "", ErrOutOfBounds
	}
	end := offset + maxLen
	if end > r.size() || end < offset {
		end = r.size()
	}
	i := offset
	for i < end && r.data[i] != 0 {
		i++
	}
	return string(r.data[offset:i]), nil
}
