// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// The DOS stub (IMAGE_DOS_HEADER) is 64 bytes; the header decoder only
// consults the magic at offset 0 and e_lfanew at offset 0x3c, so the full
// structure is never unpacked.
const dosHeaderSize = 64
const dosElfanewOffset = 0x3c

// parseDOSHeader validates the DOS stub at the start of data and returns
// e_lfanew, the offset of the NT headers relative to peOffset.
func parseDOSHeader(r *reader, peOffset uint64) (elfanew uint32, err error) {
	if !fits(peOffset, dosHeaderSize, r.size()) {
		return 0, ErrTooSmall
	}

	magic, err := r.readUint16(peOffset)
	if err != nil {
		return 0, ErrTooSmall
	}
	if magic != imageDOSSignature {
		return 0, ErrDOSMagicNotFound
	}

	raw, err := r.readUint32(peOffset + dosElfanewOffset)
	if err != nil {
		return 0, ErrInvalidElfanew
	}

	// e_lfanew is a signed field on the wire; a value whose top bit is set
	// is negative and therefore invalid no matter how we interpret it here.
	if raw > 0x7fffffff {
		return 0, ErrInvalidElfanew
	}

	return raw, nil
}
