// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// Image is a single bound PE header: the result of successfully anchoring
// and validating a candidate block of bytes. It is immutable once built;
// every query against it reads the same backing slice it was built from.
type Image struct {
	r        *reader
	data     []byte
	peOffset uint64
	peSize   uint64
	nt       *ntHeader
	sections []ImageSectionHeader

	// inProcessMemory is true when data was captured from a running
	// process rather than read from a file on disk. In that mode RVAs are
	// already mapped 1:1 against base and never need section translation.
	inProcessMemory bool
	base            uint64
}

// Bind anchors a PE header inside data starting at peOffset and validates
// it against the fixed rule order: DOS stub, e_lfanew, NT signature,
// machine whitelist, optional header fit, optional header magic. It returns
// an error from errors.go the moment any step fails; nothing is partially
// published. The section table never fails the bind: it is read up to
// maxSections entries and stops at the first header that does not fit the
// buffer. base is the load address to use for RVA resolution when
// inProcessMemory is true, and is ignored otherwise.
func Bind(data []byte, peOffset uint64, inProcessMemory bool, base uint64) (*Image, error) {
	r := newReader(data)

	elfanew, err := parseDOSHeader(r, peOffset)
	if err != nil {
		return nil, err
	}

	nt, err := parseNTHeader(r, peOffset, elfanew)
	if err != nil {
		return nil, err
	}

	sections := parseSections(r, nt.sectionTableOff, nt.fileHeader.NumberOfSections)

	return &Image{
		r:               r,
		data:            data,
		peOffset:        peOffset,
		peSize:          r.size() - peOffset,
		nt:              nt,
		sections:        sections,
		inProcessMemory: inProcessMemory,
		base:            base,
	}, nil
}

// is64 reports whether the image uses the PE32+ optional header layout.
func (img *Image) is64() bool {
	return img.nt.is64
}

// entryPointOffset publishes AddressOfEntryPoint as the value the host
// expects on the entry_point field: a linear address (base + rva) in
// process memory, or the raw section-translated offset on disk. The disk
// case is relative to the PE header, not to the start of img.data — when
// peOffset is non-zero (an embedded image) this value does not include it,
// matching how the field has always been computed here.
func (img *Image) entryPointOffset() uint64 {
	rva := img.nt.addressOfEntryPoint()
	if img.inProcessMemory {
		return img.base + uint64(rva)
	}
	return rvaToOffset(img.sections, rva)
}

// rvaToDataOffset resolves an RVA to an index into img.data, for use by
// export and import lookups. In process memory it is peOffset + rva, with
// no section translation; on disk it is the same
// header-relative value returned by entryPointOffset, used directly as a
// data index without adding peOffset back in.
func (img *Image) rvaToDataOffset(rva uint32) uint64 {
	if img.inProcessMemory {
		return img.peOffset + uint64(rva)
	}
	return rvaToOffset(img.sections, rva)
}

// rvaToAbsoluteOffset resolves an RVA to an index into img.data for the
// resource walker, which unlike exports/imports does add peOffset back so
// that nested directories anchored off the header are found correctly.
func (img *Image) rvaToAbsoluteOffset(rva uint32) uint64 {
	if img.inProcessMemory {
		return img.peOffset + uint64(rva)
	}
	return img.peOffset + rvaToOffset(img.sections, rva)
}
