// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// ImageSectionHeader is IMAGE_SECTION_HEADER, 40 bytes on the wire.
type ImageSectionHeader struct {
	Name                 [8]byte
	VirtualSize          uint32
	VirtualAddress       uint32
	SizeOfRawData        uint32
	PointerToRawData     uint32
	PointerToRelocations uint32
	PointerToLinenumbers uint32
	NumberOfRelocations  uint16
	NumberOfLinenumbers  uint16
	Characteristics      uint32
}

const sectionHeaderSize = 40

// nameString returns the section name, trimmed at the first NUL. Section
// names are not guaranteed to be NUL-terminated when all 8 bytes are used.
func (s *ImageSectionHeader) nameString() string {
	n := 0
	for n < len(s.Name) && s.Name[n] != 0 {
		n++
	}
	return string(s.Name[:n])
}

// parseSections reads up to maxSections entries of the section table
// starting at tableOffset. A declared count above maxSections is silently
// capped; a section header that does not fit the buffer stops the walk
// there rather than failing the whole binding, exposing every section read
// so far.
func parseSections(r *reader, tableOffset uint64, declaredCount uint16) []ImageSectionHeader {
	count := int(declaredCount)
	if count > maxSections {
		count = maxSections
	}

	sections := make([]ImageSectionHeader, 0, count)
	for i := 0; i < count; i++ {
		offset := tableOffset + uint64(i)*sectionHeaderSize
		var sh ImageSectionHeader
		if err := r.readStruct(offset, &sh); err != nil {
			break
		}
		sections = append(sections, sh)
	}
	return sections
}

// rvaToOffset maps a relative virtual address to a file offset by scanning
// the section table for the section whose VirtualAddress is the highest one
// not exceeding rva, exactly mirroring how the loader resolves addresses
// that may fall in the header region before the first section. It performs
// no bounds check of its own: offsets it returns must be validated by the
// caller against the backing buffer before use.
func rvaToOffset(sections []ImageSectionHeader, rva uint32) uint64 {
	var sectionRVA uint32
	var sectionOffset uint32

	for i := range sections {
		s := &sections[i]
		if rva >= s.VirtualAddress && s.VirtualAddress >= sectionRVA {
			sectionRVA = s.VirtualAddress
			sectionOffset = s.PointerToRawData
		}
	}

	return uint64(sectionOffset) + uint64(rva-sectionRVA)
}
