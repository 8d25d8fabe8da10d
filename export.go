// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// ImageExportDirectory is IMAGE_EXPORT_DIRECTORY.
type ImageExportDirectory struct {
	Characteristics       uint32
	TimeDateStamp         uint32
	MajorVersion          uint16
	MinorVersion          uint16
	Name                  uint32
	Base                  uint32
	NumberOfFunctions     uint32
	NumberOfNames         uint32
	AddressOfFunctions    uint32
	AddressOfNames        uint32
	AddressOfNameOrdinals uint32
}

const imageExportDirectorySize = 40

// hasExport reports whether functionName appears in the export name table.
// It walks every entry of AddressOfNames and stops at the first match. The
// comparison bound is deliberately the distance from each candidate name to
// the end of the buffer, not functionName's own length: a name truncated
// by a short buffer can still compare equal to a prefix of functionName.
// A malformed name RVA for any single entry fails the whole query closed
// (returns false) rather than skipping past it.
func (img *Image) hasExport(functionName string) bool {
	dir := img.nt.dataDirectory(DirEntryExport)
	if dir.VirtualAddress == 0 {
		return false
	}

	offset := img.rvaToDataOffset(dir.VirtualAddress)
	if offset == 0 || offset >= img.r.size() {
		return false
	}

	var exp ImageExportDirectory
	if err := img.r.readStruct(offset, &exp); err != nil {
		return false
	}

	namesOffset := img.rvaToDataOffset(exp.AddressOfNames)
	if namesOffset == 0 || !fits(namesOffset, uint64(exp.NumberOfNames)*4, img.r.size()) {
		return false
	}

	for i := uint32(0); i < exp.NumberOfNames; i++ {
		nameRVA, err := img.r.readUint32(namesOffset + uint64(i)*4)
		if err != nil {
			return false
		}

		nameOffset := img.rvaToDataOffset(nameRVA)
		if nameOffset == 0 || nameOffset >= img.r.size() {
			return false
		}

		if img.r.ncmpEqual(nameOffset, functionName, img.r.size()-nameOffset, false) {
			return true
		}
	}

	return false
}
