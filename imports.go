// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// ImageImportDescriptor is IMAGE_IMPORT_DESCRIPTOR, one per imported DLL.
type ImageImportDescriptor struct {
	OriginalFirstThunk uint32
	TimeDateStamp      uint32
	ForwarderChain     uint32
	Name               uint32
	FirstThunk         uint32
}

const imageImportDescriptorSize = 20

const (
	ordinalFlag32 = uint32(0x80000000)
	ordinalFlag64 = uint64(0x8000000000000000)
)

// hasImport reports whether functionName is imported from dllName. The DLL
// name match is case-insensitive and bounded by the distance to the end of
// the buffer like hasExport; the function name match is bounded by
// functionName's own length, a pure prefix comparison against
// IMAGE_IMPORT_BY_NAME.Name that never requires a terminating NUL. Every
// import descriptor is scanned even after a DLL name fails to match; only a
// genuine thunk-chain hit returns true.
func (img *Image) hasImport(dllName, functionName string) bool {
	dir := img.nt.dataDirectory(DirEntryImport)
	if dir.VirtualAddress == 0 {
		return false
	}

	offset := img.rvaToDataOffset(dir.VirtualAddress)
	if offset == 0 || !fits(offset, imageImportDescriptorSize, img.r.size()) {
		return false
	}

	for fits(offset, imageImportDescriptorSize, img.r.size()) {
		var desc ImageImportDescriptor
		if err := img.r.readStruct(offset, &desc); err != nil {
			return false
		}
		if desc.Name == 0 {
			break
		}

		nameOffset := img.rvaToDataOffset(desc.Name)
		if nameOffset != 0 && nameOffset <= img.r.size() &&
			img.r.ncmpEqual(nameOffset, dllName, img.r.size()-nameOffset, true) {
			if img.scanThunks(desc.OriginalFirstThunk, functionName) {
				return true
			}
		}

		offset += imageImportDescriptorSize
	}

	return false
}

// scanThunks walks the import address table rooted at thunkRVA looking for
// functionName among the named (non-ordinal) entries.
func (img *Image) scanThunks(thunkRVA uint32, functionName string) bool {
	offset := img.rvaToDataOffset(thunkRVA)
	if offset == 0 {
		return false
	}

	if img.is64() {
		for fits(offset, 8, img.r.size()) {
			ordinal, err := img.r.readUint64(offset)
			if err != nil || ordinal == 0 {
				break
			}
			if ordinal&ordinalFlag64 == 0 {
				if img.matchImportByName(uint32(ordinal), functionName) {
					return true
				}
			}
			offset += 8
		}
		return false
	}

	for fits(offset, 4, img.r.size()) {
		ordinal, err := img.r.readUint32(offset)
		if err != nil || ordinal == 0 {
			break
		}
		if ordinal&ordinalFlag32 == 0 {
			if img.matchImportByName(ordinal, functionName) {
				return true
			}
		}
		offset += 4
	}
	return false
}

// matchImportByName resolves an IMAGE_THUNK_DATA function field (itself an
// RVA to IMAGE_IMPORT_BY_NAME when the ordinal flag is clear) and compares
// its Name field against functionName.
func (img *Image) matchImportByName(functionRVA uint32, functionName string) bool {
	offset := img.rvaToDataOffset(functionRVA)
	// IMAGE_IMPORT_BY_NAME is a 2-byte Hint followed by the name.
	if offset == 0 || !fits(offset, 2+uint64(len(functionName)), img.r.size()) {
		return false
	}
	return img.r.ncmpEqual(offset+2, functionName, uint64(len(functionName)), false)
}
