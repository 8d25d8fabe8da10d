// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// ImageFileHeader is the COFF file header (IMAGE_FILE_HEADER), the first
// fixed structure following the PE signature.
type ImageFileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

const fileHeaderSize = 20

// DataDirectory is one entry of the optional header's data directory array.
type DataDirectory struct {
	VirtualAddress uint32
	Size           uint32
}

// ImageOptionalHeader32 is IMAGE_OPTIONAL_HEADER for PE32 images (224 bytes).
type ImageOptionalHeader32 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	BaseOfData                  uint32
	ImageBase                   uint32
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint32
	SizeOfStackCommit           uint32
	SizeOfHeapReserve           uint32
	SizeOfHeapCommit            uint32
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [16]DataDirectory
}

// ImageOptionalHeader64 is IMAGE_OPTIONAL_HEADER64 for PE32+ images (240 bytes).
type ImageOptionalHeader64 struct {
	Magic                       uint16
	MajorLinkerVersion          uint8
	MinorLinkerVersion          uint8
	SizeOfCode                  uint32
	SizeOfInitializedData       uint32
	SizeOfUninitializedData     uint32
	AddressOfEntryPoint         uint32
	BaseOfCode                  uint32
	ImageBase                   uint64
	SectionAlignment            uint32
	FileAlignment               uint32
	MajorOperatingSystemVersion uint16
	MinorOperatingSystemVersion uint16
	MajorImageVersion           uint16
	MinorImageVersion           uint16
	MajorSubsystemVersion       uint16
	MinorSubsystemVersion       uint16
	Win32VersionValue           uint32
	SizeOfImage                 uint32
	SizeOfHeaders               uint32
	CheckSum                    uint32
	Subsystem                   uint16
	DllCharacteristics          uint16
	SizeOfStackReserve          uint64
	SizeOfStackCommit           uint64
	SizeOfHeapReserve           uint64
	SizeOfHeapCommit            uint64
	LoaderFlags                 uint32
	NumberOfRvaAndSizes         uint32
	DataDirectory               [16]DataDirectory
}

// ntHeader is the anchor returned by the header decoder: the fixed-size
// parts of IMAGE_NT_HEADERS needed by the rest of the module, plus enough
// bookkeeping to locate the section table that immediately follows it.
type ntHeader struct {
	fileHeader      ImageFileHeader
	is64            bool
	oh32            ImageOptionalHeader32
	oh64            ImageOptionalHeader64
	ntHeaderOffset  uint64 // offset of the Signature DWORD
	sectionTableOff uint64 // offset immediately after the optional header
}

// dataDirectory returns the (VA, size) pair at index, honoring bitness.
func (nt *ntHeader) dataDirectory(index int) DataDirectory {
	if index < 0 || index >= numberOfDirectoryEntries {
		return DataDirectory{}
	}
	if nt.is64 {
		return nt.oh64.DataDirectory[index]
	}
	return nt.oh32.DataDirectory[index]
}

func (nt *ntHeader) imageBase() uint64 {
	if nt.is64 {
		return nt.oh64.ImageBase
	}
	return uint64(nt.oh32.ImageBase)
}

func (nt *ntHeader) addressOfEntryPoint() uint32 {
	if nt.is64 {
		return nt.oh64.AddressOfEntryPoint
	}
	return nt.oh32.AddressOfEntryPoint
}

func (nt *ntHeader) subsystem() uint16 {
	if nt.is64 {
		return nt.oh64.Subsystem
	}
	return nt.oh32.Subsystem
}

func (nt *ntHeader) versionPair(field string) (major, minor uint16) {
	if nt.is64 {
		switch field {
		case "linker":
			return uint16(nt.oh64.MajorLinkerVersion), uint16(nt.oh64.MinorLinkerVersion)
		case "os":
			return nt.oh64.MajorOperatingSystemVersion, nt.oh64.MinorOperatingSystemVersion
		case "image":
			return nt.oh64.MajorImageVersion, nt.oh64.MinorImageVersion
		case "subsystem":
			return nt.oh64.MajorSubsystemVersion, nt.oh64.MinorSubsystemVersion
		}
		return 0, 0
	}
	switch field {
	case "linker":
		return uint16(nt.oh32.MajorLinkerVersion), uint16(nt.oh32.MinorLinkerVersion)
	case "os":
		return nt.oh32.MajorOperatingSystemVersion, nt.oh32.MinorOperatingSystemVersion
	case "image":
		return nt.oh32.MajorImageVersion, nt.oh32.MinorImageVersion
	case "subsystem":
		return nt.oh32.MajorSubsystemVersion, nt.oh32.MinorSubsystemVersion
	}
	return 0, 0
}

// parseNTHeader anchors and validates the NT headers starting at
// peOffset+elfanew. Validation follows a fixed order: signature, machine
// whitelist, then a strict fit check of the declared optional header size
// against the remaining buffer. It never reads outside r's backing slice.
func parseNTHeader(r *reader, peOffset uint64, elfanew uint32) (*ntHeader, error) {
	ntOffset := peOffset + uint64(elfanew)

	signature, err := r.readUint32(ntOffset)
	if err != nil {
		return nil, ErrHeadersDontFit
	}
	if signature != imageNTSignature {
		return nil, ErrNTSignatureNotFound
	}

	var fh ImageFileHeader
	if err := r.readStruct(ntOffset+4, &fh); err != nil {
		return nil, ErrHeadersDontFit
	}

	if fh.Machine != MachineI386 && fh.Machine != MachineAMD64 {
		return nil, ErrUnsupportedMachine
	}

	headersEnd := ntOffset + 4 + fileHeaderSize + uint64(fh.SizeOfOptionalHeader)
	if headersEnd >= r.size() {
		return nil, ErrHeadersDontFit
	}

	nt := &ntHeader{
		fileHeader:     fh,
		is64:           fh.Machine == MachineAMD64,
		ntHeaderOffset: ntOffset,
	}

	optHeaderOffset := ntOffset + 4 + fileHeaderSize
	if nt.is64 {
		if err := r.readStruct(optHeaderOffset, &nt.oh64); err != nil {
			return nil, ErrHeadersDontFit
		}
		if nt.oh64.Magic != imageNtOptionalHeader64Magic {
			return nil, ErrUnsupportedOptionalHeader
		}
	} else {
		if err := r.readStruct(optHeaderOffset, &nt.oh32); err != nil {
			return nil, ErrHeadersDontFit
		}
		if nt.oh32.Magic != imageNtOptionalHeader32Magic {
			return nil, ErrUnsupportedOptionalHeader
		}
	}

	nt.sectionTableOff = optHeaderOffset + uint64(fh.SizeOfOptionalHeader)
	return nt, nil
}
