// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

// ImageResourceDirectory is IMAGE_RESOURCE_DIRECTORY, the header of each
// level of the resource tree (type, then id, then language).
type ImageResourceDirectory struct {
	Characteristics      uint32
	TimeDateStamp        uint32
	MajorVersion         uint16
	MinorVersion         uint16
	NumberOfNamedEntries uint16
	NumberOfIdEntries    uint16
}

const imageResourceDirectorySize = 16

// ImageResourceDirectoryEntry is IMAGE_RESOURCE_DIRECTORY_ENTRY. Name holds
// either a named-entry string offset or, for the entries this module cares
// about, a numeric type/id/language identifier. OffsetToData is a tagged
// union: its top bit distinguishes a nested subdirectory from a leaf.
type ImageResourceDirectoryEntry struct {
	Name         uint32
	OffsetToData uint32
}

const imageResourceDirectoryEntrySize = 8

const resourceSubdirFlag = uint32(0x80000000)

// resourceNode is the decoded form of one directory entry's OffsetToData:
// either it points at another ImageResourceDirectory, or it points at an
// IMAGE_RESOURCE_DATA_ENTRY leaf.
type resourceNode struct {
	isSubdir bool
	offset   uint32 // relative to the resource directory's own base
}

func decodeResourceNode(entry ImageResourceDirectoryEntry) resourceNode {
	if entry.OffsetToData&resourceSubdirFlag != 0 {
		return resourceNode{isSubdir: true, offset: entry.OffsetToData &^ resourceSubdirFlag}
	}
	return resourceNode{isSubdir: false, offset: entry.OffsetToData}
}

// resourceWalkResult is returned by a visitor to control the walk.
type resourceWalkResult int

const (
	// ResourceContinue lets the walk proceed to the next sibling entry.
	ResourceContinue resourceWalkResult = iota
	// ResourceAbort stops the walk immediately; it propagates up through
	// every enclosing level so the whole traversal ends at once.
	ResourceAbort
)

// ResourceVisitor is invoked once per leaf (data entry) of the resource
// tree, with the type, id and language identifiers accumulated from the
// three directory levels above it. A level deeper than 3 is never reached:
// iterateResourceLevel returns at once when its level is 3 or more.
type ResourceVisitor func(resType, id, language int) resourceWalkResult

// walkResources locates the resource directory from the optional header's
// data directory and walks it from the root. It returns true if a resource
// directory was present and the walk ran, matching the has-resources
// boolean the rest of the module reports alongside language lookups.
func (img *Image) walkResources(visit ResourceVisitor) bool {
	dir := img.nt.dataDirectory(DirEntryResource)
	if dir.VirtualAddress == 0 {
		return false
	}

	offset := img.rvaToAbsoluteOffset(dir.VirtualAddress)
	if offset == 0 || offset >= img.r.size() || uint64(dir.Size) > img.r.size()-offset {
		return false
	}

	img.iterateResourceLevel(offset, offset, 0, -1, -1, -1, visit)
	return true
}

// iterateResourceLevel walks one IMAGE_RESOURCE_DIRECTORY at dirOffset.
// base is the resource section's own start, since every OffsetToData is
// relative to it rather than to dirOffset. The recursion is naturally
// bounded to three levels by the tree's own shape (type, id, language);
// maxResourceTreeDepth guards against a corrupt directory lying about its
// own nesting and recursing further.
func (img *Image) iterateResourceLevel(base, dirOffset uint64, level int, resType, id, language int, visit ResourceVisitor) resourceWalkResult {
	if level >= maxResourceTreeDepth {
		return ResourceContinue
	}

	var hdr ImageResourceDirectory
	if err := img.r.readStruct(dirOffset, &hdr); err != nil {
		return ResourceContinue
	}

	total := int(hdr.NumberOfNamedEntries) + int(hdr.NumberOfIdEntries)
	if total > maxResourceEntryFanOut {
		total = maxResourceEntryFanOut
	}

	entriesOffset := dirOffset + imageResourceDirectorySize
	for i := 0; i < total; i++ {
		entryOffset := entriesOffset + uint64(i)*imageResourceDirectoryEntrySize
		var entry ImageResourceDirectoryEntry
		if err := img.r.readStruct(entryOffset, &entry); err != nil {
			return ResourceContinue
		}

		switch level {
		case 0:
			resType = int(entry.Name)
		case 1:
			id = int(entry.Name)
		case 2:
			language = int(entry.Name)
		}

		node := decodeResourceNode(entry)
		var result resourceWalkResult
		if node.isSubdir {
			childOffset := base + uint64(node.offset)
			if !fits(childOffset, imageResourceDirectorySize, img.r.size()) {
				continue
			}
			result = img.iterateResourceLevel(base, childOffset, level+1, resType, id, language, visit)
		} else {
			result = visit(resType, id, language)
		}

		if result == ResourceAbort {
			return ResourceAbort
		}
	}

	return ResourceContinue
}

// languageMatch reports whether any resource leaf is tagged with the given
// language identifier, and whether a resource directory was present to
// search at all. It aborts the walk on the first match rather than
// counting every leaf.
func (img *Image) languageMatch(language int) (found, present bool) {
	present = img.walkResources(func(_, _, lang int) resourceWalkResult {
		if lang == language {
			found = true
			return ResourceAbort
		}
		return ResourceContinue
	})
	return found, present
}
