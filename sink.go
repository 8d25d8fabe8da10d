// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import (
	"fmt"
	"math"
)

// Undefined is the sentinel returned by the integer-valued queries
// (SectionIndex, Exports, Imports, Language) when no image is bound. It is
// also SectionIndex's result when no section has the name, and Language's
// when the image has no resource directory. It is chosen far outside the
// range any real query result can take, so callers can tell it apart from
// 0 ("not found" for Exports, Imports and Language).
const Undefined = math.MinInt64

// Sink receives the published fields of a bound image, addressed by a
// dotted/indexed path such as "sections[2].name". A host implements Sink
// over whatever object model it already maintains; pescan never assumes
// one.
type Sink interface {
	SetInt(path string, value int64)
	SetString(path string, value string)
}

// Publish writes every scalar and section-array field of img to sink. It
// never logs and never returns an error: img was already validated by
// Bind, so every field it holds is safe to read.
func Publish(img *Image, sink Sink) {
	sink.SetInt("machine", int64(img.nt.fileHeader.Machine))
	sink.SetInt("number_of_sections", int64(len(img.sections)))
	sink.SetInt("timestamp", int64(img.nt.fileHeader.TimeDateStamp))
	sink.SetInt("characteristics", int64(img.nt.fileHeader.Characteristics))
	sink.SetInt("entry_point", int64(img.entryPointOffset()))
	sink.SetInt("image_base", int64(img.nt.imageBase()))

	major, minor := img.nt.versionPair("linker")
	sink.SetInt("linker_version.major", int64(major))
	sink.SetInt("linker_version.minor", int64(minor))

	major, minor = img.nt.versionPair("os")
	sink.SetInt("os_version.major", int64(major))
	sink.SetInt("os_version.minor", int64(minor))

	major, minor = img.nt.versionPair("image")
	sink.SetInt("image_version.major", int64(major))
	sink.SetInt("image_version.minor", int64(minor))

	major, minor = img.nt.versionPair("subsystem")
	sink.SetInt("subsystem_version.major", int64(major))
	sink.SetInt("subsystem_version.minor", int64(minor))

	sink.SetInt("subsystem", int64(img.nt.subsystem()))

	for i, s := range img.sections {
		size := s.VirtualSize
		if size == 0 {
			size = s.SizeOfRawData
		}
		sink.SetString(fmt.Sprintf("sections[%d].name", i), s.nameString())
		sink.SetInt(fmt.Sprintf("sections[%d].characteristics", i), int64(s.Characteristics))
		sink.SetInt(fmt.Sprintf("sections[%d].raw_data_size", i), int64(s.SizeOfRawData))
		sink.SetInt(fmt.Sprintf("sections[%d].raw_data_offset", i), int64(s.PointerToRawData))
		sink.SetInt(fmt.Sprintf("sections[%d].virtual_address", i), int64(s.VirtualAddress))
		sink.SetInt(fmt.Sprintf("sections[%d].virtual_size", i), int64(size))
	}
}
