// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import "testing"

func TestParseSectionsCapsAtMaxSections(t *testing.T) {
	buf := make([]byte, maxSections*sectionHeaderSize)
	r := newReader(buf)

	sections := parseSections(r, 0, 200)
	if len(sections) != maxSections {
		t.Fatalf("len(sections) = %d, want %d", len(sections), maxSections)
	}
}

func TestParseSectionsTruncatedTableStopsShortOfDeclaredCount(t *testing.T) {
	// Room for exactly one full section header plus a partial second one.
	buf := make([]byte, sectionHeaderSize+sectionHeaderSize-1)
	r := newReader(buf)

	sections := parseSections(r, 0, 2)
	if len(sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1 (second header does not fit)", len(sections))
	}
}

func TestRvaToOffsetHighestMatchingSection(t *testing.T) {
	sections := []ImageSectionHeader{
		{VirtualAddress: 0x1000, PointerToRawData: 0x400},
		{VirtualAddress: 0x2000, PointerToRawData: 0x800},
	}
	if got := rvaToOffset(sections, 0x2100); got != 0x900 {
		t.Fatalf("rvaToOffset = 0x%x, want 0x900", got)
	}
	if got := rvaToOffset(sections, 0x1500); got != 0x900 {
		t.Fatalf("rvaToOffset in first section range = 0x%x, want 0x900", got)
	}
	if got := rvaToOffset(sections, 0x500); got != 0x500 {
		t.Fatalf("rvaToOffset before any section = 0x%x, want identity 0x500", got)
	}
}

func TestRvaToOffsetUnsortedSections(t *testing.T) {
	// Sections in reverse VA order: the algorithm still picks the highest
	// matching VirtualAddress regardless of table order.
	sections := []ImageSectionHeader{
		{VirtualAddress: 0x2000, PointerToRawData: 0x800},
		{VirtualAddress: 0x1000, PointerToRawData: 0x400},
	}
	if got := rvaToOffset(sections, 0x2050); got != 0x850 {
		t.Fatalf("rvaToOffset = 0x%x, want 0x850", got)
	}
}
