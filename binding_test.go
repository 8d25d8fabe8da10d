// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import "testing"

func TestBindEmptyBuffer(t *testing.T) {
	if _, err := Bind(nil, 0, false, 0); err != ErrTooSmall {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestBindMinimalImageFileMode(t *testing.T) {
	b := newPEBuilder(false)
	b.entryPoint = 0x1000
	b.addSection(builderSection{
		name:             ".text",
		virtualAddress:   0x1000,
		virtualSize:      0x200,
		pointerToRawData: 0x400,
		sizeOfRawData:    0x200,
		characteristics:  ExecutableImage,
	})
	buf := b.withTrailingRoom(0x800).build()

	img, err := Bind(buf, 0, false, 0)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if len(img.sections) != 1 {
		t.Fatalf("len(sections) = %d, want 1", len(img.sections))
	}
	if got := img.entryPointOffset(); got != 0x400 {
		t.Fatalf("entryPointOffset = 0x%x, want 0x400 (file offset)", got)
	}
}

func TestBindProcessMemoryEntryPoint(t *testing.T) {
	b := newPEBuilder(false)
	b.entryPoint = 0x1000
	buf := b.build()

	img, err := Bind(buf, 0, true, 0x400000)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if got := img.entryPointOffset(); got != 0x401000 {
		t.Fatalf("entryPointOffset = 0x%x, want 0x401000", got)
	}
}

func TestBindCapsSectionsAtMax(t *testing.T) {
	b := newPEBuilder(false)
	for i := 0; i < maxSections; i++ {
		b.addSection(builderSection{name: "s"})
	}
	buf := b.build()
	b.numSections = 200

	// Overwrite the declared NumberOfSections field directly: the buffer
	// only backs maxSections real entries, matching a header that lies
	// about having more sections than it actually provides room for.
	const fileHeaderOffset = 0x80 + 4
	buf[fileHeaderOffset+2] = 200
	buf[fileHeaderOffset+3] = 0

	img, err := Bind(buf, 0, false, 0)
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if len(img.sections) != maxSections {
		t.Fatalf("len(sections) = %d, want %d", len(img.sections), maxSections)
	}
}

func TestBindTruncatedSectionTableStillBinds(t *testing.T) {
	const declared = 50
	const backed = 20

	b := newPEBuilder(false)
	for i := 0; i < backed; i++ {
		b.addSection(builderSection{name: "s"})
	}
	buf := b.build()

	// Declare more sections than the buffer actually has room for. Binding
	// must still succeed, exposing only the sections that fit.
	const fileHeaderOffset = 0x80 + 4
	buf[fileHeaderOffset+2] = declared
	buf[fileHeaderOffset+3] = 0

	img, err := Bind(buf, 0, false, 0)
	if err != nil {
		t.Fatalf("Bind failed: %v, want a successful truncated bind", err)
	}
	if len(img.sections) != backed {
		t.Fatalf("len(sections) = %d, want %d", len(img.sections), backed)
	}
}
