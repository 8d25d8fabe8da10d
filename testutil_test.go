// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import "encoding/binary"

// peBuilder assembles a synthetic PE byte buffer one field at a time. It
// exists only to give tests a minimal, fully-controlled image to bind
// against, since no real-world binaries ship alongside this module.
type peBuilder struct {
	is64         bool
	numSections  uint16
	entryPoint   uint32
	imageBase    uint64
	subsystem    uint16
	machine      uint16
	sections     []builderSection
	appendedData []byte
}

type builderSection struct {
	name             string
	virtualAddress   uint32
	virtualSize      uint32
	pointerToRawData uint32
	sizeOfRawData    uint32
	characteristics  uint32
}

func newPEBuilder(is64 bool) *peBuilder {
	b := &peBuilder{is64: is64, imageBase: 0x400000, entryPoint: 0x1000}
	if is64 {
		b.machine = MachineAMD64
	} else {
		b.machine = MachineI386
	}
	return b
}

func (b *peBuilder) addSection(s builderSection) *peBuilder {
	b.sections = append(b.sections, s)
	return b
}

// build lays out: 64-byte DOS stub (e_lfanew=0x80), NT headers starting at
// 0x80, then the section table, then one zero byte of padding, then any
// bytes added by withTrailingRoom. Section raw data is not written; the
// section headers only carry the offsets the caller chose.
func (b *peBuilder) build() []byte {
	const ntOffset = 0x80

	fileHeaderSize := 20
	optHeaderSize := 224
	if b.is64 {
		optHeaderSize = 240
	}
	sectionTableOffset := ntOffset + 4 + fileHeaderSize + optHeaderSize
	dataOffset := sectionTableOffset + 40*len(b.sections)

	// The padding byte keeps the headers ending strictly before the end of
	// the buffer, which Bind requires even of an image with no sections.
	buf := make([]byte, dataOffset+1)

	// DOS header.
	binary.LittleEndian.PutUint16(buf[0:2], imageDOSSignature)
	binary.LittleEndian.PutUint32(buf[0x3c:0x40], uint32(ntOffset))

	// NT signature + file header.
	binary.LittleEndian.PutUint32(buf[ntOffset:ntOffset+4], imageNTSignature)
	fh := ntOffset + 4
	binary.LittleEndian.PutUint16(buf[fh:fh+2], b.machine)
	binary.LittleEndian.PutUint16(buf[fh+2:fh+4], uint16(len(b.sections)))
	binary.LittleEndian.PutUint16(buf[fh+16:fh+18], uint16(optHeaderSize))

	oh := fh + fileHeaderSize
	if b.is64 {
		binary.LittleEndian.PutUint16(buf[oh:oh+2], imageNtOptionalHeader64Magic)
		binary.LittleEndian.PutUint32(buf[oh+16:oh+20], b.entryPoint)
		binary.LittleEndian.PutUint64(buf[oh+24:oh+32], b.imageBase)
		binary.LittleEndian.PutUint16(buf[oh+68:oh+70], b.subsystem)
	} else {
		binary.LittleEndian.PutUint16(buf[oh:oh+2], imageNtOptionalHeader32Magic)
		binary.LittleEndian.PutUint32(buf[oh+16:oh+20], b.entryPoint)
		binary.LittleEndian.PutUint32(buf[oh+28:oh+32], uint32(b.imageBase))
		binary.LittleEndian.PutUint16(buf[oh+68:oh+70], b.subsystem)
	}

	for i, s := range b.sections {
		off := sectionTableOffset + i*40
		copy(buf[off:off+8], []byte(s.name))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], s.virtualSize)
		binary.LittleEndian.PutUint32(buf[off+12:off+16], s.virtualAddress)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], s.sizeOfRawData)
		binary.LittleEndian.PutUint32(buf[off+20:off+24], s.pointerToRawData)
		binary.LittleEndian.PutUint32(buf[off+36:off+40], s.characteristics)
	}

	if len(b.appendedData) > 0 {
		buf = append(buf, b.appendedData...)
	}
	return buf
}

// withTrailingRoom extends the buffer with n zero bytes, useful for tests
// that need raw section data to live somewhere reachable.
func (b *peBuilder) withTrailingRoom(n int) *peBuilder {
	b.appendedData = make([]byte, n)
	return b
}
