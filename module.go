// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import (
	"os"

	"github.com/corkscan/pescan/log"
)

// ScanFlags mirrors the flag bits a host scan engine passes down to
// describe where the candidate blocks came from.
type ScanFlags uint32

// ScanFlagsProcessMemory marks every MemoryBlock passed to Load as having
// been captured from a running process rather than read from a file. In
// that mode a DOS/MZ header belonging to a mapped DLL is skipped, since the
// scan is only interested in the process's own main image.
const ScanFlagsProcessMemory ScanFlags = 1 << 0

// MemoryBlock is one candidate region a host offers to Load. Base is the
// address the block was read from when flags carries
// ScanFlagsProcessMemory; it is ignored for on-disk scans.
type MemoryBlock struct {
	Base uint64
	Data []byte
}

// Module holds at most one bound Image. A Module is not safe for
// concurrent use: callers scanning multiple blocks concurrently should use
// one Module per goroutine.
type Module struct {
	img    *Image
	logger *log.Helper
}

// NewModule builds a Module with a Logger used only for lifecycle tracing.
// A nil logger disables tracing entirely.
func NewModule(logger log.Logger) *Module {
	if logger == nil {
		logger = log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelError))
	}
	return &Module{logger: log.NewHelper(logger)}
}

// Load scans blocks in order and binds to the first one whose header
// validates. When flags carries ScanFlagsProcessMemory, a block whose
// image Characteristics marks it as a DLL is skipped, since process-memory
// scans care only about the process's own executable. Load replaces any
// image bound by a previous call.
func (m *Module) Load(blocks []MemoryBlock, flags ScanFlags) bool {
	processMemory := flags&ScanFlagsProcessMemory != 0

	for _, block := range blocks {
		img, err := Bind(block.Data, 0, processMemory, block.Base)
		if err != nil {
			continue
		}
		if processMemory && img.nt.fileHeader.Characteristics&CharacteristicsDLL != 0 {
			m.logger.Debugf("skipped DLL image at base=0x%x", block.Base)
			continue
		}
		m.img = img
		m.logger.Debugf("bound image at base=0x%x", block.Base)
		return true
	}

	m.logger.Debugf("no candidate block bound")
	return false
}

// Unload releases the bound image without freeing the caller-owned memory
// backing it.
func (m *Module) Unload() {
	m.img = nil
	m.logger.Debugf("unbound image")
}

// Bound reports whether a call to Load has successfully bound an image.
func (m *Module) Bound() bool {
	return m.img != nil
}

// Publish writes the bound image's fields to sink. It is a no-op when no
// image is bound.
func (m *Module) Publish(sink Sink) {
	if m.img == nil {
		return
	}
	Publish(m.img, sink)
}

// SectionIndex returns the index of the first section named name, or
// Undefined if no image is bound or if no section matches.
func (m *Module) SectionIndex(name string) int64 {
	if m.img == nil {
		return Undefined
	}
	for i, s := range m.img.sections {
		if s.nameString() == name {
			return int64(i)
		}
	}
	return Undefined
}

// Exports returns 1 if the bound image exports functionName, 0 if it does
// not (or exports nothing at all), or Undefined if no image is bound.
func (m *Module) Exports(functionName string) int64 {
	if m.img == nil {
		return Undefined
	}
	if m.img.hasExport(functionName) {
		return 1
	}
	return 0
}

// Imports returns 1 if the bound image imports functionName from dllName,
// 0 otherwise, or Undefined if no image is bound.
func (m *Module) Imports(dllName, functionName string) int64 {
	if m.img == nil {
		return Undefined
	}
	if m.img.hasImport(dllName, functionName) {
		return 1
	}
	return 0
}

// Language returns 1 if the bound image has at least one resource leaf
// tagged with language, 0 if it has a resource directory but no such leaf,
// or Undefined if no image is bound or the image has no resource directory
// at all.
func (m *Module) Language(language int) int64 {
	if m.img == nil {
		return Undefined
	}
	found, present := m.img.languageMatch(language)
	if !present {
		return Undefined
	}
	if found {
		return 1
	}
	return 0
}
