// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// FileBlock memory-maps name read-only and returns it as a MemoryBlock
// ready for Module.Load. The returned block's Data aliases the mapping, so
// the returned unmap func must not be called while an image bound from the
// block is still in use; call it when done to release the mapping.
func FileBlock(name string) (MemoryBlock, func() error, error) {
	f, err := os.Open(name)
	if err != nil {
		return MemoryBlock{}, nil, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return MemoryBlock{}, nil, err
	}

	return MemoryBlock{Base: 0, Data: data}, data.Unmap, nil
}
