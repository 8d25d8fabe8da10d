// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import "errors"

// Errors returned while anchoring a candidate PE header. These never
// propagate past Load/Bind: a structural failure just means the block
// isn't a PE, or isn't one we accept.
var (
	// ErrTooSmall is returned when the block is smaller than a DOS header.
	ErrTooSmall = errors.New("pescan: block smaller than a DOS header")

	// ErrDOSMagicNotFound is returned when the MZ signature is missing.
	ErrDOSMagicNotFound = errors.New("pescan: DOS signature not found")

	// ErrInvalidElfanew is returned when e_lfanew is negative. An e_lfanew
	// that points outside the block yields ErrHeadersDontFit instead.
	ErrInvalidElfanew = errors.New("pescan: invalid e_lfanew value")

	// ErrHeadersDontFit is returned when the NT headers, file header, or
	// optional header would read past the end of the block.
	ErrHeadersDontFit = errors.New("pescan: NT headers do not fit in block")

	// ErrNTSignatureNotFound is returned when the PE\0\0 signature is absent.
	ErrNTSignatureNotFound = errors.New("pescan: PE signature not found")

	// ErrUnsupportedMachine is returned when FileHeader.Machine is not
	// I386 or AMD64.
	ErrUnsupportedMachine = errors.New("pescan: unsupported machine type")

	// ErrUnsupportedOptionalHeader is returned when the optional header
	// magic is neither PE32 nor PE32+.
	ErrUnsupportedOptionalHeader = errors.New("pescan: unsupported optional header magic")

	// ErrOutOfBounds is returned by the bounds-checked reader whenever a
	// read would cross the end of the backing slice.
	ErrOutOfBounds = errors.New("pescan: read outside image bounds")

	// ErrNoBinding names the no-image-bound condition. No function in this
	// package returns it: the Module query methods report that condition
	// as Undefined.
	ErrNoBinding = errors.New("pescan: no image bound")

	// ErrInsufficientMemory names the condition of a binding record that
	// cannot be allocated. No function in this package returns it, and
	// Module.Load reports only success or failure.
	ErrInsufficientMemory = errors.New("pescan: insufficient memory to bind image")
)
