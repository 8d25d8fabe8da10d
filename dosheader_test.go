// Copyright 2024 The pescan Authors. All rights reserved.
// Use of this source code is governed by an Apache v2 license
// that can be found in the LICENSE file.

package pescan

import "testing"

func TestParseDOSHeaderTooSmall(t *testing.T) {
	r := newReader(make([]byte, 10))
	if _, err := parseDOSHeader(r, 0); err != ErrTooSmall {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestParseDOSHeaderEmptyBuffer(t *testing.T) {
	r := newReader(nil)
	if _, err := parseDOSHeader(r, 0); err != ErrTooSmall {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestParseDOSHeaderBadMagic(t *testing.T) {
	buf := make([]byte, 64)
	r := newReader(buf)
	if _, err := parseDOSHeader(r, 0); err != ErrDOSMagicNotFound {
		t.Fatalf("err = %v, want ErrDOSMagicNotFound", err)
	}
}

func TestParseDOSHeaderNegativeElfanew(t *testing.T) {
	buf := make([]byte, 64)
	buf[0], buf[1] = 0x4d, 0x5a
	buf[0x3c] = 0x00
	buf[0x3d] = 0x00
	buf[0x3e] = 0x00
	buf[0x3f] = 0x80 // top bit set -> negative as int32
	r := newReader(buf)
	if _, err := parseDOSHeader(r, 0); err != ErrInvalidElfanew {
		t.Fatalf("err = %v, want ErrInvalidElfanew", err)
	}
}

func TestParseDOSHeaderOK(t *testing.T) {
	buf := newPEBuilder(false).build()
	r := newReader(buf)
	elfanew, err := parseDOSHeader(r, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elfanew != 0x80 {
		t.Fatalf("elfanew = 0x%x, want 0x80", elfanew)
	}
}
