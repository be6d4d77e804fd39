// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"testing"

	"github.com/opendax/daxd/pkg/daxproto"
)

func TestCDTBoolPacking(t *testing.T) {
	cdt, err := newCDT(0, "Flags", []CDTMember{
		{Name: "a", Type: daxproto.BOOL, Count: 1},
		{Name: "b", Type: daxproto.BOOL, Count: 1},
		{Name: "c", Type: daxproto.DINT, Count: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := cdt.Member("a")
	b, _ := cdt.Member("b")
	c, _ := cdt.Member("c")

	if a.ByteOffset != 0 || a.BitOffset != 0 {
		t.Fatalf("a = %+v", a)
	}
	if b.ByteOffset != 0 || b.BitOffset != 1 {
		t.Fatalf("b = %+v", b)
	}
	if c.ByteOffset != 1 {
		t.Fatalf("c should start at byte 1 after the two packed bools, got %+v", c)
	}
	if cdt.Size != 5 {
		t.Fatalf("CDT size = %d, want 5 (1 packed byte + 4-byte DINT)", cdt.Size)
	}
}

// TestCDTBoolArrayPacking pins spec.md §3's "BOOL members pack into
// bit positions" rule for an array member (count > 1): it must take
// ceil(count/8) bytes, starting its own byte run, consistent with
// address.go's indexed-member arithmetic (h.ByteOffset += midx/8
// relative to the member's own ByteOffset, with no BitOffset
// contribution).
func TestCDTBoolArrayPacking(t *testing.T) {
	cdt, err := newCDT(0, "Flags", []CDTMember{
		{Name: "a", Type: daxproto.BOOL, Count: 1},
		{Name: "bits", Type: daxproto.BOOL, Count: 12},
		{Name: "c", Type: daxproto.DINT, Count: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := cdt.Member("a")
	bits, _ := cdt.Member("bits")
	c, _ := cdt.Member("c")

	if a.ByteOffset != 0 || a.BitOffset != 0 {
		t.Fatalf("a = %+v", a)
	}
	if bits.ByteOffset != 1 || bits.BitOffset != 0 {
		t.Fatalf("bits = %+v", bits)
	}
	if c.ByteOffset != 3 {
		t.Fatalf("c should start at byte 3 after the 2-byte bool array, got %+v", c)
	}
	if cdt.Size != 7 {
		t.Fatalf("CDT size = %d, want 7 (1 packed byte + 2-byte bool array + 4-byte DINT)", cdt.Size)
	}
}

func TestCDTDuplicateMemberName(t *testing.T) {
	_, err := newCDT(0, "Bad", []CDTMember{
		{Name: "x", Type: daxproto.DINT, Count: 1},
		{Name: "x", Type: daxproto.DINT, Count: 1},
	})
	if err != daxproto.TAG_DUPL {
		t.Fatalf("err = %v, want TAG_DUPL", err)
	}
}

func TestCDTEmptyMembers(t *testing.T) {
	if _, err := newCDT(0, "Empty", nil); err != daxproto.ARG {
		t.Fatalf("err = %v, want ARG", err)
	}
}
