// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"strings"
	"testing"

	"github.com/opendax/daxd/pkg/daxproto"
)

func newTestDB() *DB {
	return New(Options{StartSize: 4, GrowInc: 4, QueueDefaultCap: 4, ServerVersion: "test"})
}

func TestAddAndGetByName(t *testing.T) {
	db := newTestDB()
	idx, err := db.Add("Dummy", "DINT", 1)
	if err != nil {
		t.Fatal(err)
	}
	if idx != firstUserIndex {
		t.Fatalf("first user tag index = %d, want %d", idx, firstUserIndex)
	}

	tag, err := db.GetByName("Dummy")
	if err != nil {
		t.Fatal(err)
	}
	if tag.Type != daxproto.DINT || tag.Count != 1 {
		t.Fatalf("unexpected tag descriptor: %+v", tag)
	}
}

func TestAddIdempotentOnExactReAdd(t *testing.T) {
	db := newTestDB()
	idx1, err := db.Add("Dummy", "DINT", 1)
	if err != nil {
		t.Fatal(err)
	}
	idx2, err := db.Add("Dummy", "DINT", 1)
	if err != nil {
		t.Fatalf("exact re-add should be idempotent, got err = %v", err)
	}
	if idx1 != idx2 {
		t.Fatalf("re-add returned a different index: %d != %d", idx1, idx2)
	}
}

func TestAddConflictingReAdd(t *testing.T) {
	db := newTestDB()
	if _, err := db.Add("Dummy", "DINT", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Add("Dummy", "INT", 1); err != daxproto.TAG_DUPL {
		t.Fatalf("err = %v, want TAG_DUPL", err)
	}
	if _, err := db.Add("Dummy", "DINT", 2); err != daxproto.TAG_DUPL {
		t.Fatalf("err = %v, want TAG_DUPL", err)
	}
}

func TestAddReservedUnderscoreName(t *testing.T) {
	db := newTestDB()
	if _, err := db.Add("_reserved", "DINT", 1); err != daxproto.ARG {
		t.Fatalf("err = %v, want ARG", err)
	}
}

// TestAddNameTooLong pins spec.md §3's "max length 32" bound on a tag
// name.
func TestAddNameTooLong(t *testing.T) {
	db := newTestDB()
	name := strings.Repeat("a", maxNameLen+1)
	if _, err := db.Add(name, "DINT", 1); err != daxproto.ARG {
		t.Fatalf("err = %v, want ARG", err)
	}
	if _, err := db.Add(strings.Repeat("a", maxNameLen), "DINT", 1); err != nil {
		t.Fatalf("a name at exactly maxNameLen should be accepted, got %v", err)
	}
}

func TestAddRetainSetsAttr(t *testing.T) {
	db := newTestDB()
	idx, err := db.AddRetain("Dummy", "DINT", 1)
	if err != nil {
		t.Fatal(err)
	}
	tag, err := db.GetByIndex(idx)
	if err != nil {
		t.Fatal(err)
	}
	if tag.Attr&AttrRetain == 0 {
		t.Fatalf("tag added via AddRetain should carry AttrRetain, got Attr = %v", tag.Attr)
	}
}

func TestTagListGrowsPastStartSize(t *testing.T) {
	db := newTestDB()
	for i := 0; i < 10; i++ {
		if _, err := db.Add(string(rune('A'+i)), "BOOL", 1); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if len(db.tags) != firstUserIndex+10 {
		t.Fatalf("tags len = %d, want %d", len(db.tags), firstUserIndex+10)
	}
}

func TestWriteThenRead(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	h, err := db.HandleForTag(idx)
	if err != nil {
		t.Fatal(err)
	}

	if err := db.Write(h, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	got, err := db.Read(h)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read = %v, want %v", got, want)
		}
	}
}

func TestDeleteThenNotFound(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	if err := db.Del(idx); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetByIndex(idx); err != daxproto.NOTFOUND {
		t.Fatalf("err = %v, want NOTFOUND", err)
	}
	if _, err := db.GetByName("Dummy"); err != daxproto.NOTFOUND {
		t.Fatalf("err = %v, want NOTFOUND", err)
	}
}

func TestDeleteNeverReusesIndex(t *testing.T) {
	db := newTestDB()
	idx1, _ := db.Add("First", "BOOL", 1)
	if err := db.Del(idx1); err != nil {
		t.Fatal(err)
	}
	idx2, _ := db.Add("Second", "BOOL", 1)
	if idx2 == idx1 {
		t.Fatalf("tag index %d was reused after delete", idx1)
	}
}

func TestVirtualTagsReadOnly(t *testing.T) {
	db := newTestDB()
	h, err := db.HandleForTag(VirtualServerVersion)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Write(h, make([]byte, h.Size)); err != daxproto.READONLY {
		t.Fatalf("err = %v, want READONLY", err)
	}
	data, err := db.Read(h)
	if err != nil {
		t.Fatal(err)
	}
	if string(data[:4]) != "test" {
		t.Fatalf("server version = %q", data)
	}
}

func TestAddressParsingArrayAndBit(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 10)

	h, err := db.ParseHandle("Dummy[2]")
	if err != nil {
		t.Fatal(err)
	}
	if h.Index != idx || h.ByteOffset != 8 || h.Count != 1 || h.Size != 4 {
		t.Fatalf("unexpected handle: %+v", h)
	}

	bit, err := db.ParseHandle("Dummy[2].5")
	if err != nil {
		t.Fatal(err)
	}
	if bit.Type != daxproto.BOOL || bit.ByteOffset != 8 || bit.BitOffset != 5 {
		t.Fatalf("unexpected bit handle: %+v", bit)
	}
}

func TestAddressParsingCDTMember(t *testing.T) {
	db := newTestDB()
	_, err := db.AddCDT("Point", []CDTMember{
		{Name: "x", Type: daxproto.DINT, Count: 1},
		{Name: "y", Type: daxproto.DINT, Count: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Add("P1", "Point", 3); err != nil {
		t.Fatal(err)
	}

	h, err := db.ParseHandle("P1[1].y")
	if err != nil {
		t.Fatal(err)
	}
	// element 1 starts at byte 8 (2 DINTs per Point), y is the second
	// member at +4.
	if h.ByteOffset != 12 || h.Size != 4 {
		t.Fatalf("unexpected handle: %+v", h)
	}
}

func TestMaskWrite(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	h, _ := db.HandleForTag(idx)
	if err := db.Write(h, []byte{0xFF, 0xFF, 0xFF, 0xFF}); err != nil {
		t.Fatal(err)
	}
	if err := db.MaskWrite(h, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x0F, 0x00, 0x00, 0x00}); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Read(h)
	if got[0] != 0xF0 || got[1] != 0xFF {
		t.Fatalf("masked write = %v", got)
	}
}

func TestAtomicIncrement(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Counter", "DINT", 1)
	h, _ := db.HandleForTag(idx)
	if err := db.Write(h, []byte{0, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	result, err := db.AtomicOp(h, daxproto.AtomicInc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result[0] != 1 {
		t.Fatalf("after increment with no operand (implied delta 1) = %v, want 1 in low byte", result)
	}
}

// TestAtomicIncrementByDelta pins spec.md §8's testable property
// "atomic_op(INC, h, delta): post-value == pre-value + delta" and its
// §4 end-to-end scenario (12, inc by 2, expect 14).
func TestAtomicIncrementByDelta(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Test1", "DINT", 1)
	h, _ := db.HandleForTag(idx)
	if err := db.Write(h, []byte{12, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	result, err := db.AtomicOp(h, daxproto.AtomicInc, []byte{2, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if result[0] != 14 {
		t.Fatalf("after atomic_op(INC, delta=2) on pre-value 12 = %v, want 14", result)
	}
}

func TestQueueTagDropOldestOnOverflow(t *testing.T) {
	db := newTestDB()
	idx, err := db.AddQueue("Q", "DINT", 1, 2)
	if err != nil {
		t.Fatal(err)
	}

	h, _ := db.HandleForTag(idx)
	for i := byte(0); i < 3; i++ {
		if err := db.Write(h, []byte{i, 0, 0, 0}); err != nil {
			t.Fatal(err)
		}
	}
	// capacity 2: element 0 should have been dropped, 1 and 2 remain.
	first, err := db.Read(h)
	if err != nil {
		t.Fatal(err)
	}
	if first[0] != 1 {
		t.Fatalf("oldest surviving element = %v, want starting with 1", first)
	}
}
