// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package group

import (
	"testing"

	"github.com/opendax/daxd/pkg/daxproto"
)

type fakeDB struct {
	values map[uint32][]byte
}

func (f *fakeDB) ReadHandle(h daxproto.Handle) ([]byte, error) {
	return f.values[h.Index], nil
}

func (f *fakeDB) WriteHandle(h daxproto.Handle, data []byte) error {
	f.values[h.Index] = append([]byte(nil), data...)
	return nil
}

func TestGroupReadConcatenatesInOrder(t *testing.T) {
	db := &fakeDB{values: map[uint32][]byte{
		1: {1, 2},
		2: {3, 4, 5},
	}}
	r := NewRegistry()
	id := r.Add(0, []daxproto.Handle{
		{Index: 1, Size: 2},
		{Index: 2, Size: 3},
	})

	got, err := r.Read(db, id)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("group read = %v, want %v", got, want)
		}
	}
}

func TestGroupWriteSplitsAcrossMembers(t *testing.T) {
	db := &fakeDB{values: map[uint32][]byte{}}
	r := NewRegistry()
	id := r.Add(0, []daxproto.Handle{
		{Index: 1, Size: 2},
		{Index: 2, Size: 2},
	})

	if err := r.Write(db, id, []byte{9, 9, 7, 7}); err != nil {
		t.Fatal(err)
	}
	if db.values[1][0] != 9 || db.values[2][0] != 7 {
		t.Fatalf("unexpected split values: %v", db.values)
	}
}

func TestGroupWriteRejectsWrongSize(t *testing.T) {
	db := &fakeDB{values: map[uint32][]byte{}}
	r := NewRegistry()
	id := r.Add(0, []daxproto.Handle{{Index: 1, Size: 2}})

	if err := r.Write(db, id, []byte{1}); err != daxproto.ARG {
		t.Fatalf("err = %v, want ARG", err)
	}
}

func TestDeleteOwnedByRemovesOnlyThatOwnersGroups(t *testing.T) {
	r := NewRegistry()
	id1 := r.Add(1, nil)
	id2 := r.Add(2, nil)
	r.DeleteOwnedBy(1)

	if _, ok := r.byID[id1]; ok {
		t.Fatal("group owned by 1 should have been removed")
	}
	if _, ok := r.byID[id2]; !ok {
		t.Fatal("group owned by 2 should still be present")
	}
}
