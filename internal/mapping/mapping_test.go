// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mapping

import (
	"testing"

	"github.com/opendax/daxd/pkg/daxproto"
)

type fakeWriter struct {
	writes []struct {
		h    daxproto.Handle
		data []byte
	}
}

func (w *fakeWriter) WriteRegionLocked(h daxproto.Handle, data []byte, visited map[uint32]bool) error {
	w.writes = append(w.writes, struct {
		h    daxproto.Handle
		data []byte
	}{h, append([]byte(nil), data...)})
	return nil
}

func TestAddRejectsShapeMismatch(t *testing.T) {
	e := NewEngine()
	src := daxproto.Handle{Index: 1, Size: 4}
	dst := daxproto.Handle{Index: 2, Size: 2}
	if _, err := e.Add(1, src, dst); err != daxproto.ARG {
		t.Fatalf("err = %v, want ARG", err)
	}
}

func TestPropagateWritesOverlappingRegion(t *testing.T) {
	e := NewEngine()
	src := daxproto.Handle{Index: 1, ByteOffset: 0, Size: 4}
	dst := daxproto.Handle{Index: 2, ByteOffset: 0, Size: 4}
	if _, err := e.Add(1, src, dst); err != nil {
		t.Fatal(err)
	}

	w := &fakeWriter{}
	e.Propagate(w, 1, 0, []byte{9, 9, 9, 9}, map[uint32]bool{1: true})
	if len(w.writes) != 1 || w.writes[0].h.Index != 2 {
		t.Fatalf("expected one write to dst tag, got %+v", w.writes)
	}
}

func TestPropagateSkipsVisited(t *testing.T) {
	e := NewEngine()
	src := daxproto.Handle{Index: 1, Size: 4}
	dst := daxproto.Handle{Index: 2, Size: 4}
	e.Add(1, src, dst)

	w := &fakeWriter{}
	visited := map[uint32]bool{1: true, 2: true}
	e.Propagate(w, 1, 0, []byte{1, 2, 3, 4}, visited)
	if len(w.writes) != 0 {
		t.Fatalf("expected propagation to a visited tag to be skipped, got %+v", w.writes)
	}
}

func TestDelRemovesMapping(t *testing.T) {
	e := NewEngine()
	id, _ := e.Add(1, daxproto.Handle{Index: 1, Size: 4}, daxproto.Handle{Index: 2, Size: 4})
	if !e.Del(id) {
		t.Fatal("Del reported false for an existing mapping")
	}
	if len(e.For(1)) != 0 {
		t.Fatal("mapping still present after Del")
	}
}

// TestDeleteOwnedByRemovesOnlyThatOwnersMappings mirrors
// group.Registry's equivalent test: disconnect cleanup must not
// touch mappings registered by a different connection.
func TestDeleteOwnedByRemovesOnlyThatOwnersMappings(t *testing.T) {
	e := NewEngine()
	id1, _ := e.Add(1, daxproto.Handle{Index: 1, Size: 4}, daxproto.Handle{Index: 2, Size: 4})
	id2, _ := e.Add(2, daxproto.Handle{Index: 3, Size: 4}, daxproto.Handle{Index: 4, Size: 4})

	e.DeleteOwnedBy(1)

	if _, ok := e.Get(id1); ok {
		t.Fatal("mapping owned by connection 1 should have been removed")
	}
	if _, ok := e.Get(id2); !ok {
		t.Fatal("mapping owned by connection 2 should still be present")
	}
	if len(e.For(1)) != 0 {
		t.Fatal("bySrc index still references a deleted owner-1 mapping")
	}
	if len(e.For(3)) != 1 {
		t.Fatal("bySrc index lost the surviving owner-2 mapping")
	}
}
