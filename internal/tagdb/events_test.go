// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"testing"

	"github.com/opendax/daxd/internal/events"
	"github.com/opendax/daxd/pkg/daxproto"
)

type captureSubscriber struct {
	got []events.Notification
}

func (c *captureSubscriber) Notify(n events.Notification) {
	c.got = append(c.got, n)
}

func TestChangeEventFiresOnWrite(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	h, _ := db.HandleForTag(idx)

	sub := &captureSubscriber{}
	db.Lock()
	db.Events().Add(&events.Event{TagIndex: idx, ByteOffset: 0, Size: 4, Kind: daxproto.EventChange, Owner: sub})
	db.Unlock()

	if err := db.Write(h, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := db.Write(h, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if len(sub.got) != 1 {
		t.Fatalf("got %d notifications, want 1 (first write only, second is unchanged)", len(sub.got))
	}
}

func TestGreaterEventFiresOnThreshold(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	h, _ := db.HandleForTag(idx)

	sub := &captureSubscriber{}
	db.Lock()
	db.Events().Add(&events.Event{
		TagIndex: idx, ByteOffset: 0, Size: 4,
		Kind: daxproto.EventGreater, ValueKind: daxproto.KindDint,
		Compare: []byte{10, 0, 0, 0}, Owner: sub,
	})
	db.Unlock()

	db.Write(h, []byte{5, 0, 0, 0})
	db.Write(h, []byte{20, 0, 0, 0})
	db.Write(h, []byte{30, 0, 0, 0})
	if len(sub.got) != 1 {
		t.Fatalf("got %d notifications, want exactly 1 for the write crossing the threshold (staying above it must not re-fire)", len(sub.got))
	}
}

func TestMappingPropagatesWrite(t *testing.T) {
	db := newTestDB()
	srcIdx, _ := db.Add("Src", "DINT", 1)
	dstIdx, _ := db.Add("Dst", "DINT", 1)
	srcH, _ := db.HandleForTag(srcIdx)
	dstH, _ := db.HandleForTag(dstIdx)

	db.Lock()
	if _, err := db.Mappings().Add(0, srcH, dstH); err != nil {
		t.Fatal(err)
	}
	db.Unlock()

	if err := db.Write(srcH, []byte{7, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	got, err := db.Read(dstH)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 7 {
		t.Fatalf("mapped destination = %v, want [7 0 0 0]", got)
	}
}

func TestMappingCycleDoesNotHang(t *testing.T) {
	db := newTestDB()
	aIdx, _ := db.Add("A", "DINT", 1)
	bIdx, _ := db.Add("B", "DINT", 1)
	aH, _ := db.HandleForTag(aIdx)
	bH, _ := db.HandleForTag(bIdx)

	db.Lock()
	db.Mappings().Add(0, aH, bH)
	db.Mappings().Add(0, bH, aH)
	db.Unlock()

	if err := db.Write(aH, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	// A->B->A: B must end up with A's new value, and the second leg of
	// the cycle (B->A) must be suppressed by the visited-set guard.
	got, _ := db.Read(bH)
	if got[0] != 1 {
		t.Fatalf("B after cyclic propagation = %v, want [1 0 0 0]", got)
	}
}

func TestOverrideArmMasksRead(t *testing.T) {
	db := newTestDB()
	idx, _ := db.Add("Dummy", "DINT", 1)
	h, _ := db.HandleForTag(idx)
	db.Write(h, []byte{1, 0, 0, 0})

	if err := db.OverrideAdd(0, h, []byte{9, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := db.OverrideSet(h); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Read(h)
	if got[0] != 9 {
		t.Fatalf("Read under override = %v, want [9 0 0 0]", got)
	}

	if err := db.OverrideClear(h); err != nil {
		t.Fatal(err)
	}
	got, _ = db.Read(h)
	if got[0] != 1 {
		t.Fatalf("Read after clear = %v, want real value [1 0 0 0]", got)
	}
}
