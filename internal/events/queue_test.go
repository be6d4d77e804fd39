// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package events

import "testing"

func TestQueueGrowsBeforeCap(t *testing.T) {
	q := NewQueue(16)
	for i := 0; i < 10; i++ {
		q.Push(Notification{EventID: uint32(i)})
	}
	if q.Len() != 10 {
		t.Fatalf("Len = %d, want 10", q.Len())
	}
	n, ok := q.Pop()
	if !ok || n.EventID != 0 {
		t.Fatalf("Pop = %+v, ok=%v, want EventID 0", n, ok)
	}
}

func TestQueueDropsOldestAtCap(t *testing.T) {
	q := NewQueue(4)
	for i := 0; i < 8; i++ {
		q.Push(Notification{EventID: uint32(i)})
	}
	if q.Len() != 4 {
		t.Fatalf("Len = %d, want capped at 4", q.Len())
	}
	n, ok := q.Pop()
	if !ok {
		t.Fatal("expected a notification")
	}
	if n.BytesMissed == 0 {
		t.Fatal("expected BytesMissed to report the dropped entries")
	}
}

func TestQueueEmptyPop(t *testing.T) {
	q := NewQueue(4)
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue should report ok=false")
	}
}
