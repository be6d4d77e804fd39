// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package events

import (
	"github.com/opendax/daxd/pkg/daxproto"
)

// Engine owns the full set of active event subscriptions, indexed both
// by ID (for EVENT_DEL/EVENT_MOD) and by tag index (for evaluation on
// write).
type Engine struct {
	nextID uint32
	byID   map[uint32]*Event
	byTag  map[uint32][]*Event
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{
		byID:  make(map[uint32]*Event),
		byTag: make(map[uint32][]*Event),
	}
}

// Add registers ev, assigning it a fresh ID, and returns that ID.
func (e *Engine) Add(ev *Event) uint32 {
	e.nextID++
	ev.ID = e.nextID
	e.byID[ev.ID] = ev
	e.byTag[ev.TagIndex] = append(e.byTag[ev.TagIndex], ev)
	return ev.ID
}

// Del removes the event with the given ID, reporting whether it
// existed.
func (e *Engine) Del(id uint32) bool {
	ev, ok := e.byID[id]
	if !ok {
		return false
	}
	delete(e.byID, id)
	list := e.byTag[ev.TagIndex]
	for i, v := range list {
		if v.ID == id {
			e.byTag[ev.TagIndex] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the event with the given ID.
func (e *Engine) Get(id uint32) (*Event, bool) {
	ev, ok := e.byID[id]
	return ev, ok
}

// Mod replaces the kind/compare/deadband of an existing event without
// reassigning its ID or owner.
func (e *Engine) Mod(id uint32, kind daxproto.EventKind, compare []byte, deadband float64) bool {
	ev, ok := e.byID[id]
	if !ok {
		return false
	}
	ev.Kind = kind
	ev.Compare = compare
	ev.Deadband = deadband
	ev.hasLast = false
	return true
}

// DeleteOwnedBy removes every event belonging to owner, used when a
// connection disconnects (spec.md §4.6 resource cleanup).
func (e *Engine) DeleteOwnedBy(owner Subscriber) {
	for id, ev := range e.byID {
		if ev.Owner == owner {
			e.Del(id)
		}
	}
}

// Evaluate runs every event watching a region overlapping [offset,
// offset+len(newData)) against the write, delivering a Notification to
// each match's owner. old is nil for a QUEUE tag push, which has no
// previous value.
func (e *Engine) Evaluate(tagIndex uint32, offset uint32, old, newData []byte) {
	for _, ev := range e.byTag[tagIndex] {
		if !ev.overlaps(offset, len(newData)) {
			continue
		}
		regionOld, regionNew := sliceRegion(ev, offset, old), sliceRegion(ev, offset, newData)
		firstWrite := !ev.hasLast
		if matches(ev, regionOld, regionNew, firstWrite) {
			ev.Owner.Notify(Notification{
				EventID:  ev.ID,
				TagIndex: tagIndex,
				Data:     append([]byte(nil), regionNew...),
			})
		}
		if regionNew != nil {
			ev.last = append([]byte(nil), regionNew...)
			ev.hasLast = true
		}
	}
}

// sliceRegion extracts the bytes of a write that fall within ev's
// watched region, given the write started at byte offset wOff. Returns
// nil if data is nil (no prior value to compare against) or the
// regions don't actually overlap (should not happen given overlaps was
// already checked, but kept defensive against offset arithmetic bugs).
func sliceRegion(ev *Event, wOff uint32, data []byte) []byte {
	if data == nil {
		return nil
	}
	lo := int(ev.ByteOffset) - int(wOff)
	hi := lo + ev.Size
	if lo < 0 {
		lo = 0
	}
	if hi > len(data) {
		hi = len(data)
	}
	if lo >= hi || lo > len(data) {
		return nil
	}
	return data[lo:hi]
}
