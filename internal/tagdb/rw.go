// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import "github.com/opendax/daxd/pkg/daxproto"

// Read returns the bytes a handle addresses. Reads take the exclusive
// lock rather than a shared one because a read against a QUEUE tag
// pops an element (mutating state) and a read against a virtual tag
// recomputes its payload in place; splitting those into a separate
// read-only path would fragment the single coarse lock spec.md §5
// calls for without buying real concurrency, since every write already
// needs the exclusive lock anyway.
func (db *DB) Read(h daxproto.Handle) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.readLocked(h)
}

func (db *DB) readLocked(h daxproto.Handle) ([]byte, error) {
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return nil, err
	}

	if tag.Attr&AttrVirtual != 0 {
		db.refreshVirtual(tag)
	}

	if tag.Queue != nil {
		data, missed, ok := tag.Queue.pop()
		if !ok {
			return nil, daxproto.EMPTY
		}
		_ = missed // surfaced to the client via a future EVENT_ADD on queue tags; plain reads just drop it
		return data, nil
	}

	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return nil, daxproto.ARG
	}
	if tag.Override.Armed(h.ByteOffset, h.BitOffset, int(h.Size)) {
		return append([]byte(nil), tag.Override.Data()...), nil
	}
	return append([]byte(nil), tag.Payload[h.ByteOffset:end]...), nil
}

// ReadHandle adapts Read to the group.TagDB interface.
func (db *DB) ReadHandle(h daxproto.Handle) ([]byte, error) { return db.Read(h) }

// Write stores data at the region h addresses, then evaluates events
// and propagates mappings rooted at h's tag, all under the same
// exclusive lock acquisition so the whole fan-out is atomic with
// respect to any other reader or writer.
func (db *DB) Write(h daxproto.Handle, data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	visited := map[uint32]bool{h.Index: true}
	return db.writeLocked(h, data, visited)
}

// WriteRegionLocked implements mapping.Writer: it is called by the
// mapping engine while db's lock is already held by the write that
// triggered propagation, so it must not try to re-acquire it.
func (db *DB) WriteRegionLocked(h daxproto.Handle, data []byte, visited map[uint32]bool) error {
	return db.writeLocked(h, data, visited)
}

// WriteHandle adapts Write to the group.TagDB interface.
func (db *DB) WriteHandle(h daxproto.Handle, data []byte) error { return db.Write(h, data) }

func (db *DB) writeLocked(h daxproto.Handle, data []byte, visited map[uint32]bool) error {
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	if tag.Attr&(AttrReadOnly|AttrVirtual) != 0 {
		return daxproto.READONLY
	}
	if uint32(len(data)) != h.Size {
		return daxproto.ARG
	}

	if tag.Queue != nil {
		tag.Queue.push(data)
		db.events.Evaluate(tag.Index, 0, nil, data)
		return nil
	}

	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}

	old := append([]byte(nil), tag.Payload[h.ByteOffset:end]...)
	copy(tag.Payload[h.ByteOffset:end], data)

	db.events.Evaluate(tag.Index, h.ByteOffset, old, data)
	db.mappings.Propagate(db, tag.Index, h.ByteOffset, data, visited)
	return nil
}

// MaskWrite updates only the bits set in mask, leaving the rest of the
// region untouched (spec.md §4.1's tag_write_mask).
func (db *DB) MaskWrite(h daxproto.Handle, data, mask []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	if tag.Attr&(AttrReadOnly|AttrVirtual) != 0 {
		return daxproto.READONLY
	}
	if uint32(len(data)) != h.Size || uint32(len(mask)) != h.Size {
		return daxproto.ARG
	}
	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}

	old := append([]byte(nil), tag.Payload[h.ByteOffset:end]...)
	merged := make([]byte, h.Size)
	for i := range merged {
		merged[i] = (old[i] &^ mask[i]) | (data[i] & mask[i])
	}
	copy(tag.Payload[h.ByteOffset:end], merged)

	db.events.Evaluate(tag.Index, h.ByteOffset, old, merged)
	visited := map[uint32]bool{h.Index: true}
	db.mappings.Propagate(db, tag.Index, h.ByteOffset, merged, visited)
	return nil
}

// OverrideAdd stores a shadow value over h's region without arming it
// (spec.md §4.5's override_add): the value is held ready for a later
// OverrideSet, but reads still see the tag's real payload until then.
// owner is the connection id that created the shadow, recorded so
// cleanupConnection can free it if that connection disconnects without
// an explicit OverrideDel (spec.md §5).
func (db *DB) OverrideAdd(owner uint32, h daxproto.Handle, data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	if uint32(len(data)) != h.Size {
		return daxproto.ARG
	}
	if h.ByteOffset+h.Size > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}
	tag.Override.Store(h.ByteOffset, h.BitOffset, data)
	db.overrideOwner[h.Index] = owner
	return nil
}

// OverrideSet arms h's previously-stored shadow (override_set), firing
// a CHANGE event if this transitions the region from disarmed to armed.
func (db *DB) OverrideSet(h daxproto.Handle) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}
	real := append([]byte(nil), tag.Payload[h.ByteOffset:end]...)
	if tag.Override.Arm() {
		db.events.Evaluate(tag.Index, h.ByteOffset, real, tag.Override.Data())
	}
	return nil
}

// OverrideClear disarms h's override while retaining the shadow value
// (spec.md §4.5's override_clr), firing a CHANGE event back to the
// tag's real value if it had been armed.
func (db *DB) OverrideClear(h daxproto.Handle) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}
	shadow := append([]byte(nil), tag.Override.Data()...)
	if tag.Override.Disarm() {
		db.events.Evaluate(tag.Index, h.ByteOffset, shadow, tag.Payload[h.ByteOffset:end])
	}
	return nil
}

// OverrideDel drops h's shadow value entirely (spec.md §4.5's
// override_del), firing a CHANGE event back to the tag's real value if
// it had been armed.
func (db *DB) OverrideDel(h daxproto.Handle) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return err
	}
	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return daxproto.ARG
	}
	shadow := append([]byte(nil), tag.Override.Data()...)
	if tag.Override.Drop() {
		db.events.Evaluate(tag.Index, h.ByteOffset, shadow, tag.Payload[h.ByteOffset:end])
	}
	delete(db.overrideOwner, h.Index)
	return nil
}

// ClearOverridesOwnedByLocked drops every override shadow stored by
// owner, for a caller that already holds db's lock -- internal/dispatch
// uses this from cleanupConnection alongside Events().DeleteOwnedBy and
// Mappings().DeleteOwnedBy (spec.md §5: "overrides are per-connection
// ... on disconnect, owned resources are freed").
func (db *DB) ClearOverridesOwnedByLocked(owner uint32) {
	for idx, o := range db.overrideOwner {
		if o != owner {
			continue
		}
		if int(idx) < len(db.tags) {
			if tag := db.tags[idx]; !tag.deleted() {
				tag.Override.Drop()
			}
		}
		delete(db.overrideOwner, idx)
	}
}

// AtomicOp applies an in-place read-modify-write integer operation to
// h's region (spec.md §4.8's supplemented atomic_op), returning the
// value after the operation.
func (db *DB) AtomicOp(h daxproto.Handle, op daxproto.AtomicOp, operand []byte) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(h.Index)
	if err != nil {
		return nil, err
	}
	if tag.Attr&(AttrReadOnly|AttrVirtual) != 0 {
		return nil, daxproto.READONLY
	}
	end := h.ByteOffset + h.Size
	if end > uint32(len(tag.Payload)) {
		return nil, daxproto.ARG
	}
	if len(operand) != 0 && uint32(len(operand)) != h.Size {
		return nil, daxproto.ARG
	}

	old := append([]byte(nil), tag.Payload[h.ByteOffset:end]...)
	result, err := applyAtomic(op, old, operand)
	if err != nil {
		return nil, err
	}
	copy(tag.Payload[h.ByteOffset:end], result)

	db.events.Evaluate(tag.Index, h.ByteOffset, old, result)
	visited := map[uint32]bool{h.Index: true}
	db.mappings.Propagate(db, tag.Index, h.ByteOffset, result, visited)
	return append([]byte(nil), result...), nil
}
