// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package group implements ordered tag-handle bundles (spec.md §4.4):
// a single group_read or group_write call touches every member handle
// in declaration order, concatenating their bytes into one buffer.
// Groups provide batching convenience only -- no atomicity across
// members, so each member is read or written through the owning tag
// database's normal, independently-locked Read/Write path.
package group

import "github.com/opendax/daxd/pkg/daxproto"

// TagDB is the subset of internal/tagdb.DB a group needs to fan a
// bundled read or write out across its members.
type TagDB interface {
	ReadHandle(h daxproto.Handle) ([]byte, error)
	WriteHandle(h daxproto.Handle, data []byte) error
}

// Group is one registered ordered bundle of handles.
type Group struct {
	ID      uint32
	Owner   uint32 // owning connection id, for cleanup on disconnect
	Handles []daxproto.Handle
	size    uint32
}

// Registry owns the set of active groups for one tag database.
type Registry struct {
	nextID uint32
	byID   map[uint32]*Group
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Group)}
}

// Add registers a new group over the given handles, in order.
func (r *Registry) Add(owner uint32, handles []daxproto.Handle) uint32 {
	r.nextID++
	var total uint32
	for _, h := range handles {
		total += h.Size
	}
	g := &Group{ID: r.nextID, Owner: owner, Handles: append([]daxproto.Handle(nil), handles...), size: total}
	r.byID[g.ID] = g
	return g.ID
}

// Del removes the group with the given ID.
func (r *Registry) Del(id uint32) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	return true
}

// DeleteOwnedBy removes every group belonging to owner.
func (r *Registry) DeleteOwnedBy(owner uint32) {
	for id, g := range r.byID {
		if g.Owner == owner {
			delete(r.byID, id)
		}
	}
}

// Read concatenates a fresh read of every member handle, in order,
// into one buffer.
func (r *Registry) Read(db TagDB, id uint32) ([]byte, error) {
	g, ok := r.byID[id]
	if !ok {
		return nil, daxproto.NOTFOUND
	}
	buf := make([]byte, 0, g.size)
	for _, h := range g.Handles {
		data, err := db.ReadHandle(h)
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
	}
	return buf, nil
}

// Write splits data across the group's member handles, in order, and
// writes each slice independently. Returns ARG if data's length
// doesn't match the group's total size.
func (r *Registry) Write(db TagDB, id uint32, data []byte) error {
	g, ok := r.byID[id]
	if !ok {
		return daxproto.NOTFOUND
	}
	if uint32(len(data)) != g.size {
		return daxproto.ARG
	}
	var off uint32
	for _, h := range g.Handles {
		if err := db.WriteHandle(h, data[off:off+h.Size]); err != nil {
			return err
		}
		off += h.Size
	}
	return nil
}
