// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mapping implements the directed tag-to-tag copy rules of
// spec.md §4.3: a write to a source region is synchronously copied to
// one or more destination regions, which may themselves have further
// mappings, propagated depth-first. Engine keeps no lock of its own --
// internal/tagdb calls it only while holding its own single
// read/write lock, so propagation (including the visited-set cycle
// guard) all happens atomically with the write that triggered it.
package mapping

import "github.com/opendax/daxd/pkg/daxproto"

// Mapping is one registered src -> dst copy rule.
type Mapping struct {
	ID    uint32
	Owner uint32 // owning connection id, for cleanup on disconnect
	Src   daxproto.Handle
	Dst   daxproto.Handle
}

// Engine owns the set of active mappings, indexed by source tag so a
// write can find every rule it triggers.
type Engine struct {
	nextID uint32
	byID   map[uint32]*Mapping
	bySrc  map[uint32][]*Mapping
}

// NewEngine returns an empty Engine.
func NewEngine() *Engine {
	return &Engine{byID: make(map[uint32]*Mapping), bySrc: make(map[uint32][]*Mapping)}
}

// Add registers a mapping after checking that the source and
// destination regions are the same byte size, per spec.md §4.3's
// "ARG on shape mismatch" edge case. owner is the connection id the
// mapping belongs to, for cleanup when that connection disconnects.
func (e *Engine) Add(owner uint32, src, dst daxproto.Handle) (uint32, error) {
	if src.Size != dst.Size {
		return 0, daxproto.ARG
	}
	e.nextID++
	m := &Mapping{ID: e.nextID, Owner: owner, Src: src, Dst: dst}
	e.byID[m.ID] = m
	e.bySrc[src.Index] = append(e.bySrc[src.Index], m)
	return m.ID, nil
}

// Del removes the mapping with the given ID.
func (e *Engine) Del(id uint32) bool {
	m, ok := e.byID[id]
	if !ok {
		return false
	}
	delete(e.byID, id)
	list := e.bySrc[m.Src.Index]
	for i, v := range list {
		if v.ID == id {
			e.bySrc[m.Src.Index] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// DeleteOwnedBy removes every mapping belonging to owner (spec.md §5:
// "mappings are per-connection... on disconnect, owned resources are
// freed"), mirroring group.Registry.DeleteOwnedBy.
func (e *Engine) DeleteOwnedBy(owner uint32) {
	for id, m := range e.byID {
		if m.Owner != owner {
			continue
		}
		delete(e.byID, id)
		list := e.bySrc[m.Src.Index]
		for i, v := range list {
			if v.ID == id {
				e.bySrc[m.Src.Index] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Get returns the mapping with the given ID.
func (e *Engine) Get(id uint32) (*Mapping, bool) {
	m, ok := e.byID[id]
	return m, ok
}

// For returns every mapping rooted at the given source tag index.
func (e *Engine) For(srcIndex uint32) []*Mapping {
	return e.bySrc[srcIndex]
}

// Writer is the callback internal/tagdb supplies so Engine never needs
// to import it back: propagation must reach into the tag database's
// raw write path without re-acquiring its lock.
type Writer interface {
	WriteRegionLocked(h daxproto.Handle, data []byte, visited map[uint32]bool) error
}

// Propagate applies every mapping rooted at srcIndex whose region
// overlaps [offset, offset+len(data)), writing the overlapping slice
// through w. visited guards against A->B->A mapping cycles: a tag
// index already in visited is skipped instead of recursing again.
func (e *Engine) Propagate(w Writer, srcIndex uint32, offset uint32, data []byte, visited map[uint32]bool) {
	for _, m := range e.bySrc[srcIndex] {
		lo := int(m.Src.ByteOffset) - int(offset)
		hi := lo + int(m.Src.Size)
		if lo < 0 {
			lo = 0
		}
		if hi > len(data) {
			hi = len(data)
		}
		if lo >= hi {
			continue
		}
		if visited[m.Dst.Index] {
			continue
		}
		visited[m.Dst.Index] = true
		_ = w.WriteRegionLocked(m.Dst, data[lo:hi], visited)
	}
}
