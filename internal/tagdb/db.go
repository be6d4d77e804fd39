// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package tagdb is the tag server's in-memory database: the type
// registry, the dense tag array, and the read/write path that fans a
// single write out through the override, event, and mapping layers
// under one coarse read/write lock (spec.md §3, §4.1, §5).
package tagdb

import (
	"strings"
	"sync"
	"time"

	"github.com/opendax/daxd/internal/events"
	"github.com/opendax/daxd/internal/mapping"
	"github.com/opendax/daxd/pkg/daxproto"
)

// DB is the tag server's whole shared mutable state. A single
// sync.RWMutex guards the tag array, name index, CDT registry, event
// engine, and mapping engine together -- the coarse-grained design
// spec.md §5 calls for, chosen because tag writes routinely fan out
// into event evaluation and mapping propagation that must observe a
// consistent snapshot of all of it.
type DB struct {
	mu sync.RWMutex

	tags     []*Tag
	byName   map[string]uint32
	growInc  uint32

	cdts      []*CDT
	cdtByName map[string]uint32

	events   *events.Engine
	mappings *mapping.Engine

	// overrideOwner tracks which connection stored (OverrideAdd) the shadow value
	// currently stored on each tag index, so cleanupConnection can
	// free overrides the same way it frees events and mappings
	// (spec.md §5: overrides are per-connection). override.Shadow
	// itself carries no owner -- it lives on the Tag by value and is
	// looked at by every connection's reads/writes, so ownership is
	// tracked here instead of inside the shadow.
	overrideOwner map[uint32]uint32

	startTime       time.Time
	serverVersion   string
	queueDefaultCap int
}

// Options configures a new DB, sourced from internal/config.Config.
type Options struct {
	StartSize       uint32
	GrowInc         uint32
	QueueDefaultCap uint32
	ServerVersion   string
}

// New returns an initialized DB with its three virtual tags already
// registered at indices 0-2.
func New(opt Options) *DB {
	if opt.StartSize == 0 {
		opt.StartSize = 1024
	}
	if opt.GrowInc == 0 {
		opt.GrowInc = 1024
	}
	if opt.QueueDefaultCap == 0 {
		opt.QueueDefaultCap = 32
	}
	db := &DB{
		tags:            make([]*Tag, 0, opt.StartSize),
		byName:          make(map[string]uint32),
		growInc:         opt.GrowInc,
		cdtByName:       make(map[string]uint32),
		events:          events.NewEngine(),
		mappings:        mapping.NewEngine(),
		overrideOwner:   make(map[uint32]uint32),
		startTime:       time.Now(),
		serverVersion:   opt.ServerVersion,
		queueDefaultCap: int(opt.QueueDefaultCap),
	}
	db.addVirtualTags()
	return db
}

// Events returns the event engine, for internal/dispatch to wire
// EVENT_ADD/DEL/MOD requests against. Callers must hold db's lock for
// any mutation, matching Engine's own locking contract.
func (db *DB) Events() *events.Engine { return db.events }

// Mappings returns the mapping engine, for MAP_ADD/DEL/GET requests.
func (db *DB) Mappings() *mapping.Engine { return db.mappings }

// Lock/Unlock/RLock/RUnlock expose the single coarse lock to
// internal/dispatch so group and override operations that need to
// combine several DB calls atomically can bracket them explicitly.
func (db *DB) Lock()    { db.mu.Lock() }
func (db *DB) Unlock()  { db.mu.Unlock() }
func (db *DB) RLock()   { db.mu.RLock() }
func (db *DB) RUnlock() { db.mu.RUnlock() }

// maxNameLen is spec.md §3's "max length 32" bound on a tag or CDT name.
const maxNameLen = 32

func isValidName(name string) bool {
	if name == "" || len(name) > maxNameLen || strings.HasPrefix(name, "_") {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Add registers a new tag, returning its index. name must not begin
// with an underscore (that namespace is reserved for virtual tags) and
// must not already exist.
func (db *DB) Add(name string, typeName string, count uint32) (uint32, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addLocked(name, typeName, count, false, 0, false)
}

// AddRetain registers a new tag flagged RETAIN (spec.md §3, §4.6): the
// retention layer persists its value across restarts, unlike a plain
// Add tag whose value is lost when daxd stops.
func (db *DB) AddRetain(name string, typeName string, count uint32) (uint32, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addLocked(name, typeName, count, false, 0, true)
}

// AddQueue registers a new QUEUE-attributed tag (spec.md §4.1 "Queue
// tags"): reads pop the oldest pending element instead of returning
// the live payload, and writes push rather than overwrite. capacity of
// zero uses the server's configured default.
func (db *DB) AddQueue(name, typeName string, count, capacity uint32) (uint32, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addLocked(name, typeName, count, true, capacity, false)
}

func (db *DB) addLocked(name, typeName string, count uint32, queued bool, queueCap uint32, retain bool) (uint32, error) {
	if !isValidName(name) {
		return 0, daxproto.ARG
	}
	if count == 0 {
		count = 1
	}
	t, kind, err := db.resolveType(typeName)
	if err != nil {
		return 0, err
	}
	if queued {
		t = t.WithQueue()
	}

	// spec.md §3 "Lifecycle": tag_add is idempotent when the request
	// exactly matches the existing tag's type and count; anything else
	// re-using the name is a conflicting re-add.
	if existing, exists := db.byName[name]; exists {
		prior := db.tags[existing]
		if prior.Type == t && prior.Count == count {
			return existing, nil
		}
		return 0, daxproto.TAG_DUPL
	}
	tag := &Tag{
		Name:  name,
		Type:  t,
		Kind:  kind,
		Count: count,
	}
	if retain {
		tag.Attr |= AttrRetain
	}
	tag.Payload = make([]byte, tag.ByteLen())
	if t.IsQueue() {
		qcap := int(queueCap)
		if qcap == 0 {
			qcap = db.queueDefaultCap
		}
		tag.Queue = newQueue(qcap)
	}

	idx := uint32(len(db.tags))
	if len(db.tags) == cap(db.tags) {
		grown := make([]*Tag, len(db.tags), uint32(cap(db.tags))+db.growInc)
		copy(grown, db.tags)
		db.tags = grown
	}
	tag.Index = idx
	db.tags = append(db.tags, tag)
	db.byName[name] = idx
	return idx, nil
}

// Del removes a tag by index. Its slot is tombstoned (Payload set to
// nil) rather than compacted so no later tag ever inherits its index;
// outstanding handles, events, and mappings referencing it will simply
// fail with NOTFOUND from then on.
func (db *DB) Del(index uint32) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	tag, err := db.lookupLocked(index)
	if err != nil {
		return err
	}
	if tag.Attr&AttrVirtual != 0 {
		return daxproto.READONLY
	}
	delete(db.byName, tag.Name)
	tag.Payload = nil
	tag.Queue = nil
	return nil
}

func (db *DB) lookupLocked(index uint32) (*Tag, error) {
	if int(index) >= len(db.tags) {
		return nil, daxproto.BADINDEX
	}
	tag := db.tags[index]
	if tag.deleted() {
		return nil, daxproto.NOTFOUND
	}
	return tag, nil
}

// GetByName returns a copy of a tag's descriptor (not its live
// payload) by name.
func (db *DB) GetByName(name string) (Tag, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.byName[name]
	if !ok {
		return Tag{}, daxproto.NOTFOUND
	}
	tag, err := db.lookupLocked(idx)
	if err != nil {
		return Tag{}, err
	}
	return *tag, nil
}

// GetByIndex returns a copy of a tag's descriptor by index.
func (db *DB) GetByIndex(index uint32) (Tag, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	tag, err := db.lookupLocked(index)
	if err != nil {
		return Tag{}, err
	}
	return *tag, nil
}

// List returns a snapshot of every live tag's descriptor, for TAG_LIST
// and daxctl.
func (db *DB) List() []Tag {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]Tag, 0, len(db.tags))
	for _, t := range db.tags {
		if !t.deleted() {
			out = append(out, *t)
		}
	}
	return out
}

// HandleForTag returns a Handle spanning a whole tag's payload, for
// requests that address a tag by index rather than by name-based
// address string.
func (db *DB) HandleForTag(index uint32) (daxproto.Handle, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	tag, err := db.lookupLocked(index)
	if err != nil {
		return daxproto.Handle{}, err
	}
	return daxproto.Handle{Index: index, Type: tag.Type, Count: tag.Count, Size: tag.ByteLen()}, nil
}

// AddCDT declares a new custom data type from an ordered member list.
func (db *DB) AddCDT(name string, members []CDTMember) (uint32, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !isValidName(name) {
		return 0, daxproto.ARG
	}
	if _, exists := db.cdtByName[name]; exists {
		return 0, daxproto.TAG_DUPL
	}
	idx := uint32(len(db.cdts))
	cdt, err := newCDT(idx, name, members)
	if err != nil {
		return 0, err
	}
	db.cdts = append(db.cdts, cdt)
	db.cdtByName[name] = idx
	return idx, nil
}

// GetCDT returns the CDT registered under name.
func (db *DB) GetCDT(name string) (*CDT, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.cdtByName[name]
	if !ok {
		return nil, daxproto.NOTFOUND
	}
	return db.cdts[idx], nil
}

// GetCDTByIndex returns the CDT with the given registry index.
func (db *DB) GetCDTByIndex(idx uint32) (*CDT, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if int(idx) >= len(db.cdts) {
		return nil, daxproto.NOTFOUND
	}
	return db.cdts[idx], nil
}
