// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"encoding/binary"
	"time"

	"github.com/opendax/daxd/pkg/daxproto"
)

// Virtual tags (spec.md §4.1 "Virtual tags") live at fixed low indices
// so a client can address them without a tag_get round trip. They are
// read-only and their payload is recomputed on every read rather than
// stored.
const (
	VirtualTime          = 0
	VirtualStartTime     = 1
	VirtualServerVersion = 2
	firstUserIndex       = 3

	serverVersionLen = 32
)

func (db *DB) addVirtualTags() {
	db.addBuiltin(VirtualTime, "_time", daxproto.LINT, daxproto.KindLint, 1)
	db.addBuiltin(VirtualStartTime, "_starttime", daxproto.LINT, daxproto.KindLint, 1)
	db.addBuiltin(VirtualServerVersion, "_server_version", daxproto.SINT, daxproto.KindSint, serverVersionLen)
}

func (db *DB) addBuiltin(index uint32, name string, t daxproto.Type, kind daxproto.Kind, count uint32) {
	tag := &Tag{
		Index: index,
		Name:  name,
		Type:  t,
		Kind:  kind,
		Count: count,
		Attr:  AttrVirtual | AttrReadOnly,
	}
	tag.Payload = make([]byte, tag.ByteLen())
	db.tags = append(db.tags, tag)
	db.byName[name] = index
}

// refreshVirtual recomputes a virtual tag's payload in place just
// before it is read.
func (db *DB) refreshVirtual(tag *Tag) {
	switch tag.Index {
	case VirtualTime:
		binary.LittleEndian.PutUint64(tag.Payload, uint64(time.Now().UnixMilli()))
	case VirtualStartTime:
		binary.LittleEndian.PutUint64(tag.Payload, uint64(db.startTime.UnixMilli()))
	case VirtualServerVersion:
		for i := range tag.Payload {
			tag.Payload[i] = 0
		}
		copy(tag.Payload, db.serverVersion)
	}
}
