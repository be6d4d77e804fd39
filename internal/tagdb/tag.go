// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"github.com/opendax/daxd/internal/override"
	"github.com/opendax/daxd/pkg/daxproto"
)

// Attr holds the boolean tag attributes from spec.md §4.1 that do not
// fit in the wire Type code (READONLY is a tag-level property, not a
// per-value one, so it lives here rather than stealing another Type
// bit).
type Attr uint32

const (
	AttrReadOnly Attr = 1 << iota
	AttrVirtual
	AttrRetain
)

// Tag is one entry of the dense tag array. Its Index never changes once
// assigned and is never reused by a later tag_add, even after tag_del --
// a handle or mapping/event reference to a deleted tag fails with
// NOTFOUND instead of reaching a later tag.
type Tag struct {
	Index uint32
	Name  string
	Type  daxproto.Type
	Kind  daxproto.Kind
	Count uint32
	Attr  Attr

	Payload []byte // nil for a deleted tag

	Queue    *queue // non-nil only if Type.IsQueue()
	Override override.Shadow
}

// ByteLen returns the total payload size in bytes, rounding a BOOL
// array up to whole bytes.
func (t *Tag) ByteLen() uint32 {
	if t.Type.IsBool() {
		return (t.Count + 7) / 8
	}
	return uint32(t.Type.Bytes()) * t.Count
}

func (t *Tag) deleted() bool {
	return t.Payload == nil
}
