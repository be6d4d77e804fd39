// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tagdb

import (
	"strconv"
	"strings"

	"github.com/opendax/daxd/pkg/daxproto"
)

// ParseHandle resolves an address string into a Handle (spec.md §3
// "Handle" / §4.1 address syntax): a tag name, optionally followed by
// an array index in brackets, followed by zero or more dotted member
// accesses into nested custom data types, each themselves optionally
// indexed -- "Dummy[5]", "foo[2].bar[3]", or a bare "Dummy.2" bit
// index into a non-custom scalar tag.
func (db *DB) ParseHandle(addr string) (daxproto.Handle, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.parseHandleLocked(addr)
}

// ParseHandleLocked is ParseHandle for a caller that already holds db's
// lock (shared or exclusive) -- internal/dispatch uses it to resolve a
// whole batch of group-member addresses under one lock acquisition
// instead of one RLock/RUnlock round trip per address.
func (db *DB) ParseHandleLocked(addr string) (daxproto.Handle, error) {
	return db.parseHandleLocked(addr)
}

func (db *DB) lookupCDTLocked(idx uint32) (*CDT, error) {
	if int(idx) >= len(db.cdts) {
		return nil, daxproto.NOTFOUND
	}
	return db.cdts[idx], nil
}

// splitIndex pulls a trailing "[n]" array index off an address token,
// returning the bare name and the index if present.
func splitIndex(tok string) (string, *uint32, error) {
	i := strings.IndexByte(tok, '[')
	if i < 0 {
		return tok, nil, nil
	}
	if !strings.HasSuffix(tok, "]") {
		return "", nil, daxproto.PARSE
	}
	n, err := strconv.ParseUint(tok[i+1:len(tok)-1], 10, 32)
	if err != nil {
		return "", nil, daxproto.PARSE
	}
	idx := uint32(n)
	return tok[:i], &idx, nil
}

func (db *DB) parseHandleLocked(addr string) (daxproto.Handle, error) {
	if addr == "" {
		return daxproto.Handle{}, daxproto.PARSE
	}
	parts := strings.Split(addr, ".")

	name, idx, err := splitIndex(parts[0])
	if err != nil {
		return daxproto.Handle{}, err
	}
	tagIdx, ok := db.byName[name]
	if !ok {
		return daxproto.Handle{}, daxproto.NOTFOUND
	}
	tag := db.tags[tagIdx]
	if tag.deleted() {
		return daxproto.Handle{}, daxproto.NOTFOUND
	}

	h := daxproto.Handle{Index: tagIdx, Type: tag.Type, Count: tag.Count}
	elemBytes := uint32(tag.Type.Bytes())

	if tag.Type.IsBool() {
		if idx != nil {
			if *idx >= tag.Count {
				return daxproto.Handle{}, daxproto.ARG
			}
			h.ByteOffset, h.BitOffset, h.Count, h.Size = *idx/8, uint8(*idx%8), 1, 1
		} else {
			h.Size = tag.ByteLen()
		}
	} else if idx != nil {
		if *idx >= tag.Count {
			return daxproto.Handle{}, daxproto.ARG
		}
		h.ByteOffset, h.Count, h.Size = *idx*elemBytes, 1, elemBytes
	} else {
		h.Size = tag.ByteLen()
	}

	var curCDT *CDT
	if tag.Type.IsCustom() {
		c, err := db.lookupCDTLocked(tag.Type.CDTIndex())
		if err != nil {
			return daxproto.Handle{}, err
		}
		curCDT = c
	}

	for _, tok := range parts[1:] {
		if curCDT == nil {
			n, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				return daxproto.Handle{}, daxproto.PARSE
			}
			bits := uint32(h.Type.Bits())
			if h.Count != 1 || n >= uint64(bits) {
				return daxproto.Handle{}, daxproto.ARG
			}
			h.ByteOffset += uint32(n / 8)
			h.BitOffset = uint8(n % 8)
			h.Type, h.Count, h.Size = daxproto.BOOL, 1, 1
			continue
		}

		mname, midx, err := splitIndex(tok)
		if err != nil {
			return daxproto.Handle{}, err
		}
		member, ok := curCDT.Member(mname)
		if !ok {
			return daxproto.Handle{}, daxproto.NOTFOUND
		}

		h.ByteOffset += member.ByteOffset
		h.BitOffset = member.BitOffset
		h.Type = member.Type
		h.Count = member.Count
		memElemBytes := uint32(member.Type.Bytes())

		if member.Type.IsBool() {
			if midx != nil {
				if *midx >= member.Count {
					return daxproto.Handle{}, daxproto.ARG
				}
				h.ByteOffset += *midx / 8
				h.BitOffset = uint8(*midx % 8)
				h.Count, h.Size = 1, 1
			} else {
				h.Size = (member.Count + 7) / 8
			}
		} else if midx != nil {
			if *midx >= member.Count {
				return daxproto.Handle{}, daxproto.ARG
			}
			h.ByteOffset += *midx * memElemBytes
			h.Count, h.Size = 1, memElemBytes
		} else {
			h.Size = memElemBytes * member.Count
		}

		curCDT = nil
		if member.Type.IsCustom() {
			c, err := db.lookupCDTLocked(member.Type.CDTIndex())
			if err != nil {
				return daxproto.Handle{}, err
			}
			curCDT = c
		}
	}

	return h, nil
}
