// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient

import (
	"strconv"
	"strings"

	"github.com/opendax/daxd/pkg/daxproto"
)

// TagHandle resolves addr to a Handle using only the tag's own
// descriptor, the same "[index]" and bare-bit-index syntax
// internal/tagdb/address.go accepts for a non-custom tag.
//
// It does not support dotted member access into a custom data type:
// CDT_GET is keyed by CDT name, but a tag's wire Type only carries a
// CDT index, so a client has no wire call that turns "Dummy.member"
// into a CDT name to look up without first walking the whole CDT
// registry. Callers addressing into a CDT member should call CDTGet
// themselves (keyed by the type name they used to create the tag) and
// compute the offset, or simply pass the full dotted address string
// straight to TagRead/TagWrite/TagMaskWrite, which resolve it
// server-side where the CDT index is already known.
func (c *Client) TagHandle(addr string) (daxproto.Handle, error) {
	if addr == "" {
		return daxproto.Handle{}, daxproto.PARSE
	}
	parts := strings.Split(addr, ".")

	name, idx, err := splitIndex(parts[0])
	if err != nil {
		return daxproto.Handle{}, err
	}
	t, err := c.TagGetByName(name)
	if err != nil {
		return daxproto.Handle{}, err
	}
	if t.Type.IsCustom() && len(parts) > 1 {
		return daxproto.Handle{}, daxproto.NOTIMPLEMENTED
	}

	h := daxproto.Handle{Index: t.Index, Type: t.Type, Count: t.Count}
	elemBytes := uint32(t.Type.Bytes())

	if t.Type.IsBool() {
		if idx != nil {
			if *idx >= t.Count {
				return daxproto.Handle{}, daxproto.ARG
			}
			h.ByteOffset, h.BitOffset, h.Count, h.Size = *idx/8, uint8(*idx%8), 1, 1
		} else {
			h.Size = (t.Count + 7) / 8
		}
	} else if idx != nil {
		if *idx >= t.Count {
			return daxproto.Handle{}, daxproto.ARG
		}
		h.ByteOffset, h.Count, h.Size = *idx*elemBytes, 1, elemBytes
	} else {
		h.Size = elemBytes * t.Count
	}

	if len(parts) > 1 {
		n, err := strconv.ParseUint(parts[1], 10, 32)
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
	}

	return h, nil
}

// splitIndex pulls a trailing "[n]" array index off an address token,
// mirroring internal/tagdb/address.go's parser of the same name.
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
