// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package retention

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/opendax/daxd/pkg/daxproto"
)

// record is one tag's on-disk entry: { name_len u16, name,
// type u32, count u32, size u32, payload }.
type record struct {
	name    string
	typ     daxproto.Type
	count   uint32
	payload []byte
}

func writeRecord(w io.Writer, name string, typ daxproto.Type, count uint32, payload []byte) error {
	if len(name) > 0xFFFF {
		return fmt.Errorf("retention: tag name %q too long to persist", name)
	}
	head := make([]byte, 2+len(name)+4+4+4)
	binary.LittleEndian.PutUint16(head[0:2], uint16(len(name)))
	copy(head[2:2+len(name)], name)
	off := 2 + len(name)
	binary.LittleEndian.PutUint32(head[off:off+4], uint32(typ))
	binary.LittleEndian.PutUint32(head[off+4:off+8], count)
	binary.LittleEndian.PutUint32(head[off+8:off+12], uint32(len(payload)))
	if _, err := w.Write(head); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

func readRecord(r io.Reader) (record, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return record{}, err
	}
	nameLen := binary.LittleEndian.Uint16(lenBuf[:])

	nameBuf := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return record{}, err
	}

	var meta [12]byte
	if _, err := io.ReadFull(r, meta[:]); err != nil {
		return record{}, err
	}
	typ := daxproto.Type(binary.LittleEndian.Uint32(meta[0:4]))
	count := binary.LittleEndian.Uint32(meta[4:8])
	size := binary.LittleEndian.Uint32(meta[8:12])

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return record{}, err
	}

	return record{name: string(nameBuf), typ: typ, count: count, payload: payload}, nil
}
