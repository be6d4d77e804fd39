// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"encoding/binary"

	"github.com/opendax/daxd/internal/tagdb"
	"github.com/opendax/daxd/pkg/daxproto"
)

// handle routes one request payload to its subsystem and returns the
// reply payload, or a non-OK Code if the caller should get an error
// response instead.
func (s *Server) handle(conn *Connection, cmd daxproto.Command, payload []byte) ([]byte, daxproto.Code) {
	switch cmd.Base() {
	case daxproto.MOD_REG:
		return s.handleModReg(conn, payload)
	case daxproto.MOD_UNREG:
		conn.registered = false
		s.cleanupConnection(conn)
		return nil, daxproto.OK

	case daxproto.TAG_ADD:
		return s.handleTagAdd(payload)
	case daxproto.TAG_DEL:
		return s.handleTagDel(payload)
	case daxproto.TAG_GET:
		return s.handleTagGet(payload)
	case daxproto.TAG_LIST:
		return s.handleTagList()

	case daxproto.TAG_READ:
		return s.handleTagRead(payload)
	case daxproto.TAG_WRITE:
		return s.handleTagWrite(payload)
	case daxproto.TAG_MWRITE:
		return s.handleTagMaskWrite(payload)

	case daxproto.CDT_CREATE:
		return s.handleCDTCreate(payload)
	case daxproto.CDT_GET:
		return s.handleCDTGet(payload)

	case daxproto.EVENT_ADD:
		return s.handleEventAdd(conn, payload)
	case daxproto.EVENT_DEL:
		return s.handleEventDel(payload)
	case daxproto.EVENT_MOD:
		return s.handleEventMod(payload)

	case daxproto.MAP_ADD:
		return s.handleMapAdd(conn, payload)
	case daxproto.MAP_DEL:
		return s.handleMapDel(payload)
	case daxproto.MAP_GET:
		return s.handleMapGet(payload)

	case daxproto.GROUP_ADD:
		return s.handleGroupAdd(conn, payload)
	case daxproto.GROUP_READ:
		return s.handleGroupRead(payload)
	case daxproto.GROUP_WRITE:
		return s.handleGroupWrite(payload)
	case daxproto.GROUP_DEL:
		return s.handleGroupDel(payload)

	case daxproto.OVR_ADD:
		return s.handleOverrideAdd(conn, payload)
	case daxproto.OVR_SET:
		return s.handleOverrideSet(payload)
	case daxproto.OVR_CLR:
		return s.handleOverrideClear(payload)
	case daxproto.OVR_DEL:
		return s.handleOverrideDel(payload)

	case daxproto.ATOMIC_OP:
		return s.handleAtomicOp(payload)

	default:
		return nil, daxproto.NOTIMPLEMENTED
	}
}

func (s *Server) handleModReg(conn *Connection, payload []byte) ([]byte, daxproto.Code) {
	name, _, err := daxproto.GetString(payload)
	if err != nil {
		return nil, daxproto.ARG
	}
	conn.moduleName = name
	conn.registered = true
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, conn.ID)
	return buf, daxproto.OK
}

// tagAddAttrQueue and tagAddAttrRetain are the bits handleTagAdd reads
// out of its payload's leading attr byte.
const (
	tagAddAttrQueue  = 1 << 0
	tagAddAttrRetain = 1 << 1
)

// handleTagAdd's payload is { attr u8, count u32, type_name, name },
// where attr bit 0 requests a QUEUE tag and bit 1 requests RETAIN
// (spec.md §3's RETAIN attribute flag, §4.1's Queue tags).
func (s *Server) handleTagAdd(payload []byte) ([]byte, daxproto.Code) {
	if len(payload) < 5 {
		return nil, daxproto.ARG
	}
	attr := payload[0]
	queued := attr&tagAddAttrQueue != 0
	retain := attr&tagAddAttrRetain != 0
	count := binary.LittleEndian.Uint32(payload[1:5])
	typeName, rest, err := daxproto.GetString(payload[5:])
	if err != nil {
		return nil, daxproto.ARG
	}
	name, _, err := daxproto.GetString(rest)
	if err != nil {
		return nil, daxproto.ARG
	}

	var idx uint32
	switch {
	case queued:
		idx, err = s.DB.AddQueue(name, typeName, count, 0)
	case retain:
		idx, err = s.DB.AddRetain(name, typeName, count)
	default:
		idx, err = s.DB.Add(name, typeName, count)
	}
	if err != nil {
		return nil, daxproto.AsCode(err)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, idx)
	return buf, daxproto.OK
}

func (s *Server) handleTagDel(payload []byte) ([]byte, daxproto.Code) {
	idx, ok := decodeU32(payload)
	if !ok {
		return nil, daxproto.ARG
	}
	if err := s.DB.Del(idx); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

// handleTagGet accepts either a u32 index or a name string, matching
// spec.md §4.1's get_by_index/get_by_name pair under one opcode.
func (s *Server) handleTagGet(payload []byte) ([]byte, daxproto.Code) {
	var tag tagdb.Tag
	var err error
	if len(payload) == 4 {
		idx := binary.LittleEndian.Uint32(payload)
		tag, err = s.DB.GetByIndex(idx)
	} else {
		name, _, e := daxproto.GetString(payload)
		if e != nil {
			return nil, daxproto.ARG
		}
		tag, err = s.DB.GetByName(name)
	}
	if err != nil {
		return nil, daxproto.AsCode(err)
	}
	return encodeTagDescriptor(tag), daxproto.OK
}

func (s *Server) handleTagList() ([]byte, daxproto.Code) {
	tags := s.DB.List()
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(tags)))
	for _, t := range tags {
		buf = append(buf, encodeTagDescriptor(t)...)
	}
	return buf, daxproto.OK
}

func encodeTagDescriptor(t tagdb.Tag) []byte {
	buf := make([]byte, 0, 16+len(t.Name))
	idxBuf := make([]byte, 16)
	binary.LittleEndian.PutUint32(idxBuf[0:4], t.Index)
	binary.LittleEndian.PutUint32(idxBuf[4:8], uint32(t.Type))
	binary.LittleEndian.PutUint32(idxBuf[8:12], t.Count)
	binary.LittleEndian.PutUint32(idxBuf[12:16], uint32(t.Attr))
	buf = append(buf, idxBuf...)
	return daxproto.PutString(buf, t.Name)
}

func (s *Server) resolveHandle(payload []byte) (daxproto.Handle, []byte, daxproto.Code) {
	if len(payload) < 2 {
		return daxproto.Handle{}, nil, daxproto.ARG
	}
	name, rest, err := daxproto.GetString(payload)
	if err != nil {
		return daxproto.Handle{}, nil, daxproto.ARG
	}
	h, perr := s.DB.ParseHandle(name)
	if perr != nil {
		return daxproto.Handle{}, nil, daxproto.AsCode(perr)
	}
	return h, rest, daxproto.OK
}

// handleTagRead's payload is { address_string }.
func (s *Server) handleTagRead(payload []byte) ([]byte, daxproto.Code) {
	h, _, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	data, err := s.DB.Read(h)
	if err != nil {
		return nil, daxproto.AsCode(err)
	}
	s.Metrics.TagReads.Inc()
	return data, daxproto.OK
}

// handleTagWrite's payload is { address_string, data }.
func (s *Server) handleTagWrite(payload []byte) ([]byte, daxproto.Code) {
	h, rest, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if err := s.DB.Write(h, rest); err != nil {
		return nil, daxproto.AsCode(err)
	}
	s.Metrics.TagWrites.Inc()
	return nil, daxproto.OK
}

// handleTagMaskWrite's payload is { address_string, data, mask } where
// data and mask are each h.Size bytes.
func (s *Server) handleTagMaskWrite(payload []byte) ([]byte, daxproto.Code) {
	h, rest, code := s.resolveHandle(payload)
	if code != daxproto.OK {
		return nil, code
	}
	if uint32(len(rest)) != 2*h.Size {
		return nil, daxproto.ARG
	}
	if err := s.DB.MaskWrite(h, rest[:h.Size], rest[h.Size:]); err != nil {
		return nil, daxproto.AsCode(err)
	}
	return nil, daxproto.OK
}

// handleCDTCreate's payload is { name, member_count u32, members... }
// where each member is { name, type_name, count u32 }.
func (s *Server) handleCDTCreate(payload []byte) ([]byte, daxproto.Code) {
	name, rest, err := daxproto.GetString(payload)
	if err != nil || len(rest) < 4 {
		return nil, daxproto.ARG
	}
	n := binary.LittleEndian.Uint32(rest[0:4])
	rest = rest[4:]

	members := make([]tagdb.CDTMember, 0, n)
	for i := uint32(0); i < n; i++ {
		mname, r, e := daxproto.GetString(rest)
		if e != nil {
			return nil, daxproto.ARG
		}
		typeName, r2, e := daxproto.GetString(r)
		if e != nil || len(r2) < 4 {
			return nil, daxproto.ARG
		}
		count := binary.LittleEndian.Uint32(r2[0:4])
		rest = r2[4:]

		t, _, terr := resolveMemberType(s.DB, typeName)
		if terr != nil {
			return nil, daxproto.AsCode(terr)
		}
		members = append(members, tagdb.CDTMember{Name: mname, Type: t, Count: count})
	}

	idx, aerr := s.DB.AddCDT(name, members)
	if aerr != nil {
		return nil, daxproto.AsCode(aerr)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, idx)
	return buf, daxproto.OK
}

// resolveMemberType resolves a base or custom type name the same way
// tag_add does, by routing through a throwaway tag_add-compatible
// lookup: CDTs are looked up by name via GetCDT.
func resolveMemberType(db *tagdb.DB, name string) (daxproto.Type, daxproto.Kind, error) {
	if bt, kind, ok := tagdb.LookupBaseType(name); ok {
		return bt, kind, nil
	}
	cdt, err := db.GetCDT(name)
	if err != nil {
		return 0, 0, err
	}
	return daxproto.CustomType(cdt.Index), 0, nil
}

func (s *Server) handleCDTGet(payload []byte) ([]byte, daxproto.Code) {
	name, _, err := daxproto.GetString(payload)
	if err != nil {
		return nil, daxproto.ARG
	}
	cdt, gerr := s.DB.GetCDT(name)
	if gerr != nil {
		return nil, daxproto.AsCode(gerr)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(cdt.Members)))
	for _, m := range cdt.Members {
		mbuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(mbuf, uint32(m.Type))
		buf = append(buf, mbuf...)
		cbuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(cbuf, m.Count)
		buf = append(buf, cbuf...)
		buf = daxproto.PutString(buf, m.Name)
	}
	return buf, daxproto.OK
}

func decodeU32(b []byte) (uint32, bool) {
	if len(b) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}
