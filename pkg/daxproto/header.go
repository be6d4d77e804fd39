// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package daxproto

import (
	"encoding/binary"
	"errors"
	"io"
)

// HeaderSize is the fixed size of every frame's header: command (u32),
// size (u32), id (u32), little-endian on the wire (spec.md §4.7).
const HeaderSize = 12

// ErrHeaderIncomplete is returned by ReadHeader when the peer closed the
// connection mid-header; callers treat it the same as io.EOF.
var ErrHeaderIncomplete = errors.New("daxproto: short header read")

// Header is the 12-byte frame header shared by requests, responses, and
// event notifications.
type Header struct {
	Command Command
	Size    uint32
	ID      uint32
}

// Encode writes h in wire format (little-endian) to buf, which must be
// at least HeaderSize bytes.
func (h Header) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Command))
	binary.LittleEndian.PutUint32(buf[4:8], h.Size)
	binary.LittleEndian.PutUint32(buf[8:12], h.ID)
}

// DecodeHeader parses a wire-format header from buf.
func DecodeHeader(buf []byte) Header {
	return Header{
		Command: Command(binary.LittleEndian.Uint32(buf[0:4])),
		Size:    binary.LittleEndian.Uint32(buf[4:8]),
		ID:      binary.LittleEndian.Uint32(buf[8:12]),
	}
}

// ReadHeader reads and decodes one header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrHeaderIncomplete
		}
		return Header{}, err
	}
	return DecodeHeader(buf[:]), nil
}

// WriteFrame writes a full frame (header + payload) to w in one Write
// call so a writer shared by multiple goroutines (request replies and
// event notifications interleaving on the same socket) never emits a
// torn frame.
func WriteFrame(w io.Writer, h Header, payload []byte) error {
	h.Size = uint32(len(payload))
	buf := make([]byte, HeaderSize+len(payload))
	h.Encode(buf[:HeaderSize])
	copy(buf[HeaderSize:], payload)
	_, err := w.Write(buf)
	return err
}

// WriteError writes an error response for request id using cmd's base
// command with the error flag set, payload being the single i32 code.
func WriteError(w io.Writer, cmd Command, id uint32, code Code) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(int32(code)))
	return WriteFrame(w, Header{Command: cmd.Base().WithError(), ID: id}, payload)
}

// DecodeErrorPayload reads the single i32 error code out of an error
// response's payload.
func DecodeErrorPayload(payload []byte) Code {
	if len(payload) < 4 {
		return GENERIC
	}
	return Code(int32(binary.LittleEndian.Uint32(payload)))
}
