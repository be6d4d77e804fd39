// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxproto

import "encoding/binary"

// PutString appends a u16-length-prefixed string to buf.
func PutString(buf []byte, s string) []byte {
	lenBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBuf, uint16(len(s)))
	buf = append(buf, lenBuf...)
	return append(buf, s...)
}

// GetString reads a u16-length-prefixed string from the start of buf,
// returning the string and the remainder of buf.
func GetString(buf []byte) (string, []byte, error) {
	if len(buf) < 2 {
		return "", nil, ErrHeaderIncomplete
	}
	n := binary.LittleEndian.Uint16(buf[0:2])
	buf = buf[2:]
	if len(buf) < int(n) {
		return "", nil, ErrHeaderIncomplete
	}
	return string(buf[:n]), buf[n:], nil
}
