// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package daxproto

import "fmt"

// Code is the single i32 result code every server response carries
// (spec.md §7). Negative values are errors; zero is success.
type Code int32

const (
	OK             Code = 0
	GENERIC        Code = -1
	NO_SOCKET      Code = -2
	TOOBIG         Code = -3
	ARG            Code = -4
	NOTFOUND       Code = -5
	MSG_SEND       Code = -6
	MSG_RECV       Code = -7
	TAG_BAD        Code = -8
	TAG_DUPL       Code = -9
	ALLOC          Code = -10
	MSG_BAD        Code = -11
	DUPL           Code = -12
	NO_INIT        Code = -13
	TIMEOUT        Code = -14
	ILLEGAL        Code = -15
	INUSE          Code = -16
	PARSE          Code = -17
	ARBITRARY      Code = -18
	NOTIMPLEMENTED Code = -19
	OVERFLOW       Code = -20
	EMPTY          Code = -21
	BADTYPE        Code = -22
	BADINDEX       Code = -23
	AUTH           Code = -24
	DISCONNECTED   Code = -25
	READONLY       Code = -26
)

var codeNames = map[Code]string{
	OK:             "OK",
	GENERIC:        "GENERIC",
	NO_SOCKET:      "NO_SOCKET",
	TOOBIG:         "2BIG",
	ARG:            "ARG",
	NOTFOUND:       "NOTFOUND",
	MSG_SEND:       "MSG_SEND",
	MSG_RECV:       "MSG_RECV",
	TAG_BAD:        "TAG_BAD",
	TAG_DUPL:       "TAG_DUPL",
	ALLOC:          "ALLOC",
	MSG_BAD:        "MSG_BAD",
	DUPL:           "DUPL",
	NO_INIT:        "NO_INIT",
	TIMEOUT:        "TIMEOUT",
	ILLEGAL:        "ILLEGAL",
	INUSE:          "INUSE",
	PARSE:          "PARSE",
	ARBITRARY:      "ARBITRARY",
	NOTIMPLEMENTED: "NOTIMPLEMENTED",
	OVERFLOW:       "OVERFLOW",
	EMPTY:          "EMPTY",
	BADTYPE:        "BADTYPE",
	BADINDEX:       "BADINDEX",
	AUTH:           "AUTH",
	DISCONNECTED:   "DISCONNECTED",
	READONLY:       "READONLY",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("CODE(%d)", int32(c))
}

// Error adapts a Code to the error interface so server-side subsystem
// functions can return it directly as a Go error and the dispatcher can
// recover the original Code with AsCode.
func (c Code) Error() string {
	return c.String()
}

// AsCode extracts the Code carried by err, if any, defaulting to
// GENERIC for errors that did not originate as a Code.
func AsCode(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	return GENERIC
}
