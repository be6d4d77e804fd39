// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package daxproto

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Command: TAG_WRITE, Size: 42, ID: 7}
	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	got := DecodeHeader(buf)
	if got != h {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, h)
	}
}

func TestWriteFrameSetsSize(t *testing.T) {
	var b bytes.Buffer
	payload := []byte("hello")
	if err := WriteFrame(&b, Header{Command: TAG_READ, ID: 3}, payload); err != nil {
		t.Fatal(err)
	}

	h, err := ReadHeader(&b)
	if err != nil {
		t.Fatal(err)
	}
	if h.Size != uint32(len(payload)) {
		t.Fatalf("size = %d, want %d", h.Size, len(payload))
	}
	if h.Command != TAG_READ || h.ID != 3 {
		t.Fatalf("header mismatch: %+v", h)
	}

	got := make([]byte, h.Size)
	if _, err := b.Read(got); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload = %q, want %q", got, payload)
	}
}

func TestErrorResponseRoundTrip(t *testing.T) {
	var b bytes.Buffer
	if err := WriteError(&b, TAG_WRITE, 9, NOTFOUND); err != nil {
		t.Fatal(err)
	}

	h, err := ReadHeader(&b)
	if err != nil {
		t.Fatal(err)
	}
	if !h.Command.IsError() {
		t.Fatalf("expected error flag set, command=%x", h.Command)
	}
	if h.Command.Base() != TAG_WRITE {
		t.Fatalf("base command = %v, want TAG_WRITE", h.Command.Base())
	}

	payload := make([]byte, h.Size)
	if _, err := b.Read(payload); err != nil {
		t.Fatal(err)
	}
	if code := DecodeErrorPayload(payload); code != NOTFOUND {
		t.Fatalf("code = %v, want NOTFOUND", code)
	}
}

func TestTypeBits(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		bits int
	}{
		{"BOOL", BOOL, 1},
		{"SINT", SINT, 8},
		{"INT", INT, 16},
		{"DINT", DINT, 32},
		{"LINT", LINT, 64},
	}
	for _, c := range cases {
		if got := c.typ.Bits(); got != c.bits {
			t.Errorf("%s.Bits() = %d, want %d", c.name, got, c.bits)
		}
	}
}

func TestCustomTypeRoundTrip(t *testing.T) {
	ct := CustomType(17)
	if !ct.IsCustom() {
		t.Fatal("expected IsCustom")
	}
	if got := ct.CDTIndex(); got != 17 {
		t.Fatalf("CDTIndex() = %d, want 17", got)
	}

	q := ct.WithQueue()
	if !q.IsQueue() || !q.IsCustom() {
		t.Fatalf("queue+custom type lost a flag: %v", q)
	}
	if q.WithoutQueue().IsQueue() {
		t.Fatal("WithoutQueue did not clear the bit")
	}
}
