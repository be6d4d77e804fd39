// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package retention persists tag values across daxd restarts (spec.md
// §4.5): a flat, versioned binary file of { name, type, count, size,
// payload } records, written on a schedule by internal/taskrunner and
// restored once at startup. A tag whose stored shape no longer matches
// the live type registry is discarded rather than applied -- the
// schema is allowed to change between runs, but a partial or mistyped
// restore must never corrupt a tag's current layout.
package retention

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/opendax/daxd/internal/tagdb"
	"github.com/opendax/daxd/pkg/daxproto"
	"github.com/opendax/daxd/pkg/log"
)

// Magic identifies a daxd retention file; Version guards the record
// layout so a future daxd can refuse (or migrate) an old file instead
// of misreading it.
const (
	Magic   = "DAXR"
	Version = uint32(1)
)

// DB is the subset of tagdb.DB the retention layer needs.
type DB interface {
	List() []tagdb.Tag
	HandleForTag(index uint32) (daxproto.Handle, error)
	Read(h daxproto.Handle) ([]byte, error)
	Write(h daxproto.Handle, data []byte) error
}

// Save writes the current value of every tag flagged RETAIN to path
// (spec.md §3's RETAIN attribute, §4.6's "persistence of tags flagged
// RETAIN"). A tag with no RETAIN flag is never written here regardless
// of type, and virtual/QUEUE tags are skipped even if RETAIN were set
// on one -- virtual tags are always recomputed and a queue's pending
// elements are transient by definition.
func Save(path string, db DB) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	tags := db.List()
	records := make([]tagdb.Tag, 0, len(tags))
	for _, t := range tags {
		if t.Attr&tagdb.AttrRetain == 0 {
			continue
		}
		if t.Attr&tagdb.AttrVirtual != 0 || t.Type.IsQueue() {
			continue
		}
		records = append(records, t)
	}

	if err := writeHeader(w, uint32(len(records))); err != nil {
		f.Close()
		return err
	}

	var n int
	for _, t := range records {
		h, err := db.HandleForTag(t.Index)
		if err != nil {
			continue
		}
		data, err := db.Read(h)
		if err != nil {
			continue
		}
		if err := writeRecord(w, t.Name, t.Type, t.Count, data); err != nil {
			f.Close()
			return err
		}
		n++
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	log.Minorf("[RETENTION] saved %d tags to %s", n, path)
	return nil
}

// Load restores tag values from path into db. A missing file is not an
// error (the first run of a fresh instance); a present but malformed
// header is.
func Load(path string, db DB) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	count, err := readHeader(r)
	if err != nil {
		return err
	}

	applied, discarded := 0, 0
	for i := uint32(0); i < count; i++ {
		rec, err := readRecord(r)
		if err != nil {
			return fmt.Errorf("retention: truncated record %d of %d: %w", i, count, err)
		}
		if !restoreRecord(db, rec) {
			discarded++
			continue
		}
		applied++
	}
	log.Minorf("[RETENTION] restored %d tags from %s (%d discarded)", applied, path, discarded)
	return nil
}

func restoreRecord(db DB, rec record) bool {
	var match *tagdb.Tag
	for _, t := range db.List() {
		if t.Name == rec.name {
			tt := t
			match = &tt
			break
		}
	}
	if match == nil || match.Type != rec.typ || match.Count != rec.count {
		return false
	}
	h, err := db.HandleForTag(match.Index)
	if err != nil || h.Size != uint32(len(rec.payload)) {
		return false
	}
	return db.Write(h, rec.payload) == nil
}

func writeHeader(w io.Writer, count uint32) error {
	buf := make([]byte, 4+4+4)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], Version)
	binary.LittleEndian.PutUint32(buf[8:12], count)
	_, err := w.Write(buf)
	return err
}

func readHeader(r io.Reader) (uint32, error) {
	buf := make([]byte, 12)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	if string(buf[0:4]) != Magic {
		return 0, fmt.Errorf("retention: bad magic %q", buf[0:4])
	}
	version := binary.LittleEndian.Uint32(buf[4:8])
	if version != Version {
		return 0, fmt.Errorf("retention: unsupported version %d", version)
	}
	return binary.LittleEndian.Uint32(buf[8:12]), nil
}
