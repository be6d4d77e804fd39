// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package retention

import (
	"path/filepath"
	"testing"

	"github.com/opendax/daxd/internal/tagdb"
)

func newTestDB(t *testing.T) *tagdb.DB {
	t.Helper()
	return tagdb.New(tagdb.Options{StartSize: 4, GrowInc: 4, QueueDefaultCap: 4, ServerVersion: "test"})
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	idx, err := db.AddRetain("Dummy", "DINT", 1)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := db.HandleForTag(idx)
	if err := db.Write(h, []byte{7, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "retention.db")
	if err := Save(path, db); err != nil {
		t.Fatal(err)
	}

	db2 := newTestDB(t)
	idx2, _ := db2.AddRetain("Dummy", "DINT", 1)
	if err := Load(path, db2); err != nil {
		t.Fatal(err)
	}

	h2, _ := db2.HandleForTag(idx2)
	got, err := db2.Read(h2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 7 {
		t.Fatalf("restored value = %v, want [7 0 0 0]", got)
	}
}

// TestNonRetainedTagDoesNotSurviveRestart pins spec.md §4.6: a tag not
// flagged RETAIN must not be in the save file at all, so a fresh
// instance with the same tag never sees the old value.
func TestNonRetainedTagDoesNotSurviveRestart(t *testing.T) {
	db := newTestDB(t)
	idx, err := db.Add("Dummy", "DINT", 1)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := db.HandleForTag(idx)
	if err := db.Write(h, []byte{7, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "retention.db")
	if err := Save(path, db); err != nil {
		t.Fatal(err)
	}

	db2 := newTestDB(t)
	idx2, _ := db2.Add("Dummy", "DINT", 1)
	if err := Load(path, db2); err != nil {
		t.Fatal(err)
	}

	h2, _ := db2.HandleForTag(idx2)
	got, err := db2.Read(h2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 {
		t.Fatalf("non-RETAIN tag should not have been saved, got restored value %v", got)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	db := newTestDB(t)
	if err := Load(filepath.Join(t.TempDir(), "missing.db"), db); err != nil {
		t.Fatalf("Load of a missing file should be a no-op, got %v", err)
	}
}

func TestLoadDiscardsShapeMismatch(t *testing.T) {
	db := newTestDB(t)
	idx, _ := db.AddRetain("Dummy", "DINT", 1)
	h, _ := db.HandleForTag(idx)
	db.Write(h, []byte{7, 0, 0, 0})

	path := filepath.Join(t.TempDir(), "retention.db")
	if err := Save(path, db); err != nil {
		t.Fatal(err)
	}

	db2 := newTestDB(t)
	idx2, _ := db2.AddRetain("Dummy", "DINT", 2) // different count now
	if err := Load(path, db2); err != nil {
		t.Fatal(err)
	}
	h2, _ := db2.HandleForTag(idx2)
	got, _ := db2.Read(h2)
	if got[0] != 0 {
		t.Fatalf("shape-mismatched record should have been discarded, got %v", got)
	}
}
