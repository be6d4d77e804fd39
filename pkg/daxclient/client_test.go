// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package daxclient_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/opendax/daxd/internal/dispatch"
	"github.com/opendax/daxd/internal/tagdb"
	"github.com/opendax/daxd/pkg/daxclient"
	"github.com/opendax/daxd/pkg/daxproto"
)

// newTestServer starts a real dispatch.Server on a UNIX socket unique
// to this test run -- the uuid suffix keeps parallel test binaries
// (go test -p on multiple packages, or repeated -count runs) from
// colliding on a stale socket path the way two modules racing
// dax_init_module against the same path would.
func newTestServer(t *testing.T) string {
	t.Helper()
	db := tagdb.New(tagdb.Options{})
	srv := dispatch.NewServer(db, 65536, 1024)
	sockPath := filepath.Join(t.TempDir(), "daxd-"+uuid.NewString()+".sock")
	require.NoError(t, srv.ListenUnix(sockPath))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx) //nolint:errcheck
	})
	return sockPath
}

func dialTestClient(t *testing.T, sockPath string) *daxclient.Client {
	t.Helper()
	c, err := daxclient.Connect(sockPath)
	require.NoError(t, err)
	require.NoError(t, c.Register("test-module-"+uuid.NewString()))
	t.Cleanup(func() {
		c.Disconnect() //nolint:errcheck
	})
	return c
}

func TestTagAddReadWriteRoundTrip(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	idx, err := c.TagAdd("Speed", "DINT", 1)
	require.NoError(t, err)

	require.NoError(t, c.TagWrite("Speed", []byte{42, 0, 0, 0}))

	got, err := c.TagRead("Speed")
	require.NoError(t, err)
	require.Equal(t, []byte{42, 0, 0, 0}, got)

	desc, err := c.TagGetByIndex(idx)
	require.NoError(t, err)
	require.Equal(t, "Speed", desc.Name)
	require.EqualValues(t, 1, desc.Count)
}

func TestTagHandleResolvesArrayIndex(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	_, err := c.TagAdd("Samples", "DINT", 4)
	require.NoError(t, err)

	h, err := c.TagHandle("Samples[2]")
	require.NoError(t, err)
	require.EqualValues(t, 1, h.Count)
	require.EqualValues(t, 8, h.ByteOffset)
}

func TestEventAddFiresOnWrite(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	_, err := c.TagAdd("Alarm", "BOOL", 1)
	require.NoError(t, err)

	_, err = c.EventAdd("Alarm", daxproto.EventWrite, 0, nil, 0)
	require.NoError(t, err)

	require.NoError(t, c.TagWrite("Alarm", []byte{1}))

	n, err := c.EventWait(2 * time.Second)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, n.Data)
}

func TestGroupReadConcatenatesMembers(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	_, err := c.TagAdd("A", "DINT", 1)
	require.NoError(t, err)
	_, err = c.TagAdd("B", "DINT", 1)
	require.NoError(t, err)
	require.NoError(t, c.TagWrite("A", []byte{1, 0, 0, 0}))
	require.NoError(t, c.TagWrite("B", []byte{2, 0, 0, 0}))

	gid, err := c.GroupAdd("A", "B")
	require.NoError(t, err)

	data, err := c.GroupRead(gid)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, data)
}

func TestOverrideArmsShadowValue(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	_, err := c.TagAdd("Setpoint", "DINT", 1)
	require.NoError(t, err)
	require.NoError(t, c.TagWrite("Setpoint", []byte{10, 0, 0, 0}))

	require.NoError(t, c.OverrideAdd("Setpoint", []byte{99, 0, 0, 0}))
	require.NoError(t, c.OverrideSet("Setpoint"))

	got, err := c.TagRead("Setpoint")
	require.NoError(t, err)
	require.Equal(t, []byte{99, 0, 0, 0}, got)

	require.NoError(t, c.OverrideClear("Setpoint"))
	got, err = c.TagRead("Setpoint")
	require.NoError(t, err)
	require.Equal(t, []byte{10, 0, 0, 0}, got)
}

func TestCDTCreateAndGetRoundTrip(t *testing.T) {
	sockPath := newTestServer(t)
	c := dialTestClient(t, sockPath)

	idx, err := daxclient.CDTNew("Motor").Member("rpm", "DINT", 1).Member("running", "BOOL", 1).Create(c)
	require.NoError(t, err)
	require.EqualValues(t, 0, idx)

	members, err := c.CDTGet("Motor")
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, "rpm", members[0].Name)
	require.Equal(t, "running", members[1].Name)
}
