// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/opendax/daxd/pkg/log"
)

// Config holds the server's runtime configuration. Values are either
// read from the JSON config file or supplied by the Lua configuration
// host (an external collaborator); this package only ever consumes
// already-parsed values.
type Config struct {
	SocketPath string `json:"socket_path"`
	TCPPort    int    `json:"tcp_port"`

	Daemonize bool   `json:"daemonize"`
	PidFile   string `json:"pid_file"`

	RetentionFile       string `json:"retention_file"`
	RetentionIntervalMs int    `json:"retention_interval_ms"`

	MaxMessageSize int    `json:"max_message_size"`
	Verbosity      uint32 `json:"verbosity"`

	TagListStartSize int `json:"tag_list_start_size"`
	TagListGrow      int `json:"tag_list_grow"`

	QueueDefaultCapacity int `json:"queue_default_capacity"`
	EventQueueCap        int `json:"event_queue_cap"`

	RequestTimeoutMs int `json:"request_timeout_ms"`

	// DebugAddr, if non-empty, serves a small set of read-only
	// debug/metrics endpoints (see internal/dispatch/metrics.go).
	DebugAddr string `json:"debug_addr"`
}

var Keys Config = Config{
	SocketPath:           "/tmp/opendax",
	TCPPort:              0,
	Daemonize:            false,
	PidFile:              "/var/run/daxd.pid",
	RetentionFile:        "retentive.db",
	RetentionIntervalMs:  60000,
	MaxMessageSize:       65536,
	Verbosity:            log.TopicAll,
	TagListStartSize:     1024,
	TagListGrow:          1024,
	QueueDefaultCapacity: 32,
	EventQueueCap:        1024,
	RequestTimeoutMs:     1000,
	DebugAddr:            "",
}

// Init loads flagConfigFile (if present) on top of the defaults in
// Keys, validating it against configSchema first. A missing file is
// not an error -- the defaults above are used as-is, mirroring how the
// teacher's config.Init tolerates an absent config.json.
func Init(flagConfigFile string) {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("[CONFIG] reading %s: %s", flagConfigFile, err.Error())
		}
		return
	}

	if err := Validate(configSchema, raw); err != nil {
		log.Fatalf("[CONFIG] validating %s: %s", flagConfigFile, err.Error())
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		log.Fatalf("[CONFIG] decoding %s: %s", flagConfigFile, err.Error())
	}

	if Keys.TagListStartSize <= 0 {
		Keys.TagListStartSize = 1024
	}
	if Keys.TagListGrow <= 0 {
		Keys.TagListGrow = 1024
	}
	if Keys.QueueDefaultCapacity <= 0 {
		Keys.QueueDefaultCapacity = 32
	}
	if Keys.EventQueueCap <= 0 {
		Keys.EventQueueCap = 1024
	}
	if Keys.MaxMessageSize <= 0 {
		Keys.MaxMessageSize = 65536
	}
}
