// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

const configSchema = `{
    "type": "object",
    "description": "Configuration for the daxd tag server.",
    "properties": {
        "socket_path": {
            "description": "Path of the UNIX domain socket to listen on.",
            "type": "string"
        },
        "tcp_port": {
            "description": "Optional TCP port to additionally listen on. 0 disables TCP.",
            "type": "integer",
            "minimum": 0
        },
        "daemonize": {
            "type": "boolean"
        },
        "pid_file": {
            "type": "string"
        },
        "retention_file": {
            "type": "string"
        },
        "retention_interval_ms": {
            "type": "integer",
            "minimum": 0
        },
        "max_message_size": {
            "type": "integer",
            "minimum": 64
        },
        "verbosity": {
            "type": "integer",
            "minimum": 0
        },
        "tag_list_start_size": {
            "type": "integer",
            "minimum": 1
        },
        "tag_list_grow": {
            "type": "integer",
            "minimum": 1
        },
        "queue_default_capacity": {
            "type": "integer",
            "minimum": 1
        },
        "event_queue_cap": {
            "type": "integer",
            "minimum": 1
        },
        "request_timeout_ms": {
            "type": "integer",
            "minimum": 500,
            "maximum": 30000
        },
        "debug_addr": {
            "type": "string"
        }
    }
}`
