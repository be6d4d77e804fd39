// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtimeenv holds the process-lifecycle helpers cmd/daxd
// needs outside of the tag server proper: .env loading, a PID file, a
// daemonize stub, and systemd readiness notification.
package runtimeenv

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv loads file into the process environment. A missing file is
// reported via the returned error exactly like os.Open would, so
// callers can use os.IsNotExist to treat it as optional.
func LoadEnv(file string) error {
	vars, err := godotenv.Read(file)
	if err != nil {
		return err
	}
	for k, v := range vars {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

// WritePIDFile records the current process id at path, for init
// scripts that want to signal or wait on daxd without systemd.
func WritePIDFile(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// MaybeDaemonize is a deliberate no-op: forking into the background is
// the job of the packaging init script (runit, s6, a systemd unit with
// Type=notify) that launches daxd, not daxd itself. It exists so the
// config's Daemonize flag has somewhere to be consumed instead of
// silently doing nothing, and so a future init integration has an
// obvious seam to extend.
func MaybeDaemonize(daemonize bool) {
	if !daemonize {
		return
	}
	fmt.Fprintln(os.Stderr, "daemonize: true has no effect; run daxd under a supervisor (systemd, runit, ...) instead")
}

// SystemdNotifiy tells systemd (when NOTIFY_SOCKET is set) that daxd
// has reached a particular state, the same best-effort
// systemd-notify(1) shellout the teacher uses.
func SystemdNotifiy(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	cmd := exec.Command("systemd-notify", args...)
	cmd.Run() // best effort, matching the teacher's own fire-and-forget call
}
