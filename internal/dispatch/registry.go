// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import "sync"

// ConnectionRegistry tracks every connected client by ID, supplying
// the MOD_REG/MOD_UNREG bookkeeping of spec.md §4.6: a module name per
// connection, and the list of live connections for introspection
// (daxctl, /metrics).
type ConnectionRegistry struct {
	mu    sync.Mutex
	byID  map[uint32]*Connection
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{byID: make(map[uint32]*Connection)}
}

func (r *ConnectionRegistry) add(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
}

func (r *ConnectionRegistry) remove(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, c.ID)
}

// Count returns the number of currently connected clients.
func (r *ConnectionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Names returns the registered module name of every live connection
// that has completed MOD_REG.
func (r *ConnectionRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byID))
	for _, c := range r.byID {
		if c.registered {
			out = append(out, c.moduleName)
		}
	}
	return out
}
