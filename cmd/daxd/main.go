// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command daxd is the OpenDAX tag server: it owns the tag database and
// serves the daxproto wire protocol over a UNIX socket and, optionally,
// TCP (spec.md §1, §6).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opendax/daxd/internal/config"
	"github.com/opendax/daxd/internal/dispatch"
	"github.com/opendax/daxd/internal/retention"
	"github.com/opendax/daxd/internal/runtimeenv"
	"github.com/opendax/daxd/internal/tagdb"
	"github.com/opendax/daxd/internal/taskrunner"
	"github.com/opendax/daxd/pkg/log"

	"github.com/google/gops/agent"
)

func main() {
	var flagConfigFile string
	var flagGops bool
	var flagVerbosity uint
	flag.StringVar(&flagConfigFile, "C", "./daxd.conf.json", "path to the JSON configuration file")
	flag.BoolVar(&flagGops, "gops", false, "listen via github.com/google/gops/agent (for debugging)")
	flag.UintVar(&flagVerbosity, "v", 0, "override config's verbosity bitmask (0 keeps the config value)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := runtimeenv.LoadEnv("./.env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing './.env' file failed: %s", err.Error())
	}

	config.Init(flagConfigFile)
	if flagVerbosity != 0 {
		config.Keys.Verbosity = uint32(flagVerbosity)
	}
	log.SetLogMask(config.Keys.Verbosity)

	if err := runtimeenv.WritePIDFile(config.Keys.PidFile); err != nil {
		log.Warnf("[MAIN] writing pid file %s failed: %s", config.Keys.PidFile, err.Error())
	}
	runtimeenv.MaybeDaemonize(config.Keys.Daemonize)

	db := tagdb.New(tagdb.Options{
		StartSize:       uint32(config.Keys.TagListStartSize),
		GrowInc:         uint32(config.Keys.TagListGrow),
		QueueDefaultCap: uint32(config.Keys.QueueDefaultCapacity),
		ServerVersion:   "1",
	})

	if err := retention.Load(config.Keys.RetentionFile, db); err != nil {
		log.Fatalf("[MAIN] loading retention file %s failed: %s", config.Keys.RetentionFile, err.Error())
	}

	srv := dispatch.NewServer(db, config.Keys.MaxMessageSize, config.Keys.EventQueueCap)

	if err := srv.ListenUnix(config.Keys.SocketPath); err != nil {
		log.Fatalf("[MAIN] listening on %s failed: %s", config.Keys.SocketPath, err.Error())
	}
	if config.Keys.TCPPort != 0 {
		if err := srv.ListenTCP(config.Keys.TCPPort); err != nil {
			log.Fatalf("[MAIN] listening on TCP port %d failed: %s", config.Keys.TCPPort, err.Error())
		}
	}
	srv.ServeDebug(config.Keys.DebugAddr)

	if config.Keys.RetentionIntervalMs > 0 {
		flushInterval := time.Duration(config.Keys.RetentionIntervalMs) * time.Millisecond
		if err := taskrunner.Start(flushInterval, func() {
			if err := retention.Save(config.Keys.RetentionFile, db); err != nil {
				log.Errorf("[MAIN] retention save failed: %s", err.Error())
			}
		}); err != nil {
			log.Fatalf("[MAIN] starting task runner failed: %s", err.Error())
		}
	}

	var wg sync.WaitGroup

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	signal.Ignore(syscall.SIGPIPE)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sigs
		runtimeenv.SystemdNotifiy(false, "shutting down")
		log.Majorf("[MAIN] shutdown signal received, draining connections")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("[MAIN] shutdown timed out: %s", err.Error())
		}

		taskrunner.Shutdown()
		if err := retention.Save(config.Keys.RetentionFile, db); err != nil {
			log.Errorf("[MAIN] final retention save failed: %s", err.Error())
		}
	}()

	runtimeenv.SystemdNotifiy(true, "running")
	log.Majorf("[MAIN] daxd ready (socket=%s tcp_port=%d)", config.Keys.SocketPath, config.Keys.TCPPort)
	wg.Wait()
	log.Majorf("[MAIN] graceful shutdown complete")
}
