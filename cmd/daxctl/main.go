// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command daxctl is a small non-interactive inspector for a running
// daxd: list tags, read one tag, or dump a custom data type's member
// layout. It stands in for the out-of-scope interactive daxc REPL
// (spec.md §1 Non-goals), built entirely on pkg/daxclient.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/opendax/daxd/pkg/daxclient"
)

func main() {
	var addr, tagName, readAddr, cdtName string
	flag.StringVar(&addr, "addr", "/tmp/opendax", "daxd UNIX socket path or host:port")
	flag.StringVar(&tagName, "tag", "", "print the descriptor of a single tag by name")
	flag.StringVar(&readAddr, "read", "", "read and print the raw bytes at an address")
	flag.StringVar(&cdtName, "cdt", "", "print the member layout of a custom data type by name")
	flag.Parse()

	c, err := daxclient.Connect(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daxctl: connect %s: %s\n", addr, err.Error())
		os.Exit(1)
	}
	defer c.Disconnect()

	if err := c.Register("daxctl"); err != nil {
		fmt.Fprintf(os.Stderr, "daxctl: register: %s\n", err.Error())
		os.Exit(1)
	}
	defer c.Unregister()

	switch {
	case tagName != "":
		t, err := c.TagGetByName(tagName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daxctl: tag_get %s: %s\n", tagName, err.Error())
			os.Exit(1)
		}
		fmt.Printf("index=%d name=%s type=%#x count=%d attr=%#x\n", t.Index, t.Name, uint32(t.Type), t.Count, t.Attr)

	case readAddr != "":
		data, err := c.TagRead(readAddr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daxctl: tag_read %s: %s\n", readAddr, err.Error())
			os.Exit(1)
		}
		fmt.Printf("% x\n", data)

	case cdtName != "":
		members, err := c.CDTGet(cdtName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "daxctl: cdt_get %s: %s\n", cdtName, err.Error())
			os.Exit(1)
		}
		for _, m := range members {
			fmt.Printf("%s type=%#x count=%d\n", m.Name, uint32(m.Type), m.Count)
		}

	default:
		tags, err := c.TagList()
		if err != nil {
			fmt.Fprintf(os.Stderr, "daxctl: tag_list: %s\n", err.Error())
			os.Exit(1)
		}
		for _, t := range tags {
			fmt.Printf("%6d  %-32s type=%#x count=%d\n", t.Index, t.Name, uint32(t.Type), t.Count)
		}
	}
}
