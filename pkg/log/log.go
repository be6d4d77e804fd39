// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Provides a simple way of logging with different levels, the way the
// teacher's pkg/log does, generalized to the topic bitmask a tag
// server's log policy is specified in terms of: FATAL, ERROR, MAJOR,
// MINOR, COMM (connection accept/close), MSG (request/response
// tracing), MSGERR (malformed/rejected messages), CONFIG, MODULE
// (module register/unregister), and ALL.
//
// Time/Date are not logged by default -- systemd adds them for us when
// run under a unit file. Call SetLogDateTime(true) to add them anyway.

type Topic uint32

const (
	TopicFatal Topic = 1 << iota
	TopicError
	TopicMajor
	TopicMinor
	TopicComm
	TopicMsg
	TopicMsgErr
	TopicConfig
	TopicModule
)

const TopicAll = ^Topic(0)

var mask Topic = TopicAll

// SetLogMask replaces the active topic bitmask. Messages logged through
// a topic-specific function whose bit is not set in mask are dropped
// before any formatting work happens.
func SetLogMask(m uint32) {
	mask = Topic(m)
}

var logDateTime bool

func SetLogDateTime(logdate bool) {
	logDateTime = logdate
}

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	WarnPrefix  string = "<4>[WARNING]  "
	ErrPrefix   string = "<3>[ERROR]    "
)

var (
	DebugLog *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	InfoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	WarnLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	ErrLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.Llongfile)

	DebugTimeLog *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	InfoTimeLog  *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	WarnTimeLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	ErrTimeLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
)

func out(l, lt *log.Logger, s string) {
	if logDateTime {
		lt.Output(3, s)
	} else {
		l.Output(3, s)
	}
}

func Debug(v ...interface{}) { out(DebugLog, DebugTimeLog, fmt.Sprint(v...)) }
func Info(v ...interface{})  { out(InfoLog, InfoTimeLog, fmt.Sprint(v...)) }
func Warn(v ...interface{})  { out(WarnLog, WarnTimeLog, fmt.Sprint(v...)) }
func Error(v ...interface{}) { out(ErrLog, ErrTimeLog, fmt.Sprint(v...)) }

func Debugf(format string, v ...interface{}) { out(DebugLog, DebugTimeLog, fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { out(InfoLog, InfoTimeLog, fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { out(WarnLog, WarnTimeLog, fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { out(ErrLog, ErrTimeLog, fmt.Sprintf(format, v...)) }

// Fatal logs at error level and terminates the process. Callers doing a
// best-effort retention flush before a fatal internal-consistency error
// should do that flush first, then call Fatal.
func Fatal(v ...interface{}) {
	Error(v...)
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	Errorf(format, v...)
	os.Exit(1)
}

// Panic logs at error level and panics, keeping the process alive only
// if a deferred recover() catches it.
func Panic(v ...interface{}) {
	Error(v...)
	panic(fmt.Sprint(v...))
}

/* Topic-filtered logging: spec.md §7's log policy. */

func topicf(t Topic, prefix, format string, v ...interface{}) {
	if mask&t == 0 {
		return
	}
	out(InfoLog, InfoTimeLog, prefix+fmt.Sprintf(format, v...))
}

func Majorf(format string, v ...interface{})  { topicf(TopicMajor, "[MAJOR] ", format, v...) }
func Minorf(format string, v ...interface{})  { topicf(TopicMinor, "[MINOR] ", format, v...) }
func Commf(format string, v ...interface{})   { topicf(TopicComm, "[COMM] ", format, v...) }
func Msgf(format string, v ...interface{})    { topicf(TopicMsg, "[MSG] ", format, v...) }
func MsgErrf(format string, v ...interface{}) { topicf(TopicMsgErr, "[MSGERR] ", format, v...) }
func Configf(format string, v ...interface{}) { topicf(TopicConfig, "[CONFIG] ", format, v...) }
func Modulef(format string, v ...interface{}) { topicf(TopicModule, "[MODULE] ", format, v...) }
