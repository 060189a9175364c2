// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Progress describes how far a read or write has got.
type Progress struct {
	// Operation is "read" or "write"
	Operation string

	// Phase is one of:
	//   "handshake"   - waking the radio and exchanging keys
	//   "model"       - writing the model block
	//   "scan button" - assigning the scan toggle button
	//   "scan mask"   - writing the active channel mask
	//   "channels"    - transferring channel records
	//   "complete"    - session ended normally
	Phase string

	// Slot is the last channel slot transferred (1-based, 0 before the first)
	Slot int

	// TotalSlots is the number of channel slots in the operation
	TotalSlots int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called after each step of a read or write. It runs on
// the session's goroutine and should return quickly.
type ProgressCallback func(Progress)

// Logger is an optional logging interface for protocol diagnostics.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// StdLogger writes tagged lines through the standard log package.
type StdLogger struct {
	Tag     string
	Verbose bool // include Debug lines
}

// NewStdLogger returns a StdLogger tagged "session".
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{Tag: "session", Verbose: verbose}
}

func (l *StdLogger) Debug(msg string, kv ...interface{}) {
	if l.Verbose {
		log.Printf("[%s] %s%s", l.Tag, msg, formatKV(kv))
	}
}

func (l *StdLogger) Info(msg string, kv ...interface{}) {
	log.Printf("[%s] %s%s", l.Tag, msg, formatKV(kv))
}

func (l *StdLogger) Error(msg string, kv ...interface{}) {
	log.Printf("[%s] ERROR %s%s", l.Tag, msg, formatKV(kv))
}

func formatKV(kv []interface{}) string {
	if len(kv) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&sb, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&sb, " %v", kv[i])
		}
	}
	return sb.String()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
