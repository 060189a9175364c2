// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport provides the half-duplex byte link used to program a
// radio: write bytes, read exactly N bytes within a deadline, change the baud
// rate mid-session, and close.
package transport

import (
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when a read does not complete before its deadline.
	ErrTimeout = errors.New("read timed out")
	// ErrUnavailable is returned when no serial device can be found or opened.
	ErrUnavailable = errors.New("transport unavailable")
	// ErrClosed is returned by operations on a closed transport.
	ErrClosed = errors.New("transport closed")
)

// Transport is a byte-oriented duplex link with an adjustable baud rate.
// Implementations are not safe for concurrent use; a session owns its
// transport exclusively.
type Transport interface {
	// Write sends every byte of p or returns an error.
	Write(p []byte) error
	// ReadExact blocks until n bytes arrive or timeout elapses. A short read
	// returns the bytes received so far together with ErrTimeout.
	ReadExact(n int, timeout time.Duration) ([]byte, error)
	// SetBaudRate reconfigures the link speed without closing it.
	SetBaudRate(baud int) error
	// Close releases the link. Closing twice is not an error.
	Close() error
}

// Config describes how to open a serial link.
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	StopBits int // 1 or 2
}

// DefaultConfig returns the radio's initial line settings, 9600 8N2.
func DefaultConfig(port string) Config {
	return Config{
		Port:     port,
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 2,
	}
}
