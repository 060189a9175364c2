// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Serial is a Transport over a local serial port.
type Serial struct {
	port   serial.Port
	name   string
	mode   serial.Mode
	closed bool
}

// OpenSerial opens the port described by cfg. Open failures wrap
// ErrUnavailable.
func OpenSerial(cfg Config) (*Serial, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: no serial port given", ErrUnavailable)
	}

	mode := serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   serial.NoParity,
		StopBits: stopBits(cfg.StopBits),
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}

	port, err := serial.Open(cfg.Port, &mode)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open serial port %s: %v", ErrUnavailable, cfg.Port, err)
	}

	return &Serial{port: port, name: cfg.Port, mode: mode}, nil
}

func stopBits(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

// Name returns the device path.
func (s *Serial) Name() string {
	return s.name
}

// BaudRate returns the current line speed.
func (s *Serial) BaudRate() int {
	return s.mode.BaudRate
}

func (s *Serial) Write(p []byte) error {
	if s.closed {
		return ErrClosed
	}
	for len(p) > 0 {
		n, err := s.port.Write(p)
		if err != nil {
			return fmt.Errorf("write to %s: %w", s.name, err)
		}
		p = p[n:]
	}
	return nil
}

// ReadExact reads exactly n bytes from the port within the deadline.
func (s *Serial) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	buf := make([]byte, n)
	deadline := time.Now().Add(timeout)
	got := 0
	for got < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return buf[:got], fmt.Errorf("set read timeout on %s: %w", s.name, err)
		}
		// go.bug.st/serial returns 0, nil when the read timeout expires
		m, err := s.port.Read(buf[got:])
		if err != nil && m == 0 {
			return buf[:got], fmt.Errorf("read error after %d/%d bytes: %w", got, n, err)
		}
		got += m
	}
	if got < n {
		return buf[:got], fmt.Errorf("%w: got %d bytes, want %d", ErrTimeout, got, n)
	}
	return buf, nil
}

// SetBaudRate changes the line speed, keeping the other line settings.
func (s *Serial) SetBaudRate(baud int) error {
	if s.closed {
		return ErrClosed
	}
	mode := s.mode
	mode.BaudRate = baud
	if err := s.port.SetMode(&mode); err != nil {
		return fmt.Errorf("set %s to %d baud: %w", s.name, baud, err)
	}
	s.mode = mode
	return nil
}

func (s *Serial) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
