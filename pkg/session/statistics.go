// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"fmt"
	"time"
)

// Statistics tracks traffic and check outcomes for one session
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	BytesSent            uint64
	BytesReceived        uint64
	BlocksRead           uint64
	BlocksWritten        uint64
	Confirmations        uint64
	ConfirmationFailures uint64
	EchoMismatches       uint64
	Timeouts             uint64
	TransportErrors      uint64

	// Rates (calculated)
	ByteRate  float64 // bytes/sec, both directions
	BlockRate float64 // blocks/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

func (s *Statistics) sent(n int) {
	s.BytesSent += uint64(n)
	s.LastUpdateTime = time.Now()
}

func (s *Statistics) received(n int) {
	s.BytesReceived += uint64(n)
	s.LastUpdateTime = time.Now()
}

func (s *Statistics) confirmation(ok bool) {
	if ok {
		s.Confirmations++
	} else {
		s.ConfirmationFailures++
	}
}

// failure counts a session failure by kind
func (s *Statistics) failure(err *ProtocolError) {
	switch err.Kind {
	case KindTimeout:
		s.Timeouts++
	case KindTransport:
		s.TransportErrors++
	case KindConfirmationMismatch:
		if err.Phase == phaseReadEcho {
			s.EchoMismatches++
		}
	}
}

// Blocks returns the number of channel and setting blocks transferred
func (s *Statistics) Blocks() uint64 {
	return s.BlocksRead + s.BlocksWritten
}

// CalculateRates calculates byte and block rates
func (s *Statistics) CalculateRates() {
	elapsed := s.LastUpdateTime.Sub(s.StartTime).Seconds()
	if elapsed > 0 {
		s.ByteRate = float64(s.BytesSent+s.BytesReceived) / elapsed
		s.BlockRate = float64(s.Blocks()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := s.LastUpdateTime.Sub(s.StartTime)

	result := fmt.Sprintf("=== Session Statistics (%.1f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes Sent:      %8d\n", s.BytesSent)
	result += fmt.Sprintf("Bytes Received:  %8d\n", s.BytesReceived)
	if s.BlocksRead > 0 {
		result += fmt.Sprintf("Blocks Read:     %8d\n", s.BlocksRead)
	}
	if s.BlocksWritten > 0 {
		result += fmt.Sprintf("Blocks Written:  %8d\n", s.BlocksWritten)
	}
	result += fmt.Sprintf("Confirmations:   %8d\n", s.Confirmations)

	if s.ConfirmationFailures > 0 {
		result += fmt.Sprintf("Conf Failures:   %8d\n", s.ConfirmationFailures)
		if s.EchoMismatches > 0 {
			result += fmt.Sprintf("  Echo Mismatch:    %5d\n", s.EchoMismatches)
		}
	}
	if s.Timeouts > 0 {
		result += fmt.Sprintf("Timeouts:        %8d\n", s.Timeouts)
	}
	if s.TransportErrors > 0 {
		result += fmt.Sprintf("Transport Errors:%8d\n", s.TransportErrors)
	}

	result += fmt.Sprintf("Byte Rate:       %8.1f bytes/sec\n", s.ByteRate)
	result += fmt.Sprintf("Block Rate:      %8.1f blocks/sec\n", s.BlockRate)
	result += "========================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
