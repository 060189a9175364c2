// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

func TestProtocolError_Error(t *testing.T) {
	tests := []struct {
		name   string
		err    *ProtocolError
		expect string
	}{
		{
			"rejected",
			&ProtocolError{Kind: KindHandshakeRejected, Phase: phaseProgram, Expected: 0x16, Actual: 0x00},
			"handshake rejected during program request: expected 0x16, got 0x00",
		},
		{
			"mismatch with slot",
			&ProtocolError{Kind: KindConfirmationMismatch, Phase: phaseChecksum, Slot: 9, Expected: 0x06, Actual: 0x15},
			"confirmation mismatch during checksum confirmation (slot 9): expected 0x06, got 0x15",
		},
		{
			"timeout with cause",
			&ProtocolError{Kind: KindTimeout, Phase: phaseReadEcho, Slot: 2, Err: transport.ErrTimeout},
			"timeout during read echo (slot 2): read timed out",
		},
		{
			"termination failed",
			&ProtocolError{
				Kind:         KindTimeout,
				Phase:        phaseReadData,
				Err:          transport.ErrTimeout,
				TerminateErr: errors.New("boom"),
			},
			"timeout during read data: read timed out (termination also failed: boom)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expect {
				t.Errorf("Error() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect Kind
	}{
		{"nil", nil, KindNone},
		{"protocol", &ProtocolError{Kind: KindConfirmationMismatch}, KindConfirmationMismatch},
		{"wrapped protocol", fmt.Errorf("write: %w", &ProtocolError{Kind: KindHandshakeRejected}), KindHandshakeRejected},
		{"encoding", &channel.EncodingError{Field: "frequency", Value: 1.0, Reason: "x"}, KindEncoding},
		{"unavailable", fmt.Errorf("%w: /dev/ttyUSB9", transport.ErrUnavailable), KindTransportUnavailable},
		{"timeout", transport.ErrTimeout, KindTimeout},
		{"canceled", context.Canceled, KindCanceled},
		{"deadline", context.DeadlineExceeded, KindCanceled},
		{"other", errors.New("io"), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.expect {
				t.Errorf("KindOf() = %s, want %s", got, tt.expect)
			}
		})
	}
}

func TestProtocolError_Is(t *testing.T) {
	rejected := &ProtocolError{Kind: KindHandshakeRejected}
	mismatch := &ProtocolError{Kind: KindConfirmationMismatch}

	if !errors.Is(rejected, ErrHandshakeRejected) || errors.Is(rejected, ErrConfirmationMismatch) {
		t.Error("rejected error matches wrong sentinel")
	}
	if !errors.Is(mismatch, ErrConfirmationMismatch) || errors.Is(mismatch, ErrHandshakeRejected) {
		t.Error("mismatch error matches wrong sentinel")
	}

	timeout := ioError(phaseReadData, fmt.Errorf("%w: got 3 bytes", transport.ErrTimeout))
	if timeout.Kind != KindTimeout || !errors.Is(timeout, transport.ErrTimeout) {
		t.Errorf("ioError = %+v", timeout)
	}
	if other := ioError(phaseWriteData, transport.ErrClosed); other.Kind != KindTransport {
		t.Errorf("ioError kind = %s", other.Kind)
	}
}

func TestKind_String(t *testing.T) {
	if got := Kind(99).String(); got != "kind(99)" {
		t.Errorf("String() = %q", got)
	}
	for k := KindNone; k <= KindCanceled; k++ {
		if strings.HasPrefix(k.String(), "kind(") {
			t.Errorf("kind %d has no name", int(k))
		}
	}
}

func TestSlotForAddress(t *testing.T) {
	tests := []struct {
		addr   uint16
		expect int
	}{
		{0x12C0, 1},
		{0x12E0, 2},
		{0x13C0, 9},
		{0x14A0, 16},
		{0x14C0, 0},
		{0x12C1, 0},
		{ModelAddr, 0},
		{ScanMaskAddr, 0},
	}

	for _, tt := range tests {
		if got := slotForAddress(tt.addr); got != tt.expect {
			t.Errorf("slotForAddress(0x%04X) = %d, want %d", tt.addr, got, tt.expect)
		}
		if tt.expect > 0 && ChannelAddress(tt.expect) != tt.addr {
			t.Errorf("ChannelAddress(%d) = 0x%04X", tt.expect, ChannelAddress(tt.expect))
		}
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	quiet := NewStdLogger(false)
	quiet.Debug("hidden", "a", 1)
	quiet.Info("radio identified", "model", "TK-2402")
	quiet.Error("session failed", "slot", 9, "dangling")

	want := "[session] radio identified model=TK-2402\n" +
		"[session] ERROR session failed slot=9 dangling\n"
	if got := buf.String(); got != want {
		t.Errorf("log output = %q, want %q", got, want)
	}
}

func TestStatistics_Rates(t *testing.T) {
	s := NewStatistics()
	s.sent(100)
	s.received(300)
	s.BlocksRead = 4
	s.LastUpdateTime = s.StartTime.Add(2e9)
	s.CalculateRates()

	if s.ByteRate != 200 {
		t.Errorf("ByteRate = %f, want 200", s.ByteRate)
	}
	if s.BlockRate != 2 {
		t.Errorf("BlockRate = %f, want 2", s.BlockRate)
	}

	s.Reset()
	if s.BytesSent != 0 || s.Blocks() != 0 {
		t.Errorf("Reset left %+v", s)
	}
}
