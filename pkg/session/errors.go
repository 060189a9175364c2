// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

// Kind classifies a session failure.
type Kind int

const (
	KindNone Kind = iota
	KindHandshakeRejected
	KindConfirmationMismatch
	KindTimeout
	KindEncoding
	KindTransportUnavailable
	KindTransport
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHandshakeRejected:
		return "handshake rejected"
	case KindConfirmationMismatch:
		return "confirmation mismatch"
	case KindTimeout:
		return "timeout"
	case KindEncoding:
		return "encoding error"
	case KindTransportUnavailable:
		return "transport unavailable"
	case KindTransport:
		return "transport error"
	case KindCanceled:
		return "canceled"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

var (
	// ErrHandshakeRejected matches a ProtocolError whose program request was
	// answered with something other than the listening byte.
	ErrHandshakeRejected = errors.New("handshake rejected")
	// ErrConfirmationMismatch matches a ProtocolError raised by a failed
	// confirmation or echo check.
	ErrConfirmationMismatch = errors.New("confirmation mismatch")
	// ErrState is returned when an operation is called in the wrong state.
	ErrState = errors.New("invalid session state")
)

// ProtocolError is the single error a failed session reports.
type ProtocolError struct {
	Kind  Kind
	Phase string
	Slot  int // 1-based channel slot, 0 outside the channel loop

	// Expected and Actual hold the decrypted byte for handshake and
	// confirmation failures.
	Expected byte
	Actual   byte

	// Err is the underlying cause, if any.
	Err error
	// TerminateErr records a failure of the end-of-session sequence that
	// followed this error. It never replaces the error itself.
	TerminateErr error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("%s during %s", e.Kind, e.Phase)
	if e.Slot > 0 {
		msg += fmt.Sprintf(" (slot %d)", e.Slot)
	}
	switch e.Kind {
	case KindHandshakeRejected, KindConfirmationMismatch:
		msg += fmt.Sprintf(": expected 0x%02X, got 0x%02X", e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.TerminateErr != nil {
		msg += fmt.Sprintf(" (termination also failed: %v)", e.TerminateErr)
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *ProtocolError) Is(target error) bool {
	switch target {
	case ErrHandshakeRejected:
		return e.Kind == KindHandshakeRejected
	case ErrConfirmationMismatch:
		return e.Kind == KindConfirmationMismatch
	}
	return false
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// KindOf maps any error returned by this package, or by the codec and
// transport it drives, to a Kind.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, channel.ErrEncoding):
		return KindEncoding
	case errors.Is(err, transport.ErrUnavailable):
		return KindTransportUnavailable
	case errors.Is(err, transport.ErrTimeout):
		return KindTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindTransport
}

// ioError classifies a transport failure at the given phase.
func ioError(phase string, err error) *ProtocolError {
	kind := KindTransport
	if errors.Is(err, transport.ErrTimeout) {
		kind = KindTimeout
	}
	return &ProtocolError{Kind: kind, Phase: phase, Err: err}
}
