// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

// State is the position of a session in the protocol state machine.
type State int

const (
	StateIdle State = iota
	StateListening
	StateKeyExchanged
	StateActive
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateKeyExchanged:
		return "key exchanged"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}
