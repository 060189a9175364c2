// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package session drives the TK-series programming protocol: the handshake
// with its baud raise and two-layer XOR key bootstrap, per-block read and
// write transactions guarded by confirmation bytes, and the end-of-session
// sequence.
package session

import "time"

// Wire constants
const (
	ByteListening = 0x16 // reply to the program request
	ByteVersion   = 0x02 // identity block request
	ByteConfirm   = 0x06 // confirmation constant
	ByteKeyMarker = 0x50 // 'P', sent under the second key
	CmdRead       = 0x52 // 'R'
	CmdReadEcho   = 0x57 // 'W', header the device echoes before read data
	CmdWrite      = 0x59 // 'Y'
	CmdEnd        = 0x45 // 'E'
)

// ProgramRequest is the 7-byte marker that wakes the radio ("PROGRAM").
var ProgramRequest = []byte{0x50, 0x52, 0x4F, 0x47, 0x52, 0x41, 0x4D}

// Response lengths
const (
	IdentityLen  = 40
	BootstrapLen = 10
	echoLen      = 4
)

// Memory map
const (
	ChannelBase   uint16 = 0x12C0
	ChannelStride uint16 = 0x20
	ChannelCount         = 16

	ModelAddr      uint16 = 0x0070
	ScanButtonAddr uint16 = 0x0FD0
	ScanMaskAddr   uint16 = 0x1000

	// ScanButtonToggle assigns button 1 to toggle scanning of every
	// scan-enabled channel.
	ScanButtonToggle = 0x0D
)

// ModelBlock is written to ModelAddr before channel data: "P2402\r" padded
// with 0xFF to 16 bytes.
var ModelBlock = []byte{
	0x50, 0x32, 0x34, 0x30, 0x32, 0x0D, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// Line defaults
const (
	InitialBaud        = 9600
	SessionBaud        = 19200
	DefaultReadTimeout = 5 * time.Second
	DefaultByteDelay   = 10 * time.Millisecond
)

// ChannelAddress returns the memory address of a 1-based channel slot.
func ChannelAddress(slot int) uint16 {
	return ChannelBase + uint16(slot-1)*ChannelStride
}
