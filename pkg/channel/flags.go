// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"fmt"
	"strings"
)

// Power is the transmit power level.
type Power uint8

const (
	PowerLow Power = iota
	PowerHigh
)

func (p Power) String() string {
	if p == PowerHigh {
		return "high"
	}
	return "low"
}

// MarshalText renders the level as "low" or "high".
func (p Power) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "low" or "high", case-insensitively.
func (p *Power) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "low", "0":
		*p = PowerLow
	case "high", "1":
		*p = PowerHigh
	default:
		return fmt.Errorf("unknown power level %q", string(b))
	}
	return nil
}

// Width is the channel bandwidth.
type Width uint8

const (
	WidthNarrow Width = iota
	WidthWide
)

func (w Width) String() string {
	if w == WidthWide {
		return "wide"
	}
	return "narrow"
}

func (w Width) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Width) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "narrow", "0":
		*w = WidthNarrow
	case "wide", "1":
		*w = WidthWide
	default:
		return fmt.Errorf("unknown channel width %q", string(b))
	}
	return nil
}

// Flags holds the per-channel settings packed into record byte 17.
type Flags struct {
	Power Power
	Width Width
	Scan  bool
}

// Flag bit layout for FlagsBits
const (
	flagsBase     = 0xCC
	flagPowerBit  = 1 << 5
	flagNoScanBit = 1 << 4
	flagWidthBit  = 1 << 0
)

// EncodeFlags packs power, width and scan into a single byte.
func (p Profile) EncodeFlags(f Flags) (byte, error) {
	if f.Power > PowerHigh || f.Width > WidthWide {
		return 0, &EncodingError{Field: "flags", Value: float64(f.Power)*10 + float64(f.Width), Reason: "power and width must be 0 or 1"}
	}
	noScan := byte(1)
	if f.Scan {
		noScan = 0
	}

	switch p.Flags {
	case FlagsNibble:
		high := byte(f.Power)*2 + 0xC + noScan
		low := byte(f.Width) + 0xC
		return high<<4 | low, nil

	case FlagsBits:
		return flagsBase | byte(f.Power)<<5 | noScan<<4 | byte(f.Width), nil
	}
	return 0, &EncodingError{Field: "flags", Reason: "unknown flags encoding"}
}

// DecodeFlags unpacks the flags byte.
func (p Profile) DecodeFlags(b byte) (Flags, error) {
	switch p.Flags {
	case FlagsNibble:
		high, low := b>>4, b&0x0F
		if high < 0xC || low < 0xC || low > 0xD {
			return Flags{}, &DecodingError{Field: "flags", Bytes: []byte{b}, Reason: fmt.Sprintf("nibbles 0x%X/0x%X out of range", high, low)}
		}
		f := Flags{
			Width: Width(low - 0xC),
			Scan:  high%2 == 0,
		}
		if high >= 0xE {
			f.Power = PowerHigh
		}
		return f, nil

	case FlagsBits:
		f := Flags{
			Scan: b&flagNoScanBit == 0,
		}
		if b&flagPowerBit != 0 {
			f.Power = PowerHigh
		}
		if b&flagWidthBit != 0 {
			f.Width = WidthWide
		}
		return f, nil
	}
	return Flags{}, &DecodingError{Field: "flags", Bytes: []byte{b}, Reason: "unknown flags encoding"}
}
