// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"fmt"
	"strings"
)

// FrequencyEncoding selects the 4-byte frequency field layout.
type FrequencyEncoding uint8

const (
	// FrequencyDigitHex stores eight decimal digits (10 Hz resolution) as
	// hex nibbles, least significant pair first.
	FrequencyDigitHex FrequencyEncoding = iota
	// FrequencyBCD stores whole kilohertz as three BCD bytes after an
	// unused 0xFF byte, least significant pair first.
	FrequencyBCD
)

// ToneEncoding selects the 2-byte CTCSS field layout.
type ToneEncoding uint8

const (
	// ToneTable accepts only the standard tones and stores their table code.
	ToneTable ToneEncoding = iota
	// ToneTenths stores any tone as little-endian tenths of a hertz.
	ToneTenths
)

// FlagsEncoding selects the power/width/scan byte layout.
type FlagsEncoding uint8

const (
	// FlagsNibble packs power and scan into the high nibble and width into
	// the low nibble, both offset by 0xC.
	FlagsNibble FlagsEncoding = iota
	// FlagsBits ORs single bits for power (5), no-scan (4) and width (0)
	// onto 0xCC.
	FlagsBits
)

// Profile bundles the three field encodings used by one device family.
// It is chosen once per memory image and never mixed.
type Profile struct {
	Name      string
	Frequency FrequencyEncoding
	Tone      ToneEncoding
	Flags     FlagsEncoding

	// TemplateEmpty writes the device default template into empty records
	// instead of leaving them entirely 0xFF.
	TemplateEmpty bool
}

// Built-in profiles
var (
	ProfileLegacy = Profile{
		Name:      "legacy",
		Frequency: FrequencyDigitHex,
		Tone:      ToneTable,
		Flags:     FlagsNibble,
	}

	ProfileRevised = Profile{
		Name:          "revised",
		Frequency:     FrequencyBCD,
		Tone:          ToneTenths,
		Flags:         FlagsBits,
		TemplateEmpty: true,
	}
)

// Profiles lists the built-in profiles by name.
func Profiles() []Profile {
	return []Profile{ProfileLegacy, ProfileRevised}
}

// ProfileByName looks up a built-in profile, ignoring case.
func ProfileByName(name string) (Profile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown codec profile %q (use legacy or revised)", name)
}

// String returns the profile name.
func (p Profile) String() string {
	return p.Name
}
