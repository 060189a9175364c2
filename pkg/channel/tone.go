// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"encoding/binary"
	"math"
)

// noToneCode is the legacy table code for "no tone".
var noToneCode = [toneFieldSize]byte{EmptyMarker, EmptyMarker}

// EncodeTone converts a CTCSS tone in Hz (0 = none) into the 2-byte tone
// field for the profile's tone encoding.
func (p Profile) EncodeTone(hz float64) ([toneFieldSize]byte, error) {
	scaled := hz * 10
	tenths := math.Round(scaled)
	if math.IsNaN(scaled) || tenths < 0 || tenths > math.MaxUint16 {
		return [toneFieldSize]byte{}, &EncodingError{Field: "tone", Value: hz, Reason: "outside 0-6553.5 Hz"}
	}
	if math.Abs(scaled-tenths) > resolutionEpsilon {
		return [toneFieldSize]byte{}, &EncodingError{Field: "tone", Value: hz, Reason: "below 0.1 Hz resolution"}
	}

	switch p.Tone {
	case ToneTable:
		code, ok := toneCode(uint16(tenths))
		if !ok {
			return [toneFieldSize]byte{}, &EncodingError{Field: "tone", Value: hz, Reason: "not a standard CTCSS tone"}
		}
		return code, nil

	case ToneTenths:
		var out [toneFieldSize]byte
		binary.LittleEndian.PutUint16(out[:], uint16(tenths))
		return out, nil
	}
	return [toneFieldSize]byte{}, &EncodingError{Field: "tone", Value: hz, Reason: "unknown tone encoding"}
}

// DecodeTone converts a 2-byte tone field back to Hz.
func (p Profile) DecodeTone(field [toneFieldSize]byte) (float64, error) {
	switch p.Tone {
	case ToneTable:
		for _, tenths := range toneTable {
			if code, _ := toneCode(tenths); code == field {
				return float64(tenths) / 10, nil
			}
		}
		return 0, &DecodingError{Field: "tone", Bytes: field[:], Reason: "not a known tone code"}

	case ToneTenths:
		return float64(binary.LittleEndian.Uint16(field[:])) / 10, nil
	}
	return 0, &DecodingError{Field: "tone", Bytes: field[:], Reason: "unknown tone encoding"}
}

// toneCode returns the legacy table code for a tone in tenths of a hertz.
// Codes are the four tenths digits packed two per byte, least significant
// pair first, matching the frequency digit layout.
func toneCode(tenths uint16) ([toneFieldSize]byte, bool) {
	for _, t := range toneTable {
		if t != tenths {
			continue
		}
		if t == 0 {
			return noToneCode, true
		}
		var code [toneFieldSize]byte
		packDigitPairs(code[:], int64(t))
		return code, true
	}
	return [toneFieldSize]byte{}, false
}
