// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import "math"

// Field resolution per encoding, in units per MHz
const (
	digitHexUnitsPerMHz = 100000 // 10 Hz
	bcdUnitsPerMHz      = 1000   // 1 kHz

	// tolerance when checking that a float lands on the field resolution
	resolutionEpsilon = 1e-3
)

// EncodeFrequency converts a frequency in MHz into the 4-byte field for the
// profile's frequency encoding.
func (p Profile) EncodeFrequency(mhz float64) ([freqFieldSize]byte, error) {
	switch p.Frequency {
	case FrequencyDigitHex:
		units, err := frequencyUnits(mhz, digitHexUnitsPerMHz, 10000000, 99999999, "below 10 Hz resolution", "outside 100.00000-999.99999 MHz")
		if err != nil {
			return [freqFieldSize]byte{}, err
		}
		var out [freqFieldSize]byte
		packDigitPairs(out[:], units)
		return out, nil

	case FrequencyBCD:
		units, err := frequencyUnits(mhz, bcdUnitsPerMHz, 1, 999999, "below 1 kHz resolution", "outside 0.001-999.999 MHz")
		if err != nil {
			return [freqFieldSize]byte{}, err
		}
		out := [freqFieldSize]byte{EmptyMarker}
		packDigitPairs(out[1:], units)
		return out, nil
	}
	return [freqFieldSize]byte{}, &EncodingError{Field: "frequency", Value: mhz, Reason: "unknown frequency encoding"}
}

// DecodeFrequency converts a 4-byte frequency field back to MHz. The boolean
// is false when the field holds no frequency.
func (p Profile) DecodeFrequency(field [freqFieldSize]byte) (float64, bool, error) {
	digits := field[:]
	if p.Frequency == FrequencyBCD {
		digits = field[1:]
	}
	for _, b := range digits {
		if b == EmptyMarker {
			return 0, false, nil
		}
	}

	units, ok := unpackDigitPairs(digits)
	if !ok {
		return 0, false, &DecodingError{Field: "frequency", Bytes: append([]byte(nil), field[:]...), Reason: "nibble is not a decimal digit"}
	}

	switch p.Frequency {
	case FrequencyDigitHex:
		return float64(units) / digitHexUnitsPerMHz, true, nil
	case FrequencyBCD:
		return float64(units) / bcdUnitsPerMHz, true, nil
	}
	return 0, false, &DecodingError{Field: "frequency", Bytes: append([]byte(nil), field[:]...), Reason: "unknown frequency encoding"}
}

// StepFlag infers the channel step flag from the first five fractional
// digits of a frequency in MHz. Divisors are tried in device order, not
// numeric order. A frequency whose fraction fits none of them is rejected
// rather than given a default.
//
// The mapping was reconstructed from observed radio behaviour and is not
// guaranteed to match the factory software for every frequency.
func StepFlag(mhz float64) (byte, error) {
	frac := mhz - math.Floor(mhz)
	digits := int64(math.Round(frac * 1e5))
	for _, s := range stepTable {
		if digits%s.divisor == 0 {
			return s.flag, nil
		}
	}
	return 0, &EncodingError{Field: "step", Value: mhz, Reason: "fraction matches no channel step"}
}

func frequencyUnits(mhz float64, perMHz float64, min, max int64, resolutionReason, rangeReason string) (int64, error) {
	scaled := mhz * perMHz
	units := math.Round(scaled)
	if math.IsNaN(scaled) || math.IsInf(scaled, 0) || units < float64(min) || units > float64(max) {
		return 0, &EncodingError{Field: "frequency", Value: mhz, Reason: rangeReason}
	}
	if math.Abs(scaled-units) > resolutionEpsilon {
		return 0, &EncodingError{Field: "frequency", Value: mhz, Reason: resolutionReason}
	}
	return int64(units), nil
}

// packDigitPairs writes n as two-digit decimal groups, least significant
// group first, one group per byte with tens in the high nibble.
func packDigitPairs(dst []byte, n int64) {
	for i := range dst {
		pair := n % 100
		n /= 100
		dst[i] = byte(pair/10)<<4 | byte(pair%10)
	}
}

func unpackDigitPairs(src []byte) (int64, bool) {
	var n, scale int64 = 0, 1
	for _, b := range src {
		high, low := b>>4, b&0x0F
		if high > 9 || low > 9 {
			return 0, false
		}
		n += int64(high*10+low) * scale
		scale *= 100
	}
	return n, true
}
