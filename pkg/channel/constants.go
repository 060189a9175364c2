// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package channel converts between human-editable channel descriptions and the
// fixed 32-byte channel records stored in TK-series transceiver memory.
//
// Two wire encodings exist. The legacy encoding stores frequencies as
// digit-reversed hex and CTCSS tones as table codes; the revised encoding
// stores BCD kilohertz and little-endian tenths of a hertz. A Profile selects
// one encoding for a whole memory image.
package channel

// Memory geometry
const (
	SlotCount  = 16
	RecordSize = 0x20
)

// Record field offsets
const (
	offSlot      = 0
	offRxFreq    = 2
	offTxFreq    = 6
	offRxStep    = 10
	offTxStep    = 11
	offRxTone    = 12
	offTxTone    = 14
	offSignaling = 16
	offFlags     = 17

	freqFieldSize = 4
	toneFieldSize = 2
)

// EmptyMarker fills every unused byte of a record.
const EmptyMarker = 0xFF

// recordTemplate holds the device defaults written under every populated
// record. Bytes 16-31 carry optional signalling (0x18 = none) and option
// settings the programming software never edits.
var recordTemplate = Record{
	0xFF,                   // slot number
	0xFF,                   // unused
	0xFF, 0xFF, 0xFF, 0xFF, // rx frequency
	0xFF, 0xFF, 0xFF, 0xFF, // tx frequency
	0xFF,                   // rx step flag
	0xFF,                   // tx step flag
	0xFF, 0xFF,             // rx tone
	0xFF, 0xFF,             // tx tone
	0x18,                   // optional signalling: none
	0xEC,                   // power/scan/width
	0xE6, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x0F, 0xFF, 0xFF,
}

// stepDivisor pairs a step flag with the divisor that selects it.
type stepDivisor struct {
	flag    byte
	divisor int64
}

// stepTable is searched in order; the first divisor that evenly divides the
// five fractional digits wins. The order is not numeric.
var stepTable = []stepDivisor{
	{flag: 0x02, divisor: 1250},
	{flag: 0x01, divisor: 500},
	{flag: 0x00, divisor: 750},
	{flag: 0x03, divisor: 250},
}

// toneTable lists the standard CTCSS tones in tenths of a hertz, in device
// order. Entry zero means no tone.
var toneTable = []uint16{
	0, 670, 693, 719, 744, 770, 797, 825,
	854, 885, 915, 948, 974, 1000, 1035, 1072,
	1109, 1148, 1188, 1230, 1273, 1318, 1365, 1413,
	1462, 1514, 1567, 1622, 1679, 1738, 1799, 1862,
	1928, 2035, 2107, 2181, 2257, 2336, 2418, 2503,
}

// StandardTones returns the CTCSS tones (Hz) accepted by the legacy encoding,
// including 0 for no tone.
func StandardTones() []float64 {
	tones := make([]float64, len(toneTable))
	for i, t := range toneTable {
		tones[i] = float64(t) / 10
	}
	return tones
}
