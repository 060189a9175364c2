// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"errors"
	"testing"
)

func TestEncodeFrequency(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		mhz     float64
		expect  [4]byte
	}{
		{"legacy 146.520", ProfileLegacy, 146.52, [4]byte{0x00, 0x20, 0x65, 0x14}},
		{"legacy 462.5625", ProfileLegacy, 462.5625, [4]byte{0x50, 0x62, 0x25, 0x46}},
		{"legacy lower bound", ProfileLegacy, 100.0, [4]byte{0x00, 0x00, 0x00, 0x10}},
		{"revised 146.520", ProfileRevised, 146.52, [4]byte{0xFF, 0x20, 0x65, 0x14}},
		{"revised 446.005", ProfileRevised, 446.005, [4]byte{0xFF, 0x05, 0x60, 0x44}},
		{"revised 0.001", ProfileRevised, 0.001, [4]byte{0xFF, 0x01, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.profile.EncodeFrequency(tt.mhz)
			if err != nil {
				t.Fatalf("EncodeFrequency(%v) error: %v", tt.mhz, err)
			}
			if got != tt.expect {
				t.Errorf("EncodeFrequency(%v) = % X, want % X", tt.mhz, got, tt.expect)
			}

			back, ok, err := tt.profile.DecodeFrequency(got)
			if err != nil || !ok {
				t.Fatalf("DecodeFrequency(% X) = %v, %v, %v", got, back, ok, err)
			}
			if back != tt.mhz {
				t.Errorf("DecodeFrequency(% X) = %v, want %v", got, back, tt.mhz)
			}
		})
	}
}

func TestEncodeFrequency_Errors(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		mhz     float64
	}{
		{"legacy below range", ProfileLegacy, 50.0},
		{"legacy above range", ProfileLegacy, 1000.0},
		{"legacy sub 10 Hz", ProfileLegacy, 146.520001},
		{"revised sub kHz", ProfileRevised, 146.5205},
		{"revised zero", ProfileRevised, 0.0004},
		{"revised above range", ProfileRevised, 1000.0},
		{"negative", ProfileRevised, -146.52},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.profile.EncodeFrequency(tt.mhz)
			if err == nil {
				t.Fatalf("EncodeFrequency(%v) expected error", tt.mhz)
			}
			if !errors.Is(err, ErrEncoding) {
				t.Errorf("error %v does not match ErrEncoding", err)
			}
		})
	}
}

func TestDecodeFrequency_Absent(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		field   [4]byte
	}{
		{"legacy all empty", ProfileLegacy, [4]byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{"legacy high byte empty", ProfileLegacy, [4]byte{0x00, 0x20, 0x65, 0xFF}},
		{"revised all empty", ProfileRevised, [4]byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := tt.profile.DecodeFrequency(tt.field)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Error("expected absent frequency")
			}
		})
	}
}

func TestDecodeFrequency_BadNibble(t *testing.T) {
	_, _, err := ProfileLegacy.DecodeFrequency([4]byte{0x0A, 0x20, 0x65, 0x14})
	if !errors.Is(err, ErrDecoding) {
		t.Errorf("expected ErrDecoding, got %v", err)
	}
}

func TestStepFlag(t *testing.T) {
	tests := []struct {
		mhz    float64
		expect byte
	}{
		{146.52, 0x01},   // 52000 % 500
		{146.625, 0x02},  // 62500 % 1250
		{146.5, 0x02},    // 1250 is tried before 500
		{146.0, 0x02},    // zero fraction
		{146.0075, 0x00}, // 750
		{146.0025, 0x03}, // 250
		{462.5625, 0x02}, // 56250 % 1250
	}

	for _, tt := range tests {
		got, err := StepFlag(tt.mhz)
		if err != nil {
			t.Errorf("StepFlag(%v) error: %v", tt.mhz, err)
			continue
		}
		if got != tt.expect {
			t.Errorf("StepFlag(%v) = %d, want %d", tt.mhz, got, tt.expect)
		}
	}
}

func TestStepFlag_FractionalPartOnly(t *testing.T) {
	for _, whole := range []float64{100, 146, 433, 999} {
		a, errA := StepFlag(whole + 0.52)
		b, errB := StepFlag(146.52)
		if errA != nil || errB != nil || a != b {
			t.Errorf("StepFlag(%v) = %d, %v; StepFlag(146.52) = %d, %v", whole+0.52, a, errA, b, errB)
		}
	}
}

func TestStepFlag_NoMatch(t *testing.T) {
	for _, mhz := range []float64{146.0001, 146.5201, 146.00333} {
		_, err := StepFlag(mhz)
		if !errors.Is(err, ErrEncoding) {
			t.Errorf("StepFlag(%v) = %v, want ErrEncoding", mhz, err)
		}
	}
}

func TestEncodeTone(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		hz      float64
		expect  [2]byte
	}{
		{"legacy none", ProfileLegacy, 0, [2]byte{0xFF, 0xFF}},
		{"legacy 67.0", ProfileLegacy, 67.0, [2]byte{0x70, 0x06}},
		{"legacy 100.0", ProfileLegacy, 100.0, [2]byte{0x00, 0x10}},
		{"legacy 250.3", ProfileLegacy, 250.3, [2]byte{0x03, 0x25}},
		{"revised none", ProfileRevised, 0, [2]byte{0x00, 0x00}},
		{"revised 67.0", ProfileRevised, 67.0, [2]byte{0x9E, 0x02}},
		{"revised 100.0", ProfileRevised, 100.0, [2]byte{0xE8, 0x03}},
		{"revised non-standard", ProfileRevised, 70.0, [2]byte{0xBC, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.profile.EncodeTone(tt.hz)
			if err != nil {
				t.Fatalf("EncodeTone(%v) error: %v", tt.hz, err)
			}
			if got != tt.expect {
				t.Errorf("EncodeTone(%v) = % X, want % X", tt.hz, got, tt.expect)
			}
			back, err := tt.profile.DecodeTone(got)
			if err != nil {
				t.Fatalf("DecodeTone(% X) error: %v", got, err)
			}
			if back != tt.hz {
				t.Errorf("DecodeTone(% X) = %v, want %v", got, back, tt.hz)
			}
		})
	}
}

func TestEncodeTone_Errors(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		hz      float64
	}{
		{"legacy non-standard", ProfileLegacy, 70.0},
		{"legacy sub tenth", ProfileLegacy, 67.05},
		{"revised negative", ProfileRevised, -1},
		{"revised too large", ProfileRevised, 7000},
		{"revised sub tenth", ProfileRevised, 88.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.profile.EncodeTone(tt.hz); !errors.Is(err, ErrEncoding) {
				t.Errorf("EncodeTone(%v) = %v, want ErrEncoding", tt.hz, err)
			}
		})
	}
}

func TestDecodeTone_UnknownCode(t *testing.T) {
	if _, err := ProfileLegacy.DecodeTone([2]byte{0x12, 0x34}); !errors.Is(err, ErrDecoding) {
		t.Errorf("expected ErrDecoding, got %v", err)
	}
}

func TestStandardTones(t *testing.T) {
	tones := StandardTones()
	if len(tones) == 0 {
		t.Fatal("no standard tones")
	}
	for _, hz := range tones {
		if _, err := ProfileLegacy.EncodeTone(hz); err != nil {
			t.Errorf("standard tone %v not encodable: %v", hz, err)
		}
	}
}

func TestEncodeFlags(t *testing.T) {
	tests := []struct {
		flags  Flags
		legacy byte
		bits   byte
	}{
		{Flags{PowerLow, WidthNarrow, true}, 0xCC, 0xCC},
		{Flags{PowerLow, WidthNarrow, false}, 0xDC, 0xDC},
		{Flags{PowerHigh, WidthNarrow, true}, 0xEC, 0xEC},
		{Flags{PowerHigh, WidthWide, false}, 0xFD, 0xFD},
		{Flags{PowerLow, WidthWide, true}, 0xCD, 0xCD},
	}

	for _, tt := range tests {
		got, err := ProfileLegacy.EncodeFlags(tt.flags)
		if err != nil || got != tt.legacy {
			t.Errorf("legacy EncodeFlags(%+v) = 0x%02X, %v, want 0x%02X", tt.flags, got, err, tt.legacy)
		}
		got, err = ProfileRevised.EncodeFlags(tt.flags)
		if err != nil || got != tt.bits {
			t.Errorf("revised EncodeFlags(%+v) = 0x%02X, %v, want 0x%02X", tt.flags, got, err, tt.bits)
		}
	}
}

// Every power, width and scan combination survives both layouts.
func TestFlags_PackingLaw(t *testing.T) {
	for _, p := range Profiles() {
		for _, power := range []Power{PowerLow, PowerHigh} {
			for _, width := range []Width{WidthNarrow, WidthWide} {
				for _, scan := range []bool{false, true} {
					in := Flags{Power: power, Width: width, Scan: scan}
					b, err := p.EncodeFlags(in)
					if err != nil {
						t.Fatalf("%s EncodeFlags(%+v) error: %v", p, in, err)
					}
					out, err := p.DecodeFlags(b)
					if err != nil {
						t.Fatalf("%s DecodeFlags(0x%02X) error: %v", p, b, err)
					}
					if out != in {
						t.Errorf("%s flags round trip: %+v -> 0x%02X -> %+v", p, in, b, out)
					}
				}
			}
		}
	}
}

func TestDecodeFlags_LegacyOutOfRange(t *testing.T) {
	for _, b := range []byte{0x11, 0xBC, 0xCE, 0xCB} {
		if _, err := ProfileLegacy.DecodeFlags(b); !errors.Is(err, ErrDecoding) {
			t.Errorf("DecodeFlags(0x%02X) = %v, want ErrDecoding", b, err)
		}
	}
}

func TestEncodeFlags_InvalidValues(t *testing.T) {
	if _, err := ProfileRevised.EncodeFlags(Flags{Power: 2}); !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding, got %v", err)
	}
}

func TestChecksum(t *testing.T) {
	tests := []struct {
		name   string
		input  []byte
		expect byte
	}{
		{"empty", nil, 0x00},
		{"single", []byte{0x42}, 0x42},
		{"wraps", []byte{0xFF, 0x02}, 0x01},
		{"all ones", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 0xFC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.input); got != tt.expect {
				t.Errorf("Checksum(% X) = 0x%02X, want 0x%02X", tt.input, got, tt.expect)
			}
		})
	}
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("Revised")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != ProfileRevised {
		t.Errorf("got %+v, want revised", p)
	}
	if _, err := ProfileByName("tk-9000"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestPowerWidth_Text(t *testing.T) {
	var p Power
	if err := p.UnmarshalText([]byte("HIGH")); err != nil || p != PowerHigh {
		t.Errorf("UnmarshalText(HIGH) = %v, %v", p, err)
	}
	if err := p.UnmarshalText([]byte("max")); err == nil {
		t.Error("expected error for unknown power level")
	}
	var w Width
	if err := w.UnmarshalText([]byte("wide")); err != nil || w != WidthWide {
		t.Errorf("UnmarshalText(wide) = %v, %v", w, err)
	}
	b, _ := WidthNarrow.MarshalText()
	if string(b) != "narrow" {
		t.Errorf("MarshalText = %q, want narrow", b)
	}
}
