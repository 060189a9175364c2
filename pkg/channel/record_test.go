// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// Only slot 3 populated: 146.520 MHz receive-only, no tone, high power,
// narrow, scanning.
func TestEncode_SingleReceiveOnlySlot(t *testing.T) {
	var table Table
	*table.Slot(3) = Spec{RxFreq: 146.52, Power: PowerHigh, Width: WidthNarrow, Scan: true}

	for _, p := range Profiles() {
		t.Run(p.Name, func(t *testing.T) {
			img, active, err := p.Encode(table)
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}

			rec := img[2]
			if rec[0] != 3 {
				t.Errorf("slot byte = 0x%02X, want 0x03", rec[0])
			}
			noTone, _ := p.EncodeTone(0)
			if !bytes.Equal(rec[12:14], noTone[:]) {
				t.Errorf("rx tone = % X, want % X", rec[12:14], noTone)
			}
			flags, _ := p.EncodeFlags(Flags{Power: PowerHigh, Width: WidthNarrow, Scan: true})
			if rec[17] != flags {
				t.Errorf("flags = 0x%02X, want 0x%02X", rec[17], flags)
			}
			if !bytes.Equal(rec[6:10], []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
				t.Errorf("tx frequency = % X, want empty", rec[6:10])
			}
			if rec[10] != 0x01 {
				t.Errorf("rx step = 0x%02X, want 0x01", rec[10])
			}

			empty := p.EmptyRecord()
			for i, r := range img {
				if i == 2 {
					continue
				}
				if r != empty {
					t.Errorf("record %d = % X, want empty sentinel", i+1, r[:])
				}
			}

			if !reflect.DeepEqual(active, []int{3}) {
				t.Errorf("active = %v, want [3]", active)
			}

			back, err := p.Decode(img)
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if back != table {
				t.Errorf("decoded table differs:\n%s\nwant:\n%s", FormatTable(back), FormatTable(table))
			}
		})
	}
}

func TestEncodeRecord_LegacyBytes(t *testing.T) {
	spec := Spec{
		RxFreq: 146.52,
		TxFreq: 146.52,
		RxTone: 67.0,
		TxTone: 100.0,
		Power:  PowerLow,
		Width:  WidthWide,
		Scan:   false,
	}
	rec, err := ProfileLegacy.EncodeRecord(1, spec)
	if err != nil {
		t.Fatalf("EncodeRecord error: %v", err)
	}

	expect := recordTemplate
	copy(expect[:], []byte{
		0x01, 0xFF,
		0x00, 0x20, 0x65, 0x14,
		0x00, 0x20, 0x65, 0x14,
		0x01, 0x01,
		0x70, 0x06,
		0x00, 0x10,
		0x18,
		0xDD,
	})
	if rec != expect {
		t.Errorf("record =\n% X\nwant\n% X", rec[:], expect[:])
	}
}

func TestEncodeRecord_RevisedBytes(t *testing.T) {
	spec := Spec{RxFreq: 446.00625, TxFreq: 0, RxTone: 0}
	if _, err := ProfileRevised.EncodeRecord(1, spec); !errors.Is(err, ErrEncoding) {
		t.Fatalf("sub-kHz frequency should fail, got %v", err)
	}

	spec = Spec{RxFreq: 462.56, TxFreq: 467.56, RxTone: 70.0, TxTone: 123.0, Power: PowerHigh, Width: WidthWide, Scan: true}
	rec, err := ProfileRevised.EncodeRecord(16, spec)
	if err != nil {
		t.Fatalf("EncodeRecord error: %v", err)
	}
	if rec[0] != 16 {
		t.Errorf("slot byte = %d, want 16", rec[0])
	}
	if !bytes.Equal(rec[2:6], []byte{0xFF, 0x60, 0x25, 0x46}) {
		t.Errorf("rx = % X", rec[2:6])
	}
	if !bytes.Equal(rec[6:10], []byte{0xFF, 0x60, 0x75, 0x46}) {
		t.Errorf("tx = % X", rec[6:10])
	}
	if !bytes.Equal(rec[12:16], []byte{0xBC, 0x02, 0xCE, 0x04}) {
		t.Errorf("tones = % X", rec[12:16])
	}
	if rec[17] != 0xED {
		t.Errorf("flags = 0x%02X, want 0xED", rec[17])
	}
}

func TestEncodeRecord_SlotRange(t *testing.T) {
	for _, slot := range []int{0, 17, -1} {
		if _, err := ProfileLegacy.EncodeRecord(slot, Spec{RxFreq: 146.52}); err == nil {
			t.Errorf("EncodeRecord(%d) expected error", slot)
		}
	}
}

func TestEncodeRecord_ErrorCarriesSlot(t *testing.T) {
	var table Table
	*table.Slot(5) = Spec{RxFreq: 146.52, RxTone: 70.0}

	_, _, err := ProfileLegacy.Encode(table)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	if encErr.Slot != 5 {
		t.Errorf("Slot = %d, want 5", encErr.Slot)
	}
	if encErr.Field != "rx tone" {
		t.Errorf("Field = %q, want %q", encErr.Field, "rx tone")
	}
}

// An empty slot encodes to the sentinel no matter what stale fields remain.
func TestEncodeRecord_EmptyIgnoresStaleFields(t *testing.T) {
	stale := []Spec{
		{},
		{TxFreq: 146.52},
		{TxFreq: 146.52, RxTone: 67.0, TxTone: 999.9, Power: PowerHigh, Width: WidthWide, Scan: true},
		{RxTone: 70.0, AliasID: "repeater"},
	}
	for _, p := range Profiles() {
		for _, s := range stale {
			rec, err := p.EncodeRecord(4, s)
			if err != nil {
				t.Fatalf("%s EncodeRecord(%+v) error: %v", p, s, err)
			}
			if rec != p.EmptyRecord() {
				t.Errorf("%s EncodeRecord(%+v) = % X, want empty sentinel", p, s, rec[:])
			}
		}
	}
}

func TestEmptyRecord(t *testing.T) {
	legacy := ProfileLegacy.EmptyRecord()
	for i, b := range legacy {
		if b != 0xFF {
			t.Fatalf("legacy empty byte %d = 0x%02X, want 0xFF", i, b)
		}
	}

	revised := ProfileRevised.EmptyRecord()
	if revised != recordTemplate {
		t.Errorf("revised empty record = % X, want template", revised[:])
	}
	if !revised.IsEmpty() || !legacy.IsEmpty() {
		t.Error("empty records must report IsEmpty")
	}
}

func TestRecord_IsEmpty(t *testing.T) {
	rec, err := ProfileLegacy.EncodeRecord(2, Spec{RxFreq: 146.52})
	if err != nil {
		t.Fatalf("EncodeRecord error: %v", err)
	}
	if rec.IsEmpty() {
		t.Fatal("populated record reported empty")
	}
	if rec.Slot() != 2 {
		t.Errorf("Slot() = %d, want 2", rec.Slot())
	}

	byte5 := rec
	byte5[5] = 0xFF
	if !byte5.IsEmpty() {
		t.Error("byte 5 = 0xFF must mark the record empty")
	}
	s, err := ProfileLegacy.DecodeRecord(byte5)
	if err != nil || !s.IsEmpty() {
		t.Errorf("DecodeRecord = %+v, %v, want empty spec", s, err)
	}

	byte0 := rec
	byte0[0] = 0xFF
	if !byte0.IsEmpty() || byte0.Slot() != 0 {
		t.Error("byte 0 = 0xFF must mark the record empty")
	}
}

func TestNewRecord(t *testing.T) {
	if _, err := NewRecord(make([]byte, 31)); !errors.Is(err, ErrRecordSize) {
		t.Errorf("expected ErrRecordSize, got %v", err)
	}
	raw := bytes.Repeat([]byte{0xAB}, RecordSize)
	rec, err := NewRecord(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(rec[:], raw) {
		t.Error("record bytes differ from input")
	}
}

func TestDecodeRecord_ErrorCarriesSlot(t *testing.T) {
	var img Image
	for i := range img {
		img[i] = ProfileLegacy.EmptyRecord()
	}
	rec, _ := ProfileLegacy.EncodeRecord(7, Spec{RxFreq: 146.52})
	rec[17] = 0x11
	img[6] = rec

	_, err := ProfileLegacy.Decode(img)
	var decErr *DecodingError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodingError, got %v", err)
	}
	if decErr.Slot != 7 {
		t.Errorf("Slot = %d, want 7", decErr.Slot)
	}
}

func TestImageBytes(t *testing.T) {
	var table Table
	*table.Slot(1) = Spec{RxFreq: 146.52}
	*table.Slot(16) = Spec{RxFreq: 446.1, Scan: true}
	img, _, err := ProfileRevised.Encode(table)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	raw := img.Bytes()
	if len(raw) != SlotCount*RecordSize {
		t.Fatalf("len = %d, want %d", len(raw), SlotCount*RecordSize)
	}
	back, err := ImageFromBytes(raw)
	if err != nil {
		t.Fatalf("ImageFromBytes error: %v", err)
	}
	if back != img {
		t.Error("image differs after flattening")
	}

	if _, err := ImageFromBytes(raw[:100]); !errors.Is(err, ErrRecordSize) {
		t.Errorf("expected ErrRecordSize, got %v", err)
	}
}

func TestEncode_ActiveSlots(t *testing.T) {
	var table Table
	*table.Slot(1) = Spec{RxFreq: 146.52, Scan: true}
	*table.Slot(2) = Spec{RxFreq: 146.54}
	*table.Slot(9) = Spec{RxFreq: 146.56, Scan: true}
	*table.Slot(12) = Spec{Scan: true}
	*table.Slot(16) = Spec{RxFreq: 146.58, Scan: true}

	_, active, err := ProfileLegacy.Encode(table)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !reflect.DeepEqual(active, []int{1, 9, 16}) {
		t.Errorf("active = %v, want [1 9 16]", active)
	}
}

func TestScanMask(t *testing.T) {
	tests := []struct {
		name   string
		active []int
		expect [2]byte
	}{
		{"none", nil, [2]byte{0xFF, 0xFF}},
		{"all", []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, [2]byte{0x00, 0x00}},
		{"first of each byte", []int{1, 9}, [2]byte{0xFE, 0xFE}},
		{"mixed", []int{1, 3, 9, 16}, [2]byte{0xFA, 0x7E}},
		{"out of range ignored", []int{0, 8, 17}, [2]byte{0x7F, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanMask(tt.active)
			if got != tt.expect {
				t.Errorf("ScanMask(%v) = % X, want % X", tt.active, got, tt.expect)
			}
		})
	}
}

func TestActiveSlots(t *testing.T) {
	active := []int{2, 8, 9, 15}
	if got := ActiveSlots(ScanMask(active)); !reflect.DeepEqual(got, active) {
		t.Errorf("ActiveSlots = %v, want %v", got, active)
	}
	if got := ActiveSlots([2]byte{0xFF, 0xFF}); len(got) != 0 {
		t.Errorf("ActiveSlots(FF FF) = %v, want none", got)
	}
}

func TestTable_SlotPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for slot 0")
		}
	}()
	var table Table
	table.Slot(0)
}
