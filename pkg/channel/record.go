// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import "fmt"

// Spec is the editable description of one channel slot. A zero RxFreq marks
// the slot empty; every other field is then ignored on encode. A zero TxFreq
// makes the channel receive-only.
type Spec struct {
	RxFreq  float64 `yaml:"rx_freq,omitempty" json:"rxFreq,omitempty"` // MHz
	TxFreq  float64 `yaml:"tx_freq,omitempty" json:"txFreq,omitempty"` // MHz
	RxTone  float64 `yaml:"rx_tone,omitempty" json:"rxTone,omitempty"` // Hz, 0 = none
	TxTone  float64 `yaml:"tx_tone,omitempty" json:"txTone,omitempty"` // Hz, 0 = none
	Power   Power   `yaml:"power" json:"power"`
	Width   Width   `yaml:"width" json:"width"`
	Scan    bool    `yaml:"scan" json:"scan"`
	AliasID string  `yaml:"alias,omitempty" json:"alias,omitempty"` // external alias store key
}

// IsEmpty reports whether the slot carries no receive frequency.
func (s Spec) IsEmpty() bool {
	return s.RxFreq == 0
}

// ReceiveOnly reports whether the slot has no transmit frequency.
func (s Spec) ReceiveOnly() bool {
	return s.TxFreq == 0
}

// Flags returns the settings packed into the flags byte.
func (s Spec) Flags() Flags {
	return Flags{Power: s.Power, Width: s.Width, Scan: s.Scan}
}

// Record is one slot's 32-byte memory layout.
type Record [RecordSize]byte

// NewRecord copies raw bytes into a Record.
func NewRecord(b []byte) (Record, error) {
	var r Record
	if len(b) != RecordSize {
		return r, fmt.Errorf("%w: got %d", ErrRecordSize, len(b))
	}
	copy(r[:], b)
	return r, nil
}

// IsEmpty reports whether the record holds no channel. The slot byte or the
// most significant receive frequency byte set to 0xFF marks an empty slot
// regardless of the other bytes.
func (r Record) IsEmpty() bool {
	return r[offSlot] == EmptyMarker || r[offRxFreq+freqFieldSize-1] == EmptyMarker
}

// Slot returns the slot number stored in byte 0, or 0 for an empty record.
func (r Record) Slot() int {
	if r[offSlot] == EmptyMarker {
		return 0
	}
	return int(r[offSlot])
}

// EmptyRecord returns the record written for an unused slot.
func (p Profile) EmptyRecord() Record {
	if p.TemplateEmpty {
		return recordTemplate
	}
	var r Record
	for i := range r {
		r[i] = EmptyMarker
	}
	return r
}

// EncodeRecord builds the record for a 1-based slot.
func (p Profile) EncodeRecord(slot int, s Spec) (Record, error) {
	if slot < 1 || slot > SlotCount {
		return Record{}, fmt.Errorf("slot %d out of range 1-%d", slot, SlotCount)
	}
	if s.IsEmpty() {
		return p.EmptyRecord(), nil
	}

	r := recordTemplate
	r[offSlot] = byte(slot)

	if err := p.encodeDirection(&r, offRxFreq, offRxStep, offRxTone, s.RxFreq, s.RxTone, "rx"); err != nil {
		return Record{}, withSlot(err, slot)
	}
	if !s.ReceiveOnly() {
		if err := p.encodeDirection(&r, offTxFreq, offTxStep, offTxTone, s.TxFreq, s.TxTone, "tx"); err != nil {
			return Record{}, withSlot(err, slot)
		}
	}

	flags, err := p.EncodeFlags(s.Flags())
	if err != nil {
		return Record{}, withSlot(err, slot)
	}
	r[offFlags] = flags

	return r, nil
}

func (p Profile) encodeDirection(r *Record, freqOff, stepOff, toneOff int, mhz, tone float64, dir string) error {
	freq, err := p.EncodeFrequency(mhz)
	if err != nil {
		return prefixField(err, dir)
	}
	step, err := StepFlag(mhz)
	if err != nil {
		return prefixField(err, dir)
	}
	code, err := p.EncodeTone(tone)
	if err != nil {
		return prefixField(err, dir)
	}
	copy(r[freqOff:], freq[:])
	r[stepOff] = step
	copy(r[toneOff:], code[:])
	return nil
}

// DecodeRecord parses a record. Empty records decode to a zero Spec.
func (p Profile) DecodeRecord(r Record) (Spec, error) {
	if r.IsEmpty() {
		return Spec{}, nil
	}

	var s Spec
	rx, ok, err := p.DecodeFrequency(field4(r, offRxFreq))
	if err != nil {
		return Spec{}, prefixField(err, "rx")
	}
	if !ok {
		return Spec{}, nil
	}
	s.RxFreq = rx
	if s.RxTone, err = p.DecodeTone(field2(r, offRxTone)); err != nil {
		return Spec{}, prefixField(err, "rx")
	}

	tx, ok, err := p.DecodeFrequency(field4(r, offTxFreq))
	if err != nil {
		return Spec{}, prefixField(err, "tx")
	}
	if ok {
		s.TxFreq = tx
		if s.TxTone, err = p.DecodeTone(field2(r, offTxTone)); err != nil {
			return Spec{}, prefixField(err, "tx")
		}
	}

	flags, err := p.DecodeFlags(r[offFlags])
	if err != nil {
		return Spec{}, err
	}
	s.Power, s.Width, s.Scan = flags.Power, flags.Width, flags.Scan

	return s, nil
}

func field4(r Record, off int) (f [freqFieldSize]byte) {
	copy(f[:], r[off:off+freqFieldSize])
	return f
}

func field2(r Record, off int) (f [toneFieldSize]byte) {
	copy(f[:], r[off:off+toneFieldSize])
	return f
}

// prefixField qualifies a codec error's field with the direction.
func prefixField(err error, dir string) error {
	switch e := err.(type) {
	case *EncodingError:
		e.Field = dir + " " + e.Field
	case *DecodingError:
		e.Field = dir + " " + e.Field
	}
	return err
}
