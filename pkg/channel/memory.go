// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import "fmt"

// Table holds one Spec per slot; index 0 is slot 1.
type Table [SlotCount]Spec

// Slot returns the Spec for a 1-based slot.
func (t *Table) Slot(n int) *Spec {
	if n < 1 || n > SlotCount {
		panic(fmt.Sprintf("channel: slot %d out of range", n))
	}
	return &t[n-1]
}

// Image is the 16-record memory block exchanged with the radio, index-aligned
// with Table.
type Image [SlotCount]Record

// Bytes flattens the image into 512 bytes in slot order.
func (img Image) Bytes() []byte {
	out := make([]byte, 0, SlotCount*RecordSize)
	for _, r := range img {
		out = append(out, r[:]...)
	}
	return out
}

// ImageFromBytes splits 512 raw bytes into an image.
func ImageFromBytes(b []byte) (Image, error) {
	var img Image
	if len(b) != SlotCount*RecordSize {
		return img, fmt.Errorf("%w: image needs %d bytes, got %d", ErrRecordSize, SlotCount*RecordSize, len(b))
	}
	for i := range img {
		copy(img[i][:], b[i*RecordSize:(i+1)*RecordSize])
	}
	return img, nil
}

// Encode converts a table into a memory image and the ascending list of
// 1-based slots with scanning enabled. The table is not modified.
func (p Profile) Encode(t Table) (Image, []int, error) {
	var img Image
	active := make([]int, 0, SlotCount)

	for i, s := range t {
		slot := i + 1
		r, err := p.EncodeRecord(slot, s)
		if err != nil {
			return Image{}, nil, err
		}
		img[i] = r
		if !s.IsEmpty() && s.Scan {
			active = append(active, slot)
		}
	}

	return img, active, nil
}

// Decode converts a memory image back into a table. Empty records become
// zero Specs.
func (p Profile) Decode(img Image) (Table, error) {
	var t Table
	for i, r := range img {
		s, err := p.DecodeRecord(r)
		if err != nil {
			return Table{}, withSlot(err, i+1)
		}
		t[i] = s
	}
	return t, nil
}

// ScanMask builds the two-byte scan enumeration for the active slots. Bits
// start set; clearing bit n of byte 0 enables slot n+1, and bit n of byte 1
// enables slot n+9. Slots outside 1-16 are ignored.
func ScanMask(active []int) [2]byte {
	mask := [2]byte{0xFF, 0xFF}
	for _, slot := range active {
		switch {
		case slot >= 1 && slot <= 8:
			mask[0] &^= 1 << (slot - 1)
		case slot >= 9 && slot <= SlotCount:
			mask[1] &^= 1 << (slot - 9)
		}
	}
	return mask
}

// ActiveSlots reads a scan mask back into the ascending list of enabled slots.
func ActiveSlots(mask [2]byte) []int {
	var active []int
	for slot := 1; slot <= SlotCount; slot++ {
		b, bit := mask[0], slot-1
		if slot > 8 {
			b, bit = mask[1], slot-9
		}
		if b&(1<<bit) == 0 {
			active = append(active, slot)
		}
	}
	return active
}
