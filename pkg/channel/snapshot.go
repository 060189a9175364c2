// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// SnapshotVersion is the current snapshot format version
const SnapshotVersion = 1

// ErrSnapshot is wrapped by every snapshot format error
var ErrSnapshot = errors.New("invalid snapshot")

// Snapshot is a memory image saved to disk together with the profile it
// was read under.
type Snapshot struct {
	Profile  string
	Taken    time.Time
	Image    Image
	ScanMask [2]byte
}

// snapshotWire is the CBOR layout. Integer keys keep files compact.
type snapshotWire struct {
	Version  uint64    `cbor:"0,keyasint"`
	Profile  string    `cbor:"1,keyasint"`
	Taken    time.Time `cbor:"2,keyasint"`
	Records  [][]byte  `cbor:"3,keyasint"`
	ScanMask []byte    `cbor:"4,keyasint,omitempty"`
}

var snapshotEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("channel: snapshot encoder: %v", err))
	}
	return em
}()

// NewSnapshot wraps an image read under profile p.
func NewSnapshot(p Profile, img Image) Snapshot {
	return Snapshot{
		Profile:  p.Name,
		Taken:    time.Now(),
		Image:    img,
		ScanMask: [2]byte{EmptyMarker, EmptyMarker},
	}
}

// Table decodes the snapshot's image with its recorded profile.
func (s Snapshot) Table() (Table, error) {
	p, err := ProfileByName(s.Profile)
	if err != nil {
		return Table{}, err
	}
	return p.Decode(s.Image)
}

// WriteSnapshot encodes s to w as CBOR.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	wire := snapshotWire{
		Version:  SnapshotVersion,
		Profile:  s.Profile,
		Taken:    s.Taken,
		Records:  make([][]byte, 0, SlotCount),
		ScanMask: s.ScanMask[:],
	}
	for _, r := range s.Image {
		rec := r
		wire.Records = append(wire.Records, rec[:])
	}

	if err := snapshotEncMode.NewEncoder(w).Encode(wire); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var wire snapshotWire
	if err := cbor.NewDecoder(r).Decode(&wire); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if wire.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrSnapshot, wire.Version)
	}
	if _, err := ProfileByName(wire.Profile); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if len(wire.Records) != SlotCount {
		return Snapshot{}, fmt.Errorf("%w: expected %d records, got %d", ErrSnapshot, SlotCount, len(wire.Records))
	}

	s := Snapshot{
		Profile:  wire.Profile,
		Taken:    wire.Taken,
		ScanMask: [2]byte{EmptyMarker, EmptyMarker},
	}
	for i, raw := range wire.Records {
		rec, err := NewRecord(raw)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: record %d: %v", ErrSnapshot, i+1, err)
		}
		s.Image[i] = rec
	}
	if len(wire.ScanMask) == 2 {
		copy(s.ScanMask[:], wire.ScanMask)
	}

	return s, nil
}

// SaveSnapshot writes s to a file, replacing any existing one.
func SaveSnapshot(path string, s Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
