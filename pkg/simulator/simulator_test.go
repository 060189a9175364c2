// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package simulator

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

const k2 = 0xBB

func mustRead(t *testing.T, r *Radio, n int) []byte {
	t.Helper()
	b, err := r.ReadExact(n, time.Millisecond)
	if err != nil {
		t.Fatalf("ReadExact(%d): %v", n, err)
	}
	return b
}

func send(t *testing.T, r *Radio, data ...byte) {
	t.Helper()
	if err := r.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

// handshake drives a radio to the active state by hand.
func handshake(t *testing.T, r *Radio) {
	t.Helper()
	send(t, r, programRequest...)
	if b := mustRead(t, r, 1); b[0] != listening {
		t.Fatalf("listening = 0x%02X", b[0])
	}
	if err := r.SetBaudRate(19200); err != nil {
		t.Fatal(err)
	}
	if b := mustRead(t, r, 1); b[0] != confirm {
		t.Fatalf("baud confirm = 0x%02X", b[0])
	}
	send(t, r, version)
	if id := mustRead(t, r, 40); !bytes.HasPrefix(id, []byte("TK-2402")) {
		t.Fatalf("identity = % X", id)
	}
	send(t, r, 0x00, confirm)
	if b := mustRead(t, r, 1); b[0] != confirm {
		t.Fatalf("first key confirm = 0x%02X", b[0])
	}
	send(t, r, keyMarker^k2)
	mustRead(t, r, 10)
	send(t, r, confirm^k2)
	if b := mustRead(t, r, 1); b[0]^k2 != confirm {
		t.Fatalf("second key confirm = 0x%02X", b[0])
	}
}

func TestRadio_Handshake(t *testing.T) {
	r := New()
	handshake(t, r)

	if v := r.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
	if got := r.BaudChanges(); len(got) != 1 || got[0] != 19200 {
		t.Errorf("baud changes = %v, want [19200]", got)
	}
}

func TestRadio_WriteThenRead(t *testing.T) {
	r := New()
	handshake(t, r)

	data := []byte{0x50, 0x32, 0x34, 0x30}
	send(t, r, cmdWrite^k2, 0x00^k2, 0x70^k2, byte(len(data))^k2)
	for _, b := range data {
		send(t, r, b^k2)
	}
	send(t, r, channel.Checksum(data)^k2)
	if b := mustRead(t, r, 1); b[0]^k2 != confirm {
		t.Fatalf("write confirm = 0x%02X", b[0]^k2)
	}

	send(t, r, cmdRead^k2, 0x00^k2, 0x70^k2, byte(len(data))^k2)
	echo := mustRead(t, r, 4)
	want := []byte{cmdEcho ^ k2, 0x00 ^ k2, 0x70 ^ k2, byte(len(data)) ^ k2}
	if !bytes.Equal(echo, want) {
		t.Errorf("echo = % X, want % X", echo, want)
	}
	got := xor(mustRead(t, r, len(data)), k2)
	if !bytes.Equal(got, data) {
		t.Errorf("data = % X, want % X", got, data)
	}
	send(t, r, confirm^k2)
	mustRead(t, r, 1)

	send(t, r, cmdEnd^k2)
	if b := mustRead(t, r, 1); b[0]^k2 != confirm {
		t.Errorf("end confirm = 0x%02X", b[0]^k2)
	}
	if !r.Ended() {
		t.Error("radio did not end the session")
	}
	if v := r.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
	if n := len(r.Transactions()); n != 2 {
		t.Errorf("transactions = %d, want 2", n)
	}
}

func TestRadio_BadChecksumRejected(t *testing.T) {
	r := New()
	handshake(t, r)

	send(t, r, cmdWrite^k2, 0x10^k2, 0x00^k2, 0x02^k2, 0xAA^k2, 0xBB^k2, 0x00^k2)
	if b := mustRead(t, r, 1); b[0]^k2 != rejectByte {
		t.Errorf("reply = 0x%02X, want reject", b[0]^k2)
	}
	if got := r.Memory(0x1000, 2); !bytes.Equal(got, []byte{0xFF, 0xFF}) {
		t.Errorf("memory written despite bad checksum: % X", got)
	}
}

func TestRadio_RejectsProgram(t *testing.T) {
	r := New(WithListeningReply(0x00))
	send(t, r, programRequest...)
	if b := mustRead(t, r, 1); b[0] != 0x00 {
		t.Fatalf("reply = 0x%02X", b[0])
	}
	send(t, r, cmdEnd^k2)
	if b := mustRead(t, r, 1); b[0]^k2 != confirm {
		t.Errorf("end confirm = 0x%02X", b[0]^k2)
	}
}

func TestRadio_WrongBaudIsSilent(t *testing.T) {
	r := New()
	send(t, r, programRequest...)
	mustRead(t, r, 1)
	if err := r.SetBaudRate(9600); err != nil {
		t.Fatal(err)
	}
	_, err := r.ReadExact(1, time.Millisecond)
	if !errors.Is(err, transport.ErrTimeout) {
		t.Errorf("err = %v, want timeout", err)
	}
	if len(r.Violations()) != 1 {
		t.Errorf("violations = %v, want one", r.Violations())
	}
}

func TestRadio_Closed(t *testing.T) {
	r := New()
	r.Close()
	if err := r.Write([]byte{0x00}); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("Write err = %v", err)
	}
	if _, err := r.ReadExact(1, 0); !errors.Is(err, transport.ErrClosed) {
		t.Errorf("ReadExact err = %v", err)
	}
	if !r.Closed() {
		t.Error("Closed() = false")
	}
}

func TestRadio_LoadImage(t *testing.T) {
	var table channel.Table
	*table.Slot(1) = channel.Spec{RxFreq: 462.55, TxFreq: 462.55, Power: channel.PowerHigh}
	img, _, err := channel.ProfileRevised.Encode(table)
	if err != nil {
		t.Fatal(err)
	}

	r := New()
	r.LoadImage(img)
	if got := r.Image(); got != img {
		t.Error("Image() differs from loaded image")
	}
	if got := r.Memory(ChannelAddress(1), 1); got[0] != 1 {
		t.Errorf("slot byte = 0x%02X", got[0])
	}
}
