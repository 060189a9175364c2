// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package simulator emulates the radio side of the TK-series programming
// protocol in memory. A Radio satisfies transport.Transport, so a session can
// run against it unchanged; faults can be injected at each step.
package simulator

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

// Device-side protocol bytes
const (
	listening  = 0x16
	version    = 0x02
	confirm    = 0x06
	keyMarker  = 0x50
	cmdRead    = 0x52
	cmdEcho    = 0x57
	cmdWrite   = 0x59
	cmdEnd     = 0x45
	rejectByte = 0x15 // sent instead of a confirmation for a bad checksum

	channelBase   = 0x12C0
	channelStride = 0x20
	memorySize    = 0x2000
)

var programRequest = []byte("PROGRAM")

type deviceState int

const (
	waitProgram deviceState = iota
	rejected
	waitBaud
	waitVersion
	waitFirstKey
	waitFirstConfirm
	waitMarker
	waitSecondConfirm
	active
	readDescriptor
	waitReadConfirm
	writeData
	ended
	confused
)

// Transaction records one block descriptor the radio accepted.
type Transaction struct {
	Cmd  byte
	Addr uint16
	Len  byte
}

// Radio is an in-memory TK-2402.
type Radio struct {
	mu sync.Mutex

	cfg    config
	state  deviceState
	memory [memorySize]byte
	out    bytes.Buffer
	closed bool

	// parser scratch
	pending []byte
	current Transaction

	baudChanges  []int
	transactions []Transaction
	firstKey     byte
	violations   []string
}

type config struct {
	firstKey      byte
	secondKey     byte
	sessionBaud   int
	listeningByte byte
	identity      []byte
	bootstrap     []byte

	badWriteConfirm map[uint16]bool
	badReadEcho     map[uint16]bool
	silentRead      map[uint16]bool
	silentEnd       bool
}

// Option configures a Radio.
type Option func(*config)

// WithKeys sets the cipher keys the radio expects.
func WithKeys(first, second byte) Option {
	return func(c *config) {
		c.firstKey = first
		c.secondKey = second
	}
}

// WithSessionBaud sets the baud rate the radio expects after it answers.
func WithSessionBaud(baud int) Option {
	return func(c *config) {
		c.sessionBaud = baud
	}
}

// WithListeningReply makes the radio answer the program request with b.
func WithListeningReply(b byte) Option {
	return func(c *config) {
		c.listeningByte = b
	}
}

// WithIdentity sets the 40-byte identity block, padded with 0xFF.
func WithIdentity(id string) Option {
	return func(c *config) {
		c.identity = pad([]byte(id), 40)
	}
}

// WithBadWriteConfirm corrupts the confirmation of a write at addr.
func WithBadWriteConfirm(addr uint16) Option {
	return func(c *config) {
		c.badWriteConfirm[addr] = true
	}
}

// WithBadReadEcho corrupts the echoed header of a read at addr.
func WithBadReadEcho(addr uint16) Option {
	return func(c *config) {
		c.badReadEcho[addr] = true
	}
}

// WithSilentRead makes the radio ignore a read descriptor at addr.
func WithSilentRead(addr uint16) Option {
	return func(c *config) {
		c.silentRead[addr] = true
	}
}

// WithSilentEnd makes the radio ignore the end-of-session byte.
func WithSilentEnd() Option {
	return func(c *config) {
		c.silentEnd = true
	}
}

// ChannelAddress returns the memory address of a 1-based channel slot.
func ChannelAddress(slot int) uint16 {
	return channelBase + uint16(slot-1)*channelStride
}

// New creates a radio with erased (0xFF) memory.
func New(opts ...Option) *Radio {
	cfg := config{
		firstKey:        0x00,
		secondKey:       0xBB,
		sessionBaud:     19200,
		listeningByte:   listening,
		identity:        pad([]byte("TK-2402 V1.00"), 40),
		bootstrap:       pad([]byte("P2402"), 10),
		badWriteConfirm: map[uint16]bool{},
		badReadEcho:     map[uint16]bool{},
		silentRead:      map[uint16]bool{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Radio{cfg: cfg}
	for i := range r.memory {
		r.memory[i] = 0xFF
	}
	return r
}

func pad(b []byte, n int) []byte {
	out := bytes.Repeat([]byte{0xFF}, n)
	copy(out, b)
	return out
}

// LoadImage stores an image in the channel area.
func (r *Radio) LoadImage(img channel.Image) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range img {
		copy(r.memory[ChannelAddress(i+1):], rec[:])
	}
}

// Image returns the channel area as a memory image.
func (r *Radio) Image() channel.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	var img channel.Image
	for i := range img {
		addr := ChannelAddress(i + 1)
		copy(img[i][:], r.memory[addr:addr+channelStride])
	}
	return img
}

// Memory returns a copy of n bytes at addr.
func (r *Radio) Memory(addr uint16, n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.memory[addr:int(addr)+n]...)
}

// BaudChanges lists every baud rate the host set.
func (r *Radio) BaudChanges() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.baudChanges...)
}

// Transactions lists every read and write descriptor accepted.
func (r *Radio) Transactions() []Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transaction(nil), r.transactions...)
}

// Ended reports whether the host sent the end-of-session byte.
func (r *Radio) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == ended
}

// Closed reports whether the host closed the link.
func (r *Radio) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Violations lists unexpected host bytes. A correct host leaves it empty.
func (r *Radio) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.violations...)
}

// Write feeds host bytes into the radio.
func (r *Radio) Write(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return transport.ErrClosed
	}
	for _, b := range p {
		r.feed(b)
	}
	return nil
}

// ReadExact returns queued reply bytes. It never waits: fewer than n
// queued bytes is an immediate timeout.
func (r *Radio) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, transport.ErrClosed
	}
	if r.out.Len() < n {
		got := r.out.Next(r.out.Len())
		return append([]byte(nil), got...), fmt.Errorf("%w: got %d bytes, want %d", transport.ErrTimeout, len(got), n)
	}
	return append([]byte(nil), r.out.Next(n)...), nil
}

// SetBaudRate records the change. The radio confirms only the expected
// session baud, and only right after answering the program request.
func (r *Radio) SetBaudRate(baud int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return transport.ErrClosed
	}
	r.baudChanges = append(r.baudChanges, baud)
	if r.state != waitBaud {
		r.violate("baud change to %d in state %d", baud, r.state)
		return nil
	}
	if baud != r.cfg.sessionBaud {
		r.violate("baud %d, radio expects %d", baud, r.cfg.sessionBaud)
		return nil
	}
	r.reply(confirm ^ r.cfg.firstKey)
	r.state = waitVersion
	return nil
}

func (r *Radio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Radio) reply(b ...byte) {
	r.out.Write(b)
}

func (r *Radio) violate(format string, args ...interface{}) {
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
	r.state = confused
}

// feed advances the device state machine by one host byte.
func (r *Radio) feed(b byte) {
	k2 := r.cfg.secondKey

	switch r.state {
	case waitProgram:
		r.pending = append(r.pending, b)
		if !bytes.HasPrefix(programRequest, r.pending) {
			r.pending = r.pending[:0]
			return
		}
		if len(r.pending) < len(programRequest) {
			return
		}
		r.pending = r.pending[:0]
		r.reply(r.cfg.listeningByte)
		if r.cfg.listeningByte == listening {
			r.state = waitBaud
		} else {
			r.state = rejected
		}

	case rejected, confused:
		// only the end byte is honoured
		if b^k2 == cmdEnd {
			r.end()
		}

	case waitBaud:
		r.violate("byte 0x%02X before baud change", b)

	case waitVersion:
		if b != version {
			r.violate("expected version request, got 0x%02X", b)
			return
		}
		r.reply(r.cfg.identity...)
		r.state = waitFirstKey

	case waitFirstKey:
		r.firstKey = b
		if b != r.cfg.firstKey {
			r.violate("first key 0x%02X, radio expects 0x%02X", b, r.cfg.firstKey)
			return
		}
		r.state = waitFirstConfirm

	case waitFirstConfirm:
		if b^r.firstKey != confirm {
			r.violate("bad first-key confirmation 0x%02X", b)
			return
		}
		r.reply(confirm ^ r.firstKey)
		r.state = waitMarker

	case waitMarker:
		if b^k2 != keyMarker {
			r.violate("expected key marker, got 0x%02X", b)
			return
		}
		r.reply(xor(r.cfg.bootstrap, k2)...)
		r.state = waitSecondConfirm

	case waitSecondConfirm:
		if b^k2 != confirm {
			r.violate("bad second-key confirmation 0x%02X", b)
			return
		}
		r.reply(confirm ^ k2)
		r.state = active

	case active:
		switch b ^ k2 {
		case cmdEnd:
			r.end()
		case cmdRead, cmdWrite:
			r.pending = append(r.pending[:0], b^k2)
			r.state = readDescriptor
		default:
			r.violate("unknown command 0x%02X", b^k2)
		}

	case readDescriptor:
		r.pending = append(r.pending, b^k2)
		if len(r.pending) < 4 {
			return
		}
		r.current = Transaction{
			Cmd:  r.pending[0],
			Addr: uint16(r.pending[1])<<8 | uint16(r.pending[2]),
			Len:  r.pending[3],
		}
		r.pending = r.pending[:0]
		if int(r.current.Addr)+int(r.current.Len) > memorySize || r.current.Len == 0 {
			r.violate("descriptor out of range: %+v", r.current)
			return
		}
		r.transactions = append(r.transactions, r.current)
		if r.current.Cmd == cmdRead {
			r.startRead()
		} else {
			r.state = writeData
		}

	case waitReadConfirm:
		if b^k2 != confirm {
			r.violate("bad read confirmation 0x%02X", b)
			return
		}
		r.reply(confirm ^ k2)
		r.state = active

	case writeData:
		r.pending = append(r.pending, b^k2)
		if len(r.pending) <= int(r.current.Len) {
			return
		}
		data := r.pending[:r.current.Len]
		sum := r.pending[r.current.Len]
		r.pending = r.pending[:0]
		if channel.Checksum(data) != sum {
			r.reply(rejectByte ^ k2)
			r.state = active
			return
		}
		copy(r.memory[r.current.Addr:], data)
		if r.cfg.badWriteConfirm[r.current.Addr] {
			r.reply(rejectByte ^ k2)
		} else {
			r.reply(confirm ^ k2)
		}
		r.state = active

	case ended:
		r.violate("byte 0x%02X after end of session", b)
	}
}

func (r *Radio) startRead() {
	k2 := r.cfg.secondKey
	t := r.current
	if r.cfg.silentRead[t.Addr] {
		r.state = confused
		return
	}
	echo := []byte{cmdEcho, byte(t.Addr >> 8), byte(t.Addr), t.Len}
	if r.cfg.badReadEcho[t.Addr] {
		echo[0] = cmdRead
	}
	r.reply(xor(echo, k2)...)
	r.reply(xor(r.memory[t.Addr:int(t.Addr)+int(t.Len)], k2)...)
	r.state = waitReadConfirm
}

func (r *Radio) end() {
	if !r.cfg.silentEnd {
		r.reply(confirm ^ r.cfg.secondKey)
	}
	r.state = ended
}

func xor(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}
