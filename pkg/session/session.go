// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

// Phase names reported in ProtocolError.Phase
const (
	phaseProgram     = "program request"
	phaseBaud        = "baud change"
	phaseIdentity    = "identity request"
	phaseFirstKey    = "first key exchange"
	phaseSecondKey   = "second key exchange"
	phaseDescriptor  = "descriptor"
	phaseReadEcho    = "read echo"
	phaseReadData    = "read data"
	phaseReadConfirm = "read confirmation"
	phaseWriteData   = "write data"
	phaseChecksum    = "checksum confirmation"
	phaseEnd         = "end of session"
	phaseClose       = "close"
)

// Session is one programming session over an exclusively owned transport.
// Any failed check ends the session: the end-of-session sequence is sent
// best-effort and the transport is closed before the error is returned.
// A Session is not safe for concurrent use.
type Session struct {
	t     transport.Transport
	cfg   Config
	log   Logger
	stats *Statistics

	state   State
	failure error
	started bool // program request sent
	done    bool // termination has run

	identity  []byte
	bootstrap []byte
}

// New creates a session over t. The session takes ownership of t and closes
// it on termination.
func New(t transport.Transport, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	var logger Logger = nopLogger{}
	if cfg.Logger != nil {
		logger = cfg.Logger
	}
	return &Session{
		t:     t,
		cfg:   cfg,
		log:   logger,
		stats: NewStatistics(),
		state: StateIdle,
	}
}

// State returns the current protocol state.
func (s *Session) State() State {
	return s.state
}

// Err returns the error that failed the session, or nil.
func (s *Session) Err() error {
	return s.failure
}

// Identity returns the 40-byte identity block read during the handshake.
func (s *Session) Identity() []byte {
	return s.identity
}

// Stats returns the traffic counters for this session.
func (s *Session) Stats() *Statistics {
	return s.stats
}

// Handshake wakes the radio, raises the baud rate and bootstraps both cipher
// layers. On success the session is Active.
func (s *Session) Handshake(ctx context.Context) error {
	if s.state != StateIdle || s.done {
		return fmt.Errorf("%w: handshake in state %s", ErrState, s.state)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(0, &ProtocolError{Kind: KindCanceled, Phase: phaseProgram, Err: err})
	}
	key := s.cfg.Cipher

	s.log.Info("requesting program mode")
	s.started = true
	s.pause()
	if err := s.write(phaseProgram, ProgramRequest...); err != nil {
		return s.fail(0, err)
	}
	s.pause()
	reply, err := s.read(phaseProgram, 1)
	if err != nil {
		return s.fail(0, err)
	}
	if reply[0] != ByteListening {
		return s.fail(0, &ProtocolError{
			Kind:     KindHandshakeRejected,
			Phase:    phaseProgram,
			Expected: ByteListening,
			Actual:   reply[0],
		})
	}
	s.state = StateListening

	if err := s.t.SetBaudRate(s.cfg.SessionBaud); err != nil {
		return s.fail(0, ioError(phaseBaud, err))
	}
	s.log.Debug("baud raised", "baud", s.cfg.SessionBaud)
	if err := s.checkConfirm(phaseBaud, key.First); err != nil {
		return s.fail(0, err)
	}

	if err := s.write(phaseIdentity, ByteVersion); err != nil {
		return s.fail(0, err)
	}
	identity, err := s.read(phaseIdentity, IdentityLen)
	if err != nil {
		return s.fail(0, err)
	}
	s.identity = identity
	s.log.Info("radio identified", "model", ModelName(identity))
	s.pause()

	// everything from here on is XOR encrypted
	if err := s.write(phaseFirstKey, key.First); err != nil {
		return s.fail(0, err)
	}
	if err := s.sendConfirm(phaseFirstKey, key.First); err != nil {
		return s.fail(0, err)
	}
	s.state = StateKeyExchanged
	s.pause()

	if err := s.write(phaseSecondKey, ByteKeyMarker^key.Second); err != nil {
		return s.fail(0, err)
	}
	bootstrap, err := s.read(phaseSecondKey, BootstrapLen)
	if err != nil {
		return s.fail(0, err)
	}
	s.bootstrap = bootstrap
	if err := s.sendConfirm(phaseSecondKey, key.Second); err != nil {
		return s.fail(0, err)
	}

	s.state = StateActive
	s.log.Debug("session active")
	return nil
}

// ReadBlock reads length bytes at addr and returns them decrypted. The
// radio's echoed header must match the request.
func (s *Session) ReadBlock(ctx context.Context, addr uint16, length byte) ([]byte, error) {
	slot := slotForAddress(addr)
	if err := s.ready(ctx, slot); err != nil {
		return nil, err
	}
	key := s.cfg.Cipher.Second

	s.log.Debug("read block", "addr", fmt.Sprintf("0x%04X", addr), "len", length)
	if err := s.sendDescriptor(CmdRead, addr, length); err != nil {
		return nil, s.fail(slot, err)
	}

	echo, err := s.read(phaseReadEcho, echoLen)
	if err != nil {
		return nil, s.fail(slot, err)
	}
	want := []byte{CmdReadEcho, byte(addr >> 8), byte(addr), length}
	for i, b := range xor(echo, key) {
		if b != want[i] {
			s.stats.confirmation(false)
			return nil, s.fail(slot, &ProtocolError{
				Kind:     KindConfirmationMismatch,
				Phase:    phaseReadEcho,
				Expected: want[i],
				Actual:   b,
			})
		}
	}

	data, err := s.read(phaseReadData, int(length))
	if err != nil {
		return nil, s.fail(slot, err)
	}
	if err := s.sendConfirm(phaseReadConfirm, key); err != nil {
		return nil, s.fail(slot, err)
	}

	s.stats.BlocksRead++
	return xor(data, key), nil
}

// WriteBlock writes data at addr, followed by its checksum. The radio's
// confirmation of the checksum ends the transaction.
func (s *Session) WriteBlock(ctx context.Context, addr uint16, data []byte) error {
	if len(data) == 0 || len(data) > 0xFF {
		return fmt.Errorf("block length %d out of range 1-255", len(data))
	}
	slot := slotForAddress(addr)
	if err := s.ready(ctx, slot); err != nil {
		return err
	}
	key := s.cfg.Cipher.Second

	s.log.Debug("write block", "addr", fmt.Sprintf("0x%04X", addr), "len", len(data))
	if err := s.sendDescriptor(CmdWrite, addr, byte(len(data))); err != nil {
		return s.fail(slot, err)
	}
	if err := s.write(phaseWriteData, xor(data, key)...); err != nil {
		return s.fail(slot, err)
	}
	if err := s.write(phaseChecksum, channel.Checksum(data)^key); err != nil {
		return s.fail(slot, err)
	}
	s.pause()
	if err := s.checkConfirm(phaseChecksum, key); err != nil {
		return s.fail(slot, err)
	}

	s.stats.BlocksWritten++
	return nil
}

// Terminate sends the end-of-session byte, checks its confirmation and
// closes the transport. It runs at most once; later calls return nil.
func (s *Session) Terminate() error {
	if s.done {
		return nil
	}
	err := s.terminate()
	if err != nil {
		s.log.Error("termination failed", "err", err)
		if s.state != StateFailed {
			s.state = StateFailed
			s.failure = err
		}
		return err
	}
	if s.state != StateFailed {
		s.state = StateTerminated
	}
	s.log.Info("session ended", "bytes_sent", s.stats.BytesSent, "bytes_received", s.stats.BytesReceived)
	return nil
}

func (s *Session) terminate() error {
	s.done = true

	var endErr error
	if s.started {
		key := s.cfg.Cipher.Second
		endErr = s.write(phaseEnd, CmdEnd^key)
		if endErr == nil {
			endErr = s.checkConfirm(phaseEnd, key)
		}
	}

	closeErr := s.t.Close()
	if endErr != nil {
		return endErr
	}
	if closeErr != nil {
		return ioError(phaseClose, closeErr)
	}
	return nil
}

// fail marks the session failed, runs termination and returns err as a
// ProtocolError carrying the slot.
func (s *Session) fail(slot int, err error) error {
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		pe = &ProtocolError{Kind: KindOf(err), Phase: "session", Err: err}
	}
	if pe.Slot == 0 {
		pe.Slot = slot
	}

	s.stats.failure(pe)
	s.state = StateFailed
	s.failure = pe
	s.log.Error("session failed", "kind", pe.Kind, "phase", pe.Phase, "slot", pe.Slot)

	if !s.done {
		if terr := s.terminate(); terr != nil {
			pe.TerminateErr = terr
			s.log.Error("termination failed", "err", terr)
		}
	}
	return pe
}

// ready checks that a transaction may start.
func (s *Session) ready(ctx context.Context, slot int) error {
	if s.state != StateActive {
		if s.failure != nil {
			return fmt.Errorf("%w: session failed: %v", ErrState, s.failure)
		}
		return fmt.Errorf("%w: transaction in state %s", ErrState, s.state)
	}
	if err := ctx.Err(); err != nil {
		return s.fail(slot, &ProtocolError{Kind: KindCanceled, Phase: phaseDescriptor, Err: err})
	}
	return nil
}

func (s *Session) write(phase string, data ...byte) error {
	if err := s.t.Write(data); err != nil {
		return ioError(phase, err)
	}
	s.stats.sent(len(data))
	return nil
}

func (s *Session) read(phase string, n int) ([]byte, error) {
	data, err := s.t.ReadExact(n, s.cfg.ReadTimeout)
	s.stats.received(len(data))
	if err != nil {
		return nil, ioError(phase, err)
	}
	return data, nil
}

func (s *Session) pause() {
	if s.cfg.ByteDelay > 0 {
		time.Sleep(s.cfg.ByteDelay)
	}
}

// checkConfirm reads one byte and requires it to decrypt to ByteConfirm.
func (s *Session) checkConfirm(phase string, key byte) error {
	b, err := s.read(phase, 1)
	if err != nil {
		return err
	}
	if got := b[0] ^ key; got != ByteConfirm {
		s.stats.confirmation(false)
		return &ProtocolError{
			Kind:     KindConfirmationMismatch,
			Phase:    phase,
			Expected: ByteConfirm,
			Actual:   got,
		}
	}
	s.stats.confirmation(true)
	return nil
}

// sendConfirm sends an encrypted confirmation and checks the reply.
func (s *Session) sendConfirm(phase string, key byte) error {
	if err := s.write(phase, ByteConfirm^key); err != nil {
		return err
	}
	s.pause()
	return s.checkConfirm(phase, key)
}

// sendDescriptor writes command, address and length one byte at a time.
func (s *Session) sendDescriptor(cmd byte, addr uint16, length byte) error {
	key := s.cfg.Cipher.Second
	for _, b := range []byte{cmd, byte(addr >> 8), byte(addr), length} {
		if err := s.write(phaseDescriptor, b^key); err != nil {
			return err
		}
		s.pause()
	}
	return nil
}

// slotForAddress maps a channel record address to its 1-based slot, or 0.
func slotForAddress(addr uint16) int {
	if addr < ChannelBase || (addr-ChannelBase)%ChannelStride != 0 {
		return 0
	}
	slot := int((addr-ChannelBase)/ChannelStride) + 1
	if slot > ChannelCount {
		return 0
	}
	return slot
}
