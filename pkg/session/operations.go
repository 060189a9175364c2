// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"strings"
	"time"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

// ReadAllChannels runs a complete read session over t: handshake, all 16
// channel records in address order, termination. t is closed on return.
func ReadAllChannels(ctx context.Context, t transport.Transport, opts ...Option) (channel.Image, error) {
	return New(t, opts...).ReadAll(ctx)
}

// WriteChannels encodes table under profile p and writes it over t: model
// block, scan button, scan mask, then all 16 channel records, then
// termination. An encoding error is returned before anything is sent. t is
// closed on return.
func WriteChannels(ctx context.Context, t transport.Transport, p channel.Profile, table channel.Table, opts ...Option) error {
	img, active, err := p.Encode(table)
	if err != nil {
		t.Close()
		return err
	}
	return New(t, opts...).WriteAll(ctx, img, active)
}

// ReadAll performs the handshake if needed, reads every channel record and
// terminates the session.
func (s *Session) ReadAll(ctx context.Context) (channel.Image, error) {
	tracker := s.newTracker("read", ChannelCount)

	if s.state == StateIdle {
		tracker.report("handshake", 0, 0)
		if err := s.Handshake(ctx); err != nil {
			return channel.Image{}, err
		}
	}

	var img channel.Image
	for slot := 1; slot <= ChannelCount; slot++ {
		data, err := s.ReadBlock(ctx, ChannelAddress(slot), channel.RecordSize)
		if err != nil {
			return channel.Image{}, err
		}
		copy(img[slot-1][:], data)
		tracker.report("channels", slot, slot)
	}

	if err := s.Terminate(); err != nil {
		return channel.Image{}, err
	}
	tracker.report("complete", ChannelCount, ChannelCount)
	return img, nil
}

// WriteAll performs the handshake if needed, writes the device settings and
// every channel record, and terminates the session. active lists the
// 1-based slots to enable for scanning.
func (s *Session) WriteAll(ctx context.Context, img channel.Image, active []int) error {
	// model, scan button and scan mask precede the channel records
	const settingBlocks = 3
	total := settingBlocks + ChannelCount
	tracker := s.newTracker("write", ChannelCount)
	tracker.steps = total

	if s.state == StateIdle {
		tracker.report("handshake", 0, 0)
		if err := s.Handshake(ctx); err != nil {
			return err
		}
	}

	if err := s.WriteBlock(ctx, ModelAddr, ModelBlock); err != nil {
		return err
	}
	tracker.report("model", 0, 1)

	if err := s.WriteBlock(ctx, ScanButtonAddr, []byte{ScanButtonToggle}); err != nil {
		return err
	}
	tracker.report("scan button", 0, 2)

	mask := channel.ScanMask(active)
	s.log.Debug("scan mask", "active", active, "mask", mask)
	if err := s.WriteBlock(ctx, ScanMaskAddr, mask[:]); err != nil {
		return err
	}
	tracker.report("scan mask", 0, settingBlocks)

	for slot := 1; slot <= ChannelCount; slot++ {
		rec := img[slot-1]
		if err := s.WriteBlock(ctx, ChannelAddress(slot), rec[:]); err != nil {
			return err
		}
		tracker.report("channels", slot, settingBlocks+slot)
	}

	if err := s.Terminate(); err != nil {
		return err
	}
	tracker.report("complete", ChannelCount, total)
	return nil
}

// ModelName extracts the printable model string from an identity block.
func ModelName(identity []byte) string {
	var sb strings.Builder
	for _, b := range identity {
		if b >= 0x20 && b < 0x7F {
			sb.WriteByte(b)
		} else if sb.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

// progressTracker turns step counts into Progress callbacks.
type progressTracker struct {
	cb        ProgressCallback
	operation string
	slots     int
	steps     int
	start     time.Time
}

func (s *Session) newTracker(operation string, slots int) *progressTracker {
	return &progressTracker{
		cb:        s.cfg.ProgressCallback,
		operation: operation,
		slots:     slots,
		steps:     slots,
		start:     time.Now(),
	}
}

func (p *progressTracker) report(phase string, slot, step int) {
	if p.cb == nil {
		return
	}
	pct := 0.0
	if p.steps > 0 {
		pct = float64(step) * 100.0 / float64(p.steps)
	}
	p.cb(Progress{
		Operation:   p.operation,
		Phase:       phase,
		Slot:        slot,
		TotalSlots:  p.slots,
		Percentage:  pct,
		ElapsedTime: time.Since(p.start),
	})
}
