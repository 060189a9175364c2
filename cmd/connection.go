// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/session"
	"github.com/Thermoquad/tkprog/pkg/simulator"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

// OpenRadio opens the configured link: the simulator with --simulate,
// otherwise the configured serial port or the first matching USB adapter.
// The returned string describes the connection for display.
func OpenRadio() (transport.Transport, string, error) {
	var (
		t    transport.Transport
		info string
	)

	if simulate {
		radio, err := newSimulatedRadio()
		if err != nil {
			return nil, "", err
		}
		t, info = radio, "Simulated TK-2402"
	} else {
		port := cfg.Serial.Port
		if port == "" {
			found, err := transport.FindPort(cfg.Serial.Match, cfg.Serial.VID)
			if err != nil {
				return nil, "", err
			}
			port = found
		}

		tc := transport.DefaultConfig(port)
		tc.BaudRate = cfg.Serial.BaudRate
		tc.StopBits = cfg.Serial.StopBits
		s, err := transport.OpenSerial(tc)
		if err != nil {
			return nil, "", err
		}
		t, info = s, fmt.Sprintf("Serial: %s @ %d baud", s.Name(), tc.BaudRate)
	}

	if traceWire {
		t = transport.NewTrace(t, os.Stderr)
	}
	return t, info, nil
}

// newSimulatedRadio returns an in-memory radio holding demoTable, keyed
// and clocked per the config.
func newSimulatedRadio() (*simulator.Radio, error) {
	p, err := cfg.CodecProfile()
	if err != nil {
		return nil, err
	}
	img, _, err := p.Encode(demoTable())
	if err != nil {
		return nil, err
	}
	radio := simulator.New(
		simulator.WithKeys(cfg.Session.FirstKey, cfg.Session.SecondKey),
		simulator.WithSessionBaud(cfg.Session.BaudRate),
	)
	radio.LoadImage(img)
	return radio, nil
}

// demoTable is the channel plan a simulated radio starts with.
func demoTable() channel.Table {
	var t channel.Table
	*t.Slot(1) = channel.Spec{RxFreq: 462.55, TxFreq: 467.55, RxTone: 67.0, TxTone: 67.0, Power: channel.PowerHigh, Width: channel.WidthWide, Scan: true}
	*t.Slot(2) = channel.Spec{RxFreq: 462.575, TxFreq: 467.575, RxTone: 67.0, TxTone: 67.0, Power: channel.PowerHigh, Width: channel.WidthWide, Scan: true}
	*t.Slot(3) = channel.Spec{RxFreq: 151.82, TxFreq: 151.82, TxTone: 100.0, Power: channel.PowerLow, Width: channel.WidthNarrow, Scan: true}
	*t.Slot(4) = channel.Spec{RxFreq: 146.52, Power: channel.PowerLow, Width: channel.WidthNarrow}
	return t
}

// sessionOptions builds session options from the loaded config.
func sessionOptions(progress session.ProgressCallback) []session.Option {
	opts := []session.Option{
		session.WithCipher(session.CipherState{First: cfg.Session.FirstKey, Second: cfg.Session.SecondKey}),
		session.WithSessionBaud(cfg.Session.BaudRate),
		session.WithTimeout(cfg.Timeout()),
		session.WithByteDelay(cfg.ByteDelay()),
	}
	if simulate {
		// the simulator answers instantly
		opts = append(opts, session.WithByteDelay(0))
	}
	if verbose {
		opts = append(opts, session.WithLogger(session.NewStdLogger(true)))
	}
	if progress != nil {
		opts = append(opts, session.WithProgressCallback(progress))
	}
	return opts
}

// describeError prints a session failure with its taxonomy kind.
func describeError(err error) {
	kind := session.KindOf(err)
	log.Printf("[%s] %v", kind, err)
	switch kind {
	case session.KindTransportUnavailable:
		fmt.Fprintln(os.Stderr, "Check the programming cable, or set --port / TKPROG_PORT.")
	case session.KindHandshakeRejected:
		fmt.Fprintln(os.Stderr, "The radio did not enter program mode. Check it is powered on and the cable is seated.")
	case session.KindTimeout:
		fmt.Fprintln(os.Stderr, "The radio stopped answering. Check the cable and try again.")
	}
}
