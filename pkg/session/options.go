// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import "time"

// Config holds the session configuration.
type Config struct {
	// Cipher holds the XOR keys used for this session
	Cipher CipherState

	// SessionBaud is the speed the link is raised to after the radio answers
	SessionBaud int

	// ReadTimeout bounds every read; expiry fails the session
	ReadTimeout time.Duration

	// ByteDelay is the pause after each descriptor byte and each checksum
	ByteDelay time.Duration

	// Logger receives protocol diagnostics (optional)
	Logger Logger

	// ProgressCallback is called as each block completes (optional)
	ProgressCallback ProgressCallback
}

func defaultConfig() Config {
	return Config{
		Cipher:      DefaultCipher(),
		SessionBaud: SessionBaud,
		ReadTimeout: DefaultReadTimeout,
		ByteDelay:   DefaultByteDelay,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithCipher overrides the XOR keys.
func WithCipher(c CipherState) Option {
	return func(cfg *Config) {
		cfg.Cipher = c
	}
}

// WithSessionBaud sets the speed used after the handshake answer.
func WithSessionBaud(baud int) Option {
	return func(cfg *Config) {
		if baud > 0 {
			cfg.SessionBaud = baud
		}
	}
}

// WithTimeout sets the per-read timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		if timeout > 0 {
			cfg.ReadTimeout = timeout
		}
	}
}

// WithByteDelay sets the inter-byte pause. Zero disables it.
func WithByteDelay(delay time.Duration) Option {
	return func(cfg *Config) {
		if delay >= 0 {
			cfg.ByteDelay = delay
		}
	}
}

// WithLogger sets a logger for protocol diagnostics.
//
// Example:
//
//	s := session.New(port, session.WithLogger(session.NewStdLogger(true)))
func WithLogger(logger Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithProgressCallback sets a callback to track read and write progress.
func WithProgressCallback(callback ProgressCallback) Option {
	return func(cfg *Config) {
		cfg.ProgressCallback = callback
	}
}
