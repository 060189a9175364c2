// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

// Default cipher keys for the TK-2402 family
const (
	DefaultFirstKey  = 0x00
	DefaultSecondKey = 0xBB
)

// CipherState holds the two single-byte XOR keys of one session. The first
// key is sent to the radio during the handshake; the second is fixed per
// device family and covers everything after the bootstrap.
type CipherState struct {
	First  byte
	Second byte
}

// DefaultCipher returns the TK-2402 keys.
func DefaultCipher() CipherState {
	return CipherState{First: DefaultFirstKey, Second: DefaultSecondKey}
}

// xor returns a copy of data with every byte XORed with key.
func xor(data []byte, key byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key
	}
	return out
}
