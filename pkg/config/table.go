// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/tkprog/pkg/channel"
)

// TableFile is the on-disk form of a channel table. Only populated slots
// are listed.
type TableFile struct {
	Profile  string         `yaml:"profile,omitempty"`
	Channels []TableChannel `yaml:"channels"`
}

// TableChannel is one populated slot.
type TableChannel struct {
	Slot         int `yaml:"slot"`
	channel.Spec `yaml:",inline"`
}

// ParseTable decodes a YAML table. The profile name is empty when the file
// does not name one.
func ParseTable(data []byte) (channel.Table, string, error) {
	var file TableFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return channel.Table{}, "", fmt.Errorf("failed to parse channel table: %w", err)
	}

	var table channel.Table
	seen := make(map[int]bool)
	for _, ch := range file.Channels {
		if ch.Slot < 1 || ch.Slot > channel.SlotCount {
			return channel.Table{}, "", fmt.Errorf("channel slot %d out of range 1-%d", ch.Slot, channel.SlotCount)
		}
		if seen[ch.Slot] {
			return channel.Table{}, "", fmt.Errorf("channel slot %d listed twice", ch.Slot)
		}
		seen[ch.Slot] = true
		*table.Slot(ch.Slot) = ch.Spec
	}
	return table, file.Profile, nil
}

// MarshalTable encodes the populated slots of t as YAML.
func MarshalTable(t channel.Table, profile string) ([]byte, error) {
	file := TableFile{Profile: profile, Channels: []TableChannel{}}
	for i, s := range t {
		if s.IsEmpty() {
			continue
		}
		file.Channels = append(file.Channels, TableChannel{Slot: i + 1, Spec: s})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadTable reads a YAML channel-table file.
func LoadTable(path string) (channel.Table, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return channel.Table{}, "", err
	}
	return ParseTable(data)
}

// SaveTable writes t to a YAML channel-table file.
func SaveTable(path string, t channel.Table, profile string) error {
	data, err := MarshalTable(t, profile)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
