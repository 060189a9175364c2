// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ProlificVID is the USB vendor ID of the Prolific PL2303 bridge used by the
// stock programming cable.
const ProlificVID = "067B"

// PortInfo describes one serial port found on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	desc := fmt.Sprintf("%s  USB %s:%s", p.Name, p.VID, p.PID)
	if p.Product != "" {
		desc += "  " + p.Product
	}
	if p.SerialNumber != "" {
		desc += "  s/n " + p.SerialNumber
	}
	return desc
}

// Matches reports whether the port looks like the programming cable: a USB
// port whose product string contains match (case-insensitive) or whose
// vendor ID equals vid.
func (p PortInfo) Matches(match, vid string) bool {
	if !p.IsUSB {
		return false
	}
	if match != "" && strings.Contains(strings.ToLower(p.Product), strings.ToLower(match)) {
		return true
	}
	return vid != "" && strings.EqualFold(p.VID, vid)
}

// ListPorts enumerates the serial ports on this host.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          strings.ToUpper(d.VID),
			PID:          strings.ToUpper(d.PID),
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return ports, nil
}

// FindPort returns the first enumerated port matching the cable. No match
// returns ErrUnavailable.
func FindPort(match, vid string) (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return selectPort(ports, match, vid)
}

func selectPort(ports []PortInfo, match, vid string) (string, error) {
	for _, p := range ports {
		if p.Matches(match, vid) {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("%w: no USB serial port matching %q (VID %s) among %d ports", ErrUnavailable, match, vid, len(ports))
}
