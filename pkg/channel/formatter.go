// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"fmt"
	"strings"
)

// FormatFrequency renders a frequency in MHz, or "-" when unset
func FormatFrequency(mhz float64) string {
	if mhz == 0 {
		return "-"
	}
	return fmt.Sprintf("%.5f", mhz)
}

// FormatTone renders a CTCSS tone, or "off" for no tone
func FormatTone(hz float64) string {
	if hz == 0 {
		return "off"
	}
	return fmt.Sprintf("%.1f", hz)
}

// FormatSpec formats one slot on a single line
func FormatSpec(slot int, s Spec) string {
	if s.IsEmpty() {
		return fmt.Sprintf("%2d  (empty)", slot)
	}
	scan := "no"
	if s.Scan {
		scan = "yes"
	}
	result := fmt.Sprintf("%2d  RX %s/%s  TX %s/%s  %s %s scan=%s",
		slot,
		FormatFrequency(s.RxFreq), FormatTone(s.RxTone),
		FormatFrequency(s.TxFreq), FormatTone(s.TxTone),
		s.Power, s.Width, scan)
	if s.AliasID != "" {
		result += "  [" + s.AliasID + "]"
	}
	return result
}

// FormatTable formats every slot of a table, one per line
func FormatTable(t Table) string {
	var sb strings.Builder
	for i, s := range t {
		sb.WriteString(FormatSpec(i+1, s))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatRecord renders a record as a hex dump with field separators
func FormatRecord(r Record) string {
	groups := []struct {
		from, to int
	}{
		{0, 2},                       // slot, unused
		{offRxFreq, offTxFreq},       // rx frequency
		{offTxFreq, offRxStep},       // tx frequency
		{offRxStep, offRxTone},       // step flags
		{offRxTone, offSignaling},    // tones
		{offSignaling, offFlags + 1}, // signalling, flags
		{offFlags + 1, RecordSize},   // options
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, fmt.Sprintf("% X", r[g.from:g.to]))
	}
	return strings.Join(parts, " | ")
}

// FormatImage dumps every record of an image with its slot number
func FormatImage(img Image) string {
	var sb strings.Builder
	for i, r := range img {
		marker := ""
		if r.IsEmpty() {
			marker = " (empty)"
		}
		sb.WriteString(fmt.Sprintf("%2d: %s%s\n", i+1, FormatRecord(r), marker))
	}
	return sb.String()
}

// FormatValidation formats table findings, errors first
func FormatValidation(findings []ValidationError) string {
	var sb strings.Builder
	for _, sev := range []Severity{SeverityError, SeverityWarning} {
		label := "WARNING"
		if sev == SeverityError {
			label = "ERROR"
		}
		for _, f := range findings {
			if f.Severity == sev {
				sb.WriteString(fmt.Sprintf("[%s] %s\n", label, f.Error()))
			}
		}
	}
	return sb.String()
}
