// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package channel

import (
	"errors"
	"fmt"
)

// AnomalyType classifies a table validation finding
type AnomalyType int

const (
	AnomalyUnencodable AnomalyType = iota
	AnomalyOrphanTransmit
	AnomalyOrphanTone
	AnomalyNonStandardTone
	AnomalyDuplicateChannel
)

// Severity of a validation finding
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// ValidationError describes one problem found in a channel table
type ValidationError struct {
	Slot     int
	Type     AnomalyType
	Severity Severity
	Message  string
	Details  map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return fmt.Sprintf("slot %d: %s", v.Slot, v.Message)
}

// ValidateTable checks every slot of a table against the profile. Unlike
// Encode, which stops at the first failure, it reports all findings.
// Findings with SeverityError would make Encode fail.
func (p Profile) ValidateTable(t Table) []ValidationError {
	errs := []ValidationError{}
	seen := map[[4]float64]int{}

	for i, s := range t {
		slot := i + 1

		if s.IsEmpty() {
			if s.TxFreq != 0 {
				errs = append(errs, ValidationError{
					Slot:     slot,
					Type:     AnomalyOrphanTransmit,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("transmit %.5f MHz ignored without a receive frequency", s.TxFreq),
					Details:  map[string]interface{}{"tx_freq": s.TxFreq},
				})
			}
			continue
		}

		if _, err := p.EncodeRecord(slot, s); err != nil {
			var encErr *EncodingError
			details := map[string]interface{}{}
			if errors.As(err, &encErr) {
				details["field"] = encErr.Field
				details["value"] = encErr.Value
			}
			errs = append(errs, ValidationError{
				Slot:     slot,
				Type:     AnomalyUnencodable,
				Severity: SeverityError,
				Message:  err.Error(),
				Details:  details,
			})
		}

		if s.ReceiveOnly() && s.TxTone != 0 {
			errs = append(errs, ValidationError{
				Slot:     slot,
				Type:     AnomalyOrphanTone,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("transmit tone %.1f Hz ignored on receive-only channel", s.TxTone),
				Details:  map[string]interface{}{"tx_tone": s.TxTone},
			})
		}

		if p.Tone == ToneTenths {
			for _, tone := range []float64{s.RxTone, s.TxTone} {
				if tone == 0 || isStandardTone(tone) {
					continue
				}
				errs = append(errs, ValidationError{
					Slot:     slot,
					Type:     AnomalyNonStandardTone,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("tone %.1f Hz is not a standard CTCSS tone", tone),
					Details:  map[string]interface{}{"tone": tone},
				})
			}
		}

		key := [4]float64{s.RxFreq, s.TxFreq, s.RxTone, s.TxTone}
		if prev, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Slot:     slot,
				Type:     AnomalyDuplicateChannel,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("same frequencies and tones as slot %d", prev),
				Details:  map[string]interface{}{"duplicate_of": prev},
			})
		} else {
			seen[key] = slot
		}
	}

	return errs
}

// HasErrors reports whether any finding would stop encoding.
func HasErrors(findings []ValidationError) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func isStandardTone(hz float64) bool {
	_, ok := toneCode(uint16(hz*10 + 0.5))
	return ok
}
