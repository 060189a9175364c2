// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/transport"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports and show which one would be used",
	Long: `Enumerate serial ports and mark the programming cable candidates.

A port is a candidate when it is a USB adapter whose product string contains
the configured match string (default "Prolific"), or whose vendor ID equals
the configured VID (default 067B). Without --port, read and write use the
first candidate.

Exit codes:
  0 - at least one candidate found
  1 - no candidate`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := transport.ListPorts()
	if err != nil {
		return err
	}

	fmt.Printf("Match: product %q or VID %s\n\n", cfg.Serial.Match, cfg.Serial.VID)
	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
	}

	candidates := 0
	for _, p := range ports {
		marker := "  "
		if p.Matches(cfg.Serial.Match, cfg.Serial.VID) {
			marker = "* "
			candidates++
		}
		fmt.Printf("%s%s\n", marker, p)
	}

	fmt.Printf("\n--- %d port(s), %d candidate(s) ---\n", len(ports), candidates)
	if cfg.Serial.Port != "" {
		fmt.Printf("Configured port: %s\n", cfg.Serial.Port)
	}
	if candidates == 0 {
		return fmt.Errorf("%w: no programming cable found", transport.ErrUnavailable)
	}
	return nil
}
