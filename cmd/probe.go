// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/session"
	"github.com/Thermoquad/tkprog/pkg/transport"
)

var probeTimeout int

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Test the connection by putting the radio into program mode",
	Long: `Run the handshake only, print the radio's identity, and end the session.

Nothing is read from or written to channel memory. Useful for checking the
cable and port before a read or write.

Exit codes:
  0 - Radio answered and identified itself
  1 - Radio rejected the handshake or stopped answering
  2 - Connection error`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().IntVar(&probeTimeout, "timeout", 0, "Per-read timeout in milliseconds (0 = config)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	t, connInfo, err := OpenRadio()
	if err != nil {
		describeError(err)
		return err
	}

	fmt.Printf("TKPROG - Probe\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	opts := sessionOptions(nil)
	if probeTimeout > 0 {
		opts = append(opts, session.WithTimeout(time.Duration(probeTimeout)*time.Millisecond))
	}
	s := session.New(t, opts...)

	start := time.Now()
	if err := s.Handshake(context.Background()); err != nil {
		describeError(err)
		return err
	}
	id := s.Identity()
	if err := s.Terminate(); err != nil {
		describeError(err)
		return err
	}

	fmt.Printf("SUCCESS: Radio in program mode after %.2fs\n", time.Since(start).Seconds())
	fmt.Printf("  Model:    %s\n", session.ModelName(id))
	fmt.Printf("  Identity: % X\n", id)
	return nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pe *session.ProtocolError
	if errors.Is(err, transport.ErrUnavailable) || (errors.As(err, &pe) && pe.Kind == session.KindTransport) {
		return 2
	}
	return 1
}
