// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/config"
	"github.com/Thermoquad/tkprog/pkg/session"
)

var (
	readSave  string
	readOut   string
	readRaw   bool
	readPlain bool
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read all 16 channels from the radio",
	Long: `Read the channel memory of the radio and print the decoded table.

The raw memory image can be kept as a snapshot (--save) for later use with
"show" and "browse", and the decoded table written as YAML (--out) ready to be
edited and passed to "write".

Examples:
  tkprog read
  tkprog read --save radio.cbor --out channels.yaml
  tkprog read --simulate --raw`,
	Args: cobra.NoArgs,
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().StringVar(&readSave, "save", "", "Save the raw memory image to a snapshot file")
	readCmd.Flags().StringVarP(&readOut, "out", "o", "", "Write the decoded table to a YAML file")
	readCmd.Flags().BoolVar(&readRaw, "raw", false, "Print record bytes instead of the decoded table")
	readCmd.Flags().BoolVar(&readPlain, "plain", false, "Plain progress output instead of the terminal UI")
}

func runRead(cmd *cobra.Command, args []string) error {
	p, err := cfg.CodecProfile()
	if err != nil {
		return err
	}

	t, connInfo, err := OpenRadio()
	if err != nil {
		describeError(err)
		return err
	}

	var (
		img   channel.Image
		stats *session.Statistics
	)
	err = runSession("TKPROG - READ CHANNELS", connInfo, readPlain, func(ctx context.Context, cb session.ProgressCallback) error {
		s := session.New(t, sessionOptions(cb)...)
		stats = s.Stats()
		var err error
		img, err = s.ReadAll(ctx)
		return err
	})
	if err != nil {
		describeError(err)
		return err
	}
	if verbose {
		fmt.Print(stats.String())
	}

	if readSave != "" {
		if err := channel.SaveSnapshot(readSave, channel.NewSnapshot(p, img)); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}
		fmt.Printf("Snapshot saved to %s\n", readSave)
	}

	if readRaw {
		fmt.Print(channel.FormatImage(img))
		return nil
	}

	table, err := p.Decode(img)
	if err != nil {
		fmt.Print(channel.FormatImage(img))
		return fmt.Errorf("memory does not decode under the %s profile: %w", p, err)
	}

	fmt.Printf("\nProfile: %s\n", p)
	fmt.Print(channel.FormatTable(table))

	if readOut != "" {
		if err := config.SaveTable(readOut, table, p.Name); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		fmt.Printf("Table written to %s\n", readOut)
	}
	return nil
}
