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
	writeDryRun bool
	writePlain  bool
)

var writeCmd = &cobra.Command{
	Use:   "write <table.yaml>",
	Short: "Write a channel table to the radio",
	Long: `Encode a YAML channel table and write it to the radio.

The table is validated first: errors stop the write, warnings are printed.
All 16 slots are written; slots missing from the file are erased. The scan
list is rebuilt from the channels marked scan: true.

The codec profile comes from --profile, then the table file, then the config.

Examples:
  tkprog write channels.yaml
  tkprog write channels.yaml --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
	writeCmd.Flags().BoolVarP(&writeDryRun, "dry-run", "n", false, "Validate and encode without contacting the radio")
	writeCmd.Flags().BoolVar(&writePlain, "plain", false, "Plain progress output instead of the terminal UI")
}

func runWrite(cmd *cobra.Command, args []string) error {
	table, fileProfile, err := config.LoadTable(args[0])
	if err != nil {
		return err
	}

	p, err := tableProfile(fileProfile)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	findings := p.ValidateTable(table)
	if len(findings) > 0 {
		fmt.Print(channel.FormatValidation(findings))
	}
	if channel.HasErrors(findings) {
		return fmt.Errorf("%s: table is not valid for the %s profile", args[0], p)
	}

	fmt.Printf("Profile: %s\n", p)
	fmt.Print(channel.FormatTable(table))

	if writeDryRun {
		img, active, err := p.Encode(table)
		if err != nil {
			return err
		}
		mask := channel.ScanMask(active)
		fmt.Printf("\nScan mask: % X (slots %v)\n", mask[:], active)
		fmt.Print(channel.FormatImage(img))
		return nil
	}

	t, connInfo, err := OpenRadio()
	if err != nil {
		describeError(err)
		return err
	}

	err = runSession("TKPROG - WRITE CHANNELS", connInfo, writePlain, func(ctx context.Context, cb session.ProgressCallback) error {
		return session.WriteChannels(ctx, t, p, table, sessionOptions(cb)...)
	})
	if err != nil {
		describeError(err)
		return err
	}

	fmt.Println("Write complete")
	return nil
}

// tableProfile picks --profile when given, then the profile named in the
// table file, then the config.
func tableProfile(fileProfile string) (channel.Profile, error) {
	if fileProfile != "" && profileName == "" {
		return channel.ProfileByName(fileProfile)
	}
	return cfg.CodecProfile()
}
