// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/config"
)

var (
	showRaw bool
	showOut string
)

var showCmd = &cobra.Command{
	Use:   "show <snapshot>",
	Short: "Display a saved memory snapshot in human-readable format",
	Long: `Decode and display a snapshot written by "read --save".

The snapshot is decoded with the profile it was read under, unless --profile
is given. --raw prints each record as hex grouped by field.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print record bytes instead of the decoded table")
	showCmd.Flags().StringVarP(&showOut, "out", "o", "", "Write the decoded table to a YAML file")
}

func runShow(cmd *cobra.Command, args []string) error {
	snap, err := channel.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Snapshot: %s\n", args[0])
	fmt.Printf("Taken:    %s\n", snap.Taken.Local().Format("2006-01-02 15:04:05"))
	if showRaw {
		fmt.Printf("Profile:  %s\n\n", snap.Profile)
		fmt.Print(channel.FormatImage(snap.Image))
		return nil
	}

	p, err := snapshotProfile(snap)
	if err != nil {
		return err
	}
	fmt.Printf("Profile:  %s\n\n", p)

	table, err := p.Decode(snap.Image)
	if err != nil {
		return fmt.Errorf("snapshot does not decode under the %s profile: %w", p, err)
	}
	fmt.Print(channel.FormatTable(table))

	if showOut != "" {
		if err := config.SaveTable(showOut, table, p.Name); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		fmt.Printf("Table written to %s\n", showOut)
	}
	return nil
}

// snapshotProfile picks --profile when given, else the snapshot's own.
func snapshotProfile(snap channel.Snapshot) (channel.Profile, error) {
	if profileName != "" {
		return channel.ProfileByName(profileName)
	}
	return channel.ProfileByName(snap.Profile)
}
