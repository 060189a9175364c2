// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/channel"
	"github.com/Thermoquad/tkprog/pkg/config"
)

var browseCmd = &cobra.Command{
	Use:   "browse <snapshot|table.yaml>",
	Short: "Interactive TUI for inspecting a channel image",
	Long: `Browse the 16 channel slots of a snapshot or a YAML table.

The list on the left selects a slot; the pane on the right shows its decoded
fields, any validation findings, and (with x) the raw record bytes.

YAML tables are encoded with the active profile first, so the hex view shows
exactly what "write" would send.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	p, img, err := loadImage(args[0])
	if err != nil {
		return err
	}

	m := initialBrowseModel(filepath.Base(args[0]), p, img)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// loadImage reads a snapshot, or encodes a YAML table, into a memory image.
func loadImage(path string) (channel.Profile, channel.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		table, fileProfile, err := config.LoadTable(path)
		if err != nil {
			return channel.Profile{}, channel.Image{}, err
		}
		p, err := tableProfile(fileProfile)
		if err != nil {
			return channel.Profile{}, channel.Image{}, err
		}
		if findings := p.ValidateTable(table); channel.HasErrors(findings) {
			fmt.Print(channel.FormatValidation(findings))
			return channel.Profile{}, channel.Image{}, fmt.Errorf("%s: table is not valid for the %s profile", path, p)
		}
		img, _, err := p.Encode(table)
		return p, img, err
	}

	snap, err := channel.LoadSnapshot(path)
	if err != nil {
		return channel.Profile{}, channel.Image{}, err
	}
	p, err := snapshotProfile(snap)
	return p, snap.Image, err
}
