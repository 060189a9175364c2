// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Thermoquad/tkprog/pkg/config"
)

var (
	// Connection flags
	configPath  string
	portName    string
	profileName string
	simulate    bool

	// Diagnostics flags
	verbose   bool
	traceWire bool

	// cfg is loaded before every command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tkprog",
	Short: "TK-series radio channel programmer",
	Long: `tkprog - Read and write channel memory on TK-series handheld radios.

Talks to the radio over a USB programming cable. When no port is configured,
the first USB serial adapter matching the configured product string or
vendor ID is used.

Settings are read from tkprog.yaml (see --config), then TKPROG_PORT,
TKPROG_PROFILE, TKPROG_MATCH and TKPROG_TIMEOUT_MS, then the flags below.

Codec profiles:
  revised  BCD frequencies, tenths-of-hertz tones (default)
  legacy   digit-pair frequencies, tone table indices`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device (overrides config)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Codec profile: revised or legacy (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Talk to an in-memory radio instead of a serial port")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log protocol diagnostics")
	rootCmd.PersistentFlags().BoolVar(&traceWire, "trace", false, "Dump every byte on the wire to stderr")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portName != "" {
		c.Serial.Port = portName
	}
	if profileName != "" {
		c.Profile = profileName
		if _, err := c.CodecProfile(); err != nil {
			return err
		}
	}
	cfg = c
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
