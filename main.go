// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// tkprog - TK-series radio channel programmer
//
// A CLI tool for reading and writing the channel memory of TK-series
// handheld radios over a USB programming cable.

package main

import (
	"os"

	"github.com/Thermoquad/tkprog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
