// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/medlocator/medlocator/locator"
	"github.com/spf13/cobra"
)

var numbersCmd = &cobra.Command{
	Use:   "numbers",
	Short: "Print the German emergency numbers",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		a, b := strings.Repeat("─", 32), strings.Repeat("─", 10)
		fmt.Printf("╭─%s─┬─%s─╮\n", a, b)

		for _, n := range locator.EmergencyNumbers(locator.ParseLocale(options.Lang)) {
			fmt.Printf("│ %-32s │ %-10s │\n", n.Service, n.Number)
		}

		fmt.Printf("╰─%s─┴─%s─╯\n", a, b)
	},
}

func init() {
	rootCmd.AddCommand(numbersCmd)
}
