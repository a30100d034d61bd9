// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/overpass"
	"github.com/medlocator/medlocator/spatial"
	"github.com/spf13/cobra"
)

// isTerminal reports whether f is a character device. When unsure
// we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugDistanceCmd = &cobra.Command{
	Use:   "distance <lat1> <lng1> <lat2> <lng2>",
	Short: "Print the great-circle distance between two points",
	Args:  cobra.ExactArgs(4),
	RunE: func(_ *cobra.Command, args []string) error {
		var v [4]float64

		for i, arg := range args {
			f, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("argument %d: %w", i+1, err)
			}

			v[i] = f
		}

		a, b := spatial.Point{Lat: v[0], Lng: v[1]}, spatial.Point{Lat: v[2], Lng: v[3]}
		for _, p := range []spatial.Point{a, b} {
			if err := p.Validate(); err != nil {
				return err
			}
		}

		km := spatial.DistanceKm(a, b)
		fmt.Printf("%.6f km\t(%.1f km rounded)\n", km, spatial.RoundKm(km))

		return nil
	},
}

var debugAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Format addresses from OSM tags",
	Long: `Reads one JSON object of tags per line, and prints the formatted address.

$ echo '{"addr:street":"Hauptstraße","addr:housenumber":"5","addr:city":"Berlin"}' | medlocator debug address
Hauptstraße 5, Berlin
	`,
	Run: func(_ *cobra.Command, _ []string) {
		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter tag objects to format, one per line…")
		}

		locale := locator.ParseLocale(options.Lang)
		scanner := bufio.NewScanner(input)

		for scanner.Scan() {
			var tags overpass.Tags
			if err := json.Unmarshal(scanner.Bytes(), &tags); err != nil {
				fmt.Printf("%q\n", err)

				continue
			}

			fmt.Println(locator.FormatAddress(tags, locale))
		}

		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
			os.Exit(1)
		}
	},
}

var debugQueryCmd = &cobra.Command{
	Use:   "query <category> <lat> <lng>",
	Short: "Print the Overpass QL query for a lookup",
	Args:  cobra.ExactArgs(3),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := locator.ParseCategory(args[0])
		if err != nil {
			return err
		}

		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("latitude: %w", err)
		}

		lng, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("longitude: %w", err)
		}

		fmt.Print(overpass.AmenityQuery(string(c), lat, lng, locator.SearchRadiusMeters))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugDistanceCmd)
	debugCmd.AddCommand(debugAddressCmd)
	debugCmd.AddCommand(debugQueryCmd)
}
