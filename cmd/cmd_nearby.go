// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/medlocator/medlocator/geolocation"
	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/spatial"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type positionOptions struct {
	Lat     float64
	Lng     float64
	Address string
}

func (p *positionOptions) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&p.Lat, "lat", 0, "Latitude of the position")
	cmd.Flags().Float64Var(&p.Lng, "lng", 0, "Longitude of the position")
	cmd.Flags().StringVar(&p.Address, "address", "", "Address to geocode instead of --lat/--lng ("+envMapsAPIKey+" or ADC)")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsMutuallyExclusive("lat", "address")
	cmd.MarkFlagsOneRequired("lat", "address")
}

func (p *positionOptions) provider(ctx context.Context) geolocation.Provider {
	if p.Address != "" {
		return geolocation.NewGoogleGeocoder(geocodingAPIKey(ctx), p.Address)
	}

	return &geolocation.StaticProvider{Point: spatial.Point{Lat: p.Lat, Lng: p.Lng}}
}

type nearbyOptions struct {
	positionOptions
	Category string
	Radius   float64
	Query    string
	JSON     bool
}

var nearbyOpts = &nearbyOptions{}

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List hospitals and pharmacies around a position",
	Long: `Queries OpenStreetMap for hospitals and pharmacies within 50 km and lists
those within --radius, nearest first.

$ medlocator nearby --lat 52.52 --lng 13.405 --category pharmacy --radius 2
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		locale := locator.ParseLocale(options.Lang)

		categories, err := parseCategoryFlag(nearbyOpts.Category)
		if err != nil {
			return err
		}

		reading, err := nearbyOpts.provider(ctx).Locate(ctx)
		if err != nil {
			return userError(err, locale)
		}

		resolver, closer, err := newResolver(ctx)
		if err != nil {
			return err
		}
		defer closer()

		results := make(map[locator.Category][]locator.PointOfInterest, len(categories))

		if len(categories) == len(locator.Categories) {
			all, err := resolver.FindAll(ctx, reading.Point)
			if err != nil {
				return userError(err, locale)
			}

			for _, c := range categories {
				pois, err := all.Get(c)
				if err != nil {
					logrus.WithError(err).WithField("category", c).Debug("lookup failed")
					fmt.Fprintf(os.Stderr, "%s: %s\n", c, locator.UserMessage(err, locale))

					continue
				}

				results[c] = pois
			}
		} else {
			pois, err := resolver.FindNearby(ctx, reading.Point, categories[0])
			if err != nil {
				return userError(err, locale)
			}

			results[categories[0]] = pois
		}

		for c, pois := range results {
			results[c] = locator.Filter(pois, nearbyOpts.Query, nearbyOpts.Radius)
		}

		if nearbyOpts.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(results)
		}

		for _, c := range categories {
			if pois, ok := results[c]; ok {
				printTable(os.Stdout, c, pois, locale)
			}
		}

		return nil
	},
}

func parseCategoryFlag(s string) ([]locator.Category, error) {
	if strings.EqualFold(s, "all") {
		return locator.Categories, nil
	}

	c, err := locator.ParseCategory(s)
	if err != nil {
		return nil, err
	}

	return []locator.Category{c}, nil
}

// userError logs err and replaces it with its plain-language message.
func userError(err error, locale locator.Locale) error {
	logrus.WithError(err).Debug("lookup failed")

	return errors.New(locator.UserMessage(err, locale))
}

const (
	colKm      = 5
	colName    = 32
	colAddress = 40
	colDetails = 30
)

func printTable(w io.Writer, c locator.Category, pois []locator.PointOfInterest, locale locator.Locale) {
	a, b, d, e := strings.Repeat("─", colKm), strings.Repeat("─", colName), strings.Repeat("─", colAddress), strings.Repeat("─", colDetails)

	fmt.Fprintf(w, "%s (%d):\n", c, len(pois))
	fmt.Fprintf(w, "╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, d, e)
	fmt.Fprintf(w, "│ %*s │ %-*s │ %-*s │ %-*s │\n", colKm, "km", colName, "Name", colAddress, "Address", colDetails, "Details")
	fmt.Fprintf(w, "├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, d, e)

	for _, p := range pois {
		fmt.Fprintf(w, "│ %*.1f │ %-*s │ %-*s │ %-*s │\n",
			colKm, p.Distance,
			colName, truncate(p.Name, colName),
			colAddress, truncate(p.Address, colAddress),
			colDetails, truncate(details(p, locale), colDetails),
		)
	}

	fmt.Fprintf(w, "╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, d, e)
}

func details(p locator.PointOfInterest, locale locator.Locale) string {
	var parts []string

	if p.Hospital != nil {
		for _, s := range p.Hospital.Services {
			parts = append(parts, locale.ServiceLabel(s))
		}
	}

	if p.OpeningHours != nil {
		parts = append(parts, *p.OpeningHours)
	}

	if p.Phone != nil {
		parts = append(parts, *p.Phone)
	}

	return strings.Join(parts, "; ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}

	return string(r[:width-1]) + "…"
}

func init() {
	rootCmd.AddCommand(nearbyCmd)
	nearbyOpts.register(nearbyCmd)
	nearbyCmd.Flags().StringVar(&nearbyOpts.Category, "category", "all", "hospital, pharmacy or all")
	nearbyCmd.Flags().Float64Var(&nearbyOpts.Radius, "radius", locator.DefaultFilterRadiusKm, "Display radius in km (0 shows everything up to 50 km)")
	nearbyCmd.Flags().StringVarP(&nearbyOpts.Query, "query", "q", "", "Only list entries whose name or address contains this text")
	nearbyCmd.Flags().BoolVar(&nearbyOpts.JSON, "json", false, "Print JSON instead of a table")
}
