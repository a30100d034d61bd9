// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/medlocator/medlocator/locator"
	"github.com/medlocator/medlocator/snapshot"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var snapshotOpts = &struct {
	positionOptions
	Category string
}{}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Store the features around a position for offline use",
	Long: `Fetches hospitals and pharmacies within 50 km of a position and stores them
in the snapshot database under --db-path. With --dev, lookups that cannot reach
Overpass are answered from this snapshot.
`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		categories, err := parseCategoryFlag(snapshotOpts.Category)
		if err != nil {
			return err
		}

		reading, err := snapshotOpts.provider(ctx).Locate(ctx)
		if err != nil {
			return userError(err, locator.ParseLocale(options.Lang))
		}

		store, closer, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closer()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(categories),
				progressbar.OptionSetDescription("Snapshotting "+reading.Point.String()),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		fetcher := newFetcher()

		var errs []error

		for _, c := range categories {
			features, err := fetcher.Fetch(ctx, reading.Point, c)
			if err != nil {
				errs = append(errs, fmt.Errorf("fetching %s: %w", c, err))

				continue
			}

			saved, err := store.Save(ctx, c, features)
			if err != nil {
				errs = append(errs, fmt.Errorf("saving %s: %w", c, err))
			}

			if bar == nil {
				logrus.WithFields(logrus.Fields{"category": c, "fetched": len(features), "saved": saved}).Info("snapshot stored")
			} else if err := bar.Add(1); err != nil {
				errs = append(errs, fmt.Errorf("updating progress bar: %w", err))
			}
		}

		for _, c := range categories {
			if n, err := store.Count(ctx, c); err == nil {
				logrus.WithFields(logrus.Fields{"category": c, "total": n}).Info("snapshot size")
			}
		}

		return errors.Join(errs...)
	},
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the snapshot to a JSON file",
	Long:  `Exports every stored feature to a JSON file (default <db-path>/snapshot.json). The file is sorted to minimize diffs when checking into version control.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		path := seedPath()
		if len(args) > 0 {
			path = args[0]
		}

		n, err := snapshot.ExportToJSON(cmd.Context(), store, path)
		if err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{"features": n, "file": path}).Info("snapshot exported")

		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a JSON export into the snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closer()

		path := seedPath()
		if len(args) > 0 {
			path = args[0]
		}

		n, err := snapshot.ImportFromJSON(cmd.Context(), store, path)
		logrus.WithFields(logrus.Fields{"features": n, "file": path}).Info("snapshot imported")

		return err
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotOpts.register(snapshotCmd)
	snapshotCmd.Flags().StringVar(&snapshotOpts.Category, "category", "all", "hospital, pharmacy or all")
}
