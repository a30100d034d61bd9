// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables read after .env is loaded. Flags win over them.
const (
	envOverpassURL = "MEDLOCATOR_OVERPASS_URL"
	envDev         = "MEDLOCATOR_DEV"
	envListen      = "MEDLOCATOR_LISTEN"
	envMapsAPIKey  = "GOOGLE_MAPS_API_KEY"
)

type globalOptions struct {
	LogLevel       string
	OverpassURL    string
	OverpassMethod string
	Timeout        time.Duration
	RateLimit      float64
	HTTPTrace      bool
	HTTPBodyTrace  bool
	Lang           string
	Dev            bool
	DbPath         string
}

var options = &globalOptions{}

var rootCmd = &cobra.Command{
	Use:   "medlocator",
	Short: "find hospitals and pharmacies nearby",
	Long: `
medlocator looks up hospitals and pharmacies around a position using
OpenStreetMap data from the Overpass API, and lists them by distance.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		if err := applyEnv(cmd.Flags()); err != nil {
			return err
		}

		return setupLogging(options.LogLevel)
	},
}

func setupLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return nil
}

// applyEnv fills unset flags from the environment.
func applyEnv(flags *pflag.FlagSet) error {
	if v := os.Getenv(envOverpassURL); v != "" && !flags.Changed("overpass-url") {
		options.OverpassURL = v
	}

	if v := os.Getenv(envDev); v != "" && !flags.Changed("dev") {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envDev, err)
		}

		options.Dev = dev
	}

	return nil
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&options.OverpassURL, "overpass-url", "", "Overpass interpreter URL (env "+envOverpassURL+")")
	flags.StringVar(&options.OverpassMethod, "overpass-method", "POST", "HTTP method for Overpass queries (POST or GET)")
	flags.DurationVar(&options.Timeout, "timeout", 10*time.Second, "Timeout of each Overpass request")
	flags.Float64Var(&options.RateLimit, "rate", 1, "Maximum Overpass requests per second (0 disables)")
	flags.BoolVar(&options.HTTPTrace, "http-trace", false, "Trace HTTP requests and responses to stderr")
	flags.BoolVar(&options.HTTPBodyTrace, "http-body-trace", false, "Include bodies in the HTTP trace")
	flags.StringVar(&options.Lang, "lang", "en", "Language of placeholders and messages (en, de)")
	flags.BoolVar(&options.Dev, "dev", false, "Answer from the snapshot or sample data when Overpass fails (env "+envDev+")")
	flags.StringVar(&options.DbPath, "db-path", "db", "Directory of the snapshot database")
}
