// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/medlocator/medlocator/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	Listen        string
	TraceRequests bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the nearby lookup over HTTP",
	Long: `Starts an HTTP server with the following routes:

  GET /api/nearby?lat=..&lng=..[&category=hospital|pharmacy|all][&radius=5][&q=..]
  GET /api/nearby?address=..     (requires a Google Maps key)
  GET /api/emergency-numbers
  GET /metrics
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if v := os.Getenv(envListen); v != "" && !cmd.Flags().Changed("listen") {
			serveOptions.Listen = v
		}

		resolver, closer, err := newResolver(ctx)
		if err != nil {
			return err
		}
		defer closer()

		s := server.NewServer(resolver, server.Options{
			GeocodingAPIKey: geocodingAPIKey(ctx),
			TraceRequests:   serveOptions.TraceRequests,
			Logger:          logrus.StandardLogger(),
		})

		return s.Run(ctx, serveOptions.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOptions.Listen, "listen", server.DefaultListenAddr, "Address to listen on (env "+envListen+")")
	serveCmd.Flags().BoolVar(&serveOptions.TraceRequests, "trace-requests", false, "Dump incoming requests at debug level")
}
