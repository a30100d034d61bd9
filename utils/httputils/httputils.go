// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils holds the http.RoundTripper layers used for upstream
// calls: tracing, fixed headers and client-side rate limiting.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

/////////////////////////////////////////
/// RoundTrippers

// TraceRoundTripper logs a summary of every exchange at debug level and,
// when Writer is set, dumps the request and response to it.
type TraceRoundTripper struct {
	Transport http.RoundTripper
	Logger    logrus.FieldLogger

	// Writer receives the dumps, nil disables them
	Writer io.Writer

	// DumpBody includes the response body in the dump
	DumpBody bool
}

const (
	maxDumpLines = 2048
	maxDumpChars = 512
)

// abbreviate prefixes every line with marker and caps the number and width
// of the lines.
func abbreviate(dump []byte, marker rune) string {
	lines := strings.Split(string(dump), "\n")

	truncated := len(lines) > maxDumpLines
	if truncated {
		lines = lines[:maxDumpLines]
	}

	var b strings.Builder

	for _, line := range lines {
		if len(line) > maxDumpChars {
			line = line[:maxDumpChars] + "…"
		}

		fmt.Fprintf(&b, "%c %s\n", marker, line)
	}

	if truncated {
		fmt.Fprintf(&b, "%c …\n", marker)
	}

	return b.String()
}

// RoundTrip implements the http.RoundTripper interface.
func (t *TraceRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer != nil {
		dump, err := httputil.DumpRequestOut(req, true)
		if err != nil {
			return nil, fmt.Errorf("tracing HTTP request: %w", err)
		}

		if _, err := io.WriteString(t.Writer, abbreviate(dump, '>')); err != nil {
			return nil, fmt.Errorf("tracing HTTP request: %w", err)
		}
	}

	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	entry := t.logger().WithFields(logrus.Fields{
		"method":   req.Method,
		"host":     req.URL.Host,
		"path":     req.URL.Path,
		"duration": elapsed.Round(time.Millisecond),
	})

	if err != nil {
		entry.WithError(err).Debug("upstream exchange failed")

		return nil, err
	}

	entry.WithField("status", resp.StatusCode).Debug("upstream exchange")

	if t.Writer != nil {
		dump, err := httputil.DumpResponse(resp, t.DumpBody)
		if err != nil {
			resp.Body.Close()

			return nil, fmt.Errorf("tracing HTTP response: %w", err)
		}

		if _, err := fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s", elapsed, abbreviate(dump, '<')); err != nil {
			resp.Body.Close()

			return nil, fmt.Errorf("tracing HTTP response: %w", err)
		}
	}

	return resp, nil
}

func (t *TraceRoundTripper) logger() logrus.FieldLogger {
	if t.Logger == nil {
		return logrus.StandardLogger()
	}

	return t.Logger
}

// HeaderRoundTripper sets fixed headers on a copy of each request.
type HeaderRoundTripper struct {
	Transport http.RoundTripper
	Headers   http.Header
}

// RoundTrip implements the http.RoundTripper interface.
func (t *HeaderRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.Headers) == 0 {
		return t.Transport.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	for k, vs := range t.Headers {
		out.Header.Del(k)

		for _, v := range vs {
			out.Header.Add(k, v)
		}
	}

	return t.Transport.RoundTrip(out)
}

// RateLimitRoundTripper waits for a token before each request. It never
// retries; a request whose context ends while waiting fails with that error.
type RateLimitRoundTripper struct {
	Transport http.RoundTripper
	Limiter   *rate.Limiter
}

// RoundTrip implements the http.RoundTripper interface.
func (t *RateLimitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	return t.Transport.RoundTrip(req)
}
