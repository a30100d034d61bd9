// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package locator

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator names features that come without an upstream id. Generated
// ids are "<category>-<suffix>" and never contain a slash, so they cannot
// collide with upstream ids ("node/123"). raw is the undecoded element.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID(c Category, raw []byte) string
}

// UUIDGenerator suffixes ids with a name-based (SHA-1) UUID of the raw
// element, so the same upstream data always yields the same id.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID(c Category, raw []byte) string {
	return string(c) + "-" + uuid.NewSHA1(uuid.NameSpaceOID, raw).String()
}

// CounterGenerator suffixes ids with a process-wide sequence number. It
// yields predictable ids in tests.
type CounterGenerator struct {
	n atomic.Uint64
}

// NewID implements IDGenerator.
func (g *CounterGenerator) NewID(c Category, _ []byte) string {
	return string(c) + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
