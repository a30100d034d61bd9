// Copyright 2025 The MedLocator Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/medlocator/medlocator/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := setupTestStore(t)

	_, err := src.Save(ctx, locator.Hospital, raws(
		`{"type":"way","id":2,"center":{"lat":52.39,"lon":13.06},"tags":{"amenity":"hospital","name":"Potsdam"}}`,
		`{"type":"node","id":1,"lat":52.53,"lon":13.405,"tags":{"amenity":"hospital","name":"Mitte"}}`,
	))
	require.NoError(t, err)

	_, err = src.Save(ctx, locator.Pharmacy, raws(
		`{"type":"node","id":9,"lat":52.52,"lon":13.41,"tags":{"amenity":"pharmacy","name":"Markt"}}`,
	))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot.json")

	exported, err := ExportToJSON(ctx, src, path)
	require.NoError(t, err)
	assert.Equal(t, 3, exported)

	all, err := src.All(ctx, locator.Hospital)
	require.NoError(t, err)
	require.Len(t, all, 2)

	first, err := all[0].Decode()
	require.NoError(t, err)
	assert.Equal(t, "node/1", first.Ref())

	dst := setupTestStore(t)

	seeded, n, err := SeedIfEmpty(ctx, dst, path)
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Equal(t, 3, n)

	features, err := dst.Features(ctx, berlin, locator.Hospital)
	require.NoError(t, err)
	assert.Len(t, features, 2)

	seeded, n, err = SeedIfEmpty(ctx, dst, path)
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Equal(t, 3, n)
}

func TestSeedIfEmpty_NoFile(t *testing.T) {
	store := setupTestStore(t)

	seeded, n, err := SeedIfEmpty(context.Background(), store, filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.Zero(t, n)
}

func TestImportFromJSON_Invalid(t *testing.T) {
	store := setupTestStore(t)
	path := filepath.Join(t.TempDir(), "bad.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"features":{"clinic":[]}}`), 0o600))

	_, err := ImportFromJSON(context.Background(), store, path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	_, err = ImportFromJSON(context.Background(), store, path)
	assert.Error(t, err)
}
