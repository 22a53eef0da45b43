//go:build directory

package stationapi

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a real fleet registry and require DIRECTORY_URL (and
// usually DIRECTORY_TOKEN) env vars, plus DIRECTORY_SMOKE_STATION naming
// a station known to that registry.
// Run with: go test -tags=directory ./internal/adapter/stationapi/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	baseURL := os.Getenv("DIRECTORY_URL")
	if baseURL == "" {
		t.Fatal("DIRECTORY_URL must be set to run smoke tests")
	}
	return NewClient(baseURL, os.Getenv("DIRECTORY_TOKEN"), 10*time.Second, testMetrics(), discardLogger())
}

func TestSmoke_Lookup(t *testing.T) {
	c := smokeClient(t)

	stationID := os.Getenv("DIRECTORY_SMOKE_STATION")
	if stationID == "" {
		t.Fatal("DIRECTORY_SMOKE_STATION must be set to run smoke tests")
	}

	info, err := c.Lookup(context.Background(), stationID)
	require.NoError(t, err)

	assert.Equal(t, stationID, info.StationID)
	assert.NotEmpty(t, info.Name)
}

func TestSmoke_Lookup_Unknown(t *testing.T) {
	c := smokeClient(t)

	info, err := c.Lookup(context.Background(), "wxs-does-not-exist-0000")
	require.NoError(t, err)
	assert.Empty(t, info.StationID)
}
