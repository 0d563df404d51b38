package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStationList(t *testing.T) {
	list, err := ParseStationList([]byte(`{"items":[[35.0,139.0],[34.0,135.0]]}`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Station{Lat: 35.0, Lon: 139.0}, list[0])
	assert.Equal(t, Station{Lat: 34.0, Lon: 135.0}, list[1])
}

func TestParseStationList_MissingItems(t *testing.T) {
	_, err := ParseStationList([]byte(`{"security":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")
}

func TestParseStationList_NotJSON(t *testing.T) {
	_, err := ParseStationList([]byte(`<html>boom</html>`))
	assert.Error(t, err)
}

func TestParseStationList_DropsShortEntries(t *testing.T) {
	list, err := ParseStationList([]byte(`{"items":[[35.0,139.0],[34.0],[33.0,131.0]]}`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 33.0, list[1].Lat)
}

func TestParseSnapshot(t *testing.T) {
	fetched := time.Date(2026, 8, 25, 10, 0, 2, 0, time.UTC)
	payload := []byte(`{"realTimeData":{"dataTime":"2026-08-25T10:00:00Z","intensity":"abcsd"}}`)

	snap, err := ParseSnapshot(payload, fetched)
	require.NoError(t, err)
	assert.Equal(t, "abcsd", snap.Codes)
	assert.Equal(t, time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC), snap.ObservedAt)
	assert.Equal(t, "2026/08/25 10:00:00", snap.FormatDisplayTime())
}

func TestParseSnapshot_BadDataTimeFallsBackToFetchTime(t *testing.T) {
	fetched := time.Date(2026, 8, 25, 10, 0, 2, 0, time.UTC)
	payload := []byte(`{"realTimeData":{"dataTime":"not-a-time","intensity":"sd"}}`)

	snap, err := ParseSnapshot(payload, fetched)
	require.NoError(t, err)
	assert.True(t, snap.ObservedAt.IsZero())
	assert.Equal(t, fetched, snap.DisplayTime())
}

func TestParseSnapshot_Malformed(t *testing.T) {
	now := time.Now()

	_, err := ParseSnapshot([]byte(`not json`), now)
	assert.Error(t, err)

	_, err = ParseSnapshot([]byte(`{"hypoInfo":null}`), now)
	assert.Error(t, err)

	_, err = ParseSnapshot([]byte(`{"realTimeData":{"dataTime":"2026-08-25T10:00:00Z","intensity":""}}`), now)
	assert.Error(t, err)
}
