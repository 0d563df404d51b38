package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/seislive/intensity-overlay/internal/adapter/http"
	"github.com/seislive/intensity-overlay/internal/appclock"
	"github.com/seislive/intensity-overlay/internal/domain"
)

type mockState struct {
	overlay     domain.FeatureCollection
	displayTime string
	stations    domain.StationList
	enabled     bool
	readyErr    error
}

func (m *mockState) Overlay() domain.FeatureCollection      { return m.overlay }
func (m *mockState) DisplayTime() string                    { return m.displayTime }
func (m *mockState) Stations() domain.StationList           { return m.stations }
func (m *mockState) Enabled() bool                          { return m.enabled }
func (m *mockState) SetEnabled(v bool)                      { m.enabled = v }
func (m *mockState) CheckReadiness(_ context.Context) error { return m.readyErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(state *mockState) *httpadapter.Server {
	return httpadapter.NewServer(":0", state, appclock.New(nil), discardLogger())
}

func do(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_NotReady(t *testing.T) {
	state := &mockState{readyErr: errors.New("no snapshot applied yet")}
	rec := do(t, newTestServer(state), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
}

func TestReadyz_Ready(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOverlay(t *testing.T) {
	snap := domain.Snapshot{Codes: "sd"}
	state := &mockState{
		overlay: domain.Project(true, domain.StationList{{Lat: 35, Lon: 139}, {Lat: 34, Lon: 135}}, &snap),
	}
	rec := do(t, newTestServer(state), http.MethodGet, "/api/overlay", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var fc domain.FeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, [2]float64{139.0, 35.0}, fc.Features[0].Geometry.Coordinates)
}

func TestGetStyle(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodGet, "/api/overlay/style", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var style map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &style))
	assert.Equal(t, "circle", style["type"])
}

func TestGetStations(t *testing.T) {
	state := &mockState{stations: domain.StationList{{Lat: 35, Lon: 139}}}
	rec := do(t, newTestServer(state), http.MethodGet, "/api/stations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int              `json:"count"`
		Items []domain.Station `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 35.0, body.Items[0].Lat)
}

func TestGetTime(t *testing.T) {
	state := &mockState{displayTime: "2026/08/25 10:00:00"}
	rec := do(t, newTestServer(state), http.MethodGet, "/api/time", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026/08/25 10:00:00")
}

func TestEnabledToggle(t *testing.T) {
	state := &mockState{enabled: true}
	srv := newTestServer(state)

	rec := do(t, srv, http.MethodPut, "/api/overlay/enabled", `{"enabled":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, state.enabled)

	rec = do(t, srv, http.MethodGet, "/api/overlay/enabled", "")
	assert.Contains(t, rec.Body.String(), "false")
}

func TestEnabledToggle_BadBody(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodPut, "/api/overlay/enabled", `{"on":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockOffset(t *testing.T) {
	state := &mockState{}
	clk := appclock.New(nil)
	srv := httpadapter.NewServer(":0", state, clk, discardLogger())

	rec := do(t, srv, http.MethodPut, "/api/clock/offset", `{"offset":"-3s"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -3*time.Second, clk.Offset())

	rec = do(t, srv, http.MethodGet, "/api/clock/offset", "")
	assert.Contains(t, rec.Body.String(), "-3s")
}

func TestClockOffset_Invalid(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodPut, "/api/clock/offset", `{"offset":"soon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexServed(t *testing.T) {
	rec := do(t, newTestServer(&mockState{}), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maplibre")
}
