// Command mockfeed serves a synthetic realtime intensity feed for local
// development: a station coordinate table and time-indexed snapshot documents
// under /RealTimeData/{yyyymmdd}/{yyyymmddhhmmss}.json. Snapshots are
// generated on demand from the requested timestamp, so any second the poller
// asks for exists.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :9090 -stations 500 -seed 42
//
// Point the service at it with:
//
//	STATION_LIST_URL=http://localhost:9090/stations.json \
//	REALTIME_BASE_URL=http://localhost:9090 \
//	go run ./cmd/overlay
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"regexp"
	"time"
)

// Roughly the Japanese archipelago.
const (
	latMin = 31.0
	latMax = 45.0
	lonMin = 129.0
	lonMax = 145.0
)

var snapshotPath = regexp.MustCompile(`^/RealTimeData/(\d{8})/(\d{14})\.json$`)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	stations := flag.Int("stations", 500, "number of synthetic stations")
	seed := flag.Int64("seed", 1, "rng seed for station placement")
	flag.Parse()

	feed := newFeed(*stations, *seed)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stations.json", feed.handleStations)
	mux.HandleFunc("GET /RealTimeData/", feed.handleSnapshot)

	log.Printf("mockfeed listening on %s with %d stations", *addr, len(feed.stations))
	log.Fatal(http.ListenAndServe(*addr, mux))
}

type feed struct {
	stations [][2]float64 // [lat, lon]
}

func newFeed(n int, seed int64) *feed {
	rng := rand.New(rand.NewSource(seed))
	stations := make([][2]float64, 0, n)
	for i := 0; i < n; i++ {
		lat := latMin + rng.Float64()*(latMax-latMin)
		lon := lonMin + rng.Float64()*(lonMax-lonMin)
		stations = append(stations, [2]float64{round4(lat), round4(lon)})
	}
	return &feed{stations: stations}
}

func (f *feed) handleStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"items": f.stations})
}

func (f *feed) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	m := snapshotPath.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}

	ts, err := time.Parse("20060102150405", m[2])
	if err != nil || m[2][:8] != m[1] {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, map[string]any{
		"realTimeData": map[string]any{
			"dataTime":  ts.Format(time.RFC3339),
			"intensity": f.codesAt(ts),
		},
	})
}

// codesAt produces one intensity code per station, deterministic for a given
// timestamp so repeated fetches of the same second agree. A slow sine swell
// plus per-station jitter keeps the map moving without looking like noise.
func (f *feed) codesAt(ts time.Time) string {
	rng := rand.New(rand.NewSource(ts.Unix()))
	swell := math.Sin(float64(ts.Unix()) / 30.0) // [-1, 1]

	codes := make([]byte, len(f.stations))
	for i := range f.stations {
		level := 3 + swell*4 + rng.Float64()*6 // mostly quiet, occasional color
		if level < 0 {
			level = 0
		}
		if level > 23 {
			level = 23
		}
		codes[i] = byte('a' + int(level))
	}
	return string(codes)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("encode response:", err)
	}
}
