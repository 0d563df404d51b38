package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DisplayTimeFormat is the human-readable timestamp format reported to the
// time display collaborator.
const DisplayTimeFormat = "2006/01/02 15:04:05"

// Snapshot is one time-stamped set of intensity codes across all stations.
// Snapshots replace each other wholesale; no history is kept.
type Snapshot struct {
	// Codes holds one intensity code character per station index.
	Codes string

	// ObservedAt is the upstream observation timestamp. Zero when the feed
	// omitted or mangled it; display falls back to FetchedAt.
	ObservedAt time.Time

	// FetchedAt is the application time at which the fetch was issued.
	FetchedAt time.Time
}

// ParseSnapshot decodes a realtime snapshot document:
//
//	{"realTimeData": {"dataTime": "<RFC3339>", "intensity": "<codes>"}}
//
// A missing realTimeData object or empty intensity string is malformed. An
// unparsable dataTime is tolerated: the codes are still usable, only the
// displayed timestamp degrades to the fetch time.
func ParseSnapshot(data []byte, fetchedAt time.Time) (Snapshot, error) {
	var doc struct {
		RealTimeData *struct {
			DataTime  string `json:"dataTime"`
			Intensity string `json:"intensity"`
		} `json:"realTimeData"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if doc.RealTimeData == nil {
		return Snapshot{}, errors.New("parse snapshot: missing realTimeData")
	}
	if doc.RealTimeData.Intensity == "" {
		return Snapshot{}, errors.New("parse snapshot: empty intensity string")
	}

	snap := Snapshot{
		Codes:     doc.RealTimeData.Intensity,
		FetchedAt: fetchedAt,
	}
	if observed, err := time.Parse(time.RFC3339, doc.RealTimeData.DataTime); err == nil {
		snap.ObservedAt = observed
	}
	return snap, nil
}

// DisplayTime returns the snapshot's own timestamp, falling back to the fetch
// time when the upstream omitted one.
func (s Snapshot) DisplayTime() time.Time {
	if !s.ObservedAt.IsZero() {
		return s.ObservedAt
	}
	return s.FetchedAt
}

// FormatDisplayTime renders DisplayTime for the time display collaborator.
func (s Snapshot) FormatDisplayTime() string {
	return s.DisplayTime().Format(DisplayTimeFormat)
}
