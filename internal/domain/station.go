package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Station is a fixed geographic point with continuous strong-motion monitoring.
type Station struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StationList is the ordered station directory. Index positions are aligned
// with snapshot code positions and must never be reordered after parsing.
type StationList []Station

// ParseStationList decodes the station directory document:
//
//	{"items": [[lat, lon], ...]}
//
// A payload without an array-shaped "items" field is malformed. Entries with
// fewer than two elements are dropped; dropping preserves nothing useful but
// keeps the remaining indices aligned with the upstream order.
func ParseStationList(data []byte) (StationList, error) {
	var doc struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse station list: %w", err)
	}
	if doc.Items == nil {
		return nil, errors.New("parse station list: missing items array")
	}

	list := make(StationList, 0, len(doc.Items))
	for _, raw := range doc.Items {
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil {
			return nil, fmt.Errorf("parse station entry: %w", err)
		}
		if len(pair) < 2 {
			continue
		}
		list = append(list, Station{Lat: pair[0], Lon: pair[1]})
	}
	return list, nil
}
