package domain

// Project derives the rendered overlay from the station directory and the
// latest snapshot. It is a pure function: identical inputs always yield an
// equal collection, and the inputs are never mutated.
//
// The overlay is empty when disabled, when no snapshot has arrived yet, or
// when the directory is empty. Otherwise the scan runs up to the shorter of
// the two sequences, skips below-threshold stations, and emits one point per
// remaining station with coordinates in (longitude, latitude) order.
func Project(enabled bool, stations StationList, snap *Snapshot) FeatureCollection {
	fc := EmptyOverlay()
	if !enabled || snap == nil || len(stations) == 0 {
		return fc
	}

	n := min(len(stations), len(snap.Codes))
	for i := 0; i < n; i++ {
		code := snap.Codes[i]
		if BelowThreshold(code) {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{stations[i].Lon, stations[i].Lat},
			},
			Properties: FeatureProperties{
				Color:  ColorForCode(code),
				Radius: DefaultRadius,
				Code:   string(lowerCode(code)),
			},
		})
	}
	return fc
}
