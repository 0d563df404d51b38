package domain

// DefaultRadius is the radius hint attached to every rendered point. The
// actual on-screen size comes from the style descriptor's zoom interpolation;
// the per-feature value is a base hint for renderers that ignore the style.
const DefaultRadius = 5.0

// Geometry is a GeoJSON point geometry. Coordinates are (longitude, latitude),
// inverted relative to the (latitude, longitude) station directory order.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// FeatureProperties carries the rendering attributes of one station point.
type FeatureProperties struct {
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
	Code   string  `json:"code"`
}

// Feature is one renderable station point.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// FeatureCollection is the rendered overlay consumed by the map layer.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// EmptyOverlay returns a valid, zero-feature collection. Handed out whenever
// the overlay is disabled or inputs are missing, so consumers never see nil.
func EmptyOverlay() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// OverlayStyle returns the fixed style descriptor for the overlay layer:
// circle color read from the per-feature "color" property, circle radius
// interpolated by zoom level between the declared stops.
func OverlayStyle() map[string]any {
	return map[string]any{
		"id":     "realtime-intensity",
		"type":   "circle",
		"source": "realtime-intensity",
		"paint": map[string]any{
			"circle-color": []any{"get", "color"},
			"circle-radius": []any{
				"interpolate", []any{"linear"}, []any{"zoom"},
				4, 2,
				10, 8,
			},
			"circle-opacity": 0.8,
		},
	}
}
