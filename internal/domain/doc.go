// Package domain models realtime seismic intensity data as published by
// Kyoshin-style strong-motion observation networks.
//
// # Data Source
//
// The upstream publishes two JSON resources. A static station directory lists
// the coordinates of every observation point as [latitude, longitude] pairs;
// its order never changes within a process lifetime. A realtime snapshot file
// is published roughly once per second under a day-stamped path:
//
//	.../RealTimeData/{YYYYMMDD}/{YYYYMMDDHHMMSS}.json
//
// Each snapshot carries one single-character intensity code per station,
// concatenated into a string whose character positions are index-aligned with
// the station directory. Publication lags wall clock by a couple of seconds,
// which is why consumers request "now minus lag" rather than "now".
//
// # Intensity Codes
//
// Codes run 'a' through 'x', a total order over 24 discretized shaking levels.
// The three lowest codes ('a', 'b', 'c') mean "below threshold / no data" and
// are never rendered. Codes are matched case-insensitively; characters outside
// the table map to a fallback color rather than an error, because a single
// garbled byte in a snapshot must not take down the whole overlay.
//
// # Coordinate Conventions
//
// The directory stores (latitude, longitude). Rendered GeoJSON point features
// store (longitude, latitude), per the GeoJSON spec. [Project] performs this
// inversion; nothing else in the system may reorder coordinates.
//
// # Overlay Derivation
//
// The rendered overlay is a pure function of (enabled, station directory,
// latest snapshot). It is recomputed from scratch on every applied snapshot;
// no history is retained and no incremental diffing is attempted. The feature
// count is always at most min(station count, code count): index alignment can
// drift by a few entries when the upstream updates the directory, and the
// shorter of the two bounds the scan.
package domain
