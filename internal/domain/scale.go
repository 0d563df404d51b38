package domain

// Transparent is the color assigned to the three below-threshold levels. They
// are also skipped during projection, so this value never reaches a renderer;
// it exists so the table stays total over all 24 levels.
const Transparent = "#00000000"

// FallbackColor is returned for any code outside the 24-level table.
const FallbackColor = "#808080"

// intensityColors maps each of the 24 intensity levels ('a' lowest through
// 'x' highest) to its display color.
var intensityColors = map[byte]string{
	'a': Transparent,
	'b': Transparent,
	'c': Transparent,
	'd': "#0000FF",
	'e': "#0033FF",
	'f': "#0066FF",
	'g': "#0099FF",
	'h': "#00CCFF",
	'i': "#00FF99",
	'j': "#00FF66",
	'k': "#44FF00",
	'l': "#88FF00",
	'm': "#CCFF00",
	'n': "#FFFF00",
	'o': "#FFCC00",
	'p': "#FF9900",
	'q': "#FF6600",
	'r': "#FF3300",
	's': "#FF0000",
	't': "#CC0000",
	'u': "#990000",
	'v': "#660000",
	'w': "#330000",
	'x': "#000000",
}

// ColorForCode resolves an intensity code to its display color. Lookup is
// case-insensitive and total: unknown codes return FallbackColor, never an
// error.
func ColorForCode(code byte) string {
	if color, ok := intensityColors[lowerCode(code)]; ok {
		return color
	}
	return FallbackColor
}

// BelowThreshold reports whether a code denotes "below threshold / no data".
// Such stations are excluded from the overlay entirely rather than rendered
// transparent, to avoid paying render cost for invisible points.
func BelowThreshold(code byte) bool {
	c := lowerCode(code)
	return c == 'a' || c == 'b' || c == 'c'
}

func lowerCode(code byte) byte {
	if code >= 'A' && code <= 'Z' {
		return code + ('a' - 'A')
	}
	return code
}
