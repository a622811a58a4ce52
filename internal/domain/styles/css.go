// Package styles normalizes raw computed-style values reported by the
// browser into comparable numbers: colors to RGB triples, lengths to px.
package styles

import (
	"math"
	"strconv"
	"strings"
)

// DefaultBaseFontSize is assumed for rem/em values when no page-level
// base font size is known.
const DefaultBaseFontSize = 16.0

// RGB is a normalized 8-bit-per-channel color.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0x0f]
	}
	return string(b)
}

// maxColorDistance is the Euclidean distance between black and white,
// sqrt(3 * 255^2).
var maxColorDistance = math.Sqrt(3 * 255 * 255)

// Similarity returns 1 − (euclideanDistance / maxPossibleDistance) in [0,1].
// 1.0 means an exact match.
func Similarity(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	return 1 - dist/maxColorDistance
}

// ParseColor parses "#rgb", "#rrggbb", "rgb(r, g, b)" and "rgba(r, g, b, a)"
// values. Fully transparent rgba and unparseable values report ok=false.
func ParseColor(s string) (RGB, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[5:len(s)-1], true)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGBFunc(s[4:len(s)-1], false)
	case s == "transparent":
		return RGB{}, false
	}
	return RGB{}, false
}

func parseHex(h string) (RGB, bool) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

func parseRGBFunc(args string, hasAlpha bool) (RGB, bool) {
	parts := strings.Split(args, ",")
	want := 3
	if hasAlpha {
		want = 4
	}
	if len(parts) != want {
		return RGB{}, false
	}
	if hasAlpha {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || alpha == 0 {
			return RGB{}, false
		}
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return RGB{}, false
		}
		ch[i] = uint8(n)
	}
	return RGB{R: ch[0], G: ch[1], B: ch[2]}, true
}

// ParseLength converts a CSS length to px. rem and em are resolved against
// baseFont (falling back to DefaultBaseFontSize when baseFont is zero).
// Bare numbers are treated as px, matching computed-style output.
func ParseLength(s string, baseFont float64) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" || s == "normal" {
		return 0, false
	}
	if baseFont <= 0 {
		baseFont = DefaultBaseFontSize
	}
	unit := ""
	num := s
	for _, u := range []string{"px", "rem", "em", "pt"} {
		if strings.HasSuffix(s, u) {
			unit = u
			num = strings.TrimSuffix(s, u)
			break
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "rem", "em":
		return v * baseFont, true
	case "pt":
		return v * 96.0 / 72.0, true
	default:
		return v, true
	}
}

// NearestMultiple snaps value to the nearest multiple of base. When the
// value sits exactly halfway between two multiples, the smaller wins.
func NearestMultiple(value, base float64) float64 {
	if base <= 0 {
		return value
	}
	lower := math.Floor(value/base) * base
	upper := lower + base
	if value-lower <= upper-value {
		return lower
	}
	return upper
}

// NearestStep returns the index of the scale entry closest to value.
// Ties resolve to the smaller entry. Steps must be sorted ascending.
func NearestStep(value float64, steps []float64) int {
	if len(steps) == 0 {
		return -1
	}
	best := 0
	bestDist := math.Abs(steps[0] - value)
	for i := 1; i < len(steps); i++ {
		d := math.Abs(steps[i] - value)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// FormatPx renders a px quantity the way the findings report it: integers
// without a decimal part, otherwise with up to two decimals.
func FormatPx(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64) + "px"
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "px"
}
