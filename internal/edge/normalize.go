package edge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Edge disambiguation policy. Upstream producers emit the same edge either as a decimal
// fraction (0.0833) or as a percentage (8.33). Values within +/-DecimalEdgeThreshold are read
// as fractions. Values beyond SuspiciousEdgeThreshold are assumed to carry an extra factor of
// ten and are divided by SuspiciousEdgeDivisor. This is a heuristic and is lossy by
// construction: a true 5% edge sent as "5" is read as 500%.
const (
	DecimalEdgeThreshold    = 10.0
	SuspiciousEdgeThreshold = 100.0
	SuspiciousEdgeDivisor   = 10.0
)

// Edge color ladder thresholds, in normalized percent.
const (
	EdgeColorHighThreshold   = 20.0
	EdgeColorMediumThreshold = 10.0
	EdgeColorLowThreshold    = 5.0
)

// ParseEdge converts a loosely typed edge into a float. It reports false for anything
// that is not a finite number.
func ParseEdge(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case decimal.Decimal:
		f = x.InexactFloat64()
	case EdgeValue:
		return x.Float64()
	case *EdgeValue:
		if x == nil {
			return 0, false
		}
		return x.Float64()
	case *float64:
		if x == nil {
			return 0, false
		}
		f = *x
	case *string:
		if x == nil {
			return 0, false
		}
		return ParseEdge(*x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeEdge returns the edge on a percentage scale. Unparseable input yields 0.
func NormalizeEdge(v any) float64 {
	e, ok := ParseEdge(v)
	if !ok {
		return 0
	}
	if math.Abs(e) > DecimalEdgeThreshold {
		if math.Abs(e) > SuspiciousEdgeThreshold {
			return e / SuspiciousEdgeDivisor
		}
		return e
	}
	return e * 100
}

// FormatEdge renders the normalized edge with an explicit sign, e.g. "+8.33%" or "-5.00%".
func FormatEdge(v any) string {
	return FormatSignedPercent(NormalizeEdge(v))
}

// FormatSignedPercent renders a percentage that is already on the 0-100 scale with an
// explicit sign and two decimals. The sign is taken from the rounded text, so a tiny
// negative such as -0.00001 prints "+0.00%" where a sign read from the raw value would
// give "-0.00%".
func FormatSignedPercent(pct float64) string {
	s := fixed(pct, 2)
	if strings.HasPrefix(s, "-") {
		return s + "%"
	}
	return "+" + s + "%"
}

// IsSuspiciousEdge flags edges still above SuspiciousEdgeThreshold after normalization.
func IsSuspiciousEdge(v any) bool {
	return math.Abs(NormalizeEdge(v)) > SuspiciousEdgeThreshold
}

// CalculateEdge derives a percentage edge from a model probability and decimal odds.
func CalculateEdge(modelProb, decimalOdds float64) float64 {
	if decimalOdds <= 0 || modelProb <= 0 {
		return 0
	}
	impliedProb := 1 / decimalOdds
	return (modelProb/impliedProb - 1) * 100
}

// EdgeColor maps the magnitude of the normalized edge to a text color label.
func EdgeColor(v any) string {
	return PercentColor(NormalizeEdge(v))
}

// PercentColor maps the magnitude of a percentage edge to a text color label.
func PercentColor(pct float64) string {
	abs := math.Abs(pct)
	switch {
	case abs >= EdgeColorHighThreshold:
		return "text-emerald-400"
	case abs >= EdgeColorMediumThreshold:
		return "text-green-400"
	case abs >= EdgeColorLowThreshold:
		return "text-yellow-400"
	default:
		return "text-gray-400"
	}
}

// EdgeValue is an edge field that arrives as a JSON number or a numeric string.
// The raw text is kept so the input encoding can be echoed back.
type EdgeValue struct {
	raw   string
	value float64
	valid bool
}

// NewEdgeValue wraps a numeric edge.
func NewEdgeValue(f float64) EdgeValue {
	return EdgeValue{raw: strconv.FormatFloat(f, 'f', -1, 64), value: f, valid: true}
}

// ParseEdgeValue wraps a textual edge; invalid text is kept but reports !Valid.
func ParseEdgeValue(s string) EdgeValue {
	f, ok := ParseEdge(s)
	return EdgeValue{raw: s, value: f, valid: ok}
}

// Float64 returns the raw (not normalized) number.
func (e EdgeValue) Float64() (float64, bool) {
	return e.value, e.valid
}

// Valid reports whether the raw value parsed as a finite number.
func (e EdgeValue) Valid() bool {
	return e.valid
}

// Normalized returns NormalizeEdge of the value.
func (e EdgeValue) Normalized() float64 {
	return NormalizeEdge(e)
}

func (e EdgeValue) String() string {
	return e.raw
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (e *EdgeValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = EdgeValue{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("edge: %w", err)
		}
		*e = ParseEdgeValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("edge: %w", err)
	}
	*e = ParseEdgeValue(n.String())
	return nil
}

// MarshalJSON writes valid values as numbers and anything else as the raw string.
func (e EdgeValue) MarshalJSON() ([]byte, error) {
	if !e.valid {
		if e.raw == "" {
			return []byte("null"), nil
		}
		return json.Marshal(e.raw)
	}
	return []byte(strconv.FormatFloat(e.value, 'f', -1, 64)), nil
}
