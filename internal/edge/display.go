package edge

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier is a categorical confidence bucket.
type Tier string

const (
	TierElite  Tier = "elite"
	TierStrong Tier = "strong"
	TierGood   Tier = "good"
	TierFair   Tier = "fair"
	TierWeak   Tier = "weak"
	TierPoor   Tier = "poor"
)

type tierStyle struct {
	min  float64
	tier Tier
	text string
	bg   string
}

// confidenceLadder is ordered from the highest threshold down; the first match wins.
var confidenceLadder = []tierStyle{
	{min: 85, tier: TierElite, text: "text-emerald-400", bg: "bg-emerald-500/20"},
	{min: 70, tier: TierStrong, text: "text-green-400", bg: "bg-green-500/20"},
	{min: 55, tier: TierGood, text: "text-lime-400", bg: "bg-lime-500/20"},
	{min: 40, tier: TierFair, text: "text-yellow-400", bg: "bg-yellow-500/20"},
	{min: 25, tier: TierWeak, text: "text-orange-400", bg: "bg-orange-500/20"},
}

var poorStyle = tierStyle{tier: TierPoor, text: "text-red-400", bg: "bg-red-500/20"}

func confidenceStyle(confidence float64) tierStyle {
	for _, s := range confidenceLadder {
		if confidence >= s.min {
			return s
		}
	}
	return poorStyle
}

// ConfidenceTier buckets a 0-100 confidence score.
func ConfidenceTier(confidence float64) Tier {
	return confidenceStyle(confidence).tier
}

// ConfidenceColor returns the text color label for a confidence score.
func ConfidenceColor(confidence float64) string {
	return confidenceStyle(confidence).text
}

// ConfidenceBgColor returns the background color label for a confidence score.
func ConfidenceBgColor(confidence float64) string {
	return confidenceStyle(confidence).bg
}

// FormatPercent renders value with a fixed number of decimals and a trailing %,
// prefixing "+" when value is positive.
func FormatPercent(value float64, decimals int) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return sign + fixed(value, decimals) + "%"
}

// FormatPercentDefault is FormatPercent with two decimals.
func FormatPercentDefault(value float64) string {
	return FormatPercent(value, 2)
}

// FormatStake renders a bankroll fraction as a percentage with two decimals.
func FormatStake(fraction float64) string {
	return fixed(fraction*100, 2) + "%"
}

// fixed formats v rounded half away from zero.
func fixed(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(v).StringFixed(int32(decimals))
}
