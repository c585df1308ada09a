// Package edge implements the closing-line-value and parlay edge engine.
//
// Everything in this package is pure arithmetic over its arguments: no I/O, no clocks and
// no shared state, so every function is safe to call from any number of goroutines.
package edge

import (
	"math"
)

// Policy parameters for the CLV calculator. These are tuning choices, not derived values.
const (
	// ConfidenceSteepness is the slope of the logistic that maps EV% to confidence.
	ConfidenceSteepness = 0.8
	// ConfidenceMidpoint is the EV% that maps to a confidence of exactly 50.
	ConfidenceMidpoint = 1.5
	// HalfKellyFactor scales the full Kelly fraction down before capping.
	HalfKellyFactor = 0.5
	// DefaultMaxStakeFraction caps the recommended stake at 5% of bankroll.
	DefaultMaxStakeFraction = 0.05

	MinConfidence = 0.0
	MaxConfidence = 100.0
)

// OddsPair is the entry price of a position and the market price at close, both decimal.
type OddsPair struct {
	EntryOdds float64 `json:"entryOdds" validate:"required,gt=0"`
	CloseOdds float64 `json:"closeOdds" validate:"required,gt=0"`
}

// CLVResult holds the value and risk metrics derived from an OddsPair.
type CLVResult struct {
	PEntry           float64 `json:"pEntry"`
	PClose           float64 `json:"pClose"`
	CLVPercent       float64 `json:"clvPercent"`
	EVPercent        float64 `json:"evPercent"`
	Confidence       float64 `json:"confidence"`
	KellyFraction    float64 `json:"kellyFraction"`
	RecommendedStake float64 `json:"recommendedStake"`
}

// CalculateCLV computes CLV%, EV%, confidence and a capped half-Kelly stake.
//
// Inputs are not validated: odds of zero yield Inf/NaN in every derived field except
// confidence, which is always clamped. Use a Calculator with strict odds to reject them.
func CalculateCLV(entryOdds, closeOdds, maxStakeFraction float64) CLVResult {
	pEntry := 1 / entryOdds
	pClose := 1 / closeOdds

	clvPercent := ((pClose - pEntry) / pEntry) * 100

	// Bet at entryOdds, true probability taken from the close.
	ev := pClose*entryOdds - 1
	evPercent := ev * 100

	confidence := Confidence(evPercent)

	kellyFraction := 0.0
	if ev > 0 {
		kellyFraction = ev / (entryOdds - 1)
	}

	recommendedStake := math.Min(kellyFraction*HalfKellyFactor, maxStakeFraction)
	recommendedStake = math.Max(0, recommendedStake)

	return CLVResult{
		PEntry:           pEntry,
		PClose:           pClose,
		CLVPercent:       clvPercent,
		EVPercent:        evPercent,
		Confidence:       confidence,
		KellyFraction:    kellyFraction,
		RecommendedStake: recommendedStake,
	}
}

// CalculateCLVDefault is CalculateCLV with DefaultMaxStakeFraction.
func CalculateCLVDefault(entryOdds, closeOdds float64) CLVResult {
	return CalculateCLV(entryOdds, closeOdds, DefaultMaxStakeFraction)
}

// Confidence squashes an EV percentage into a rounded score in [0, 100].
func Confidence(evPercent float64) float64 {
	raw := 100 / (1 + math.Exp(-ConfidenceSteepness*(evPercent-ConfidenceMidpoint)))
	return clampConfidence(roundHalfUp(raw))
}

func clampConfidence(v float64) float64 {
	// NaN compares false against both bounds; pin it to the floor.
	if math.IsNaN(v) || v < MinConfidence {
		return MinConfidence
	}
	if v > MaxConfidence {
		return MaxConfidence
	}
	return v
}

// roundHalfUp rounds .5 toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
