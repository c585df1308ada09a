package edge

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const floatTolerance = 1e-3

func TestCalculateCLV(t *testing.T) {
	tests := []struct {
		name          string
		entryOdds     float64
		closeOdds     float64
		maxStake      float64
		pEntry        float64
		pClose        float64
		clvPercent    float64
		evPercent     float64
		confidence    float64
		kellyFraction float64
		stake         float64
	}{
		{
			name:          "market shortened, stake capped",
			entryOdds:     2.0,
			closeOdds:     1.8,
			maxStake:      DefaultMaxStakeFraction,
			pEntry:        0.5,
			pClose:        0.5556,
			clvPercent:    11.111,
			evPercent:     11.111,
			confidence:    100,
			kellyFraction: 0.1111,
			stake:         0.05,
		},
		{
			name:          "market drifted, no stake",
			entryOdds:     2.0,
			closeOdds:     2.2,
			maxStake:      DefaultMaxStakeFraction,
			pEntry:        0.5,
			pClose:        0.4545,
			clvPercent:    -9.091,
			evPercent:     -9.091,
			confidence:    0,
			kellyFraction: 0,
			stake:         0,
		},
		{
			name:          "small edge below midpoint",
			entryOdds:     2.0,
			closeOdds:     1.98,
			maxStake:      DefaultMaxStakeFraction,
			pEntry:        0.5,
			pClose:        0.50505,
			clvPercent:    1.0101,
			evPercent:     1.0101,
			confidence:    40,
			kellyFraction: 0.010101,
			stake:         0.0050505,
		},
		{
			name:          "half kelly under the cap",
			entryOdds:     2.5,
			closeOdds:     2.3,
			maxStake:      DefaultMaxStakeFraction,
			pEntry:        0.4,
			pClose:        0.434783,
			clvPercent:    8.6957,
			evPercent:     8.6957,
			confidence:    100,
			kellyFraction: 0.057971,
			stake:         0.028986,
		},
		{
			name:          "custom cap applies",
			entryOdds:     2.5,
			closeOdds:     2.3,
			maxStake:      0.01,
			pEntry:        0.4,
			pClose:        0.434783,
			clvPercent:    8.6957,
			evPercent:     8.6957,
			confidence:    100,
			kellyFraction: 0.057971,
			stake:         0.01,
		},
		{
			name:          "unchanged price",
			entryOdds:     3.0,
			closeOdds:     3.0,
			maxStake:      DefaultMaxStakeFraction,
			pEntry:        0.3333,
			pClose:        0.3333,
			clvPercent:    0,
			evPercent:     0,
			confidence:    23,
			kellyFraction: 0,
			stake:         0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CalculateCLV(tt.entryOdds, tt.closeOdds, tt.maxStake)
			assert.InDelta(t, tt.pEntry, res.PEntry, floatTolerance)
			assert.InDelta(t, tt.pClose, res.PClose, floatTolerance)
			assert.InDelta(t, tt.clvPercent, res.CLVPercent, floatTolerance)
			assert.InDelta(t, tt.evPercent, res.EVPercent, floatTolerance)
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.InDelta(t, tt.kellyFraction, res.KellyFraction, 1e-5)
			assert.InDelta(t, tt.stake, res.RecommendedStake, 1e-5)
		})
	}
}

func TestCalculateCLVDefaultUsesFivePercentCap(t *testing.T) {
	res := CalculateCLVDefault(2.0, 1.8)
	assert.Equal(t, DefaultMaxStakeFraction, res.RecommendedStake)
}

func TestConfidenceMidpoint(t *testing.T) {
	assert.Equal(t, 50.0, Confidence(ConfidenceMidpoint))

	// 1.015 * 1.0 - 1 lands within float error of the midpoint.
	res := CalculateCLVDefault(1.015, 1.0)
	assert.InDelta(t, 1.5, res.EVPercent, 1e-9)
	assert.Equal(t, 50.0, res.Confidence)
}

func TestConfidenceBounds(t *testing.T) {
	for _, ev := range []float64{-1e9, -500, -10, -1, 0, 1.5, 3, 10, 500, 1e9, math.Inf(1), math.Inf(-1), math.NaN()} {
		c := Confidence(ev)
		assert.GreaterOrEqual(t, c, MinConfidence, "ev=%v", ev)
		assert.LessOrEqual(t, c, MaxConfidence, "ev=%v", ev)
		assert.Equal(t, math.Round(c), c, "confidence must be a whole number, ev=%v", ev)
	}
}

func TestCalculateCLVInvariants(t *testing.T) {
	entries := []float64{1.05, 1.5, 1.91, 2.0, 3.4, 7.5, 21}
	closes := []float64{1.01, 1.2, 1.5, 1.9, 2.0, 2.6, 4.0, 10, 50}
	caps := []float64{0.01, DefaultMaxStakeFraction, 0.25}

	for _, entry := range entries {
		for _, closeOdds := range closes {
			for _, maxStake := range caps {
				res := CalculateCLV(entry, closeOdds, maxStake)
				assert.GreaterOrEqual(t, res.Confidence, 0.0)
				assert.LessOrEqual(t, res.Confidence, 100.0)
				assert.GreaterOrEqual(t, res.KellyFraction, 0.0)
				assert.GreaterOrEqual(t, res.RecommendedStake, 0.0)
				assert.LessOrEqual(t, res.RecommendedStake, maxStake)
			}
		}
	}
}

func TestCalculateCLVMonotonicInCloseOdds(t *testing.T) {
	const entry = 2.2
	prev := CalculateCLVDefault(entry, 1.1)
	for closeOdds := 1.15; closeOdds <= 6.0; closeOdds += 0.05 {
		cur := CalculateCLVDefault(entry, closeOdds)
		assert.Less(t, cur.PClose, prev.PClose, "close=%v", closeOdds)
		assert.Less(t, cur.CLVPercent, prev.CLVPercent, "close=%v", closeOdds)
		assert.Less(t, cur.EVPercent, prev.EVPercent, "close=%v", closeOdds)
		assert.LessOrEqual(t, cur.Confidence, prev.Confidence, "close=%v", closeOdds)
		assert.LessOrEqual(t, cur.KellyFraction, prev.KellyFraction, "close=%v", closeOdds)
		assert.LessOrEqual(t, cur.RecommendedStake, prev.RecommendedStake, "close=%v", closeOdds)
		prev = cur
	}
}

func TestCalculateCLVUnguardedZeroOdds(t *testing.T) {
	zeroClose := CalculateCLVDefault(2.0, 0)
	assert.True(t, math.IsInf(zeroClose.PClose, 1))
	assert.True(t, math.IsInf(zeroClose.EVPercent, 1))
	assert.Equal(t, 100.0, zeroClose.Confidence)
	assert.Equal(t, DefaultMaxStakeFraction, zeroClose.RecommendedStake)

	zeroEntry := CalculateCLVDefault(0, 2.0)
	assert.True(t, math.IsInf(zeroEntry.PEntry, 1))
	assert.True(t, math.IsNaN(zeroEntry.CLVPercent))
	assert.Equal(t, 0.0, zeroEntry.Confidence)
	assert.Equal(t, 0.0, zeroEntry.RecommendedStake)
}

func TestCalculatorStrictOdds(t *testing.T) {
	strict := NewCalculator(WithStrictOdds(true))
	lenient := NewCalculator()

	invalid := []OddsPair{
		{EntryOdds: 0, CloseOdds: 2},
		{EntryOdds: 2, CloseOdds: 0},
		{EntryOdds: -1.5, CloseOdds: 2},
		{EntryOdds: math.NaN(), CloseOdds: 2},
		{EntryOdds: 2, CloseOdds: math.Inf(1)},
	}
	for _, pair := range invalid {
		_, err := strict.Calculate(pair)
		require.Error(t, err, "pair=%+v", pair)
		assert.True(t, errors.Is(err, ErrInvalidOdds))

		var oddsErr *InvalidOddsError
		require.True(t, errors.As(err, &oddsErr))
		if !math.IsNaN(pair.EntryOdds) {
			assert.Equal(t, pair.EntryOdds, oddsErr.EntryOdds)
		}

		_, err = lenient.Calculate(pair)
		assert.NoError(t, err, "lenient mode never fails, pair=%+v", pair)
	}

	res, err := strict.Calculate(OddsPair{EntryOdds: 2.0, CloseOdds: 1.8})
	require.NoError(t, err)
	assert.Equal(t, CalculateCLVDefault(2.0, 1.8), res)
}

func TestCalculatorMaxStakeFraction(t *testing.T) {
	calc := NewCalculator(WithMaxStakeFraction(0.02))
	res, err := calc.Calculate(OddsPair{EntryOdds: 2.0, CloseOdds: 1.8})
	require.NoError(t, err)
	assert.Equal(t, 0.02, res.RecommendedStake)
}
