package edge

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds is matched by every InvalidOddsError.
var ErrInvalidOdds = errors.New("invalid odds")

// InvalidOddsError reports an odds pair that cannot be converted to probabilities.
type InvalidOddsError struct {
	EntryOdds float64
	CloseOdds float64
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid odds: entry=%v close=%v (both must be > 0)", e.EntryOdds, e.CloseOdds)
}

// Is lets errors.Is match ErrInvalidOdds.
func (e *InvalidOddsError) Is(target error) bool {
	return target == ErrInvalidOdds
}

// Calculator carries the stake cap and the odds guard policy for CLV calculations.
// The zero value is not useful; build one with NewCalculator.
type Calculator struct {
	MaxStakeFraction float64
	// StrictOdds rejects odds <= 0 instead of letting Inf/NaN propagate.
	StrictOdds bool
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithMaxStakeFraction overrides the stake cap.
func WithMaxStakeFraction(fraction float64) Option {
	return func(c *Calculator) {
		c.MaxStakeFraction = fraction
	}
}

// WithStrictOdds toggles the odds guard.
func WithStrictOdds(strict bool) Option {
	return func(c *Calculator) {
		c.StrictOdds = strict
	}
}

// NewCalculator returns a Calculator with the default stake cap and the guard disabled.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{MaxStakeFraction: DefaultMaxStakeFraction}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate runs CalculateCLV for pair. It only returns an error in strict mode.
func (c *Calculator) Calculate(pair OddsPair) (CLVResult, error) {
	if c.StrictOdds {
		if err := ValidateOdds(pair); err != nil {
			return CLVResult{}, err
		}
	}
	return CalculateCLV(pair.EntryOdds, pair.CloseOdds, c.MaxStakeFraction), nil
}

// ValidateOdds returns an *InvalidOddsError when either price is <= 0 or NaN.
func ValidateOdds(pair OddsPair) error {
	if !(pair.EntryOdds > 0) || !(pair.CloseOdds > 0) {
		return &InvalidOddsError{EntryOdds: pair.EntryOdds, CloseOdds: pair.CloseOdds}
	}
	if math.IsInf(pair.EntryOdds, 0) || math.IsInf(pair.CloseOdds, 0) {
		return &InvalidOddsError{EntryOdds: pair.EntryOdds, CloseOdds: pair.CloseOdds}
	}
	return nil
}
