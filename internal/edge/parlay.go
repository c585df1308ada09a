package edge

import (
	"cmp"
	"slices"
)

// Parlay selection policy bounds, in normalized edge percent.
const (
	ConservativeMaxLegs = 3
	ConservativeMinEdge = 10.0
	ConservativeMaxEdge = 20.0
	AggressiveMinLegs   = 3
	AggressiveMinEdge   = 20.0
)

// ParlayCandidate is a multi-leg bet offered for recommendation.
type ParlayCandidate struct {
	ID           string    `json:"id,omitempty"`
	LegCount     int       `json:"legCount" validate:"gte=1"`
	EdgePct      EdgeValue `json:"edgePct"`
	AdjustedProb float64   `json:"adjustedProb" validate:"gte=0,lte=1"`
	ImpliedOdds  float64   `json:"impliedOdds" validate:"gte=0"`
}

// Edge returns the candidate's edge on a percentage scale.
func (p ParlayCandidate) Edge() float64 {
	return NormalizeEdge(p.EdgePct)
}

// Suspicious reports whether the edge is still implausibly large after normalization.
// Suspicious candidates are never selected.
func (p ParlayCandidate) Suspicious() bool {
	return IsSuspiciousEdge(p.EdgePct)
}

// IsConservative reports whether p has few legs and a moderate edge.
func (p ParlayCandidate) IsConservative() bool {
	e := p.Edge()
	return p.LegCount <= ConservativeMaxLegs && e >= ConservativeMinEdge && e <= ConservativeMaxEdge && !p.Suspicious()
}

// IsAggressive reports whether p has many legs and a large, plausible edge. An edge
// such as 5 is read as a fraction (500%) and excluded here rather than ranked first.
func (p ParlayCandidate) IsAggressive() bool {
	return p.LegCount >= AggressiveMinLegs && p.Edge() >= AggressiveMinEdge && !p.Suspicious()
}

// ParlaySuggestions holds the two curated picks. A nil field means nothing qualified.
type ParlaySuggestions struct {
	Conservative *ParlayCandidate `json:"conservative"`
	Aggressive   *ParlayCandidate `json:"aggressive"`
}

// SelectConservative returns the qualifying candidate with the highest win probability.
func SelectConservative(pool []ParlayCandidate) *ParlayCandidate {
	return selectBest(pool, ParlayCandidate.IsConservative, func(p ParlayCandidate) float64 {
		return p.AdjustedProb
	})
}

// SelectAggressive returns the qualifying candidate with the highest edge.
func SelectAggressive(pool []ParlayCandidate) *ParlayCandidate {
	return selectBest(pool, ParlayCandidate.IsAggressive, ParlayCandidate.Edge)
}

// SelectParlays runs both selections over the same pool.
func SelectParlays(pool []ParlayCandidate) ParlaySuggestions {
	return ParlaySuggestions{
		Conservative: SelectConservative(pool),
		Aggressive:   SelectAggressive(pool),
	}
}

// selectBest filters the pool, stable-sorts survivors by key descending and returns a copy
// of the first. Equal keys keep pool order, so the earliest candidate wins a tie.
func selectBest(pool []ParlayCandidate, keep func(ParlayCandidate) bool, key func(ParlayCandidate) float64) *ParlayCandidate {
	survivors := make([]ParlayCandidate, 0, len(pool))
	for _, p := range pool {
		if keep(p) {
			survivors = append(survivors, p)
		}
	}
	if len(survivors) == 0 {
		return nil
	}
	slices.SortStableFunc(survivors, func(a, b ParlayCandidate) int {
		return cmp.Compare(key(b), key(a))
	})
	best := survivors[0]
	return &best
}
