package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/tipster-edge/internal/edge"
)

// Parlay is a stored multi-leg candidate. EdgePct is kept as text because
// upstream writers disagree on whether it is a fraction or a percentage.
type Parlay struct {
	ID           uuid.UUID `db:"id" json:"id"`
	LegCount     int       `db:"leg_count" json:"legCount"`
	EdgePct      string    `db:"edge_pct" json:"edgePct"`
	AdjustedProb float64   `db:"adjusted_prob" json:"adjustedProb"`
	ImpliedOdds  float64   `db:"implied_odds" json:"impliedOdds"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Candidate converts the stored row into a selection candidate.
func (p *Parlay) Candidate() (edge.ParlayCandidate, error) {
	if p.LegCount <= 0 {
		return edge.ParlayCandidate{}, ErrInvalidParlay
	}
	return edge.ParlayCandidate{
		ID:           p.ID.String(),
		LegCount:     p.LegCount,
		EdgePct:      edge.ParseEdgeValue(p.EdgePct),
		AdjustedProb: p.AdjustedProb,
		ImpliedOdds:  p.ImpliedOdds,
	}, nil
}
