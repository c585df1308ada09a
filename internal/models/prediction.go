package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/tipster-edge/internal/edge"
)

// Prediction is a tipped selection with the odds taken and, once the market closed, the closing odds.
type Prediction struct {
	ID        uuid.UUID  `db:"id" json:"id" validate:"required"`
	MatchID   string     `db:"match_id" json:"matchId" validate:"required"`
	Sport     string     `db:"sport" json:"sport"`
	HomeTeam  string     `db:"home_team" json:"homeTeam"`
	AwayTeam  string     `db:"away_team" json:"awayTeam"`
	Market    string     `db:"market" json:"market"`
	Selection string     `db:"selection" json:"selection"`
	ModelProb float64    `db:"model_prob" json:"modelProb" validate:"gte=0,lte=1"`
	EntryOdds float64    `db:"entry_odds" json:"entryOdds" validate:"required,gt=1"`
	CloseOdds *float64   `db:"close_odds" json:"closeOdds,omitempty"`
	StartsAt  time.Time  `db:"starts_at" json:"startsAt"`
	ClosedAt  *time.Time `db:"closed_at" json:"closedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// HasClosingOdds reports whether the market has closed for this prediction.
func (p *Prediction) HasClosingOdds() bool {
	return p.CloseOdds != nil
}

// OddsPair returns the entry/close pair for CLV evaluation.
func (p *Prediction) OddsPair() (edge.OddsPair, error) {
	if p.CloseOdds == nil {
		return edge.OddsPair{}, ErrMissingClose
	}
	return edge.OddsPair{EntryOdds: p.EntryOdds, CloseOdds: *p.CloseOdds}, nil
}

// ModelEdge is the model's edge against the entry price, in percent.
func (p *Prediction) ModelEdge() float64 {
	return edge.CalculateEdge(p.ModelProb, p.EntryOdds)
}

// Label renders the fixture for display.
func (p *Prediction) Label() string {
	if p.HomeTeam == "" && p.AwayTeam == "" {
		return p.MatchID
	}
	return p.HomeTeam + " vs " + p.AwayTeam
}
