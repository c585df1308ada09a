package api

import (
	"math"
	"strconv"
	"time"

	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/service"
)

// Number is a float that encodes Inf and NaN as JSON null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// CLVRequest is the body of POST /api/v1/clv.
type CLVRequest struct {
	EntryOdds        float64  `json:"entryOdds" validate:"required,gt=0"`
	CloseOdds        float64  `json:"closeOdds" validate:"required,gt=0"`
	MaxStakeFraction *float64 `json:"maxStakeFraction,omitempty" validate:"omitempty,gt=0,lte=1"`
}

// BatchRequest is the body of POST /api/v1/clv/batch.
type BatchRequest struct {
	Pairs []edge.OddsPair `json:"pairs" validate:"required,min=1,dive"`
}

// NormalizeRequest is the body of POST /api/v1/edge/normalize.
type NormalizeRequest struct {
	Edge edge.EdgeValue `json:"edge"`
}

// EdgeQuery holds the query parameters of GET /api/v1/edge/calculate.
type EdgeQuery struct {
	ModelProb float64 `validate:"gte=0,lte=1"`
	Odds      float64 `validate:"gt=0"`
}

// SelectRequest is the body of POST /api/v1/parlays/select.
type SelectRequest struct {
	Candidates []edge.ParlayCandidate `json:"candidates" validate:"dive"`
}

// CLVResponse is a CLV result with display fields.
type CLVResponse struct {
	EntryOdds        Number    `json:"entryOdds"`
	CloseOdds        Number    `json:"closeOdds"`
	PEntry           Number    `json:"pEntry"`
	PClose           Number    `json:"pClose"`
	CLVPercent       Number    `json:"clvPercent"`
	EVPercent        Number    `json:"evPercent"`
	Confidence       Number    `json:"confidence"`
	KellyFraction    Number    `json:"kellyFraction"`
	RecommendedStake Number    `json:"recommendedStake"`
	Tier             edge.Tier `json:"tier"`
	Color            string    `json:"color"`
	BgColor          string    `json:"bgColor"`
	Formatted        Formatted `json:"formatted"`
}

// Formatted holds the human readable renderings.
type Formatted struct {
	CLV   string `json:"clv"`
	EV    string `json:"ev"`
	Stake string `json:"stake"`
}

func newCLVResponse(pair edge.OddsPair, r edge.CLVResult) CLVResponse {
	return CLVResponse{
		EntryOdds:        Number(pair.EntryOdds),
		CloseOdds:        Number(pair.CloseOdds),
		PEntry:           Number(r.PEntry),
		PClose:           Number(r.PClose),
		CLVPercent:       Number(r.CLVPercent),
		EVPercent:        Number(r.EVPercent),
		Confidence:       Number(r.Confidence),
		KellyFraction:    Number(r.KellyFraction),
		RecommendedStake: Number(r.RecommendedStake),
		Tier:             edge.ConfidenceTier(r.Confidence),
		Color:            edge.ConfidenceColor(r.Confidence),
		BgColor:          edge.ConfidenceBgColor(r.Confidence),
		Formatted: Formatted{
			CLV:   edge.FormatPercentDefault(r.CLVPercent),
			EV:    edge.FormatPercentDefault(r.EVPercent),
			Stake: edge.FormatStake(r.RecommendedStake),
		},
	}
}

// BatchResponse wraps batch results in input order.
type BatchResponse struct {
	Results []CLVResponse `json:"results"`
}

// EdgeResponse describes one normalized edge.
type EdgeResponse struct {
	Raw        string  `json:"raw,omitempty"`
	Edge       float64 `json:"edge"`
	Formatted  string  `json:"formatted"`
	Suspicious bool    `json:"suspicious"`
	Color      string  `json:"color"`
}

func newEdgeResponse(v edge.EdgeValue) EdgeResponse {
	return EdgeResponse{
		Raw:        v.String(),
		Edge:       v.Normalized(),
		Formatted:  edge.FormatEdge(v),
		Suspicious: edge.IsSuspiciousEdge(v),
		Color:      edge.EdgeColor(v),
	}
}

// BestEdgeItem is one row of GET /api/v1/edges/best.
type BestEdgeItem struct {
	ID        string      `json:"id"`
	MatchID   string      `json:"matchId"`
	Label     string      `json:"label"`
	Market    string      `json:"market,omitempty"`
	Selection string      `json:"selection,omitempty"`
	StartsAt  time.Time   `json:"startsAt"`
	ModelEdge string      `json:"modelEdge"`
	CLV       CLVResponse `json:"clv"`
}

func newBestEdgeItem(e service.PredictionEdge) BestEdgeItem {
	p := e.Prediction
	pair, _ := p.OddsPair()
	return BestEdgeItem{
		ID:        p.ID.String(),
		MatchID:   p.MatchID,
		Label:     p.Label(),
		Market:    p.Market,
		Selection: p.Selection,
		StartsAt:  p.StartsAt,
		ModelEdge: edge.FormatEdge(e.ModelEdge),
		CLV:       newCLVResponse(pair, e.CLV),
	}
}

// ParlayView is a selected parlay with its normalized edge.
type ParlayView struct {
	edge.ParlayCandidate
	Edge       float64 `json:"edge"`
	Formatted  string  `json:"formatted"`
	Suspicious bool    `json:"suspicious"`
	Color      string  `json:"color"`
}

func newParlayView(c *edge.ParlayCandidate) *ParlayView {
	if c == nil {
		return nil
	}
	return &ParlayView{
		ParlayCandidate: *c,
		Edge:            c.Edge(),
		Formatted:       edge.FormatEdge(c.EdgePct),
		Suspicious:      edge.IsSuspiciousEdge(c.EdgePct),
		Color:           edge.EdgeColor(c.EdgePct),
	}
}

// ParlaysResponse carries both picks; a null pick means nothing qualified.
type ParlaysResponse struct {
	Conservative *ParlayView `json:"conservative"`
	Aggressive   *ParlayView `json:"aggressive"`
	PoolSize     int         `json:"poolSize"`
	ComputedAt   *time.Time  `json:"computedAt,omitempty"`
	Cached       bool        `json:"cached"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
