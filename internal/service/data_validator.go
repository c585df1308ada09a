package service

import (
	"fmt"
	"math"

	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/models"
)

// DataValidator checks stored rows before they reach the edge calculations
type DataValidator struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidatePrediction returns data quality issues for a prediction
func (v *DataValidator) ValidatePrediction(p *models.Prediction) []string {
	var issues []string

	if p.MatchID == "" {
		issues = append(issues, "match_id is required")
	}
	if !isFinite(p.EntryOdds) || p.EntryOdds <= 1 {
		issues = append(issues, fmt.Sprintf("entry odds must be above 1, got %v", p.EntryOdds))
	}
	if p.CloseOdds == nil {
		issues = append(issues, "closing odds missing")
	} else if !isFinite(*p.CloseOdds) || *p.CloseOdds <= 1 {
		issues = append(issues, fmt.Sprintf("close odds must be above 1, got %v", *p.CloseOdds))
	}
	if p.ModelProb < 0 || p.ModelProb > 1 {
		issues = append(issues, fmt.Sprintf("model probability out of range (0-1), got %v", p.ModelProb))
	}

	return issues
}

// ValidateParlay returns data quality issues for a stored parlay candidate
func (v *DataValidator) ValidateParlay(p *models.Parlay) []string {
	var issues []string

	if p.LegCount <= 0 {
		issues = append(issues, fmt.Sprintf("leg count must be positive, got %d", p.LegCount))
	}
	if p.AdjustedProb < 0 || p.AdjustedProb > 1 {
		issues = append(issues, fmt.Sprintf("adjusted probability out of range (0-1), got %v", p.AdjustedProb))
	}
	if _, ok := edge.ParseEdge(p.EdgePct); !ok {
		issues = append(issues, fmt.Sprintf("edge_pct is not numeric: %q", p.EdgePct))
	}
	if !isFinite(p.ImpliedOdds) {
		issues = append(issues, "implied odds must be finite")
	}

	return issues
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
