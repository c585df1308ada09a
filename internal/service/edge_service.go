// Package service combines stored predictions and parlays with the edge calculations.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/cache"
	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/logger"
	"github.com/yourusername/tipster-edge/internal/metrics"
	"github.com/yourusername/tipster-edge/internal/models"
	"github.com/yourusername/tipster-edge/internal/repository"
)

// Options tunes what the service reads and how much it computes per call.
type Options struct {
	Lookback     time.Duration
	ScanLimit    int
	PoolLimit    int
	BatchWorkers int
}

// EdgeService evaluates closing line value for stored predictions and curates parlay suggestions
type EdgeService struct {
	predictions repository.PredictionRepository
	parlays     repository.ParlayRepository
	calc        *edge.Calculator
	suggestions *cache.SuggestionCache
	validator   *DataValidator
	opts        Options
	logger      *logrus.Logger
	edgeLog     *logger.EdgeLogger
	audit       *logger.AuditLogger
	now         func() time.Time
}

// NewEdgeService creates a new edge service
func NewEdgeService(
	predictions repository.PredictionRepository,
	parlays repository.ParlayRepository,
	calc *edge.Calculator,
	suggestions *cache.SuggestionCache,
	opts Options,
	log *logrus.Logger,
) *EdgeService {
	if calc == nil {
		calc = edge.NewCalculator()
	}
	return &EdgeService{
		predictions: predictions,
		parlays:     parlays,
		calc:        calc,
		suggestions: suggestions,
		validator:   NewDataValidator(),
		opts:        opts,
		logger:      log,
		edgeLog:     logger.NewEdgeLogger(log),
		audit:       logger.NewAuditLogger(log),
		now:         time.Now,
	}
}

// Calculator returns the calculator the service evaluates with.
func (s *EdgeService) Calculator() *edge.Calculator {
	return s.calc
}

// Evaluate computes CLV metrics for one pair. A positive maxStakeFraction overrides the configured cap.
func (s *EdgeService) Evaluate(pair edge.OddsPair, maxStakeFraction float64) (edge.CLVResult, error) {
	calc := s.calc
	if maxStakeFraction > 0 {
		calc = edge.NewCalculator(edge.WithMaxStakeFraction(maxStakeFraction), edge.WithStrictOdds(s.calc.StrictOdds))
	}

	result, err := calc.Calculate(pair)
	if err != nil {
		s.edgeLog.LogInvalidOdds(pair.EntryOdds, pair.CloseOdds, err)
		metrics.RecordInvalidOdds()
		return edge.CLVResult{}, err
	}

	s.edgeLog.LogCLVCalculation(pair.EntryOdds, pair.CloseOdds, result.CLVPercent, result.EVPercent, result.Confidence, result.RecommendedStake)
	metrics.RecordCLVCalculation("single", result.Confidence, result.RecommendedStake)
	return result, nil
}

// EvaluateBatch computes CLV metrics for many pairs, preserving input order.
func (s *EdgeService) EvaluateBatch(ctx context.Context, pairs []edge.OddsPair) ([]edge.CLVResult, error) {
	start := s.now()
	results, err := edge.CalculateBatch(ctx, s.calc, pairs, s.opts.BatchWorkers)
	if err != nil {
		if errors.Is(err, edge.ErrInvalidOdds) {
			metrics.RecordInvalidOdds()
		}
		return nil, err
	}

	elapsed := s.now().Sub(start)
	for _, r := range results {
		metrics.RecordCLVCalculation("batch", r.Confidence, r.RecommendedStake)
	}
	metrics.RecordBatchDuration(elapsed.Seconds())
	s.edgeLog.LogBatchCalculation(len(pairs), s.opts.BatchWorkers, float64(elapsed.Microseconds())/1000)

	return results, nil
}

// PredictionEdge is a stored prediction with its CLV evaluation.
type PredictionEdge struct {
	Prediction *models.Prediction `json:"prediction"`
	CLV        edge.CLVResult     `json:"clv"`
	ModelEdge  float64            `json:"modelEdge"`
	Tier       edge.Tier          `json:"tier"`
}

// evaluatePredictions scores closed predictions from the lookback window. Rows the
// calculator rejects or that produce non-finite metrics are skipped.
func (s *EdgeService) evaluatePredictions(ctx context.Context) ([]PredictionEdge, error) {
	since := s.now().Add(-s.opts.Lookback)
	predictions, err := s.predictions.ListWithClosingOdds(ctx, since, s.opts.ScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed predictions: %w", err)
	}

	kept := make([]*models.Prediction, 0, len(predictions))
	pairs := make([]edge.OddsPair, 0, len(predictions))
	for _, p := range predictions {
		if issues := s.validator.ValidatePrediction(p); len(issues) > 0 {
			s.logger.WithFields(logrus.Fields{
				"prediction_id": p.ID,
				"issues":        issues,
			}).Debug("Prediction has data quality issues")
		}

		pair, err := p.OddsPair()
		if err != nil {
			continue
		}
		if s.calc.StrictOdds {
			if err := edge.ValidateOdds(pair); err != nil {
				s.edgeLog.LogInvalidOdds(pair.EntryOdds, pair.CloseOdds, err)
				metrics.RecordInvalidOdds()
				continue
			}
		}
		kept = append(kept, p)
		pairs = append(pairs, pair)
	}

	results, err := s.EvaluateBatch(ctx, pairs)
	if err != nil {
		return nil, err
	}

	edges := make([]PredictionEdge, 0, len(kept))
	for i, p := range kept {
		r := results[i]
		if !isFinite(r.CLVPercent) || !isFinite(r.EVPercent) {
			s.logger.WithField("prediction_id", p.ID).Debug("Skipping prediction with non-finite CLV")
			continue
		}
		edges = append(edges, PredictionEdge{
			Prediction: p,
			CLV:        r,
			ModelEdge:  p.ModelEdge(),
			Tier:       edge.ConfidenceTier(r.Confidence),
		})
	}
	return edges, nil
}

// BestEdges returns up to limit predictions ordered by EV% descending. Equal EV keeps repository order.
func (s *EdgeService) BestEdges(ctx context.Context, limit int) ([]PredictionEdge, error) {
	edges, err := s.evaluatePredictions(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(edges, func(a, b PredictionEdge) int {
		return cmp.Compare(b.CLV.EVPercent, a.CLV.EVPercent)
	})

	if limit > 0 && len(edges) > limit {
		edges = edges[:limit]
	}
	return edges, nil
}

// DashboardStats summarizes CLV performance across the lookback window.
type DashboardStats struct {
	TotalPredictions    int               `json:"totalPredictions"`
	PositiveCLV         int               `json:"positiveClv"`
	PositiveCLVRate     float64           `json:"positiveClvRate"`
	AvgCLVPercent       float64           `json:"avgClvPercent"`
	AvgEVPercent        float64           `json:"avgEvPercent"`
	AvgConfidence       float64           `json:"avgConfidence"`
	AvgRecommendedStake float64           `json:"avgRecommendedStake"`
	TierBreakdown       map[edge.Tier]int `json:"tierBreakdown"`
	GeneratedAt         time.Time         `json:"generatedAt"`
}

// DashboardStats aggregates the evaluated predictions.
func (s *EdgeService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	edges, err := s.evaluatePredictions(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalPredictions: len(edges),
		TierBreakdown:    make(map[edge.Tier]int),
		GeneratedAt:      s.now().UTC(),
	}

	var sumCLV, sumEV, sumConfidence, sumStake float64
	for _, e := range edges {
		stats.TierBreakdown[e.Tier]++
		if e.CLV.CLVPercent > 0 {
			stats.PositiveCLV++
		}
		sumCLV += e.CLV.CLVPercent
		sumEV += e.CLV.EVPercent
		sumConfidence += e.CLV.Confidence
		sumStake += e.CLV.RecommendedStake
	}

	if stats.TotalPredictions > 0 {
		n := float64(stats.TotalPredictions)
		stats.PositiveCLVRate = float64(stats.PositiveCLV) / n
		stats.AvgCLVPercent = sumCLV / n
		stats.AvgEVPercent = sumEV / n
		stats.AvgConfidence = sumConfidence / n
		stats.AvgRecommendedStake = sumStake / n
	}

	return stats, nil
}

// Suggestions is the curated parlay pair plus the pool it was chosen from.
type Suggestions struct {
	edge.ParlaySuggestions
	PoolSize   int       `json:"poolSize"`
	ComputedAt time.Time `json:"computedAt"`
	Cached     bool      `json:"cached"`
}

// SuggestedParlays returns the cached suggestions, computing them on a miss.
func (s *EdgeService) SuggestedParlays(ctx context.Context) (*Suggestions, error) {
	if entry, ok := s.suggestions.Get(s.opts.PoolLimit); ok {
		return &Suggestions{
			ParlaySuggestions: entry.Suggestions,
			PoolSize:          entry.PoolSize,
			ComputedAt:        entry.ComputedAt,
			Cached:            true,
		}, nil
	}
	return s.refresh(ctx, "on_demand")
}

// RefreshSuggestions recomputes the suggestions and replaces the cached copy.
func (s *EdgeService) RefreshSuggestions(ctx context.Context) (*Suggestions, error) {
	return s.refresh(ctx, "scheduled")
}

func (s *EdgeService) refresh(ctx context.Context, trigger string) (*Suggestions, error) {
	now := s.now().UTC()

	parlays, err := s.parlays.ListCandidates(ctx, s.opts.PoolLimit)
	if err != nil {
		err = fmt.Errorf("failed to list parlay candidates: %w", err)
		metrics.RecordSuggestionRefresh(err)
		s.audit.LogSuggestionRefresh(trigger, 0, now, err)
		return nil, err
	}

	pool := make([]edge.ParlayCandidate, 0, len(parlays))
	for _, p := range parlays {
		if issues := s.validator.ValidateParlay(p); len(issues) > 0 {
			s.logger.WithFields(logrus.Fields{
				"parlay_id": p.ID,
				"issues":    issues,
			}).Warn("Skipping invalid parlay candidate")
			continue
		}
		c, err := p.Candidate()
		if err != nil {
			continue
		}
		pool = append(pool, c)
	}

	suggestions := s.SelectFromPool(pool)
	entry := &cache.Entry{Suggestions: suggestions, PoolSize: len(pool), ComputedAt: now}
	s.suggestions.Set(s.opts.PoolLimit, entry)

	metrics.RecordSuggestionRefresh(nil)
	s.audit.LogSuggestionRefresh(trigger, len(pool), now, nil)

	return &Suggestions{ParlaySuggestions: suggestions, PoolSize: len(pool), ComputedAt: now}, nil
}

// SelectFromPool runs both selection profiles over an arbitrary pool. Suspicious edges are
// logged and counted; the selectors never pick them.
func (s *EdgeService) SelectFromPool(pool []edge.ParlayCandidate) edge.ParlaySuggestions {
	for _, c := range pool {
		if edge.IsSuspiciousEdge(c.EdgePct) {
			s.edgeLog.LogSuspiciousEdge("parlay:"+c.ID, c.EdgePct.String(), c.Edge())
			metrics.RecordSuspiciousEdge()
		}
	}

	suggestions := edge.SelectParlays(pool)

	metrics.UpdateParlayPoolSize(len(pool))
	metrics.RecordParlaySelection("conservative", suggestions.Conservative != nil)
	metrics.RecordParlaySelection("aggressive", suggestions.Aggressive != nil)
	s.edgeLog.LogParlaySelection(len(pool), candidateID(suggestions.Conservative), candidateID(suggestions.Aggressive))

	return suggestions
}

func candidateID(c *edge.ParlayCandidate) string {
	if c == nil {
		return ""
	}
	return c.ID
}
