package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// EdgeService is the part of service.EdgeService the handlers use.
type EdgeService interface {
	Evaluate(pair edge.OddsPair, maxStakeFraction float64) (edge.CLVResult, error)
	EvaluateBatch(ctx context.Context, pairs []edge.OddsPair) ([]edge.CLVResult, error)
	BestEdges(ctx context.Context, limit int) ([]service.PredictionEdge, error)
	DashboardStats(ctx context.Context) (*service.DashboardStats, error)
	SuggestedParlays(ctx context.Context) (*service.Suggestions, error)
	SelectFromPool(pool []edge.ParlayCandidate) edge.ParlaySuggestions
}

// Limits bounds list sizes and batch requests.
type Limits struct {
	DefaultList int
	MaxList     int
	MaxBatch    int
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	svc      EdgeService
	validate *validator.Validate
	limits   Limits
	logger   *logrus.Logger
}

// NewHandler creates a new handler
func NewHandler(svc EdgeService, limits Limits, log *logrus.Logger) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		limits:   limits,
		logger:   log,
	}
}

// CalculateCLV evaluates one odds pair.
func (h *Handler) CalculateCLV(w http.ResponseWriter, r *http.Request) {
	var req CLVRequest
	if !h.decode(w, r, &req) {
		return
	}

	maxStake := 0.0
	if req.MaxStakeFraction != nil {
		maxStake = *req.MaxStakeFraction
	}

	pair := edge.OddsPair{EntryOdds: req.EntryOdds, CloseOdds: req.CloseOdds}
	result, err := h.svc.Evaluate(pair, maxStake)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newCLVResponse(pair, result))
}

// CalculateCLVBatch evaluates many odds pairs, preserving order.
func (h *Handler) CalculateCLVBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if h.limits.MaxBatch > 0 && len(req.Pairs) > h.limits.MaxBatch {
		respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("batch exceeds %d pairs", h.limits.MaxBatch))
		return
	}

	results, err := h.svc.EvaluateBatch(r.Context(), req.Pairs)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	out := BatchResponse{Results: make([]CLVResponse, len(results))}
	for i, res := range results {
		out.Results[i] = newCLVResponse(req.Pairs[i], res)
	}
	respondJSON(w, http.StatusOK, out)
}

// NormalizeEdge normalizes an edge given as a number or numeric string.
func (h *Handler) NormalizeEdge(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !req.Edge.Valid() {
		respondError(w, http.StatusBadRequest, "edge must be a number or numeric string")
		return
	}

	respondJSON(w, http.StatusOK, newEdgeResponse(req.Edge))
}

// CalculateEdge derives an edge from ?modelProb= and ?odds=.
func (h *Handler) CalculateEdge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	modelProb, err1 := strconv.ParseFloat(q.Get("modelProb"), 64)
	odds, err2 := strconv.ParseFloat(q.Get("odds"), 64)
	if err := errors.Join(err1, err2); err != nil {
		respondError(w, http.StatusBadRequest, "modelProb and odds must be numbers")
		return
	}

	query := EdgeQuery{ModelProb: modelProb, Odds: odds}
	if err := h.validate.Struct(query); err != nil {
		respondValidationError(w, err)
		return
	}

	e := edge.CalculateEdge(query.ModelProb, query.Odds)
	respondJSON(w, http.StatusOK, EdgeResponse{
		Edge:       e,
		Formatted:  edge.FormatSignedPercent(e),
		Suspicious: math.Abs(e) > edge.SuspiciousEdgeThreshold,
		Color:      edge.PercentColor(e),
	})
}

// BestEdges lists closed predictions ranked by EV.
func (h *Handler) BestEdges(w http.ResponseWriter, r *http.Request) {
	limit, err := h.parseLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	edges, err := h.svc.BestEdges(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	items := make([]BestEdgeItem, len(edges))
	for i, e := range edges {
		items[i] = newBestEdgeItem(e)
	}
	respondJSON(w, http.StatusOK, map[string]any{"edges": items, "count": len(items)})
}

// DashboardStats returns aggregate CLV statistics.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// SuggestedParlays returns the curated conservative and aggressive picks.
func (h *Handler) SuggestedParlays(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.SuggestedParlays(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	computedAt := s.ComputedAt
	respondJSON(w, http.StatusOK, ParlaysResponse{
		Conservative: newParlayView(s.Conservative),
		Aggressive:   newParlayView(s.Aggressive),
		PoolSize:     s.PoolSize,
		ComputedAt:   &computedAt,
		Cached:       s.Cached,
	})
}

// SelectParlays runs the selection over a caller supplied pool.
func (h *Handler) SelectParlays(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !h.decode(w, r, &req) {
		return
	}

	s := h.svc.SelectFromPool(req.Candidates)
	respondJSON(w, http.StatusOK, ParlaysResponse{
		Conservative: newParlayView(s.Conservative),
		Aggressive:   newParlayView(s.Aggressive),
		PoolSize:     len(req.Candidates),
	})
}

func (h *Handler) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.limits.DefaultList, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if h.limits.MaxList > 0 && limit > h.limits.MaxList {
		limit = h.limits.MaxList
	}
	return limit, nil
}

// decode reads and validates a JSON body, writing the error response itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, edge.ErrInvalidOdds):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		h.logger.WithError(err).Error("Edge service request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

func respondValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	details := make([]string, len(verrs))
	for i, fe := range verrs {
		details[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: details})
}
