// Package client is a typed HTTP client for the edge API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/tipster-edge/internal/api"
	"github.com/yourusername/tipster-edge/internal/edge"
	"github.com/yourusername/tipster-edge/internal/service"
)

// APIError is a non-2xx response from the edge API.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("edge api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("edge api: %d %s", e.StatusCode, e.Message)
}

// Client calls the edge API.
type Client struct {
	baseURL   *url.URL
	transport *transport
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, cfg HTTPConfig, log *logrus.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Client{baseURL: u, transport: newTransport(cfg, log)}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.close()
	return nil
}

// CalculateCLV evaluates one odds pair. maxStakeFraction <= 0 uses the server's cap.
func (c *Client) CalculateCLV(ctx context.Context, entryOdds, closeOdds, maxStakeFraction float64) (*api.CLVResponse, error) {
	req := api.CLVRequest{EntryOdds: entryOdds, CloseOdds: closeOdds}
	if maxStakeFraction > 0 {
		req.MaxStakeFraction = &maxStakeFraction
	}
	var out api.CLVResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/clv", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CalculateCLVBatch evaluates many pairs; results keep input order.
func (c *Client) CalculateCLVBatch(ctx context.Context, pairs []edge.OddsPair) ([]api.CLVResponse, error) {
	var out api.BatchResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/clv/batch", nil, api.BatchRequest{Pairs: pairs}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// NormalizeEdge asks the server to normalize a raw edge.
func (c *Client) NormalizeEdge(ctx context.Context, raw edge.EdgeValue) (*api.EdgeResponse, error) {
	var out api.EdgeResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/edge/normalize", nil, api.NormalizeRequest{Edge: raw}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BestEdges lists the top closed predictions by EV. limit <= 0 uses the server default.
func (c *Client) BestEdges(ctx context.Context, limit int) ([]api.BestEdgeItem, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Edges []api.BestEdgeItem `json:"edges"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/edges/best", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Edges, nil
}

// DashboardStats fetches the aggregate CLV statistics.
func (c *Client) DashboardStats(ctx context.Context) (*service.DashboardStats, error) {
	var out service.DashboardStats
	if err := c.call(ctx, http.MethodGet, "/api/v1/dashboard/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SuggestedParlays fetches the curated parlay picks.
func (c *Client) SuggestedParlays(ctx context.Context) (*api.ParlaysResponse, error) {
	var out api.ParlaysResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/parlays/suggested", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var reqBody any
	if payload != nil {
		reqBody = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.transport.do(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil && er.Error != "" {
			apiErr.Message = er.Error
			apiErr.Details = er.Details
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
