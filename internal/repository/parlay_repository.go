package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/tipster-edge/internal/database"
	"github.com/yourusername/tipster-edge/internal/models"
)

// PostgresParlayRepository implements ParlayRepository for PostgreSQL
type PostgresParlayRepository struct {
	db *database.DB
}

// NewPostgresParlayRepository creates a new parlay repository
func NewPostgresParlayRepository(db *database.DB) ParlayRepository {
	return &PostgresParlayRepository{db: db}
}

// Create inserts a parlay candidate
func (r *PostgresParlayRepository) Create(ctx context.Context, p *models.Parlay) error {
	query := `
		INSERT INTO parlays (id, leg_count, edge_pct, adjusted_prob, implied_odds)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query, p.ID, p.LegCount, p.EdgePct, p.AdjustedProb, p.ImpliedOdds)
	if err != nil {
		return fmt.Errorf("failed to create parlay: %w", err)
	}

	return nil
}

// ListCandidates returns the most recent parlay candidates. Row order is stable so
// selection ties resolve the same way on every call.
func (r *PostgresParlayRepository) ListCandidates(ctx context.Context, limit int) ([]*models.Parlay, error) {
	query := `
		SELECT id, leg_count, edge_pct, adjusted_prob, implied_odds, created_at
		FROM parlays
		ORDER BY created_at DESC, id ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query parlays: %w", err)
	}
	defer rows.Close()

	var parlays []*models.Parlay
	for rows.Next() {
		p := &models.Parlay{}
		if err := rows.Scan(&p.ID, &p.LegCount, &p.EdgePct, &p.AdjustedProb, &p.ImpliedOdds, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan parlay: %w", err)
		}
		parlays = append(parlays, p)
	}

	return parlays, rows.Err()
}
