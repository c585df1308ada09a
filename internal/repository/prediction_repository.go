package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/tipster-edge/internal/database"
	"github.com/yourusername/tipster-edge/internal/models"
)

const predictionColumns = `id, match_id, sport, home_team, away_team, market, selection,
	model_prob, entry_odds, close_odds, starts_at, closed_at, created_at`

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Create inserts a new prediction
func (r *PostgresPredictionRepository) Create(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, match_id, sport, home_team, away_team, market, selection,
			model_prob, entry_odds, close_odds, starts_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.MatchID, p.Sport, p.HomeTeam, p.AwayTeam, p.Market, p.Selection,
		p.ModelProb, p.EntryOdds, p.CloseOdds, p.StartsAt, p.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	p, err := scanPrediction(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return p, nil
}

// SetClosingOdds records the closing price once the market closes
func (r *PostgresPredictionRepository) SetClosingOdds(ctx context.Context, id uuid.UUID, closeOdds float64, closedAt time.Time) error {
	query := `UPDATE predictions SET close_odds = $2, closed_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, closeOdds, closedAt)
	if err != nil {
		return fmt.Errorf("failed to set closing odds: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// ListWithClosingOdds returns closed predictions since the given time, newest first
func (r *PostgresPredictionRepository) ListWithClosingOdds(ctx context.Context, since time.Time, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE close_odds IS NOT NULL AND COALESCE(closed_at, starts_at) >= $1
		ORDER BY COALESCE(closed_at, starts_at) DESC, id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

func scanPrediction(row pgx.Row) (*models.Prediction, error) {
	p := &models.Prediction{}
	err := row.Scan(
		&p.ID, &p.MatchID, &p.Sport, &p.HomeTeam, &p.AwayTeam, &p.Market, &p.Selection,
		&p.ModelProb, &p.EntryOdds, &p.CloseOdds, &p.StartsAt, &p.ClosedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
