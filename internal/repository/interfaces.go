package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/tipster-edge/internal/models"
)

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	SetClosingOdds(ctx context.Context, id uuid.UUID, closeOdds float64, closedAt time.Time) error
	ListWithClosingOdds(ctx context.Context, since time.Time, limit int) ([]*models.Prediction, error)
}

// ParlayRepository defines the interface for parlay candidate data access
type ParlayRepository interface {
	Create(ctx context.Context, parlay *models.Parlay) error
	ListCandidates(ctx context.Context, limit int) ([]*models.Parlay, error)
}
