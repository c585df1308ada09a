// Package repository provides PostgreSQL access to predictions and parlay candidates.
package repository

import (
	"fmt"

	"github.com/yourusername/tipster-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Prediction PredictionRepository
	Parlay     ParlayRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Prediction: NewPostgresPredictionRepository(db),
		Parlay:     NewPostgresParlayRepository(db),
	}, nil
}
