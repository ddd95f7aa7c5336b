package repository

import (
	"context"
	"time"

	"Hindsight/internal/domain/models"
)

// SeriesStore provides read-only access to daily bar series for the engine.
// Implementations must return bars sorted ascending by timestamp with no
// duplicates; the use case verifies this precondition and fails fast on
// violation.
type SeriesStore interface {
	GetDailyBars(ctx context.Context, symbol string, n int) ([]models.Bar, error)
	GetBarsRange(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
}
