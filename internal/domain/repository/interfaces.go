package repository

import (
	"context"

	"Hindsight/internal/domain/models"
)

// BarStorage is the write path of the bar store, fed by the ingestion
// consumer. The engine itself never writes.
type BarStorage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, b *models.Bar) error
	StoreBatch(ctx context.Context, bars []*models.Bar) error
	Health(ctx context.Context) error
	Close() error
}

// AdvicePublisher publishes completed position advice for downstream
// consumers (notifiers, journals). Best-effort; analysis never fails on a
// publish error.
type AdvicePublisher interface {
	Publish(ctx context.Context, report *models.AnalysisReport) error
	Close() error
}

// Metrics abstracts operational counters so use cases stay free of the
// prometheus client.
type Metrics interface {
	RecordBarIngested(symbol string)
	RecordError(kind string)
	RecordAnalysisDuration(symbol string, seconds float64)
	RecordMatchCount(symbol string, n int)
}
