package di

import (
	internalrepo "Hindsight/internal/repository"
	"Hindsight/pkg/config"
	"Hindsight/pkg/server"
)

// InitializeMemoryApp builds the application against the in-memory bar
// store: no ClickHouse, no Kafka. Intended for local development and demos
// where bars are pushed over HTTP-less test harnesses or preloaded.
func InitializeMemoryApp(cfg *config.Config) (*server.App, error) {
	metrics := ProvideMetrics()
	store := internalrepo.NewMemorySeriesStore()
	analysis, err := ProvideAnalysisUseCase(store, cfg)
	if err != nil {
		return nil, err
	}
	scan := ProvideScanUseCase(analysis, cfg)
	return server.New(cfg, analysis, scan, store, nil, nil, nil, nil, metrics), nil
}
