package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"Hindsight/internal/domain/models"
)

// ScanUseCase fans the analysis pipeline out over a symbol universe. Each
// symbol is an independent unit of work: no shared mutable state beyond the
// result slice, no ordering requirement between symbols.
type ScanUseCase struct {
	analysis    *AnalysisUseCase
	symbols     []string
	parallelism int
	lookback    int
}

func NewScanUseCase(analysis *AnalysisUseCase, symbols []string, parallelism, lookback int) *ScanUseCase {
	if parallelism <= 0 {
		parallelism = 4
	}
	if lookback <= 0 {
		lookback = 1500
	}
	return &ScanUseCase{
		analysis:    analysis,
		symbols:     symbols,
		parallelism: parallelism,
		lookback:    lookback,
	}
}

// Scan analyzes every symbol (override list wins over the configured
// universe) and returns per-symbol results; a failed symbol records its
// error instead of aborting the batch.
func (uc *ScanUseCase) Scan(ctx context.Context, override []string) (*models.ScanReport, error) {
	symbols := uc.symbols
	if len(override) > 0 {
		symbols = override
	}

	report := &models.ScanReport{
		Timestamp: time.Now().UTC(),
		Results:   make([]models.ScanResult, 0, len(symbols)),
	}
	if len(symbols) == 0 {
		return report, nil
	}

	sem := make(chan struct{}, uc.parallelism)
	resCh := make(chan models.ScanResult, len(symbols))
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				resCh <- models.ScanResult{Symbol: sym, Error: ctx.Err().Error()}
				return
			}
			r, err := uc.analysis.Analyze(ctx, sym, uc.lookback)
			if err != nil {
				resCh <- models.ScanResult{Symbol: sym, Error: err.Error()}
				return
			}
			resCh <- models.ScanResult{Symbol: sym, Report: r}
		}(sym)
	}

	go func() { wg.Wait(); close(resCh) }()
	for r := range resCh {
		report.Results = append(report.Results, r)
	}
	sort.Slice(report.Results, func(i, j int) bool {
		return report.Results[i].Symbol < report.Results[j].Symbol
	})
	return report, nil
}
