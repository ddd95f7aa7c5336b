package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"Hindsight/internal/domain/models"
	"Hindsight/internal/services/analog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	series map[string][]models.Bar
}

func (m *memStore) GetDailyBars(_ context.Context, symbol string, n int) ([]models.Bar, error) {
	bars, ok := m.series[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s: no data", symbol)
	}
	if n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (m *memStore) GetBarsRange(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	bars, ok := m.series[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s: no data", symbol)
	}
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Timestamp.Before(from) && !b.Timestamp.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

type capturePublisher struct {
	mu      sync.Mutex
	reports []*models.AnalysisReport
	err     error
}

func (p *capturePublisher) Publish(_ context.Context, r *models.AnalysisReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.reports = append(p.reports, r)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type countMetrics struct {
	mu        sync.Mutex
	ingested  int
	errors    map[string]int
	durations int
	matches   map[string]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{errors: map[string]int{}, matches: map[string]int{}}
}

func (m *countMetrics) RecordBarIngested(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested++
}

func (m *countMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *countMetrics) RecordAnalysisDuration(string, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *countMetrics) RecordMatchCount(symbol string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[symbol] = n
}

func dailyBars(symbol string, n int, price func(i int) float64) []models.Bar {
	start := time.Date(2017, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		p := price(i)
		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Symbol:    symbol,
			Open:      p, High: p * 1.02, Low: p * 0.98, Close: p,
			Volume: 1e6,
		}
	}
	return bars
}

func TestAnalyzeFlatSeriesProducesBoundedAdvice(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"VNM": dailyBars("VNM", 600, func(i int) float64 { return 100 }),
	}}
	pub := &capturePublisher{}
	metrics := newCountMetrics()

	uc := NewAnalysisUseCase(store, analog.DefaultParams())
	uc.SetPublisher(pub)
	uc.SetMetrics(metrics)

	report, err := uc.Analyze(context.Background(), "VNM", 0)
	require.NoError(t, err)
	assert.Equal(t, "VNM", report.Symbol)
	assert.Greater(t, report.MatchCount, 0)
	assert.Len(t, report.Matches, report.MatchCount)
	assert.False(t, report.Advice.NoEvidence)
	assert.GreaterOrEqual(t, report.Advice.Position, 0.10)
	assert.LessOrEqual(t, report.Advice.Position, 0.90)
	assert.Len(t, report.Summaries, len(analog.DefaultParams().Horizons))

	require.Len(t, pub.reports, 1)
	assert.Equal(t, report.MatchCount, metrics.matches["VNM"])
	assert.Equal(t, 1, metrics.durations)
}

func TestAnalyzeNoMatchesReturnsNeutral(t *testing.T) {
	// Flat at 100 until a late jump to 200: every eligible candidate sits
	// far outside the price band around the current close.
	store := &memStore{series: map[string][]models.Bar{
		"HPG": dailyBars("HPG", 600, func(i int) float64 {
			if i >= 596 {
				return 200
			}
			return 100
		}),
	}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	report, err := uc.Analyze(context.Background(), "HPG", 0)
	require.NoError(t, err)
	assert.Zero(t, report.MatchCount)
	assert.Equal(t, models.SignalNeutral, report.Advice.Signal)
	assert.True(t, report.Advice.NoEvidence)
	for _, s := range report.Summaries {
		assert.True(t, s.Insufficient)
	}
}

func TestAnalyzeShortHistoryIsNeutral(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"NEW": dailyBars("NEW", 20, func(i int) float64 { return 50 }),
	}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	report, err := uc.Analyze(context.Background(), "NEW", 0)
	require.NoError(t, err)
	assert.True(t, report.Advice.NoEvidence)
	assert.Equal(t, models.RegimeChoppy, report.Regime)
	assert.Contains(t, report.Advice.Rationale, "insufficient history")
}

func TestAnalyzeMalformedSeriesFails(t *testing.T) {
	bars := dailyBars("DUP", 100, func(i int) float64 { return 100 })
	bars[50].Timestamp = bars[49].Timestamp
	store := &memStore{series: map[string][]models.Bar{"DUP": bars}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	_, err := uc.Analyze(context.Background(), "DUP", 0)
	assert.ErrorIs(t, err, analog.ErrMalformedSeries)
}

func TestAnalyzeStoreErrorPropagates(t *testing.T) {
	uc := NewAnalysisUseCase(&memStore{series: map[string][]models.Bar{}}, analog.DefaultParams())
	_, err := uc.Analyze(context.Background(), "MISSING", 0)
	assert.Error(t, err)

	_, err = uc.Analyze(context.Background(), "", 0)
	assert.Error(t, err)
}

func TestAnalyzePublishFailureDoesNotFailAnalysis(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"VNM": dailyBars("VNM", 600, func(i int) float64 { return 100 }),
	}}
	pub := &capturePublisher{err: errors.New("broker down")}
	metrics := newCountMetrics()

	uc := NewAnalysisUseCase(store, analog.DefaultParams())
	uc.SetPublisher(pub)
	uc.SetMetrics(metrics)

	_, err := uc.Analyze(context.Background(), "VNM", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.errors["advice_publish"])
}

func TestRegimeRisingSeries(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"FPT": dailyBars("FPT", 400, func(i int) float64 { return 100 + 0.3*float64(i) }),
	}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	regime, state, err := uc.Regime(context.Background(), "FPT", 0)
	require.NoError(t, err)
	assert.Equal(t, models.MABullishStack, state)
	assert.Equal(t, models.RegimeBullTop, regime)
}

func TestAnalogsToleranceOverride(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"VNM": dailyBars("VNM", 600, func(i int) float64 { return 100 }),
	}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	wide, err := uc.Analogs(context.Background(), "VNM", 0, 0.10, false)
	require.NoError(t, err)
	narrow, err := uc.Analogs(context.Background(), "VNM", 0, 0.01, false)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, wide.Count, narrow.Count)
	assert.Greater(t, narrow.Count, 0)
	assert.False(t, wide.Enhanced)
}

func TestScanCollectsPerSymbolErrors(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"AAA": dailyBars("AAA", 600, func(i int) float64 { return 100 }),
	}}
	analysis := NewAnalysisUseCase(store, analog.DefaultParams())
	scan := NewScanUseCase(analysis, []string{"AAA", "BBB"}, 2, 600)

	report, err := scan.Scan(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, "AAA", report.Results[0].Symbol)
	require.NotNil(t, report.Results[0].Report)
	assert.Empty(t, report.Results[0].Error)

	assert.Equal(t, "BBB", report.Results[1].Symbol)
	assert.Nil(t, report.Results[1].Report)
	assert.NotEmpty(t, report.Results[1].Error)
}

func TestScanOverrideWins(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"AAA": dailyBars("AAA", 600, func(i int) float64 { return 100 }),
		"CCC": dailyBars("CCC", 600, func(i int) float64 { return 50 }),
	}}
	analysis := NewAnalysisUseCase(store, analog.DefaultParams())
	scan := NewScanUseCase(analysis, []string{"AAA"}, 2, 600)

	report, err := scan.Scan(context.Background(), []string{"CCC"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "CCC", report.Results[0].Symbol)
}

func TestBarsTailAndRange(t *testing.T) {
	store := &memStore{series: map[string][]models.Bar{
		"AAA": dailyBars("AAA", 30, func(i int) float64 { return 100 + float64(i) }),
	}}
	uc := NewAnalysisUseCase(store, analog.DefaultParams())

	// Zero from/to returns the latest limit bars.
	tail, err := uc.Bars(context.Background(), "AAA", time.Time{}, time.Time{}, 5)
	require.NoError(t, err)
	require.Len(t, tail, 5)
	assert.InDelta(t, 125, tail[0].Close, 1e-12)
	assert.InDelta(t, 129, tail[4].Close, 1e-12)

	// An explicit range wins over limit.
	from := time.Date(2017, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2017, 1, 10, 0, 0, 0, 0, time.UTC)
	ranged, err := uc.Bars(context.Background(), "AAA", from, to, 2)
	require.NoError(t, err)
	require.Len(t, ranged, 6)
	assert.Equal(t, from, ranged[0].Timestamp)
	assert.Equal(t, to, ranged[5].Timestamp)

	_, err = uc.Bars(context.Background(), "", time.Time{}, time.Time{}, 5)
	assert.Error(t, err)
}
