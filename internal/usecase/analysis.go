package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
	"Hindsight/internal/services/analog"
	"Hindsight/internal/services/indicators"
	applogger "Hindsight/pkg/logger"
)

// AnalysisUseCase runs the full analog pipeline for one symbol: load series,
// classify the live regime, filter analogs, sample forward returns,
// summarize, derive confidence and size the position. Pure modulo reading
// the series store; safe for concurrent use.
type AnalysisUseCase struct {
	store     domrepo.SeriesStore
	params    analog.Params
	publisher domrepo.AdvicePublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	timeout   time.Duration
}

func NewAnalysisUseCase(store domrepo.SeriesStore, params analog.Params) *AnalysisUseCase {
	return &AnalysisUseCase{store: store, params: params, timeout: 15 * time.Second}
}

// SetPublisher injects a best-effort advice publisher.
func (uc *AnalysisUseCase) SetPublisher(p domrepo.AdvicePublisher) { uc.publisher = p }

// SetMetrics injects operational metrics.
func (uc *AnalysisUseCase) SetMetrics(m domrepo.Metrics) { uc.metrics = m }

// SetLogger injects a structured logger.
func (uc *AnalysisUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// Params exposes the engine parameters in use (handlers report them).
func (uc *AnalysisUseCase) Params() analog.Params { return uc.params }

// Analyze executes the whole pipeline and returns a complete report. Every
// degraded condition except a malformed series resolves to a well-formed
// neutral advice instead of an error.
func (uc *AnalysisUseCase) Analyze(ctx context.Context, symbol string, n int) (*models.AnalysisReport, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = 1500
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	start := time.Now()

	bars, err := uc.store.GetDailyBars(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	if err := analog.ValidateSeries(bars); err != nil {
		// Precondition violation: fail loudly, no neutral fallback.
		return nil, err
	}

	report := &models.AnalysisReport{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
	}

	if len(bars) < uc.params.MinTrailingObs {
		report.Regime = models.RegimeChoppy
		report.MAState = models.MAMixed
		report.Summaries = emptySummaries(uc.params.Horizons)
		report.Advice = analog.NeutralAdvice(report.Regime, uc.params, "insufficient history for analysis")
		report.Advice.Symbol = symbol
		uc.finish(ctx, symbol, report, start)
		return report, nil
	}

	last := len(bars) - 1
	current, backfilled := indicators.FromBar(bars, last, uc.params.TrailingWindow)
	report.Backfilled = backfilled
	report.MAState = analog.ClassifyMAState(current)
	report.Regime = analog.ClassifyEnvironment(current, uc.params.Thresholds)

	matches := analog.FindAnalogsEnhanced(bars, current, uc.params, true)
	report.Matches = matches.Timestamps()
	report.MatchCount = len(matches)

	if len(matches) == 0 {
		report.Summaries = emptySummaries(uc.params.Horizons)
		report.Advice = analog.NeutralAdvice(report.Regime, uc.params, "no reliable historical analog")
		report.Advice.Symbol = symbol
		uc.finish(ctx, symbol, report, start)
		return report, nil
	}

	fr := analog.SampleForwardReturns(bars, matches, uc.params.Horizons)
	report.Summaries = analog.SummarizeAll(fr)

	primary := primarySummary(report.Summaries, uc.params.PrimaryHorizon)
	consistency := math.Max(primary.UpProbability, primary.DownProbability)
	report.Confidence = analog.Confidence(primary.SampleSize, consistency)

	if primary.Insufficient {
		report.Advice = analog.NeutralAdvice(report.Regime, uc.params, "forward sample empty at primary horizon")
	} else {
		report.Advice = analog.SizePosition(
			primary.UpProbability, report.Confidence,
			primary.Mean, primary.StdDev,
			report.Regime, uc.params,
		)
	}
	report.Advice.Symbol = symbol
	report.Advice.Confidence = report.Confidence

	uc.finish(ctx, symbol, report, start)
	return report, nil
}

// Regime classifies the latest observation only.
func (uc *AnalysisUseCase) Regime(ctx context.Context, symbol string, n int) (models.Regime, models.MAState, error) {
	if symbol == "" {
		return "", "", fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = 400
	}
	bars, err := uc.store.GetDailyBars(ctx, symbol, n)
	if err != nil {
		return "", "", fmt.Errorf("load series: %w", err)
	}
	if err := analog.ValidateSeries(bars); err != nil {
		return "", "", err
	}
	if len(bars) == 0 {
		return models.RegimeChoppy, models.MAMixed, nil
	}
	current, _ := indicators.FromBar(bars, len(bars)-1, uc.params.TrailingWindow)
	return analog.ClassifyEnvironment(current, uc.params.Thresholds), analog.ClassifyMAState(current), nil
}

// AnalogsResult is the match-set payload of the analogs endpoint.
type AnalogsResult struct {
	Symbol   string          `json:"symbol"`
	Count    int             `json:"count"`
	Enhanced bool            `json:"enhanced"`
	Matches  []models.Analog `json:"matches"`
}

// Analogs runs the similarity filter alone, with a caller-chosen price
// tolerance and optional Stage-2 tightening.
func (uc *AnalysisUseCase) Analogs(ctx context.Context, symbol string, n int, tolerance float64, enhanced bool) (*AnalogsResult, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = 1500
	}
	bars, err := uc.store.GetDailyBars(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	if err := analog.ValidateSeries(bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return &AnalogsResult{Symbol: symbol, Enhanced: enhanced, Matches: []models.Analog{}}, nil
	}

	p := uc.params
	if tolerance > 0 {
		p.PriceTolerance = tolerance
	}
	current, _ := indicators.FromBar(bars, len(bars)-1, p.TrailingWindow)
	matches := analog.FindAnalogsEnhanced(bars, current, p, enhanced)
	return &AnalogsResult{
		Symbol:   symbol,
		Count:    len(matches),
		Enhanced: enhanced,
		Matches:  matches,
	}, nil
}

// Bars exposes the underlying series for inspection. A zero from/to pair
// returns the latest limit bars; otherwise the closed range wins and limit is
// ignored.
func (uc *AnalysisUseCase) Bars(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if limit <= 0 {
		limit = 500
	}
	if from.IsZero() && to.IsZero() {
		return uc.store.GetDailyBars(ctx, symbol, limit)
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	return uc.store.GetBarsRange(ctx, symbol, from, to)
}

func (uc *AnalysisUseCase) finish(ctx context.Context, symbol string, report *models.AnalysisReport, start time.Time) {
	if uc.metrics != nil {
		uc.metrics.RecordMatchCount(symbol, report.MatchCount)
		uc.metrics.RecordAnalysisDuration(symbol, time.Since(start).Seconds())
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, report); err != nil {
			if uc.metrics != nil {
				uc.metrics.RecordError("advice_publish")
			}
			if uc.l != nil {
				uc.l.Warn("advice publish failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
	}
	if uc.l != nil {
		uc.l.Info("analysis done",
			applogger.String("symbol", symbol),
			applogger.String("regime", string(report.Regime)),
			applogger.String("signal", string(report.Advice.Signal)),
			applogger.Int("matches", report.MatchCount),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
}

func emptySummaries(horizons []int) []models.ReturnSummary {
	out := make([]models.ReturnSummary, 0, len(horizons))
	for _, h := range horizons {
		out = append(out, analog.Summarize(nil, h))
	}
	return out
}

func primarySummary(sums []models.ReturnSummary, horizon int) models.ReturnSummary {
	for _, s := range sums {
		if s.Horizon == horizon {
			return s
		}
	}
	// Params.Validate guarantees the primary horizon is present; fall back
	// to the last (longest) horizon if a caller bypassed validation.
	return sums[len(sums)-1]
}
