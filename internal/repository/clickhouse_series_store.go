package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
	pkgch "Hindsight/pkg/clickhouse"
	applogger "Hindsight/pkg/logger"
)

// barColumns is the projection shared by every series query. Indicator
// columns are nullable: the ingest pipeline may or may not have computed
// them, and the engine backfills what is missing.
const barColumns = `ts, symbol, open, high, low, close, volume,
        rsi, ma20, ma60, ma250, dist_52w_high_pct`

// CHSeriesStore implements SeriesStore backed by ClickHouse.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSeriesStore(ch *pkgch.Client, table string) *CHSeriesStore {
	return &CHSeriesStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSeriesStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSeriesStore) GetDailyBars(ctx context.Context, symbol string, n int) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `, barColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse daily_bars query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get daily bars: %w", err)
	}
	defer rows.Close()

	bars, err := scanBars(rows, n)
	if err != nil {
		return nil, err
	}
	// query is DESC for the LIMIT; engine wants ASC
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse daily_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Int("rows", len(bars)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return bars, nil
}

func (s *CHSeriesStore) GetBarsRange(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	q := fmt.Sprintf(`
        SELECT %s
        FROM %s
        WHERE symbol = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `, barColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse bars_range query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get bars range: %w", err)
	}
	defer rows.Close()
	return scanBars(rows, 1024)
}

func scanBars(rows *sql.Rows, capHint int) ([]models.Bar, error) {
	if capHint <= 0 {
		capHint = 256
	}
	out := make([]models.Bar, 0, capHint)
	for rows.Next() {
		var (
			b                            models.Bar
			rsi, ma20, ma60, ma250, dist sql.NullFloat64
		)
		if err := rows.Scan(&b.Timestamp, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
			&rsi, &ma20, &ma60, &ma250, &dist); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Attrs = attrMap(rsi, ma20, ma60, ma250, dist)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func attrMap(rsi, ma20, ma60, ma250, dist sql.NullFloat64) map[string]float64 {
	attrs := make(map[string]float64, 5)
	put := func(name string, v sql.NullFloat64) {
		if v.Valid && !math.IsNaN(v.Float64) {
			attrs[name] = v.Float64
		}
	}
	put(models.AttrRSI, rsi)
	put(models.AttrMA20, ma20)
	put(models.AttrMA60, ma60)
	put(models.AttrMA250, ma250)
	put(models.AttrDistToHighPct, dist)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

var _ domrepo.SeriesStore = (*CHSeriesStore)(nil)
