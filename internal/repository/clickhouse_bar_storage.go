package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
)

// ClickHouseBarStorage implements BarStorage for ClickHouse.
type ClickHouseBarStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarStorage creates ClickHouse bar storage.
func NewClickHouseBarStorage(db *sql.DB, table string) domrepo.BarStorage {
	return &ClickHouseBarStorage{db: db, table: table}
}

func (s *ClickHouseBarStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

const barInsertColumns = "(ts, symbol, open, high, low, close, volume, rsi, ma20, ma60, ma250, dist_52w_high_pct)"

func (s *ClickHouseBarStorage) Store(ctx context.Context, b *models.Bar) error {
	q := fmt.Sprintf("INSERT INTO %s %s VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, barInsertColumns)
	_, err := s.db.ExecContext(ctx, q, barArgs(b)...)
	return err
}

func (s *ClickHouseBarStorage) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	// Multi-row VALUES to reduce round-trips; 2000 rows per chunk.
	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Close <= 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, barArgs(b)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s %s VALUES %s", s.table, barInsertColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseBarStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStorage) Close() error {
	return nil // Managed by pkg
}

func barArgs(b *models.Bar) []interface{} {
	return []interface{}{
		b.Timestamp,
		b.Symbol,
		b.Open,
		b.High,
		b.Low,
		b.Close,
		b.Volume,
		nullableAttr(b, models.AttrRSI),
		nullableAttr(b, models.AttrMA20),
		nullableAttr(b, models.AttrMA60),
		nullableAttr(b, models.AttrMA250),
		nullableAttr(b, models.AttrDistToHighPct),
	}
}

func nullableAttr(b *models.Bar, name string) interface{} {
	if v, ok := b.Attr(name); ok {
		return v
	}
	return nil
}
