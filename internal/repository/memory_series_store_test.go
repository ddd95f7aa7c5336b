package repository

import (
	"context"
	"testing"
	"time"

	"Hindsight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memBar(symbol string, day int, close float64) *models.Bar {
	return &models.Bar{
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		Symbol:    symbol,
		Open:      close, High: close, Low: close, Close: close,
		Volume: 1000,
	}
}

func TestMemorySeriesStoreSortedInsert(t *testing.T) {
	s := NewMemorySeriesStore()
	ctx := context.Background()

	// out of order on purpose
	require.NoError(t, s.Store(ctx, memBar("VNM", 2, 102)))
	require.NoError(t, s.Store(ctx, memBar("VNM", 0, 100)))
	require.NoError(t, s.Store(ctx, memBar("VNM", 1, 101)))

	bars, err := s.GetDailyBars(ctx, "VNM", 10)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 100.0, bars[0].Close)
	assert.Equal(t, 101.0, bars[1].Close)
	assert.Equal(t, 102.0, bars[2].Close)
}

func TestMemorySeriesStoreDuplicateTimestampOverwrites(t *testing.T) {
	s := NewMemorySeriesStore()
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, memBar("VNM", 0, 100)))
	require.NoError(t, s.Store(ctx, memBar("VNM", 0, 105)))

	bars, err := s.GetDailyBars(ctx, "VNM", 10)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 105.0, bars[0].Close)
}

func TestMemorySeriesStoreTailLimit(t *testing.T) {
	s := NewMemorySeriesStore()
	ctx := context.Background()

	batch := make([]*models.Bar, 0, 10)
	for i := 0; i < 10; i++ {
		batch = append(batch, memBar("VNM", i, 100+float64(i)))
	}
	require.NoError(t, s.StoreBatch(ctx, batch))

	bars, err := s.GetDailyBars(ctx, "VNM", 3)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 107.0, bars[0].Close)
	assert.Equal(t, 109.0, bars[2].Close)
}

func TestMemorySeriesStoreRange(t *testing.T) {
	s := NewMemorySeriesStore()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Store(ctx, memBar("VNM", i, 100+float64(i))))
	}

	from := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	bars, err := s.GetBarsRange(ctx, "VNM", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 4)
	assert.Equal(t, 102.0, bars[0].Close)

	empty, err := s.GetDailyBars(ctx, "UNKNOWN", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
