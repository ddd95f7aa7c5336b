package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
)

// MemorySeriesStore is an in-memory bar store for development mode and
// tests. It implements both the read path (SeriesStore) and the write path
// (BarStorage); bars are kept sorted ascending per symbol with last-write-wins
// on duplicate timestamps.
type MemorySeriesStore struct {
	mu     sync.RWMutex
	series map[string][]models.Bar
}

func NewMemorySeriesStore() *MemorySeriesStore {
	return &MemorySeriesStore{series: make(map[string][]models.Bar)}
}

func (s *MemorySeriesStore) Init(context.Context) error { return nil }

func (s *MemorySeriesStore) Store(_ context.Context, b *models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(*b)
	return nil
}

func (s *MemorySeriesStore) StoreBatch(_ context.Context, bars []*models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bars {
		if b == nil {
			continue
		}
		s.insert(*b)
	}
	return nil
}

// insert keeps the per-symbol slice sorted; callers hold the write lock.
func (s *MemorySeriesStore) insert(b models.Bar) {
	bars := s.series[b.Symbol]
	i := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Timestamp.Before(b.Timestamp)
	})
	if i < len(bars) && bars[i].Timestamp.Equal(b.Timestamp) {
		bars[i] = b
	} else {
		bars = append(bars, models.Bar{})
		copy(bars[i+1:], bars[i:])
		bars[i] = b
	}
	s.series[b.Symbol] = bars
}

func (s *MemorySeriesStore) GetDailyBars(_ context.Context, symbol string, n int) ([]models.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bars := s.series[symbol]
	if n > 0 && len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	out := make([]models.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

func (s *MemorySeriesStore) GetBarsRange(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bars := s.series[symbol]
	out := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if !b.Timestamp.Before(from) && !b.Timestamp.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemorySeriesStore) Health(context.Context) error { return nil }
func (s *MemorySeriesStore) Close() error                 { return nil }

var (
	_ domrepo.SeriesStore = (*MemorySeriesStore)(nil)
	_ domrepo.BarStorage  = (*MemorySeriesStore)(nil)
)
