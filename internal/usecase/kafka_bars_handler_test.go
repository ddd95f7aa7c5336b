package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"Hindsight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBarStorage struct {
	bars []*models.Bar
	err  error
}

func (s *memBarStorage) Init(context.Context) error { return nil }

func (s *memBarStorage) Store(_ context.Context, b *models.Bar) error {
	if s.err != nil {
		return s.err
	}
	s.bars = append(s.bars, b)
	return nil
}

func (s *memBarStorage) StoreBatch(ctx context.Context, bars []*models.Bar) error {
	for _, b := range bars {
		if err := s.Store(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *memBarStorage) Health(context.Context) error { return nil }
func (s *memBarStorage) Close() error                 { return nil }

func TestKafkaBarsHandlerStoresBar(t *testing.T) {
	storage := &memBarStorage{}
	metrics := newCountMetrics()
	h := NewKafkaBarsHandler("daily_bars", storage, metrics)

	assert.Equal(t, "daily_bars", h.Topic())

	msg := []byte(`{"symbol":"VNM","t":1719446400,"o":64.1,"h":65.0,"l":63.8,"c":64.8,"v":1200000}`)
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Len(t, storage.bars, 1)
	b := storage.bars[0]
	assert.Equal(t, "VNM", b.Symbol)
	assert.Equal(t, time.Unix(1719446400, 0).UTC(), b.Timestamp)
	assert.Equal(t, 64.8, b.Close)
	assert.Equal(t, 1200000.0, b.Volume)
	assert.Equal(t, 1, metrics.ingested)
}

func TestKafkaBarsHandlerMillisecondTimestamps(t *testing.T) {
	storage := &memBarStorage{}
	h := NewKafkaBarsHandler("daily_bars", storage, newCountMetrics())

	msg := []byte(`{"symbol":"VNM","t":1719446400000,"c":64.8}`)
	require.NoError(t, h.Handle(context.Background(), msg))
	assert.Equal(t, time.Unix(1719446400, 0).UTC(), storage.bars[0].Timestamp)
}

func TestKafkaBarsHandlerCarriesAttrs(t *testing.T) {
	storage := &memBarStorage{}
	h := NewKafkaBarsHandler("daily_bars", storage, newCountMetrics())

	msg := []byte(`{"symbol":"VNM","t":1719446400,"c":64.8,"attrs":{"rsi":58.2,"ma20":63.1}}`)
	require.NoError(t, h.Handle(context.Background(), msg))

	rsi, ok := storage.bars[0].Attr(models.AttrRSI)
	require.True(t, ok)
	assert.Equal(t, 58.2, rsi)
}

func TestKafkaBarsHandlerRejectsBadInput(t *testing.T) {
	storage := &memBarStorage{}
	metrics := newCountMetrics()
	h := NewKafkaBarsHandler("daily_bars", storage, metrics)

	assert.Error(t, h.Handle(context.Background(), []byte(`not json`)))
	assert.Equal(t, 1, metrics.errors["consumer_unmarshal"])

	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":"","t":1,"c":10}`)))
	assert.Error(t, h.Handle(context.Background(), []byte(`{"symbol":"VNM","t":1,"c":0}`)))
	assert.Equal(t, 2, metrics.errors["consumer_invalid_bar"])
	assert.Empty(t, storage.bars)
}

func TestKafkaBarsHandlerStoreError(t *testing.T) {
	storage := &memBarStorage{err: errors.New("insert failed")}
	metrics := newCountMetrics()
	h := NewKafkaBarsHandler("daily_bars", storage, metrics)

	msg := []byte(`{"symbol":"VNM","t":1719446400,"c":64.8}`)
	assert.Error(t, h.Handle(context.Background(), msg))
	assert.Equal(t, 1, metrics.errors["consumer_store"])
	assert.Zero(t, metrics.ingested)
}
