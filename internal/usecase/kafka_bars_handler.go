package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
	pkgkafka "Hindsight/pkg/kafka"
)

// KafkaBarsHandler consumes daily bar messages and writes them to storage.
type KafkaBarsHandler struct {
	topic   string
	storage domrepo.BarStorage
	metrics domrepo.Metrics
}

func NewKafkaBarsHandler(topic string, storage domrepo.BarStorage, metrics domrepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, o, h, l, c, v} plus optional
// precomputed attrs
func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string             `json:"symbol"`
		T      int64              `json:"t"`
		O      float64            `json:"o"`
		H      float64            `json:"h"`
		L      float64            `json:"l"`
		C      float64            `json:"c"`
		V      float64            `json:"v"`
		Attrs  map[string]float64 `json:"attrs,omitempty"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Symbol == "" || m.C <= 0 {
		h.metrics.RecordError("consumer_invalid_bar")
		return fmt.Errorf("invalid bar message: symbol=%q close=%v", m.Symbol, m.C)
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}

	bar := &models.Bar{
		Timestamp: time.Unix(m.T, 0).UTC(),
		Symbol:    m.Symbol,
		Open:      m.O,
		High:      m.H,
		Low:       m.L,
		Close:     m.C,
		Volume:    m.V,
		Attrs:     m.Attrs,
	}
	if err := h.storage.Store(ctx, bar); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBarIngested(m.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
