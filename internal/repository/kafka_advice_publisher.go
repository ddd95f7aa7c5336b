package repository

import (
	"context"

	"Hindsight/internal/domain/models"
	domrepo "Hindsight/internal/domain/repository"
	pkgkafka "Hindsight/pkg/kafka"
)

// KafkaAdvicePublisher implements AdvicePublisher for Kafka. The full report
// goes on the wire keyed by symbol so downstream consumers keep per-symbol
// ordering.
type KafkaAdvicePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAdvicePublisher creates a Kafka advice publisher.
func NewKafkaAdvicePublisher(producer *pkgkafka.Producer, topic string) domrepo.AdvicePublisher {
	return &KafkaAdvicePublisher{producer: producer, topic: topic}
}

func (p *KafkaAdvicePublisher) Publish(ctx context.Context, report *models.AnalysisReport) error {
	return p.producer.Publish(ctx, p.topic, []byte(report.Symbol), report)
}

func (p *KafkaAdvicePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
