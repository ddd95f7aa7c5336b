package di

import (
	"context"
	"fmt"
	"time"

	domrepo "Hindsight/internal/domain/repository"
	internalrepo "Hindsight/internal/repository"
	"Hindsight/internal/services/analog"
	"Hindsight/internal/usecase"
	pkgch "Hindsight/pkg/clickhouse"
	"Hindsight/pkg/config"
	pkgkafka "Hindsight/pkg/kafka"
	"Hindsight/pkg/metrics"
	"Hindsight/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "hindsight"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
            ts DateTime,
            symbol String,
            open Float64,
            high Float64,
            low Float64,
            close Float64,
            volume Float64,
            rsi Nullable(Float64),
            ma20 Nullable(Float64),
            ma60 Nullable(Float64),
            ma250 Nullable(Float64),
            dist_52w_high_pct Nullable(Float64)
        ) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts)`, BarsTable(cfg)),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// BarsTable resolves the fully-qualified daily bars table name.
func BarsTable(cfg *config.Config) string {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "hindsight"
	}
	table := cfg.ClickHouse.BarsTable
	if table == "" {
		table = "daily_bars"
	}
	return db + "." + table
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideSeriesStore creates the daily bar read repository.
func ProvideSeriesStore(chClient *pkgch.Client, cfg *config.Config) domrepo.SeriesStore {
	return internalrepo.NewCHSeriesStore(chClient, BarsTable(cfg))
}

// ProvideBarStorage creates the daily bar write repository.
func ProvideBarStorage(chClient *pkgch.Client, cfg *config.Config) domrepo.BarStorage {
	return internalrepo.NewClickHouseBarStorage(chClient.DB(), BarsTable(cfg))
}

// ProvideAdvicePublisher creates the Kafka advice publisher.
func ProvideAdvicePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.AdvicePublisher {
	return internalrepo.NewKafkaAdvicePublisher(producer, cfg.Kafka.AdviceTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(store domrepo.BarStorage, m domrepo.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, store, m)
}

// EngineParams builds engine parameters from config, falling back to
// defaults for anything unset.
func EngineParams(cfg *config.Config) (analog.Params, error) {
	p := analog.DefaultParams()
	e := cfg.Engine
	if e.PriceTolerance > 0 {
		p.PriceTolerance = e.PriceTolerance
	}
	if e.MinGapDays > 0 {
		p.MinGapDays = e.MinGapDays
	}
	if e.RSITolerance > 0 {
		p.RSITolerance = e.RSITolerance
	}
	if e.DistanceTolerancePct > 0 {
		p.DistTolerancePct = e.DistanceTolerancePct
	}
	if len(e.Horizons) > 0 {
		p.Horizons = e.Horizons
	}
	if e.PrimaryHorizon > 0 {
		p.PrimaryHorizon = e.PrimaryHorizon
	}
	if e.TrailingWindow > 0 {
		p.TrailingWindow = e.TrailingWindow
	}
	if e.MinTrailingObs > 0 {
		p.MinTrailingObs = e.MinTrailingObs
	}
	if err := p.Validate(); err != nil {
		return analog.Params{}, fmt.Errorf("engine params: %w", err)
	}
	return p, nil
}

// ProvideAnalysisUseCase creates the core analysis pipeline.
func ProvideAnalysisUseCase(store domrepo.SeriesStore, cfg *config.Config) (*usecase.AnalysisUseCase, error) {
	params, err := EngineParams(cfg)
	if err != nil {
		return nil, err
	}
	return usecase.NewAnalysisUseCase(store, params), nil
}

// ProvideScanUseCase creates the batch scanner over the configured universe.
func ProvideScanUseCase(analysis *usecase.AnalysisUseCase, cfg *config.Config) *usecase.ScanUseCase {
	return usecase.NewScanUseCase(analysis, cfg.Scan.Symbols, cfg.Scan.Parallelism, cfg.Scan.Lookback)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	analysis *usecase.AnalysisUseCase,
	scan *usecase.ScanUseCase,
	storage domrepo.BarStorage,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	m domrepo.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, analysis, scan, storage, consumer, kh, producer, chClient, m)
}
