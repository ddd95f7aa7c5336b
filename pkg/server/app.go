package server

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	domrepo "Hindsight/internal/domain/repository"
	"Hindsight/internal/handler/api"
	internalrepo "Hindsight/internal/repository"
	"Hindsight/internal/usecase"
	pkgcache "Hindsight/pkg/cache"
	pkgch "Hindsight/pkg/clickhouse"
	"Hindsight/pkg/config"
	xhttp "Hindsight/pkg/http"
	pkgkafka "Hindsight/pkg/kafka"
	applogger "Hindsight/pkg/logger"
)

// kafkaLogPublisher adapts the Kafka producer to the log collector's
// publisher interface.
type kafkaLogPublisher struct {
	p *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.p.Publish(ctx, topic, nil, payload)
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	analysis    *usecase.AnalysisUseCase
	scan        *usecase.ScanUseCase
	storage     domrepo.BarStorage
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	producer    *pkgkafka.Producer
	chClient    *pkgch.Client
	metrics     domrepo.Metrics
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	cache       pkgcache.Service
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	analysis *usecase.AnalysisUseCase,
	scan *usecase.ScanUseCase,
	storage domrepo.BarStorage,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	metrics domrepo.Metrics,
) *App {
	return &App{
		cfg:      cfg,
		analysis: analysis,
		scan:     scan,
		storage:  storage,
		consumer: consumer,
		kh:       kh,
		producer: producer,
		chClient: chClient,
		metrics:  metrics,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// aggregate repeated logs onto Kafka in production
	if a.producer != nil && a.cfg.Environment == "production" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "service_logs",
			Publisher:      kafkaLogPublisher{a.producer},
		})
	}

	a.analysis.SetLogger(l)
	if a.metrics != nil {
		a.analysis.SetMetrics(a.metrics)
	}
	if a.cfg.Kafka.PublishAdvice && a.producer != nil && a.cfg.Kafka.AdviceTopic != "" {
		a.analysis.SetPublisher(internalrepo.NewKafkaAdvicePublisher(a.producer, a.cfg.Kafka.AdviceTopic))
		l.Info("advice publishing enabled", applogger.String("topic", a.cfg.Kafka.AdviceTopic))
	}

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else {
		h := api.NewAnalysisEchoHandler(l, a.analysis, a.scan)
		if a.storage != nil {
			h.SetHealthCheck(a.storage.Health)
		}
		if c := a.buildCache(l); c != nil {
			h.SetCache(c)
			a.cache = c
		}
		httpHandler = h
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("analysis api started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Scan.Symbols),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// buildCache assembles the response cache configured in YAML: redis-backed
// layered when redis is enabled, in-process LRU otherwise.
func (a *App) buildCache(l *applogger.Logger) pkgcache.Service {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	if a.cfg.Cache.Redis.Enabled {
		host := a.cfg.Cache.Redis.Addr
		port := 6379
		if h, p, err := net.SplitHostPort(host); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(a.cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(a.cfg.Cache.Redis.DB),
		)
		if err != nil {
			l.Warn("redis cache unavailable, falling back to memory", applogger.Error(err))
		} else {
			return pkgcache.NewLayeredCache(rc)
		}
	}
	return pkgcache.NewMemoryCache()
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			l.Error("http shutdown error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close Kafka producer
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			l.Warn("storage close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
