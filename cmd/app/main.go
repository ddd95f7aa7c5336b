package main

import (
	"flag"
	"log"
	"os"

	"Hindsight/internal/di"
	"Hindsight/pkg/config"
	"Hindsight/pkg/server"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s storage=%s", cfg.Environment, cfg.Storage.Type)

	// Wire DI: Initialize all dependencies
	var app *server.App
	if cfg.Storage.Type == "memory" {
		app, err = di.InitializeMemoryApp(cfg)
	} else {
		app, err = di.InitializeApp(cfg)
	}
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Storage.Type == "clickhouse" {
		log.Printf("clickhouse: connected and schema ready - db: %s", cfg.ClickHouse.Database)
		log.Printf("kafka: brokers=%v bars_topic=%s", cfg.Kafka.Brokers, cfg.Kafka.BarsTopic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
