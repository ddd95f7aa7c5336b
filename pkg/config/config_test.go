package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
environment: test
server:
  port: 9090
  shutdown_timeout: 5s
storage:
  type: memory
scan:
  symbols: [VNM, HPG]
  parallelism: 2
  lookback: 600
engine:
  price_tolerance: 0.03
  horizons: [5, 20]
  primary_horizon: 20
kafka:
  brokers: ["localhost:9092"]
  bars_topic: daily_bars
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("unexpected port %d", cfg.Server.Port)
	}
	if cfg.Engine.PriceTolerance != 0.03 {
		t.Fatalf("unexpected tolerance %v", cfg.Engine.PriceTolerance)
	}
	if len(cfg.Scan.Symbols) != 2 {
		t.Fatalf("unexpected symbols %v", cfg.Scan.Symbols)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing environment": "storage:\n  type: memory\nscan:\n  symbols: [A]\n",
		"bad storage type":    "environment: test\nstorage:\n  type: postgres\nscan:\n  symbols: [A]\n",
		"empty symbols":       "environment: test\nstorage:\n  type: memory\n",
		"clickhouse no host":  "environment: test\nstorage:\n  type: clickhouse\nscan:\n  symbols: [A]\n",
	}
	for name, yml := range cases {
		if _, err := Load(writeTemp(t, yml)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "FPT,VCB,VIC")
	t.Setenv("KAFKA_BARS_TOPIC", "bars_override")

	cfg, err := LoadWithEnv(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Scan.Symbols) != 3 || cfg.Scan.Symbols[0] != "FPT" {
		t.Fatalf("env symbols not applied: %v", cfg.Scan.Symbols)
	}
	if cfg.Kafka.BarsTopic != "bars_override" {
		t.Fatalf("env topic not applied: %v", cfg.Kafka.BarsTopic)
	}
}
