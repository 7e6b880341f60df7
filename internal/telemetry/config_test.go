package telemetry

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Enabled {
		t.Error("telemetry should be disabled by default")
	}
	if cfg.ServiceName != "scriptsmith" {
		t.Errorf("ServiceName = %q, want scriptsmith", cfg.ServiceName)
	}
	if cfg.writer() != os.Stderr {
		t.Error("default writer should be stderr")
	}
}

func TestDevelopmentConfig(t *testing.T) {
	cfg := DevelopmentConfig()

	if !cfg.Enabled {
		t.Error("development config should enable telemetry")
	}
}

func TestConfigWriterFallback(t *testing.T) {
	cfg := Config{}
	if cfg.writer() != os.Stderr {
		t.Error("nil writer should fall back to stderr")
	}
}
