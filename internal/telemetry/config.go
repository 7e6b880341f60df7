package telemetry

import (
	"io"
	"os"
)

// Config holds configuration for tracing and metrics
type Config struct {
	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Enabled determines whether telemetry is exported.
	// When false, noop providers are used.
	Enabled bool

	// Writer receives exported spans and metrics. Defaults to stderr so
	// stdout keeps carrying only generated code.
	Writer io.Writer

	// PrettyPrint indents exported JSON
	PrettyPrint bool
}

// DefaultConfig returns a configuration with telemetry disabled
func DefaultConfig() Config {
	return Config{
		ServiceName:    "scriptsmith",
		ServiceVersion: "dev",
		Enabled:        false,
		Writer:         os.Stderr,
		PrettyPrint:    true,
	}
}

// DevelopmentConfig returns a configuration that exports to stderr
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	return cfg
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stderr
	}
	return c.Writer
}
