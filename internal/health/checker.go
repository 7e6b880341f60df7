// Package health runs the self-checks behind 'scriptsmith doctor'.
//
// Each Checker verifies one thing the generator depends on: the loaded
// configuration, the completion backend it resolves to, and every registered
// dialect's ability to produce a scaffold its own rubric accepts.
//
//	manager := health.NewManager()
//	manager.AddChecker(health.NewConfigChecker(cfg))
//	manager.AddChecker(health.NewDialectChecker(registry))
//
//	for _, report := range manager.Check(ctx) {
//	    logger.Info("health check", "name", report.Name, "status", report.Status)
//	}
package health

import (
	"context"
	"time"
)

// Checker defines the interface for health checks.
type Checker interface {
	// Name returns the unique name of this health check, lowercase with hyphens.
	Name() string

	// Check performs the health check. It must respect the context deadline.
	Check(ctx context.Context) *Result
}

// Status represents the health check status.
type Status string

const (
	// StatusHealthy indicates the checked component is fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded means generation works but with reduced quality, such as
	// falling back to offline scaffolds.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means generation will fail until the problem is fixed.
	StatusUnhealthy Status = "unhealthy"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Result represents the result of a health check.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency"`
}

// NewResult creates a new health check result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail to the result and returns the result for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns the result for chaining.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
