package health

import (
	"testing"
	"time"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		status   Status
		expected string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("Status.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewResult(t *testing.T) {
	result := NewResult(StatusHealthy, "test message")

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusHealthy)
	}

	if result.Message != "test message" {
		t.Errorf("Message = %q, want %q", result.Message, "test message")
	}

	if result.Details == nil {
		t.Error("Details should be initialized, got nil")
	}

	if len(result.Details) != 0 {
		t.Errorf("Details should be empty, got %d items", len(result.Details))
	}
}

func TestWithDetail(t *testing.T) {
	result := NewResult(StatusHealthy, "test")

	// Test chaining
	returned := result.WithDetail("key1", "value1")
	if returned != result {
		t.Error("WithDetail should return same result for chaining")
	}

	// Test single detail
	result.WithDetail("foo", "bar")
	if val, ok := result.Details["foo"].(string); !ok || val != "bar" {
		t.Errorf("Details[foo] = %v, want %q", result.Details["foo"], "bar")
	}

	// Test multiple details
	result.WithDetail("count", 42).WithDetail("enabled", true)

	if val, ok := result.Details["count"].(int); !ok || val != 42 {
		t.Errorf("Details[count] = %v, want 42", result.Details["count"])
	}

	if val, ok := result.Details["enabled"].(bool); !ok || !val {
		t.Errorf("Details[enabled] = %v, want true", result.Details["enabled"])
	}
}

func TestFluentAPI(t *testing.T) {
	// Test chaining all methods together
	result := Healthy("test").
		WithDetail("version", "1.0").
		WithDetail("dialects", 2).
		WithLatency(50 * time.Millisecond)

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusHealthy)
	}

	if result.Message != "test" {
		t.Errorf("Message = %q, want %q", result.Message, "test")
	}

	if result.Latency != 50*time.Millisecond {
		t.Errorf("Latency = %v, want %v", result.Latency, 50*time.Millisecond)
	}

	if val, ok := result.Details["version"].(string); !ok || val != "1.0" {
		t.Errorf("Details[version] = %v, want %q", result.Details["version"], "1.0")
	}

	if val, ok := result.Details["dialects"].(int); !ok || val != 2 {
		t.Errorf("Details[dialects] = %v, want 2", result.Details["dialects"])
	}
}
