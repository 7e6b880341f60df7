package exitcode

import (
	"context"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error returns success", err: nil, expected: Success},
		{name: "needs update", err: fmt.Errorf("generate: %w", ErrNeedsUpdate), expected: NeedsUpdate},
		{name: "cancelled", err: fmt.Errorf("wait: %w", context.Canceled), expected: Interrupted},
		{name: "validation", err: errors.NewNarrativeRequiredError(), expected: UsageError},
		{name: "service", err: errors.New(errors.ErrCodeServiceTimeout, "timed out"), expected: ServiceError},
		{name: "auth", err: errors.NewServiceAuthError("openai"), expected: AuthError},
		{name: "interpretation", err: errors.New(errors.ErrCodeVerdictNotJSON, "not json"), expected: InterpretationError},
		{name: "config", err: errors.New(errors.ErrCodeConfigRead, "read"), expected: ConfigError},
		{name: "session errors are general", err: errors.NewSessionBusyError("check"), expected: GeneralError},
		{name: "unknown flag", err: fmt.Errorf("unknown flag: --bogus"), expected: UsageError},
		{name: "plain error", err: fmt.Errorf("something broke"), expected: GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	for code := Success; code <= NeedsUpdate; code++ {
		if desc := GetExitCodeDescription(code); desc == "Unknown error" {
			t.Errorf("code %d has no description", code)
		}
	}
	if GetExitCodeDescription(99) != "Unknown error" {
		t.Error("unexpected description for unknown code")
	}
}
