package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/config"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
)

func TestConfigChecker(t *testing.T) {
	cfg := config.Default()
	result := NewConfigChecker(cfg).Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, "defaults", result.Details["source"])
	assert.Equal(t, "playwright", result.Details["dialect"])

	cfg.Log.Level = "loud"
	cfg.Source = "/tmp/scriptsmith.yaml"
	result = NewConfigChecker(cfg).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, string(errors.ErrCodeConfigInvalid), result.Details["code"])
	assert.Equal(t, "/tmp/scriptsmith.yaml", result.Details["source"])
}

func TestBackendChecker(t *testing.T) {
	withKey := provider.DefaultSettings()
	withKey.OpenAI.APIKey = "sk-test"

	explicitOffline := provider.DefaultSettings()
	explicitOffline.Backend = provider.BackendOffline

	missingKey := provider.DefaultSettings()
	missingKey.Backend = provider.BackendAnthropic

	tests := []struct {
		name     string
		settings provider.Settings
		want     Status
		backend  string
	}{
		{name: "key present", settings: withKey, want: StatusHealthy, backend: "openai"},
		{name: "offline chosen", settings: explicitOffline, want: StatusHealthy, backend: "offline"},
		{name: "auto without keys", settings: provider.DefaultSettings(), want: StatusDegraded, backend: "offline"},
		{name: "explicit backend without key", settings: missingKey, want: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewBackendChecker(tt.settings, dialect.Default()).Check(context.Background())
			assert.Equal(t, tt.want, result.Status, result.Message)
			if tt.backend != "" {
				assert.Equal(t, tt.backend, result.Details["backend"])
			}
		})
	}
}

func TestDialectCheckerBuiltins(t *testing.T) {
	result := NewDialectChecker(dialect.Default()).Check(context.Background())

	assert.Equal(t, StatusHealthy, result.Status, "details: %v", result.Details)
	assert.Equal(t, 2, result.Details["dialects"])
}

func TestDialectCheckerFlagsWeakScaffold(t *testing.T) {
	defs, err := dialect.Parse([]byte(`
dialects:
  - name: lazy
    framework: Playwright
    entry_point: "async function runTest(page, expect)"
    rules:
      - Keep it short
    wait_primitives:
      - waitForLoadState
    scaffold: |
      async function runTest(page, expect) {
        await page.goto('{{quote .URL}}');
      }
`), "lazy.yaml")
	require.NoError(t, err)

	reg := dialect.NewRegistry()
	for _, d := range defs {
		require.NoError(t, reg.Register(d))
	}

	result := NewDialectChecker(reg).Check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Details, "lazy")
}

func TestDialectCheckerEmptyRegistry(t *testing.T) {
	result := NewDialectChecker(dialect.NewRegistry()).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
}
