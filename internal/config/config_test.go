package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
)

// isolate clears every variable Load reads and points HOME at an empty dir
func isolate(t *testing.T) string {
	t.Helper()
	for _, env := range []string{EnvConfigPath, EnvBackend, EnvDialect, EnvOpenAIKey, EnvAnthropicKey, EnvGeminiKey} {
		t.Setenv(env, "")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, provider.BackendAuto, cfg.Provider.Backend)
	assert.Equal(t, provider.BackendOffline, cfg.Provider.Resolve())
	assert.Equal(t, dialect.Playwright, cfg.Dialect)
	assert.Equal(t, checker.ModeAuto, cfg.Checker)
	assert.Empty(t, cfg.Source)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileExpandsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("MY_OPENAI", "sk-from-file")

	path := writeFile(t, t.TempDir(), "scriptsmith.yaml", `
provider:
  backend: openai
  timeout: 30s
  openai:
    api_key: ${MY_OPENAI}
    model: gpt-4o
dialect: puppeteer
checker: static
log:
  level: debug
  format: json
telemetry:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, provider.BackendOpenAI, cfg.Provider.Backend)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, provider.DefaultMaxTokens, cfg.Provider.MaxTokens)
	assert.Equal(t, "sk-from-file", cfg.Provider.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Provider.OpenAI.Model)
	assert.Equal(t, dialect.Puppeteer, cfg.Dialect)
	assert.Equal(t, checker.ModeStatic, cfg.Checker)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestPrecedence(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "c.yaml", `
provider:
  backend: offline
  gemini:
    api_key: file-key
dialect: puppeteer
`)
	t.Setenv(EnvGeminiKey, "env-key")
	t.Setenv(EnvBackend, "gemini")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Provider.Gemini.APIKey)
	assert.Equal(t, provider.BackendGemini, cfg.Provider.Backend)
	assert.Equal(t, dialect.Puppeteer, cfg.Dialect)

	cfg.Apply(Overrides{Backend: "offline", Dialect: "playwright", Checker: "offline", Timeout: time.Minute, Trace: true, Journal: true})
	assert.Equal(t, provider.BackendOffline, cfg.Provider.Backend)
	assert.Equal(t, dialect.Playwright, cfg.Dialect)
	assert.Equal(t, checker.ModeOffline, cfg.Checker)
	assert.Equal(t, time.Minute, cfg.Provider.Timeout)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Journal.Enabled)

	cfg.Apply(Overrides{})
	assert.Equal(t, dialect.Playwright, cfg.Dialect)
}

func TestConfigPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "env.yaml", "dialect: puppeteer\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dialect.Puppeteer, cfg.Dialect)
}

func TestUserConfigDiscovered(t *testing.T) {
	home := isolate(t)
	writeFile(t, home, filepath.Join(".scriptsmith", "config.yaml"), "checker: static\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, checker.ModeStatic, cfg.Checker)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigRead))

	bad := writeFile(t, t.TempDir(), "bad.yaml", "provider: [unclosed\n")
	_, err = Load(bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		wantCode errors.ErrorCode
	}{
		{name: "explicit backend without key", mutate: func(c *Config) { c.Provider.Backend = provider.BackendOpenAI }, wantCode: errors.ErrCodeMissingAPIKey},
		{name: "unknown backend", mutate: func(c *Config) { c.Provider.Backend = "bard" }, wantCode: errors.ErrCodeConfigInvalid},
		{name: "unknown checker", mutate: func(c *Config) { c.Checker = "lint" }, wantCode: errors.ErrCodeConfigInvalid},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantCode: errors.ErrCodeConfigInvalid},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantCode: errors.ErrCodeConfigInvalid},
		{name: "empty dialect", mutate: func(c *Config) { c.Dialect = "" }, wantCode: errors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestRegistryLoadsDialectFiles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cypress.yaml", `
dialects:
  - name: cypress
    framework: Cypress
    entry_point: "function runTest(cy)"
    skeleton: |
      function runTest(cy) {
        cy.visit('{{BASE_URL}}');
      }
    rules:
      - Use cy.get with fallbacks
    scaffold: |
      function runTest(cy) {
        cy.visit('{{quote .URL}}');
      }
`)
	cfg := Default()
	cfg.DialectFiles = []string{path}

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, []string{"cypress", "playwright", "puppeteer"}, reg.Names())

	cfg.DialectFiles = []string{filepath.Join(t.TempDir(), "nope.yaml")}
	_, err = cfg.Registry()
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigRead))
}

func TestLoggerWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log.Format = "json"

	cfg.Logger(&buf).Info("hello", "password", "hunter2")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestJournalDir(t *testing.T) {
	home := isolate(t)

	cfg := Default()
	assert.Equal(t, filepath.Join(home, ".scriptsmith", "journal"), cfg.JournalDir())

	cfg.Journal.Dir = "/var/log/scriptsmith"
	assert.Equal(t, "/var/log/scriptsmith", cfg.JournalDir())
}
