// Package config resolves scriptsmith settings from defaults, a YAML file,
// the environment and command-line overrides, in increasing precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/log"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
)

// Environment variables read by Load
const (
	EnvConfigPath   = "SCRIPTSMITH_CONFIG"
	EnvBackend      = "SCRIPTSMITH_BACKEND"
	EnvDialect      = "SCRIPTSMITH_DIALECT"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
)

// ProjectFile is looked up in the working directory when no path is given
const ProjectFile = "scriptsmith.yaml"

// Config is the fully resolved configuration handed to constructors
type Config struct {
	Provider     provider.Settings `yaml:"provider"`
	Dialect      string            `yaml:"dialect"`
	DialectFiles []string          `yaml:"dialect_files,omitempty"`
	Checker      checker.Mode      `yaml:"checker"`
	Log          LogSettings       `yaml:"log"`
	Telemetry    TelemetrySettings `yaml:"telemetry"`
	Journal      JournalSettings   `yaml:"journal"`

	// Source is the file the config was read from, empty for defaults only
	Source string `yaml:"-"`
}

// LogSettings configures the logger
type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetrySettings configures trace and metric export
type TelemetrySettings struct {
	Enabled bool `yaml:"enabled"`
	Pretty  bool `yaml:"pretty,omitempty"`
}

// JournalSettings configures the session journal. Dir defaults to
// ~/.scriptsmith/journal.
type JournalSettings struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir,omitempty"`
}

// Overrides carries command-line values. Empty fields leave the config as is.
type Overrides struct {
	Backend   string
	Dialect   string
	Checker   string
	LogLevel  string
	LogFormat string
	Timeout   time.Duration
	Trace     bool
	Journal   bool
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Provider: provider.DefaultSettings(),
		Dialect:  dialect.Playwright,
		Checker:  checker.ModeAuto,
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves the configuration. path wins over SCRIPTSMITH_CONFIG, which
// wins over ./scriptsmith.yaml and then ~/.scriptsmith/config.yaml. A missing
// implicit file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		explicit = false
		path = discover()
	}

	if path != "" {
		if err := cfg.readFile(path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func discover() string {
	candidates := []string{ProjectFile}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".scriptsmith", "config.yaml"))
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *Config) readFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("failed to read config file: %s", path), err).
			WithSuggestion("Check the --config flag or the " + EnvConfigPath + " variable")
	}

	// Expand environment variables so keys can live outside the file
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return errors.NewConfigUnmarshalError(path, err)
	}

	c.Source = path
	return nil
}

func (c *Config) applyEnv() {
	setIfPresent(&c.Provider.OpenAI.APIKey, EnvOpenAIKey)
	setIfPresent(&c.Provider.Anthropic.APIKey, EnvAnthropicKey)
	setIfPresent(&c.Provider.Gemini.APIKey, EnvGeminiKey)
	setIfPresent(&c.Dialect, EnvDialect)

	if backend := os.Getenv(EnvBackend); backend != "" {
		c.Provider.Backend = provider.Backend(backend)
	}
}

func setIfPresent(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Apply layers command-line overrides on top of the config
func (c *Config) Apply(o Overrides) {
	if o.Backend != "" {
		c.Provider.Backend = provider.Backend(o.Backend)
	}
	if o.Dialect != "" {
		c.Dialect = o.Dialect
	}
	if o.Checker != "" {
		c.Checker = checker.Mode(o.Checker)
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.Timeout > 0 {
		c.Provider.Timeout = o.Timeout
	}
	if o.Trace {
		c.Telemetry.Enabled = true
	}
	if o.Journal {
		c.Journal.Enabled = true
	}
}

// JournalDir is where session journals are written
func (c *Config) JournalDir() string {
	if c.Journal.Dir != "" {
		return c.Journal.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scriptsmith", "journal")
	}
	return filepath.Join(home, ".scriptsmith", "journal")
}

// Validate checks every section without touching the network
func (c *Config) Validate() error {
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if _, err := checker.ParseMode(string(c.Checker)); err != nil {
		return err
	}
	if _, err := log.ParseLevelStrict(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid log level", err).
			WithSuggestion("Use one of: debug, info, warn, error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid log format: %s", c.Log.Format)).
			WithSuggestion("Use text or json")
	}
	if c.Dialect == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "dialect must not be empty")
	}
	return nil
}

// Registry builds the dialect registry: the built-in dialects plus every
// configured dialect file
func (c *Config) Registry() (*dialect.Registry, error) {
	reg := dialect.Default()
	for _, path := range c.DialectFiles {
		if err := dialect.LoadInto(reg, path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Logger builds the logger described by the log section, writing to w
func (c *Config) Logger(w io.Writer) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(c.Log.Level)
	lc.Format = log.ParseFormat(c.Log.Format)
	if w != nil {
		lc.Output = log.NewOutput(w)
	}
	return log.New(lc)
}
