package health

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/config"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// ConfigChecker validates the loaded configuration
type ConfigChecker struct {
	cfg *config.Config
}

// NewConfigChecker creates a checker for cfg
func NewConfigChecker(cfg *config.Config) *ConfigChecker {
	return &ConfigChecker{cfg: cfg}
}

// Name implements Checker
func (c *ConfigChecker) Name() string { return "config" }

// Check implements Checker
func (c *ConfigChecker) Check(_ context.Context) *Result {
	source := c.cfg.Source
	if source == "" {
		source = "defaults"
	}

	if err := c.cfg.Validate(); err != nil {
		return failure(err).WithDetail("source", source)
	}
	return Healthy("configuration is valid").
		WithDetail("source", source).
		WithDetail("dialect", c.cfg.Dialect).
		WithDetail("checker", string(c.cfg.Checker))
}

// BackendChecker reports which completion backend generation would use.
// It builds the client but never sends a request.
type BackendChecker struct {
	settings provider.Settings
	registry *dialect.Registry
}

// NewBackendChecker creates a checker for settings
func NewBackendChecker(settings provider.Settings, reg *dialect.Registry) *BackendChecker {
	return &BackendChecker{settings: settings, registry: reg}
}

// Name implements Checker
func (c *BackendChecker) Name() string { return "backend" }

// Check implements Checker
func (c *BackendChecker) Check(ctx context.Context) *Result {
	if err := c.settings.Validate(); err != nil {
		return failure(err)
	}

	resolved := c.settings.Resolve()
	client, err := provider.NewFor(ctx, resolved, c.settings, c.registry)
	if err != nil {
		return failure(err).WithDetail("backend", string(resolved))
	}

	if resolved != provider.BackendOffline {
		return Healthy(fmt.Sprintf("generation uses %s", client.Name())).
			WithDetail("backend", string(resolved))
	}
	if c.settings.Backend == provider.BackendOffline {
		return Healthy("offline backend selected").
			WithDetail("backend", string(resolved))
	}
	return Degraded("no API key found, generation falls back to offline scaffolds").
		WithDetail("backend", string(resolved)).
		WithDetail("suggestion", "Set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY")
}

// DialectChecker renders every registered dialect's scaffold for a sample
// scenario that triggers every requirement tag, then runs the static rubric
// over it. A dialect whose own scaffold fails its rubric will keep producing
// needs-update verdicts offline.
type DialectChecker struct {
	registry *dialect.Registry
}

// NewDialectChecker creates a checker for reg
func NewDialectChecker(reg *dialect.Registry) *DialectChecker {
	return &DialectChecker{registry: reg}
}

// Name implements Checker
func (c *DialectChecker) Name() string { return "dialects" }

var sampleScenario = scenario.Spec{
	Narrative:   "sign in, fill the contact form, submit it and confirm the thank-you message",
	TargetURL:   "https://example.com/contact",
	Credentials: &scenario.Credentials{Username: "user@example.com", Password: "example-password"},
}

// Check implements Checker
func (c *DialectChecker) Check(ctx context.Context) *Result {
	profiles := c.registry.Profiles()
	if len(profiles) == 0 {
		return Unhealthy("no dialects registered")
	}

	data := dialect.NewScaffoldData(sampleScenario, requirement.NewSet(requirement.Vocabulary...))
	problems := make(map[string][]string)
	broken, flagged := 0, 0
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return Unhealthy("dialect check cancelled").WithDetail("error", err.Error())
		}

		code, err := p.Scaffold(data)
		if err != nil {
			broken++
			problems[p.Name()] = []string{err.Error()}
			continue
		}
		if issues := checker.Inspect(p, code); len(issues) > 0 {
			flagged++
			problems[p.Name()] = issues
		}
	}

	result := &Result{Details: make(map[string]any)}
	result.Details["dialects"] = len(profiles)
	for name, issues := range problems {
		result.Details[name] = issues
	}

	switch {
	case broken > 0:
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("%d of %d dialect scaffolds failed to render", broken, len(profiles))
	case flagged > 0:
		result.Status = StatusDegraded
		result.Message = fmt.Sprintf("%d of %d dialect scaffolds fail their own rubric", flagged, len(profiles))
	default:
		result.Status = StatusHealthy
		result.Message = fmt.Sprintf("all %d dialect scaffolds pass their rubric", len(profiles))
	}
	return result
}

// failure turns an error into an unhealthy result that keeps its code and
// first suggestion
func failure(err error) *Result {
	se, ok := errors.As(err)
	if !ok {
		return Unhealthy(err.Error())
	}
	r := Unhealthy(se.Message).WithDetail("code", string(se.Code))
	if len(se.Suggestions) > 0 {
		r.WithDetail("suggestion", se.Suggestions[0])
	}
	return r
}
