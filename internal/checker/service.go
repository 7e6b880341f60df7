package checker

import (
	"context"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// Service checker request parameters
const (
	CheckTemperature = 0.1
	CheckMaxTokens   = 1000
)

// ServiceChecker asks the completion backend to grade the artifact against
// the dialect's rubric
type ServiceChecker struct {
	client   provider.GenerationClient
	dialects *dialect.Registry
	composer prompt.Composer
}

// NewServiceChecker creates a checker backed by client
func NewServiceChecker(client provider.GenerationClient, reg *dialect.Registry) *ServiceChecker {
	if reg == nil {
		reg = dialect.Default()
	}
	return &ServiceChecker{client: client, dialects: reg}
}

// Name implements Checker
func (c *ServiceChecker) Name() string { return string(ModeService) + ":" + c.client.Name() }

// Check implements Checker
func (c *ServiceChecker) Check(ctx context.Context, a artifact.Artifact, spec scenario.Spec, reqs requirement.Set) (Verdict, error) {
	if err := refuseEmpty(a); err != nil {
		return Verdict{}, err
	}

	profile, err := c.dialects.Lookup(a.Dialect)
	if err != nil {
		return Verdict{}, err
	}

	pair := c.composer.ComposeCheck(profile, a.Code, reqs, spec)
	content, err := c.client.Generate(ctx, pair, provider.Options{
		Temperature: CheckTemperature,
		MaxTokens:   CheckMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return Verdict{}, err
	}

	return ParseVerdict(content)
}
