// Package checker judges generated artifacts and produces verdicts.
package checker

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// Checker produces a verdict for an artifact
type Checker interface {
	Check(ctx context.Context, a artifact.Artifact, spec scenario.Spec, reqs requirement.Set) (Verdict, error)
	Name() string
}

// Mode selects a checker implementation
type Mode string

const (
	// ModeAuto uses the service checker with a live backend, else offline
	ModeAuto    Mode = "auto"
	ModeService Mode = "service"
	ModeOffline Mode = "offline"
	ModeStatic  Mode = "static"
)

// Modes lists every selectable checker mode
var Modes = []Mode{ModeAuto, ModeService, ModeOffline, ModeStatic}

// ParseMode converts a string to a Mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown checker mode: %s", s)).
		WithSuggestion("Use one of: auto, service, offline, static")
}

// New builds the checker for mode. Auto resolves once: the service checker
// when client talks to a live backend, the offline checker otherwise.
func New(mode Mode, client provider.GenerationClient, reg *dialect.Registry) (Checker, error) {
	if reg == nil {
		reg = dialect.Default()
	}

	if mode == ModeAuto || mode == "" {
		mode = ModeOffline
		if client != nil && client.Name() != string(provider.BackendOffline) {
			mode = ModeService
		}
	}

	switch mode {
	case ModeService:
		if client == nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "service checker needs a completion backend")
		}
		if client.Name() == string(provider.BackendOffline) {
			return nil, errors.New(errors.ErrCodeConfigInvalid, "service checker cannot run on the offline backend").
				WithSuggestion("Use --checker offline or --checker static")
		}
		return NewServiceChecker(client, reg), nil
	case ModeOffline:
		return NewOfflineChecker(nil), nil
	case ModeStatic:
		return NewStaticChecker(reg), nil
	default:
		_, err := ParseMode(string(mode))
		return nil, err
	}
}

func refuseEmpty(a artifact.Artifact) error {
	if a.Empty() {
		return errors.New(errors.ErrCodeEmptyArtifact, "there is no generated code to check").
			WithSuggestion("Generate a script first")
	}
	return nil
}
