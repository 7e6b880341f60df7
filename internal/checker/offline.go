package checker

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// ReadyProbability is how often the offline checker passes an artifact
const ReadyProbability = 0.3

// OfflineIssues are the canned findings the offline checker reports
var OfflineIssues = []string{
	"Function appears incomplete or truncated",
	"Missing console.log statements for better debugging",
	"Could use more robust error handling",
}

// OfflineChecker stands in for the service checker when no backend is
// configured. Its verdicts are random and say nothing about the code.
type OfflineChecker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewOfflineChecker creates an offline checker. A nil src uses a randomly
// seeded generator.
func NewOfflineChecker(src rand.Source) *OfflineChecker {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &OfflineChecker{rnd: rand.New(src)}
}

// Name implements Checker
func (c *OfflineChecker) Name() string { return string(ModeOffline) }

// Check implements Checker
func (c *OfflineChecker) Check(ctx context.Context, a artifact.Artifact, _ scenario.Spec, _ requirement.Set) (Verdict, error) {
	if err := refuseEmpty(a); err != nil {
		return Verdict{}, err
	}
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	c.mu.Lock()
	roll := c.rnd.Float64()
	c.mu.Unlock()

	if roll < ReadyProbability {
		return NewVerdict(nil), nil
	}
	return NewVerdict(OfflineIssues), nil
}
