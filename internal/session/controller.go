package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/log"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
	"github.com/felixgeelhaar/scriptsmith/internal/telemetry"
)

// Config wires a controller to its collaborators
type Config struct {
	// Dialect is the profile every prompt and check uses
	Dialect dialect.Profile
	// Client produces completions
	Client provider.GenerationClient
	// Checker judges artifacts
	Checker checker.Checker
	// Logger receives lifecycle logs. Nil discards them.
	Logger *log.Logger
	// Observers receive events in registration order
	Observers []Observer
}

// Snapshot is a consistent copy of the session's visible state
type Snapshot struct {
	ID       string
	State    State
	Cycle    int
	Spec     scenario.Spec
	Reqs     requirement.Set
	Artifact *artifact.Artifact
	Verdict  *checker.Verdict
}

// Controller owns one session. At most one operation runs at a time; a
// call made while another is outstanding fails with a busy error and
// leaves the session untouched.
type Controller struct {
	profile  dialect.Profile
	composer prompt.Composer

	base *log.Logger

	mu        sync.Mutex
	client    provider.GenerationClient
	checker   checker.Checker
	logger    *log.Logger
	observers []Observer

	busy     bool
	state    State
	id       string
	cycle    int
	spec     scenario.Spec
	reqs     requirement.Set
	artifact *artifact.Artifact
	verdict  *checker.Verdict
}

// New creates an idle controller
func New(cfg Config) (*Controller, error) {
	if cfg.Dialect == nil || cfg.Client == nil || cfg.Checker == nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "session needs a dialect, a completion client and a checker")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Controller{
		profile:   cfg.Dialect,
		base:      logger,
		client:    cfg.Client,
		checker:   cfg.Checker,
		logger:    logger,
		observers: append([]Observer(nil), cfg.Observers...),
		state:     StateIdle,
	}, nil
}

// Subscribe adds an observer
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Verdict returns the current verdict, if any
func (c *Controller) Verdict() *checker.Verdict {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyVerdict(c.verdict)
}

// Artifact returns the current artifact, if any
func (c *Controller) Artifact() *artifact.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyArtifact(c.artifact)
}

// Snapshot returns a copy of the session
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       c.id,
		State:    c.state,
		Cycle:    c.cycle,
		Spec:     c.spec,
		Reqs:     c.reqs,
		Artifact: copyArtifact(c.artifact),
		Verdict:  copyVerdict(c.verdict),
	}
}

// Dialect returns the session's profile
func (c *Controller) Dialect() dialect.Profile { return c.profile }

// Submit validates spec, starts a new session replacing any previous one,
// generates the first artifact and checks it. A validation error leaves the
// controller as it was. A generation failure returns to idle; a check
// failure leaves the artifact in the generated state for Recheck.
func (c *Controller) Submit(ctx context.Context, spec scenario.Spec) (Snapshot, error) {
	if err := spec.Validate(); err != nil {
		return c.Snapshot(), err
	}

	if err := c.acquire("submit"); err != nil {
		return c.Snapshot(), err
	}
	defer c.release()

	c.mu.Lock()
	c.id = uuid.NewString()
	c.cycle = 1
	c.spec = spec
	c.reqs = spec.Requirements()
	c.artifact = nil
	c.verdict = nil
	c.logger = c.base.WithSession(c.id, c.profile.Name())
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session started",
		"requirements", c.reqs.String(),
		"priority", spec.EffectivePriority(),
		"credentials", spec.HasCredentials(),
	)

	c.transition(StateGenerating)
	if err := c.generate(ctx, nil); err != nil {
		c.fail(ctx, StateIdle, "generation failed", err)
		return c.Snapshot(), err
	}

	return c.check(ctx)
}

// Repair regenerates the script with the current verdict's issues folded
// into the prompt, then checks the new artifact. It is only allowed after a
// needs-update verdict. On generation failure the previous verdict is
// restored so the repair can be retried.
func (c *Controller) Repair(ctx context.Context) (Snapshot, error) {
	if err := c.acquire("repair", StateNeedsUpdate); err != nil {
		return c.Snapshot(), err
	}
	defer c.release()

	c.mu.Lock()
	previous := c.verdict
	c.verdict = nil
	c.cycle++
	cycle := c.cycle
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "repair approved", "cycle", cycle, "issues", len(previous.Issues))

	c.transition(StateRepairing)
	if err := c.generate(ctx, previous.Issues); err != nil {
		c.mu.Lock()
		c.verdict = previous
		c.cycle--
		c.mu.Unlock()
		c.fail(ctx, StateNeedsUpdate, "repair failed", err)
		return c.Snapshot(), err
	}

	return c.check(ctx)
}

// Recheck runs the checker again on the current artifact. Use it after a
// check failure or to get a second opinion on a needs-update verdict. A
// ready session is final.
func (c *Controller) Recheck(ctx context.Context) (Snapshot, error) {
	if err := c.acquire("recheck", StateGenerated, StateNeedsUpdate); err != nil {
		return c.Snapshot(), err
	}
	defer c.release()

	c.mu.Lock()
	c.verdict = nil
	c.mu.Unlock()

	return c.check(ctx)
}

// Fallback switches the session to another completion client, and
// optionally another checker, for subsequent operations. Nothing calls it
// automatically.
func (c *Controller) Fallback(client provider.GenerationClient, chk checker.Checker) error {
	if client == nil {
		return errors.New(errors.ErrCodeConfigInvalid, "fallback needs a completion client")
	}
	if err := c.acquire("fall back"); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	from := c.client.Name()
	c.client = client
	if chk != nil {
		c.checker = chk
	}
	c.mu.Unlock()

	c.logger.Info("switched backend", "from", from, "to", client.Name())
	return nil
}

// generate composes, calls the client and installs the new artifact. It
// leaves the state at generated on success and untouched on failure.
func (c *Controller) generate(ctx context.Context, priorIssues []string) error {
	c.mu.Lock()
	id, cycle, spec, reqs, client := c.id, c.cycle, c.spec, c.reqs, c.client
	c.mu.Unlock()

	ctx, span := telemetry.StartSessionSpan(ctx, "generate", id, cycle)
	defer span.End()

	repair := len(priorIssues) > 0
	telemetry.RecordCycle(ctx, c.profile.Name(), repair)

	pair := c.composer.Compose(c.profile, reqs, spec, priorIssues)
	raw, err := client.Generate(ctx, pair, provider.Options{Temperature: c.profile.Temperature()})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	a, err := artifact.Interpret(raw, c.profile.Name(), spec, reqs, cycle)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span,
		attribute.Bool("repair", repair),
		attribute.String("artifact_digest", a.Digest),
	)

	c.mu.Lock()
	c.artifact = &a
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "artifact generated", "cycle", cycle, "backend", client.Name(), "digest", a.Digest)
	c.emit(Event{Kind: EventArtifact, Artifact: copyArtifact(&a)})
	c.transition(StateGenerated)
	return nil
}

// check judges the current artifact and settles on ready or needs-update.
// A failure leaves the artifact in the generated state.
func (c *Controller) check(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	id, cycle, spec, reqs, chk := c.id, c.cycle, c.spec, c.reqs, c.checker
	a := *c.artifact
	c.mu.Unlock()

	c.transition(StateChecking)

	ctx, span := telemetry.StartSessionSpan(ctx, "check", id, cycle)
	defer span.End()

	verdict, err := chk.Check(ctx, a, spec, reqs)
	if err != nil {
		telemetry.RecordError(span, err)
		c.fail(ctx, StateGenerated, "check failed", err)
		return c.Snapshot(), err
	}

	telemetry.RecordSuccess(span,
		attribute.String("status", string(verdict.Status)),
		attribute.Int("issues", len(verdict.Issues)),
	)
	telemetry.RecordVerdict(ctx, c.profile.Name(), string(verdict.Status), len(verdict.Issues))

	c.mu.Lock()
	c.verdict = &verdict
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "verdict", "cycle", cycle, "checker", chk.Name(), "status", verdict.Status, "issues", len(verdict.Issues))
	c.emit(Event{Kind: EventVerdict, Verdict: copyVerdict(&verdict)})

	if verdict.Ready() {
		c.transition(StateReady)
	} else {
		c.transition(StateNeedsUpdate)
	}
	return c.Snapshot(), nil
}

func (c *Controller) acquire(op string, allowed ...State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		return errors.NewSessionBusyError(op)
	}
	if len(allowed) > 0 && !c.state.oneOf(allowed...) {
		return errors.NewInvalidTransitionError(op, string(c.state))
	}
	c.busy = true
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) fail(ctx context.Context, to State, msg string, err error) {
	c.logger.LogError(ctx, msg, err)
	c.emit(Event{Kind: EventFailure, Err: err})
	c.transition(to)
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	c.logger.Debug("state changed", "from", from, "to", to)
	c.emit(Event{Kind: EventTransition, From: from, To: to})
}

func (c *Controller) emit(e Event) {
	c.mu.Lock()
	e.SessionID = c.id
	e.Cycle = c.cycle
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnEvent(e)
	}
}

func copyArtifact(a *artifact.Artifact) *artifact.Artifact {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Metadata.Features = append([]requirement.Tag(nil), a.Metadata.Features...)
	return &cp
}

func copyVerdict(v *checker.Verdict) *checker.Verdict {
	if v == nil {
		return nil
	}
	cp := *v
	cp.Issues = append([]string(nil), v.Issues...)
	return &cp
}
