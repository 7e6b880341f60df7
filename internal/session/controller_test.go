package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/checker"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/provider"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type reply struct {
	text string
	err  error
}

// scriptedClient returns replies in order and records every pair
type scriptedClient struct {
	mu      sync.Mutex
	replies []reply
	pairs   []prompt.Pair
	gate    chan struct{}
	entered chan struct{}
}

func (s *scriptedClient) Name() string { return "scripted" }

func (s *scriptedClient) Generate(ctx context.Context, pair prompt.Pair, _ provider.Options) (string, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs = append(s.pairs, pair)
	if len(s.replies) == 0 {
		return "async function runTest(page, expect) { console.log('x'); }", nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func (s *scriptedClient) lastPair() prompt.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairs[len(s.pairs)-1]
}

type verdictReply struct {
	verdict checker.Verdict
	err     error
}

// scriptedChecker returns verdicts in order
type scriptedChecker struct {
	verdicts []verdictReply
	seen     []artifact.Artifact
}

func (s *scriptedChecker) Name() string { return "scripted" }

func (s *scriptedChecker) Check(_ context.Context, a artifact.Artifact, _ scenario.Spec, _ requirement.Set) (checker.Verdict, error) {
	s.seen = append(s.seen, a)
	if len(s.verdicts) == 0 {
		return checker.NewVerdict(nil), nil
	}
	r := s.verdicts[0]
	s.verdicts = s.verdicts[1:]
	return r.verdict, r.err
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) transitions() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []State
	for _, e := range r.events {
		if e.Kind == EventTransition {
			out = append(out, e.To)
		}
	}
	return out
}

var validSpec = scenario.Spec{
	Narrative: "test login form with mobile view",
	TargetURL: "https://example.com",
	Toggles:   requirement.NewSet(requirement.Forms),
}

func newController(t *testing.T, client provider.GenerationClient, chk checker.Checker) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := New(Config{
		Dialect:   dialect.PlaywrightProfile(),
		Client:    client,
		Checker:   chk,
		Observers: []Observer{rec},
	})
	require.NoError(t, err)
	return c, rec
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Dialect: dialect.PlaywrightProfile()})
	assert.True(t, errors.IsKind(err, errors.KindConfig))
}

func TestSubmitReady(t *testing.T) {
	client := &scriptedClient{}
	c, rec := newController(t, client, &scriptedChecker{})

	snap, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)

	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, 1, snap.Cycle)
	assert.NotEmpty(t, snap.ID)
	assert.True(t, snap.Verdict.Ready())
	require.NotNil(t, snap.Artifact)
	assert.Equal(t, 1, snap.Artifact.Cycle)
	assert.True(t, snap.Reqs.Equal(requirement.NewSet(requirement.Responsive, requirement.Forms)))
	assert.Equal(t, []State{StateGenerating, StateGenerated, StateChecking, StateReady}, rec.transitions())
	assert.Empty(t, client.lastPair().Inputs.Issues)
}

func TestSubmitValidationKeepsIdle(t *testing.T) {
	client := &scriptedClient{}
	c, rec := newController(t, client, &scriptedChecker{})

	_, err := c.Submit(context.Background(), scenario.Spec{Narrative: "  "})

	assert.True(t, errors.HasCode(err, errors.ErrCodeNarrativeRequired))
	assert.Equal(t, StateIdle, c.State())
	assert.Empty(t, rec.events)
	assert.Empty(t, client.pairs)
}

func TestNeedsUpdateThenRepair(t *testing.T) {
	client := &scriptedClient{}
	chk := &scriptedChecker{verdicts: []verdictReply{
		{verdict: checker.NewVerdict([]string{"A", "B"})},
		{verdict: checker.NewVerdict(nil)},
	}}
	c, rec := newController(t, client, chk)

	snap, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)
	assert.Equal(t, StateNeedsUpdate, snap.State)
	assert.Equal(t, []string{"A", "B"}, c.Verdict().Issues)

	first := snap.Artifact

	var verdictOnRepairStart *checker.Verdict
	c.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind == EventTransition && e.To == StateRepairing {
			verdictOnRepairStart = c.Verdict()
		}
	}))

	snap, err = c.Repair(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateReady, snap.State)
	assert.Equal(t, 2, snap.Cycle)
	assert.Equal(t, 2, snap.Artifact.Cycle)
	assert.NotSame(t, first, snap.Artifact)
	assert.Nil(t, verdictOnRepairStart)

	repairPair := client.lastPair()
	assert.Equal(t, []string{"A", "B"}, repairPair.Inputs.Issues)
	assert.Contains(t, repairPair.System, "A")
	assert.Contains(t, repairPair.System, "B")
	assert.Contains(t, repairPair.System, prompt.RepairHeader)

	assert.Equal(t, []State{
		StateGenerating, StateGenerated, StateChecking, StateNeedsUpdate,
		StateRepairing, StateGenerated, StateChecking, StateReady,
	}, rec.transitions())
}

func TestConsecutiveRepairsClearVerdict(t *testing.T) {
	client := &scriptedClient{}
	chk := &scriptedChecker{verdicts: []verdictReply{
		{verdict: checker.NewVerdict([]string{"first"})},
		{verdict: checker.NewVerdict([]string{"second"})},
		{verdict: checker.NewVerdict([]string{"third"})},
	}}
	c, _ := newController(t, client, chk)

	var cleared []bool
	c.Subscribe(ObserverFunc(func(e Event) {
		if e.Kind == EventTransition && e.To == StateChecking {
			cleared = append(cleared, c.Verdict() == nil)
		}
	}))

	_, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)
	_, err = c.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, client.lastPair().Inputs.Issues)

	snap, err := c.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, client.lastPair().Inputs.Issues)
	assert.Equal(t, []string{"third"}, snap.Verdict.Issues)
	assert.Equal(t, 3, snap.Cycle)

	assert.Equal(t, []bool{true, true, true}, cleared)
}

func TestRepairOnlyFromNeedsUpdate(t *testing.T) {
	c, _ := newController(t, &scriptedClient{}, &scriptedChecker{})

	_, err := c.Repair(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))

	_, err = c.Submit(context.Background(), validSpec)
	require.NoError(t, err)

	_, err = c.Repair(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
	assert.Equal(t, StateReady, c.State())
}

func TestGenerationFailureReturnsToIdle(t *testing.T) {
	client := &scriptedClient{replies: []reply{{err: errors.NewServiceStatusError("openai", 500, "boom")}}}
	c, rec := newController(t, client, &scriptedChecker{})

	snap, err := c.Submit(context.Background(), validSpec)

	assert.True(t, errors.IsKind(err, errors.KindService))
	assert.Equal(t, StateIdle, snap.State)
	assert.Nil(t, snap.Artifact)

	var failures int
	for _, e := range rec.events {
		if e.Kind == EventFailure {
			failures++
			assert.Equal(t, err, e.Err)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestEmptyCompletionIsInterpretationFailure(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: "   "}}}
	c, _ := newController(t, client, &scriptedChecker{})

	_, err := c.Submit(context.Background(), validSpec)

	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyCompletion))
	assert.Equal(t, StateIdle, c.State())
}

func TestRepairFailureRestoresVerdict(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: "async function runTest(page, expect) {}"},
		{err: errors.NewServiceRateLimitError("openai", "")},
	}}
	chk := &scriptedChecker{verdicts: []verdictReply{{verdict: checker.NewVerdict([]string{"A"})}}}
	c, _ := newController(t, client, chk)

	_, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)
	before := c.Artifact()

	snap, err := c.Repair(context.Background())

	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceRateLimit))
	assert.Equal(t, StateNeedsUpdate, snap.State)
	assert.Equal(t, []string{"A"}, snap.Verdict.Issues)
	assert.Equal(t, 1, snap.Cycle)
	assert.Equal(t, before, snap.Artifact)

	// the repair can be retried
	snap, err = c.Repair(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
}

func TestCheckFailureLeavesGeneratedThenRecheck(t *testing.T) {
	chk := &scriptedChecker{verdicts: []verdictReply{
		{err: errors.New(errors.ErrCodeVerdictNotJSON, "not json")},
		{verdict: checker.NewVerdict(nil)},
	}}
	c, _ := newController(t, &scriptedClient{}, chk)

	snap, err := c.Submit(context.Background(), validSpec)

	assert.True(t, errors.IsKind(err, errors.KindInterpretation))
	assert.Equal(t, StateGenerated, snap.State)
	assert.Nil(t, snap.Verdict)
	require.NotNil(t, snap.Artifact)

	snap, err = c.Recheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReady, snap.State)
	require.Len(t, chk.seen, 2)
	assert.Equal(t, chk.seen[0].Digest, chk.seen[1].Digest)
}

func TestRecheckNeedsArtifact(t *testing.T) {
	c, _ := newController(t, &scriptedClient{}, &scriptedChecker{})

	_, err := c.Recheck(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
}

func TestReadyIsTerminal(t *testing.T) {
	chk := &scriptedChecker{}
	c, _ := newController(t, &scriptedClient{}, chk)

	snap, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)
	require.Equal(t, StateReady, snap.State)

	_, err = c.Recheck(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))
	_, err = c.Repair(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTransition))

	assert.Equal(t, StateReady, c.State())
	assert.Len(t, chk.seen, 1)
	assert.NotNil(t, c.Verdict())
}

func TestBusyRejection(t *testing.T) {
	client := &scriptedClient{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	c, _ := newController(t, client, &scriptedChecker{})

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), validSpec)
		done <- err
	}()

	select {
	case <-client.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("generation never started")
	}
	assert.Equal(t, StateGenerating, c.State())

	_, err := c.Submit(context.Background(), validSpec)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionBusy))
	_, err = c.Recheck(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionBusy))
	assert.True(t, errors.HasCode(c.Fallback(provider.NewOfflineClient(nil), nil), errors.ErrCodeSessionBusy))
	assert.Equal(t, StateGenerating, c.State())

	close(client.gate)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, c.State())
}

func TestCancelledGenerationReturnsToIdle(t *testing.T) {
	client := &scriptedClient{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	c, _ := newController(t, client, &scriptedChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(ctx, validSpec)
		done <- err
	}()

	<-client.entered
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, StateIdle, c.State())
}

func TestSubmitReplacesSession(t *testing.T) {
	chk := &scriptedChecker{verdicts: []verdictReply{{verdict: checker.NewVerdict([]string{"old"})}}}
	c, _ := newController(t, &scriptedClient{}, chk)

	first, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)

	second, err := c.Submit(context.Background(), scenario.Spec{Narrative: "check the footer"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, second.Cycle)
	assert.Equal(t, StateReady, second.State)
	assert.Equal(t, 0, second.Reqs.Len())
}

func TestFallbackToOffline(t *testing.T) {
	reg := dialect.Default()
	live := &scriptedClient{replies: []reply{{err: errors.NewServiceAuthError("openai")}}}
	c, _ := newController(t, live, &scriptedChecker{})

	_, err := c.Submit(context.Background(), validSpec)
	require.True(t, errors.HasCode(err, errors.ErrCodeServiceAuth))

	require.NoError(t, c.Fallback(provider.NewOfflineClient(reg), checker.NewStaticChecker(reg)))

	snap, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(snap.Artifact.Code, "async function runTest(page, expect)"))
	assert.Equal(t, StateReady, snap.State, "issues: %v", snap.Verdict)
}

func TestEventsCarrySessionAndCycle(t *testing.T) {
	c, rec := newController(t, &scriptedClient{}, &scriptedChecker{})
	snap, err := c.Submit(context.Background(), validSpec)
	require.NoError(t, err)

	kinds := map[EventKind]int{}
	for _, e := range rec.events {
		kinds[e.Kind]++
		assert.Equal(t, snap.ID, e.SessionID)
		assert.Equal(t, 1, e.Cycle)
	}
	assert.Equal(t, 1, kinds[EventArtifact])
	assert.Equal(t, 1, kinds[EventVerdict])
}
