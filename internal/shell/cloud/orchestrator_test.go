package cloud

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/pipeship/internal/core/deployment"
	"github.com/artpar/pipeship/internal/core/domain"
)

// =============================================================================
// Fake Client
// =============================================================================

// fakeClient scripts backend behavior for orchestrator tests.
type fakeClient struct {
	mu sync.Mutex

	createHandle *domain.Handle
	createErr    error

	// statuses is returned in order; the last entry repeats.
	statuses  []domain.DeploymentStatus
	statusErr error

	createCalls int
	statusCalls int
}

func (f *fakeClient) CreateDeployment(_ context.Context, _ deployment.CreateRequest) (*domain.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createHandle, nil
}

func (f *fakeClient) GetDeployment(_ context.Context, name, cluster string) (*domain.Handle, error) {
	return &domain.Handle{Name: name, Cluster: cluster}, nil
}

func (f *fakeClient) GetDeploymentStatus(_ context.Context, _, _ string) (domain.DeploymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return domain.StatusUnknown, f.statusErr
	}
	i := f.statusCalls - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *fakeClient) ListDeployments(_ context.Context, _ deployment.ListFilter) ([]domain.Handle, error) {
	return nil, nil
}

func (f *fakeClient) DeleteDeployment(_ context.Context, _, _ string) error {
	return nil
}

func (f *fakeClient) counts() (created, polled int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, f.statusCalls
}

func validRequest() deployment.CreateRequest {
	return deployment.CreateRequest{Pipeline: "pipeline:Frontend", Name: "svc"}
}

// =============================================================================
// Submit Classification Tests
// =============================================================================

func TestCreate_InvalidRequestNeverSubmits(t *testing.T) {
	client := &fakeClient{}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{
		Request: deployment.CreateRequest{}, // no pipeline
	})

	assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	created, _ := client.counts()
	assert.Zero(t, created)
}

func TestCreate_Conflict(t *testing.T) {
	client := &fakeClient{
		createErr: NewAPIError(409, `deployment "svc" already exists`),
	}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{Request: validRequest()})

	assert.Equal(t, domain.OutcomeConflict, outcome.Kind)
	assert.Equal(t, "svc", outcome.ConflictName)
}

func TestCreate_ConflictNameFallback(t *testing.T) {
	client := &fakeClient{
		createErr: NewAPIError(409, "already exists, format drifted"),
	}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{Request: validRequest()})

	assert.Equal(t, domain.OutcomeConflict, outcome.Kind)
	assert.Equal(t, "svc", outcome.ConflictName) // falls back to the requested name
}

func TestCreate_AuthRequired(t *testing.T) {
	client := &fakeClient{
		createErr: NewAPIError(401, "missing or expired token"),
	}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{Request: validRequest()})

	assert.Equal(t, domain.OutcomeAuthRequired, outcome.Kind)
	assert.Equal(t, "missing or expired token", outcome.Message)
}

func TestCreate_GenericFailureKeepsBackendMessage(t *testing.T) {
	client := &fakeClient{
		createErr: NewAPIError(500, "quota exceeded for cluster default"),
	}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{Request: validRequest()})

	assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	assert.Equal(t, "quota exceeded for cluster default", outcome.Message)
}

// =============================================================================
// Wait Semantics Tests
// =============================================================================

func TestCreate_NoWaitReturnsImmediately(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
	}
	orch := NewOrchestrator(client, nil, OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{
		Request: validRequest(),
		Wait:    false,
	})

	assert.Equal(t, domain.OutcomeReady, outcome.Kind)
	require.NotNil(t, outcome.Handle)
	assert.Equal(t, "svc", outcome.Handle.Name)

	_, polled := client.counts()
	assert.Zero(t, polled, "no-wait must not issue any status poll")
}

func TestCreate_WaitUntilReady(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statuses: []domain.DeploymentStatus{
			domain.StatusPending,
			domain.StatusPending,
			domain.StatusReady,
		},
	}
	clk := fakeclock.NewFakeClock(time.Now())
	orch := NewOrchestrator(client, clk, OrchestratorConfig{PollInterval: time.Second}, nil)

	results := make(chan domain.Outcome, 1)
	go func() {
		results <- orch.Create(context.Background(), CreateOptions{
			Request: validRequest(),
			Wait:    true,
			Timeout: time.Minute,
		})
	}()

	// Two pending checks, each followed by a one-second pause.
	clk.WaitForWatcherAndIncrement(time.Second)
	clk.WaitForWatcherAndIncrement(time.Second)

	outcome := <-results
	assert.Equal(t, domain.OutcomeReady, outcome.Kind)

	_, polled := client.counts()
	assert.Equal(t, 3, polled)
}

func TestCreate_WaitTimesOutAtExactlyTheBound(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statuses:     []domain.DeploymentStatus{domain.StatusPending},
	}
	start := time.Now()
	clk := fakeclock.NewFakeClock(start)
	orch := NewOrchestrator(client, clk, OrchestratorConfig{PollInterval: time.Second}, nil)

	results := make(chan domain.Outcome, 1)
	go func() {
		results <- orch.Create(context.Background(), CreateOptions{
			Request: validRequest(),
			Wait:    true,
			Timeout: 3 * time.Second,
		})
	}()

	for i := 0; i < 3; i++ {
		clk.WaitForWatcherAndIncrement(time.Second)
	}

	outcome := <-results
	assert.Equal(t, domain.OutcomeTimedOut, outcome.Kind)
	require.NotNil(t, outcome.Handle)
	assert.Equal(t, "svc", outcome.Handle.Name)

	// The deadline is wall-clock: exactly the bound elapsed, no re-arming.
	assert.Equal(t, start.Add(3*time.Second), clk.Now())

	_, polled := client.counts()
	assert.Equal(t, 4, polled)
}

func TestCreate_WaitClampsFinalPauseToDeadline(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statuses:     []domain.DeploymentStatus{domain.StatusPending},
	}
	start := time.Now()
	clk := fakeclock.NewFakeClock(start)
	// Poll interval longer than the timeout: the pause shrinks to fit.
	orch := NewOrchestrator(client, clk, OrchestratorConfig{PollInterval: 10 * time.Second}, nil)

	results := make(chan domain.Outcome, 1)
	go func() {
		results <- orch.Create(context.Background(), CreateOptions{
			Request: validRequest(),
			Wait:    true,
			Timeout: 500 * time.Millisecond,
		})
	}()

	clk.WaitForWatcherAndIncrement(500 * time.Millisecond)

	outcome := <-results
	assert.Equal(t, domain.OutcomeTimedOut, outcome.Kind)
	assert.Equal(t, start.Add(500*time.Millisecond), clk.Now())
}

func TestCreate_WaitRemoteFailureEndsPoll(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statuses: []domain.DeploymentStatus{
			domain.StatusPending,
			domain.StatusFailed,
		},
	}
	clk := fakeclock.NewFakeClock(time.Now())
	orch := NewOrchestrator(client, clk, OrchestratorConfig{PollInterval: time.Second}, nil)

	results := make(chan domain.Outcome, 1)
	go func() {
		results <- orch.Create(context.Background(), CreateOptions{
			Request: validRequest(),
			Wait:    true,
			Timeout: time.Minute,
		})
	}()

	clk.WaitForWatcherAndIncrement(time.Second)

	outcome := <-results
	assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Message, `"svc" failed`)
}

func TestCreate_WaitStatusErrorClassifiedAsFailed(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statusErr:    NewAPIError(502, "bad gateway"),
	}
	orch := NewOrchestrator(client, fakeclock.NewFakeClock(time.Now()), OrchestratorConfig{}, nil)

	outcome := orch.Create(context.Background(), CreateOptions{
		Request: validRequest(),
		Wait:    true,
		Timeout: time.Minute,
	})

	assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Message, "status check")
}

func TestCreate_WaitCancelled(t *testing.T) {
	client := &fakeClient{
		createHandle: &domain.Handle{Name: "svc", Cluster: "default"},
		statuses:     []domain.DeploymentStatus{domain.StatusPending},
	}
	clk := fakeclock.NewFakeClock(time.Now())
	orch := NewOrchestrator(client, clk, OrchestratorConfig{PollInterval: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := orch.Create(ctx, CreateOptions{
		Request: validRequest(),
		Wait:    true,
		Timeout: time.Minute,
	})

	assert.Equal(t, domain.OutcomeFailed, outcome.Kind)
	assert.Contains(t, outcome.Message, "context canceled")
}
