package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"code.cloudfoundry.org/clock"

	"github.com/artpar/pipeship/internal/core/deployment"
	"github.com/artpar/pipeship/internal/core/domain"
)

// =============================================================================
// Orchestrator - Manages Deployment Lifecycle
// =============================================================================

const (
	// DefaultWaitTimeout bounds the readiness wait when none is given.
	DefaultWaitTimeout = time.Hour

	// DefaultPollInterval is the pause between status checks.
	DefaultPollInterval = 5 * time.Second
)

// OrchestratorConfig configures the deployment orchestrator.
type OrchestratorConfig struct {
	// PollInterval is the pause between readiness checks.
	// Default: 5 seconds.
	PollInterval time.Duration
}

// Orchestrator drives the remote deployment lifecycle: submit a create
// request, classify the immediate response, and optionally poll for
// readiness under a wall-clock deadline.
//
// The backend client is an explicit capability; concurrent deployments each
// construct their own Orchestrator. No retries happen at this layer - one
// submit attempt, one bounded poll loop.
type Orchestrator struct {
	client Client
	clock  clock.Clock
	config OrchestratorConfig
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator over a backend client.
func NewOrchestrator(client Client, clk clock.Clock, config OrchestratorConfig, logger *slog.Logger) *Orchestrator {
	if clk == nil {
		clk = clock.NewClock()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		client: client,
		clock:  clk,
		config: config,
		logger: logger.With("component", "orchestrator"),
	}
}

// =============================================================================
// Create
// =============================================================================

// CreateOptions carries one create-and-wait invocation.
type CreateOptions struct {
	// Request is the immutable create request to submit.
	Request deployment.CreateRequest

	// Wait polls for readiness after a successful submit. When false the
	// run ends at creation; the deployment continues asynchronously.
	Wait bool

	// Timeout bounds the readiness wait. Zero uses DefaultWaitTimeout.
	Timeout time.Duration
}

// Create submits the request and, when asked, waits for readiness. The
// result is always a classified Outcome; the caller branches on Kind rather
// than on error text. Once the deployment is created it is never rolled
// back here, regardless of how the wait ends.
func (o *Orchestrator) Create(ctx context.Context, opts CreateOptions) domain.Outcome {
	if err := opts.Request.Verify(); err != nil {
		return domain.FailedOutcome(err.Error())
	}

	o.logger.Info("creating deployment",
		"pipeline", opts.Request.Pipeline,
		"name", opts.Request.Name,
		"dev", opts.Request.Dev,
	)

	handle, err := o.client.CreateDeployment(ctx, opts.Request)
	if err != nil {
		outcome := o.classifySubmitError(err, opts.Request.Name)
		o.logger.Error("create failed", "kind", outcome.Kind, "error", err)
		return outcome
	}

	o.logger.Info("created deployment", "name", handle.Name, "cluster", handle.Cluster)

	if !opts.Wait {
		return domain.ReadyOutcome(handle)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return o.waitUntilReady(ctx, handle, timeout)
}

// classifySubmitError maps a create-call error onto the closed outcome set.
func (o *Orchestrator) classifySubmitError(err error, requestedName string) domain.Outcome {
	message := err.Error()

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		message = apiErr.Message
		if apiErr.StatusCode == http.StatusUnauthorized {
			return domain.AuthRequiredOutcome(message)
		}
	} else if errors.Is(err, ErrUnauthorized) || deployment.IsAuthMessage(message) {
		return domain.AuthRequiredOutcome(message)
	}

	if deployment.IsConflictMessage(message) {
		return domain.ConflictOutcome(deployment.ExtractConflictName(message, requestedName))
	}
	return domain.FailedOutcome(message)
}

// =============================================================================
// Readiness Polling
// =============================================================================

// waitUntilReady polls the remote status until the deployment is ready,
// fails, or the deadline passes. The deadline is computed once from the
// wall clock so total wait time stays bounded regardless of how long
// individual status checks take.
func (o *Orchestrator) waitUntilReady(ctx context.Context, handle *domain.Handle, timeout time.Duration) domain.Outcome {
	deadline := o.clock.Now().Add(timeout)

	o.logger.Info("waiting for deployment to become ready",
		"name", handle.Name,
		"timeout", timeout,
		"poll_interval", o.config.PollInterval,
	)

	for {
		status, err := o.client.GetDeploymentStatus(ctx, handle.Name, handle.Cluster)
		if err != nil {
			return domain.FailedOutcome(fmt.Sprintf("status check for deployment %q failed: %v", handle.Name, err))
		}

		switch status {
		case domain.StatusReady:
			o.logger.Info("deployment ready", "name", handle.Name)
			return domain.ReadyOutcome(handle)
		case domain.StatusFailed:
			return domain.FailedOutcome(fmt.Sprintf("deployment %q failed on the backend", handle.Name))
		}

		remaining := deadline.Sub(o.clock.Now())
		if remaining <= 0 {
			o.logger.Warn("timed out waiting for deployment", "name", handle.Name, "timeout", timeout)
			return domain.TimedOutOutcome(handle)
		}

		wait := o.config.PollInterval
		if wait > remaining {
			wait = remaining
		}

		timer := o.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.FailedOutcome(ctx.Err().Error())
		case <-timer.C():
		}
	}
}
