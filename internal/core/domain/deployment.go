// Package domain contains the shared vocabulary types for pipeship.
// This is part of the Functional Core - no I/O, values only.
package domain

import "fmt"

// =============================================================================
// Deployment Status
// =============================================================================

// DeploymentStatus is the remote-reported state of a deployment.
// Status is always re-fetched from the backend, never inferred locally.
type DeploymentStatus string

const (
	StatusUnknown DeploymentStatus = ""
	StatusPending DeploymentStatus = "pending"
	StatusReady   DeploymentStatus = "ready"
	StatusFailed  DeploymentStatus = "failed"
)

// Terminal reports whether the status ends a readiness wait.
func (s DeploymentStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// =============================================================================
// Deployment Handle
// =============================================================================

// Handle is the remote-assigned identity of a deployment. It is created by a
// successful create call and is read-only afterward.
type Handle struct {
	Name         string `json:"name"`
	Cluster      string `json:"cluster"`
	DashboardURL string `json:"dashboard_url,omitempty"`
}

// =============================================================================
// Deployment Outcome
// =============================================================================

// OutcomeKind is the closed set of terminal results of one orchestration run.
type OutcomeKind string

const (
	// OutcomeReady means the deployment was created and, if a wait was
	// requested, reached ready state within the bound.
	OutcomeReady OutcomeKind = "ready"

	// OutcomeTimedOut means the deployment was created but did not reach
	// ready state within the wait bound. The remote deployment is left
	// running; only this invocation's patience expired.
	OutcomeTimedOut OutcomeKind = "timed_out"

	// OutcomeConflict means a deployment with the requested name already
	// exists on the backend.
	OutcomeConflict OutcomeKind = "conflict"

	// OutcomeAuthRequired means the backend rejected the request due to
	// missing or expired credentials.
	OutcomeAuthRequired OutcomeKind = "auth_required"

	// OutcomeFailed covers every other remote-reported error; the backend
	// message is carried through unmodified.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the terminal result of one orchestration run.
type Outcome struct {
	Kind OutcomeKind

	// Handle is set for OutcomeReady and OutcomeTimedOut, where the remote
	// deployment exists regardless of how this run ended.
	Handle *Handle

	// ConflictName is set for OutcomeConflict: the name of the existing
	// deployment, extracted best-effort from the backend message.
	ConflictName string

	// Message carries the backend error text for OutcomeFailed and
	// OutcomeAuthRequired.
	Message string
}

// ReadyOutcome returns a successful outcome for the given handle.
func ReadyOutcome(h *Handle) Outcome {
	return Outcome{Kind: OutcomeReady, Handle: h}
}

// TimedOutOutcome returns a timed-out outcome for a created deployment.
func TimedOutOutcome(h *Handle) Outcome {
	return Outcome{Kind: OutcomeTimedOut, Handle: h}
}

// ConflictOutcome returns a conflict outcome for an existing deployment name.
func ConflictOutcome(name string) Outcome {
	return Outcome{Kind: OutcomeConflict, ConflictName: name}
}

// AuthRequiredOutcome returns an authorization-failure outcome.
func AuthRequiredOutcome(message string) Outcome {
	return Outcome{Kind: OutcomeAuthRequired, Message: message}
}

// FailedOutcome returns a generic failure outcome carrying the backend message.
func FailedOutcome(message string) Outcome {
	return Outcome{Kind: OutcomeFailed, Message: message}
}

// Summary returns the human-readable message for the outcome. Each kind maps
// to a distinct message so callers can surface it directly.
func (o Outcome) Summary() string {
	switch o.Kind {
	case OutcomeReady:
		if o.Handle != nil {
			return fmt.Sprintf("deployment %q created in cluster %q", o.Handle.Name, o.Handle.Cluster)
		}
		return "deployment created"
	case OutcomeTimedOut:
		if o.Handle != nil {
			return fmt.Sprintf("timed out waiting for deployment %q to become ready; the deployment is still running on the backend", o.Handle.Name)
		}
		return "timed out waiting for deployment to become ready"
	case OutcomeConflict:
		return fmt.Sprintf("deployment %q already exists: use a different name with --name, or delete the existing deployment first", o.ConflictName)
	case OutcomeAuthRequired:
		return "authorization required: Pipeship Cloud rejected the API token, log in again or set a valid token"
	case OutcomeFailed:
		return o.Message
	default:
		return string(o.Kind)
	}
}
