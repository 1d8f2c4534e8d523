package deployment

import (
	"errors"
	"strings"

	"github.com/artpar/pipeship/internal/core/serviceconfig"
)

// =============================================================================
// Request Errors
// =============================================================================

var (
	// ErrMissingPipeline is returned when a create request names no pipeline.
	ErrMissingPipeline = errors.New("pipeline reference is required")
)

// =============================================================================
// Create Request
// =============================================================================

// EnvServiceConfig is the environment variable carrying the serialized
// per-service configuration into the deployed pipeline. It is the sole
// mechanism by which per-service overrides reach the running system.
const EnvServiceConfig = "DEPLOYMENT_SERVICE_CONFIG"

// EnvVar is one environment variable entry on a deployment.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CreateRequest is the immutable value submitted to the backend to create a
// deployment. Built once per invocation, never mutated.
type CreateRequest struct {
	// Pipeline is the reference to the pipeline artifact to deploy.
	Pipeline string `json:"pipeline"`

	// Name is the requested deployment name; empty lets the backend assign one.
	Name string `json:"name,omitempty"`

	// Envs are the environment variables set on the deployment.
	Envs []EnvVar `json:"envs,omitempty"`

	// Dev marks the deployment as a development deployment.
	Dev bool `json:"dev,omitempty"`
}

// BuildCreateRequest builds a CreateRequest from the resolved configuration.
// An empty resolved config produces no environment entry at all.
func BuildCreateRequest(pipeline, name string, cfg *serviceconfig.ResolvedConfig, dev bool) CreateRequest {
	req := CreateRequest{
		Pipeline: pipeline,
		Name:     name,
		Dev:      dev,
	}
	if cfg != nil && !cfg.Empty() {
		req.Envs = append(req.Envs, EnvVar{
			Name:  EnvServiceConfig,
			Value: cfg.Serialize(),
		})
	}
	return req
}

// Verify checks the request before any remote call is made.
func (r CreateRequest) Verify() error {
	if strings.TrimSpace(r.Pipeline) == "" {
		return ErrMissingPipeline
	}
	return nil
}

// =============================================================================
// List Filter
// =============================================================================

// Label is one key/value label selector for listing deployments.
type Label struct {
	Key   string
	Value string
}

// ListFilter narrows a deployment listing.
type ListFilter struct {
	Cluster string
	Search  string
	Dev     bool
	Query   string
	Labels  []Label
}

// QueryString folds the label selectors into the free-form query, rendering
// each as a "label:key=value" term appended after any explicit query text.
func (f ListFilter) QueryString() string {
	if len(f.Labels) == 0 {
		return f.Query
	}

	terms := make([]string, 0, len(f.Labels)+1)
	if f.Query != "" {
		terms = append(terms, f.Query)
	}
	for _, l := range f.Labels {
		terms = append(terms, "label:"+l.Key+"="+l.Value)
	}
	return strings.Join(terms, " ")
}
