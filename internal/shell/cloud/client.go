// Package cloud provides the Pipeship Cloud client and the deployment
// lifecycle orchestrator built on top of it.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/artpar/pipeship/internal/core/deployment"
	"github.com/artpar/pipeship/internal/core/domain"
)

// =============================================================================
// Client Interface
// =============================================================================

// Client is the remote backend capability used by the orchestrator and the
// CLI commands. It is assumed to be already authenticated; credential flow
// lives outside this core.
type Client interface {
	// CreateDeployment submits a create request and returns the
	// remote-assigned handle.
	CreateDeployment(ctx context.Context, req deployment.CreateRequest) (*domain.Handle, error)

	// GetDeployment fetches the handle of an existing deployment.
	GetDeployment(ctx context.Context, name, cluster string) (*domain.Handle, error)

	// GetDeploymentStatus fetches the current remote status of a deployment.
	GetDeploymentStatus(ctx context.Context, name, cluster string) (domain.DeploymentStatus, error)

	// ListDeployments returns the handles matching a filter.
	ListDeployments(ctx context.Context, filter deployment.ListFilter) ([]domain.Handle, error)

	// DeleteDeployment deletes a deployment by name.
	DeleteDeployment(ctx context.Context, name, cluster string) error
}

// =============================================================================
// HTTP Client Implementation
// =============================================================================

// ClientConfig holds configuration for the HTTP cloud client.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DefaultClientConfig returns default cloud client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// HTTPClient implements Client against the Pipeship Cloud HTTP API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates a new cloud client.
func NewHTTPClient(cfg ClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// handlePayload is the wire form of a deployment handle.
type handlePayload struct {
	Name         string `json:"name"`
	Cluster      string `json:"cluster"`
	DashboardURL string `json:"dashboard_url,omitempty"`
	Status       string `json:"status,omitempty"`
}

func (p handlePayload) handle() domain.Handle {
	return domain.Handle{
		Name:         p.Name,
		Cluster:      p.Cluster,
		DashboardURL: p.DashboardURL,
	}
}

// errorPayload is the wire form of a backend error response.
type errorPayload struct {
	Error string `json:"error"`
}

// listPayload is the wire form of a deployment listing.
type listPayload struct {
	Deployments []handlePayload `json:"deployments"`
}

// CreateDeployment submits a create request to the backend.
func (c *HTTPClient) CreateDeployment(ctx context.Context, req deployment.CreateRequest) (*domain.Handle, error) {
	var payload handlePayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/deployments", nil, req, &payload); err != nil {
		return nil, err
	}
	h := payload.handle()
	return &h, nil
}

// GetDeployment fetches a deployment by name.
func (c *HTTPClient) GetDeployment(ctx context.Context, name, cluster string) (*domain.Handle, error) {
	query := url.Values{}
	if cluster != "" {
		query.Set("cluster", cluster)
	}

	var payload handlePayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/deployments/"+url.PathEscape(name), query, nil, &payload); err != nil {
		return nil, err
	}
	h := payload.handle()
	return &h, nil
}

// GetDeploymentStatus fetches the current status of a deployment.
func (c *HTTPClient) GetDeploymentStatus(ctx context.Context, name, cluster string) (domain.DeploymentStatus, error) {
	query := url.Values{}
	if cluster != "" {
		query.Set("cluster", cluster)
	}

	var payload handlePayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/deployments/"+url.PathEscape(name)+"/status", query, nil, &payload); err != nil {
		return domain.StatusUnknown, err
	}
	return domain.DeploymentStatus(payload.Status), nil
}

// ListDeployments returns the deployments matching a filter.
func (c *HTTPClient) ListDeployments(ctx context.Context, filter deployment.ListFilter) ([]domain.Handle, error) {
	query := url.Values{}
	if filter.Cluster != "" {
		query.Set("cluster", filter.Cluster)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Dev {
		query.Set("dev", strconv.FormatBool(filter.Dev))
	}
	if q := filter.QueryString(); q != "" {
		query.Set("q", q)
	}

	var payload listPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/deployments", query, nil, &payload); err != nil {
		return nil, err
	}

	handles := make([]domain.Handle, 0, len(payload.Deployments))
	for _, d := range payload.Deployments {
		handles = append(handles, d.handle())
	}
	return handles, nil
}

// DeleteDeployment deletes a deployment by name.
func (c *HTTPClient) DeleteDeployment(ctx context.Context, name, cluster string) error {
	query := url.Values{}
	if cluster != "" {
		query.Set("cluster", cluster)
	}
	return c.do(ctx, http.MethodDelete, "/api/v1/deployments/"+url.PathEscape(name), query, nil, nil)
}

// do sends one request and decodes the response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeAPIError turns an error response into an *APIError, using the
// structured error field when present and the raw body otherwise.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return NewAPIError(resp.StatusCode, payload.Error)
	}
	return NewAPIError(resp.StatusCode, string(bytes.TrimSpace(raw)))
}
