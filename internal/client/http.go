package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/omahs/claims-hatter/internal/model"
	"github.com/omahs/claims-hatter/internal/presence"
)

// HTTPClient implements HatterClient using the hatter HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Compile-time check that HTTPClient implements HatterClient.
var _ HatterClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Gates ---

func (c *HTTPClient) CreateGate(ctx context.Context, req *CreateGateRequest) (*model.Gate, error) {
	var gate model.Gate
	if err := c.doJSON(ctx, http.MethodPost, "/v1/gates", req, &gate); err != nil {
		return nil, err
	}
	return &gate, nil
}

func (c *HTTPClient) GetGate(ctx context.Context, id string) (*model.Gate, error) {
	var gate model.Gate
	if err := c.doJSON(ctx, http.MethodGet, "/v1/gates/"+url.PathEscape(id), nil, &gate); err != nil {
		return nil, err
	}
	return &gate, nil
}

func (c *HTTPClient) ListGates(ctx context.Context, req *ListGatesRequest) (*ListGatesResponse, error) {
	q := url.Values{}
	if req.Hat != "" {
		q.Set("hat", req.Hat)
	}
	if req.AdminOf != "" {
		q.Set("admin_of", req.AdminOf)
	}
	if req.Enabled != nil {
		q.Set("enabled", fmt.Sprintf("%t", *req.Enabled))
	}
	if req.CreatedBy != "" {
		q.Set("created_by", req.CreatedBy)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/gates"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListGatesResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GateStatus(ctx context.Context, id string) (*model.GateStatus, error) {
	var status model.GateStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/gates/"+url.PathEscape(id)+"/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) GateEvents(ctx context.Context, id string) ([]*model.AuditEvent, error) {
	var resp struct {
		Events []*model.AuditEvent `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/gates/"+url.PathEscape(id)+"/events", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Claims and toggles ---

func (c *HTTPClient) Claim(ctx context.Context, gateID, caller string) error {
	body := map[string]string{"caller": caller}
	return c.doJSON(ctx, http.MethodPost, "/v1/gates/"+url.PathEscape(gateID)+"/claim", body, nil)
}

func (c *HTTPClient) ClaimFor(ctx context.Context, gateID, caller, wearer string) error {
	body := map[string]string{"caller": caller, "wearer": wearer}
	return c.doJSON(ctx, http.MethodPost, "/v1/gates/"+url.PathEscape(gateID)+"/claim-for", body, nil)
}

func (c *HTTPClient) SetClaimFor(ctx context.Context, gateID, caller string, enabled bool) error {
	action := "/disable"
	if enabled {
		action = "/enable"
	}
	body := map[string]string{"caller": caller}
	return c.doJSON(ctx, http.MethodPost, "/v1/gates/"+url.PathEscape(gateID)+action, body, nil)
}

// --- Eligibility ---

func (c *HTTPClient) WearerStatus(ctx context.Context, gateID, wearer string) (*WearerStatusResponse, error) {
	path := "/v1/gates/" + url.PathEscape(gateID) + "/wearers/" + url.PathEscape(wearer) + "/status"
	var resp WearerStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Activity roster ---

func (c *HTTPClient) Activity(ctx context.Context, staleThresholdSecs int) ([]presence.Entry, error) {
	path := "/v1/activity"
	if staleThresholdSecs > 0 {
		path += fmt.Sprintf("?stale_threshold_secs=%d", staleThresholdSecs)
	}
	var resp struct {
		Actors []presence.Entry `json:"actors"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actors, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Code: errResp.Code, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
