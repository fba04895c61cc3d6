package hats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/omahs/claims-hatter/internal/model"
)

// Client implements Registry against a live registry service's HTTP/JSON API.
// The service authenticates the caller from the bearer token, so mint
// authority is decided registry-side.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ Registry = (*Client)(nil)

// NewClient creates a registry client targeting the given base URL (e.g.
// "http://localhost:8090"). When token is non-empty, an Authorization header
// is set on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *Client) IsWearerOf(ctx context.Context, account string, hat model.HatID) (bool, error) {
	var resp struct {
		Wearer bool `json:"wearer"`
	}
	path := "/v1/hats/" + url.PathEscape(hat.String()) + "/wearers/" + url.PathEscape(account)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, err
	}
	return resp.Wearer, nil
}

func (c *Client) AdminOf(ctx context.Context, hat model.HatID) (model.HatID, error) {
	var resp struct {
		Admin model.HatID `json:"admin"`
	}
	path := "/v1/hats/" + url.PathEscape(hat.String()) + "/admin"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Admin, nil
}

func (c *Client) HatExists(ctx context.Context, hat model.HatID) (bool, error) {
	path := "/v1/hats/" + url.PathEscape(hat.String())
	err := c.doJSON(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) Mint(ctx context.Context, wearer string, hat model.HatID) error {
	path := "/v1/hats/" + url.PathEscape(hat.String()) + "/mint"
	body := map[string]string{"wearer": wearer}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// apiError carries the HTTP status and the service's error body.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("registry: %s (HTTP %d)", e.message, e.status)
	}
	return fmt.Sprintf("registry: HTTP %d", e.status)
}

// Unwrap maps well-known registry error codes onto the package sentinels so
// errors.Is works across the wire.
func (e *apiError) Unwrap() error {
	switch e.code {
	case "hat_not_found":
		return ErrHatNotFound
	case "already_wearer":
		return ErrAlreadyWearer
	case "no_mint_authority":
		return ErrNoMintAuthority
	case "not_eligible":
		return ErrNotEligible
	}
	if e.status == http.StatusNotFound {
		return ErrHatNotFound
	}
	return nil
}

// doJSON performs an HTTP request with an optional JSON body, decoding the
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, &errBody)
		return &apiError{status: resp.StatusCode, code: errBody.Code, message: errBody.Error}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
