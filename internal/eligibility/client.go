package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/omahs/claims-hatter/internal/model"
)

// Client implements Oracle against an eligibility module's HTTP/JSON API:
// GET {base}/v1/wearers/{wearer}/status?hat={hat} returning
// {"eligible": bool, "standing": bool}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Oracle = (*Client)(nil)

// NewClient creates an oracle client for the module at baseURL. Queries are
// bounded by a short timeout on top of the caller's context; a slow oracle
// degrades to "not eligible" at the predicate layer instead of stalling
// claim traffic.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) WearerStatus(ctx context.Context, wearer string, hat model.HatID) (model.WearerStatus, error) {
	q := url.Values{}
	q.Set("hat", hat.String())
	endpoint := c.baseURL + "/v1/wearers/" + url.PathEscape(wearer) + "/status?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.WearerStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.WearerStatus{}, fmt.Errorf("query oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return model.WearerStatus{}, fmt.Errorf("oracle returned HTTP %d", resp.StatusCode)
	}

	var status model.WearerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return model.WearerStatus{}, fmt.Errorf("decode oracle response: %w", err)
	}
	return status, nil
}
