// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pdiddy/license-ranker/internal/httputil"
)

// reviewResponse is the JSON body returned by the review service.
type reviewResponse struct {
	Name  string   `json:"name"`
	Score *float64 `json:"score"`
}

// HTTP queries a review service: GET BaseURL?name=<name> answering
// {"name": "...", "score": 4.7}. Throttled responses are retried; every
// other failure is returned so ScoreAll can skip the candidate.
type HTTP struct {
	Client     *http.Client
	BaseURL    string
	APIKey     string
	UserAgent  string
	MaxRetries int
}

// Score fetches the review score for name.
func (h *HTTP) Score(ctx context.Context, name string) (float64, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	u, err := url.Parse(h.BaseURL)
	if err != nil {
		return 0, fmt.Errorf("parsing review service URL: %w", err)
	}
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	if h.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, h.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("review service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("review service returned HTTP %d for %q", resp.StatusCode, name)
	}

	var rr reviewResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rr); err != nil {
		return 0, fmt.Errorf("parsing review response: %w", err)
	}
	if rr.Score == nil {
		return 0, fmt.Errorf("review response for %q has no score", name)
	}
	return *rr.Score, nil
}
