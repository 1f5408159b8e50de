// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/license-ranker/internal/httputil"
	"github.com/pdiddy/license-ranker/pkg/types"
)

// DefaultMaxBytes bounds a downloaded document.
const DefaultMaxBytes int64 = 64 << 20

// HTTP downloads documents with GET. Throttled responses are retried by
// httputil.DoWithRetry; any other non-2xx status is a FetchError.
type HTTP struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	// MaxBytes caps the body size. Zero means DefaultMaxBytes.
	MaxBytes int64
}

// Fetch downloads the document at locator.
func (h *HTTP) Fetch(ctx context.Context, locator string) (types.Document, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	limit := h.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: fmt.Errorf("creating request: %w", err)}
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf, text/plain;q=0.9, */*;q=0.5")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, client, req, h.MaxRetries)
	if err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return types.Document{}, &FetchError{Locator: locator, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(data)) > limit {
		return types.Document{}, &FetchError{Locator: locator, Err: errors.New("document exceeds size limit")}
	}

	log.Debug().
		Str("url", locator).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("document downloaded")

	return types.Document{
		Locator:     locator,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
