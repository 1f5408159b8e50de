// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches the raw document the pipeline ranks records from.
// Remote URLs go through HTTP with throttling retries, local paths are read
// from disk, and a disk cache can sit in front of either.
package source

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/license-ranker/pkg/types"
)

// Source returns the bytes behind a locator.
type Source interface {
	Fetch(ctx context.Context, locator string) (types.Document, error)
}

// ErrFetch matches every *FetchError via errors.Is.
var ErrFetch = errors.New("fetch failed")

// FetchError reports a document that could not be obtained: a transport
// failure, a non-2xx status, or an unusable locator. It is fatal to a run.
type FetchError struct {
	Locator    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: HTTP %d", e.Locator, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.Locator, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// LocatorKind classifies a locator.
type LocatorKind int

const (
	KindUnknown LocatorKind = iota
	KindURL
	KindFile
)

func (k LocatorKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Classify determines the locator kind and returns its normalized form:
// the URL for http(s), a filesystem path for file:// URLs and bare paths.
func Classify(locator string) (LocatorKind, string) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return KindUnknown, ""
	}

	u, err := url.Parse(locator)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			if u.Host == "" {
				return KindUnknown, locator
			}
			return KindURL, locator
		case "file":
			return KindFile, u.Path
		}
	}
	if err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		// Some other scheme (ftp:, s3:); single letters are Windows drives.
		return KindUnknown, locator
	}
	return KindFile, locator
}

// Slug returns a filesystem-safe stem for caching the locator. URLs with a
// usable file name keep it, suffixed with a short hash so two hosts serving
// the same file name do not collide.
func Slug(locator string) string {
	h := sha256.Sum256([]byte(locator))
	short := fmt.Sprintf("%x", h[:4])

	kind, norm := Classify(locator)
	var base string
	switch kind {
	case KindURL:
		if u, err := url.Parse(norm); err == nil {
			base = strings.TrimSuffix(filepath.Base(u.Path), filepath.Ext(u.Path))
		}
	case KindFile:
		base = strings.TrimSuffix(filepath.Base(norm), filepath.Ext(norm))
	}
	if base == "" || base == "." || base == "/" {
		return "doc-" + short
	}
	return base + "-" + short
}

// ForLocator picks the source for the locator's kind. Remote documents are
// cached under cfg.CacheDir when it is set.
func ForLocator(locator string, cfg types.SourceConfig) (Source, error) {
	kind, _ := Classify(locator)
	switch kind {
	case KindURL:
		var src Source = &HTTP{
			Client:     &http.Client{Timeout: cfg.Timeout},
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
		}
		if cfg.CacheDir != "" {
			src = &Cached{Next: src, Dir: cfg.CacheDir}
		}
		return src, nil
	case KindFile:
		return File{}, nil
	default:
		return nil, &FetchError{Locator: locator, Err: errors.New("unrecognized locator (want http(s) URL, file:// URL, or path)")}
	}
}

// File reads documents from the local filesystem.
type File struct{}

// Fetch reads the file named by locator (a path or file:// URL).
func (File) Fetch(ctx context.Context, locator string) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: err}
	}
	kind, path := Classify(locator)
	if kind != KindFile {
		return types.Document{}, &FetchError{Locator: locator, Err: fmt.Errorf("not a file locator (%s)", kind)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: err}
	}
	return types.Document{
		Locator:     locator,
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
