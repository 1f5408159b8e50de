// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/license-ranker/pkg/types"
)

const (
	rawDir      = "raw"
	metadataDir = "metadata"
)

// cacheEntry is the YAML sidecar written next to each cached document.
type cacheEntry struct {
	Locator     string    `yaml:"locator"`
	ContentType string    `yaml:"content_type,omitempty"`
	FetchedAt   time.Time `yaml:"fetched_at"`
	Size        int       `yaml:"size"`
	SHA256      string    `yaml:"sha256"`
}

// Cached serves documents from Dir when present and otherwise fetches them
// through Next, storing the bytes under Dir/raw and a metadata record under
// Dir/metadata.
type Cached struct {
	Next Source
	Dir  string
}

// Paths returns the raw and metadata file paths used for locator.
func (c *Cached) Paths(locator string) (rawPath, metaPath string) {
	slug := Slug(locator)
	ext := ".pdf"
	if u, err := url.Parse(locator); err == nil {
		if e := filepath.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return filepath.Join(c.Dir, rawDir, slug+ext), filepath.Join(c.Dir, metadataDir, slug+".yaml")
}

// Fetch returns the cached copy of locator or downloads and stores it.
// A failure to write the cache is logged; the fetched document is still returned.
func (c *Cached) Fetch(ctx context.Context, locator string) (types.Document, error) {
	if err := ctx.Err(); err != nil {
		return types.Document{}, &FetchError{Locator: locator, Err: err}
	}
	rawPath, metaPath := c.Paths(locator)

	if data, err := os.ReadFile(rawPath); err == nil {
		doc := types.Document{Locator: locator, Data: data}
		if entry, err := readEntry(metaPath); err == nil {
			doc.ContentType = entry.ContentType
			doc.FetchedAt = entry.FetchedAt
		} else if info, statErr := os.Stat(rawPath); statErr == nil {
			doc.FetchedAt = info.ModTime().UTC()
		}
		log.Debug().Str("locator", locator).Str("path", rawPath).Msg("cache hit")
		return doc, nil
	}

	doc, err := c.Next.Fetch(ctx, locator)
	if err != nil {
		return types.Document{}, err
	}

	if err := c.store(doc, rawPath, metaPath); err != nil {
		log.Warn().Err(err).Str("locator", locator).Msg("could not cache document")
	}
	return doc, nil
}

func (c *Cached) store(doc types.Document, rawPath, metaPath string) error {
	for _, dir := range []string{filepath.Dir(rawPath), filepath.Dir(metaPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := writeAtomic(rawPath, doc.Data); err != nil {
		return err
	}

	sum := sha256.Sum256(doc.Data)
	data, err := yaml.Marshal(cacheEntry{
		Locator:     doc.Locator,
		ContentType: doc.ContentType,
		FetchedAt:   doc.FetchedAt,
		Size:        len(doc.Data),
		SHA256:      fmt.Sprintf("%x", sum),
	})
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return writeAtomic(metaPath, data)
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func readEntry(path string) (*cacheEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var e cacheEntry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
