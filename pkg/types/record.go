// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the license-ranker pipeline:
// the fetched document, the records extracted from it, and the ranked output.
package types

import "time"

// Document is a raw document as returned by a source. Data is opaque until a
// decoder turns it into text.
type Document struct {
	// Locator is the URL or path the document was fetched from.
	Locator string `json:"locator" yaml:"locator"`

	// ContentType is the media type reported by the source, if any.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Data holds the undecoded bytes.
	Data []byte `json:"-" yaml:"-"`

	// FetchedAt records when the bytes were obtained.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// CandidateRecord is an unscored, unverified name pulled from a line that
// carries the credential marker.
type CandidateRecord struct {
	// Name is the trimmed text before the first delimiter. Never empty.
	Name string `json:"name" yaml:"name"`

	// Index is the extraction order, starting at 0. Ranking ties are broken
	// by Index so results do not depend on scoring completion order.
	Index int `json:"index" yaml:"index"`

	// Line is the 0-based line number in the normalized text.
	Line int `json:"line" yaml:"line"`
}

// ScoredRecord pairs a candidate name with its quality score.
type ScoredRecord struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
	Index int     `json:"index" yaml:"index"`
}

// RankedList is the final output: descending by Score, ties in extraction
// order, bounded to the requested size.
type RankedList []ScoredRecord

// Names returns the record names in ranked order.
func (l RankedList) Names() []string {
	names := make([]string, len(l))
	for i, r := range l {
		names[i] = r.Name
	}
	return names
}

// Run is a completed pipeline execution as kept in the history store.
type Run struct {
	ID         int64      `json:"id" yaml:"id"`
	Locator    string     `json:"locator" yaml:"locator"`
	Marker     string     `json:"marker" yaml:"marker"`
	TopN       int        `json:"top_n" yaml:"top_n"`
	Candidates int        `json:"candidates" yaml:"candidates"`
	Skipped    int        `json:"skipped" yaml:"skipped"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	Records    RankedList `json:"records" yaml:"records"`
}
