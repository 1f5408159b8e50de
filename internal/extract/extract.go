// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract finds candidate license records in normalized text.
//
// A line is a record when it contains the credential marker (exact,
// case-sensitive substring). The name is the text before the first
// delimiter, trimmed; a line without a delimiter yields the whole trimmed
// line. The heuristic is single pass and line local: it assumes the person's
// name precedes a comma on the marker line, so "Doe, Jane, LMFT" yields "Doe".
package extract

import (
	"errors"
	"strings"

	"github.com/pdiddy/license-ranker/pkg/types"
)

// DefaultDelimiter separates the name from the rest of a record line.
const DefaultDelimiter = ","

// ErrEmptyMarker is returned by New for an empty marker, which would match
// every line.
var ErrEmptyMarker = errors.New("credential marker must not be empty")

// Extractor holds the marker and delimiter for one extraction pass. It keeps
// no state between calls.
type Extractor struct {
	Marker    string
	Delimiter string
}

// New returns an Extractor for marker using DefaultDelimiter.
func New(marker string) (*Extractor, error) {
	if marker == "" {
		return nil, ErrEmptyMarker
	}
	return &Extractor{Marker: marker, Delimiter: DefaultDelimiter}, nil
}

// Extract returns one CandidateRecord per marker line, in line order.
// Record Index counts emitted records; Line is the source line number.
func (e *Extractor) Extract(lines []string) []types.CandidateRecord {
	records := []types.CandidateRecord{}
	if e.Marker == "" {
		return records
	}
	for i, line := range lines {
		name, ok := e.Name(line)
		if !ok {
			continue
		}
		records = append(records, types.CandidateRecord{
			Name:  name,
			Index: len(records),
			Line:  i,
		})
	}
	return records
}

// Name derives the candidate name from line. ok is false when the line
// lacks the marker or the derived name is empty.
func (e *Extractor) Name(line string) (name string, ok bool) {
	if !strings.Contains(line, e.Marker) {
		return "", false
	}
	delim := e.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	before, _, _ := strings.Cut(line, delim)
	name = strings.TrimSpace(before)
	return name, name != ""
}

// Extract runs a default Extractor for marker over lines. An empty marker
// yields no records.
func Extract(lines []string, marker string) []types.CandidateRecord {
	return (&Extractor{Marker: marker, Delimiter: DefaultDelimiter}).Extract(lines)
}

// Dedupe drops records whose name already appeared earlier, keeping the
// first occurrence and its Index.
func Dedupe(records []types.CandidateRecord) []types.CandidateRecord {
	seen := make(map[string]bool, len(records))
	out := make([]types.CandidateRecord, 0, len(records))
	for _, r := range records {
		if seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}
