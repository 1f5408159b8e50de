// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/license-ranker/pkg/types"
)

func names(records []types.CandidateRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestExtract_ResourceListScenario(t *testing.T) {
	lines := []string{"Jane Doe, LMFT, Riverside", "No marker here", "Bob Smith,LMFT"}

	got := Extract(lines, "LMFT")

	assert.Equal(t, []types.CandidateRecord{
		{Name: "Jane Doe", Index: 0, Line: 0},
		{Name: "Bob Smith", Index: 1, Line: 2},
	}, got)
}

func TestExtractor_Name(t *testing.T) {
	e, err := New("LMFT")
	require.NoError(t, err)

	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"name before comma", "Jane Doe, LMFT, Riverside", "Jane Doe", true},
		{"no space after comma", "Bob Smith,LMFT", "Bob Smith", true},
		{"surrounding whitespace trimmed", "   Ann Lee   ,  LMFT", "Ann Lee", true},
		{"no delimiter yields whole line", "  Carol King LMFT  ", "Carol King LMFT", true},
		{"marker only", "LMFT", "LMFT", true},
		{"empty before comma", "   , LMFT, Riverside", "", false},
		{"comma first", ",LMFT", "", false},
		{"no marker", "Jane Doe, LCSW", "", false},
		{"case sensitive", "Jane Doe, lmft", "", false},
		{"marker inside a word still matches", "Dana Fox, LMFTA", "Dana Fox", true},
		{"surname first splits inside the name", "Doe, Jane, LMFT", "Doe", true},
		{"repeated marker, first comma wins", "Eve Park, LMFT, LMFT #2", "Eve Park", true},
		{"empty line", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Name(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_NonMarkerLinesNeverProduceRecords(t *testing.T) {
	lines := []string{
		"Counseling Resource List",
		"Jane Doe, LCSW, Riverside",
		"",
		"Phone: (951) 555-0100",
		"lmft lowercase, not a match",
	}
	assert.Empty(t, Extract(lines, "LMFT"))
}

func TestExtract_SplitLaw(t *testing.T) {
	lines := []string{
		"A, LMFT",
		"  B  ,x, LMFT",
		"C LMFT no comma",
		"  D LMFT  ",
		"x",
		"E,LMFT,F,G",
	}
	for _, r := range Extract(lines, "LMFT") {
		line := lines[r.Line]
		require.Contains(t, line, "LMFT")
		if before, _, found := strings.Cut(line, ","); found {
			assert.Equal(t, strings.TrimSpace(before), r.Name)
		} else {
			assert.Equal(t, strings.TrimSpace(line), r.Name)
		}
	}
}

func TestExtract_OneRecordPerLine(t *testing.T) {
	got := Extract([]string{"Ann, LMFT, LMFT, LMFT"}, "LMFT")
	assert.Equal(t, []string{"Ann"}, names(got))
}

func TestExtract_Idempotent(t *testing.T) {
	lines := []string{"Jane Doe, LMFT", "x", "Bob Smith,LMFT", "Jane Doe, LMFT"}
	e, err := New("LMFT")
	require.NoError(t, err)

	first := e.Extract(lines)
	second := e.Extract(lines)
	assert.Equal(t, first, second)
	assert.Equal(t, []int{0, 1, 2}, []int{first[0].Index, first[1].Index, first[2].Index})
}

func TestExtract_EmptyInputs(t *testing.T) {
	assert.Empty(t, Extract(nil, "LMFT"))
	assert.Empty(t, Extract([]string{"anything"}, ""), "empty marker matches nothing")

	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyMarker)
}

func TestExtractor_CustomDelimiter(t *testing.T) {
	e := &Extractor{Marker: "LMFT", Delimiter: " - "}
	got := e.Extract([]string{"Jane Doe - LMFT, Riverside"})
	assert.Equal(t, []string{"Jane Doe"}, names(got))
}

func TestDedupe(t *testing.T) {
	records := Extract([]string{
		"Jane Doe, LMFT, Riverside",
		"Bob Smith, LMFT",
		"Jane Doe, LMFT, Corona",
	}, "LMFT")

	got := Dedupe(records)
	assert.Equal(t, []string{"Jane Doe", "Bob Smith"}, names(got))
	assert.Equal(t, []int{0, 1}, []int{got[0].Index, got[1].Index})
	assert.Len(t, records, 3, "input is not modified")
}
