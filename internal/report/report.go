// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders ranked lists and stored runs for the terminal or
// as YAML/JSON documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/license-ranker/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates s. An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatYAML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, yaml, or json)", s)
}

// Encode writes v to w as YAML or JSON.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}
	return fmt.Errorf("format %q is not a structured encoding", format)
}

// FormatScore prints a score with the fewest digits that represent it but
// at least one decimal place: 4.7 is "4.7", 4.25 is "4.25", 4 is "4.0".
func FormatScore(score float64) string {
	out := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.ContainsAny(out, ".NI") {
		out += ".0"
	}
	return out
}

// Ranked writes one "name - Review Score: score" line per record.
func Ranked(w io.Writer, list types.RankedList) error {
	for _, r := range list {
		if _, err := fmt.Fprintf(w, "%s - Review Score: %s\n", r.Name, FormatScore(r.Score)); err != nil {
			return err
		}
	}
	return nil
}

// Empty writes the notice for a document without marked records.
func Empty(w io.Writer, marker string) error {
	_, err := fmt.Fprintf(w, "No %s names found in the document.\n", marker)
	return err
}

// AllSkipped writes the notice for a run whose candidates all lacked a score.
func AllSkipped(w io.Writer, marker string, candidates int) error {
	_, err := fmt.Fprintf(w, "Found %d %s names, but no review score was available for any of them.\n", candidates, marker)
	return err
}

// RankedAs writes list in format. Structured formats emit the list as an
// array, empty rather than null when there are no records.
func RankedAs(w io.Writer, format Format, list types.RankedList) error {
	if format == FormatText {
		return Ranked(w, list)
	}
	if list == nil {
		list = types.RankedList{}
	}
	return Encode(w, format, list)
}

// Run writes a stored run: a short header followed by its ranked lines.
func Run(w io.Writer, format Format, run types.Run) error {
	if format != FormatText {
		if run.Records == nil {
			run.Records = types.RankedList{}
		}
		return Encode(w, format, run)
	}
	fmt.Fprintf(w, "run %d  %s\n", run.ID, run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "source:     %s\n", run.Locator)
	fmt.Fprintf(w, "marker:     %s (top %d)\n", run.Marker, run.TopN)
	fmt.Fprintf(w, "candidates: %d, skipped: %d\n\n", run.Candidates, run.Skipped)
	switch {
	case run.Candidates == 0:
		return Empty(w, run.Marker)
	case len(run.Records) == 0 && run.Skipped >= run.Candidates:
		return AllSkipped(w, run.Marker, run.Candidates)
	}
	return Ranked(w, run.Records)
}

// Runs writes a table of stored runs without their records.
func Runs(w io.Writer, format Format, runs []types.Run) error {
	if format != FormatText {
		if runs == nil {
			runs = []types.Run{}
		}
		return Encode(w, format, runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no stored runs")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMARKER\tTOP\tCANDIDATES\tSOURCE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Marker, r.TopN, r.Candidates, r.Locator)
	}
	return tw.Flush()
}
