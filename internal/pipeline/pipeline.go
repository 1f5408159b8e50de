// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs fetch, normalize, extract, score, and rank as one
// operation. Fetch and decode failures abort the run; scoring failures only
// drop the affected candidates; a document without records is an empty
// result, not an error.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/license-ranker/internal/convert"
	"github.com/pdiddy/license-ranker/internal/extract"
	"github.com/pdiddy/license-ranker/internal/rank"
	"github.com/pdiddy/license-ranker/internal/score"
	"github.com/pdiddy/license-ranker/internal/source"
	"github.com/pdiddy/license-ranker/pkg/types"
)

// Pipeline wires the collaborators for a run. Source and Scorer are
// required; a nil Normalizer uses the auto decoder.
type Pipeline struct {
	Source     source.Source
	Normalizer *convert.Normalizer
	Scorer     score.Provider

	// Concurrency and CallTimeout tune scoring; zero values use the
	// score package defaults.
	Concurrency int
	CallTimeout time.Duration

	// Dedupe keeps only the first record for each repeated name.
	Dedupe bool

	// Log receives progress lines. Nil discards them.
	Log io.Writer
}

// Result is the outcome of a run.
type Result struct {
	Locator    string
	Marker     string
	TopN       int
	StartedAt  time.Time
	Lines      int
	Candidates int
	Scored     int
	Skipped    []score.Skip
	Ranked     types.RankedList
}

// Empty reports whether the document yielded no candidate records.
func (r Result) Empty() bool { return r.Candidates == 0 }

// Run fetches locator, extracts records carrying marker, scores them, and
// returns the topN best. Errors from the source match source.ErrFetch and
// errors from decoding match convert.ErrDecode; in both cases no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, locator, marker string, topN int) (Result, error) {
	w := p.Log
	if w == nil {
		w = io.Discard
	}
	if topN < 0 {
		return Result{}, fmt.Errorf("%w: top_n must be >= 0, got %d", rank.ErrInvalidArgument, topN)
	}
	ex, err := extract.New(marker)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", rank.ErrInvalidArgument, err)
	}

	res := Result{Locator: locator, Marker: marker, TopN: topN, StartedAt: time.Now().UTC()}

	fmt.Fprintf(w, "fetching: %s\n", locator)
	doc, err := p.Source.Fetch(ctx, locator)
	if err != nil {
		return Result{}, err
	}

	normalizer := p.Normalizer
	if normalizer == nil {
		normalizer = &convert.Normalizer{}
	}
	fmt.Fprintf(w, "extracting text (%d bytes)\n", len(doc.Data))
	lines, err := normalizer.Normalize(ctx, doc)
	if err != nil {
		return Result{}, err
	}
	res.Lines = len(lines)

	records := ex.Extract(lines)
	if p.Dedupe {
		if deduped := extract.Dedupe(records); len(deduped) != len(records) {
			log.Debug().Int("dropped", len(records)-len(deduped)).Msg("duplicate names removed")
			records = deduped
		}
	}
	res.Candidates = len(records)
	if res.Empty() {
		fmt.Fprintf(w, "no records found for %q\n", marker)
		res.Ranked = types.RankedList{}
		return res, nil
	}

	fmt.Fprintf(w, "found %d %s records, gathering review scores\n", len(records), marker)
	scored, skipped, err := score.ScoreAll(ctx, p.Scorer, records, score.Options{
		Concurrency: p.Concurrency,
		CallTimeout: p.CallTimeout,
	})
	if err != nil {
		return Result{}, err
	}
	res.Scored = len(scored)
	res.Skipped = skipped
	for _, s := range skipped {
		fmt.Fprintf(w, "skipped: %s (%v)\n", s.Record.Name, s.Err)
	}

	res.Ranked, err = rank.Rank(scored, topN)
	if err != nil {
		return Result{}, err
	}

	log.Debug().
		Str("locator", locator).
		Int("lines", res.Lines).
		Int("candidates", res.Candidates).
		Int("skipped", len(skipped)).
		Int("ranked", len(res.Ranked)).
		Msg("pipeline finished")
	return res, nil
}

// Run builds a Pipeline from its collaborators and runs it with the
// default decoder and scoring options.
func Run(ctx context.Context, src source.Source, locator, marker string, scorer score.Provider, topN int) (types.RankedList, error) {
	p := &Pipeline{Source: src, Scorer: scorer}
	res, err := p.Run(ctx, locator, marker, topN)
	if err != nil {
		return nil, err
	}
	return res.Ranked, nil
}
