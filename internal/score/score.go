// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score attaches a review score to each candidate record.
//
// A Provider is any source of a numeric quality signal for a name. The
// simulated Random provider and the networked HTTP provider share one
// interface, so ranking code does not know which one it is talking to.
// ScoreAll fans calls out with bounded concurrency; a failed call skips its
// candidate instead of failing the run.
package score

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/license-ranker/pkg/types"
)

// Provider returns a quality score for a candidate name. Implementations
// may be slow, non-deterministic, and fallible.
type Provider interface {
	Score(ctx context.Context, name string) (float64, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, name string) (float64, error)

// Score calls f.
func (f ProviderFunc) Score(ctx context.Context, name string) (float64, error) {
	return f(ctx, name)
}

const (
	// DefaultConcurrency bounds in-flight calls when Options.Concurrency is zero.
	DefaultConcurrency = 4
	// DefaultCallTimeout bounds one call when Options.CallTimeout is zero.
	DefaultCallTimeout = 10 * time.Second
)

// ErrInvalidScore is returned for NaN or infinite scores.
var ErrInvalidScore = errors.New("score is not a finite number")

// Options tunes ScoreAll.
type Options struct {
	// Concurrency bounds in-flight provider calls. Zero means DefaultConcurrency.
	Concurrency int
	// CallTimeout bounds each provider call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration
}

// Skip records a candidate dropped because its score could not be obtained.
type Skip struct {
	Record types.CandidateRecord
	Err    error
}

// ScoreAll scores every record and returns the successes in extraction
// order together with the skipped candidates. A failing or timed-out call
// only skips that candidate; ScoreAll returns an error only when ctx itself
// is cancelled.
func ScoreAll(ctx context.Context, p Provider, records []types.CandidateRecord, opts Options) ([]types.ScoredRecord, []Skip, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	// One slot per record; each goroutine writes only its own index.
	scores := make([]float64, len(records))
	errs := make([]error, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rec := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			s, err := p.Score(callCtx, rec.Name)
			if err == nil && (math.IsNaN(s) || math.IsInf(s, 0)) {
				err = ErrInvalidScore
			}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			scores[i], errs[i] = s, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("scoring candidates: %w", err)
	}

	scored := make([]types.ScoredRecord, 0, len(records))
	var skipped []Skip
	for i, rec := range records {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("name", rec.Name).Msg("score unavailable, skipping candidate")
			skipped = append(skipped, Skip{Record: rec, Err: errs[i]})
			continue
		}
		scored = append(scored, types.ScoredRecord{Name: rec.Name, Score: scores[i], Index: rec.Index})
	}
	return scored, skipped, nil
}
