// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/license-ranker/internal/convert"
	"github.com/pdiddy/license-ranker/internal/history"
	"github.com/pdiddy/license-ranker/internal/pipeline"
	"github.com/pdiddy/license-ranker/internal/rank"
	"github.com/pdiddy/license-ranker/internal/score"
	"github.com/pdiddy/license-ranker/internal/secrets"
	"github.com/pdiddy/license-ranker/internal/source"
	"github.com/pdiddy/license-ranker/pkg/types"
)

const (
	defaultLocator    = "https://www.riverside.courts.ca.gov/system/files/general/counselingresourcelist.pdf"
	defaultMarker     = "LMFT"
	defaultTimeout    = 60 * time.Second
	defaultUserAgent  = "license-ranker/0.1"
	defaultMaxRetries = 5
)

func init() {
	viper.SetDefault("source.timeout", defaultTimeout)
	viper.SetDefault("source.user_agent", defaultUserAgent)
	viper.SetDefault("source.max_retries", defaultMaxRetries)
	viper.SetDefault("decode.backend", string(types.DecoderAuto))
	viper.SetDefault("score.provider", string(types.ProviderRandom))
	viper.SetDefault("score.timeout", 15*time.Second)
	viper.SetDefault("score.user_agent", defaultUserAgent)
	viper.SetDefault("score.max_retries", defaultMaxRetries)
	viper.SetDefault("score.min", score.DefaultMin)
	viper.SetDefault("score.max", score.DefaultMax)
	viper.SetDefault("score.concurrency", score.DefaultConcurrency)
	viper.SetDefault("score.call_timeout", score.DefaultCallTimeout)
	viper.SetDefault("rank.marker", defaultMarker)
	viper.SetDefault("rank.top_n", rank.DefaultTopN)
	viper.SetDefault("rank.dedupe", true)
	viper.SetDefault("history.dir", history.DefaultDir)
}

// loadConfig collects settings from defaults, the config file, the
// environment, and bound flags, in increasing priority.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Score.APIKey = loadedSecrets.Get(secrets.ReviewAPIKey, cfg.Score.APIKey)
	return cfg, nil
}

// newScorer builds the score provider named by cfg.Provider.
func newScorer(cfg types.ScoreConfig) (score.Provider, error) {
	switch cfg.Provider {
	case "", types.ProviderRandom:
		r := score.NewSeededRandom(cfg.Seed)
		if cfg.Min != 0 || cfg.Max != 0 {
			r.Min, r.Max = cfg.Min, cfg.Max
		}
		if r.Min > r.Max {
			return nil, fmt.Errorf("%w: score.min %v exceeds score.max %v", rank.ErrInvalidArgument, r.Min, r.Max)
		}
		return r, nil
	case types.ProviderHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("%w: score.base_url is required for the http provider", rank.ErrInvalidArgument)
		}
		return &score.HTTP{
			Client:     &http.Client{Timeout: cfg.Timeout},
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown score provider %q (want random or http)", rank.ErrInvalidArgument, cfg.Provider)
	}
}

// newPipeline assembles a pipeline for locator from cfg. An unusable
// locator is reported as a fetch error.
func newPipeline(ctx context.Context, cfg types.Config, locator string) (*pipeline.Pipeline, error) {
	src, err := source.ForLocator(locator, cfg.Source)
	if err != nil {
		return nil, err
	}
	dec, err := convert.ForBackend(ctx, cfg.Decode.Backend)
	if err != nil {
		return nil, err
	}
	scorer, err := newScorer(cfg.Score)
	if err != nil {
		return nil, err
	}
	return &pipeline.Pipeline{
		Source:      src,
		Normalizer:  &convert.Normalizer{Decoder: dec},
		Scorer:      scorer,
		Concurrency: cfg.Score.Concurrency,
		CallTimeout: cfg.Score.CallTimeout,
		Dedupe:      cfg.Rank.Dedupe,
	}, nil
}
