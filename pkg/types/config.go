package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "license-ranker/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SourceConfig holds settings for fetching the source document.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// CacheDir, when set, keeps downloaded documents under raw/ and their
	// metadata under metadata/ so later runs skip the download.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`
}

// DecoderBackend identifies the document-to-text tool.
type DecoderBackend string

const (
	DecoderAuto      DecoderBackend = "auto"
	DecoderNative    DecoderBackend = "native"
	DecoderPdftotext DecoderBackend = "pdftotext"
	DecoderText      DecoderBackend = "text"
)

// DecodeConfig holds settings for turning document bytes into text.
type DecodeConfig struct {
	// Backend selects the decoder: auto, native, pdftotext, or text.
	Backend DecoderBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// ScoreProviderKind selects where review scores come from.
type ScoreProviderKind string

const (
	ProviderRandom ScoreProviderKind = "random"
	ProviderHTTP   ScoreProviderKind = "http"
)

// ScoreConfig holds settings for the score provider.
type ScoreConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider is random (simulated) or http.
	Provider ScoreProviderKind `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Seed seeds the simulated provider. Zero means seed from the clock.
	Seed uint64 `json:"seed" yaml:"seed" mapstructure:"seed"`

	// Min and Max bound the simulated scores (default 3.5 and 5.0).
	Min float64 `json:"min" yaml:"min" mapstructure:"min"`
	Max float64 `json:"max" yaml:"max" mapstructure:"max"`

	// BaseURL is the review service endpoint for the http provider.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against the review service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Concurrency bounds in-flight score calls (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// CallTimeout bounds a single score call; a timeout skips the candidate.
	CallTimeout time.Duration `json:"call_timeout" yaml:"call_timeout" mapstructure:"call_timeout"`
}

// RankConfig holds extraction and ranking settings.
type RankConfig struct {
	// Marker is the credential substring that flags a record line (e.g. "LMFT").
	Marker string `json:"marker" yaml:"marker" mapstructure:"marker"`

	// TopN bounds the ranked list (default 5).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	// Dedupe drops repeated names within the document before scoring.
	Dedupe bool `json:"dedupe" yaml:"dedupe" mapstructure:"dedupe"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// Dir holds the SQLite database file.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups every component's settings. It mirrors the layout of
// license-ranker.yaml.
type Config struct {
	Source  SourceConfig  `json:"source" yaml:"source" mapstructure:"source"`
	Decode  DecodeConfig  `json:"decode" yaml:"decode" mapstructure:"decode"`
	Score   ScoreConfig   `json:"score" yaml:"score" mapstructure:"score"`
	Rank    RankConfig    `json:"rank" yaml:"rank" mapstructure:"rank"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}
