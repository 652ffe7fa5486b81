// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ResolverConfig holds settings for source metadata resolution.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline"`
}

// FetcherConfig holds settings for PDF download.
type FetcherConfig struct {
	HTTPConfig `yaml:",inline"`

	// ScratchDir is the directory temp PDFs are downloaded into. Files
	// placed there are removed once extraction finishes.
	ScratchDir string `json:"scratch_dir" yaml:"scratch_dir"`
}

// GeneratorConfig holds settings for the text generation API.
type GeneratorConfig struct {
	// Model is the generation model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the generation API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds each generation call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// QuestionContextChars caps the extracted text sent with a question.
	// Summaries always receive the full text. Default 2000.
	QuestionContextChars int `json:"question_context_chars" yaml:"question_context_chars"`
}

// StoreConfig holds settings for the persistent paper store.
type StoreConfig struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PrewarmConfig names the (language, summary type) matrix generated
// eagerly after a paper is first created.
type PrewarmConfig struct {
	Languages    []string      `json:"languages" yaml:"languages"`
	SummaryTypes []SummaryType `json:"summary_types" yaml:"summary_types"`
}

// SearchConfig holds settings for the topic search.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults caps the total results returned (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// ScanLimit is how many upstream entries are fetched for re-ranking
	// (default 200).
	ScanLimit int `json:"scan_limit" yaml:"scan_limit"`

	// Category restricts the all-fields clause (default "cs.*").
	Category string `json:"category" yaml:"category"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Resolver  ResolverConfig  `json:"resolver" yaml:"resolver"`
	Fetcher   FetcherConfig   `json:"fetcher" yaml:"fetcher"`
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Prewarm   PrewarmConfig   `json:"prewarm" yaml:"prewarm"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
