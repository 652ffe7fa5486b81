// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Repository identifies a preprint source.
type Repository string

const (
	RepoArxiv    Repository = "arxiv"
	RepoMedrxiv  Repository = "medrxiv"
	RepoBiorxiv  Repository = "biorxiv"
	RepoChemrxiv Repository = "chemrxiv"
)

// ParseRepository validates a repository name.
func ParseRepository(s string) (Repository, error) {
	switch Repository(strings.ToLower(strings.TrimSpace(s))) {
	case RepoArxiv:
		return RepoArxiv, nil
	case RepoMedrxiv:
		return RepoMedrxiv, nil
	case RepoBiorxiv:
		return RepoBiorxiv, nil
	case RepoChemrxiv:
		return RepoChemrxiv, nil
	default:
		return "", fmt.Errorf("unknown repository %q", s)
	}
}

// SourceKey returns the composite identifier naming a paper across
// repositories, e.g. "arxiv:2506.08872".
func SourceKey(repo Repository, paperID string) string {
	return string(repo) + ":" + paperID
}

// SplitSourceKey splits a source key into repository and paper ID. A key
// without a repository prefix is treated as an arXiv ID.
func SplitSourceKey(key string) (Repository, string) {
	if repo, id, ok := strings.Cut(key, ":"); ok {
		return Repository(repo), id
	}
	return RepoArxiv, key
}

// SummaryType selects the structural template used for a summary.
type SummaryType string

const (
	SummaryShort    SummaryType = "short"
	SummaryOrdinary SummaryType = "ordinary"
	SummaryDetailed SummaryType = "detailed"
)

// ParseSummaryType validates a summary type, defaulting to ordinary for
// the empty string.
func ParseSummaryType(s string) (SummaryType, error) {
	switch SummaryType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return SummaryOrdinary, nil
	case SummaryShort:
		return SummaryShort, nil
	case SummaryOrdinary:
		return SummaryOrdinary, nil
	case SummaryDetailed:
		return SummaryDetailed, nil
	default:
		return "", fmt.Errorf("unknown summary type %q", s)
	}
}

// Metadata is the resolver's view of a paper at its source.
type Metadata struct {
	// PDFURL is the download URL for the full-text PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// AbsURL is the abstract landing page URL.
	AbsURL string `json:"abs_url" yaml:"abs_url"`

	// Title is the paper title; empty when the source did not expose it.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors is a ", "-joined display string in source order.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Paper is a persisted, fully extracted paper. A Paper row exists only
// after text extraction succeeded; ExtractedText is never empty and never
// mutated afterward.
type Paper struct {
	ID            int64     `json:"id" yaml:"id"`
	SourceKey     string    `json:"source_key" yaml:"source_key"`
	ExtractedText string    `json:"extracted_text" yaml:"-"`
	Title         string    `json:"title,omitempty" yaml:"title,omitempty"`
	Authors       string    `json:"authors,omitempty" yaml:"authors,omitempty"`
	AbstractURL   string    `json:"abstract_url,omitempty" yaml:"abstract_url,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// GenerationStatus records whether generated text came back from the API
// or is a stored failure message.
type GenerationStatus string

const (
	GenerationOK     GenerationStatus = "ok"
	GenerationFailed GenerationStatus = "failed"
)

// LocalizedSummary is a cached summary for one (paper, language, type)
// triple. At most one row exists per triple.
type LocalizedSummary struct {
	ID          int64            `json:"id" yaml:"id"`
	PaperID     int64            `json:"paper_id" yaml:"paper_id"`
	Language    string           `json:"language" yaml:"language"`
	SummaryType SummaryType      `json:"summary_type" yaml:"summary_type"`
	SummaryText string           `json:"summary_text" yaml:"summary_text"`
	Status      GenerationStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" yaml:"updated_at"`
}

// QuestionAnswer is a cached answer for one (paper, question, language)
// triple. Question holds the normalized (trimmed, lowercased) text.
type QuestionAnswer struct {
	ID             int64            `json:"id" yaml:"id"`
	PaperID        int64            `json:"paper_id" yaml:"paper_id"`
	Question       string           `json:"question" yaml:"question"`
	Answer         string           `json:"answer" yaml:"answer"`
	AnswerLanguage string           `json:"answer_language" yaml:"answer_language"`
	Status         GenerationStatus `json:"status" yaml:"status"`
	AnsweredAt     time.Time        `json:"answered_at" yaml:"answered_at"`
}

// SearchResult is one hit from the topic search.
type SearchResult struct {
	ArxivID  string `json:"arxiv_id" yaml:"arxiv_id"`
	Title    string `json:"title" yaml:"title"`
	Authors  string `json:"authors" yaml:"authors"`
	URL      string `json:"url" yaml:"url"`
	Abstract string `json:"abstract" yaml:"abstract"`
}

// ExportDocument carries the four text fields the export renderer needs.
type ExportDocument struct {
	Title       string      `json:"title" yaml:"title"`
	Authors     string      `json:"authors" yaml:"authors"`
	SourceURL   string      `json:"source_url" yaml:"source_url"`
	Summary     string      `json:"summary" yaml:"summary"`
	Language    string      `json:"language" yaml:"language"`
	SummaryType SummaryType `json:"summary_type" yaml:"summary_type"`
}
