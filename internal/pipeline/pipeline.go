// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes resolution, download, extraction, storage
// and generation into the fetch-extract-summarize-cache flow. Both the
// CLI and the HTTP server drive this one implementation; the flow per
// request is strictly linear with a short-circuit at every cache check.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/preprintlab/preprintd/internal/fetch"
	"github.com/preprintlab/preprintd/internal/generate"
	"github.com/preprintlab/preprintd/internal/pdftext"
	"github.com/preprintlab/preprintd/internal/resolve"
	"github.com/preprintlab/preprintd/internal/store"
	"github.com/preprintlab/preprintd/pkg/types"
)

// ErrUnknownPaper reports a paper reference that matches no stored row.
var ErrUnknownPaper = errors.New("unknown paper reference")

// summaryPlaceholder is served by export when no summary is cached for
// the requested (language, type).
const summaryPlaceholder = "Summary not available in this language."

// extractPDF parses a downloaded PDF. Package-level var so tests can
// substitute a stub instead of crafting real PDF fixtures.
var extractPDF = pdftext.Extract

// Pipeline owns the end-to-end flow for one process.
type Pipeline struct {
	store   *store.Store
	client  *http.Client
	backend generate.Backend
	cfg     types.PipelineConfig
	out     io.Writer

	prewarmWG sync.WaitGroup
}

// New assembles a pipeline. The writer receives progress lines; pass
// io.Discard to silence them.
func New(s *store.Store, client *http.Client, backend generate.Backend, cfg types.PipelineConfig, out io.Writer) *Pipeline {
	if cfg.Prewarm.Languages == nil {
		cfg.Prewarm.Languages = []string{"en", "ru"}
	}
	if cfg.Prewarm.SummaryTypes == nil {
		// Detailed summaries are deliberately not pre-warmed; they are
		// generated on demand only.
		cfg.Prewarm.SummaryTypes = []types.SummaryType{types.SummaryOrdinary, types.SummaryShort}
	}
	return &Pipeline{
		store:   s,
		client:  client,
		backend: backend,
		cfg:     cfg,
		out:     out,
	}
}

// SubmitResult is the outcome of a submit operation.
type SubmitResult struct {
	Paper  *types.Paper
	Cached bool
}

// Submit resolves, downloads, extracts and persists a paper, then kicks
// off background pre-warming of the default summary matrix. A paper
// already in the store short-circuits before any download. The returned
// source key is the stable reference for all follow-up operations.
//
// Callers must not assume pre-warmed summaries exist when Submit
// returns; generation continues in the background.
func (p *Pipeline) Submit(ctx context.Context, repo types.Repository, paperID string, summaryType types.SummaryType, language string) (*SubmitResult, error) {
	meta, err := resolve.Resolve(ctx, p.client, repo, paperID, p.cfg.Resolver)
	if err != nil {
		return nil, err
	}

	sourceKey := types.SourceKey(repo, paperID)
	if existing, err := p.store.FindPaper(ctx, sourceKey); err != nil {
		return nil, err
	} else if existing != nil {
		fmt.Fprintf(p.out, "cached: %s\n", sourceKey)
		return &SubmitResult{Paper: existing, Cached: true}, nil
	}

	fmt.Fprintf(p.out, "downloading: %s\n", sourceKey)
	pdfPath, err := fetch.Download(ctx, p.client, meta.PDFURL, p.cfg.Fetcher)
	if err != nil {
		return nil, err
	}
	// The temp PDF is removed on every exit path from here on.
	defer func() {
		if cleanupErr := fetch.Cleanup(pdfPath); cleanupErr != nil {
			fmt.Fprintf(p.out, "warning: %v\n", cleanupErr)
		}
	}()

	extracted, err := extractPDF(pdfPath)
	if err != nil {
		return nil, err
	}

	// Scraped metadata wins; embedded PDF metadata is the fallback.
	title := meta.Title
	if title == "" {
		title = extracted.Title
	}
	authors := meta.Authors
	if authors == "" {
		authors = extracted.Authors
	}

	paper, err := p.store.CreatePaper(ctx, sourceKey, extracted.Text, title, authors, meta.AbsURL)
	if err != nil {
		// A concurrent submit won the insert race; serve its row.
		if errors.Is(err, store.ErrDuplicate) {
			winner, readErr := p.store.FindPaper(ctx, sourceKey)
			if readErr != nil {
				return nil, readErr
			}
			if winner != nil {
				return &SubmitResult{Paper: winner, Cached: true}, nil
			}
		}
		return nil, err
	}
	fmt.Fprintf(p.out, "created: %s (%d chars)\n", sourceKey, len(extracted.Text))

	p.prewarmAsync(paper, language, summaryType)

	return &SubmitResult{Paper: paper, Cached: false}, nil
}

// prewarmAsync generates the default (language, type) matrix plus the
// requesting pair in the background, so the submit request is not
// blocked on several sequential generation calls.
func (p *Pipeline) prewarmAsync(paper *types.Paper, language string, summaryType types.SummaryType) {
	pairs := make([][2]string, 0, len(p.cfg.Prewarm.Languages)*len(p.cfg.Prewarm.SummaryTypes)+1)
	seen := make(map[[2]string]bool)
	add := func(lang string, typ types.SummaryType) {
		pair := [2]string{lang, string(typ)}
		if lang != "" && !seen[pair] {
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}
	add(language, summaryType)
	for _, lang := range p.cfg.Prewarm.Languages {
		for _, typ := range p.cfg.Prewarm.SummaryTypes {
			add(lang, typ)
		}
	}

	p.prewarmWG.Add(1)
	go func() {
		defer p.prewarmWG.Done()
		ctx := context.Background()
		for _, pair := range pairs {
			if _, _, err := p.ensureSummary(ctx, paper, pair[0], types.SummaryType(pair[1])); err != nil {
				fmt.Fprintf(p.out, "warning: pre-warm (%s, %s) for %s: %v\n", pair[0], pair[1], paper.SourceKey, err)
			}
		}
	}()
}

// WaitPrewarm blocks until all in-flight pre-warm work finishes.
func (p *Pipeline) WaitPrewarm() {
	p.prewarmWG.Wait()
}

// SummaryResult is the outcome of a fetch-result operation.
type SummaryResult struct {
	Paper   *types.Paper
	Summary *types.LocalizedSummary
	Cached  bool
}

// Result returns the summary for (paper, language, type), generating
// and caching it on first request. Cache hits never touch the
// generator.
func (p *Pipeline) Result(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*SummaryResult, error) {
	paper, err := p.findPaper(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	summary, cached, err := p.ensureSummary(ctx, paper, language, summaryType)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{Paper: paper, Summary: summary, Cached: cached}, nil
}

// Regenerate overwrites the (language, type) summary in place,
// regardless of what is cached. This is the only path that updates an
// existing summary row.
func (p *Pipeline) Regenerate(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*SummaryResult, error) {
	paper, err := p.findPaper(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	text, status := p.generateSummary(ctx, paper, language, summaryType)
	summary, err := p.store.UpsertSummary(ctx, paper.ID, language, summaryType, text, status)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{Paper: paper, Summary: summary, Cached: false}, nil
}

// ensureSummary returns the cached summary or generates and caches one.
// The cached return value reports whether the row pre-existed. A lost
// insert race resolves to the winner's row.
func (p *Pipeline) ensureSummary(ctx context.Context, paper *types.Paper, language string, summaryType types.SummaryType) (*types.LocalizedSummary, bool, error) {
	if existing, err := p.store.FindSummary(ctx, paper.ID, language, summaryType); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, true, nil
	}

	text, status := p.generateSummary(ctx, paper, language, summaryType)
	summary, err := p.store.CreateSummary(ctx, paper.ID, language, summaryType, text, status)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			winner, readErr := p.store.FindSummary(ctx, paper.ID, language, summaryType)
			if readErr == nil && winner != nil {
				return winner, true, nil
			}
		}
		return nil, false, err
	}
	fmt.Fprintf(p.out, "generated summary (%s, %s) for %s\n", language, summaryType, paper.SourceKey)
	return summary, false, nil
}

// generateSummary runs one generation attempt. A failure becomes a
// visible error string that is cached like generated content, with the
// status column recording that it is not a real summary.
func (p *Pipeline) generateSummary(ctx context.Context, paper *types.Paper, language string, summaryType types.SummaryType) (string, types.GenerationStatus) {
	text, err := generate.Summarize(ctx, p.backend, paper.ExtractedText, language, summaryType)
	if err != nil {
		fmt.Fprintf(p.out, "warning: summarize (%s, %s) for %s: %v\n", language, summaryType, paper.SourceKey, err)
		return generate.FailureText(err), types.GenerationFailed
	}
	return text, types.GenerationOK
}

// AnswerResult is the outcome of an ask-question operation.
type AnswerResult struct {
	Paper  *types.Paper
	Answer *types.QuestionAnswer
	Cached bool
}

// Ask answers a question about a stored paper, caching by the
// normalized question text and answer language. When highlighted is
// non-empty the normalized question is rephrased around the passage,
// kept verbatim, so repeat questions about the same passage hit the
// cache too.
func (p *Pipeline) Ask(ctx context.Context, sourceKey, question, highlighted, language string) (*AnswerResult, error) {
	paper, err := p.findPaper(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	// Only the question itself is case-folded; the highlighted passage
	// is quoted text from the paper and keeps its casing.
	normalized := NormalizeQuestion(question)
	if normalized == "" {
		return nil, fmt.Errorf("empty question")
	}
	if passage := strings.TrimSpace(highlighted); passage != "" {
		normalized = fmt.Sprintf("Regarding the highlighted text: '%s'\n%s", passage, normalized)
	}

	answer, created, err := p.store.FindOrCreateAnswer(ctx, paper.ID, normalized, language,
		func(ctx context.Context) (string, types.GenerationStatus) {
			text, genErr := generate.Answer(ctx, p.backend, p.cfg.Generator, paper.ExtractedText, normalized, language)
			if genErr != nil {
				fmt.Fprintf(p.out, "warning: answer for %s: %v\n", paper.SourceKey, genErr)
				return generate.FailureText(genErr), types.GenerationFailed
			}
			return text, types.GenerationOK
		})
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Paper: paper, Answer: answer, Cached: !created}, nil
}

// NormalizeQuestion collapses case and surrounding whitespace so that
// trivially different spellings of the same question share a cache row.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// ExportSummary assembles the four text fields an export renderer
// needs. A missing summary yields a fixed placeholder string, never an
// error.
func (p *Pipeline) ExportSummary(ctx context.Context, sourceKey, language string, summaryType types.SummaryType) (*types.ExportDocument, error) {
	paper, err := p.findPaper(ctx, sourceKey)
	if err != nil {
		return nil, err
	}

	doc := &types.ExportDocument{
		Title:       paper.Title,
		Authors:     paper.Authors,
		SourceURL:   paper.AbstractURL,
		Summary:     summaryPlaceholder,
		Language:    language,
		SummaryType: summaryType,
	}

	summary, err := p.store.FindSummary(ctx, paper.ID, language, summaryType)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		doc.Summary = summary.SummaryText
	}
	return doc, nil
}

// ExportOriginal re-resolves the paper at its source and streams the
// upstream PDF to w. It does not require a cached Paper.
func (p *Pipeline) ExportOriginal(ctx context.Context, repo types.Repository, paperID string, w io.Writer) error {
	meta, err := resolve.Resolve(ctx, p.client, repo, paperID, p.cfg.Resolver)
	if err != nil {
		return err
	}
	return fetch.Stream(ctx, p.client, meta.PDFURL, p.cfg.Fetcher, w)
}

// findPaper looks up a stored paper by source key. A bare paper ID
// without a repository prefix is treated as an arXiv ID.
func (p *Pipeline) findPaper(ctx context.Context, sourceKey string) (*types.Paper, error) {
	repo, paperID := types.SplitSourceKey(sourceKey)
	sourceKey = types.SourceKey(repo, paperID)
	paper, err := p.store.FindPaper(ctx, sourceKey)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPaper, sourceKey)
	}
	return paper, nil
}
