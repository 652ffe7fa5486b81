// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preprintlab/preprintd/internal/generate"
	"github.com/preprintlab/preprintd/internal/pdftext"
	"github.com/preprintlab/preprintd/internal/resolve"
	"github.com/preprintlab/preprintd/internal/store"
	"github.com/preprintlab/preprintd/pkg/types"
)

const submitArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Sparse Retrieval at Scale</title>
    <summary>We study sparse retrieval.</summary>
    <author><name>Carol White</name></author>
  </entry>
</feed>`

// fakeBackend counts generation calls and keeps the prompts it saw.
type fakeBackend struct {
	mu      sync.Mutex
	prompts []string
	fail    bool
}

func (b *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return "", generate.ErrUnavailable
	}
	b.prompts = append(b.prompts, prompt)
	return fmt.Sprintf("generated text %d", len(b.prompts)), nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

type fixture struct {
	p         *Pipeline
	store     *store.Store
	backend   *fakeBackend
	scratch   string
	downloads *int32
}

// newFixture wires a pipeline against an httptest arXiv and a stub PDF
// extractor, so no real network or PDF parsing is involved.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	var downloads int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(submitArxivXML))
	})
	mux.HandleFunc("/pdf/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&downloads, 1)
		w.Write([]byte("%PDF-1.4 stub"))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	oldAPI, oldPDF := resolve.ArxivAPIBase, resolve.ArxivPDFBase
	resolve.ArxivAPIBase = server.URL + "/api"
	resolve.ArxivPDFBase = server.URL + "/pdf/"
	t.Cleanup(func() {
		resolve.ArxivAPIBase, resolve.ArxivPDFBase = oldAPI, oldPDF
	})

	oldExtract := extractPDF
	extractPDF = func(path string) (pdftext.Result, error) {
		return pdftext.Result{Text: "the full extracted body of the paper"}, nil
	}
	t.Cleanup(func() { extractPDF = oldExtract })

	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	scratch := t.TempDir()
	backend := &fakeBackend{}
	cfg := types.PipelineConfig{
		Resolver: types.ResolverConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "preprintd-test/0.1"},
		},
		Fetcher: types.FetcherConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "preprintd-test/0.1"},
			ScratchDir: scratch,
		},
	}
	return &fixture{
		p:         New(s, server.Client(), backend, cfg, io.Discard),
		store:     s,
		backend:   backend,
		scratch:   scratch,
		downloads: &downloads,
	}
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch dir should hold no leftover files")
}

func TestSubmitCreatesPaperAndPrewarms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	assert.False(t, result.Cached)
	assert.Equal(t, "arxiv:2506.08872", result.Paper.SourceKey)
	assert.Equal(t, "Sparse Retrieval at Scale", result.Paper.Title)
	assert.Equal(t, "Carol White", result.Paper.Authors)
	assert.NotEmpty(t, result.Paper.ExtractedText)

	// The default matrix is warmed in the background.
	for _, lang := range []string{"en", "ru"} {
		for _, typ := range []types.SummaryType{types.SummaryOrdinary, types.SummaryShort} {
			summary, err := f.store.FindSummary(ctx, result.Paper.ID, lang, typ)
			require.NoError(t, err)
			require.NotNil(t, summary, "missing pre-warmed (%s, %s)", lang, typ)
			assert.Equal(t, types.GenerationOK, summary.Status)
		}
	}
	detailed, err := f.store.FindSummary(ctx, result.Paper.ID, "en", types.SummaryDetailed)
	require.NoError(t, err)
	assert.Nil(t, detailed, "detailed summaries are generated on demand only")

	requireEmptyDir(t, f.scratch)
}

func TestSubmitCacheHitSkipsDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()
	require.False(t, first.Cached)
	require.Equal(t, int32(1), atomic.LoadInt32(f.downloads))

	second, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	assert.True(t, second.Cached)
	assert.Equal(t, first.Paper.ID, second.Paper.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.downloads), "cached submit must not download again")
}

func TestResultGeneratesOnDemandThenCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()
	warmed := f.backend.calls()

	// (fr, short) is outside the pre-warm matrix.
	first, err := f.p.Result(ctx, submitted.Paper.SourceKey, "fr", types.SummaryShort)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, warmed+1, f.backend.calls())

	second, err := f.p.Result(ctx, submitted.Paper.SourceKey, "fr", types.SummaryShort)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Summary.SummaryText, second.Summary.SummaryText)
	assert.Equal(t, warmed+1, f.backend.calls(), "cache hit must not call the generator")
}

func TestResultUnknownPaper(t *testing.T) {
	f := newFixture(t)

	_, err := f.p.Result(context.Background(), "arxiv:0000.00000", "en", types.SummaryOrdinary)
	assert.ErrorIs(t, err, ErrUnknownPaper)
}

func TestSubmitCleansUpOnExtractionFailure(t *testing.T) {
	f := newFixture(t)

	extractPDF = func(path string) (pdftext.Result, error) {
		return pdftext.Result{}, pdftext.ErrNoText
	}

	_, err := f.p.Submit(context.Background(), types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	assert.ErrorIs(t, err, pdftext.ErrNoText)
	requireEmptyDir(t, f.scratch)

	paper, findErr := f.store.FindPaper(context.Background(), "arxiv:2506.08872")
	require.NoError(t, findErr)
	assert.Nil(t, paper, "a failed extraction must not persist a paper")
}

func TestGenerationFailureIsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	f.backend.fail = true
	first, err := f.p.Result(ctx, submitted.Paper.SourceKey, "de", types.SummaryDetailed)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, types.GenerationFailed, first.Summary.Status)
	assert.Contains(t, first.Summary.SummaryText, "could not connect to the generation API")

	// The failure text is itself cached; a retry serves it without a
	// new generation attempt until regenerate is called.
	f.backend.fail = false
	second, err := f.p.Result(ctx, submitted.Paper.SourceKey, "de", types.SummaryDetailed)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, types.GenerationFailed, second.Summary.Status)

	regenerated, err := f.p.Regenerate(ctx, submitted.Paper.SourceKey, "de", types.SummaryDetailed)
	require.NoError(t, err)
	assert.Equal(t, types.GenerationOK, regenerated.Summary.Status)
	assert.Equal(t, first.Summary.ID, regenerated.Summary.ID, "regenerate overwrites in place")
}

func TestAskNormalizesQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()
	before := f.backend.calls()

	first, err := f.p.Ask(ctx, submitted.Paper.SourceKey, "What is sparse retrieval?", "", "en")
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "what is sparse retrieval?", first.Answer.Question)
	assert.Equal(t, before+1, f.backend.calls())

	second, err := f.p.Ask(ctx, submitted.Paper.SourceKey, "  WHAT IS SPARSE RETRIEVAL?  ", "", "en")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Answer.Answer, second.Answer.Answer)
	assert.Equal(t, before+1, f.backend.calls(), "normalized repeat must hit the cache")

	// A different answer language is a distinct cache key.
	third, err := f.p.Ask(ctx, submitted.Paper.SourceKey, "What is sparse retrieval?", "", "ru")
	require.NoError(t, err)
	assert.False(t, third.Cached)
}

func TestAskHighlightedText(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	result, err := f.p.Ask(ctx, submitted.Paper.SourceKey, "What does this mean?", "Inverted Index", "en")
	require.NoError(t, err)
	assert.False(t, result.Cached)
	// The passage keeps its casing; only the question is folded.
	assert.Equal(t, "Regarding the highlighted text: 'Inverted Index'\nwhat does this mean?",
		result.Answer.Question)

	repeat, err := f.p.Ask(ctx, submitted.Paper.SourceKey, "WHAT does this MEAN?", "Inverted Index", "en")
	require.NoError(t, err)
	assert.True(t, repeat.Cached)
}

func TestAskEmptyQuestion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	_, err = f.p.Ask(ctx, submitted.Paper.SourceKey, "   ", "", "en")
	assert.Error(t, err)
}

func TestExportSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	submitted, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	doc, err := f.p.ExportSummary(ctx, submitted.Paper.SourceKey, "en", types.SummaryOrdinary)
	require.NoError(t, err)
	assert.Equal(t, "Sparse Retrieval at Scale", doc.Title)
	assert.Equal(t, "Carol White", doc.Authors)
	assert.NotEqual(t, summaryPlaceholder, doc.Summary)

	missing, err := f.p.ExportSummary(ctx, submitted.Paper.SourceKey, "de", types.SummaryDetailed)
	require.NoError(t, err)
	assert.Equal(t, summaryPlaceholder, missing.Summary)
}

func TestBareKeyDefaultsToArxiv(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.p.Submit(ctx, types.RepoArxiv, "2506.08872", types.SummaryOrdinary, "en")
	require.NoError(t, err)
	f.p.WaitPrewarm()

	result, err := f.p.Result(ctx, "2506.08872", "en", types.SummaryOrdinary)
	require.NoError(t, err)
	assert.Equal(t, "arxiv:2506.08872", result.Paper.SourceKey)
}

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is X?", "what is x?"},
		{"  what is x?  ", "what is x?"},
		{"\tWHAT IS X?\n", "what is x?"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuestion(tt.in))
	}
}
