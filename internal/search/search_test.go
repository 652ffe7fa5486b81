// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/preprintlab/preprintd/internal/generate"
	"github.com/preprintlab/preprintd/internal/httputil"
	"github.com/preprintlab/preprintd/pkg/types"
)

func feedXML(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">` + strings.Join(entries, "\n") + `</feed>`
}

func entryXML(id, title, summary string) string {
	return fmt.Sprintf(`<entry>
    <id>http://arxiv.org/abs/%s</id>
    <title>%s</title>
    <summary>%s</summary>
    <author><name>Dana Reyes</name></author>
  </entry>`, id, title, summary)
}

// echoBackend pretends every translation comes back as a fixed string.
type echoBackend struct {
	prompt string
	out    string
}

func (b *echoBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.prompt = prompt
	return b.out, nil
}

func testClient(t *testing.T, handler http.HandlerFunc, backend generate.Backend) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	old := arxivAPIBase
	arxivAPIBase = server.URL
	t.Cleanup(func() { arxivAPIBase = old })

	c := New(server.Client(), backend, types.SearchConfig{})
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func setTinyRetryDelay() func() {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	return func() { httputil.RetryBaseDelay = old }
}

func TestSearchRanking(t *testing.T) {
	feed := feedXML(
		entryXML("2401.00001v1", "A Survey of Other Things", "This mentions sparse coding in passing."),
		entryXML("2401.00002v1", "Advances in Sparse Coding", "Dictionary learning."),
		entryXML("2401.00003v1", "Sparse Coding", "The topic itself."),
		entryXML("2401.00004v1", "Unrelated Work", "Nothing relevant here."),
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}, nil)

	results, err := c.Search(context.Background(), "sparse coding", "en")
	require.NoError(t, err)
	require.Len(t, results, 3, "entries matching neither title nor abstract are dropped")

	// Exact title match pinned first, then title matches, then
	// abstract matches.
	assert.Equal(t, "2401.00003v1", results[0].ArxivID)
	assert.Equal(t, "2401.00002v1", results[1].ArxivID)
	assert.Equal(t, "2401.00001v1", results[2].ArxivID)
	assert.Equal(t, "http://arxiv.org/abs/2401.00003v1", results[0].URL)
	assert.Equal(t, "Dana Reyes", results[0].Authors)
}

func TestSearchDeduplicatesByID(t *testing.T) {
	feed := feedXML(
		entryXML("2401.00005v2", "Sparse Retrieval Methods", "First occurrence."),
		entryXML("2401.00005v2", "Sparse Retrieval Methods", "Duplicate entry."),
	)
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	}, nil)

	results, err := c.Search(context.Background(), "sparse", "en")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchCapsResults(t *testing.T) {
	var entries []string
	for i := 0; i < 50; i++ {
		entries = append(entries, entryXML(
			fmt.Sprintf("2402.%05dv1", i),
			fmt.Sprintf("Sparse Paper %d", i),
			"About sparse things."))
	}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedXML(entries...)))
	}, nil)

	results, err := c.Search(context.Background(), "sparse", "en")
	require.NoError(t, err)
	assert.Len(t, results, defaultMaxResults)
}

func TestSearchQueryExpression(t *testing.T) {
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(feedXML()))
	}, nil)

	_, err := c.Search(context.Background(), "graph neural networks", "en")
	require.NoError(t, err)
	assert.Equal(t, `ti:"graph neural networks" OR all:graph neural networks cat:cs.*`, gotQuery)
}

func TestSearchTranslatesNonEnglishTopic(t *testing.T) {
	backend := &echoBackend{out: "machine learning"}
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(feedXML()))
	}, backend)

	_, err := c.Search(context.Background(), "машинное обучение", "ru")
	require.NoError(t, err)
	assert.Contains(t, backend.prompt, "машинное обучение")
	assert.Contains(t, gotQuery, `ti:"machine learning"`)
}

func TestSearchEnglishTopicSkipsTranslation(t *testing.T) {
	backend := &echoBackend{out: "should not be used"}
	var gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		w.Write([]byte(feedXML()))
	}, backend)

	_, err := c.Search(context.Background(), "quantum error correction", "en")
	require.NoError(t, err)
	assert.Empty(t, backend.prompt)
	assert.Contains(t, gotQuery, `ti:"quantum error correction"`)
}

func TestSearchEmptyTopic(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty topic")
	}, nil)

	_, err := c.Search(context.Background(), "   ", "en")
	assert.Error(t, err)
}

func TestSearchUpstreamError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := c.Search(context.Background(), "sparse", "en")
	assert.Error(t, err)
}

func TestSearchRetriesRateLimit(t *testing.T) {
	oldDelay := setTinyRetryDelay()
	defer oldDelay()

	var calls int32
	feed := feedXML(entryXML("2403.00001v1", "Sparse Encoders", "Sparse."))
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(feed))
	}, nil)

	results, err := c.Search(context.Background(), "sparse", "en")
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEntryArxivID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041v1"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"no-slash", ""},
		{"http://arxiv.org/abs/", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, entryArxivID(tt.in), "input %q", tt.in)
	}
}
