// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv index by topic and re-ranks the
// results client-side. Matching is plain substring containment over
// the topic terms; title matches outrank abstract matches, and an
// exact full-title match is pinned first.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/preprintlab/preprintd/internal/generate"
	"github.com/preprintlab/preprintd/internal/httputil"
	"github.com/preprintlab/preprintd/pkg/types"
)

const (
	defaultMaxResults = 30
	defaultScanLimit  = 200
	defaultCategory   = "cs.*"
)

// Client searches the arXiv index. The rate limiter spaces requests
// out per arXiv API guidance; a single limiter is shared across all
// calls on one client.
type Client struct {
	client  *http.Client
	backend generate.Backend
	cfg     types.SearchConfig
	limiter *rate.Limiter
}

// New builds a search client. backend may be nil, in which case
// non-English queries are searched untranslated.
func New(client *http.Client, backend generate.Backend, cfg types.SearchConfig) *Client {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.ScanLimit <= 0 {
		cfg.ScanLimit = defaultScanLimit
	}
	if cfg.Category == "" {
		cfg.Category = defaultCategory
	}
	return &Client{
		client:  client,
		backend: backend,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// Search returns ranked results for a topic. When language is neither
// empty nor "en" the topic is first translated to English through the
// generation backend; a translation failure falls back to the literal
// topic rather than failing the search.
func (c *Client) Search(ctx context.Context, topic, language string) ([]types.SearchResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("empty search topic")
	}

	if language != "" && language != "en" && c.backend != nil {
		if translated, err := generate.TranslateQuery(ctx, c.backend, topic); err == nil && translated != "" {
			topic = translated
		}
	}

	entries, err := c.fetchFeed(ctx, topic)
	if err != nil {
		return nil, err
	}
	return rank(entries, topic, c.cfg.MaxResults), nil
}

// rank orders scanned entries the way results are presented: an exact
// full-title match first, then entries whose title contains any topic
// term, then entries whose abstract does. Entries matching neither are
// dropped, as are duplicate arXiv IDs. The scan stops once max results
// are kept.
func rank(entries []arxivEntry, topic string, max int) []types.SearchResult {
	topicLower := strings.ToLower(topic)
	terms := strings.Fields(topicLower)

	var titleHits, abstractHits []types.SearchResult
	seen := make(map[string]bool)

	for _, entry := range entries {
		if len(titleHits)+len(abstractHits) >= max {
			break
		}
		id := entryArxivID(entry.ID)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		title := strings.TrimSpace(entry.Title)
		abstract := strings.TrimSpace(entry.Summary)
		titleLower := strings.ToLower(title)
		abstractLower := strings.ToLower(abstract)

		result := types.SearchResult{
			ArxivID:  id,
			Title:    title,
			Authors:  joinAuthors(entry.Authors),
			URL:      entry.ID,
			Abstract: abstract,
		}

		switch {
		case titleLower == topicLower:
			titleHits = append([]types.SearchResult{result}, titleHits...)
		case containsAny(titleLower, terms):
			titleHits = append(titleHits, result)
		case containsAny(abstractLower, terms):
			abstractHits = append(abstractHits, result)
		}
	}

	results := append(titleHits, abstractHits...)
	if len(results) > max {
		results = results[:max]
	}
	return results
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// entryArxivID extracts the ID, version suffix included, from an entry
// URL such as "http://arxiv.org/abs/2301.07041v1".
func entryArxivID(entryURL string) string {
	idx := strings.LastIndex(entryURL, "/")
	if idx < 0 || idx == len(entryURL)-1 {
		return ""
	}
	return entryURL[idx+1:]
}

func joinAuthors(authors []arxivAuthor) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// fetchFeed pulls one relevance-sorted page of up to ScanLimit entries,
// waiting on the rate limiter first and retrying on HTTP 429.
func (c *Client) fetchFeed(ctx context.Context, topic string) ([]arxivEntry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL(topic, c.cfg), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv search returned HTTP %d", resp.StatusCode)
	}
	return decodeFeed(resp.Body)
}
