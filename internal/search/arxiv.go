// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/url"

	"github.com/preprintlab/preprintd/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// searchURL builds the query URL. The search expression matches the
// topic against titles or, category-restricted, against all fields:
//
//	ti:"<topic>" OR all:<topic> cat:cs.*
func searchURL(topic string, cfg types.SearchConfig) string {
	expr := fmt.Sprintf("ti:%q OR all:%s cat:%s", topic, topic, cfg.Category)
	return fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(expr), cfg.ScanLimit)
}

// arXiv Atom feed structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

func decodeFeed(r io.Reader) ([]arxivEntry, error) {
	var feed arxivFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed.Entries, nil
}
