// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/preprintlab/preprintd/pkg/types"
)

// The preprint landing pages ship more than one DOM template in
// production, so each field carries an ordered list of selector
// variants; the first variant yielding non-empty text wins.
var (
	rxivTitleSelectors    = []string{"h1.highwire-cite-title", "h1.article-title"}
	rxivAuthorSelectors   = []string{"div.highwire-cite-authors span.author-name", "div.authors-list a.author-name"}
	rxivAbstractSelectors = []string{"div.section.abstract", "div.abstract-content"}

	chemrxivTitleSelectors    = []string{"h1.article-title"}
	chemrxivAuthorSelectors   = []string{"div.article-authors"}
	chemrxivAbstractSelectors = []string{"div.abstract-content"}
)

// resolveRxiv handles medRxiv and bioRxiv, which share URL conventions
// built on the 10.1101 DOI prefix and near-identical landing pages.
func resolveRxiv(ctx context.Context, client *http.Client, base, paperID string, cfg types.ResolverConfig) (*types.Metadata, error) {
	meta := &types.Metadata{
		PDFURL: fmt.Sprintf("%s/content/10.1101/%sv1.full.pdf", base, paperID),
		AbsURL: fmt.Sprintf("%s/content/10.1101/%sv1", base, paperID),
	}

	doc, err := fetchDocument(ctx, client, meta.AbsURL, cfg)
	if err != nil {
		return nil, err
	}

	meta.Title = firstText(doc, rxivTitleSelectors)
	meta.Authors = joinedText(doc, rxivAuthorSelectors)
	meta.Abstract = firstText(doc, rxivAbstractSelectors)
	return meta, nil
}

// resolveChemrxiv scrapes the ChemRxiv landing page. When no PDF link is
// found in-page the abstract URL stands in as the PDF source, which the
// downloader will surface as a soft failure rather than a hard error
// here.
func resolveChemrxiv(ctx context.Context, client *http.Client, paperID string, cfg types.ResolverConfig) (*types.Metadata, error) {
	absURL := ChemrxivBase + paperID

	doc, err := fetchDocument(ctx, client, absURL, cfg)
	if err != nil {
		return nil, err
	}

	meta := &types.Metadata{
		AbsURL:   absURL,
		Title:    firstText(doc, chemrxivTitleSelectors),
		Authors:  firstText(doc, chemrxivAuthorSelectors),
		Abstract: firstText(doc, chemrxivAbstractSelectors),
		PDFURL:   absURL,
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(href, ".pdf") {
			meta.PDFURL = href
			return false
		}
		return true
	})

	return meta, nil
}

func fetchDocument(ctx context.Context, client *http.Client, url string, cfg types.ResolverConfig) (*goquery.Document, error) {
	resp, err := get(ctx, client, url, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrNotFound, url, err)
	}
	return doc, nil
}

// firstText tries each selector in order and returns the trimmed text of
// the first match that is non-empty.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}

// joinedText tries each selector in order and returns the ", "-joined
// trimmed texts of all matches for the first selector that matches any.
func joinedText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var parts []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return ""
}
