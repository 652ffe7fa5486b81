// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/preprintlab/preprintd/pkg/types"
)

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// resolveArxiv queries the arXiv export API by exact ID. The PDF and
// abstract URLs are built from the ID template up front, so download can
// proceed even when the feed entry is missing optional fields.
func resolveArxiv(ctx context.Context, client *http.Client, paperID string, cfg types.ResolverConfig) (*types.Metadata, error) {
	meta := &types.Metadata{
		PDFURL: ArxivPDFBase + paperID + ".pdf",
		AbsURL: ArxivAbsBase + paperID,
	}

	apiURL := fmt.Sprintf("%s?id_list=%s", ArxivAPIBase, url.QueryEscape(paperID))
	resp, err := get(ctx, client, apiURL, cfg)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: parsing arXiv response: %v", ErrNotFound, err)
	}
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("%w: no arXiv entry for %s", ErrNotFound, paperID)
	}

	entry := feed.Entries[0]
	meta.Title = strings.Join(strings.Fields(entry.Title), " ")
	meta.Abstract = strings.TrimSpace(entry.Summary)

	names := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	meta.Authors = strings.Join(names, ", ")

	return meta, nil
}
