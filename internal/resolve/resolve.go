// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve maps (repository, paper ID) pairs to canonical paper
// metadata: PDF URL, abstract URL, title, authors, and abstract.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/preprintlab/preprintd/pkg/types"
)

// ErrNotFound reports that a paper could not be resolved at its source.
// Network errors, HTTP error statuses, and unknown repositories all fold
// into it; resolution never panics and is never retried.
var ErrNotFound = errors.New("paper not found at source")

// Base URLs for each repository. Declared as vars so tests can
// substitute httptest servers.
var (
	ArxivAPIBase = "https://export.arxiv.org/api/query"
	ArxivPDFBase = "https://arxiv.org/pdf/"
	ArxivAbsBase = "https://arxiv.org/abs/"
	MedrxivBase  = "https://www.medrxiv.org"
	BiorxivBase  = "https://www.biorxiv.org"
	ChemrxivBase = "https://chemrxiv.org/engage/chemrxiv/article-details/"
)

// Resolve fetches canonical metadata for paperID from the given
// repository. The paper ID is an opaque upstream-format string; no
// validation is applied beyond non-emptiness.
func Resolve(ctx context.Context, client *http.Client, repo types.Repository, paperID string, cfg types.ResolverConfig) (*types.Metadata, error) {
	paperID = strings.TrimSpace(paperID)
	if paperID == "" {
		return nil, fmt.Errorf("%w: empty paper id", ErrNotFound)
	}

	switch repo {
	case types.RepoArxiv:
		return resolveArxiv(ctx, client, paperID, cfg)
	case types.RepoMedrxiv:
		return resolveRxiv(ctx, client, MedrxivBase, paperID, cfg)
	case types.RepoBiorxiv:
		return resolveRxiv(ctx, client, BiorxivBase, paperID, cfg)
	case types.RepoChemrxiv:
		return resolveChemrxiv(ctx, client, paperID, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown repository %q", ErrNotFound, repo)
	}
}

// get issues a bounded GET with the configured User-Agent. Any transport
// error or non-200 status folds into ErrNotFound.
func get(ctx context.Context, client *http.Client, url string, cfg types.ResolverConfig) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrNotFound, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrNotFound, url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrNotFound, resp.StatusCode, url)
	}
	return resp, nil
}
