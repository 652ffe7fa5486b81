// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads paper PDFs into a scratch directory. Files it
// creates are owned by the caller, which must remove them with Cleanup
// once extraction finishes, on every exit path.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/preprintlab/preprintd/pkg/types"
)

// ErrDownload reports that a PDF could not be downloaded. Transport
// errors, HTTP error statuses, and disk write failures all fold into it.
var ErrDownload = errors.New("pdf download failed")

// copyChunkSize bounds the in-memory buffer used while streaming the
// response body to disk.
const copyChunkSize = 32 * 1024

// Download streams pdfURL into a fresh temp file under the configured
// scratch directory and returns its path. An empty ScratchDir means the
// system temp directory. The caller owns the file.
func Download(ctx context.Context, client *http.Client, pdfURL string, cfg types.FetcherConfig) (string, error) {
	if cfg.ScratchDir != "" {
		if err := os.MkdirAll(cfg.ScratchDir, 0o755); err != nil {
			return "", fmt.Errorf("%w: creating scratch dir: %v", ErrDownload, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrDownload, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrDownload, pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d from %s", ErrDownload, resp.StatusCode, pdfURL)
	}

	tmpFile, err := os.CreateTemp(cfg.ScratchDir, "preprint-*.pdf")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp file: %v", ErrDownload, err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.CopyBuffer(tmpFile, resp.Body, make([]byte, copyChunkSize))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: writing download: %v", ErrDownload, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: closing temp file: %v", ErrDownload, closeErr)
	}

	return tmpPath, nil
}

// Cleanup removes a downloaded temp file. A missing file is not an
// error; anything else is reported so the caller can log it.
func Cleanup(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing temp pdf %s: %w", path, err)
	}
	return nil
}

// Stream copies the upstream PDF at pdfURL directly to w without
// touching disk. Used by the original-PDF export path.
func Stream(ctx context.Context, client *http.Client, pdfURL string, cfg types.FetcherConfig, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrDownload, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: fetching %s: %v", ErrDownload, pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrDownload, resp.StatusCode, pdfURL)
	}

	if _, err := io.CopyBuffer(w, resp.Body, make([]byte, copyChunkSize)); err != nil {
		return fmt.Errorf("%w: streaming %s: %v", ErrDownload, pdfURL, err)
	}
	return nil
}
