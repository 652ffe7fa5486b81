// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text and embedded metadata from PDFs.
package pdftext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText reports that the PDF parsed cleanly but yielded no
// extractable text at all.
var ErrNoText = errors.New("no text extracted from pdf")

// Result holds extracted text plus best-effort embedded metadata. Title
// and Authors come from the document info dictionary and are only used
// as a fallback when source metadata is absent.
type Result struct {
	Text    string
	Title   string
	Authors string
}

// Extract parses the PDF at path page by page. Pages yielding no text
// contribute nothing; the whole call fails only when the file cannot be
// parsed at all, or when every page came back empty (ErrNoText).
func Extract(path string) (res Result, err error) {
	// The underlying parser panics on malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	res.Title = cleanMetaField(info.Key("Title").Text())
	res.Authors = cleanMetaField(info.Key("Author").Text())

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	res.Text = sb.String()
	if strings.TrimSpace(res.Text) == "" {
		return Result{}, fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return res, nil
}

// cleanMetaField strips the wrapping artifacts some PDF producers leave
// around info dictionary strings: a leading "(" before a BOM or space,
// the BOM itself, and a trailing ")".
func cleanMetaField(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(\uFEFF") || strings.HasPrefix(s, "( ") {
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.TrimSuffix(s, ")")
	return strings.TrimSpace(s)
}
