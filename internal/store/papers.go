// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/preprintlab/preprintd/pkg/types"
)

// FindPaper returns the paper with the given source key, or nil when no
// such paper exists.
func (s *Store) FindPaper(ctx context.Context, sourceKey string) (*types.Paper, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_key, extracted_text, title, authors, abstract_url, created_at
		 FROM papers WHERE source_key = ?`, sourceKey)
	return scanPaper(row)
}

func scanPaper(row *sql.Row) (*types.Paper, error) {
	var p types.Paper
	var title, authors, absURL sql.NullString
	err := row.Scan(&p.ID, &p.SourceKey, &p.ExtractedText, &title, &authors, &absURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning paper: %w", err)
	}
	p.Title = title.String
	p.Authors = authors.String
	p.AbstractURL = absURL.String
	return &p, nil
}

// CreatePaper inserts a new paper. The extracted text must be non-empty;
// a paper only exists once extraction has succeeded. A duplicate source
// key fails with ErrDuplicate.
func (s *Store) CreatePaper(ctx context.Context, sourceKey, extractedText, title, authors, abstractURL string) (*types.Paper, error) {
	if strings.TrimSpace(extractedText) == "" {
		return nil, fmt.Errorf("creating paper %s: extracted text is empty", sourceKey)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO papers (source_key, extracted_text, title, authors, abstract_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sourceKey, extractedText, title, authors, abstractURL, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("paper %s: %w", sourceKey, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting paper %s: %w", sourceKey, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading paper id: %w", err)
	}

	return &types.Paper{
		ID:            id,
		SourceKey:     sourceKey,
		ExtractedText: extractedText,
		Title:         title,
		Authors:       authors,
		AbstractURL:   abstractURL,
		CreatedAt:     now,
	}, nil
}
