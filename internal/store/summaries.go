// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/preprintlab/preprintd/pkg/types"
)

// FindSummary returns the cached summary for (paper, language, type),
// or nil when none has been generated yet.
func (s *Store) FindSummary(ctx context.Context, paperID int64, language string, summaryType types.SummaryType) (*types.LocalizedSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, paper_id, language, summary_type, summary_text, status, created_at, updated_at
		 FROM summaries WHERE paper_id = ? AND language = ? AND summary_type = ?`,
		paperID, language, string(summaryType))

	var ls types.LocalizedSummary
	err := row.Scan(&ls.ID, &ls.PaperID, &ls.Language, &ls.SummaryType, &ls.SummaryText, &ls.Status, &ls.CreatedAt, &ls.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning summary: %w", err)
	}
	return &ls, nil
}

// CreateSummary inserts a summary row. A second row for the same
// (paper, language, type) triple fails with ErrDuplicate.
func (s *Store) CreateSummary(ctx context.Context, paperID int64, language string, summaryType types.SummaryType, text string, status types.GenerationStatus) (*types.LocalizedSummary, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (paper_id, language, summary_type, summary_text, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		paperID, language, string(summaryType), text, string(status), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("summary (%d, %s, %s): %w", paperID, language, summaryType, ErrDuplicate)
		}
		return nil, fmt.Errorf("inserting summary: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading summary id: %w", err)
	}

	return &types.LocalizedSummary{
		ID:          id,
		PaperID:     paperID,
		Language:    language,
		SummaryType: summaryType,
		SummaryText: text,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpsertSummary overwrites the summary for (paper, language, type) in
// place, creating it when absent. Used only by the explicit regenerate
// path.
func (s *Store) UpsertSummary(ctx context.Context, paperID int64, language string, summaryType types.SummaryType, text string, status types.GenerationStatus) (*types.LocalizedSummary, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (paper_id, language, summary_type, summary_text, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (paper_id, language, summary_type)
		 DO UPDATE SET summary_text = excluded.summary_text,
		               status = excluded.status,
		               updated_at = excluded.updated_at`,
		paperID, language, string(summaryType), text, string(status), now, now)
	if err != nil {
		return nil, fmt.Errorf("upserting summary: %w", err)
	}
	return s.FindSummary(ctx, paperID, language, summaryType)
}
