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

// AnswerFunc produces an answer for a question that has no cached row
// yet. It returns the text to persist and whether generation succeeded.
type AnswerFunc func(ctx context.Context) (string, types.GenerationStatus)

// FindAnswer returns the cached answer for (paper, question, language),
// or nil. The question must already be normalized.
func (s *Store) FindAnswer(ctx context.Context, paperID int64, question, language string) (*types.QuestionAnswer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, paper_id, question, answer, answer_language, status, answered_at
		 FROM answers WHERE paper_id = ? AND question = ? AND answer_language = ?`,
		paperID, question, language)
	return scanAnswer(row)
}

func scanAnswer(row *sql.Row) (*types.QuestionAnswer, error) {
	var qa types.QuestionAnswer
	err := row.Scan(&qa.ID, &qa.PaperID, &qa.Question, &qa.Answer, &qa.AnswerLanguage, &qa.Status, &qa.AnsweredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning answer: %w", err)
	}
	return &qa, nil
}

// FindOrCreateAnswer returns the cached answer for (paper, question,
// language) if one exists; otherwise it invokes generate exactly once,
// persists the result, and returns it. When a concurrent request wins
// the insert race, the loser's generated text is discarded and the
// stored row returned instead, so callers never see a duplicate-key
// error. The created return value reports whether this call generated.
func (s *Store) FindOrCreateAnswer(ctx context.Context, paperID int64, question, language string, generate AnswerFunc) (*types.QuestionAnswer, bool, error) {
	existing, err := s.FindAnswer(ctx, paperID, question, language)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	answer, status := generate(ctx)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO answers (paper_id, question, answer, answer_language, status, answered_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		paperID, question, answer, language, string(status), now)
	if err != nil {
		if isUniqueViolation(err) {
			winner, readErr := s.FindAnswer(ctx, paperID, question, language)
			if readErr != nil {
				return nil, false, readErr
			}
			if winner == nil {
				return nil, false, fmt.Errorf("answer row vanished after duplicate insert")
			}
			return winner, false, nil
		}
		return nil, false, fmt.Errorf("inserting answer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("reading answer id: %w", err)
	}

	return &types.QuestionAnswer{
		ID:             id,
		PaperID:        paperID,
		Question:       question,
		Answer:         answer,
		AnswerLanguage: language,
		Status:         status,
		AnsweredAt:     now,
	}, true, nil
}
