package store

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

// ActiveQuestions returns the active question configuration in step order.
func (s *Store) ActiveQuestions(ctx context.Context) ([]question.Question, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, question_text, script_text, order_index, scoring_weight, is_active
		FROM qualification_questions
		WHERE is_active
		ORDER BY order_index`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var qs []question.Question
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.ScriptText, &q.OrderIndex, &q.ScoringWeight, &q.IsActive); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate question rows: %w", err)
	}
	return qs, nil
}

const upsertQuestionSQL = `
	INSERT INTO qualification_questions (id, question_text, script_text, order_index, scoring_weight, is_active)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id)
	DO UPDATE SET
		question_text = $2,
		script_text = $3,
		order_index = $4,
		scoring_weight = $5,
		is_active = $6`

// UpsertQuestion creates or replaces a question definition.
func (s *Store) UpsertQuestion(ctx context.Context, q question.Question) error {
	_, err := s.pool.Exec(ctx, upsertQuestionSQL,
		q.ID, q.Text, q.ScriptText, q.OrderIndex, q.ScoringWeight, q.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

// ReplaceQuestions makes qs the whole active configuration in one transaction.
// Stored questions whose id is not in qs are deactivated, not deleted.
func (s *Store) ReplaceQuestions(ctx context.Context, qs []question.Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		_, err := tx.Exec(ctx, upsertQuestionSQL,
			q.ID, q.Text, q.ScriptText, q.OrderIndex, q.ScoringWeight, q.IsActive,
		)
		if err != nil {
			return fmt.Errorf("upsert question %s: %w", q.ID, err)
		}
		ids = append(ids, q.ID)
	}

	_, err = tx.Exec(ctx, `
		UPDATE qualification_questions SET is_active = FALSE
		WHERE is_active AND NOT (id = ANY($1))`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("deactivate missing questions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
