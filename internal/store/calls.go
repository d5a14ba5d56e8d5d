package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

// WriteCallRecord upserts the call record for (client, rep) and moves the
// client's lead status to the record's qualification status, in one transaction.
func (s *Store) WriteCallRecord(ctx context.Context, rec session.CallRecord) (uuid.UUID, error) {
	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal answers: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO call_records (id, client_id, rep_id, session_id, answers, score, qualification_status,
			next_action, transcript, is_hot_deal, follow_up_required, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (client_id, rep_id)
		DO UPDATE SET
			session_id = $4,
			answers = $5,
			score = $6,
			qualification_status = $7,
			next_action = $8,
			transcript = $9,
			is_hot_deal = $10,
			follow_up_required = $11,
			updated_at = now()
		RETURNING id`,
		uuid.New(), rec.ClientID, rec.RepID, rec.SessionID, answers, rec.Score, string(rec.Status),
		rec.NextAction, rec.Transcript, rec.IsHotDeal, rec.FollowUpRequired,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert call record: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE clients SET lead_status = $1, updated_at = now()
		WHERE id = $2`,
		string(rec.Status), rec.ClientID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("update lead status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetCallRecord fetches the stored record for a client and rep.
func (s *Store) GetCallRecord(ctx context.Context, clientID, repID string) (*session.CallRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, session_id, client_id, rep_id, answers, score, qualification_status,
			next_action, transcript, is_hot_deal, follow_up_required
		FROM call_records
		WHERE client_id = $1 AND rep_id = $2`,
		clientID, repID,
	)

	var rec session.CallRecord
	var answers []byte
	var status string
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.ClientID, &rec.RepID, &answers, &rec.Score, &status,
		&rec.NextAction, &rec.Transcript, &rec.IsHotDeal, &rec.FollowUpRequired)
	if err != nil {
		return nil, err
	}
	rec.Status = scoring.Status(status)
	rec.Answers = make(question.Answers)
	if err := json.Unmarshal(answers, &rec.Answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	return &rec, nil
}

// LeadStatus returns the client's current lead status.
func (s *Store) LeadStatus(ctx context.Context, clientID string) (string, error) {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT lead_status FROM clients WHERE id = $1`, clientID).Scan(&status)
	return status, err
}
