package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
)

// CallRecord is the finalized output of a qualification session.
type CallRecord struct {
	ID               uuid.UUID        `json:"id"`
	SessionID        uuid.UUID        `json:"session_id"`
	ClientID         string           `json:"client_id"`
	RepID            string           `json:"rep_id"`
	Answers          question.Answers `json:"answers"`
	Score            int              `json:"score"`
	Status           scoring.Status   `json:"qualification_status"`
	NextAction       string           `json:"next_action"`
	Transcript       string           `json:"transcript"`
	IsHotDeal        bool             `json:"is_hot_deal"`
	FollowUpRequired bool             `json:"follow_up_required"`
}

// CallRecordWriter persists a call record, creating or updating the stored
// record for the same client and rep. It returns the stored record ID.
type CallRecordWriter interface {
	WriteCallRecord(ctx context.Context, rec CallRecord) (uuid.UUID, error)
}

// Summary is a session parked on its summary step. Only a Summary can save.
type Summary struct {
	session *Session
}

// Result scores the session's current answers.
func (s *Summary) Result() scoring.Result {
	return s.session.Preview()
}

// Record builds the call record tuple without persisting it.
func (s *Summary) Record() CallRecord {
	sess := s.session
	res := s.Result()
	return CallRecord{
		SessionID:        sess.ID,
		ClientID:         sess.ClientID,
		RepID:            sess.RepID,
		Answers:          sess.answers.Clone(),
		Score:            res.Score,
		Status:           res.Status,
		NextAction:       res.NextAction,
		Transcript:       sess.transcript,
		IsHotDeal:        res.IsHotDeal,
		FollowUpRequired: res.FollowUpRequired,
	}
}

// Save hands the record to w. On failure the session is untouched and Save
// may be called again.
func (s *Summary) Save(ctx context.Context, w CallRecordWriter) (CallRecord, error) {
	if _, ok := s.session.Step().(SummaryStep); !ok {
		return CallRecord{}, ErrNotAtSummary
	}
	rec := s.Record()
	id, err := w.WriteCallRecord(ctx, rec)
	if err != nil {
		return CallRecord{}, fmt.Errorf("write call record: %w", err)
	}
	rec.ID = id
	return rec, nil
}
