//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_WriteCallRecordUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	clientID := "client-" + uuid.New().String()[:8]
	repID := "rep-" + uuid.New().String()[:8]

	if _, err := s.pool.Exec(ctx, `INSERT INTO clients (id, name) VALUES ($1, 'Acme')`, clientID); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM call_records WHERE client_id = $1", clientID)
		s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", clientID)
	})

	rec := session.CallRecord{
		SessionID:  uuid.New(),
		ClientID:   clientID,
		RepID:      repID,
		Answers:    question.Answers{"budget": "budget is $50k"},
		Score:      55,
		Status:     scoring.StatusWarm,
		NextAction: "Follow up in 1 week",
		Transcript: "Our budget is $50k",
	}

	firstID, err := s.WriteCallRecord(ctx, rec)
	if err != nil {
		t.Fatalf("WriteCallRecord failed: %v", err)
	}
	if firstID == uuid.Nil {
		t.Fatal("expected non-nil record ID")
	}

	status, err := s.LeadStatus(ctx, clientID)
	if err != nil {
		t.Fatalf("LeadStatus: %v", err)
	}
	if status != "warm" {
		t.Errorf("expected lead status warm, got %q", status)
	}

	// Second save for the same client and rep updates in place.
	rec.Score = 90
	rec.Status = scoring.StatusHot
	rec.IsHotDeal = true
	secondID, err := s.WriteCallRecord(ctx, rec)
	if err != nil {
		t.Fatalf("WriteCallRecord (update) failed: %v", err)
	}
	if secondID != firstID {
		t.Errorf("expected upsert to keep id %s, got %s", firstID, secondID)
	}

	got, err := s.GetCallRecord(ctx, clientID, repID)
	if err != nil {
		t.Fatalf("GetCallRecord: %v", err)
	}
	if got.Score != 90 || got.Status != scoring.StatusHot || !got.IsHotDeal {
		t.Errorf("unexpected stored record %+v", got)
	}
	if got.Answers["budget"] != "budget is $50k" {
		t.Errorf("unexpected answers %v", got.Answers)
	}

	status, _ = s.LeadStatus(ctx, clientID)
	if status != "hot" {
		t.Errorf("expected lead status hot, got %q", status)
	}
}

func TestIntegration_ActiveQuestions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prefix := "it-" + uuid.New().String()[:8]

	qs := []question.Question{
		{ID: prefix + "-b", Text: "When?", OrderIndex: 100002, ScoringWeight: 1, IsActive: true},
		{ID: prefix + "-a", Text: "Budget?", OrderIndex: 100001, ScoringWeight: 3, IsActive: true},
		{ID: prefix + "-off", Text: "Retired", OrderIndex: 100003, ScoringWeight: 1, IsActive: false},
	}
	for _, q := range qs {
		if err := s.UpsertQuestion(ctx, q); err != nil {
			t.Fatalf("UpsertQuestion: %v", err)
		}
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM qualification_questions WHERE id LIKE $1", prefix+"%")
	})

	got, err := s.ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("ActiveQuestions: %v", err)
	}

	var ours []question.Question
	for _, q := range got {
		if len(q.ID) > len(prefix) && q.ID[:len(prefix)] == prefix {
			ours = append(ours, q)
		}
	}
	if len(ours) != 2 {
		t.Fatalf("expected 2 active questions, got %d", len(ours))
	}
	if ours[0].ID != prefix+"-a" || ours[0].ScoringWeight != 3 {
		t.Errorf("unexpected first question %+v", ours[0])
	}
}

func TestIntegration_ReplaceQuestionsDeactivatesMissing(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	prefix := "it-" + uuid.New().String()[:8]
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM qualification_questions WHERE id LIKE $1", prefix+"%")
	})

	first := []question.Question{
		{ID: prefix + "-old-1", Text: "Budget?", OrderIndex: 1, ScoringWeight: 1, IsActive: true},
		{ID: prefix + "-old-2", Text: "When?", OrderIndex: 2, ScoringWeight: 1, IsActive: true},
	}
	if err := s.ReplaceQuestions(ctx, first); err != nil {
		t.Fatalf("ReplaceQuestions first: %v", err)
	}

	// Same order indices under new ids.
	second := []question.Question{
		{ID: prefix + "-new-1", Text: "Budget range?", OrderIndex: 1, ScoringWeight: 2, IsActive: true},
		{ID: prefix + "-new-2", Text: "Go-live date?", OrderIndex: 2, ScoringWeight: 1, IsActive: true},
	}
	if err := s.ReplaceQuestions(ctx, second); err != nil {
		t.Fatalf("ReplaceQuestions second: %v", err)
	}

	got, err := s.ActiveQuestions(ctx)
	if err != nil {
		t.Fatalf("ActiveQuestions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active questions, got %d: %+v", len(got), got)
	}
	if got[0].ID != prefix+"-new-1" || got[1].ID != prefix+"-new-2" {
		t.Errorf("unexpected active ids %q, %q", got[0].ID, got[1].ID)
	}
	if _, err := question.NewSet(got); err != nil {
		t.Errorf("active configuration should be valid after replace: %v", err)
	}

	var active bool
	err = s.pool.QueryRow(ctx, "SELECT is_active FROM qualification_questions WHERE id = $1", prefix+"-old-1").Scan(&active)
	if err != nil {
		t.Fatalf("select old question: %v", err)
	}
	if active {
		t.Error("expected question missing from the import to be deactivated")
	}
}
