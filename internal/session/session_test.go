package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/extractor"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
)

type fakeWriter struct {
	err     error
	calls   int
	records []CallRecord
	id      uuid.UUID
}

func (f *fakeWriter) WriteCallRecord(ctx context.Context, rec CallRecord) (uuid.UUID, error) {
	f.calls++
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.records = append(f.records, rec)
	return f.id, nil
}

func newTestSession(t *testing.T, policy MergePolicy, qs ...question.Question) *Session {
	t.Helper()
	set, err := question.NewSet(qs)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	return New(Config{
		ClientID:    "client-1",
		RepID:       "rep-1",
		Questions:   set,
		Scorer:      scoring.MustNew(scoring.DefaultRules()),
		Extractor:   extractor.MustNew(extractor.DefaultRules(), slog.New(slog.NewTextHandler(io.Discard, nil))),
		MergePolicy: policy,
	})
}

func twoQuestions() []question.Question {
	return []question.Question{
		{ID: "q1", Text: "What is your budget?", OrderIndex: 1, ScoringWeight: 3, IsActive: true},
		{ID: "q2", Text: "When do you want to start?", OrderIndex: 2, ScoringWeight: 1, IsActive: true},
	}
}

func TestNavigation(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)

	step := s.Step()
	qs, ok := step.(QuestionStep)
	if !ok || qs.Position != 0 || qs.Question.ID != "q1" {
		t.Fatalf("expected first question step, got %#v", step)
	}

	// Prev at step 0 is a no-op.
	if got := s.Prev().Index(); got != 0 {
		t.Errorf("Prev from 0 = %d, want 0", got)
	}

	if got := s.Next(); got.Index() != 1 || Kind(got) != "question" {
		t.Errorf("expected question step 1, got %#v", got)
	}
	if got := s.Next(); Kind(got) != "summary" || got.Index() != 2 {
		t.Errorf("expected summary step 2, got %#v", got)
	}
	// Next from summary stays on summary.
	if got := s.Next(); got.Index() != 2 {
		t.Errorf("Next past summary = %d, want 2", got.Index())
	}
	if got := s.Prev(); got.Index() != 1 {
		t.Errorf("Prev from summary = %d, want 1", got.Index())
	}
}

func TestProgress(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)

	want := []float64{1.0 / 3, 2.0 / 3, 1}
	for i, w := range want {
		if got := s.Progress(); math.Abs(got-w) > 1e-9 {
			t.Errorf("step %d progress = %f, want %f", i, got, w)
		}
		s.Next()
	}
}

func TestSetAnswer(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)

	if err := s.SetAnswer("q2", "next month"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	if s.Step().Index() != 0 {
		t.Error("SetAnswer should not move the step")
	}
	if s.Answer("q2") != "next month" {
		t.Errorf("unexpected answer %q", s.Answer("q2"))
	}

	err := s.SetAnswer("nope", "x")
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("expected ErrUnknownQuestion, got %v", err)
	}

	// Answers returns a copy.
	a := s.Answers()
	a["q2"] = "changed"
	if s.Answer("q2") != "next month" {
		t.Error("Answers should return a copy")
	}
}

func TestApplyExtraction_PreferExisting(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)
	_ = s.SetAnswer("q1", "Rep typed this")

	changed := s.ApplyExtraction("Our budget is $50k. We need it within two weeks.")

	if s.Answer("q1") != "Rep typed this" {
		t.Errorf("manual answer overwritten: %q", s.Answer("q1"))
	}
	if s.Answer("q2") != "within two weeks" {
		t.Errorf("q2 = %q", s.Answer("q2"))
	}
	if len(changed) != 1 || changed[0] != "q2" {
		t.Errorf("changed = %v, want [q2]", changed)
	}
	if s.Transcript() == "" {
		t.Error("transcript should be stored")
	}
}

func TestApplyExtraction_PreferExtracted(t *testing.T) {
	s := newTestSession(t, PreferExtracted, twoQuestions()...)
	_ = s.SetAnswer("q1", "Rep typed this")

	changed := s.ApplyExtraction("Our budget is $50k. We need it within two weeks.")
	sort.Strings(changed)

	if s.Answer("q1") != "budget is $50k" {
		t.Errorf("q1 = %q", s.Answer("q1"))
	}
	if len(changed) != 2 {
		t.Errorf("changed = %v", changed)
	}
}

func TestApplyExtraction_MissDoesNotClear(t *testing.T) {
	s := newTestSession(t, PreferExtracted, twoQuestions()...)
	_ = s.SetAnswer("q1", "about forty grand")

	s.ApplyExtraction("Nothing useful here")

	if s.Answer("q1") != "about forty grand" {
		t.Errorf("miss should not clear the answer, got %q", s.Answer("q1"))
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing question.Answers
		policy   MergePolicy
		want     question.Answers
		changed  int
	}{
		{"fills gaps", question.Answers{}, PreferExisting, question.Answers{"a": "x"}, 1},
		{"blank counts as gap", question.Answers{"a": "  "}, PreferExisting, question.Answers{"a": "x"}, 1},
		{"keeps existing", question.Answers{"a": "mine"}, PreferExisting, question.Answers{"a": "mine"}, 0},
		{"overwrites", question.Answers{"a": "mine"}, PreferExtracted, question.Answers{"a": "x"}, 1},
		{"same value not reported", question.Answers{"a": "x"}, PreferExtracted, question.Answers{"a": "x"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := Merge(tt.existing, question.Answers{"a": "x", "b": ""}, tt.policy)
			if len(changed) != tt.changed {
				t.Errorf("changed = %v, want %d entries", changed, tt.changed)
			}
			if tt.existing["a"] != tt.want["a"] {
				t.Errorf("a = %q, want %q", tt.existing["a"], tt.want["a"])
			}
			if _, ok := tt.existing["b"]; ok {
				t.Error("empty extraction should not create a key")
			}
		})
	}
}

func TestParseMergePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MergePolicy
		wantErr bool
	}{
		{"", PreferExisting, false},
		{"prefer_existing", PreferExisting, false},
		{"prefer_extracted", PreferExtracted, false},
		{"last_write_wins", PreferExisting, true},
	}
	for _, tt := range tests {
		got, err := ParseMergePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseMergePolicy(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestSummary_OnlyAtSummaryStep(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)

	if _, err := s.Summary(); !errors.Is(err, ErrNotAtSummary) {
		t.Fatalf("expected ErrNotAtSummary, got %v", err)
	}

	s.Next()
	s.Next()
	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	// Navigating back invalidates the handle.
	s.Prev()
	if _, err := sum.Save(context.Background(), &fakeWriter{}); !errors.Is(err, ErrNotAtSummary) {
		t.Errorf("expected ErrNotAtSummary after leaving summary, got %v", err)
	}
}

func TestSave_EndToEnd(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)
	_ = s.SetAnswer("q1", "Yes, we have budget approved and need this urgently")
	_ = s.SetAnswer("q2", "")
	s.ApplyExtraction("Call notes without dates")
	s.Next()
	s.Next()

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	w := &fakeWriter{id: uuid.New()}
	rec, err := sum.Save(context.Background(), w)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if rec.ID != w.id {
		t.Errorf("record id = %s, want %s", rec.ID, w.id)
	}
	if rec.Score != 100 || rec.Status != scoring.StatusHot {
		t.Errorf("expected 100/hot, got %d/%s", rec.Score, rec.Status)
	}
	if !rec.IsHotDeal || !rec.FollowUpRequired {
		t.Error("expected hot deal with follow up")
	}
	if rec.ClientID != "client-1" || rec.RepID != "rep-1" || rec.SessionID != s.ID {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if rec.Transcript != "Call notes without dates" {
		t.Errorf("unexpected transcript %q", rec.Transcript)
	}
	if s.Step().Index() != 2 {
		t.Error("Save should not move the step")
	}
}

func TestSave_WriterFailureIsRetryable(t *testing.T) {
	s := newTestSession(t, PreferExisting, twoQuestions()...)
	_ = s.SetAnswer("q1", "definitely")
	s.Next()
	s.Next()
	sum, _ := s.Summary()

	w := &fakeWriter{err: errors.New("connection refused")}
	if _, err := sum.Save(context.Background(), w); err == nil {
		t.Fatal("expected error from failing writer")
	}
	if s.Answer("q1") != "definitely" || s.Step().Index() != 2 {
		t.Error("session state changed after failed save")
	}

	w.err = nil
	rec, err := sum.Save(context.Background(), w)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if w.calls != 2 || rec.Score != 100 {
		t.Errorf("calls = %d, score = %d", w.calls, rec.Score)
	}
}

func TestZeroQuestions(t *testing.T) {
	s := newTestSession(t, PreferExisting)

	if Kind(s.Step()) != "summary" {
		t.Fatalf("expected summary step with no questions, got %#v", s.Step())
	}
	if s.Progress() != 1 {
		t.Errorf("progress = %f, want 1", s.Progress())
	}

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	rec, err := sum.Save(context.Background(), &fakeWriter{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.Score != 0 || rec.Status != scoring.StatusCold || rec.NextAction != "Archive lead" {
		t.Errorf("expected 0/cold/archive, got %+v", rec)
	}
}
