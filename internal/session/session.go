package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/extractor"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
)

var (
	ErrUnknownQuestion = errors.New("question is not part of this session")
	ErrNotAtSummary    = errors.New("session is not on the summary step")
)

// Config holds what a session needs at start. Questions is frozen for the
// session's lifetime.
type Config struct {
	ClientID    string
	RepID       string
	Questions   *question.Set
	Scorer      *scoring.Engine
	Extractor   *extractor.Extractor
	MergePolicy MergePolicy
}

// Session is one rep's qualification workflow for a single lead. It is not
// safe for concurrent use.
type Session struct {
	ID       uuid.UUID
	ClientID string
	RepID    string

	questions  *question.Set
	scorer     *scoring.Engine
	extractor  *extractor.Extractor
	policy     MergePolicy
	answers    question.Answers
	transcript string
	step       int
}

func New(cfg Config) *Session {
	return &Session{
		ID:        uuid.New(),
		ClientID:  cfg.ClientID,
		RepID:     cfg.RepID,
		questions: cfg.Questions,
		scorer:    cfg.Scorer,
		extractor: cfg.Extractor,
		policy:    cfg.MergePolicy,
		answers:   make(question.Answers),
	}
}

// Questions returns the session's active questions in step order.
func (s *Session) Questions() []question.Question {
	return s.questions.Questions()
}

// Step returns the current step. With no questions, the first step is the summary.
func (s *Session) Step() Step {
	if s.step >= s.questions.Len() {
		return SummaryStep{Position: s.questions.Len()}
	}
	return QuestionStep{Position: s.step, Question: s.questions.At(s.step)}
}

// Next advances one step, stopping at the summary.
func (s *Session) Next() Step {
	if s.step < s.questions.Len() {
		s.step++
	}
	return s.Step()
}

// Prev goes back one step, stopping at the first question.
func (s *Session) Prev() Step {
	if s.step > 0 {
		s.step--
	}
	return s.Step()
}

// Progress is (step+1)/(N+1), for display only.
func (s *Session) Progress() float64 {
	return float64(s.step+1) / float64(s.questions.Len()+1)
}

// SetAnswer records the rep's answer for questionID at any step.
func (s *Session) SetAnswer(questionID, text string) error {
	if !s.questions.Has(questionID) {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	s.answers[questionID] = text
	return nil
}

// Answer returns the current answer for questionID ("" if unanswered).
func (s *Session) Answer(questionID string) string {
	return s.answers[questionID]
}

// Answers returns a copy of the current answers.
func (s *Session) Answers() question.Answers {
	return s.answers.Clone()
}

func (s *Session) Transcript() string {
	return s.transcript
}

// ApplyExtraction stores the transcript and merges answers extracted from it
// under the session's merge policy. It returns the IDs whose answer changed.
func (s *Session) ApplyExtraction(transcript string) []string {
	s.transcript = transcript
	extracted := s.extractor.Extract(s.questions.Questions(), transcript)
	return Merge(s.answers, extracted, s.policy)
}

// Preview scores the current answers without requiring the summary step.
func (s *Session) Preview() scoring.Result {
	return s.scorer.Score(s.questions.Questions(), s.answers)
}

// Summary returns the save handle, available only on the summary step.
func (s *Session) Summary() (*Summary, error) {
	if _, ok := s.Step().(SummaryStep); !ok {
		return nil, ErrNotAtSummary
	}
	return &Summary{session: s}, nil
}
