package processor

import (
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/scoring"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

// View is a point-in-time snapshot of a session, safe to hand to callers
// after the session lock is released.
type View struct {
	ID         uuid.UUID          `json:"id"`
	ClientID   string             `json:"client_id"`
	RepID      string             `json:"rep_id"`
	Step       int                `json:"step"`
	Kind       string             `json:"kind"`
	Question   *question.Question `json:"question,omitempty"`
	Total      int                `json:"total_questions"`
	Progress   float64            `json:"progress"`
	Answers    question.Answers   `json:"answers"`
	Transcript string             `json:"transcript"`
	Result     *scoring.Result    `json:"result,omitempty"`
}

func newView(s *session.Session) View {
	step := s.Step()
	v := View{
		ID:         s.ID,
		ClientID:   s.ClientID,
		RepID:      s.RepID,
		Step:       step.Index(),
		Kind:       session.Kind(step),
		Total:      len(s.Questions()),
		Progress:   s.Progress(),
		Answers:    s.Answers(),
		Transcript: s.Transcript(),
	}
	switch st := step.(type) {
	case session.QuestionStep:
		q := st.Question
		v.Question = &q
	case session.SummaryStep:
		res := s.Preview()
		v.Result = &res
	}
	return v
}
