package session

import "github.com/MikeSquared-Agency/qualifier/internal/question"

// Step is either a QuestionStep or the SummaryStep.
type Step interface {
	Index() int
	isStep()
}

// QuestionStep is the rep answering one question.
type QuestionStep struct {
	Position int
	Question question.Question
}

func (s QuestionStep) Index() int { return s.Position }
func (QuestionStep) isStep() {}

// SummaryStep follows the last question. It is the only step a session can
// be saved from.
type SummaryStep struct {
	Position int
}

func (s SummaryStep) Index() int { return s.Position }
func (SummaryStep) isStep() {}

// Kind names the step type for transport ("question" or "summary").
func Kind(s Step) string {
	if _, ok := s.(SummaryStep); ok {
		return "summary"
	}
	return "question"
}
