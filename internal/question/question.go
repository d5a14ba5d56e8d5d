package question

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyID        = errors.New("question id is empty")
	ErrDuplicateID    = errors.New("duplicate question id")
	ErrDuplicateOrder = errors.New("duplicate order index")
	ErrInvalidWeight  = errors.New("scoring weight must be positive")
)

// Question is a scripted qualification prompt with a scoring weight.
type Question struct {
	ID            string  `json:"id" yaml:"id"`
	Text          string  `json:"text" yaml:"text"`
	ScriptText    string  `json:"script_text,omitempty" yaml:"script_text,omitempty"`
	OrderIndex    int     `json:"order_index" yaml:"order_index"`
	ScoringWeight float64 `json:"scoring_weight" yaml:"scoring_weight"`
	IsActive      bool    `json:"is_active" yaml:"is_active"`
}

// Answers maps question ID to free-text answer. A missing key is an empty answer.
type Answers map[string]string

// Clone returns a copy that can be mutated independently.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Set is the ordered, validated, active subset of a question configuration.
type Set struct {
	questions []Question
	byID      map[string]int
}

// NewSet validates qs and keeps only active questions, sorted by OrderIndex.
// Inactive questions are not validated beyond their ID.
func NewSet(qs []Question) (*Set, error) {
	seenID := make(map[string]bool, len(qs))
	seenOrder := make(map[int]string, len(qs))
	var active []Question

	for _, q := range qs {
		if q.ID == "" {
			return nil, ErrEmptyID
		}
		if seenID[q.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, q.ID)
		}
		seenID[q.ID] = true

		if !q.IsActive {
			continue
		}
		if q.ScoringWeight <= 0 || math.IsNaN(q.ScoringWeight) || math.IsInf(q.ScoringWeight, 0) {
			return nil, fmt.Errorf("%w: %s has weight %g", ErrInvalidWeight, q.ID, q.ScoringWeight)
		}
		if other, ok := seenOrder[q.OrderIndex]; ok {
			return nil, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateOrder, q.OrderIndex, other, q.ID)
		}
		seenOrder[q.OrderIndex] = q.ID
		active = append(active, q)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].OrderIndex < active[j].OrderIndex
	})

	byID := make(map[string]int, len(active))
	for i, q := range active {
		byID[q.ID] = i
	}
	return &Set{questions: active, byID: byID}, nil
}

// Len returns the number of active questions.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.questions)
}

// At returns the i-th question in presentation order.
func (s *Set) At(i int) Question {
	return s.questions[i]
}

// Questions returns a copy of the active questions in order.
func (s *Set) Questions() []Question {
	if s == nil {
		return nil
	}
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Has reports whether id is an active question in the set.
func (s *Set) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.byID[id]
	return ok
}
