package question

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestNewSet_FiltersAndOrders(t *testing.T) {
	set, err := NewSet([]Question{
		{ID: "q3", OrderIndex: 3, ScoringWeight: 1, IsActive: true},
		{ID: "q1", OrderIndex: 1, ScoringWeight: 2, IsActive: true},
		{ID: "off", OrderIndex: 1, ScoringWeight: 0, IsActive: false},
		{ID: "q2", OrderIndex: 2, ScoringWeight: 5, IsActive: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 active questions, got %d", set.Len())
	}
	for i, want := range []string{"q1", "q2", "q3"} {
		if got := set.At(i).ID; got != want {
			t.Errorf("At(%d) = %q, want %q", i, got, want)
		}
	}
	if set.Has("off") {
		t.Error("inactive question should not be in the set")
	}
	if !set.Has("q2") {
		t.Error("expected q2 in the set")
	}
}

func TestNewSet_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		qs   []Question
		want error
	}{
		{
			name: "empty id",
			qs:   []Question{{OrderIndex: 1, ScoringWeight: 1, IsActive: true}},
			want: ErrEmptyID,
		},
		{
			name: "duplicate id",
			qs: []Question{
				{ID: "a", OrderIndex: 1, ScoringWeight: 1, IsActive: true},
				{ID: "a", OrderIndex: 2, ScoringWeight: 1, IsActive: true},
			},
			want: ErrDuplicateID,
		},
		{
			name: "duplicate order index",
			qs: []Question{
				{ID: "a", OrderIndex: 1, ScoringWeight: 1, IsActive: true},
				{ID: "b", OrderIndex: 1, ScoringWeight: 1, IsActive: true},
			},
			want: ErrDuplicateOrder,
		},
		{
			name: "negative weight",
			qs:   []Question{{ID: "a", OrderIndex: 1, ScoringWeight: -2, IsActive: true}},
			want: ErrInvalidWeight,
		},
		{
			name: "nan weight",
			qs:   []Question{{ID: "a", OrderIndex: 1, ScoringWeight: math.NaN(), IsActive: true}},
			want: ErrInvalidWeight,
		},
		{
			name: "infinite weight",
			qs:   []Question{{ID: "a", OrderIndex: 1, ScoringWeight: math.Inf(1), IsActive: true}},
			want: ErrInvalidWeight,
		},
		{
			name: "zero weight",
			qs:   []Question{{ID: "a", OrderIndex: 1, ScoringWeight: 0, IsActive: true}},
			want: ErrInvalidWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(tt.qs)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewSet() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewSet_Empty(t *testing.T) {
	set, err := NewSet(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("expected empty set, got %d", set.Len())
	}
}

func TestAnswers_Clone(t *testing.T) {
	a := Answers{"q1": "yes"}
	b := a.Clone()
	b["q1"] = "no"
	if a["q1"] != "yes" {
		t.Error("Clone should not share storage")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	doc := `questions:
  - id: budget
    text: What budget have you allocated?
    order_index: 1
    scoring_weight: 3
    is_active: true
  - id: timeline
    text: When do you need this live?
    script_text: Ask about their go-live date
    order_index: 2
    scoring_weight: 2
    is_active: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	qs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(qs))
	}
	if qs[1].ScriptText != "Ask about their go-live date" {
		t.Errorf("unexpected script text %q", qs[1].ScriptText)
	}
	if qs[0].ScoringWeight != 3 {
		t.Errorf("expected weight 3, got %g", qs[0].ScoringWeight)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
