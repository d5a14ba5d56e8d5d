package session

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

// MergePolicy decides what happens when extraction produces an answer for a
// question the rep has already answered.
type MergePolicy int

const (
	// PreferExisting keeps non-empty answers and only fills gaps.
	PreferExisting MergePolicy = iota
	// PreferExtracted overwrites existing answers with extracted ones.
	PreferExtracted
)

func (p MergePolicy) String() string {
	switch p {
	case PreferExtracted:
		return "prefer_extracted"
	default:
		return "prefer_existing"
	}
}

// ParseMergePolicy accepts "prefer_existing" (or "") and "prefer_extracted".
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch s {
	case "", "prefer_existing":
		return PreferExisting, nil
	case "prefer_extracted":
		return PreferExtracted, nil
	default:
		return PreferExisting, fmt.Errorf("unknown merge policy %q", s)
	}
}

// Merge applies extracted onto existing in place and returns the IDs whose
// answer changed.
func Merge(existing, extracted question.Answers, policy MergePolicy) []string {
	var changed []string
	for id, text := range extracted {
		if text == "" {
			continue
		}
		cur := existing[id]
		if policy == PreferExisting && strings.TrimSpace(cur) != "" {
			continue
		}
		if cur == text {
			continue
		}
		existing[id] = text
		changed = append(changed, id)
	}
	return changed
}
