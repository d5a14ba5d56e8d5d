package extractor

import (
	"fmt"
	"regexp"
	"strings"
)

// CategoryRule classifies a question by terms in its text and extracts an
// answer from the transcript with Pattern. The whole match is the answer.
type CategoryRule struct {
	Name          string   `yaml:"name"`
	QuestionTerms []string `yaml:"question_terms"`
	Pattern       string   `yaml:"pattern"`
}

// Rules is the injectable extraction configuration. Categories are tried in
// order and the first whose terms appear in the question text wins.
type Rules struct {
	Categories    []CategoryRule `yaml:"categories"`
	StopWords     []string       `yaml:"stop_words"`
	MinKeywordLen int            `yaml:"min_keyword_len"`
}

const (
	CategoryBudget   = "budget"
	CategoryTimeline = "timeline"
	CategoryDecision = "decision"
	CategoryPain     = "pain"
	CategoryFallback = "fallback"
)

// DefaultRules returns the built-in budget, timeline, decision and pain rules.
func DefaultRules() Rules {
	return Rules{
		Categories: []CategoryRule{
			{
				Name:          CategoryBudget,
				QuestionTerms: []string{"budget", "spend"},
				Pattern:       `(?i)budget[^.!?]{0,40}?(?:\$\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:k|m|thousand|million)\b)?|\d[\d,]*(?:\.\d+)?\s?(?:k|thousand|million)\b)`,
			},
			{
				Name:          CategoryTimeline,
				QuestionTerms: []string{"timeline", "when"},
				Pattern:       `(?i)\b(?:next\s+\w+|within\s+(?:(?:\d+|a|an|one|two|three|four|five|six|the\s+next)\s+)?\w+|\d+\s+months?|\d+\s+weeks?|quarter|immediately|soon)\b`,
			},
			{
				Name:          CategoryDecision,
				QuestionTerms: []string{"decision", "authority"},
				Pattern:       `(?i)\b(?:decision|authority|approv)\w*[^.!?]*|[^.!?]*\b(?:vp|director|manager|ceo|cto)\b[^.!?]*`,
			},
			{
				Name:          CategoryPain,
				QuestionTerms: []string{"pain", "problem", "challenge"},
				Pattern:       `(?i)\b(?:problem|challenge|issue|difficult|struggl)\w*[^.!?]*`,
			},
		},
		StopWords: []string{
			"the", "and", "for", "are", "but", "not", "you", "your", "yours",
			"what", "when", "where", "which", "who", "whom", "why", "how",
			"does", "did", "have", "has", "had", "with", "that", "this", "these",
			"those", "there", "their", "they", "them", "about", "would", "could",
			"should", "will", "can", "from", "into", "currently", "any", "our",
			"was", "were", "been", "being", "tell", "please", "like",
		},
		MinKeywordLen: 3,
	}
}

type compiledCategory struct {
	name  string
	terms []string
	re    *regexp.Regexp
}

func (r Rules) compile() ([]compiledCategory, map[string]bool, error) {
	cats := make([]compiledCategory, 0, len(r.Categories))
	for _, c := range r.Categories {
		if c.Name == "" {
			return nil, nil, fmt.Errorf("category rule without a name")
		}
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("compile %s pattern: %w", c.Name, err)
		}
		terms := make([]string, 0, len(c.QuestionTerms))
		for _, t := range c.QuestionTerms {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				terms = append(terms, t)
			}
		}
		cats = append(cats, compiledCategory{name: c.Name, terms: terms, re: re})
	}

	stop := make(map[string]bool, len(r.StopWords))
	for _, w := range r.StopWords {
		stop[strings.ToLower(w)] = true
	}
	return cats, stop, nil
}
