package extractor

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Extractor pre-fills answers from a call transcript using per-category
// patterns with a keyword-sentence fallback. Safe for concurrent use.
type Extractor struct {
	categories    []compiledCategory
	stopWords     map[string]bool
	minKeywordLen int
	logger        *slog.Logger
}

func New(rules Rules, logger *slog.Logger) (*Extractor, error) {
	cats, stop, err := rules.compile()
	if err != nil {
		return nil, fmt.Errorf("compile extraction rules: %w", err)
	}
	return &Extractor{
		categories:    cats,
		stopWords:     stop,
		minKeywordLen: rules.MinKeywordLen,
		logger:        logger,
	}, nil
}

// MustNew is New for built-in rules that are known to be valid.
func MustNew(rules Rules, logger *slog.Logger) *Extractor {
	e, err := New(rules, logger)
	if err != nil {
		panic(err)
	}
	return e
}

// Extract returns answers for the active questions it could fill. Questions
// with no match are absent from the result, never mapped to "".
func (e *Extractor) Extract(questions []question.Question, transcript string) question.Answers {
	answers := make(question.Answers)
	for _, m := range e.ExtractMatches(questions, transcript) {
		answers[m.QuestionID] = m.Answer
	}
	return answers
}

// ExtractMatches is Extract with the category that produced each answer.
func (e *Extractor) ExtractMatches(questions []question.Question, transcript string) []Match {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}

	var sentences []string
	var matches []Match
	for _, q := range questions {
		if !q.IsActive {
			continue
		}

		category := e.Classify(q.Text)
		var answer string
		if re := e.pattern(category); re != nil {
			answer = strings.TrimSpace(re.FindString(transcript))
		}
		if answer == "" {
			if sentences == nil {
				sentences = splitSentences(transcript)
			}
			answer = e.fallback(q.Text, sentences)
			if answer != "" {
				category = CategoryFallback
			}
		}
		if answer == "" {
			continue
		}
		matches = append(matches, Match{QuestionID: q.ID, Category: category, Answer: answer})
	}

	e.logger.Info("extraction complete",
		"questions", len(questions),
		"matched", len(matches),
		"transcript_len", len(transcript),
	)
	return matches
}

// Classify returns the first category whose question terms appear in text,
// or CategoryFallback.
func (e *Extractor) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, c := range e.categories {
		for _, term := range c.terms {
			if strings.Contains(lower, term) {
				return c.name
			}
		}
	}
	return CategoryFallback
}

func (e *Extractor) pattern(category string) *regexp.Regexp {
	for _, c := range e.categories {
		if c.name == category {
			return c.re
		}
	}
	return nil
}

func (e *Extractor) fallback(questionText string, sentences []string) string {
	keywords := e.keywords(questionText)
	if len(keywords) == 0 {
		return ""
	}
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return s
			}
		}
	}
	return ""
}

func (e *Extractor) keywords(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, w := range words {
		if utf8.RuneCountInString(w) <= e.minKeywordLen || e.stopWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

func splitSentences(transcript string) []string {
	parts := sentenceSplit.Split(transcript, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
