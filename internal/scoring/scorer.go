package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

const (
	lengthRamp      = 50.0
	maxAnswerScore  = 5.0
	positiveFloor   = 4.0
	negativeCeiling = 2.0
	scale           = 20.0
)

// Result is the aggregate qualification outcome for one set of answers.
type Result struct {
	Score            int    `json:"score"`
	Status           Status `json:"status"`
	NextAction       string `json:"next_action"`
	IsHotDeal        bool   `json:"is_hot_deal"`
	FollowUpRequired bool   `json:"follow_up_required"`
}

// Engine scores answers against weighted questions. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	positive   []*regexp.Regexp
	negative   []*regexp.Regexp
	thresholds Thresholds
}

func New(rules Rules) (*Engine, error) {
	if err := rules.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("validate thresholds: %w", err)
	}
	pos, err := compileKeywords(rules.PositiveKeywords)
	if err != nil {
		return nil, fmt.Errorf("positive keywords: %w", err)
	}
	neg, err := compileKeywords(rules.NegativeKeywords)
	if err != nil {
		return nil, fmt.Errorf("negative keywords: %w", err)
	}
	return &Engine{positive: pos, negative: neg, thresholds: rules.Thresholds}, nil
}

// MustNew is New for built-in rules that are known to be valid.
func MustNew(rules Rules) *Engine {
	e, err := New(rules)
	if err != nil {
		panic(err)
	}
	return e
}

// Thresholds returns the tier table the engine classifies with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Score computes the weighted 0-100 score over active questions. Questions
// with an empty answer are skipped entirely rather than counted as zero.
func (e *Engine) Score(questions []question.Question, answers question.Answers) Result {
	var totalScore, totalWeight float64

	for _, q := range questions {
		if !q.IsActive {
			continue
		}
		a := strings.TrimSpace(answers[q.ID])
		if a == "" {
			continue
		}
		totalScore += e.AnswerScore(a) * q.ScoringWeight
		totalWeight += q.ScoringWeight
	}

	score := 0
	if totalWeight > 0 {
		score = int(math.Round(totalScore / totalWeight * scale))
	}
	score = clamp(score)

	tier := e.thresholds.Classify(score)
	return Result{
		Score:            score,
		Status:           tier.Status,
		NextAction:       tier.NextAction,
		IsHotDeal:        score >= e.thresholds.HotDealMin,
		FollowUpRequired: tier.FollowUp,
	}
}

// AnswerScore is the unweighted 0-5 contribution of a single answer.
func (e *Engine) AnswerScore(answer string) float64 {
	a := strings.TrimSpace(answer)
	if a == "" {
		return 0
	}

	score := math.Min(float64(utf8.RuneCountInString(a))/lengthRamp, 1) * maxAnswerScore

	if k := countMatches(e.positive, a); k > 0 {
		score = math.Max(score, positiveFloor+math.Min(float64(k), 1))
	}

	// Negative check runs last and is an authoritative ceiling.
	if countMatches(e.negative, a) > 0 {
		score = math.Min(score, negativeCeiling)
	}
	return score
}

func countMatches(patterns []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// compileKeywords builds case-insensitive whole-word matchers. Multi-word
// keywords tolerate any run of whitespace between words. Boundaries are
// Unicode-aware, unlike \b which only knows ASCII word characters.
func compileKeywords(keywords []string) ([]*regexp.Regexp, error) {
	seen := make(map[string]bool, len(keywords))
	var out []*regexp.Regexp
	for _, kw := range keywords {
		words := strings.Fields(strings.ToLower(kw))
		if len(words) == 0 {
			continue
		}
		key := strings.Join(words, " ")
		if seen[key] {
			continue
		}
		seen[key] = true

		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		re, err := regexp.Compile(`(?i)(?:^|[^\p{L}\p{N}_])` + strings.Join(quoted, `\s+`) + `(?:$|[^\p{L}\p{N}_])`)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", kw, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
