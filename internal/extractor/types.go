package extractor

// Match records how a single question's answer was derived.
type Match struct {
	QuestionID string `json:"question_id"`
	Category   string `json:"category"`
	Answer     string `json:"answer"`
}
