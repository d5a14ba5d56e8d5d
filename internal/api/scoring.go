package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/qualifier/internal/question"
)

type scoreRequest struct {
	Questions []question.Question `json:"questions"`
	Answers   question.Answers    `json:"answers"`
}

type extractRequest struct {
	Questions  []question.Question `json:"questions"`
	Transcript string              `json:"transcript"`
}

type extractResponse struct {
	Answers question.Answers `json:"answers"`
}

// score handles POST /api/v1/score.
func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	res, err := s.proc.Score(req.Questions, req.Answers)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// extract handles POST /api/v1/extract.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	answers, err := s.proc.Extract(req.Questions, req.Transcript)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, extractResponse{Answers: answers})
}
