package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/qualifier/internal/processor"
)

type startRequest struct {
	ClientID string `json:"client_id"`
	RepID    string `json:"rep_id"`
}

type answerRequest struct {
	Text string `json:"text"`
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

type transcriptResponse struct {
	Session processor.View `json:"session"`
	Changed []string       `json:"changed"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	v, err := s.proc.Start(r.Context(), req.ClientID, req.RepID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.respondView(w, func() (processor.View, error) { return s.proc.Get(id) })
}

func (s *Server) setAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	qid := chi.URLParam(r, "questionID")
	s.respondView(w, func() (processor.View, error) { return s.proc.Answer(id, qid, req.Text) })
}

func (s *Server) nextStep(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.respondView(w, func() (processor.View, error) { return s.proc.Next(id) })
}

func (s *Server) prevStep(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.respondView(w, func() (processor.View, error) { return s.proc.Prev(id) })
}

func (s *Server) applyTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req transcriptRequest
	if err := decode(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	v, changed, err := s.proc.ApplyTranscript(id, req.Transcript)
	if err != nil {
		s.fail(w, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	writeJSON(w, http.StatusOK, transcriptResponse{Session: v, Changed: changed})
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	rec, err := s.proc.Save(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) abandonSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.proc.Abandon(id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondView(w http.ResponseWriter, fn func() (processor.View, error)) {
	v, err := fn()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		writeError(w, code, "internal error")
		return
	}
	writeError(w, code, err.Error())
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}
