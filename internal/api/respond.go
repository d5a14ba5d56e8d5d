package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/qualifier/internal/processor"
	"github.com/MikeSquared-Agency/qualifier/internal/question"
	"github.com/MikeSquared-Agency/qualifier/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrQuestionConfig):
		return http.StatusInternalServerError
	case errors.Is(err, processor.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotAtSummary):
		return http.StatusConflict
	case errors.Is(err, processor.ErrMissingClient),
		errors.Is(err, session.ErrUnknownQuestion),
		errors.Is(err, question.ErrEmptyID),
		errors.Is(err, question.ErrDuplicateID),
		errors.Is(err, question.ErrDuplicateOrder),
		errors.Is(err, question.ErrInvalidWeight):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// maxBodyBytes bounds request bodies, transcripts included.
const maxBodyBytes = 4 << 20

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
