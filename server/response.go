package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"countries/service"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnw("error writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// errorText holds the endpoint specific wording for not found and conflict
// responses. A zero conflictStatus means 409.
type errorText struct {
	notFound       string
	conflict       string
	conflictStatus int
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, text errorText) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		problems := verr.Problems()
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: strings.Join(problems, "; "), Errors: problems})
	case errors.Is(err, service.ErrNotFound):
		s.writeError(w, http.StatusNotFound, orDefault(text.notFound, err.Error()))
	case errors.Is(err, service.ErrConflict):
		status := text.conflictStatus
		if status == 0 {
			status = http.StatusConflict
		}
		s.writeError(w, status, orDefault(text.conflict, err.Error()))
	default:
		s.log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "requestId", requestIDFrom(r.Context()), "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
