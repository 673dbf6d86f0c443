package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"caseflow/cases"
)

const genericErrorDetail = "An internal error occurred"

type errorResponse struct {
	Detail string `json:"detail"`
}

func mapErr(err error) int {
	switch {
	case errors.Is(err, cases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cases.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, cases.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErr(err)
	detail, ok := cases.Message(err)
	if status == http.StatusInternalServerError || !ok {
		s.logger.Error(r.Context(), "request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		detail = genericErrorDetail
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
