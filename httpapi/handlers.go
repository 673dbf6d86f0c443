package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"caseflow/cases"
)

type caseResponse struct {
	ID         string  `json:"id"`
	ReferrerID string  `json:"referrer_id"`
	ExpertID   *string `json:"expert_id"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

type assignExpertRequest struct {
	ExpertID *string `json:"expert_id"`
}

type assignmentResponse struct {
	CaseID     string `json:"case_id"`
	ExpertID   string `json:"expert_id"`
	AssignedAt string `json:"assigned_at"`
}

type healthResponse struct {
	Status string `json:"status"`
	App    string `json:"app,omitempty"`
}

func newCaseResponse(c cases.Case) caseResponse {
	return caseResponse{
		ID:         c.ID,
		ReferrerID: c.ReferrerID,
		ExpertID:   c.ExpertID,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (s *Server) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if strings.TrimSpace(caseID) == "" {
		s.writeError(w, r, cases.NewValidationError("", "case id is required"))
		return
	}

	c, err := s.caseService.GetCase(r.Context(), caseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCaseResponse(c))
}

func (s *Server) handleAssignExpert(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if strings.TrimSpace(caseID) == "" {
		s.writeError(w, r, cases.NewValidationError("", "case id is required"))
		return
	}

	expertID, err := decodeAssignExpert(r.Body, caseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	assignment, err := s.caseService.AssignExpert(r.Context(), caseID, expertID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "expert assigned",
		zap.String("case_id", assignment.CaseID),
		zap.String("expert_id", assignment.ExpertID),
	)
	writeJSON(w, http.StatusOK, assignmentResponse{
		CaseID:     assignment.CaseID,
		ExpertID:   assignment.ExpertID,
		AssignedAt: assignment.AssignedAt.UTC().Format(time.RFC3339Nano),
	})
}

func decodeAssignExpert(body io.Reader, caseID string) (string, error) {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req assignExpertRequest
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return "", cases.NewValidationError(caseID, "request body is required")
		}
		return "", cases.NewValidationError(caseID, "invalid request body: "+err.Error())
	}
	if dec.More() {
		return "", cases.NewValidationError(caseID, "request body must contain a single JSON object")
	}
	if req.ExpertID == nil {
		return "", cases.NewValidationError(caseID, "expert_id is required")
	}
	if strings.TrimSpace(*req.ExpertID) == "" {
		return "", cases.NewValidationError(caseID, "expert_id must not be blank")
	}
	return *req.ExpertID, nil
}
