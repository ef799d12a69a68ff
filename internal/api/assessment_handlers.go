package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/services"
)

type completeRequest struct {
	TimeSpentSeconds int `json:"timeSpentSeconds"`
}

func (s *Server) handleStartAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.AssessmentService.Start(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, a)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.AssessmentService.ListQuestions(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if questions == nil {
		questions = []models.AssessmentQuestion{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"questions": questions})
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var in services.ResponseInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	g, err := s.AssessmentService.SubmitResponse(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, g)
}

func (s *Server) handleCompleteAssessment(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.AssessmentService.Complete(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"), req.TimeSpentSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleSkillProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.AssessmentService.GetSkillProfile(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}
