package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 60 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))
		r.Use(userMiddleware)

		r.Route("/flashcards", func(r chi.Router) {
			r.Get("/", s.handleListFlashcards)
			r.Get("/count", s.handleCountFlashcards)
			r.Get("/completion", s.handleCompletion)
			r.Post("/generate", s.handleGenerateFlashcards)
			r.Get("/{id}/options", s.handleOptions)
			r.Post("/{id}/attempts", s.handleRecordAttempt)
			r.Get("/{id}/progress", s.handleCardProgress)
		})
		r.Get("/stats", s.handleStats)

		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", s.handleStartAssessment)
			r.Get("/questions", s.handleListQuestions)
			r.Post("/{id}/responses", s.handleSubmitResponse)
			r.Post("/{id}/complete", s.handleCompleteAssessment)
		})
		r.Get("/skill-profile", s.handleSkillProfile)
	})

	return r
}
