package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
	"github.com/vytor/sqlflash/internal/study"
)

const defaultPageSize = study.DefaultBatchSize

type cardsPage struct {
	Cards  []models.Card `json:"cards"`
	Total  int           `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

type optionsResponse struct {
	CardID   string                `json:"cardId"`
	Options  []models.AnswerOption `json:"options"`
	Fallback bool                  `json:"fallback"`
}

type attemptRequest struct {
	Correct *bool `json:"correct"`
}

type generateRequest struct {
	Level models.Level `json:"level"`
	Count int          `json:"count"`
	Async bool         `json:"async"`
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	level, err := queryLevel(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.FlashcardService.ListCards(r.Context(), level, offset, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	total, err := s.FlashcardService.CountCards(r.Context(), level)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, r, http.StatusOK, cardsPage{Cards: cards, Total: total, Offset: offset, Limit: limit})
}

func (s *Server) handleCountFlashcards(w http.ResponseWriter, r *http.Request) {
	level, err := queryLevel(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	n, err := s.FlashcardService.CountCards(r.Context(), level)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"level": level, "count": n})
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	level, err := queryLevel(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	loaded, err := queryInt(r, "loaded", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	c, err := s.FlashcardService.Completion(r.Context(), userFromContext(r.Context()), level, loaded)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	opts, fallback, err := s.FlashcardService.GetOptions(r.Context(), userFromContext(r.Context()), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, optionsResponse{CardID: id, Options: opts, Fallback: fallback})
}

func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req attemptRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Correct == nil {
		handleError(w, r, errors.NewValidationError("correct", "is required"))
		return
	}

	p, err := s.FlashcardService.RecordAttempt(r.Context(), userFromContext(r.Context()), id, *req.Correct)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("attempt recorded: card=%s, correct=%t", id, *req.Correct)
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleCardProgress(w http.ResponseWriter, r *http.Request) {
	p, err := s.FlashcardService.GetCardProgress(r.Context(), userFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleGenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if !req.Level.Valid() {
		handleError(w, r, errors.NewValidationError("level", "must be one of basic, intermediate, advanced, expert"))
		return
	}
	if req.Count == 0 {
		req.Count = study.DefaultGenerateCount
	}

	if req.Async && s.GenerationQueue != nil {
		if err := s.GenerationQueue.EnqueueGeneration(req.Level, req.Count); err != nil {
			handleError(w, r, errors.NewInternalError(err))
			return
		}
		log.Info("queued generation of %d %s cards", req.Count, req.Level)
		writeJSON(w, r, http.StatusAccepted, map[string]any{"queued": true, "level": req.Level, "count": req.Count})
		return
	}

	cards, err := s.FlashcardService.GenerateCards(r.Context(), req.Level, req.Count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"cards": cards, "count": len(cards)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.FlashcardService.GetStats(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}
