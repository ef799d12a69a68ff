package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/vytor/sqlflash/internal/errors"
	"github.com/vytor/sqlflash/internal/logger"
	"github.com/vytor/sqlflash/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response: %v", err)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}

func queryLevel(r *http.Request) (models.Level, error) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		return "", errors.NewValidationError("level", "is required")
	}
	level, err := models.ParseLevel(raw)
	if err != nil {
		return "", errors.NewValidationError("level", "must be one of basic, intermediate, advanced, expert")
	}
	return level, nil
}
