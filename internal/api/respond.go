/**
 * @description
 * This file contains the response envelope and the error translator shared by
 * every handler. All responses use the shape {success, message?, data?,
 * count?}; errors are mapped to HTTP statuses from their type, and unknown
 * errors are logged and hidden behind a generic 500.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/store"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, env envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		log.Printf("level=error component=api msg=\"failed to marshal response\" err=%v", err)
		http.Error(w, `{"success":false,"message":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}

// respondData writes a successful envelope around one record.
func respondData(w http.ResponseWriter, code int, data interface{}) {
	respondJSON(w, code, envelope{Success: true, Data: data})
}

// respondList writes a successful envelope around a collection with its count.
func respondList(w http.ResponseWriter, code int, data interface{}, count int) {
	respondJSON(w, code, envelope{Success: true, Data: data, Count: &count})
}

// respondMessage writes a successful envelope carrying only a message.
func respondMessage(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, envelope{Success: true, Message: message})
}

// respondError translates a service error into the envelope. Duplicate-key
// conflicts deliberately come back as 400 with a friendly message.
func respondError(w http.ResponseWriter, err error) {
	var validation app.ValidationError
	var forbidden app.ForbiddenError

	code := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.As(err, &validation),
		errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateNationalID),
		errors.Is(err, store.ErrDuplicateKraPin),
		errors.Is(err, store.ErrDuplicateTitleNumber):
		code, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrSessionExpired):
		code, message = http.StatusUnauthorized, err.Error()
	case errors.As(err, &forbidden), errors.Is(err, app.ErrAccountDisabled):
		code, message = http.StatusForbidden, err.Error()
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrParcelNotFound),
		errors.Is(err, store.ErrTransferNotFound),
		errors.Is(err, store.ErrNotificationNotFound),
		errors.Is(err, store.ErrDocumentNotFound):
		code, message = http.StatusNotFound, err.Error()
	default:
		log.Printf("level=error component=api msg=\"unhandled error\" err=%v", err)
	}

	respondJSON(w, code, envelope{Success: false, Message: message})
}

// decodeJSON parses a request body into dst, rejecting malformed payloads.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return app.Validationf("invalid request body")
	}
	return nil
}

// pathID parses the named chi URL parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, app.Validationf("invalid %s in URL", name)
	}
	return id, nil
}

// queryInt reads an integer query parameter, falling back on absence or junk.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// pagination reads the standard limit/offset pair with a capped default.
func pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	return limit, queryInt(r, "offset", 0)
}
