/**
 * @description
 * HTTP handlers for the authentication endpoints: registration, login,
 * refresh rotation, logout and the current-user lookup.
 */

package api

import (
	"net/http"

	"github.com/ardhi/registry-service/internal/domain"
)

// RegisterHandler creates a citizen account.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

// LoginHandler verifies credentials and returns a token pair.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, tokens, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

// RefreshHandler rotates a refresh token into a fresh pair.
func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, tokens)
}

// LogoutHandler revokes every refresh session the caller holds.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	if err := h.service.Logout(r.Context(), user.ID); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Logged out")
}

// CurrentUserHandler returns the caller's own profile, re-read from the
// store so recent changes (approval, county) show up immediately.
func (h *Handler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	user, err := h.service.CurrentUser(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}
