/**
 * @description
 * HTTP handlers for admin account management: staff creation, listing,
 * profile updates, the county-admin approval gate, deactivation and the
 * NLC-admin delete.
 */

package api

import (
	"net/http"

	"github.com/ardhi/registry-service/internal/domain"
)

// CreateUserHandler provisions an account with an explicit role.
func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	created, err := h.service.CreateUser(r.Context(), user, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// ListUsersHandler lists accounts, optionally filtered by ?role=.
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	var role *domain.Role
	if raw := r.URL.Query().Get("role"); raw != "" {
		parsed := domain.Role(raw)
		role = &parsed
	}
	users, err := h.service.ListUsers(r.Context(), role, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, users, len(users))
}

// GetUserHandler loads one account.
func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// UpdateUserHandler applies the mutable profile fields.
func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req domain.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// ApproveCountyAdminHandler lifts the approval gate on a county admin.
func (h *Handler) ApproveCountyAdminHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.service.ApproveCountyAdmin(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// DeactivateUserHandler disables an account.
func (h *Handler) DeactivateUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.service.DeactivateUser(r.Context(), actor, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// DeleteUserHandler removes an NLC admin record.
func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), actor, id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "User deleted")
}
