/**
 * @description
 * HTTP handlers for the recipient-facing notification endpoints.
 */

package api

import (
	"net/http"

	"github.com/ardhi/registry-service/internal/domain"
)

// ListNotificationsHandler lists the caller's notifications; ?unread=true
// narrows to unread ones.
func (h *Handler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	opts := domain.NotificationListOptions{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	notifications, err := h.service.ListNotifications(r.Context(), user.ID, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, notifications, len(notifications))
}

// UnreadCountHandler returns the caller's unread badge count.
func (h *Handler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	count, err := h.service.UnreadNotificationCount(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkReadHandler marks one notification as read.
func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	updated, err := h.service.MarkNotificationRead(r.Context(), user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	if !updated {
		respondJSON(w, http.StatusNotFound, envelope{Success: false, Message: "notification not found"})
		return
	}
	respondMessage(w, http.StatusOK, "Notification marked read")
}

// MarkAllReadHandler marks everything unread as read.
func (h *Handler) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	count, err := h.service.MarkAllNotificationsRead(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"marked": count})
}
