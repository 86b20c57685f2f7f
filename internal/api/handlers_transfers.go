/**
 * @description
 * HTTP handlers for the transfer lifecycle: initiate, list, fetch, and the
 * accept/reject/cancel decisions.
 */

package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
)

// InitiateTransferHandler starts a transfer of one of the caller's parcels.
func (h *Handler) InitiateTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req domain.InitiateTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	transfer, err := h.service.InitiateTransfer(r.Context(), user, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, transfer)
}

// ListTransfersHandler lists transfers scoped to the caller's role.
func (h *Handler) ListTransfersHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	opts := domain.TransferListOptions{
		Status: domain.TransferStatus(r.URL.Query().Get("status")),
		County: r.URL.Query().Get("county"),
		Limit:  limit,
		Offset: offset,
	}
	transfers, err := h.service.ListTransfers(r.Context(), user, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, transfers, len(transfers))
}

// GetTransferHandler returns one transfer.
func (h *Handler) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	transfer, err := h.service.GetTransfer(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, transfer)
}

// AcceptTransferHandler completes a pending transfer as the buyer.
func (h *Handler) AcceptTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	transfer, err := h.service.AcceptTransfer(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, transfer)
}

// RejectTransferHandler declines a pending transfer as the buyer.
func (h *Handler) RejectTransferHandler(w http.ResponseWriter, r *http.Request) {
	h.decideTransfer(w, r, h.service.RejectTransfer)
}

// CancelTransferHandler withdraws a pending transfer.
func (h *Handler) CancelTransferHandler(w http.ResponseWriter, r *http.Request) {
	h.decideTransfer(w, r, h.service.CancelTransfer)
}

func (h *Handler) decideTransfer(w http.ResponseWriter, r *http.Request,
	decide func(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.TransferDecisionRequest) (*domain.Transfer, error)) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req domain.TransferDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	transfer, err := decide(r.Context(), user, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, transfer)
}
