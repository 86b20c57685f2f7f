/**
 * @description
 * HTTP handlers for the county-admin surface: the county dashboard, the
 * county-scoped parcel and transfer listings, the fraud stop on an in-flight
 * transfer, and clearing a parcel's fraud flag.
 */

package api

import (
	"net/http"

	"github.com/ardhi/registry-service/internal/domain"
)

// CountyDashboardHandler returns the caller's county aggregates.
func (h *Handler) CountyDashboardHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	dashboard, err := h.service.CountyDashboard(r.Context(), user)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, dashboard)
}

// CountyParcelsHandler lists the parcels registered in the caller's county.
func (h *Handler) CountyParcelsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	parcels, err := h.service.SearchParcels(r.Context(), user, domain.ParcelSearchOptions{
		Status: domain.ParcelStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, parcels, len(parcels))
}

// CountyTransfersHandler lists the transfers touching the caller's county.
func (h *Handler) CountyTransfersHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	transfers, err := h.service.ListTransfers(r.Context(), user, domain.TransferListOptions{
		Status: domain.TransferStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, transfers, len(transfers))
}

// StopTransferHandler halts a pending transfer on county authority.
func (h *Handler) StopTransferHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req domain.StopTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	transfer, err := h.service.StopTransfer(r.Context(), user, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, transfer)
}

// RemoveFraudFlagHandler clears a parcel's fraud flag after resolution.
func (h *Handler) RemoveFraudFlagHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	parcel, err := h.service.RemoveFraudFlag(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, parcel)
}
