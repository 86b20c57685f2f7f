/**
 * @description
 * HTTP handlers for parcel registration, search, mutation, the dual-approval
 * endpoints and the PDF export. The PDF endpoint streams application/pdf and
 * honors ?download=true with a Content-Disposition attachment.
 */

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/pkg/pdfgen"
)

// CreateParcelHandler registers a new parcel.
func (h *Handler) CreateParcelHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req domain.CreateParcelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	parcel, err := h.service.CreateParcel(r.Context(), user, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, parcel)
}

// SearchParcelsHandler lists parcels scoped to the caller's role.
func (h *Handler) SearchParcelsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	opts := domain.ParcelSearchOptions{
		TitleNumber: r.URL.Query().Get("title_number"),
		County:      r.URL.Query().Get("county"),
		Status:      domain.ParcelStatus(r.URL.Query().Get("status")),
		Limit:       limit,
		Offset:      offset,
	}
	parcels, err := h.service.SearchParcels(r.Context(), user, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, parcels, len(parcels))
}

// MyParcelsHandler lists the caller's own holdings.
func (h *Handler) MyParcelsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	parcels, err := h.service.MyParcels(r.Context(), user, limit, offset)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, parcels, len(parcels))
}

// GetParcelHandler returns one parcel.
func (h *Handler) GetParcelHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	parcel, err := h.service.GetParcel(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, parcel)
}

// GetParcelByTitleHandler resolves a parcel by its title number.
func (h *Handler) GetParcelByTitleHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	parcel, err := h.service.GetParcelByTitle(r.Context(), user, chi.URLParam(r, "titleNumber"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, parcel)
}

// ParcelPDFHandler streams the parcel certificate as a PDF.
func (h *Handler) ParcelPDFHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	parcel, err := h.service.GetParcel(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	pdf, err := pdfgen.RenderParcel(parcel)
	if err != nil {
		respondError(w, err)
		return
	}

	disposition := "inline"
	if r.URL.Query().Get("download") == "true" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, parcel.TitleNumber+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// UpdateParcelHandler applies the mutable parcel attributes.
func (h *Handler) UpdateParcelHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req domain.UpdateParcelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	parcel, err := h.service.UpdateParcel(r.Context(), user, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, parcel)
}

// DeleteParcelHandler soft-deletes a parcel.
func (h *Handler) DeleteParcelHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.service.DeleteParcel(r.Context(), user, id); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Parcel deleted")
}

// CountyApproveParcelHandler records the county-stage approval decision.
func (h *Handler) CountyApproveParcelHandler(w http.ResponseWriter, r *http.Request) {
	h.approveParcel(w, r, h.service.CountyApproveParcel)
}

// NLCApproveParcelHandler records the NLC-stage approval decision.
func (h *Handler) NLCApproveParcelHandler(w http.ResponseWriter, r *http.Request) {
	h.approveParcel(w, r, h.service.NLCApproveParcel)
}

type approvalFunc func(ctx context.Context, actor *domain.User, id uuid.UUID, decision domain.ApprovalDecision) (*domain.Parcel, error)

func (h *Handler) approveParcel(w http.ResponseWriter, r *http.Request, decide approvalFunc) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var decision domain.ApprovalDecision
	if err := decodeJSON(r, &decision); err != nil {
		respondError(w, err)
		return
	}
	parcel, err := decide(r.Context(), user, id, decision)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, parcel)
}
