/**
 * @description
 * HTTP handlers for document upload and verification. Uploads arrive as
 * multipart form data; the bytes are stored under the configured upload root
 * with a generated name and only the metadata row travels further.
 */

package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/domain"
)

// UploadDocumentHandler stores an uploaded file and records its metadata.
// Expects multipart form fields: file, related_model, related_id.
func (h *Handler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, app.Validationf("upload exceeds the size limit or is malformed"))
		return
	}

	relatedID, err := uuid.Parse(r.FormValue("related_id"))
	if err != nil {
		respondError(w, app.Validationf("related_id must be a valid UUID"))
		return
	}
	related := domain.RelatedRef{
		Model: domain.RelatedModel(r.FormValue("related_model")),
		ID:    relatedID,
	}
	if err := related.Validate(); err != nil {
		respondError(w, app.Validationf("%s", err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, app.Validationf("a file field is required"))
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondError(w, err)
		return
	}
	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	storedPath := filepath.Join(h.uploadDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		respondError(w, err)
		return
	}
	defer dst.Close()
	size, err := io.Copy(dst, file)
	if err != nil {
		os.Remove(storedPath)
		respondError(w, err)
		return
	}

	doc := &domain.Document{
		FileName:    header.Filename,
		StoredPath:  storedPath,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
		RelatedTo:   related,
	}
	doc, err = h.service.RecordDocument(r.Context(), user, doc)
	if err != nil {
		os.Remove(storedPath)
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, doc)
}

// ListDocumentsHandler lists document metadata.
func (h *Handler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	limit, offset := pagination(r)
	opts := domain.DocumentListOptions{
		RelatedModel: domain.RelatedModel(r.URL.Query().Get("related_model")),
		Limit:        limit,
		Offset:       offset,
	}
	if raw := r.URL.Query().Get("related_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, app.Validationf("related_id must be a valid UUID"))
			return
		}
		opts.RelatedID = &id
	}
	docs, err := h.service.ListDocuments(r.Context(), user, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, http.StatusOK, docs, len(docs))
}

// GetDocumentHandler loads one document's metadata.
func (h *Handler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	doc, err := h.service.GetDocument(r.Context(), user, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, doc)
}

// VerifyDocumentHandler records an admin's review verdict.
func (h *Handler) VerifyDocumentHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req domain.VerifyDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	doc, err := h.service.VerifyDocument(r.Context(), user, id, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, doc)
}
