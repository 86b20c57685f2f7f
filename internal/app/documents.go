/**
 * @description
 * Document metadata operations. The HTTP layer stores the uploaded bytes on
 * disk and hands the resulting path here; this layer owns the metadata row,
 * the polymorphic reference check and the admin verification sub-state.
 */

package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
)

// RecordDocument persists metadata for a stored upload after validating the
// polymorphic reference.
func (s *Service) RecordDocument(ctx context.Context, actor *domain.User, doc *domain.Document) (*domain.Document, error) {
	if strings.TrimSpace(doc.FileName) == "" || strings.TrimSpace(doc.StoredPath) == "" {
		return nil, Validationf("document file name and stored path are required")
	}
	if err := doc.RelatedTo.Validate(); err != nil {
		return nil, Validationf("%s", err.Error())
	}
	doc.UploadedBy = actor.ID
	doc.IsVerified = false
	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocument loads one document's metadata. Uploaders see their own; admins
// see everything.
func (s *Service) GetDocument(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.repo.FindDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UploadedBy != actor.ID && !actor.Role.IsAdmin() {
		return nil, Forbiddenf("you do not have access to this document")
	}
	return doc, nil
}

// ListDocuments lists document metadata. Non-admins only ever see their own
// uploads.
func (s *Service) ListDocuments(ctx context.Context, actor *domain.User, opts domain.DocumentListOptions) ([]domain.Document, error) {
	if !actor.Role.IsAdmin() {
		id := actor.ID
		opts.UploadedBy = &id
	}
	return s.repo.ListDocuments(ctx, opts)
}

// VerifyDocument records an admin's review verdict on an upload.
func (s *Service) VerifyDocument(ctx context.Context, actor *domain.User, id uuid.UUID, req domain.VerifyDocumentRequest) (*domain.Document, error) {
	doc, err := s.repo.FindDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc.IsVerified = req.Verified
	doc.VerifiedBy = &actor.ID
	doc.VerifiedAt = &now
	if remarks := strings.TrimSpace(req.Remarks); remarks != "" {
		doc.VerifyRemark = &remarks
	} else {
		doc.VerifyRemark = nil
	}
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
