/**
 * @description
 * This file defines the uploaded document model. Documents store file
 * metadata only (the bytes live on disk under the configured upload root)
 * and reference the parcel, transfer or user they support. A separate
 * verification sub-state records an admin's review.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata record for one uploaded file.
type Document struct {
	ID           uuid.UUID  `json:"id"`
	FileName     string     `json:"file_name"`
	StoredPath   string     `json:"stored_path"`
	ContentType  string     `json:"content_type"`
	SizeBytes    int64      `json:"size_bytes"`
	UploadedBy   uuid.UUID  `json:"uploaded_by"`
	RelatedTo    RelatedRef `json:"related_to"`
	IsVerified   bool       `json:"is_verified"`
	VerifiedBy   *uuid.UUID `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	VerifyRemark *string    `json:"verify_remarks,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// VerifyDocumentRequest is the DTO for the admin verification endpoint.
type VerifyDocumentRequest struct {
	Verified bool   `json:"verified"`
	Remarks  string `json:"remarks"`
}

// DocumentListOptions narrows document listings.
type DocumentListOptions struct {
	RelatedModel RelatedModel
	RelatedID    *uuid.UUID
	UploadedBy   *uuid.UUID
	Limit        int
	Offset       int
}
