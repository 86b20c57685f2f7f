/**
 * @description
 * PostgreSQL queries for uploaded document metadata.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ardhi/registry-service/internal/domain"
)

const documentColumns = `id, file_name, stored_path, content_type, size_bytes, uploaded_by,
	related_model, related_id, is_verified, verified_by, verified_at, verify_remarks, created_at`

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var doc domain.Document
	err := row.Scan(
		&doc.ID,
		&doc.FileName,
		&doc.StoredPath,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.UploadedBy,
		&doc.RelatedTo.Model,
		&doc.RelatedTo.ID,
		&doc.IsVerified,
		&doc.VerifiedBy,
		&doc.VerifiedAt,
		&doc.VerifyRemark,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// CreateDocument inserts one uploaded file's metadata.
func (r *PostgresRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (file_name, stored_path, content_type, size_bytes, uploaded_by, related_model, related_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		doc.FileName,
		doc.StoredPath,
		doc.ContentType,
		doc.SizeBytes,
		doc.UploadedBy,
		doc.RelatedTo.Model,
		doc.RelatedTo.ID,
	).Scan(&doc.ID, &doc.CreatedAt)
}

// FindDocumentByID retrieves one document's metadata.
func (r *PostgresRepository) FindDocumentByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRow(ctx, query, id))
}

// ListDocuments lists document metadata matching the given filters.
func (r *PostgresRepository) ListDocuments(ctx context.Context, opts domain.DocumentListOptions) ([]domain.Document, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	args := []interface{}{}
	if opts.RelatedModel != "" {
		args = append(args, opts.RelatedModel)
		query += ` AND related_model = ` + placeholder(len(args))
	}
	if opts.RelatedID != nil {
		args = append(args, *opts.RelatedID)
		query += ` AND related_id = ` + placeholder(len(args))
	}
	if opts.UploadedBy != nil {
		args = append(args, *opts.UploadedBy)
		query += ` AND uploaded_by = ` + placeholder(len(args))
	}
	args = append(args, opts.Limit)
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args))
	args = append(args, opts.Offset)
	query += ` OFFSET ` + placeholder(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	documents := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, *doc)
	}
	return documents, rows.Err()
}

// UpdateDocument rewrites a document's verification sub-state.
func (r *PostgresRepository) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents SET is_verified = $2, verified_by = $3, verified_at = $4, verify_remarks = $5
		WHERE id = $1
	`, doc.ID, doc.IsVerified, doc.VerifiedBy, doc.VerifiedAt, doc.VerifyRemark)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
