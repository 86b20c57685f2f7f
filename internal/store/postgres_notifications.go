/**
 * @description
 * PostgreSQL queries for persisted notifications. Notifications are append-only
 * apart from the read flag, so the write surface here is deliberately small.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ardhi/registry-service/internal/domain"
)

const notificationColumns = `id, recipient_id, type, title, message, link,
	related_model, related_id, is_read, read_at, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n            domain.Notification
		relatedModel *domain.RelatedModel
		relatedID    *uuid.UUID
	)
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Link,
		&relatedModel,
		&relatedID,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if relatedModel != nil && relatedID != nil {
		n.RelatedTo = &domain.RelatedRef{Model: *relatedModel, ID: *relatedID}
	}
	return &n, nil
}

// CreateNotification inserts one notification row for one recipient.
func (r *PostgresRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	var relatedModel *domain.RelatedModel
	var relatedID *uuid.UUID
	if n.RelatedTo != nil {
		relatedModel = &n.RelatedTo.Model
		relatedID = &n.RelatedTo.ID
	}
	query := `
		INSERT INTO notifications (recipient_id, type, title, message, link, related_model, related_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		n.RecipientID,
		n.Type,
		n.Title,
		n.Message,
		n.Link,
		relatedModel,
		relatedID,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListNotifications returns a recipient's notifications, newest first.
func (r *PostgresRepository) ListNotifications(ctx context.Context, recipientID uuid.UUID, opts domain.NotificationListOptions) ([]domain.Notification, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	args := []interface{}{recipientID}
	if opts.UnreadOnly {
		query += ` AND NOT is_read`
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

	notifications := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag for one of the recipient's
// notifications. Re-marking an already-read notification succeeds without
// touching its original read_at. Returns false when the notification does
// not exist or belongs to someone else.
func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $3
		WHERE id = $2 AND recipient_id = $1 AND NOT is_read
	`, recipientID, notificationID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var exists bool
	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $2 AND recipient_id = $1)`,
		recipientID, notificationID,
	).Scan(&exists)
	return exists, err
}

// MarkAllNotificationsRead marks every unread notification for the recipient
// and returns how many were affected.
func (r *PostgresRepository) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE, read_at = $2
		WHERE recipient_id = $1 AND NOT is_read
	`, recipientID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnreadNotifications returns the recipient's unread badge count.
func (r *PostgresRepository) CountUnreadNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`,
		recipientID,
	).Scan(&count)
	return count, err
}
