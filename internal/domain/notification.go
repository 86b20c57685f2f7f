/**
 * @description
 * This file defines the persisted notification model. Notifications are
 * created as side effects of parcel, transfer and account-approval mutations
 * and are never mutated afterwards except for the read flag. Each one also
 * rides the message broker as a best-effort live push; the persisted row is
 * the source of truth.
 */

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RelatedModel is the tagged half of a polymorphic reference. Only the three
// listed targets are representable.
type RelatedModel string

const (
	RelatedParcel   RelatedModel = "parcel"
	RelatedTransfer RelatedModel = "transfer"
	RelatedUser     RelatedModel = "user"
)

// Valid reports whether the tag names a known target.
func (m RelatedModel) Valid() bool {
	return m == RelatedParcel || m == RelatedTransfer || m == RelatedUser
}

// RelatedRef points a notification or document at the record it concerns.
type RelatedRef struct {
	Model RelatedModel `json:"model"`
	ID    uuid.UUID    `json:"id"`
}

// Validate rejects references to unknown targets before they reach storage.
func (r RelatedRef) Validate() error {
	if !r.Model.Valid() {
		return fmt.Errorf("unknown related model %q", r.Model)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("related reference requires an id")
	}
	return nil
}

// NotificationType enumerates the notification categories the front end
// renders differently (actionable vs informational).
type NotificationType string

const (
	NotifyTransferInitiated NotificationType = "transfer_initiated"
	NotifyTransferCompleted NotificationType = "transfer_completed"
	NotifyTransferRejected  NotificationType = "transfer_rejected"
	NotifyTransferCancelled NotificationType = "transfer_cancelled"
	NotifyTransferStopped   NotificationType = "transfer_stopped"
	NotifyParcelApproval    NotificationType = "parcel_approval"
	NotifyParcelFraudFlag   NotificationType = "parcel_fraud_flag"
	NotifyAccountApproved   NotificationType = "account_approved"
)

// Notification is one persisted message for one recipient.
type Notification struct {
	ID          uuid.UUID        `json:"id"`
	RecipientID uuid.UUID        `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Link        *string          `json:"link,omitempty"`
	RelatedTo   *RelatedRef      `json:"related_to,omitempty"`
	IsRead      bool             `json:"is_read"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationListOptions narrows notification listings.
type NotificationListOptions struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationCreatedEvent is the broker payload published alongside every
// persisted notification so connected sessions can refresh live.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID        `json:"notification_id"`
	RecipientID    uuid.UUID        `json:"recipient_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	CreatedAt      time.Time        `json:"created_at"`
}
