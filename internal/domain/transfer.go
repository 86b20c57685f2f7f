/**
 * @description
 * This file defines the ownership transfer model and its state machine. A
 * transfer proposes moving a parcel from its current owner (the seller) to a
 * buyer resolved by national ID + KRA PIN. The buyer must accept or reject;
 * the seller or an NLC admin may cancel; a county admin may stop a transfer
 * on fraud grounds. Terminal states are immutable.
 *
 * @notes
 * - transfer_number is sequential, zero-padded and globally unique; it is
 *   assigned once at creation from a database sequence and never reassigned.
 * - timeline is a free-text audit trail, actions a typed one. Both are
 *   append-only.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransferStatus tracks a transfer through its state machine.
type TransferStatus string

const (
	TransferPendingRecipientReview TransferStatus = "pending_recipient_review"
	TransferCompleted              TransferStatus = "completed"
	TransferRejected               TransferStatus = "rejected"
	TransferCancelled              TransferStatus = "cancelled"
	TransferCountyRejected         TransferStatus = "county_rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s TransferStatus) Terminal() bool {
	switch s {
	case TransferCompleted, TransferRejected, TransferCancelled, TransferCountyRejected:
		return true
	}
	return false
}

// TimelineEntry is one free-text line of a transfer's audit trail.
type TimelineEntry struct {
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ActionType enumerates the typed audit actions recorded on a transfer.
type ActionType string

const (
	ActionInitiated       ActionType = "initiated"
	ActionAccepted        ActionType = "accepted"
	ActionRejected        ActionType = "rejected"
	ActionCancelled       ActionType = "cancelled"
	ActionStoppedByCounty ActionType = "stopped_by_county"
)

// ActionEntry is one typed line of a transfer's audit trail.
type ActionEntry struct {
	Type       ActionType `json:"type"`
	ActorID    uuid.UUID  `json:"actor_id"`
	ActorName  string     `json:"actor_name"`
	Reason     string     `json:"reason,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// Transfer represents a proposed ownership change for one parcel.
type Transfer struct {
	ID             uuid.UUID `json:"id"`
	TransferNumber string    `json:"transfer_number"`

	ParcelID    uuid.UUID `json:"parcel_id"`
	TitleNumber string    `json:"title_number"`
	County      string    `json:"county"` // denormalized for county-scoped views

	SellerID   uuid.UUID `json:"seller_id"`
	SellerName string    `json:"seller_name"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	BuyerName  string    `json:"buyer_name"`

	AgreedPrice int64          `json:"agreed_price"` // KES
	Status      TransferStatus `json:"status"`

	Timeline []TimelineEntry `json:"timeline"`
	Actions  []ActionEntry   `json:"actions"`

	IsFraudulent bool    `json:"is_fraudulent"`
	StopReason   *string `json:"stop_reason,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// InitiateTransferRequest is the DTO for starting a transfer. The buyer is
// resolved among existing users by exact match on national ID + KRA PIN; the
// supplied name is cross-checked for a caller typo guard only, comparing
// case- and whitespace-insensitively but requiring the same word order as
// the registered full name.
type InitiateTransferRequest struct {
	ParcelID        uuid.UUID `json:"parcel_id"`
	BuyerName       string    `json:"buyer_name"`
	BuyerNationalID string    `json:"buyer_national_id"`
	BuyerKraPin     string    `json:"buyer_kra_pin"`
	AgreedPrice     int64     `json:"agreed_price"`
}

// TransferDecisionRequest carries the reason for reject/cancel/stop actions.
// Reject requires a non-empty reason; cancel does not.
type TransferDecisionRequest struct {
	Reason string `json:"reason"`
}

// StopTransferRequest is the DTO for the county-admin fraud stop.
type StopTransferRequest struct {
	Reason       string `json:"reason"`
	IsFraudulent bool   `json:"is_fraudulent"`
}

// TransferListOptions narrows transfer listings. Zero values mean "no filter".
type TransferListOptions struct {
	Status        TransferStatus
	County        string
	ParticipantID *uuid.UUID // matches seller or buyer
	Limit         int
	Offset        int
}
