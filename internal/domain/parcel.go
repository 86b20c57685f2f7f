/**
 * @description
 * This file defines the land parcel model, the central record of the
 * registry-service. A parcel is keyed by a unique human-readable title number,
 * is owned by exactly one user at a time, and carries a county-scoped location
 * hierarchy, a two-stage approval workflow for self-service registrations, and
 * an append-only ownership history.
 *
 * @notes
 * - Parcels are never physically removed; deletion flips the status to
 *   'deleted' so the title number stays reserved.
 * - Owner name and national ID are denormalized onto the parcel so listings
 *   and PDF exports do not need a join; they are rewritten on every transfer.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParcelStatus tracks where a parcel sits in its lifecycle.
type ParcelStatus string

const (
	ParcelActive          ParcelStatus = "active"
	ParcelPendingTransfer ParcelStatus = "pending_transfer"
	ParcelTransferred     ParcelStatus = "transferred"
	ParcelDisputed        ParcelStatus = "disputed"
	ParcelDeleted         ParcelStatus = "deleted"
)

// ApprovalStatus tracks a self-service parcel through the dual-approval
// workflow. Admin-created parcels are born approved.
type ApprovalStatus string

const (
	ApprovalPendingCountyAdmin ApprovalStatus = "pending_county_admin"
	ApprovalPendingNLCAdmin    ApprovalStatus = "pending_nlc_admin"
	ApprovalApproved           ApprovalStatus = "approved"
	ApprovalRejected           ApprovalStatus = "rejected"
)

// ApprovalRecord captures one admin's decision on a pending parcel.
type ApprovalRecord struct {
	Status    string     `json:"status"` // approved | rejected | pending
	AdminID   *uuid.UUID `json:"admin_id,omitempty"`
	AdminName string     `json:"admin_name,omitempty"`
	Remarks   string     `json:"remarks,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// OwnershipEntry is one row of a parcel's append-only ownership history.
type OwnershipEntry struct {
	OwnerID        uuid.UUID  `json:"owner_id"`
	OwnerName      string     `json:"owner_name"`
	TransferNumber *string    `json:"transfer_number,omitempty"` // nil for the registration entry
	AcquiredAt     time.Time  `json:"acquired_at"`
	TransferredAt  *time.Time `json:"transferred_at,omitempty"`
}

// Parcel represents a registered unit of land.
type Parcel struct {
	ID          uuid.UUID `json:"id"`
	TitleNumber string    `json:"title_number"`

	OwnerID         uuid.UUID `json:"owner_id"`
	OwnerName       string    `json:"owner_name"`
	OwnerNationalID string    `json:"owner_national_id"`

	County       string `json:"county"`
	SubCounty    string `json:"sub_county"`
	Constituency string `json:"constituency"`
	Ward         string `json:"ward"`

	SizeValue   float64 `json:"size_value"`
	SizeUnit    string  `json:"size_unit"` // e.g. "hectares", "acres"
	Zoning      string  `json:"zoning"`
	MarketValue int64   `json:"market_value"` // KES

	Status         ParcelStatus   `json:"status"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	IsVerified     bool           `json:"is_verified"`

	CountyApproval ApprovalRecord `json:"county_admin_approval"`
	NLCApproval    ApprovalRecord `json:"nlc_admin_approval"`

	IsFraudulent bool       `json:"is_fraudulent"`
	FraudReason  *string    `json:"fraud_reason,omitempty"`
	FraudFlagged *time.Time `json:"fraud_flagged_at,omitempty"`
	FraudBy      *uuid.UUID `json:"fraud_flagged_by,omitempty"`

	OwnershipHistory []OwnershipEntry `json:"ownership_history"`

	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLiveTransfer reports whether a non-terminal transfer exists for the
// parcel, in which case a new one may not be initiated.
func (p *Parcel) HasLiveTransfer() bool {
	return p.Status == ParcelPendingTransfer
}

// CreateParcelRequest is the DTO for parcel registration. Admin callers get an
// auto-verified parcel; county-admin self-service registrations enter the
// dual-approval workflow instead.
type CreateParcelRequest struct {
	TitleNumber     string  `json:"title_number"`
	OwnerNationalID string  `json:"owner_national_id"`
	OwnerKraPin     string  `json:"owner_kra_pin"`
	County          string  `json:"county"`
	SubCounty       string  `json:"sub_county"`
	Constituency    string  `json:"constituency"`
	Ward            string  `json:"ward"`
	SizeValue       float64 `json:"size_value"`
	SizeUnit        string  `json:"size_unit"`
	Zoning          string  `json:"zoning"`
	MarketValue     int64   `json:"market_value"`
}

// UpdateParcelRequest carries the mutable parcel attributes.
type UpdateParcelRequest struct {
	SubCounty    *string  `json:"sub_county,omitempty"`
	Constituency *string  `json:"constituency,omitempty"`
	Ward         *string  `json:"ward,omitempty"`
	SizeValue    *float64 `json:"size_value,omitempty"`
	SizeUnit     *string  `json:"size_unit,omitempty"`
	Zoning       *string  `json:"zoning,omitempty"`
	MarketValue  *int64   `json:"market_value,omitempty"`
}

// ApprovalDecision is the DTO for the county/NLC parcel approval endpoints.
type ApprovalDecision struct {
	Approve bool   `json:"approve"`
	Remarks string `json:"remarks"`
}

// ParcelSearchOptions narrows parcel listings. Zero values mean "no filter".
type ParcelSearchOptions struct {
	TitleNumber string
	County      string
	Status      ParcelStatus
	OwnerID     *uuid.UUID
	Limit       int
	Offset      int
}
