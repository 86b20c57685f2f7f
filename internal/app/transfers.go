/**
 * @description
 * Ownership transfer lifecycle: initiate, accept, reject, cancel, plus the
 * read paths. A transfer is proposed by the current owner, resolved against a
 * registered buyer by national ID + KRA PIN, and sits in
 * pending_recipient_review until the buyer (or an admin) moves it to a
 * terminal state. Initiation inserts the transfer and parks the parcel in one
 * database transaction; the accept path rewrites parcel ownership the same
 * way, so the transfer and parcel rows never drift apart.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

// InitiateTransfer starts a transfer of one of the caller's parcels to a
// registered buyer. The parcel is parked in pending_transfer until the
// transfer resolves.
func (s *Service) InitiateTransfer(ctx context.Context, actor *domain.User, req domain.InitiateTransferRequest) (*domain.Transfer, error) {
	if req.ParcelID == uuid.Nil {
		return nil, Validationf("parcel_id is required")
	}
	if strings.TrimSpace(req.BuyerNationalID) == "" || strings.TrimSpace(req.BuyerKraPin) == "" {
		return nil, Validationf("buyer national ID and KRA PIN are required")
	}
	if req.AgreedPrice <= 0 {
		return nil, Validationf("agreed price must be a positive amount in KES")
	}

	parcel, err := s.repo.FindParcelByID(ctx, req.ParcelID)
	if err != nil {
		return nil, err
	}
	if parcel.OwnerID != actor.ID {
		return nil, Forbiddenf("only the current owner may transfer this parcel")
	}
	if parcel.HasLiveTransfer() {
		return nil, Validationf("parcel %s already has a transfer awaiting the buyer's decision", parcel.TitleNumber)
	}
	if parcel.Status != domain.ParcelActive {
		return nil, Validationf("parcel %s is %s and cannot be transferred", parcel.TitleNumber, parcel.Status)
	}
	if parcel.ApprovalStatus != domain.ApprovalApproved {
		return nil, Validationf("parcel %s has not completed registration approval", parcel.TitleNumber)
	}

	buyer, err := s.repo.FindUserByIdentity(ctx, strings.TrimSpace(req.BuyerNationalID), strings.TrimSpace(req.BuyerKraPin))
	if err != nil {
		return nil, Validationf("no registered user matches the supplied national ID and KRA PIN")
	}
	if name := collapseSpaces(req.BuyerName); name != "" && !strings.EqualFold(name, collapseSpaces(buyer.FullName)) {
		return nil, Validationf("the buyer's name does not match the registered holder of that national ID")
	}
	if buyer.ID == actor.ID {
		return nil, Validationf("a parcel cannot be transferred to its current owner")
	}
	if !buyer.IsActive {
		return nil, Validationf("the recipient account has been deactivated")
	}

	transferNumber, err := s.repo.NextTransferNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating transfer number: %w", err)
	}

	now := time.Now().UTC()
	transfer := &domain.Transfer{
		TransferNumber: transferNumber,
		ParcelID:       parcel.ID,
		TitleNumber:    parcel.TitleNumber,
		County:         parcel.County,
		SellerID:       actor.ID,
		SellerName:     actor.FullName,
		BuyerID:        buyer.ID,
		BuyerName:      buyer.FullName,
		AgreedPrice:    req.AgreedPrice,
		Status:         domain.TransferPendingRecipientReview,
		Timeline: []domain.TimelineEntry{{
			Message:    fmt.Sprintf("Transfer %s initiated by %s", transferNumber, actor.FullName),
			RecordedAt: now,
		}},
		Actions: []domain.ActionEntry{{
			Type:       domain.ActionInitiated,
			ActorID:    actor.ID,
			ActorName:  actor.FullName,
			RecordedAt: now,
		}},
	}

	parcel.Status = domain.ParcelPendingTransfer
	if err := s.repo.CreateTransferWithParcelTx(ctx, transfer, parcel); err != nil {
		if errors.Is(err, store.ErrTransferInFlight) {
			return nil, Validationf("parcel %s already has a transfer awaiting the buyer's decision", parcel.TitleNumber)
		}
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: buyer.ID,
		Type:        domain.NotifyTransferInitiated,
		Title:       "Ownership transfer awaiting your decision",
		Message: fmt.Sprintf("%s wants to transfer parcel %s to you for KES %d. Review and accept or reject the transfer.",
			actor.FullName, parcel.TitleNumber, req.AgreedPrice),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	})
	s.notifyCountyAdmins(ctx, parcel.County, domain.Notification{
		Type:  domain.NotifyTransferInitiated,
		Title: "New transfer in your county",
		Message: fmt.Sprintf("Transfer %s was initiated for parcel %s (%s to %s).",
			transferNumber, parcel.TitleNumber, actor.FullName, buyer.FullName),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	})

	return transfer, nil
}

// AcceptTransfer completes a pending transfer. Only the buyer may accept.
// Ownership, the denormalized owner columns and the ownership history move to
// the buyer in the same database transaction that closes the transfer.
func (s *Service) AcceptTransfer(ctx context.Context, actor *domain.User, transferID uuid.UUID) (*domain.Transfer, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.BuyerID != actor.ID {
		return nil, Forbiddenf("only the transfer recipient may accept it")
	}
	if transfer.Status != domain.TransferPendingRecipientReview {
		return nil, Validationf("transfer %s is already %s", transfer.TransferNumber, transfer.Status)
	}

	parcel, err := s.repo.FindParcelByID(ctx, transfer.ParcelID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferCompleted
	transfer.CompletedAt = &now
	transfer.Timeline = append(transfer.Timeline, domain.TimelineEntry{
		Message:    fmt.Sprintf("Transfer accepted by %s; ownership moved", actor.FullName),
		RecordedAt: now,
	})
	transfer.Actions = append(transfer.Actions, domain.ActionEntry{
		Type:       domain.ActionAccepted,
		ActorID:    actor.ID,
		ActorName:  actor.FullName,
		RecordedAt: now,
	})

	// Close out the seller's history entry before opening the buyer's.
	if n := len(parcel.OwnershipHistory); n > 0 && parcel.OwnershipHistory[n-1].TransferredAt == nil {
		parcel.OwnershipHistory[n-1].TransferredAt = &now
	}
	parcel.OwnershipHistory = append(parcel.OwnershipHistory, domain.OwnershipEntry{
		OwnerID:        actor.ID,
		OwnerName:      actor.FullName,
		TransferNumber: &transfer.TransferNumber,
		AcquiredAt:     now,
	})
	parcel.OwnerID = actor.ID
	parcel.OwnerName = actor.FullName
	parcel.OwnerNationalID = actor.NationalID
	parcel.Status = domain.ParcelActive

	if err := s.repo.SaveTransferWithParcelTx(ctx, transfer, parcel); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: transfer.SellerID,
		Type:        domain.NotifyTransferCompleted,
		Title:       "Transfer completed",
		Message: fmt.Sprintf("%s accepted transfer %s; parcel %s is now registered to them.",
			actor.FullName, transfer.TransferNumber, transfer.TitleNumber),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	})
	countyTemplate := domain.Notification{
		Type:  domain.NotifyTransferCompleted,
		Title: "Transfer completed in your county",
		Message: fmt.Sprintf("Transfer %s completed: parcel %s moved from %s to %s.",
			transfer.TransferNumber, transfer.TitleNumber, transfer.SellerName, transfer.BuyerName),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	}
	s.notifyCountyAdmins(ctx, transfer.County, countyTemplate)
	s.notifyNLCAdmins(ctx, countyTemplate)

	return transfer, nil
}

// RejectTransfer declines a pending transfer. Only the buyer may reject, and
// a reason is mandatory. The parcel returns to active.
func (s *Service) RejectTransfer(ctx context.Context, actor *domain.User, transferID uuid.UUID, req domain.TransferDecisionRequest) (*domain.Transfer, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, Validationf("a reason is required to reject a transfer")
	}

	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.BuyerID != actor.ID {
		return nil, Forbiddenf("only the transfer recipient may reject it")
	}
	if transfer.Status != domain.TransferPendingRecipientReview {
		return nil, Validationf("transfer %s is already %s", transfer.TransferNumber, transfer.Status)
	}

	parcel, err := s.repo.FindParcelByID(ctx, transfer.ParcelID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferRejected
	transfer.Timeline = append(transfer.Timeline, domain.TimelineEntry{
		Message:    fmt.Sprintf("Transfer rejected by %s: %s", actor.FullName, reason),
		RecordedAt: now,
	})
	transfer.Actions = append(transfer.Actions, domain.ActionEntry{
		Type:       domain.ActionRejected,
		ActorID:    actor.ID,
		ActorName:  actor.FullName,
		Reason:     reason,
		RecordedAt: now,
	})
	parcel.Status = domain.ParcelActive

	if err := s.repo.SaveTransferWithParcelTx(ctx, transfer, parcel); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: transfer.SellerID,
		Type:        domain.NotifyTransferRejected,
		Title:       "Transfer rejected",
		Message: fmt.Sprintf("%s rejected transfer %s for parcel %s: %s",
			actor.FullName, transfer.TransferNumber, transfer.TitleNumber, reason),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	})

	return transfer, nil
}

// CancelTransfer withdraws a pending transfer. The seller may cancel their
// own; national-level admins may cancel any. The parcel returns to active.
func (s *Service) CancelTransfer(ctx context.Context, actor *domain.User, transferID uuid.UUID, req domain.TransferDecisionRequest) (*domain.Transfer, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	isSeller := transfer.SellerID == actor.ID
	isNational := actor.Role == domain.RoleNLCAdmin || actor.Role == domain.RoleSuperAdmin
	if !isSeller && !isNational {
		return nil, Forbiddenf("only the seller or a national land admin may cancel this transfer")
	}
	if transfer.Status != domain.TransferPendingRecipientReview {
		return nil, Validationf("transfer %s is already %s", transfer.TransferNumber, transfer.Status)
	}

	parcel, err := s.repo.FindParcelByID(ctx, transfer.ParcelID)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	now := time.Now().UTC()
	transfer.Status = domain.TransferCancelled
	message := fmt.Sprintf("Transfer cancelled by %s", actor.FullName)
	if reason != "" {
		message += ": " + reason
	}
	transfer.Timeline = append(transfer.Timeline, domain.TimelineEntry{Message: message, RecordedAt: now})
	transfer.Actions = append(transfer.Actions, domain.ActionEntry{
		Type:       domain.ActionCancelled,
		ActorID:    actor.ID,
		ActorName:  actor.FullName,
		Reason:     reason,
		RecordedAt: now,
	})
	parcel.Status = domain.ParcelActive

	if err := s.repo.SaveTransferWithParcelTx(ctx, transfer, parcel); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: transfer.BuyerID,
		Type:        domain.NotifyTransferCancelled,
		Title:       "Transfer cancelled",
		Message: fmt.Sprintf("Transfer %s for parcel %s was cancelled by %s.",
			transfer.TransferNumber, transfer.TitleNumber, actor.FullName),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	})

	return transfer, nil
}

// GetTransfer returns one transfer, enforcing read authorization: the two
// participants, approved admins of the transfer's county, and national-level
// admins may read it.
func (s *Service) GetTransfer(ctx context.Context, actor *domain.User, transferID uuid.UUID) (*domain.Transfer, error) {
	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !canReadTransfer(actor, transfer) {
		return nil, Forbiddenf("you are not a party to this transfer")
	}
	return transfer, nil
}

// ListTransfers returns transfers scoped to the caller's role: citizens see
// the transfers they participate in, county admins their county, national
// admins everything. County visibility only arrives with NLC approval; an
// unapproved county admin is scoped like a citizen.
func (s *Service) ListTransfers(ctx context.Context, actor *domain.User, opts domain.TransferListOptions) ([]domain.Transfer, error) {
	switch actor.Role {
	case domain.RoleUser:
		id := actor.ID
		opts.ParticipantID = &id
	case domain.RoleCountyAdmin:
		if !actor.IsApproved {
			id := actor.ID
			opts.ParticipantID = &id
			break
		}
		if actor.County == nil {
			return nil, Forbiddenf("county admin account has no county assignment")
		}
		opts.County = *actor.County
	}
	return s.repo.ListTransfers(ctx, opts)
}

// collapseSpaces trims and folds runs of whitespace so name comparison does
// not trip on spacing differences.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func canReadTransfer(actor *domain.User, transfer *domain.Transfer) bool {
	if actor.ID == transfer.SellerID || actor.ID == transfer.BuyerID {
		return true
	}
	switch actor.Role {
	case domain.RoleNLCAdmin, domain.RoleSuperAdmin:
		return true
	case domain.RoleCountyAdmin:
		return actor.IsApproved && actor.County != nil && *actor.County == transfer.County
	}
	return false
}
