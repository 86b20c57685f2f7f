/**
 * @description
 * County-admin fraud powers: stopping a suspicious in-flight transfer,
 * clearing a fraud flag after investigation, and the county dashboard
 * aggregates. Stopping a transfer is the one transfer transition a county
 * admin may perform, and it is always county-scoped.
 */

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

// StopTransfer halts a pending transfer on county authority. When the stop is
// flagged fraudulent the parcel is marked disputed with flag metadata;
// otherwise the parcel simply returns to active. Both parties are told.
func (s *Service) StopTransfer(ctx context.Context, actor *domain.User, transferID uuid.UUID, req domain.StopTransferRequest) (*domain.Transfer, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, Validationf("a reason is required to stop a transfer")
	}

	transfer, err := s.repo.FindTransferByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnCounty(transfer.County) {
		return nil, Forbiddenf("only the admin of %s County may stop this transfer", transfer.County)
	}
	if transfer.Status != domain.TransferPendingRecipientReview {
		return nil, Validationf("transfer %s is already %s", transfer.TransferNumber, transfer.Status)
	}

	parcel, err := s.repo.FindParcelByID(ctx, transfer.ParcelID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	transfer.Status = domain.TransferCountyRejected
	transfer.IsFraudulent = req.IsFraudulent
	transfer.StopReason = &reason
	transfer.Timeline = append(transfer.Timeline, domain.TimelineEntry{
		Message:    fmt.Sprintf("Transfer stopped by county admin %s: %s", actor.FullName, reason),
		RecordedAt: now,
	})
	transfer.Actions = append(transfer.Actions, domain.ActionEntry{
		Type:       domain.ActionStoppedByCounty,
		ActorID:    actor.ID,
		ActorName:  actor.FullName,
		Reason:     reason,
		RecordedAt: now,
	})

	if req.IsFraudulent {
		parcel.IsFraudulent = true
		parcel.Status = domain.ParcelDisputed
		parcel.FraudReason = &reason
		parcel.FraudFlagged = &now
		parcel.FraudBy = &actor.ID
	} else {
		parcel.Status = domain.ParcelActive
	}

	if err := s.repo.SaveTransferWithParcelTx(ctx, transfer, parcel); err != nil {
		return nil, err
	}

	template := domain.Notification{
		Type:      domain.NotifyTransferStopped,
		Title:     "Transfer stopped by county authority",
		Message:   fmt.Sprintf("Transfer %s for parcel %s was stopped: %s", transfer.TransferNumber, transfer.TitleNumber, reason),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedTransfer, ID: transfer.ID},
	}
	for _, recipient := range []uuid.UUID{transfer.SellerID, transfer.BuyerID} {
		n := template
		n.RecipientID = recipient
		s.notify(ctx, n)
	}
	if req.IsFraudulent {
		s.notify(ctx, domain.Notification{
			RecipientID: parcel.OwnerID,
			Type:        domain.NotifyParcelFraudFlag,
			Title:       "Parcel flagged for fraud investigation",
			Message:     fmt.Sprintf("Parcel %s has been marked disputed pending investigation: %s", parcel.TitleNumber, reason),
			RelatedTo:   &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
		})
	}

	return transfer, nil
}

// RemoveFraudFlag clears a parcel's fraud flag and metadata after the dispute
// is resolved, returning the parcel to active.
func (s *Service) RemoveFraudFlag(ctx context.Context, actor *domain.User, parcelID uuid.UUID) (*domain.Parcel, error) {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnCounty(parcel.County) {
		return nil, Forbiddenf("only the admin of %s County may clear this flag", parcel.County)
	}
	if !parcel.IsFraudulent {
		return nil, Validationf("parcel %s is not flagged", parcel.TitleNumber)
	}

	parcel.IsFraudulent = false
	parcel.FraudReason = nil
	parcel.FraudFlagged = nil
	parcel.FraudBy = nil
	if parcel.Status == domain.ParcelDisputed {
		parcel.Status = domain.ParcelActive
	}
	if err := s.repo.UpdateParcel(ctx, parcel); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.Notification{
		RecipientID: parcel.OwnerID,
		Type:        domain.NotifyParcelFraudFlag,
		Title:       "Fraud flag cleared",
		Message:     fmt.Sprintf("The dispute on parcel %s has been resolved and the flag removed.", parcel.TitleNumber),
		RelatedTo:   &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
	})
	return parcel, nil
}

// CountyDashboard aggregates the caller's county: parcel counts, pending
// approvals, live transfers and flagged parcels.
func (s *Service) CountyDashboard(ctx context.Context, actor *domain.User) (*store.CountyDashboard, error) {
	if actor.County == nil {
		return nil, Forbiddenf("county admin account has no county assignment")
	}
	return s.repo.CountyDashboard(ctx, *actor.County)
}
