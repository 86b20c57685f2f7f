/**
 * @description
 * Parcel registration and lifecycle operations. National-level admins
 * register parcels pre-verified; county-admin self-service registrations walk
 * the two-stage approval ladder (county admin, then NLC admin) before the
 * parcel is verified. Parcels are soft-deleted only, and every read or
 * mutation is scoped to the caller's role and county.
 */

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
)

// CreateParcel registers a new parcel. NLC and super admins produce a
// verified, approved parcel immediately; county admins enter the
// dual-approval workflow and may only register inside their own county.
func (s *Service) CreateParcel(ctx context.Context, actor *domain.User, req domain.CreateParcelRequest) (*domain.Parcel, error) {
	if err := validateParcelRequest(req); err != nil {
		return nil, err
	}

	owner, err := s.repo.FindUserByIdentity(ctx, strings.TrimSpace(req.OwnerNationalID), strings.TrimSpace(req.OwnerKraPin))
	if err != nil {
		return nil, Validationf("no registered user matches the supplied owner national ID and KRA PIN")
	}

	now := time.Now().UTC()
	parcel := &domain.Parcel{
		TitleNumber:     strings.ToUpper(strings.TrimSpace(req.TitleNumber)),
		OwnerID:         owner.ID,
		OwnerName:       owner.FullName,
		OwnerNationalID: owner.NationalID,
		County:          strings.TrimSpace(req.County),
		SubCounty:       strings.TrimSpace(req.SubCounty),
		Constituency:    strings.TrimSpace(req.Constituency),
		Ward:            strings.TrimSpace(req.Ward),
		SizeValue:       req.SizeValue,
		SizeUnit:        req.SizeUnit,
		Zoning:          req.Zoning,
		MarketValue:     req.MarketValue,
		Status:          domain.ParcelActive,
		OwnershipHistory: []domain.OwnershipEntry{{
			OwnerID:    owner.ID,
			OwnerName:  owner.FullName,
			AcquiredAt: now,
		}},
		CreatedBy: actor.ID,
	}

	switch actor.Role {
	case domain.RoleNLCAdmin, domain.RoleSuperAdmin:
		record := domain.ApprovalRecord{
			Status:    "approved",
			AdminID:   &actor.ID,
			AdminName: actor.FullName,
			Remarks:   "Registered directly by administrator",
			DecidedAt: &now,
		}
		parcel.ApprovalStatus = domain.ApprovalApproved
		parcel.IsVerified = true
		parcel.CountyApproval = record
		parcel.NLCApproval = record
	case domain.RoleCountyAdmin:
		if !actor.CanActOnCounty(parcel.County) {
			return nil, Forbiddenf("county admins may only register parcels in their assigned county")
		}
		parcel.ApprovalStatus = domain.ApprovalPendingCountyAdmin
		parcel.CountyApproval = domain.ApprovalRecord{Status: "pending"}
		parcel.NLCApproval = domain.ApprovalRecord{Status: "pending"}
	default:
		return nil, Forbiddenf("only administrators may register parcels")
	}

	if err := s.repo.CreateParcel(ctx, parcel); err != nil {
		return nil, err
	}

	if parcel.IsVerified {
		s.notify(ctx, domain.Notification{
			RecipientID: owner.ID,
			Type:        domain.NotifyParcelApproval,
			Title:       "Parcel registered in your name",
			Message:     fmt.Sprintf("Parcel %s in %s County has been registered and verified under your name.", parcel.TitleNumber, parcel.County),
			RelatedTo:   &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
		})
	} else {
		s.notifyCountyAdmins(ctx, parcel.County, domain.Notification{
			Type:      domain.NotifyParcelApproval,
			Title:     "Parcel registration awaiting county approval",
			Message:   fmt.Sprintf("Parcel %s was registered for %s and awaits county approval.", parcel.TitleNumber, owner.FullName),
			RelatedTo: &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
		})
	}

	return parcel, nil
}

// GetParcel returns one parcel. Owners see their own; approved county admins
// their county; national admins everything.
func (s *Service) GetParcel(ctx context.Context, actor *domain.User, parcelID uuid.UUID) (*domain.Parcel, error) {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !canReadParcel(actor, parcel) {
		return nil, Forbiddenf("you do not have access to this parcel")
	}
	return parcel, nil
}

// GetParcelByTitle resolves a parcel by its human-readable title number,
// under the same read rules as GetParcel.
func (s *Service) GetParcelByTitle(ctx context.Context, actor *domain.User, titleNumber string) (*domain.Parcel, error) {
	if strings.TrimSpace(titleNumber) == "" {
		return nil, Validationf("title number is required")
	}
	parcel, err := s.repo.FindParcelByTitleNumber(ctx, titleNumber)
	if err != nil {
		return nil, err
	}
	if !canReadParcel(actor, parcel) {
		return nil, Forbiddenf("you do not have access to this parcel")
	}
	return parcel, nil
}

// SearchParcels lists parcels scoped to the caller's role: citizens see their
// own holdings, county admins their county, national admins everything.
// County visibility only arrives with NLC approval; an unapproved county
// admin is scoped like a citizen.
func (s *Service) SearchParcels(ctx context.Context, actor *domain.User, opts domain.ParcelSearchOptions) ([]domain.Parcel, error) {
	switch actor.Role {
	case domain.RoleUser:
		id := actor.ID
		opts.OwnerID = &id
	case domain.RoleCountyAdmin:
		if !actor.IsApproved {
			id := actor.ID
			opts.OwnerID = &id
			break
		}
		if actor.County == nil {
			return nil, Forbiddenf("county admin account has no county assignment")
		}
		opts.County = *actor.County
	}
	return s.repo.SearchParcels(ctx, opts)
}

// MyParcels lists the caller's own holdings regardless of role.
func (s *Service) MyParcels(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Parcel, error) {
	id := actor.ID
	return s.repo.SearchParcels(ctx, domain.ParcelSearchOptions{OwnerID: &id, Limit: limit, Offset: offset})
}

// UpdateParcel applies the mutable attributes. County admins are scoped to
// their county; ownership never changes through this path.
func (s *Service) UpdateParcel(ctx context.Context, actor *domain.User, parcelID uuid.UUID, req domain.UpdateParcelRequest) (*domain.Parcel, error) {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnCounty(parcel.County) {
		return nil, Forbiddenf("you may not modify parcels outside your county")
	}

	if req.SubCounty != nil {
		parcel.SubCounty = *req.SubCounty
	}
	if req.Constituency != nil {
		parcel.Constituency = *req.Constituency
	}
	if req.Ward != nil {
		parcel.Ward = *req.Ward
	}
	if req.SizeValue != nil {
		if *req.SizeValue <= 0 {
			return nil, Validationf("size value must be positive")
		}
		parcel.SizeValue = *req.SizeValue
	}
	if req.SizeUnit != nil {
		parcel.SizeUnit = *req.SizeUnit
	}
	if req.Zoning != nil {
		parcel.Zoning = *req.Zoning
	}
	if req.MarketValue != nil {
		parcel.MarketValue = *req.MarketValue
	}

	if err := s.repo.UpdateParcel(ctx, parcel); err != nil {
		return nil, err
	}
	return parcel, nil
}

// DeleteParcel soft-deletes a parcel by flipping its status; the title number
// stays reserved and the row is never removed. A parcel with a live transfer
// cannot be deleted.
func (s *Service) DeleteParcel(ctx context.Context, actor *domain.User, parcelID uuid.UUID) error {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return err
	}
	if !actor.CanActOnCounty(parcel.County) {
		return Forbiddenf("you may not delete parcels outside your county")
	}
	if parcel.HasLiveTransfer() {
		if transfer, ferr := s.repo.FindLiveTransferByParcel(ctx, parcelID); ferr == nil {
			return Validationf("parcel %s has transfer %s in flight and cannot be deleted", parcel.TitleNumber, transfer.TransferNumber)
		}
		return Validationf("parcel %s has a transfer in flight and cannot be deleted", parcel.TitleNumber)
	}
	if parcel.Status == domain.ParcelDeleted {
		return nil
	}
	parcel.Status = domain.ParcelDeleted
	return s.repo.UpdateParcel(ctx, parcel)
}

// CountyApproveParcel records the first-stage decision on a self-service
// registration. Approval advances the parcel to the NLC stage; rejection is
// terminal.
func (s *Service) CountyApproveParcel(ctx context.Context, actor *domain.User, parcelID uuid.UUID, decision domain.ApprovalDecision) (*domain.Parcel, error) {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnCounty(parcel.County) {
		return nil, Forbiddenf("only the admin of %s County may decide this registration", parcel.County)
	}
	if parcel.ApprovalStatus != domain.ApprovalPendingCountyAdmin {
		return nil, Validationf("parcel %s is not awaiting county approval", parcel.TitleNumber)
	}

	now := time.Now().UTC()
	record := domain.ApprovalRecord{
		AdminID:   &actor.ID,
		AdminName: actor.FullName,
		Remarks:   strings.TrimSpace(decision.Remarks),
		DecidedAt: &now,
	}
	if decision.Approve {
		record.Status = "approved"
		parcel.ApprovalStatus = domain.ApprovalPendingNLCAdmin
	} else {
		record.Status = "rejected"
		parcel.ApprovalStatus = domain.ApprovalRejected
	}
	parcel.CountyApproval = record

	if err := s.repo.UpdateParcel(ctx, parcel); err != nil {
		return nil, err
	}

	s.notifyParcelDecision(ctx, parcel, decision.Approve, "county")
	if decision.Approve {
		s.notifyNLCAdmins(ctx, domain.Notification{
			Type:      domain.NotifyParcelApproval,
			Title:     "Parcel registration awaiting NLC approval",
			Message:   fmt.Sprintf("Parcel %s in %s County passed county approval and awaits NLC review.", parcel.TitleNumber, parcel.County),
			RelatedTo: &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
		})
	}
	return parcel, nil
}

// NLCApproveParcel records the final-stage decision. Approval verifies the
// parcel; rejection is terminal.
func (s *Service) NLCApproveParcel(ctx context.Context, actor *domain.User, parcelID uuid.UUID, decision domain.ApprovalDecision) (*domain.Parcel, error) {
	parcel, err := s.repo.FindParcelByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if parcel.ApprovalStatus != domain.ApprovalPendingNLCAdmin {
		return nil, Validationf("parcel %s is not awaiting NLC approval", parcel.TitleNumber)
	}

	now := time.Now().UTC()
	record := domain.ApprovalRecord{
		AdminID:   &actor.ID,
		AdminName: actor.FullName,
		Remarks:   strings.TrimSpace(decision.Remarks),
		DecidedAt: &now,
	}
	if decision.Approve {
		record.Status = "approved"
		parcel.ApprovalStatus = domain.ApprovalApproved
		parcel.IsVerified = true
	} else {
		record.Status = "rejected"
		parcel.ApprovalStatus = domain.ApprovalRejected
	}
	parcel.NLCApproval = record

	if err := s.repo.UpdateParcel(ctx, parcel); err != nil {
		return nil, err
	}

	s.notifyParcelDecision(ctx, parcel, decision.Approve, "NLC")
	return parcel, nil
}

// notifyParcelDecision tells the owner and the registering admin how a stage
// of the approval ladder was decided.
func (s *Service) notifyParcelDecision(ctx context.Context, parcel *domain.Parcel, approved bool, stage string) {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	template := domain.Notification{
		Type:      domain.NotifyParcelApproval,
		Title:     fmt.Sprintf("Parcel registration %s", verdict),
		Message:   fmt.Sprintf("Parcel %s was %s at the %s stage.", parcel.TitleNumber, verdict, stage),
		RelatedTo: &domain.RelatedRef{Model: domain.RelatedParcel, ID: parcel.ID},
	}
	recipients := map[uuid.UUID]bool{parcel.OwnerID: true}
	if !recipients[parcel.CreatedBy] {
		recipients[parcel.CreatedBy] = true
	}
	for id := range recipients {
		n := template
		n.RecipientID = id
		s.notify(ctx, n)
	}
}

func validateParcelRequest(req domain.CreateParcelRequest) error {
	if strings.TrimSpace(req.TitleNumber) == "" {
		return Validationf("title number is required")
	}
	if strings.TrimSpace(req.OwnerNationalID) == "" || strings.TrimSpace(req.OwnerKraPin) == "" {
		return Validationf("owner national ID and KRA PIN are required")
	}
	if strings.TrimSpace(req.County) == "" {
		return Validationf("county is required")
	}
	if req.SizeValue <= 0 {
		return Validationf("size value must be positive")
	}
	if strings.TrimSpace(req.SizeUnit) == "" {
		return Validationf("size unit is required")
	}
	if req.MarketValue < 0 {
		return Validationf("market value cannot be negative")
	}
	return nil
}

func canReadParcel(actor *domain.User, parcel *domain.Parcel) bool {
	if actor.ID == parcel.OwnerID || actor.ID == parcel.CreatedBy {
		return true
	}
	switch actor.Role {
	case domain.RoleNLCAdmin, domain.RoleSuperAdmin:
		return true
	case domain.RoleCountyAdmin:
		return actor.IsApproved && actor.County != nil && *actor.County == parcel.County
	}
	return false
}
