package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

func parcelRequest(owner *domain.User, title, county string) domain.CreateParcelRequest {
	return domain.CreateParcelRequest{
		TitleNumber:     title,
		OwnerNationalID: owner.NationalID,
		OwnerKraPin:     owner.KraPin,
		County:          county,
		SizeValue:       2.0,
		SizeUnit:        "acres",
		Zoning:          "residential",
		MarketValue:     5_000_000,
	}
}

func TestCreateParcelByNationalAdminIsVerified(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")

	parcel, err := service.CreateParcel(context.Background(), nlc, parcelRequest(owner, "MSA/BLK2/001", "Mombasa"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !parcel.IsVerified || parcel.ApprovalStatus != domain.ApprovalApproved {
		t.Fatalf("expected admin-created parcel to be verified and approved, got %+v", parcel)
	}
	if parcel.OwnerID != owner.ID {
		t.Fatal("expected owner resolved by national ID + KRA PIN")
	}
	if len(parcel.OwnershipHistory) != 1 || parcel.OwnershipHistory[0].TransferNumber != nil {
		t.Fatal("expected one registration history entry without a transfer number")
	}
}

func TestCreateParcelDuplicateTitleNumber(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")

	if _, err := service.CreateParcel(context.Background(), nlc, parcelRequest(owner, "MSA/BLK2/002", "Mombasa")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := service.CreateParcel(context.Background(), nlc, parcelRequest(owner, "MSA/BLK2/002", "Mombasa")); !errors.Is(err, store.ErrDuplicateTitleNumber) {
		t.Fatalf("expected duplicate title number error, got %v", err)
	}
}

func TestSelfServiceParcelWalksDualApproval(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	countyAdmin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")

	parcel, err := service.CreateParcel(context.Background(), countyAdmin, parcelRequest(owner, "NRB/BLK3/001", "Nairobi"))
	if err != nil {
		t.Fatalf("self-service create failed: %v", err)
	}
	if parcel.IsVerified || parcel.ApprovalStatus != domain.ApprovalPendingCountyAdmin {
		t.Fatalf("expected unverified parcel awaiting county approval, got %+v", parcel)
	}

	parcel, err = service.CountyApproveParcel(context.Background(), countyAdmin, parcel.ID, domain.ApprovalDecision{Approve: true, Remarks: "records check out"})
	if err != nil {
		t.Fatalf("county approval failed: %v", err)
	}
	if parcel.ApprovalStatus != domain.ApprovalPendingNLCAdmin {
		t.Fatalf("expected advance to NLC stage, got %s", parcel.ApprovalStatus)
	}
	if parcel.CountyApproval.Status != "approved" || parcel.CountyApproval.AdminID == nil {
		t.Fatalf("expected recorded county decision, got %+v", parcel.CountyApproval)
	}

	parcel, err = service.NLCApproveParcel(context.Background(), nlc, parcel.ID, domain.ApprovalDecision{Approve: true})
	if err != nil {
		t.Fatalf("NLC approval failed: %v", err)
	}
	if parcel.ApprovalStatus != domain.ApprovalApproved || !parcel.IsVerified {
		t.Fatalf("expected verified approved parcel, got %+v", parcel)
	}
}

func TestCountyApprovalIsCountyScoped(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nairobiAdmin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	mombasaAdmin := seedUser(t, repo, "Mombasa Admin", domain.RoleCountyAdmin, "Mombasa")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")

	parcel, err := service.CreateParcel(context.Background(), nairobiAdmin, parcelRequest(owner, "NRB/BLK3/002", "Nairobi"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var forbidden ForbiddenError
	if _, err := service.CountyApproveParcel(context.Background(), mombasaAdmin, parcel.ID, domain.ApprovalDecision{Approve: true}); !errors.As(err, &forbidden) {
		t.Fatalf("expected cross-county approval to be forbidden, got %v", err)
	}

	if _, err := service.CreateParcel(context.Background(), mombasaAdmin, parcelRequest(owner, "NRB/BLK3/003", "Nairobi")); !errors.As(err, &forbidden) {
		t.Fatalf("expected cross-county registration to be forbidden, got %v", err)
	}
}

func TestCountyRejectionIsTerminal(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	countyAdmin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")

	parcel, _ := service.CreateParcel(context.Background(), countyAdmin, parcelRequest(owner, "NRB/BLK3/004", "Nairobi"))
	parcel, err := service.CountyApproveParcel(context.Background(), countyAdmin, parcel.ID, domain.ApprovalDecision{Approve: false, Remarks: "forged survey map"})
	if err != nil {
		t.Fatalf("county rejection failed: %v", err)
	}
	if parcel.ApprovalStatus != domain.ApprovalRejected {
		t.Fatalf("expected rejected, got %s", parcel.ApprovalStatus)
	}

	var validation ValidationError
	if _, err := service.NLCApproveParcel(context.Background(), nlc, parcel.ID, domain.ApprovalDecision{Approve: true}); !errors.As(err, &validation) {
		t.Fatalf("expected NLC approval on rejected parcel to fail, got %v", err)
	}
}

func TestUnapprovedParcelCannotBeTransferred(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	countyAdmin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Otieno Buyer", domain.RoleUser, "")

	parcel, _ := service.CreateParcel(context.Background(), countyAdmin, parcelRequest(owner, "NRB/BLK3/005", "Nairobi"))

	var validation ValidationError
	_, err := service.InitiateTransfer(context.Background(), owner, domain.InitiateTransferRequest{
		ParcelID:        parcel.ID,
		BuyerName:       buyer.FullName,
		BuyerNationalID: buyer.NationalID,
		BuyerKraPin:     buyer.KraPin,
		AgreedPrice:     1_000_000,
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected transfer of unapproved parcel to fail, got %v", err)
	}
}

func TestDeleteParcelIsSoft(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	parcel := seedParcel(t, repo, owner, "NRB/BLK3/006", "Nairobi")

	if err := service.DeleteParcel(context.Background(), nlc, parcel.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	stored, err := repo.FindParcelByID(context.Background(), parcel.ID)
	if err != nil {
		t.Fatalf("expected soft-deleted parcel to remain readable, got %v", err)
	}
	if stored.Status != domain.ParcelDeleted {
		t.Fatalf("expected deleted status, got %s", stored.Status)
	}
}

func TestDeleteParcelBlockedByLiveTransfer(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Buying Citizen", domain.RoleUser, "")
	parcel := seedParcel(t, repo, owner, "NRB/BLK3/009", "Nairobi")

	transfer, err := service.InitiateTransfer(context.Background(), owner, domain.InitiateTransferRequest{
		ParcelID:        parcel.ID,
		BuyerNationalID: buyer.NationalID,
		BuyerKraPin:     buyer.KraPin,
		AgreedPrice:     1_000_000,
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	err = service.DeleteParcel(context.Background(), nlc, parcel.ID)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error for live transfer, got %v", err)
	}
	if !strings.Contains(err.Error(), transfer.TransferNumber) {
		t.Fatalf("expected error to name transfer %s, got %q", transfer.TransferNumber, err)
	}
}

func TestGetParcelByTitle(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	outsider := seedUser(t, repo, "Other Citizen", domain.RoleUser, "")
	seedParcel(t, repo, owner, "NRB/BLK3/010", "Nairobi")

	parcel, err := service.GetParcelByTitle(context.Background(), owner, "nrb/blk3/010")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if parcel.OwnerID != owner.ID {
		t.Fatal("expected lookup to resolve the owner's parcel")
	}

	var forbidden ForbiddenError
	if _, err := service.GetParcelByTitle(context.Background(), outsider, "NRB/BLK3/010"); !errors.As(err, &forbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := service.GetParcelByTitle(context.Background(), owner, "NRB/NOPE/000"); !errors.Is(err, store.ErrParcelNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchParcelsScoping(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	owner := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	other := seedUser(t, repo, "Other Citizen", domain.RoleUser, "")
	countyAdmin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	seedParcel(t, repo, owner, "NRB/BLK3/007", "Nairobi")
	seedParcel(t, repo, other, "MSA/BLK3/008", "Mombasa")

	if got, _ := service.SearchParcels(context.Background(), owner, domain.ParcelSearchOptions{}); len(got) != 1 {
		t.Fatalf("expected citizens to only see their own parcels, got %d", len(got))
	}
	if got, _ := service.SearchParcels(context.Background(), countyAdmin, domain.ParcelSearchOptions{}); len(got) != 1 || got[0].County != "Nairobi" {
		t.Fatalf("expected county admin scoped to Nairobi, got %+v", got)
	}

	// County visibility is tied to NLC approval, matching the single-record
	// read rule.
	pendingAdmin := seedUser(t, repo, "Pending Admin", domain.RoleCountyAdmin, "Nairobi")
	pendingAdmin.IsApproved = false
	if got, _ := service.SearchParcels(context.Background(), pendingAdmin, domain.ParcelSearchOptions{}); len(got) != 0 {
		t.Fatalf("expected no county visibility for an unapproved admin, got %d", len(got))
	}
}
