package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ardhi/registry-service/internal/domain"
)

func TestStopTransferFraudulent(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	seller := seedUser(t, repo, "Wanjiku Seller", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Otieno Buyer", domain.RoleUser, "")
	admin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	parcel := seedParcel(t, repo, seller, "NRB/BLK4/001", "Nairobi")
	transfer, _ := service.InitiateTransfer(context.Background(), seller, initiateRequest(parcel, buyer))

	stopped, err := service.StopTransfer(context.Background(), admin, transfer.ID, domain.StopTransferRequest{
		Reason:       "title document mismatch",
		IsFraudulent: true,
	})
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if stopped.Status != domain.TransferCountyRejected || !stopped.IsFraudulent {
		t.Fatalf("expected fraudulent county_rejected transfer, got %+v", stopped)
	}
	if stopped.StopReason == nil || *stopped.StopReason != "title document mismatch" {
		t.Fatal("expected the stop reason recorded on the transfer")
	}
	if last := stopped.Actions[len(stopped.Actions)-1]; last.Type != domain.ActionStoppedByCounty {
		t.Fatalf("expected stopped_by_county action, got %s", last.Type)
	}

	stored, _ := repo.FindParcelByID(context.Background(), parcel.ID)
	if !stored.IsFraudulent || stored.Status != domain.ParcelDisputed {
		t.Fatalf("expected disputed flagged parcel, got %+v", stored)
	}
	if stored.FraudReason == nil || stored.FraudBy == nil || *stored.FraudBy != admin.ID {
		t.Fatal("expected fraud metadata recorded on the parcel")
	}

	// Both parties hear about the stop; the owner also gets the flag notice.
	sellerNotes := repo.notificationsFor(seller.ID)
	if len(sellerNotes) != 2 || sellerNotes[0].Type != domain.NotifyTransferStopped || sellerNotes[1].Type != domain.NotifyParcelFraudFlag {
		t.Fatalf("expected stop + fraud-flag notifications for the seller, got %+v", sellerNotes)
	}
	buyerNotes := repo.notificationsFor(buyer.ID)
	if len(buyerNotes) < 2 || buyerNotes[len(buyerNotes)-1].Type != domain.NotifyTransferStopped {
		t.Fatalf("expected transfer_stopped notification for the buyer, got %+v", buyerNotes)
	}
}

func TestStopTransferNonFraudulentRestoresParcel(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	seller := seedUser(t, repo, "Wanjiku Seller", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Otieno Buyer", domain.RoleUser, "")
	admin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	parcel := seedParcel(t, repo, seller, "NRB/BLK4/002", "Nairobi")
	transfer, _ := service.InitiateTransfer(context.Background(), seller, initiateRequest(parcel, buyer))

	if _, err := service.StopTransfer(context.Background(), admin, transfer.ID, domain.StopTransferRequest{Reason: "stale paperwork"}); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	stored, _ := repo.FindParcelByID(context.Background(), parcel.ID)
	if stored.IsFraudulent || stored.Status != domain.ParcelActive {
		t.Fatalf("expected clean active parcel after non-fraud stop, got %+v", stored)
	}
}

func TestStopTransferCountyScopedAndReasonRequired(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	seller := seedUser(t, repo, "Wanjiku Seller", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Otieno Buyer", domain.RoleUser, "")
	admin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	otherAdmin := seedUser(t, repo, "Mombasa Admin", domain.RoleCountyAdmin, "Mombasa")
	parcel := seedParcel(t, repo, seller, "NRB/BLK4/003", "Nairobi")
	transfer, _ := service.InitiateTransfer(context.Background(), seller, initiateRequest(parcel, buyer))

	var validation ValidationError
	if _, err := service.StopTransfer(context.Background(), admin, transfer.ID, domain.StopTransferRequest{}); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for missing reason, got %v", err)
	}

	var forbidden ForbiddenError
	if _, err := service.StopTransfer(context.Background(), otherAdmin, transfer.ID, domain.StopTransferRequest{Reason: "x"}); !errors.As(err, &forbidden) {
		t.Fatalf("expected cross-county stop to be forbidden, got %v", err)
	}
}

func TestRemoveFraudFlag(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	seller := seedUser(t, repo, "Wanjiku Seller", domain.RoleUser, "")
	buyer := seedUser(t, repo, "Otieno Buyer", domain.RoleUser, "")
	admin := seedUser(t, repo, "Nairobi Admin", domain.RoleCountyAdmin, "Nairobi")
	parcel := seedParcel(t, repo, seller, "NRB/BLK4/004", "Nairobi")
	transfer, _ := service.InitiateTransfer(context.Background(), seller, initiateRequest(parcel, buyer))
	if _, err := service.StopTransfer(context.Background(), admin, transfer.ID, domain.StopTransferRequest{Reason: "suspected forgery", IsFraudulent: true}); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	cleared, err := service.RemoveFraudFlag(context.Background(), admin, parcel.ID)
	if err != nil {
		t.Fatalf("remove flag failed: %v", err)
	}
	if cleared.IsFraudulent || cleared.Status != domain.ParcelActive {
		t.Fatalf("expected clean active parcel, got %+v", cleared)
	}
	if cleared.FraudReason != nil || cleared.FraudFlagged != nil || cleared.FraudBy != nil {
		t.Fatal("expected fraud metadata cleared")
	}

	var validation ValidationError
	if _, err := service.RemoveFraudFlag(context.Background(), admin, parcel.ID); !errors.As(err, &validation) {
		t.Fatalf("expected clearing an unflagged parcel to fail, got %v", err)
	}
}
