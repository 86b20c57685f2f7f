package app

import (
	"context"
	"errors"
	"testing"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

func createUserRequest(role domain.Role, county string) domain.CreateUserRequest {
	return domain.CreateUserRequest{
		FullName:   "Staff Member",
		Email:      "staff@example.com",
		Password:   "s3cret-enough",
		NationalID: "40123456",
		KraPin:     "A912345678Z",
		Role:       role,
		County:     county,
	}
}

func TestCreateCountyAdminStartsUnapproved(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")

	created, err := service.CreateUser(context.Background(), nlc, createUserRequest(domain.RoleCountyAdmin, "Kisumu"))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.IsApproved {
		t.Fatal("expected county admin to start unapproved")
	}
	if created.County == nil || *created.County != "Kisumu" {
		t.Fatalf("expected county assignment, got %+v", created.County)
	}
}

func TestCreateCountyAdminRequiresCounty(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")

	var validation ValidationError
	if _, err := service.CreateUser(context.Background(), nlc, createUserRequest(domain.RoleCountyAdmin, "")); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for missing county, got %v", err)
	}
}

func TestOnlySuperAdminCreatesSuperAdmins(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	super := seedUser(t, repo, "Root Admin", domain.RoleSuperAdmin, "")

	var forbidden ForbiddenError
	if _, err := service.CreateUser(context.Background(), nlc, createUserRequest(domain.RoleSuperAdmin, "")); !errors.As(err, &forbidden) {
		t.Fatalf("expected forbidden for NLC creating super admin, got %v", err)
	}
	if _, err := service.CreateUser(context.Background(), super, createUserRequest(domain.RoleSuperAdmin, "")); err != nil {
		t.Fatalf("expected super admin creation by super admin to succeed, got %v", err)
	}
}

func TestApproveCountyAdmin(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	pending, _ := service.CreateUser(context.Background(), nlc, createUserRequest(domain.RoleCountyAdmin, "Kisumu"))

	approved, err := service.ApproveCountyAdmin(context.Background(), nlc, pending.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.IsApproved || approved.ApprovedBy == nil || *approved.ApprovedBy != nlc.ID || approved.ApprovedAt == nil {
		t.Fatalf("expected approval metadata set, got %+v", approved)
	}
	if got := repo.notificationsFor(approved.ID); len(got) != 1 || got[0].Type != domain.NotifyAccountApproved {
		t.Fatalf("expected account_approved notification, got %+v", got)
	}

	// Idempotent: a second approval changes nothing and sends nothing.
	if _, err := service.ApproveCountyAdmin(context.Background(), nlc, pending.ID); err != nil {
		t.Fatalf("repeat approve failed: %v", err)
	}
	if got := repo.notificationsFor(approved.ID); len(got) != 1 {
		t.Fatalf("expected no duplicate notification, got %d", len(got))
	}
}

func TestDeactivateUserRevokesSessions(t *testing.T) {
	repo := newFakeRepo()
	service, sessions := newTestService(repo)
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")
	citizen := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	sessions.sessions["hash"] = domain.RefreshSession{UserID: citizen.ID, TokenHash: "hash"}

	updated, err := service.DeactivateUser(context.Background(), nlc, citizen.ID)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected account deactivated")
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("expected the citizen's sessions revoked")
	}

	var validation ValidationError
	if _, err := service.DeactivateUser(context.Background(), nlc, nlc.ID); !errors.As(err, &validation) {
		t.Fatalf("expected self-deactivation to fail, got %v", err)
	}
}

func TestDeleteUserOnlyNLCAdmins(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	super := seedUser(t, repo, "Root Admin", domain.RoleSuperAdmin, "")
	citizen := seedUser(t, repo, "Plain Citizen", domain.RoleUser, "")
	nlc := seedUser(t, repo, "Nlc Admin", domain.RoleNLCAdmin, "")

	var validation ValidationError
	if err := service.DeleteUser(context.Background(), super, citizen.ID); !errors.As(err, &validation) {
		t.Fatalf("expected citizen deletion to be rejected, got %v", err)
	}

	if err := service.DeleteUser(context.Background(), super, nlc.ID); err != nil {
		t.Fatalf("NLC admin deletion failed: %v", err)
	}
	if _, err := repo.FindUserByID(context.Background(), nlc.ID); !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected the record gone, got %v", err)
	}
}

func TestEnsureSuperAdminIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	service, _ := newTestService(repo)
	seed := SuperAdminSeed{
		FullName:   "System Administrator",
		Email:      "root@registry.go.ke",
		Password:   "bootstrap-secret",
		NationalID: "1",
		KraPin:     "A000000001Z",
	}

	first, created, err := service.EnsureSuperAdmin(context.Background(), seed)
	if err != nil || !created {
		t.Fatalf("expected first run to create, got created=%t err=%v", created, err)
	}
	if first.Role != domain.RoleSuperAdmin || !first.IsApproved || !first.IsActive {
		t.Fatalf("expected an approved active super admin, got %+v", first)
	}

	second, created, err := service.EnsureSuperAdmin(context.Background(), seed)
	if err != nil || created {
		t.Fatalf("expected second run to no-op, got created=%t err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Fatal("expected the same account on repeat runs")
	}
}
