package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
)

// fakeRepo is an in-memory Repository used across the service tests. Methods
// not implemented here panic via the embedded nil interface, which flags a
// test exercising an unexpected path.
type fakeRepo struct {
	store.Repository

	users     map[uuid.UUID]*domain.User
	parcels   map[uuid.UUID]*domain.Parcel
	transfers map[uuid.UUID]*domain.Transfer

	notifications []domain.Notification
	seq           int64
	txCalls       int
	deletedUsers  []uuid.UUID

	// failNextTransferTx makes the next CreateTransferWithParcelTx call
	// return this error without persisting anything, like a rolled-back
	// database transaction.
	failNextTransferTx error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     make(map[uuid.UUID]*domain.User),
		parcels:   make(map[uuid.UUID]*domain.Parcel),
		transfers: make(map[uuid.UUID]*domain.Transfer),
	}
}

func (r *fakeRepo) CreateUser(ctx context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return store.ErrDuplicateEmail
		}
		if existing.NationalID == user.NationalID {
			return store.ErrDuplicateNationalID
		}
		if existing.KraPin == user.KraPin {
			return store.ErrDuplicateKraPin
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeRepo) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == strings.ToLower(strings.TrimSpace(email)) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (r *fakeRepo) FindUserByIdentity(ctx context.Context, nationalID, kraPin string) (*domain.User, error) {
	for _, user := range r.users {
		if user.NationalID == nationalID && user.KraPin == strings.ToUpper(kraPin) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (r *fakeRepo) UpdateUser(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := r.users[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

func (r *fakeRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(r.users, id)
	r.deletedUsers = append(r.deletedUsers, id)
	return nil
}

func (r *fakeRepo) ListAdminsByCounty(ctx context.Context, county string) ([]domain.User, error) {
	var admins []domain.User
	for _, user := range r.users {
		if user.Role == domain.RoleCountyAdmin && user.IsApproved && user.IsActive &&
			user.County != nil && *user.County == county {
			admins = append(admins, *user)
		}
	}
	return admins, nil
}

func (r *fakeRepo) ListAdminsByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var admins []domain.User
	for _, user := range r.users {
		if user.Role == role && user.IsActive {
			admins = append(admins, *user)
		}
	}
	return admins, nil
}

func (r *fakeRepo) CreateParcel(ctx context.Context, parcel *domain.Parcel) error {
	for _, existing := range r.parcels {
		if existing.TitleNumber == parcel.TitleNumber {
			return store.ErrDuplicateTitleNumber
		}
	}
	parcel.ID = uuid.New()
	parcel.CreatedAt = time.Now().UTC()
	parcel.UpdatedAt = parcel.CreatedAt
	copied := *parcel
	r.parcels[parcel.ID] = &copied
	return nil
}

func (r *fakeRepo) FindParcelByID(ctx context.Context, id uuid.UUID) (*domain.Parcel, error) {
	parcel, ok := r.parcels[id]
	if !ok {
		return nil, store.ErrParcelNotFound
	}
	copied := *parcel
	return &copied, nil
}

func (r *fakeRepo) FindParcelByTitleNumber(ctx context.Context, titleNumber string) (*domain.Parcel, error) {
	want := strings.ToUpper(strings.TrimSpace(titleNumber))
	for _, parcel := range r.parcels {
		if strings.ToUpper(parcel.TitleNumber) == want {
			copied := *parcel
			return &copied, nil
		}
	}
	return nil, store.ErrParcelNotFound
}

func (r *fakeRepo) UpdateParcel(ctx context.Context, parcel *domain.Parcel) error {
	if _, ok := r.parcels[parcel.ID]; !ok {
		return store.ErrParcelNotFound
	}
	copied := *parcel
	r.parcels[parcel.ID] = &copied
	return nil
}

func (r *fakeRepo) SearchParcels(ctx context.Context, opts domain.ParcelSearchOptions) ([]domain.Parcel, error) {
	var parcels []domain.Parcel
	for _, parcel := range r.parcels {
		if opts.OwnerID != nil && parcel.OwnerID != *opts.OwnerID {
			continue
		}
		if opts.County != "" && parcel.County != opts.County {
			continue
		}
		if opts.Status != "" && parcel.Status != opts.Status {
			continue
		}
		parcels = append(parcels, *parcel)
	}
	return parcels, nil
}

func (r *fakeRepo) NextTransferNumber(ctx context.Context) (string, error) {
	r.seq++
	return fmt.Sprintf("TRF%08d", r.seq), nil
}

func (r *fakeRepo) FindLiveTransferByParcel(ctx context.Context, parcelID uuid.UUID) (*domain.Transfer, error) {
	for _, transfer := range r.transfers {
		if transfer.ParcelID == parcelID && transfer.Status == domain.TransferPendingRecipientReview {
			copied := *transfer
			return &copied, nil
		}
	}
	return nil, store.ErrTransferNotFound
}

func (r *fakeRepo) FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	transfer, ok := r.transfers[id]
	if !ok {
		return nil, store.ErrTransferNotFound
	}
	copied := *transfer
	return &copied, nil
}

func (r *fakeRepo) ListTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	for _, transfer := range r.transfers {
		if opts.Status != "" && transfer.Status != opts.Status {
			continue
		}
		if opts.County != "" && transfer.County != opts.County {
			continue
		}
		if opts.ParticipantID != nil && transfer.SellerID != *opts.ParticipantID && transfer.BuyerID != *opts.ParticipantID {
			continue
		}
		transfers = append(transfers, *transfer)
	}
	return transfers, nil
}

func (r *fakeRepo) UpdateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	if _, ok := r.transfers[transfer.ID]; !ok {
		return store.ErrTransferNotFound
	}
	copied := *transfer
	r.transfers[transfer.ID] = &copied
	return nil
}

func (r *fakeRepo) CreateTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error {
	r.txCalls++
	if err := r.failNextTransferTx; err != nil {
		r.failNextTransferTx = nil
		return err
	}
	for _, existing := range r.transfers {
		if existing.ParcelID == transfer.ParcelID && existing.Status == domain.TransferPendingRecipientReview {
			return store.ErrTransferInFlight
		}
	}
	transfer.ID = uuid.New()
	transfer.CreatedAt = time.Now().UTC()
	transfer.UpdatedAt = transfer.CreatedAt
	copied := *transfer
	r.transfers[transfer.ID] = &copied
	return r.UpdateParcel(ctx, parcel)
}

func (r *fakeRepo) SaveTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error {
	r.txCalls++
	if err := r.UpdateTransfer(ctx, transfer); err != nil {
		return err
	}
	return r.UpdateParcel(ctx, parcel)
}

func (r *fakeRepo) CreateNotification(ctx context.Context, n *domain.Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now().UTC()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *fakeRepo) MarkNotificationRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error) {
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.ID != notificationID || n.RecipientID != recipientID {
			continue
		}
		if !n.IsRead {
			now := time.Now().UTC()
			n.IsRead = true
			n.ReadAt = &now
		}
		return true, nil
	}
	return false, nil
}

// notificationsFor filters the captured notifications by recipient.
func (r *fakeRepo) notificationsFor(recipient uuid.UUID) []domain.Notification {
	var out []domain.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	return out
}

// fakeSessions is an in-memory SessionStore keyed by token hash.
type fakeSessions struct {
	sessions map[string]domain.RefreshSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]domain.RefreshSession)}
}

func (s *fakeSessions) SaveRefreshSession(ctx context.Context, session domain.RefreshSession, ttl time.Duration) error {
	s.sessions[session.TokenHash] = session
	return nil
}

func (s *fakeSessions) FindRefreshSession(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return &session, nil
}

func (s *fakeSessions) DeleteRefreshSession(ctx context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	return nil
}

func (s *fakeSessions) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	for hash, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, hash)
		}
	}
	return nil
}

func newTestService(repo *fakeRepo) (*Service, *fakeSessions) {
	sessions := newFakeSessions()
	service := NewService(repo, sessions, nil, "test-secret", "registry-service",
		15*time.Minute, 7*24*time.Hour)
	return service, sessions
}

func seedUser(t *testing.T, repo *fakeRepo, name string, role domain.Role, county string) *domain.User {
	t.Helper()
	slug := strings.ReplaceAll(strings.ToLower(name), " ", ".")
	user := &domain.User{
		FullName:     name,
		Email:        slug + "@example.com",
		PasswordHash: "x",
		NationalID:   "ID-" + slug,
		KraPin:       strings.ToUpper("A" + slug),
		Role:         role,
		IsApproved:   true,
		IsActive:     true,
	}
	if county != "" {
		user.County = &county
	}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", name, err)
	}
	return user
}

func seedParcel(t *testing.T, repo *fakeRepo, owner *domain.User, title, county string) *domain.Parcel {
	t.Helper()
	parcel := &domain.Parcel{
		TitleNumber:     title,
		OwnerID:         owner.ID,
		OwnerName:       owner.FullName,
		OwnerNationalID: owner.NationalID,
		County:          county,
		SizeValue:       1.5,
		SizeUnit:        "hectares",
		Status:          domain.ParcelActive,
		ApprovalStatus:  domain.ApprovalApproved,
		IsVerified:      true,
		OwnershipHistory: []domain.OwnershipEntry{{
			OwnerID:    owner.ID,
			OwnerName:  owner.FullName,
			AcquiredAt: time.Now().UTC().Add(-24 * time.Hour),
		}},
		CreatedBy: owner.ID,
	}
	if err := repo.CreateParcel(context.Background(), parcel); err != nil {
		t.Fatalf("seeding parcel %s: %v", title, err)
	}
	return parcel
}
