/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the registry-service performs, plus the sentinel errors the
 * implementations return. Business logic in internal/app depends on this
 * interface only, which keeps the PostgreSQL implementation swappable and the
 * service testable with in-memory stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For record identifiers.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ardhi/registry-service/internal/domain"
)

// Sentinel errors surfaced by repository implementations. Handlers translate
// these into the HTTP envelope; services branch on them with errors.Is.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrParcelNotFound       = errors.New("parcel not found")
	ErrTransferNotFound     = errors.New("transfer not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrSessionNotFound      = errors.New("refresh session not found")

	ErrDuplicateEmail       = errors.New("an account with this email already exists")
	ErrDuplicateNationalID  = errors.New("an account with this national ID already exists")
	ErrDuplicateKraPin      = errors.New("an account with this KRA PIN already exists")
	ErrDuplicateTitleNumber = errors.New("a parcel with this title number already exists")

	// ErrTransferInFlight is returned when a transfer insert loses the race
	// against another pending transfer for the same parcel.
	ErrTransferInFlight = errors.New("the parcel already has a pending transfer")
)

// CountyDashboard aggregates the counts shown on the county-admin landing page.
type CountyDashboard struct {
	County           string `json:"county"`
	TotalParcels     int64  `json:"total_parcels"`
	PendingApprovals int64  `json:"pending_approvals"`
	ActiveTransfers  int64  `json:"active_transfers"`
	FlaggedParcels   int64  `json:"flagged_parcels"`
}

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// Exact match on the (national ID, KRA PIN) pair; used to resolve
	// transfer recipients and parcel owners.
	FindUserByIdentity(ctx context.Context, nationalID, kraPin string) (*domain.User, error)
	ListUsers(ctx context.Context, role *domain.Role, limit, offset int) ([]domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ListAdminsByCounty(ctx context.Context, county string) ([]domain.User, error)
	ListAdminsByRole(ctx context.Context, role domain.Role) ([]domain.User, error)

	// Parcel methods
	CreateParcel(ctx context.Context, parcel *domain.Parcel) error
	FindParcelByID(ctx context.Context, id uuid.UUID) (*domain.Parcel, error)
	FindParcelByTitleNumber(ctx context.Context, titleNumber string) (*domain.Parcel, error)
	SearchParcels(ctx context.Context, opts domain.ParcelSearchOptions) ([]domain.Parcel, error)
	UpdateParcel(ctx context.Context, parcel *domain.Parcel) error
	CountyDashboard(ctx context.Context, county string) (*CountyDashboard, error)

	// Transfer methods
	NextTransferNumber(ctx context.Context) (string, error)
	FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
	FindLiveTransferByParcel(ctx context.Context, parcelID uuid.UUID) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.Transfer, error)
	UpdateTransfer(ctx context.Context, transfer *domain.Transfer) error
	// CreateTransferWithParcelTx inserts a new transfer and parks its parcel
	// in one database transaction. Returns ErrTransferInFlight when the
	// parcel already carries a pending transfer.
	CreateTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error
	// SaveTransferWithParcelTx persists a transfer transition and its
	// parcel side effect inside one database transaction so a crash cannot
	// leave the pair half-applied.
	SaveTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error

	// Notification methods
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, recipientID uuid.UUID, opts domain.NotificationListOptions) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID, notificationID uuid.UUID) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	CountUnreadNotifications(ctx context.Context, recipientID uuid.UUID) (int64, error)

	// Document methods
	CreateDocument(ctx context.Context, doc *domain.Document) error
	FindDocumentByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListDocuments(ctx context.Context, opts domain.DocumentListOptions) ([]domain.Document, error)
	UpdateDocument(ctx context.Context, doc *domain.Document) error
}

// SessionStore persists refresh sessions server-side so refresh tokens can be
// invalidated by comparison on use. Backed by Redis with a TTL matching the
// refresh-token lifetime.
type SessionStore interface {
	SaveRefreshSession(ctx context.Context, session domain.RefreshSession, ttl time.Duration) error
	FindRefreshSession(ctx context.Context, tokenHash string) (*domain.RefreshSession, error)
	DeleteRefreshSession(ctx context.Context, tokenHash string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}
