/**
 * @description
 * PostgreSQL queries for ownership transfers. Transfer numbers are drawn from
 * a dedicated sequence so they are globally unique and strictly increasing;
 * the accept path persists the transfer and the re-owned parcel inside one
 * database transaction to close the partial-failure window between the two
 * writes.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ardhi/registry-service/internal/domain"
)

const transferColumns = `id, transfer_number, parcel_id, title_number, county,
	seller_id, seller_name, buyer_id, buyer_name, agreed_price, status,
	timeline, actions, is_fraudulent, stop_reason, completed_at, created_at, updated_at`

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		transfer domain.Transfer
		timeline []byte
		actions  []byte
	)
	err := row.Scan(
		&transfer.ID,
		&transfer.TransferNumber,
		&transfer.ParcelID,
		&transfer.TitleNumber,
		&transfer.County,
		&transfer.SellerID,
		&transfer.SellerName,
		&transfer.BuyerID,
		&transfer.BuyerName,
		&transfer.AgreedPrice,
		&transfer.Status,
		&timeline,
		&actions,
		&transfer.IsFraudulent,
		&transfer.StopReason,
		&transfer.CompletedAt,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(timeline, &transfer.Timeline); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	if err := json.Unmarshal(actions, &transfer.Actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	return &transfer, nil
}

func transferJSONColumns(transfer *domain.Transfer) (timeline, actions []byte, err error) {
	if transfer.Timeline == nil {
		transfer.Timeline = []domain.TimelineEntry{}
	}
	if transfer.Actions == nil {
		transfer.Actions = []domain.ActionEntry{}
	}
	if timeline, err = json.Marshal(transfer.Timeline); err != nil {
		return nil, nil, err
	}
	if actions, err = json.Marshal(transfer.Actions); err != nil {
		return nil, nil, err
	}
	return timeline, actions, nil
}

// NextTransferNumber draws the next value from the transfer number sequence
// and renders it in the canonical zero-padded form.
func (r *PostgresRepository) NextTransferNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('transfer_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("TRF%08d", seq), nil
}

func (r *PostgresRepository) insertTransfer(ctx context.Context, q querier, transfer *domain.Transfer, timeline, actions []byte) error {
	query := `
		INSERT INTO transfers (transfer_number, parcel_id, title_number, county,
			seller_id, seller_name, buyer_id, buyer_name, agreed_price, status, timeline, actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		transfer.TransferNumber,
		transfer.ParcelID,
		transfer.TitleNumber,
		transfer.County,
		transfer.SellerID,
		transfer.SellerName,
		transfer.BuyerID,
		transfer.BuyerName,
		transfer.AgreedPrice,
		transfer.Status,
		timeline,
		actions,
	).Scan(&transfer.ID, &transfer.CreatedAt, &transfer.UpdatedAt)
	return translateUniqueViolation(err)
}

// FindTransferByID retrieves a transfer by its ID.
func (r *PostgresRepository) FindTransferByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	return scanTransfer(r.db.QueryRow(ctx, query, id))
}

// FindLiveTransferByParcel returns the single non-terminal transfer for a
// parcel, or ErrTransferNotFound when none is in flight.
func (r *PostgresRepository) FindLiveTransferByParcel(ctx context.Context, parcelID uuid.UUID) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
		WHERE parcel_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`
	return scanTransfer(r.db.QueryRow(ctx, query, parcelID, domain.TransferPendingRecipientReview))
}

// ListTransfers lists transfers matching the given filters, newest first.
func (r *PostgresRepository) ListTransfers(ctx context.Context, opts domain.TransferListOptions) ([]domain.Transfer, error) {
	if opts.Limit <= 0 || opts.Limit > 200 {
		opts.Limit = 50
	}
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE 1=1`
	args := []interface{}{}
	if opts.Status != "" {
		args = append(args, opts.Status)
		query += ` AND status = ` + placeholder(len(args))
	}
	if opts.County != "" {
		args = append(args, opts.County)
		query += ` AND county = ` + placeholder(len(args))
	}
	if opts.ParticipantID != nil {
		args = append(args, *opts.ParticipantID)
		query += ` AND (seller_id = ` + placeholder(len(args)) + ` OR buyer_id = ` + placeholder(len(args)) + `)`
	}
	args = append(args, opts.Limit)
	query += ` ORDER BY created_at DESC LIMIT ` + placeholder(len(args))
	args = append(args, opts.Offset)
	query += ` OFFSET ` + placeholder(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, *transfer)
	}
	return transfers, rows.Err()
}

// UpdateTransfer rewrites the mutable columns of a transfer row.
func (r *PostgresRepository) UpdateTransfer(ctx context.Context, transfer *domain.Transfer) error {
	timeline, actions, err := transferJSONColumns(transfer)
	if err != nil {
		return err
	}
	return r.updateTransfer(ctx, r.db, transfer, timeline, actions)
}

// querier is the subset of pgxpool.Pool and pgx.Tx used by shared queries.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *PostgresRepository) updateTransfer(ctx context.Context, q querier, transfer *domain.Transfer, timeline, actions []byte) error {
	query := `
		UPDATE transfers SET
			status = $2, timeline = $3, actions = $4,
			is_fraudulent = $5, stop_reason = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := q.QueryRow(ctx, query,
		transfer.ID,
		transfer.Status,
		timeline,
		actions,
		transfer.IsFraudulent,
		transfer.StopReason,
		transfer.CompletedAt,
	).Scan(&transfer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTransferNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) saveParcelForTransfer(ctx context.Context, q querier, parcel *domain.Parcel) error {
	countyApproval, nlcApproval, history, err := parcelJSONColumns(parcel)
	if err != nil {
		return err
	}
	query := `
		UPDATE parcels SET
			owner_id = $2, owner_name = $3, owner_national_id = $4,
			status = $5, county_approval = $6, nlc_approval = $7,
			ownership_history = $8, is_fraudulent = $9, fraud_reason = $10,
			fraud_flagged_at = $11, fraud_flagged_by = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = q.QueryRow(ctx, query,
		parcel.ID,
		parcel.OwnerID,
		parcel.OwnerName,
		parcel.OwnerNationalID,
		parcel.Status,
		countyApproval,
		nlcApproval,
		history,
		parcel.IsFraudulent,
		parcel.FraudReason,
		parcel.FraudFlagged,
		parcel.FraudBy,
	).Scan(&parcel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrParcelNotFound
		}
		return err
	}
	return nil
}

// CreateTransferWithParcelTx inserts a new transfer and parks its parcel in
// pending_transfer atomically. The partial unique index on live transfers
// rejects a second insert for the same parcel, surfaced as
// ErrTransferInFlight.
func (r *PostgresRepository) CreateTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error {
	timeline, actions, err := transferJSONColumns(transfer)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.insertTransfer(ctx, tx, transfer, timeline, actions); err != nil {
		return err
	}
	if err := r.saveParcelForTransfer(ctx, tx, parcel); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveTransferWithParcelTx persists a transfer transition and its parcel side
// effect atomically. Either both rows land or neither does.
func (r *PostgresRepository) SaveTransferWithParcelTx(ctx context.Context, transfer *domain.Transfer, parcel *domain.Parcel) error {
	timeline, actions, err := transferJSONColumns(transfer)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.updateTransfer(ctx, tx, transfer, timeline, actions); err != nil {
		return err
	}
	if err := r.saveParcelForTransfer(ctx, tx, parcel); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
