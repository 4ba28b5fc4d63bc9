package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinebox/internal/model"
)

// LoyaltyRepo manages point balances and the append-only ledger.
// Balance mutations only ever happen inside a booking transition
// transaction, guarded by the (booking_id, entry_type) unique key so
// a transition observed twice cannot move points twice.
type LoyaltyRepo struct {
	db *sql.DB
}

// NewLoyaltyRepo returns a LoyaltyRepo bound to the given database.
func NewLoyaltyRepo(db *sql.DB) *LoyaltyRepo { return &LoyaltyRepo{db: db} }

// GetReward loads an active reward. ErrRewardNotFound is returned
// when no active row exists.
func (r *LoyaltyRepo) GetReward(ctx context.Context, id uint64) (*model.LoyaltyReward, error) {
	const q = `SELECT id, name, point_cost, discount_cents, is_active, created_at, updated_at
               FROM loyalty_rewards WHERE id = ? AND is_active = 1`
	var rw model.LoyaltyReward
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rw.ID, &rw.Name, &rw.PointCost, &rw.DiscountCents, &rw.IsActive, &rw.CreatedAt, &rw.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return &rw, nil
}

// AccountByUser loads the loyalty account for a user. sql.ErrNoRows
// propagates when the user has no account.
func (r *LoyaltyRepo) AccountByUser(ctx context.Context, userID uint64) (*model.LoyaltyAccount, error) {
	const q = `SELECT id, user_id, points, created_at, updated_at
               FROM loyalty_accounts WHERE user_id = ?`
	var a model.LoyaltyAccount
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.Points, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RedeemTx debits points for a confirmed booking. The ledger insert
// runs first: its unique (booking_id, entry_type) key turns a
// duplicate confirmation into a no-op, so the balance update below
// runs at most once per booking. The balance update re-checks the
// available points; an account that no longer covers the cost fails
// the whole confirmation with ErrInsufficientPoints.
func (r *LoyaltyRepo) RedeemTx(ctx context.Context, tx *sql.Tx, accountID, bookingID uint64, points uint32) error {
	const ins = `INSERT INTO loyalty_ledger (account_id, booking_id, entry_type, points_delta)
                 VALUES (?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, ins, accountID, bookingID, model.LedgerRedeem, -int32(points))
	if err != nil {
		if isDuplicateKey(err) {
			return nil // already applied for this booking
		}
		return err
	}
	const upd = `UPDATE loyalty_accounts SET points = points - ? WHERE id = ? AND points >= ?`
	res, err := tx.ExecContext(ctx, upd, points, accountID, points)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientPoints
	}
	return nil
}

// RefundTx credits points back when a booking that debited them is
// cancelled. Idempotent through the same ledger unique key.
func (r *LoyaltyRepo) RefundTx(ctx context.Context, tx *sql.Tx, accountID, bookingID uint64, points uint32) error {
	const ins = `INSERT INTO loyalty_ledger (account_id, booking_id, entry_type, points_delta)
                 VALUES (?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, ins, accountID, bookingID, model.LedgerRefund, int32(points))
	if err != nil {
		if isDuplicateKey(err) {
			return nil
		}
		return err
	}
	const upd = `UPDATE loyalty_accounts SET points = points + ? WHERE id = ?`
	_, err = tx.ExecContext(ctx, upd, points, accountID)
	return err
}

// LedgerEntryTx reports whether an entry of the given type exists
// for the booking. Cancellation uses it to decide whether points
// were ever debited.
func (r *LoyaltyRepo) LedgerEntryTx(ctx context.Context, tx *sql.Tx, bookingID uint64, entryType string) (*model.LoyaltyLedgerEntry, error) {
	const q = `SELECT id, account_id, booking_id, entry_type, points_delta, created_at
               FROM loyalty_ledger WHERE booking_id = ? AND entry_type = ?`
	var e model.LoyaltyLedgerEntry
	err := tx.QueryRowContext(ctx, q, bookingID, entryType).Scan(
		&e.ID, &e.AccountID, &e.BookingID, &e.EntryType, &e.PointsDelta, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
