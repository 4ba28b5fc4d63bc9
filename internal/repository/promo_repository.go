package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinebox/internal/model"
)

// PromoRepo reads promo codes and advances their use counters.
// Codes are authored by staff tooling; this service only validates
// and consumes them.
type PromoRepo struct {
	db *sql.DB
}

// NewPromoRepo returns a PromoRepo bound to the given database.
func NewPromoRepo(db *sql.DB) *PromoRepo { return &PromoRepo{db: db} }

// GetByCode loads a promo code by its normalized (upper-case,
// trimmed) code string. ErrPromoNotFound is returned when no row
// exists.
func (r *PromoRepo) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	const q = `SELECT id, code, discount_type, discount_value, min_purchase_cents,
                      max_uses, current_uses, expires_at, is_active, created_at, updated_at
               FROM promo_codes WHERE code = ?`
	var p model.PromoCode
	var maxUses sql.NullInt64
	var expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&p.ID, &p.Code, &p.DiscountType, &p.DiscountValue, &p.MinPurchaseCents,
		&maxUses, &p.CurrentUses, &expiresAt, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, err
	}
	if maxUses.Valid {
		m := uint32(maxUses.Int64)
		p.MaxUses = &m
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		p.ExpiresAt = &t
	}
	return &p, nil
}

// ConsumeTx increments the code's use counter inside the booking
// confirmation transaction. The WHERE clause re-checks the cap so a
// burst of confirmations racing on the last use cannot overshoot:
// the loser affects zero rows and the whole confirmation rolls back
// with ErrPromoExhausted.
func (r *PromoRepo) ConsumeTx(ctx context.Context, tx *sql.Tx, promoID uint64) error {
	const q = `UPDATE promo_codes
               SET current_uses = current_uses + 1
               WHERE id = ? AND is_active = 1
                 AND (max_uses IS NULL OR current_uses < max_uses)`
	res, err := tx.ExecContext(ctx, q, promoID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPromoExhausted
	}
	return nil
}
