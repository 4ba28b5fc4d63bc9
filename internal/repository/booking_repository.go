package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinebox/internal/model"
)

// BookingRepo persists bookings, their seat and item lines, and the
// seat_claims rows that make seat exclusivity durable. Claims are
// never pre-checked before insert: the unique
// (showtime_id, row_label, seat_number) index is the arbiter, and a
// duplicate-key failure is the only legitimate conflict signal.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for handlers that open the
// commit transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateTx inserts the booking row and populates its generated ID.
// The caller owns the transaction. The only unique column besides
// the key is booking_reference, so a duplicate-key failure here is
// a reference collision and comes back as ErrReferenceTaken; the
// failed insert does not poison the transaction, so the caller can
// retry with a fresh reference.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (booking_reference, showtime_id, user_id, customer_name, customer_email, channel,
                promo_code_id, loyalty_reward_id, tickets_cents, concessions_cents, combos_cents,
                discount_cents, total_cents, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Reference, b.ShowtimeID, nullableID(b.UserID), b.CustomerName, b.CustomerEmail, b.Channel,
		nullableID(b.PromoCodeID), nullableID(b.LoyaltyRewardID), b.TicketsCents, b.ConcessionsCents,
		b.CombosCents, b.DiscountCents, b.TotalCents, b.Status,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrReferenceTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// CreateSeatsBulkTx inserts the booking's seat lines in a single
// statement. Passing an empty slice has no effect and returns nil.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []model.BookingSeat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, showtime_id, row_label, seat_number, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.BookingID, s.ShowtimeID, s.RowLabel, s.SeatNumber, s.PriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// CreateItemsBulkTx inserts the booking's concession/combo lines in
// a single statement.
func (r *BookingRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.BookingItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO booking_items (booking_id, item_type, item_id, quantity, unit_price_cents) VALUES `
	args := make([]interface{}, 0, len(items)*5)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, it.BookingID, it.ItemType, it.ItemID, it.Quantity, it.UnitPriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ClaimSeatsTx durably claims every seat in refs for the booking.
// The insert is attempted without any availability pre-check; when
// any requested seat is already claimed the unique index fires, the
// statement fails as a whole (no partial claim) and ErrSeatTaken is
// returned so the caller rolls back the booking with it.
func (r *BookingRepo) ClaimSeatsTx(ctx context.Context, tx *sql.Tx, showtimeID, bookingID uint64, refs []model.SeatRef) error {
	if len(refs) == 0 {
		return nil
	}
	query := `INSERT INTO seat_claims (showtime_id, row_label, seat_number, booking_id) VALUES `
	args := make([]interface{}, 0, len(refs)*4)
	for i, s := range refs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, showtimeID, s.RowLabel, s.SeatNumber, bookingID)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrSeatTaken
		}
		return err
	}
	return nil
}

// ClaimedAmong returns which of the given seats already hold a claim
// for the showtime. Used after a failed commit (on a fresh
// connection, outside the rolled-back transaction) to tell the
// losing client exactly which seats were just taken.
func (r *BookingRepo) ClaimedAmong(ctx context.Context, showtimeID uint64, refs []model.SeatRef) ([]model.SeatRef, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT row_label, seat_number FROM seat_claims WHERE showtime_id = ? AND (`)
	args := make([]interface{}, 0, 1+len(refs)*2)
	args = append(args, showtimeID)
	for i, s := range refs {
		if i > 0 {
			sb.WriteString(" OR ")
		}
		sb.WriteString("(row_label = ? AND seat_number = ?)")
		args = append(args, s.RowLabel, s.SeatNumber)
	}
	sb.WriteString(")")
	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make([]model.SeatRef, 0, len(refs))
	for rows.Next() {
		var s model.SeatRef
		if err := rows.Scan(&s.RowLabel, &s.SeatNumber); err != nil {
			return nil, err
		}
		taken = append(taken, s)
	}
	return taken, rows.Err()
}

// TakenSeats returns every claimed seat for the showtime, ordered
// deterministically. This is the snapshot a client combines with
// the claim-event stream to maintain its local taken-set.
func (r *BookingRepo) TakenSeats(ctx context.Context, showtimeID uint64) ([]model.SeatRef, error) {
	const q = `SELECT row_label, seat_number FROM seat_claims
               WHERE showtime_id = ?
               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make([]model.SeatRef, 0)
	for rows.Next() {
		var s model.SeatRef
		if err := rows.Scan(&s.RowLabel, &s.SeatNumber); err != nil {
			return nil, err
		}
		taken = append(taken, s)
	}
	return taken, rows.Err()
}

// DeleteClaimsTx releases every claim held by the booking and
// returns the freed seats so the caller can notify observers.
func (r *BookingRepo) DeleteClaimsTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]model.SeatRef, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT row_label, seat_number FROM seat_claims WHERE booking_id = ?`, bookingID)
	if err != nil {
		return nil, err
	}
	var freed []model.SeatRef
	for rows.Next() {
		var s model.SeatRef
		if scanErr := rows.Scan(&s.RowLabel, &s.SeatNumber); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		freed = append(freed, s)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM seat_claims WHERE booking_id = ?`, bookingID); err != nil {
		return nil, err
	}
	return freed, nil
}

// GetByReference loads a booking by its opaque reference.
// ErrBookingNotFound is returned when no row exists.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE booking_reference = ?`, strings.TrimSpace(ref)))
}

// GetByReferenceTx is GetByReference inside a transaction, used by
// the payment, gate and cancel paths so the read and the conditional
// write share one connection.
func (r *BookingRepo) GetByReferenceTx(ctx context.Context, tx *sql.Tx, ref string) (*model.Booking, error) {
	return scanBooking(tx.QueryRowContext(ctx, bookingSelect+` WHERE booking_reference = ?`, strings.TrimSpace(ref)))
}

const bookingSelect = `SELECT id, booking_reference, showtime_id, user_id, customer_name, customer_email,
       channel, promo_code_id, loyalty_reward_id, tickets_cents, concessions_cents, combos_cents,
       discount_cents, total_cents, status, created_at, updated_at
       FROM bookings`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var b model.Booking
	var userID, promoID, rewardID sql.NullInt64
	err := row.Scan(
		&b.ID, &b.Reference, &b.ShowtimeID, &userID, &b.CustomerName, &b.CustomerEmail,
		&b.Channel, &promoID, &rewardID, &b.TicketsCents, &b.ConcessionsCents, &b.CombosCents,
		&b.DiscountCents, &b.TotalCents, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	b.UserID = fromNullID(userID)
	b.PromoCodeID = fromNullID(promoID)
	b.LoyaltyRewardID = fromNullID(rewardID)
	return &b, nil
}

// CASStatusTx performs the compare-and-swap status transition. It
// reports false, without error, when zero rows were affected: the
// booking was not in the expected state, usually because a
// concurrent actor won the same transition. The caller re-reads the
// row for the real answer instead of guessing.
func (r *BookingRepo) CASStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, from, to string) (bool, error) {
	const q = `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, to, bookingID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// StatusByID re-reads the authoritative status, typically after a
// lost CAS.
func (r *BookingRepo) StatusByID(ctx context.Context, bookingID uint64) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, bookingID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrBookingNotFound
		}
		return "", err
	}
	return status, nil
}

// SeatsByBooking returns the booking's seat lines ordered by row
// and number for deterministic output.
func (r *BookingRepo) SeatsByBooking(ctx context.Context, bookingID uint64) ([]model.BookingSeat, error) {
	const q = `SELECT id, booking_id, showtime_id, row_label, seat_number, price_cents
               FROM booking_seats WHERE booking_id = ?
               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.BookingSeat, 0)
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.ShowtimeID, &s.RowLabel, &s.SeatNumber, &s.PriceCents); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// ItemsByBooking returns the booking's concession/combo lines.
func (r *BookingRepo) ItemsByBooking(ctx context.Context, bookingID uint64) ([]model.BookingItem, error) {
	const q = `SELECT id, booking_id, item_type, item_id, quantity, unit_price_cents
               FROM booking_items WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.BookingItem, 0)
	for rows.Next() {
		var it model.BookingItem
		if err := rows.Scan(&it.ID, &it.BookingID, &it.ItemType, &it.ItemID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// BookingSummary is the listing shape returned to customers for
// their own bookings.
type BookingSummary struct {
	Reference  string          `json:"booking_reference"`
	Status     string          `json:"status"`
	MovieTitle string          `json:"movie_title"`
	StartsAt   string          `json:"starts_at"`
	TotalCents uint32          `json:"total_cents"`
	Seats      []model.SeatRef `json:"seats"`
}

// ListByUser returns the user's bookings, newest first, each with
// its seat set. Seats for all bookings are fetched in one query.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingSummary, error) {
	const q = `SELECT b.id, b.booking_reference, b.status, b.total_cents, s.movie_title, s.starts_at
               FROM bookings b
               JOIN showtimes s ON s.id = b.showtime_id
               WHERE b.user_id = ?
               ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	summaries := make([]BookingSummary, 0)
	ids := make([]uint64, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var id uint64
		var sum BookingSummary
		var startsAt sql.NullTime
		if err := rows.Scan(&id, &sum.Reference, &sum.Status, &sum.TotalCents, &sum.MovieTitle, &startsAt); err != nil {
			return nil, err
		}
		if startsAt.Valid {
			sum.StartsAt = startsAt.Time.UTC().Format(time.RFC3339)
		}
		sum.Seats = []model.SeatRef{}
		index[id] = len(summaries)
		summaries = append(summaries, sum)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return summaries, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	seatQ := `SELECT booking_id, row_label, seat_number FROM booking_seats
              WHERE booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY booking_id, row_label, seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, args...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var s model.SeatRef
		if err := srows.Scan(&bid, &s.RowLabel, &s.SeatNumber); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			summaries[idx].Seats = append(summaries[idx].Seats, s)
		}
	}
	return summaries, srows.Err()
}

func nullableID(p *uint64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func fromNullID(n sql.NullInt64) *uint64 {
	if !n.Valid {
		return nil
	}
	v := uint64(n.Int64)
	return &v
}
