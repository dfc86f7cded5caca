package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"quickshow/internal/entities"
)

type BookingsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewBookingsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *BookingsRepo {
	return &BookingsRepo{db: db, getter: getter}
}

func (r *BookingsRepo) tr(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *BookingsRepo) Create(ctx context.Context, booking *entities.Booking) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		INSERT INTO bookings (
			user_id, user_email, show_id, seats, amount
		) VALUES (
			$1, $2, $3, $4, $5
		) RETURNING id`

	err := r.tr(ctx).QueryRowxContext(ctx, query,
		booking.UserID,
		booking.UserEmail,
		booking.ShowID,
		pq.Array(booking.Seats),
		booking.Amount,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create booking: %w", err)
	}

	return id, nil
}

func (r *BookingsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error) {
	var (
		booking entities.Booking
		seats   pq.StringArray
	)

	query := `
		SELECT id, user_id, user_email, show_id, seats, amount, is_paid, payment_link, created_at
		FROM bookings
		WHERE id = $1`

	err := r.tr(ctx).QueryRowxContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.UserEmail,
		&booking.ShowID,
		&seats,
		&booking.Amount,
		&booking.IsPaid,
		&booking.PaymentLink,
		&booking.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking.Seats = seats
	return &booking, nil
}

func (r *BookingsRepo) GetDetails(ctx context.Context, id uuid.UUID) (*entities.BookingDetails, error) {
	var (
		details entities.BookingDetails
		seats   pq.StringArray
	)

	query := `
		SELECT b.id, b.user_id, b.user_email, b.show_id, b.seats, b.amount, b.is_paid,
			b.payment_link, b.created_at, s.movie_title, s.start_time
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		WHERE b.id = $1`

	err := r.tr(ctx).QueryRowxContext(ctx, query, id).Scan(
		&details.ID,
		&details.UserID,
		&details.UserEmail,
		&details.ShowID,
		&seats,
		&details.Amount,
		&details.IsPaid,
		&details.PaymentLink,
		&details.CreatedAt,
		&details.MovieTitle,
		&details.ShowStartTime,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking details: %w", err)
	}

	details.Seats = seats
	return &details, nil
}

// SetPaymentLink attaches the checkout redirect to the booking. The
// unpaid guard keeps a settlement that lands before the reserve path
// finishes from getting its cleared link re-attached.
func (r *BookingsRepo) SetPaymentLink(ctx context.Context, id uuid.UUID, link string) error {
	query := `UPDATE bookings SET payment_link = $2 WHERE id = $1 AND NOT is_paid`

	_, err := r.tr(ctx).ExecContext(ctx, query, id, link)
	if err != nil {
		return fmt.Errorf("failed to set payment link: %w", err)
	}

	return nil
}

// MarkPaid flips the booking to paid and clears the payment link. It
// reports whether this call performed the unpaid -> paid transition;
// a repeated settlement notification (or a booking that no longer
// exists) yields false with no error.
func (r *BookingsRepo) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET is_paid = TRUE, payment_link = ''
		WHERE id = $1 AND NOT is_paid`

	res, err := r.tr(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	return affected > 0, nil
}

// Delete removes the booking only while it is still unpaid and reports
// whether a row was actually removed. A settlement that commits first
// wins: the conditional delete matches nothing and the booking stays.
func (r *BookingsRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.tr(ctx).ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND NOT is_paid`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete booking: %w", err)
	}

	return affected > 0, nil
}
