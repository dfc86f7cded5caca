package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"quickshow/internal/entities"
)

// ScheduledChecksRepo stores pending payment checks. A row is inserted
// in the same transaction that creates the booking, so the sweeper is
// guaranteed to fire even if the process dies right after the reserve
// request returns.
type ScheduledChecksRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewScheduledChecksRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *ScheduledChecksRepo {
	return &ScheduledChecksRepo{db: db, getter: getter}
}

func (r *ScheduledChecksRepo) tr(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *ScheduledChecksRepo) Schedule(ctx context.Context, bookingID uuid.UUID, fireAt time.Time) error {
	query := `INSERT INTO scheduled_checks (booking_id, fire_at) VALUES ($1, $2)`

	_, err := r.tr(ctx).ExecContext(ctx, query, bookingID, fireAt)
	if err != nil {
		return fmt.Errorf("failed to schedule payment check: %w", err)
	}

	return nil
}

func (r *ScheduledChecksRepo) NextFireAt(ctx context.Context) (time.Time, bool, error) {
	var next sql.NullTime

	query := `SELECT MIN(fire_at) FROM scheduled_checks WHERE NOT done`

	err := r.tr(ctx).QueryRowxContext(ctx, query).Scan(&next)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get next payment check: %w", err)
	}

	return next.Time, next.Valid, nil
}

func (r *ScheduledChecksRepo) Due(ctx context.Context, now time.Time) ([]entities.ScheduledCheck, error) {
	query := `
		SELECT id, booking_id, fire_at
		FROM scheduled_checks
		WHERE NOT done AND fire_at <= $1
		ORDER BY fire_at`

	rows, err := r.tr(ctx).QueryxContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payment checks: %w", err)
	}
	defer rows.Close()

	var due []entities.ScheduledCheck
	for rows.Next() {
		var check entities.ScheduledCheck
		if err := rows.Scan(&check.ID, &check.BookingID, &check.FireAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment check: %w", err)
		}
		due = append(due, check)
	}

	return due, rows.Err()
}

func (r *ScheduledChecksRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	_, err := r.tr(ctx).ExecContext(ctx, `UPDATE scheduled_checks SET done = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark payment check done: %w", err)
	}

	return nil
}
