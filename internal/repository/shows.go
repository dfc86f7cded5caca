package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	trmsqlx "github.com/avito-tech/go-transaction-manager/drivers/sqlx/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"quickshow/internal/entities"
)

type ShowsRepo struct {
	db     *sqlx.DB
	getter *trmsqlx.CtxGetter
}

func NewShowsRepo(db *sqlx.DB, getter *trmsqlx.CtxGetter) *ShowsRepo {
	return &ShowsRepo{db: db, getter: getter}
}

func (r *ShowsRepo) tr(ctx context.Context) trmsqlx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.db)
}

func (r *ShowsRepo) CreateShow(ctx context.Context, show entities.Show) (uuid.UUID, error) {
	var id uuid.UUID

	query := `
		INSERT INTO shows (
			movie_title, start_time, seat_price, is_active
		) VALUES (
			$1, $2, $3, $4
		) RETURNING id`

	err := r.tr(ctx).QueryRowxContext(ctx, query,
		show.MovieTitle,
		show.StartTime,
		show.SeatPrice,
		show.IsActive,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create show: %w", err)
	}

	return id, nil
}

func (r *ShowsRepo) GetShow(ctx context.Context, id uuid.UUID) (*entities.Show, error) {
	var (
		show     entities.Show
		occupied []byte
	)

	query := `
		SELECT id, movie_title, start_time, seat_price, occupied_seats, is_active, created_at, updated_at
		FROM shows
		WHERE id = $1`

	err := r.tr(ctx).QueryRowxContext(ctx, query, id).Scan(
		&show.ID,
		&show.MovieTitle,
		&show.StartTime,
		&show.SeatPrice,
		&occupied,
		&show.IsActive,
		&show.CreatedAt,
		&show.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrShowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	if err := json.Unmarshal(occupied, &show.OccupiedSeats); err != nil {
		return nil, fmt.Errorf("failed to decode seat ledger: %w", err)
	}

	return &show, nil
}

// OccupySeats writes userID as the holder of every seat in seats, in a
// single conditional update. The WHERE clause makes it a compare-and-set:
// if any requested seat is already a key of the ledger the update matches
// no rows, so two concurrent reservations for an overlapping seat cannot
// both succeed.
func (r *ShowsRepo) OccupySeats(ctx context.Context, showID uuid.UUID, seats []string, userID string) error {
	held := make(map[string]string, len(seats))
	for _, seat := range seats {
		held[seat] = userID
	}
	payload, err := json.Marshal(held)
	if err != nil {
		return fmt.Errorf("failed to encode seat holders: %w", err)
	}

	query := `
		UPDATE shows
		SET occupied_seats = occupied_seats || $2::jsonb, updated_at = now()
		WHERE id = $1 AND is_active AND NOT occupied_seats ?| $3`

	res, err := r.tr(ctx).ExecContext(ctx, query, showID, payload, pq.Array(seats))
	if err != nil {
		return fmt.Errorf("failed to occupy seats: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to occupy seats: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetShow(ctx, showID); err != nil {
			return err
		}
		return entities.ErrSeatsUnavailable
	}

	return nil
}

// ReleaseSeats deletes the given seat ids from the show's ledger. Seats
// not present are ignored, so redelivered expiry checks are harmless.
func (r *ShowsRepo) ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error {
	query := `
		UPDATE shows
		SET occupied_seats = occupied_seats - $2::text[], updated_at = now()
		WHERE id = $1`

	_, err := r.tr(ctx).ExecContext(ctx, query, showID, pq.Array(seats))
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}

	return nil
}

func (r *ShowsRepo) OccupiedSeats(ctx context.Context, showID uuid.UUID) ([]string, error) {
	show, err := r.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	seats := make([]string, 0, len(show.OccupiedSeats))
	for seat := range show.OccupiedSeats {
		seats = append(seats, seat)
	}
	sort.Strings(seats)

	return seats, nil
}
